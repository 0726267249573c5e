package main

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

var (
	errNotFinite = errors.New("not a finite number")
	errNegative  = errors.New("negative duration")
)

// readSamples returns the first n timing samples stored in the file at path,
// one per line, truncated toward zero to whole milliseconds. Lines after the
// n-th are not read.
func readSamples(path string, n int) ([]int, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %w", ErrMissingData, err)
		}
		return nil, err
	}
	defer f.Close()

	samples := make([]int, 0, n)
	scanner := bufio.NewScanner(f)
	for len(samples) < n && scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		v, err := parseSample(text)
		if err != nil {
			return nil, &ParseError{Path: path, Line: len(samples) + 1, Text: text, Err: err}
		}
		samples = append(samples, v)
	}
	if err := scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, &ParseError{Path: path, Line: len(samples) + 1, Err: err}
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(samples) < n {
		return nil, &ShortFileError{Path: path, Want: n, Got: len(samples)}
	}
	return samples, nil
}

func parseSample(text string) (int, error) {
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errNotFinite
	}
	if v < 0 {
		return 0, errNegative
	}
	if v >= math.MaxInt64 {
		return 0, strconv.ErrRange
	}
	return int(math.Trunc(v)), nil
}

// countLines returns the number of lines in the file at path, counting a
// final line without a trailing newline. A missing file has no lines.
func countLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	defer f.Close()

	lines, last := 0, byte('\n')
	buf := make([]byte, 32*1024)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			lines += bytes.Count(buf[:n], []byte{'\n'})
			last = buf[n-1]
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, err
		}
	}
	if last != '\n' {
		lines++
	}
	return lines, nil
}
