package main

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingData is matched by every error caused by an output file that
	// does not exist or holds fewer samples than the sweep has entries.
	ErrMissingData = errors.New("missing timing data")

	// ErrNoSample means a counter program exited successfully but did not
	// append anything to its output file.
	ErrNoSample = errors.New("no timing sample appended")
)

type InvocationError struct {
	Implementation string
	Threads        int
	Stderr         string
	Err            error
}

func (e *InvocationError) Error() string {
	msg := fmt.Sprintf("%s with %d threads: %v", e.Implementation, e.Threads, e.Err)
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += ": " + stderr
	}
	return msg
}

func (e *InvocationError) Unwrap() error {
	return e.Err
}

type ShortFileError struct {
	Path string
	Want int
	Got  int
}

func (e *ShortFileError) Error() string {
	return fmt.Sprintf("%s: %v: want %d samples, got %d", e.Path, ErrMissingData, e.Want, e.Got)
}

func (e *ShortFileError) Is(target error) bool {
	return target == ErrMissingData
}

// ParseError reports a line that is not a finite number. Line is 1-based.
type ParseError struct {
	Path string
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: invalid timing sample %q: %v", e.Path, e.Line, e.Text, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
