package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoCounterConfiguration(t *testing.T, dir string, extra string) *Configuration {
	t.Helper()
	return writeConfiguration(t, dir, fmt.Sprintf(`
workDir: %s
sweep: [1, 2, 4]
implementations:
  - name: first
  - name: second
%s`, dir, extra))
}

func TestRunAllOrder(t *testing.T) {
	skipWithoutShell(t)
	dir := t.TempDir()
	writeWellBehavedCounter(t, dir, "first", 100)
	writeWellBehavedCounter(t, dir, "second", 60)
	c := twoCounterConfiguration(t, dir, "")

	require.NoError(t, runAll(context.Background(), c))

	assert.Equal(t, []string{
		"first 1", "second 1",
		"first 2", "second 2",
		"first 4", "second 4",
	}, readLines(t, filepath.Join(dir, "invocations.log")))
	assert.Equal(t, []string{"100.75", "50.75", "25.75"}, readLines(t, filepath.Join(dir, "first_data.txt")))
	assert.Equal(t, []string{"60.75", "30.75", "15.75"}, readLines(t, filepath.Join(dir, "second_data.txt")))
}

func TestRunAllTruncatesOutputs(t *testing.T) {
	skipWithoutShell(t)
	dir := t.TempDir()
	writeWellBehavedCounter(t, dir, "first", 100)
	writeWellBehavedCounter(t, dir, "second", 60)
	writeLines(t, filepath.Join(dir, "first_data.txt"), "1", "1", "1", "1")
	c := twoCounterConfiguration(t, dir, "")

	require.NoError(t, runAll(context.Background(), c))
	require.NoError(t, runAll(context.Background(), c))

	samples, err := readSamples(c.Implementations[0].Output, len(c.Sweep))
	require.NoError(t, err)
	assert.Equal(t, []int{100, 50, 25}, samples)
	assert.Len(t, readLines(t, c.Implementations[0].Output), len(c.Sweep))
	assert.Len(t, readLines(t, c.Implementations[1].Output), len(c.Sweep))
}

// With truncation disabled samples accumulate and the chart keeps showing the
// earliest run, because only the first len(sweep) lines are read.
func TestRunAllAccumulatesWithoutTruncate(t *testing.T) {
	skipWithoutShell(t)
	dir := t.TempDir()
	writeWellBehavedCounter(t, dir, "first", 100)
	writeWellBehavedCounter(t, dir, "second", 60)
	c := twoCounterConfiguration(t, dir, "truncate: false\n")

	require.NoError(t, runAll(context.Background(), c))
	writeWellBehavedCounter(t, dir, "first", 800)
	require.NoError(t, runAll(context.Background(), c))

	assert.Equal(t, []string{"100.75", "50.75", "25.75", "800.75", "400.75", "200.75"}, readLines(t, c.Implementations[0].Output))

	ch, err := loadChart(c)
	require.NoError(t, err)
	assert.Equal(t, 100.0, ch.Series[0].Points[0].Y)
	assert.Equal(t, 25.0, ch.Series[0].Points[2].Y)
}

func TestRunAllInvocationFailure(t *testing.T) {
	skipWithoutShell(t)
	dir := t.TempDir()
	writeCounter(t, dir, "first", "echo \"first $1\" >> invocations.log\necho boom >&2\nexit 3")
	writeWellBehavedCounter(t, dir, "second", 60)
	c := twoCounterConfiguration(t, dir, "")

	err := runAll(context.Background(), c)
	require.Error(t, err)

	var invocationErr *InvocationError
	require.True(t, errors.As(err, &invocationErr))
	assert.Equal(t, "first", invocationErr.Implementation)
	assert.Equal(t, 1, invocationErr.Threads)
	assert.Equal(t, "boom\n", invocationErr.Stderr)
	assert.Contains(t, err.Error(), "exit status 3")

	assert.Equal(t, []string{"first 1"}, readLines(t, filepath.Join(dir, "invocations.log")), "nothing runs after a failure")
}

func TestRunAllMissingExecutable(t *testing.T) {
	skipWithoutShell(t)
	dir := t.TempDir()
	writeWellBehavedCounter(t, dir, "first", 100)
	c := twoCounterConfiguration(t, dir, "")

	err := runAll(context.Background(), c)

	var invocationErr *InvocationError
	require.True(t, errors.As(err, &invocationErr))
	assert.Equal(t, "second", invocationErr.Implementation)
	assert.Equal(t, 1, invocationErr.Threads)
}

func TestRunAllNoSample(t *testing.T) {
	skipWithoutShell(t)
	dir := t.TempDir()
	writeWellBehavedCounter(t, dir, "first", 100)
	writeCounter(t, dir, "second", "echo \"Counter finish in 12.000000 microseconds\"")
	c := twoCounterConfiguration(t, dir, "")

	err := runAll(context.Background(), c)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoSample))

	var invocationErr *InvocationError
	require.True(t, errors.As(err, &invocationErr))
	assert.Equal(t, "second", invocationErr.Implementation)
}

func TestRunAllTimeout(t *testing.T) {
	skipWithoutShell(t)
	dir := t.TempDir()
	writeCounter(t, dir, "first", "exec sleep 10")
	writeWellBehavedCounter(t, dir, "second", 60)
	c := twoCounterConfiguration(t, dir, "timeout: 100ms\n")

	err := runAll(context.Background(), c)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

// A counter that leaves a child holding its output pipes open must not hold
// the run past its timeout.
func TestRunAllTimeoutWithChildProcess(t *testing.T) {
	skipWithoutShell(t)
	dir := t.TempDir()
	writeCounter(t, dir, "first", "sleep 5\necho \"1.0\" >> first_data.txt")
	writeWellBehavedCounter(t, dir, "second", 60)
	c := twoCounterConfiguration(t, dir, "timeout: 100ms\n")

	start := time.Now()
	err := runAll(context.Background(), c)
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Less(t, elapsed, 3*time.Second)

	var invocationErr *InvocationError
	require.True(t, errors.As(err, &invocationErr))
	assert.Equal(t, "first", invocationErr.Implementation)
}

// lockedBuffer serializes the stdout and stderr copies os/exec makes from two
// goroutines.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestRunAllForwardsProgramOutput(t *testing.T) {
	skipWithoutShell(t)
	dir := t.TempDir()
	writeCounter(t, dir, "first", "echo \"Counter finish in 1.000000 microseconds\"\necho \"warning $1\" >&2\necho \"$1.0\" >> first_data.txt")
	writeWellBehavedCounter(t, dir, "second", 60)
	c := twoCounterConfiguration(t, dir, "")

	var out lockedBuffer
	defer func(w io.Writer) { benchmarkOutput = w }(benchmarkOutput)
	benchmarkOutput = &out

	require.NoError(t, runAll(context.Background(), c))
	assert.Contains(t, out.String(), "Counter finish in 1.000000 microseconds")
	assert.Contains(t, out.String(), "warning 4")
}

func TestRunAllCancelled(t *testing.T) {
	skipWithoutShell(t)
	dir := t.TempDir()
	writeWellBehavedCounter(t, dir, "first", 100)
	writeWellBehavedCounter(t, dir, "second", 60)
	c := twoCounterConfiguration(t, dir, "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := runAll(ctx, c)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}
