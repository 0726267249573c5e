package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"os/exec"
	"strconv"
	"time"

	"k8s.io/klog/v2"
)

// benchmarkOutput receives what the counter programs print, such as their own
// timing and counter checks. It is kept off stdout, which holds the report.
var benchmarkOutput io.Writer = os.Stderr

// waitDelay bounds how long a killed program's inherited stdout and stderr may
// stay open, for instance by a child it started.
const waitDelay = 500 * time.Millisecond

// runAll runs every implementation once per sweep entry, sweep-major and in
// declaration order. Invocations never overlap so each program has the
// machine to itself while it measures.
func runAll(ctx context.Context, c *Configuration) error {
	timeout, err := c.timeout()
	if err != nil {
		return err
	}

	if c.truncate() {
		if err := truncateOutputs(c); err != nil {
			return err
		}
	}

	for _, threads := range c.Sweep {
		for idx := range c.Implementations {
			if err := runBenchmark(ctx, c.WorkDir, &c.Implementations[idx], threads, timeout); err != nil {
				return err
			}
		}
	}
	return nil
}

func truncateOutputs(c *Configuration) error {
	for _, impl := range c.Implementations {
		if err := ioutil.WriteFile(impl.Output, nil, 0644); err != nil {
			return fmt.Errorf("failed to truncate output of %s: %w", impl.Name, err)
		}
		klog.V(2).InfoS("Truncated output file", "implementation", impl.Name, "path", impl.Output)
	}
	return nil
}

func runBenchmark(ctx context.Context, dir string, impl *Implementation, threads int, timeout time.Duration) error {
	before, err := countLines(impl.Output)
	if err != nil {
		return fmt.Errorf("failed to inspect output of %s: %w", impl.Name, err)
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, impl.Executable, strconv.Itoa(threads))
	cmd.Dir = dir
	cmd.Stdout = benchmarkOutput
	cmd.Stderr = io.MultiWriter(&stderr, benchmarkOutput)
	cmd.WaitDelay = waitDelay

	klog.InfoS("Run benchmark", "implementation", impl.Name, "threads", threads)
	start := time.Now()
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = fmt.Errorf("%w: %v", ctxErr, err)
		}
		return &InvocationError{
			Implementation: impl.Name,
			Threads:        threads,
			Stderr:         stderr.String(),
			Err:            err,
		}
	}
	klog.V(2).InfoS("Benchmark finished", "implementation", impl.Name, "threads", threads, "elapsed", time.Since(start))

	after, err := countLines(impl.Output)
	if err != nil {
		return fmt.Errorf("failed to inspect output of %s: %w", impl.Name, err)
	}
	if after <= before {
		return &InvocationError{
			Implementation: impl.Name,
			Threads:        threads,
			Stderr:         stderr.String(),
			Err:            fmt.Errorf("%w to %s", ErrNoSample, impl.Output),
		}
	}
	return nil
}
