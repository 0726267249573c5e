package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"k8s.io/klog/v2"
)

var (
	configPath string
	plotOnly   bool
)

func init() {
	klog.InitFlags(nil)
	flag.StringVar(&configPath, "config", "", "yaml file describing the sweep and the counter programs (built-in defaults when empty)")
	flag.BoolVar(&plotOnly, "plot-only", false, "skip running the counter programs and plot the existing output files")
}

func main() {
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx)
	stop()
	if err != nil {
		klog.ErrorS(err, "counterbench failed")
		klog.Flush()
		os.Exit(1)
	}
	klog.Flush()
}

func run(ctx context.Context) error {
	c, err := loadConfiguration(configPath)
	if err != nil {
		return fmt.Errorf("unable to load configuration: %w", err)
	}

	if !plotOnly {
		revision, err := sourceRevision(c.WorkDir)
		if err != nil {
			klog.ErrorS(err, "Unable to determine source revision", "dir", c.WorkDir)
		}
		klog.InfoS("Run benchmarks", "dir", c.WorkDir, "revision", revision, "sweep", c.Sweep, "implementations", len(c.Implementations))
		if err := runAll(ctx, c); err != nil {
			return fmt.Errorf("failed to run a benchmark: %w", err)
		}
	}

	ch, err := renderComparisonChart(c)
	if err != nil {
		return err
	}

	showResult(os.Stdout, ch)
	return nil
}
