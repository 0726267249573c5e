package main

import (
	"fmt"
	"image/color"
	"io/ioutil"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/brewer"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"k8s.io/klog/v2"
)

const (
	xAxisLabel = "Number of Threads"
	yAxisLabel = "Running Time (ms)"
)

type series struct {
	Label  string
	Points plotter.XYs
}

type chart struct {
	Title      string
	XAxisLabel string
	YAxisLabel string
	XTicks     []int
	Series     []series
}

// renderComparisonChart reads every implementation's samples, draws one curve
// per implementation and writes the image to the configured chart path.
// Nothing is written unless all samples could be read.
func renderComparisonChart(c *Configuration) (*chart, error) {
	ch, err := loadChart(c)
	if err != nil {
		return nil, err
	}
	w, h, err := c.chartSize()
	if err != nil {
		return nil, err
	}
	if err := saveChart(ch, c.Chart.Path, w, h); err != nil {
		return nil, fmt.Errorf("failed to save chart: %w", err)
	}
	klog.InfoS("Saved chart", "path", c.Chart.Path, "series", len(ch.Series))
	return ch, nil
}

func loadChart(c *Configuration) (*chart, error) {
	ch := &chart{
		Title:      c.Chart.Title,
		XAxisLabel: xAxisLabel,
		YAxisLabel: yAxisLabel,
		XTicks:     append([]int(nil), c.Sweep...),
		Series:     make([]series, 0, len(c.Implementations)),
	}
	for _, impl := range c.Implementations {
		samples, err := readSamples(impl.Output, len(c.Sweep))
		if err != nil {
			return nil, fmt.Errorf("unable to load samples of %s: %w", impl.Name, err)
		}
		points := make(plotter.XYs, len(c.Sweep))
		for i, threads := range c.Sweep {
			points[i].X = float64(threads)
			points[i].Y = float64(samples[i])
		}
		ch.Series = append(ch.Series, series{Label: impl.Name, Points: points})
	}
	return ch, nil
}

func setupPlot(ch *chart) *plot.Plot {
	p := plot.New()

	p.Title.Text = ch.Title
	p.X.Label.Text = ch.XAxisLabel
	p.Y.Label.Text = ch.YAxisLabel

	// A log scale needs a non-degenerate positive range.
	if len(ch.XTicks) > 1 {
		p.X.Scale = plot.LogScale{}
	}

	xTicks := make([]plot.Tick, len(ch.XTicks))
	for i, threads := range ch.XTicks {
		xTicks[i] = plot.Tick{Value: float64(threads), Label: strconv.Itoa(threads)}
	}
	p.X.Tick.Marker = plot.ConstantTicks(xTicks)

	p.Legend.Top = true
	p.Legend.Padding = 1 * vg.Millimeter

	return p
}

func plotLines(ch *chart) (*plot.Plot, error) {
	p := setupPlot(ch)

	colors, err := seriesColors(len(ch.Series))
	if err != nil {
		return nil, err
	}

	for i, s := range ch.Series {
		line, points, err := plotter.NewLinePoints(s.Points)
		if err != nil {
			return nil, fmt.Errorf("invalid points for %s: %w", s.Label, err)
		}
		line.Color = colors[i]
		line.Width = vg.Points(1.5)
		points.Color = colors[i]
		points.Shape = draw.CircleGlyph{}
		points.Radius = vg.Points(3)

		p.Add(line, points)
		p.Legend.Add(s.Label, line, points)
	}

	p.Y.Min = 0
	p.Y.Max *= 1.1

	return p, nil
}

func seriesColors(n int) ([]color.Color, error) {
	size := n
	if size < 3 {
		size = 3
	}
	if size > 8 {
		size = 8
	}
	palette, err := brewer.GetPalette(brewer.TypeQualitative, "Dark2", size)
	if err != nil {
		return nil, err
	}
	available := palette.Colors()
	colors := make([]color.Color, n)
	for i := range colors {
		colors[i] = available[i%len(available)]
	}
	return colors, nil
}

// saveChart renders ch into a temporary file next to path and renames it into
// place, so a failure never leaves a partial image behind.
func saveChart(ch *chart, path string, w, h vg.Length) error {
	p, err := plotLines(ch)
	if err != nil {
		return err
	}

	format := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	wt, err := p.WriterTo(w, h, format)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmp, err := ioutil.TempFile(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := wt.WriteTo(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
