package main

import (
	"fmt"
	"io/ioutil"
	"path/filepath"
	"strings"
	"time"

	"gonum.org/v1/plot/vg"
	"gopkg.in/yaml.v2"
)

var defaultSweep = []int{1, 2, 4, 8, 16, 32}

var defaultImplementations = []string{
	"atomic_counter",
	"naive_counter",
	"naive_counter_plus",
	"scalable_counter",
}

func defaultConfiguration() *Configuration {
	truncate := true
	return &Configuration{
		WorkDir:  ".",
		Truncate: &truncate,
		Chart: ChartConfiguration{
			Path:   "data.png",
			Width:  "9in",
			Height: "6in",
		},
	}
}

// loadConfiguration reads the yaml file at path, or starts from an empty
// configuration when path is empty, then fills in defaults, validates it and
// resolves every relative path against the working directory.
func loadConfiguration(path string) (*Configuration, error) {
	c := &Configuration{}
	if path != "" {
		data, err := ioutil.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.UnmarshalStrict(data, c); err != nil {
			return nil, fmt.Errorf("invalid configuration %s: %w", path, err)
		}
	}
	c.applyDefaults(defaultConfiguration())
	if err := c.validate(); err != nil {
		return nil, err
	}
	if err := c.resolve(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Configuration) applyDefaults(d *Configuration) *Configuration {
	if c.WorkDir == "" {
		c.WorkDir = d.WorkDir
	}
	if len(c.Sweep) == 0 {
		c.Sweep = append([]int(nil), defaultSweep...)
	}
	if c.Truncate == nil {
		c.Truncate = d.Truncate
	}
	if c.Chart.Path == "" {
		c.Chart.Path = d.Chart.Path
	}
	if c.Chart.Width == "" {
		c.Chart.Width = d.Chart.Width
	}
	if c.Chart.Height == "" {
		c.Chart.Height = d.Chart.Height
	}
	if len(c.Implementations) == 0 {
		for _, name := range defaultImplementations {
			c.Implementations = append(c.Implementations, Implementation{Name: name})
		}
	}
	for idx := range c.Implementations {
		c.Implementations[idx].applyDefaults()
	}
	return c
}

func (i *Implementation) applyDefaults() {
	if i.Executable == "" {
		i.Executable = "./" + i.Name
	}
	if i.Output == "" {
		i.Output = i.Name + "_data.txt"
	}
}

func (c *Configuration) validate() error {
	if !versionRequired(c.Requires, Version) {
		return fmt.Errorf("configuration requires version %q, this is %s", c.Requires, Version)
	}

	seen := make(map[int]bool)
	for _, t := range c.Sweep {
		if t <= 0 {
			return fmt.Errorf("sweep entries must be positive, got %d", t)
		}
		if seen[t] {
			return fmt.Errorf("sweep entry %d appears more than once", t)
		}
		seen[t] = true
	}

	if _, err := c.timeout(); err != nil {
		return err
	}
	if _, _, err := c.chartSize(); err != nil {
		return err
	}
	switch ext := strings.ToLower(filepath.Ext(c.Chart.Path)); ext {
	case ".png", ".jpg", ".jpeg", ".tif", ".tiff", ".svg", ".pdf", ".eps", ".tex":
	default:
		return fmt.Errorf("unsupported chart format %q for %s", ext, c.Chart.Path)
	}

	names := make(map[string]bool)
	outputs := make(map[string]string)
	for _, impl := range c.Implementations {
		if impl.Name == "" {
			return fmt.Errorf("implementation with executable '%s' has no name", impl.Executable)
		}
		if names[impl.Name] {
			return fmt.Errorf("more than one implementation named '%s'", impl.Name)
		}
		names[impl.Name] = true
		output := filepath.Clean(c.path(impl.Output))
		if other, ok := outputs[output]; ok {
			return fmt.Errorf("implementations '%s' and '%s' share output file %s", other, impl.Name, impl.Output)
		}
		outputs[output] = impl.Name
	}
	return nil
}

// resolve makes the working directory absolute and joins every relative
// output, executable and chart path onto it. Executables given as a bare name
// are left alone so they are looked up in PATH.
func (c *Configuration) resolve() error {
	dir, err := filepath.Abs(c.WorkDir)
	if err != nil {
		return fmt.Errorf("unable to resolve working directory %s: %w", c.WorkDir, err)
	}
	c.WorkDir = dir
	for idx := range c.Implementations {
		impl := &c.Implementations[idx]
		impl.Output = c.path(impl.Output)
		if strings.ContainsRune(impl.Executable, filepath.Separator) || strings.ContainsRune(impl.Executable, '/') {
			impl.Executable = c.path(impl.Executable)
		}
	}
	c.Chart.Path = c.path(c.Chart.Path)
	return nil
}

func (c *Configuration) path(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.WorkDir, p)
}

func (c *Configuration) timeout() (time.Duration, error) {
	if c.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", c.Timeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("timeout must not be negative, got %s", d)
	}
	return d, nil
}

func (c *Configuration) chartSize() (vg.Length, vg.Length, error) {
	w, err := vg.ParseLength(c.Chart.Width)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid chart width %q: %w", c.Chart.Width, err)
	}
	h, err := vg.ParseLength(c.Chart.Height)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid chart height %q: %w", c.Chart.Height, err)
	}
	if w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("chart size must be positive, got %sx%s", c.Chart.Width, c.Chart.Height)
	}
	return w, h, nil
}

func (c *Configuration) truncate() bool {
	return c.Truncate != nil && *c.Truncate
}
