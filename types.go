package main

type ChartConfiguration struct {
	Path   string `yaml:"path"`
	Title  string `yaml:"title"`
	Width  string `yaml:"width"`
	Height string `yaml:"height"`
}

// Implementation is one counter program. Output is the file the program
// appends its timing sample to; it must be unique across implementations.
type Implementation struct {
	Name       string `yaml:"name"`
	Executable string `yaml:"executable"`
	Output     string `yaml:"output"`
}

type Configuration struct {
	Requires        string             `yaml:"requires"`
	WorkDir         string             `yaml:"workDir"`
	Sweep           []int              `yaml:"sweep"`
	Truncate        *bool              `yaml:"truncate,omitempty"`
	Timeout         string             `yaml:"timeout"`
	Chart           ChartConfiguration `yaml:"chart"`
	Implementations []Implementation   `yaml:"implementations"`
}
