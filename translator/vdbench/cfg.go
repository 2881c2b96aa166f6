package vdbench

// Config is the configuration of the vdbench parameter-file translator.
type Config struct {
	// Anchor is the directory the file system definition is rooted at.
	Anchor string `yaml:"anchor"`
	// Depth and Width describe the directory tree under the anchor.
	//
	// Only a flat structure is generated by default.
	Depth int `yaml:"depth"`
	Width int `yaml:"width"`
	// Interval is the reporting interval in seconds.
	Interval int `yaml:"interval"`
	// FwdRate is the target operation rate, "max" for uncapped.
	FwdRate string `yaml:"fwd_rate"`
	// Format controls whether the file structure is created before the run.
	Format string `yaml:"format"`
	// Suffix is the extension of generated parameter files.
	Suffix string `yaml:"suffix"`
}

func DefaultConfig() *Config {
	return &Config{
		Anchor:   "/datadir",
		Depth:    1,
		Width:    1,
		Interval: 1,
		FwdRate:  "max",
		Format:   "yes",
		Suffix:   "vd",
	}
}
