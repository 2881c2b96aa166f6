package fio

// Config is the configuration of the fio job-file translator.
type Config struct {
	// Directory is the mount point the benchmark runs against.
	Directory string `yaml:"directory"`
	// Section is the name of the single job section.
	Section string `yaml:"section"`
	// IOPSLog is the file name prefix for the IOPS log.
	IOPSLog string `yaml:"iops_log"`
	// BandwidthLog is the file name prefix for the bandwidth log.
	BandwidthLog string `yaml:"bw_log"`
	// LatencyLog is the file name prefix for the latency log.
	LatencyLog string `yaml:"lat_log"`
	// Suffix is the extension of generated job files.
	Suffix string `yaml:"suffix"`
}

func DefaultConfig() *Config {
	return &Config{
		Directory:    "/datadir",
		Section:      "job",
		IOPSLog:      "iops.log",
		BandwidthLog: "bw.log",
		LatencyLog:   "lat.log",
		Suffix:       "fio",
	}
}
