package memcheck

import (
	"fmt"
	"time"
)

// Memory statistics sources.
const (
	SourceFree     = "free"
	SourceGopsutil = "gopsutil"
)

// Config is the configuration of the memory sampler.
type Config struct {
	// Samples is the number of utilization samples taken.
	Samples int `yaml:"samples"`
	// Interval is the pause between two consecutive samples.
	Interval time.Duration `yaml:"interval"`
	// Threshold is the maximum allowed total/used ratio.
	Threshold float64 `yaml:"threshold"`
	// Source selects where memory counters are read from.
	Source string `yaml:"source"`
	// FreeCommand is the command line reporting memory counters in the
	// format of free(1).
	FreeCommand []string `yaml:"free_command"`
	// Retries is the number of attempts for a failed memory read.
	Retries uint `yaml:"retries"`
}

func DefaultConfig() *Config {
	return &Config{
		Samples:     10,
		Interval:    20 * time.Second,
		Threshold:   30,
		Source:      SourceFree,
		FreeCommand: []string{"free"},
		Retries:     3,
	}
}

// Validate checks the sampler configuration.
func (m *Config) Validate() error {
	if m.Samples <= 0 {
		return fmt.Errorf("samples must be positive, got %d", m.Samples)
	}
	if m.Interval < 0 {
		return fmt.Errorf("interval must not be negative, got %s", m.Interval)
	}
	switch m.Source {
	case SourceFree:
		if len(m.FreeCommand) == 0 {
			return fmt.Errorf("free_command must not be empty")
		}
	case SourceGopsutil:
	default:
		return fmt.Errorf("unsupported memory source %q", m.Source)
	}
	if m.Retries == 0 {
		return fmt.Errorf("retries must be positive")
	}

	return nil
}
