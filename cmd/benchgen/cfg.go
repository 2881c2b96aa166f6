package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/litmus-bench/benchgen/common/go/logging"
	"github.com/litmus-bench/benchgen/memcheck"
	"github.com/litmus-bench/benchgen/translator/fio"
	"github.com/litmus-bench/benchgen/translator/vdbench"
)

// EnvDataDir overrides the benchmark target directory of both translators.
const EnvDataDir = "BENCHGEN_DATA_DIR"

type Config config
type config struct {
	// Logging configuration.
	Logging logging.Config `yaml:"logging"`
	// Fio is the configuration of the fio job-file translator.
	Fio *fio.Config `yaml:"fio"`
	// Vdbench is the configuration of the vdbench parameter-file translator.
	Vdbench *vdbench.Config `yaml:"vdbench"`
	// Memcheck is the configuration of the memory sampler.
	Memcheck *memcheck.Config `yaml:"memcheck"`
}

func DefaultConfig() *Config {
	return &Config{
		Logging:  logging.DefaultConfig(),
		Fio:      fio.DefaultConfig(),
		Vdbench:  vdbench.DefaultConfig(),
		Memcheck: memcheck.DefaultConfig(),
	}
}

// LoadConfig loads the configuration from the given path.
//
// An empty path yields the default configuration.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(buf, cfg); err != nil {
		return nil, fmt.Errorf("failed to deserialize config: %w", err)
	}

	return cfg, nil
}

// LoadEnvFile loads environment variables from a dotenv file.
//
// A missing file is not an error unless it was requested explicitly.
func LoadEnvFile(path string, explicit bool) error {
	err := godotenv.Load(path)
	if err == nil {
		return nil
	}
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		return nil
	}

	return fmt.Errorf("failed to load env file %q: %w", path, err)
}

// ApplyEnv overrides configuration values from the environment.
func (m *Config) ApplyEnv() {
	if dir, ok := os.LookupEnv(EnvDataDir); ok && dir != "" {
		m.Fio.Directory = dir
		m.Vdbench.Anchor = dir
	}
}

// UnmarshalYAML serves as a proxy for validation.
//
// To avoid infinite recursion, the validating wrapper casts itself to the
// private config struct.
func (m *Config) UnmarshalYAML(value *yaml.Node) error {
	if err := value.Decode((*config)(m)); err != nil {
		return err
	}

	return m.Validate()
}

// Validate validates the tool configuration.
func (m *Config) Validate() error {
	if m.Fio == nil {
		return fmt.Errorf("fio translator is not configured")
	}
	if m.Fio.Suffix == "" {
		return fmt.Errorf("fio suffix must not be empty")
	}
	if m.Fio.Section == "" {
		return fmt.Errorf("fio section must not be empty")
	}
	if m.Vdbench == nil {
		return fmt.Errorf("vdbench translator is not configured")
	}
	if m.Vdbench.Suffix == "" {
		return fmt.Errorf("vdbench suffix must not be empty")
	}
	if m.Memcheck == nil {
		return fmt.Errorf("memcheck is not configured")
	}

	return m.Memcheck.Validate()
}
