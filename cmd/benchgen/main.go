package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/litmus-bench/benchgen/common/go/logging"
)

var cmd Cmd

// Cmd is the command line arguments shared by all sub-commands.
type Cmd struct {
	// ConfigPath is the path to the configuration file.
	ConfigPath string
	// EnvFile is the path to the dotenv file.
	EnvFile string
	// LogLevel overrides the configured logging level.
	LogLevel string
}

var rootCmd = &cobra.Command{
	Use:   "benchgen",
	Short: "Benchmark configuration generator and memory checker",
	Long: `Translate declarative workload templates into native fio job files and
vdbench parameter files, and check memory utilization of the host.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cmd.ConfigPath, "config", "c", "", "Path to the configuration file")
	rootCmd.PersistentFlags().StringVar(&cmd.EnvFile, "env-file", ".env", "Path to the dotenv file")
	rootCmd.PersistentFlags().StringVar(&cmd.LogLevel, "log-level", "", "Logging level (debug, info, warn, error)")

	rootCmd.AddCommand(fioCmd)
	rootCmd.AddCommand(vdbenchCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(memcheckCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Printf("ERROR: %v\n", err)
		os.Exit(1)
	}
}

// setup loads the environment and the configuration and builds the logger.
func setup() (*Config, *zap.SugaredLogger, error) {
	explicitEnv := rootCmd.PersistentFlags().Changed("env-file")
	if err := LoadEnvFile(cmd.EnvFile, explicitEnv); err != nil {
		return nil, nil, err
	}

	cfg, err := LoadConfig(cmd.ConfigPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.ApplyEnv()

	if cmd.LogLevel != "" {
		level, err := zapcore.ParseLevel(cmd.LogLevel)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid log level: %w", err)
		}
		cfg.Logging.Level = level
	}

	log, _, err := logging.Init(&cfg.Logging)
	if err != nil {
		return nil, nil, err
	}

	return cfg, log, nil
}
