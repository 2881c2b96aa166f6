package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/litmus-bench/benchgen/common/go/xcmd"
	"github.com/litmus-bench/benchgen/memcheck"
)

var memcheckCmdArgs struct {
	Samples   int
	Interval  time.Duration
	Threshold float64
	Source    string
}

var memcheckCmd = &cobra.Command{
	Use:   "memcheck",
	Short: "Sample memory utilization and print a pass/fail verdict",
	Args:  cobra.NoArgs,
	Run: func(c *cobra.Command, _ []string) {
		if code := memcheckExitCode(runMemcheck(c)); code != 0 {
			os.Exit(code)
		}
	},
}

// memcheckExitCode maps the sampling outcome onto the process exit code.
func memcheckExitCode(passed bool, err error) int {
	if err != nil {
		if !errors.As(err, &xcmd.Interrupted{}) {
			fmt.Printf("ERROR: %v\n", err)
		}
		return 1
	}
	if !passed {
		return 1
	}

	return 0
}

func init() {
	memcheckCmd.Flags().IntVar(&memcheckCmdArgs.Samples, "samples", 0, "Number of samples (overrides config)")
	memcheckCmd.Flags().DurationVar(&memcheckCmdArgs.Interval, "interval", 0, "Pause between samples (overrides config)")
	memcheckCmd.Flags().Float64Var(&memcheckCmdArgs.Threshold, "threshold", 0, "Maximum total/used ratio (overrides config)")
	memcheckCmd.Flags().StringVar(&memcheckCmdArgs.Source, "source", "", "Memory statistics source: free or gopsutil (overrides config)")
}

func runMemcheck(c *cobra.Command) (bool, error) {
	cfg, log, err := setup()
	if err != nil {
		return false, err
	}
	defer log.Sync()

	mc := cfg.Memcheck
	if c.Flags().Changed("samples") {
		mc.Samples = memcheckCmdArgs.Samples
	}
	if c.Flags().Changed("interval") {
		mc.Interval = memcheckCmdArgs.Interval
	}
	if c.Flags().Changed("threshold") {
		mc.Threshold = memcheckCmdArgs.Threshold
	}
	if c.Flags().Changed("source") {
		mc.Source = memcheckCmdArgs.Source
	}
	if err := mc.Validate(); err != nil {
		return false, err
	}

	reader, err := memcheck.NewReader(mc, log)
	if err != nil {
		return false, err
	}
	sampler := memcheck.NewSampler(mc, reader, memcheck.WithLog(log))

	var report *memcheck.Report
	err = xcmd.RunInterruptible(context.Background(), func(ctx context.Context) error {
		r, err := sampler.Run(ctx)
		report = r
		return err
	})
	if err != nil {
		var interrupted xcmd.Interrupted
		if errors.As(err, &interrupted) {
			log.Infof("caught signal: %v", interrupted)
		}
		return false, err
	}

	fmt.Fprintln(c.OutOrStdout(), report.Verdict())

	return report.Passed(), nil
}
