// Package memcheck samples system memory utilization and decides whether it
// stayed within a threshold.
package memcheck

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const (
	VerdictPassed = "Test Passed"
	VerdictFailed = "Test Failed"
)

// Report is the outcome of a sampling run.
type Report struct {
	// Ratios holds one total/used ratio per sample.
	Ratios []float64
	// Threshold is the maximum ratio allowed for a sample.
	Threshold float64
}

// Passed reports whether every sample stayed within the threshold.
func (m *Report) Passed() bool {
	for _, ratio := range m.Ratios {
		if ratio > m.Threshold {
			return false
		}
	}

	return true
}

// Verdict returns the human-readable outcome.
func (m *Report) Verdict() string {
	if m.Passed() {
		return VerdictPassed
	}

	return VerdictFailed
}

// Ratio returns the utilization ratio of a sample.
//
// Note that the ratio is total over used memory, so it grows as usage drops.
func Ratio(total, used uint64) (float64, error) {
	if used == 0 {
		return 0, fmt.Errorf("used memory is zero")
	}

	return float64(total) / float64(used), nil
}

type options struct {
	Log *zap.SugaredLogger
}

func newOptions() *options {
	return &options{
		Log: zap.NewNop().Sugar(),
	}
}

// SamplerOption is a function that configures the sampler.
type SamplerOption func(*options)

// WithLog sets the logger.
func WithLog(log *zap.SugaredLogger) SamplerOption {
	return func(o *options) {
		o.Log = log
	}
}

// Sampler periodically samples memory utilization.
type Sampler struct {
	cfg    *Config
	reader MemoryReader
	log    *zap.SugaredLogger
}

// NewSampler creates a new sampler.
func NewSampler(cfg *Config, reader MemoryReader, options ...SamplerOption) *Sampler {
	opts := newOptions()
	for _, o := range options {
		o(opts)
	}

	return &Sampler{
		cfg:    cfg,
		reader: reader,
		log:    opts.Log,
	}
}

// Run reads the total memory once and then takes the configured number of
// samples, pausing between them.
//
// Run blocks for roughly (samples - 1) * interval and returns early with
// the context error when the context is canceled.
func (m *Sampler) Run(ctx context.Context) (*Report, error) {
	total, err := m.reader.Total(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read total memory: %w", err)
	}

	m.log.Infow("starting memory sampling",
		zap.String("total", total.HumanReadable()),
		zap.Int("samples", m.cfg.Samples),
		zap.Duration("interval", m.cfg.Interval),
		zap.Float64("threshold", m.cfg.Threshold),
	)

	report := &Report{
		Ratios:    make([]float64, 0, m.cfg.Samples),
		Threshold: m.cfg.Threshold,
	}

	for idx := range m.cfg.Samples {
		if idx > 0 {
			if err := sleep(ctx, m.cfg.Interval); err != nil {
				return nil, err
			}
		}

		used, err := m.reader.Used(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to read used memory for sample %d: %w", idx, err)
		}

		ratio, err := Ratio(total.Bytes(), used.Bytes())
		if err != nil {
			return nil, fmt.Errorf("sample %d: %w", idx, err)
		}
		report.Ratios = append(report.Ratios, ratio)

		m.log.Debugw("memory sample",
			zap.Int("sample", idx),
			zap.String("used", used.HumanReadable()),
			zap.Float64("ratio", ratio),
		)
	}

	m.log.Infow("memory sampling finished", zap.Float64s("ratios", report.Ratios), zap.Bool("passed", report.Passed()))

	return report, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
