// Package fio translates workload templates into fio job files.
package fio

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"

	"go.uber.org/zap"
	"gopkg.in/ini.v1"

	"github.com/litmus-bench/benchgen/common/go/orderedmap"
	"github.com/litmus-bench/benchgen/workload"
)

// Params is the ordered set of job parameters.
type Params = orderedmap.Map[string, string]

type options struct {
	Log *zap.SugaredLogger
}

func newOptions() *options {
	return &options{
		Log: zap.NewNop().Sugar(),
	}
}

// TranslatorOption is a function that configures the translator.
type TranslatorOption func(*options)

// WithLog sets the logger.
func WithLog(log *zap.SugaredLogger) TranslatorOption {
	return func(o *options) {
		o.Log = log
	}
}

// Translator maps workload templates onto fio job parameters.
type Translator struct {
	cfg *Config
	log *zap.SugaredLogger
}

// NewTranslator creates a new fio translator.
func NewTranslator(cfg *Config, options ...TranslatorOption) *Translator {
	opts := newOptions()
	for _, o := range options {
		o(opts)
	}

	return &Translator{
		cfg: cfg,
		log: opts.Log,
	}
}

func (m *Translator) Name() string {
	return "fio"
}

func (m *Translator) Suffix() string {
	return m.cfg.Suffix
}

// Translate maps the workload onto fio job parameters.
//
// Parameters are accumulated in a fixed order. Later writes of the same key
// replace the earlier value in place.
func (m *Translator) Translate(spec *workload.Spec) (*Params, error) {
	params := orderedmap.New[string, string]()

	params.Set("name", spec.Name)
	params.Set("directory", m.cfg.Directory)
	params.Set("bs", spec.IOSize)
	params.Set("rwmixread", strconv.Itoa(spec.RWRatio))
	params.Set("numjobs", strconv.Itoa(spec.NumWorkers))
	params.Set("nrfiles", strconv.Itoa(spec.NumFiles))
	params.Set("filesize", strconv.Itoa(spec.FileSize)+"M")
	params.Set("ramp_time", strconv.Itoa(spec.Warmup))
	params.Set("runtime", strconv.Itoa(spec.Duration))
	params.Set("blockalign", spec.IOAlignment)
	params.Set("dedupe_percentage", strconv.Itoa(spec.DedupePercentage))
	params.Set("buffer_compress_percentage", strconv.Itoa(spec.CompressPercentage))

	mode, err := ReadWriteMode(spec.AccessPattern, spec.RWRatio)
	if err != nil {
		return nil, err
	}
	params.Set("readwrite", mode)

	if spec.AccessPattern == workload.AccessRandom {
		params.Set("randrepeat", "0")
		params.Set("norandommap", "1")
		params.Set("refill_buffers", "1")
	}

	if !spec.BufferedIO {
		params.Set("buffered", "0")
		params.Set("invalidate", "1")
	}

	switch spec.DataTransfer {
	case workload.TransferAsync:
		params.Set("ioengine", "libaio")
		params.Set("iodepth", strconv.Itoa(spec.QueueDepth))
	case workload.TransferSync:
		params.Set("ioengine", "sync")
	default:
		return nil, fmt.Errorf("unsupported data transfer mode %q", spec.DataTransfer)
	}

	if spec.BurstIO {
		params.Set("rate_process", "poisson")
	}

	params.Set("time_based", "1")
	params.Set("group_reporting", "1")
	params.Set("per_job_logs", "0")
	params.Set("write_iops_log", m.cfg.IOPSLog)
	params.Set("write_bw_log", m.cfg.BandwidthLog)
	params.Set("write_lat_log", m.cfg.LatencyLog)

	m.log.Debugw("translated workload into fio job",
		zap.String("name", spec.Name),
		zap.String("readwrite", mode),
		zap.Int("params", params.Len()),
	)

	return params, nil
}

// ReadWriteMode selects the fio I/O mode for the given access pattern and
// read percentage.
func ReadWriteMode(pattern workload.AccessPattern, readRatio int) (string, error) {
	var prefix string
	switch pattern {
	case workload.AccessRandom:
		prefix = "rand"
	case workload.AccessSequential:
	default:
		return "", fmt.Errorf("unsupported access pattern %q", pattern)
	}

	switch readRatio {
	case 0:
		return prefix + "write", nil
	case 100:
		return prefix + "read", nil
	default:
		return prefix + "rw", nil
	}
}

// Encode writes the parameters as a single-section job file.
//
// Lines are written as plain "key=value" pairs. INI quoting is never applied
// since fio reads values up to the end of line.
func (m *Translator) Encode(w io.Writer, params *Params) error {
	file := ini.Empty()

	section, err := file.NewSection(m.cfg.Section)
	if err != nil {
		return fmt.Errorf("failed to create section %q: %w", m.cfg.Section, err)
	}

	for key, value := range params.All() {
		if _, err := section.NewKey(key, value); err != nil {
			return fmt.Errorf("failed to add key %q: %w", key, err)
		}
	}

	buf := bufio.NewWriter(w)
	fmt.Fprintf(buf, "[%s]\n", section.Name())
	for _, key := range section.Keys() {
		fmt.Fprintf(buf, "%s=%s\n", key.Name(), key.Value())
	}

	if err := buf.Flush(); err != nil {
		return fmt.Errorf("failed to write job file: %w", err)
	}

	return nil
}

// Render translates the workload and returns the encoded job file.
func (m *Translator) Render(spec *workload.Spec) ([]byte, error) {
	params, err := m.Translate(spec)
	if err != nil {
		return nil, err
	}

	buf := &bytes.Buffer{}
	if err := m.Encode(buf, params); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
