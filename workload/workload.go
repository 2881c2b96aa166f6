// Package workload describes abstract I/O benchmark workloads as they are
// written in YAML templates.
package workload

import (
	"fmt"

	"github.com/c2h5oh/datasize"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/text/cases"
	"gopkg.in/yaml.v3"
)

// AccessPattern is the way a workload walks over its files.
type AccessPattern string

const (
	AccessRandom     AccessPattern = "Random"
	AccessSequential AccessPattern = "Sequential"
)

// TransferMode selects between synchronous and asynchronous data transfer.
type TransferMode string

const (
	TransferAsync TransferMode = "async"
	TransferSync  TransferMode = "sync"
)

// ParseAccessPattern returns the canonical access pattern for the given
// value, ignoring case.
func ParseAccessPattern(v string) (AccessPattern, error) {
	for _, p := range []AccessPattern{AccessRandom, AccessSequential} {
		if fold(v) == fold(string(p)) {
			return p, nil
		}
	}

	return "", fmt.Errorf("unsupported access pattern %q: must be one of %q, %q", v, AccessRandom, AccessSequential)
}

// ParseTransferMode returns the canonical transfer mode for the given value,
// ignoring case.
func ParseTransferMode(v string) (TransferMode, error) {
	for _, m := range []TransferMode{TransferAsync, TransferSync} {
		if fold(v) == fold(string(m)) {
			return m, nil
		}
	}

	return "", fmt.Errorf("unsupported data transfer mode %q: must be one of %q, %q", v, TransferAsync, TransferSync)
}

// Fold returns the case-folded form of the access pattern, as expected by
// tools that take lowercase keywords.
func (m AccessPattern) Fold() string {
	return fold(string(m))
}

func fold(v string) string {
	return cases.Fold().String(v)
}

// Keys of the workload template.
const (
	KeyName               = "NAME"
	KeyIOSize             = "IO_SIZE"
	KeyRWRatio            = "RW_RATIO"
	KeyNumWorkers         = "NUM_WORKERS"
	KeyNumFiles           = "NUM_FILES"
	KeyFileSize           = "FILE_SIZE"
	KeyWarmup             = "WARMUP"
	KeyDuration           = "DURATION"
	KeyIOAlignment        = "IO_ALIGNMENT"
	KeyDedupePercentage   = "DEDUPE_PERCENTAGE"
	KeyCompressPercentage = "COMPRESS_PERCENTAGE"
	KeyAccessPattern      = "ACCESS_PATTERN"
	KeyBufferedIO         = "BUFFERED_IO"
	KeyDataTransfer       = "DATA_TRANSFER"
	KeyQueueDepth         = "QUEUE_DEPTH"
	KeyBurstIO            = "BURST_IO"
)

// RequiredKeys lists the keys every workload template must define.
//
// QUEUE_DEPTH is only required for asynchronous data transfer and is checked
// separately.
var RequiredKeys = []string{
	KeyName,
	KeyIOSize,
	KeyRWRatio,
	KeyNumWorkers,
	KeyNumFiles,
	KeyFileSize,
	KeyWarmup,
	KeyDuration,
	KeyIOAlignment,
	KeyDedupePercentage,
	KeyCompressPercentage,
	KeyAccessPattern,
	KeyBufferedIO,
	KeyDataTransfer,
	KeyBurstIO,
}

type Spec spec
type spec struct {
	// Name of the workload, used to derive tool-specific job names.
	Name string `yaml:"NAME"`
	// IOSize is the size of a single I/O in the target tool syntax, e.g.
	// "4k". It is emitted verbatim.
	IOSize string `yaml:"IO_SIZE"`
	// RWRatio is the percentage of reads in the I/O mix.
	RWRatio int `yaml:"RW_RATIO"`
	// NumWorkers is the number of concurrent workers.
	NumWorkers int `yaml:"NUM_WORKERS"`
	// NumFiles is the number of files the workload spreads over.
	NumFiles int `yaml:"NUM_FILES"`
	// FileSize is the size of each file in megabytes.
	FileSize int `yaml:"FILE_SIZE"`
	// Warmup is the warm-up period in seconds.
	Warmup int `yaml:"WARMUP"`
	// Duration is the measured run time in seconds.
	Duration int `yaml:"DURATION"`
	// IOAlignment is the I/O offset alignment.
	IOAlignment string `yaml:"IO_ALIGNMENT"`
	// DedupePercentage is the percentage of deduplicable data.
	DedupePercentage int `yaml:"DEDUPE_PERCENTAGE"`
	// CompressPercentage is the percentage of compressible data.
	CompressPercentage int           `yaml:"COMPRESS_PERCENTAGE"`
	AccessPattern      AccessPattern `yaml:"ACCESS_PATTERN"`
	// BufferedIO enables the OS page cache.
	BufferedIO   bool         `yaml:"BUFFERED_IO"`
	DataTransfer TransferMode `yaml:"DATA_TRANSFER"`
	// QueueDepth is the number of in-flight I/Os for asynchronous transfer.
	QueueDepth int `yaml:"QUEUE_DEPTH"`
	// BurstIO switches the I/O arrival process to a Poisson one.
	BurstIO bool `yaml:"BURST_IO"`
}

// UnmarshalYAML checks that every required key is present before decoding
// and validates the result.
//
// The wrapper casts itself to the private spec struct to let the decoder
// handle it with the default behavior.
func (m *Spec) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: workload template must be a mapping", value.Line)
	}

	if err := checkRequired(value); err != nil {
		return err
	}

	if err := value.Decode((*spec)(m)); err != nil {
		return err
	}

	return m.Validate()
}

func checkRequired(value *yaml.Node) error {
	present := map[string]struct{}{}
	for idx := 0; idx+1 < len(value.Content); idx += 2 {
		k, v := value.Content[idx], value.Content[idx+1]
		if v.ShortTag() == "!!null" {
			continue
		}
		present[k.Value] = struct{}{}
	}

	var errs *multierror.Error
	for _, key := range RequiredKeys {
		if _, ok := present[key]; !ok {
			errs = multierror.Append(errs, fmt.Errorf("missing required key %q", key))
		}
	}

	return errs.ErrorOrNil()
}

// Validate checks field ranges and normalizes enum values to their canonical
// spelling.
func (m *Spec) Validate() error {
	var errs *multierror.Error

	if m.Name == "" {
		errs = multierror.Append(errs, fmt.Errorf("%s must not be empty", KeyName))
	}
	// Sizes are passed to the tools verbatim and may use any syntax they
	// accept, e.g. fio ranges like "4k,16k".
	if m.IOSize == "" {
		errs = multierror.Append(errs, fmt.Errorf("%s must not be empty", KeyIOSize))
	}
	if m.IOAlignment == "" {
		errs = multierror.Append(errs, fmt.Errorf("%s must not be empty", KeyIOAlignment))
	}
	if m.RWRatio < 0 || m.RWRatio > 100 {
		errs = multierror.Append(errs, fmt.Errorf("%s must be in [0, 100], got %d", KeyRWRatio, m.RWRatio))
	}
	if m.NumWorkers <= 0 {
		errs = multierror.Append(errs, fmt.Errorf("%s must be positive, got %d", KeyNumWorkers, m.NumWorkers))
	}
	if m.NumFiles <= 0 {
		errs = multierror.Append(errs, fmt.Errorf("%s must be positive, got %d", KeyNumFiles, m.NumFiles))
	}
	if m.FileSize <= 0 {
		errs = multierror.Append(errs, fmt.Errorf("%s must be positive, got %d", KeyFileSize, m.FileSize))
	}
	if m.Warmup < 0 {
		errs = multierror.Append(errs, fmt.Errorf("%s must not be negative, got %d", KeyWarmup, m.Warmup))
	}
	if m.Duration <= 0 {
		errs = multierror.Append(errs, fmt.Errorf("%s must be positive, got %d", KeyDuration, m.Duration))
	}
	// 100% would make the reduction ratio infinite.
	if m.DedupePercentage < 0 || m.DedupePercentage >= 100 {
		errs = multierror.Append(errs, fmt.Errorf("%s must be in [0, 100), got %d", KeyDedupePercentage, m.DedupePercentage))
	}
	if m.CompressPercentage < 0 || m.CompressPercentage >= 100 {
		errs = multierror.Append(errs, fmt.Errorf("%s must be in [0, 100), got %d", KeyCompressPercentage, m.CompressPercentage))
	}

	pattern, err := ParseAccessPattern(string(m.AccessPattern))
	if err != nil {
		errs = multierror.Append(errs, fmt.Errorf("%s: %w", KeyAccessPattern, err))
	} else {
		m.AccessPattern = pattern
	}

	mode, err := ParseTransferMode(string(m.DataTransfer))
	if err != nil {
		errs = multierror.Append(errs, fmt.Errorf("%s: %w", KeyDataTransfer, err))
	} else {
		m.DataTransfer = mode
	}

	if m.DataTransfer == TransferAsync && m.QueueDepth <= 0 {
		errs = multierror.Append(errs, fmt.Errorf("%s must be positive for %s transfer, got %d", KeyQueueDepth, TransferAsync, m.QueueDepth))
	}

	return errs.ErrorOrNil()
}

// FileSizeBytes returns the per-file size in bytes.
func (m *Spec) FileSizeBytes() datasize.ByteSize {
	return datasize.ByteSize(m.FileSize) * datasize.MB
}
