package memcheck

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/c2h5oh/datasize"
	"github.com/cenkalti/backoff/v5"
	"github.com/shirou/gopsutil/v4/mem"
	"go.uber.org/zap"
)

// MemoryReader reads system memory counters.
type MemoryReader interface {
	// Total returns the total amount of physical memory.
	Total(ctx context.Context) (datasize.ByteSize, error)
	// Used returns the amount of memory currently in use.
	Used(ctx context.Context) (datasize.ByteSize, error)
}

// CommandRunner runs an external command and returns its standard output.
type CommandRunner interface {
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands on the host.
type ExecRunner struct{}

func (ExecRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// MemInfo is a single snapshot of the "Mem:" row of free(1).
type MemInfo struct {
	Total datasize.ByteSize
	Used  datasize.ByteSize
}

// ParseFree parses the output of free(1), which reports kibibytes by
// default.
func ParseFree(out []byte) (MemInfo, error) {
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || fields[0] != "Mem:" {
			continue
		}
		if len(fields) < 3 {
			return MemInfo{}, fmt.Errorf("truncated memory row: %q", scanner.Text())
		}

		total, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			return MemInfo{}, fmt.Errorf("invalid total memory %q: %w", fields[1], err)
		}
		used, err := strconv.ParseUint(fields[2], 10, 64)
		if err != nil {
			return MemInfo{}, fmt.Errorf("invalid used memory %q: %w", fields[2], err)
		}

		return MemInfo{
			Total: datasize.ByteSize(total) * datasize.KB,
			Used:  datasize.ByteSize(used) * datasize.KB,
		}, nil
	}
	if err := scanner.Err(); err != nil {
		return MemInfo{}, err
	}

	return MemInfo{}, fmt.Errorf("no memory row in command output")
}

// FreeReader reads memory counters by running free(1).
type FreeReader struct {
	runner  CommandRunner
	command []string
	retries uint
	backOff backoff.BackOff
	log     *zap.SugaredLogger
}

// FreeReaderOption is a function that configures the free(1) reader.
type FreeReaderOption func(*FreeReader)

// WithRunner replaces the command runner.
func WithRunner(runner CommandRunner) FreeReaderOption {
	return func(m *FreeReader) {
		m.runner = runner
	}
}

// WithBackOff replaces the retry policy.
func WithBackOff(b backoff.BackOff) FreeReaderOption {
	return func(m *FreeReader) {
		m.backOff = b
	}
}

// WithReaderLog sets the logger.
func WithReaderLog(log *zap.SugaredLogger) FreeReaderOption {
	return func(m *FreeReader) {
		m.log = log
	}
}

// NewFreeReader creates a reader running the given command.
func NewFreeReader(command []string, retries uint, options ...FreeReaderOption) *FreeReader {
	m := &FreeReader{
		runner:  ExecRunner{},
		command: command,
		retries: retries,
		backOff: &backoff.ExponentialBackOff{
			InitialInterval:     backoff.DefaultInitialInterval,
			RandomizationFactor: backoff.DefaultRandomizationFactor,
			Multiplier:          backoff.DefaultMultiplier,
			MaxInterval:         2 * time.Second,
		},
		log: zap.NewNop().Sugar(),
	}
	for _, o := range options {
		o(m)
	}

	return m
}

func (m *FreeReader) Total(ctx context.Context) (datasize.ByteSize, error) {
	info, err := m.read(ctx)
	if err != nil {
		return 0, err
	}

	return info.Total, nil
}

func (m *FreeReader) Used(ctx context.Context) (datasize.ByteSize, error) {
	info, err := m.read(ctx)
	if err != nil {
		return 0, err
	}

	return info.Used, nil
}

// read runs the command, retrying failed runs. Unparsable output is not
// retried.
func (m *FreeReader) read(ctx context.Context) (MemInfo, error) {
	m.backOff.Reset()

	info, err := backoff.Retry(ctx, func() (MemInfo, error) {
		out, err := m.runner.Output(ctx, m.command[0], m.command[1:]...)
		if err != nil {
			m.log.Warnw("failed to run memory command", zap.Strings("command", m.command), zap.Error(err))
			return MemInfo{}, err
		}

		info, err := ParseFree(out)
		if err != nil {
			return MemInfo{}, backoff.Permanent(err)
		}

		return info, nil
	},
		backoff.WithBackOff(m.backOff),
		backoff.WithMaxTries(m.retries),
	)
	if err != nil {
		return MemInfo{}, fmt.Errorf("failed to read memory counters: %w", err)
	}

	return info, nil
}

// StatReader reads memory counters through gopsutil.
type StatReader struct{}

func (StatReader) Total(ctx context.Context) (datasize.ByteSize, error) {
	stat, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read virtual memory stats: %w", err)
	}

	return datasize.ByteSize(stat.Total), nil
}

func (StatReader) Used(ctx context.Context) (datasize.ByteSize, error) {
	stat, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read virtual memory stats: %w", err)
	}

	return datasize.ByteSize(stat.Used), nil
}

// NewReader creates the memory reader selected by the configuration.
func NewReader(cfg *Config, log *zap.SugaredLogger) (MemoryReader, error) {
	switch cfg.Source {
	case SourceFree:
		if len(cfg.FreeCommand) == 0 {
			return nil, fmt.Errorf("free_command must not be empty")
		}
		return NewFreeReader(cfg.FreeCommand, cfg.Retries, WithReaderLog(log)), nil
	case SourceGopsutil:
		return StatReader{}, nil
	default:
		return nil, fmt.Errorf("unsupported memory source %q", cfg.Source)
	}
}
