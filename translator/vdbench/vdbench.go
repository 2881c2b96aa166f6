// Package vdbench translates workload templates into vdbench parameter files.
package vdbench

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/litmus-bench/benchgen/common/go/orderedmap"
	"github.com/litmus-bench/benchgen/workload"
)

// Directive is a single parameter-file line: an ordered list of key/value
// tokens.
type Directive = orderedmap.Map[string, string]

// ParamFile is the set of directives making up a parameter file.
type ParamFile struct {
	// General holds data reduction settings. It is nil when neither
	// deduplication nor compression is requested.
	General *Directive
	// Storage is the file system storage definition (fsd).
	Storage *Directive
	// Workload is the file system workload definition (fwd).
	Workload *Directive
	// Run is the run definition (rd).
	Run *Directive
}

// Directives returns the non-empty directives in the order they are written.
func (m *ParamFile) Directives() []*Directive {
	out := make([]*Directive, 0, 4)
	if m.General != nil {
		out = append(out, m.General)
	}

	return append(out, m.Storage, m.Workload, m.Run)
}

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

// Translator maps workload templates onto vdbench directives.
type Translator struct {
	cfg *Config
	log *zap.SugaredLogger
}

// NewTranslator creates a new vdbench translator.
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
	return "vdbench"
}

func (m *Translator) Suffix() string {
	return m.cfg.Suffix
}

// Translate maps the workload onto vdbench directives.
func (m *Translator) Translate(spec *workload.Spec) (*ParamFile, error) {
	switch spec.AccessPattern {
	case workload.AccessRandom, workload.AccessSequential:
	default:
		return nil, fmt.Errorf("unsupported access pattern %q", spec.AccessPattern)
	}

	fsdName := "fsd-" + spec.Name
	fwdName := "fwd-" + spec.Name

	storage := orderedmap.New[string, string]()
	storage.Set("fsd", fsdName)
	storage.Set("anchor", m.cfg.Anchor)
	storage.Set("depth", strconv.Itoa(m.cfg.Depth))
	storage.Set("width", strconv.Itoa(m.cfg.Width))
	storage.Set("files", strconv.Itoa(spec.NumFiles))
	storage.Set("size", strconv.Itoa(spec.FileSize)+"M")
	if spec.BufferedIO {
		storage.Set("openflags", "o_sync")
	} else {
		storage.Set("openflags", "o_direct")
	}

	threads := spec.NumWorkers
	if threads > spec.NumFiles {
		m.log.Warnw("capping thread count to the number of files",
			zap.String("name", spec.Name),
			zap.Int("workers", spec.NumWorkers),
			zap.Int("files", spec.NumFiles),
		)
		threads = spec.NumFiles
	}

	load := orderedmap.New[string, string]()
	load.Set("fwd", fwdName)
	load.Set("fsd", fsdName)
	load.Set("rdpct", strconv.Itoa(spec.RWRatio))
	load.Set("xfersize", spec.IOSize)
	load.Set("fileio", spec.AccessPattern.Fold())
	load.Set("threads", strconv.Itoa(threads))
	load.Set("fileselect", spec.AccessPattern.Fold())

	run := orderedmap.New[string, string]()
	run.Set("rd", "rd-"+spec.Name)
	run.Set("fwd", fwdName)
	run.Set("elapsed", strconv.Itoa(spec.Duration))
	run.Set("interval", strconv.Itoa(m.cfg.Interval))
	run.Set("fwdrate", m.cfg.FwdRate)
	run.Set("format", m.cfg.Format)
	run.Set("warmup", strconv.Itoa(spec.Warmup))

	pf := &ParamFile{
		General:  generalDirective(spec),
		Storage:  storage,
		Workload: load,
		Run:      run,
	}

	m.log.Debugw("translated workload into vdbench parameters",
		zap.String("name", spec.Name),
		zap.Int("threads", threads),
		zap.Bool("data_reduction", pf.General != nil),
	)

	return pf, nil
}

func generalDirective(spec *workload.Spec) *Directive {
	switch {
	case spec.DedupePercentage != 0:
		general := orderedmap.New[string, string]()
		general.Set("dedupratio", ReductionRatio(spec.DedupePercentage))
		general.Set("dedupunit", spec.IOSize)
		if spec.CompressPercentage != 0 {
			general.Set("compratio", ReductionRatio(spec.CompressPercentage))
		} else {
			general.Set("compratio", "1.0")
		}
		return general
	case spec.CompressPercentage != 0:
		general := orderedmap.New[string, string]()
		general.Set("compratio", ReductionRatio(spec.CompressPercentage))
		return general
	default:
		return nil
	}
}

// ReductionRatio converts the percentage of reducible data into the
// "N:1" ratio vdbench expects, rounded to one decimal place.
func ReductionRatio(percentage int) string {
	return fmt.Sprintf("%.1f", 100/float64(100-percentage))
}

// FormatDirective joins directive tokens with commas.
func FormatDirective(d *Directive) string {
	tokens := make([]string, 0, d.Len())
	for key, value := range d.All() {
		tokens = append(tokens, key+"="+value)
	}

	return strings.Join(tokens, ",")
}

// Encode writes the parameter file, one directive per line.
func (m *Translator) Encode(w io.Writer, pf *ParamFile) error {
	for _, d := range pf.Directives() {
		if _, err := io.WriteString(w, FormatDirective(d)+"\n"); err != nil {
			return fmt.Errorf("failed to write parameter file: %w", err)
		}
	}

	return nil
}

// Render translates the workload and returns the encoded parameter file.
func (m *Translator) Render(spec *workload.Spec) ([]byte, error) {
	pf, err := m.Translate(spec)
	if err != nil {
		return nil, err
	}

	buf := &bytes.Buffer{}
	if err := m.Encode(buf, pf); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
