// Package translator turns workload templates into benchmark tool
// configuration files.
package translator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	"github.com/litmus-bench/benchgen/common/go/xfile"
	"github.com/litmus-bench/benchgen/workload"
)

// Translator renders a workload into the native configuration of a single
// benchmark tool.
type Translator interface {
	// Name returns the name of the target tool.
	Name() string
	// Suffix returns the extension of generated files, without the dot.
	Suffix() string
	// Render translates and encodes the workload.
	Render(spec *workload.Spec) ([]byte, error)
}

// OutputPath returns the path of the file generated for the given template:
// the template base name with its extension replaced by the suffix, placed
// in the output directory.
func OutputPath(templatePath string, outDir string, suffix string) string {
	base := filepath.Base(templatePath)
	name := strings.TrimSuffix(base, filepath.Ext(base))

	return filepath.Join(outDir, name+"."+suffix)
}

type options struct {
	Log *zap.SugaredLogger
}

func newOptions() *options {
	return &options{
		Log: zap.NewNop().Sugar(),
	}
}

// GeneratorOption is a function that configures the generator.
type GeneratorOption func(*options)

// WithLog sets the logger.
func WithLog(log *zap.SugaredLogger) GeneratorOption {
	return func(o *options) {
		o.Log = log
	}
}

// Generator writes configuration files for a set of translators.
type Generator struct {
	translators []Translator
	log         *zap.SugaredLogger
}

// NewGenerator creates a generator for the given translators.
func NewGenerator(translators []Translator, options ...GeneratorOption) *Generator {
	opts := newOptions()
	for _, o := range options {
		o(opts)
	}

	return &Generator{
		translators: translators,
		log:         opts.Log,
	}
}

// Generate loads the template and writes one file per translator into the
// output directory.
//
// Every file is written atomically, so a failed run never leaves a
// half-written configuration behind.
func (m *Generator) Generate(templatePath string, outDir string) ([]string, error) {
	spec, err := workload.Load(templatePath)
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(m.translators))
	for _, tr := range m.translators {
		data, err := tr.Render(spec)
		if err != nil {
			return paths, fmt.Errorf("failed to render %s configuration for %q: %w", tr.Name(), templatePath, err)
		}

		path := OutputPath(templatePath, outDir, tr.Suffix())
		if err := xfile.WriteAtomic(path, data, 0o644); err != nil {
			return paths, fmt.Errorf("failed to write %s configuration: %w", tr.Name(), err)
		}

		m.log.Infow("generated configuration",
			zap.String("tool", tr.Name()),
			zap.String("template", templatePath),
			zap.String("path", path),
		)
		paths = append(paths, path)
	}

	return paths, nil
}

// GenerateDir runs Generate for every regular file in the template
// directory whose name matches the glob pattern.
//
// A broken template does not stop the others; all failures are reported
// together.
func (m *Generator) GenerateDir(ctx context.Context, templateDir string, outDir string, pattern string) ([]string, error) {
	matcher, err := glob.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid template pattern %q: %w", pattern, err)
	}

	entries, err := os.ReadDir(templateDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read template directory: %w", err)
	}

	var errs *multierror.Error
	paths := make([]string, 0)
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return paths, err
		}
		if !entry.Type().IsRegular() || !matcher.Match(entry.Name()) {
			continue
		}

		generated, err := m.Generate(filepath.Join(templateDir, entry.Name()), outDir)
		paths = append(paths, generated...)
		if err != nil {
			m.log.Warnw("failed to generate configuration", zap.String("template", entry.Name()), zap.Error(err))
			errs = multierror.Append(errs, err)
		}
	}

	return paths, errs.ErrorOrNil()
}
