package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/litmus-bench/benchgen/translator"
	"github.com/litmus-bench/benchgen/translator/fio"
	"github.com/litmus-bench/benchgen/translator/vdbench"
)

var fioCmd = &cobra.Command{
	Use:   "fio TEMPLATE OUTPUT_DIR",
	Short: "Generate a fio job file from a workload template",
	Args:  cobra.ExactArgs(2),
	Run: func(_ *cobra.Command, args []string) {
		if err := runTranslate("fio", args[0], args[1]); err != nil {
			fmt.Printf("ERROR: %v\n", err)
			os.Exit(1)
		}
	},
}

var vdbenchCmd = &cobra.Command{
	Use:   "vdbench TEMPLATE OUTPUT_DIR",
	Short: "Generate a vdbench parameter file from a workload template",
	Args:  cobra.ExactArgs(2),
	Run: func(_ *cobra.Command, args []string) {
		if err := runTranslate("vdbench", args[0], args[1]); err != nil {
			fmt.Printf("ERROR: %v\n", err)
			os.Exit(1)
		}
	},
}

// newTranslators returns the translators for the given tool names.
func newTranslators(cfg *Config, log *zap.SugaredLogger, names []string) ([]translator.Translator, error) {
	out := make([]translator.Translator, 0, len(names))
	for _, name := range names {
		switch name {
		case "fio":
			out = append(out, fio.NewTranslator(cfg.Fio, fio.WithLog(log)))
		case "vdbench":
			out = append(out, vdbench.NewTranslator(cfg.Vdbench, vdbench.WithLog(log)))
		default:
			return nil, fmt.Errorf("unknown tool %q", name)
		}
	}

	return out, nil
}

func runTranslate(tool string, templatePath string, outDir string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	translators, err := newTranslators(cfg, log, []string{tool})
	if err != nil {
		return err
	}

	_, err = translator.NewGenerator(translators, translator.WithLog(log)).Generate(templatePath, outDir)
	return err
}
