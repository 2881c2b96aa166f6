package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/litmus-bench/benchgen/translator"
)

var generateCmdArgs struct {
	Match string
	Tools []string
}

var generateCmd = &cobra.Command{
	Use:   "generate TEMPLATE_DIR OUTPUT_DIR",
	Short: "Generate configuration for every workload template in a directory",
	Long: `Translate every workload template in TEMPLATE_DIR whose file name matches
the glob pattern into the configuration of each selected tool.`,
	Args: cobra.ExactArgs(2),
	Run: func(_ *cobra.Command, args []string) {
		if err := runGenerate(args[0], args[1]); err != nil {
			fmt.Printf("ERROR: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	generateCmd.Flags().StringVarP(&generateCmdArgs.Match, "match", "m", "*.{yml,yaml}", "Glob pattern selecting template file names")
	generateCmd.Flags().StringSliceVar(&generateCmdArgs.Tools, "tools", []string{"fio", "vdbench"}, "Tools to generate configuration for")
}

func runGenerate(templateDir string, outDir string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	translators, err := newTranslators(cfg, log, generateCmdArgs.Tools)
	if err != nil {
		return err
	}

	paths, err := translator.NewGenerator(translators, translator.WithLog(log)).
		GenerateDir(context.Background(), templateDir, outDir, generateCmdArgs.Match)
	log.Infow("generation finished", "files", len(paths))

	return err
}
