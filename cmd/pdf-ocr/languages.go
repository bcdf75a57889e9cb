// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/weiuou/pdf-ocr/internal/sysexec"
)

var languagesCmd = &cobra.Command{
	Use:   "languages",
	Short: "List language packs installed for the recognition engine",
	Long: `Languages prints the language packs the configured engine can use,
one per line. These are the valid values for --language; combine several
with "+", e.g. chi_sim+eng.`,
	RunE: runLanguages,
}

func runLanguages(cmd *cobra.Command, args []string) error {
	cfg := effectiveConfig(cmd)

	engine, err := buildEngine(sysexec.New(), cfg.OCR)
	if err != nil {
		return err
	}

	langs, err := engine.Languages(cmd.Context())
	if err != nil {
		return err
	}

	if len(langs) == 0 {
		fmt.Printf("No language packs found for %s.\n", engine.Name())
		return nil
	}

	fmt.Printf("%d language pack(s) for %s:\n", len(langs), engine.Name())
	for _, l := range langs {
		fmt.Println("  " + l)
	}
	return nil
}

func init() {
	languagesCmd.Flags().String("engine", "tesseract", "recognition engine: tesseract or gosseract")

	rootCmd.AddCommand(languagesCmd)
}
