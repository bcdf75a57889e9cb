// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the pdf-ocr CLI.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/weiuou/pdf-ocr/internal/ocr"
	"github.com/weiuou/pdf-ocr/internal/pages"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the pdf-ocr CLI.
var rootCmd = &cobra.Command{
	Use:   "pdf-ocr",
	Short: "Batch OCR for scanned PDF documents",
	Long: `pdf-ocr extracts text from scanned PDF documents. Pages are rasterized
through pdftoppm or mutool, recognized concurrently by Tesseract, and
reassembled in page order into text or docx artifacts.

Each stage is reachable through a subcommand: process runs the full
pipeline, info inspects a document without running OCR, languages lists
the installed language packs, search queries the archive of earlier runs,
and config manages the configuration file.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			})))
		}
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./pdf-ocr.yaml or ~/.config/pdf-ocr/config.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging on stderr")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("pdf-ocr")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "pdf-ocr"))
		}
	}

	viper.SetEnvPrefix("PDF_OCR")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// exitCode maps error kinds to the documented exit codes: 2 for page-range
// errors, 3 for language errors, 4 for engine errors, 5 for runs where some
// pages failed, 1 for anything else.
func exitCode(err error) int {
	var rangeErr *pages.RangeError
	var langErr *ocr.LanguageError
	var engineErr *ocr.EngineError
	var partial *partialFailure

	switch {
	case errors.As(err, &rangeErr):
		return 2
	case errors.As(err, &langErr):
		return 3
	case errors.As(err, &engineErr):
		return 4
	case errors.As(err, &partial):
		return 5
	default:
		return 1
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}
