// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the pdf-ocr configuration file",
	Long: `Config manages pdf-ocr.yaml. Use init to write a commented default
file into the working directory, and show to print the configuration a
command would actually run with after merging file, environment, and
defaults.`,
}

// configTemplate is the commented default written by config init. Values
// match types.DefaultConfig.
const configTemplate = `# pdf-ocr configuration. Values here override the built-in defaults;
# command-line flags override values here. Environment variables work
# too, e.g. PDF_OCR_OCR_LANGUAGE=eng.

ocr:
  engine: tesseract          # tesseract | gosseract
  language: chi_sim+eng
  psm: 6                     # page segmentation mode
  oem: 3                     # OCR engine mode (tesseract CLI only)
  tessdata_dir: ""           # optional explicit language-data directory
raster:
  tool: auto                 # auto | pdftoppm | mutool
  dpi: 300
  enhance: true              # grayscale + upscale small renders before OCR
processing:
  max_workers: 4
  page_timeout: 0s           # per-page limit, e.g. 90s (0s = unbounded)
  temp_dir: ""               # "" = system temp
  keep_temp: false
output:
  directory: output
  formats: [txt]             # txt, docx
  preserve_formatting: true
  save_images: false
  images_dir: output/images
  stats: false
confidence_threshold: 60
archive:
  enabled: false
  dir: archive
  max_results: 20
`

// --- init subcommand ---

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a commented default pdf-ocr.yaml to the working directory",
	RunE:  runConfigInit,
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	const path = "pdf-ocr.yaml"

	force, _ := cmd.Flags().GetBool("force")
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists: use --force to overwrite", path)
		}
	}

	if err := os.WriteFile(path, []byte(configTemplate), 0o644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

// --- show subcommand ---

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective merged configuration as YAML",
	RunE:  runConfigShow,
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	data, err := yaml.Marshal(effectiveConfig(cmd))
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}

func init() {
	configInitCmd.Flags().Bool("force", false, "overwrite an existing config file")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)

	rootCmd.AddCommand(configCmd)
}
