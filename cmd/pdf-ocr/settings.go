// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/weiuou/pdf-ocr/pkg/types"
)

// effectiveConfig resolves the configuration for one invocation: built-in
// defaults, overridden by config file and environment values, overridden by
// flags the user actually set. Commands receive the result as a plain
// struct; nothing below the CLI layer reads viper.
func effectiveConfig(cmd *cobra.Command) types.Config {
	cfg := types.DefaultConfig()
	applyViper(&cfg)
	applyFlags(cmd, &cfg)
	return cfg
}

func applyViper(cfg *types.Config) {
	if viper.IsSet("ocr.engine") {
		cfg.OCR.Engine = types.EngineKind(viper.GetString("ocr.engine"))
	}
	if viper.IsSet("ocr.language") {
		cfg.OCR.Language = viper.GetString("ocr.language")
	}
	if viper.IsSet("ocr.psm") {
		cfg.OCR.PSM = viper.GetInt("ocr.psm")
	}
	if viper.IsSet("ocr.oem") {
		cfg.OCR.OEM = viper.GetInt("ocr.oem")
	}
	if viper.IsSet("ocr.tessdata_dir") {
		cfg.OCR.TessdataDir = viper.GetString("ocr.tessdata_dir")
	}

	if viper.IsSet("raster.tool") {
		cfg.Raster.Tool = types.RasterTool(viper.GetString("raster.tool"))
	}
	if viper.IsSet("raster.dpi") {
		cfg.Raster.DPI = viper.GetInt("raster.dpi")
	}
	if viper.IsSet("raster.enhance") {
		cfg.Raster.Enhance = viper.GetBool("raster.enhance")
	}

	if viper.IsSet("processing.max_workers") {
		cfg.Processing.MaxWorkers = viper.GetInt("processing.max_workers")
	}
	if viper.IsSet("processing.page_timeout") {
		cfg.Processing.PageTimeout = viper.GetDuration("processing.page_timeout")
	}
	if viper.IsSet("processing.temp_dir") {
		cfg.Processing.TempDir = viper.GetString("processing.temp_dir")
	}
	if viper.IsSet("processing.keep_temp") {
		cfg.Processing.KeepTemp = viper.GetBool("processing.keep_temp")
	}

	if viper.IsSet("output.directory") {
		cfg.Output.Directory = viper.GetString("output.directory")
	}
	if viper.IsSet("output.formats") {
		cfg.Output.Formats = parseFormats(viper.GetStringSlice("output.formats"))
	}
	if viper.IsSet("output.preserve_formatting") {
		cfg.Output.PreserveFormatting = viper.GetBool("output.preserve_formatting")
	}
	if viper.IsSet("output.save_images") {
		cfg.Output.SaveImages = viper.GetBool("output.save_images")
	}
	if viper.IsSet("output.images_dir") {
		cfg.Output.ImagesDir = viper.GetString("output.images_dir")
	}
	if viper.IsSet("output.stats") {
		cfg.Output.Stats = viper.GetBool("output.stats")
	}

	if viper.IsSet("confidence_threshold") {
		cfg.ConfidenceThreshold = viper.GetInt("confidence_threshold")
	}

	if viper.IsSet("archive.enabled") {
		cfg.Archive.Enabled = viper.GetBool("archive.enabled")
	}
	if viper.IsSet("archive.dir") {
		cfg.Archive.Dir = viper.GetString("archive.dir")
	}
	if viper.IsSet("archive.max_results") {
		cfg.Archive.MaxResults = viper.GetInt("archive.max_results")
	}
}

// applyFlags copies flag values the user set explicitly. Changed reports
// false for flags the executing command does not define, so the same
// resolver serves every subcommand.
func applyFlags(cmd *cobra.Command, cfg *types.Config) {
	flags := cmd.Flags()

	if flags.Changed("engine") {
		engine, _ := flags.GetString("engine")
		cfg.OCR.Engine = types.EngineKind(engine)
	}
	if flags.Changed("language") {
		cfg.OCR.Language, _ = flags.GetString("language")
	}
	if flags.Changed("dpi") {
		cfg.Raster.DPI, _ = flags.GetInt("dpi")
	}
	if flags.Changed("max-workers") {
		cfg.Processing.MaxWorkers, _ = flags.GetInt("max-workers")
	}
	if flags.Changed("page-timeout") {
		cfg.Processing.PageTimeout, _ = flags.GetDuration("page-timeout")
	}
	if flags.Changed("keep-temp") {
		cfg.Processing.KeepTemp, _ = flags.GetBool("keep-temp")
	}
	if flags.Changed("output-dir") {
		cfg.Output.Directory, _ = flags.GetString("output-dir")
	}
	if flags.Changed("output-format") {
		formats, _ := flags.GetStringSlice("output-format")
		cfg.Output.Formats = parseFormats(formats)
	}
	if flags.Changed("no-format") {
		noFormat, _ := flags.GetBool("no-format")
		cfg.Output.PreserveFormatting = !noFormat
	}
	if flags.Changed("save-images") {
		cfg.Output.SaveImages, _ = flags.GetBool("save-images")
	}
	if flags.Changed("images-dir") {
		cfg.Output.ImagesDir, _ = flags.GetString("images-dir")
	}
	if flags.Changed("stats") {
		cfg.Output.Stats, _ = flags.GetBool("stats")
	}
	if flags.Changed("confidence") {
		cfg.ConfidenceThreshold, _ = flags.GetInt("confidence")
	}
	if flags.Changed("archive") {
		cfg.Archive.Enabled, _ = flags.GetBool("archive")
	}
}

func parseFormats(raw []string) []types.OutputFormat {
	formats := make([]types.OutputFormat, 0, len(raw))
	for _, f := range raw {
		f = strings.TrimSpace(strings.ToLower(f))
		if f == "" {
			continue
		}
		formats = append(formats, types.OutputFormat(f))
	}
	return formats
}
