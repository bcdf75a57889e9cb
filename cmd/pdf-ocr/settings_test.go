package main

import (
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/weiuou/pdf-ocr/pkg/types"
)

// Flags the user set beat config values; config values beat defaults;
// untouched settings keep their defaults.
func TestEffectiveConfigPrecedence(t *testing.T) {
	defer viper.Reset()
	viper.Set("ocr.language", "eng")
	viper.Set("raster.dpi", 400)
	viper.Set("processing.page_timeout", "90s")

	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().Int("dpi", 300, "")
	cmd.Flags().String("language", "chi_sim+eng", "")
	if err := cmd.Flags().Set("dpi", "600"); err != nil {
		t.Fatal(err)
	}

	cfg := effectiveConfig(cmd)

	if cfg.OCR.Language != "eng" {
		t.Errorf("language = %q, want config value \"eng\"", cfg.OCR.Language)
	}
	if cfg.Raster.DPI != 600 {
		t.Errorf("dpi = %d, want flag value 600", cfg.Raster.DPI)
	}
	if cfg.Processing.PageTimeout != 90*time.Second {
		t.Errorf("page timeout = %v, want 90s", cfg.Processing.PageTimeout)
	}
	if cfg.OCR.PSM != 6 {
		t.Errorf("psm = %d, want default 6", cfg.OCR.PSM)
	}
}

func TestParseFormats(t *testing.T) {
	got := parseFormats([]string{" TXT", "docx", ""})
	want := []types.OutputFormat{types.FormatText, types.FormatDocx}

	if len(got) != len(want) {
		t.Fatalf("parseFormats = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("parseFormats[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
