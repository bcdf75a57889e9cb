// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package output renders a recognized document into its deliverable
// files: plain text, docx, and the processing report.
package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/weiuou/pdf-ocr/pkg/types"
)

// Options configures the output writers.
type Options struct {
	// Directory receives all output files. Created if missing.
	Directory string

	// Formats lists the document formats to write.
	Formats []types.OutputFormat

	// PreserveFormatting regroups recognized lines into paragraphs and
	// sets detected titles apart instead of collapsing whitespace.
	PreserveFormatting bool

	// Threshold is the confidence percentage below which a page gets a
	// low-confidence annotation.
	Threshold int

	// Stats adds the processing report file.
	Stats bool
}

// Write renders doc into every requested format, plus the report when
// Stats is set, and returns the paths written in order.
func Write(doc types.Document, report types.Report, opts Options) ([]string, error) {
	if err := os.MkdirAll(opts.Directory, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	stem := Stem(doc.Source)
	var written []string

	for _, format := range opts.Formats {
		switch format {
		case types.FormatText:
			path := filepath.Join(opts.Directory, stem+"_ocr.txt")
			if err := writeText(doc, opts, path); err != nil {
				return written, err
			}
			written = append(written, path)
		case types.FormatDocx:
			path := filepath.Join(opts.Directory, stem+"_ocr.docx")
			if err := writeDocx(doc, opts, path); err != nil {
				return written, err
			}
			written = append(written, path)
		default:
			return written, fmt.Errorf("unsupported output format %q", format)
		}
	}

	if opts.Stats {
		path := filepath.Join(opts.Directory, stem+"_ocr_report.txt")
		if err := writeReport(doc, report, path); err != nil {
			return written, err
		}
		written = append(written, path)
	}

	return written, nil
}

// Stem returns the base name of a source document without its extension,
// used to derive every output file name.
func Stem(source string) string {
	base := filepath.Base(source)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
