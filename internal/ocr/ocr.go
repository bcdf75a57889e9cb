// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ocr recognizes text on rasterized page images. Engines sit
// behind the Engine interface: the default shells out to the tesseract
// binary, an alternative links libtesseract in-process through gosseract.
package ocr

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/weiuou/pdf-ocr/pkg/types"
)

// Request carries one page image into an engine.
type Request struct {
	// ImagePath is the rasterized page on disk.
	ImagePath string

	// Languages are tesseract language codes, applied in order.
	Languages []string

	// DPI the image was rendered at. Engines pass it through so
	// tesseract does not have to guess character sizes.
	DPI int
}

// Result is the recognized content of one page.
type Result struct {
	Text string

	// Confidence is the mean word confidence on a 0-100 scale.
	// Zero when the page produced no words.
	Confidence float64

	// Words counts the confidence-bearing words behind Confidence.
	Words int
}

// Engine recognizes text on page images.
type Engine interface {
	Name() string

	// Recognize runs OCR on one image. Page-level problems come back as
	// ordinary errors; an *EngineError means the engine itself is broken
	// and further pages are pointless.
	Recognize(ctx context.Context, req Request) (Result, error)

	// Languages lists the language codes the installed engine can use.
	Languages(ctx context.Context) ([]string, error)
}

// EngineError reports that the engine is unusable, not that a single
// page failed. Callers stop the run when they see one.
type EngineError struct {
	Engine types.EngineKind
	Reason string
	Err    error
}

func (e *EngineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ocr engine %s: %s: %v", e.Engine, e.Reason, e.Err)
	}
	return fmt.Sprintf("ocr engine %s: %s", e.Engine, e.Reason)
}

func (e *EngineError) Unwrap() error { return e.Err }

// LanguageError reports requested language packs the engine does not have.
type LanguageError struct {
	Missing   []string
	Available []string
}

func (e *LanguageError) Error() string {
	msg := fmt.Sprintf("language data not installed: %s", strings.Join(e.Missing, ", "))
	if len(e.Available) > 0 {
		msg += fmt.Sprintf(" (available: %s)", strings.Join(e.Available, ", "))
	}
	return msg
}

// ParseLanguages splits a tesseract language spec such as "chi_sim+eng"
// into its component codes, preserving order.
func ParseLanguages(spec string) []string {
	var langs []string
	for _, code := range strings.Split(spec, "+") {
		code = strings.TrimSpace(code)
		if code != "" {
			langs = append(langs, code)
		}
	}
	return langs
}

// ValidateLanguages checks that every requested code is installed,
// returning a *LanguageError naming the missing ones otherwise.
func ValidateLanguages(ctx context.Context, engine Engine, langs []string) error {
	available, err := engine.Languages(ctx)
	if err != nil {
		return fmt.Errorf("listing languages: %w", err)
	}

	have := make(map[string]bool, len(available))
	for _, code := range available {
		have[code] = true
	}

	var missing []string
	for _, code := range langs {
		if !have[code] {
			missing = append(missing, code)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	sort.Strings(available)
	return &LanguageError{Missing: missing, Available: available}
}
