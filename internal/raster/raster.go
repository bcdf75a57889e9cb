// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package raster renders PDF pages to PNG images through an external
// renderer. pdftoppm from poppler-utils is preferred, mutool from
// mupdf-tools is the fallback. Rendering is per page so failures stay
// scoped to the page that caused them.
package raster

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/weiuou/pdf-ocr/internal/sysexec"
	"github.com/weiuou/pdf-ocr/pkg/types"
)

// ErrNoRenderer is returned by Detect when neither supported renderer is
// installed.
var ErrNoRenderer = errors.New("no PDF renderer found: install poppler-utils (pdftoppm) or mupdf-tools (mutool)")

// PageError reports a rendering failure scoped to a single page.
type PageError struct {
	Page int
	Err  error
}

func (e *PageError) Error() string {
	return fmt.Sprintf("rendering page %d: %v", e.Page, e.Err)
}

func (e *PageError) Unwrap() error { return e.Err }

// Renderer rasterizes single PDF pages to image files. Implementations are
// stateless and safe for concurrent use.
type Renderer interface {
	// Name identifies the backing tool.
	Name() string

	// Render rasterizes one page of the PDF at dpi into destDir and
	// returns the path of the written PNG. Failures are *PageError.
	Render(ctx context.Context, pdfPath string, page, dpi int, destDir string) (string, error)
}

// Detect returns a renderer honouring the configured tool preference.
// RasterAuto tries pdftoppm first, then mutool.
func Detect(runner sysexec.Runner, tool types.RasterTool) (Renderer, error) {
	switch tool {
	case types.RasterPdftoppm:
		if _, err := runner.LookPath("pdftoppm"); err != nil {
			return nil, fmt.Errorf("pdftoppm not found in PATH: %w", err)
		}
		return &pdftoppm{run: runner}, nil
	case types.RasterMutool:
		if _, err := runner.LookPath("mutool"); err != nil {
			return nil, fmt.Errorf("mutool not found in PATH: %w", err)
		}
		return &mutool{run: runner}, nil
	}

	if _, err := runner.LookPath("pdftoppm"); err == nil {
		return &pdftoppm{run: runner}, nil
	}
	if _, err := runner.LookPath("mutool"); err == nil {
		return &mutool{run: runner}, nil
	}
	return nil, ErrNoRenderer
}

type pdftoppm struct {
	run sysexec.Runner
}

func (p *pdftoppm) Name() string { return "pdftoppm" }

func (p *pdftoppm) Render(ctx context.Context, pdfPath string, page, dpi int, destDir string) (string, error) {
	base := filepath.Join(destDir, fmt.Sprintf("page_%04d", page))
	args := []string{
		"-f", strconv.Itoa(page),
		"-l", strconv.Itoa(page),
		"-r", strconv.Itoa(dpi),
		"-png", "-singlefile",
		pdfPath, base,
	}
	if _, stderr, err := p.run.Run(ctx, "pdftoppm", args...); err != nil {
		return "", &PageError{Page: page, Err: fmt.Errorf("pdftoppm: %w%s", err, stderrHint(stderr))}
	}

	out := base + ".png"
	if _, err := os.Stat(out); err != nil {
		return "", &PageError{Page: page, Err: fmt.Errorf("pdftoppm produced no output: %w", err)}
	}
	return out, nil
}

type mutool struct {
	run sysexec.Runner
}

func (m *mutool) Name() string { return "mutool" }

func (m *mutool) Render(ctx context.Context, pdfPath string, page, dpi int, destDir string) (string, error) {
	out := filepath.Join(destDir, fmt.Sprintf("page_%04d.png", page))
	args := []string{
		"draw",
		"-o", out,
		"-r", strconv.Itoa(dpi),
		pdfPath, strconv.Itoa(page),
	}
	if _, stderr, err := m.run.Run(ctx, "mutool", args...); err != nil {
		return "", &PageError{Page: page, Err: fmt.Errorf("mutool: %w%s", err, stderrHint(stderr))}
	}

	if _, err := os.Stat(out); err != nil {
		return "", &PageError{Page: page, Err: fmt.Errorf("mutool produced no output: %w", err)}
	}
	return out, nil
}

// stderrHint extracts the first non-empty stderr line for error messages.
func stderrHint(stderr []byte) string {
	for _, line := range bytes.Split(stderr, []byte("\n")) {
		if s := string(bytes.TrimSpace(line)); s != "" {
			return ": " + s
		}
	}
	return ""
}
