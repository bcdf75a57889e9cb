// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/weiuou/pdf-ocr/internal/sysexec"
	"github.com/weiuou/pdf-ocr/pkg/types"
)

// Tesseract shells out to the tesseract binary. One invocation per page
// produces both the plain text and the TSV word table the confidence
// score comes from.
type Tesseract struct {
	runner sysexec.Runner
	bin    string
	cfg    types.OCRConfig
}

// NewTesseract locates the tesseract binary and returns an Engine backed
// by it. A missing binary is an *EngineError.
func NewTesseract(runner sysexec.Runner, cfg types.OCRConfig) (*Tesseract, error) {
	bin, err := runner.LookPath("tesseract")
	if err != nil {
		return nil, &EngineError{
			Engine: types.EngineTesseract,
			Reason: "tesseract binary not found on PATH",
			Err:    err,
		}
	}
	return &Tesseract{runner: runner, bin: bin, cfg: cfg}, nil
}

func (t *Tesseract) Name() string { return "tesseract" }

func (t *Tesseract) Recognize(ctx context.Context, req Request) (Result, error) {
	outBase := strings.TrimSuffix(req.ImagePath, filepath.Ext(req.ImagePath))

	args := []string{req.ImagePath, outBase, "-l", strings.Join(req.Languages, "+")}
	args = append(args, "--psm", strconv.Itoa(t.cfg.PSM), "--oem", strconv.Itoa(t.cfg.OEM))
	if req.DPI > 0 {
		args = append(args, "--dpi", strconv.Itoa(req.DPI))
	}
	if t.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", t.cfg.TessdataDir)
	}
	args = append(args, "txt", "tsv")

	_, stderr, err := t.runner.Run(ctx, t.bin, args...)
	if err != nil {
		if reason, fatal := fatalStderr(string(stderr)); fatal {
			return Result{}, &EngineError{Engine: types.EngineTesseract, Reason: reason, Err: err}
		}
		return Result{}, fmt.Errorf("tesseract on %s: %w%s",
			filepath.Base(req.ImagePath), err, stderrHint(stderr))
	}

	text, err := os.ReadFile(outBase + ".txt")
	if err != nil {
		return Result{}, fmt.Errorf("reading tesseract text output: %w", err)
	}
	tsv, err := os.ReadFile(outBase + ".tsv")
	if err != nil {
		return Result{}, fmt.Errorf("reading tesseract tsv output: %w", err)
	}
	os.Remove(outBase + ".txt")
	os.Remove(outBase + ".tsv")

	conf, words := tsvConfidence(tsv)
	return Result{
		Text:       strings.TrimSpace(string(text)),
		Confidence: conf,
		Words:      words,
	}, nil
}

// Languages runs tesseract --list-langs and parses the installed codes.
func (t *Tesseract) Languages(ctx context.Context) ([]string, error) {
	args := []string{"--list-langs"}
	if t.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", t.cfg.TessdataDir)
	}

	stdout, stderr, err := t.runner.Run(ctx, t.bin, args...)
	if err != nil {
		return nil, &EngineError{
			Engine: types.EngineTesseract,
			Reason: "cannot list languages" + stderrHint(stderr),
			Err:    err,
		}
	}

	// Tesseract 4+ prints the list on stdout; 3.x used stderr.
	langs := parseLangList(stdout)
	if len(langs) == 0 {
		langs = parseLangList(stderr)
	}
	return langs, nil
}

func parseLangList(out []byte) []string {
	var langs []string
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "List of") {
			continue
		}
		langs = append(langs, line)
	}
	return langs
}

// tsvConfidence computes the mean word confidence from tesseract TSV
// output. Rows carry 12 columns with conf at index 10; structural rows
// report -1 and do not count, zero-confidence words do.
func tsvConfidence(tsv []byte) (float64, int) {
	var sum float64
	var n int
	for i, line := range strings.Split(string(tsv), "\n") {
		if i == 0 || line == "" {
			continue
		}
		cols := strings.Split(line, "\t")
		if len(cols) < 12 {
			continue
		}
		conf, err := strconv.ParseFloat(cols[10], 64)
		if err != nil || conf < 0 {
			continue
		}
		sum += conf
		n++
	}
	if n == 0 {
		return 0, 0
	}
	return sum / float64(n), n
}

// fatalStderr reports whether tesseract's stderr points at a broken
// installation rather than a bad page. Those failures would repeat on
// every page, so the run stops.
func fatalStderr(stderr string) (string, bool) {
	for _, marker := range []string{
		"Error opening data file",
		"Failed loading language",
		"Could not initialize tesseract",
	} {
		if strings.Contains(stderr, marker) {
			return firstLine(stderr), true
		}
	}
	return "", false
}

func stderrHint(stderr []byte) string {
	if line := firstLine(string(stderr)); line != "" {
		return ": " + line
	}
	return ""
}

func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}
