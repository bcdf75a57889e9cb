// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/weiuou/pdf-ocr/pkg/types"
)

// Gosseract drives libtesseract in-process through the gosseract
// bindings, skipping the per-page process spawn of the CLI engine.
type Gosseract struct {
	cfg types.OCRConfig
}

func NewGosseract(cfg types.OCRConfig) *Gosseract {
	return &Gosseract{cfg: cfg}
}

func (g *Gosseract) Name() string { return "gosseract" }

// Recognize runs one page through a fresh client. Clients are not safe
// for concurrent use, so each call gets its own.
func (g *Gosseract) Recognize(ctx context.Context, req Request) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	img, err := os.ReadFile(req.ImagePath)
	if err != nil {
		return Result{}, fmt.Errorf("reading page image: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if g.cfg.TessdataDir != "" {
		if err := client.SetTessdataPrefix(g.cfg.TessdataDir); err != nil {
			return Result{}, &EngineError{Engine: types.EngineGosseract, Reason: "setting tessdata prefix", Err: err}
		}
	}
	if err := client.SetLanguage(req.Languages...); err != nil {
		return Result{}, &EngineError{Engine: types.EngineGosseract, Reason: "setting languages", Err: err}
	}
	if err := client.SetPageSegMode(gosseract.PageSegMode(g.cfg.PSM)); err != nil {
		return Result{}, fmt.Errorf("setting page segmentation mode: %w", err)
	}
	if req.DPI > 0 {
		if err := client.SetVariable(gosseract.SettableVariable("user_defined_dpi"), strconv.Itoa(req.DPI)); err != nil {
			return Result{}, fmt.Errorf("setting dpi: %w", err)
		}
	}
	if err := client.SetImageFromBytes(img); err != nil {
		return Result{}, fmt.Errorf("loading page image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return Result{}, fmt.Errorf("recognizing page: %w", err)
	}

	conf, words := boxConfidence(client)
	return Result{
		Text:       strings.TrimSpace(text),
		Confidence: conf,
		Words:      words,
	}, nil
}

// Languages lists installed traineddata files. With a custom tessdata
// dir it globs that directory the same way gosseract does for the
// default path.
func (g *Gosseract) Languages(ctx context.Context) ([]string, error) {
	if g.cfg.TessdataDir != "" {
		matches, err := filepath.Glob(filepath.Join(g.cfg.TessdataDir, "*.traineddata"))
		if err != nil {
			return nil, fmt.Errorf("scanning tessdata dir: %w", err)
		}
		langs := make([]string, 0, len(matches))
		for _, m := range matches {
			langs = append(langs, strings.TrimSuffix(filepath.Base(m), ".traineddata"))
		}
		return langs, nil
	}

	langs, err := gosseract.GetAvailableLanguages()
	if err != nil {
		return nil, &EngineError{Engine: types.EngineGosseract, Reason: "cannot list languages", Err: err}
	}
	return langs, nil
}

// boxConfidence averages word confidences (0-100) over the page.
func boxConfidence(client *gosseract.Client) (float64, int) {
	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil || len(boxes) == 0 {
		return 0, 0
	}
	var sum float64
	for _, b := range boxes {
		sum += b.Confidence
	}
	return sum / float64(len(boxes)), len(boxes)
}
