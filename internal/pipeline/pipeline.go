// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs the rasterize-then-recognize loop over a page
// selection with a bounded worker pool. Results are delivered in page
// order regardless of completion order.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/weiuou/pdf-ocr/internal/ocr"
	"github.com/weiuou/pdf-ocr/internal/raster"
	"github.com/weiuou/pdf-ocr/pkg/types"
)

// Options configures one pipeline run.
type Options struct {
	// Document is the source PDF path.
	Document string

	// Pages is the resolved selection, ascending.
	Pages []int

	DPI       int
	Languages []string

	Engine   ocr.Engine
	Renderer raster.Renderer

	// Enhance applies grayscale and upscale preprocessing to each
	// rendered image before recognition.
	Enhance bool

	// ScratchDir receives rendered page images. Images are removed as
	// soon as recognition finishes unless KeepImages is set.
	ScratchDir string
	KeepImages bool

	MaxWorkers  int
	PageTimeout time.Duration

	// Progress receives one status line per completed page, in page
	// order. Nil disables progress output.
	Progress io.Writer
}

// Run processes the selected pages and returns them in page order.
//
// Per-page failures (rasterization, recognition, timeout) become failed
// PageResults and the run continues. An *ocr.EngineError aborts the run:
// dispatch stops, in-flight pages finish, and the returned Document
// holds the ordered prefix completed before the failure, alongside the
// error.
func Run(ctx context.Context, opts Options) (types.Document, error) {
	doc := types.Document{
		Source:    opts.Document,
		Language:  strings.Join(opts.Languages, "+"),
		DPI:       opts.DPI,
		Engine:    opts.Engine.Name(),
		StartedAt: time.Now(),
	}
	if len(opts.Pages) == 0 {
		return doc, nil
	}

	workers := opts.MaxWorkers
	if workers < 1 {
		workers = 1
	}
	if workers > len(opts.Pages) {
		workers = len(opts.Pages)
	}
	slog.Debug("pipeline start",
		"document", opts.Document,
		"pages", len(opts.Pages),
		"workers", workers,
		"engine", opts.Engine.Name(),
		"renderer", opts.Renderer.Name(),
	)

	buf := newReorderBuffer(opts.Pages, 2*workers)
	tasks := make(chan int)

	g, runCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(tasks)
		for _, page := range opts.Pages {
			select {
			case tasks <- page:
			case <-runCtx.Done():
				return nil
			}
		}
		return nil
	})

	for i := 0; i < workers; i++ {
		g.Go(func() error {
			for page := range tasks {
				if runCtx.Err() != nil {
					return nil
				}
				// Pages use the caller's context, not runCtx, so a
				// fatal error elsewhere lets in-flight pages finish.
				res, err := processPage(ctx, opts, page)
				if err != nil {
					return err
				}
				buf.Put(res)
			}
			return nil
		})
	}

	go func() {
		<-runCtx.Done()
		buf.Abort()
	}()
	go func() {
		g.Wait()
		buf.Close()
	}()

	for {
		res, ok := buf.Next()
		if !ok {
			break
		}
		doc.Pages = append(doc.Pages, res)
		reportProgress(opts.Progress, res)
	}

	return doc, g.Wait()
}

// processPage renders and recognizes one page. Recoverable failures come
// back as a failed PageResult with a nil error; a non-nil error aborts
// the whole run.
func processPage(ctx context.Context, opts Options, page int) (types.PageResult, error) {
	start := time.Now()

	pctx := ctx
	if opts.PageTimeout > 0 {
		var cancel context.CancelFunc
		pctx, cancel = context.WithTimeout(ctx, opts.PageTimeout)
		defer cancel()
	}

	img, err := opts.Renderer.Render(pctx, opts.Document, page, opts.DPI, opts.ScratchDir)
	if err != nil {
		if ctx.Err() != nil {
			return types.PageResult{}, ctx.Err()
		}
		return failedPage(page, start, classifyFailure(pctx, err, types.FailureRaster), err), nil
	}
	if !opts.KeepImages {
		defer os.Remove(img)
	}

	if opts.Enhance {
		if err := raster.Enhance(img); err != nil {
			if ctx.Err() != nil {
				return types.PageResult{}, ctx.Err()
			}
			return failedPage(page, start, types.FailureRaster, err), nil
		}
	}

	res, err := opts.Engine.Recognize(pctx, ocr.Request{
		ImagePath: img,
		Languages: opts.Languages,
		DPI:       opts.DPI,
	})
	if err != nil {
		var engErr *ocr.EngineError
		if errors.As(err, &engErr) {
			return types.PageResult{}, err
		}
		if ctx.Err() != nil {
			return types.PageResult{}, ctx.Err()
		}
		return failedPage(page, start, classifyFailure(pctx, err, types.FailureRecognize), err), nil
	}

	return types.PageResult{
		Page:       page,
		Text:       res.Text,
		Confidence: res.Confidence,
		Duration:   time.Since(start),
		Status:     types.PageSuccess,
	}, nil
}

// classifyFailure upgrades a failure to a timeout when the page deadline
// expired, whichever stage tripped over it.
func classifyFailure(pctx context.Context, err error, kind types.FailureKind) types.FailureKind {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(pctx.Err(), context.DeadlineExceeded) {
		return types.FailureTimeout
	}
	return kind
}

func failedPage(page int, start time.Time, kind types.FailureKind, err error) types.PageResult {
	return types.PageResult{
		Page:     page,
		Duration: time.Since(start),
		Status:   types.PageFailed,
		Failure:  kind,
		Detail:   err.Error(),
	}
}

func reportProgress(w io.Writer, r types.PageResult) {
	if w == nil {
		return
	}
	if r.Succeeded() {
		fmt.Fprintf(w, "done:    page %d (confidence %.1f, %.1fs)\n", r.Page, r.Confidence, r.Duration.Seconds())
		return
	}
	fmt.Fprintf(w, "failed:  page %d (%s)\n", r.Page, r.Detail)
}
