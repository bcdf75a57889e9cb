// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiuou/pdf-ocr/internal/ocr"
	"github.com/weiuou/pdf-ocr/pkg/types"
)

type fakeRenderer struct {
	mu       sync.Mutex
	rendered []int
	delay    func(page int) time.Duration
	failOn   map[int]error
}

func (f *fakeRenderer) Name() string { return "fake-raster" }

func (f *fakeRenderer) Render(ctx context.Context, pdfPath string, page, dpi int, destDir string) (string, error) {
	f.mu.Lock()
	f.rendered = append(f.rendered, page)
	f.mu.Unlock()

	if f.delay != nil {
		select {
		case <-time.After(f.delay(page)):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if err := f.failOn[page]; err != nil {
		return "", err
	}

	path := filepath.Join(destDir, fmt.Sprintf("page_%04d.png", page))
	if err := os.WriteFile(path, []byte("img"), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func (f *fakeRenderer) renderedPages() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.rendered...)
}

type fakeEngine struct {
	failOn map[int]error
}

func (f *fakeEngine) Name() string { return "fake-ocr" }

func (f *fakeEngine) Recognize(ctx context.Context, req ocr.Request) (ocr.Result, error) {
	page := pageOf(req.ImagePath)
	if err := f.failOn[page]; err != nil {
		return ocr.Result{}, err
	}
	return ocr.Result{
		Text:       fmt.Sprintf("text of page %d", page),
		Confidence: 90,
		Words:      4,
	}, nil
}

func (f *fakeEngine) Languages(ctx context.Context) ([]string, error) {
	return []string{"chi_sim", "eng"}, nil
}

func pageOf(imagePath string) int {
	base := strings.TrimSuffix(filepath.Base(imagePath), ".png")
	n, _ := strconv.Atoi(strings.TrimPrefix(base, "page_"))
	return n
}

func baseOptions(t *testing.T, pages []int) (Options, *fakeRenderer, *fakeEngine) {
	t.Helper()
	renderer := &fakeRenderer{}
	engine := &fakeEngine{}
	return Options{
		Document:   "/tmp/in.pdf",
		Pages:      pages,
		DPI:        300,
		Languages:  []string{"chi_sim", "eng"},
		Engine:     engine,
		Renderer:   renderer,
		ScratchDir: t.TempDir(),
		MaxWorkers: 4,
	}, renderer, engine
}

func pagesOf(doc types.Document) []int {
	out := make([]int, 0, len(doc.Pages))
	for _, p := range doc.Pages {
		out = append(out, p.Page)
	}
	return out
}

func TestRunDeliversPagesInOrder(t *testing.T) {
	selection := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
	opts, renderer, _ := baseOptions(t, selection)

	// Random completion order exercises the reordering.
	rng := rand.New(rand.NewSource(42))
	var mu sync.Mutex
	renderer.delay = func(int) time.Duration {
		mu.Lock()
		defer mu.Unlock()
		return time.Duration(rng.Intn(20)) * time.Millisecond
	}

	var progress bytes.Buffer
	opts.Progress = &progress

	doc, err := Run(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, selection, pagesOf(doc))
	for _, p := range doc.Pages {
		assert.True(t, p.Succeeded())
		assert.Equal(t, fmt.Sprintf("text of page %d", p.Page), p.Text)
		assert.InDelta(t, 90, p.Confidence, 0.001)
	}
	assert.Equal(t, "fake-ocr", doc.Engine)
	assert.Equal(t, "chi_sim+eng", doc.Language)

	// Progress lines come out in page order too.
	lines := strings.Split(strings.TrimSpace(progress.String()), "\n")
	require.Len(t, lines, len(selection))
	for i, line := range lines {
		assert.Contains(t, line, fmt.Sprintf("page %d ", selection[i]))
	}
}

func TestRunSparseSelection(t *testing.T) {
	opts, renderer, _ := baseOptions(t, []int{2, 5, 9})

	doc, err := Run(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, []int{2, 5, 9}, pagesOf(doc))
	assert.ElementsMatch(t, []int{2, 5, 9}, renderer.renderedPages())
}

func TestRunEmptySelection(t *testing.T) {
	opts, _, _ := baseOptions(t, nil)

	doc, err := Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Empty(t, doc.Pages)
}

func TestRunPageFailureContinues(t *testing.T) {
	opts, renderer, _ := baseOptions(t, []int{1, 2, 3, 4, 5})
	renderer.failOn = map[int]error{3: errors.New("corrupt page stream")}

	var progress bytes.Buffer
	opts.Progress = &progress

	doc, err := Run(context.Background(), opts)
	require.NoError(t, err, "a page failure must not abort the run")

	assert.Equal(t, []int{1, 2, 3, 4, 5}, pagesOf(doc))
	for _, p := range doc.Pages {
		if p.Page == 3 {
			assert.Equal(t, types.PageFailed, p.Status)
			assert.Equal(t, types.FailureRaster, p.Failure)
			assert.Contains(t, p.Detail, "corrupt page stream")
		} else {
			assert.True(t, p.Succeeded())
		}
	}
	assert.Contains(t, progress.String(), "failed:  page 3")
}

func TestRunRecognitionFailureContinues(t *testing.T) {
	opts, _, engine := baseOptions(t, []int{1, 2, 3})
	engine.failOn = map[int]error{2: errors.New("no text layer detected")}

	doc, err := Run(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 3}, pagesOf(doc))
	assert.Equal(t, types.FailureRecognize, doc.Pages[1].Failure)
}

func TestRunEngineErrorAborts(t *testing.T) {
	opts, _, engine := baseOptions(t, []int{1, 2, 3, 4, 5, 6})
	opts.MaxWorkers = 1
	engine.failOn = map[int]error{
		3: &ocr.EngineError{Engine: types.EngineTesseract, Reason: "tessdata gone"},
	}

	doc, err := Run(context.Background(), opts)
	require.Error(t, err)

	var engErr *ocr.EngineError
	assert.ErrorAs(t, err, &engErr)

	// With one worker the completed prefix is exactly the pages before
	// the fatal one.
	assert.Equal(t, []int{1, 2}, pagesOf(doc))
}

func TestRunEngineErrorStopsDispatch(t *testing.T) {
	selection := make([]int, 20)
	for i := range selection {
		selection[i] = i + 1
	}
	opts, renderer, engine := baseOptions(t, selection)
	opts.MaxWorkers = 2
	renderer.delay = func(int) time.Duration { return 5 * time.Millisecond }
	engine.failOn = map[int]error{
		1: &ocr.EngineError{Engine: types.EngineTesseract, Reason: "tessdata gone"},
	}

	_, err := Run(context.Background(), opts)
	require.Error(t, err)

	// Cancellation is asynchronous, so a couple of extra pages may slip
	// through, but nothing close to the full selection.
	assert.LessOrEqual(t, len(renderer.renderedPages()), 6)
}

func TestRunPageTimeout(t *testing.T) {
	opts, renderer, _ := baseOptions(t, []int{1, 2, 3})
	opts.PageTimeout = 30 * time.Millisecond
	renderer.delay = func(page int) time.Duration {
		if page == 2 {
			return 500 * time.Millisecond
		}
		return 0
	}

	doc, err := Run(context.Background(), opts)
	require.NoError(t, err, "a page timeout must not abort the run")

	assert.Equal(t, []int{1, 2, 3}, pagesOf(doc))
	assert.Equal(t, types.FailureTimeout, doc.Pages[1].Failure)
	assert.True(t, doc.Pages[0].Succeeded())
	assert.True(t, doc.Pages[2].Succeeded())
}

func TestRunCancel(t *testing.T) {
	selection := make([]int, 10)
	for i := range selection {
		selection[i] = i + 1
	}
	opts, renderer, _ := baseOptions(t, selection)
	opts.MaxWorkers = 2
	renderer.delay = func(int) time.Duration { return 50 * time.Millisecond }

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := Run(ctx, opts)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunScratchCleanup(t *testing.T) {
	opts, _, _ := baseOptions(t, []int{1, 2, 3})

	_, err := Run(context.Background(), opts)
	require.NoError(t, err)

	entries, err := os.ReadDir(opts.ScratchDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "page images should be removed after recognition")
}

func TestRunKeepImages(t *testing.T) {
	opts, _, _ := baseOptions(t, []int{1, 2, 3})
	opts.KeepImages = true

	_, err := Run(context.Background(), opts)
	require.NoError(t, err)

	entries, err := os.ReadDir(opts.ScratchDir)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}
