// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package archive

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiuou/pdf-ocr/pkg/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(types.ArchiveConfig{Dir: t.TempDir(), MaxResults: 10})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testDoc(stem string) (types.Document, types.Report) {
	doc := types.Document{
		Source:   "/scans/" + stem + ".pdf",
		Language: "chi_sim+eng",
		DPI:      300,
		Engine:   "tesseract",
		Pages: []types.PageResult{
			{Page: 1, Text: "deep neural networks for optical character recognition", Confidence: 93.5, Status: types.PageSuccess},
			{Page: 2, Text: "training data preparation and augmentation", Confidence: 88.0, Status: types.PageSuccess},
			{Page: 3, Status: types.PageFailed, Failure: types.FailureRaster, Detail: "boom"},
		},
	}
	report := types.Report{TotalPages: 3, Succeeded: 2, Failed: 1, AverageConfidence: 90.75, Threshold: 60}
	return doc, report
}

func TestIndexAndFullTextSearch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	doc, report := testDoc("thesis")
	require.NoError(t, s.Index(ctx, doc, report))

	results, err := s.Search(ctx, SearchOptions{Query: "neural"})
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Equal(t, "thesis", results[0].Document)
	assert.Equal(t, "/scans/thesis.pdf", results[0].Source)
	assert.Equal(t, 1, results[0].Page)
	assert.InDelta(t, 93.5, results[0].Confidence, 0.001)
	assert.Contains(t, results[0].Snippet, "[neural]")
}

func TestSearchStructured(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	doc, report := testDoc("thesis")
	require.NoError(t, s.Index(ctx, doc, report))

	results, err := s.Search(ctx, SearchOptions{})
	require.NoError(t, err)
	require.Len(t, results, 3)
	for i, want := range []int{1, 2, 3} {
		assert.Equal(t, want, results[i].Page)
	}

	results, err = s.Search(ctx, SearchOptions{MinConfidence: 90})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 1, results[0].Page)
}

func TestSearchDocumentFilter(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, stem := range []string{"alpha", "beta"} {
		doc, report := testDoc(stem)
		require.NoError(t, s.Index(ctx, doc, report))
	}

	results, err := s.Search(ctx, SearchOptions{Query: "neural", Document: "beta"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "beta", results[0].Document)
}

func TestSearchLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	doc, report := testDoc("thesis")
	require.NoError(t, s.Index(ctx, doc, report))

	results, err := s.Search(ctx, SearchOptions{MaxResults: 2})
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestIndexReplacesEarlierRun(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	doc, report := testDoc("thesis")
	require.NoError(t, s.Index(ctx, doc, report))

	doc.Pages = []types.PageResult{
		{Page: 1, Text: "entirely rewritten contents", Confidence: 70, Status: types.PageSuccess},
	}
	report.TotalPages = 1
	require.NoError(t, s.Index(ctx, doc, report))

	// The old pages are gone from the full-text index.
	results, err := s.Search(ctx, SearchOptions{Query: "neural"})
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = s.Search(ctx, SearchOptions{Query: "rewritten"})
	require.NoError(t, err)
	assert.Len(t, results, 1)

	results, err = s.Search(ctx, SearchOptions{})
	require.NoError(t, err)
	assert.Len(t, results, 1, "re-indexing must not accumulate pages")
}

func TestDump(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	doc, report := testDoc("thesis")
	require.NoError(t, s.Index(ctx, doc, report))

	dump, err := s.Dump(ctx, "thesis")
	require.NoError(t, err)

	assert.Equal(t, "thesis", dump.Document)
	assert.Equal(t, "chi_sim+eng", dump.Language)
	assert.Equal(t, 300, dump.DPI)
	require.Len(t, dump.Pages, 3)
	assert.Equal(t, "failed", dump.Pages[2].Status)

	var buf bytes.Buffer
	require.NoError(t, dump.WriteYAML(&buf))
	assert.Contains(t, buf.String(), "document: thesis")
	assert.Contains(t, buf.String(), "page: 1")

	_, err = s.Dump(ctx, "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not in archive")
}
