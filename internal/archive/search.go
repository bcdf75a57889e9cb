// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package archive

import (
	"context"
	"fmt"
	"strings"
)

// SearchOptions holds parameters for archive queries.
type SearchOptions struct {
	// Query is the FTS5 match expression. Empty skips full-text
	// matching and returns pages in document order.
	Query string

	// Document filters to one indexed document stem.
	Document string

	// MinConfidence drops pages below the given confidence.
	MinConfidence float64

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// SearchResult is one matching archived page.
type SearchResult struct {
	Document   string  `json:"document" yaml:"document"`
	Source     string  `json:"source" yaml:"source"`
	Page       int     `json:"page" yaml:"page"`
	Confidence float64 `json:"confidence" yaml:"confidence"`

	// Snippet is the matched passage with [brackets] around hits for
	// full-text queries, or the leading page text otherwise.
	Snippet string `json:"snippet" yaml:"snippet"`
}

// Search queries archived pages. Full-text queries rank by relevance;
// structured-only queries sort by document stem and page.
func (s *Store) Search(ctx context.Context, opts SearchOptions) ([]SearchResult, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb     strings.Builder
		args   []any
		useFTS = opts.Query != ""
	)

	if useFTS {
		qb.WriteString(
			`SELECT d.stem, d.source, p.page, p.confidence,
				snippet(pages_fts, 0, '[', ']', '...', 12)
			FROM pages_fts
			JOIN pages p ON p.rowid = pages_fts.rowid
			JOIN documents d ON p.document_id = d.id
			WHERE pages_fts MATCH ?`)
		args = append(args, opts.Query)
	} else {
		qb.WriteString(
			`SELECT d.stem, d.source, p.page, p.confidence,
				substr(p.text, 1, 160)
			FROM pages p
			JOIN documents d ON p.document_id = d.id
			WHERE 1=1`)
	}

	if opts.Document != "" {
		qb.WriteString(` AND d.stem = ?`)
		args = append(args, opts.Document)
	}
	if opts.MinConfidence > 0 {
		qb.WriteString(` AND p.confidence >= ?`)
		args = append(args, opts.MinConfidence)
	}

	if useFTS {
		qb.WriteString(` ORDER BY pages_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY d.stem, p.page`)
	}
	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying archive: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.Document, &r.Source, &r.Page, &r.Confidence, &r.Snippet); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		results = append(results, r)
	}

	return results, rows.Err()
}
