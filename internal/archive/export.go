// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package archive

import (
	"context"
	"database/sql"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"
)

// DumpPage is the export shape of one archived page.
type DumpPage struct {
	Page       int     `json:"page" yaml:"page"`
	Confidence float64 `json:"confidence" yaml:"confidence"`
	Status     string  `json:"status" yaml:"status"`
	Text       string  `json:"text" yaml:"text"`
}

// DumpDocument is the export shape of one archived document with all
// its pages in order.
type DumpDocument struct {
	Document  string     `json:"document" yaml:"document"`
	Source    string     `json:"source" yaml:"source"`
	Language  string     `json:"language" yaml:"language"`
	DPI       int        `json:"dpi" yaml:"dpi"`
	Engine    string     `json:"engine" yaml:"engine"`
	IndexedAt string     `json:"indexed_at" yaml:"indexed_at"`
	Pages     []DumpPage `json:"pages" yaml:"pages"`
}

// Dump loads a complete archived document by stem.
func (s *Store) Dump(ctx context.Context, stem string) (DumpDocument, error) {
	var out DumpDocument
	err := s.db.QueryRowContext(ctx,
		`SELECT stem, source, language, dpi, engine, indexed_at FROM documents WHERE stem = ?`, stem,
	).Scan(&out.Document, &out.Source, &out.Language, &out.DPI, &out.Engine, &out.IndexedAt)
	if err == sql.ErrNoRows {
		return out, fmt.Errorf("document %s not in archive", stem)
	}
	if err != nil {
		return out, fmt.Errorf("looking up document: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT p.page, p.confidence, p.status, p.text
		 FROM pages p
		 JOIN documents d ON p.document_id = d.id
		 WHERE d.stem = ?
		 ORDER BY p.page`, stem)
	if err != nil {
		return out, fmt.Errorf("querying pages: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p DumpPage
		if err := rows.Scan(&p.Page, &p.Confidence, &p.Status, &p.Text); err != nil {
			return out, fmt.Errorf("scanning page: %w", err)
		}
		out.Pages = append(out.Pages, p)
	}

	return out, rows.Err()
}

// WriteYAML renders the dump to w.
func (d DumpDocument) WriteYAML(w io.Writer) error {
	data, err := yaml.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	_, err = w.Write(data)
	return err
}
