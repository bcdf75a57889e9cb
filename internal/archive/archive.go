// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package archive persists recognized documents in a SQLite database
// with a full-text index over page text, so earlier runs stay
// searchable without re-processing the PDFs.
package archive

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/weiuou/pdf-ocr/internal/output"
	"github.com/weiuou/pdf-ocr/pkg/types"
)

const dbFile = "archive.db"

// Store manages the archive SQLite database.
type Store struct {
	db         *sql.DB
	maxResults int
}

// Open opens or creates the archive database at dir/archive.db,
// creating the schema if it does not exist.
func Open(cfg types.ArchiveConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating archive directory: %w", err)
	}

	dbPath := filepath.Join(cfg.Dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening archive database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{db: db, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			stem TEXT NOT NULL UNIQUE,
			source TEXT NOT NULL,
			language TEXT,
			dpi INTEGER,
			engine TEXT,
			pages INTEGER,
			avg_confidence REAL,
			indexed_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS pages (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			document_id INTEGER NOT NULL REFERENCES documents(id),
			page INTEGER NOT NULL,
			text TEXT NOT NULL,
			confidence REAL,
			status TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_pages_document_id ON pages(document_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='pages_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE pages_fts USING fts5(text, content=pages, content_rowid=rowid)`,
			`CREATE TRIGGER pages_ai AFTER INSERT ON pages BEGIN
				INSERT INTO pages_fts(rowid, text) VALUES (new.rowid, new.text);
			END`,
			`CREATE TRIGGER pages_ad AFTER DELETE ON pages BEGIN
				INSERT INTO pages_fts(pages_fts, rowid, text) VALUES('delete', old.rowid, old.text);
			END`,
			`CREATE TRIGGER pages_au AFTER UPDATE ON pages BEGIN
				INSERT INTO pages_fts(pages_fts, rowid, text) VALUES('delete', old.rowid, old.text);
				INSERT INTO pages_fts(rowid, text) VALUES (new.rowid, new.text);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// Index stores one run's results, replacing any earlier run for the
// same document stem. Failed pages are stored too, with empty text, so
// the archive reflects the whole selection.
func (s *Store) Index(ctx context.Context, doc types.Document, report types.Report) error {
	stem := output.Stem(doc.Source)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	// Delete-then-insert keeps the FTS index in sync through the
	// triggers; an UPDATE of the document row would leave stale pages.
	var existing int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM documents WHERE stem = ?`, stem).Scan(&existing)
	switch {
	case err == nil:
		if _, err := tx.ExecContext(ctx, `DELETE FROM pages WHERE document_id = ?`, existing); err != nil {
			return fmt.Errorf("deleting old pages: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, existing); err != nil {
			return fmt.Errorf("deleting old document: %w", err)
		}
	case err != sql.ErrNoRows:
		return fmt.Errorf("checking for existing document: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO documents (stem, source, language, dpi, engine, pages, avg_confidence, indexed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		stem, doc.Source, doc.Language, doc.DPI, doc.Engine,
		report.TotalPages, report.AverageConfidence,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting document: %w", err)
	}
	docID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading document id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO pages (document_id, page, text, confidence, status) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing page insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range doc.Pages {
		if _, err := stmt.ExecContext(ctx, docID, p.Page, p.Text, p.Confidence, string(p.Status)); err != nil {
			return fmt.Errorf("inserting page %d: %w", p.Page, err)
		}
	}

	return tx.Commit()
}
