// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3"
)

var schema = []string{
	`CREATE TABLE runs (
		run_id TEXT PRIMARY KEY,
		generated_at TEXT NOT NULL,
		count INTEGER NOT NULL
	)`,
	`CREATE TABLE papers (
		paper_id TEXT PRIMARY KEY,
		filename TEXT NOT NULL,
		title TEXT NOT NULL,
		abstract TEXT,
		figures_count INTEGER NOT NULL
	)`,
	`CREATE TABLE links (
		paper_id TEXT NOT NULL REFERENCES papers(paper_id),
		position INTEGER NOT NULL,
		url TEXT NOT NULL,
		PRIMARY KEY (paper_id, position)
	)`,
	`CREATE INDEX idx_links_url ON links(url)`,
}

// WriteSQLite writes doc to a fresh SQLite database at path, replacing any
// existing file.
func WriteSQLite(ctx context.Context, path string, doc Document) error {
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing previous database: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range schema {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO runs (run_id, generated_at, count) VALUES (?, ?, ?)`,
		doc.RunID, doc.GeneratedAt.Format("2006-01-02T15:04:05Z07:00"), doc.Count); err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}

	paperStmt, err := tx.PrepareContext(ctx, `INSERT INTO papers (paper_id, filename, title, abstract, figures_count) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing paper insert: %w", err)
	}
	defer paperStmt.Close()

	linkStmt, err := tx.PrepareContext(ctx, `INSERT INTO links (paper_id, position, url) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing link insert: %w", err)
	}
	defer linkStmt.Close()

	for _, r := range doc.Records {
		if _, err := paperStmt.ExecContext(ctx, r.PaperID, r.Filename, r.Title, r.Abstract, r.FiguresCount); err != nil {
			return fmt.Errorf("inserting paper %s: %w", r.PaperID, err)
		}
		for i, link := range r.Links {
			if _, err := linkStmt.ExecContext(ctx, r.PaperID, i, link); err != nil {
				return fmt.Errorf("inserting link for %s: %w", r.PaperID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing: %w", err)
	}
	return nil
}
