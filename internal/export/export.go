// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export writes a run's records to YAML, JSON, or SQLite files.
// Output is write-only; nothing here is read back by later runs.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-digest/pkg/types"
)

// Supported formats.
const (
	FormatYAML   = "yaml"
	FormatJSON   = "json"
	FormatSQLite = "sqlite"
)

const baseName = "records"

// Document is the top-level shape of the YAML and JSON exports.
type Document struct {
	RunID       string              `json:"run_id" yaml:"run_id"`
	GeneratedAt time.Time           `json:"generated_at" yaml:"generated_at"`
	Count       int                 `json:"count" yaml:"count"`
	Records     []types.PaperRecord `json:"records" yaml:"records"`
}

// NewDocument wraps records for export.
func NewDocument(runID string, records []types.PaperRecord) Document {
	if records == nil {
		records = []types.PaperRecord{}
	}
	return Document{
		RunID:       runID,
		GeneratedAt: time.Now().UTC().Truncate(time.Second),
		Count:       len(records),
		Records:     records,
	}
}

// Path returns the file written for format under dir.
func Path(dir, format string) string {
	ext := format
	if format == FormatSQLite {
		ext = "db"
	}
	return filepath.Join(dir, baseName+"."+ext)
}

// Write exports records to dir in each of formats and returns the paths
// written. Unknown formats fail before anything is written.
func Write(ctx context.Context, dir, runID string, records []types.PaperRecord, formats []string) ([]string, error) {
	for _, f := range formats {
		switch f {
		case FormatYAML, FormatJSON, FormatSQLite:
		default:
			return nil, fmt.Errorf("%w: unknown export format %q", types.ErrInvalidInput, f)
		}
	}
	if len(formats) == 0 {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating export directory: %w", err)
	}

	doc := NewDocument(runID, records)
	var written []string
	for _, f := range formats {
		path := Path(dir, f)
		var err error
		switch f {
		case FormatYAML:
			err = writeYAML(path, doc)
		case FormatJSON:
			err = writeJSON(path, doc)
		case FormatSQLite:
			err = WriteSQLite(ctx, path, doc)
		}
		if err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

func writeYAML(path string, doc Document) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func writeJSON(path string, doc Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
