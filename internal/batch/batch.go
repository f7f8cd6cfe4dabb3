// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package batch drives an extractor over every document in a dataset
// directory.
package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/paper-digest/internal/observability"
	"github.com/pdiddy/paper-digest/pkg/types"
)

// pdfExt is the only extension picked up from the dataset directory.
const pdfExt = ".pdf"

// StatusOK labels a successful extraction in metrics.
const StatusOK = "ok"

// Extractor turns one document into a record. *grobid.Client implements it;
// tests use fakes.
type Extractor interface {
	Extract(ctx context.Context, pdfPath string) (types.PaperRecord, error)
}

// Result holds the outcome of a directory run.
type Result struct {
	// Records holds one record per document that extracted cleanly.
	Records []types.PaperRecord
	// Failures holds one entry per document that did not.
	Failures []types.Failure
}

// Total returns the number of documents processed.
func (r Result) Total() int {
	return len(r.Records) + len(r.Failures)
}

// HasFailures reports whether any document failed extraction.
func (r Result) HasFailures() bool {
	return len(r.Failures) > 0
}

// ListDocuments returns the paths of the .pdf files in dir in directory
// enumeration order. Subdirectories are ignored.
func ListDocuments(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading dataset directory %s: %w", dir, err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), pdfExt) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	return paths, nil
}

// ProcessDirectory runs ex over every document in dir. Per-document failures
// are logged and collected; they never stop the run. An empty directory
// yields an empty Result. The only errors returned are an unreadable
// directory and context cancellation.
func ProcessDirectory(ctx context.Context, ex Extractor, dir string, log zerolog.Logger, m *observability.Metrics) (Result, error) {
	var result Result

	paths, err := ListDocuments(dir)
	if err != nil {
		return result, err
	}

	log.Info().Int("count", len(paths)).Str("dir", dir).Msg("found documents to process")

	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		filename := filepath.Base(path)
		paperID := strings.TrimSuffix(filename, pdfExt)
		log.Info().
			Str("progress", fmt.Sprintf("[%d/%d]", i+1, len(paths))).
			Str("paper_id", paperID).
			Msg("processing")

		start := time.Now()
		rec, err := ex.Extract(ctx, path)
		elapsed := time.Since(start).Seconds()
		if err != nil {
			log.Error().Err(err).
				Str("paper_id", paperID).
				Str("kind", types.ErrorKind(err)).
				Msg("extraction failed")
			result.Failures = append(result.Failures, types.Failure{Item: filename, Err: err})
			m.RecordExtraction(types.ErrorKind(err), elapsed)
			continue
		}

		rec.PaperID = paperID
		rec.Filename = filename
		result.Records = append(result.Records, rec)
		m.RecordExtraction(StatusOK, elapsed)

		log.Debug().
			Str("paper_id", paperID).
			Int("figures", rec.FiguresCount).
			Int("links", len(rec.Links)).
			Msg("extracted")
	}

	log.Info().
		Int("processed", len(result.Records)).
		Int("failed", len(result.Failures)).
		Int("total", result.Total()).
		Msg("batch summary")
	return result, nil
}
