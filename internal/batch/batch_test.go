// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-digest/internal/observability"
	"github.com/pdiddy/paper-digest/pkg/types"
)

// fakeExtractor returns canned records keyed by file name, or an error for
// names listed in errs.
type fakeExtractor struct {
	records map[string]types.PaperRecord
	errs    map[string]error
	calls   []string
}

func (f *fakeExtractor) Extract(_ context.Context, pdfPath string) (types.PaperRecord, error) {
	name := filepath.Base(pdfPath)
	f.calls = append(f.calls, name)
	if err, ok := f.errs[name]; ok {
		return types.PaperRecord{}, err
	}
	if rec, ok := f.records[name]; ok {
		return rec, nil
	}
	return types.PaperRecord{Title: types.DefaultTitle, Links: []string{}}, nil
}

// writeFiles creates empty files with the given names in dir.
func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte("%PDF-1.4"), 0o644))
	}
}

func sortedIDs(records []types.PaperRecord) []string {
	ids := make([]string, len(records))
	for i, r := range records {
		ids[i] = r.PaperID
	}
	sort.Strings(ids)
	return ids
}

func TestProcessDirectory_EmptyDirectory(t *testing.T) {
	ex := &fakeExtractor{}
	result, err := ProcessDirectory(context.Background(), ex, t.TempDir(), zerolog.Nop(), nil)
	require.NoError(t, err)
	assert.Empty(t, result.Records)
	assert.Empty(t, result.Failures)
	assert.Zero(t, result.Total())
	assert.Empty(t, ex.calls)
}

func TestProcessDirectory_AnnotatesRecords(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "2301.07041.pdf", "1706.03762.pdf")

	ex := &fakeExtractor{records: map[string]types.PaperRecord{
		"2301.07041.pdf": {Title: "First", Abstract: "a", FiguresCount: 2, Links: []string{"https://example.com"}},
		"1706.03762.pdf": {Title: "Attention Is All You Need", Links: []string{}},
	}}

	result, err := ProcessDirectory(context.Background(), ex, dir, zerolog.Nop(), nil)
	require.NoError(t, err)
	require.Len(t, result.Records, 2)
	assert.False(t, result.HasFailures())

	byID := map[string]types.PaperRecord{}
	for _, r := range result.Records {
		byID[r.PaperID] = r
	}
	first := byID["2301.07041"]
	assert.Equal(t, "2301.07041.pdf", first.Filename)
	assert.Equal(t, "First", first.Title)
	assert.Equal(t, 2, first.FiguresCount)
	assert.Equal(t, "1706.03762.pdf", byID["1706.03762"].Filename)
}

func TestProcessDirectory_FiltersExtension(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.pdf", "notes.txt", "b.PDF", "c.pdf.bak")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.pdf"), 0o755))

	ex := &fakeExtractor{}
	result, err := ProcessDirectory(context.Background(), ex, dir, zerolog.Nop(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, sortedIDs(result.Records))
	assert.Equal(t, []string{"a.pdf"}, ex.calls)
}

func TestProcessDirectory_ContinuesOnFailure(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantKind string
	}{
		{"service error", fmt.Errorf("%w: HTTP 503", types.ErrService), "service"},
		{"parse error", fmt.Errorf("%w: unexpected EOF", types.ErrParse), "parse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFiles(t, dir, "bad.pdf", "good1.pdf", "good2.pdf")

			ex := &fakeExtractor{errs: map[string]error{"bad.pdf": tt.err}}
			m := observability.NewMetrics("test")

			result, err := ProcessDirectory(context.Background(), ex, dir, zerolog.Nop(), m)
			require.NoError(t, err)

			assert.Equal(t, []string{"good1", "good2"}, sortedIDs(result.Records))
			require.Len(t, result.Failures, 1)
			assert.Equal(t, "bad.pdf", result.Failures[0].Item)
			assert.Equal(t, tt.wantKind, result.Failures[0].Kind())
			assert.ErrorIs(t, result.Failures[0], tt.err)
			assert.Equal(t, 3, result.Total())

			assert.Equal(t, 2.0, testutil.ToFloat64(m.Extractions.WithLabelValues(StatusOK)))
			assert.Equal(t, 1.0, testutil.ToFloat64(m.Extractions.WithLabelValues(tt.wantKind)))
		})
	}
}

func TestProcessDirectory_MissingDirectory(t *testing.T) {
	_, err := ProcessDirectory(context.Background(), &fakeExtractor{},
		filepath.Join(t.TempDir(), "absent"), zerolog.Nop(), nil)
	assert.Error(t, err)
}

func TestProcessDirectory_Cancelled(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.pdf", "b.pdf")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ex := &fakeExtractor{}
	result, err := ProcessDirectory(ctx, ex, dir, zerolog.Nop(), nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, result.Records)
	assert.Empty(t, ex.calls)
}
