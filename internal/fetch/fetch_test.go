// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-digest/internal/observability"
	"github.com/pdiddy/paper-digest/pkg/types"
)

const fakePDFContent = "%PDF-1.4 fake"

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantID  string
		wantURL string
		wantErr bool
	}{
		{"arxiv abs", "https://arxiv.org/abs/2301.07041", "2301.07041", "https://arxiv.org/pdf/2301.07041.pdf", false},
		{"versioned", "https://arxiv.org/abs/2301.07041v2", "2301.07041v2", "https://arxiv.org/pdf/2301.07041v2.pdf", false},
		{"old style id", "http://arxiv.org/abs/hep-th/9901001", "9901001", "http://arxiv.org/pdf/hep-th/9901001.pdf", false},
		{"whitespace trimmed", "  https://arxiv.org/abs/2301.07041 \n", "2301.07041", "https://arxiv.org/pdf/2301.07041.pdf", false},
		{"pdf url rejected", "https://arxiv.org/pdf/2301.07041", "", "", true},
		{"bare id rejected", "2301.07041", "", "", true},
		{"trailing slash rejected", "https://arxiv.org/abs/", "", "", true},
		{"empty rejected", "", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, types.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, got.Identifier)
			assert.Equal(t, tt.wantURL, got.DownloadURL)
			assert.Equal(t, tt.wantID+".pdf", got.Filename())
		})
	}
}

func TestReadList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "papers.txt")
	content := "https://arxiv.org/abs/2301.07041\n\n   \n# a comment\n  https://arxiv.org/abs/1706.03762  \r\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	got, err := ReadList(path)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://arxiv.org/abs/2301.07041",
		"https://arxiv.org/abs/1706.03762",
	}, got)
}

func TestReadList_Missing(t *testing.T) {
	_, err := ReadList(filepath.Join(t.TempDir(), "nope.txt"))
	assert.Error(t, err)
}

// newTestServer serves fake PDFs under /pdf/ and 404 for /pdf/missing.pdf.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/pdf/missing.pdf":
			http.NotFound(w, r)
		case strings.HasPrefix(r.URL.Path, "/pdf/"):
			w.Header().Set("Content-Type", "application/pdf")
			fmt.Fprint(w, fakePDFContent)
		default:
			http.NotFound(w, r)
		}
	}))
}

// logMessages decodes JSON log lines and returns their messages.
func logMessages(t *testing.T, buf *bytes.Buffer) []string {
	t.Helper()
	var msgs []string
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		var entry struct {
			Message string `json:"message"`
		}
		require.NoError(t, json.Unmarshal(line, &entry))
		msgs = append(msgs, entry.Message)
	}
	return msgs
}

func count(msgs []string, want string) int {
	n := 0
	for _, m := range msgs {
		if m == want {
			n++
		}
	}
	return n
}

func TestDownloadAll_MalformedAndWellFormed(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()

	dir := t.TempDir()
	var buf bytes.Buffer
	log := zerolog.New(&buf)
	m := observability.NewMetrics("test")

	urls := []string{
		"not-a-paper-url",
		ts.URL + "/abs/2301.07041",
	}
	cfg := types.FetchConfig{DatasetDir: dir}

	var report Report
	require.NotPanics(t, func() {
		report = DownloadAll(context.Background(), ts.Client(), urls, cfg, log, m)
	})

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "2301.07041.pdf", entries[0].Name())

	data, err := os.ReadFile(filepath.Join(dir, "2301.07041.pdf"))
	require.NoError(t, err)
	assert.Equal(t, fakePDFContent, string(data))

	msgs := logMessages(t, &buf)
	assert.Equal(t, 1, count(msgs, "invalid URL"))

	assert.Equal(t, []string{filepath.Join(dir, "2301.07041.pdf")}, report.Saved)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, "not-a-paper-url", report.Failures[0].Item)
	assert.ErrorIs(t, report.Failures[0], types.ErrInvalidInput)
	assert.Equal(t, 2, report.Total())

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Downloads.WithLabelValues(StatusSaved)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Downloads.WithLabelValues(StatusInvalid)))
}

func TestDownloadAll_ContinuesAfterNetworkFailure(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()

	dir := t.TempDir()
	urls := []string{
		ts.URL + "/abs/missing",
		ts.URL + "/abs/1706.03762",
	}

	report := DownloadAll(context.Background(), ts.Client(), urls, types.FetchConfig{DatasetDir: dir}, zerolog.Nop(), nil)

	require.Len(t, report.Saved, 1)
	require.Len(t, report.Failures, 1)
	assert.True(t, report.HasFailures())
	assert.ErrorIs(t, report.Failures[0], types.ErrNetwork)
	assert.Equal(t, types.ErrorKind(report.Failures[0]), "network")

	_, err := os.Stat(filepath.Join(dir, "missing.pdf"))
	assert.True(t, os.IsNotExist(err), "failed download must not leave a file")

	matches, err := filepath.Glob(filepath.Join(dir, ".fetch-*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, matches, "temp files must be cleaned up")
}

func TestDownloadAll_OverwritesExisting(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()

	dir := t.TempDir()
	existing := filepath.Join(dir, "2301.07041.pdf")
	require.NoError(t, os.WriteFile(existing, []byte("stale"), 0o644))

	report := DownloadAll(context.Background(), ts.Client(), []string{ts.URL + "/abs/2301.07041"},
		types.FetchConfig{DatasetDir: dir}, zerolog.Nop(), nil)
	require.False(t, report.HasFailures())

	data, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, fakePDFContent, string(data))
}

func TestDownloadAll_CreatesDatasetDir(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()

	dir := filepath.Join(t.TempDir(), "nested", "dataset")
	report := DownloadAll(context.Background(), ts.Client(), []string{ts.URL + "/abs/2301.07041"},
		types.FetchConfig{DatasetDir: dir}, zerolog.Nop(), nil)
	require.Len(t, report.Saved, 1)
	assert.FileExists(t, filepath.Join(dir, "2301.07041.pdf"))
}

func TestDownloadAll_SetsHeaders(t *testing.T) {
	var ua, accept string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua = r.Header.Get("User-Agent")
		accept = r.Header.Get("Accept")
		fmt.Fprint(w, fakePDFContent)
	}))
	defer ts.Close()

	cfg := types.FetchConfig{
		HTTPConfig: types.HTTPConfig{UserAgent: "paper-digest/test"},
		DatasetDir: t.TempDir(),
	}
	DownloadAll(context.Background(), ts.Client(), []string{ts.URL + "/abs/1"}, cfg, zerolog.Nop(), nil)

	assert.Equal(t, "paper-digest/test", ua)
	assert.Equal(t, "application/pdf", accept)
}

func TestDownloadAll_VerifyRejectsNonPDF(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()

	dir := t.TempDir()
	cfg := types.FetchConfig{DatasetDir: dir, VerifyPDF: true}
	report := DownloadAll(context.Background(), ts.Client(), []string{ts.URL + "/abs/2301.07041"}, cfg, zerolog.Nop(), nil)

	require.Len(t, report.Failures, 1)
	assert.ErrorIs(t, report.Failures[0], types.ErrNetwork)
	assert.NoFileExists(t, filepath.Join(dir, "2301.07041.pdf"))
}

func TestDownloadAll_StopsOnCancel(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report := DownloadAll(ctx, ts.Client(), []string{ts.URL + "/abs/1", ts.URL + "/abs/2"},
		types.FetchConfig{DatasetDir: t.TempDir()}, zerolog.Nop(), nil)
	assert.Zero(t, report.Total())
}
