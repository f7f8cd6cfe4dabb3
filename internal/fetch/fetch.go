// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch downloads papers listed by abstract-view URL into a dataset
// directory.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog"

	"github.com/pdiddy/paper-digest/internal/observability"
	"github.com/pdiddy/paper-digest/pkg/types"
)

// Download statuses used in logs and metrics.
const (
	StatusSaved   = "saved"
	StatusInvalid = "invalid"
	StatusFailed  = "failed"
)

// Report holds the outcome of a download run.
type Report struct {
	// Saved lists the paths written, in input order.
	Saved []string
	// Failures lists entries that were invalid or failed to download.
	Failures []types.Failure
}

// Total returns the number of list entries processed.
func (r Report) Total() int {
	return len(r.Saved) + len(r.Failures)
}

// HasFailures reports whether any entry failed.
func (r Report) HasFailures() bool {
	return len(r.Failures) > 0
}

// DownloadAll fetches every entry of urls into cfg.DatasetDir, one at a time.
// Invalid entries and failed downloads are logged, recorded in the report,
// and skipped; the loop never stops early except on context cancellation.
// Existing files are overwritten.
func DownloadAll(ctx context.Context, client *http.Client, urls []string, cfg types.FetchConfig, log zerolog.Logger, m *observability.Metrics) Report {
	var report Report

	log.Info().Int("count", len(urls)).Msg("found papers to download")

	if err := os.MkdirAll(cfg.DatasetDir, 0o755); err != nil {
		for _, u := range urls {
			report.Failures = append(report.Failures, types.Failure{
				Item: u,
				Err:  fmt.Errorf("%w: creating directory %s: %v", types.ErrNetwork, cfg.DatasetDir, err),
			})
		}
		log.Error().Err(err).Str("dir", cfg.DatasetDir).Msg("cannot create dataset directory")
		return report
	}

	for i, u := range urls {
		if err := ctx.Err(); err != nil {
			log.Warn().Err(err).Msg("download interrupted")
			break
		}

		target, err := Resolve(u)
		if err != nil {
			log.Warn().Str("url", u).Msg("invalid URL")
			report.Failures = append(report.Failures, types.Failure{Item: u, Err: err})
			m.RecordDownload(StatusInvalid)
			continue
		}

		log.Info().
			Str("progress", fmt.Sprintf("%d/%d", i+1, len(urls))).
			Str("id", target.Identifier).
			Msg("downloading")

		dest, err := Download(ctx, client, target, cfg)
		if err != nil {
			log.Error().Err(err).Str("url", u).Msg("download failed")
			report.Failures = append(report.Failures, types.Failure{Item: u, Err: err})
			m.RecordDownload(StatusFailed)
			continue
		}

		log.Info().Str("path", dest).Msg("saved")
		report.Saved = append(report.Saved, dest)
		m.RecordDownload(StatusSaved)
	}

	log.Info().
		Int("saved", len(report.Saved)).
		Int("failed", len(report.Failures)).
		Int("total", report.Total()).
		Msg("download summary")
	return report
}

// Download fetches one resolved target into cfg.DatasetDir and returns the
// written path. Failures wrap types.ErrNetwork.
func Download(ctx context.Context, client *http.Client, target Target, cfg types.FetchConfig) (string, error) {
	dest := filepath.Join(cfg.DatasetDir, target.Filename())
	if err := downloadFile(ctx, client, target.DownloadURL, dest, cfg); err != nil {
		return "", fmt.Errorf("%w: downloading %s: %v", types.ErrNetwork, target.Identifier, err)
	}
	if cfg.VerifyPDF {
		if err := verifyPDF(dest); err != nil {
			os.Remove(dest)
			return "", fmt.Errorf("%w: %s is not a readable PDF: %v", types.ErrNetwork, target.Identifier, err)
		}
	}
	return dest, nil
}

// downloadFile fetches url to destPath through a temporary file in the same
// directory, renaming it into place on success.
func downloadFile(ctx context.Context, client *http.Client, url, destPath string, cfg types.FetchConfig) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if cfg.UserAgent != "" {
		req.Header.Set("User-Agent", cfg.UserAgent)
	}
	req.Header.Set("Accept", "application/pdf")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".fetch-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, copyErr := io.Copy(tmpFile, resp.Body)
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// verifyPDF opens path as a PDF and checks that it has at least one page.
func verifyPDF(path string) (err error) {
	// The reader panics on some truncated inputs.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed PDF: %v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if r.NumPage() == 0 {
		return fmt.Errorf("no pages")
	}
	return nil
}
