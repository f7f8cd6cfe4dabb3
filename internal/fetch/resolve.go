// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/pdiddy/paper-digest/pkg/types"
)

const (
	// absSegment marks an abstract-view URL (e.g. https://arxiv.org/abs/2301.07041).
	absSegment = "/abs/"
	// pdfSegment replaces absSegment in the document-view URL.
	pdfSegment = "/pdf/"
	pdfExt     = ".pdf"
)

// Target is a resolved download list entry.
type Target struct {
	// SourceURL is the abstract-view URL as listed.
	SourceURL string
	// Identifier is the final path segment of SourceURL (e.g. "2301.07041").
	Identifier string
	// DownloadURL is the document-view URL (e.g. https://arxiv.org/pdf/2301.07041.pdf).
	DownloadURL string
}

// Filename returns the file name the document is saved under.
func (t Target) Filename() string {
	return t.Identifier + pdfExt
}

// Resolve derives the identifier and download URL from an abstract-view
// URL. Entries without the abstract-view segment, or with nothing after the
// last slash, fail with types.ErrInvalidInput.
func Resolve(rawURL string) (Target, error) {
	rawURL = strings.TrimSpace(rawURL)
	if !strings.Contains(rawURL, absSegment) {
		return Target{}, fmt.Errorf("%w: not an abstract-view URL: %q", types.ErrInvalidInput, rawURL)
	}

	id := rawURL[strings.LastIndex(rawURL, "/")+1:]
	if id == "" {
		return Target{}, fmt.Errorf("%w: no identifier in %q", types.ErrInvalidInput, rawURL)
	}

	return Target{
		SourceURL:   rawURL,
		Identifier:  id,
		DownloadURL: strings.ReplaceAll(rawURL, absSegment, pdfSegment) + pdfExt,
	}, nil
}

// ReadList reads a newline-delimited download list. Lines are trimmed;
// blank lines and lines starting with '#' are skipped.
func ReadList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening download list: %w", err)
	}
	defer f.Close()

	var urls []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading download list %s: %w", path, err)
	}
	return urls, nil
}
