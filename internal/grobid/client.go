// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package grobid calls a GROBID service to extract the structure of a PDF
// and turns the returned TEI into a PaperRecord.
package grobid

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/paper-digest/internal/tei"
	"github.com/pdiddy/paper-digest/pkg/types"
)

// DefaultURL is the address of a locally running GROBID service.
const DefaultURL = "http://localhost:8070"

const (
	fulltextPath = "/api/processFulltextDocument"
	isAlivePath  = "/api/isalive"
)

// Options is the fixed form-field bundle sent with every full-text request:
// header consolidation on, citation consolidation off, no raw citation or
// affiliation strings, no coordinates, no sentence segmentation.
var Options = map[string]string{
	"consolidateHeader":      "1",
	"consolidateCitations":   "0",
	"includeRawCitations":    "0",
	"includeRawAffiliations": "0",
	"segmentSentences":       "0",
	"generateIDs":            "0",
}

// Client is a handle to a GROBID service. It is passed explicitly to every
// extraction call.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	userAgent  string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithAPIKey sets a bearer token sent on every request.
func WithAPIKey(key string) ClientOption {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{},
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the service address.
func (c *Client) BaseURL() string { return c.baseURL }

// IsAlive probes the service. A nil error means the service answered
// "true" on its liveness endpoint.
func (c *Client) IsAlive(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+isAlivePath, nil)
	if err != nil {
		return fmt.Errorf("%w: creating request: %v", types.ErrService, err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: GROBID at %s unreachable: %v", types.ErrService, c.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: GROBID liveness returned HTTP %d", types.ErrService, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: reading liveness response: %v", types.ErrService, err)
	}
	if strings.TrimSpace(string(body)) != "true" {
		return fmt.Errorf("%w: GROBID reports not alive (%q)", types.ErrService, strings.TrimSpace(string(body)))
	}
	return nil
}

// ProcessFulltext submits the PDF at pdfPath for full-text extraction and
// returns the TEI markup. Any failure wraps types.ErrService.
func (c *Client) ProcessFulltext(ctx context.Context, pdfPath string) ([]byte, error) {
	body, contentType, err := fulltextForm(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrService, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+fulltextPath, body)
	if err != nil {
		return nil, fmt.Errorf("%w: creating request: %v", types.ErrService, err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/xml")
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: GROBID request: %v", types.ErrService, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading GROBID response: %v", types.ErrService, err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNoContent:
		return nil, fmt.Errorf("%w: GROBID extracted no content from %s", types.ErrService, filepath.Base(pdfPath))
	case http.StatusServiceUnavailable:
		return nil, fmt.Errorf("%w: GROBID is busy (HTTP 503)", types.ErrService)
	default:
		return nil, fmt.Errorf("%w: GROBID returned HTTP %d: %s", types.ErrService, resp.StatusCode, snippet(data))
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: GROBID returned an empty document for %s", types.ErrService, filepath.Base(pdfPath))
	}
	return data, nil
}

// Extract runs full-text extraction on pdfPath and parses the result into a
// record. Service failures wrap types.ErrService, markup failures wrap
// types.ErrParse.
func (c *Client) Extract(ctx context.Context, pdfPath string) (types.PaperRecord, error) {
	markup, err := c.ProcessFulltext(ctx, pdfPath)
	if err != nil {
		return types.PaperRecord{}, err
	}
	rec, err := tei.ParseBytes(markup)
	if err != nil {
		return types.PaperRecord{}, fmt.Errorf("parsing TEI for %s: %w", filepath.Base(pdfPath), err)
	}
	return rec, nil
}

func (c *Client) setHeaders(req *http.Request) {
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

// fulltextForm builds the multipart body: the PDF under "input" followed by
// the fixed option fields.
func fulltextForm(pdfPath string) (*bytes.Buffer, string, error) {
	f, err := os.Open(pdfPath)
	if err != nil {
		return nil, "", fmt.Errorf("opening PDF: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("input", filepath.Base(pdfPath))
	if err != nil {
		return nil, "", fmt.Errorf("creating form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, "", fmt.Errorf("reading PDF: %w", err)
	}

	for _, key := range optionOrder {
		if err := mw.WriteField(key, Options[key]); err != nil {
			return nil, "", fmt.Errorf("writing form field %s: %w", key, err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("closing form: %w", err)
	}
	return &buf, mw.FormDataContentType(), nil
}

// optionOrder keeps the form deterministic.
var optionOrder = []string{
	"consolidateHeader",
	"consolidateCitations",
	"includeRawCitations",
	"includeRawAffiliations",
	"segmentSentences",
	"generateIDs",
}

func snippet(b []byte) string {
	const max = 200
	s := strings.TrimSpace(string(b))
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
