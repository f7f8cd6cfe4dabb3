// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the paper-digest pipeline:
// the per-paper record produced by extraction, per-item failures, the error
// taxonomy, and stage configuration.
package types

// DefaultTitle is the title assigned when the markup carries no title.
const DefaultTitle = "No title"

// PaperRecord is the flat summary of one processed paper. Records are built
// once by the extractor and annotated by the batch runner; nothing mutates
// them afterwards.
type PaperRecord struct {
	// PaperID is the filename stem (e.g. "2301.07041"). Unique within a run.
	PaperID string `json:"paper_id" yaml:"paper_id"`

	// Filename is the source file name (e.g. "2301.07041.pdf").
	Filename string `json:"filename" yaml:"filename"`

	// Title is the paper title, or DefaultTitle.
	Title string `json:"title" yaml:"title"`

	// Abstract is the whitespace-trimmed abstract text. May be empty.
	Abstract string `json:"abstract" yaml:"abstract"`

	// FiguresCount is the number of figure nodes in the document.
	FiguresCount int `json:"figures_count" yaml:"figures_count"`

	// Links holds absolute http(s) URLs in first-occurrence order.
	Links []string `json:"links" yaml:"links"`
}

// HasAbstract reports whether the record carries abstract text.
func (r PaperRecord) HasAbstract() bool {
	return r.Abstract != ""
}
