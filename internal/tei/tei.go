// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tei turns the TEI XML returned by GROBID into a PaperRecord.
//
// The parser streams tokens with encoding/xml and collects four independent
// signals in one pass: the header title, the abstract text, the figure count,
// and outbound links from ref and ptr targets. Only elements in the TEI
// namespace are considered, and the root element itself never matches.
package tei

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/paper-digest/pkg/types"
)

// Namespace is the TEI XML namespace used by GROBID output.
const Namespace = "http://www.tei-c.org/ns/1.0"

// grobidHomepage is dropped from ref targets. GROBID stamps it into the
// header of every document it produces. ptr targets keep it.
const grobidHomepage = "https://github.com/kermitt2/grobid"

// ParseString parses a TEI document held in a string.
func ParseString(markup string) (types.PaperRecord, error) {
	return ParseRecord(strings.NewReader(markup))
}

// ParseBytes parses a TEI document held in a byte slice.
func ParseBytes(markup []byte) (types.PaperRecord, error) {
	return ParseRecord(bytes.NewReader(markup))
}

// ParseRecord reads one TEI document from r and extracts the title,
// abstract, figure count, and links. PaperID and Filename are left empty for
// the caller to fill in. Markup that is not well-formed fails with an error
// wrapping types.ErrParse.
func ParseRecord(r io.Reader) (types.PaperRecord, error) {
	var (
		dec   = xml.NewDecoder(r)
		stack []xml.Name
		p     parser
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return types.PaperRecord{}, fmt.Errorf("%w: %v", types.ErrParse, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if len(stack) == 0 && p.sawRoot {
				return types.PaperRecord{}, fmt.Errorf("%w: content after root element <%s>", types.ErrParse, t.Name.Local)
			}
			p.sawRoot = true
			var parent xml.Name
			if len(stack) > 0 {
				parent = stack[len(stack)-1]
			}
			stack = append(stack, t.Name)
			p.start(t, parent, len(stack))

		case xml.EndElement:
			p.end(len(stack))
			stack = stack[:len(stack)-1]

		case xml.CharData:
			if len(stack) == 0 {
				if len(bytes.TrimSpace(t)) > 0 {
					return types.PaperRecord{}, fmt.Errorf("%w: text outside root element", types.ErrParse)
				}
				continue
			}
			p.text(t)
		}
	}

	if !p.sawRoot {
		return types.PaperRecord{}, fmt.Errorf("%w: no root element", types.ErrParse)
	}
	return p.record(), nil
}

// parser accumulates record fields while the decoder walks the document.
// Depths are 1-based stack heights; zero means "not inside".
type parser struct {
	sawRoot bool

	titleDepth int
	titleDone  bool
	title      strings.Builder

	abstractDepth int
	abstractDone  bool
	abstract      strings.Builder

	figures int
	refs    []string
	ptrs    []string
}

func isTEI(n xml.Name, local string) bool {
	return n.Space == Namespace && n.Local == local
}

func (p *parser) start(el xml.StartElement, parent xml.Name, depth int) {
	// A child element ends the leading text of the title.
	if p.titleDepth > 0 {
		p.titleDone = true
	}

	// The root is the search context, not a candidate.
	if depth == 1 {
		return
	}

	switch {
	case isTEI(el.Name, "title") && isTEI(parent, "titleStmt") && depth > 2 && !p.titleDone && p.titleDepth == 0:
		p.titleDepth = depth
	case isTEI(el.Name, "abstract") && !p.abstractDone && p.abstractDepth == 0:
		p.abstractDepth = depth
	case isTEI(el.Name, "figure"):
		p.figures++
	case isTEI(el.Name, "ref"):
		if target, ok := attr(el, "target"); ok {
			p.refs = append(p.refs, target)
		}
	case isTEI(el.Name, "ptr"):
		if target, ok := attr(el, "target"); ok {
			p.ptrs = append(p.ptrs, target)
		}
	}
}

func (p *parser) end(depth int) {
	if p.titleDepth == depth {
		p.titleDepth = 0
		p.titleDone = true
	}
	if p.abstractDepth == depth {
		p.abstractDepth = 0
		p.abstractDone = true
	}
}

func (p *parser) text(data xml.CharData) {
	if p.titleDepth > 0 && !p.titleDone {
		p.title.Write(data)
	}
	if p.abstractDepth > 0 {
		p.abstract.Write(data)
	}
}

func (p *parser) record() types.PaperRecord {
	title := p.title.String()
	if title == "" {
		title = types.DefaultTitle
	}
	return types.PaperRecord{
		Title:        title,
		Abstract:     strings.TrimSpace(p.abstract.String()),
		FiguresCount: p.figures,
		Links:        collectLinks(p.refs, p.ptrs),
	}
}

// collectLinks filters ref targets then ptr targets down to absolute
// http(s) URLs and removes duplicates, keeping first occurrences.
func collectLinks(refs, ptrs []string) []string {
	links := make([]string, 0, len(refs)+len(ptrs))
	seen := make(map[string]bool, len(refs)+len(ptrs))
	add := func(u string) {
		if seen[u] {
			return
		}
		seen[u] = true
		links = append(links, u)
	}

	for _, target := range refs {
		if isAbsoluteHTTP(target) && target != grobidHomepage {
			add(target)
		}
	}
	for _, target := range ptrs {
		if isAbsoluteHTTP(target) {
			add(target)
		}
	}
	return links
}

func isAbsoluteHTTP(target string) bool {
	return strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://")
}

func attr(el xml.StartElement, local string) (string, bool) {
	for _, a := range el.Attr {
		if a.Name.Space == "" && a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}
