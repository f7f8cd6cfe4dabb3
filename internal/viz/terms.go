// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package viz

import (
	"sort"
	"strings"
	"unicode"

	"github.com/pdiddy/paper-digest/pkg/types"
)

const (
	// minTermLen is the shortest letter run counted as a term.
	minTermLen = 3
	// maxTerms caps the number of terms drawn in one cloud.
	maxTerms = 100
)

// Term is one word of a cloud with its occurrence count.
type Term struct {
	Text  string
	Count int
}

// Cloud is the data for one paper's term cloud.
type Cloud struct {
	PaperID string
	Terms   []Term
}

// KeywordClouds builds one cloud per record with a non-empty abstract, in
// record order. Records without an abstract are skipped.
func KeywordClouds(records []types.PaperRecord) []Cloud {
	var clouds []Cloud
	for _, r := range records {
		if !r.HasAbstract() {
			continue
		}
		terms := TermFrequencies(r.Abstract)
		if len(terms) == 0 {
			continue
		}
		clouds = append(clouds, Cloud{PaperID: r.PaperID, Terms: terms})
	}
	return clouds
}

// TermFrequencies splits text into lowercase letter runs, drops short words
// and stop words, and returns up to maxTerms terms ordered by descending
// count, then alphabetically.
func TermFrequencies(text string) []Term {
	counts := make(map[string]int)
	for _, w := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r)
	}) {
		if len([]rune(w)) < minTermLen {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		counts[w]++
	}

	terms := make([]Term, 0, len(counts))
	for w, n := range counts {
		terms = append(terms, Term{Text: w, Count: n})
	}
	sort.Slice(terms, func(i, j int) bool {
		if terms[i].Count != terms[j].Count {
			return terms[i].Count > terms[j].Count
		}
		return terms[i].Text < terms[j].Text
	})
	if len(terms) > maxTerms {
		terms = terms[:maxTerms]
	}
	return terms
}

// stopWords are common English words left out of clouds.
var stopWords = toSet(`
about above after again against all also and any are aren
because been before being below between both but
can cannot could couldn
did didn does doesn doing don down during
each else ever few for from further
get had hadn has hasn have haven having her here hers herself him himself
his how however http https
into isn its itself just let like more most mustn myself
nor not off once only other otherwise ought our ours ourselves out over own
same shall shan she should shouldn since some such
than that the their theirs them themselves then there these they this those
through too under until very
was wasn were weren what when where which while who whom why with won would
wouldn www you your yours yourself yourselves com
`)

func toSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(s) {
		set[w] = struct{}{}
	}
	return set
}
