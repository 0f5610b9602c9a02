package match

import (
	"strings"

	"golang.org/x/text/cases"
)

// TermKind distinguishes operator-entered terms from terms supplied by the
// surrounding system.
type TermKind string

const (
	// KindHit marks a term the operator typed explicitly.
	KindHit TermKind = "hit"
	// KindContext marks a term supplied automatically (e.g. product codes
	// associated with the document).
	KindContext TermKind = "context"
)

// TermSet holds the terms for one lookup request. Hits and Context are
// disjoint and order-preserving; construction goes through NewTermSet which
// enforces both.
type TermSet struct {
	Hits    []string `json:"hits"`
	Context []string `json:"context"`

	// Strict enables visually distinct highlight styles for hits and
	// context terms. With Strict off both kinds render identically.
	Strict bool `json:"strict,omitempty"`
}

// NewTermSet builds a TermSet from raw input lists. Terms are trimmed,
// empty entries dropped, and duplicates removed case-insensitively. Context
// terms already present in hits are removed so the two sets stay disjoint.
func NewTermSet(hits, context []string) TermSet {
	seen := make(map[string]struct{})
	cleanHits := cleanTerms(hits, seen)
	cleanContext := cleanTerms(context, seen)
	return TermSet{Hits: cleanHits, Context: cleanContext}
}

// cleanTerms trims, drops empties and filters terms whose folded form is
// already in seen, recording every kept term in seen.
func cleanTerms(terms []string, seen map[string]struct{}) []string {
	var out []string
	for _, t := range terms {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		key := fold(t)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, t)
	}
	return out
}

// All returns hits followed by context terms, preserving input order.
func (ts TermSet) All() []string {
	out := make([]string, 0, len(ts.Hits)+len(ts.Context))
	out = append(out, ts.Hits...)
	out = append(out, ts.Context...)
	return out
}

// Len returns the total number of terms.
func (ts TermSet) Len() int {
	return len(ts.Hits) + len(ts.Context)
}

// IsEmpty reports whether the set contains no terms at all.
func (ts TermSet) IsEmpty() bool {
	return ts.Len() == 0
}

// Contains reports whether term is in the set, compared case-folded.
func (ts TermSet) Contains(term string) bool {
	folded := fold(term)
	for _, t := range ts.All() {
		if fold(t) == folded {
			return true
		}
	}
	return false
}

// KindOf returns the kind of the given term. Unknown terms are reported as
// context, matching how unknown styling degrades in the viewer.
func (ts TermSet) KindOf(term string) TermKind {
	folded := fold(term)
	for _, h := range ts.Hits {
		if fold(h) == folded {
			return KindHit
		}
	}
	return KindContext
}

// fold lower-cases a string using full Unicode case folding. A fresh Caser
// per call keeps this safe across goroutines; cases.Caser carries state.
func fold(s string) string {
	return cases.Fold().String(s)
}
