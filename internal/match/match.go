package match

import "strings"

// Word is a positioned token in the coordinate space of its source page.
// OCR-backed pages express it in raster pixels, vector pages in text-layer
// units; callers must scale explicitly before mixing spaces.
type Word struct {
	Text string  `json:"text"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	W    float64 `json:"w"`
	H    float64 `json:"h"`
}

// Match pairs a located word with the term it matched. A single word can
// produce several matches, one per matching term.
type Match struct {
	Word
	Page int      `json:"page"`
	Term string   `json:"term"`
	Kind TermKind `json:"kind"`
}

// Matcher decides whether a located word counts as a match for a term.
// The default is FoldContains; it is a parameter so the substring policy
// can be tightened without touching the locator.
type Matcher func(word, term string) bool

// FoldContains reports whether word contains term under Unicode case
// folding. The direction is deliberate: OCR tends to glue punctuation onto
// tokens ("ABC-1," for "ABC-1"), so the word may be longer than the term.
func FoldContains(word, term string) bool {
	if term == "" {
		return false
	}
	return strings.Contains(fold(word), fold(term))
}

// FoldEquals is a stricter alternative matcher requiring the whole token to
// equal the term under case folding.
func FoldEquals(word, term string) bool {
	if term == "" {
		return false
	}
	return fold(word) == fold(term)
}

// Words matches every word against every term of the set and returns one
// Match per matching (word, term) pair, tagged with the given page number.
func Words(words []Word, page int, terms TermSet, matcher Matcher) []Match {
	if matcher == nil {
		matcher = FoldContains
	}
	var out []Match
	for _, w := range words {
		for _, t := range terms.Hits {
			if matcher(w.Text, t) {
				out = append(out, Match{Word: w, Page: page, Term: t, Kind: KindHit})
			}
		}
		for _, t := range terms.Context {
			if matcher(w.Text, t) {
				out = append(out, Match{Word: w, Page: page, Term: t, Kind: KindContext})
			}
		}
	}
	return out
}

// FoundTerms returns the distinct term strings present in matches,
// preserving the order of the term set.
func FoundTerms(matches []Match, terms TermSet) []string {
	found := make(map[string]struct{}, len(matches))
	for _, m := range matches {
		found[m.Term] = struct{}{}
	}
	var out []string
	for _, t := range terms.All() {
		if _, ok := found[t]; ok {
			out = append(out, t)
		}
	}
	return out
}
