package radar

import (
	"sort"

	"github.com/doclens/doclens/internal/match"
)

// progressTracker accumulates the monotonically growing scan state. It is
// only touched from the scan loop, after batch fan-in, so it needs no
// locking.
type progressTracker struct {
	documentID string
	totalPages int
	terms      match.TermSet

	pagesScanned   int
	pagesFailed    int
	found          map[string]struct{}
	matchedPages   map[int]struct{}
	firstHitFired  bool
	firstMatchPage int
}

func newProgressTracker(documentID string, totalPages int, terms match.TermSet) *progressTracker {
	return &progressTracker{
		documentID:   documentID,
		totalPages:   totalPages,
		terms:        terms,
		found:        make(map[string]struct{}),
		matchedPages: make(map[int]struct{}),
	}
}

func (t *progressTracker) recordPage(page int, matches []match.Match) {
	t.pagesScanned++
	if len(matches) == 0 {
		return
	}
	t.matchedPages[page] = struct{}{}
	for _, m := range matches {
		t.found[m.Term] = struct{}{}
	}
}

func (t *progressTracker) recordFailure() {
	t.pagesScanned++
	t.pagesFailed++
}

// foundList returns found terms in term-set order.
func (t *progressTracker) foundList() []string {
	out := make([]string, 0, len(t.found))
	for _, term := range t.terms.All() {
		if _, ok := t.found[term]; ok {
			out = append(out, term)
		}
	}
	return out
}

// missingList returns the term-set complement of foundList.
func (t *progressTracker) missingList() []string {
	out := make([]string, 0, t.terms.Len()-len(t.found))
	for _, term := range t.terms.All() {
		if _, ok := t.found[term]; !ok {
			out = append(out, term)
		}
	}
	return out
}

func (t *progressTracker) pagesWithMatches() []int {
	out := make([]int, 0, len(t.matchedPages))
	for p := range t.matchedPages {
		out = append(out, p)
	}
	sort.Ints(out)
	return out
}

func (t *progressTracker) report() *Report {
	return &Report{
		DocumentID:       t.documentID,
		TotalPages:       t.totalPages,
		FoundTerms:       t.foundList(),
		MissingTerms:     t.missingList(),
		PagesWithMatches: t.pagesWithMatches(),
		PagesFailed:      t.pagesFailed,
		FirstMatchPage:   t.firstMatchPage,
	}
}
