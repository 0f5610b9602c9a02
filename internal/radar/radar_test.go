package radar

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doclens/doclens/internal/locator"
	"github.com/doclens/doclens/internal/match"
)

// fakeLocator serves canned per-page matches, with optional per-page delays
// and failures.
type fakeLocator struct {
	pages    int
	countErr error
	matches  map[int][]match.Match
	fail     map[int]error
	delay    map[int]time.Duration
	calls    atomic.Int64
}

func (l *fakeLocator) PageCount(ctx context.Context, documentID string) (int, error) {
	if l.countErr != nil {
		return 0, l.countErr
	}
	return l.pages, nil
}

func (l *fakeLocator) Locate(ctx context.Context, documentID string, page int, terms match.TermSet) (*locator.PageResult, error) {
	l.calls.Add(1)
	if d, ok := l.delay[page]; ok {
		time.Sleep(d)
	}
	if err, ok := l.fail[page]; ok {
		return nil, err
	}
	return &locator.PageResult{
		Page:    page,
		Matches: l.matches[page],
		Source:  locator.SourceVector,
	}, nil
}

func hitMatch(page int, term string) match.Match {
	return match.Match{Word: match.Word{Text: term}, Page: page, Term: term, Kind: match.KindHit}
}

func TestScan_FindsTermAcrossDocument(t *testing.T) {
	loc := &fakeLocator{
		pages: 10,
		matches: map[int][]match.Match{
			7: {hitMatch(7, "ABC-1")},
		},
	}
	terms := match.NewTermSet([]string{"ABC-1"}, nil)

	scanner := NewScanner(loc)
	report, err := scanner.Scan(context.Background(), "doc-1", terms, make(Memo))
	require.NoError(t, err)

	assert.Equal(t, 10, report.TotalPages)
	assert.Equal(t, []string{"ABC-1"}, report.FoundTerms)
	assert.Empty(t, report.MissingTerms)
	assert.Equal(t, []int{7}, report.PagesWithMatches)
	assert.Equal(t, 7, report.FirstMatchPage)
	assert.Equal(t, int64(10), loc.calls.Load(), "every page is scanned")
	assert.Equal(t, StateCompleted, scanner.State())
}

func TestScan_MissingTermIsAnOutcomeNotAnError(t *testing.T) {
	loc := &fakeLocator{
		pages: 5,
		matches: map[int][]match.Match{
			2: {hitMatch(2, "ABC-1")},
		},
	}
	terms := match.NewTermSet([]string{"ABC-1", "ZZZ-9"}, nil)

	report, err := NewScanner(loc).Scan(context.Background(), "doc-1", terms, make(Memo))
	require.NoError(t, err)

	assert.Equal(t, []string{"ABC-1"}, report.FoundTerms)
	assert.Equal(t, []string{"ZZZ-9"}, report.MissingTerms)
	assert.Equal(t, 0, report.PagesFailed)
}

func TestScan_ReportPartitionsTermSet(t *testing.T) {
	loc := &fakeLocator{
		pages: 4,
		matches: map[int][]match.Match{
			1: {hitMatch(1, "a")},
			3: {hitMatch(3, "c"), {Word: match.Word{Text: "x"}, Page: 3, Term: "x", Kind: match.KindContext}},
		},
	}
	terms := match.NewTermSet([]string{"a", "b", "c"}, []string{"x", "y"})

	report, err := NewScanner(loc).Scan(context.Background(), "doc-1", terms, make(Memo))
	require.NoError(t, err)

	combined := append(append([]string{}, report.FoundTerms...), report.MissingTerms...)
	assert.ElementsMatch(t, terms.All(), combined)
	assert.Equal(t, []string{"a", "c", "x"}, report.FoundTerms)
	assert.Equal(t, []string{"b", "y"}, report.MissingTerms)
}

func TestScan_FirstHitFiresOnceForLowestPage(t *testing.T) {
	// Pages 1 and 3 both match and sit in the same batch; page 1 is the
	// slowest lookup, so completion order is 3 before 1.
	loc := &fakeLocator{
		pages: 4,
		matches: map[int][]match.Match{
			1: {hitMatch(1, "ABC-1")},
			3: {hitMatch(3, "ABC-1")},
		},
		delay: map[int]time.Duration{1: 50 * time.Millisecond},
	}
	terms := match.NewTermSet([]string{"ABC-1"}, nil)

	var fired []int
	scanner := NewScanner(loc, WithFirstHit(func(page int) { fired = append(fired, page) }))

	report, err := scanner.Scan(context.Background(), "doc-1", terms, make(Memo))
	require.NoError(t, err)

	assert.Equal(t, []int{1}, fired, "first hit must fire exactly once, for the lowest page")
	assert.Equal(t, 1, report.FirstMatchPage)
}

func TestScan_ProgressEventsAscendAndCover(t *testing.T) {
	loc := &fakeLocator{
		pages: 9,
		matches: map[int][]match.Match{
			5: {hitMatch(5, "ABC-1")},
		},
		delay: map[int]time.Duration{2: 20 * time.Millisecond, 6: 10 * time.Millisecond},
	}
	terms := match.NewTermSet([]string{"ABC-1"}, nil)

	var events []Event
	scanner := NewScanner(loc, WithBatchSize(4), WithProgress(func(ev Event) {
		events = append(events, ev)
	}))

	_, err := scanner.Scan(context.Background(), "doc-1", terms, make(Memo))
	require.NoError(t, err)

	require.Len(t, events, 9)
	for i, ev := range events {
		assert.Equal(t, i+1, ev.Page, "events arrive in ascending page order")
		assert.Equal(t, i+1, ev.PagesScanned)
		assert.Equal(t, 9, ev.TotalPages)
	}
	last := events[len(events)-1]
	assert.Equal(t, []string{"ABC-1"}, last.Found)
	assert.Empty(t, last.Missing)
	assert.Equal(t, []int{5}, last.PagesWithMatches)
}

func TestScan_PageFailuresDoNotAbort(t *testing.T) {
	loc := &fakeLocator{
		pages: 6,
		matches: map[int][]match.Match{
			5: {hitMatch(5, "ABC-1")},
		},
		fail: map[int]error{2: errors.New("ocr timeout"), 4: errors.New("render failed")},
	}
	terms := match.NewTermSet([]string{"ABC-1"}, nil)

	report, err := NewScanner(loc).Scan(context.Background(), "doc-1", terms, make(Memo))
	require.NoError(t, err)

	assert.Equal(t, 2, report.PagesFailed)
	assert.Equal(t, []string{"ABC-1"}, report.FoundTerms)
	assert.Equal(t, []int{5}, report.PagesWithMatches)
}

func TestScan_CancellationStopsBetweenBatches(t *testing.T) {
	loc := &fakeLocator{
		pages: 100,
		delay: map[int]time.Duration{1: 10 * time.Millisecond},
	}
	terms := match.NewTermSet([]string{"ABC-1"}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	scanner := NewScanner(loc)
	_, err := scanner.Scan(ctx, "doc-1", terms, make(Memo))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int64(0), loc.calls.Load())
	assert.Equal(t, StateFailed, scanner.State(), "an aborted scan ends in a terminal state")
}

func TestScan_PageCountFailureIsTerminal(t *testing.T) {
	loc := &fakeLocator{countErr: errors.New("document not found")}
	terms := match.NewTermSet([]string{"ABC-1"}, nil)

	scanner := NewScanner(loc)
	_, err := scanner.Scan(context.Background(), "doc-1", terms, make(Memo))
	require.Error(t, err)
	assert.Equal(t, StateFailed, scanner.State())
}

func TestScan_MemoSkipsFinishedPages(t *testing.T) {
	loc := &fakeLocator{
		pages: 5,
		matches: map[int][]match.Match{
			3: {hitMatch(3, "ABC-1")},
		},
	}
	terms := match.NewTermSet([]string{"ABC-1"}, nil)
	memo := make(Memo)

	_, err := NewScanner(loc).Scan(context.Background(), "doc-1", terms, memo)
	require.NoError(t, err)
	require.Equal(t, int64(5), loc.calls.Load())

	// A rescan with the same memo touches no pages again.
	report, err := NewScanner(loc).Scan(context.Background(), "doc-1", terms, memo)
	require.NoError(t, err)
	assert.Equal(t, int64(5), loc.calls.Load())
	assert.Equal(t, []string{"ABC-1"}, report.FoundTerms)
}

func TestScan_EmptyDocument(t *testing.T) {
	loc := &fakeLocator{pages: 0}
	terms := match.NewTermSet([]string{"ABC-1"}, nil)

	report, err := NewScanner(loc).Scan(context.Background(), "doc-1", terms, make(Memo))
	require.NoError(t, err)
	assert.Equal(t, 0, report.TotalPages)
	assert.Equal(t, []string{"ABC-1"}, report.MissingTerms)
}
