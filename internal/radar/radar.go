// Package radar drives the progressive term scan across every page of a
// document: bounded-concurrency batches of page lookups, incremental
// progress events and a best-effort completeness report.
package radar

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/doclens/doclens/internal/locator"
	"github.com/doclens/doclens/internal/match"
)

// DefaultBatchSize caps how many page lookups run concurrently. Batches
// complete in full before the next starts, which bounds OCR load while
// still parallelizing the dominant cost.
const DefaultBatchSize = 4

// State is the scan lifecycle. A scan moves Idle -> Scanning and then to
// exactly one terminal state, Completed or Failed, never back.
type State string

const (
	StateIdle      State = "idle"
	StateScanning  State = "scanning"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
)

// PageLocator is the slice of the term locator the scanner needs.
type PageLocator interface {
	PageCount(ctx context.Context, documentID string) (int, error)
	Locate(ctx context.Context, documentID string, page int, terms match.TermSet) (*locator.PageResult, error)
}

// Event is one incremental progress update. Found and Missing partition the
// term set as known so far; PagesWithMatches is sorted ascending.
type Event struct {
	DocumentID       string   `json:"document_id"`
	PagesScanned     int      `json:"pages_scanned"`
	TotalPages       int      `json:"total_pages"`
	Page             int      `json:"page"`
	PageMatches      int      `json:"page_matches"`
	Found            []string `json:"found"`
	Missing          []string `json:"missing"`
	PagesWithMatches []int    `json:"pages_with_matches"`
}

// Report is the immutable terminal summary. A term missing everywhere is an
// expected outcome, not a failure; FoundTerms and MissingTerms always
// partition the term set.
type Report struct {
	DocumentID       string   `json:"document_id"`
	TotalPages       int      `json:"total_pages"`
	FoundTerms       []string `json:"found_terms"`
	MissingTerms     []string `json:"missing_terms"`
	PagesWithMatches []int    `json:"pages_with_matches"`
	PagesFailed      int      `json:"pages_failed"`
	FirstMatchPage   int      `json:"first_match_page,omitempty"`
}

// Memo caches page results within one scan session so repeated scans over
// the same document (e.g. a term list edit) skip finished pages. It is
// passed in explicitly; the scanner holds no global state.
type Memo map[int]*locator.PageResult

// Scanner runs radar scans. One Scanner instance serves one scan; create a
// fresh one per request.
type Scanner struct {
	loc       PageLocator
	batchSize int

	onProgress func(Event)
	onFirstHit func(page int)

	mu    sync.Mutex
	state State
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithBatchSize overrides the concurrent page lookup cap.
func WithBatchSize(n int) Option {
	return func(s *Scanner) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// WithProgress registers a callback invoked after every scanned page, in
// ascending page order.
func WithProgress(fn func(Event)) Option {
	return func(s *Scanner) { s.onProgress = fn }
}

// WithFirstHit registers the one-time scroll/focus side effect. It fires
// exactly once per scan, for the lowest page number with a match observed
// so far, regardless of batch completion order.
func WithFirstHit(fn func(page int)) Option {
	return func(s *Scanner) { s.onFirstHit = fn }
}

// NewScanner creates a scanner in the Idle state.
func NewScanner(loc PageLocator, opts ...Option) *Scanner {
	s := &Scanner{loc: loc, batchSize: DefaultBatchSize, state: StateIdle}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current lifecycle state.
func (s *Scanner) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

type pageOutcome struct {
	page int
	res  *locator.PageResult
	err  error
}

// Scan walks pages 1..N in ascending batches and returns the terminal
// report. Cancellation is cooperative: a cancelled context stops before the
// next batch; lookups already in flight finish (their cache writes are
// kept) but their results are discarded.
func (s *Scanner) Scan(ctx context.Context, documentID string, terms match.TermSet, memo Memo) (*Report, error) {
	s.setState(StateScanning)

	totalPages, err := s.loc.PageCount(ctx, documentID)
	if err != nil {
		s.setState(StateFailed)
		return nil, err
	}
	if memo == nil {
		memo = make(Memo)
	}

	tracker := newProgressTracker(documentID, totalPages, terms)

	for start := 1; start <= totalPages; start += s.batchSize {
		if err := ctx.Err(); err != nil {
			s.setState(StateFailed)
			return nil, err
		}

		end := start + s.batchSize - 1
		if end > totalPages {
			end = totalPages
		}

		outcomes := s.scanBatch(ctx, documentID, terms, memo, start, end)
		if err := ctx.Err(); err != nil {
			// Batch results are discarded; the cache keeps their side effects.
			s.setState(StateFailed)
			return nil, err
		}

		// Process in ascending page order so first-match detection is
		// deterministic even though lookups within the batch complete in
		// any order.
		sort.Slice(outcomes, func(i, j int) bool { return outcomes[i].page < outcomes[j].page })
		for _, o := range outcomes {
			s.recordOutcome(tracker, o)
		}
	}

	s.setState(StateCompleted)
	return tracker.report(), nil
}

// scanBatch fans the batch's page lookups out concurrently and awaits them
// all.
func (s *Scanner) scanBatch(ctx context.Context, documentID string, terms match.TermSet, memo Memo, start, end int) []pageOutcome {
	outcomes := make([]pageOutcome, 0, end-start+1)
	results := make(chan pageOutcome, end-start+1)

	var wg sync.WaitGroup
	for page := start; page <= end; page++ {
		if res, ok := memo[page]; ok {
			outcomes = append(outcomes, pageOutcome{page: page, res: res})
			continue
		}
		wg.Add(1)
		go func(page int) {
			defer wg.Done()
			res, err := s.loc.Locate(ctx, documentID, page, terms)
			results <- pageOutcome{page: page, res: res, err: err}
		}(page)
	}

	wg.Wait()
	close(results)

	for o := range results {
		if o.err == nil {
			memo[o.page] = o.res
		}
		outcomes = append(outcomes, o)
	}
	return outcomes
}

func (s *Scanner) recordOutcome(t *progressTracker, o pageOutcome) {
	if o.err != nil {
		slog.Warn("page lookup failed", "document", t.documentID, "page", o.page, "error", o.err)
		t.recordFailure()
		s.emit(t, o.page, 0)
		return
	}

	matched := len(o.res.Matches)
	t.recordPage(o.page, o.res.Matches)

	if matched > 0 && !t.firstHitFired {
		t.firstHitFired = true
		t.firstMatchPage = o.page
		if s.onFirstHit != nil {
			s.onFirstHit(o.page)
		}
	}

	s.emit(t, o.page, matched)
}

func (s *Scanner) emit(t *progressTracker, page, matched int) {
	if s.onProgress == nil {
		return
	}
	s.onProgress(Event{
		DocumentID:       t.documentID,
		PagesScanned:     t.pagesScanned,
		TotalPages:       t.totalPages,
		Page:             page,
		PageMatches:      matched,
		Found:            t.foundList(),
		Missing:          t.missingList(),
		PagesWithMatches: t.pagesWithMatches(),
	})
}

func (s *Scanner) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}
