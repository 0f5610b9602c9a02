// Package locator resolves which text source a page carries and locates
// search terms on it. The vector text layer and OCR are mutually exclusive
// per page; a page is never served from both.
package locator

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"strings"

	"github.com/doclens/doclens/internal/match"
	"github.com/doclens/doclens/internal/ocr"
	"github.com/doclens/doclens/internal/render"
)

// SourceKind names the text source a page resolved to.
type SourceKind string

const (
	// SourceVector means the page carries an embedded, selectable text layer.
	SourceVector SourceKind = "vector"
	// SourceOCR means the page is a scan and coordinates come from OCR.
	SourceOCR SourceKind = "ocr"
	// SourceDegraded means OCR failed; only plain text (possibly empty) is
	// available and the page reports zero matches.
	SourceDegraded SourceKind = "degraded"
)

// PageResult is the outcome of locating terms on one page. ImageWidth and
// ImageHeight describe the coordinate space the matches are expressed in:
// raster pixels for OCR pages, text-layer units (PDF points) for vector
// pages.
type PageResult struct {
	Page        int           `json:"page"`
	Matches     []match.Match `json:"matches"`
	ImageWidth  int           `json:"image_width"`
	ImageHeight int           `json:"image_height"`
	Text        string        `json:"text"`
	Source      SourceKind    `json:"source"`
}

// Locator is the term-location engine for single pages.
type Locator struct {
	renderer render.Renderer
	ocr      *ocr.Client
	matcher  match.Matcher
}

// New creates a Locator. A nil matcher selects match.FoldContains.
func New(renderer render.Renderer, client *ocr.Client, matcher match.Matcher) *Locator {
	if matcher == nil {
		matcher = match.FoldContains
	}
	return &Locator{renderer: renderer, ocr: client, matcher: matcher}
}

// PageCount reports the document's page count.
func (l *Locator) PageCount(ctx context.Context, documentID string) (int, error) {
	return l.renderer.PageCount(ctx, documentID)
}

// Locate finds every matching (word, term) pair on one page.
//
// Pages with a non-empty vector text layer never touch OCR. Scanned pages
// go through the coordinate cache and the OCR fallback client. A failed or
// timed-out OCR pass degrades to a zero-match result with whatever plain
// text is available instead of propagating an error.
func (l *Locator) Locate(ctx context.Context, documentID string, page int, terms match.TermSet) (*PageResult, error) {
	source, err := l.resolvePage(ctx, documentID, page)
	if err != nil {
		return nil, err
	}

	switch src := source.(type) {
	case VectorPage:
		return l.locateVector(ctx, documentID, page, src, terms)
	case ScannedPage:
		return l.locateScanned(page, src, terms), nil
	default:
		return nil, fmt.Errorf("unknown page source %T", source)
	}
}

// PageSource is the per-page text source, resolved exactly once and
// threaded through the rest of the pipeline as a typed value.
type PageSource interface {
	isPageSource()
}

// VectorPage carries the embedded text layer of a non-scanned page.
type VectorPage struct {
	Items []render.TextItem
}

func (VectorPage) isPageSource() {}

// ScannedPage carries OCR output for a page without a text layer.
// Degraded is set when recognition failed and Words is empty.
type ScannedPage struct {
	Words       []match.Word
	FullText    string
	ImageWidth  int
	ImageHeight int
	Degraded    bool
}

func (ScannedPage) isPageSource() {}

// resolvePage decides between the vector and the OCR path for one page.
func (l *Locator) resolvePage(ctx context.Context, documentID string, page int) (PageSource, error) {
	items, err := l.renderer.TextLayer(ctx, documentID, page)
	if err != nil {
		return nil, err
	}
	if len(items) > 0 {
		return VectorPage{Items: items}, nil
	}

	entry, err := l.ocr.PageEntry(ctx, documentID, page, func(ctx context.Context) (image.Image, error) {
		return l.renderer.RenderPage(ctx, documentID, page, 1.0)
	})
	if err != nil {
		if errors.Is(err, ocr.ErrRecognitionFailed) {
			slog.Warn("ocr degraded to zero matches", "document", documentID, "page", page, "error", err)
			return ScannedPage{Degraded: true}, nil
		}
		return nil, err
	}

	return ScannedPage{
		Words:       entry.Words,
		FullText:    entry.FullText,
		ImageWidth:  entry.ImageWidth,
		ImageHeight: entry.ImageHeight,
		Degraded:    false,
	}, nil
}

func (l *Locator) locateVector(ctx context.Context, documentID string, page int, src VectorPage, terms match.TermSet) (*PageResult, error) {
	words := make([]match.Word, 0, len(src.Items))
	var text strings.Builder
	for i, item := range src.Items {
		if i > 0 {
			text.WriteByte(' ')
		}
		text.WriteString(item.Text)
		words = append(words, match.Word{Text: item.Text, X: item.X, Y: item.Y, W: item.W, H: item.H})
	}

	res := &PageResult{
		Page:    page,
		Matches: match.Words(words, page, terms, l.matcher),
		Text:    text.String(),
		Source:  SourceVector,
	}

	// Vector coordinates live in page units; report the page box so callers
	// can scale them into a render target.
	if w, h, err := l.renderer.PageDims(ctx, documentID, page); err == nil {
		res.ImageWidth = int(w + 0.5)
		res.ImageHeight = int(h + 0.5)
	} else {
		// Zero dimensions collapse downstream highlight projection, so make
		// the cause findable.
		slog.Warn("page dims unavailable, matches stay unprojectable",
			"document", documentID, "page", page, "error", err)
	}
	return res, nil
}

func (l *Locator) locateScanned(page int, src ScannedPage, terms match.TermSet) *PageResult {
	source := SourceOCR
	if src.Degraded || len(src.Words) == 0 {
		source = SourceDegraded
	}
	return &PageResult{
		Page:        page,
		Matches:     match.Words(src.Words, page, terms, l.matcher),
		ImageWidth:  src.ImageWidth,
		ImageHeight: src.ImageHeight,
		Text:        src.FullText,
		Source:      source,
	}
}
