// Package flatten implements the print pipeline: re-render each page at
// print resolution, reuse the locator's matches, bake highlights into the
// pixels and assemble a print-only document.
package flatten

import (
	"context"
	"image"
	"log/slog"

	"github.com/doclens/doclens/internal/highlight"
	"github.com/doclens/doclens/internal/locator"
	"github.com/doclens/doclens/internal/match"
	"github.com/doclens/doclens/internal/render"
)

// DefaultPrintScale is the render scale used for print fidelity, relative
// to the page's native raster size.
const DefaultPrintScale = 2.0

// PageLocator is the slice of the term locator the pipeline needs.
type PageLocator interface {
	PageCount(ctx context.Context, documentID string) (int, error)
	Locate(ctx context.Context, documentID string, page int, terms match.TermSet) (*locator.PageResult, error)
}

// Page is one flattened output page. Its dimensions follow the source
// page's render, not a fixed paper size, so scanned originals keep their
// aspect and orientation.
type Page struct {
	Number int
	Image  *image.RGBA
}

// Result is the assembled print output. Pages holds only successfully
// rendered pages, in ascending order; a failed page is skipped rather than
// emitted blank, and counted in PagesSkipped.
type Result struct {
	DocumentID   string
	TotalPages   int
	Pages        []Page
	PagesSkipped int
}

// Pipeline renders highlight-baked print pages.
type Pipeline struct {
	loc      PageLocator
	renderer render.Renderer
	scale    float64
	palette  highlight.Palette
}

// New creates a print pipeline. A scale <= 0 selects DefaultPrintScale.
func New(loc PageLocator, renderer render.Renderer, scale float64) *Pipeline {
	if scale <= 0 {
		scale = DefaultPrintScale
	}
	return &Pipeline{
		loc:      loc,
		renderer: renderer,
		scale:    scale,
		palette:  highlight.DefaultPalette(),
	}
}

// Flatten produces the ordered list of highlight-baked page bitmaps for a
// document. The locator is backed by the same coordinate cache as the
// interactive viewer, so a print job after a scan never triggers a second
// OCR pass.
func (p *Pipeline) Flatten(ctx context.Context, documentID string, terms match.TermSet) (*Result, error) {
	totalPages, err := p.loc.PageCount(ctx, documentID)
	if err != nil {
		return nil, err
	}

	res := &Result{DocumentID: documentID, TotalPages: totalPages}
	for page := 1; page <= totalPages; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		flat, err := p.flattenPage(ctx, documentID, page, terms)
		if err != nil {
			// A missing page beats a blank placeholder that would
			// desynchronize page numbering from the original.
			slog.Warn("print render skipped page", "document", documentID, "page", page, "error", err)
			res.PagesSkipped++
			continue
		}
		res.Pages = append(res.Pages, Page{Number: page, Image: flat})
	}
	return res, nil
}

func (p *Pipeline) flattenPage(ctx context.Context, documentID string, page int, terms match.TermSet) (*image.RGBA, error) {
	img, err := p.renderer.RenderPage(ctx, documentID, page, p.scale)
	if err != nil {
		return nil, err
	}

	loc, err := p.loc.Locate(ctx, documentID, page, terms)
	if err != nil {
		return nil, err
	}

	b := img.Bounds()
	screens := highlight.ForScreen(
		loc.Matches,
		float64(loc.ImageWidth), float64(loc.ImageHeight),
		float64(b.Dx()), float64(b.Dy()),
		terms.Strict,
	)
	return highlight.Bake(img, screens, p.palette), nil
}
