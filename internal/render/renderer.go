// Package render defines the PDF renderer collaborator: vector text-layer
// access, page rasterization and page geometry. The term locator consumes
// it without knowing which backing library produced the data.
package render

import (
	"context"
	"errors"
	"image"
)

// ErrSourceUnavailable marks a page that cannot be opened or rendered.
// It is fatal for that page only; scans and print jobs continue.
var ErrSourceUnavailable = errors.New("page source unavailable")

// TextItem is one positioned token from the vector text layer, expressed
// in text-layer units.
type TextItem struct {
	Text string  `json:"text"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	W    float64 `json:"w"`
	H    float64 `json:"h"`
}

// Renderer is the external PDF renderer contract.
//
// TextLayer returns an empty slice for scanned pages; that emptiness is the
// signal that the OCR fallback applies. RenderPage rasterizes a page at the
// given scale (1.0 = native raster size).
type Renderer interface {
	PageCount(ctx context.Context, documentID string) (int, error)
	PageDims(ctx context.Context, documentID string, page int) (width, height float64, err error)
	TextLayer(ctx context.Context, documentID string, page int) ([]TextItem, error)
	RenderPage(ctx context.Context, documentID string, page int, scale float64) (image.Image, error)
}

// Resolver maps a document id to a file path. Multi-tenant routing and
// storage live outside this subsystem; the engine only ever sees this
// function.
type Resolver func(documentID string) (string, error)
