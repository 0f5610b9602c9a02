// Package ocr wraps the external recognition engine behind the fallback
// client used for pages without a vector text layer.
package ocr

import (
	"context"
	"errors"
	"image"

	"github.com/doclens/doclens/internal/match"
)

// ErrRecognitionFailed wraps any engine error or timeout. Callers degrade
// to a zero-match result instead of failing the page.
var ErrRecognitionFailed = errors.New("ocr recognition failed")

// Result is the normalized output of one recognition pass.
type Result struct {
	Words    []match.Word `json:"words"`
	FullText string       `json:"full_text"`
}

// Engine is the recognition backend contract. Version identifies the
// engine build and configuration; it is embedded in cache keys so a
// deliberate version bump invalidates previously cached coordinates.
type Engine interface {
	Recognize(ctx context.Context, img image.Image) (*Result, error)
	Version() string
}
