// Package tesseract adapts the gosseract client to the ocr.Engine
// contract.
package tesseract

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/doclens/doclens/internal/match"
	"github.com/doclens/doclens/internal/ocr"
)

// EngineVersion is the cache version token for this adapter. Bump it when
// the Tesseract configuration changes in a way that affects coordinates or
// recognition quality (e.g. a different page segmentation mode), so stale
// cache entries become unreachable.
const EngineVersion = "tesseract-v2"

// Engine runs recognition through a local Tesseract installation.
type Engine struct {
	languages     []string
	clientFactory func() *gosseract.Client
}

// NewEngine creates a Tesseract engine for the given languages (defaults
// to "eng" when empty).
func NewEngine(languages ...string) *Engine {
	if len(languages) == 0 {
		languages = []string{"eng"}
	}
	return &Engine{
		languages:     languages,
		clientFactory: gosseract.NewClient,
	}
}

// Version implements ocr.Engine.
func (e *Engine) Version() string {
	return EngineVersion
}

// Recognize implements ocr.Engine. Word boxes come from the RIL_WORD level
// so each result maps to one token in raster pixel coordinates.
func (e *Engine) Recognize(ctx context.Context, img image.Image) (*ocr.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode page image: %w", err)
	}

	client := e.clientFactory()
	defer func() { _ = client.Close() }()

	if err := client.SetLanguage(e.languages...); err != nil {
		return nil, fmt.Errorf("set languages: %w", err)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return nil, fmt.Errorf("recognize text: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("word boxes: %w", err)
	}

	words := make([]match.Word, 0, len(boxes))
	for _, b := range boxes {
		token := strings.TrimSpace(b.Word)
		if token == "" {
			continue
		}
		words = append(words, match.Word{
			Text: token,
			X:    float64(b.Box.Min.X),
			Y:    float64(b.Box.Min.Y),
			W:    float64(b.Box.Dx()),
			H:    float64(b.Box.Dy()),
		})
	}

	return &ocr.Result{
		Words:    words,
		FullText: strings.TrimSpace(text),
	}, nil
}
