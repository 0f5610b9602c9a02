// Package highlight projects term matches into render coordinate spaces
// and produces screen overlay instructions or print-baked bitmaps.
package highlight

import (
	"github.com/doclens/doclens/internal/match"
)

// Rect is an axis-aligned highlight rectangle in the target coordinate
// space. Always derived from a match via Project, never cached.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Class names the visual style of a highlight in strict mode.
type Class string

const (
	// ClassHit styles operator-entered terms.
	ClassHit Class = "highlight-hit"
	// ClassContext styles system-supplied context terms.
	ClassContext Class = "highlight-context"
)

// Screen is one absolutely-positioned overlay rectangle for the viewer,
// tagged with the matched term for tooltips and debugging.
type Screen struct {
	Rect
	Term  string         `json:"term"`
	Kind  match.TermKind `json:"kind"`
	Class Class          `json:"class"`
}

// Project scales a source-space rectangle into the target space. Source
// dimensions are the raster (OCR) or page-box (vector) size the match was
// located in; target dimensions are the current render.
func Project(w match.Word, srcW, srcH, dstW, dstH float64) Rect {
	if srcW <= 0 || srcH <= 0 {
		return Rect{}
	}
	sx := dstW / srcW
	sy := dstH / srcH
	return Rect{X: w.X * sx, Y: w.Y * sy, W: w.W * sx, H: w.H * sy}
}

// ForScreen builds the overlay instruction list for one page render. One
// style wins per token: a word matching both a hit and a context term
// renders once with hit styling, since hits carry the operator's explicit
// intent. Without strict mode both kinds share the hit class.
func ForScreen(matches []match.Match, srcW, srcH, dstW, dstH float64, strict bool) []Screen {
	type tokenKey struct {
		x, y, w, h float64
	}
	chosen := make(map[tokenKey]int)
	var out []Screen

	for _, m := range matches {
		key := tokenKey{m.X, m.Y, m.W, m.H}
		class := ClassHit
		if strict && m.Kind == match.KindContext {
			class = ClassContext
		}

		if idx, ok := chosen[key]; ok {
			// Hit styling takes precedence over context for the same token.
			if out[idx].Kind == match.KindContext && m.Kind == match.KindHit {
				out[idx].Term = m.Term
				out[idx].Kind = m.Kind
				out[idx].Class = ClassHit
			}
			continue
		}

		chosen[key] = len(out)
		out = append(out, Screen{
			Rect:  Project(m.Word, srcW, srcH, dstW, dstH),
			Term:  m.Term,
			Kind:  m.Kind,
			Class: class,
		})
	}
	return out
}
