package highlight

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/doclens/doclens/internal/match"
)

// Palette holds the fill colors used when baking highlights into a bitmap.
// Alpha below 255 lets the underlying text stay readable.
type Palette struct {
	Hit     color.RGBA
	Context color.RGBA
}

// DefaultPalette mirrors the viewer's on-screen styles: translucent yellow
// for hits, translucent green for context terms.
func DefaultPalette() Palette {
	return Palette{
		Hit:     color.RGBA{R: 255, G: 235, B: 59, A: 110},
		Context: color.RGBA{R: 76, G: 175, B: 80, A: 90},
	}
}

// Bake draws the highlights directly into a copy of the page image and
// returns the flattened result. The output is a single bitmap, not an
// overlay layer, so it survives non-interactive print views.
func Bake(img image.Image, highlights []Screen, palette Palette) *image.RGBA {
	if img == nil {
		return nil
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)

	for _, h := range highlights {
		fill := palette.Hit
		if h.Kind == match.KindContext {
			fill = palette.Context
		}
		rect := image.Rect(
			int(h.X+0.5), int(h.Y+0.5),
			int(h.X+h.W+0.5), int(h.Y+h.H+0.5),
		).Intersect(dst.Bounds())
		if rect.Empty() {
			continue
		}
		draw.Draw(dst, rect, image.NewUniform(fill), image.Point{}, draw.Over)
	}
	return dst
}
