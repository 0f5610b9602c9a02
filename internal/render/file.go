package render

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/dslipak/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// FileRenderer implements Renderer on top of local PDF files. The vector
// text layer comes from dslipak/pdf, page geometry and embedded page scans
// from pdfcpu, and raster scaling from imaging.
type FileRenderer struct {
	resolve Resolver
}

// NewFileRenderer creates a renderer that resolves document ids through
// the given resolver.
func NewFileRenderer(resolve Resolver) *FileRenderer {
	return &FileRenderer{resolve: resolve}
}

// DirResolver resolves document ids to "<dir>/<id>.pdf". Ids must be plain
// names; anything with a path separator is rejected.
func DirResolver(dir string) Resolver {
	return func(documentID string) (string, error) {
		if documentID == "" || strings.ContainsAny(documentID, `/\`) {
			return "", fmt.Errorf("invalid document id %q", documentID)
		}
		path := filepath.Join(dir, documentID+".pdf")
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("%w: %s: %v", ErrSourceUnavailable, documentID, err)
		}
		return path, nil
	}
}

// PageCount returns the number of pages in the document.
func (r *FileRenderer) PageCount(ctx context.Context, documentID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	path, err := r.resolve(documentID)
	if err != nil {
		return 0, err
	}
	count, err := api.PageCountFile(path)
	if err != nil {
		return 0, fmt.Errorf("%w: page count of %s: %v", ErrSourceUnavailable, documentID, err)
	}
	return count, nil
}

// PageDims returns the media box dimensions of one page in PDF points.
func (r *FileRenderer) PageDims(ctx context.Context, documentID string, page int) (float64, float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}
	path, err := r.resolve(documentID)
	if err != nil {
		return 0, 0, err
	}
	dims, err := api.PageDimsFile(path)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: page dims of %s: %v", ErrSourceUnavailable, documentID, err)
	}
	if page < 1 || page > len(dims) {
		return 0, 0, fmt.Errorf("%w: page %d out of range (1..%d)", ErrSourceUnavailable, page, len(dims))
	}
	return dims[page-1].Width, dims[page-1].Height, nil
}

// TextLayer extracts positioned vector text from one page. An empty result
// without error means the page is a scan and OCR applies.
func (r *FileRenderer) TextLayer(ctx context.Context, documentID string, page int) ([]TextItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := r.resolve(documentID)
	if err != nil {
		return nil, err
	}

	reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrSourceUnavailable, documentID, err)
	}
	if page < 1 || page > reader.NumPage() {
		return nil, fmt.Errorf("%w: page %d out of range (1..%d)", ErrSourceUnavailable, page, reader.NumPage())
	}

	p := reader.Page(page)
	if p.V.IsNull() {
		return nil, fmt.Errorf("%w: page %d of %s is null", ErrSourceUnavailable, page, documentID)
	}

	var items []TextItem
	for _, t := range p.Content().Text {
		token := strings.TrimSpace(t.S)
		if token == "" {
			continue
		}
		items = append(items, TextItem{
			Text: token,
			X:    t.X,
			Y:    t.Y,
			W:    t.W,
			H:    t.FontSize,
		})
	}
	return items, nil
}

// RenderPage rasterizes one page at the given scale. For scanned documents
// the page raster is the embedded scan image; the largest image on the page
// wins when several are present. Pages without any embedded image cannot be
// rasterized here and report ErrSourceUnavailable.
func (r *FileRenderer) RenderPage(ctx context.Context, documentID string, page int, scale float64) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := r.resolve(documentID)
	if err != nil {
		return nil, err
	}

	tempDir, err := os.MkdirTemp("", "doclens-render-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(tempDir) }()

	if err := api.ExtractImagesFile(path, tempDir, []string{strconv.Itoa(page)}, nil); err != nil {
		return nil, fmt.Errorf("%w: extract page %d of %s: %v", ErrSourceUnavailable, page, documentID, err)
	}

	img, err := largestImageIn(tempDir)
	if err != nil {
		return nil, fmt.Errorf("%w: page %d of %s: %v", ErrSourceUnavailable, page, documentID, err)
	}

	if scale > 0 && scale != 1.0 {
		b := img.Bounds()
		w := int(float64(b.Dx())*scale + 0.5)
		h := int(float64(b.Dy())*scale + 0.5)
		img = imaging.Resize(img, w, h, imaging.Lanczos)
	}
	return img, nil
}

// largestImageIn loads every decodable image below dir and returns the one
// covering the most pixels.
func largestImageIn(dir string) (image.Image, error) {
	var best image.Image
	bestArea := 0

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		img, loadErr := loadImageFile(path)
		if loadErr != nil {
			// Skip artifacts we cannot decode (masks, exotic color spaces).
			return nil
		}
		b := img.Bounds()
		if area := b.Dx() * b.Dy(); area > bestArea {
			best, bestArea = img, area
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if best == nil {
		return nil, errors.New("no renderable page image")
	}
	return best, nil
}

func loadImageFile(path string) (image.Image, error) {
	f, err := os.Open(path) //nolint:gosec // G304: path comes from our own temp dir
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	img, _, err := image.Decode(f)
	return img, err
}
