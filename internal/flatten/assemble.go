package flatten

import (
	"fmt"
	"image/png"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// AssemblePDF writes the flattened pages into a single print-only PDF at
// outFile. Each output page takes the dimensions of its rendered image, so
// mixed sizes and orientations survive unchanged.
func AssemblePDF(res *Result, outFile string) error {
	if res == nil || len(res.Pages) == 0 {
		return fmt.Errorf("no pages to assemble")
	}

	tempDir, err := os.MkdirTemp("", "doclens-print-*")
	if err != nil {
		return fmt.Errorf("create temp dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(tempDir) }()

	files := make([]string, 0, len(res.Pages))
	for _, page := range res.Pages {
		path := filepath.Join(tempDir, fmt.Sprintf("page_%05d.png", page.Number))
		if err := writePNG(path, page); err != nil {
			return err
		}
		files = append(files, path)
	}

	if err := api.ImportImagesFile(files, outFile, nil, nil); err != nil {
		return fmt.Errorf("assemble print pdf: %w", err)
	}
	return nil
}

func writePNG(path string, page Page) error {
	f, err := os.Create(path) //nolint:gosec // G304: path is in our own temp dir
	if err != nil {
		return fmt.Errorf("create page file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := png.Encode(f, page.Image); err != nil {
		return fmt.Errorf("encode page %d: %w", page.Number, err)
	}
	return nil
}
