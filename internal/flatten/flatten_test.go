package flatten

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doclens/doclens/internal/locator"
	"github.com/doclens/doclens/internal/match"
	"github.com/doclens/doclens/internal/render"
)

// fakeRenderer renders white pages, failing for pages in failPages.
type fakeRenderer struct {
	pages     int
	failPages map[int]bool
}

func (r *fakeRenderer) PageCount(ctx context.Context, documentID string) (int, error) {
	return r.pages, nil
}

func (r *fakeRenderer) PageDims(ctx context.Context, documentID string, page int) (float64, float64, error) {
	return 100, 100, nil
}

func (r *fakeRenderer) TextLayer(ctx context.Context, documentID string, page int) ([]render.TextItem, error) {
	return nil, nil
}

func (r *fakeRenderer) RenderPage(ctx context.Context, documentID string, page int, scale float64) (image.Image, error) {
	if r.failPages[page] {
		return nil, render.ErrSourceUnavailable
	}
	size := int(100 * scale)
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.Set(x, y, color.White)
		}
	}
	return img, nil
}

// fakePageLocator serves canned matches in a 100x100 source space.
type fakePageLocator struct {
	pages   int
	matches map[int][]match.Match
}

func (l *fakePageLocator) PageCount(ctx context.Context, documentID string) (int, error) {
	return l.pages, nil
}

func (l *fakePageLocator) Locate(ctx context.Context, documentID string, page int, terms match.TermSet) (*locator.PageResult, error) {
	return &locator.PageResult{
		Page:        page,
		Matches:     l.matches[page],
		ImageWidth:  100,
		ImageHeight: 100,
		Source:      locator.SourceOCR,
	}, nil
}

func TestFlatten_AllPagesRendered(t *testing.T) {
	loc := &fakePageLocator{pages: 3}
	pipe := New(loc, &fakeRenderer{pages: 3}, 2.0)

	res, err := pipe.Flatten(context.Background(), "doc-1", match.NewTermSet([]string{"x"}, nil))
	require.NoError(t, err)

	assert.Equal(t, 3, res.TotalPages)
	assert.Equal(t, 0, res.PagesSkipped)
	require.Len(t, res.Pages, 3)
	for i, page := range res.Pages {
		assert.Equal(t, i+1, page.Number)
		require.NotNil(t, page.Image)
		assert.Equal(t, 200, page.Image.Bounds().Dx(), "pages render at print scale")
	}
}

func TestFlatten_BakesHighlightsIntoPixels(t *testing.T) {
	loc := &fakePageLocator{
		pages: 1,
		matches: map[int][]match.Match{
			1: {{
				Word: match.Word{Text: "ABC-1", X: 10, Y: 10, W: 20, H: 10},
				Page: 1, Term: "ABC-1", Kind: match.KindHit,
			}},
		},
	}
	pipe := New(loc, &fakeRenderer{pages: 1}, 2.0)

	res, err := pipe.Flatten(context.Background(), "doc-1", match.NewTermSet([]string{"ABC-1"}, nil))
	require.NoError(t, err)
	require.Len(t, res.Pages, 1)

	img := res.Pages[0].Image
	// The 10,10 20x10 source rect scales to 20,20 40x20 in the 2x render.
	inside := img.RGBAAt(30, 25)
	outside := img.RGBAAt(150, 150)
	assert.NotEqual(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, inside)
	assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, outside)
}

func TestFlatten_FailedPagesSkippedNotBlank(t *testing.T) {
	loc := &fakePageLocator{pages: 4}
	renderer := &fakeRenderer{pages: 4, failPages: map[int]bool{2: true, 3: true}}
	pipe := New(loc, renderer, 1.0)

	res, err := pipe.Flatten(context.Background(), "doc-1", match.NewTermSet([]string{"x"}, nil))
	require.NoError(t, err)

	assert.Equal(t, 4, res.TotalPages)
	assert.Equal(t, 2, res.PagesSkipped)
	require.Len(t, res.Pages, 2)
	assert.Equal(t, 1, res.Pages[0].Number)
	assert.Equal(t, 4, res.Pages[1].Number, "surviving pages keep their original numbers")
}

func TestFlatten_PageCountErrorPropagates(t *testing.T) {
	pipe := New(&failingLocator{}, &fakeRenderer{}, 1.0)

	_, err := pipe.Flatten(context.Background(), "missing", match.NewTermSet([]string{"x"}, nil))
	require.Error(t, err)
}

type failingLocator struct{}

func (failingLocator) PageCount(ctx context.Context, documentID string) (int, error) {
	return 0, errors.New("document not found")
}

func (failingLocator) Locate(ctx context.Context, documentID string, page int, terms match.TermSet) (*locator.PageResult, error) {
	return nil, errors.New("document not found")
}

func TestFlatten_Cancellation(t *testing.T) {
	loc := &fakePageLocator{pages: 50}
	pipe := New(loc, &fakeRenderer{pages: 50}, 1.0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := pipe.Flatten(ctx, "doc-1", match.NewTermSet([]string{"x"}, nil))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNew_ScaleDefault(t *testing.T) {
	pipe := New(&fakePageLocator{}, &fakeRenderer{}, 0)
	assert.Equal(t, DefaultPrintScale, pipe.scale)
}
