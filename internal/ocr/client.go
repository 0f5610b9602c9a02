package ocr

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/doclens/doclens/internal/cache"
)

// RenderFunc rasterizes the page on demand. It is only invoked when the
// cache cannot satisfy the lookup.
type RenderFunc func(ctx context.Context) (image.Image, error)

// Client is the OCR fallback path. It consults the coordinate cache first,
// serializes recognition per (document, page) so concurrent requesters
// never race two OCR passes for the same page, and writes results through
// the cache. Different pages of the same document still recognize in
// parallel; the guard is per page, not per document.
type Client struct {
	engine  Engine
	store   cache.Store
	ttl     time.Duration
	timeout time.Duration
	locks   pageLocks
}

// Option configures a Client.
type Option func(*Client)

// WithTTL overrides the cache TTL for entries written by this client.
func WithTTL(ttl time.Duration) Option {
	return func(c *Client) { c.ttl = ttl }
}

// WithTimeout bounds a single recognition call. A timed-out call surfaces
// as ErrRecognitionFailed, never as a scan-aborting error.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) { c.timeout = timeout }
}

// NewClient creates an OCR fallback client around an engine and a store.
func NewClient(engine Engine, store cache.Store, opts ...Option) *Client {
	c := &Client{
		engine:  engine,
		store:   store,
		ttl:     cache.DefaultTTL,
		timeout: 60 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Version returns the engine version token used in cache keys.
func (c *Client) Version() string {
	return c.engine.Version()
}

// PageEntry returns the word list, full text and raster dimensions for one
// page, running OCR only on a cache miss. The render callback supplies the
// page image lazily so cache hits never rasterize anything.
func (c *Client) PageEntry(ctx context.Context, documentID string, page int, render RenderFunc) (cache.Entry, error) {
	key := cache.Key{DocumentID: documentID, Page: page, EngineVersion: c.engine.Version()}

	if entry, ok, err := c.store.Get(ctx, key); err == nil && ok {
		cacheHits.Inc()
		return entry, nil
	} else if err != nil {
		slog.Warn("coordinate cache read failed", "key", key.String(), "error", err)
	}

	unlock := c.locks.acquire(key.String())
	defer unlock()

	// Another requester may have populated the key while we waited.
	if entry, ok, err := c.store.Get(ctx, key); err == nil && ok {
		cacheHits.Inc()
		return entry, nil
	}
	cacheMisses.Inc()

	// The pass is committed once the page lock is held: a caller's
	// cancellation must not abort recognition already issued, and the cache
	// write is kept so the work is not lost. Only the recognition timeout
	// bounds the pass from here on.
	opCtx := context.WithoutCancel(ctx)

	img, err := render(opCtx)
	if err != nil {
		return cache.Entry{}, fmt.Errorf("render page %d of %s: %w", page, documentID, err)
	}

	recCtx := opCtx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		recCtx, cancel = context.WithTimeout(opCtx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	res, err := c.engine.Recognize(recCtx, img)
	if err != nil {
		return cache.Entry{}, fmt.Errorf("%w: page %d of %s: %v", ErrRecognitionFailed, page, documentID, err)
	}
	slog.Debug("ocr pass completed",
		"document", documentID, "page", page,
		"words", len(res.Words), "elapsed", time.Since(start).Round(time.Millisecond))

	bounds := img.Bounds()
	entry := cache.Entry{
		Words:       res.Words,
		FullText:    res.FullText,
		ImageWidth:  bounds.Dx(),
		ImageHeight: bounds.Dy(),
	}

	// A failed write only costs a redundant OCR pass later.
	if err := c.store.Set(opCtx, key, entry, c.ttl); err != nil {
		slog.Warn("coordinate cache write failed", "key", key.String(), "error", err)
	}

	return entry, nil
}
