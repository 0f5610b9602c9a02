// Package cache persists per-page OCR coordinate data so repeated lookups
// never trigger a second recognition pass within the TTL window.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/doclens/doclens/internal/match"
)

// DefaultTTL is how long a page entry stays valid without an explicit
// invalidation.
const DefaultTTL = 7 * 24 * time.Hour

// Key identifies one cached page. EngineVersion is part of the key on
// purpose: bumping the OCR pipeline version makes every old entry
// unreachable, which is how an engine upgrade invalidates stale
// coordinates. A content hash would not notice an engine change.
type Key struct {
	DocumentID    string
	Page          int
	EngineVersion string
}

// String renders the key in the canonical storage form.
func (k Key) String() string {
	return fmt.Sprintf("doclens:coords:%s:%d:%s", k.DocumentID, k.Page, k.EngineVersion)
}

// Entry holds the OCR output for one page: every recognized word with its
// bounding box, the full page text, and the raster dimensions the boxes are
// expressed in. Entries are owned by the cache; callers treat them as
// read-only snapshots.
type Entry struct {
	Words       []match.Word `json:"words"`
	FullText    string       `json:"full_text"`
	ImageWidth  int          `json:"image_width"`
	ImageHeight int          `json:"image_height"`
}

// Store is the coordinate cache contract. A false second return from Get is
// not an error; it signals that OCR must run for the page.
type Store interface {
	Get(ctx context.Context, key Key) (Entry, bool, error)
	Set(ctx context.Context, key Key, entry Entry, ttl time.Duration) error
}
