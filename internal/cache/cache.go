// Package cache stores filtered CDX query results so repeat recoveries within
// the TTL avoid redundant archive traffic. Entries are read-then-written per
// key with last-write-wins semantics; a corrupt entry is a recoverable miss,
// never a failure.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/davgn/waymeta/internal/core/domain"
)

// DefaultTTL is how long a cached CDX result stays fresh.
const DefaultTTL = 24 * time.Hour

// Entry is one cached CDX query result.
type Entry struct {
	VideoID   string             `json:"video_id"`
	FetchedAt time.Time          `json:"fetched_at"`
	Snapshots []*domain.Snapshot `json:"snapshots"`

	// RawCount is the pre-filter row count the CDX endpoint returned,
	// kept for observability of how aggressive the filters are.
	RawCount int `json:"raw_count"`
}

// NewEntry timestamps a fresh entry. FetchedAt is always timezone-aware UTC.
func NewEntry(videoID string, snapshots []*domain.Snapshot, rawCount int) *Entry {
	return &Entry{
		VideoID:   videoID,
		FetchedAt: time.Now().UTC(),
		Snapshots: snapshots,
		RawCount:  rawCount,
	}
}

// Valid reports freshness purely as a function of wall-clock age vs TTL.
func (e *Entry) Valid(ttl time.Duration) bool {
	return time.Since(e.FetchedAt) < ttl
}

// Store is the key-value contract cache backends implement. Get returns
// (nil, nil) on a miss; backends must treat corrupted entries as misses and
// delete them rather than surfacing decode errors.
type Store interface {
	Get(ctx context.Context, key string) (*Entry, error)
	Put(ctx context.Context, key string, entry *Entry) error
}

// Key scopes a cache entry by video id and the year filters of the query, so
// an anchored query never reuses an unanchored result.
func Key(videoID string, fromYear, toYear int) string {
	return fmt.Sprintf("cdx:%s:%d-%d", videoID, fromYear, toYear)
}
