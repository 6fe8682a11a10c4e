// Package cache provides the store backends holding fetched page
// configurations between loads.
package cache

import (
	"time"

	"github.com/opencontainers/go-digest"

	"openportal.dev/openportal/descriptor"
)

// Entry is one cached page configuration together with the metadata needed
// for freshness decisions and conditional refreshes.
type Entry struct {
	// PageID the entry belongs to. There is at most one entry per page.
	PageID string `json:"pageId"`
	// Config is the decoded page configuration.
	Config *descriptor.PageConfig `json:"config"`
	// Body is the serialized configuration exactly as fetched.
	Body []byte `json:"body"`
	// ETag is the opaque validator received from the origin, stored verbatim
	// including any quoting. Empty when the origin sent none.
	ETag string `json:"etag,omitempty"`
	// Digest is the canonical content digest of Body.
	Digest digest.Digest `json:"digest,omitempty"`
	// FetchedAt is when the entry was stored or last revalidated.
	FetchedAt time.Time `json:"fetchedAt"`
	// ExpiresAt is when the entry stops being fresh.
	ExpiresAt time.Time `json:"expiresAt"`
}

// Fresh reports whether the entry may be served without consulting the
// origin.
func (e *Entry) Fresh(now time.Time) bool {
	return now.Before(e.ExpiresAt)
}

// TTL returns the remaining freshness lifetime. Negative once the entry went
// stale.
func (e *Entry) TTL(now time.Time) time.Duration {
	return e.ExpiresAt.Sub(now)
}

// Refreshed returns a copy of the entry with renewed freshness timestamps.
// The configuration itself is retained untouched; this is the 304 path.
func (e *Entry) Refreshed(now time.Time, ttl time.Duration) *Entry {
	refreshed := *e
	refreshed.FetchedAt = now
	refreshed.ExpiresAt = now.Add(ttl)
	return &refreshed
}

// Store is a mapping of page ids to cached entries. Implementations must be
// safe for concurrent use. Backends that can fail internally (disk stores)
// report failures through their own logging and degrade to cache misses.
type Store interface {
	// Get returns the entry for the page, whether fresh or stale.
	Get(pageID string) (*Entry, bool)
	// Peek is Get without recency bookkeeping, for inspection paths that
	// must not influence eviction order.
	Peek(pageID string) (*Entry, bool)
	// Set stores the entry, replacing any previous entry for the same page
	// wholesale.
	Set(entry *Entry)
	// Delete evicts the entry for the page, if present.
	Delete(pageID string)
	// Clear evicts all entries.
	Clear()
	// Len returns the number of entries currently held.
	Len() int
	// Entries returns a snapshot of all entries.
	Entries() []*Entry
}
