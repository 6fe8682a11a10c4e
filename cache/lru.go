package cache

import (
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// LRU implements Store with a bounded entry count, evicting the least
// recently used page when full. Freshness is still governed per entry; the
// bound only protects memory when the page universe is large.
type LRU struct {
	cache   *expirable.LRU[string, *Entry]
	onEvict func(pageID string)
}

var _ Store = (*LRU)(nil)

type LRUOption func(*LRU)

// WithEvictionHook registers a callback invoked whenever an entry leaves the
// store, including size-bound evictions and explicit deletes.
func WithEvictionHook(hook func(pageID string)) LRUOption {
	return func(l *LRU) {
		l.onEvict = hook
	}
}

// NewLRU creates a store bounded to maxEntries. A bound of 0 means unbounded.
func NewLRU(maxEntries int, opts ...LRUOption) *LRU {
	l := &LRU{}
	for _, opt := range opts {
		opt(l)
	}
	l.cache = expirable.NewLRU(maxEntries, func(pageID string, _ *Entry) {
		if l.onEvict != nil {
			l.onEvict(pageID)
		}
	}, 0)
	return l
}

func (l *LRU) Get(pageID string) (*Entry, bool) {
	return l.cache.Get(pageID)
}

// Peek returns the entry without marking it recently used.
func (l *LRU) Peek(pageID string) (*Entry, bool) {
	return l.cache.Peek(pageID)
}

func (l *LRU) Set(entry *Entry) {
	l.cache.Add(entry.PageID, entry)
}

func (l *LRU) Delete(pageID string) {
	l.cache.Remove(pageID)
}

func (l *LRU) Clear() {
	l.cache.Purge()
}

func (l *LRU) Len() int {
	return l.cache.Len()
}

func (l *LRU) Entries() []*Entry {
	return l.cache.Values()
}
