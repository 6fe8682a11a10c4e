package cache

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"
)

// Memory implements Store using a simple in-memory map. It has no size bound;
// use LRU when the page universe is unbounded.
type Memory struct {
	mu    sync.RWMutex
	store map[string]*Entry
}

var _ Store = (*Memory)(nil)

// NewMemory creates a new in-memory store.
func NewMemory() *Memory {
	return &Memory{
		store: make(map[string]*Entry),
	}
}

func (m *Memory) Get(pageID string) (*Entry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entry, ok := m.store[pageID]
	return entry, ok
}

// Peek is identical to Get; a map lookup has no recency state.
func (m *Memory) Peek(pageID string) (*Entry, bool) {
	return m.Get(pageID)
}

func (m *Memory) Set(entry *Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store[entry.PageID] = entry
}

func (m *Memory) Delete(pageID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.store, pageID)
}

func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.store)
}

func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.store)
}

func (m *Memory) Entries() []*Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Collect(maps.Values(m.store))
}

// CleanUp evicts all entries whose freshness lifetime has fully elapsed for
// longer than the given grace period. Stale entries inside the grace period
// survive so that stale-while-revalidate still has something to serve.
func (m *Memory) CleanUp(grace time.Duration) {
	now := time.Now()
	m.mu.Lock()
	defer m.mu.Unlock()
	for pageID, entry := range m.store {
		if now.After(entry.ExpiresAt.Add(grace)) {
			delete(m.store, pageID)
		}
	}
}

// Start runs a periodic CleanUp until the context is canceled.
func (m *Memory) Start(ctx context.Context, interval, grace time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			m.CleanUp(grace)
		}
	}
}
