// Package leveldb provides a persistent cache store so that fetched page
// configurations survive process restarts.
package leveldb

import (
	"encoding/json"
	"fmt"
	"log/slog"

	goleveldb "github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"

	"openportal.dev/openportal/cache"
)

var logger = slog.With(slog.String("realm", "cache.leveldb"))

// entries are namespaced so that other record kinds can share the database
// later without key collisions.
var keyPrefix = []byte("page:")

// Store implements cache.Store on top of a leveldb database. Read and write
// failures are logged and degrade to cache misses; the loader then falls back
// to the origin.
type Store struct {
	db *goleveldb.DB
}

var _ cache.Store = (*Store)(nil)

// Open opens (or creates) the database at path.
func Open(path string) (*Store, error) {
	db, err := goleveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("could not open cache database at %q: %w", path, err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Get(pageID string) (*cache.Entry, bool) {
	data, err := s.db.Get(entryKey(pageID), nil)
	if err != nil {
		if err != goleveldb.ErrNotFound {
			logger.Warn("cache read failed, treating as miss", slog.String("page", pageID), slog.String("error", err.Error()))
		}
		return nil, false
	}
	var entry cache.Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		logger.Warn("cache entry corrupt, treating as miss", slog.String("page", pageID), slog.String("error", err.Error()))
		return nil, false
	}
	return &entry, true
}

// Peek is identical to Get; disk reads have no recency state.
func (s *Store) Peek(pageID string) (*cache.Entry, bool) {
	return s.Get(pageID)
}

func (s *Store) Set(entry *cache.Entry) {
	data, err := json.Marshal(entry)
	if err != nil {
		logger.Warn("could not encode cache entry", slog.String("page", entry.PageID), slog.String("error", err.Error()))
		return
	}
	if err := s.db.Put(entryKey(entry.PageID), data, nil); err != nil {
		logger.Warn("cache write failed", slog.String("page", entry.PageID), slog.String("error", err.Error()))
	}
}

func (s *Store) Delete(pageID string) {
	if err := s.db.Delete(entryKey(pageID), nil); err != nil {
		logger.Warn("cache delete failed", slog.String("page", pageID), slog.String("error", err.Error()))
	}
}

func (s *Store) Clear() {
	batch := new(goleveldb.Batch)
	iter := s.db.NewIterator(util.BytesPrefix(keyPrefix), nil)
	for iter.Next() {
		batch.Delete(append([]byte(nil), iter.Key()...))
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		logger.Warn("cache clear iteration failed", slog.String("error", err.Error()))
	}
	if err := s.db.Write(batch, nil); err != nil {
		logger.Warn("cache clear failed", slog.String("error", err.Error()))
	}
}

func (s *Store) Len() int {
	count := 0
	iter := s.db.NewIterator(util.BytesPrefix(keyPrefix), nil)
	for iter.Next() {
		count++
	}
	iter.Release()
	return count
}

func (s *Store) Entries() []*cache.Entry {
	var entries []*cache.Entry
	iter := s.db.NewIterator(util.BytesPrefix(keyPrefix), nil)
	for iter.Next() {
		var entry cache.Entry
		if err := json.Unmarshal(iter.Value(), &entry); err != nil {
			logger.Warn("skipping corrupt cache entry", slog.String("key", string(iter.Key())), slog.String("error", err.Error()))
			continue
		}
		entries = append(entries, &entry)
	}
	iter.Release()
	return entries
}

func entryKey(pageID string) []byte {
	return append(append([]byte(nil), keyPrefix...), pageID...)
}
