package leveldb

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"openportal.dev/openportal/cache"
	"openportal.dev/openportal/descriptor"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})
	return store
}

func testEntry(pageID string) *cache.Entry {
	return &cache.Entry{
		PageID: pageID,
		Config: &descriptor.PageConfig{
			ID:      pageID,
			Version: "1.0.0",
			Layout:  json.RawMessage(`{"type":"grid"}`),
			Widgets: []descriptor.Widget{{ID: "w", Type: "Label"}},
		},
		Body:      []byte(`{"id":"` + pageID + `","version":"1.0.0"}`),
		ETag:      `"v42"`,
		FetchedAt: time.Now().Truncate(time.Second),
		ExpiresAt: time.Now().Add(time.Hour).Truncate(time.Second),
	}
}

func TestStoreRoundTrip(t *testing.T) {
	r := require.New(t)
	store := openTestStore(t)

	entry := testEntry("home")
	store.Set(entry)

	got, ok := store.Get("home")
	r.True(ok)
	r.Equal(entry.PageID, got.PageID)
	r.Equal(entry.ETag, got.ETag)
	r.Equal(entry.Body, got.Body)
	r.Equal(entry.Config.ID, got.Config.ID)
	r.Equal(entry.Config.Widgets, got.Config.Widgets)
	r.True(entry.ExpiresAt.Equal(got.ExpiresAt))
}

func TestStoreMiss(t *testing.T) {
	store := openTestStore(t)
	_, ok := store.Get("absent")
	assert.False(t, ok)
}

func TestStoreDeleteAndClear(t *testing.T) {
	r := require.New(t)
	store := openTestStore(t)

	store.Set(testEntry("a"))
	store.Set(testEntry("b"))
	store.Set(testEntry("c"))
	r.Equal(3, store.Len())
	r.Len(store.Entries(), 3)

	store.Delete("b")
	r.Equal(2, store.Len())
	_, ok := store.Get("b")
	r.False(ok)

	store.Clear()
	r.Equal(0, store.Len())
}

func TestStorePersistsAcrossReopen(t *testing.T) {
	r := require.New(t)
	dir := t.TempDir()

	store, err := Open(dir)
	r.NoError(err)
	store.Set(testEntry("home"))
	r.NoError(store.Close())

	reopened, err := Open(dir)
	r.NoError(err)
	defer func() {
		r.NoError(reopened.Close())
	}()

	got, ok := reopened.Get("home")
	r.True(ok)
	r.Equal("home", got.PageID)
}
