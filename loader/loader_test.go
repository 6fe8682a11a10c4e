package loader_test

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"openportal.dev/openportal/cache"
	"openportal.dev/openportal/descriptor"
	"openportal.dev/openportal/loader"
	"openportal.dev/openportal/repository"
)

// stubOrigin implements repository.PageRepository in process so that tests
// can run inside a synctest bubble, gate fetches, and count requests.
type stubOrigin struct {
	requests atomic.Int64

	mu      sync.Mutex
	etags   []string
	gate    chan struct{}
	handler func(pageID, etag string) (*repository.Page, error)
}

var _ repository.PageRepository = (*stubOrigin)(nil)

func newStubOrigin(handler func(pageID, etag string) (*repository.Page, error)) *stubOrigin {
	return &stubOrigin{handler: handler}
}

func (s *stubOrigin) GetPage(ctx context.Context, pageID string, opts ...repository.GetOption) (*repository.Page, error) {
	options := &repository.GetOptions{}
	for _, opt := range opts {
		opt(options)
	}

	s.requests.Add(1)
	s.mu.Lock()
	s.etags = append(s.etags, options.ETag)
	gate := s.gate
	handler := s.handler
	s.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return handler(pageID, options.ETag)
}

// hold blocks every following fetch until the returned release function is
// called.
func (s *stubOrigin) hold() (release func()) {
	gate := make(chan struct{})
	s.mu.Lock()
	s.gate = gate
	s.mu.Unlock()
	return sync.OnceFunc(func() { close(gate) })
}

func (s *stubOrigin) setHandler(handler func(pageID, etag string) (*repository.Page, error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handler = handler
}

func (s *stubOrigin) sentETags() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.etags)
}

func testPage(id, version, etag string) *repository.Page {
	body := fmt.Sprintf(`{"id":%q,"version":%q,"layout":{"kind":"grid"},"widgets":[{"id":"w1","type":"text"}]}`, id, version)
	return &repository.Page{
		Config: &descriptor.PageConfig{
			ID:      id,
			Version: version,
			Layout:  json.RawMessage(`{"kind":"grid"}`),
			Widgets: []descriptor.Widget{{ID: "w1", Type: "text"}},
		},
		Body: []byte(body),
		ETag: etag,
	}
}

func serveVersion(version, etag string) func(pageID, sentETag string) (*repository.Page, error) {
	return func(pageID, _ string) (*repository.Page, error) {
		return testPage(pageID, version, etag), nil
	}
}

func TestLoad_PopulatesCacheOnFirstLoad(t *testing.T) {
	origin := newStubOrigin(serveVersion("1.0.0", `"abc"`))
	store := cache.NewMemory()
	ldr := loader.New(origin, loader.WithStore(store))

	cfg, err := ldr.Load(t.Context(), "dash")
	require.NoError(t, err)
	require.Equal(t, "dash", cfg.ID)

	assert.Equal(t, int64(1), origin.requests.Load())
	assert.True(t, ldr.IsCached("dash"))

	stats := ldr.CacheStats()
	assert.Equal(t, 1, stats.Entries)
	assert.Equal(t, uint64(1), stats.Misses)
	assert.Equal(t, uint64(0), stats.Hits)

	entry, ok := store.Get("dash")
	require.True(t, ok)
	assert.Equal(t, `"abc"`, entry.ETag)
}

func TestLoad_ServesFreshEntryWithoutFetching(t *testing.T) {
	origin := newStubOrigin(serveVersion("1.0.0", `"abc"`))
	ldr := loader.New(origin)

	first, err := ldr.Load(t.Context(), "home")
	require.NoError(t, err)

	second, err := ldr.Load(t.Context(), "home")
	require.NoError(t, err)

	assert.Equal(t, int64(1), origin.requests.Load(), "fresh entry must be served without a fetch")
	assert.Equal(t, first, second)

	stats := ldr.CacheStats()
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
}

func TestLoad_ReturnedConfigIsDetachedFromCache(t *testing.T) {
	origin := newStubOrigin(serveVersion("1.0.0", ""))
	ldr := loader.New(origin)

	cfg, err := ldr.Load(t.Context(), "home")
	require.NoError(t, err)
	cfg.Widgets[0].Type = "mangled"

	again, err := ldr.Load(t.Context(), "home")
	require.NoError(t, err)
	assert.Equal(t, "text", again.Widgets[0].Type, "callers must not be able to corrupt cached state")
}

func TestLoad_ConcurrentLoadsShareOneFetch(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		origin := newStubOrigin(serveVersion("1.0.0", `"abc"`))
		release := origin.hold()
		defer release()
		ldr := loader.New(origin)

		const callers = 5
		type outcome struct {
			cfg *descriptor.PageConfig
			err error
		}
		results := make(chan outcome, callers)
		for range callers {
			go func() {
				cfg, err := ldr.Load(t.Context(), "home")
				results <- outcome{cfg: cfg, err: err}
			}()
		}

		synctest.Wait()
		require.Equal(t, int64(1), origin.requests.Load(), "concurrent loads must collapse into one fetch")

		release()
		for range callers {
			res := <-results
			require.NoError(t, res.err)
			assert.Equal(t, "home", res.cfg.ID)
		}

		assert.Equal(t, int64(1), origin.requests.Load())
		stats := ldr.CacheStats()
		assert.Equal(t, 1, stats.Entries)
		assert.Equal(t, uint64(callers), stats.Misses)
		assert.Equal(t, uint64(callers), stats.Shares)
	})
}

func TestLoad_SequentialLoadsFetchAgain(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		origin := newStubOrigin(serveVersion("1.0.0", ""))
		ldr := loader.New(origin, loader.WithDefaultTTL(time.Minute))

		_, err := ldr.Load(t.Context(), "home")
		require.NoError(t, err)

		// the flight settled, so after expiry a new load starts a new fetch
		time.Sleep(2 * time.Minute)

		_, err = ldr.Load(t.Context(), "home")
		require.NoError(t, err)
		assert.Equal(t, int64(2), origin.requests.Load())
	})
}

func TestLoad_CancellationReleasesOnlyThatCaller(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		origin := newStubOrigin(serveVersion("1.0.0", `"abc"`))
		release := origin.hold()
		defer release()
		ldr := loader.New(origin)

		ctxA, cancelA := context.WithCancel(t.Context())
		aDone := make(chan error, 1)
		go func() {
			_, err := ldr.Load(ctxA, "home")
			aDone <- err
		}()

		bDone := make(chan error, 1)
		var bCfg *descriptor.PageConfig
		go func() {
			cfg, err := ldr.Load(t.Context(), "home")
			bCfg = cfg
			bDone <- err
		}()

		synctest.Wait()
		require.Equal(t, int64(1), origin.requests.Load())

		cancelA()
		synctest.Wait()

		select {
		case err := <-aDone:
			require.ErrorIs(t, err, loader.ErrCancelled)
			require.ErrorIs(t, err, context.Canceled)
		default:
			t.Fatal("cancelled caller must settle immediately")
		}

		select {
		case <-bDone:
			t.Fatal("second caller must stay joined to the running fetch")
		default:
		}

		release()
		require.NoError(t, <-bDone)
		require.Equal(t, "home", bCfg.ID)
		assert.Equal(t, int64(1), origin.requests.Load(), "cancellation must not restart the fetch")
		assert.True(t, ldr.IsCached("home"), "the surviving caller still populates the cache")
	})
}

func TestLoad_ConditionalRefreshOn304(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		t0 := time.Now()
		origin := newStubOrigin(func(pageID, etag string) (*repository.Page, error) {
			if etag == `"v1"` {
				return &repository.Page{ETag: `"v1"`, NotModified: true}, nil
			}
			return testPage(pageID, "1.0.0", `"v1"`), nil
		})
		store := cache.NewMemory()
		ldr := loader.New(origin, loader.WithStore(store))

		first, err := ldr.Load(t.Context(), "home")
		require.NoError(t, err)
		before, ok := store.Get("home")
		require.True(t, ok)

		time.Sleep(3601 * time.Second)

		second, err := ldr.Load(t.Context(), "home")
		require.NoError(t, err)
		assert.Equal(t, first, second)

		require.Equal(t, int64(2), origin.requests.Load())
		assert.Equal(t, []string{"", `"v1"`}, origin.sentETags(), "second fetch must carry the stored validator verbatim")

		after, ok := store.Get("home")
		require.True(t, ok)
		require.Same(t, before.Config, after.Config, "a 304 must keep the configuration untouched")
		assert.Equal(t, before.Body, after.Body)
		assert.Equal(t, t0.Add(3601*time.Second), after.FetchedAt)
		assert.Equal(t, t0.Add(3601*time.Second).Add(3600*time.Second), after.ExpiresAt)
	})
}

func TestLoad_304WithoutPriorEntryIsNetworkError(t *testing.T) {
	origin := newStubOrigin(func(pageID, etag string) (*repository.Page, error) {
		return &repository.Page{NotModified: true}, nil
	})
	ldr := loader.New(origin)

	_, err := ldr.Load(t.Context(), "home")
	require.ErrorIs(t, err, repository.ErrNetwork)
	assert.False(t, ldr.IsCached("home"))
}

func TestLoad_StaleWhileRevalidate(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		origin := newStubOrigin(serveVersion("1.0.0", `"v1"`))
		store := cache.NewMemory()
		hookCh := make(chan error, 1)
		ldr := loader.New(origin,
			loader.WithStore(store),
			loader.WithRefreshHook(func(pageID string, err error) {
				hookCh <- err
			}),
		)

		_, err := ldr.Load(t.Context(), "home")
		require.NoError(t, err)

		time.Sleep(2 * time.Hour)
		origin.setHandler(serveVersion("2.0.0", `"v2"`))
		release := origin.hold()
		defer release()

		start := time.Now()
		cfg, err := ldr.Load(t.Context(), "home", loader.WithStaleWhileRevalidate())
		require.NoError(t, err)
		assert.Equal(t, "1.0.0", cfg.Version, "the stale value is served instantly")
		assert.Equal(t, start, time.Now(), "a stale serve must not block on the refresh")

		synctest.Wait()
		require.Equal(t, int64(2), origin.requests.Load(), "exactly one background fetch")

		release()
		require.NoError(t, <-hookCh)

		entry, ok := store.Get("home")
		require.True(t, ok)
		assert.Equal(t, "2.0.0", entry.Config.Version, "the background refresh replaced the entry")
		assert.True(t, ldr.IsCached("home"))

		stats := ldr.CacheStats()
		assert.Equal(t, uint64(1), stats.Revalidations)
	})
}

func TestLoad_StaleWithoutRevalidateOptionBlocks(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		origin := newStubOrigin(serveVersion("1.0.0", ""))
		ldr := loader.New(origin)

		_, err := ldr.Load(t.Context(), "home")
		require.NoError(t, err)

		time.Sleep(2 * time.Hour)
		origin.setHandler(serveVersion("2.0.0", ""))

		cfg, err := ldr.Load(t.Context(), "home")
		require.NoError(t, err)
		assert.Equal(t, "2.0.0", cfg.Version, "without stale-while-revalidate the caller waits for the refresh")
	})
}

func TestLoad_SkipCache(t *testing.T) {
	var version atomic.Int64
	origin := newStubOrigin(func(pageID, etag string) (*repository.Page, error) {
		return testPage(pageID, fmt.Sprintf("%d.0.0", version.Add(1)), `"e"`), nil
	})
	store := cache.NewMemory()
	ldr := loader.New(origin, loader.WithStore(store))

	t.Run("serves the origin even when a fresh entry exists", func(t *testing.T) {
		_, err := ldr.Load(t.Context(), "home")
		require.NoError(t, err)

		cfg, err := ldr.Load(t.Context(), "home", loader.WithSkipCache())
		require.NoError(t, err)
		assert.Equal(t, "2.0.0", cfg.Version)
		assert.Equal(t, int64(2), origin.requests.Load())
	})

	t.Run("fetches unconditionally", func(t *testing.T) {
		etags := origin.sentETags()
		assert.Equal(t, "", etags[len(etags)-1], "skip-cache must not send the cached validator")
	})

	t.Run("does not overwrite the cached entry", func(t *testing.T) {
		entry, ok := store.Get("home")
		require.True(t, ok)
		assert.Equal(t, "1.0.0", entry.Config.Version)
	})

	t.Run("does not populate the cache for unseen pages", func(t *testing.T) {
		_, err := ldr.Load(t.Context(), "other", loader.WithSkipCache())
		require.NoError(t, err)
		assert.False(t, ldr.IsCached("other"))
		assert.Equal(t, 1, ldr.CacheStats().Entries)
	})
}

func TestLoad_InvalidConfigIsNotCached(t *testing.T) {
	invalid := &repository.Page{
		Config: &descriptor.PageConfig{
			ID:      "broken",
			Version: "1.0.0",
			Layout:  json.RawMessage(`{}`),
		},
		Body: []byte(`{"id":"broken","version":"1.0.0","layout":{}}`),
	}

	t.Run("first load fails without a cache write", func(t *testing.T) {
		origin := newStubOrigin(func(pageID, etag string) (*repository.Page, error) {
			return invalid, nil
		})
		ldr := loader.New(origin)

		_, err := ldr.Load(t.Context(), "broken")
		require.ErrorIs(t, err, descriptor.ErrInvalidConfig)
		assert.False(t, ldr.IsCached("broken"))
		assert.Equal(t, 0, ldr.CacheStats().Entries)
	})

	t.Run("a stale entry survives an invalid refresh", func(t *testing.T) {
		synctest.Test(t, func(t *testing.T) {
			origin := newStubOrigin(serveVersion("1.0.0", ""))
			store := cache.NewMemory()
			ldr := loader.New(origin, loader.WithStore(store))

			_, err := ldr.Load(t.Context(), "home")
			require.NoError(t, err)

			time.Sleep(2 * time.Hour)
			origin.setHandler(func(pageID, etag string) (*repository.Page, error) {
				return invalid, nil
			})

			_, err = ldr.Load(t.Context(), "home")
			require.ErrorIs(t, err, descriptor.ErrInvalidConfig)

			entry, ok := store.Get("home")
			require.True(t, ok, "the prior entry must survive")
			assert.Equal(t, "1.0.0", entry.Config.Version)
		})
	})
}

func TestLoad_ErrorKinds(t *testing.T) {
	tests := []struct {
		name     string
		sentinel error
	}{
		{name: "not found", sentinel: repository.ErrNotFound},
		{name: "forbidden", sentinel: repository.ErrForbidden},
		{name: "network", sentinel: repository.ErrNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			origin := newStubOrigin(func(pageID, etag string) (*repository.Page, error) {
				return nil, fmt.Errorf("%w: page %q", tt.sentinel, pageID)
			})
			ldr := loader.New(origin)

			_, err := ldr.Load(t.Context(), "home")
			require.ErrorIs(t, err, tt.sentinel)
			assert.False(t, ldr.IsCached("home"))
			assert.Equal(t, 0, ldr.CacheStats().Entries, "failures must not cache")
		})
	}
}

func TestLoad_TTLOverride(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		origin := newStubOrigin(serveVersion("1.0.0", ""))
		ldr := loader.New(origin)

		_, err := ldr.Load(t.Context(), "short", loader.WithTTL(10*time.Minute))
		require.NoError(t, err)
		_, err = ldr.Load(t.Context(), "long")
		require.NoError(t, err)

		time.Sleep(11 * time.Minute)
		assert.False(t, ldr.IsCached("short"), "the override shortens the lifetime")
		assert.True(t, ldr.IsCached("long"), "the default lifetime is an hour")

		time.Sleep(50 * time.Minute)
		assert.False(t, ldr.IsCached("long"))
	})
}

func TestClearCache(t *testing.T) {
	origin := newStubOrigin(serveVersion("1.0.0", ""))
	ldr := loader.New(origin)

	for _, pageID := range []string{"a", "b", "c"} {
		_, err := ldr.Load(t.Context(), pageID)
		require.NoError(t, err)
	}

	ldr.ClearCache("a")
	assert.False(t, ldr.IsCached("a"))
	assert.True(t, ldr.IsCached("b"))
	assert.True(t, ldr.IsCached("c"))
	assert.Equal(t, 2, ldr.CacheStats().Entries)

	ldr.ClearCache()
	assert.Equal(t, 0, ldr.CacheStats().Entries)
	assert.False(t, ldr.IsCached("b"))
}

func TestPreload(t *testing.T) {
	t.Run("warms the cache", func(t *testing.T) {
		synctest.Test(t, func(t *testing.T) {
			origin := newStubOrigin(serveVersion("1.0.0", ""))
			ldr := loader.New(origin)

			ldr.Preload(t.Context(), "home")
			synctest.Wait()

			assert.True(t, ldr.IsCached("home"))
			assert.Equal(t, int64(1), origin.requests.Load())
		})
	})

	t.Run("swallows failures", func(t *testing.T) {
		synctest.Test(t, func(t *testing.T) {
			origin := newStubOrigin(func(pageID, etag string) (*repository.Page, error) {
				return nil, fmt.Errorf("%w: page %q", repository.ErrNotFound, pageID)
			})
			ldr := loader.New(origin)

			ldr.Preload(t.Context(), "missing")
			synctest.Wait()

			assert.False(t, ldr.IsCached("missing"))
		})
	})

	t.Run("completes although the trigger context dies", func(t *testing.T) {
		synctest.Test(t, func(t *testing.T) {
			origin := newStubOrigin(serveVersion("1.0.0", ""))
			release := origin.hold()
			ldr := loader.New(origin)

			ctx, cancel := context.WithCancel(t.Context())
			ldr.Preload(ctx, "home")
			synctest.Wait()
			cancel()
			release()
			synctest.Wait()

			assert.True(t, ldr.IsCached("home"))
		})
	})
}

func TestWarmUp(t *testing.T) {
	origin := newStubOrigin(func(pageID, etag string) (*repository.Page, error) {
		if pageID == "gone" {
			return nil, fmt.Errorf("%w: page %q", repository.ErrNotFound, pageID)
		}
		return testPage(pageID, "1.0.0", ""), nil
	})
	ldr := loader.New(origin)

	err := ldr.WarmUp(t.Context(), []string{"a", "gone", "b"}, 2)
	require.NoError(t, err, "page failures are swallowed")

	assert.True(t, ldr.IsCached("a"))
	assert.True(t, ldr.IsCached("b"))
	assert.False(t, ldr.IsCached("gone"))
	assert.Equal(t, 2, ldr.CacheStats().Entries)
	assert.Equal(t, int64(3), origin.requests.Load())
}

func TestLoad_StrictValidation(t *testing.T) {
	page := &repository.Page{
		Config: &descriptor.PageConfig{
			ID:      "home",
			Version: "1.0.0",
			Layout:  json.RawMessage(`{}`),
			Widgets: []descriptor.Widget{{ID: "w1", Type: "text"}},
		},
		// props must be an object per the schema, which the structural
		// validator does not inspect
		Body: []byte(`{"id":"home","version":"1.0.0","layout":{},"widgets":[{"id":"w1","type":"text","props":3}]}`),
	}
	origin := newStubOrigin(func(pageID, etag string) (*repository.Page, error) {
		return page, nil
	})

	t.Run("lenient loader accepts it", func(t *testing.T) {
		ldr := loader.New(origin)
		_, err := ldr.Load(t.Context(), "home")
		require.NoError(t, err)
	})

	t.Run("strict loader rejects it", func(t *testing.T) {
		ldr := loader.New(origin, loader.WithStrictValidation())
		_, err := ldr.Load(t.Context(), "home")
		require.ErrorIs(t, err, descriptor.ErrInvalidConfig)
		assert.False(t, ldr.IsCached("home"))
	})
}
