package loader

import (
	"time"

	"openportal.dev/openportal/cache"
)

// LoaderOption configures a Loader at construction time.
type LoaderOption func(*Loader)

// WithStore sets the cache store backing the loader. Defaults to an
// unbounded in-memory store.
func WithStore(store cache.Store) LoaderOption {
	return func(l *Loader) {
		l.store = store
	}
}

// WithDefaultTTL sets the freshness lifetime applied to entries when a load
// does not override it. Defaults to DefaultTTL.
func WithDefaultTTL(ttl time.Duration) LoaderOption {
	return func(l *Loader) {
		l.defaultTTL = ttl
	}
}

// WithStrictValidation additionally validates fetched payloads against the
// page configuration JSON schema before they may enter the cache.
func WithStrictValidation() LoaderOption {
	return func(l *Loader) {
		l.strict = true
	}
}

// WithRefreshHook registers an observer invoked after a background
// revalidation settles, with the page id and the settlement error (nil on
// success). Loads triggering a revalidation return before the hook fires;
// callers interested in the refreshed value re-load or react to the hook.
func WithRefreshHook(hook func(pageID string, err error)) LoaderOption {
	return func(l *Loader) {
		l.refreshHook = hook
	}
}

// LoadOptions control a single Load call.
type LoadOptions struct {
	// TTL overrides the loader's default freshness lifetime for the entry
	// this call stores. Zero keeps the default. The override applies when
	// this call performs the fetch; a call joining an already running fetch
	// shares its outcome unchanged.
	TTL time.Duration

	// SkipCache bypasses the store in both directions. The call never serves
	// a cached entry and never persists what it fetched. It still joins an
	// already running fetch for the same page.
	SkipCache bool

	// StaleWhileRevalidate serves an expired entry immediately and refreshes
	// it in the background instead of blocking the caller.
	StaleWhileRevalidate bool
}

// LoadOption mutates LoadOptions.
type LoadOption func(*LoadOptions)

// WithTTL overrides the freshness lifetime for the entry stored by this
// load.
func WithTTL(ttl time.Duration) LoadOption {
	return func(o *LoadOptions) {
		o.TTL = ttl
	}
}

// WithSkipCache makes this load non-caching in both directions. Intended for
// development, where every call should reflect the origin.
func WithSkipCache() LoadOption {
	return func(o *LoadOptions) {
		o.SkipCache = true
	}
}

// WithStaleWhileRevalidate serves stale entries immediately while a
// background fetch brings them up to date.
func WithStaleWhileRevalidate() LoadOption {
	return func(o *LoadOptions) {
		o.StaleWhileRevalidate = true
	}
}
