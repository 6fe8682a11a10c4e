// Package loader resolves page configurations through a cache backed by an
// origin repository.
//
// A Load serves fresh entries straight from the store, revalidates stale
// ones with a conditional fetch, and collapses concurrent loads of the same
// page into a single origin request. Expired entries can be served
// immediately while a background fetch brings them up to date
// (stale-while-revalidate). The store is mutated on successful fetch
// outcomes only; every failure leaves it untouched, so stale entries remain
// servable after an origin outage.
package loader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"openportal.dev/openportal/cache"
	"openportal.dev/openportal/descriptor"
	"openportal.dev/openportal/metrics"
	"openportal.dev/openportal/repository"
)

var logger = slog.With(slog.String("realm", "loader"))

// ErrCancelled is returned when a caller abandons a load before the shared
// fetch settles. The fetch itself keeps running for any remaining callers.
var ErrCancelled = errors.New("load cancelled")

// DefaultTTL is the freshness lifetime applied when neither the loader nor
// the individual load overrides it.
const DefaultTTL = time.Hour

// Loader is the single writer of the cache store. All reads and writes of
// cached page configurations go through it.
type Loader struct {
	repo       repository.PageRepository
	store      cache.Store
	defaultTTL time.Duration
	strict     bool

	refreshHook func(pageID string, err error)

	flights singleflight.Group

	hits          atomic.Uint64
	misses        atomic.Uint64
	shares        atomic.Uint64
	revalidations atomic.Uint64
}

// New creates a loader fetching from repo. Without options it caches in
// memory without bound and applies DefaultTTL.
func New(repo repository.PageRepository, opts ...LoaderOption) *Loader {
	l := &Loader{
		repo:       repo,
		defaultTTL: DefaultTTL,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.store == nil {
		l.store = cache.NewMemory()
	}
	return l
}

// Load resolves the current configuration for a page.
//
// Fresh cache entries are returned without touching the origin. Stale
// entries trigger a conditional refresh, blocking the caller unless
// stale-while-revalidate is requested. Concurrent loads of the same page
// share one origin fetch; cancelling ctx releases only this caller
// (ErrCancelled) while the shared fetch continues for the others.
//
// Failures are discriminable with errors.Is against repository.ErrNotFound,
// repository.ErrForbidden, repository.ErrNetwork, descriptor.ErrInvalidConfig
// and ErrCancelled.
func (l *Loader) Load(ctx context.Context, pageID string, opts ...LoadOption) (*descriptor.PageConfig, error) {
	options := &LoadOptions{TTL: l.defaultTTL}
	for _, opt := range opts {
		opt(options)
	}

	if options.SkipCache {
		entry, err := l.join(ctx, pageID, options)
		if err != nil {
			return nil, err
		}
		return entry.Config.DeepCopy(), nil
	}

	if entry, ok := l.store.Get(pageID); ok {
		if entry.Fresh(time.Now()) {
			l.hits.Add(1)
			CacheHitCounterTotal.WithLabelValues(pageID).Inc()
			return entry.Config.DeepCopy(), nil
		}
		if options.StaleWhileRevalidate {
			l.hits.Add(1)
			CacheHitCounterTotal.WithLabelValues(pageID).Inc()
			l.revalidate(ctx, pageID, options)
			return entry.Config.DeepCopy(), nil
		}
	}

	l.misses.Add(1)
	CacheMissCounterTotal.WithLabelValues(pageID).Inc()

	entry, err := l.join(ctx, pageID, options)
	if err != nil {
		return nil, err
	}
	l.store.Set(entry)
	return entry.Config.DeepCopy(), nil
}

// join waits on the single fetch in flight for the page, starting one if
// none is running. The fetch runs detached from any caller context so that
// one caller cancelling never disturbs the others; the flight is removed on
// settlement, success or failure alike.
//
// Store writes deliberately stay on the caller side of the join: a
// skip-cache caller can share an outcome without persisting it.
func (l *Loader) join(ctx context.Context, pageID string, options *LoadOptions) (*cache.Entry, error) {
	ch := l.flights.DoChan(pageID, func() (any, error) {
		return l.fetch(context.WithoutCancel(ctx), pageID, options)
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: page %q: %w", ErrCancelled, pageID, context.Cause(ctx))
	case res := <-ch:
		if res.Shared {
			l.shares.Add(1)
			CacheShareCounterTotal.WithLabelValues(pageID).Inc()
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*cache.Entry), nil
	}
}

// fetch performs one origin round trip and turns its outcome into a cache
// entry candidate. It never writes the store.
func (l *Loader) fetch(ctx context.Context, pageID string, options *LoadOptions) (_ *cache.Entry, retErr error) {
	InProgressGauge.Inc()
	defer InProgressGauge.Dec()
	start := time.Now()
	defer func() {
		metrics.SetDurationObserver(FetchDurationHistogram.WithLabelValues(pageID), start)
	}()
	done := logOperation(ctx, "fetch page configuration", slog.String("page", pageID))
	defer func() {
		done(retErr)
	}()

	ttl := options.TTL
	if ttl <= 0 {
		ttl = l.defaultTTL
	}

	var prior *cache.Entry
	var getOpts []repository.GetOption
	if !options.SkipCache {
		if entry, ok := l.store.Get(pageID); ok {
			// another caller may have refreshed the entry while this
			// flight was being set up
			if entry.Fresh(time.Now()) {
				return entry, nil
			}
			prior = entry
			if entry.ETag != "" {
				getOpts = append(getOpts, repository.WithETag(entry.ETag))
			}
		}
	}

	page, err := l.repo.GetPage(ctx, pageID, getOpts...)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if page.NotModified {
		if prior == nil {
			return nil, fmt.Errorf("%w: origin answered not-modified for page %q but no prior entry exists", repository.ErrNetwork, pageID)
		}
		return prior.Refreshed(now, ttl), nil
	}

	if err := descriptor.Validate(page.Config); err != nil {
		return nil, err
	}
	if l.strict {
		if err := descriptor.ValidateSchema(page.Body); err != nil {
			return nil, err
		}
	}

	dgst, err := descriptor.Digest(page.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", descriptor.ErrInvalidConfig, err)
	}

	return &cache.Entry{
		PageID:    pageID,
		Config:    page.Config,
		Body:      page.Body,
		ETag:      page.ETag,
		Digest:    dgst,
		FetchedAt: now,
		ExpiresAt: now.Add(ttl),
	}, nil
}

// revalidate refreshes a stale entry in the background. The caller has
// already been served; the refresh runs detached from its context and obeys
// the one-fetch-per-page rule like any other load.
func (l *Loader) revalidate(ctx context.Context, pageID string, options *LoadOptions) {
	l.revalidations.Add(1)
	RevalidationCounterTotal.WithLabelValues(pageID).Inc()

	ctx = context.WithoutCancel(ctx)
	go func() {
		entry, err := l.join(ctx, pageID, options)
		if err == nil {
			l.store.Set(entry)
		} else {
			logger.Log(ctx, slog.LevelDebug, "background revalidation failed",
				slog.String("page", pageID), slog.String("error", err.Error()))
		}
		if l.refreshHook != nil {
			l.refreshHook(pageID, err)
		}
	}()
}

// ClearCache evicts the given pages, or every entry when called without
// arguments.
func (l *Loader) ClearCache(pageIDs ...string) {
	if len(pageIDs) == 0 {
		l.store.Clear()
		return
	}
	for _, pageID := range pageIDs {
		l.store.Delete(pageID)
	}
}

// IsCached reports whether a fresh entry exists for the page. It touches
// neither the origin nor the store's eviction order.
func (l *Loader) IsCached(pageID string) bool {
	entry, ok := l.store.Peek(pageID)
	return ok && entry.Fresh(time.Now())
}

// Stats is a point-in-time snapshot of loader activity.
type Stats struct {
	// Entries is the number of entries currently held, fresh or stale.
	Entries int `json:"entries"`
	// Hits counts loads served from the store without waiting on the origin.
	Hits uint64 `json:"hits"`
	// Misses counts loads that waited on an origin fetch.
	Misses uint64 `json:"misses"`
	// Shares counts loads that shared one origin fetch with concurrent
	// loads of the same page.
	Shares uint64 `json:"shares"`
	// Revalidations counts background refreshes triggered by stale serves.
	Revalidations uint64 `json:"revalidations"`
}

// CacheStats returns current cache and load counters. Skip-cache loads
// bypass the store and appear in none of the counters.
func (l *Loader) CacheStats() Stats {
	return Stats{
		Entries:       l.store.Len(),
		Hits:          l.hits.Load(),
		Misses:        l.misses.Load(),
		Shares:        l.shares.Load(),
		Revalidations: l.revalidations.Load(),
	}
}

// logOperation is a helper function to log operations with timing and error handling.
func logOperation(ctx context.Context, operation string, fields ...slog.Attr) func(error) {
	start := time.Now()
	attrs := make([]any, 0, len(fields)+1)
	attrs = append(attrs, slog.String("operation", operation))
	for _, field := range fields {
		attrs = append(attrs, field)
	}
	logger := logger.With(attrs...)
	logger.Log(ctx, slog.LevelDebug, "starting operation")
	return func(err error) {
		if err != nil {
			logger.Log(ctx, slog.LevelDebug, "operation failed", slog.Duration("duration", time.Since(start)), slog.String("error", err.Error()))
			return
		}
		logger.Log(ctx, slog.LevelDebug, "operation completed", slog.Duration("duration", time.Since(start)))
	}
}
