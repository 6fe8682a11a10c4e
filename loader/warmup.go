package loader

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// DefaultWarmUpConcurrency bounds parallel warmup fetches when the caller
// does not pick a limit.
const DefaultWarmUpConcurrency = 4

// Preload warms the cache for a page ahead of navigation. It returns
// immediately; the load runs detached from ctx so that it completes even if
// the triggering request goes away. All failures are swallowed and logged
// at debug level, never surfaced.
func (l *Loader) Preload(ctx context.Context, pageID string, opts ...LoadOption) {
	ctx = context.WithoutCancel(ctx)
	go func() {
		if _, err := l.Load(ctx, pageID, opts...); err != nil {
			logger.Log(ctx, slog.LevelDebug, "preload failed",
				slog.String("page", pageID), slog.String("error", err.Error()))
		}
	}()
}

// WarmUp loads the given pages with bounded concurrency and waits for the
// sweep to finish. Page failures are swallowed like Preload; only
// cancellation of ctx aborts the sweep and is returned. A concurrency of 0
// or less picks DefaultWarmUpConcurrency.
func (l *Loader) WarmUp(ctx context.Context, pageIDs []string, concurrency int, opts ...LoadOption) error {
	if concurrency <= 0 {
		concurrency = DefaultWarmUpConcurrency
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(concurrency)
	for _, pageID := range pageIDs {
		eg.Go(func() error {
			_, err := l.Load(ctx, pageID, opts...)
			switch {
			case err == nil:
			case errors.Is(err, ErrCancelled):
				return err
			default:
				logger.Log(ctx, slog.LevelDebug, "warmup skipped page",
					slog.String("page", pageID), slog.String("error", err.Error()))
			}
			return nil
		})
	}
	return eg.Wait()
}
