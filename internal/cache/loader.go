package cache

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"
)

// loader runs cache-aside reads. Concurrent misses on the same key share one
// store query. Cache failures never fail the read.
type loader struct {
	cache  *Cache
	group  singleflight.Group
	logger *slog.Logger
}

func newLoader(c *Cache, logger *slog.Logger) *loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &loader{cache: c, logger: logger}
}

func readThrough[T, S any](ctx context.Context, l *loader, entity, key string, ttl time.Duration, cd codec[T, S], fetch func(context.Context) (T, error)) (T, error) {
	var snap S
	hit, err := l.cache.Get(ctx, key, &snap)
	switch {
	case err != nil:
		cacheRequests.WithLabelValues(entity, "error").Inc()
		l.logger.Warn("cache read failed, falling back to store", "key", key, "error", err)
	case hit:
		if v, err := cd.decode(snap); err == nil {
			cacheRequests.WithLabelValues(entity, "hit").Inc()
			l.logger.Debug("cache hit", "key", key)
			return v, nil
		}
		cacheRequests.WithLabelValues(entity, "miss").Inc()
		l.logger.Warn("discarding undecodable cache entry", "key", key)
	default:
		cacheRequests.WithLabelValues(entity, "miss").Inc()
		l.logger.Debug("cache miss", "key", key)
	}

	shared, err, _ := l.group.Do(key, func() (any, error) {
		return fetch(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	v := shared.(T)

	if !cd.empty(v) {
		if err := l.cache.SetWithTTL(ctx, key, cd.encode(v), ttl); err != nil {
			l.logger.Warn("failed to populate cache", "key", key, "error", err)
		}
	}
	return v, nil
}

// drop deletes exact keys and patterns, continuing past failures, and
// returns the first error.
func (l *loader) drop(ctx context.Context, keys []string, patterns []string) error {
	var firstErr error
	if err := l.cache.Delete(ctx, keys...); err != nil {
		firstErr = err
	}
	for _, p := range patterns {
		if _, err := l.cache.DeletePattern(ctx, p); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
