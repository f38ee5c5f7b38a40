package cache

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/jaekwang-park/habit-api/internal/model"
	"github.com/jaekwang-park/habit-api/internal/repository"
)

// DayRepository caches day lookups. A day's date never changes once
// created, so entries are held for the reference TTL and never invalidated.
// Missing days are not cached. Creating a day drops every user's summary.
type DayRepository struct {
	next   repository.DayRepository
	loader *loader
	ttl    time.Duration
}

func NewDayRepository(next repository.DayRepository, c *Cache, ttl time.Duration, logger *slog.Logger) *DayRepository {
	return &DayRepository{next: next, loader: newLoader(c, logger), ttl: ttl}
}

func (r *DayRepository) FindByID(ctx context.Context, dayID string) (model.Day, error) {
	return readThrough(ctx, r.loader, entityDay, dayIDKey(dayID), r.ttl, dayCodec,
		func(ctx context.Context) (model.Day, error) {
			return r.next.FindByID(ctx, dayID)
		})
}

func (r *DayRepository) FindByDate(ctx context.Context, date model.Date) (model.Day, error) {
	return readThrough(ctx, r.loader, entityDay, dayDateKey(date), r.ttl, dayCodec,
		func(ctx context.Context) (model.Day, error) {
			return r.next.FindByDate(ctx, date)
		})
}

func (r *DayRepository) FindOrCreate(ctx context.Context, date model.Date) (model.Day, error) {
	day, err := r.FindByDate(ctx, date)
	if err == nil {
		return day, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return model.Day{}, err
	}

	day, err = r.next.FindOrCreate(ctx, date)
	if err != nil {
		return model.Day{}, err
	}
	r.afterCreate(ctx)
	if err := r.loader.cache.SetWithTTL(ctx, dayDateKey(date), dayCodec.encode(day), r.ttl); err != nil {
		r.loader.logger.Warn("failed to populate cache", "key", dayDateKey(date), "error", err)
	}
	return day, nil
}

func (r *DayRepository) CreateRange(ctx context.Context, from, to model.Date) (int, error) {
	created, err := r.next.CreateRange(ctx, from, to)
	if created > 0 {
		r.afterCreate(ctx)
	}
	return created, err
}

func (r *DayRepository) ListUpTo(ctx context.Context, date model.Date) ([]model.Day, error) {
	return r.next.ListUpTo(ctx, date)
}

// InvalidateSummaries drops every user's cached summary.
func (r *DayRepository) InvalidateSummaries(ctx context.Context) error {
	cacheInvalidations.WithLabelValues("summaries").Inc()
	return r.loader.drop(ctx, nil, []string{allSummariesPattern()})
}

func (r *DayRepository) afterCreate(ctx context.Context) {
	if err := r.InvalidateSummaries(ctx); err != nil {
		r.loader.logger.Error("failed to invalidate summaries after new day", "error", err)
	}
}

var _ repository.DayRepository = (*DayRepository)(nil)
