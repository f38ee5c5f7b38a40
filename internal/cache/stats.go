package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/jaekwang-park/habit-api/internal/clock"
	"github.com/jaekwang-park/habit-api/internal/model"
	"github.com/jaekwang-park/habit-api/internal/stats"
)

// StatsProvider caches aggregates. Keys share the habit:* per-user
// namespace, so HabitRepository.InvalidateUser clears them too. Streak and
// summary keys carry today's date since both move with the calendar.
type StatsProvider struct {
	next   stats.Provider
	loader *loader
	ttl    time.Duration
	clock  clock.Clock
}

func NewStatsProvider(next stats.Provider, c *Cache, ttl time.Duration, clk clock.Clock, logger *slog.Logger) *StatsProvider {
	return &StatsProvider{next: next, loader: newLoader(c, logger), ttl: ttl, clock: clk}
}

func (p *StatsProvider) WeekdayStats(ctx context.Context, userID string, start, end model.Date) (map[int]model.WeekdayStat, error) {
	return readThrough(ctx, p.loader, entityStats, weekdayStatsKey(userID, start, end), p.ttl, weekdayStatsCodec,
		func(ctx context.Context) (map[int]model.WeekdayStat, error) {
			return p.next.WeekdayStats(ctx, userID, start, end)
		})
}

func (p *StatsProvider) Streaks(ctx context.Context, userID string) (model.Streaks, error) {
	return readThrough(ctx, p.loader, entityStats, streaksKey(userID, clock.Today(p.clock)), p.ttl, streaksCodec,
		func(ctx context.Context) (model.Streaks, error) {
			return p.next.Streaks(ctx, userID)
		})
}

func (p *StatsProvider) Summary(ctx context.Context, userID string) ([]model.DaySummary, error) {
	return readThrough(ctx, p.loader, entityStats, summaryKey(userID, clock.Today(p.clock)), p.ttl, summaryCodec,
		func(ctx context.Context) ([]model.DaySummary, error) {
			return p.next.Summary(ctx, userID)
		})
}

var _ stats.Provider = (*StatsProvider)(nil)
