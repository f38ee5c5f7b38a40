// Package stats computes weekday completion ratios, streaks and per-day
// summaries from a user's habits and completion records.
package stats

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/jaekwang-park/habit-api/internal/clock"
	"github.com/jaekwang-park/habit-api/internal/model"
	"github.com/jaekwang-park/habit-api/internal/schedule"
)

type HabitSource interface {
	FindByUser(ctx context.Context, userID string) ([]model.Habit, error)
}

type CompletionSource interface {
	ListByUser(ctx context.Context, userID string, from, to model.Date) ([]model.CompletionRecord, error)
}

type DaySource interface {
	ListUpTo(ctx context.Context, date model.Date) ([]model.Day, error)
}

// Provider is the read side used by the use-case layer; the cache package
// decorates it.
type Provider interface {
	// WeekdayStats buckets [start, end] by weekday. Only weekdays that occur
	// in the range are present.
	WeekdayStats(ctx context.Context, userID string, start, end model.Date) (map[int]model.WeekdayStat, error)
	Streaks(ctx context.Context, userID string) (model.Streaks, error)
	Summary(ctx context.Context, userID string) ([]model.DaySummary, error)
}

type Aggregator struct {
	habits      HabitSource
	completions CompletionSource
	days        DaySource
	clock       clock.Clock
}

func NewAggregator(habits HabitSource, completions CompletionSource, days DaySource, clk clock.Clock) *Aggregator {
	return &Aggregator{habits: habits, completions: completions, days: days, clock: clk}
}

func (a *Aggregator) WeekdayStats(ctx context.Context, userID string, start, end model.Date) (map[int]model.WeekdayStat, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("invalid range %s..%s", start, end)
	}

	habits, err := a.habits.FindByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load habits: %w", err)
	}
	records, err := a.completions.ListByUser(ctx, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load completions: %w", err)
	}
	completed := schedule.CompletedByDate(records)
	loc := a.clock.Location()

	out := make(map[int]model.WeekdayStat, 7)
	for d := start; !d.After(end); d = d.AddDays(1) {
		done, total := schedule.Tally(habits, d, loc, completed[d])
		wd := int(d.Weekday())
		s := out[wd]
		s.Weekday = wd
		s.Completed += done
		s.Total += total
		out[wd] = s
	}
	for wd, s := range out {
		s.Percentage = Percentage(s.Completed, s.Total)
		out[wd] = s
	}
	return out, nil
}

func (a *Aggregator) Streaks(ctx context.Context, userID string) (model.Streaks, error) {
	habits, err := a.habits.FindByUser(ctx, userID)
	if err != nil {
		return model.Streaks{}, fmt.Errorf("failed to load habits: %w", err)
	}
	loc := a.clock.Location()
	start := schedule.EarliestStart(habits, loc)
	today := clock.Today(a.clock)
	if start.IsZero() || start.After(today) {
		return model.Streaks{}, nil
	}

	records, err := a.completions.ListByUser(ctx, userID, start, today)
	if err != nil {
		return model.Streaks{}, fmt.Errorf("failed to load completions: %w", err)
	}
	completed := schedule.CompletedByDate(records)

	days := make([]dayClass, 0, start.DaysUntil(today)+1)
	for d := start; !d.After(today); d = d.AddDays(1) {
		done, total := schedule.Tally(habits, d, loc, completed[d])
		days = append(days, classify(done, total))
	}
	return computeStreaks(days), nil
}

func (a *Aggregator) Summary(ctx context.Context, userID string) ([]model.DaySummary, error) {
	today := clock.Today(a.clock)
	days, err := a.days.ListUpTo(ctx, today)
	if err != nil {
		return nil, fmt.Errorf("failed to load days: %w", err)
	}
	summary := make([]model.DaySummary, 0, len(days))
	if len(days) == 0 {
		return summary, nil
	}

	habits, err := a.habits.FindByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load habits: %w", err)
	}
	records, err := a.completions.ListByUser(ctx, userID, days[0].Date, today)
	if err != nil {
		return nil, fmt.Errorf("failed to load completions: %w", err)
	}
	completed := schedule.CompletedByDate(records)
	loc := a.clock.Location()

	for _, day := range days {
		done, total := schedule.Tally(habits, day.Date, loc, completed[day.Date])
		summary = append(summary, model.DaySummary{
			DayID:     day.ID,
			Date:      day.Date,
			Completed: done,
			Amount:    total,
		})
	}
	return summary, nil
}

// Percentage is completed/total*100 rounded to two decimals, or nil when
// nothing was due.
func Percentage(completed, total int) *float64 {
	if total <= 0 {
		return nil
	}
	p := math.Round(float64(completed)/float64(total)*100*100) / 100
	return &p
}

// FillWeek returns all seven weekdays, Sunday first, taking values from
// partial where present.
func FillWeek(partial map[int]model.WeekdayStat) []model.WeekdayStat {
	week := make([]model.WeekdayStat, 7)
	for wd := int(time.Sunday); wd <= int(time.Saturday); wd++ {
		if s, ok := partial[wd]; ok {
			week[wd] = s
			continue
		}
		week[wd] = model.WeekdayStat{Weekday: wd}
	}
	return week
}

var _ Provider = (*Aggregator)(nil)
