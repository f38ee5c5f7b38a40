package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/jaekwang-park/habit-api/internal/model"
	"github.com/jaekwang-park/habit-api/internal/repository"
)

// HabitRepository caches habit reads and drops the owner's entries on every
// write.
type HabitRepository struct {
	next   repository.HabitRepository
	loader *loader
	ttl    time.Duration
}

func NewHabitRepository(next repository.HabitRepository, c *Cache, ttl time.Duration, logger *slog.Logger) *HabitRepository {
	return &HabitRepository{
		next:   next,
		loader: newLoader(c, logger),
		ttl:    ttl,
	}
}

func (r *HabitRepository) Create(ctx context.Context, habit model.Habit) (model.Habit, error) {
	created, err := r.next.Create(ctx, habit)
	if err != nil {
		return model.Habit{}, err
	}
	r.afterWrite(ctx, created.UserID, created.ID)
	return created, nil
}

func (r *HabitRepository) Update(ctx context.Context, habit model.Habit) (model.Habit, error) {
	updated, err := r.next.Update(ctx, habit)
	if err != nil {
		return model.Habit{}, err
	}
	r.afterWrite(ctx, habit.UserID, habit.ID)
	return updated, nil
}

func (r *HabitRepository) Delete(ctx context.Context, userID, habitID string) error {
	if err := r.next.Delete(ctx, userID, habitID); err != nil {
		return err
	}
	r.afterWrite(ctx, userID, habitID)
	return nil
}

func (r *HabitRepository) FindByID(ctx context.Context, userID, habitID string) (model.Habit, error) {
	return readThrough(ctx, r.loader, entityHabit, habitIDKey(userID, habitID), r.ttl, habitCodec,
		func(ctx context.Context) (model.Habit, error) {
			return r.next.FindByID(ctx, userID, habitID)
		})
}

func (r *HabitRepository) FindByTitle(ctx context.Context, userID, title string) (model.Habit, error) {
	return readThrough(ctx, r.loader, entityHabit, habitTitleKey(userID, title), r.ttl, habitCodec,
		func(ctx context.Context) (model.Habit, error) {
			return r.next.FindByTitle(ctx, userID, title)
		})
}

func (r *HabitRepository) FindByUser(ctx context.Context, userID string) ([]model.Habit, error) {
	return readThrough(ctx, r.loader, entityHabit, habitListKey(userID), r.ttl, habitsCodec,
		func(ctx context.Context) ([]model.Habit, error) {
			return r.next.FindByUser(ctx, userID)
		})
}

func (r *HabitRepository) FindDueHabits(ctx context.Context, date model.Date, userID string) ([]model.Habit, error) {
	return readThrough(ctx, r.loader, entityHabit, possibleKey(userID, date), r.ttl, habitsCodec,
		func(ctx context.Context) ([]model.Habit, error) {
			return r.next.FindDueHabits(ctx, date, userID)
		})
}

func (r *HabitRepository) FindCompletedHabits(ctx context.Context, date model.Date, userID string) ([]model.Habit, error) {
	return readThrough(ctx, r.loader, entityHabit, completedKey(userID, date), r.ttl, habitsCodec,
		func(ctx context.Context) ([]model.Habit, error) {
			return r.next.FindCompletedHabits(ctx, date, userID)
		})
}

// InvalidateUser drops the user's habit list and every derived per-date
// aggregate. Habit entities themselves are left alone.
func (r *HabitRepository) InvalidateUser(ctx context.Context, userID string) error {
	cacheInvalidations.WithLabelValues("user").Inc()
	return r.loader.drop(ctx, []string{habitListKey(userID)}, derivedPatterns(userID))
}

// InvalidateHabit drops one habit's identity entries along with everything
// InvalidateUser drops. Titles are dropped by pattern since the previous
// title is not known here.
func (r *HabitRepository) InvalidateHabit(ctx context.Context, userID, habitID string) error {
	cacheInvalidations.WithLabelValues("habit").Inc()
	patterns := append([]string{habitTitlePattern(userID)}, derivedPatterns(userID)...)
	return r.loader.drop(ctx, []string{habitIDKey(userID, habitID), habitListKey(userID)}, patterns)
}

// afterWrite runs once the store accepted a write. The write stands even if
// the cache cannot be cleared; stale entries expire with their TTL.
func (r *HabitRepository) afterWrite(ctx context.Context, userID, habitID string) {
	if err := r.InvalidateHabit(ctx, userID, habitID); err != nil {
		r.loader.logger.Error("failed to invalidate habit cache",
			"user_id", userID, "habit_id", habitID, "error", err)
	}
}

var (
	_ repository.HabitRepository      = (*HabitRepository)(nil)
	_ repository.UserCacheInvalidator = (*HabitRepository)(nil)
)
