package repository

import (
	"context"

	"github.com/jaekwang-park/habit-api/internal/model"
)

// HabitRepository stores habits together with their weekday sets. Lookups
// are always scoped to the owning user; absence is reported as a wrapped
// sql.ErrNoRows.
type HabitRepository interface {
	// Create and Update write several rows; call them inside TxManager.WithTx.
	Create(ctx context.Context, habit model.Habit) (model.Habit, error)
	Update(ctx context.Context, habit model.Habit) (model.Habit, error)
	Delete(ctx context.Context, userID, habitID string) error
	FindByID(ctx context.Context, userID, habitID string) (model.Habit, error)
	FindByTitle(ctx context.Context, userID, title string) (model.Habit, error)
	FindByUser(ctx context.Context, userID string) ([]model.Habit, error)
	// FindDueHabits returns the user's habits scheduled on date's weekday
	// that already existed on date. Never nil.
	FindDueHabits(ctx context.Context, date model.Date, userID string) ([]model.Habit, error)
	// FindCompletedHabits returns the user's habits with a completion record
	// on date. Never nil; a date without a Day row yields an empty slice.
	FindCompletedHabits(ctx context.Context, date model.Date, userID string) ([]model.Habit, error)
}

// UserCacheInvalidator is implemented by caching decorators that can drop a
// user's derived entries on demand. Writers that bypass the decorator (the
// completion toggle) type-assert for it after committing.
type UserCacheInvalidator interface {
	InvalidateUser(ctx context.Context, userID string) error
}
