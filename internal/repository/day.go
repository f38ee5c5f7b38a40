package repository

import (
	"context"

	"github.com/jaekwang-park/habit-api/internal/model"
)

// DayRepository stores calendar days. Days are created on demand and never
// updated.
type DayRepository interface {
	FindByID(ctx context.Context, dayID string) (model.Day, error)
	FindByDate(ctx context.Context, date model.Date) (model.Day, error)
	// FindOrCreate returns the day for date, inserting it if missing. A
	// concurrent insert of the same date is resolved by re-reading the row.
	FindOrCreate(ctx context.Context, date model.Date) (model.Day, error)
	// CreateRange inserts every missing day in [from, to] and reports how
	// many were created.
	CreateRange(ctx context.Context, from, to model.Date) (int, error)
	// ListUpTo returns all days on or before date, oldest first.
	ListUpTo(ctx context.Context, date model.Date) ([]model.Day, error)
}
