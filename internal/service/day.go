package service

import (
	"context"
	"fmt"

	"github.com/jaekwang-park/habit-api/internal/model"
	"github.com/jaekwang-park/habit-api/internal/repository"
)

// MaxSeedDays caps a single SeedDays call.
const MaxSeedDays = 3660

type DayService struct {
	days repository.DayRepository
}

func NewDayService(days repository.DayRepository) *DayService {
	return &DayService{days: days}
}

// SeedDays creates every missing Day in [from, to] and returns how many were
// created. Existing days are left as they are.
func (s *DayService) SeedDays(ctx context.Context, from, to model.Date) (int, error) {
	if from.IsZero() || to.IsZero() {
		return 0, fmt.Errorf("%w: from and to dates are required", ErrInvalidInput)
	}
	if to.Before(from) {
		return 0, fmt.Errorf("%w: to %s is before from %s", ErrInvalidInput, to, from)
	}
	if n := from.DaysUntil(to) + 1; n > MaxSeedDays {
		return 0, fmt.Errorf("%w: range of %d days exceeds %d", ErrInvalidInput, n, MaxSeedDays)
	}

	created, err := s.days.CreateRange(ctx, from, to)
	if err != nil {
		return 0, fmt.Errorf("failed to seed days: %w", err)
	}
	return created, nil
}
