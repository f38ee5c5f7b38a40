package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jaekwang-park/habit-api/internal/clock"
	"github.com/jaekwang-park/habit-api/internal/model"
	"github.com/jaekwang-park/habit-api/internal/repository"
	"github.com/jaekwang-park/habit-api/internal/stats"
)

// DefaultMaxStatsRange bounds WeekdayStats when no limit is configured.
const DefaultMaxStatsRange = 1100

// UserLookup confirms a habit owner exists. Accounts are managed elsewhere.
type UserLookup interface {
	FindByID(ctx context.Context, userID string) (model.User, error)
}

type CreateHabitInput struct {
	Title    string `validate:"required,notblank,max=255"`
	WeekDays []int  `validate:"required,min=1,max=7,unique,dive,min=0,max=6"`
}

// UpdateHabitInput leaves nil fields unchanged. A non-nil WeekDays replaces
// the whole set.
type UpdateHabitInput struct {
	Title    *string `validate:"omitnil,notblank,max=255"`
	WeekDays []int   `validate:"omitnil,min=1,max=7,unique,dive,min=0,max=6"`
}

// HabitDeps wires HabitService. Habits, Days and Stats may be the cached
// decorators; Tx hands out transaction-bound repositories. Days is optional.
type HabitDeps struct {
	Habits        repository.HabitRepository
	Days          repository.DayRepository
	Users         UserLookup
	Tx            repository.TxManager
	Stats         stats.Provider
	Clock         clock.Clock
	Logger        *slog.Logger
	MaxStatsRange int
}

type HabitService struct {
	habits        repository.HabitRepository
	days          repository.DayRepository
	users         UserLookup
	tx            repository.TxManager
	stats         stats.Provider
	clock         clock.Clock
	logger        *slog.Logger
	maxStatsRange int
}

func NewHabitService(deps HabitDeps) *HabitService {
	s := &HabitService{
		habits:        deps.Habits,
		days:          deps.Days,
		users:         deps.Users,
		tx:            deps.Tx,
		stats:         deps.Stats,
		clock:         deps.Clock,
		logger:        deps.Logger,
		maxStatsRange: deps.MaxStatsRange,
	}
	if s.clock == nil {
		s.clock = clock.NewSystem(time.UTC)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.maxStatsRange <= 0 {
		s.maxStatsRange = DefaultMaxStatsRange
	}
	return s
}

// now is truncated to what the store keeps so returned habits compare equal
// to re-read ones.
func (s *HabitService) now() time.Time {
	return s.clock.Now().UTC().Truncate(time.Microsecond)
}

func (s *HabitService) Create(ctx context.Context, userID string, input CreateHabitInput) (model.Habit, error) {
	input.Title = strings.TrimSpace(input.Title)
	if err := validateInput(input); err != nil {
		return model.Habit{}, err
	}
	weekDays, err := model.NewWeekdaySet(input.WeekDays)
	if err != nil {
		return model.Habit{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if _, err := s.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Habit{}, fmt.Errorf("%w: user %s", ErrNotFound, userID)
		}
		return model.Habit{}, fmt.Errorf("failed to get user: %w", err)
	}
	if err := s.ensureTitleFree(ctx, userID, input.Title, ""); err != nil {
		return model.Habit{}, err
	}

	now := s.now()
	habit := model.Habit{
		UserID:    userID,
		Title:     input.Title,
		WeekDays:  weekDays,
		CreatedAt: now,
		UpdatedAt: now,
	}

	var created model.Habit
	err = s.tx.WithTx(ctx, func(ctx context.Context, r repository.Repos) error {
		var err error
		created, err = r.Habits.Create(ctx, habit)
		return err
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return model.Habit{}, fmt.Errorf("%w: habit %q already exists", ErrConflict, input.Title)
		}
		return model.Habit{}, fmt.Errorf("failed to create habit: %w", err)
	}
	return created, nil
}

func (s *HabitService) Get(ctx context.Context, userID, habitID string) (model.Habit, error) {
	habit, err := s.habits.FindByID(ctx, userID, habitID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Habit{}, ErrNotFound
		}
		return model.Habit{}, fmt.Errorf("failed to get habit: %w", err)
	}
	return habit, nil
}

func (s *HabitService) List(ctx context.Context, userID string) ([]model.Habit, error) {
	habits, err := s.habits.FindByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list habits: %w", err)
	}
	if habits == nil {
		habits = []model.Habit{}
	}
	return habits, nil
}

func (s *HabitService) Update(ctx context.Context, userID, habitID string, input UpdateHabitInput) (model.Habit, error) {
	if input.Title != nil {
		trimmed := strings.TrimSpace(*input.Title)
		input.Title = &trimmed
	}
	if err := validateInput(input); err != nil {
		return model.Habit{}, err
	}

	existing, err := s.habits.FindByID(ctx, userID, habitID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Habit{}, ErrNotFound
		}
		return model.Habit{}, fmt.Errorf("failed to get habit for update: %w", err)
	}

	if input.Title != nil && *input.Title != existing.Title {
		if err := s.ensureTitleFree(ctx, userID, *input.Title, habitID); err != nil {
			return model.Habit{}, err
		}
		existing.Title = *input.Title
	}
	if input.WeekDays != nil {
		weekDays, err := model.NewWeekdaySet(input.WeekDays)
		if err != nil {
			return model.Habit{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		existing.WeekDays = weekDays
	}
	existing.UpdatedAt = s.now()

	var updated model.Habit
	err = s.tx.WithTx(ctx, func(ctx context.Context, r repository.Repos) error {
		var err error
		updated, err = r.Habits.Update(ctx, existing)
		return err
	})
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return model.Habit{}, ErrNotFound
		case errors.Is(err, repository.ErrDuplicate):
			return model.Habit{}, fmt.Errorf("%w: habit %q already exists", ErrConflict, existing.Title)
		}
		return model.Habit{}, fmt.Errorf("failed to update habit: %w", err)
	}
	return updated, nil
}

func (s *HabitService) Delete(ctx context.Context, userID, habitID string) error {
	if _, err := s.Get(ctx, userID, habitID); err != nil {
		return err
	}

	err := s.tx.WithTx(ctx, func(ctx context.Context, r repository.Repos) error {
		return r.Habits.Delete(ctx, userID, habitID)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete habit: %w", err)
	}
	return nil
}

// Toggle flips the habit's completion on date and reports whether it is now
// completed. Any calendar date is accepted. The Day row is created on first
// use.
func (s *HabitService) Toggle(ctx context.Context, userID, habitID string, date model.Date) (bool, error) {
	if date.IsZero() {
		return false, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	if _, err := s.Get(ctx, userID, habitID); err != nil {
		return false, err
	}

	known, err := s.knownDay(ctx, date)
	if err != nil {
		return false, err
	}

	var completed bool
	err = s.tx.WithTx(ctx, func(ctx context.Context, r repository.Repos) error {
		day := known
		if day.ID == "" {
			created, err := r.Days.FindOrCreate(ctx, date)
			if err != nil {
				return err
			}
			day = created
		}
		toggled, err := r.Ledger.Toggle(ctx, day.ID, habitID, userID)
		completed = toggled
		return err
	})
	if err != nil {
		return false, fmt.Errorf("failed to toggle habit: %w", err)
	}

	if inv, ok := s.habits.(repository.UserCacheInvalidator); ok {
		if err := inv.InvalidateUser(ctx, userID); err != nil {
			s.logger.Error("failed to invalidate cache after toggle",
				"user_id", userID, "habit_id", habitID, "date", date.String(), "error", err)
		}
	}
	return completed, nil
}

// DayView lists the habits due on date and which of them are completed.
func (s *HabitService) DayView(ctx context.Context, userID string, date model.Date) (model.DayView, error) {
	if date.IsZero() {
		return model.DayView{}, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	due, err := s.habits.FindDueHabits(ctx, date, userID)
	if err != nil {
		return model.DayView{}, fmt.Errorf("failed to find due habits: %w", err)
	}
	done, err := s.habits.FindCompletedHabits(ctx, date, userID)
	if err != nil {
		return model.DayView{}, fmt.Errorf("failed to find completed habits: %w", err)
	}
	if due == nil {
		due = []model.Habit{}
	}
	return model.DayView{
		Date:              date,
		PossibleHabits:    due,
		CompletedHabitIDs: model.HabitIDs(done),
	}, nil
}

// WeekdayStats returns all seven weekdays, Sunday first, for [start, end].
// Weekdays that never occur in the range report zero totals.
func (s *HabitService) WeekdayStats(ctx context.Context, userID string, start, end model.Date) ([]model.WeekdayStat, error) {
	if start.IsZero() || end.IsZero() {
		return nil, fmt.Errorf("%w: start and end dates are required", ErrInvalidInput)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end %s is before start %s", ErrInvalidInput, end, start)
	}
	if days := start.DaysUntil(end) + 1; days > s.maxStatsRange {
		return nil, fmt.Errorf("%w: range of %d days exceeds %d", ErrInvalidInput, days, s.maxStatsRange)
	}

	partial, err := s.stats.WeekdayStats(ctx, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to compute weekday stats: %w", err)
	}
	return stats.FillWeek(partial), nil
}

func (s *HabitService) Streaks(ctx context.Context, userID string) (model.Streaks, error) {
	streaks, err := s.stats.Streaks(ctx, userID)
	if err != nil {
		return model.Streaks{}, fmt.Errorf("failed to compute streaks: %w", err)
	}
	return streaks, nil
}

func (s *HabitService) Summary(ctx context.Context, userID string) ([]model.DaySummary, error) {
	summary, err := s.stats.Summary(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute summary: %w", err)
	}
	if summary == nil {
		summary = []model.DaySummary{}
	}
	return summary, nil
}

// knownDay returns the stored Day for date, or a zero Day when it has not
// been created yet. Days are never updated or deleted, so a Day read outside
// the transaction stays valid inside it.
func (s *HabitService) knownDay(ctx context.Context, date model.Date) (model.Day, error) {
	if s.days == nil {
		return model.Day{}, nil
	}
	day, err := s.days.FindByDate(ctx, date)
	switch {
	case err == nil:
		return day, nil
	case errors.Is(err, sql.ErrNoRows):
		return model.Day{}, nil
	default:
		return model.Day{}, fmt.Errorf("failed to find day %s: %w", date, err)
	}
}

// ensureTitleFree fails with ErrConflict when another habit of userID already
// uses title. exceptID is the habit being renamed, if any.
func (s *HabitService) ensureTitleFree(ctx context.Context, userID, title, exceptID string) error {
	existing, err := s.habits.FindByTitle(ctx, userID, title)
	switch {
	case err == nil:
		if existing.ID == exceptID {
			return nil
		}
		return fmt.Errorf("%w: habit %q already exists", ErrConflict, title)
	case errors.Is(err, sql.ErrNoRows):
		return nil
	default:
		return fmt.Errorf("failed to check habit title: %w", err)
	}
}
