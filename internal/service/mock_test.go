package service_test

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/jaekwang-park/habit-api/internal/model"
	"github.com/jaekwang-park/habit-api/internal/repository"
)

// mockHabitRepo implements repository.HabitRepository for testing
type mockHabitRepo struct {
	createFn        func(ctx context.Context, habit model.Habit) (model.Habit, error)
	updateFn        func(ctx context.Context, habit model.Habit) (model.Habit, error)
	deleteFn        func(ctx context.Context, userID, habitID string) error
	findByIDFn      func(ctx context.Context, userID, habitID string) (model.Habit, error)
	findByTitleFn   func(ctx context.Context, userID, title string) (model.Habit, error)
	findByUserFn    func(ctx context.Context, userID string) ([]model.Habit, error)
	findDueFn       func(ctx context.Context, date model.Date, userID string) ([]model.Habit, error)
	findCompletedFn func(ctx context.Context, date model.Date, userID string) ([]model.Habit, error)
}

func (m *mockHabitRepo) Create(ctx context.Context, habit model.Habit) (model.Habit, error) {
	return m.createFn(ctx, habit)
}
func (m *mockHabitRepo) Update(ctx context.Context, habit model.Habit) (model.Habit, error) {
	return m.updateFn(ctx, habit)
}
func (m *mockHabitRepo) Delete(ctx context.Context, userID, habitID string) error {
	return m.deleteFn(ctx, userID, habitID)
}
func (m *mockHabitRepo) FindByID(ctx context.Context, userID, habitID string) (model.Habit, error) {
	return m.findByIDFn(ctx, userID, habitID)
}
func (m *mockHabitRepo) FindByTitle(ctx context.Context, userID, title string) (model.Habit, error) {
	return m.findByTitleFn(ctx, userID, title)
}
func (m *mockHabitRepo) FindByUser(ctx context.Context, userID string) ([]model.Habit, error) {
	return m.findByUserFn(ctx, userID)
}
func (m *mockHabitRepo) FindDueHabits(ctx context.Context, date model.Date, userID string) ([]model.Habit, error) {
	return m.findDueFn(ctx, date, userID)
}
func (m *mockHabitRepo) FindCompletedHabits(ctx context.Context, date model.Date, userID string) ([]model.Habit, error) {
	return m.findCompletedFn(ctx, date, userID)
}

// invalidatingHabitRepo adds the optional cache invalidation capability.
type invalidatingHabitRepo struct {
	*mockHabitRepo
	invalidateFn func(ctx context.Context, userID string) error
}

func (m *invalidatingHabitRepo) InvalidateUser(ctx context.Context, userID string) error {
	return m.invalidateFn(ctx, userID)
}

type mockDayRepo struct {
	findByDateFn   func(ctx context.Context, date model.Date) (model.Day, error)
	findOrCreateFn func(ctx context.Context, date model.Date) (model.Day, error)
	createRangeFn  func(ctx context.Context, from, to model.Date) (int, error)
}

func (m *mockDayRepo) FindByID(ctx context.Context, dayID string) (model.Day, error) {
	return model.Day{}, nil
}
func (m *mockDayRepo) FindByDate(ctx context.Context, date model.Date) (model.Day, error) {
	if m.findByDateFn == nil {
		return model.Day{}, sql.ErrNoRows
	}
	return m.findByDateFn(ctx, date)
}
func (m *mockDayRepo) FindOrCreate(ctx context.Context, date model.Date) (model.Day, error) {
	return m.findOrCreateFn(ctx, date)
}
func (m *mockDayRepo) CreateRange(ctx context.Context, from, to model.Date) (int, error) {
	return m.createRangeFn(ctx, from, to)
}
func (m *mockDayRepo) ListUpTo(ctx context.Context, date model.Date) ([]model.Day, error) {
	return nil, nil
}

type mockLedger struct {
	toggleFn func(ctx context.Context, dayID, habitID, userID string) (bool, error)
}

func (m *mockLedger) Toggle(ctx context.Context, dayID, habitID, userID string) (bool, error) {
	return m.toggleFn(ctx, dayID, habitID, userID)
}
func (m *mockLedger) ListByUser(ctx context.Context, userID string, from, to model.Date) ([]model.CompletionRecord, error) {
	return nil, nil
}

type mockUsers struct {
	findByIDFn func(ctx context.Context, userID string) (model.User, error)
}

func (m *mockUsers) FindByID(ctx context.Context, userID string) (model.User, error) {
	return m.findByIDFn(ctx, userID)
}

// mockTx runs the callback against repos. commitErr is returned after a
// successful callback, as a failed COMMIT would be.
type mockTx struct {
	repos     repository.Repos
	commitErr error
	calls     int
}

func (m *mockTx) WithTx(ctx context.Context, fn func(ctx context.Context, r repository.Repos) error) error {
	m.calls++
	if err := fn(ctx, m.repos); err != nil {
		return err
	}
	return m.commitErr
}

type mockStats struct {
	weekdayFn func(ctx context.Context, userID string, start, end model.Date) (map[int]model.WeekdayStat, error)
	streaksFn func(ctx context.Context, userID string) (model.Streaks, error)
	summaryFn func(ctx context.Context, userID string) ([]model.DaySummary, error)
}

func (m *mockStats) WeekdayStats(ctx context.Context, userID string, start, end model.Date) (map[int]model.WeekdayStat, error) {
	return m.weekdayFn(ctx, userID, start, end)
}
func (m *mockStats) Streaks(ctx context.Context, userID string) (model.Streaks, error) {
	return m.streaksFn(ctx, userID)
}
func (m *mockStats) Summary(ctx context.Context, userID string) ([]model.DaySummary, error) {
	return m.summaryFn(ctx, userID)
}

// 2025-03-10 is a Monday.
var (
	now   = time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)
	today = model.NewDate(2025, 3, 10)
)

func sampleHabit() model.Habit {
	return model.Habit{
		ID:        "habit-1",
		UserID:    "user-1",
		Title:     "Read",
		WeekDays:  model.WeekdaySet{1, 3, 5},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func containsStr(s, substr string) bool {
	return strings.Contains(s, substr)
}
