package cache

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jaekwang-park/habit-api/internal/model"
	"github.com/jaekwang-park/habit-api/internal/repository"
)

// TxManager wraps a repository.TxManager so writes made inside a transaction
// invalidate the cache only once the transaction has committed. Reads inside
// the transaction go straight to the store: they may observe uncommitted
// rows, which must never reach the cache.
type TxManager struct {
	next   repository.TxManager
	habits *HabitRepository
	days   *DayRepository
}

// NewTxManager wraps next. days may be nil when days are not cached.
func NewTxManager(next repository.TxManager, habits *HabitRepository, days *DayRepository) *TxManager {
	return &TxManager{next: next, habits: habits, days: days}
}

func (m *TxManager) WithTx(ctx context.Context, fn func(ctx context.Context, r repository.Repos) error) error {
	var (
		habits *recordingHabits
		days   *recordingDays
	)
	err := m.next.WithTx(ctx, func(ctx context.Context, r repository.Repos) error {
		habits = &recordingHabits{HabitRepository: r.Habits}
		days = &recordingDays{DayRepository: r.Days}
		r.Habits = habits
		r.Days = days
		return fn(ctx, r)
	})
	if err != nil || habits == nil {
		return err
	}

	for _, w := range habits.writes {
		m.habits.afterWrite(ctx, w.userID, w.habitID)
	}
	if days.created && m.days != nil {
		m.days.afterCreate(ctx)
	}
	return nil
}

type habitWrite struct {
	userID  string
	habitID string
}

// recordingHabits notes which habits a transaction wrote.
type recordingHabits struct {
	repository.HabitRepository
	writes []habitWrite
}

func (r *recordingHabits) Create(ctx context.Context, habit model.Habit) (model.Habit, error) {
	created, err := r.HabitRepository.Create(ctx, habit)
	if err == nil {
		r.writes = append(r.writes, habitWrite{userID: created.UserID, habitID: created.ID})
	}
	return created, err
}

func (r *recordingHabits) Update(ctx context.Context, habit model.Habit) (model.Habit, error) {
	updated, err := r.HabitRepository.Update(ctx, habit)
	if err == nil {
		r.writes = append(r.writes, habitWrite{userID: habit.UserID, habitID: habit.ID})
	}
	return updated, err
}

func (r *recordingHabits) Delete(ctx context.Context, userID, habitID string) error {
	err := r.HabitRepository.Delete(ctx, userID, habitID)
	if err == nil {
		r.writes = append(r.writes, habitWrite{userID: userID, habitID: habitID})
	}
	return err
}

// recordingDays notes whether a transaction created a day. A day inserted
// concurrently by another transaction may be reported too; that only costs
// an extra invalidation.
type recordingDays struct {
	repository.DayRepository
	created bool
}

func (r *recordingDays) FindOrCreate(ctx context.Context, date model.Date) (model.Day, error) {
	_, err := r.DayRepository.FindByDate(ctx, date)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		day, err := r.DayRepository.FindOrCreate(ctx, date)
		if err == nil {
			r.created = true
		}
		return day, err
	case err != nil:
		return model.Day{}, err
	}
	return r.DayRepository.FindOrCreate(ctx, date)
}

func (r *recordingDays) CreateRange(ctx context.Context, from, to model.Date) (int, error) {
	n, err := r.DayRepository.CreateRange(ctx, from, to)
	if n > 0 {
		r.created = true
	}
	return n, err
}

var _ repository.TxManager = (*TxManager)(nil)
