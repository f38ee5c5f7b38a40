package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jaekwang-park/habit-api/internal/model"
	"github.com/jaekwang-park/habit-api/internal/schedule"
)

type SQLHabitRepository struct {
	db      DBTX
	dialect Dialect
	loc     *time.Location
}

// NewSQLHabit returns a habit repository. loc is the zone in which a habit's
// creation instant becomes its creation date.
func NewSQLHabit(db DBTX, dialect Dialect, loc *time.Location) *SQLHabitRepository {
	if loc == nil {
		loc = time.UTC
	}
	return &SQLHabitRepository{db: db, dialect: dialect, loc: loc}
}

const habitColumns = `h.id, h.user_id, h.title, h.created_at, h.updated_at`

func (r *SQLHabitRepository) Create(ctx context.Context, habit model.Habit) (model.Habit, error) {
	if habit.ID == "" {
		habit.ID = uuid.NewString()
	}

	query := `
		INSERT INTO habits (id, user_id, title, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.ExecContext(ctx, r.dialect.Rebind(query),
		habit.ID, habit.UserID, habit.Title,
		formatTimestamp(habit.CreatedAt), formatTimestamp(habit.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.Habit{}, fmt.Errorf("failed to insert habit: %w", ErrDuplicate)
		}
		return model.Habit{}, fmt.Errorf("failed to insert habit: %w", err)
	}

	if err := r.insertWeekDays(ctx, habit.ID, habit.WeekDays); err != nil {
		return model.Habit{}, err
	}

	return r.FindByID(ctx, habit.UserID, habit.ID)
}

func (r *SQLHabitRepository) Update(ctx context.Context, habit model.Habit) (model.Habit, error) {
	query := `
		UPDATE habits
		SET title = $1, updated_at = $2
		WHERE id = $3 AND user_id = $4`

	result, err := r.db.ExecContext(ctx, r.dialect.Rebind(query),
		habit.Title, formatTimestamp(habit.UpdatedAt), habit.ID, habit.UserID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.Habit{}, fmt.Errorf("failed to update habit: %w", ErrDuplicate)
		}
		return model.Habit{}, fmt.Errorf("failed to update habit: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return model.Habit{}, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return model.Habit{}, fmt.Errorf("failed to update habit: %w", sql.ErrNoRows)
	}

	// The weekday set is replaced wholesale.
	if _, err := r.db.ExecContext(ctx, r.dialect.Rebind(`DELETE FROM habit_week_days WHERE habit_id = $1`), habit.ID); err != nil {
		return model.Habit{}, fmt.Errorf("failed to clear habit week days: %w", err)
	}
	if err := r.insertWeekDays(ctx, habit.ID, habit.WeekDays); err != nil {
		return model.Habit{}, err
	}

	return r.FindByID(ctx, habit.UserID, habit.ID)
}

func (r *SQLHabitRepository) Delete(ctx context.Context, userID, habitID string) error {
	query := `DELETE FROM habits WHERE id = $1 AND user_id = $2`

	result, err := r.db.ExecContext(ctx, r.dialect.Rebind(query), habitID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete habit: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}

	return nil
}

func (r *SQLHabitRepository) FindByID(ctx context.Context, userID, habitID string) (model.Habit, error) {
	query := `
		SELECT ` + habitColumns + `
		FROM habits h
		WHERE h.id = $1 AND h.user_id = $2`

	h, err := scanHabit(r.db.QueryRowContext(ctx, r.dialect.Rebind(query), habitID, userID))
	if err != nil {
		return model.Habit{}, err
	}
	return r.withWeekDays(ctx, h)
}

func (r *SQLHabitRepository) FindByTitle(ctx context.Context, userID, title string) (model.Habit, error) {
	query := `
		SELECT ` + habitColumns + `
		FROM habits h
		WHERE h.user_id = $1 AND h.title = $2`

	h, err := scanHabit(r.db.QueryRowContext(ctx, r.dialect.Rebind(query), userID, title))
	if err != nil {
		return model.Habit{}, err
	}
	return r.withWeekDays(ctx, h)
}

func (r *SQLHabitRepository) FindByUser(ctx context.Context, userID string) ([]model.Habit, error) {
	query := `
		SELECT ` + habitColumns + `
		FROM habits h
		WHERE h.user_id = $1
		ORDER BY h.created_at, h.id`

	return r.queryHabits(ctx, userID, query, userID)
}

func (r *SQLHabitRepository) FindDueHabits(ctx context.Context, date model.Date, userID string) ([]model.Habit, error) {
	query := `
		SELECT ` + habitColumns + `
		FROM habits h
		WHERE h.user_id = $1
		  AND EXISTS (
			SELECT 1 FROM habit_week_days w
			WHERE w.habit_id = h.id AND w.week_day = $2
		  )
		ORDER BY h.created_at, h.id`

	habits, err := r.queryHabits(ctx, userID, query, userID, int(date.Weekday()))
	if err != nil {
		return nil, err
	}
	// The creation cutoff is a calendar-date comparison in the configured
	// zone, which is simpler to do here than portably in SQL.
	return schedule.Due(habits, date, r.loc), nil
}

func (r *SQLHabitRepository) FindCompletedHabits(ctx context.Context, date model.Date, userID string) ([]model.Habit, error) {
	query := `
		SELECT ` + habitColumns + `
		FROM habits h
		JOIN day_habits dh ON dh.habit_id = h.id
		JOIN days d ON d.id = dh.day_id
		WHERE h.user_id = $1 AND d.date = $2
		ORDER BY h.created_at, h.id`

	return r.queryHabits(ctx, userID, query, userID, date)
}

func (r *SQLHabitRepository) insertWeekDays(ctx context.Context, habitID string, days model.WeekdaySet) error {
	query := r.dialect.Rebind(`INSERT INTO habit_week_days (id, habit_id, week_day) VALUES ($1, $2, $3)`)
	for _, d := range days {
		if _, err := r.db.ExecContext(ctx, query, uuid.NewString(), habitID, d); err != nil {
			return fmt.Errorf("failed to insert habit week day: %w", err)
		}
	}
	return nil
}

func (r *SQLHabitRepository) withWeekDays(ctx context.Context, h model.Habit) (model.Habit, error) {
	query := `SELECT week_day FROM habit_week_days WHERE habit_id = $1 ORDER BY week_day`

	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(query), h.ID)
	if err != nil {
		return model.Habit{}, fmt.Errorf("failed to load habit week days: %w", err)
	}
	defer rows.Close()

	h.WeekDays = model.WeekdaySet{}
	for rows.Next() {
		var d int
		if err := rows.Scan(&d); err != nil {
			return model.Habit{}, fmt.Errorf("failed to scan week day: %w", err)
		}
		h.WeekDays = append(h.WeekDays, d)
	}
	if err := rows.Err(); err != nil {
		return model.Habit{}, fmt.Errorf("failed to iterate week days: %w", err)
	}
	return h, nil
}

// queryHabits runs a habit query for userID and attaches every habit's
// weekday set with a single extra query.
func (r *SQLHabitRepository) queryHabits(ctx context.Context, userID, query string, args ...any) ([]model.Habit, error) {
	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query habits: %w", err)
	}

	habits := []model.Habit{}
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		habits = append(habits, h)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("failed to iterate habits: %w", err)
	}
	rows.Close()

	if len(habits) == 0 {
		return habits, nil
	}

	weekDays, err := r.weekDaysByHabit(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range habits {
		habits[i].WeekDays = weekDays[habits[i].ID]
		if habits[i].WeekDays == nil {
			habits[i].WeekDays = model.WeekdaySet{}
		}
	}
	return habits, nil
}

func (r *SQLHabitRepository) weekDaysByHabit(ctx context.Context, userID string) (map[string]model.WeekdaySet, error) {
	query := `
		SELECT w.habit_id, w.week_day
		FROM habit_week_days w
		JOIN habits h ON h.id = w.habit_id
		WHERE h.user_id = $1
		ORDER BY w.week_day`

	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(query), userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load week days: %w", err)
	}
	defer rows.Close()

	byHabit := make(map[string]model.WeekdaySet)
	for rows.Next() {
		var habitID string
		var d int
		if err := rows.Scan(&habitID, &d); err != nil {
			return nil, fmt.Errorf("failed to scan week day: %w", err)
		}
		byHabit[habitID] = append(byHabit[habitID], d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate week days: %w", err)
	}
	return byHabit, nil
}

func scanHabit(row scannable) (model.Habit, error) {
	var h model.Habit
	err := row.Scan(
		&h.ID, &h.UserID, &h.Title,
		timestamp{&h.CreatedAt}, timestamp{&h.UpdatedAt},
	)
	if err != nil {
		return model.Habit{}, fmt.Errorf("failed to scan habit: %w", err)
	}
	return h, nil
}

// ensure compile-time interface compliance
var _ HabitRepository = (*SQLHabitRepository)(nil)
