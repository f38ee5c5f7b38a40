package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jaekwang-park/habit-api/internal/model"
)

type SQLDayRepository struct {
	db      DBTX
	dialect Dialect
}

func NewSQLDay(db DBTX, dialect Dialect) *SQLDayRepository {
	return &SQLDayRepository{db: db, dialect: dialect}
}

func (r *SQLDayRepository) FindByID(ctx context.Context, dayID string) (model.Day, error) {
	row := r.db.QueryRowContext(ctx, r.dialect.Rebind(`SELECT id, date FROM days WHERE id = $1`), dayID)
	return scanDay(row)
}

func (r *SQLDayRepository) FindByDate(ctx context.Context, date model.Date) (model.Day, error) {
	row := r.db.QueryRowContext(ctx, r.dialect.Rebind(`SELECT id, date FROM days WHERE date = $1`), date)
	return scanDay(row)
}

func (r *SQLDayRepository) FindOrCreate(ctx context.Context, date model.Date) (model.Day, error) {
	if _, err := r.insert(ctx, date); err != nil {
		return model.Day{}, err
	}
	return r.FindByDate(ctx, date)
}

func (r *SQLDayRepository) CreateRange(ctx context.Context, from, to model.Date) (int, error) {
	if to.Before(from) {
		return 0, fmt.Errorf("invalid day range %s..%s", from, to)
	}

	created := 0
	for d := from; !d.After(to); d = d.AddDays(1) {
		n, err := r.insert(ctx, d)
		if err != nil {
			return created, err
		}
		created += int(n)
	}
	return created, nil
}

func (r *SQLDayRepository) ListUpTo(ctx context.Context, date model.Date) ([]model.Day, error) {
	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(`SELECT id, date FROM days WHERE date <= $1 ORDER BY date`), date)
	if err != nil {
		return nil, fmt.Errorf("failed to list days: %w", err)
	}
	defer rows.Close()

	days := []model.Day{}
	for rows.Next() {
		d, err := scanDay(rows)
		if err != nil {
			return nil, err
		}
		days = append(days, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate days: %w", err)
	}
	return days, nil
}

// insert relies on the unique date column: a date that already exists,
// including one inserted concurrently, is left untouched.
func (r *SQLDayRepository) insert(ctx context.Context, date model.Date) (int64, error) {
	query := `INSERT INTO days (id, date) VALUES ($1, $2) ON CONFLICT (date) DO NOTHING`

	result, err := r.db.ExecContext(ctx, r.dialect.Rebind(query), uuid.NewString(), date)
	if err != nil {
		return 0, fmt.Errorf("failed to insert day %s: %w", date, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

func scanDay(row scannable) (model.Day, error) {
	var d model.Day
	if err := row.Scan(&d.ID, &d.Date); err != nil {
		return model.Day{}, fmt.Errorf("failed to scan day: %w", err)
	}
	return d, nil
}

var _ DayRepository = (*SQLDayRepository)(nil)
