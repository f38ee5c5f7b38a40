package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jaekwang-park/habit-api/internal/model"
)

type SQLCompletionLedger struct {
	db      DBTX
	dialect Dialect
}

func NewSQLCompletionLedger(db DBTX, dialect Dialect) *SQLCompletionLedger {
	return &SQLCompletionLedger{db: db, dialect: dialect}
}

func (l *SQLCompletionLedger) Toggle(ctx context.Context, dayID, habitID, userID string) (bool, error) {
	var owned int
	err := l.db.QueryRowContext(ctx,
		l.dialect.Rebind(`SELECT COUNT(*) FROM habits WHERE id = $1 AND user_id = $2`),
		habitID, userID,
	).Scan(&owned)
	if err != nil {
		return false, fmt.Errorf("failed to check habit ownership: %w", err)
	}
	if owned == 0 {
		return false, nil
	}

	result, err := l.db.ExecContext(ctx,
		l.dialect.Rebind(`DELETE FROM day_habits WHERE day_id = $1 AND habit_id = $2`),
		dayID, habitID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete completion: %w", err)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if removed > 0 {
		return false, nil
	}

	_, err = l.db.ExecContext(ctx,
		l.dialect.Rebind(`INSERT INTO day_habits (id, day_id, habit_id) VALUES ($1, $2, $3)`),
		uuid.NewString(), dayID, habitID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return false, fmt.Errorf("failed to insert completion: %w", ErrDuplicate)
		}
		return false, fmt.Errorf("failed to insert completion: %w", err)
	}
	return true, nil
}

func (l *SQLCompletionLedger) ListByUser(ctx context.Context, userID string, from, to model.Date) ([]model.CompletionRecord, error) {
	query := `
		SELECT dh.id, dh.day_id, dh.habit_id, d.date
		FROM day_habits dh
		JOIN days d ON d.id = dh.day_id
		JOIN habits h ON h.id = dh.habit_id
		WHERE h.user_id = $1 AND d.date >= $2 AND d.date <= $3
		ORDER BY d.date`

	rows, err := l.db.QueryContext(ctx, l.dialect.Rebind(query), userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list completions: %w", err)
	}
	defer rows.Close()

	records := []model.CompletionRecord{}
	for rows.Next() {
		var rec model.CompletionRecord
		if err := rows.Scan(&rec.ID, &rec.DayID, &rec.HabitID, &rec.Date); err != nil {
			return nil, fmt.Errorf("failed to scan completion: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate completions: %w", err)
	}
	return records, nil
}

var _ CompletionLedger = (*SQLCompletionLedger)(nil)
