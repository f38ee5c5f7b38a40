package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jaekwang-park/habit-api/internal/model"
)

type SQLUserRepository struct {
	db      DBTX
	dialect Dialect
}

func NewSQLUser(db DBTX, dialect Dialect) *SQLUserRepository {
	return &SQLUserRepository{db: db, dialect: dialect}
}

func (r *SQLUserRepository) FindByID(ctx context.Context, userID string) (model.User, error) {
	query := `
		SELECT id, email, nickname, created_at, updated_at
		FROM users
		WHERE id = $1`

	row := r.db.QueryRowContext(ctx, r.dialect.Rebind(query), userID)
	return scanUser(row)
}

func (r *SQLUserRepository) GetOrCreate(ctx context.Context, userID, email string) (model.User, error) {
	query := `
		INSERT INTO users (id, email, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET email = EXCLUDED.email`

	now := formatTimestamp(time.Now())
	if _, err := r.db.ExecContext(ctx, r.dialect.Rebind(query), userID, email, now, now); err != nil {
		return model.User{}, fmt.Errorf("failed to upsert user: %w", err)
	}
	return r.FindByID(ctx, userID)
}

func scanUser(row scannable) (model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID, &u.Email, &u.Nickname,
		timestamp{&u.CreatedAt}, timestamp{&u.UpdatedAt},
	)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to scan user: %w", err)
	}
	return u, nil
}

var _ UserRepository = (*SQLUserRepository)(nil)
