package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// Repos groups the repositories that take part in a unit of work.
type Repos struct {
	Habits HabitRepository
	Days   DayRepository
	Ledger CompletionLedger
}

// NewRepos binds SQL repositories to db, which may be a pool or a transaction.
func NewRepos(db DBTX, dialect Dialect, loc *time.Location) Repos {
	return Repos{
		Habits: NewSQLHabit(db, dialect, loc),
		Days:   NewSQLDay(db, dialect),
		Ledger: NewSQLCompletionLedger(db, dialect),
	}
}

// TxManager runs fn inside a transaction. Any error returned by fn rolls the
// transaction back and is returned unchanged.
type TxManager interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, r Repos) error) error
}

type SQLTxManager struct {
	db      *sql.DB
	dialect Dialect
	loc     *time.Location
	logger  *slog.Logger
}

func NewTxManager(db *sql.DB, dialect Dialect, loc *time.Location, logger *slog.Logger) *SQLTxManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLTxManager{db: db, dialect: dialect, loc: loc, logger: logger}
}

func (m *SQLTxManager) WithTx(ctx context.Context, fn func(ctx context.Context, r Repos) error) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(ctx, NewRepos(tx, m.dialect, m.loc)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			m.logger.Error("failed to roll back transaction", "error", rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

var _ TxManager = (*SQLTxManager)(nil)
