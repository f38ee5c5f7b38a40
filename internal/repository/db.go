package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Dialect selects the SQL flavour a repository speaks.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// ErrDuplicate is returned when a write hits a uniqueness constraint.
var ErrDuplicate = errors.New("duplicate record")

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var placeholderRe = regexp.MustCompile(`\$\d+`)

// Rebind rewrites $N placeholders for dialects that only take "?". Queries
// must reference each $N once and in ascending order.
func (d Dialect) Rebind(query string) string {
	if d != DialectSQLite {
		return query
	}
	return placeholderRe.ReplaceAllString(query, "?")
}

// DialectFor maps a database/sql driver name to its dialect.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case "postgres", "pgx":
		return DialectPostgres, nil
	case "sqlite":
		return DialectSQLite, nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", driver)
	}
}

// NewDB opens a connection pool for driver ("postgres" via lib/pq, "pgx" via
// the pgx stdlib adapter, or "sqlite" via modernc) and verifies it with a ping.
func NewDB(ctx context.Context, driver, dsn string) (*sql.DB, Dialect, error) {
	dialect, err := DialectFor(driver)
	if err != nil {
		return nil, "", err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, "", fmt.Errorf("failed to ping database: %w", err)
	}
	return db, dialect, nil
}

// SQLiteDSN builds a modernc DSN with foreign keys enforced, which the
// cascading deletes rely on.
func SQLiteDSN(path string) string {
	return "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}
