package dbx

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Dialect names a supported SQL engine. The value doubles as the
// database/sql driver name.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "pgx"
)

// ParseDialect validates a driver name taken from configuration.
func ParseDialect(s string) (Dialect, error) {
	switch Dialect(s) {
	case DialectSQLite, DialectPostgres:
		return Dialect(s), nil
	}
	return "", errors.New("unsupported database driver: " + s)
}

// GooseDialect returns the dialect name goose expects for d.
func (d Dialect) GooseDialect() string {
	if d == DialectPostgres {
		return "pgx"
	}
	return "sqlite3"
}

// Rebind rewrites '?' placeholders to the positional form required by d.
// Statements must not contain a literal '?'.
func Rebind(d Dialect, query string) string {
	return sqlx.Rebind(sqlx.BindType(string(d)), query)
}

type reboundDB struct {
	db      DBTX
	dialect Dialect
}

// WithDialect wraps db so that queries written with '?' placeholders run on
// the given dialect. SQLite handles are returned unchanged.
func WithDialect(db DBTX, d Dialect) DBTX {
	if d != DialectPostgres {
		return db
	}
	return &reboundDB{db: db, dialect: d}
}

func (r *reboundDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return r.db.ExecContext(ctx, Rebind(r.dialect, query), args...)
}

func (r *reboundDB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return r.db.QueryContext(ctx, Rebind(r.dialect, query), args...)
}

func (r *reboundDB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return r.db.QueryRowContext(ctx, Rebind(r.dialect, query), args...)
}

// IsUniqueViolation reports whether err is a primary-key or unique
// constraint violation raised by either supported driver.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
			return true
		case sqlite3.SQLITE_CONSTRAINT:
			return strings.Contains(liteErr.Error(), "UNIQUE")
		}
	}
	return false
}
