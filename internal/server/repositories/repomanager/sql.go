// Package repomanager provides a RepositoryManager for the supported SQL
// dialects, wiring together repository constructors and database
// migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/remotetm/internal/dbx"
	"github.com/dmitrijs2005/remotetm/internal/server/migrations"
	"github.com/dmitrijs2005/remotetm/internal/server/repositories/memories"
	"github.com/dmitrijs2005/remotetm/internal/server/repositories/permissions"
	"github.com/dmitrijs2005/remotetm/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// SQLRepositoryManager vends repositories whose queries are rebound for the
// configured dialect, and exposes a schema migration hook.
type SQLRepositoryManager struct {
	dialect dbx.Dialect
}

// Users returns a users.Repository bound to the provided DBTX.
func (m *SQLRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewSQLRepository(dbx.WithDialect(db, m.dialect))
}

// Memories returns a memories.Repository bound to the provided DBTX.
func (m *SQLRepositoryManager) Memories(db dbx.DBTX) memories.Repository {
	return memories.NewSQLRepository(dbx.WithDialect(db, m.dialect))
}

// Permissions returns a permissions.Repository bound to the provided DBTX.
func (m *SQLRepositoryManager) Permissions(db dbx.DBTX) permissions.Repository {
	return permissions.NewSQLRepository(dbx.WithDialect(db, m.dialect))
}

// Dialect reports the SQL dialect the manager was built for.
func (m *SQLRepositoryManager) Dialect() dbx.Dialect {
	return m.dialect
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection.
func (m *SQLRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect(m.dialect.GooseDialect()); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return err
	}
	return nil
}

// NewSQLRepositoryManager constructs a RepositoryManager for the given
// driver name ("sqlite" or "pgx").
func NewSQLRepositoryManager(driver string) (*SQLRepositoryManager, error) {
	d, err := dbx.ParseDialect(driver)
	if err != nil {
		return nil, err
	}
	return &SQLRepositoryManager{dialect: d}, nil
}
