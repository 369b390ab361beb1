package server

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/remotetm/internal/cryptox"
	"github.com/dmitrijs2005/remotetm/internal/server/config"
	"github.com/dmitrijs2005/remotetm/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/remotetm/internal/server/store"
)

// OpenStore opens the configured database, brings the schema up to date
// and returns the store built on it. The caller closes the *sql.DB.
func OpenStore(ctx context.Context, cfg *config.Config) (*sql.DB, *store.Store, error) {
	repos, err := repomanager.NewSQLRepositoryManager(cfg.DatabaseDriver)
	if err != nil {
		return nil, nil, err
	}

	db, err := sql.Open(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("db init error: %w", err)
	}
	if cfg.DatabaseDriver == "sqlite" {
		// one shared session for the embedded engine
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("db init error: %w", err)
	}

	if err := repos.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("migration error: %w", err)
	}

	hasher, err := cryptox.NewPasswordHasher(cfg.PasswordSalt)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	return db, store.New(db, repos, hasher), nil
}
