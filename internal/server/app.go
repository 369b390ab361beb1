// Package server wires the configuration, database, services and HTTP API
// together and runs them until a termination signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/dmitrijs2005/remotetm/internal/filex"
	"github.com/dmitrijs2005/remotetm/internal/logging"
	"github.com/dmitrijs2005/remotetm/internal/server/config"
	"github.com/dmitrijs2005/remotetm/internal/server/httpapi"
	"github.com/dmitrijs2005/remotetm/internal/server/mail"
	"github.com/dmitrijs2005/remotetm/internal/server/services"
	"github.com/dmitrijs2005/remotetm/internal/server/storage"
	"github.com/dmitrijs2005/remotetm/internal/server/upload"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *httpapi.HTTPServer
}

// newObjectStore picks the upload backend.
func newObjectStore(ctx context.Context, c *config.Config) (storage.ObjectStore, error) {
	switch c.StorageBackend {
	case "local", "":
		return storage.NewLocalStore(filepath.Join(c.WorkDir, "uploads"))
	case "s3":
		return storage.NewS3Store(ctx, storage.S3Config{
			AccessKey:    c.S3RootUser,
			SecretKey:    c.S3RootPassword,
			Bucket:       c.S3Bucket,
			Region:       c.S3Region,
			BaseEndpoint: c.S3BaseEndpoint,
		})
	default:
		return nil, fmt.Errorf("unknown storage backend %q", c.StorageBackend)
	}
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger, err := logging.New(c.LogFormat, c.LogLevel, os.Stdout)
	if err != nil {
		return nil, err
	}

	workDir, err := filex.EnsureDir(c.WorkDir)
	if err != nil {
		return nil, fmt.Errorf("work dir: %w", err)
	}
	c.WorkDir = workDir
	c.Resolve()

	db, st, err := OpenStore(ctx, c)
	if err != nil {
		return nil, err
	}

	created, err := st.EnsureAdministrator(ctx, c.AdminPassword)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if created {
		logger.Info(ctx, "Administrator account created", "user", "sysadmin")
	}

	objects, err := newObjectStore(ctx, c)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	settings := mail.NewSettingsStore(c.WorkDir)
	mailer := mail.NewMailer(settings, nil, logger)

	accounts := services.NewAccountService(st, mailer, c, logger)
	memories := services.NewMemoryService(st, logger)
	receiver := upload.NewReceiver(objects, "", c.MaxUploadSize)

	srv := httpapi.NewHTTPServer(c.HTTPAddr, logger, accounts, memories, receiver, settings, c.MaxUploadSize)

	return &App{config: c, logger: logger, db: db, server: srv}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves until ctx is cancelled or a signal arrives, then closes the
// database.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "work_dir", app.config.WorkDir, "db", app.config.DatabaseDriver)

	app.initSignalHandler(cancelFunc)

	err := app.server.Run(ctx)
	if err != nil {
		app.logger.Error(ctx, err.Error())
	}

	if cerr := app.db.Close(); cerr != nil {
		app.logger.Error(ctx, "db close failed", "error", cerr)
	}
	app.logger.Info(ctx, "App stopped")
	return err
}
