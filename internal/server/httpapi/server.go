// Package httpapi exposes the account, memory, upload and mail settings
// operations as a JSON API over HTTP.
package httpapi

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/remotetm/internal/logging"
	"github.com/dmitrijs2005/remotetm/internal/server/mail"
	"github.com/dmitrijs2005/remotetm/internal/server/models"
)

const shutdownTimeout = 10 * time.Second

// Accounts is the account side of the services layer.
type Accounts interface {
	Login(ctx context.Context, id, password string) (string, error)
	Caller(ctx context.Context, ticket string) (*models.User, error)
	Users(ctx context.Context, caller *models.User) ([]*models.User, error)
	User(ctx context.Context, caller *models.User, id string) (*models.User, error)
	AddUser(ctx context.Context, caller *models.User, user *models.User) error
	UpdateUser(ctx context.Context, caller *models.User, user *models.User) error
	ToggleLock(ctx context.Context, caller *models.User, id string) error
	RemoveUser(ctx context.Context, caller *models.User, id string) error
	ChangePassword(ctx context.Context, caller *models.User, current, newPassword string) error
}

// Memories is the memory side of the services layer.
type Memories interface {
	Memories(ctx context.Context, caller *models.User) ([]*models.Memory, error)
	AddMemory(ctx context.Context, caller *models.User, m *models.Memory) (*models.Memory, error)
	RemoveMemory(ctx context.Context, caller *models.User, id string) error
	Permissions(ctx context.Context, caller *models.User, id string) ([]*models.Permission, error)
	SetPermissions(ctx context.Context, caller *models.User, id string, grants []models.Permission) error
	Rights(ctx context.Context, caller *models.User, id string) (models.Rights, error)
}

type Uploader interface {
	Receive(ctx context.Context, contentType string, body io.Reader) (string, error)
}

type MailSettings interface {
	Load() (mail.Settings, error)
	Save(settings mail.Settings) error
}

type HTTPServer struct {
	address       string
	accounts      Accounts
	memories      Memories
	uploader      Uploader
	mailSettings  MailSettings
	maxUploadSize int64
	logger        logging.Logger
}

func NewHTTPServer(address string, l logging.Logger, acc Accounts, mem Memories, up Uploader, ms MailSettings, maxUploadSize int64) *HTTPServer {
	return &HTTPServer{
		address:       address,
		logger:        l.With("module", "http_server"),
		accounts:      acc,
		memories:      mem,
		uploader:      up,
		mailSettings:  ms,
		maxUploadSize: maxUploadSize,
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.serve(ctx, listen)
}

func (s *HTTPServer) serve(ctx context.Context, listen net.Listener) error {
	srv := &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shCtx); err != nil {
			s.logger.Error(ctx, "shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-done
	return nil
}
