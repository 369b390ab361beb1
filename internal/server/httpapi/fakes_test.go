package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dmitrijs2005/remotetm/internal/common"
	"github.com/dmitrijs2005/remotetm/internal/logging"
	"github.com/dmitrijs2005/remotetm/internal/server/mail"
	"github.com/dmitrijs2005/remotetm/internal/server/models"
	"github.com/dmitrijs2005/remotetm/internal/server/storage"
	"github.com/dmitrijs2005/remotetm/internal/server/upload"
	"github.com/stretchr/testify/require"
)

var (
	adminUser = &models.User{ID: "sysadmin", Name: "Administrator", Email: "admin@example.com", Role: models.SystemAdministrator, Active: true}
	trUser    = &models.User{ID: "alice", Name: "Alice", Email: "alice@example.com", Role: models.Translator, Active: true}
)

type fakeAccounts struct {
	loginErr error
	err      error

	added   *models.User
	updated *models.User
	removed string
	toggled string
	pwd     [2]string
}

func (f *fakeAccounts) Login(_ context.Context, id, password string) (string, error) {
	if f.loginErr != nil {
		return "", f.loginErr
	}
	return "ticket-" + id, nil
}

func (f *fakeAccounts) Caller(_ context.Context, ticket string) (*models.User, error) {
	switch ticket {
	case "":
		return nil, common.ErrorUnauthorized
	case "ticket-sysadmin":
		return adminUser, nil
	case "ticket-alice":
		return trUser, nil
	default:
		return nil, common.ErrInvalidToken
	}
}

func (f *fakeAccounts) Users(_ context.Context, caller *models.User) ([]*models.User, error) {
	if !caller.IsAdmin() {
		return nil, common.ErrorAccessDenied
	}
	return []*models.User{adminUser, trUser}, nil
}

func (f *fakeAccounts) User(_ context.Context, caller *models.User, id string) (*models.User, error) {
	if id == "alice" {
		return trUser, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeAccounts) AddUser(_ context.Context, _ *models.User, u *models.User) error {
	f.added = u
	return f.err
}

func (f *fakeAccounts) UpdateUser(_ context.Context, _ *models.User, u *models.User) error {
	f.updated = u
	return f.err
}

func (f *fakeAccounts) ToggleLock(_ context.Context, _ *models.User, id string) error {
	f.toggled = id
	return f.err
}

func (f *fakeAccounts) RemoveUser(_ context.Context, _ *models.User, id string) error {
	f.removed = id
	return f.err
}

func (f *fakeAccounts) ChangePassword(_ context.Context, _ *models.User, current, newPassword string) error {
	f.pwd = [2]string{current, newPassword}
	return f.err
}

type fakeMemories struct {
	err     error
	grants  []models.Permission
	grantOn string
}

func (f *fakeMemories) Memories(context.Context, *models.User) ([]*models.Memory, error) {
	return []*models.Memory{{ID: "tm1", Name: "tm1", Owner: "pm"}}, f.err
}

func (f *fakeMemories) AddMemory(_ context.Context, caller *models.User, m *models.Memory) (*models.Memory, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := *m
	out.Owner = caller.ID
	if out.ID == "" {
		out.ID = "generated"
	}
	return &out, nil
}

func (f *fakeMemories) RemoveMemory(context.Context, *models.User, string) error {
	return f.err
}

func (f *fakeMemories) Permissions(_ context.Context, _ *models.User, id string) ([]*models.Permission, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []*models.Permission{{UserID: "alice", MemoryID: id, Rights: models.Rights{Read: true}}}, nil
}

func (f *fakeMemories) SetPermissions(_ context.Context, _ *models.User, id string, grants []models.Permission) error {
	f.grantOn = id
	f.grants = grants
	return f.err
}

func (f *fakeMemories) Rights(context.Context, *models.User, string) (models.Rights, error) {
	return models.AllRights, f.err
}

type testEnv struct {
	acc      *fakeAccounts
	mem      *fakeMemories
	uploads  string
	settings *mail.SettingsStore
	handler  http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	uploads := t.TempDir()
	st, err := storage.NewLocalStore(uploads)
	require.NoError(t, err)

	env := &testEnv{
		acc:      &fakeAccounts{},
		mem:      &fakeMemories{},
		uploads:  uploads,
		settings: mail.NewSettingsStore(t.TempDir()),
	}
	srv := NewHTTPServer("127.0.0.1:0", logging.Nop(), env.acc, env.mem,
		upload.NewReceiver(st, t.TempDir(), 1024), env.settings, 1024)
	env.handler = srv.Router()
	return env
}

func (e *testEnv) uploaded(t *testing.T, key string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(e.uploads, filepath.FromSlash(key)))
	require.NoError(t, err)
	return string(data)
}

func (e *testEnv) do(t *testing.T, method, path, ticket, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if ticket != "" {
		req.Header.Set(common.SessionHeaderName, ticket)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}
