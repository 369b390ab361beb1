package services

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/remotetm/internal/cryptox"
	"github.com/dmitrijs2005/remotetm/internal/logging"
	"github.com/dmitrijs2005/remotetm/internal/server/config"
	"github.com/dmitrijs2005/remotetm/internal/server/models"
	"github.com/dmitrijs2005/remotetm/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/remotetm/internal/server/store"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

type fakeNotifier struct {
	mu   sync.Mutex
	err  error
	sent []*models.User
	pwds []string

	// when set, delivery signals started and waits for release or ctx
	started chan struct{}
	release chan struct{}
}

func (f *fakeNotifier) SendAccountNotice(ctx context.Context, u *models.User, password string) error {
	if f.release != nil {
		close(f.started)
		select {
		case <-f.release:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, u)
	f.pwds = append(f.pwds, password)
	return nil
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", filepath.Join(t.TempDir(), "svc.db"))
	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	repos, err := repomanager.NewSQLRepositoryManager("sqlite")
	require.NoError(t, err)
	require.NoError(t, repos.RunMigrations(context.Background(), db))

	hasher, err := cryptox.NewPasswordHasher("svc-salt")
	require.NoError(t, err)

	st := store.New(db, repos, hasher)
	_, err = st.EnsureAdministrator(context.Background(), "secData")
	require.NoError(t, err)
	return st
}

func testConfig() *config.Config {
	return &config.Config{SecretKey: "k", TicketValidityDuration: time.Hour, MailTimeout: time.Minute}
}

func newServices(t *testing.T) (*AccountService, *MemoryService, *store.Store, *fakeNotifier) {
	t.Helper()
	st := newTestStore(t)
	n := &fakeNotifier{}
	return NewAccountService(st, n, testConfig(), logging.Nop()), NewMemoryService(st, logging.Nop()), st, n
}

func mustUser(t *testing.T, st *store.Store, id string, role models.Role) *models.User {
	t.Helper()
	u := &models.User{ID: id, Name: id, Email: id + "@example.com", Role: role, Active: true}
	require.NoError(t, st.CreateUser(context.Background(), u, id+"-pw"))
	got, err := st.GetUser(context.Background(), id)
	require.NoError(t, err)
	return got
}

func admin(t *testing.T, st *store.Store) *models.User {
	t.Helper()
	u, err := st.GetUser(context.Background(), "sysadmin")
	require.NoError(t, err)
	require.NotNil(t, u)
	return u
}
