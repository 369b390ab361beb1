// Package store is the transactional account and permission store. It keeps
// users, memories and the grants between them consistent: a memory is created
// with a full grant for its owner and removed together with every grant on
// it, and a user is removed only when it owns no memory.
//
// The store does not check who is asking; callers authorize first.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/remotetm/internal/common"
	"github.com/dmitrijs2005/remotetm/internal/dbx"
	"github.com/dmitrijs2005/remotetm/internal/server/access"
	"github.com/dmitrijs2005/remotetm/internal/server/models"
	"github.com/dmitrijs2005/remotetm/internal/server/repositories/memories"
	"github.com/dmitrijs2005/remotetm/internal/server/repositories/permissions"
	"github.com/dmitrijs2005/remotetm/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/remotetm/internal/server/repositories/users"
)

// Hasher produces and checks password digests.
type Hasher interface {
	Hash(password string) string
	Verify(password, digest string) bool
}

// Administrator seed values used by EnsureAdministrator.
const (
	AdministratorName  = "System Administrator"
	AdministratorEmail = "sysadmin@localhost"
)

type Store struct {
	db     *sql.DB
	repos  repomanager.RepositoryManager
	hasher Hasher
	now    func() time.Time
}

func New(db *sql.DB, repos repomanager.RepositoryManager, hasher Hasher) *Store {
	return &Store{db: db, repos: repos, hasher: hasher, now: time.Now}
}

// repoSet is the set of repositories bound to one handle.
type repoSet struct {
	users       users.Repository
	memories    memories.Repository
	permissions permissions.Repository
}

func (s *Store) bind(db dbx.DBTX) repoSet {
	return repoSet{
		users:       s.repos.Users(db),
		memories:    s.repos.Memories(db),
		permissions: s.repos.Permissions(db),
	}
}

// classify passes domain errors through and reports everything else as a
// transaction failure.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, common.ErrorNotFound),
		errors.Is(err, common.ErrorDuplicateKey),
		errors.Is(err, common.ErrorResourceInUse),
		errors.Is(err, common.ErrorInvalidArgument),
		errors.Is(err, common.ErrorTransactionFailure):
		return err
	default:
		return fmt.Errorf("%w: %w", common.ErrorTransactionFailure, err)
	}
}

func (s *Store) inTx(ctx context.Context, fn func(ctx context.Context, r repoSet) error) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, s.bind(tx))
	})
	return classify(err)
}

func createUser(ctx context.Context, r repoSet, h Hasher, user *models.User, password string) error {
	if user == nil || user.ID == "" || !user.Role.Valid() {
		return fmt.Errorf("%w: user id and role are required", common.ErrorInvalidArgument)
	}

	_, err := r.users.GetByID(ctx, user.ID)
	switch {
	case err == nil:
		return common.ErrorDuplicateKey
	case !errors.Is(err, common.ErrorNotFound):
		return err
	}

	u := *user
	u.PasswordHash = h.Hash(password)
	return r.users.Create(ctx, &u)
}

func createMemory(ctx context.Context, r repoSet, memory *models.Memory, owner string, now time.Time) error {
	if memory == nil || memory.ID == "" {
		return fmt.Errorf("%w: memory id is required", common.ErrorInvalidArgument)
	}

	if _, err := r.users.GetByID(ctx, owner); err != nil {
		return err
	}

	_, err := r.memories.GetByID(ctx, memory.ID)
	switch {
	case err == nil:
		return common.ErrorDuplicateKey
	case !errors.Is(err, common.ErrorNotFound):
		return err
	}

	m := *memory
	m.Owner = owner
	if m.CreationDate.IsZero() {
		m.CreationDate = now
	}
	if err := r.memories.Create(ctx, &m); err != nil {
		return err
	}

	return r.permissions.Insert(ctx, &models.Permission{
		UserID:   owner,
		MemoryID: m.ID,
		Rights:   models.AllRights,
	})
}

// CreateUser stores user with the digest of password. The PasswordHash
// field of user is ignored.
func (s *Store) CreateUser(ctx context.Context, user *models.User, password string) error {
	return s.inTx(ctx, func(ctx context.Context, r repoSet) error {
		return createUser(ctx, r, s.hasher, user, password)
	})
}

// GetUser returns the user or nil when it does not exist.
func (s *Store) GetUser(ctx context.Context, id string) (*models.User, error) {
	u, err := s.repos.Users(s.db).GetByID(ctx, id)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// ListUsers returns all users ordered by name, case-insensitively.
func (s *Store) ListUsers(ctx context.Context) ([]*models.User, error) {
	return s.repos.Users(s.db).List(ctx)
}

// UpdateUser overwrites name, email, role and the two flags. The password
// is left alone.
func (s *Store) UpdateUser(ctx context.Context, user *models.User) error {
	if user == nil || !user.Role.Valid() {
		return fmt.Errorf("%w: invalid role", common.ErrorInvalidArgument)
	}
	return s.inTx(ctx, func(ctx context.Context, r repoSet) error {
		return r.users.Update(ctx, user)
	})
}

// RemoveUser deletes the user and every grant naming it. It fails with
// ErrorResourceInUse, changing nothing, while the user owns a memory.
func (s *Store) RemoveUser(ctx context.Context, id string) error {
	return s.inTx(ctx, func(ctx context.Context, r repoSet) error {
		if _, err := r.users.GetByID(ctx, id); err != nil {
			return err
		}

		owned, err := r.memories.CountByOwner(ctx, id)
		if err != nil {
			return err
		}
		if owned > 0 {
			return common.ErrorResourceInUse
		}

		if _, err := r.permissions.DeleteByUser(ctx, id); err != nil {
			return err
		}
		return r.users.Delete(ctx, id)
	})
}

// SetPassword stores the digest of password and marks it as changed.
func (s *Store) SetPassword(ctx context.Context, id, password string) error {
	return s.inTx(ctx, func(ctx context.Context, r repoSet) error {
		return r.users.UpdatePassword(ctx, id, s.hasher.Hash(password))
	})
}

// CreateMemory inserts memory owned by owner together with a full grant for
// the owner. A zero CreationDate is set to the current time.
func (s *Store) CreateMemory(ctx context.Context, memory *models.Memory, owner string) error {
	return s.inTx(ctx, func(ctx context.Context, r repoSet) error {
		return createMemory(ctx, r, memory, owner, s.now())
	})
}

// RemoveMemory deletes every grant on the memory and then the memory.
func (s *Store) RemoveMemory(ctx context.Context, id string) error {
	return s.inTx(ctx, func(ctx context.Context, r repoSet) error {
		if _, err := r.permissions.DeleteByMemory(ctx, id); err != nil {
			return err
		}
		return r.memories.Delete(ctx, id)
	})
}

// GetMemory returns the memory or nil when it does not exist.
func (s *Store) GetMemory(ctx context.Context, id string) (*models.Memory, error) {
	m, err := s.repos.Memories(s.db).GetByID(ctx, id)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// GetMemoriesVisibleTo returns, ordered by name, every memory on which the
// user holds at least one right.
func (s *Store) GetMemoriesVisibleTo(ctx context.Context, userID string) ([]*models.Memory, error) {
	r := s.bind(s.db)

	user, err := r.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	all, err := r.memories.List(ctx)
	if err != nil {
		return nil, err
	}

	grants, err := r.permissions.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	byMemory := make(map[string]*models.Permission, len(grants))
	for _, p := range grants {
		byMemory[p.MemoryID] = p
	}

	visible := make([]*models.Memory, 0, len(all))
	for _, m := range all {
		if access.Visible(user, m, byMemory[m.ID]) {
			visible = append(visible, m)
		}
	}
	return visible, nil
}

// GetPermission returns the stored grant for the pair, all false when there
// is no row.
func (s *Store) GetPermission(ctx context.Context, memoryID, userID string) (models.Rights, error) {
	p, err := s.repos.Permissions(s.db).Get(ctx, memoryID, userID)
	if errors.Is(err, common.ErrorNotFound) {
		return models.NoRights, nil
	}
	if err != nil {
		return models.NoRights, err
	}
	return p.Rights, nil
}

// GetRights resolves the effective rights of userID on memoryID. Unknown
// users or memories yield no rights.
func (s *Store) GetRights(ctx context.Context, memoryID, userID string) (models.Rights, error) {
	r := s.bind(s.db)

	user, err := r.users.GetByID(ctx, userID)
	if errors.Is(err, common.ErrorNotFound) {
		return models.NoRights, nil
	}
	if err != nil {
		return models.NoRights, err
	}

	memory, err := r.memories.GetByID(ctx, memoryID)
	if errors.Is(err, common.ErrorNotFound) {
		return models.NoRights, nil
	}
	if err != nil {
		return models.NoRights, err
	}

	p, err := r.permissions.Get(ctx, memoryID, userID)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return models.NoRights, err
	}
	return access.Resolve(user, memory, p), nil
}

// SetPermissions replaces the whole grant set of a memory. When a grantee
// appears more than once the last entry wins.
func (s *Store) SetPermissions(ctx context.Context, memoryID string, grants []models.Permission) error {
	order := make([]string, 0, len(grants))
	latest := make(map[string]models.Rights, len(grants))
	for _, g := range grants {
		if _, seen := latest[g.UserID]; !seen {
			order = append(order, g.UserID)
		}
		latest[g.UserID] = g.Rights
	}

	return s.inTx(ctx, func(ctx context.Context, r repoSet) error {
		if _, err := r.memories.GetByID(ctx, memoryID); err != nil {
			return err
		}
		for _, id := range order {
			if _, err := r.users.GetByID(ctx, id); err != nil {
				if errors.Is(err, common.ErrorNotFound) {
					return fmt.Errorf("%w: user %q", common.ErrorNotFound, id)
				}
				return err
			}
		}

		if _, err := r.permissions.DeleteByMemory(ctx, memoryID); err != nil {
			return err
		}
		for _, id := range order {
			p := &models.Permission{UserID: id, MemoryID: memoryID, Rights: latest[id]}
			if err := r.permissions.Insert(ctx, p); err != nil {
				return err
			}
		}
		return nil
	})
}

// ListPermissions returns one entry per active user, sorted by user ID,
// with all-false rights where nothing is stored.
func (s *Store) ListPermissions(ctx context.Context, memoryID string) ([]*models.Permission, error) {
	return s.repos.Permissions(s.db).ListForActiveUsers(ctx, memoryID)
}

// GetOwner returns the owner of the memory, or "" when it does not exist.
func (s *Store) GetOwner(ctx context.Context, memoryID string) (string, error) {
	m, err := s.GetMemory(ctx, memoryID)
	if err != nil || m == nil {
		return "", err
	}
	return m.Owner, nil
}

// EnsureAdministrator creates the sysadmin account when there are no users
// at all. It reports whether the account was created.
func (s *Store) EnsureAdministrator(ctx context.Context, password string) (bool, error) {
	created := false
	err := s.inTx(ctx, func(ctx context.Context, r repoSet) error {
		n, err := r.users.Count(ctx)
		if err != nil || n > 0 {
			return err
		}
		admin := &models.User{
			ID:     common.AdministratorID,
			Name:   AdministratorName,
			Email:  AdministratorEmail,
			Role:   models.SystemAdministrator,
			Active: true,
		}
		if err := createUser(ctx, r, s.hasher, admin, password); err != nil {
			return err
		}
		created = true
		return nil
	})
	return created, err
}

// Authenticate returns the user when it exists, is active and password
// matches. Any mismatch is reported as ErrorUnauthorized.
func (s *Store) Authenticate(ctx context.Context, id, password string) (*models.User, error) {
	u, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil || !u.Active || !s.hasher.Verify(password, u.PasswordHash) {
		return nil, common.ErrorUnauthorized
	}
	return u, nil
}

// VerifyPassword reports whether password matches the stored digest of id.
// Unlike Authenticate it ignores the active flag.
func (s *Store) VerifyPassword(ctx context.Context, id, password string) (bool, error) {
	u, err := s.GetUser(ctx, id)
	if err != nil || u == nil {
		return false, err
	}
	return s.hasher.Verify(password, u.PasswordHash), nil
}
