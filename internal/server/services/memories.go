package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/remotetm/internal/common"
	"github.com/dmitrijs2005/remotetm/internal/logging"
	"github.com/dmitrijs2005/remotetm/internal/server/models"
	"github.com/dmitrijs2005/remotetm/internal/server/store"
	"github.com/google/uuid"
)

type MemoryService struct {
	store *store.Store
	log   logging.Logger
	now   func() time.Time
}

func NewMemoryService(st *store.Store, log logging.Logger) *MemoryService {
	return &MemoryService{store: st, log: log.With("module", "memories"), now: time.Now}
}

func canCreateMemories(u *models.User) bool {
	switch u.Role {
	case models.ProjectManager, models.SystemAdministrator:
		return true
	case models.Translator:
		return false
	default:
		return false
	}
}

// requireManager allows administrators and the owner of memoryID.
func (s *MemoryService) requireManager(ctx context.Context, caller *models.User, memoryID string) error {
	owner, err := s.store.GetOwner(ctx, memoryID)
	if err != nil {
		return err
	}
	if owner == "" {
		return common.ErrorNotFound
	}
	if caller.IsAdmin() || owner == caller.ID {
		return nil
	}
	return common.ErrorAccessDenied
}

// Memories lists the memories visible to the caller.
func (s *MemoryService) Memories(ctx context.Context, caller *models.User) ([]*models.Memory, error) {
	return s.store.GetMemoriesVisibleTo(ctx, caller.ID)
}

// AddMemory registers a new memory owned by the caller. Project managers and
// administrators only. An empty ID is replaced with a generated one.
func (s *MemoryService) AddMemory(ctx context.Context, caller *models.User, m *models.Memory) (*models.Memory, error) {
	if !canCreateMemories(caller) {
		return nil, common.ErrorAccessDenied
	}
	if strings.TrimSpace(m.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", common.ErrorInvalidArgument)
	}

	memory := *m
	if memory.ID == "" {
		memory.ID = uuid.NewString()
	}
	memory.Owner = caller.ID
	memory.CreationDate = s.now().UTC()

	if err := s.store.CreateMemory(ctx, &memory, caller.ID); err != nil {
		return nil, err
	}
	s.log.Info(ctx, "memory created", "memory", memory.ID, "owner", caller.ID)
	return &memory, nil
}

// RemoveMemory deletes a memory and its grants. Owner or administrator.
func (s *MemoryService) RemoveMemory(ctx context.Context, caller *models.User, id string) error {
	if err := s.requireManager(ctx, caller, id); err != nil {
		return err
	}
	if err := s.store.RemoveMemory(ctx, id); err != nil {
		return err
	}
	s.log.Info(ctx, "memory removed", "memory", id, "by", caller.ID)
	return nil
}

// Permissions lists the grant of every active user on the memory. Owner or
// administrator.
func (s *MemoryService) Permissions(ctx context.Context, caller *models.User, id string) ([]*models.Permission, error) {
	if err := s.requireManager(ctx, caller, id); err != nil {
		return nil, err
	}
	return s.store.ListPermissions(ctx, id)
}

// SetPermissions replaces the grants of a memory. Administrators only.
func (s *MemoryService) SetPermissions(ctx context.Context, caller *models.User, id string, grants []models.Permission) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}
	if err := s.store.SetPermissions(ctx, id, grants); err != nil {
		return err
	}
	s.log.Info(ctx, "permissions replaced", "memory", id, "grants", len(grants), "by", caller.ID)
	return nil
}

// Rights returns the caller's effective rights on a memory.
func (s *MemoryService) Rights(ctx context.Context, caller *models.User, id string) (models.Rights, error) {
	return s.store.GetRights(ctx, id, caller.ID)
}
