// Package permissions persists per-user grants on memories.
package permissions

import (
	"context"

	"github.com/dmitrijs2005/remotetm/internal/server/models"
)

type Repository interface {
	Get(ctx context.Context, memoryID, userID string) (*models.Permission, error)
	ListByMemory(ctx context.Context, memoryID string) ([]*models.Permission, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Permission, error)
	// ListForActiveUsers returns one row per active user for memoryID,
	// with all-false rights where no grant is stored, sorted by user ID.
	ListForActiveUsers(ctx context.Context, memoryID string) ([]*models.Permission, error)
	Insert(ctx context.Context, p *models.Permission) error
	DeleteByMemory(ctx context.Context, memoryID string) (int64, error)
	DeleteByUser(ctx context.Context, userID string) (int64, error)
}
