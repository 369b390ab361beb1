// Package memories persists translation-memory metadata.
package memories

import (
	"context"

	"github.com/dmitrijs2005/remotetm/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, memory *models.Memory) error
	GetByID(ctx context.Context, id string) (*models.Memory, error)
	List(ctx context.Context) ([]*models.Memory, error)
	Delete(ctx context.Context, id string) error
	CountByOwner(ctx context.Context, owner string) (int64, error)
}
