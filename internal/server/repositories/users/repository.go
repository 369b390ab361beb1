// Package users persists account records.
package users

import (
	"context"

	"github.com/dmitrijs2005/remotetm/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	Update(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, id string, hash string) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}
