// Package users persists identities in PostgreSQL.
package users

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/recipekeeper/internal/server/models"
)

var (
	ErrDuplicateEmail    = errors.New("email already registered")
	ErrDuplicateUserName = errors.New("username already registered")
)

// Repository stores identities. Lookups return common.ErrorNotFound when no
// row matches.
type Repository interface {
	Create(ctx context.Context, identity *models.Identity) error
	GetByID(ctx context.Context, id string) (*models.Identity, error)
	GetByEmail(ctx context.Context, email string) (*models.Identity, error)
	GetByUserName(ctx context.Context, userName string) (*models.Identity, error)
	UpdateLockout(ctx context.Context, id string, failedCount int, lockoutEnd *time.Time) error
}
