// Package recipes persists the recipe catalog.
//
// Reads hit committed state directly. Writes are staged on the unit of work
// the repository is bound to and reach the database only when that unit of
// work commits. Create and Delete never report a missing row; callers check
// existence first. Update fails with ErrGone when the row was deleted after
// it was read.
package recipes

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/recipekeeper/internal/server/models"
)

// ErrGone is returned by a staged Update whose row was deleted before the
// unit of work committed.
var ErrGone = errors.New("recipe gone")

type Repository interface {
	// GetByID returns nil, nil when no recipe has the id.
	GetByID(ctx context.Context, id string) (*models.Recipe, error)
	// GetAll returns recipes in insertion order.
	GetAll(ctx context.Context) ([]*models.Recipe, error)
	Exists(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context) (int, error)

	Create(recipe *models.Recipe) error
	Update(recipe *models.Recipe) error
	Delete(recipe *models.Recipe) error
}
