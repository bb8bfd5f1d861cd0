// Package sessions caches login sessions in the local SQLite database, one
// per server URL.
package sessions

import (
	"context"

	"github.com/dmitrijs2005/recipekeeper/internal/client/models"
)

type Repository interface {
	// Get returns nil, nil when no session is cached for serverURL.
	Get(ctx context.Context, serverURL string) (*models.Session, error)
	Save(ctx context.Context, serverURL string, s *models.Session) error
	Delete(ctx context.Context, serverURL string) error
	Clear(ctx context.Context) error
}
