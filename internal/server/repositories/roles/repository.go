// Package roles reads the role names granted to identities.
package roles

import "context"

type Repository interface {
	// ListForUser returns role names in alphabetical order. A user without
	// roles yields an empty, non-nil slice.
	ListForUser(ctx context.Context, userID string) ([]string, error)
}
