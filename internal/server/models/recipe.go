package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// now is a seam for tests.
var now = func() time.Time { return time.Now().UTC() }

// RecipeDetails groups the user-editable fields of a recipe.
type RecipeDetails struct {
	Name            string
	Description     string
	Ingredients     string
	Instructions    string
	PrepTimeMinutes int
	Category        string
	ImageURL        string
}

// Recipe is a catalog entry. It can only be built through NewRecipe and
// changed through UpdateDetails, both of which enforce its invariants.
//
// Version is bumped by the repository on every committed update and is used
// to detect lost updates.
type Recipe struct {
	RecipeDetails
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time
	Version   int64
}

// InvariantError reports the first field that violates a recipe invariant.
type InvariantError struct {
	Field  string
	Reason string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("recipe: %s %s", e.Field, e.Reason)
}

// NewRecipe validates d and returns a recipe with a fresh id and UTC
// timestamps.
func NewRecipe(d RecipeDetails) (*Recipe, error) {
	if err := d.check(); err != nil {
		return nil, err
	}
	ts := now()
	return &Recipe{
		RecipeDetails: d,
		ID:            uuid.NewString(),
		CreatedAt:     ts,
		UpdatedAt:     ts,
		Version:       1,
	}, nil
}

// UpdateDetails replaces every editable field. On failure the recipe is left
// unchanged.
func (r *Recipe) UpdateDetails(d RecipeDetails) error {
	if err := d.check(); err != nil {
		return err
	}
	r.RecipeDetails = d
	r.UpdatedAt = now()
	return nil
}

func (d RecipeDetails) check() error {
	const empty = "must not be empty"
	switch {
	case blank(d.Name):
		return &InvariantError{Field: "name", Reason: empty}
	case blank(d.Description):
		return &InvariantError{Field: "description", Reason: empty}
	case blank(d.Ingredients):
		return &InvariantError{Field: "ingredients", Reason: empty}
	case blank(d.Instructions):
		return &InvariantError{Field: "instructions", Reason: empty}
	case d.PrepTimeMinutes <= 0:
		return &InvariantError{Field: "prepTimeMinutes", Reason: "must be greater than zero"}
	case blank(d.Category):
		return &InvariantError{Field: "category", Reason: empty}
	case blank(d.ImageURL):
		return &InvariantError{Field: "imageUrl", Reason: empty}
	}
	return nil
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }
