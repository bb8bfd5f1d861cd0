package models

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDetails() RecipeDetails {
	return RecipeDetails{
		Name:            "Chocolate cake",
		Description:     "Classic",
		Ingredients:     "Flour, sugar, cocoa",
		Instructions:    "Mix and bake",
		PrepTimeMinutes: 60,
		Category:        "Dessert",
		ImageURL:        "https://img/cake.png",
	}
}

func withClock(t *testing.T, ts ...time.Time) {
	t.Helper()
	orig := now
	i := 0
	now = func() time.Time {
		v := ts[i]
		if i < len(ts)-1 {
			i++
		}
		return v
	}
	t.Cleanup(func() { now = orig })
}

func TestNewRecipe_OK(t *testing.T) {
	ts := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	withClock(t, ts)

	r, err := NewRecipe(validDetails())
	require.NoError(t, err)
	assert.NotEmpty(t, r.ID)
	assert.Equal(t, validDetails(), r.RecipeDetails)
	assert.Equal(t, ts, r.CreatedAt)
	assert.Equal(t, ts, r.UpdatedAt)
	assert.Equal(t, int64(1), r.Version)
}

func TestNewRecipe_UniqueIDs(t *testing.T) {
	a, err := NewRecipe(validDetails())
	require.NoError(t, err)
	b, err := NewRecipe(validDetails())
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestNewRecipe_Invariants(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RecipeDetails)
		field  string
	}{
		{"blank name", func(d *RecipeDetails) { d.Name = "   " }, "name"},
		{"blank description", func(d *RecipeDetails) { d.Description = "" }, "description"},
		{"blank ingredients", func(d *RecipeDetails) { d.Ingredients = "\t" }, "ingredients"},
		{"blank instructions", func(d *RecipeDetails) { d.Instructions = "" }, "instructions"},
		{"zero prep time", func(d *RecipeDetails) { d.PrepTimeMinutes = 0 }, "prepTimeMinutes"},
		{"negative prep time", func(d *RecipeDetails) { d.PrepTimeMinutes = -5 }, "prepTimeMinutes"},
		{"blank category", func(d *RecipeDetails) { d.Category = " " }, "category"},
		{"blank image", func(d *RecipeDetails) { d.ImageURL = "" }, "imageUrl"},
		{"first failing field wins", func(d *RecipeDetails) { d.Name = ""; d.ImageURL = "" }, "name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDetails()
			tt.mutate(&d)

			r, err := NewRecipe(d)
			require.Nil(t, r)

			var ie *InvariantError
			require.True(t, errors.As(err, &ie))
			assert.Equal(t, tt.field, ie.Field)
		})
	}
}

func TestUpdateDetails(t *testing.T) {
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	updated := created.Add(time.Hour)
	withClock(t, created, updated)

	r, err := NewRecipe(validDetails())
	require.NoError(t, err)

	t.Run("success refreshes updated only", func(t *testing.T) {
		d := validDetails()
		d.Name = "Carrot cake"
		d.PrepTimeMinutes = 45

		require.NoError(t, r.UpdateDetails(d))
		assert.Equal(t, d, r.RecipeDetails)
		assert.Equal(t, created, r.CreatedAt)
		assert.Equal(t, updated, r.UpdatedAt)
	})

	t.Run("failure leaves entity untouched", func(t *testing.T) {
		before := *r
		d := validDetails()
		d.Category = ""

		err := r.UpdateDetails(d)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "category")
		assert.Equal(t, before, *r)
	})
}

func TestIdentity_IsLockedOut(t *testing.T) {
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	future := ts.Add(time.Minute)
	past := ts.Add(-time.Minute)

	assert.False(t, (&Identity{LockoutEnabled: true}).IsLockedOut(ts))
	assert.True(t, (&Identity{LockoutEnabled: true, LockoutEnd: &future}).IsLockedOut(ts))
	assert.False(t, (&Identity{LockoutEnabled: true, LockoutEnd: &past}).IsLockedOut(ts))
	assert.False(t, (&Identity{LockoutEnabled: false, LockoutEnd: &future}).IsLockedOut(ts))
}
