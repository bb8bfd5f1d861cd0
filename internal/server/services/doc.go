// Package services contains server-side business logic.
//
// AuthService registers identities and opens sessions. RecipeService runs
// the validate, mutate, commit, project pipeline for the recipe catalog.
// ImageService hands out presigned upload URLs for recipe images.
//
// Expected failures (invalid input, duplicates, missing records, rejected
// credentials) are plain return values. The error return is reserved for
// infrastructure failures.
package services

import "github.com/dmitrijs2005/recipekeeper/internal/server/validation"

// Error codes for business rule conflicts.
const (
	CodeEmailInUse    = "EmailInUse"
	CodeUserNameInUse = "UserNameInUse"
)

// Outcome carries either a value or the validation errors that prevented
// producing it.
type Outcome[T any] struct {
	Value  T
	Errors validation.Result
}

// OK reports whether the operation passed validation.
func (o Outcome[T]) OK() bool { return o.Errors.Valid() }

func invalid[T any](res validation.Result) Outcome[T] {
	return Outcome[T]{Errors: res}
}
