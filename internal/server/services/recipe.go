package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/recipekeeper/internal/dbx"
	"github.com/dmitrijs2005/recipekeeper/internal/logging"
	"github.com/dmitrijs2005/recipekeeper/internal/server/models"
	"github.com/dmitrijs2005/recipekeeper/internal/server/repositories/recipes"
	"github.com/dmitrijs2005/recipekeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/recipekeeper/internal/server/validation"
)

// RecipeRequest is the input for create and update.
type RecipeRequest struct {
	Name            string `json:"name" validate:"notblank,min=3,max=200"`
	Description     string `json:"description" validate:"notblank"`
	Ingredients     string `json:"ingredients" validate:"notblank"`
	Instructions    string `json:"instructions" validate:"notblank"`
	PrepTimeMinutes int    `json:"prepTimeMinutes" validate:"gt=0"`
	Category        string `json:"category" validate:"notblank"`
	ImageURL        string `json:"imageUrl" validate:"notblank"`
}

func (r RecipeRequest) details() models.RecipeDetails {
	return models.RecipeDetails{
		Name:            r.Name,
		Description:     r.Description,
		Ingredients:     r.Ingredients,
		Instructions:    r.Instructions,
		PrepTimeMinutes: r.PrepTimeMinutes,
		Category:        r.Category,
		ImageURL:        r.ImageURL,
	}
}

// RecipeDTO is the client-facing shape of a recipe.
type RecipeDTO struct {
	ID              string    `json:"id"`
	CreatedDate     time.Time `json:"createdDate"`
	UpdatedDate     time.Time `json:"updatedDate"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	Ingredients     string    `json:"ingredients"`
	Instructions    string    `json:"instructions"`
	PrepTimeMinutes int       `json:"prepTimeMinutes"`
	Category        string    `json:"category"`
	ImageURL        string    `json:"imageUrl"`
}

func toDTO(r *models.Recipe) RecipeDTO {
	return RecipeDTO{
		ID:              r.ID,
		CreatedDate:     r.CreatedAt,
		UpdatedDate:     r.UpdatedAt,
		Name:            r.Name,
		Description:     r.Description,
		Ingredients:     r.Ingredients,
		Instructions:    r.Instructions,
		PrepTimeMinutes: r.PrepTimeMinutes,
		Category:        r.Category,
		ImageURL:        r.ImageURL,
	}
}

// RecipeService implements catalog CRUD. Every call uses its own unit of
// work, so the service itself is stateless and safe for concurrent use.
type RecipeService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger
}

func NewRecipeService(db *sql.DB, m repomanager.RepositoryManager, log logging.Logger) *RecipeService {
	return &RecipeService{
		db:          db,
		repomanager: m,
		log:         log.With("module", "recipes"),
	}
}

// Create validates req, builds the recipe and commits it.
func (s *RecipeService) Create(ctx context.Context, req RecipeRequest) (Outcome[*RecipeDTO], error) {
	if res := validation.Validate(req); !res.Valid() {
		return invalid[*RecipeDTO](res), nil
	}

	r, err := models.NewRecipe(req.details())
	if err != nil {
		return Outcome[*RecipeDTO]{}, err
	}

	uow := dbx.NewUnitOfWork(s.db)
	defer uow.Discard()

	if err := s.repomanager.Recipes(uow).Create(r); err != nil {
		return Outcome[*RecipeDTO]{}, err
	}
	if _, err := uow.Commit(ctx); err != nil {
		return Outcome[*RecipeDTO]{}, fmt.Errorf("create recipe: %w", err)
	}

	s.log.Info(ctx, "recipe created", "recipe_id", r.ID, "name", r.Name)

	dto := toDTO(r)
	return Outcome[*RecipeDTO]{Value: &dto}, nil
}

// GetByID returns nil, nil when the recipe does not exist.
func (s *RecipeService) GetByID(ctx context.Context, id string) (*RecipeDTO, error) {
	uow := dbx.NewUnitOfWork(s.db)
	defer uow.Discard()

	r, err := s.repomanager.Recipes(uow).GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, nil
	}

	dto := toDTO(r)
	return &dto, nil
}

// GetAll returns every recipe in insertion order. The slice is never nil.
func (s *RecipeService) GetAll(ctx context.Context) ([]RecipeDTO, error) {
	uow := dbx.NewUnitOfWork(s.db)
	defer uow.Discard()

	all, err := s.repomanager.Recipes(uow).GetAll(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]RecipeDTO, 0, len(all))
	for _, r := range all {
		out = append(out, toDTO(r))
	}
	return out, nil
}

// Update validates req before looking the recipe up. A missing recipe
// yields false and leaves the store untouched. A concurrent committed
// update surfaces as common.ErrVersionConflict.
func (s *RecipeService) Update(ctx context.Context, id string, req RecipeRequest) (Outcome[bool], error) {
	if res := validation.Validate(req); !res.Valid() {
		return invalid[bool](res), nil
	}

	uow := dbx.NewUnitOfWork(s.db)
	defer uow.Discard()
	repo := s.repomanager.Recipes(uow)

	r, err := repo.GetByID(ctx, id)
	if err != nil {
		return Outcome[bool]{}, err
	}
	if r == nil {
		s.log.Debug(ctx, "update of missing recipe", "recipe_id", id)
		return Outcome[bool]{Value: false}, nil
	}

	if err := r.UpdateDetails(req.details()); err != nil {
		return Outcome[bool]{}, err
	}
	if err := repo.Update(r); err != nil {
		return Outcome[bool]{}, err
	}
	if _, err := uow.Commit(ctx); err != nil {
		if errors.Is(err, recipes.ErrGone) {
			s.log.Debug(ctx, "recipe deleted during update", "recipe_id", r.ID)
			return Outcome[bool]{Value: false}, nil
		}
		return Outcome[bool]{}, fmt.Errorf("update recipe: %w", err)
	}

	s.log.Info(ctx, "recipe updated", "recipe_id", r.ID, "version", r.Version)
	return Outcome[bool]{Value: true}, nil
}

// Delete returns false when the recipe does not exist.
func (s *RecipeService) Delete(ctx context.Context, id string) (bool, error) {
	uow := dbx.NewUnitOfWork(s.db)
	defer uow.Discard()
	repo := s.repomanager.Recipes(uow)

	r, err := repo.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	if r == nil {
		return false, nil
	}

	if err := repo.Delete(r); err != nil {
		return false, err
	}
	if _, err := uow.Commit(ctx); err != nil {
		return false, fmt.Errorf("delete recipe: %w", err)
	}

	s.log.Info(ctx, "recipe deleted", "recipe_id", id)
	return true, nil
}
