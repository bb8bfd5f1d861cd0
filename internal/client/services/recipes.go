package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/recipekeeper/internal/client/client"
	"github.com/dmitrijs2005/recipekeeper/internal/client/models"
	"github.com/dmitrijs2005/recipekeeper/internal/filex"
)

type RecipeService interface {
	List(ctx context.Context) ([]*models.Recipe, error)
	Get(ctx context.Context, id string) (*models.Recipe, error)
	Create(ctx context.Context, in models.RecipeInput) (*models.Recipe, error)
	Update(ctx context.Context, id string, in models.RecipeInput) error
	Delete(ctx context.Context, id string) error
	// UploadImage stores the image file at path and returns its public URL.
	UploadImage(ctx context.Context, path string) (string, error)
}

type recipeService struct {
	client client.Client
	auth   AuthService
}

func NewRecipeService(c client.Client, auth AuthService) RecipeService {
	return &recipeService{client: c, auth: auth}
}

// authorized runs fn with the cached token. A token the server no longer
// accepts is forgotten so the next command asks for a fresh login.
func (r *recipeService) authorized(ctx context.Context, fn func(token string) error) error {
	s, err := r.auth.Session(ctx)
	if err != nil {
		return err
	}
	err = fn(s.Token)
	if errors.Is(err, client.ErrUnauthorized) {
		if lerr := r.auth.Logout(ctx); lerr != nil {
			return errors.Join(err, lerr)
		}
		return errors.Join(ErrNotLoggedIn, err)
	}
	return err
}

func (r *recipeService) List(ctx context.Context) ([]*models.Recipe, error) {
	var out []*models.Recipe
	err := r.authorized(ctx, func(token string) error {
		var err error
		out, err = r.client.ListRecipes(ctx, token)
		return err
	})
	return out, err
}

func (r *recipeService) Get(ctx context.Context, id string) (*models.Recipe, error) {
	var out *models.Recipe
	err := r.authorized(ctx, func(token string) error {
		var err error
		out, err = r.client.GetRecipe(ctx, token, id)
		return err
	})
	return out, err
}

func (r *recipeService) Create(ctx context.Context, in models.RecipeInput) (*models.Recipe, error) {
	var out *models.Recipe
	err := r.authorized(ctx, func(token string) error {
		var err error
		out, err = r.client.CreateRecipe(ctx, token, in)
		return err
	})
	return out, err
}

func (r *recipeService) Update(ctx context.Context, id string, in models.RecipeInput) error {
	return r.authorized(ctx, func(token string) error {
		return r.client.UpdateRecipe(ctx, token, id, in)
	})
}

func (r *recipeService) Delete(ctx context.Context, id string) error {
	return r.authorized(ctx, func(token string) error {
		return r.client.DeleteRecipe(ctx, token, id)
	})
}

func (r *recipeService) UploadImage(ctx context.Context, path string) (string, error) {
	data, contentType, err := filex.ReadImage(path)
	if err != nil {
		return "", err
	}

	var slot *models.ImageUpload
	err = r.authorized(ctx, func(token string) error {
		var err error
		slot, err = r.client.PresignImage(ctx, token, contentType)
		return err
	})
	if err != nil {
		return "", err
	}

	if err := r.client.UploadImage(ctx, slot.UploadURL, contentType, data); err != nil {
		return "", err
	}
	return slot.ImageURL, nil
}
