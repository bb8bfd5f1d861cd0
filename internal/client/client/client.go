package client

import (
	"context"

	"github.com/dmitrijs2005/recipekeeper/internal/client/models"
)

// RegisterRequest is the body of POST /api/v1/auth/register.
type RegisterRequest struct {
	UserName        string `json:"userName"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type Client interface {
	Register(ctx context.Context, req RegisterRequest) error
	Login(ctx context.Context, email, password string) (*models.Session, error)
	ListRecipes(ctx context.Context, token string) ([]*models.Recipe, error)
	GetRecipe(ctx context.Context, token, id string) (*models.Recipe, error)
	CreateRecipe(ctx context.Context, token string, in models.RecipeInput) (*models.Recipe, error)
	UpdateRecipe(ctx context.Context, token, id string, in models.RecipeInput) error
	DeleteRecipe(ctx context.Context, token, id string) error
	PresignImage(ctx context.Context, token, contentType string) (*models.ImageUpload, error)
	UploadImage(ctx context.Context, uploadURL, contentType string, data []byte) error
}
