package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/dmitrijs2005/recipekeeper/internal/client/client"
	"github.com/dmitrijs2005/recipekeeper/internal/client/models"
	"github.com/dmitrijs2005/recipekeeper/internal/client/repositories/sessions"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

const serverURL = "http://127.0.0.1:8080"

var now = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func setupRepo(t *testing.T) *sessions.SQLiteRepository {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE sessions (
  server_url TEXT PRIMARY KEY,
  user_id    TEXT NOT NULL,
  user_name  TEXT NOT NULL,
  email      TEXT NOT NULL,
  token      TEXT NOT NULL,
  roles      TEXT NOT NULL DEFAULT '',
  expires_at TEXT NOT NULL
);`)
	require.NoError(t, err)
	return sessions.NewSQLiteRepository(db)
}

// fakeClient implements client.Client for service tests.
type fakeClient struct {
	RegisterErr  error
	LastRegister client.RegisterRequest

	LoginRet      *models.Session
	LoginErr      error
	LastLoginUser string
	LastLoginPass string

	Recipes   []*models.Recipe
	RecipeErr error
	LastToken string
	LastID    string
	LastInput models.RecipeInput

	PresignErr      error
	LastContentType string
	UploadErr       error
	Uploaded        []byte
	LastUploadURL   string
}

func (f *fakeClient) Register(_ context.Context, r client.RegisterRequest) error {
	f.LastRegister = r
	return f.RegisterErr
}

func (f *fakeClient) Login(_ context.Context, email, password string) (*models.Session, error) {
	f.LastLoginUser, f.LastLoginPass = email, password
	return f.LoginRet, f.LoginErr
}

func (f *fakeClient) ListRecipes(_ context.Context, token string) ([]*models.Recipe, error) {
	f.LastToken = token
	return f.Recipes, f.RecipeErr
}

func (f *fakeClient) GetRecipe(_ context.Context, token, id string) (*models.Recipe, error) {
	f.LastToken, f.LastID = token, id
	if f.RecipeErr != nil {
		return nil, f.RecipeErr
	}
	return &models.Recipe{ID: id}, nil
}

func (f *fakeClient) CreateRecipe(_ context.Context, token string, in models.RecipeInput) (*models.Recipe, error) {
	f.LastToken, f.LastInput = token, in
	if f.RecipeErr != nil {
		return nil, f.RecipeErr
	}
	return &models.Recipe{ID: "new", Name: in.Name}, nil
}

func (f *fakeClient) UpdateRecipe(_ context.Context, token, id string, in models.RecipeInput) error {
	f.LastToken, f.LastID, f.LastInput = token, id, in
	return f.RecipeErr
}

func (f *fakeClient) DeleteRecipe(_ context.Context, token, id string) error {
	f.LastToken, f.LastID = token, id
	return f.RecipeErr
}

func validSession(token string) *models.Session {
	return &models.Session{
		UserID: "u-1", UserName: "chef1", Email: "a@b.com", Token: token,
		Expiration: now.Add(time.Hour), Roles: []string{},
	}
}

func newAuth(fc *fakeClient, repo sessions.Repository) *authService {
	a := NewAuthService(fc, repo, serverURL).(*authService)
	a.now = func() time.Time { return now }
	return a
}

func (f *fakeClient) PresignImage(_ context.Context, token, contentType string) (*models.ImageUpload, error) {
	f.LastToken, f.LastContentType = token, contentType
	if f.PresignErr != nil {
		return nil, f.PresignErr
	}
	return &models.ImageUpload{
		Key:       "2026/10/19/a.png",
		UploadURL: "http://s3/recipes/2026/10/19/a.png?sig=1",
		ImageURL:  "http://cdn/recipes/2026/10/19/a.png",
	}, nil
}

func (f *fakeClient) UploadImage(_ context.Context, uploadURL, _ string, data []byte) error {
	f.LastUploadURL, f.Uploaded = uploadURL, data
	return f.UploadErr
}
