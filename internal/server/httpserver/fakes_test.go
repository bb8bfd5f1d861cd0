package httpserver

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/recipekeeper/internal/server/auth"
	"github.com/dmitrijs2005/recipekeeper/internal/server/services"
	"github.com/dmitrijs2005/recipekeeper/internal/server/validation"
	"github.com/google/uuid"
)

// fakeAuth keeps users in memory and issues real tokens.
type fakeAuth struct {
	mu     sync.Mutex
	tokens *auth.TokenIssuer
	users  map[string]services.RegisterRequest // by lower-case email
	ids    map[string]string
	err    error
}

func newFakeAuth(tokens *auth.TokenIssuer) *fakeAuth {
	return &fakeAuth{tokens: tokens, users: map[string]services.RegisterRequest{}, ids: map[string]string{}}
}

func (f *fakeAuth) Register(_ context.Context, req services.RegisterRequest) (validation.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	if res := validation.Validate(req); !res.Valid() {
		return res, nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	key := strings.ToLower(req.Email)
	if _, ok := f.users[key]; ok {
		return validation.Fail("email", services.CodeEmailInUse, "This email is already in use."), nil
	}
	f.users[key] = req
	f.ids[key] = uuid.NewString()
	return nil, nil
}

func (f *fakeAuth) Login(_ context.Context, req services.LoginRequest) (*services.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	key := strings.ToLower(req.Email)
	u, ok := f.users[key]
	id := f.ids[key]
	f.mu.Unlock()
	if !ok || u.Password != req.Password {
		return nil, nil
	}

	tok, err := f.tokens.Issue(auth.Subject{UserID: id, UserName: u.UserName, Email: u.Email})
	if err != nil {
		return nil, err
	}
	return &services.Session{
		UserID: id, UserName: u.UserName, Email: u.Email,
		Token: tok.Value, Expiration: tok.ExpiresAt, Roles: []string{},
	}, nil
}

// fakeRecipes is an in-memory catalog. conflict makes the next Update fail
// with a version conflict; panicOn makes GetAll panic.
type fakeRecipes struct {
	mu       sync.Mutex
	order    []string
	byID     map[string]services.RecipeDTO
	err      error
	conflict error
	panicOn  bool
}

func newFakeRecipes() *fakeRecipes {
	return &fakeRecipes{byID: map[string]services.RecipeDTO{}}
}

func (f *fakeRecipes) Create(_ context.Context, req services.RecipeRequest) (services.Outcome[*services.RecipeDTO], error) {
	if f.err != nil {
		return services.Outcome[*services.RecipeDTO]{}, f.err
	}
	if res := validation.Validate(req); !res.Valid() {
		return services.Outcome[*services.RecipeDTO]{Errors: res}, nil
	}
	now := time.Now().UTC()
	dto := services.RecipeDTO{
		ID: uuid.NewString(), CreatedDate: now, UpdatedDate: now,
		Name: req.Name, Description: req.Description, Ingredients: req.Ingredients,
		Instructions: req.Instructions, PrepTimeMinutes: req.PrepTimeMinutes,
		Category: req.Category, ImageURL: req.ImageURL,
	}
	f.mu.Lock()
	f.byID[dto.ID] = dto
	f.order = append(f.order, dto.ID)
	f.mu.Unlock()
	return services.Outcome[*services.RecipeDTO]{Value: &dto}, nil
}

func (f *fakeRecipes) GetByID(_ context.Context, id string) (*services.RecipeDTO, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	dto, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	return &dto, nil
}

func (f *fakeRecipes) GetAll(context.Context) ([]services.RecipeDTO, error) {
	if f.panicOn {
		panic("boom")
	}
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []services.RecipeDTO{}
	for _, id := range f.order {
		if dto, ok := f.byID[id]; ok {
			out = append(out, dto)
		}
	}
	return out, nil
}

func (f *fakeRecipes) Update(_ context.Context, id string, req services.RecipeRequest) (services.Outcome[bool], error) {
	if res := validation.Validate(req); !res.Valid() {
		return services.Outcome[bool]{Errors: res}, nil
	}
	if f.conflict != nil {
		return services.Outcome[bool]{}, f.conflict
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	dto, ok := f.byID[id]
	if !ok {
		return services.Outcome[bool]{Value: false}, nil
	}
	dto.Name = req.Name
	dto.UpdatedDate = time.Now().UTC()
	f.byID[id] = dto
	return services.Outcome[bool]{Value: true}, nil
}

func (f *fakeRecipes) Delete(_ context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return false, nil
	}
	delete(f.byID, id)
	return true, nil
}

type fakeImages struct{}

func (fakeImages) PresignUpload(_ context.Context, req services.ImageUploadRequest) (services.Outcome[*services.ImageUpload], error) {
	if res := validation.Validate(req); !res.Valid() {
		return services.Outcome[*services.ImageUpload]{Errors: res}, nil
	}
	key := "images/2026/01/01/" + uuid.NewString() + ".png"
	return services.Outcome[*services.ImageUpload]{Value: &services.ImageUpload{
		Key:       key,
		UploadURL: "http://minio/recipes/" + key + "?X-Amz-Signature=x",
		ImageURL:  "http://minio/recipes/" + key,
		ExpiresAt: time.Now().Add(15 * time.Minute),
	}}, nil
}
