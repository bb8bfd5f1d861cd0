package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/recipekeeper/internal/client/models"
)

type fakeUser struct {
	name, password string
}

// fakeAPI is an in-memory stand-in for the recipe server's REST surface.
type fakeAPI struct {
	mu      sync.Mutex
	users   map[string]fakeUser
	recipes map[string]*models.Recipe
	nextID  int
	revoked bool
	lastIn  models.RecipeInput
	base    string
	objects map[string][]byte
}

func newFakeAPI(t *testing.T) (*fakeAPI, *httptest.Server) {
	t.Helper()
	f := &fakeAPI{users: map[string]fakeUser{}, recipes: map[string]*models.Recipe{}, objects: map[string][]byte{}}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/register", f.register)
	mux.HandleFunc("POST /api/v1/auth/login", f.login)
	mux.HandleFunc("GET /api/v1/recipes", f.authorized(f.list))
	mux.HandleFunc("POST /api/v1/recipes", f.authorized(f.create))
	mux.HandleFunc("GET /api/v1/recipes/{id}", f.authorized(f.get))
	mux.HandleFunc("PUT /api/v1/recipes/{id}", f.authorized(f.update))
	mux.HandleFunc("DELETE /api/v1/recipes/{id}", f.authorized(f.delete))
	mux.HandleFunc("POST /api/v1/recipes/images", f.authorized(f.presign))
	mux.HandleFunc("PUT /storage/{key}", f.putObject)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	f.base = srv.URL
	return f, srv
}

func reply(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func replyError(w http.ResponseWriter, status int, msg string, errs ...string) {
	reply(w, status, map[string]any{"statusCode": status, "message": msg, "errors": errs})
}

func (f *fakeAPI) register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserName, Email, Password, ConfirmPassword string
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	f.mu.Lock()
	defer f.mu.Unlock()

	var errs []map[string]string
	if _, ok := f.users[strings.ToLower(req.Email)]; ok {
		errs = append(errs, map[string]string{"code": "DuplicateEmail", "description": fmt.Sprintf("Email '%s' is already taken.", req.Email)})
	}
	if req.Password != req.ConfirmPassword {
		errs = append(errs, map[string]string{"code": "PasswordMismatch", "description": "The password and confirmation password do not match."})
	}
	if len(errs) > 0 {
		reply(w, http.StatusBadRequest, errs)
		return
	}
	f.users[strings.ToLower(req.Email)] = fakeUser{name: req.UserName, password: req.Password}
	reply(w, http.StatusOK, map[string]string{"message": "User registered successfully."})
}

func (f *fakeAPI) login(w http.ResponseWriter, r *http.Request) {
	var req struct{ Email, Password string }
	_ = json.NewDecoder(r.Body).Decode(&req)

	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[strings.ToLower(req.Email)]
	if !ok || u.password != req.Password {
		replyError(w, http.StatusBadRequest, "Login attempt failed. Check your credentials.")
		return
	}
	f.revoked = false
	reply(w, http.StatusOK, models.Session{
		UserID: "u-1", UserName: u.name, Email: req.Email, Token: "tok-" + u.name,
		Expiration: time.Now().Add(time.Hour).UTC(), Roles: []string{},
	})
}

func (f *fakeAPI) authorized(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		revoked := f.revoked
		f.mu.Unlock()

		if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer tok-") {
			replyError(w, http.StatusUnauthorized, "Authorization header is missing.")
			return
		}
		if revoked {
			replyError(w, http.StatusUnauthorized, "Token expired.")
			return
		}
		next(w, r)
	}
}

func (f *fakeAPI) list(w http.ResponseWriter, _ *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]*models.Recipe, 0, len(f.recipes))
	for i := 1; i <= f.nextID; i++ {
		if r, ok := f.recipes[fmt.Sprintf("r%d", i)]; ok {
			out = append(out, r)
		}
	}
	reply(w, http.StatusOK, out)
}

func (f *fakeAPI) get(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	rec, ok := f.recipes[r.PathValue("id")]
	if !ok {
		replyError(w, http.StatusNotFound, "Recipe was not found.")
		return
	}
	reply(w, http.StatusOK, rec)
}

func (f *fakeAPI) create(w http.ResponseWriter, r *http.Request) {
	var in models.RecipeInput
	_ = json.NewDecoder(r.Body).Decode(&in)

	f.mu.Lock()
	defer f.mu.Unlock()

	f.lastIn = in
	if strings.TrimSpace(in.Name) == "" {
		replyError(w, http.StatusBadRequest, "One or more validation errors occurred.", "The Name field is required.")
		return
	}
	f.nextID++
	rec := fromInput(fmt.Sprintf("r%d", f.nextID), in)
	f.recipes[rec.ID] = rec
	reply(w, http.StatusCreated, rec)
}

func (f *fakeAPI) update(w http.ResponseWriter, r *http.Request) {
	var in models.RecipeInput
	_ = json.NewDecoder(r.Body).Decode(&in)

	f.mu.Lock()
	defer f.mu.Unlock()

	f.lastIn = in
	id := r.PathValue("id")
	if _, ok := f.recipes[id]; !ok {
		replyError(w, http.StatusNotFound, "Recipe was not found for update.")
		return
	}
	f.recipes[id] = fromInput(id, in)
	w.WriteHeader(http.StatusNoContent)
}

func (f *fakeAPI) delete(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := r.PathValue("id")
	if _, ok := f.recipes[id]; !ok {
		replyError(w, http.StatusNotFound, "Recipe was not found for deletion.")
		return
	}
	delete(f.recipes, id)
	w.WriteHeader(http.StatusNoContent)
}

func (f *fakeAPI) presign(w http.ResponseWriter, r *http.Request) {
	var req struct{ ContentType string }
	_ = json.NewDecoder(r.Body).Decode(&req)
	if req.ContentType != "image/png" {
		replyError(w, http.StatusBadRequest, "One or more validation errors occurred.", "unsupported content type")
		return
	}
	reply(w, http.StatusOK, models.ImageUpload{
		Key:       "a.png",
		UploadURL: f.base + "/storage/a.png?X-Amz-Signature=abc",
		ImageURL:  "http://cdn.example/recipes/a.png",
		ExpiresAt: time.Now().Add(15 * time.Minute),
	})
}

func (f *fakeAPI) putObject(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("X-Amz-Signature") == "" || r.Header.Get("Content-Type") != "image/png" {
		w.WriteHeader(http.StatusForbidden)
		return
	}
	data, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	f.objects[r.PathValue("key")] = data
	f.mu.Unlock()
	w.WriteHeader(http.StatusOK)
}

func (f *fakeAPI) lastInput() models.RecipeInput {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastIn
}

func (f *fakeAPI) object(key string) []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.objects[key]
}

func fromInput(id string, in models.RecipeInput) *models.Recipe {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	return &models.Recipe{
		ID: id, CreatedDate: now, UpdatedDate: now,
		Name: in.Name, Description: in.Description, Ingredients: in.Ingredients,
		Instructions: in.Instructions, PrepTimeMinutes: in.PrepTimeMinutes,
		Category: in.Category, ImageURL: in.ImageURL,
	}
}
