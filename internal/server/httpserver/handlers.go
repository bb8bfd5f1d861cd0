package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/recipekeeper/internal/common"
	"github.com/dmitrijs2005/recipekeeper/internal/server/services"
	"github.com/go-chi/chi/v5"
)

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, msgBadBody)
		return false
	}
	return true
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req services.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := s.svc.Auth.Register(r.Context(), req)
	if err != nil {
		s.writeInternal(w, r, err)
		return
	}
	if !res.Valid() {
		out := make([]IdentityError, 0, len(res))
		for _, e := range res {
			out = append(out, IdentityError{Code: e.Code, Description: e.Message})
		}
		writeJSON(w, http.StatusBadRequest, out)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "User registered successfully."})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req services.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	session, err := s.svc.Auth.Login(r.Context(), req)
	if err != nil {
		s.writeInternal(w, r, err)
		return
	}
	if session == nil {
		writeError(w, http.StatusBadRequest, msgLoginFailed)
		return
	}

	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleListRecipes(w http.ResponseWriter, r *http.Request) {
	all, err := s.svc.Recipes.GetAll(r.Context())
	if err != nil {
		s.writeInternal(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, all)
}

func (s *Server) handleGetRecipe(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	dto, err := s.svc.Recipes.GetByID(r.Context(), id)
	if err != nil {
		s.writeInternal(w, r, err)
		return
	}
	if dto == nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Recipe with ID %s was not found.", id))
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

func (s *Server) handleCreateRecipe(w http.ResponseWriter, r *http.Request) {
	var req services.RecipeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	out, err := s.svc.Recipes.Create(r.Context(), req)
	if err != nil {
		s.writeInternal(w, r, err)
		return
	}
	if !out.OK() {
		writeValidation(w, out.Errors)
		return
	}

	s.log.Info(r.Context(), "recipe created", "recipe_id", out.Value.ID, "user_id", subject(r))
	w.Header().Set("Location", "/api/v1/recipes/"+out.Value.ID)
	writeJSON(w, http.StatusCreated, out.Value)
}

func (s *Server) handleUpdateRecipe(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req services.RecipeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	out, err := s.svc.Recipes.Update(r.Context(), id, req)
	switch {
	case errors.Is(err, common.ErrVersionConflict):
		s.log.Warn(r.Context(), "recipe update conflict", "recipe_id", id, "user_id", subject(r))
		writeError(w, http.StatusConflict, msgVersionConflict)
		return
	case err != nil:
		s.writeInternal(w, r, err)
		return
	case !out.OK():
		writeValidation(w, out.Errors)
		return
	case !out.Value:
		writeError(w, http.StatusNotFound, fmt.Sprintf("Recipe with ID %s was not found for update.", id))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteRecipe(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ok, err := s.svc.Recipes.Delete(r.Context(), id)
	if err != nil {
		s.writeInternal(w, r, err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Recipe with ID %s was not found for deletion.", id))
		return
	}

	s.log.Info(r.Context(), "recipe deleted", "recipe_id", id, "user_id", subject(r))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePresignImage(w http.ResponseWriter, r *http.Request) {
	var req services.ImageUploadRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	out, err := s.svc.Images.PresignUpload(r.Context(), req)
	if err != nil {
		s.writeInternal(w, r, err)
		return
	}
	if !out.OK() {
		writeValidation(w, out.Errors)
		return
	}

	writeJSON(w, http.StatusOK, out.Value)
}
