package httpserver

import (
	"encoding/json"
	"net/http"
	"runtime/debug"

	"github.com/dmitrijs2005/recipekeeper/internal/server/validation"
)

const (
	msgValidationFailed = "One or more validation errors occurred."
	msgInternal         = "An internal server error occurred."
	msgLoginFailed      = "Login attempt failed. Check your credentials."
	msgBadBody          = "Request body is not valid JSON."
	msgVersionConflict  = "The recipe was modified by another request. Reload it and try again."
)

// ErrorResponse is the body of every non-2xx reply except a rejected
// registration.
type ErrorResponse struct {
	StatusCode int      `json:"statusCode"`
	Message    string   `json:"message"`
	Errors     []string `json:"errors,omitempty"`
	StackTrace string   `json:"stackTrace,omitempty"`
}

// IdentityError is one entry of the 400 body returned by register.
type IdentityError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, message string, errs ...string) {
	writeJSON(w, status, ErrorResponse{StatusCode: status, Message: message, Errors: errs})
}

func writeValidation(w http.ResponseWriter, res validation.Result) {
	msgs := make([]string, 0, len(res))
	for _, e := range res {
		msgs = append(msgs, e.Message)
	}
	writeError(w, http.StatusBadRequest, msgValidationFailed, msgs...)
}

// writeInternal logs err and replies 500. Details leave the process only in
// development mode.
func (s *Server) writeInternal(w http.ResponseWriter, r *http.Request, err error) {
	s.log.Error(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err.Error())

	body := ErrorResponse{StatusCode: http.StatusInternalServerError, Message: msgInternal}
	if s.development {
		body.Message = err.Error()
		body.StackTrace = string(debug.Stack())
	}
	writeJSON(w, http.StatusInternalServerError, body)
}
