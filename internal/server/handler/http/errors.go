package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/atinyakov/GradeBook/internal/apperr"
)

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError translates a typed failure into a user-visible outcome.
// Raw storage errors never leak to the client; anything untyped becomes
// a generic internal failure.
func writeError(w http.ResponseWriter, err error) {
	var vErr *apperr.ValidationError
	var sErr *apperr.SchemaError

	switch {
	case errors.As(err, &vErr):
		http.Error(w, vErr.Error(), http.StatusBadRequest)
	case errors.As(err, &sErr):
		http.Error(w, sErr.Error(), http.StatusBadRequest)
	case errors.Is(err, apperr.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, apperr.ErrDuplicate):
		http.Error(w, "already exists", http.StatusBadRequest)
	case errors.Is(err, apperr.ErrUnauthorized):
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
