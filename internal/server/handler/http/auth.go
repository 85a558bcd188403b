// Package http provides HTTP handlers for user authentication,
// including registration, login, and logout.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/atinyakov/GradeBook/internal/apperr"
	"github.com/atinyakov/GradeBook/internal/middleware"
)

// AuthService defines the interface for credential operations
// required by the HTTP handlers.
type AuthService interface {
	// Register creates a new credential and returns its identity.
	Register(ctx context.Context, username, password string) (int64, error)
	// Verify checks a username/password pair and returns the owning identity.
	Verify(ctx context.Context, username, password string) (int64, error)
}

// SessionIssuer is the slice of the session registry the auth handlers use.
type SessionIssuer interface {
	// Issue generates a fresh token owned by the given identity.
	Issue(userID int64) (string, error)
	// Revoke removes the token's mapping; unknown tokens are a no-op.
	Revoke(token string)
}

// AuthHandler handles HTTP requests for registration, login, and logout.
type AuthHandler struct {
	// AuthService performs the underlying credential operations.
	AuthService AuthService
	// Sessions issues and revokes bearer tokens.
	Sessions SessionIssuer
}

// authRequest represents the JSON payload for registration and login.
type authRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register handles POST /auth/register.
// It expects a JSON body with non-empty "username" and "password" fields.
// A taken username fails with 400; the response never distinguishes why
// verification might later fail.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req authRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" || req.Password == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	id, err := h.AuthService.Register(r.Context(), req.Username, req.Password)
	if errors.Is(err, apperr.ErrDuplicate) {
		http.Error(w, "username_taken", http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "user_id": id})
}

// Login handles POST /auth/login.
// On a successful credential check it issues a fresh session token owned
// by the user. Unknown usernames and wrong passwords produce the same
// 401 response.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req authRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" || req.Password == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	id, err := h.AuthService.Verify(r.Context(), req.Username, req.Password)
	if errors.Is(err, apperr.ErrUnauthorized) {
		http.Error(w, "invalid_credentials", http.StatusUnauthorized)
		return
	}
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	token, err := h.Sessions.Issue(id)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "token": token, "user_id": id})
}

// Logout handles POST /auth/logout.
// It revokes the presented bearer token if any. A missing or malformed
// header still answers ok: logging out twice is harmless.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if token, ok := middleware.BearerToken(r); ok {
		h.Sessions.Revoke(token)
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}
