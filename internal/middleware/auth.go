// Package middleware provides HTTP middlewares for authentication and logging.
package middleware

import (
	"context"
	"net/http"
	"strings"
)

type ctxKey string

const userKey ctxKey = "user"

// bearerPrefix is the expected shape of the Authorization header value.
const bearerPrefix = "bearer "

// TokenResolver resolves a bearer token to the identity that owns it.
type TokenResolver interface {
	// Resolve returns the owning user identity, or false for unknown tokens.
	Resolve(token string) (int64, bool)
}

// BearerAuth returns a middleware that enforces session-token authentication.
//
// It expects an Authorization header shaped as "Bearer <token>". A missing
// header, a header of the wrong shape, and a token the registry does not
// know are all rejected identically with 401 before any downstream handler
// runs. On success the owning user identity is stored in the request
// context for handlers to read via UserIDFromContext.
func BearerAuth(sessions TokenResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := BearerToken(r)
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			userID, ok := sessions.Resolve(token)
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), userKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerToken extracts the token from the request's Authorization header.
// It reports false when the header is absent or not bearer-shaped.
func BearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	if len(auth) <= len(bearerPrefix) || !strings.EqualFold(auth[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}
	return auth[len(bearerPrefix):], true
}

// UserIDFromContext extracts the authenticated user identity from the
// request context. Returns false if no identity was stored, which only
// happens outside the BearerAuth middleware.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userKey).(int64)
	return id, ok
}
