// Package session holds the in-memory mapping from bearer tokens to
// authenticated user identities. Tokens live for the process lifetime:
// nothing is persisted, so a restart forgets every session.
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// tokenSize is the length in bytes of raw token material before encoding.
const tokenSize = 32

// entry records the owner of a token and when the token was last used,
// so the optional sweeper can evict idle sessions.
type entry struct {
	userID   int64
	lastSeen time.Time
}

// Registry maps opaque bearer tokens to user identities. It is safe for
// concurrent use.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]entry
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]entry)}
}

// Issue generates a fresh cryptographically random token and records the
// given user identity as its owner. The token authenticates that identity
// until Revoke is called on it or the process exits.
func (r *Registry) Issue(userID int64) (string, error) {
	raw := make([]byte, tokenSize)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	token := base64.RawURLEncoding.EncodeToString(raw)

	r.mu.Lock()
	r.sessions[token] = entry{userID: userID, lastSeen: time.Now()}
	r.mu.Unlock()

	return token, nil
}

// Resolve returns the identity owning the token. The second return value
// is false for absent or unknown tokens.
func (r *Registry) Resolve(token string) (int64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.sessions[token]
	if !ok {
		return 0, false
	}
	e.lastSeen = time.Now()
	r.sessions[token] = e
	return e.userID, true
}

// Revoke removes the token's mapping if present. Revoking an unknown or
// already-revoked token is a no-op, not an error.
func (r *Registry) Revoke(token string) {
	r.mu.Lock()
	delete(r.sessions, token)
	r.mu.Unlock()
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// evictIdle removes sessions not seen since the cutoff and returns how
// many were dropped.
func (r *Registry) evictIdle(cutoff time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for token, e := range r.sessions {
		if e.lastSeen.Before(cutoff) {
			delete(r.sessions, token)
			removed++
		}
	}
	return removed
}

// StartSweeper launches a background goroutine that evicts sessions idle
// longer than ttl, checking every interval. It is an opt-in extension:
// when it is never started, tokens stay valid indefinitely within the
// process lifetime. The goroutine stops when ctx is cancelled.
func (r *Registry) StartSweeper(ctx context.Context, interval, ttl time.Duration, log *zap.Logger) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cutoff := time.Now().Add(-ttl)
				if removed := r.evictIdle(cutoff); removed > 0 {
					log.Info("evicted idle sessions", zap.Int("removed", removed))
				}
			}
		}
	}()
}
