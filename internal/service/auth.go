// Package service provides authentication business logic,
// delegating persistence to a UserRepository.
package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/atinyakov/GradeBook/internal/apperr"
	"github.com/atinyakov/GradeBook/internal/models"
	"golang.org/x/crypto/argon2"
)

// saltSize is the length in bytes of the per-user random salt.
const saltSize = 16

// UserRepository defines the persistence operations required by the
// authentication service.
type UserRepository interface {
	// CreateUser stores a new credential row and returns its identity.
	// Returns apperr.ErrDuplicate on a username collision.
	CreateUser(ctx context.Context, u models.User) (int64, error)
	// GetByUsername fetches the credential row for the given username.
	// Returns apperr.ErrNotFound if no such user exists.
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// AuthService implements registration and credential verification.
// Plaintext passwords are never persisted or logged; only a salted
// argon2id hash is stored.
type AuthService struct {
	// repo performs the data-layer operations.
	repo UserRepository
}

// NewAuthService constructs an AuthService using the provided repository.
func NewAuthService(repo UserRepository) *AuthService {
	return &AuthService{repo: repo}
}

// hashPassword derives the salted hash stored for a credential.
func hashPassword(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, 1, 64*1024, 4, 32)
}

// Register creates a new credential with a fresh random salt and returns
// its identity. Returns apperr.ErrDuplicate if the username is taken.
func (s *AuthService) Register(ctx context.Context, username, password string) (int64, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return 0, fmt.Errorf("generate salt: %w", err)
	}

	return s.repo.CreateUser(ctx, models.User{
		Username:     username,
		PasswordHash: hashPassword(password, salt),
		Salt:         salt,
	})
}

// Verify checks a username/password pair and returns the owning identity
// on success. Unknown usernames and wrong passwords both come back as
// apperr.ErrUnauthorized with no distinguishing signal.
func (s *AuthService) Verify(ctx context.Context, username, password string) (int64, error) {
	u, err := s.repo.GetByUsername(ctx, username)
	if errors.Is(err, apperr.ErrNotFound) {
		return 0, apperr.ErrUnauthorized
	}
	if err != nil {
		return 0, err
	}

	hash := hashPassword(password, u.Salt)
	if subtle.ConstantTimeCompare(hash, u.PasswordHash) != 1 {
		return 0, apperr.ErrUnauthorized
	}
	return u.ID, nil
}
