// Package apperr defines the typed errors shared across repositories,
// services, and HTTP handlers.
package apperr

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotFound indicates an unknown record identity, path, or file.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate indicates a username collision at registration.
	ErrDuplicate = errors.New("already exists")
	// ErrUnauthorized indicates a missing, malformed, or unresolvable
	// session token, or a failed credential check.
	ErrUnauthorized = errors.New("unauthorized")
)

// ValidationError reports a field value that fails its constraint,
// such as a grade outside [0, 100].
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// SchemaError reports import-file header columns that could not be
// resolved. Missing maps each absent logical column to its accepted
// header aliases so a caller can show what was expected.
type SchemaError struct {
	Missing map[string][]string
}

func (e *SchemaError) Error() string {
	cols := make([]string, 0, len(e.Missing))
	for col := range e.Missing {
		cols = append(cols, col)
	}
	sort.Strings(cols)

	parts := make([]string, 0, len(cols))
	for _, col := range cols {
		parts = append(parts, fmt.Sprintf("%s (expected one of: %s)", col, strings.Join(e.Missing[col], ", ")))
	}
	return "csv is missing required column(s): " + strings.Join(parts, "; ")
}
