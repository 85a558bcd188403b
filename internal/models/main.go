// Package models defines the core data structures for students and users.
package models

// Student represents one student record.
type Student struct {
	// ID is the unique identifier assigned by the store.
	ID int64 `json:"id"`
	// Surname is the student's family name.
	Surname string `json:"surname"`
	// Name is the student's given name.
	Name string `json:"name"`
	// Faculty is the faculty the student belongs to.
	Faculty string `json:"faculty"`
	// Course is the course or program label.
	Course string `json:"course"`
	// Grade is the numeric grade, always within [0, 100] at write time.
	Grade int `json:"grade"`
}

// StudentPatch describes a partial update of a student record.
// Nil fields are left untouched; non-nil fields replace the stored value.
type StudentPatch struct {
	Surname *string `json:"surname,omitempty"`
	Name    *string `json:"name,omitempty"`
	Faculty *string `json:"faculty,omitempty"`
	Course  *string `json:"course,omitempty"`
	Grade   *int    `json:"grade,omitempty"`
}

// IsEmpty reports whether the patch carries no fields at all.
func (p StudentPatch) IsEmpty() bool {
	return p.Surname == nil && p.Name == nil && p.Faculty == nil &&
		p.Course == nil && p.Grade == nil
}

// User represents an application user with credentials.
type User struct {
	// ID is the unique identifier for the user.
	ID int64
	// Username is the login name chosen by the user.
	Username string
	// PasswordHash is the salted hash of the user's password.
	PasswordHash []byte
	// Salt is the per-user random salt mixed into the hash.
	Salt []byte
}
