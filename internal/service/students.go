// Package service provides business-logic services for student records
// and authentication, delegating persistence to repository interfaces.
package service

import (
	"context"
	"fmt"

	"github.com/atinyakov/GradeBook/internal/apperr"
	"github.com/atinyakov/GradeBook/internal/models"
	"github.com/atinyakov/GradeBook/internal/repository"
)

// GradeMin and GradeMax bound the allowed grade range, inclusive.
const (
	GradeMin = 0
	GradeMax = 100
)

// StudentRepository defines the persistence operations required by the
// student service.
type StudentRepository interface {
	// Insert stores a new student record and returns its identity.
	Insert(ctx context.Context, s models.Student) (int64, error)
	// GetByID fetches a single student by identity.
	GetByID(ctx context.Context, id int64) (*models.Student, error)
	// SelectAll returns every student ordered by identity ascending.
	SelectAll(ctx context.Context) ([]models.Student, error)
	// Update applies the non-nil patch fields to the record.
	Update(ctx context.Context, id int64, patch models.StudentPatch) error
	// Delete removes the record with the given identity.
	Delete(ctx context.Context, id int64) error
	// StudentsByFaculty returns distinct (surname, name) pairs for a faculty.
	StudentsByFaculty(ctx context.Context, faculty string) ([]repository.NamePair, error)
	// UniqueCourses returns distinct course labels in lexicographic order.
	UniqueCourses(ctx context.Context) ([]string, error)
	// AvgGradeByFaculty returns the mean grade; the bool is false when the
	// faculty has no records.
	AvgGradeByFaculty(ctx context.Context, faculty string) (float64, bool, error)
}

// StudentService implements student record operations, enforcing the
// grade range constraint before touching the repository.
type StudentService struct {
	// repo performs the data-layer operations.
	repo StudentRepository
}

// NewStudentService constructs a StudentService using the provided repository.
func NewStudentService(repo StudentRepository) *StudentService {
	return &StudentService{repo: repo}
}

// validateGrade checks that g falls within [GradeMin, GradeMax].
func validateGrade(g int) error {
	if g < GradeMin || g > GradeMax {
		return &apperr.ValidationError{
			Field:  "grade",
			Reason: fmt.Sprintf("must be between %d and %d, got %d", GradeMin, GradeMax, g),
		}
	}
	return nil
}

// Create validates the grade and stores a new student record,
// returning the identity assigned by the store.
func (s *StudentService) Create(ctx context.Context, student models.Student) (int64, error) {
	if err := validateGrade(student.Grade); err != nil {
		return 0, err
	}
	return s.repo.Insert(ctx, student)
}

// Get fetches a single student by identity.
func (s *StudentService) Get(ctx context.Context, id int64) (*models.Student, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns all students ordered by identity ascending.
func (s *StudentService) List(ctx context.Context) ([]models.Student, error) {
	return s.repo.SelectAll(ctx)
}

// Update applies a patch to the student with the given identity. An empty
// patch is a successful no-op. A patched grade is validated before any
// write happens.
func (s *StudentService) Update(ctx context.Context, id int64, patch models.StudentPatch) error {
	if patch.IsEmpty() {
		return nil
	}
	if patch.Grade != nil {
		if err := validateGrade(*patch.Grade); err != nil {
			return err
		}
	}
	return s.repo.Update(ctx, id, patch)
}

// Delete removes the student with the given identity.
func (s *StudentService) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// StudentsByFaculty returns the distinct (surname, name) pairs for the
// given faculty, ordered by surname then name.
func (s *StudentService) StudentsByFaculty(ctx context.Context, faculty string) ([]repository.NamePair, error) {
	return s.repo.StudentsByFaculty(ctx, faculty)
}

// UniqueCourses returns the distinct course labels in lexicographic order.
func (s *StudentService) UniqueCourses(ctx context.Context) ([]string, error) {
	return s.repo.UniqueCourses(ctx)
}

// AvgGradeByFaculty returns the mean grade across the faculty's records.
// The bool is false when the faculty has no records, so callers never
// mistake "no data" for an average of zero.
func (s *StudentService) AvgGradeByFaculty(ctx context.Context, faculty string) (float64, bool, error) {
	return s.repo.AvgGradeByFaculty(ctx, faculty)
}
