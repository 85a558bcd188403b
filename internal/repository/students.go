// Package repository provides PostgreSQL persistence for student records
// and user credentials.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/atinyakov/GradeBook/internal/apperr"
	"github.com/atinyakov/GradeBook/internal/models"
)

// PostgresStudentRepository implements student record operations against
// a PostgreSQL database.
type PostgresStudentRepository struct {
	// DB is the database handle for executing queries and transactions.
	DB *sql.DB
}

// NewPostgresStudentRepository creates a new PostgresStudentRepository
// using the provided *sql.DB. db must be a valid connection to a
// PostgreSQL instance.
func NewPostgresStudentRepository(db *sql.DB) *PostgresStudentRepository {
	return &PostgresStudentRepository{DB: db}
}

// Insert stores a new student record and returns the identity assigned
// by the database. Identities are monotonic and never reused.
func (r *PostgresStudentRepository) Insert(ctx context.Context, s models.Student) (int64, error) {
	var id int64
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO students (surname, name, faculty, course, grade)
		VALUES ($1, $2, $3, $4, $5) RETURNING id
	`, s.Surname, s.Name, s.Faculty, s.Course, s.Grade).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert student: %w", err)
	}
	return id, nil
}

// GetByID fetches a single student by identity.
// Returns apperr.ErrNotFound if no such record exists.
func (r *PostgresStudentRepository) GetByID(ctx context.Context, id int64) (*models.Student, error) {
	var s models.Student
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, surname, name, faculty, course, grade FROM students WHERE id = $1
	`, id).Scan(&s.ID, &s.Surname, &s.Name, &s.Faculty, &s.Course, &s.Grade)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get student: %w", err)
	}
	return &s, nil
}

// SelectAll returns every student record ordered by identity ascending.
func (r *PostgresStudentRepository) SelectAll(ctx context.Context) ([]models.Student, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, surname, name, faculty, course, grade FROM students ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("select students: %w", err)
	}
	defer rows.Close()

	var students []models.Student
	for rows.Next() {
		var s models.Student
		if err := rows.Scan(&s.ID, &s.Surname, &s.Name, &s.Faculty, &s.Course, &s.Grade); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		students = append(students, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return students, nil
}

// Update applies the non-nil fields of patch to the record with the given
// identity. Both full replacement and sparse patching go through this one
// mutator; the identity itself is immutable. Returns apperr.ErrNotFound
// if the record does not exist. A concurrent delete of the same identity
// races last-writer-wins: the loser simply observes not-found.
func (r *PostgresStudentRepository) Update(ctx context.Context, id int64, patch models.StudentPatch) error {
	set := make([]string, 0, 5)
	args := make([]any, 0, 6)

	add := func(column string, value any) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Surname != nil {
		add("surname", *patch.Surname)
	}
	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.Faculty != nil {
		add("faculty", *patch.Faculty)
	}
	if patch.Course != nil {
		add("course", *patch.Course)
	}
	if patch.Grade != nil {
		add("grade", *patch.Grade)
	}
	if len(set) == 0 {
		return nil
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE students SET %s WHERE id = $%d", strings.Join(set, ", "), len(args))

	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	if affected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// Delete removes the record with the given identity.
// Returns apperr.ErrNotFound if the record does not exist, so a repeated
// delete of the same identity reports not-found again rather than failing.
func (r *PostgresStudentRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	if affected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// NamePair is one distinct (surname, name) combination within a faculty.
type NamePair struct {
	Surname string `json:"surname"`
	Name    string `json:"name"`
}

// StudentsByFaculty returns the distinct (surname, name) pairs for the
// given faculty, ordered by surname then name.
func (r *PostgresStudentRepository) StudentsByFaculty(ctx context.Context, faculty string) ([]NamePair, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT DISTINCT surname, name FROM students WHERE faculty = $1 ORDER BY surname, name
	`, faculty)
	if err != nil {
		return nil, fmt.Errorf("students by faculty: %w", err)
	}
	defer rows.Close()

	var pairs []NamePair
	for rows.Next() {
		var p NamePair
		if err := rows.Scan(&p.Surname, &p.Name); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		pairs = append(pairs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return pairs, nil
}

// UniqueCourses returns the distinct course labels ordered lexicographically.
func (r *PostgresStudentRepository) UniqueCourses(ctx context.Context) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT DISTINCT course FROM students ORDER BY course`)
	if err != nil {
		return nil, fmt.Errorf("unique courses: %w", err)
	}
	defer rows.Close()

	var courses []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		courses = append(courses, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return courses, nil
}

// AvgGradeByFaculty returns the arithmetic mean grade across the faculty's
// records. The second return value is false when the faculty has no
// records at all, so callers can distinguish "no data" from a real 0.
func (r *PostgresStudentRepository) AvgGradeByFaculty(ctx context.Context, faculty string) (float64, bool, error) {
	var avg sql.NullFloat64
	err := r.DB.QueryRowContext(ctx, `
		SELECT AVG(grade) FROM students WHERE faculty = $1
	`, faculty).Scan(&avg)
	if err != nil {
		return 0, false, fmt.Errorf("avg grade: %w", err)
	}
	if !avg.Valid {
		return 0, false, nil
	}
	return avg.Float64, true, nil
}

// InsertBatch stores the given students inside one transaction. Either
// the whole batch commits or none of it does; the caller decides how to
// chunk larger imports.
func (r *PostgresStudentRepository) InsertBatch(ctx context.Context, students []models.Student) error {
	if len(students) == 0 {
		return nil
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO students (surname, name, faculty, course, grade)
		VALUES ($1, $2, $3, $4, $5)
	`)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, s := range students {
		if _, err := stmt.ExecContext(ctx, s.Surname, s.Name, s.Faculty, s.Course, s.Grade); err != nil {
			return fmt.Errorf("insert batch row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
