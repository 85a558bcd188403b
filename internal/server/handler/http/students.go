// Package http provides HTTP handlers for student records, bulk import,
// and the faculty/course aggregate queries.
package http

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"strconv"

	"github.com/atinyakov/GradeBook/internal/models"
	"github.com/atinyakov/GradeBook/internal/repository"
	"github.com/go-chi/chi/v5"
)

// StudentService defines the interface for record operations required
// by the HTTP handlers.
type StudentService interface {
	// Create validates and stores a new student, returning its identity.
	Create(ctx context.Context, student models.Student) (int64, error)
	// Get fetches one student by identity.
	Get(ctx context.Context, id int64) (*models.Student, error)
	// List returns all students ordered by identity ascending.
	List(ctx context.Context) ([]models.Student, error)
	// Update applies a patch to the student with the given identity.
	Update(ctx context.Context, id int64, patch models.StudentPatch) error
	// Delete removes the student with the given identity.
	Delete(ctx context.Context, id int64) error
	// StudentsByFaculty returns distinct (surname, name) pairs for a faculty.
	StudentsByFaculty(ctx context.Context, faculty string) ([]repository.NamePair, error)
	// UniqueCourses returns distinct course labels in lexicographic order.
	UniqueCourses(ctx context.Context) ([]string, error)
	// AvgGradeByFaculty returns the mean grade; the bool is false when
	// the faculty has no records.
	AvgGradeByFaculty(ctx context.Context, faculty string) (float64, bool, error)
}

// CSVImporter defines the bulk-import operation required by the handlers.
type CSVImporter interface {
	// LoadCSV imports the file at path and returns the inserted row count.
	LoadCSV(ctx context.Context, path, encodingHint string) (int, error)
}

// StudentHandler handles HTTP requests for student records.
type StudentHandler struct {
	// StudentService performs the underlying record operations.
	StudentService StudentService
	// Importer performs CSV bulk loading.
	Importer CSVImporter
}

// studentRequest represents the JSON payload for creating or replacing
// a student. All five fields are required.
type studentRequest struct {
	Surname *string `json:"surname"`
	Name    *string `json:"name"`
	Faculty *string `json:"faculty"`
	Course  *string `json:"course"`
	Grade   *int    `json:"grade"`
}

// complete reports whether every field of the payload is present.
func (req studentRequest) complete() bool {
	return req.Surname != nil && req.Name != nil && req.Faculty != nil &&
		req.Course != nil && req.Grade != nil
}

// idParam parses the {id} route parameter. It reports false after writing
// a 400 response for values that are not positive integers.
func idParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// Create handles POST /students.
func (h *StudentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req studentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || !req.complete() {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	id, err := h.StudentService.Create(r.Context(), models.Student{
		Surname: *req.Surname,
		Name:    *req.Name,
		Faculty: *req.Faculty,
		Course:  *req.Course,
		Grade:   *req.Grade,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "id": id})
}

// List handles GET /students.
func (h *StudentHandler) List(w http.ResponseWriter, r *http.Request) {
	students, err := h.StudentService.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if students == nil {
		students = []models.Student{}
	}
	writeJSON(w, http.StatusOK, students)
}

// Get handles GET /students/{id}.
func (h *StudentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	student, err := h.StudentService.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, student)
}

// Put handles PUT /students/{id}: a full replacement of every mutable
// field. It shares the service's one patch-based mutator with Patch.
func (h *StudentHandler) Put(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	var req studentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || !req.complete() {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	patch := models.StudentPatch{
		Surname: req.Surname,
		Name:    req.Name,
		Faculty: req.Faculty,
		Course:  req.Course,
		Grade:   req.Grade,
	}
	if err := h.StudentService.Update(r.Context(), id, patch); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "id": id})
}

// Patch handles PATCH /students/{id}: only the supplied fields change.
// A body with no fields at all is a no-op.
func (h *StudentHandler) Patch(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	var patch models.StudentPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if patch.IsEmpty() {
		writeJSON(w, http.StatusOK, map[string]any{"status": "noop"})
		return
	}

	if err := h.StudentService.Update(r.Context(), id, patch); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "id": id})
}

// Delete handles DELETE /students/{id}. Deleting an identity that does
// not exist answers 404 every time, so repeated deletes stay idempotent.
func (h *StudentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	if err := h.StudentService.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "id": id})
}

// LoadCSV handles POST /load_csv?path=&encoding=.
// A missing file answers 404; a header missing a required column answers
// 400 with the accepted aliases spelled out.
func (h *StudentHandler) LoadCSV(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		path = "students.csv"
	}
	encodingHint := r.URL.Query().Get("encoding")

	inserted, err := h.Importer.LoadCSV(r.Context(), path, encodingHint)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "inserted": inserted, "path": path})
}

// StudentsByFaculty handles GET /faculties/{faculty}/students.
func (h *StudentHandler) StudentsByFaculty(w http.ResponseWriter, r *http.Request) {
	faculty := chi.URLParam(r, "faculty")

	pairs, err := h.StudentService.StudentsByFaculty(r.Context(), faculty)
	if err != nil {
		writeError(w, err)
		return
	}
	if pairs == nil {
		pairs = []repository.NamePair{}
	}
	writeJSON(w, http.StatusOK, pairs)
}

// UniqueCourses handles GET /courses.
func (h *StudentHandler) UniqueCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := h.StudentService.UniqueCourses(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if courses == nil {
		courses = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"courses": courses})
}

// AvgGrade handles GET /faculties/{faculty}/avg.
// A faculty with no records answers with a null average and a message,
// never a fake zero.
func (h *StudentHandler) AvgGrade(w http.ResponseWriter, r *http.Request) {
	faculty := chi.URLParam(r, "faculty")

	avg, ok, err := h.StudentService.AvgGradeByFaculty(r.Context(), faculty)
	if err != nil {
		writeError(w, err)
		return
	}
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"faculty": faculty, "avg_grade": nil, "message": "no records"})
		return
	}

	rounded := math.Round(avg*100) / 100
	writeJSON(w, http.StatusOK, map[string]any{"faculty": faculty, "avg_grade": rounded})
}
