// Package http provides HTTP routing and middleware configuration
// for the student records service.
package http

import (
	"net/http"

	"github.com/atinyakov/GradeBook/internal/middleware"
	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter constructs and returns an HTTP handler that serves the
// student records API. Registration, login, and logout are public;
// everything touching records sits behind the bearer-token gate.
//
// Parameters:
//
//	authHandler     - handler for registration, login, and logout
//	studentHandler  - handler for record CRUD, import, and aggregates
//	sessions        - registry the gate resolves tokens against
//	logger          - structured logger for request logging middleware
//
// Routes:
//
//	POST   /auth/register            → authHandler.Register
//	POST   /auth/login               → authHandler.Login
//	POST   /auth/logout              → authHandler.Logout
//	POST   /students                 → studentHandler.Create     (protected)
//	GET    /students                 → studentHandler.List       (protected)
//	GET    /students/{id}            → studentHandler.Get        (protected)
//	PUT    /students/{id}            → studentHandler.Put        (protected)
//	PATCH  /students/{id}            → studentHandler.Patch      (protected)
//	DELETE /students/{id}            → studentHandler.Delete     (protected)
//	POST   /load_csv                 → studentHandler.LoadCSV    (protected)
//	GET    /faculties/{faculty}/students → studentHandler.StudentsByFaculty (protected)
//	GET    /courses                  → studentHandler.UniqueCourses (protected)
//	GET    /faculties/{faculty}/avg  → studentHandler.AvgGrade   (protected)
func NewRouter(
	authHandler *AuthHandler,
	studentHandler *StudentHandler,
	sessions middleware.TokenResolver,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Log each request and its metadata
	r.Use(middleware.WithRequestLogging(logger))

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"auth": "/auth/register, /auth/login, /auth/logout",
			"api":  "protected",
		})
	})

	// Public endpoints: body-bearing ones only accept JSON
	r.Group(func(r chi.Router) {
		r.Use(chiMiddleware.AllowContentType("application/json"))
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
	})
	r.Post("/auth/logout", authHandler.Logout)

	// Protected group: every record operation requires a valid session token
	r.Group(func(r chi.Router) {
		r.Use(middleware.BearerAuth(sessions))

		r.Route("/students", func(r chi.Router) {
			r.Get("/", studentHandler.List)
			r.Get("/{id}", studentHandler.Get)
			r.Delete("/{id}", studentHandler.Delete)

			r.Group(func(r chi.Router) {
				r.Use(chiMiddleware.AllowContentType("application/json"))
				r.Post("/", studentHandler.Create)
				r.Put("/{id}", studentHandler.Put)
				r.Patch("/{id}", studentHandler.Patch)
			})
		})

		r.Post("/load_csv", studentHandler.LoadCSV)
		r.Get("/faculties/{faculty}/students", studentHandler.StudentsByFaculty)
		r.Get("/faculties/{faculty}/avg", studentHandler.AvgGrade)
		r.Get("/courses", studentHandler.UniqueCourses)
	})

	return r
}
