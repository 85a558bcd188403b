package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/atinyakov/GradeBook/internal/session"
	"go.uber.org/zap"
)

func TestRouter_ProtectedRoutesRequireToken(t *testing.T) {
	sessions := session.NewRegistry()
	authHandler := &AuthHandler{AuthService: &fakeAuthService{}, Sessions: sessions}
	service := &fakeStudentService{}
	studentHandler := &StudentHandler{StudentService: service, Importer: &fakeImporter{}}
	router := NewRouter(authHandler, studentHandler, sessions, zap.NewNop())

	protected := []struct {
		method string
		target string
	}{
		{"GET", "/students"},
		{"GET", "/students/1"},
		{"DELETE", "/students/1"},
		{"POST", "/load_csv"},
		{"GET", "/courses"},
		{"GET", "/faculties/ФизФак/students"},
		{"GET", "/faculties/ФизФак/avg"},
	}

	for _, tt := range protected {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(tt.method, tt.target, nil)
			router.ServeHTTP(rec, req)
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("expected 401 without a token, got %d", rec.Code)
			}
		})
	}
}

func TestRouter_IssuedTokenOpensGate(t *testing.T) {
	sessions := session.NewRegistry()
	authHandler := &AuthHandler{AuthService: &fakeAuthService{}, Sessions: sessions}
	studentHandler := &StudentHandler{StudentService: &fakeStudentService{}, Importer: &fakeImporter{}}
	router := NewRouter(authHandler, studentHandler, sessions, zap.NewNop())

	token, err := sessions.Issue(7)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/students", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with a valid token, got %d", rec.Code)
	}

	// After revocation the same token is rejected again.
	sessions.Revoke(token)
	rec = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/students", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after revocation, got %d", rec.Code)
	}
}

func TestRouter_PublicRoutesOpen(t *testing.T) {
	sessions := session.NewRegistry()
	authHandler := &AuthHandler{AuthService: &fakeAuthService{registerID: 1, verifyID: 1}, Sessions: sessions}
	studentHandler := &StudentHandler{StudentService: &fakeStudentService{}, Importer: &fakeImporter{}}
	router := NewRouter(authHandler, studentHandler, sessions, zap.NewNop())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", nil)
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 for the index, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest("POST", "/auth/logout", nil)
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 for logout without a session, got %d", rec.Code)
	}
}
