package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

// fakeResolver implements TokenResolver, recording every lookup so tests
// can assert whether the registry was consulted at all.
type fakeResolver struct {
	known    map[string]int64
	resolved []string
}

func (f *fakeResolver) Resolve(token string) (int64, bool) {
	f.resolved = append(f.resolved, token)
	id, ok := f.known[token]
	return id, ok
}

func TestBearerAuth(t *testing.T) {
	tests := []struct {
		name          string
		header        string
		expectedCode  int
		expectResolve bool
	}{
		{
			name:         "missing header",
			header:       "",
			expectedCode: http.StatusUnauthorized,
		},
		{
			name:         "wrong scheme",
			header:       "Basic dXNlcjpwYXNz",
			expectedCode: http.StatusUnauthorized,
		},
		{
			name:         "bearer with no token",
			header:       "Bearer ",
			expectedCode: http.StatusUnauthorized,
		},
		{
			name:         "bare token without scheme",
			header:       "good-token",
			expectedCode: http.StatusUnauthorized,
		},
		{
			name:          "unknown token",
			header:        "Bearer bogus",
			expectedCode:  http.StatusUnauthorized,
			expectResolve: true,
		},
		{
			name:          "valid token",
			header:        "Bearer good-token",
			expectedCode:  http.StatusOK,
			expectResolve: true,
		},
		{
			name:          "lowercase scheme accepted",
			header:        "bearer good-token",
			expectedCode:  http.StatusOK,
			expectResolve: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver := &fakeResolver{known: map[string]int64{"good-token": 42}}

			handlerCalled := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handlerCalled = true
				id, ok := UserIDFromContext(r.Context())
				if !ok {
					t.Error("expected user identity in context")
				}
				if id != 42 {
					t.Errorf("expected identity 42, got %d", id)
				}
			})

			rec := httptest.NewRecorder()
			req := httptest.NewRequest("GET", "/students", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			BearerAuth(resolver)(next).ServeHTTP(rec, req)

			if rec.Code != tt.expectedCode {
				t.Fatalf("expected status %d, got %d", tt.expectedCode, rec.Code)
			}
			if tt.expectedCode == http.StatusOK && !handlerCalled {
				t.Error("expected downstream handler to run")
			}
			if tt.expectedCode == http.StatusUnauthorized && handlerCalled {
				t.Error("downstream handler must not run for a rejected request")
			}
			if !tt.expectResolve && len(resolver.resolved) > 0 {
				t.Error("malformed credentials must be rejected before the registry is consulted")
			}
		})
	}
}

func TestUserIDFromContext_Missing(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	if _, ok := UserIDFromContext(req.Context()); ok {
		t.Error("expected no identity outside the auth middleware")
	}
}
