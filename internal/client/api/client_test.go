package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/atinyakov/GradeBook/internal/models"
)

func TestClient_LoginAttachesTokenToLaterCalls(t *testing.T) {
	var sawAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			_ = json.NewEncoder(w).Encode(map[string]any{"status": "ok", "token": "tok123", "user_id": 7})
		case "/students":
			sawAuth = r.Header.Get("Authorization")
			_ = json.NewEncoder(w).Encode([]models.Student{})
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := New(server.Client(), server.URL)
	if err := client.Login("alice", "pw"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if client.Token() != "tok123" {
		t.Errorf("expected token tok123, got %q", client.Token())
	}

	if _, err := client.ListStudents(); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if sawAuth != "Bearer tok123" {
		t.Errorf("expected bearer header on protected call, got %q", sawAuth)
	}
}

func TestClient_ServerErrorSurfacesBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid_credentials", http.StatusUnauthorized)
	}))
	defer server.Close()

	client := New(server.Client(), server.URL)
	err := client.Login("alice", "wrong")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if got := err.Error(); got != "server answered 401: invalid_credentials" {
		t.Errorf("unexpected error message: %q", got)
	}
}

func TestClient_LogoutForgetsToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			_ = json.NewEncoder(w).Encode(map[string]any{"token": "tok123"})
		case "/auth/logout":
			_ = json.NewEncoder(w).Encode(map[string]any{"status": "ok"})
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := New(server.Client(), server.URL)
	if err := client.Login("alice", "pw"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if err := client.Logout(); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if client.Token() != "" {
		t.Errorf("expected token forgotten after logout, got %q", client.Token())
	}
}

func TestClient_ImportCSVSendsQuery(t *testing.T) {
	var gotPath, gotEncoding string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Query().Get("path")
		gotEncoding = r.URL.Query().Get("encoding")
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "ok", "inserted": 3, "path": gotPath})
	}))
	defer server.Close()

	client := New(server.Client(), server.URL)
	inserted, err := client.ImportCSV("data.csv", "windows-1251")
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if inserted != 3 {
		t.Errorf("expected inserted 3, got %d", inserted)
	}
	if gotPath != "data.csv" || gotEncoding != "windows-1251" {
		t.Errorf("unexpected query: path=%q encoding=%q", gotPath, gotEncoding)
	}
}
