// Package api is a thin HTTP client for the student records service,
// used by the command-line client. It holds the bearer token obtained
// at login and attaches it to every protected call.
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/atinyakov/GradeBook/internal/models"
	"github.com/atinyakov/GradeBook/internal/repository"
)

// Client talks to one server. It is not safe for concurrent use; the
// CLI drives it from a single loop.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// New constructs a Client for the given base URL.
func New(httpClient *http.Client, baseURL string) *Client {
	return &Client{httpClient: httpClient, baseURL: baseURL}
}

// Token returns the bearer token held after a successful login.
func (c *Client) Token() string { return c.token }

// do sends one JSON request and decodes the JSON response into out
// (when out is non-nil). Non-2xx statuses become errors carrying the
// response body.
func (c *Client) do(method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server answered %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register creates a new account on the server.
func (c *Client) Register(username, password string) (int64, error) {
	var resp struct {
		UserID int64 `json:"user_id"`
	}
	err := c.do(http.MethodPost, "/auth/register", credentials{username, password}, &resp)
	return resp.UserID, err
}

// Login authenticates and stores the returned bearer token on the client.
func (c *Client) Login(username, password string) error {
	var resp struct {
		Token string `json:"token"`
	}
	if err := c.do(http.MethodPost, "/auth/login", credentials{username, password}, &resp); err != nil {
		return err
	}
	c.token = resp.Token
	return nil
}

// Logout revokes the held token on the server and forgets it locally.
func (c *Client) Logout() error {
	err := c.do(http.MethodPost, "/auth/logout", nil, nil)
	c.token = ""
	return err
}

// CreateStudent stores a new student record and returns its identity.
func (c *Client) CreateStudent(s models.Student) (int64, error) {
	var resp struct {
		ID int64 `json:"id"`
	}
	err := c.do(http.MethodPost, "/students", s, &resp)
	return resp.ID, err
}

// ListStudents fetches every student record.
func (c *Client) ListStudents() ([]models.Student, error) {
	var students []models.Student
	err := c.do(http.MethodGet, "/students", nil, &students)
	return students, err
}

// GetStudent fetches one student by identity.
func (c *Client) GetStudent(id int64) (*models.Student, error) {
	var s models.Student
	if err := c.do(http.MethodGet, fmt.Sprintf("/students/%d", id), nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// DeleteStudent removes one student by identity.
func (c *Client) DeleteStudent(id int64) error {
	return c.do(http.MethodDelete, fmt.Sprintf("/students/%d", id), nil, nil)
}

// ImportCSV asks the server to bulk-load the file at the given
// server-side path and returns the inserted row count.
func (c *Client) ImportCSV(path, encodingHint string) (int, error) {
	q := url.Values{"path": {path}}
	if encodingHint != "" {
		q.Set("encoding", encodingHint)
	}
	var resp struct {
		Inserted int `json:"inserted"`
	}
	err := c.do(http.MethodPost, "/load_csv?"+q.Encode(), nil, &resp)
	return resp.Inserted, err
}

// Courses fetches the distinct course labels.
func (c *Client) Courses() ([]string, error) {
	var resp struct {
		Courses []string `json:"courses"`
	}
	err := c.do(http.MethodGet, "/courses", nil, &resp)
	return resp.Courses, err
}

// FacultyStudents fetches the distinct (surname, name) pairs of a faculty.
func (c *Client) FacultyStudents(faculty string) ([]repository.NamePair, error) {
	var pairs []repository.NamePair
	err := c.do(http.MethodGet, "/faculties/"+url.PathEscape(faculty)+"/students", nil, &pairs)
	return pairs, err
}

// AvgGrade fetches the mean grade of a faculty. The pointer is nil when
// the faculty has no records.
func (c *Client) AvgGrade(faculty string) (*float64, error) {
	var resp struct {
		AvgGrade *float64 `json:"avg_grade"`
	}
	err := c.do(http.MethodGet, "/faculties/"+url.PathEscape(faculty)+"/avg", nil, &resp)
	return resp.AvgGrade, err
}
