// Package client is a Go client for the technotes REST API.
//
// [Client] mirrors the server's routes: notes and users are listed, created,
// updated and deleted through their collection endpoint, with identifiers in
// the JSON body. Responses the server rejects come back as a [*StatusError]
// carrying the status code and the server's message, so callers can tell a
// conflict from a validation failure:
//
//	c := client.NewClient("http://localhost:3500")
//
//	userID, err := c.CreateUser(ctx, "alice", nil)
//	if err != nil {
//		return err
//	}
//	if _, err := c.CreateNote(ctx, userID, "Shopping", "milk"); client.IsConflict(err) {
//		// a note with this title exists
//	}
//
// Client instances are safe for concurrent use by multiple goroutines.
package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/technotes/technotes/pkg/models"
)

// Client provides typed access to the technotes REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new technotes API client.
//
// The baseURL should include the protocol and host (e.g.,
// "http://localhost:3500") but no trailing slash.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// StatusError is a response the server answered with a 4xx or 5xx status.
type StatusError struct {
	StatusCode int
	// Message is the server's message, or the raw body when it is not JSON.
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API error: status=%d, message=%s", e.StatusCode, e.Message)
}

func hasStatus(err error, code int) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == code
}

// IsConflict reports whether err is a 409, such as a duplicate title.
func IsConflict(err error) bool { return hasStatus(err, http.StatusConflict) }

// IsNotFound reports whether err is a 404.
func IsNotFound(err error) bool { return hasStatus(err, http.StatusNotFound) }

// IsBadRequest reports whether err is a 400.
func IsBadRequest(err error) bool { return hasStatus(err, http.StatusBadRequest) }

// doRequest performs an HTTP request with proper headers
func (c *Client) doRequest(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	return c.httpClient.Do(req)
}

// decodeResponse decodes the JSON response into target. Error statuses
// become a *StatusError.
func decodeResponse(resp *http.Response, target any) error {
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		statusErr := &StatusError{StatusCode: resp.StatusCode, Message: string(body)}
		var msg struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		if json.Unmarshal(body, &msg) == nil {
			if msg.Message != "" {
				statusErr.Message = msg.Message
			} else if msg.Error != "" {
				statusErr.Message = msg.Error
			}
		}
		return statusErr
	}

	if target != nil {
		if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

func (c *Client) call(ctx context.Context, method, path string, body, target any) error {
	resp, err := c.doRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	return decodeResponse(resp, target)
}

// messageResponse is the body of every successful write.
type messageResponse struct {
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}

// Health is the body of GET /health.
type Health struct {
	Status   string `json:"status"`
	Backend  string `json:"backend"`
	Mode     string `json:"mode"`
	ReadOnly bool   `json:"readOnly"`
	Time     int64  `json:"time"`
}

// Health checks the health status of the server. An unavailable store is
// reported as a *StatusError with status 503.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var result Health
	if err := c.call(ctx, http.MethodGet, "/health", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Notes

// ListNotes returns every note with its owner's username.
func (c *Client) ListNotes(ctx context.Context) ([]models.NoteWithUsername, error) {
	var result []models.NoteWithUsername
	if err := c.call(ctx, http.MethodGet, "/notes", nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// CreateNote creates a note owned by user and returns its ID.
func (c *Client) CreateNote(ctx context.Context, user models.UserID, title, text string) (models.NoteID, error) {
	var result messageResponse
	err := c.call(ctx, http.MethodPost, "/notes", map[string]any{
		"user":  user,
		"title": title,
		"text":  text,
	}, &result)
	if err != nil {
		return models.NoteID{}, err
	}
	return models.ParseNoteID(result.ID)
}

// UpdateNote replaces the owner, title, text and completion of note.ID and
// returns the server's message.
func (c *Client) UpdateNote(ctx context.Context, note *models.Note) (string, error) {
	var result messageResponse
	err := c.call(ctx, http.MethodPatch, "/notes", map[string]any{
		"id":        note.ID,
		"user":      note.UserID,
		"title":     note.Title,
		"text":      note.Text,
		"completed": note.Completed,
	}, &result)
	return result.Message, err
}

// DeleteNote deletes a note and returns the server's message.
func (c *Client) DeleteNote(ctx context.Context, id models.NoteID) (string, error) {
	var result messageResponse
	err := c.call(ctx, http.MethodDelete, "/notes", map[string]any{"id": id}, &result)
	return result.Message, err
}

// Users

// ListUsers returns every user.
func (c *Client) ListUsers(ctx context.Context) ([]*models.User, error) {
	var result []*models.User
	if err := c.call(ctx, http.MethodGet, "/users", nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// CreateUser creates an active user and returns its ID. Nil roles let the
// server apply its default role.
func (c *Client) CreateUser(ctx context.Context, username string, roles []string) (models.UserID, error) {
	body := map[string]any{"username": username}
	if roles != nil {
		body["roles"] = roles
	}

	var result messageResponse
	if err := c.call(ctx, http.MethodPost, "/users", body, &result); err != nil {
		return models.UserID{}, err
	}
	return models.ParseUserID(result.ID)
}

// UpdateUser replaces the username, roles and active flag of user.ID and
// returns the server's message.
func (c *Client) UpdateUser(ctx context.Context, user *models.User) (string, error) {
	var result messageResponse
	err := c.call(ctx, http.MethodPatch, "/users", map[string]any{
		"id":       user.ID,
		"username": user.Username,
		"roles":    user.Roles,
		"active":   user.Active,
	}, &result)
	return result.Message, err
}

// DeleteUser deletes a user without notes and returns the server's message.
func (c *Client) DeleteUser(ctx context.Context, id models.UserID) (string, error) {
	var result messageResponse
	err := c.call(ctx, http.MethodDelete, "/users", map[string]any{"id": id}, &result)
	return result.Message, err
}
