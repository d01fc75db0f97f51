// Package caseclient is the persistence client for saved cases. It wraps
// the /api surface, holds the auth credential, and remembers which case
// is currently loaded so saves become updates.
package caseclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sparsh1616/MedHistoryApp/domain"
)

// Client issues authenticated case CRUD calls against the backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	creds      CredentialStore

	// currentID is the id of the loaded case; zero means the next save
	// creates a new record. Process-local, reset on logout.
	currentID int64
}

// New creates a client against the given API base URL.
func New(baseURL string, creds CredentialStore) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		creds:      creds,
	}
}

// CurrentID returns the remembered current-case id, zero when none.
func (c *Client) CurrentID() int64 { return c.currentID }

// SetCurrent marks a case as the one being edited.
func (c *Client) SetCurrent(id int64) { c.currentID = id }

// Register creates a new account. No credential is required or stored.
func (c *Client) Register(ctx context.Context, username, password, email, fullName, studyYear, institute string) error {
	body := map[string]string{
		"username": username, "password": password, "email": email,
		"full_name": fullName, "study_year": studyYear, "institute": institute,
	}
	_, err := c.do(ctx, http.MethodPost, "/api/auth/register", body, false)
	return err
}

// Login authenticates and stores the returned token in the credential
// store, keyed with the display username.
func (c *Client) Login(ctx context.Context, username, password string) error {
	resp, err := c.do(ctx, http.MethodPost, "/api/auth/login", map[string]string{
		"username": username, "password": password,
	}, false)
	if err != nil {
		return err
	}
	var out struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(resp, &out); err != nil || out.Token == "" {
		return fmt.Errorf("login response missing token")
	}
	c.creds.SetCredentials(out.Token, username)
	return nil
}

// Logout clears the stored credential and the current-case memory.
// In-progress form state is deliberately untouched.
func (c *Client) Logout() {
	c.creds.Clear()
	c.currentID = 0
}

// Create saves a new case and remembers its id as current.
func (c *Client) Create(ctx context.Context, title string, doc domain.FormDocument) (*domain.CaseSummary, error) {
	resp, err := c.do(ctx, http.MethodPost, "/api/cases", caseBody(title, doc), true)
	if err != nil {
		return nil, err
	}
	var sum domain.CaseSummary
	if err := json.Unmarshal(resp, &sum); err != nil {
		return nil, fmt.Errorf("failed to decode case response: %w", err)
	}
	c.currentID = sum.ID
	return &sum, nil
}

// Update rewrites an existing case in place.
func (c *Client) Update(ctx context.Context, id int64, title string, doc domain.FormDocument) (*domain.CaseSummary, error) {
	resp, err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/cases/%d", id), caseBody(title, doc), true)
	if err != nil {
		return nil, err
	}
	var sum domain.CaseSummary
	if err := json.Unmarshal(resp, &sum); err != nil {
		return nil, fmt.Errorf("failed to decode case response: %w", err)
	}
	return &sum, nil
}

// Save creates a new record when no current case is held, and updates the
// current one otherwise.
func (c *Client) Save(ctx context.Context, title string, doc domain.FormDocument) (*domain.CaseSummary, error) {
	if c.currentID == 0 {
		return c.Create(ctx, title, doc)
	}
	return c.Update(ctx, c.currentID, title, doc)
}

// List returns summaries of the user's cases, newest first.
func (c *Client) List(ctx context.Context) ([]domain.CaseSummary, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/cases", nil, true)
	if err != nil {
		return nil, err
	}
	var out []domain.CaseSummary
	if err := json.Unmarshal(resp, &out); err != nil {
		return nil, fmt.Errorf("failed to decode case list: %w", err)
	}
	return out, nil
}

// Get fetches the full record and remembers it as current.
func (c *Client) Get(ctx context.Context, id int64) (*domain.CaseRecord, error) {
	resp, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/cases/%d", id), nil, true)
	if err != nil {
		return nil, err
	}
	var record domain.CaseRecord
	if err := json.Unmarshal(resp, &record); err != nil {
		return nil, fmt.Errorf("failed to decode case: %w", err)
	}
	c.currentID = record.ID
	return &record, nil
}

// Delete removes a case. Deleting the current case clears that memory so
// the next save creates a new record.
func (c *Client) Delete(ctx context.Context, id int64) error {
	if _, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/cases/%d", id), nil, true); err != nil {
		return err
	}
	if c.currentID == id {
		c.currentID = 0
	}
	return nil
}

func caseBody(title string, doc domain.FormDocument) map[string]interface{} {
	body := map[string]interface{}{"case_data": doc}
	if title != "" {
		body["case_title"] = title
	}
	return body
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}, authed bool) ([]byte, error) {
	var token string
	if authed {
		token = c.creds.Token()
		if token == "" {
			return nil, domain.ErrUnauthenticated
		}
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return respBody, nil
	}

	msg := serverMessage(respBody)
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, fmt.Errorf("%s: %w", msg, domain.ErrUnauthenticated)
	case http.StatusNotFound:
		return nil, fmt.Errorf("%s: %w", msg, domain.ErrNotFound)
	case http.StatusConflict:
		return nil, fmt.Errorf("%s: %w", msg, domain.ErrConflict)
	case http.StatusTooManyRequests:
		return nil, fmt.Errorf("%s: %w", msg, domain.ErrRateLimited)
	default:
		return nil, fmt.Errorf("server error [%d]: %s", resp.StatusCode, msg)
	}
}

// serverMessage prefers the backend's explanation over a generic one.
func serverMessage(body []byte) string {
	var out struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &out); err == nil && out.Message != "" {
		return out.Message
	}
	return "request failed"
}
