// Package store is the HTTP client for the shared reference-data service:
// the person, vocabulary, and location tables plus the refresh-state
// timestamp the once-per-day guard reads and writes.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rcavanagh/docketbill/internal/model"
)

// APIError represents a non-2xx response from the reference service.
type APIError struct {
	StatusCode int
	Body       string // first 512 bytes
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// Client talks to the reference service with Bearer auth. Loads are
// idempotent; transient failures are the caller's to retry.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a Client for the given base URL and token.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// People loads the person table.
func (c *Client) People(ctx context.Context) ([]model.PersonEntry, error) {
	var people []model.PersonEntry
	if err := c.getJSON(ctx, "/people", &people); err != nil {
		return nil, fmt.Errorf("load person table: %w", err)
	}
	return people, nil
}

// Vocabulary loads the event-vocabulary table.
func (c *Client) Vocabulary(ctx context.Context) ([]model.VocabularyEntry, error) {
	var vocab []model.VocabularyEntry
	if err := c.getJSON(ctx, "/vocabulary", &vocab); err != nil {
		return nil, fmt.Errorf("load vocabulary table: %w", err)
	}
	return vocab, nil
}

// Locations loads the courtroom-to-assignee map.
func (c *Client) Locations(ctx context.Context) (map[string]string, error) {
	var locations map[string]string
	if err := c.getJSON(ctx, "/locations", &locations); err != nil {
		return nil, fmt.Errorf("load location table: %w", err)
	}
	return locations, nil
}

// ReadTimestamp reads the shared refresh timestamp. Nil means no refresh has
// ever been recorded.
func (c *Client) ReadTimestamp(ctx context.Context) (*time.Time, error) {
	var state model.RefreshState
	if err := c.getJSON(ctx, "/refresh-state", &state); err != nil {
		return nil, fmt.Errorf("read refresh-state: %w", err)
	}
	return state.LastRefresh, nil
}

// WriteTimestamp stores ts as the shared refresh timestamp.
func (c *Client) WriteTimestamp(ctx context.Context, ts time.Time) error {
	state := model.RefreshState{LastRefresh: &ts}
	if err := c.sendJSON(ctx, http.MethodPut, "/refresh-state", state, nil); err != nil {
		return fmt.Errorf("write refresh-state: %w", err)
	}
	return nil
}

// Refresh asks the service to rebuild the reference tables from their
// upstream sources. Expensive; guarded by refdata.Guard.
func (c *Client) Refresh(ctx context.Context) error {
	if err := c.sendJSON(ctx, http.MethodPost, "/refresh", nil, nil); err != nil {
		return fmt.Errorf("reference refresh: %w", err)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, dest any) error {
	return c.do(ctx, http.MethodGet, path, nil, dest)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, payload, dest any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal payload: %w", err)
		}
		body = bytes.NewReader(data)
	}
	return c.do(ctx, method, path, body, dest)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, dest any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyStr := string(data)
		if len(bodyStr) > 512 {
			bodyStr = bodyStr[:512]
		}
		return &APIError{StatusCode: resp.StatusCode, Body: bodyStr}
	}

	if dest != nil {
		if err := json.Unmarshal(data, dest); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
