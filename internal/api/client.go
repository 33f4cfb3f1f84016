package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to a running daemon over its HTTP API.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewClient builds a client for the daemon listening at baseURL. The token
// is sent as a bearer credential when non-empty.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		token:   strings.TrimSpace(token),
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Query checks whether a movie is already in the library.
func (c *Client) Query(ctx context.Context, user, title string) (*ActionResponse, error) {
	var resp ActionResponse
	err := c.do(ctx, http.MethodPost, "/api/query", QueryRequest{User: user, Title: title}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Request submits a movie request.
func (c *Client) Request(ctx context.Context, user, title string) (*ActionResponse, error) {
	var resp ActionResponse
	err := c.do(ctx, http.MethodPost, "/api/request", QueryRequest{User: user, Title: title}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Select resolves an open disambiguation session.
func (c *Client) Select(ctx context.Context, user, sessionID string, option int) (*ActionResponse, error) {
	var resp ActionResponse
	err := c.do(ctx, http.MethodPost, "/api/select", SelectRequest{User: user, SessionID: sessionID, Option: option}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Scores returns the ranked diagnostic scores for a title.
func (c *Client) Scores(ctx context.Context, title string) (*ScoresResponse, error) {
	var resp ScoresResponse
	path := "/api/scores?title=" + url.QueryEscape(title)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Status reports daemon liveness and counters.
func (c *Client) Status(ctx context.Context) (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.do(ctx, http.MethodGet, "/api/status", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TestNotification asks the daemon to send a test notification.
func (c *Client) TestNotification(ctx context.Context) (*TestNotificationResponse, error) {
	var resp TestNotificationResponse
	if err := c.do(ctx, http.MethodPost, "/api/notify/test", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if c.baseURL == "" {
		return fmt.Errorf("api client has no base URL")
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("call daemon: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("daemon returned %d: %s", resp.StatusCode, errorDetail(resp.Body))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func errorDetail(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, 2048))
	if err != nil {
		return "unreadable error body"
	}
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	detail := strings.TrimSpace(string(raw))
	if detail == "" {
		return "no detail"
	}
	return detail
}
