// Package client provides an HTTP client for the botcore daemon API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// Client communicates with a running botcore daemon.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// Config holds client configuration
type Config struct {
	BaseURL string
	Timeout time.Duration
	Logger  *slog.Logger // Optional logger for client operations
}

// DefaultConfig returns default client configuration
func DefaultConfig() Config {
	return Config{
		BaseURL: "http://localhost:8080/api",
		Timeout: 10 * time.Second,
	}
}

// New creates a new botcore API client
func New(config Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = "http://localhost:8080/api"
	}
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &Client{
		baseURL: config.BaseURL,
		logger:  config.Logger,
		client:  &http.Client{Timeout: config.Timeout},
	}
}

// IsReachable checks if the daemon is running and reachable
func (c *Client) IsReachable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		c.logger.Debug("Failed to create request for reachability check", "error", err)
		return false
	}
	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Debug("Daemon unreachable", "error", err)
		return false
	}
	defer func() { _ = resp.Body.Close() }()
	return resp.StatusCode != http.StatusNotFound
}

// SendMessage runs a message through the daemon's interception
// pipeline. ok=false means nothing answered and normal domain handling
// should proceed.
func (c *Client) SendMessage(ctx context.Context, message, userID string) (reply MessageReply, ok bool, err error) {
	body, err := json.Marshal(MessageRequest{Message: message, UserID: userID})
	if err != nil {
		return MessageReply{}, false, fmt.Errorf("marshal request: %w", err)
	}
	resp, err := c.do(ctx, http.MethodPost, c.baseURL+"/message", body)
	if err != nil {
		return MessageReply{}, false, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode == http.StatusNoContent {
		return MessageReply{}, false, nil
	}
	if err := checkStatus(resp); err != nil {
		return MessageReply{}, false, err
	}
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return MessageReply{}, false, fmt.Errorf("decode response: %w", err)
	}
	return reply, true, nil
}

// Health returns the daemon's health snapshot.
func (c *Client) Health(ctx context.Context) (map[string]HealthResult, error) {
	resp, err := c.do(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	var snapshot map[string]HealthResult
	if err := json.NewDecoder(resp.Body).Decode(&snapshot); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return snapshot, nil
}

// Events replays the daemon's event trail, optionally from since.
func (c *Client) Events(ctx context.Context, since *time.Time) ([]Event, error) {
	u := c.baseURL + "/events"
	if since != nil {
		u += "?since=" + url.QueryEscape(since.Format(time.RFC3339))
	}
	resp, err := c.do(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	var events []Event
	if err := json.NewDecoder(resp.Body).Decode(&events); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return events, nil
}

// ErrorStats returns the per-kind failure counters.
func (c *Client) ErrorStats(ctx context.Context) (map[string]int, error) {
	resp, err := c.do(ctx, http.MethodGet, c.baseURL+"/errors/stats", nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	var stats map[string]int
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return stats, nil
}

// ResetErrorStats zeroes the daemon's failure counters.
func (c *Client) ResetErrorStats(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodPost, c.baseURL+"/errors/reset", nil)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	return checkStatus(resp)
}

func (c *Client) do(ctx context.Context, method, url string, body []byte) (*http.Response, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, rd)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	var er ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err == nil && er.Error != "" {
		return fmt.Errorf("daemon error (%d): %s", resp.StatusCode, er.Error)
	}
	return fmt.Errorf("daemon error: status %d", resp.StatusCode)
}
