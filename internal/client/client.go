// Package client provides a Go API client for the analysis service plus a
// per-session cache that mirrors server state between calls.
package client

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

	"github.com/ternarybob/stocksense/internal/models"
)

const (
	// DefaultTimeout is the fixed upper bound on end-to-end request latency.
	// An abandoned request may still complete server-side.
	DefaultTimeout = 3 * time.Minute

	// Advisory messages surfaced for conditions without a useful detail.
	rateLimitAdvisory    = "Too many requests - please wait a moment and try again"
	connectivityAdvisory = "Cannot reach the analysis service - check that it is running"
)

// APIError is a user-facing error from the analysis service, carrying the
// mapped message and the HTTP status (0 for connectivity failures).
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// Client talks to the analysis service.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Option configures the Client.
type Option func(*Client)

// WithToken attaches a bearer credential to every request.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout overrides the fixed request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// New creates a new API client.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Analyze triggers an analysis for the ticker, optionally forcing recompute.
func (c *Client) Analyze(ctx context.Context, ticker string, force bool) (*models.AnalysisResult, error) {
	path := "/analyze/" + url.PathEscape(ticker)
	if force {
		path += "?force=true"
	}

	var result models.AnalysisResult
	if err := c.do(ctx, http.MethodPost, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetResult reads the cached analysis for the ticker.
func (c *Client) GetResult(ctx context.Context, ticker string) (*models.AnalysisResult, error) {
	var result models.AnalysisResult
	if err := c.do(ctx, http.MethodGet, "/results/"+url.PathEscape(ticker), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListCachedTickers lists cached tickers, most recently updated first.
func (c *Client) ListCachedTickers(ctx context.Context) ([]models.CachedTicker, error) {
	var tickers []models.CachedTicker
	if err := c.do(ctx, http.MethodGet, "/cached-tickers", nil, &tickers); err != nil {
		return nil, err
	}
	return tickers, nil
}

// Evict removes the cached analysis for the ticker.
func (c *Client) Evict(ctx context.Context, ticker string) error {
	return c.do(ctx, http.MethodDelete, "/results/"+url.PathEscape(ticker), nil, nil)
}

// Health reads the service liveness payload.
func (c *Client) Health(ctx context.Context) (map[string]string, error) {
	var payload map[string]string
	if err := c.do(ctx, http.MethodGet, "/health", nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &APIError{Message: connectivityAdvisory}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return mapError(resp)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// mapError converts an error response into the user-facing message:
// not-found gets a "Not found:" prefix, rate limiting a fixed advisory,
// 5xx a "Server error:" prefix, and other 4xx the raw detail.
func mapError(resp *http.Response) error {
	detail := readDetail(resp.Body)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return &APIError{StatusCode: resp.StatusCode, Message: "Not found: " + detail}
	case resp.StatusCode == http.StatusTooManyRequests:
		return &APIError{StatusCode: resp.StatusCode, Message: rateLimitAdvisory}
	case resp.StatusCode >= 500:
		return &APIError{StatusCode: resp.StatusCode, Message: "Server error: " + detail}
	default:
		return &APIError{StatusCode: resp.StatusCode, Message: detail}
	}
}

func readDetail(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, 64*1024))
	if err != nil {
		return "unknown error"
	}

	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(data, &payload); err == nil && payload.Detail != "" {
		return payload.Detail
	}

	detail := strings.TrimSpace(string(data))
	if detail == "" {
		return "unknown error"
	}
	return detail
}
