// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Configuration constants for the backend client.
const (
	// DefaultTimeout is the timeout applied to every request.
	DefaultTimeout = 15 * time.Second

	// MaxResponseSize is the maximum allowed response body size.
	// SECURITY: Response size limit prevents memory exhaustion.
	MaxResponseSize = 10 * 1024 * 1024 // 10MB limit

	userAgent = "opsdeck/0.1.0"
)

// ErrNetwork indicates the request produced no HTTP response at all
// (connection refused, DNS failure, timeout). Its text is the default
// user-facing message attached when the transport gives us nothing better.
var ErrNetwork = errors.New("Network error. Please check your connection.")

// APIError represents a non-2xx response from the backend.
type APIError struct {
	Status  int
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed (HTTP %d)", e.Status)
}

// errorBody is the error payload shape the backend returns on failure.
type errorBody struct {
	Message string `json:"message"`
}

// TokenSource supplies the bearer token for outgoing requests. The client
// reads it fresh on every request rather than caching a copy, so the
// header always reflects the durable session record.
type TokenSource interface {
	Token() string
}

// Client is the shared HTTP client for the opsdeck backend. All
// application requests go through it so the bearer header and the global
// unauthorized handling apply uniformly.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource

	// forceLogout tears down the session on a 401. It reports whether a
	// live session was actually ended, which is what makes concurrent
	// 401s collapse into a single logout and a single navigation.
	forceLogout func() bool

	// gotoLogin navigates to the login view after a forced logout.
	gotoLogin func()
}

// Option is a functional option for configuring Client.
type Option func(*Client)

// WithTokenSource sets the bearer token source.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) {
		c.tokens = ts
	}
}

// WithTimeout overrides the default request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithUnauthorizedHandler sets the hooks invoked when any response comes
// back 401. forceLogout must be idempotent and report whether it ended a
// session; gotoLogin runs only when it did.
func WithUnauthorizedHandler(forceLogout func() bool, gotoLogin func()) Option {
	return func(c *Client) {
		c.forceLogout = forceLogout
		c.gotoLogin = gotoLogin
	}
}

// NewClient creates a client for the given base URL. The base URL is
// resolved once at construction (see Resolve); the client never
// re-resolves it.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the resolved backend origin.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get performs a GET request and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, path string, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out interface{}) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

// Patch performs a PATCH request with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body, out interface{}) error {
	return c.do(ctx, http.MethodPatch, path, body, out)
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// Health probes the backend health endpoint through the full
// interceptor pipeline.
func (c *Client) Health(ctx context.Context) error {
	return c.Get(ctx, "/health", nil)
}

// do performs a single request with the standard header set and the
// global response handling.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)

	// SECURITY: Clear Authorization header immediately after the request
	// to keep the token out of any later logging of the request object.
	req.Header.Del("Authorization")

	if err != nil {
		// No HTTP response at all: attach the default user-facing
		// message and re-raise.
		return fmt.Errorf("%w (%v)", ErrNetwork, err)
	}
	defer resp.Body.Close()

	respBody, err := readResponse(resp)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		c.handleUnauthorized()
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp.StatusCode, respBody)
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}

// setHeaders sets the standard headers on every outgoing request: JSON
// content type, cache-busting, a request ID for correlation, and the
// bearer token when one exists. A missing token never blocks the
// request; it is simply sent unauthenticated.
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())

	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
}

// handleUnauthorized runs the global 401 path: end the session through
// the session store (never by touching storage directly) and navigate to
// the login view at most once per live session.
func (c *Client) handleUnauthorized() {
	if c.forceLogout == nil {
		return
	}
	if c.forceLogout() && c.gotoLogin != nil {
		c.gotoLogin()
	}
}

// newAPIError builds the typed error for a non-2xx response, preferring
// the backend's message field when it parses.
func newAPIError(status int, body []byte) error {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil && eb.Message != "" {
		return &APIError{Status: status, Message: eb.Message}
	}
	return &APIError{Status: status, Message: http.StatusText(status)}
}

// readResponse reads the response body with a size limit.
// SECURITY: Response size limit prevents memory exhaustion.
func readResponse(resp *http.Response) ([]byte, error) {
	limited := io.LimitReader(resp.Body, MaxResponseSize)
	body, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) == MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}
	return body, nil
}
