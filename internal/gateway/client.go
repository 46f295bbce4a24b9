// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gateway implements the client for the Terminal of Trade backend.
//
// The backend owns everything non-trivial: credential verification, session
// state, inference, and token accounting. This package is a thin boundary
// over its HTTP API — three primary operations (authenticate, start-session,
// chat) plus the token-accounting endpoints. Every call is one-shot: no
// retries, no idempotency guarantees (starting two sessions creates two
// sessions). Each call carries a timeout context; cancellation is the
// caller's lever for conversation switches and logout.
package gateway

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/terminaloftrade/tradeterm/internal/model"
)

// Configuration constants for the backend API.
const (
	// DefaultBaseURL is the base URL for the backend API.
	DefaultBaseURL = "http://localhost:8000/api"

	// DefaultTimeout is the default timeout for API requests.
	DefaultTimeout = 60 * time.Second

	// MaxResponseSize is the maximum allowed response body size.
	// SECURITY: Response size limit prevents memory exhaustion attacks.
	MaxResponseSize = 10 * 1024 * 1024 // 10MB limit
)

// PERFORMANCE: Connection pooling reduces TCP handshake overhead.
// Shared HTTP client for all backend requests; per-call deadlines come from
// the request context, not the client.
var sharedHTTPClient = &http.Client{
	Transport: &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	},
}

// =============================================================================
// ERRORS
// =============================================================================

// Error variables for the gateway operations. Each operation wraps its
// sentinel so callers can classify failures with errors.Is.
var (
	// ErrAuthentication indicates the backend rejected the Telegram
	// credential or the transport failed during authentication.
	ErrAuthentication = errors.New("authentication failed")

	// ErrSession indicates session creation failed.
	ErrSession = errors.New("session creation failed")

	// ErrMessage indicates a chat message could not be delivered or answered.
	ErrMessage = errors.New("message delivery failed")

	// ErrTokensExhausted indicates the user's token balance is spent.
	ErrTokensExhausted = errors.New("token limit reached")
)

// GatewayError carries the HTTP detail of a failed backend call.
type GatewayError struct {
	Status  int
	Message string
}

// Error implements the error interface.
func (e *GatewayError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("gateway error (HTTP %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("gateway error (HTTP %d)", e.Status)
}

// =============================================================================
// WIRE TYPES
// =============================================================================

// chatRequest is the request body for the chat endpoint.
type chatRequest struct {
	SessionID string `json:"session_id"`
	UserID    int64  `json:"user_id"`
	Query     string `json:"query"`
}

// chatResponse is the response body from the chat endpoint.
type chatResponse struct {
	Response string `json:"response"`
}

// sessionResponse is the response body from the start-session endpoint.
type sessionResponse struct {
	SessionID string `json:"session_id"`
}

// TokenBalance is the response body from the token-accounting endpoints.
type TokenBalance struct {
	UserID     int64 `json:"user_id"`
	TokensLeft int   `json:"tokens_left"`
}

// apiErrorResponse is the backend's error envelope.
type apiErrorResponse struct {
	Detail string `json:"detail"`
}

// =============================================================================
// CLIENT
// =============================================================================

// Client is a client for the Terminal of Trade backend API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

// NewClient creates a new backend client with the default base URL.
func NewClient() *Client {
	return &Client{
		baseURL:    DefaultBaseURL,
		httpClient: sharedHTTPClient,
		timeout:    DefaultTimeout,
	}
}

// WithBaseURL sets a custom base URL for the API.
func (c *Client) WithBaseURL(url string) *Client {
	c.baseURL = strings.TrimSuffix(url, "/")
	return c
}

// WithTimeout sets the per-request timeout.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	c.timeout = timeout
	return c
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// =============================================================================
// OPERATIONS
// =============================================================================

// Authenticate relays the Telegram credential to the backend for hash
// verification and returns the resulting identity.
//
// The credential's HMAC signature is validated server-side, never locally.
// On any failure — forged credential, transport error, malformed response —
// the error wraps ErrAuthentication and no identity is returned.
func (c *Client) Authenticate(ctx context.Context, cred model.TelegramCredential) (*model.Identity, error) {
	var identity model.Identity
	if err := c.post(ctx, "/auth/telegram", cred, &identity); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthentication, err)
	}
	return &identity, nil
}

// StartSession asks the backend to mint a new chat session and returns its
// opaque id. Calling twice creates two distinct sessions.
func (c *Client) StartSession(ctx context.Context) (string, error) {
	var resp sessionResponse
	if err := c.post(ctx, "/start-session", nil, &resp); err != nil {
		return "", fmt.Errorf("%w: %v", ErrSession, err)
	}
	if resp.SessionID == "" {
		return "", fmt.Errorf("%w: backend returned empty session id", ErrSession)
	}
	return resp.SessionID, nil
}

// SendMessage submits a query for the given session and returns the full
// reply text. There is no streaming: the reply arrives atomically or not
// at all.
func (c *Client) SendMessage(ctx context.Context, sessionID string, userID int64, query string) (string, error) {
	req := chatRequest{
		SessionID: sessionID,
		UserID:    userID,
		Query:     query,
	}

	var resp chatResponse
	if err := c.post(ctx, "/chat", req, &resp); err != nil {
		var gwErr *GatewayError
		if errors.As(err, &gwErr) && gwErr.Status == http.StatusForbidden {
			return "", fmt.Errorf("%w: %s", ErrTokensExhausted, gwErr.Message)
		}
		return "", fmt.Errorf("%w: %v", ErrMessage, err)
	}
	return resp.Response, nil
}

// TokenBalance fetches the remaining token balance for a user.
func (c *Client) TokenBalance(ctx context.Context, userID int64) (*TokenBalance, error) {
	var balance TokenBalance
	if err := c.get(ctx, "/tokens/"+strconv.FormatInt(userID, 10), &balance); err != nil {
		return nil, err
	}
	return &balance, nil
}

// ReplenishTokens adds tokens to a user's balance and returns the new total.
func (c *Client) ReplenishTokens(ctx context.Context, userID int64, amount int) (*TokenBalance, error) {
	path := fmt.Sprintf("/tokens/replenish?user_id=%d&amount=%d", userID, amount)

	var balance TokenBalance
	if err := c.post(ctx, path, nil, &balance); err != nil {
		return nil, err
	}
	return &balance, nil
}

// =============================================================================
// TRANSPORT
// =============================================================================

// post performs a single JSON POST with the client timeout applied.
func (c *Client) post(ctx context.Context, path string, reqBody, out interface{}) error {
	var body io.Reader
	if reqBody != nil {
		data, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.do(req, out)
}

// get performs a single JSON GET with the client timeout applied.
func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	return c.do(req, out)
}

// do executes the request with a deadline and decodes the JSON response.
func (c *Client) do(req *http.Request, out interface{}) error {
	ctx := req.Context()
	if _, hasDeadline := ctx.Deadline(); !hasDeadline && c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
		req = req.WithContext(ctx)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := readResponse(resp)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		return handleErrorResponse(resp.StatusCode, body)
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}

// readResponse reads the response body with a size limit.
//
// SECURITY: Response size limit prevents memory exhaustion.
func readResponse(resp *http.Response) ([]byte, error) {
	limitedReader := io.LimitReader(resp.Body, MaxResponseSize)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if int64(len(body)) == MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}

	return body, nil
}

// handleErrorResponse converts an HTTP error response to a GatewayError,
// preferring the backend's detail message when it parses.
func handleErrorResponse(statusCode int, body []byte) error {
	var apiErr apiErrorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Detail != "" {
		return &GatewayError{Status: statusCode, Message: apiErr.Detail}
	}
	return &GatewayError{Status: statusCode, Message: strings.TrimSpace(string(body))}
}
