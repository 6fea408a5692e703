// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package querysvc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents a failed query.
type ClientError struct {
	Type       ErrorType
	Message    string
	StatusCode int // set for ErrTypeHTTPStatus
	Cause      error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeTransport
	ErrTypeHTTPStatus
	ErrTypeApplication
	ErrTypeInvalidResponse
	ErrTypeTimeout
)

// String returns the error type name.
func (t ErrorType) String() string {
	switch t {
	case ErrTypeTransport:
		return "transport"
	case ErrTypeHTTPStatus:
		return "http_status"
	case ErrTypeApplication:
		return "application"
	case ErrTypeInvalidResponse:
		return "invalid_response"
	case ErrTypeTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// ErrTimeout is returned when the request deadline expires.
var ErrTimeout = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}

// defaultApplicationError is the detail used when an error response carries
// no explanation.
const defaultApplicationError = "server processing failed"

// maxErrorBody caps how much of a non-2xx body is kept as error detail.
const maxErrorBody = 4096

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the query client.
type ClientConfig struct {
	// Endpoint is the full query URL (default: http://127.0.0.1:5000/query)
	Endpoint string

	// Timeout bounds a single query including reading the body (default: 60s)
	Timeout time.Duration

	// RatePerSecond throttles outgoing queries; 0 disables throttling
	RatePerSecond float64
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		Endpoint:      "http://127.0.0.1:5000/query",
		Timeout:       60 * time.Second,
		RatePerSecond: 2,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client sends questions to the query service.
//
// The Client is safe for concurrent use, although the conversation controller
// never has more than one request in flight.
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// NewClient creates a client with default configuration.
func NewClient(logger *zap.Logger) *Client {
	return NewClientWithConfig(DefaultConfig(), logger)
}

// NewClientWithConfig creates a client with custom configuration.
func NewClientWithConfig(config *ClientConfig, logger *zap.Logger) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Endpoint == "" {
		config.Endpoint = DefaultConfig().Endpoint
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultConfig().Timeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	limit := rate.Inf
	if config.RatePerSecond > 0 {
		limit = rate.Limit(config.RatePerSecond)
	}

	return &Client{
		config: config,
		// Deadlines come from the per-request context; see Query.
		httpClient: &http.Client{},
		limiter:    rate.NewLimiter(limit, 1),
		logger:     logger.Named("querysvc"),
	}
}

// Endpoint returns the configured query URL.
func (c *Client) Endpoint() string {
	return c.config.Endpoint
}

// Timeout returns the per-query deadline.
func (c *Client) Timeout() time.Duration {
	return c.config.Timeout
}

// CloseIdleConnections releases kept-alive connections, e.g. on exit.
func (c *Client) CloseIdleConnections() {
	c.httpClient.CloseIdleConnections()
}

// =============================================================================
// QUERY
// =============================================================================

// Query sends a question and returns the decoded answer.
//
// Non-2xx statuses, transport failures, undecodable bodies and responses whose
// status is not "success" are all returned as *ClientError.
func (c *Client) Query(ctx context.Context, question string) (*Answer, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, ErrTimeout
	}

	body, err := json.Marshal(QueryRequest{Question: question})
	if err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &ClientError{Type: ErrTypeTransport, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, &ClientError{Type: ErrTypeTransport, Message: "failed to reach query service", Cause: err}
	}
	defer drainAndClose(resp.Body)

	c.logger.Debug("server responded",
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &ClientError{
			Type:       ErrTypeHTTPStatus,
			StatusCode: resp.StatusCode,
			Message:    "HTTP error: status " + strconv.Itoa(resp.StatusCode) + ", message: " + strings.TrimSpace(string(text)),
		}
	}

	var result QueryResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}

	if result.Status != StatusSuccess {
		detail := result.Answer
		if detail == "" {
			detail = defaultApplicationError
		}
		return nil, &ClientError{Type: ErrTypeApplication, Message: detail}
	}

	return result.toAnswer(), nil
}

// =============================================================================
// HELPERS
// =============================================================================

// ErrorTypeOf returns the ErrorType of err, or ErrTypeUnknown.
func ErrorTypeOf(err error) ErrorType {
	var ce *ClientError
	if errors.As(err, &ce) {
		return ce.Type
	}
	return ErrTypeUnknown
}

// IsTimeout checks if an error is a timeout.
func IsTimeout(err error) bool {
	return ErrorTypeOf(err) == ErrTypeTimeout
}

// drainAndClose reads any remaining body so the connection can be reused.
func drainAndClose(r io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(r, 64<<10))
	_ = r.Close()
}
