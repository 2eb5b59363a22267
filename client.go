package techcv

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/sky0621/techcv/metrics"
)

const (
	// DefaultBaseURL is the local development origin used when no base URL
	// is configured.
	DefaultBaseURL = "http://localhost:8080"

	// DefaultMaxRetries reissues a failed request once.
	DefaultMaxRetries = 1

	// DefaultTimeout bounds a single request attempt.
	DefaultTimeout = 10 * time.Second
)

// Config holds connection and behavior configuration for the API client.
// Retry and timeout behavior is explicit rather than inherited from the
// transport.
type Config struct {
	// BaseURL is the backend origin. Defaults to DefaultBaseURL.
	BaseURL string

	// OAuthClientID identifies this client to the OAuth login endpoint.
	OAuthClientID string

	// MaxRetries is how many times a transport or 5xx failure is reissued.
	MaxRetries int

	// Timeout bounds each request attempt.
	Timeout time.Duration
}

// ConfigFromEnv reads configuration from TECHCV_API_BASE_URL and
// TECHCV_OAUTH_CLIENT_ID, falling back to defaults for anything unset.
func ConfigFromEnv() Config {
	return Config{
		BaseURL:       os.Getenv("TECHCV_API_BASE_URL"),
		OAuthClientID: os.Getenv("TECHCV_OAUTH_CLIENT_ID"),
	}
}

func (c *Config) normalize() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	// Zero means unset; pass a negative value to disable retries.
	if c.MaxRetries == 0 {
		c.MaxRetries = DefaultMaxRetries
	} else if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
}

// Option configures the Client.
type Option func(*Client)

// WithLogger sets the client logger.
func WithLogger(logger Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTokenStore attaches durable credential storage. When set, requests
// carry the stored auth token as a bearer credential.
func WithTokenStore(store TokenStore) Option {
	return func(c *Client) { c.tokens = store }
}

// WithMetrics records request counts and durations.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// Client issues authenticated JSON requests to the techcv backend and
// normalizes every failure into *APIError.
type Client struct {
	cfg     Config
	http    *http.Client
	logger  Logger
	tokens  TokenStore
	metrics *metrics.Metrics
	group   singleflight.Group
}

var (
	_ OAuthService        = (*Client)(nil)
	_ VerificationService = (*Client)(nil)
	_ RegistrationService = (*Client)(nil)
)

// NewClient creates an API client for the configured backend origin.
func NewClient(cfg Config, opts ...Option) *Client {
	cfg.normalize()
	c := &Client{
		cfg:    cfg,
		logger: defLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: cfg.Timeout}
	}
	return c
}

// Config returns the client's normalized configuration.
func (c *Client) Config() Config { return c.cfg }

// do issues one logical request, reissuing transport and 5xx failures up
// to MaxRetries times. Anything other than a 2xx response surfaces as
// *APIError.
func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("failed to encode %s request: %w", op, err)
		}
	}

	var lastErr *APIError
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		err := c.doOnce(ctx, op, method, path, payload, out)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return err
		}

		apiErr, ok := AsAPIError(err)
		if !ok {
			return err
		}
		lastErr = apiErr
		if !apiErr.retryable() {
			return apiErr
		}
		c.logger.Debug("%s attempt %d failed: %s", op, attempt+1, apiErr.Message)
	}
	return lastErr
}

func (c *Client) doOnce(ctx context.Context, op, method, path string, payload []byte, out any) error {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", op, err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.attachCredentials(ctx, req)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if c.metrics != nil {
			c.metrics.RecordRequest(op, 0, time.Since(start).Seconds())
		}
		// No response received: surface the transport message, no status.
		return &APIError{Message: err.Error()}
	}
	defer resp.Body.Close()

	if c.metrics != nil {
		c.metrics.RecordRequest(op, resp.StatusCode, time.Since(start).Seconds())
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{Message: err.Error(), Status: resp.StatusCode}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return decodeAPIError(resp, raw)
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", op, err)
	}
	return nil
}

func (c *Client) attachCredentials(ctx context.Context, req *http.Request) {
	if c.tokens == nil {
		return
	}
	token, err := c.tokens.Load(ctx)
	if err != nil {
		c.logger.Debug("could not load auth token: %s", err)
		return
	}
	if token == "" || !tokenUsable(token) {
		return
	}
	req.Header.Set("Authorization", "Bearer "+token)
}

// envelope is the backend's standard response wrapper.
type envelope struct {
	Status string           `json:"status"`
	Data   json.RawMessage  `json:"data,omitempty"`
	Error  *envelopeError   `json:"error,omitempty"`
	Meta   *json.RawMessage `json:"meta,omitempty"`
}

type envelopeError struct {
	RequestID string       `json:"requestId,omitempty"`
	Code      string       `json:"code,omitempty"`
	Message   string       `json:"message,omitempty"`
	Details   []FieldError `json:"details,omitempty"`
}

// decodeAPIError builds an APIError from the error envelope, falling back
// to the raw HTTP status line when the body is absent or unparsable.
func decodeAPIError(resp *http.Response, raw []byte) *APIError {
	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Error != nil {
		message := env.Error.Message
		if message == "" {
			message = resp.Status
		}
		return &APIError{
			Message:   message,
			Code:      env.Error.Code,
			RequestID: env.Error.RequestID,
			Status:    resp.StatusCode,
			Details:   env.Error.Details,
		}
	}
	return &APIError{Message: resp.Status, Status: resp.StatusCode}
}
