// Package httpapi is the JSON-over-HTTP client shared by the model
// provider adapters. It retries rate-limited and server-side failures
// and turns non-2xx responses into StatusError values carrying the
// provider's own error message.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Defaults for New.
const (
	DefaultRetries = 2
	DefaultBackoff = 250 * time.Millisecond

	// maxRetryAfter caps server-requested waits.
	maxRetryAfter = 30 * time.Second
)

// StatusError is returned for a non-2xx response.
type StatusError struct {
	Provider string
	Code     int
	Message  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s error (status %d): %s", e.Provider, e.Code, e.Message)
}

// Retryable reports whether the request may succeed if repeated.
func (e *StatusError) Retryable() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

// Client sends JSON requests to one provider.
type Client struct {
	provider    string
	baseURL     string
	http        *http.Client
	header      http.Header
	retries     int
	backoff     time.Duration
	unavailable error
}

// Option configures a Client.
type Option func(*Client)

// WithHeader sets a header on every request.
func WithHeader(key, value string) Option {
	return func(c *Client) { c.header.Set(key, value) }
}

// WithRetries sets how many times a failed request is repeated.
func WithRetries(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.retries = n
		}
	}
}

// WithBackoff sets the first retry delay. It doubles on each attempt.
func WithBackoff(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.backoff = d
		}
	}
}

// New creates a client for provider rooted at baseURL. Transport failures
// are wrapped with unavailable so callers can match them with errors.Is.
func New(provider, baseURL string, timeout time.Duration, unavailable error, opts ...Option) *Client {
	c := &Client{
		provider:    provider,
		baseURL:     strings.TrimRight(baseURL, "/"),
		http:        &http.Client{Timeout: timeout},
		header:      make(http.Header),
		retries:     DefaultRetries,
		backoff:     DefaultBackoff,
		unavailable: unavailable,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// PostJSON sends in to path and decodes the response into out.
func (c *Client) PostJSON(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	for attempt := 0; ; attempt++ {
		data, wait, err := c.post(ctx, path, body)
		if err == nil {
			if err := json.Unmarshal(data, out); err != nil {
				return fmt.Errorf("%s: decode response: %w", c.provider, err)
			}
			return nil
		}
		if attempt >= c.retries || !retryable(err) || ctx.Err() != nil {
			return err
		}
		if wait == 0 {
			wait = c.backoff << attempt
		}
		if err := sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// post makes one attempt. wait is the server-requested retry delay, if any.
func (c *Client) post(ctx context.Context, path string, body []byte) (data []byte, wait time.Duration, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %s: %w", c.unavailable, c.provider, err)
	}
	defer resp.Body.Close()

	data, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %s: read response: %w", c.unavailable, c.provider, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, retryAfter(resp.Header.Get("Retry-After")), &StatusError{
			Provider: c.provider,
			Code:     resp.StatusCode,
			Message:  errorMessage(data),
		}
	}
	return data, 0, nil
}

// Ping issues a GET to path and expects 200. It is never retried.
func (c *Client) Ping(ctx context.Context, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return fmt.Errorf("%s: failed to create ping request: %w", c.provider, err)
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: ping failed: %w", c.provider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{Provider: c.provider, Code: resp.StatusCode, Message: errorMessage(data)}
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	for k, v := range c.header {
		req.Header[k] = v
	}
}

func retryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Retryable()
	}
	// Transport failures.
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// errorMessage extracts the provider message from an error body. OpenAI and
// Anthropic send {"error":{"message":...}}, Ollama sends {"error":"..."}.
func errorMessage(body []byte) string {
	var nested struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &nested) == nil && nested.Error.Message != "" {
		return nested.Error.Message
	}
	var flat struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &flat) == nil && flat.Error != "" {
		return flat.Error
	}
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		return "empty response"
	}
	return msg
}

func retryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs <= 0 {
		return 0
	}
	return min(time.Duration(secs)*time.Second, maxRetryAfter)
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
