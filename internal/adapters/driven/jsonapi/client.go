// Package jsonapi is the HTTP client shared by the JSON-over-HTTP model
// adapters. It encodes requests, applies provider headers and maps
// non-2xx responses to *StatusError.
package jsonapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/custodia-labs/medreport/internal/core/domain"
)

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 32 << 20

// Config describes one provider endpoint.
type Config struct {
	// Provider prefixes error messages, e.g. "openai".
	Provider string

	// BaseURL is joined with each request path. A trailing slash is dropped.
	BaseURL string

	Timeout time.Duration

	// Header is sent with every request.
	Header http.Header

	// ErrorText extracts a readable message from an error body.
	// The trimmed body is used when nil or when it returns "".
	ErrorText func(body []byte) string

	// CheckResponse, when set, replaces the built-in status check. A
	// non-nil result is returned wrapped and the body is not decoded.
	CheckResponse func(resp *http.Response) error
}

// Client sends JSON requests to a single provider.
type Client struct {
	cfg  Config
	http *http.Client
}

// New returns a client for cfg.
func New(cfg Config) *Client {
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}
}

// BaseURL returns the endpoint requests are sent to.
func (c *Client) BaseURL() string {
	return c.cfg.BaseURL
}

// StatusError is a non-2xx provider response.
type StatusError struct {
	Provider string
	Status   int
	Message  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s error (status %d): %s", e.Provider, e.Status, e.Message)
}

// Unwrap exposes domain.ErrRateLimited for 429 responses so the fallback
// generator can tell quota exhaustion from other failures.
func (e *StatusError) Unwrap() error {
	if e.Status == http.StatusTooManyRequests {
		return domain.ErrRateLimited
	}
	return nil
}

// Post sends in as JSON and decodes a successful response into out.
func (c *Client) Post(ctx context.Context, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("%s: marshal request: %w", c.cfg.Provider, err)
	}
	return c.do(ctx, http.MethodPost, path, payload, out)
}

// Get fetches path and decodes the response into out. A nil out only
// checks the status.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte, out any) error {
	var body io.Reader = http.NoBody
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s: create request: %w", c.cfg.Provider, err)
	}
	for k, v := range c.cfg.Header {
		req.Header[k] = v
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return c.transportError(err)
	}
	defer resp.Body.Close()

	if c.cfg.CheckResponse != nil {
		if err := c.cfg.CheckResponse(resp); err != nil {
			return fmt.Errorf("%s: %w", c.cfg.Provider, err)
		}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("%s: read response: %w", c.cfg.Provider, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Provider: c.cfg.Provider, Status: resp.StatusCode, Message: c.errorText(data)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", c.cfg.Provider, err)
	}
	return nil
}

// transportError keeps the operation and cause of a *url.Error but not the
// URL, whose path must not reach rate-limit matching.
func (c *Client) transportError(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return fmt.Errorf("%s: %s request failed: %w", c.cfg.Provider, uerr.Op, uerr.Err)
	}
	return fmt.Errorf("%s: send request: %w", c.cfg.Provider, err)
}

func (c *Client) errorText(body []byte) string {
	if c.cfg.ErrorText != nil {
		if msg := c.cfg.ErrorText(body); msg != "" {
			return msg
		}
	}
	return strings.TrimSpace(string(body))
}
