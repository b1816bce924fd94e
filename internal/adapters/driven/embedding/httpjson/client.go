// Package httpjson sends JSON requests to embedding providers with retries.
package httpjson

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"
)

// Defaults for Client fields left zero.
const (
	DefaultBackoff = 250 * time.Millisecond
	maxBodyBytes   = 64 << 20
)

// StatusError reports a non-2xx response.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s error (status %d): %s", e.Provider, e.StatusCode, e.Body)
}

// Retryable reports whether the status is worth retrying.
func (e *StatusError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// Client posts JSON and decodes JSON responses.
// Transport errors, 429 and 5xx responses are retried with exponential backoff.
type Client struct {
	HTTP       *http.Client
	Provider   string
	Headers    map[string]string
	MaxRetries uint64
	Backoff    time.Duration
}

// Do sends in (when non-nil) as the JSON body and decodes the response into
// out (when non-nil).
func (c *Client) Do(ctx context.Context, method, url string, in, out any) error {
	var payload []byte
	if in != nil {
		var err error
		if payload, err = json.Marshal(in); err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
	}

	base := c.Backoff
	if base <= 0 {
		base = DefaultBackoff
	}
	backoff := retry.WithMaxRetries(c.MaxRetries, retry.WithJitterPercent(10, retry.NewExponential(base)))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		body := io.Reader(http.NoBody)
		if payload != nil {
			body = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, body)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		for k, v := range c.Headers {
			req.Header.Set(k, v)
		}

		resp, err := c.client().Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return retry.RetryableError(fmt.Errorf("send request: %w", err))
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if err != nil {
			return retry.RetryableError(fmt.Errorf("read response: %w", err))
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			serr := &StatusError{Provider: c.Provider, StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(data))}
			if serr.Retryable() {
				return retry.RetryableError(serr)
			}
			return serr
		}
		if out == nil {
			return nil
		}
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	})
}

func (c *Client) client() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return http.DefaultClient
}
