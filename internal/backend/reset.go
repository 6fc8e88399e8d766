// Package backend talks to the conversation service's maintenance endpoints.
package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrStatus is returned when the service answers with a non-2xx status.
var ErrStatus = errors.New("unexpected status")

// Result is the outcome of an asynchronous reset.
type Result struct {
	Status  int // HTTP status, 0 when no response arrived
	Err     error
	Elapsed time.Duration
}

// OK reports whether the reset succeeded.
func (r Result) OK() bool { return r.Err == nil }

// Client calls the reset endpoint with a bounded timeout.
type Client struct {
	http    *http.Client
	base    string
	timeout time.Duration
}

// NewClient returns a client for the service at base. Every request is
// bounded by timeout.
func NewClient(base string, timeout time.Duration) *Client {
	return &Client{
		http:    &http.Client{},
		base:    strings.TrimRight(base, "/"),
		timeout: timeout,
	}
}

// ResetMemory asks the service to forget every conversation. It returns the
// HTTP status it saw, if any.
func (c *Client) ResetMemory(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/reset-memory", strings.NewReader("{}"))
	if err != nil {
		return 0, fmt.Errorf("build reset request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("reset memory: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, fmt.Errorf("reset memory: %w %d %s", ErrStatus, resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	return resp.StatusCode, nil
}

// ResetAsync runs ResetMemory in the background. The returned channel is
// buffered and receives exactly one Result, so the caller may poll it or
// drop it without leaking the goroutine.
func (c *Client) ResetAsync(ctx context.Context) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		start := time.Now()
		status, err := c.ResetMemory(ctx)
		out <- Result{Status: status, Err: err, Elapsed: time.Since(start)}
	}()
	return out
}
