// Package blobhttp implements the blob port against an HTTP object store.
// Objects live at {baseURL}/{key}; reads are anonymous GETs and writes are
// PUTs authorized with a bearer token.
package blobhttp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/glamsite/glamsite/internal/resilience"
)

// maxObjectBytes caps how much of a response body is read.
const maxObjectBytes = 8 << 20

// ErrNoCredential is returned by Put when no write token is configured.
var ErrNoCredential = errors.New("blob token not configured")

// StatusError is a non-2xx response from the object store.
type StatusError struct {
	Method     string
	StatusCode int
	Body       string
}

// Error returns the store's own error text when it sent one, since that is
// what an operator needs to diagnose a rejected write.
func (e *StatusError) Error() string {
	if e.Body != "" {
		return e.Body
	}
	return fmt.Sprintf("blob %s: status %d", strings.ToLower(e.Method), e.StatusCode)
}

// Client talks to the object store over HTTP.
type Client struct {
	baseURL    string
	token      func() string
	httpClient *http.Client
	breaker    *resilience.Breaker
}

// NewClient creates a client for the store at baseURL. An empty token
// leaves the client read-only.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   func() string { return token },
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// SetTokenSource replaces the static token with one read on every call,
// so a rotated credential takes effect without a restart.
func (c *Client) SetTokenSource(token func() string) {
	c.token = token
}

// SetBreaker attaches a circuit breaker to all outgoing HTTP calls.
func (c *Client) SetBreaker(b *resilience.Breaker) {
	c.breaker = b
}

// Writable reports whether a write token is configured.
func (c *Client) Writable() bool { return c.token() != "" }

// Get fetches the object at key. A 404 is reported as found=false.
func (c *Client) Get(ctx context.Context, key string) (data []byte, found bool, err error) {
	err = c.run(ctx, func(ctx context.Context) error {
		resp, err := c.do(ctx, http.MethodGet, key, "", nil)
		if err != nil {
			return err
		}
		switch {
		case resp.status == http.StatusNotFound:
			return nil
		case resp.status >= 200 && resp.status < 300:
			data, found = resp.body, true
			return nil
		default:
			return &StatusError{Method: http.MethodGet, StatusCode: resp.status, Body: strings.TrimSpace(string(resp.body))}
		}
	})
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", key, err)
	}
	return data, found, nil
}

// Put uploads data as the complete object at key.
func (c *Client) Put(ctx context.Context, key string, data []byte) error {
	token := c.token()
	if token == "" {
		return ErrNoCredential
	}
	return c.run(ctx, func(ctx context.Context) error {
		resp, err := c.do(ctx, http.MethodPut, key, token, data)
		if err != nil {
			return err
		}
		if resp.status < 200 || resp.status >= 300 {
			return &StatusError{Method: http.MethodPut, StatusCode: resp.status, Body: strings.TrimSpace(string(resp.body))}
		}
		return nil
	})
}

func (c *Client) run(ctx context.Context, fn func(ctx context.Context) error) error {
	if c.breaker == nil {
		return fn(ctx)
	}
	return c.breaker.Execute(ctx, fn)
}

type response struct {
	status int
	body   []byte
}

func (c *Client) do(ctx context.Context, method, key, token string, body []byte) (*response, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/"+strings.TrimLeft(key, "/"), bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Cache-Control", "no-store")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxObjectBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return &response{status: resp.StatusCode, body: data}, nil
}
