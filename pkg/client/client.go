// Package client talks to the graphscope daemon over HTTP.
package client

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

	"github.com/rmax-ai/graphscope/pkg/graph"
)

// DefaultEndpoint is used when NewClient gets an empty endpoint.
const DefaultEndpoint = "http://127.0.0.1:8090"

// ErrUnexpectedStatus wraps every non-2xx answer from the daemon.
var ErrUnexpectedStatus = errors.New("unexpected status")

// StatusError carries the status code and the daemon's error message.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: %d", ErrUnexpectedStatus, e.Code)
	}
	return fmt.Sprintf("%s: %d: %s", ErrUnexpectedStatus, e.Code, e.Message)
}

func (e *StatusError) Unwrap() error { return ErrUnexpectedStatus }

// Client is the graphscope daemon client.
type Client struct {
	endpoint string
	http     *http.Client
	backoff  BackoffStrategy
	retries  int
	token    string
}

// NewClient creates a client for endpoint, DefaultEndpoint if empty.
// Requests are retried up to 3 times on transport errors and 5xx answers.
func NewClient(endpoint string) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
		backoff: DefaultBackoff(),
		retries: 3,
	}
}

// WithRetries sets the retry count and strategy. It returns c.
func (c *Client) WithRetries(n int, b BackoffStrategy) *Client {
	if n < 0 {
		n = 0
	}
	if b == nil {
		b = NoBackoff{}
	}
	c.retries, c.backoff = n, b
	return c
}

// WithToken sends token as a bearer credential on every request. It
// returns c.
func (c *Client) WithToken(token string) *Client {
	c.token = token
	return c
}

// Endpoint returns the daemon base URL.
func (c *Client) Endpoint() string { return c.endpoint }

// GetGraph fetches the dataset to display.
func (c *Client) GetGraph(ctx context.Context) (*graph.Payload, error) {
	var p graph.Payload
	if err := c.do(ctx, http.MethodGet, "/v1/graph", nil, &p); err != nil {
		return nil, fmt.Errorf("get graph: %w", err)
	}
	return &p, nil
}

// PutGraph replaces the daemon's dataset with p.
func (c *Client) PutGraph(ctx context.Context, p *graph.Payload) (PutResult, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return PutResult{}, fmt.Errorf("failed to marshal graph: %w", err)
	}
	var res PutResult
	if err := c.do(ctx, http.MethodPut, "/v1/graph", body, &res); err != nil {
		return PutResult{}, fmt.Errorf("put graph: %w", err)
	}
	return res, nil
}

// Ping checks the health of the daemon.
func (c *Client) Ping(ctx context.Context) (Status, error) {
	var st Status
	if err := c.do(ctx, http.MethodGet, "/v1/health", nil, &st); err != nil {
		return Status{}, fmt.Errorf("ping: %w", err)
	}
	return st, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	var err error
	for attempt := 0; ; attempt++ {
		var retry bool
		retry, err = c.once(ctx, method, path, body, out)
		if err == nil || !retry || attempt >= c.retries {
			return err
		}
		select {
		case <-time.After(c.backoff.Next(attempt)):
		case <-ctx.Done():
			return errors.Join(err, ctx.Err())
		}
	}
}

// once performs a single request and reports whether a failure is worth
// retrying.
func (c *Client) once(ctx context.Context, method, path string, body []byte, out any) (bool, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, rd)
	if err != nil {
		return false, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return ctx.Err() == nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		se := &StatusError{Code: resp.StatusCode}
		var eb errorBody
		if json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&eb) == nil {
			se.Message = eb.Error
		}
		return resp.StatusCode >= 500, se
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, fmt.Errorf("failed to decode response: %w", err)
	}
	return false, nil
}
