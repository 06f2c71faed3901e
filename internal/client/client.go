// Package client talks to the freight backend over its JSON API. The session
// lives in a cookie jar, so one Client is one logged-in user.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"freight-order-service/internal/wire"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
)

// DistanceEstimator fills in the distance of an order form before submit.
type DistanceEstimator interface {
	DistanceKm(ctx context.Context, pickup, delivery string) float64
}

type Client struct {
	baseURL   string
	http      *http.Client
	distances DistanceEstimator
}

type Option func(*Client)

// WithHTTPClient replaces the underlying client. Its Jar is replaced with a
// fresh cookie jar when nil.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithDistances(d DistanceEstimator) Option {
	return func(c *Client) { c.distances = d }
}

// New returns a client for the backend at baseURL (without the /api suffix).
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("client: base url is empty")
	}

	c := &Client{baseURL: baseURL, http: &http.Client{}}
	for _, opt := range opts {
		opt(c)
	}

	if c.http.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("client: cookie jar: %w", err)
		}
		c.http.Jar = jar
	}
	return c, nil
}

// call sends one request and decodes the envelope. It does not judge the
// success flag.
func (c *Client) call(ctx context.Context, method, path string, body any) (*wire.Envelope, int, error) {
	op := method + " " + path

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: marshal body: %w", op, err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/api"+path, rd)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: new request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, resp.StatusCode, &TransportError{Op: op, Status: resp.StatusCode, Err: err}
	}

	var env wire.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, resp.StatusCode, &TransportError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("not an envelope: %w", err)}
	}
	return &env, resp.StatusCode, nil
}

// do is call plus the success check.
func (c *Client) do(ctx context.Context, method, path string, body any) (*wire.Envelope, error) {
	env, status, err := c.call(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	if !env.Success {
		re := &RejectedError{Status: status, Message: env.Message}
		_ = env.Decode("errors", &re.Fields)
		return nil, re
	}
	return env, nil
}
