package distance

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	orsMaxAttempts  = 4
	orsFirstBackoff = 250 * time.Millisecond
	orsMaxBackoff   = 5 * time.Second
)

// orsStatusError is a non-2xx answer from OpenRouteService.
type orsStatusError struct {
	Code       int
	Body       string
	RetryAfter time.Duration
}

func (e *orsStatusError) Error() string {
	return fmt.Sprintf("ors: status %d: %s", e.Code, e.Body)
}

func (e *orsStatusError) temporary() bool {
	switch e.Code {
	case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

func (o *ORSDistanceProvider) newRequest(ctx context.Context, method, url string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", o.apiKey)
	req.Header.Set("Accept", "application/json, application/geo+json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
	}
	return req, nil
}

// send performs one attempt. The body of a failed response is drained into
// the returned error so the connection can be reused.
func (o *ORSDistanceProvider) send(req *http.Request) (*http.Response, error) {
	resp, err := o.session.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 300 {
		return resp, nil
	}

	defer resp.Body.Close()
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	return nil, &orsStatusError{
		Code:       resp.StatusCode,
		Body:       strings.TrimSpace(string(b)),
		RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
	}
}

// call retries network errors, 429 and 5xx answers with doubling backoff.
// A Retry-After header from the rate limiter overrides the backoff.
func (o *ORSDistanceProvider) call(ctx context.Context, build func() (*http.Request, error)) (*http.Response, error) {
	wait := orsFirstBackoff
	for attempt := 1; ; attempt++ {
		req, err := build()
		if err != nil {
			return nil, err
		}
		resp, err := o.send(req)
		if err == nil {
			return resp, nil
		}

		delay, ok := retryDelay(err, wait)
		if !ok || attempt == orsMaxAttempts {
			return nil, err
		}

		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
		wait = min(wait*2, orsMaxBackoff)
	}
}

func retryDelay(err error, backoff time.Duration) (time.Duration, bool) {
	var se *orsStatusError
	if errors.As(err, &se) {
		if !se.temporary() {
			return 0, false
		}
		if se.RetryAfter > 0 {
			return min(se.RetryAfter, orsMaxBackoff), true
		}
		return backoff, true
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return 0, false
	}
	var ne net.Error
	return backoff, errors.As(err, &ne)
}

// parseRetryAfter understands the delay-seconds form only; ORS does not send dates.
func parseRetryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
