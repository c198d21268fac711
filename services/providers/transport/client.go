// Package transport is the outbound HTTP client shared by every lyric source.
// Each upstream host gets its own circuit breaker.
package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"lyricsync-go/circuitbreaker"
	"lyricsync-go/logcolors"

	log "github.com/sirupsen/logrus"
)

const (
	DefaultTimeout   = 8 * time.Second
	DefaultUserAgent = "lyricsync-go/1.0"

	// Upper bound on a response body; lyric payloads are far smaller
	maxBodyBytes = 4 << 20
)

// ErrNotFound is returned for HTTP 404. It is a normal miss and does not
// count against the host's circuit breaker.
var ErrNotFound = errors.New("upstream resource not found")

// StatusError is returned for any other non-2xx response
type StatusError struct {
	Host       string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d", e.Host, e.StatusCode)
}

// Options configures a Client. Zero values fall back to defaults.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	Breakers  *circuitbreaker.Group

	// OnFailure, if set, is called for every failed request except 404s
	OnFailure func(host string, err error)
}

// Client issues GET requests with a fixed timeout and User-Agent
type Client struct {
	http      *http.Client
	userAgent string
	breakers  *circuitbreaker.Group
	onFailure func(host string, err error)
}

// New creates a Client
func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Breakers == nil {
		opts.Breakers = circuitbreaker.NewGroup(circuitbreaker.Config{})
	}

	return &Client{
		http:      &http.Client{Timeout: opts.Timeout},
		userAgent: opts.UserAgent,
		breakers:  opts.Breakers,
		onFailure: opts.OnFailure,
	}
}

// Breakers exposes the per-host circuit breakers
func (c *Client) Breakers() *circuitbreaker.Group {
	return c.breakers
}

// Get fetches endpoint with query appended and returns the body of a 2xx
// response. headers are added on top of the User-Agent.
func (c *Client) Get(ctx context.Context, endpoint string, query url.Values, headers map[string]string) ([]byte, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}
	if len(query) > 0 {
		q := u.Query()
		for k, vs := range query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}

	host := u.Host
	cb := c.breakers.For(host)
	if !cb.Allow() {
		log.Debugf("%s Skipping request to %s (retry in %v)",
			logcolors.CircuitBreakerPrefix(host), host, cb.TimeUntilRetry())
		return nil, fmt.Errorf("%s: %w", host, circuitbreaker.ErrCircuitOpen)
	}

	body, err := c.do(ctx, u.String(), headers)
	switch {
	case err == nil:
		cb.RecordSuccess()
	case errors.Is(err, ErrNotFound):
		cb.RecordSuccess()
	case ctx.Err() != nil:
		// Caller gave up; the host is not at fault
	default:
		cb.RecordFailure()
		if c.onFailure != nil {
			c.onFailure(host, err)
		}
	}
	return body, err
}

func (c *Client) do(ctx context.Context, rawURL string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	log.Debugf("%s GET %s", logcolors.LogHTTP, rawURL)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Host: req.URL.Host, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return body, nil
}
