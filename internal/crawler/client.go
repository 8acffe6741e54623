package crawler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Client is the HTTP client shared by discovery and page fetching.
// It applies a per-host token-bucket rate limit, a per-request timeout,
// a body size cap, and one retry on transient failures.
type Client struct {
	httpClient  *http.Client
	userAgent   string
	headers     map[string]string
	maxBodySize int64
	perHostRate rate.Limit

	limiters   map[string]*rate.Limiter
	limitersMu sync.Mutex
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithUserAgent sets the User-Agent header for every request.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithHeaders sets extra headers added to every request, e.g. auth
// headers for a staging site from the per-domain config.
func WithHeaders(h map[string]string) ClientOption {
	return func(c *Client) {
		c.headers = h
	}
}

// WithMaxBodySize caps the response body bytes read per request.
func WithMaxBodySize(n int64) ClientOption {
	return func(c *Client) {
		c.maxBodySize = n
	}
}

// WithRequestsPerSecond sets the per-host rate limit.
func WithRequestsPerSecond(rps float64) ClientOption {
	return func(c *Client) {
		c.perHostRate = rate.Limit(rps)
	}
}

// NewClient creates a Client with the given per-request timeout.
func NewClient(timeout time.Duration, opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 16,
				IdleConnTimeout:     30 * time.Second,
				TLSHandshakeTimeout: 5 * time.Second,
				DialContext: (&net.Dialer{
					Timeout:   5 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
			},
		},
		userAgent:   "QuickWinBot/1.0",
		maxBodySize: 5 * 1024 * 1024,
		perHostRate: 4,
		limiters:    make(map[string]*rate.Limiter),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// limiter returns the rate limiter for a host, creating it on first use.
func (c *Client) limiter(host string) *rate.Limiter {
	c.limitersMu.Lock()
	defer c.limitersMu.Unlock()

	if l, ok := c.limiters[host]; ok {
		return l
	}

	l := rate.NewLimiter(c.perHostRate, 1)
	c.limiters[host] = l
	return l
}

// Response is the subset of an HTTP response the audit needs.
type Response struct {
	// StatusCode is the final status after redirects.
	StatusCode int

	// FinalURL is the URL after redirects.
	FinalURL string

	// ContentType is the Content-Type header value.
	ContentType string

	// XRobotsTag is the X-Robots-Tag header value, lowercased.
	XRobotsTag string

	// Body is the response body, capped at the client's size limit.
	Body []byte
}

// Get fetches a URL, waiting on the host's rate limiter first.
// Transient failures are retried once and the second outcome is
// returned. Transient means a network error (timeout, connection
// reset) or a gateway-style 502/503/504; a plain 500 is treated as
// the page's real state and recorded as-is.
func (c *Client) Get(ctx context.Context, rawURL string) (*Response, error) {
	resp, err := c.get(ctx, rawURL)
	if err == nil && !transientStatus(resp.StatusCode) {
		return resp, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	// One retry after a short pause covers momentary blips without
	// hammering an already struggling host.
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(500 * time.Millisecond):
	}

	return c.get(ctx, rawURL)
}

// transientStatus reports whether a status code signals a momentary
// upstream problem worth one retry.
func transientStatus(code int) bool {
	switch code {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

func (c *Client) get(ctx context.Context, rawURL string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", rawURL, err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	if err := c.limiter(req.URL.Host).Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck // Read side already consumed

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read body of %s: %w", rawURL, err)
	}

	finalURL := rawURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return &Response{
		StatusCode:  resp.StatusCode,
		FinalURL:    finalURL,
		ContentType: resp.Header.Get("Content-Type"),
		XRobotsTag:  strings.ToLower(resp.Header.Get("X-Robots-Tag")),
		Body:        body,
	}, nil
}

// IsTimeout reports whether an error is a timeout rather than another
// kind of request failure. Used to choose the fetch-error marker on
// shell page records.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}
