package fixgen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/seotools/quickwin/internal/model"
)

// ErrNotGenerable is returned when a finding's fixes cannot be drafted
// by the text service (links, canonicals, structured data).
var ErrNotGenerable = errors.New("fixgen: finding does not support generated fixes")

// maxResponseSize bounds the service response body.
const maxResponseSize = 1 << 20 // 1MB

// Client talks to the fix-generation service, an external text service
// that drafts replacement titles, meta descriptions, headings, and alt
// text. The service is treated as opaque and possibly unreliable: the
// client validates only that each returned URL echoes a requested one
// and drops everything else.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client, used in tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a Client for the service at endpoint. The timeout
// bounds each request end to end.
func NewClient(endpoint string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// AffectedPage is one page sent to the service for rewriting.
type AffectedPage struct {
	URL          string `json:"url"`
	CurrentValue string `json:"current_value,omitempty"`
	WordCount    int    `json:"word_count,omitempty"`
}

// request is the service request payload.
type request struct {
	Category      string         `json:"category"`
	Type          string         `json:"type"`
	AffectedPages []AffectedPage `json:"affected_pages"`
}

// Fix is one drafted replacement returned by the service.
type Fix struct {
	URL          string `json:"url"`
	CurrentValue string `json:"current_value,omitempty"`
	SuggestedFix string `json:"suggested_fix"`
	Reasoning    string `json:"reasoning,omitempty"`
}

// response is the service response payload.
type response struct {
	Fixes []Fix `json:"fixes"`
}

// GenerateForFinding asks the service to draft fixes for one finding.
// Only findings flagged CanGenerateFix are sent; others return
// ErrNotGenerable. Current values come from the finding's details and
// word counts from the page lookup (both optional). Returned fixes
// citing URLs that were never requested are silently dropped.
func (c *Client) GenerateForFinding(ctx context.Context, f *model.Finding, pages map[string]*model.PageRecord) ([]Fix, error) {
	if !f.CanGenerateFix {
		return nil, ErrNotGenerable
	}

	values := make(map[string]string, len(f.Details))
	for _, d := range f.Details {
		values[d.URL] = d.CurrentValue
	}

	requested := make(map[string]bool, len(f.URLs))
	affected := make([]AffectedPage, 0, len(f.URLs))
	for _, u := range f.URLs {
		requested[u] = true
		page := AffectedPage{URL: u, CurrentValue: values[u]}
		if p, ok := pages[u]; ok {
			page.WordCount = p.WordCount
		}
		affected = append(affected, page)
	}

	resp, err := c.post(ctx, request{
		Category:      string(f.Category),
		Type:          f.Type,
		AffectedPages: affected,
	})
	if err != nil {
		return nil, err
	}

	fixes := make([]Fix, 0, len(resp.Fixes))
	for _, fix := range resp.Fixes {
		if !requested[fix.URL] {
			continue
		}
		fixes = append(fixes, fix)
	}

	return fixes, nil
}

// post sends one request and decodes the response.
func (c *Client) post(ctx context.Context, payload request) (*response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("fixgen: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("fixgen: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fixgen: request failed: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fixgen: service returned status %d", httpResp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("fixgen: read response: %w", err)
	}

	var resp response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("fixgen: decode response: %w", err)
	}

	return &resp, nil
}
