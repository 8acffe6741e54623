package model

import "time"

// Fetch-error markers recorded on page records whose request never
// produced a usable HTML response.
const (
	// FetchErrTimeout marks a fetch that exceeded the request timeout.
	FetchErrTimeout = "timeout"

	// FetchErrRequest marks a fetch that failed before or during the
	// request (DNS, TLS, connection reset).
	FetchErrRequest = "request_failed"

	// FetchErrNonHTML marks a successful response with a non-HTML
	// content type. The page carries no signals but is not broken.
	FetchErrNonHTML = "non_html"
)

// PageRecord holds the SEO signals extracted from one fetched page.
// A record is created once per unique normalized URL per crawl and is
// never mutated afterwards; a re-crawl produces a new record that
// supersedes the old one by FetchedAt.
//
// Failed fetches still produce a record (Status 0 plus FetchError) so
// broken-link detection can resolve link targets against the full set.
type PageRecord struct {
	// URL is the requested URL and the record's identity within a crawl.
	URL string `json:"url"`

	// FinalURL is the URL after redirects. Equal to URL when no redirect
	// occurred or the fetch failed.
	FinalURL string `json:"final_url"`

	// Status is the HTTP status code. 0 means the fetch failed before a
	// response arrived (timeout, DNS, connection reset).
	Status int `json:"status"`

	// FetchError is a short machine-readable marker for failed fetches:
	// "timeout", "request_failed", "non_html". Empty on success.
	FetchError string `json:"fetch_error,omitempty"`

	// Title is the first <title> text, trimmed. Empty when absent.
	Title string `json:"title"`

	// MetaDescription is the first description meta content. Empty when absent.
	MetaDescription string `json:"meta_description"`

	// Canonical is the resolved absolute canonical URL, empty when absent.
	Canonical string `json:"canonical,omitempty"`

	// RobotsMeta is the lowercased robots meta content (or X-Robots-Tag
	// header value), e.g. "noindex, nofollow".
	RobotsMeta string `json:"robots_meta,omitempty"`

	// Noindex is true when RobotsMeta contains a noindex directive.
	Noindex bool `json:"noindex"`

	// H1s contains every top-level H1 text in document order.
	// Empty slice means missing H1; length > 1 means multiple H1s.
	H1s []string `json:"h1s"`

	// Headings contains all h1-h6 headings in document order, used for
	// hierarchy checks.
	Headings []Heading `json:"headings,omitempty"`

	// WordCount counts whitespace-delimited tokens in the visible body
	// text, excluding script/style/nav/header/footer content.
	WordCount int `json:"word_count"`

	// Images lists every <img> with a src, carrying the resolved URL and
	// the alt attribute. Alt is nil when the attribute is absent, which
	// is distinct from an intentionally empty alt="".
	Images []Image `json:"images,omitempty"`

	// InternalLinks are anchor targets on the same registrable domain,
	// resolved to absolute URLs.
	InternalLinks []string `json:"internal_links,omitempty"`

	// OutboundLinks are anchor targets pointing off-domain.
	OutboundLinks []string `json:"outbound_links,omitempty"`

	// HasSchema is true when any structured-data block is present
	// (JSON-LD, microdata, RDFa), regardless of validity.
	HasSchema bool `json:"has_schema"`

	// FetchedAt is when the page was fetched.
	FetchedAt time.Time `json:"fetched_at"`
}

// Heading is one h1-h6 element with its level and trimmed text.
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
}

// Image is one image element with its resolved source URL and alt text.
type Image struct {
	Src string `json:"src"`

	// Alt is nil when the attribute is missing. An empty non-nil value
	// means alt="" was present, which is valid for decorative images.
	Alt *string `json:"alt"`
}

// Analyzable reports whether the page fetched successfully and should
// feed content rules. Failed fetches and error statuses still matter for
// link checks but must not trigger missing-title style issues.
func (p *PageRecord) Analyzable() bool {
	return p.FetchError == "" && p.Status >= 200 && p.Status < 400
}

// Broken reports whether a link pointing at this page is broken:
// the fetch failed outright or the server answered 4xx/5xx. A non-HTML
// response that arrived fine is unanalyzable but not broken.
func (p *PageRecord) Broken() bool {
	if p.FetchError == FetchErrNonHTML {
		return p.Status == 0 || p.Status >= 400
	}
	return p.FetchError != "" || p.Status == 0 || p.Status >= 400
}

// EffectiveURL returns the address to cite in evidence: the post-redirect
// URL when known, otherwise the requested one.
func (p *PageRecord) EffectiveURL() string {
	if p.FinalURL != "" {
		return p.FinalURL
	}
	return p.URL
}
