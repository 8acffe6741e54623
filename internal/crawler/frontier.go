package crawler

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/benjaminestes/robots"
	"golang.org/x/sync/errgroup"
)

// LinkParser extracts same-page anchor targets from an HTML body,
// resolved to absolute URLs. Implemented by the extract package.
type LinkParser interface {
	Links(pageURL string, body []byte) []string
}

// Discovery method labels recorded in the crawl stats.
const (
	MethodSitemap  = "sitemap"
	MethodCrawl    = "crawl"
	MethodSeedOnly = "seed-only"
)

// FetchResult pairs a URL with its fetch outcome. Err is set when the
// request never produced a response; the page still participates in
// broken-link resolution as a failed record.
type FetchResult struct {
	URL      string
	Response *Response
	Err      error
}

// Result is the output of one crawl: every fetch outcome plus the
// discovery bookkeeping the audit result reports.
type Result struct {
	Fetches         []FetchResult
	Domain          string
	BaseURL         string
	DiscoveryMethod string
	URLsDiscovered  int
	SitemapMissing  bool
	TimedOut        bool
}

// Crawler discovers a site's URL set and fetches the pages. Discovery
// prefers the XML sitemap; when none exists it falls back to a
// breadth-first crawl of same-site links from the root page.
type Crawler struct {
	client         *Client
	links          LinkParser
	maxPages       int
	concurrency    int
	ignoreRobots   bool
	ignorePatterns []string
	logger         *slog.Logger
}

// CrawlerOption configures a Crawler.
type CrawlerOption func(*Crawler)

// WithMaxPages caps the number of pages fetched per crawl.
func WithMaxPages(n int) CrawlerOption {
	return func(c *Crawler) {
		c.maxPages = n
	}
}

// WithConcurrency sets the number of parallel fetch workers.
func WithConcurrency(n int) CrawlerOption {
	return func(c *Crawler) {
		c.concurrency = n
	}
}

// WithIgnoreRobots disables robots.txt Disallow filtering.
func WithIgnoreRobots(ignore bool) CrawlerOption {
	return func(c *Crawler) {
		c.ignoreRobots = ignore
	}
}

// WithIgnorePatterns sets path globs excluded from the crawl, e.g.
// "/tags/*" or "/search*".
func WithIgnorePatterns(patterns []string) CrawlerOption {
	return func(c *Crawler) {
		c.ignorePatterns = patterns
	}
}

// WithLogger sets the crawl logger.
func WithLogger(logger *slog.Logger) CrawlerOption {
	return func(c *Crawler) {
		c.logger = logger
	}
}

// NewCrawler creates a Crawler using the given HTTP client and link
// parser.
func NewCrawler(client *Client, links LinkParser, opts ...CrawlerOption) *Crawler {
	c := &Crawler{
		client:      client,
		links:       links,
		maxPages:    80,
		concurrency: 8,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Run audits discovery and fetching for one target. The context should
// carry the crawl time budget as a deadline; on expiry Run returns the
// partial result with TimedOut set rather than an error.
func (c *Crawler) Run(ctx context.Context, target string) (*Result, error) {
	baseURL, err := BaseURL(target)
	if err != nil {
		return nil, err
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Domain:  RegistrableDomain(parsed.Host),
		BaseURL: baseURL,
	}

	var robotsData *robots.Robots
	if r, err := c.client.FetchRobots(ctx, baseURL); err == nil {
		robotsData = r
	} else if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		result.TimedOut = true
		return result, nil
	}

	sitemapURLs := c.client.FetchSitemapURLs(ctx, DiscoverSitemaps(baseURL, robotsData), c.logger)
	result.SitemapMissing = len(sitemapURLs) == 0

	if len(sitemapURLs) > 0 {
		urls := c.filterURLs(result.Domain, robotsData, sitemapURLs, baseURL)
		result.DiscoveryMethod = MethodSitemap
		result.URLsDiscovered = len(urls)
		urls = SamplePages(urls, baseURL, c.maxPages)
		result.Fetches = c.fetchAll(ctx, urls)
	} else {
		c.logger.Debug("no sitemap found, falling back to link crawl", "base_url", baseURL)
		fetches, discovered := c.crawlLinks(ctx, baseURL, result.Domain, robotsData)
		result.Fetches = fetches
		result.URLsDiscovered = discovered
		result.DiscoveryMethod = MethodCrawl
		if discovered <= 1 {
			result.DiscoveryMethod = MethodSeedOnly
		}
	}

	if ctx.Err() != nil {
		result.TimedOut = true
	}

	sort.Slice(result.Fetches, func(i, j int) bool {
		return result.Fetches[i].URL < result.Fetches[j].URL
	})

	return result, nil
}

// filterURLs normalizes candidates and keeps the unique same-site,
// crawlable, robots-allowed ones. The base URL is always included so
// the homepage is audited even when the sitemap omits it.
func (c *Crawler) filterURLs(domain string, r *robots.Robots, candidates []string, baseURL string) []string {
	seen := make(map[string]bool)
	urls := make([]string, 0, len(candidates)+1)

	add := func(raw string) {
		normalized, err := NormalizeURL(raw)
		if err != nil || seen[normalized] {
			return
		}
		if !Crawlable(normalized) || !SameSite(domain, normalized) {
			return
		}
		if !c.allowed(r, normalized) || c.ignored(normalized) {
			return
		}
		seen[normalized] = true
		urls = append(urls, normalized)
	}

	add(baseURL)
	for _, candidate := range candidates {
		add(candidate)
	}

	sort.Strings(urls)
	return urls
}

// allowed applies the robots.txt Disallow rules.
func (c *Crawler) allowed(r *robots.Robots, rawURL string) bool {
	if c.ignoreRobots || r == nil {
		return true
	}
	return r.Test(c.client.userAgent, rawURL)
}

// ignored applies the configured path globs.
func (c *Crawler) ignored(rawURL string) bool {
	if len(c.ignorePatterns) == 0 {
		return false
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	for _, pattern := range c.ignorePatterns {
		if ok, err := path.Match(pattern, u.Path); err == nil && ok {
			return true
		}
	}
	return false
}

// fetchAll fetches a fixed URL list with a bounded worker pool.
// Workers never return errors: a failed fetch is data, not a reason to
// stop the audit.
func (c *Crawler) fetchAll(ctx context.Context, urls []string) []FetchResult {
	results := make([]FetchResult, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for i, u := range urls {
		g.Go(func() error {
			resp, err := c.client.Get(gctx, u)
			results[i] = FetchResult{URL: u, Response: resp, Err: err}
			if err != nil {
				c.logger.Debug("fetch failed", "url", u, "error", err)
			}
			return nil
		})
	}

	_ = g.Wait() //nolint:errcheck // Workers never return errors

	return results
}

// crawlLinks is the breadth-first fallback when no sitemap exists.
// It fetches the frontier level by level, harvesting same-site links
// from each HTML page, until the page cap or the time budget is hit.
func (c *Crawler) crawlLinks(ctx context.Context, baseURL, domain string, r *robots.Robots) ([]FetchResult, int) {
	visited := map[string]bool{baseURL: true}
	frontier := []string{baseURL}
	discovered := 1

	var results []FetchResult
	var mu sync.Mutex

	for len(frontier) > 0 && len(results) < c.maxPages && ctx.Err() == nil {
		batch := frontier
		if room := c.maxPages - len(results); len(batch) > room {
			batch = batch[:room]
		}
		frontier = frontier[len(batch):]

		next := make(map[string]bool)

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(c.concurrency)

		for _, u := range batch {
			g.Go(func() error {
				resp, err := c.client.Get(gctx, u)

				mu.Lock()
				defer mu.Unlock()

				results = append(results, FetchResult{URL: u, Response: resp, Err: err})
				if err != nil {
					c.logger.Debug("fetch failed", "url", u, "error", err)
					return nil
				}
				if !isHTML(resp.ContentType) {
					return nil
				}
				for _, link := range c.links.Links(resp.FinalURL, resp.Body) {
					normalized, err := NormalizeURL(link)
					if err != nil || !Crawlable(normalized) || !SameSite(domain, normalized) {
						continue
					}
					if !c.allowed(r, normalized) || c.ignored(normalized) {
						continue
					}
					next[normalized] = true
				}
				return nil
			})
		}

		_ = g.Wait() //nolint:errcheck // Workers never return errors

		// Deterministic frontier order keeps crawls reproducible.
		newURLs := make([]string, 0, len(next))
		for u := range next {
			if !visited[u] {
				visited[u] = true
				discovered++
				newURLs = append(newURLs, u)
			}
		}
		sort.Strings(newURLs)
		frontier = append(frontier, newURLs...)
	}

	return results, discovered
}

// SamplePages reduces a sorted URL list to at most maxPages entries,
// spreading the picks across path buckets round-robin so every site
// section stays represented. The base URL always survives sampling.
// Deterministic on identical input.
func SamplePages(urls []string, baseURL string, maxPages int) []string {
	if len(urls) <= maxPages {
		return urls
	}

	buckets := make(map[string][]string)
	for _, u := range urls {
		if u == baseURL {
			continue
		}
		b := PathBucket(u)
		buckets[b] = append(buckets[b], u)
	}

	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	sampled := []string{baseURL}
	for len(sampled) < maxPages {
		took := false
		for _, k := range keys {
			if len(sampled) >= maxPages {
				break
			}
			if len(buckets[k]) == 0 {
				continue
			}
			sampled = append(sampled, buckets[k][0])
			buckets[k] = buckets[k][1:]
			took = true
		}
		if !took {
			break
		}
	}

	sort.Strings(sampled)
	return sampled
}

// isHTML reports whether a content type is an HTML document. An empty
// content type is treated as HTML since misconfigured servers often
// omit the header on pages.
func isHTML(contentType string) bool {
	return contentType == "" ||
		strings.Contains(contentType, "text/html") ||
		strings.Contains(contentType, "application/xhtml+xml")
}
