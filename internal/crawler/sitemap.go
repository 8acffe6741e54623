package crawler

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/benjaminestes/robots"
)

// commonSitemapPaths are probed in order when robots.txt names no
// sitemap. The list covers the default locations of the major CMS and
// sitemap generators.
var commonSitemapPaths = []string{
	"/sitemap.xml",
	"/sitemap_index.xml",
	"/sitemap-index.xml",
	"/sitemap1.xml",
}

// sitemapURLSet mirrors the <urlset> document of the sitemap protocol.
type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	URLs    []sitemapLoc `xml:"url"`
}

// sitemapIndex mirrors the <sitemapindex> document pointing at child
// sitemaps.
type sitemapIndex struct {
	XMLName  xml.Name     `xml:"sitemapindex"`
	Sitemaps []sitemapLoc `xml:"sitemap"`
}

type sitemapLoc struct {
	Loc string `xml:"loc"`
}

// FetchRobots downloads and parses the robots.txt for a base URL.
// A missing or unparseable robots.txt returns (nil, nil): per the
// robots protocol, absence means everything is allowed.
func (c *Client) FetchRobots(ctx context.Context, baseURL string) (*robots.Robots, error) {
	robotsURL, err := robots.Locate(baseURL)
	if err != nil {
		return nil, fmt.Errorf("locate robots.txt for %s: %w", baseURL, err)
	}

	resp, err := c.Get(ctx, robotsURL)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, nil //nolint:nilerr // Unreachable robots.txt means no restrictions
	}

	r, err := robots.From(resp.StatusCode, bytes.NewReader(resp.Body))
	if err != nil {
		return nil, nil //nolint:nilerr // Malformed robots.txt means no restrictions
	}
	return r, nil
}

// DiscoverSitemaps returns candidate sitemap URLs for a site: the
// Sitemap directives from robots.txt when present, otherwise the
// common default paths relative to the base URL.
func DiscoverSitemaps(baseURL string, r *robots.Robots) []string {
	if r != nil {
		if sitemaps := r.Sitemaps(); len(sitemaps) > 0 {
			return sitemaps
		}
	}

	base := strings.TrimSuffix(baseURL, "/")
	candidates := make([]string, 0, len(commonSitemapPaths))
	for _, p := range commonSitemapPaths {
		candidates = append(candidates, base+p)
	}
	return candidates
}

// FetchSitemapURLs downloads sitemap candidates until one parses, then
// returns the page URLs it lists. A sitemap index is followed one
// level deep; nested indexes beyond that are ignored, which keeps a
// pathological index chain from consuming the crawl budget.
func (c *Client) FetchSitemapURLs(ctx context.Context, candidates []string, logger *slog.Logger) []string {
	for _, candidate := range candidates {
		locs, children, err := c.fetchOneSitemap(ctx, candidate)
		if err != nil {
			logger.Debug("sitemap candidate failed", "url", candidate, "error", err)
			continue
		}

		for _, child := range children {
			childLocs, _, err := c.fetchOneSitemap(ctx, child)
			if err != nil {
				logger.Debug("child sitemap failed", "url", child, "error", err)
				continue
			}
			locs = append(locs, childLocs...)
		}

		if len(locs) > 0 {
			logger.Debug("sitemap parsed", "url", candidate, "pages", len(locs), "children", len(children))
			return locs
		}
	}

	return nil
}

// fetchOneSitemap downloads and parses a single sitemap document,
// returning page locations and child sitemap locations.
func (c *Client) fetchOneSitemap(ctx context.Context, sitemapURL string) (locs, children []string, err error) {
	resp, err := c.Get(ctx, sitemapURL)
	if err != nil {
		return nil, nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("sitemap %s: status %d", sitemapURL, resp.StatusCode)
	}

	body := resp.Body
	if isGzip(sitemapURL, resp.ContentType, body) {
		body, err = gunzip(body)
		if err != nil {
			return nil, nil, fmt.Errorf("sitemap %s: %w", sitemapURL, err)
		}
	}

	return parseSitemap(body)
}

// parseSitemap decodes either sitemap document shape.
func parseSitemap(body []byte) (locs, children []string, err error) {
	var index sitemapIndex
	if err := xml.Unmarshal(body, &index); err == nil && len(index.Sitemaps) > 0 {
		for _, sm := range index.Sitemaps {
			if loc := strings.TrimSpace(sm.Loc); loc != "" {
				children = append(children, loc)
			}
		}
		return nil, children, nil
	}

	var urlset sitemapURLSet
	if err := xml.Unmarshal(body, &urlset); err != nil {
		return nil, nil, fmt.Errorf("not a sitemap document: %w", err)
	}
	for _, u := range urlset.URLs {
		if loc := strings.TrimSpace(u.Loc); loc != "" {
			locs = append(locs, loc)
		}
	}
	if len(locs) == 0 {
		return nil, nil, fmt.Errorf("sitemap lists no URLs")
	}
	return locs, nil, nil
}

// isGzip detects gzipped sitemap payloads by extension, content type,
// or the gzip magic bytes.
func isGzip(sitemapURL, contentType string, body []byte) bool {
	if strings.HasSuffix(sitemapURL, ".gz") {
		return true
	}
	if strings.Contains(contentType, "gzip") {
		return true
	}
	return len(body) >= 2 && body[0] == 0x1f && body[1] == 0x8b
}

func gunzip(data []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("gunzip: %w", err)
	}
	defer zr.Close() //nolint:errcheck // Read side already consumed

	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("gunzip: %w", err)
	}
	return out, nil
}
