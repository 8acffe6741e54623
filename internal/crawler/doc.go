// Package crawler discovers a site's URL set and fetches its pages.
//
// Discovery prefers the XML sitemap (located via robots.txt Sitemap
// directives, then the common default paths) and falls back to a
// breadth-first crawl of same-site links from the root page. Fetching
// runs a bounded worker pool with a per-host rate limit; failed
// fetches are recorded rather than dropped so broken-link detection
// can resolve every internal link against the full result set.
//
// URL identity is normalized before comparison: lowercase scheme and
// host, no default ports, no fragments, sorted query parameters, and
// no trailing slash on non-root paths.
package crawler
