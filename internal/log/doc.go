// Package log provides the structured logging setup for the audit
// engine, built on the standard slog package.
//
// The TrimHandler keeps crawl logs usable and safe to share:
//   - string attribute values are truncated to a fixed length, since
//     crawl logging routinely carries titles, descriptions, and URL lists
//   - credential-like attributes (Authorization headers, cookies, API
//     keys from per-site config) are masked even in verbose mode
//
// Usage:
//
//	logger := log.NewLogger(os.Stderr, verbose)
//	logger.Info("page fetched", "url", u, "status", 200)
package log
