// Package database persists audit history in SQLite. Each run stores
// the full audit result as JSON plus the per-page records behind it,
// keyed by domain, so score trends can be tracked between runs without
// re-crawling. The pure-Go modernc.org/sqlite driver keeps the binary
// free of cgo.
package database
