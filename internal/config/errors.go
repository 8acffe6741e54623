package config

import "errors"

// Configuration validation errors. Package-level sentinels so callers
// can match with errors.Is() while the messages stay human-readable.
var (
	// ErrNoTarget is returned when no domain or URL is specified.
	ErrNoTarget = errors.New("no target specified: provide a domain or URL to audit")

	// ErrInvalidTimeout is returned when the fetch timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid fetch timeout: must be positive")

	// ErrInvalidTimeBudget is returned when the crawl time budget is not positive.
	ErrInvalidTimeBudget = errors.New("invalid crawl time budget: must be positive")

	// ErrInvalidConcurrency is returned when the fetcher concurrency is not positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrInvalidMaxPages is returned when the page cap is not positive.
	ErrInvalidMaxPages = errors.New("invalid max pages: must be positive")

	// ErrInvalidRateLimit is returned when the per-host rate is not positive.
	ErrInvalidRateLimit = errors.New("invalid rate limit: requests per second must be positive")

	// ErrInvalidTopWins is returned when the quick-win list size is not positive.
	ErrInvalidTopWins = errors.New("invalid top wins: must be positive")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")
)
