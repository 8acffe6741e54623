package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values. These are tuned for small-to-medium
// marketing sites, which is what the quick-win audit targets; larger
// sites can raise the limits via CLI flags or the config file.
const (
	// DefaultMaxPages is the per-audit page cap. Sampling past this point
	// adds little signal for quick-win detection while multiplying crawl
	// time, so the cap keeps a single audit bounded.
	DefaultMaxPages = 80

	// DefaultFetchTimeout applies to each individual page fetch.
	DefaultFetchTimeout = 10 * time.Second

	// DefaultCrawlTimeBudget bounds the whole discovery+fetch stage.
	// When it expires the audit proceeds on whatever pages landed.
	DefaultCrawlTimeBudget = 5 * time.Minute

	// DefaultConcurrency is the number of parallel page fetchers.
	DefaultConcurrency = 8

	// DefaultRequestsPerSecond is the per-host politeness rate limit.
	DefaultRequestsPerSecond = 4

	// DefaultThinContentFloor is the visible word count below which a
	// page is flagged as thin.
	DefaultThinContentFloor = 300

	// DefaultScaleThreshold is the affected-URL count past which a
	// finding's severity escalates one level.
	DefaultScaleThreshold = 20

	// DefaultTopWins is the size of the ranked quick-win list.
	DefaultTopWins = 5

	// AppName is the application name used for XDG directory paths.
	AppName = "quickwin"

	// DefaultUserAgent identifies the auditor in HTTP requests so site
	// operators can recognize the traffic in their logs.
	DefaultUserAgent = "QuickWinBot/1.0 (+https://github.com/seotools/quickwin)"

	// DefaultMaxBodySize limits the response body size to read. 5MB is
	// ample for HTML pages while preventing memory exhaustion from
	// unexpectedly large responses.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultFixTimeout applies to each fix-generation API call.
	DefaultFixTimeout = 30 * time.Second
)

// DefaultExcludedCategories lists issue categories kept out of the
// ranked quick-win list by default. Image alt work is valuable but
// rarely the highest-leverage fix, so it stays in the full findings
// only unless the user opts it back in.
func DefaultExcludedCategories() []string {
	return []string{"images"}
}

// Config holds all configuration options for a quick-win audit.
// It is populated from CLI flags plus the optional .quickwin.yaml file
// and passed through the pipeline via dependency injection rather than
// global state.
type Config struct {
	// Targets is the list of domains or URLs to audit. At least one is
	// required. Bare domains are normalized to https://<domain>/.
	Targets []string

	// MaxPages caps the number of pages fetched per audit.
	// A value of 0 means use DefaultMaxPages.
	MaxPages int

	// FetchTimeout is the per-request HTTP timeout.
	FetchTimeout time.Duration

	// CrawlTimeBudget bounds the total discovery+fetch stage. When it
	// expires the audit continues on the pages fetched so far and the
	// result is marked as partial.
	CrawlTimeBudget time.Duration

	// Concurrency is the number of parallel page fetchers.
	Concurrency int

	// RequestsPerSecond is the per-host rate limit.
	RequestsPerSecond float64

	// ThinContentFloor is the word count below which pages are thin.
	ThinContentFloor int

	// ScaleThreshold is the affected-URL count past which a finding's
	// severity escalates one level.
	ScaleThreshold int

	// TopWins is the number of entries in the ranked quick-win list.
	TopWins int

	// ExcludedCategories are issue categories filtered out of the
	// quick-win ranking (they still appear in the full findings).
	ExcludedCategories []string

	// IgnorePatterns are URL path globs skipped during crawling.
	// Usually set per domain via the config file.
	IgnorePatterns []string

	// Verbose enables debug-level log output.
	Verbose bool

	// JSONReport emits the full machine-readable audit result.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport emits the prioritized action plan as Markdown.
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output path for the report. When empty the
	// report goes to stdout.
	ReportFile string

	// ConfigFilePath is the path to the .quickwin.yaml file. If empty,
	// the current directory and then the home directory are searched.
	ConfigFilePath string

	// SiteConfigs holds per-domain overrides loaded from the config file.
	SiteConfigs *File

	// DBDir is the directory for the audit history database. When set,
	// results are persisted for historical comparison; when empty they
	// are not. Defaults to the XDG data directory.
	DBDir string

	// SaveToDB indicates whether to persist the audit result.
	SaveToDB bool

	// UserAgent is the User-Agent header sent with every request.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read.
	// Set to 0 to use DefaultMaxBodySize.
	MaxBodySize int64

	// IgnoreRobots disables robots.txt checks during the crawl. Off by
	// default; auditing a site you operate is the intended use.
	IgnoreRobots bool

	// FixEndpoint is the base URL of the fix-generation service. When
	// empty, fix generation is skipped and quick wins carry the static
	// action templates only.
	FixEndpoint string

	// FixTimeout is the per-call timeout for fix generation.
	FixTimeout time.Duration
}

// NewConfig creates a Config with default values. Many defaults are
// non-zero, so callers must start from this constructor rather than a
// zero-value struct.
func NewConfig() *Config {
	return &Config{
		MaxPages:           DefaultMaxPages,
		FetchTimeout:       DefaultFetchTimeout,
		CrawlTimeBudget:    DefaultCrawlTimeBudget,
		Concurrency:        DefaultConcurrency,
		RequestsPerSecond:  DefaultRequestsPerSecond,
		ThinContentFloor:   DefaultThinContentFloor,
		ScaleThreshold:     DefaultScaleThreshold,
		TopWins:            DefaultTopWins,
		ExcludedCategories: DefaultExcludedCategories(),
		UserAgent:          DefaultUserAgent,
		MaxBodySize:        DefaultMaxBodySize,
		FixTimeout:         DefaultFixTimeout,
	}
}

// XDGDataDir returns the XDG data directory for quickwin.
// On Linux: ~/.local/share/quickwin
// On macOS: ~/Library/Application Support/quickwin
// On Windows: %LOCALAPPDATA%\quickwin
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for quickwin.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for quickwin.
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// Validate checks the configuration and returns the first problem
// found. It runs once after CLI parsing, before any crawling begins.
func (c *Config) Validate() error {
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}

	if c.FetchTimeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.CrawlTimeBudget <= 0 {
		return ErrInvalidTimeBudget
	}

	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}

	if c.MaxPages <= 0 {
		return ErrInvalidMaxPages
	}

	if c.RequestsPerSecond <= 0 {
		return ErrInvalidRateLimit
	}

	if c.TopWins <= 0 {
		return ErrInvalidTopWins
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	return nil
}
