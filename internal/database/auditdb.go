package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/seotools/quickwin/internal/model"
)

// AuditDB provides SQLite-based storage for audit history: full results
// as JSON plus the per-page records behind them, so score trends can be
// compared across runs without re-crawling.
type AuditDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures AuditDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates an AuditDB at the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*AuditDB, error) {
	dbPath := filepath.Join(dbDir, "quickwin.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite DSN: mode=rw prevents creating new files,
	// mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	adb := &AuditDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := adb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return adb, nil
}

// Close closes the database connection.
func (adb *AuditDB) Close() error {
	return adb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (adb *AuditDB) createTables() error {
	schema := `
	-- Page records store individual page fetches per audit
	CREATE TABLE IF NOT EXISTS page_records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL,
		domain TEXT NOT NULL,
		fetched_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		status INTEGER,
		fetch_error TEXT,
		title TEXT,
		word_count INTEGER,
		record_json TEXT,
		UNIQUE(url, domain)
	);

	CREATE INDEX IF NOT EXISTS idx_pages_url ON page_records(url);
	CREATE INDEX IF NOT EXISTS idx_pages_domain ON page_records(domain);
	CREATE INDEX IF NOT EXISTS idx_pages_fetched ON page_records(fetched_at);

	-- Audit results store complete audit runs as JSON
	CREATE TABLE IF NOT EXISTS audit_results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		domain TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		score INTEGER NOT NULL,
		result_json TEXT NOT NULL,
		severity_summary TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_results_domain ON audit_results(domain);
	CREATE INDEX IF NOT EXISTS idx_results_timestamp ON audit_results(timestamp);
	`

	_, err := adb.db.ExecContext(context.Background(), schema)
	return err
}

// InsertPageRecord inserts or updates a page record.
// Uses UPSERT to handle duplicates (same URL + domain).
func (adb *AuditDB) InsertPageRecord(ctx context.Context, domain string, page *model.PageRecord) (int64, error) {
	recordJSON, err := json.Marshal(page)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize page record: %w", err)
	}

	query := `
	INSERT INTO page_records (url, domain, status, fetch_error, title, word_count, record_json)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(url, domain) DO UPDATE SET
		status = excluded.status,
		fetch_error = excluded.fetch_error,
		title = excluded.title,
		word_count = excluded.word_count,
		record_json = excluded.record_json,
		fetched_at = CURRENT_TIMESTAMP
	`

	result, err := adb.db.ExecContext(ctx, query,
		page.URL,
		domain,
		page.Status,
		page.FetchError,
		page.Title,
		page.WordCount,
		string(recordJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert page record: %w", err)
	}

	return result.LastInsertId()
}

// GetPageRecord retrieves a stored page record by URL and domain.
// Returns nil without error when no record exists.
func (adb *AuditDB) GetPageRecord(ctx context.Context, url, domain string) (*model.PageRecord, error) {
	query := `
	SELECT record_json FROM page_records
	WHERE url = ? AND domain = ?
	`

	var recordJSON string
	err := adb.db.QueryRowContext(ctx, query, url, domain).Scan(&recordJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get page record: %w", err)
	}

	var page model.PageRecord
	if err := json.Unmarshal([]byte(recordJSON), &page); err != nil {
		return nil, fmt.Errorf("failed to parse page record: %w", err)
	}

	return &page, nil
}

// HasRecentFetch checks if a URL was fetched within the specified duration.
func (adb *AuditDB) HasRecentFetch(ctx context.Context, url string, duration time.Duration) (bool, error) {
	query := `
	SELECT COUNT(*) FROM page_records
	WHERE url = ? AND fetched_at > datetime('now', ?)
	`

	// SQLite datetime modifier format
	modifier := fmt.Sprintf("-%d seconds", int(duration.Seconds()))

	var count int
	err := adb.db.QueryRowContext(ctx, query, url, modifier).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check recent fetch: %w", err)
	}

	return count > 0, nil
}

// SaveAuditResult saves a complete audit result as JSON, including the
// page records that produced it.
func (adb *AuditDB) SaveAuditResult(ctx context.Context, result *model.AuditResult, pages []*model.PageRecord) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to serialize audit result: %w", err)
	}

	summary := map[string]int{
		"critical": 0,
		"high":     0,
		"medium":   0,
		"low":      0,
	}
	for _, findings := range result.AllFindings {
		for _, f := range findings {
			summary[f.Severity.String()]++
		}
	}
	summaryJSON, _ := json.Marshal(summary) //nolint:errcheck,errchkjson // summary is a simple map; Marshal won't fail

	query := `
	INSERT INTO audit_results (domain, score, result_json, severity_summary)
	VALUES (?, ?, ?, ?)
	`

	if _, err = adb.db.ExecContext(ctx, query,
		result.Domain,
		result.Score,
		string(resultJSON),
		string(summaryJSON),
	); err != nil {
		return fmt.Errorf("failed to save audit result: %w", err)
	}

	for _, page := range pages {
		if _, err := adb.InsertPageRecord(ctx, result.Domain, page); err != nil {
			return err
		}
	}

	return nil
}

// GetLatestAuditResult retrieves the most recent audit result for a domain.
// Returns nil without error when the domain has never been audited.
func (adb *AuditDB) GetLatestAuditResult(ctx context.Context, domain string) (*model.AuditResult, error) {
	query := `
	SELECT result_json FROM audit_results
	WHERE domain = ?
	ORDER BY timestamp DESC
	LIMIT 1
	`

	var resultJSON string
	err := adb.db.QueryRowContext(ctx, query, domain).Scan(&resultJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get audit result: %w", err)
	}

	var result model.AuditResult
	if err := json.Unmarshal([]byte(resultJSON), &result); err != nil {
		return nil, fmt.Errorf("failed to parse audit result: %w", err)
	}

	return &result, nil
}

// ListAuditedDomains returns every domain with at least one stored audit.
func (adb *AuditDB) ListAuditedDomains(ctx context.Context) ([]string, error) {
	query := `
	SELECT DISTINCT domain FROM audit_results
	ORDER BY domain
	`

	rows, err := adb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list domains: %w", err)
	}
	defer rows.Close()

	var domains []string
	for rows.Next() {
		var domain string
		if err := rows.Scan(&domain); err != nil {
			return nil, fmt.Errorf("failed to scan domain: %w", err)
		}
		domains = append(domains, domain)
	}

	return domains, rows.Err()
}

// GetAuditHistory retrieves all audit results for a domain, newest first.
func (adb *AuditDB) GetAuditHistory(ctx context.Context, domain string) ([]*model.AuditResult, error) {
	query := `
	SELECT result_json FROM audit_results
	WHERE domain = ?
	ORDER BY timestamp DESC
	`

	rows, err := adb.db.QueryContext(ctx, query, domain)
	if err != nil {
		return nil, fmt.Errorf("failed to get audit history: %w", err)
	}
	defer rows.Close()

	var results []*model.AuditResult
	for rows.Next() {
		var resultJSON string
		if err := rows.Scan(&resultJSON); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}

		var result model.AuditResult
		if err := json.Unmarshal([]byte(resultJSON), &result); err != nil {
			continue // Skip malformed rows
		}
		results = append(results, &result)
	}

	return results, rows.Err()
}

// AuditMetadata contains summary information about a stored audit.
// This is used for displaying history without loading the full result.
type AuditMetadata struct {
	// ID is the unique identifier of the audit in the database.
	ID int64

	// Domain is the audited domain.
	Domain string

	// Timestamp is when the audit was stored.
	Timestamp time.Time

	// Score is the 0-100 health score of the run.
	Score int

	// SeveritySummary contains counts of findings by severity level.
	SeveritySummary map[string]int
}

// GetAuditHistoryWithMetadata retrieves audit metadata for a domain.
// This is more efficient than GetAuditHistory when only the score trend
// is needed.
func (adb *AuditDB) GetAuditHistoryWithMetadata(ctx context.Context, domain string) ([]AuditMetadata, error) {
	query := `
	SELECT id, domain, timestamp, score, severity_summary
	FROM audit_results
	WHERE domain = ?
	ORDER BY timestamp DESC
	`

	rows, err := adb.db.QueryContext(ctx, query, domain)
	if err != nil {
		return nil, fmt.Errorf("failed to get audit history: %w", err)
	}
	defer rows.Close()

	var results []AuditMetadata
	for rows.Next() {
		var meta AuditMetadata
		var timestamp string
		var summaryJSON sql.NullString

		if err := rows.Scan(&meta.ID, &meta.Domain, &timestamp, &meta.Score, &summaryJSON); err != nil {
			return nil, fmt.Errorf("failed to scan metadata: %w", err)
		}

		meta.Timestamp = parseTimestamp(timestamp)

		if summaryJSON.Valid && summaryJSON.String != "" {
			if err := json.Unmarshal([]byte(summaryJSON.String), &meta.SeveritySummary); err != nil {
				meta.SeveritySummary = make(map[string]int)
			}
		} else {
			meta.SeveritySummary = make(map[string]int)
		}

		results = append(results, meta)
	}

	return results, rows.Err()
}

// GetAuditResultByID retrieves a stored audit result by its database ID.
// Returns nil without error when the ID is unknown.
func (adb *AuditDB) GetAuditResultByID(ctx context.Context, id int64) (*model.AuditResult, error) {
	query := `
	SELECT result_json FROM audit_results
	WHERE id = ?
	`

	var resultJSON string
	err := adb.db.QueryRowContext(ctx, query, id).Scan(&resultJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get audit result: %w", err)
	}

	var result model.AuditResult
	if err := json.Unmarshal([]byte(resultJSON), &result); err != nil {
		return nil, fmt.Errorf("failed to parse audit result: %w", err)
	}

	return &result, nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
