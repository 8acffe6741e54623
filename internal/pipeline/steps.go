package pipeline

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/seotools/quickwin/internal/aggregate"
	"github.com/seotools/quickwin/internal/crawler"
	"github.com/seotools/quickwin/internal/detect"
	"github.com/seotools/quickwin/internal/extract"
	"github.com/seotools/quickwin/internal/model"
	"github.com/seotools/quickwin/internal/rank"
)

// Steps returns the full audit pipeline in execution order.
func Steps(client *crawler.Client, logger *slog.Logger) []Step {
	return []Step{
		&CrawlStep{Client: client, Logger: logger},
		&ExtractStep{Logger: logger},
		&DetectStep{Logger: logger},
		&AggregateStep{},
		&RankStep{},
		&AssembleStep{},
	}
}

// CrawlStep discovers the target's URL set and fetches the pages,
// bounded by the crawl time budget.
type CrawlStep struct {
	Client *crawler.Client
	Logger *slog.Logger
}

// Name returns the step name.
func (s *CrawlStep) Name() string { return "crawl" }

// Do runs discovery and fetching for the audit target.
func (s *CrawlStep) Do(ctx context.Context, audit *Audit) error {
	budget := audit.Config.CrawlTimeBudget
	if budget <= 0 {
		budget = 5 * time.Minute
	}
	crawlCtx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	base, err := crawler.BaseURL(audit.Target)
	if err != nil {
		return err
	}
	domain := crawler.RegistrableDomain(hostOf(base))

	c := crawler.NewCrawler(s.Client, extract.New(domain),
		crawler.WithMaxPages(audit.Config.MaxPages),
		crawler.WithConcurrency(audit.Config.Concurrency),
		crawler.WithIgnoreRobots(audit.Config.IgnoreRobots),
		crawler.WithIgnorePatterns(audit.Config.IgnorePatterns),
		crawler.WithLogger(s.Logger),
	)

	result, err := c.Run(crawlCtx, audit.Target)
	if err != nil {
		return err
	}

	audit.Crawl = result
	s.Logger.Info("crawl finished",
		"target", audit.Target,
		"method", result.DiscoveryMethod,
		"discovered", result.URLsDiscovered,
		"fetched", len(result.Fetches),
		"sitemap_missing", result.SitemapMissing,
		"timed_out", result.TimedOut,
	)
	return nil
}

// ExtractStep parses every fetch outcome into a page record. Failed
// fetches become shell records so link targets still resolve.
type ExtractStep struct {
	Logger *slog.Logger
}

// Name returns the step name.
func (s *ExtractStep) Name() string { return "extract" }

// Do converts the crawl's fetch results into page records.
func (s *ExtractStep) Do(_ context.Context, audit *Audit) error {
	extractor := extract.New(audit.Crawl.Domain)
	now := time.Now()

	audit.Pages = make([]model.PageRecord, 0, len(audit.Crawl.Fetches))
	for _, fetch := range audit.Crawl.Fetches {
		audit.Pages = append(audit.Pages, buildRecord(extractor, fetch, now, s.Logger))
	}
	return nil
}

func buildRecord(extractor *extract.Extractor, fetch crawler.FetchResult, now time.Time, logger *slog.Logger) model.PageRecord {
	if fetch.Err != nil {
		marker := model.FetchErrRequest
		if crawler.IsTimeout(fetch.Err) {
			marker = model.FetchErrTimeout
		}
		return model.PageRecord{
			URL:        fetch.URL,
			FinalURL:   fetch.URL,
			Status:     0,
			FetchError: marker,
			FetchedAt:  now,
		}
	}

	resp := fetch.Response
	if !isHTMLContentType(resp.ContentType) {
		return model.PageRecord{
			URL:        fetch.URL,
			FinalURL:   resp.FinalURL,
			Status:     resp.StatusCode,
			FetchError: model.FetchErrNonHTML,
			FetchedAt:  now,
		}
	}

	page, err := extractor.Page(resp.FinalURL, resp.Body)
	if err != nil {
		logger.Warn("extraction failed", "url", fetch.URL, "error", err)
		return model.PageRecord{
			URL:        fetch.URL,
			FinalURL:   resp.FinalURL,
			Status:     resp.StatusCode,
			FetchError: model.FetchErrNonHTML,
			FetchedAt:  now,
		}
	}

	page.URL = fetch.URL
	page.FinalURL = resp.FinalURL
	page.Status = resp.StatusCode
	page.FetchedAt = now

	// An X-Robots-Tag header is as binding as the meta tag.
	if resp.XRobotsTag != "" {
		if page.RobotsMeta == "" {
			page.RobotsMeta = resp.XRobotsTag
		}
		if strings.Contains(resp.XRobotsTag, "noindex") {
			page.Noindex = true
		}
	}

	return *page
}

// DetectStep runs the issue rules over the page records.
type DetectStep struct {
	Logger *slog.Logger
}

// Name returns the step name.
func (s *DetectStep) Name() string { return "detect" }

// Do detects issues, failing the audit only when nothing was fetchable.
func (s *DetectStep) Do(_ context.Context, audit *Audit) error {
	analyzable := 0
	for i := range audit.Pages {
		if audit.Pages[i].Analyzable() {
			analyzable++
		}
	}
	if analyzable == 0 {
		return ErrNoAnalyzablePages
	}

	audit.Issues = detect.Run(&detect.Context{
		Pages:            audit.Pages,
		Domain:           audit.Crawl.Domain,
		BaseURL:          audit.Crawl.BaseURL,
		ThinContentFloor: audit.Config.ThinContentFloor,
	}, s.Logger)

	s.Logger.Info("detection finished", "pages", analyzable, "issues", len(audit.Issues))
	return nil
}

// AggregateStep groups issues into site-level findings.
type AggregateStep struct{}

// Name returns the step name.
func (s *AggregateStep) Name() string { return "aggregate" }

// Do aggregates the detected issues.
func (s *AggregateStep) Do(_ context.Context, audit *Audit) error {
	audit.Findings = aggregate.Aggregate(audit.Issues, audit.Config.ScaleThreshold)
	return nil
}

// RankStep estimates efforts, adds the sitemap finding when discovery
// found none, and selects the quick wins.
type RankStep struct{}

// Name returns the step name.
func (s *RankStep) Name() string { return "rank" }

// Do ranks the findings into the quick-win list.
func (s *RankStep) Do(_ context.Context, audit *Audit) error {
	if audit.Crawl.SitemapMissing {
		audit.Findings = append(audit.Findings, rank.SitemapFinding(audit.Crawl.BaseURL))
	}

	rank.AssignEfforts(audit.Findings)

	audit.Wins = rank.TopWins(audit.Findings, rank.Options{
		TopK:               audit.Config.TopWins,
		ExcludedCategories: audit.Config.ExcludedCategories,
	})
	return nil
}

// AssembleStep builds the final audit result from the pipeline state.
type AssembleStep struct{}

// Name returns the step name.
func (s *AssembleStep) Name() string { return "assemble" }

// Do assembles the audit result.
func (s *AssembleStep) Do(_ context.Context, audit *Audit) error {
	audit.Result = model.NewAuditResult(audit.Stats(), audit.Findings, audit.Wins)
	return nil
}

func isHTMLContentType(contentType string) bool {
	return contentType == "" ||
		strings.Contains(contentType, "text/html") ||
		strings.Contains(contentType, "application/xhtml+xml")
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Host
}
