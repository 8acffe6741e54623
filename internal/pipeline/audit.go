package pipeline

import (
	"errors"

	"github.com/seotools/quickwin/internal/config"
	"github.com/seotools/quickwin/internal/crawler"
	"github.com/seotools/quickwin/internal/model"
)

// ErrNoAnalyzablePages is returned when not a single page fetched
// successfully. There is nothing to audit, so the run is terminal.
var ErrNoAnalyzablePages = errors.New("no pages could be fetched and analyzed")

// Audit is the shared state flowing through the pipeline. Each step
// fills in its stage's output and later steps read it.
type Audit struct {
	// Target is the domain or URL the user asked to audit.
	Target string

	// Config is the effective configuration for this target, global
	// settings merged with per-domain overrides.
	Config *config.Config

	// Crawl is the discovery and fetch output.
	Crawl *crawler.Result

	// Pages are the extracted per-page signal records, one per fetched
	// URL including failed fetches.
	Pages []model.PageRecord

	// Issues are the per-page defects the detection rules found.
	Issues []model.Issue

	// Findings are the aggregated site-level issue groups.
	Findings []model.Finding

	// Wins is the ranked quick-win list.
	Wins []model.QuickWin

	// Result is the assembled audit result.
	Result *model.AuditResult
}

// NewAudit creates the pipeline state for one target.
func NewAudit(target string, cfg *config.Config) *Audit {
	return &Audit{Target: target, Config: cfg}
}

// Stats summarizes the crawl for the audit result.
func (a *Audit) Stats() model.CrawlStats {
	stats := model.CrawlStats{}
	if a.Crawl != nil {
		stats.Domain = a.Crawl.Domain
		stats.BaseURL = a.Crawl.BaseURL
		stats.DiscoveryMethod = a.Crawl.DiscoveryMethod
		stats.URLsDiscovered = a.Crawl.URLsDiscovered
		stats.SitemapMissing = a.Crawl.SitemapMissing
		stats.TimedOut = a.Crawl.TimedOut
	}
	for i := range a.Pages {
		if a.Pages[i].Analyzable() {
			stats.URLsAnalyzed++
		}
	}
	return stats
}
