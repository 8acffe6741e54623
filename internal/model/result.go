package model

import "time"

// CrawlStats summarizes the discovery and fetch stage of one audit.
type CrawlStats struct {
	// Domain is the normalized registrable domain that was audited.
	Domain string `json:"domain"`

	// BaseURL is the scheme+host root the crawl started from.
	BaseURL string `json:"base_url"`

	// DiscoveryMethod records how the URL set was found:
	// "sitemap", "crawl", or "seed-only".
	DiscoveryMethod string `json:"discovery_method"`

	// URLsDiscovered is the number of unique URLs found during discovery
	// (before sampling). Always >= URLsAnalyzed.
	URLsDiscovered int `json:"urls_discovered"`

	// URLsAnalyzed is the number of pages that fetched successfully and
	// fed the analysis stage.
	URLsAnalyzed int `json:"urls_analyzed"`

	// SitemapMissing is true when no XML sitemap could be located.
	// This is a first-class defect, not merely a fallback trigger.
	SitemapMissing bool `json:"sitemap_missing"`

	// TimedOut is true when the crawl time budget expired and the audit
	// proceeded on partial results.
	TimedOut bool `json:"timed_out"`
}

// AuditResult is the root aggregate produced by one audit run.
//
// Invariants: every quick win corresponds to exactly one finding present
// in AllFindings, and cites no count or URL absent from that finding's
// evidence.
type AuditResult struct {
	// Domain is the audited domain.
	Domain string `json:"domain"`

	// DateAudited is when the audit completed.
	DateAudited time.Time `json:"date_audited"`

	// Score is the 0-100 site health score. Deterministic and monotonic:
	// adding an issue never increases it.
	Score int `json:"score"`

	// Stats summarizes the crawl.
	Stats CrawlStats `json:"stats"`

	// AllFindings partitions every finding by category. Categories with
	// no findings are omitted.
	AllFindings map[Category][]Finding `json:"all_findings"`

	// TopQuickWins is the ranked top-K actionable list.
	TopQuickWins []QuickWin `json:"top_5_quick_wins"` //nolint:tagliatelle // external contract field name

	// GeneratedFixes holds drafted replacement values from the
	// fix-generation collaborator, keyed by finding (category/type).
	// Empty unless fix generation ran.
	GeneratedFixes map[string][]GeneratedFix `json:"generated_fixes,omitempty"`
}

// severityWeights are the per-finding score penalties. Values follow
// the classic audit weighting: one critical finding costs as much as
// roughly two high or four medium ones.
var severityWeights = map[Severity]float64{
	SeverityCritical: 15,
	SeverityHigh:     8,
	SeverityMedium:   4,
	SeverityLow:      1,
}

// scoreCountCap bounds the per-finding count factor so one huge finding
// cannot zero the score by itself (diminishing returns past 10 URLs).
const scoreCountCap = 10

// CalculateScore computes the 0-100 health score from the aggregated
// findings: 100 minus a severity-weighted penalty per finding, scaled by
// a capped count factor, floored at 0. Monotonic: any additional finding
// or member URL can only lower the result.
func CalculateScore(findings []Finding) int {
	penalty := 0.0
	for i := range findings {
		f := &findings[i]
		weight, ok := severityWeights[f.Severity]
		if !ok {
			weight = 1
		}
		count := f.Count
		if count > scoreCountCap {
			count = scoreCountCap
		}
		penalty += weight * (1 + float64(count)*0.3)
	}

	score := 100 - int(penalty)
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// NewAuditResult assembles the root aggregate from crawl stats, the
// category-partitioned findings, and the ranked quick wins. The score is
// computed here so that every consumer sees the same value.
func NewAuditResult(stats CrawlStats, findings []Finding, wins []QuickWin) *AuditResult {
	byCategory := make(map[Category][]Finding)
	for _, cat := range Categories() {
		for i := range findings {
			if findings[i].Category == cat {
				byCategory[cat] = append(byCategory[cat], findings[i])
			}
		}
	}

	return &AuditResult{
		Domain:       stats.Domain,
		DateAudited:  time.Now(),
		Score:        CalculateScore(findings),
		Stats:        stats,
		AllFindings:  byCategory,
		TopQuickWins: wins,
	}
}

// TotalFindings returns the number of findings across all categories.
func (r *AuditResult) TotalFindings() int {
	total := 0
	for _, fs := range r.AllFindings {
		total += len(fs)
	}
	return total
}

// FindingFor returns the finding backing a quick win, or nil when the
// invariant is broken.
func (r *AuditResult) FindingFor(win QuickWin) *Finding {
	for i := range r.AllFindings[win.Category] {
		f := &r.AllFindings[win.Category][i]
		if f.Type == win.Type {
			return f
		}
	}
	return nil
}
