package detect

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/seotools/quickwin/internal/model"
)

// Context carries the crawl output and thresholds into the rules.
type Context struct {
	// Pages is every page record from the crawl, failed fetches
	// included. Rules that read content must filter to Analyzable().
	Pages []model.PageRecord

	// Domain is the audited registrable domain.
	Domain string

	// BaseURL is the audit root, exempt from orphan detection.
	BaseURL string

	// ThinContentFloor is the word count below which pages are thin.
	ThinContentFloor int

	byURL map[string]*model.PageRecord
}

// Analyzable returns the successfully fetched pages, the only ones
// content rules may flag. Failed fetches would otherwise look like
// pages missing every signal.
func (c *Context) Analyzable() []*model.PageRecord {
	pages := make([]*model.PageRecord, 0, len(c.Pages))
	for i := range c.Pages {
		if c.Pages[i].Analyzable() {
			pages = append(pages, &c.Pages[i])
		}
	}
	return pages
}

// Lookup resolves a normalized URL to its page record, matching both
// the requested and the post-redirect address.
func (c *Context) Lookup(u string) *model.PageRecord {
	if c.byURL == nil {
		c.byURL = make(map[string]*model.PageRecord, len(c.Pages)*2)
		for i := range c.Pages {
			p := &c.Pages[i]
			c.byURL[p.URL] = p
			if p.FinalURL != "" && p.FinalURL != p.URL {
				if _, taken := c.byURL[p.FinalURL]; !taken {
					c.byURL[p.FinalURL] = p
				}
			}
		}
	}
	return c.byURL[u]
}

// Rule is one detection check. Rules are pure functions of the
// context; they share no state and may run in any order.
type Rule struct {
	// Name is the issue type the rule emits.
	Name string

	// Check inspects the crawl and returns zero or more issues.
	Check func(*Context) []model.Issue
}

// Run executes every rule and returns the combined issues, sorted by
// type then URL for deterministic output. A panicking rule is logged
// and skipped: one broken check must not void an entire audit.
func Run(dctx *Context, logger *slog.Logger) []model.Issue {
	var all []model.Issue
	for _, rule := range Rules() {
		all = append(all, runRule(rule, dctx, logger)...)
	}

	sort.Slice(all, func(i, j int) bool {
		if all[i].Type != all[j].Type {
			return all[i].Type < all[j].Type
		}
		if all[i].URL != all[j].URL {
			return all[i].URL < all[j].URL
		}
		return all[i].CurrentValue < all[j].CurrentValue
	})

	return all
}

func runRule(rule Rule, dctx *Context, logger *slog.Logger) (issues []model.Issue) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("detection rule panicked, skipping",
				"rule", rule.Name, "panic", fmt.Sprint(r))
			issues = nil
		}
	}()

	issues = rule.Check(dctx)
	logger.Debug("rule finished", "rule", rule.Name, "issues", len(issues))
	return issues
}

// newIssue builds an issue with the catalog category and severity for
// its type.
func newIssue(issueType, url, currentValue string, evidence model.Evidence) model.Issue {
	info := model.GetIssueInfo(issueType)
	return model.Issue{
		Category:     info.Category,
		Type:         issueType,
		URL:          url,
		CurrentValue: currentValue,
		Severity:     info.Severity,
		Evidence:     evidence,
	}
}
