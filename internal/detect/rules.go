package detect

import (
	"fmt"
	"sort"
	"strings"

	"github.com/seotools/quickwin/internal/crawler"
	"github.com/seotools/quickwin/internal/model"
)

// Recommended length bounds for titles and meta descriptions, in
// characters. Outside these ranges snippets get truncated or wasted.
const (
	TitleMinLen = 30
	TitleMaxLen = 65
	MetaMinLen  = 120
	MetaMaxLen  = 160
)

// Rules returns every page-level detection rule. The sitemap check is
// not here: sitemap presence is crawl metadata, and its finding is
// synthesized during ranking.
func Rules() []Rule {
	return []Rule{
		{Name: "missing_title", Check: checkMissingTitle},
		{Name: "duplicate_titles", Check: checkDuplicateTitles},
		{Name: "title_length", Check: checkTitleLength},
		{Name: "missing_meta", Check: checkMissingMeta},
		{Name: "duplicate_metas", Check: checkDuplicateMetas},
		{Name: "meta_length", Check: checkMetaLength},
		{Name: "missing_h1", Check: checkMissingH1},
		{Name: "multiple_h1", Check: checkMultipleH1},
		{Name: "broken_hierarchy", Check: checkBrokenHierarchy},
		{Name: "thin_content", Check: checkThinContent},
		{Name: "missing_alt", Check: checkMissingAlt},
		{Name: "broken_internal_link", Check: checkBrokenInternalLinks},
		{Name: "orphan_pages", Check: checkOrphanPages},
		{Name: "canonical_mismatch", Check: checkCanonicalMismatch},
		{Name: "missing_canonical", Check: checkMissingCanonical},
		{Name: "noindex_on_indexable", Check: checkNoindex},
		{Name: "missing_schema", Check: checkMissingSchema},
	}
}

func checkMissingTitle(c *Context) []model.Issue {
	var issues []model.Issue
	for _, p := range c.Analyzable() {
		if p.Title == "" {
			issues = append(issues, newIssue("missing_title", p.URL, "", model.Evidence{}))
		}
	}
	return issues
}

// checkDuplicateTitles flags every member of a title shared by two or
// more pages. Pages without a title belong to missing_title instead.
func checkDuplicateTitles(c *Context) []model.Issue {
	return duplicateGroups(c, "duplicate_titles", func(p *model.PageRecord) string {
		return p.Title
	})
}

func checkTitleLength(c *Context) []model.Issue {
	var issues []model.Issue
	for _, p := range c.Analyzable() {
		if p.Title == "" {
			continue
		}
		n := len([]rune(p.Title))
		if n < TitleMinLen || n > TitleMaxLen {
			issues = append(issues, newIssue("title_length", p.URL, p.Title, model.Evidence{
				Detail: fmt.Sprintf("length=%d", n),
			}))
		}
	}
	return issues
}

func checkMissingMeta(c *Context) []model.Issue {
	var issues []model.Issue
	for _, p := range c.Analyzable() {
		if p.MetaDescription == "" {
			issues = append(issues, newIssue("missing_meta", p.URL, "", model.Evidence{}))
		}
	}
	return issues
}

func checkDuplicateMetas(c *Context) []model.Issue {
	return duplicateGroups(c, "duplicate_metas", func(p *model.PageRecord) string {
		return p.MetaDescription
	})
}

func checkMetaLength(c *Context) []model.Issue {
	var issues []model.Issue
	for _, p := range c.Analyzable() {
		if p.MetaDescription == "" {
			continue
		}
		n := len([]rune(p.MetaDescription))
		if n < MetaMinLen || n > MetaMaxLen {
			issues = append(issues, newIssue("meta_length", p.URL, p.MetaDescription, model.Evidence{
				Detail: fmt.Sprintf("length=%d", n),
			}))
		}
	}
	return issues
}

func checkMissingH1(c *Context) []model.Issue {
	var issues []model.Issue
	for _, p := range c.Analyzable() {
		if len(p.H1s) == 0 {
			issues = append(issues, newIssue("missing_h1", p.URL, "", model.Evidence{}))
		}
	}
	return issues
}

func checkMultipleH1(c *Context) []model.Issue {
	var issues []model.Issue
	for _, p := range c.Analyzable() {
		if len(p.H1s) > 1 {
			issues = append(issues, newIssue("multiple_h1", p.URL, strings.Join(p.H1s, " | "), model.Evidence{
				Detail: fmt.Sprintf("h1_count=%d", len(p.H1s)),
			}))
		}
	}
	return issues
}

// checkBrokenHierarchy flags pages where a heading level jumps more
// than one step deeper than its predecessor, e.g. an H1 followed
// directly by an H3.
func checkBrokenHierarchy(c *Context) []model.Issue {
	var issues []model.Issue
	for _, p := range c.Analyzable() {
		prev := 0
		for _, h := range p.Headings {
			if prev > 0 && h.Level > prev+1 {
				issues = append(issues, newIssue("broken_hierarchy", p.URL, "", model.Evidence{
					Detail: fmt.Sprintf("h%d -> h%d", prev, h.Level),
				}))
				break
			}
			prev = h.Level
		}
	}
	return issues
}

func checkThinContent(c *Context) []model.Issue {
	floor := c.ThinContentFloor
	if floor <= 0 {
		return nil
	}

	var issues []model.Issue
	for _, p := range c.Analyzable() {
		if p.WordCount < floor {
			issues = append(issues, newIssue("thin_content", p.URL, "", model.Evidence{
				Detail: fmt.Sprintf("word_count=%d", p.WordCount),
			}))
		}
	}
	return issues
}

// checkMissingAlt flags pages containing images whose alt attribute is
// absent. An explicit alt="" is a valid decorative-image marker and
// does not count.
func checkMissingAlt(c *Context) []model.Issue {
	var issues []model.Issue
	for _, p := range c.Analyzable() {
		missing := 0
		firstSrc := ""
		for _, img := range p.Images {
			if img.Alt == nil {
				missing++
				if firstSrc == "" {
					firstSrc = img.Src
				}
			}
		}
		if missing > 0 {
			issues = append(issues, newIssue("missing_alt", p.URL, firstSrc, model.Evidence{
				Detail: fmt.Sprintf("images_without_alt=%d", missing),
			}))
		}
	}
	return issues
}

// checkBrokenInternalLinks flags links whose target was crawled and
// came back failed or 4xx/5xx. Targets outside the crawl set are
// unknown, not broken, and stay unflagged.
func checkBrokenInternalLinks(c *Context) []model.Issue {
	var issues []model.Issue
	for _, p := range c.Analyzable() {
		for _, target := range p.InternalLinks {
			record := c.Lookup(target)
			if record == nil || !record.Broken() {
				continue
			}
			detail := "fetch failed"
			if record.Status > 0 {
				detail = fmt.Sprintf("status=%d", record.Status)
			}
			issues = append(issues, newIssue("broken_internal_link", p.URL, target, model.Evidence{
				Value:  target,
				Detail: detail,
			}))
		}
	}
	return issues
}

// checkOrphanPages flags crawled pages no other page links to. The
// audit root is exempt: nothing is expected to link to the homepage.
func checkOrphanPages(c *Context) []model.Issue {
	linked := make(map[string]bool)
	for _, p := range c.Analyzable() {
		for _, target := range p.InternalLinks {
			if target != p.URL && target != p.FinalURL {
				linked[target] = true
			}
		}
	}

	var issues []model.Issue
	for _, p := range c.Analyzable() {
		if p.URL == c.BaseURL || p.EffectiveURL() == c.BaseURL {
			continue
		}
		if !linked[p.URL] && !linked[p.EffectiveURL()] {
			issues = append(issues, newIssue("orphan_pages", p.URL, "", model.Evidence{}))
		}
	}
	return issues
}

// checkCanonicalMismatch flags canonicals pointing off-domain or at a
// crawled page that is broken.
func checkCanonicalMismatch(c *Context) []model.Issue {
	var issues []model.Issue
	for _, p := range c.Analyzable() {
		if p.Canonical == "" {
			continue
		}

		if !crawler.SameSite(c.Domain, p.Canonical) {
			issues = append(issues, newIssue("canonical_mismatch", p.URL, p.Canonical, model.Evidence{
				Value:  p.Canonical,
				Detail: "points off-domain",
			}))
			continue
		}

		if record := c.Lookup(p.Canonical); record != nil && record.Broken() {
			issues = append(issues, newIssue("canonical_mismatch", p.URL, p.Canonical, model.Evidence{
				Value:  p.Canonical,
				Detail: fmt.Sprintf("target status=%d", record.Status),
			}))
		}
	}
	return issues
}

func checkMissingCanonical(c *Context) []model.Issue {
	var issues []model.Issue
	for _, p := range c.Analyzable() {
		if p.Canonical == "" {
			issues = append(issues, newIssue("missing_canonical", p.URL, "", model.Evidence{}))
		}
	}
	return issues
}

// checkNoindex flags reachable pages carrying a noindex directive.
// Every crawled page arrived via the sitemap or an internal link, so
// reachability is implied by membership in the crawl set.
func checkNoindex(c *Context) []model.Issue {
	var issues []model.Issue
	for _, p := range c.Analyzable() {
		if p.Noindex {
			issues = append(issues, newIssue("noindex_on_indexable", p.URL, p.RobotsMeta, model.Evidence{
				Value: p.RobotsMeta,
			}))
		}
	}
	return issues
}

func checkMissingSchema(c *Context) []model.Issue {
	var issues []model.Issue
	for _, p := range c.Analyzable() {
		if !p.HasSchema {
			issues = append(issues, newIssue("missing_schema", p.URL, "", model.Evidence{}))
		}
	}
	return issues
}

// duplicateGroups emits one issue per member of every value shared by
// two or more pages. Empty values are skipped; absence is its own
// issue type.
func duplicateGroups(c *Context, issueType string, value func(*model.PageRecord) string) []model.Issue {
	groups := make(map[string][]string)
	for _, p := range c.Analyzable() {
		if v := value(p); v != "" {
			groups[v] = append(groups[v], p.URL)
		}
	}

	var issues []model.Issue
	for v, urls := range groups {
		if len(urls) < 2 {
			continue
		}
		sort.Strings(urls)
		for _, u := range urls {
			siblings := make([]string, 0, len(urls)-1)
			for _, other := range urls {
				if other != u {
					siblings = append(siblings, other)
				}
			}
			issues = append(issues, newIssue(issueType, u, v, model.Evidence{
				Value:       v,
				SiblingURLs: siblings,
			}))
		}
	}
	return issues
}
