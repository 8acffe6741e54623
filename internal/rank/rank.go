package rank

import (
	"sort"

	"github.com/seotools/quickwin/internal/model"
)

// Effort breakpoints: fixing a handful of pages is an afternoon, a few
// dozen is a sprint task, more is a project.
const (
	lowEffortMax    = 5
	mediumEffortMax = 25
)

// categoryWeight orders categories by typical ranking leverage when
// other keys tie. Higher sorts first.
var categoryWeight = map[model.Category]int{
	model.CategoryIndexability: 9,
	model.CategoryTitles:       8,
	model.CategoryContent:      7,
	model.CategoryH1:           6,
	model.CategoryMetas:        5,
	model.CategoryLinks:        4,
	model.CategoryCanonicals:   3,
	model.CategorySchema:       2,
	model.CategoryImages:       1,
}

// blocking reports whether a finding can keep pages out of the index
// entirely. Blocking findings outrank everything except the sitemap
// finding. A merely missing (self-referencing) canonical is hygiene,
// not blocking; a canonical pointing at a broken or foreign URL is.
func blocking(f *model.Finding) bool {
	return f.Category == model.CategoryIndexability || f.Type == "canonical_mismatch"
}

// Options configure ranking for one audit.
type Options struct {
	// TopK is the number of quick wins to return.
	TopK int

	// ExcludedCategories are kept out of the quick-win list. They stay
	// in the full findings untouched.
	ExcludedCategories []string
}

// Effort estimates the work to fix a finding from its affected-URL
// count, with category corrections: content work is never trivial no
// matter how few pages, and adding schema markup is templated work
// that never becomes a whole project.
func Effort(category model.Category, count int) model.Effort {
	effort := model.EffortHigh
	switch {
	case count <= lowEffortMax:
		effort = model.EffortLow
	case count <= mediumEffortMax:
		effort = model.EffortMedium
	}

	switch category {
	case model.CategoryContent:
		if effort == model.EffortLow {
			effort = model.EffortMedium
		}
	case model.CategorySchema:
		if effort == model.EffortHigh {
			effort = model.EffortMedium
		}
	}

	return effort
}

// AssignEfforts fills the Effort field of every finding in place, so
// the full findings report and the quick-win list agree.
func AssignEfforts(findings []model.Finding) {
	for i := range findings {
		findings[i].Effort = Effort(findings[i].Category, findings[i].Count)
	}
}

// SitemapFinding synthesizes the missing-sitemap finding. Sitemap
// presence is crawl metadata rather than a page signal, so no
// detection rule emits it; the pipeline appends this finding when
// discovery found no sitemap.
func SitemapFinding(baseURL string) model.Finding {
	info := model.GetIssueInfo("sitemap_missing")
	return model.Finding{
		Category:       info.Category,
		Type:           "sitemap_missing",
		Issue:          info.Title,
		Description:    info.Description,
		Severity:       info.Severity,
		Count:          1,
		URLs:           []string{baseURL},
		ExampleURLs:    []string{baseURL},
		Effort:         model.EffortLow,
		Action:         info.Action,
		CanGenerateFix: info.CanGenerateFix,
	}
}

// TopWins ranks the findings and returns the top-K quick wins.
// Order is deterministic: the missing-sitemap finding always leads,
// then index-blocking categories, then affected-URL count descending,
// category leverage, lower effort, and name as the final tiebreak.
func TopWins(findings []model.Finding, opts Options) []model.QuickWin {
	excluded := make(map[model.Category]bool, len(opts.ExcludedCategories))
	for _, c := range opts.ExcludedCategories {
		excluded[model.Category(c)] = true
	}

	candidates := make([]model.Finding, 0, len(findings))
	for _, f := range findings {
		if excluded[f.Category] {
			continue
		}
		candidates = append(candidates, f)
	}

	sort.Slice(candidates, func(i, j int) bool {
		return less(&candidates[i], &candidates[j])
	})

	k := opts.TopK
	if k <= 0 || k > len(candidates) {
		k = len(candidates)
	}

	wins := make([]model.QuickWin, 0, k)
	for i := 0; i < k; i++ {
		f := &candidates[i]
		wins = append(wins, model.QuickWin{
			Rank:         i + 1,
			Issue:        f.Issue,
			Category:     f.Category,
			Type:         f.Type,
			URLsAffected: f.Count,
			ExampleURLs:  f.ExampleURLs,
			Impact:       model.ImpactFromSeverity(f.Severity),
			Effort:       f.Effort,
			Action:       f.Action,
			WhyMatters:   f.Description,
		})
	}

	return wins
}

// less is the full ranking key.
func less(a, b *model.Finding) bool {
	// A missing sitemap suppresses discovery of every other fix, so it
	// always comes first.
	if (a.Type == "sitemap_missing") != (b.Type == "sitemap_missing") {
		return a.Type == "sitemap_missing"
	}

	if blocking(a) != blocking(b) {
		return blocking(a)
	}

	if a.Count != b.Count {
		return a.Count > b.Count
	}

	if categoryWeight[a.Category] != categoryWeight[b.Category] {
		return categoryWeight[a.Category] > categoryWeight[b.Category]
	}

	if a.Effort != b.Effort {
		return a.Effort.Rank() < b.Effort.Rank()
	}

	if a.Category != b.Category {
		return a.Category < b.Category
	}
	return a.Type < b.Type
}
