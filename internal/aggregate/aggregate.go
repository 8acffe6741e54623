package aggregate

import (
	"sort"

	"github.com/seotools/quickwin/internal/model"
)

// ExampleCount is the number of example URLs carried per finding.
// The first entries of the sorted URL list, so the sample is stable
// across runs on identical input.
const ExampleCount = 3

// Aggregate groups same-type issues into findings. For each
// (category, type) pair it deduplicates the affected URLs, takes the
// maximum member severity, and escalates one level when the count
// crosses scaleThreshold: a site-wide defect hurts more than the same
// defect on one page.
func Aggregate(issues []model.Issue, scaleThreshold int) []model.Finding {
	type group struct {
		issues []model.Issue
	}

	groups := make(map[string]*group)
	order := make([]string, 0)

	for _, issue := range issues {
		key := string(issue.Category) + "/" + issue.Type
		g, ok := groups[key]
		if !ok {
			g = &group{}
			groups[key] = g
			order = append(order, key)
		}
		g.issues = append(g.issues, issue)
	}

	findings := make([]model.Finding, 0, len(groups))
	for _, key := range order {
		findings = append(findings, buildFinding(groups[key].issues, scaleThreshold))
	}

	sort.Slice(findings, func(i, j int) bool {
		if findings[i].Category != findings[j].Category {
			return findings[i].Category < findings[j].Category
		}
		return findings[i].Type < findings[j].Type
	})

	return findings
}

func buildFinding(issues []model.Issue, scaleThreshold int) model.Finding {
	first := issues[0]
	info := model.GetIssueInfo(first.Type)

	seen := make(map[string]bool)
	urls := make([]string, 0, len(issues))
	severity := first.Severity

	for _, issue := range issues {
		if issue.Severity > severity {
			severity = issue.Severity
		}
		if !seen[issue.URL] {
			seen[issue.URL] = true
			urls = append(urls, issue.URL)
		}
	}
	sort.Strings(urls)

	count := len(urls)
	if scaleThreshold > 0 && count > scaleThreshold {
		severity = severity.Escalate()
	}

	examples := urls
	if len(examples) > ExampleCount {
		examples = examples[:ExampleCount]
	}
	exampleCopy := make([]string, len(examples))
	copy(exampleCopy, examples)

	return model.Finding{
		Category:       first.Category,
		Type:           first.Type,
		Issue:          info.Title,
		Description:    info.Description,
		Severity:       severity,
		Count:          count,
		URLs:           urls,
		ExampleURLs:    exampleCopy,
		Action:         info.Action,
		CanGenerateFix: info.CanGenerateFix,
		Details:        details(issues, exampleCopy),
	}
}

// details pairs each example URL with the offending value from its
// first member issue, when one exists.
func details(issues []model.Issue, examples []string) []model.FindingDetail {
	var out []model.FindingDetail
	for _, u := range examples {
		for _, issue := range issues {
			if issue.URL == u && issue.CurrentValue != "" {
				out = append(out, model.FindingDetail{URL: u, CurrentValue: issue.CurrentValue})
				break
			}
		}
	}
	return out
}
