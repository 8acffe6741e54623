package model

// Issue is one detected defect instance on one URL. Issues are derived
// data: they are regenerated on every crawl and never mutated.
type Issue struct {
	// Category groups the issue for reporting (titles, metas, ...).
	Category Category `json:"category"`

	// Type identifies the rule that fired, e.g. "duplicate_titles".
	Type string `json:"type"`

	// URL is the affected page.
	URL string `json:"url"`

	// CurrentValue is the offending value (the duplicated title, the
	// too-short meta, the broken link target, ...). May be empty for
	// absence-style issues.
	CurrentValue string `json:"current_value,omitempty"`

	// Severity is the issue's severity before any scale escalation.
	Severity Severity `json:"severity"`

	// Evidence carries auditable context, e.g. sibling URLs sharing a
	// duplicated value. Stable across runs on identical input.
	Evidence Evidence `json:"evidence,omitempty"`
}

// Evidence is the auditable payload attached to an issue.
type Evidence struct {
	// Value is the offending value, when there is one.
	Value string `json:"value,omitempty"`

	// SiblingURLs are other URLs sharing the value (duplicate groups).
	SiblingURLs []string `json:"sibling_urls,omitempty"`

	// Detail is a free-form measurement, e.g. "word_count=214".
	Detail string `json:"detail,omitempty"`
}

// Effort labels how much work a fix takes. Derived deterministically
// from the affected-URL count and the category.
type Effort string

// Effort labels, ordered low < medium < high.
const (
	EffortLow    Effort = "low"
	EffortMedium Effort = "medium"
	EffortHigh   Effort = "high"
)

// effortOrder maps efforts to sortable ranks.
var effortOrder = map[Effort]int{EffortLow: 0, EffortMedium: 1, EffortHigh: 2}

// Rank returns the sortable position of the effort (low first).
func (e Effort) Rank() int {
	return effortOrder[e]
}

// Impact labels the expected payoff of a fix, derived from severity.
type Impact string

// Impact labels.
const (
	ImpactLow    Impact = "low"
	ImpactMedium Impact = "medium"
	ImpactHigh   Impact = "high"
)

// ImpactFromSeverity maps severities onto the three-step impact scale
// used in the quick-win list: critical and high collapse to high.
func ImpactFromSeverity(s Severity) Impact {
	switch s {
	case SeverityCritical, SeverityHigh:
		return ImpactHigh
	case SeverityMedium:
		return ImpactMedium
	default:
		return ImpactLow
	}
}

// Finding is an aggregated group of same-type issues across URLs.
// It owns a bounded, copied sample of evidence rather than the member
// issues themselves, keeping the result size independent of crawl size.
type Finding struct {
	// Category and Type mirror the member issues.
	Category Category `json:"category"`
	Type     string   `json:"type"`

	// Issue is the human-readable group title from the issue catalog.
	Issue string `json:"issue"`

	// Description explains why the issue matters.
	Description string `json:"description,omitempty"`

	// Severity is the maximum member severity after scale escalation.
	Severity Severity `json:"severity"`

	// Count is the number of unique affected URLs.
	Count int `json:"count"`

	// URLs is the full deduplicated, lexicographically sorted list of
	// affected URLs.
	URLs []string `json:"urls"`

	// ExampleURLs is the bounded deterministic sample (first N sorted).
	ExampleURLs []string `json:"example_urls"`

	// Effort is the deterministic fix-effort estimate.
	Effort Effort `json:"effort"`

	// Action is the concrete fix template from the issue catalog.
	Action string `json:"action,omitempty"`

	// CanGenerateFix marks findings whose fixes the text-generation
	// collaborator can draft (titles, metas, h1, images).
	CanGenerateFix bool `json:"can_generate_fix"`

	// Details carries per-URL evidence snippets (offending values),
	// bounded to the example sample.
	Details []FindingDetail `json:"details,omitempty"`
}

// FindingDetail pairs an example URL with its offending value.
type FindingDetail struct {
	URL          string `json:"url"`
	CurrentValue string `json:"current_value,omitempty"`
}

// Key returns the grouping identity of the finding.
func (f *Finding) Key() string {
	return string(f.Category) + "/" + f.Type
}

// QuickWin is a finding promoted into the ranked top-K list.
type QuickWin struct {
	// Rank is the 1-based position in the quick-win list.
	Rank int `json:"rank"`

	// Issue is the finding's display title.
	Issue string `json:"issue"`

	// Category and Type identify the source finding.
	Category Category `json:"category"`
	Type     string   `json:"type"`

	// URLsAffected is the source finding's count.
	URLsAffected int `json:"urls_affected"`

	// ExampleURLs is copied from the source finding's sample.
	ExampleURLs []string `json:"example_urls"`

	// Impact is derived from the finding's severity.
	Impact Impact `json:"impact"`

	// Effort is the finding's effort label.
	Effort Effort `json:"effort"`

	// Action is the concrete what-to-do template.
	Action string `json:"action"`

	// WhyMatters is filled by the fix-generation collaborator; the
	// engine seeds it with the catalog description.
	WhyMatters string `json:"why_matters,omitempty"`
}

// Key returns the grouping identity of the source finding, matching
// Finding.Key.
func (w *QuickWin) Key() string {
	return string(w.Category) + "/" + w.Type
}

// GeneratedFix is one drafted replacement value from the fix-generation
// collaborator, validated against the requested URLs.
type GeneratedFix struct {
	// URL is the page the fix applies to.
	URL string `json:"url"`

	// CurrentValue is the offending value the fix replaces.
	CurrentValue string `json:"current_value,omitempty"`

	// SuggestedFix is the drafted replacement text.
	SuggestedFix string `json:"suggested_fix"`

	// Reasoning explains the suggestion.
	Reasoning string `json:"reasoning,omitempty"`
}
