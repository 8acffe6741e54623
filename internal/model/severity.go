package model

// Severity represents how badly an issue hurts search visibility.
// Values are ordered so that direct comparison works: a higher value
// is a more severe issue.
type Severity int

const (
	// SeverityLow indicates cosmetic or best-practice issues.
	// Examples: title slightly out of the recommended length range,
	// missing structured data.
	SeverityLow Severity = iota

	// SeverityMedium indicates issues that measurably weaken pages.
	// Examples: thin content, multiple H1 headings, missing alt text.
	SeverityMedium

	// SeverityHigh indicates issues that suppress rankings site-wide.
	// Examples: duplicate titles, missing meta descriptions, missing H1.
	SeverityHigh

	// SeverityCritical indicates issues that block indexing outright.
	// Examples: missing titles, broken internal links, stray noindex.
	SeverityCritical
)

// String returns the lowercase label used in reports and JSON output.
func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// MarshalJSON serializes the severity as its lowercase label so that
// downstream consumers (fix generation, export) see readable values.
func (s Severity) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// Escalate bumps the severity one level, capped at critical.
// Used when the affected-URL count of a finding crosses the scale
// threshold.
func (s Severity) Escalate() Severity {
	if s >= SeverityCritical {
		return SeverityCritical
	}
	return s + 1
}

// Category identifies the area of the site an issue belongs to.
type Category string

// Issue categories. The fixed set doubles as the partition key for the
// all_findings section of the audit result.
const (
	CategoryTitles       Category = "titles"
	CategoryMetas        Category = "metas"
	CategoryH1           Category = "h1"
	CategoryContent      Category = "content"
	CategoryImages       Category = "images"
	CategoryLinks        Category = "links"
	CategoryCanonicals   Category = "canonicals"
	CategoryIndexability Category = "indexability"
	CategorySchema       Category = "schema"
)

// Categories lists every category in a fixed order, used when building
// the category-partitioned findings map deterministically.
func Categories() []Category {
	return []Category{
		CategoryTitles,
		CategoryMetas,
		CategoryH1,
		CategoryContent,
		CategoryImages,
		CategoryLinks,
		CategoryCanonicals,
		CategoryIndexability,
		CategorySchema,
	}
}

// IssueInfo contains the static metadata for an issue type: which
// category it belongs to, its base severity, display texts, and whether
// the fix-generation collaborator can draft replacement text for it.
type IssueInfo struct {
	Category       Category
	Title          string
	Description    string
	Severity       Severity
	Action         string
	CanGenerateFix bool
}

// issueInfoMapping maps issue types to their metadata. Centralizing the
// mapping keeps severity assessment consistent between the detector,
// the aggregator, and the reports.
var issueInfoMapping = map[string]IssueInfo{
	// === Titles ===
	"missing_title": {
		Category:    CategoryTitles,
		Title:       "Pages without a title tag",
		Description: "The title tag is the strongest on-page ranking signal. Pages without one force search engines to guess the topic.",
		Severity:    SeverityCritical,
		Action:      "Write a unique, descriptive title tag (30-65 characters) for each affected page.",
		CanGenerateFix: true,
	},
	"duplicate_titles": {
		Category:    CategoryTitles,
		Title:       "Pages sharing duplicate title tags",
		Description: "Identical titles make it unclear which page should rank for a query, splitting relevance across duplicates.",
		Severity:    SeverityHigh,
		Action:      "Rewrite each duplicate title so every page has a unique one describing its specific content.",
		CanGenerateFix: true,
	},
	"title_length": {
		Category:    CategoryTitles,
		Title:       "Title tags outside the recommended length",
		Description: "Titles shorter than 30 characters waste the snippet; titles over 65 characters get truncated in results.",
		Severity:    SeverityLow,
		Action:      "Adjust titles to 30-65 characters, front-loading the primary keyword.",
		CanGenerateFix: true,
	},

	// === Meta descriptions ===
	"missing_meta": {
		Category:    CategoryMetas,
		Title:       "Pages without a meta description",
		Description: "Meta descriptions drive click-through from search results; without one the snippet is scraped from arbitrary page text.",
		Severity:    SeverityHigh,
		Action:      "Add a compelling 120-160 character meta description to each affected page.",
		CanGenerateFix: true,
	},
	"duplicate_metas": {
		Category:    CategoryMetas,
		Title:       "Pages sharing duplicate meta descriptions",
		Description: "Identical descriptions suppress click-through and hide what makes each page distinct.",
		Severity:    SeverityHigh,
		Action:      "Write a unique meta description per page, summarizing its specific value.",
		CanGenerateFix: true,
	},
	"meta_length": {
		Category:    CategoryMetas,
		Title:       "Meta descriptions outside the recommended length",
		Description: "Descriptions under 120 characters under-sell the page; over 160 characters they are cut off mid-sentence.",
		Severity:    SeverityLow,
		Action:      "Rewrite descriptions to 120-160 characters ending on a complete thought.",
		CanGenerateFix: true,
	},

	// === Headings ===
	"missing_h1": {
		Category:    CategoryH1,
		Title:       "Pages without an H1 heading",
		Description: "The H1 anchors the page topic for both crawlers and readers; pages without one lose a strong relevance signal.",
		Severity:    SeverityHigh,
		Action:      "Add a single H1 heading stating the primary topic of each affected page.",
		CanGenerateFix: true,
	},
	"multiple_h1": {
		Category:    CategoryH1,
		Title:       "Pages with more than one H1 heading",
		Description: "Multiple H1 headings dilute the topic signal; one H1 per page keeps the hierarchy unambiguous.",
		Severity:    SeverityMedium,
		Action:      "Keep one H1 per page and demote the others to H2.",
		CanGenerateFix: true,
	},
	"broken_hierarchy": {
		Category:    CategoryH1,
		Title:       "Pages with skipped heading levels",
		Description: "Jumping levels (H1 straight to H3) obscures content structure for crawlers and screen readers.",
		Severity:    SeverityLow,
		Action:      "Re-nest headings so each level follows its parent without skipping.",
	},

	// === Content ===
	"thin_content": {
		Category:    CategoryContent,
		Title:       "Pages with thin content",
		Description: "Pages below the word-count floor rarely demonstrate enough depth to rank for competitive queries.",
		Severity:    SeverityMedium,
		Action:      "Expand each page with substantive content covering the topic it targets, or consolidate it into a stronger page.",
	},

	// === Images ===
	"missing_alt": {
		Category:    CategoryImages,
		Title:       "Images without alt text",
		Description: "Missing alt attributes hide images from image search and fail accessibility requirements.",
		Severity:    SeverityMedium,
		Action:      "Add descriptive alt text to each image, or alt=\"\" for purely decorative ones.",
		CanGenerateFix: true,
	},

	// === Links ===
	"broken_internal_link": {
		Category:    CategoryLinks,
		Title:       "Broken internal links",
		Description: "Links to 4xx/5xx or unreachable pages waste crawl budget and dead-end both users and link equity.",
		Severity:    SeverityCritical,
		Action:      "Update or remove each broken link, or restore the missing target page.",
	},
	"orphan_pages": {
		Category:    CategoryLinks,
		Title:       "Orphan pages with no internal links",
		Description: "Pages no other page links to receive no internal link equity and are hard for crawlers to discover.",
		Severity:    SeverityMedium,
		Action:      "Link to each orphan page from relevant hub or navigation pages.",
	},

	// === Canonicals ===
	"canonical_mismatch": {
		Category:    CategoryCanonicals,
		Title:       "Canonical tags pointing at broken or foreign URLs",
		Description: "A canonical pointing at a missing page or another domain tells search engines to de-index the current page.",
		Severity:    SeverityHigh,
		Action:      "Point each canonical at the live, preferred version of the page on this domain.",
	},
	"missing_canonical": {
		Category:    CategoryCanonicals,
		Title:       "Pages without a canonical tag",
		Description: "Canonical tags prevent near-duplicate URLs (tracking parameters, pagination) from competing with the primary page.",
		Severity:    SeverityLow,
		Action:      "Add a self-referencing canonical link element to each page.",
	},

	// === Indexability ===
	"noindex_on_indexable": {
		Category:    CategoryIndexability,
		Title:       "Linked pages carrying a noindex directive",
		Description: "These pages are reachable via the sitemap or internal links yet explicitly ask to be dropped from the index.",
		Severity:    SeverityCritical,
		Action:      "Remove the noindex directive from pages that should rank, or stop linking to intentionally hidden ones.",
	},
	"sitemap_missing": {
		Category:    CategoryIndexability,
		Title:       "Add an XML sitemap",
		Description: "Without a sitemap, search engines must discover every page by following links, so deep pages may never be indexed.",
		Severity:    SeverityCritical,
		Action:      "Generate a sitemap, serve it at /sitemap.xml, reference it from robots.txt, and submit it in Search Console.",
	},

	// === Schema ===
	"missing_schema": {
		Category:    CategorySchema,
		Title:       "Pages without structured data",
		Description: "Structured data unlocks rich results (stars, FAQs, breadcrumbs) that raise click-through rates.",
		Severity:    SeverityLow,
		Action:      "Add JSON-LD structured data matching each page type (Organization, Article, Product, ...).",
	},
}

// GetIssueInfo returns the metadata for an issue type.
// Unknown types get a generic low-severity entry rather than panicking,
// so a rule emitting a new type degrades gracefully.
func GetIssueInfo(issueType string) IssueInfo {
	if info, ok := issueInfoMapping[issueType]; ok {
		return info
	}
	return IssueInfo{
		Category:    CategoryContent,
		Title:       issueType,
		Description: "Unrecognized issue type. Review manually.",
		Severity:    SeverityLow,
		Action:      "Investigate the affected pages.",
	}
}

// GetSeverity returns the base severity for an issue type.
func GetSeverity(issueType string) Severity {
	return GetIssueInfo(issueType).Severity
}
