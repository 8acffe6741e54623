package extract

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/seotools/quickwin/internal/crawler"
	"github.com/seotools/quickwin/internal/model"
)

// noiseSelector matches elements excluded from the visible word count.
// Boilerplate chrome and scripts would otherwise inflate thin pages
// past the detection floor.
const noiseSelector = "script, style, noscript, nav, header, footer"

// Extractor parses fetched HTML into page signal records for one
// audited domain. It is stateless and safe for concurrent use.
type Extractor struct {
	domain string
}

// New creates an Extractor for a registrable domain. The domain
// decides which anchor targets count as internal links.
func New(domain string) *Extractor {
	return &Extractor{domain: domain}
}

// Page parses an HTML body into a PageRecord carrying every on-page
// signal the detection rules read. The caller fills in the fetch
// metadata (URL, status, timestamps).
func (e *Extractor) Page(pageURL string, body []byte) (*model.PageRecord, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse HTML of %s: %w", pageURL, err)
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parse page URL %s: %w", pageURL, err)
	}

	record := &model.PageRecord{
		URL:      pageURL,
		FinalURL: pageURL,
		H1s:      []string{},
	}

	record.Title = collapse(doc.Find("title").First().Text())
	record.MetaDescription = e.metaContent(doc, "description")
	record.RobotsMeta = strings.ToLower(e.metaContent(doc, "robots"))
	record.Noindex = strings.Contains(record.RobotsMeta, "noindex")
	record.Canonical = e.canonical(doc, base)
	record.Headings = e.headings(doc)
	for _, h := range record.Headings {
		if h.Level == 1 {
			record.H1s = append(record.H1s, h.Text)
		}
	}
	record.WordCount = e.wordCount(doc)
	record.Images = e.images(doc, base)
	record.InternalLinks, record.OutboundLinks = e.splitLinks(doc, base)
	record.HasSchema = e.hasSchema(doc)

	return record, nil
}

// Links returns every anchor target on the page resolved to an
// absolute URL, internal and external alike. Used by the crawler's
// link-following fallback, which applies its own filtering.
func (e *Extractor) Links(pageURL string, body []byte) []string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil
	}

	var links []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		if target := resolveHref(base, s.AttrOr("href", "")); target != "" {
			links = append(links, target)
		}
	})
	return links
}

// metaContent returns the content of the first meta tag with the given
// name, matched case-insensitively.
func (e *Extractor) metaContent(doc *goquery.Document, name string) string {
	var content string
	doc.Find("meta").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if strings.EqualFold(s.AttrOr("name", ""), name) {
			content = strings.TrimSpace(s.AttrOr("content", ""))
			return false
		}
		return true
	})
	return content
}

// canonical returns the absolute canonical URL, or empty when the page
// declares none.
func (e *Extractor) canonical(doc *goquery.Document, base *url.URL) string {
	var href string
	doc.Find("link").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if strings.EqualFold(strings.TrimSpace(s.AttrOr("rel", "")), "canonical") {
			href = s.AttrOr("href", "")
			return false
		}
		return true
	})
	if href == "" {
		return ""
	}

	resolved := resolveHref(base, href)
	if resolved == "" {
		return ""
	}
	normalized, err := crawler.NormalizeURL(resolved)
	if err != nil {
		return resolved
	}
	return normalized
}

// headings returns every h1-h6 element in document order.
func (e *Extractor) headings(doc *goquery.Document) []model.Heading {
	var headings []model.Heading
	doc.Find("h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
		name := goquery.NodeName(s)
		if len(name) != 2 {
			return
		}
		level := int(name[1] - '0')
		if level < 1 || level > 6 {
			return
		}
		headings = append(headings, model.Heading{
			Level: level,
			Text:  collapse(s.Text()),
		})
	})
	return headings
}

// wordCount counts whitespace-delimited tokens in the visible body
// text, with boilerplate chrome removed.
func (e *Extractor) wordCount(doc *goquery.Document) int {
	body := doc.Find("body")
	if body.Length() == 0 {
		return len(strings.Fields(doc.Text()))
	}

	clone := body.Clone()
	clone.Find(noiseSelector).Remove()
	return len(strings.Fields(clone.Text()))
}

// images returns every img element with a source, preserving the
// distinction between a missing alt attribute and alt="".
func (e *Extractor) images(doc *goquery.Document, base *url.URL) []model.Image {
	var images []model.Image
	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		src := strings.TrimSpace(s.AttrOr("src", ""))
		if src == "" {
			return
		}
		img := model.Image{Src: resolveHref(base, src)}
		if alt, exists := s.Attr("alt"); exists {
			altCopy := alt
			img.Alt = &altCopy
		}
		images = append(images, img)
	})
	return images
}

// splitLinks partitions anchor targets into same-domain and off-domain
// lists. Internal links are normalized and deduplicated since they
// feed URL-identity checks; outbound links are kept as written.
func (e *Extractor) splitLinks(doc *goquery.Document, base *url.URL) (internal, outbound []string) {
	seen := make(map[string]bool)

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		target := resolveHref(base, s.AttrOr("href", ""))
		if target == "" {
			return
		}

		if crawler.SameSite(e.domain, target) {
			normalized, err := crawler.NormalizeURL(target)
			if err != nil || seen[normalized] {
				return
			}
			seen[normalized] = true
			internal = append(internal, normalized)
			return
		}

		if !seen[target] {
			seen[target] = true
			outbound = append(outbound, target)
		}
	})

	return internal, outbound
}

// hasSchema reports whether any structured-data block is present:
// JSON-LD, microdata itemscope, or RDFa markers.
func (e *Extractor) hasSchema(doc *goquery.Document) bool {
	if doc.Find(`script[type="application/ld+json"]`).Length() > 0 {
		return true
	}
	if doc.Find("[itemscope]").Length() > 0 {
		return true
	}
	return doc.Find("[typeof]").Length() > 0 || doc.Find("[vocab]").Length() > 0
}

// resolveHref resolves an href against the page URL, returning empty
// for non-navigational targets (fragments, mailto, tel, javascript).
func resolveHref(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return ""
	}

	lower := strings.ToLower(href)
	for _, scheme := range []string{"mailto:", "tel:", "javascript:", "data:"} {
		if strings.HasPrefix(lower, scheme) {
			return ""
		}
	}

	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}

	resolved := base.ResolveReference(ref)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	resolved.Fragment = ""
	return resolved.String()
}

// collapse trims and collapses internal whitespace runs to single
// spaces, normalizing text pulled out of formatted HTML.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
