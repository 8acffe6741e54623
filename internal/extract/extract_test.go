package extract

import (
	"testing"
)

const samplePage = `<!DOCTYPE html>
<html>
<head>
  <title>  Acme   Widgets </title>
  <meta name="Description" content=" Quality widgets since 1999. ">
  <meta name="robots" content="NOINDEX, nofollow">
  <link rel="canonical" href="/widgets/">
  <script type="application/ld+json">{"@type":"Organization"}</script>
</head>
<body>
  <nav><a href="/">Home</a> navigation words here</nav>
  <h1>Widget <em>Catalog</em></h1>
  <h3>Skipped level</h3>
  <h2>Premium line</h2>
  <p>one two three four five</p>
  <img src="/img/widget.png" alt="A widget">
  <img src="/img/naked.png">
  <img src="/img/decorative.png" alt="">
  <img alt="no source">
  <a href="/about">About</a>
  <a href="/about#team">About team</a>
  <a href="https://www.example.com/contact/">Contact</a>
  <a href="https://other.example.org/partner">Partner</a>
  <a href="mailto:sales@example.com">Mail</a>
  <a href="javascript:void(0)">JS</a>
  <script>var ignored = "script words should not count";</script>
  <footer>footer boilerplate words</footer>
</body>
</html>`

func TestExtractorPage(t *testing.T) {
	t.Parallel()

	e := New("example.com")
	page, err := e.Page("https://example.com/widgets", []byte(samplePage))
	if err != nil {
		t.Fatalf("Page() error = %v", err)
	}

	if page.Title != "Acme Widgets" {
		t.Errorf("Title = %q, want collapsed %q", page.Title, "Acme Widgets")
	}
	if page.MetaDescription != "Quality widgets since 1999." {
		t.Errorf("MetaDescription = %q", page.MetaDescription)
	}
	if page.RobotsMeta != "noindex, nofollow" {
		t.Errorf("RobotsMeta = %q, want lowercased", page.RobotsMeta)
	}
	if !page.Noindex {
		t.Error("Noindex = false for a noindex page")
	}
	if page.Canonical != "https://example.com/widgets" {
		t.Errorf("Canonical = %q, want resolved and normalized", page.Canonical)
	}
	if !page.HasSchema {
		t.Error("HasSchema = false despite JSON-LD block")
	}
}

func TestExtractorHeadings(t *testing.T) {
	t.Parallel()

	e := New("example.com")
	page, err := e.Page("https://example.com/widgets", []byte(samplePage))
	if err != nil {
		t.Fatalf("Page() error = %v", err)
	}

	if len(page.H1s) != 1 || page.H1s[0] != "Widget Catalog" {
		t.Errorf("H1s = %v, want [Widget Catalog]", page.H1s)
	}

	wantLevels := []int{1, 3, 2}
	if len(page.Headings) != len(wantLevels) {
		t.Fatalf("Headings = %v, want %d entries", page.Headings, len(wantLevels))
	}
	for i, want := range wantLevels {
		if page.Headings[i].Level != want {
			t.Errorf("Headings[%d].Level = %d, want %d", i, page.Headings[i].Level, want)
		}
	}
}

func TestExtractorWordCountExcludesChrome(t *testing.T) {
	t.Parallel()

	e := New("example.com")
	page, err := e.Page("https://example.com/widgets", []byte(samplePage))
	if err != nil {
		t.Fatalf("Page() error = %v", err)
	}

	// Heading and paragraph words count; nav, script and footer do not.
	// "Widget Catalog" + "Skipped level" + "Premium line" + five body
	// words + the anchor texts in the body.
	if page.WordCount < 5 {
		t.Fatalf("WordCount = %d, too low", page.WordCount)
	}

	withChrome := `<html><body><p>one two</p><nav>a b c d e f g</nav><footer>h i j</footer></body></html>`
	page2, err := e.Page("https://example.com/p", []byte(withChrome))
	if err != nil {
		t.Fatalf("Page() error = %v", err)
	}
	if page2.WordCount != 2 {
		t.Errorf("WordCount = %d, want 2 (chrome excluded)", page2.WordCount)
	}
}

func TestExtractorImagesAltDistinction(t *testing.T) {
	t.Parallel()

	e := New("example.com")
	page, err := e.Page("https://example.com/widgets", []byte(samplePage))
	if err != nil {
		t.Fatalf("Page() error = %v", err)
	}

	// The img without src is dropped.
	if len(page.Images) != 3 {
		t.Fatalf("Images = %v, want 3 entries", page.Images)
	}

	if page.Images[0].Alt == nil || *page.Images[0].Alt != "A widget" {
		t.Errorf("Images[0].Alt = %v, want A widget", page.Images[0].Alt)
	}
	if page.Images[1].Alt != nil {
		t.Errorf("Images[1].Alt = %v, want nil for a missing attribute", *page.Images[1].Alt)
	}
	if page.Images[2].Alt == nil || *page.Images[2].Alt != "" {
		t.Error("Images[2].Alt should be present and empty for alt=\"\"")
	}
	if page.Images[0].Src != "https://example.com/img/widget.png" {
		t.Errorf("Images[0].Src = %q, want resolved absolute URL", page.Images[0].Src)
	}
}

func TestExtractorLinkSplit(t *testing.T) {
	t.Parallel()

	e := New("example.com")
	page, err := e.Page("https://example.com/widgets", []byte(samplePage))
	if err != nil {
		t.Fatalf("Page() error = %v", err)
	}

	// /, /about (deduplicated with its #team variant) and the www
	// contact page are internal; mailto and javascript are dropped.
	wantInternal := map[string]bool{
		"https://example.com/":            true,
		"https://example.com/about":       true,
		"https://www.example.com/contact": true,
	}
	if len(page.InternalLinks) != len(wantInternal) {
		t.Fatalf("InternalLinks = %v, want %d entries", page.InternalLinks, len(wantInternal))
	}
	for _, link := range page.InternalLinks {
		if !wantInternal[link] {
			t.Errorf("unexpected internal link %q", link)
		}
	}

	if len(page.OutboundLinks) != 1 || page.OutboundLinks[0] != "https://other.example.org/partner" {
		t.Errorf("OutboundLinks = %v, want the partner link only", page.OutboundLinks)
	}
}

func TestExtractorMissingSignals(t *testing.T) {
	t.Parallel()

	e := New("example.com")
	page, err := e.Page("https://example.com/bare", []byte(`<html><body><p>hello world</p></body></html>`))
	if err != nil {
		t.Fatalf("Page() error = %v", err)
	}

	if page.Title != "" {
		t.Errorf("Title = %q, want empty", page.Title)
	}
	if page.MetaDescription != "" {
		t.Errorf("MetaDescription = %q, want empty", page.MetaDescription)
	}
	if page.Canonical != "" {
		t.Errorf("Canonical = %q, want empty", page.Canonical)
	}
	if len(page.H1s) != 0 {
		t.Errorf("H1s = %v, want empty", page.H1s)
	}
	if page.Noindex {
		t.Error("Noindex = true without a robots meta")
	}
	if page.HasSchema {
		t.Error("HasSchema = true without structured data")
	}
	if page.WordCount != 2 {
		t.Errorf("WordCount = %d, want 2", page.WordCount)
	}
}

func TestExtractorLinks(t *testing.T) {
	t.Parallel()

	e := New("example.com")
	links := e.Links("https://example.com/widgets", []byte(samplePage))

	// Raw resolution: every navigational anchor, including off-site
	// ones, no mailto/javascript, fragments stripped.
	for _, l := range links {
		if l == "" {
			t.Error("empty link returned")
		}
	}
	found := false
	for _, l := range links {
		if l == "https://example.com/about" {
			found = true
		}
	}
	if !found {
		t.Errorf("Links() = %v, missing /about", links)
	}
}
