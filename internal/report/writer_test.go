package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/seotools/quickwin/internal/model"
)

// createTestResult builds a result with findings across categories and
// a two-entry quick-win list.
func createTestResult() *model.AuditResult {
	findings := []model.Finding{
		{
			Category:    model.CategoryTitles,
			Type:        "duplicate_titles",
			Issue:       "Pages sharing duplicate title tags",
			Description: "Identical titles split relevance across duplicates.",
			Severity:    model.SeverityHigh,
			Count:       4,
			URLs: []string{
				"https://example.com/a",
				"https://example.com/b",
				"https://example.com/c",
				"https://example.com/d",
			},
			ExampleURLs: []string{
				"https://example.com/a",
				"https://example.com/b",
				"https://example.com/c",
			},
			Effort:         model.EffortLow,
			Action:         "Rewrite each duplicate title.",
			CanGenerateFix: true,
		},
		{
			Category:    model.CategoryContent,
			Type:        "thin_content",
			Issue:       "Pages with thin content",
			Description: "Pages below the word-count floor rarely rank.",
			Severity:    model.SeverityMedium,
			Count:       2,
			URLs:        []string{"https://example.com/a", "https://example.com/x"},
			ExampleURLs: []string{"https://example.com/a", "https://example.com/x"},
			Effort:      model.EffortMedium,
			Action:      "Expand each page with substantive content.",
		},
	}

	result := model.NewAuditResult(model.CrawlStats{
		Domain:          "example.com",
		BaseURL:         "https://example.com/",
		DiscoveryMethod: "sitemap",
		URLsDiscovered:  12,
		URLsAnalyzed:    10,
	}, findings, []model.QuickWin{
		{
			Rank:         1,
			Issue:        "Pages sharing duplicate title tags",
			Category:     model.CategoryTitles,
			Type:         "duplicate_titles",
			URLsAffected: 4,
			ExampleURLs:  []string{"https://example.com/a"},
			Impact:       model.ImpactHigh,
			Effort:       model.EffortLow,
			Action:       "Rewrite each duplicate title.",
		},
		{
			Rank:         2,
			Issue:        "Pages with thin content",
			Category:     model.CategoryContent,
			Type:         "thin_content",
			URLsAffected: 2,
			ExampleURLs:  []string{"https://example.com/x"},
			Impact:       model.ImpactMedium,
			Effort:       model.EffortMedium,
			Action:       "Expand each page with substantive content.",
		},
	})
	result.DateAudited = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	return result
}

// createTestResultWithFixes adds drafted fixes for the duplicate-titles
// quick win.
func createTestResultWithFixes() *model.AuditResult {
	result := createTestResult()
	result.GeneratedFixes = map[string][]model.GeneratedFix{
		"titles/duplicate_titles": {
			{
				URL:          "https://example.com/a",
				CurrentValue: "Shared Title",
				SuggestedFix: "Unique Title A",
				Reasoning:    "distinct topic",
			},
		},
	}
	return result
}

// TestGeneratedFixesRendering verifies that drafted fixes attached to
// the result reach every output format.
func TestGeneratedFixesRendering(t *testing.T) {
	t.Parallel()

	t.Run("json carries the generated_fixes section", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf)

		if _, err := w.Write(createTestResultWithFixes()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var decoded map[string]any
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if _, ok := decoded["generated_fixes"]; !ok {
			t.Error("expected a generated_fixes section")
		}
		if !strings.Contains(buf.String(), `"suggested_fix":"Unique Title A"`) {
			t.Error("expected the suggested fix in the JSON output")
		}
	})

	t.Run("json omits the section without fixes", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf)

		if _, err := w.Write(createTestResult()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Contains(buf.String(), "generated_fixes") {
			t.Error("expected no generated_fixes section when none were drafted")
		}
	})

	t.Run("markdown renders a drafted fixes table", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		if _, err := w.Write(createTestResultWithFixes()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "**Drafted fixes:**") {
			t.Error("expected a drafted fixes section under the quick win")
		}
		if !strings.Contains(output, "Unique Title A") {
			t.Error("expected the suggested fix in the table")
		}
		if !strings.Contains(output, "Shared Title") {
			t.Error("expected the current value in the table")
		}
	})

	t.Run("text lists the suggestion per URL", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewTextWriter(&buf)

		if _, err := w.Write(createTestResultWithFixes()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "Suggested for https://example.com/a") {
			t.Error("expected the per-URL suggestion line")
		}
		if !strings.Contains(output, "Unique Title A") {
			t.Error("expected the suggested fix text")
		}
	})
}

func TestTextWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes report header", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewTextWriter(&buf)

		_, err := w.Write(createTestResult())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "SEO QUICK-WIN AUDIT") {
			t.Error("expected output to contain header")
		}
		if !strings.Contains(output, "example.com") {
			t.Error("expected output to contain domain")
		}
		if !strings.Contains(output, "Pages Analyzed:  10 of 12 discovered") {
			t.Error("expected output to contain crawl stats")
		}
	})

	t.Run("writes quick wins first", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewTextWriter(&buf)

		_, err := w.Write(createTestResult())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		winsAt := strings.Index(output, "TOP QUICK WINS")
		findingsAt := strings.Index(output, "ALL FINDINGS")
		if winsAt < 0 || findingsAt < 0 {
			t.Fatal("expected both quick wins and findings sections")
		}
		if winsAt > findingsAt {
			t.Error("expected quick wins section before findings")
		}
		if !strings.Contains(output, "1. Pages sharing duplicate title tags") {
			t.Error("expected ranked quick win entry")
		}
	})

	t.Run("writes findings grouped by category", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewTextWriter(&buf)

		_, err := w.Write(createTestResult())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "[TITLES]") {
			t.Error("expected titles category section")
		}
		if !strings.Contains(output, "[CONTENT]") {
			t.Error("expected content category section")
		}
		if !strings.Contains(output, "(4 URLs, low effort)") {
			t.Error("expected finding count and effort")
		}
	})

	t.Run("verbose mode includes example URLs", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewTextWriter(&buf, WithVerbose(true))

		_, err := w.Write(createTestResult())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "https://example.com/x") {
			t.Error("expected verbose output to list example URLs")
		}
	})

	t.Run("shows empty categories when configured", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewTextWriter(&buf, WithShowEmpty(true))

		_, err := w.Write(createTestResult())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "[SCHEMA]") {
			t.Error("expected empty schema category to be shown")
		}
	})
}

func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes valid JSON", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf)

		n, err := w.Write(createTestResult())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != buf.Len() {
			t.Errorf("reported %d bytes, wrote %d", n, buf.Len())
		}

		var decoded model.AuditResult
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if decoded.Domain != "example.com" {
			t.Errorf("Domain = %q, want example.com", decoded.Domain)
		}
		if len(decoded.TopQuickWins) != 2 {
			t.Errorf("TopQuickWins = %d entries, want 2", len(decoded.TopQuickWins))
		}
	})

	t.Run("uses the external quick-win field name", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf)

		if _, err := w.Write(createTestResult()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), `"top_5_quick_wins"`) {
			t.Error("expected top_5_quick_wins field in JSON output")
		}
	})

	t.Run("pretty print indents output", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf, WithPrettyPrint())

		if _, err := w.Write(createTestResult()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "\n  \"domain\"") {
			t.Error("expected indented output")
		}
	})
}

func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes action plan sections", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		_, err := w.Write(createTestResult())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{
			"# SEO Quick-Win Action Plan",
			"## Severity Summary",
			"## Top Quick Wins",
			"## All Findings by Category",
			"### Titles",
			"### Content",
			"### 1. Pages sharing duplicate title tags",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})

	t.Run("includes the score and status", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		result := createTestResult()
		if _, err := w.Write(result); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "/ 100") {
			t.Error("expected health score row")
		}
		if !strings.Contains(output, "Complete") {
			t.Error("expected complete status")
		}
	})

	t.Run("marks timed out audits", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		result := createTestResult()
		result.Stats.TimedOut = true
		if _, err := w.Write(result); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "Timed Out") {
			t.Error("expected timed-out marker in status")
		}
	})

	t.Run("no findings yields a tip", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		result := model.NewAuditResult(model.CrawlStats{
			Domain:          "clean.example.com",
			DiscoveryMethod: "sitemap",
			URLsAnalyzed:    5,
			URLsDiscovered:  5,
		}, nil, nil)

		if _, err := w.Write(result); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "[!TIP]") {
			t.Error("expected a tip alert for a clean site")
		}
		if !strings.Contains(output, "No quick wins identified.") {
			t.Error("expected empty quick-win section text")
		}
	})
}

// failWriter fails after a fixed number of bytes.
type failWriter struct{}

func (failWriter) Write(p []byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestMultiWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes to all writers", func(t *testing.T) {
		t.Parallel()

		var text, jsonBuf bytes.Buffer
		mw := NewMultiWriter(
			NewTextWriter(&text),
			NewJSONWriter(&jsonBuf),
		)

		n, err := mw.Write(createTestResult())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != text.Len()+jsonBuf.Len() {
			t.Errorf("total = %d, want %d", n, text.Len()+jsonBuf.Len())
		}
		if text.Len() == 0 || jsonBuf.Len() == 0 {
			t.Error("expected both writers to receive output")
		}
	})

	t.Run("stops on first error", func(t *testing.T) {
		t.Parallel()

		var after bytes.Buffer
		mw := NewMultiWriter(
			NewJSONWriter(failWriter{}),
			NewJSONWriter(&after),
		)

		if _, err := mw.Write(createTestResult()); err == nil {
			t.Fatal("expected an error from the failing writer")
		}
		if after.Len() != 0 {
			t.Error("expected no output after the failing writer")
		}
	})
}
