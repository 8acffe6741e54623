package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"github.com/seotools/quickwin/internal/model"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// MarkdownWriter outputs the audit as a shareable action plan in
// GitHub-flavored Markdown: summary table, quick wins, and a findings
// table per category.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// titleCaser renders category keys as section headings ("titles" ->
// "Titles").
var titleCaser = cases.Title(language.English)

// Write outputs the full action plan in Markdown format.
func (w *MarkdownWriter) Write(result *model.AuditResult) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, result)
	w.writeSummary(md, result)
	w.writeQuickWins(md, result)
	w.writeFindings(md, result)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the plan header with audit information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, result *model.AuditResult) {
	md.H1("SEO Quick-Win Action Plan")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Domain", "`" + result.Domain + "`"},
			{"Audit Date", result.DateAudited.Format("2006-01-02 15:04:05 MST")},
			{"Health Score", strconv.Itoa(result.Score) + " / 100"},
			{"Pages Analyzed", strconv.Itoa(result.Stats.URLsAnalyzed)},
			{"Discovery", result.Stats.DiscoveryMethod},
			{"Status", w.getStatusText(result)},
		},
	})
	md.PlainText("")
}

// getStatusText returns the status text based on crawl state.
func (w *MarkdownWriter) getStatusText(result *model.AuditResult) string {
	if result.Stats.TimedOut {
		return "⚠️ Timed Out (partial results)"
	}
	return "✅ Complete"
}

// writeSummary writes the severity summary with a chart and alert.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, result *model.AuditResult) {
	md.H2("Severity Summary")
	md.PlainText("")

	counts := severityCounts(result)
	md.Table(markdown.TableSet{
		Header: []string{"Severity", "Findings"},
		Rows: [][]string{
			{"🔴 Critical", strconv.Itoa(counts[model.SeverityCritical])},
			{"🟠 High", strconv.Itoa(counts[model.SeverityHigh])},
			{"🟡 Medium", strconv.Itoa(counts[model.SeverityMedium])},
			{"🔵 Low", strconv.Itoa(counts[model.SeverityLow])},
			{"**Total**", "**" + strconv.Itoa(result.TotalFindings()) + "**"},
		},
	})
	md.PlainText("")

	if result.TotalFindings() > 0 {
		w.writePieChart(md, counts)
	}

	w.writeAlert(md, result, counts)
}

// writePieChart writes a mermaid pie chart for severity distribution.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, counts map[model.Severity]int) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Finding Severity Distribution"),
		piechart.WithShowData(true),
	)

	if counts[model.SeverityCritical] > 0 {
		chart.LabelAndIntValue("Critical", uint64(counts[model.SeverityCritical]))
	}
	if counts[model.SeverityHigh] > 0 {
		chart.LabelAndIntValue("High", uint64(counts[model.SeverityHigh]))
	}
	if counts[model.SeverityMedium] > 0 {
		chart.LabelAndIntValue("Medium", uint64(counts[model.SeverityMedium]))
	}
	if counts[model.SeverityLow] > 0 {
		chart.LabelAndIntValue("Low", uint64(counts[model.SeverityLow]))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an appropriate alert based on severity counts.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, result *model.AuditResult, counts map[model.Severity]int) {
	switch {
	case counts[model.SeverityCritical] > 0:
		md.Cautionf(
			"Indexing blockers detected! %d critical finding(s) require immediate attention.",
			counts[model.SeverityCritical],
		)
	case counts[model.SeverityHigh] > 0:
		md.Warningf(
			"High severity issues detected. %d finding(s) are suppressing rankings.",
			counts[model.SeverityHigh],
		)
	case counts[model.SeverityMedium] > 0:
		md.Importantf(
			"Medium severity issues found. %d finding(s) measurably weaken pages.",
			counts[model.SeverityMedium],
		)
	case result.TotalFindings() > 0:
		md.Note("Only low severity findings detected.")
	default:
		md.Tip("No SEO issues detected. Nice work.")
	}
	md.PlainText("")
}

// writeQuickWins writes the ranked quick-win list.
func (w *MarkdownWriter) writeQuickWins(md *markdown.Markdown, result *model.AuditResult) {
	md.H2("Top Quick Wins")
	md.PlainText("")

	if len(result.TopQuickWins) == 0 {
		md.PlainText("No quick wins identified.")
		md.PlainText("")
		return
	}

	for _, win := range result.TopQuickWins {
		md.H3(strconv.Itoa(win.Rank) + ". " + win.Issue)
		md.PlainText("")
		md.Table(markdown.TableSet{
			Header: []string{"URLs Affected", "Impact", "Effort"},
			Rows: [][]string{{
				strconv.Itoa(win.URLsAffected),
				string(win.Impact),
				string(win.Effort),
			}},
		})
		md.PlainText("")
		md.PlainText("**Action:** " + win.Action)
		md.PlainText("")
		if win.WhyMatters != "" {
			md.PlainText("**Why it matters:** " + win.WhyMatters)
			md.PlainText("")
		}
		if len(win.ExampleURLs) > 0 {
			md.PlainText("Examples:")
			md.PlainText("")
			examples := make([]string, len(win.ExampleURLs))
			for i, u := range win.ExampleURLs {
				examples[i] = "`" + u + "`"
			}
			md.BulletList(examples...)
			md.PlainText("")
		}
		w.writeDraftedFixes(md, result.GeneratedFixes[win.Key()])
	}
}

// writeDraftedFixes writes the fix-generation service's suggestions for
// one quick win as a per-URL table.
func (w *MarkdownWriter) writeDraftedFixes(md *markdown.Markdown, fixes []model.GeneratedFix) {
	if len(fixes) == 0 {
		return
	}

	rows := make([][]string, len(fixes))
	for i, fix := range fixes {
		current := "-"
		if fix.CurrentValue != "" {
			current = truncateString(fix.CurrentValue, 50)
		}
		rows[i] = []string{
			truncateString(fix.URL, 60),
			current,
			fix.SuggestedFix,
		}
	}

	md.PlainText("**Drafted fixes:**")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"URL", "Current", "Suggested"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFindings writes all findings grouped by category.
func (w *MarkdownWriter) writeFindings(md *markdown.Markdown, result *model.AuditResult) {
	md.H2("All Findings by Category")
	md.PlainText("")

	if result.TotalFindings() == 0 {
		md.PlainText("No findings.")
		md.PlainText("")
		return
	}

	for _, cat := range model.Categories() {
		findings := result.AllFindings[cat]
		if len(findings) == 0 {
			continue
		}

		md.H3(titleCaser.String(string(cat)))
		md.PlainText("")
		w.writeFindingsTable(md, findings)
	}
}

// writeFindingsTable writes a table of findings with details.
func (w *MarkdownWriter) writeFindingsTable(md *markdown.Markdown, findings []model.Finding) {
	rows := make([][]string, len(findings))
	for i, f := range findings {
		example := "-"
		if len(f.ExampleURLs) > 0 {
			example = truncateString(f.ExampleURLs[0], 60)
		}
		rows[i] = []string{
			f.Issue,
			f.Severity.String(),
			strconv.Itoa(f.Count),
			string(f.Effort),
			example,
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Issue", "Severity", "Count", "Effort", "Example"},
		Rows:   rows,
	})
	md.PlainText("")

	for _, f := range findings {
		if f.Description == "" {
			continue
		}
		detail := f.Description
		if f.Action != "" {
			detail += " " + f.Action
		}
		md.Details(f.Issue, detail)
	}
	md.PlainText("")
}

// writeFooter writes the plan footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Generated by [quickwin](https://github.com/seotools/quickwin)*")
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return strings.TrimRight(s[:maxLen-3], " ") + "..."
}
