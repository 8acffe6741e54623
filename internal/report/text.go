package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/seotools/quickwin/internal/model"
)

// TextWriter outputs human-readable text reports for terminal display,
// leading with the quick-win list since that is what operators act on.
type TextWriter struct {
	baseWriter

	// showEmpty controls whether categories with no findings are shown.
	showEmpty bool

	// verbose enables per-finding example URLs in the output.
	verbose bool
}

// TextWriterOption configures a TextWriter.
type TextWriterOption func(*TextWriter)

// WithShowEmpty configures the writer to show empty categories.
func WithShowEmpty(show bool) TextWriterOption {
	return func(w *TextWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with example URLs.
func WithVerbose(verbose bool) TextWriterOption {
	return func(w *TextWriter) {
		w.verbose = verbose
	}
}

// NewTextWriter creates a TextWriter that outputs to the given writer.
func NewTextWriter(output io.Writer, opts ...TextWriterOption) *TextWriter {
	w := &TextWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the audit result in human-readable format.
func (w *TextWriter) Write(result *model.AuditResult) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, result)
	w.writeQuickWins(&sb, result)
	w.writeFindings(&sb, result)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with audit information.
func (w *TextWriter) writeHeader(sb *strings.Builder, result *model.AuditResult) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                      SEO QUICK-WIN AUDIT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Domain:          %s\n", result.Domain))
	sb.WriteString(fmt.Sprintf("Audit Date:      %s\n", result.DateAudited.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Health Score:    %d / 100\n", result.Score))
	sb.WriteString(fmt.Sprintf("Pages Analyzed:  %d of %d discovered\n",
		result.Stats.URLsAnalyzed, result.Stats.URLsDiscovered))
	sb.WriteString(fmt.Sprintf("Discovery:       %s\n", result.Stats.DiscoveryMethod))

	if result.Stats.TimedOut {
		sb.WriteString("Status:          TIMED OUT (partial results)\n")
	} else {
		sb.WriteString("Status:          Complete\n")
	}

	sb.WriteString("\n")
}

// writeQuickWins writes the ranked quick-win list.
func (w *TextWriter) writeQuickWins(sb *strings.Builder, result *model.AuditResult) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("TOP QUICK WINS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if len(result.TopQuickWins) == 0 {
		sb.WriteString("  No quick wins identified\n\n")
		return
	}

	for _, win := range result.TopQuickWins {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", win.Rank, win.Issue))
		sb.WriteString(fmt.Sprintf("     URLs affected: %d | Impact: %s | Effort: %s\n",
			win.URLsAffected, win.Impact, win.Effort))
		sb.WriteString(fmt.Sprintf("     Action: %s\n", win.Action))
		if w.verbose {
			for _, u := range win.ExampleURLs {
				sb.WriteString(fmt.Sprintf("       - %s\n", u))
			}
		}
		for _, fix := range result.GeneratedFixes[win.Key()] {
			sb.WriteString(fmt.Sprintf("     Suggested for %s:\n       %s\n", fix.URL, fix.SuggestedFix))
		}
		sb.WriteString("\n")
	}
}

// writeFindings writes all findings grouped by category.
func (w *TextWriter) writeFindings(sb *strings.Builder, result *model.AuditResult) {
	if result.TotalFindings() == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("ALL FINDINGS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	for _, cat := range model.Categories() {
		findings := result.AllFindings[cat]
		if len(findings) == 0 && !w.showEmpty {
			continue
		}

		w.writeFindingsForCategory(sb, cat, findings)
	}
}

// writeFindingsForCategory writes findings of a specific category.
func (w *TextWriter) writeFindingsForCategory(sb *strings.Builder, cat model.Category, findings []model.Finding) {
	sb.WriteString(fmt.Sprintf("[%s]\n", strings.ToUpper(string(cat))))

	if len(findings) == 0 {
		sb.WriteString("  No findings\n\n")
		return
	}

	for _, f := range findings {
		sb.WriteString(fmt.Sprintf("  %s %s (%d URLs, %s effort)\n",
			w.getSeverityIndicator(f.Severity), f.Issue, f.Count, f.Effort))
		if w.verbose {
			for _, u := range f.ExampleURLs {
				sb.WriteString(fmt.Sprintf("       - %s\n", u))
			}
		}
	}
	sb.WriteString("\n")
}

// getSeverityIndicator returns a visual indicator for the severity level.
func (w *TextWriter) getSeverityIndicator(severity model.Severity) string {
	switch severity {
	case model.SeverityCritical:
		return "[!!!]"
	case model.SeverityHigh:
		return "[!!] "
	case model.SeverityMedium:
		return "[!]  "
	case model.SeverityLow:
		return "[-]  "
	default:
		return "[?]  "
	}
}

// writeFooter writes the report footer.
func (w *TextWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by quickwin\n")
	sb.WriteString("https://github.com/seotools/quickwin\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
