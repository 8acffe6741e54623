package fixgen

import (
	"context"
	"log/slog"

	"github.com/seotools/quickwin/internal/model"
)

// Annotate drafts fixes for every generable finding behind a quick win,
// fills the win's WhyMatters from the service's reasoning, and attaches
// the drafted fixes to the result so report writers can render them.
// Service failures degrade gracefully: the affected win keeps its
// catalog text and the rest still run. Returns the drafted fixes keyed
// by finding.
func Annotate(ctx context.Context, c *Client, result *model.AuditResult, pages map[string]*model.PageRecord, logger *slog.Logger) map[string][]Fix {
	fixes := make(map[string][]Fix)

	for i := range result.TopQuickWins {
		win := &result.TopQuickWins[i]
		finding := result.FindingFor(*win)
		if finding == nil || !finding.CanGenerateFix {
			continue
		}

		drafted, err := c.GenerateForFinding(ctx, finding, pages)
		if err != nil {
			logger.Warn("fix generation failed",
				"category", finding.Category, "type", finding.Type, "error", err)
			continue
		}
		if len(drafted) == 0 {
			continue
		}

		fixes[finding.Key()] = drafted
		attach(result, finding.Key(), drafted)
		if drafted[0].Reasoning != "" {
			win.WhyMatters = drafted[0].Reasoning
		}
	}

	return fixes
}

// attach records the drafted fixes on the result itself, keyed like the
// backing finding, so the JSON export and the Markdown plan carry them.
func attach(result *model.AuditResult, key string, drafted []Fix) {
	if result.GeneratedFixes == nil {
		result.GeneratedFixes = make(map[string][]model.GeneratedFix)
	}
	converted := make([]model.GeneratedFix, len(drafted))
	for i, f := range drafted {
		converted[i] = model.GeneratedFix{
			URL:          f.URL,
			CurrentValue: f.CurrentValue,
			SuggestedFix: f.SuggestedFix,
			Reasoning:    f.Reasoning,
		}
	}
	result.GeneratedFixes[key] = converted
}
