package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/seotools/quickwin/internal/config"
	"github.com/seotools/quickwin/internal/database"
	"github.com/spf13/cobra"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [domain]",
		Short: "Show stored audit history and score trends",
		Long: `History lists past audit runs stored in the local database.

Without arguments it lists every audited domain. With a domain it shows
that domain's runs newest first, including the health score and finding
counts per severity, so score trends are visible across runs.

Examples:
  # List all audited domains
  quickwin history

  # Show the score trend for one domain
  quickwin history example.com

  # Full JSON of the most recent run
  quickwin history --latest --json example.com`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().BoolP("json", "j", false,
		"Output history as JSON")
	cmd.Flags().Bool("latest", false,
		"Show only the most recent run")
	cmd.Flags().String("db-dir", "",
		"Database directory (default: XDG data directory)")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}
	if dbDir == "" {
		dbDir = config.XDGDataDir()
	}

	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	latestOnly, err := cmd.Flags().GetBool("latest")
	if err != nil {
		return err
	}

	db, err := database.Open(dbDir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		return fmt.Errorf("no audit history found (run 'quickwin audit' first): %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if len(args) == 0 {
		domains, err := db.ListAuditedDomains(ctx)
		if err != nil {
			return err
		}
		if asJSON {
			return json.NewEncoder(out).Encode(domains)
		}
		if len(domains) == 0 {
			fmt.Fprintln(out, "No audited domains yet.")
			return nil
		}
		fmt.Fprintln(out, "Audited domains:")
		for _, domain := range domains {
			fmt.Fprintf(out, "  %s\n", domain)
		}
		return nil
	}

	domain := args[0]

	if latestOnly {
		result, err := db.GetLatestAuditResult(ctx, domain)
		if err != nil {
			return err
		}
		if result == nil {
			return fmt.Errorf("no audits stored for %s", domain)
		}
		if asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}
		fmt.Fprintf(out, "%s  score %d  %d findings\n",
			result.DateAudited.Format("2006-01-02 15:04"), result.Score, result.TotalFindings())
		return nil
	}

	metas, err := db.GetAuditHistoryWithMetadata(ctx, domain)
	if err != nil {
		return err
	}
	if len(metas) == 0 {
		return fmt.Errorf("no audits stored for %s", domain)
	}

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(metas)
	}

	fmt.Fprintf(out, "Audit history for %s (%d runs):\n\n", domain, len(metas))
	fmt.Fprintf(out, "  %-20s %-7s %s\n", "DATE", "SCORE", "FINDINGS")
	for _, meta := range metas {
		fmt.Fprintf(out, "  %-20s %-7d %s\n",
			meta.Timestamp.Format("2006-01-02 15:04"),
			meta.Score,
			formatSeveritySummary(meta.SeveritySummary),
		)
	}

	return nil
}

// formatSeveritySummary renders per-severity counts in fixed order,
// skipping zero counts.
func formatSeveritySummary(summary map[string]int) string {
	parts := make([]string, 0, 4)
	for _, sev := range []string{"critical", "high", "medium", "low"} {
		if n := summary[sev]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, sev))
		}
	}
	if len(parts) == 0 {
		return "clean"
	}
	return strings.Join(parts, ", ")
}
