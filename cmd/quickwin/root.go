// Package main provides the entry point for the quickwin CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for quickwin.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quickwin",
		Short: "SEO quick-win auditor for small and medium sites",
		Long: `quickwin crawls a site's sitemap (or falls back to a link crawl),
extracts on-page SEO signals, detects common defects, and prioritizes
the handful of fixes with the best impact-to-effort ratio.

The crawl is bounded and polite by default: it honors robots.txt,
samples at most 80 pages, and rate-limits per host.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewAuditCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
