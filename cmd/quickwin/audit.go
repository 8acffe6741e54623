package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/seotools/quickwin/internal/config"
	"github.com/seotools/quickwin/internal/database"
	"github.com/seotools/quickwin/internal/fixgen"
	"github.com/seotools/quickwin/internal/log"
	"github.com/seotools/quickwin/internal/model"
	"github.com/seotools/quickwin/internal/pipeline"
	"github.com/seotools/quickwin/internal/report"
	"github.com/spf13/cobra"
)

// NewAuditCmd creates the audit command.
func NewAuditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit [domain]",
		Short: "Audit a site's on-page SEO and rank the quick wins",
		Long: `Audit discovers a site's pages via robots.txt and its XML sitemap
(falling back to a bounded same-site link crawl), extracts on-page
signals, detects common SEO defects, and prioritizes the top fixes by
impact and effort.

Examples:
  # Audit a single domain
  quickwin audit example.com

  # Audit multiple domains
  quickwin audit example.com shop.example.org

  # Output the full machine-readable result
  quickwin audit --json example.com

  # Write a Markdown action plan to a file
  quickwin audit --markdown -o plan.md example.com

  # Draft replacement titles/metas via a fix-generation service
  quickwin audit --fix-endpoint https://fixer.internal/v1/fixes example.com

Configuration file (.quickwin.yaml) example:
  sites:
    example.com:
      maxPages: 150
      thinContentFloor: 200
      headers:
        Authorization: "Bearer token"`,
		Args: cobra.ArbitraryArgs,
		RunE: runAuditCmd,
	}

	// Crawl behavior flags
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPages,
		"Maximum number of pages to analyze per site")
	cmd.Flags().DurationP("timeout", "t", config.DefaultFetchTimeout,
		"Timeout for each page fetch")
	cmd.Flags().Duration("budget", config.DefaultCrawlTimeBudget,
		"Total time budget for the crawl stage")
	cmd.Flags().Int("concurrency", config.DefaultConcurrency,
		"Number of parallel page fetchers")
	cmd.Flags().Float64("rps", config.DefaultRequestsPerSecond,
		"Per-host request rate limit")
	cmd.Flags().Bool("ignore-robots", false,
		"Ignore robots.txt disallow rules (only for sites you operate)")

	// Detection flags
	cmd.Flags().Int("thin-floor", config.DefaultThinContentFloor,
		"Word count below which a page is flagged as thin")
	cmd.Flags().IntP("top", "k", config.DefaultTopWins,
		"Number of entries in the ranked quick-win list")
	cmd.Flags().StringSlice("exclude", config.DefaultExcludedCategories(),
		"Issue categories excluded from the quick-win ranking")

	// Fix generation flags
	cmd.Flags().String("fix-endpoint", "",
		"Fix-generation service URL (empty disables fix drafting)")
	cmd.Flags().Duration("fix-timeout", config.DefaultFixTimeout,
		"Timeout for each fix-generation call")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .quickwin.yaml in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON result (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown action plan (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write the report to the specified file path (creates directories if needed)")
	cmd.Flags().Bool("no-save", false,
		"Skip saving the result to the audit history database")

	return cmd
}

// runAuditCmd executes the audit command.
func runAuditCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runAudit(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	cfg.MaxPages, err = cmd.Flags().GetInt("max-pages")
	if err != nil {
		return nil, err
	}

	cfg.FetchTimeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.CrawlTimeBudget, err = cmd.Flags().GetDuration("budget")
	if err != nil {
		return nil, err
	}

	cfg.Concurrency, err = cmd.Flags().GetInt("concurrency")
	if err != nil {
		return nil, err
	}

	cfg.RequestsPerSecond, err = cmd.Flags().GetFloat64("rps")
	if err != nil {
		return nil, err
	}

	cfg.IgnoreRobots, err = cmd.Flags().GetBool("ignore-robots")
	if err != nil {
		return nil, err
	}

	cfg.ThinContentFloor, err = cmd.Flags().GetInt("thin-floor")
	if err != nil {
		return nil, err
	}

	cfg.TopWins, err = cmd.Flags().GetInt("top")
	if err != nil {
		return nil, err
	}

	cfg.ExcludedCategories, err = cmd.Flags().GetStringSlice("exclude")
	if err != nil {
		return nil, err
	}

	cfg.FixEndpoint, err = cmd.Flags().GetString("fix-endpoint")
	if err != nil {
		return nil, err
	}

	cfg.FixTimeout, err = cmd.Flags().GetDuration("fix-timeout")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load per-site overrides from the config file.
	// An explicitly given path must exist; the default search is optional.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.SiteConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		cfg.SiteConfigs = &config.File{
			Sites: make(map[string]config.SiteConfig),
		}
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	noSave, err := cmd.Flags().GetBool("no-save")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noSave
	cfg.DBDir = config.XDGDataDir()

	cfg.Verbose = getVerboseFlag(cmd)

	// Positional arguments are the domains to audit
	cfg.Targets = args

	return cfg, nil
}

// runAudit executes the audit for every configured target.
func runAudit(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if len(cfg.Targets) == 0 {
		return errors.New("no targets provided (specify one or more domains as arguments)")
	}

	logger.Info("starting audit",
		"targets", cfg.Targets,
		"maxPages", cfg.MaxPages,
		"saveToDB", cfg.SaveToDB,
	)

	var db *database.AuditDB
	if cfg.SaveToDB {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "dir", cfg.DBDir)
	}

	var fixer *fixgen.Client
	if cfg.FixEndpoint != "" {
		fixer = fixgen.NewClient(cfg.FixEndpoint, cfg.FixTimeout)
	}

	runner := pipeline.NewRunner(cfg, logger)

	var lastErr error
	completed := 0
	for _, target := range cfg.Targets {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		fmt.Printf("Auditing %s...\n", target)
		startTime := time.Now()

		audit, err := runner.RunAudit(ctx, target)
		if err != nil {
			logger.Error("audit failed", "target", target, "error", err)
			fmt.Fprintf(os.Stderr, "Audit error for %s: %v\n", target, err)
			lastErr = err
			continue
		}
		completed++

		elapsed := time.Since(startTime)
		fmt.Printf("Audit completed in %s\n\n", elapsed.Round(time.Millisecond))

		if fixer != nil {
			fixgen.Annotate(ctx, fixer, audit.Result, pagesByURL(audit.Pages), logger)
		}

		if err := outputReport(cfg, audit.Result); err != nil {
			logger.Error("report failed", "target", target, "error", err)
		}

		if err := saveAuditResult(ctx, db, audit, logger); err != nil {
			logger.Error("failed to save audit result", "target", target, "error", err)
		}
	}

	if completed == 0 && lastErr != nil {
		return lastErr
	}
	return nil
}

// pagesByURL indexes the page records for the fix-generation client.
func pagesByURL(pages []model.PageRecord) map[string]*model.PageRecord {
	byURL := make(map[string]*model.PageRecord, len(pages))
	for i := range pages {
		byURL[pages[i].URL] = &pages[i]
	}
	return byURL
}

// outputReport outputs the audit result in the requested format.
func outputReport(cfg *config.Config, result *model.AuditResult) error {
	var output *os.File
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	var writer report.Writer
	switch {
	case cfg.JSONReport:
		writer = report.NewJSONWriter(output, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		writer = report.NewMarkdownWriter(output)
	default:
		writer = report.NewTextWriter(output, report.WithVerbose(cfg.Verbose))
	}

	_, err := writer.Write(result)
	return err
}

// saveAuditResult persists the audit to the history database.
// If db is nil, this function is a no-op.
func saveAuditResult(ctx context.Context, db *database.AuditDB, audit *pipeline.Audit, logger *slog.Logger) error {
	if db == nil {
		return nil
	}

	pages := make([]*model.PageRecord, len(audit.Pages))
	for i := range audit.Pages {
		pages[i] = &audit.Pages[i]
	}

	if err := db.SaveAuditResult(ctx, audit.Result, pages); err != nil {
		return fmt.Errorf("failed to save audit result: %w", err)
	}

	logger.Info("audit result saved to database", "domain", audit.Result.Domain)
	return nil
}
