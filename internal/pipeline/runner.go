package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/seotools/quickwin/internal/config"
	"github.com/seotools/quickwin/internal/crawler"
	"github.com/seotools/quickwin/internal/model"
)

// Runner executes complete audits for the configured targets.
type Runner struct {
	cfg    *config.Config
	logger *slog.Logger
}

// NewRunner creates a Runner for a validated configuration.
func NewRunner(cfg *config.Config, logger *slog.Logger) *Runner {
	return &Runner{cfg: cfg, logger: logger}
}

// Run audits every configured target in order and returns the results.
// A failed target does not stop the batch; its error is logged and the
// remaining targets still run. An error is returned only when no
// target produced a result.
func (r *Runner) Run(ctx context.Context) ([]*model.AuditResult, error) {
	results := make([]*model.AuditResult, 0, len(r.cfg.Targets))
	var lastErr error

	for _, target := range r.cfg.Targets {
		result, err := r.RunOne(ctx, target)
		if err != nil {
			r.logger.Error("audit failed", "target", target, "error", err)
			lastErr = err
			if ctx.Err() != nil {
				break
			}
			continue
		}
		results = append(results, result)
	}

	if len(results) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return results, nil
}

// RunOne audits a single target with its effective per-domain config.
func (r *Runner) RunOne(ctx context.Context, target string) (*model.AuditResult, error) {
	audit, err := r.RunAudit(ctx, target)
	if err != nil {
		return nil, err
	}
	return audit.Result, nil
}

// RunAudit audits a single target and returns the full pipeline state,
// including the per-page records needed for persistence and fix
// generation.
func (r *Runner) RunAudit(ctx context.Context, target string) (*Audit, error) {
	cfg, headers, err := r.effectiveConfig(target)
	if err != nil {
		return nil, err
	}

	client := crawler.NewClient(cfg.FetchTimeout,
		crawler.WithUserAgent(cfg.UserAgent),
		crawler.WithHeaders(headers),
		crawler.WithMaxBodySize(cfg.MaxBodySize),
		crawler.WithRequestsPerSecond(cfg.RequestsPerSecond),
	)

	p := New(WithLogger(r.logger))
	p.AddSteps(Steps(client, r.logger)...)

	audit := NewAudit(target, cfg)
	if err := p.Execute(ctx, audit); err != nil {
		return nil, fmt.Errorf("audit %s: %w", target, err)
	}

	return audit, nil
}

// effectiveConfig merges per-domain overrides from the config file
// into the global configuration.
func (r *Runner) effectiveConfig(target string) (*config.Config, map[string]string, error) {
	if r.cfg.SiteConfigs == nil {
		return r.cfg, nil, nil
	}

	base, err := crawler.BaseURL(target)
	if err != nil {
		return nil, nil, err
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, nil, err
	}

	sc := r.cfg.SiteConfigs.GetSiteConfig(crawler.RegistrableDomain(u.Host))
	return r.cfg.Apply(sc), sc.Headers, nil
}
