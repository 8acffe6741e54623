package config

import "maps"

// SiteConfig holds per-domain overrides for a single audited site.
type SiteConfig struct {
	// MaxPages overrides the global page cap for this domain.
	// Zero means use the global value.
	MaxPages int `yaml:"maxPages,omitempty"`

	// ThinContentFloor overrides the global thin-content word floor.
	// Zero means use the global value.
	ThinContentFloor int `yaml:"thinContentFloor,omitempty"`

	// RequestsPerSecond overrides the per-host rate limit.
	// Zero means use the global value.
	RequestsPerSecond float64 `yaml:"requestsPerSecond,omitempty"`

	// Headers are custom HTTP headers to include in requests to this
	// site, e.g. an auth header for a staging environment.
	Headers map[string]string `yaml:"headers,omitempty"`

	// IgnorePatterns are URL path globs to skip during crawling.
	IgnorePatterns []string `yaml:"ignorePatterns,omitempty"`

	// ExcludedCategories overrides the globally excluded quick-win
	// categories for this domain.
	ExcludedCategories []string `yaml:"excludedCategories,omitempty"`
}

// File represents the structure of the .quickwin.yaml configuration file.
type File struct {
	// Sites maps domains to their site-specific configurations.
	// Keys are bare registrable domains (e.g. "example.com").
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults contains site configuration applied to every domain
	// unless overridden per site.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the configuration for a domain, merging the
// site-specific entry over the defaults.
func (cf *File) GetSiteConfig(domain string) SiteConfig {
	result := cf.Defaults
	// The struct copy above shares the defaults' header map; clone it so
	// one site's merged headers (auth tokens) never reach another domain.
	result.Headers = maps.Clone(cf.Defaults.Headers)

	if siteConfig, ok := cf.Sites[domain]; ok {
		if siteConfig.MaxPages != 0 {
			result.MaxPages = siteConfig.MaxPages
		}
		if siteConfig.ThinContentFloor != 0 {
			result.ThinContentFloor = siteConfig.ThinContentFloor
		}
		if siteConfig.RequestsPerSecond != 0 {
			result.RequestsPerSecond = siteConfig.RequestsPerSecond
		}
		if len(siteConfig.Headers) > 0 {
			if result.Headers == nil {
				result.Headers = make(map[string]string)
			}
			for k, v := range siteConfig.Headers {
				result.Headers[k] = v
			}
		}
		if len(siteConfig.IgnorePatterns) > 0 {
			result.IgnorePatterns = siteConfig.IgnorePatterns
		}
		if len(siteConfig.ExcludedCategories) > 0 {
			result.ExcludedCategories = siteConfig.ExcludedCategories
		}
	}

	return result
}

// Apply folds a site's overrides into a copy of the global config.
func (c *Config) Apply(sc SiteConfig) *Config {
	merged := *c
	if sc.MaxPages != 0 {
		merged.MaxPages = sc.MaxPages
	}
	if sc.ThinContentFloor != 0 {
		merged.ThinContentFloor = sc.ThinContentFloor
	}
	if sc.RequestsPerSecond != 0 {
		merged.RequestsPerSecond = sc.RequestsPerSecond
	}
	if len(sc.ExcludedCategories) > 0 {
		merged.ExcludedCategories = sc.ExcludedCategories
	}
	if len(sc.IgnorePatterns) > 0 {
		merged.IgnorePatterns = sc.IgnorePatterns
	}
	return &merged
}
