// Package config provides configuration structures and utilities for
// the quickwin audit engine: crawl limits, detection thresholds,
// ranking options, report preferences, and per-domain overrides loaded
// from the optional .quickwin.yaml file.
package config
