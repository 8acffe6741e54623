// Package model defines the core data types shared across the audit
// pipeline: per-page signal records, detected issues, aggregated
// findings, ranked quick wins, and the final audit result.
package model
