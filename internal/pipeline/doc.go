// Package pipeline orchestrates an audit end to end: crawl, signal
// extraction, issue detection, aggregation, ranking, and assembly of
// the final result. Steps run in sequence over a shared Audit state;
// the Runner wires the steps together for each configured target.
package pipeline
