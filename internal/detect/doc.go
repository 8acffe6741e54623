// Package detect runs the per-page issue checks over a crawl's page
// records: title and meta problems, heading structure, thin content,
// missing alt text, broken internal links, orphan pages, canonical and
// indexability defects, and structured-data absence.
//
// Rules fail open: a panicking rule is logged and skipped so one
// broken check cannot void an entire audit.
package detect
