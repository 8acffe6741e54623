// Package aggregate groups per-page issues into site-level findings:
// one finding per issue type, carrying the deduplicated affected URLs,
// a bounded example sample, and a severity escalated when the defect
// spans enough of the site.
package aggregate
