// Package rank turns aggregated findings into the prioritized
// quick-win list: it estimates fix effort, synthesizes the
// missing-sitemap finding, filters excluded categories, and applies a
// deterministic ranking that puts index-blocking problems first.
package rank
