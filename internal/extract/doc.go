// Package extract parses fetched HTML into per-page signal records:
// title and meta description, canonical and robots directives, heading
// structure, visible word count, images with alt state, link graph
// edges, and structured-data presence.
package extract
