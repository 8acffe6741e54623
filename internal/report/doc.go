// Package report renders audit results for different audiences: a
// terminal summary for interactive runs, JSON for machine consumers,
// and a Markdown action plan for sharing with site owners. All writers
// implement the same Writer interface so outputs can be combined with
// MultiWriter.
package report
