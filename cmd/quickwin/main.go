// Package main provides the entry point for the quickwin CLI.
//
// quickwin audits a website's on-page SEO signals and produces a
// ranked list of the highest-leverage fixes.
//
// Usage:
//
//	quickwin audit <domain>
//	quickwin history <domain>
//
// See --help for all available options.
package main

// main is the entry point for quickwin.
func main() {
	Execute()
}
