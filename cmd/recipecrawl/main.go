// Package main provides the entry point for the recipecrawl CLI.
//
// recipecrawl is a politeness-aware recursive crawler for recipe websites.
// It discovers recipe pages from seed domains, respects robots.txt and
// per-domain rate limits, and persists fetched pages for downstream
// extraction.
//
// Usage:
//
//	recipecrawl crawl example.com
//	recipecrawl robots example.com
//	recipecrawl export --csv
//
// See --help for all available options.
package main

// main is the entry point for recipecrawl.
func main() {
	Execute()
}
