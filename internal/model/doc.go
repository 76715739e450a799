// Package model defines the core data structures shared across the crawl
// engine: fetched pages, per-URL fetch outcomes, and the end-of-run summary.
//
// The package has no dependencies on other internal packages so that every
// component (frontier, fetcher, database, report) can exchange these types
// without import cycles.
package model
