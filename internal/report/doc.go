// Package report renders the end-of-run crawl summary.
//
// Four formats are provided: human-readable text for the terminal, JSON
// and CSV for tool integration, and Markdown for documentation. All
// writers consume the same model.RunSummary through a common Writer
// interface, so the crawl command selects a format without caring which.
package report
