// Package log provides the structured logger used across the crawler.
//
// It wraps log/slog with a handler that trims oversized attribute values.
// Crawl logs routinely carry URLs, response excerpts, and robots.txt
// fragments; without trimming, a single pathological value can flood the
// log and bury the lines that matter.
package log
