// Package pipeline orchestrates the stages of a crawl run.
//
// A run is a fixed sequence of steps sharing mutable Run state:
// load-policy builds the politeness oracle from the cached robots data,
// seed-frontier wires the crawl components and admits the seeds, crawl
// executes the worker pool to quiescence, and summarize renders the
// end-of-run report. Steps implement a common interface so the crawl
// command composes them without knowing their internals.
package pipeline
