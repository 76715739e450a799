package model

import "time"

// DomainStats aggregates per-domain outcome counts for the run summary.
type DomainStats struct {
	// Domain is the registrable domain these counts refer to.
	Domain string `json:"domain"`

	// Visited is the total number of URLs that reached a terminal state.
	Visited int `json:"visited"`

	// Kept is the number of pages persisted with a body.
	Kept int `json:"kept"`

	// Discarded is the number of pages rejected by content screening.
	Discarded int `json:"discarded"`

	// Failed is the number of URLs that ended in a fetch failure.
	Failed int `json:"failed"`

	// Skipped is 1 when the domain was disallowed by the politeness policy
	// and never attempted, 0 otherwise.
	Skipped int `json:"skipped"`
}

// RunSummary is the end-of-run report handed to the report writers.
type RunSummary struct {
	// RunID uniquely identifies the crawl run.
	RunID string `json:"run_id"`

	// StartedAt and FinishedAt bound the run wall-clock time.
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// Seeds lists the seed domains the run started from.
	Seeds []string `json:"seeds"`

	// MaxDepth is the configured depth bound.
	MaxDepth int `json:"max_depth"`

	// Domains holds per-domain counters, sorted by domain name.
	Domains []DomainStats `json:"domains"`

	// Interrupted is true when the run was cancelled before the frontier
	// drained. The ledger remains valid for resume either way.
	Interrupted bool `json:"interrupted"`
}

// Totals sums the per-domain counters.
func (s *RunSummary) Totals() DomainStats {
	var t DomainStats
	for _, d := range s.Domains {
		t.Visited += d.Visited
		t.Kept += d.Kept
		t.Discarded += d.Discarded
		t.Failed += d.Failed
		t.Skipped += d.Skipped
	}
	return t
}
