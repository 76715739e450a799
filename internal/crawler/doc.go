// Package crawler implements the crawl driver: the component that owns the
// worker pool and runs each URL through the full lifecycle of
// dequeue -> throttle permit -> fetch -> link discovery -> ledger record.
//
// The driver terminates when the frontier reports quiescence (nothing
// queued and nothing in flight) or when its context is cancelled. On
// cancellation it stops promptly: in-flight URLs that had not reached a
// terminal outcome get no ledger record and are rediscovered from the
// seeds on the next run.
package crawler
