// Package throttle implements the per-domain concurrency and rate limiter
// that protects remote hosts from overload.
//
// Each domain gets a lazily-created state holding a weighted semaphore (the
// concurrency slots) and a token-bucket limiter (the minimum inter-request
// interval). Acquire blocks until both a slot is free and the interval since
// the last issued request has elapsed; Release must run on every exit path
// of a fetch attempt, because a leaked slot stalls that domain for the rest
// of the run.
package throttle
