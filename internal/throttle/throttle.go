package throttle

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/recipecrawl/recipecrawl/internal/policy"
)

// ErrDomainDisallowed is returned by Acquire for domains the politeness
// policy forbids. Disallowed domains never get a permit, so no request to
// them is ever issued.
var ErrDomainDisallowed = errors.New("domain disallowed by politeness policy")

// Permit represents the right to issue one request to a domain.
// It must be returned with Release exactly once.
type Permit struct {
	domain string
	state  *domainState
}

// Domain returns the domain the permit was issued for.
func (p *Permit) Domain() string {
	return p.domain
}

// domainState is the per-domain synchronization state.
// It is created lazily on first sight of the domain and lives for the run.
type domainState struct {
	// slots bounds concurrent in-flight requests to the domain.
	slots *semaphore.Weighted

	// limiter spaces request issuances at least one crawl-delay apart.
	// Burst 1 means the very first request goes out immediately and every
	// later one waits for the interval measured from the previous issue.
	limiter *rate.Limiter

	// inflight counts held permits, for stats and invariant tests.
	mu       sync.Mutex
	inflight int
}

// Throttle hands out per-domain permits.
// All methods are safe for concurrent use.
type Throttle struct {
	mu      sync.Mutex
	domains map[string]*domainState

	oracle      *policy.Oracle
	domainLimit int64
}

// New creates a throttle. domainLimit is the per-domain concurrency bound;
// the oracle supplies permission and the effective crawl delay per domain.
func New(oracle *policy.Oracle, domainLimit int) *Throttle {
	if domainLimit <= 0 {
		domainLimit = 1
	}
	return &Throttle{
		domains:     make(map[string]*domainState),
		oracle:      oracle,
		domainLimit: int64(domainLimit),
	}
}

// state returns the domain's state, creating it on first sight.
func (t *Throttle) state(domain string) *domainState {
	t.mu.Lock()
	defer t.mu.Unlock()

	if s, ok := t.domains[domain]; ok {
		return s
	}

	delay := t.oracle.Delay(domain)
	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}
	s := &domainState{
		slots:   semaphore.NewWeighted(t.domainLimit),
		limiter: rate.NewLimiter(limit, 1),
	}
	t.domains[domain] = s
	return s
}

// Acquire blocks until the caller may issue a request to the domain: a
// concurrency slot is free AND the minimum interval since the last issued
// request has elapsed. The returned permit must be released on every exit
// path of the fetch attempt.
//
// Design decision: The slot is acquired before waiting on the limiter so a
// worker queued on the interval does not hold up slot accounting; the
// limiter wait is the moment of "request issuance" the interval invariant
// is measured at.
func (t *Throttle) Acquire(ctx context.Context, domain string) (*Permit, error) {
	if !t.oracle.Allowed(domain) {
		return nil, ErrDomainDisallowed
	}

	s := t.state(domain)

	if err := s.slots.Acquire(ctx, 1); err != nil {
		return nil, err
	}

	if err := s.limiter.Wait(ctx); err != nil {
		// Cancellation while waiting for the interval: give the slot back
		// so the domain is not leaked.
		s.slots.Release(1)
		return nil, err
	}

	s.mu.Lock()
	s.inflight++
	s.mu.Unlock()

	return &Permit{domain: domain, state: s}, nil
}

// Release returns a permit's concurrency slot. Releasing a nil permit is a
// no-op so deferred releases on failed acquires stay simple.
func (t *Throttle) Release(p *Permit) {
	if p == nil || p.state == nil {
		return
	}

	p.state.mu.Lock()
	p.state.inflight--
	p.state.mu.Unlock()

	p.state.slots.Release(1)
	p.state = nil
}

// InFlight returns the number of permits currently held for the domain.
func (t *Throttle) InFlight(domain string) int {
	t.mu.Lock()
	s, ok := t.domains[domain]
	t.mu.Unlock()
	if !ok {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inflight
}
