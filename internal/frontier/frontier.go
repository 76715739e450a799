package frontier

import (
	"context"
	"net/url"
	"sync"

	"github.com/recipecrawl/recipecrawl/internal/classify"
	"github.com/recipecrawl/recipecrawl/internal/policy"
)

// Entry is one unit of pending crawl work.
// Entries are ephemeral: created when a link passes admission, destroyed
// when dispatched to a worker.
type Entry struct {
	// URL is the URL as discovered, before normalization.
	URL string

	// NormalizedURL is the canonical form used for de-duplication and as
	// the ledger key.
	NormalizedURL string

	// Domain is the registrable domain of the URL's host.
	Domain string

	// Depth is the link distance from the seed (seeds are depth 0).
	Depth int

	// OriginURL is the page the URL was discovered on. Empty for seeds.
	OriginURL string

	// Verdict is the classifier's decision at enqueue time. Uncertain
	// entries are fetched but only kept when content confirms relevance.
	Verdict classify.Verdict
}

// EnqueueResult reports what Enqueue did with a candidate URL.
type EnqueueResult int

const (
	// Accepted means the URL became a pending entry.
	Accepted EnqueueResult = iota

	// Duplicate means the normalized URL was already visited or queued.
	Duplicate

	// RejectedDepth means the entry's depth exceeds the crawl bound.
	RejectedDepth

	// RejectedClassifier means the link classifier voted reject.
	RejectedClassifier

	// RejectedDisallowed means the domain is disallowed by the politeness
	// policy. The first rejection per domain is reported to the caller so
	// a single skip record can be written.
	RejectedDisallowed

	// RejectedInvalid means the URL could not be parsed or normalized.
	RejectedInvalid
)

// String returns a readable name for logging.
func (r EnqueueResult) String() string {
	switch r {
	case Accepted:
		return "accepted"
	case Duplicate:
		return "duplicate"
	case RejectedDepth:
		return "rejected_depth"
	case RejectedClassifier:
		return "rejected_classifier"
	case RejectedDisallowed:
		return "rejected_disallowed"
	case RejectedInvalid:
		return "rejected_invalid"
	default:
		return "unknown"
	}
}

// Frontier is the pending-work queue with de-duplication.
// All methods are safe for concurrent use.
type Frontier struct {
	mu   sync.Mutex
	cond *sync.Cond

	maxDepth   int
	classifier *classify.Classifier
	oracle     *policy.Oracle

	// seen holds every normalized URL ever enqueued this run plus the
	// terminal URLs loaded from the ledger. Membership check and insert
	// happen under mu, so no two enqueuers can both be "first".
	seen map[string]struct{}

	// queues holds per-domain FIFO queues; order is the round-robin ring
	// of domains with pending entries.
	queues map[string][]Entry
	order  []string
	cursor int

	// disallowed remembers domains already reported as policy-skipped.
	disallowed map[string]struct{}

	// inflight counts dispatched entries whose processing has not called
	// Done yet. Quiescence is (no pending entries && inflight == 0).
	inflight int

	// pending is the total queued entry count across domains.
	pending int

	closed bool
}

// New creates a frontier. The visited set (normalized URLs with terminal
// ledger records) seeds de-duplication so resumed runs never re-fetch
// completed work.
func New(maxDepth int, classifier *classify.Classifier, oracle *policy.Oracle, visited map[string]struct{}) *Frontier {
	f := &Frontier{
		maxDepth:   maxDepth,
		classifier: classifier,
		oracle:     oracle,
		seen:       make(map[string]struct{}, len(visited)+1024),
		queues:     make(map[string][]Entry),
		disallowed: make(map[string]struct{}),
	}
	for u := range visited {
		f.seen[u] = struct{}{}
	}
	f.cond = sync.NewCond(&f.mu)
	return f
}

// Enqueue admits a candidate URL discovered on originURL at the given depth.
// The second return value is true exactly once per disallowed domain, on its
// first rejection, so the caller can write a single skip record.
func (f *Frontier) Enqueue(rawURL, originURL string, depth int) (EnqueueResult, bool) {
	if depth > f.maxDepth {
		return RejectedDepth, false
	}

	normalized, err := NormalizeURL(rawURL)
	if err != nil {
		return RejectedInvalid, false
	}

	u, err := url.Parse(normalized)
	if err != nil {
		return RejectedInvalid, false
	}
	domain := RegistrableDomain(u.Host)

	if !f.oracle.Allowed(domain) {
		f.mu.Lock()
		_, already := f.disallowed[domain]
		f.disallowed[domain] = struct{}{}
		f.mu.Unlock()
		return RejectedDisallowed, !already
	}

	verdict := f.classifier.Classify(normalized)
	if verdict == classify.Reject {
		return RejectedClassifier, false
	}

	entry := Entry{
		URL:           rawURL,
		NormalizedURL: normalized,
		Domain:        domain,
		Depth:         depth,
		OriginURL:     originURL,
		Verdict:       verdict,
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return Duplicate, false
	}
	if _, ok := f.seen[normalized]; ok {
		return Duplicate, false
	}
	f.seen[normalized] = struct{}{}

	if _, ok := f.queues[domain]; !ok {
		f.order = append(f.order, domain)
	}
	f.queues[domain] = append(f.queues[domain], entry)
	f.pending++
	f.cond.Signal()

	return Accepted, false
}

// Next blocks until an entry is available and returns it, marking it
// in-flight. It returns ok=false when the frontier is quiescent (nothing
// pending and nothing in flight), closed, or the context is cancelled.
// Every entry returned with ok=true must be matched by one Done call.
func (f *Frontier) Next(ctx context.Context) (Entry, bool) {
	// Wake waiters when the context dies; cond has no native ctx support.
	stop := context.AfterFunc(ctx, func() {
		f.mu.Lock()
		f.cond.Broadcast()
		f.mu.Unlock()
	})
	defer stop()

	f.mu.Lock()
	defer f.mu.Unlock()

	for {
		if f.closed || ctx.Err() != nil {
			return Entry{}, false
		}
		if entry, ok := f.popLocked(); ok {
			f.inflight++
			return entry, true
		}
		if f.inflight == 0 {
			// Quiescent: no pending work and nobody who could add more.
			// Wake the other waiting workers so they observe it too.
			f.cond.Broadcast()
			return Entry{}, false
		}
		f.cond.Wait()
	}
}

// DequeueBatch removes and returns up to maxN entries, drawn round-robin
// across domains with pending work. It never blocks; an empty slice means
// the frontier is temporarily starved. Each returned entry counts as
// in-flight and must be matched by one Done call.
func (f *Frontier) DequeueBatch(maxN int) []Entry {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil
	}

	out := make([]Entry, 0, maxN)
	for len(out) < maxN {
		entry, ok := f.popLocked()
		if !ok {
			break
		}
		out = append(out, entry)
	}
	f.inflight += len(out)
	return out
}

// popLocked removes the next entry round-robin across domains.
// Callers must hold mu.
func (f *Frontier) popLocked() (Entry, bool) {
	for n := len(f.order); n > 0; n-- {
		if len(f.order) == 0 {
			break
		}
		f.cursor %= len(f.order)
		domain := f.order[f.cursor]
		queue := f.queues[domain]

		if len(queue) == 0 {
			// Domain drained; drop it from the ring.
			delete(f.queues, domain)
			f.order = append(f.order[:f.cursor], f.order[f.cursor+1:]...)
			continue
		}

		entry := queue[0]
		f.queues[domain] = queue[1:]
		f.pending--
		f.cursor++
		return entry, true
	}
	return Entry{}, false
}

// Done marks one dispatched entry as fully processed, including any
// re-enqueueing of its discovered links. When the last in-flight entry
// finishes with nothing pending, waiting workers are released.
func (f *Frontier) Done() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.inflight--
	if f.inflight <= 0 {
		f.cond.Broadcast()
	}
}

// Close wakes all waiters and makes further enqueues no-ops.
// Used for prompt shutdown on cancellation.
func (f *Frontier) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.closed = true
	f.cond.Broadcast()
}

// Pending returns the number of queued entries.
func (f *Frontier) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pending
}

// MarkSeen adds a normalized URL to the visited-or-queued set without
// queueing it. The driver uses this for redirect targets whose content has
// already been stored under the requested URL.
func (f *Frontier) MarkSeen(normalizedURL string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen[normalizedURL] = struct{}{}
}

// Seen reports whether the normalized URL is in the visited-or-queued set.
func (f *Frontier) Seen(normalizedURL string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.seen[normalizedURL]
	return ok
}
