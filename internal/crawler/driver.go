package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/recipecrawl/recipecrawl/internal/config"
	"github.com/recipecrawl/recipecrawl/internal/database"
	"github.com/recipecrawl/recipecrawl/internal/fetch"
	"github.com/recipecrawl/recipecrawl/internal/frontier"
	"github.com/recipecrawl/recipecrawl/internal/model"
	"github.com/recipecrawl/recipecrawl/internal/throttle"
)

// Driver runs a crawl: it seeds the frontier, dispatches entries to a
// bounded worker pool, and records every terminal outcome in the ledger.
type Driver struct {
	cfg      *config.Config
	frontier *frontier.Frontier
	throttle *throttle.Throttle
	executor *fetch.Executor
	ledger   *database.Ledger
	logger   *slog.Logger
	runID    string

	mu    sync.Mutex
	stats map[string]*model.DomainStats
}

// New creates a crawl driver. The frontier, throttle, and executor must
// share the same politeness oracle and domain scope.
func New(cfg *config.Config, f *frontier.Frontier, th *throttle.Throttle, ex *fetch.Executor, ledger *database.Ledger, logger *slog.Logger, runID string) *Driver {
	return &Driver{
		cfg:      cfg,
		frontier: f,
		throttle: th,
		executor: ex,
		ledger:   ledger,
		logger:   logger,
		runID:    runID,
		stats:    make(map[string]*model.DomainStats),
	}
}

// BaseURL turns a seed into its crawl base. A seed that is already a full
// URL is used as-is; a bare domain is crawled from its HTTPS root.
func BaseURL(seed string) string {
	seed = strings.TrimSpace(seed)
	if strings.HasPrefix(seed, "http://") || strings.HasPrefix(seed, "https://") {
		return seed
	}
	return "https://" + seed + "/"
}

// SeedDomains returns the deduplicated registrable domains of the seeds,
// in input order. These form the crawl's domain scope: links leading
// anywhere else are dropped at extraction time.
func SeedDomains(seeds []string) []string {
	seen := make(map[string]struct{}, len(seeds))
	domains := make([]string, 0, len(seeds))
	for _, seed := range seeds {
		u, err := url.Parse(BaseURL(seed))
		if err != nil || u.Host == "" {
			continue
		}
		d := frontier.RegistrableDomain(u.Host)
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		domains = append(domains, d)
	}
	return domains
}

// Seed admits the configured seeds at depth 0. Seeds on disallowed domains
// produce a single skip record each and are never fetched.
func (d *Driver) Seed(ctx context.Context, seeds []string) error {
	for _, seed := range seeds {
		base := BaseURL(seed)
		res, first := d.frontier.Enqueue(base, "", 0)
		d.logger.Debug("seed admission",
			slog.String("seed", seed),
			slog.String("result", res.String()))

		if res == frontier.RejectedDisallowed && first {
			if err := d.recordSkip(ctx, base); err != nil {
				return err
			}
		}
		if res == frontier.RejectedInvalid {
			return fmt.Errorf("invalid seed %q", seed)
		}
	}
	return nil
}

// Run executes the crawl with the configured worker pool and returns the
// per-domain summary. The returned error is non-nil only for run-level
// faults (ledger writes failing); individual URL failures are outcomes,
// not errors.
func (d *Driver) Run(ctx context.Context) (*model.RunSummary, error) {
	startedAt := time.Now().UTC()
	if err := d.ledger.StartRun(ctx, d.runID, d.cfg.Seeds, d.cfg.MaxDepth, startedAt); err != nil {
		return nil, err
	}

	d.logger.Info("crawl started",
		slog.String("run_id", d.runID),
		slog.Int("workers", d.cfg.GlobalConcurrency),
		slog.Int("max_depth", d.cfg.MaxDepth),
		slog.Int("seeds", len(d.cfg.Seeds)))

	g, gctx := errgroup.WithContext(ctx)
	for n := 0; n < d.cfg.GlobalConcurrency; n++ {
		g.Go(func() error { return d.worker(gctx) })
	}
	runErr := g.Wait()

	interrupted := ctx.Err() != nil
	finishedAt := time.Now().UTC()

	// The finish record is best-effort on an already-failing run.
	finishCtx := context.WithoutCancel(ctx)
	if err := d.ledger.FinishRun(finishCtx, d.runID, finishedAt, interrupted); err != nil && runErr == nil {
		runErr = err
	}

	summary := d.summary(startedAt, finishedAt, interrupted)
	totals := summary.Totals()
	d.logger.Info("crawl finished",
		slog.String("run_id", d.runID),
		slog.Int("visited", totals.Visited),
		slog.Int("kept", totals.Kept),
		slog.Int("failed", totals.Failed),
		slog.Bool("interrupted", interrupted))

	return summary, runErr
}

// worker pulls entries until the frontier is quiescent or the run dies.
func (d *Driver) worker(ctx context.Context) error {
	for {
		entry, ok := d.frontier.Next(ctx)
		if !ok {
			return nil
		}
		err := d.process(ctx, entry)
		d.frontier.Done()
		if err != nil {
			return err
		}
	}
}

// process runs one entry through permit, fetch, link discovery, and ledger
// record.
func (d *Driver) process(ctx context.Context, entry frontier.Entry) error {
	permit, err := d.throttle.Acquire(ctx, entry.Domain)
	if err != nil {
		// Cancelled while waiting for a slot; the entry stays non-terminal
		// and is rediscovered on the next run.
		return nil
	}
	outcome := d.executor.Fetch(ctx, entry)
	d.throttle.Release(permit)

	// A failure produced during shutdown reflects the shutdown, not the
	// server. Leave the URL non-terminal.
	if ctx.Err() != nil && outcome.Status.Retryable() {
		return nil
	}

	d.resolveRedirectDuplicate(entry, &outcome)

	// Ledger writes survive cancellation: an outcome that completed before
	// shutdown must be durably terminal, or resume would re-fetch it.
	dbCtx := context.WithoutCancel(ctx)

	for _, link := range outcome.ExtractedLinks {
		res, first := d.frontier.Enqueue(link, outcome.FinalURL, entry.Depth+1)
		if res == frontier.RejectedDisallowed && first {
			if err := d.recordSkip(dbCtx, link); err != nil {
				return err
			}
		}
	}

	rec := &database.VisitRecord{
		NormalizedURL: entry.NormalizedURL,
		URL:           entry.URL,
		Domain:        entry.Domain,
		Depth:         entry.Depth,
		State:         outcome.Status.String(),
		HTTPCode:      outcome.HTTPCode,
		Attempts:      outcome.Attempts,
		RunID:         d.runID,
	}
	if err := d.ledger.RecordVisit(dbCtx, rec); err != nil {
		return fmt.Errorf("recording %s: %w", entry.NormalizedURL, err)
	}
	if outcome.Status == model.StatusSuccess {
		if err := d.ledger.SavePage(dbCtx, entry.NormalizedURL, d.runID, outcome.Page); err != nil {
			return fmt.Errorf("saving page %s: %w", entry.NormalizedURL, err)
		}
	}

	d.count(entry.Domain, outcome.Status)
	d.logger.Info("visited",
		slog.String("url", entry.URL),
		slog.String("state", outcome.Status.String()),
		slog.Int("http", outcome.HTTPCode),
		slog.Int("depth", entry.Depth),
		slog.Int("links", len(outcome.ExtractedLinks)))

	return nil
}

// resolveRedirectDuplicate downgrades a successful fetch whose redirect
// target is already visited or queued: the content exists (or will exist)
// under the target URL, so the body is dropped and only the visit recorded.
// Otherwise the target is marked seen so a later direct link to it does not
// fetch the same content again.
func (d *Driver) resolveRedirectDuplicate(entry frontier.Entry, outcome *model.FetchOutcome) {
	if outcome.Status != model.StatusSuccess || outcome.FinalURL == outcome.URL {
		return
	}
	finalNorm, err := frontier.NormalizeURL(outcome.FinalURL)
	if err != nil || finalNorm == entry.NormalizedURL {
		return
	}
	if d.frontier.Seen(finalNorm) {
		outcome.Status = model.StatusContentRejected
		outcome.Page = nil
		return
	}
	d.frontier.MarkSeen(finalNorm)
}

// recordSkip writes the one-time politeness skip record for the domain of
// the given URL and reflects it in the run stats.
func (d *Driver) recordSkip(ctx context.Context, rawURL string) error {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil
	}
	domain := frontier.RegistrableDomain(u.Host)

	if err := d.ledger.RecordSkip(ctx, domain, d.runID); err != nil {
		return err
	}

	d.mu.Lock()
	d.domainStatsLocked(domain).Skipped = 1
	d.mu.Unlock()

	d.logger.Info("domain skipped by politeness policy", slog.String("domain", domain))
	return nil
}

// count accumulates this run's per-domain counters.
func (d *Driver) count(domain string, status model.FetchStatus) {
	d.mu.Lock()
	defer d.mu.Unlock()

	s := d.domainStatsLocked(domain)
	s.Visited++
	switch status {
	case model.StatusSuccess:
		s.Kept++
	case model.StatusContentRejected:
		s.Discarded++
	default:
		s.Failed++
	}
}

// domainStatsLocked returns the mutable stats for a domain. Callers hold mu.
func (d *Driver) domainStatsLocked(domain string) *model.DomainStats {
	s, ok := d.stats[domain]
	if !ok {
		s = &model.DomainStats{Domain: domain}
		d.stats[domain] = s
	}
	return s
}

// summary snapshots the run counters into a sorted RunSummary.
func (d *Driver) summary(startedAt, finishedAt time.Time, interrupted bool) *model.RunSummary {
	d.mu.Lock()
	defer d.mu.Unlock()

	domains := make([]model.DomainStats, 0, len(d.stats))
	for _, s := range d.stats {
		domains = append(domains, *s)
	}
	sort.Slice(domains, func(i, j int) bool { return domains[i].Domain < domains[j].Domain })

	return &model.RunSummary{
		RunID:       d.runID,
		StartedAt:   startedAt,
		FinishedAt:  finishedAt,
		Seeds:       d.cfg.Seeds,
		MaxDepth:    d.cfg.MaxDepth,
		Domains:     domains,
		Interrupted: interrupted,
	}
}
