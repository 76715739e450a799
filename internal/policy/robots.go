package policy

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/temoto/robotstxt"
)

// maxRobotsSize bounds the robots.txt body read. Real robots files are a
// few kilobytes; anything past 512KB is junk.
const maxRobotsSize = 512 * 1024

// Fetcher retrieves robots.txt for domains and derives their crawl policy.
//
// Design decision: We require an external *http.Client rather than building
// one because the caller owns timeout and transport configuration, and tests
// can inject httptest clients.
type Fetcher struct {
	client    *http.Client
	userAgent string
	logger    *slog.Logger
}

// NewFetcher creates a robots.txt fetcher.
// A nil logger falls back to slog.Default().
func NewFetcher(client *http.Client, userAgent string, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{client: client, userAgent: userAgent, logger: logger}
}

// Fetch retrieves and evaluates robots.txt for one domain.
//
// Failure semantics follow the default-open convention: an unreachable host
// or a missing robots.txt yields an allowed policy with no delay hint. Only
// an explicit disallow for our user agent (or a 5xx answer, which the
// robots.txt spec treats as "assume disallowed") blocks the domain.
func (f *Fetcher) Fetch(ctx context.Context, domain string) (DomainPolicy, error) {
	robotsURL := fmt.Sprintf("https://%s/robots.txt", domain)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return DomainPolicy{}, fmt.Errorf("invalid robots URL for %s: %w", domain, err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		// Try plain HTTP before giving up; many small recipe sites still
		// serve robots.txt without TLS.
		req, retryErr := http.NewRequestWithContext(ctx, http.MethodGet,
			fmt.Sprintf("http://%s/robots.txt", domain), nil)
		if retryErr != nil {
			return DomainPolicy{Allowed: true}, nil
		}
		req.Header.Set("User-Agent", f.userAgent)
		resp, retryErr = f.client.Do(req)
		if retryErr != nil {
			f.logger.Debug("robots.txt unreachable, defaulting to allowed",
				"domain", domain, "error", err)
			return DomainPolicy{Allowed: true}, nil
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRobotsSize))
	if err != nil {
		f.logger.Debug("robots.txt read failed, defaulting to allowed",
			"domain", domain, "error", err)
		return DomainPolicy{Allowed: true}, nil
	}

	robots, err := robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		f.logger.Debug("robots.txt parse failed, defaulting to allowed",
			"domain", domain, "error", err)
		return DomainPolicy{Allowed: true}, nil
	}

	group := robots.FindGroup(f.userAgent)
	p := DomainPolicy{
		Allowed:    group.Test("/"),
		CrawlDelay: group.CrawlDelay,
	}

	f.logger.Debug("robots.txt evaluated",
		"domain", domain,
		"allowed", p.Allowed,
		"crawl_delay", p.CrawlDelay,
	)
	return p, nil
}

// FetchAll evaluates robots.txt for every domain, sequentially with a short
// pause between hosts. The domain list for a crawl is small (the seeds), so
// parallelism is not worth the extra politeness risk.
func (f *Fetcher) FetchAll(ctx context.Context, domains []string) (map[string]DomainPolicy, error) {
	out := make(map[string]DomainPolicy, len(domains))
	for i, domain := range domains {
		if i > 0 {
			select {
			case <-ctx.Done():
				return out, ctx.Err()
			case <-time.After(100 * time.Millisecond):
			}
		}

		p, err := f.Fetch(ctx, domain)
		if err != nil {
			return out, err
		}
		out[domain] = p
	}
	return out, nil
}
