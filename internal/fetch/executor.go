package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html/charset"

	"github.com/recipecrawl/recipecrawl/internal/config"
	"github.com/recipecrawl/recipecrawl/internal/frontier"
	"github.com/recipecrawl/recipecrawl/internal/model"
)

const (
	// acceptHeader advertises HTML preference so content-negotiating
	// servers do not hand us JSON or feeds.
	acceptHeader = "text/html,application/xhtml+xml;q=0.9,*/*;q=0.1"

	// defaultBackoffBase is the first retry delay; each further retry
	// doubles it. 1 second keeps retry pressure well below the politeness
	// interval of most domains.
	defaultBackoffBase = time.Second

	// maxBackoff caps the exponential growth so a long Retry-After or a
	// deep retry sequence cannot stall a worker for minutes.
	maxBackoff = 30 * time.Second
)

// errTooManyRedirects is returned by the redirect checker when a chain
// exceeds the configured hop limit.
var errTooManyRedirects = errors.New("fetch: too many redirects")

// Executor performs the fetch for one frontier entry: request, outcome
// classification, retry policy, content screening, and link extraction.
// A single Executor is shared by all workers; it is stateless apart from
// the shared http.Client and safe for concurrent use.
type Executor struct {
	client      *http.Client
	userAgent   string
	timeout     time.Duration
	maxRetries  int
	maxBody     int64
	screener    *Screener
	scope       map[string]struct{}
	logger      *slog.Logger
	backoffBase time.Duration
}

// Option configures an Executor.
type Option func(*Executor)

// WithHTTPClient replaces the HTTP client. The redirect policy of the
// provided client is preserved; tests use this to route requests to local
// servers.
func WithHTTPClient(c *http.Client) Option {
	return func(e *Executor) { e.client = c }
}

// WithBackoffBase overrides the first retry delay. Tests shrink it so
// retry sequences finish in milliseconds.
func WithBackoffBase(d time.Duration) Option {
	return func(e *Executor) { e.backoffBase = d }
}

// New creates an executor from the crawl configuration. The scope lists the
// registrable domains links may belong to; everything else discovered on a
// page is dropped at extraction time.
func New(cfg *config.Config, scope []string, logger *slog.Logger, opts ...Option) *Executor {
	scopeSet := make(map[string]struct{}, len(scope))
	for _, d := range scope {
		scopeSet[strings.ToLower(d)] = struct{}{}
	}

	maxRedirects := cfg.MaxRedirects
	e := &Executor{
		client: &http.Client{
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) > maxRedirects {
					return errTooManyRedirects
				}
				return nil
			},
		},
		userAgent:   cfg.UserAgent,
		timeout:     cfg.RequestTimeout,
		maxRetries:  cfg.MaxRetries,
		maxBody:     cfg.MaxBodySize,
		screener:    NewScreener(cfg.MinBodySize, cfg.MaxBodySize),
		scope:       scopeSet,
		logger:      logger,
		backoffBase: defaultBackoffBase,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// attemptResult carries one attempt's classification back to the retry loop.
type attemptResult struct {
	outcome    model.FetchOutcome
	retryable  bool
	retryAfter time.Duration
	cancelled  bool
}

// Fetch crawls one entry to a terminal outcome, retrying transient failures
// up to the configured limit. It never returns an error: every failure mode
// is expressed as an outcome status for the driver to record.
func (e *Executor) Fetch(ctx context.Context, entry frontier.Entry) model.FetchOutcome {
	for attempt := 1; ; attempt++ {
		res := e.attempt(ctx, entry)
		res.outcome.Attempts = attempt

		if res.cancelled || !res.retryable || attempt > e.maxRetries {
			return res.outcome
		}

		delay := e.backoff(attempt, res.retryAfter)
		e.logger.Debug("retrying fetch",
			slog.String("url", entry.URL),
			slog.String("status", res.outcome.Status.String()),
			slog.Int("attempt", attempt),
			slog.Duration("delay", delay))

		select {
		case <-ctx.Done():
			return res.outcome
		case <-time.After(delay):
		}
	}
}

// attempt performs a single GET under the per-attempt timeout and classifies
// the result.
func (e *Executor) attempt(ctx context.Context, entry frontier.Entry) attemptResult {
	actx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	base := model.FetchOutcome{URL: entry.URL, FinalURL: entry.URL}

	req, err := http.NewRequestWithContext(actx, http.MethodGet, entry.URL, nil)
	if err != nil {
		base.Status = model.StatusConnectionError
		return attemptResult{outcome: base}
	}
	req.Header.Set("User-Agent", e.userAgent)
	req.Header.Set("Accept", acceptHeader)

	resp, err := e.client.Do(req)
	if err != nil {
		return e.classifyRequestError(ctx, base, resp, err)
	}
	defer resp.Body.Close()

	base.FinalURL = resp.Request.URL.String()
	base.HTTPCode = resp.StatusCode

	if resp.StatusCode >= 400 {
		// Drain a bounded amount so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		base.Status = model.StatusHTTPError
		return attemptResult{
			outcome:    base,
			retryable:  resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusServiceUnavailable,
			retryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, e.maxBody+1))
	if err != nil {
		base.Status = classifyReadError(actx, err)
		base.HTTPCode = 0
		return attemptResult{outcome: base, retryable: true, cancelled: ctx.Err() != nil}
	}

	return e.screenResponse(entry, base, resp, raw)
}

// classifyRequestError maps transport-level failures onto the status
// taxonomy. Redirect-limit violations are terminal; timeouts and network
// errors are retryable.
func (e *Executor) classifyRequestError(ctx context.Context, base model.FetchOutcome, resp *http.Response, err error) attemptResult {
	if errors.Is(err, errTooManyRedirects) {
		// The client hands back the last 3xx response with a closed body.
		if resp != nil {
			base.FinalURL = resp.Request.URL.String()
			base.HTTPCode = resp.StatusCode
		}
		base.Status = model.StatusHTTPError
		return attemptResult{outcome: base}
	}

	if ctx.Err() != nil {
		// The crawl itself is shutting down, not the server misbehaving.
		base.Status = model.StatusConnectionError
		return attemptResult{outcome: base, cancelled: true}
	}

	var uerr *url.Error
	if errors.As(err, &uerr) && uerr.Timeout() {
		base.Status = model.StatusTimeout
		return attemptResult{outcome: base, retryable: true}
	}

	base.Status = model.StatusConnectionError
	return attemptResult{outcome: base, retryable: true}
}

// classifyReadError distinguishes a body-read deadline from other truncated
// transfers.
func classifyReadError(actx context.Context, err error) model.FetchStatus {
	if errors.Is(actx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return model.StatusTimeout
	}
	return model.StatusConnectionError
}

// screenResponse applies content screening and link extraction to a
// successful response. Links are harvested from every HTML body, kept or
// not: index pages rarely pass the screen but feed the frontier.
func (e *Executor) screenResponse(entry frontier.Entry, base model.FetchOutcome, resp *http.Response, raw []byte) attemptResult {
	contentType := resp.Header.Get("Content-Type")
	utf8Body := decodeCharset(raw, contentType)

	if IsHTMLContentType(contentType) {
		base.ExtractedLinks = ExtractLinks(bytes.NewReader(utf8Body), resp.Request.URL, e.scope)
	}

	decision := e.screener.Screen(contentType, int64(len(raw)), utf8Body)
	if !decision.Keep {
		e.logger.Debug("content rejected",
			slog.String("url", entry.URL),
			slog.String("reason", string(decision.Reason)),
			slog.Int("links", len(base.ExtractedLinks)))
		base.Status = model.StatusContentRejected
		return attemptResult{outcome: base}
	}

	page := &model.Page{
		URL:          base.FinalURL,
		Domain:       entry.Domain,
		Depth:        entry.Depth,
		OriginURL:    entry.OriginURL,
		StatusCode:   resp.StatusCode,
		ContentType:  contentType,
		Title:        extractTitle(bytes.NewReader(utf8Body)),
		Raw:          raw,
		RecipeSignal: decision.RecipeSignal,
		FetchedAt:    time.Now().UTC(),
	}
	page.ComputeHash()
	page.TruncateRaw()

	base.Status = model.StatusSuccess
	base.Page = page
	return attemptResult{outcome: base}
}

// backoff computes the delay before the next attempt: exponential with
// jitter, but never shorter than what the server asked for via Retry-After.
func (e *Executor) backoff(attempt int, retryAfter time.Duration) time.Duration {
	d := e.backoffBase << (attempt - 1)
	if d > maxBackoff {
		d = maxBackoff
	}
	// Up to 50% jitter to decorrelate workers retrying the same domain.
	d += time.Duration(rand.Int63n(int64(d)/2 + 1))

	if retryAfter > d {
		d = retryAfter
	}
	if d > maxBackoff {
		d = maxBackoff
	}
	return d
}

// parseRetryAfter interprets a Retry-After header as either delay seconds
// or an HTTP date. Returns zero when absent or unparsable.
func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// decodeCharset converts a body to UTF-8 using the charset declared in the
// Content-Type header or sniffed from the document. On any decoding problem
// the raw bytes are returned unchanged.
func decodeCharset(raw []byte, contentType string) []byte {
	reader, err := charset.NewReader(bytes.NewReader(raw), contentType)
	if err != nil {
		return raw
	}
	decoded, err := io.ReadAll(reader)
	if err != nil {
		return raw
	}
	return decoded
}

// String returns a compact description for debug logs.
func (e *Executor) String() string {
	return fmt.Sprintf("fetch.Executor(timeout=%s retries=%d scope=%d domains)",
		e.timeout, e.maxRetries, len(e.scope))
}
