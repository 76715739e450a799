package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/recipecrawl/recipecrawl/internal/classify"
	"github.com/recipecrawl/recipecrawl/internal/config"
	"github.com/recipecrawl/recipecrawl/internal/crawler"
	"github.com/recipecrawl/recipecrawl/internal/database"
	"github.com/recipecrawl/recipecrawl/internal/fetch"
	"github.com/recipecrawl/recipecrawl/internal/frontier"
	"github.com/recipecrawl/recipecrawl/internal/policy"
	"github.com/recipecrawl/recipecrawl/internal/report"
	"github.com/recipecrawl/recipecrawl/internal/throttle"
)

// LoadPolicyStep builds the politeness oracle from the cached robots
// policy. When FetchRobots is set, seed domains missing from the cache are
// fetched live and the cache is updated.
type LoadPolicyStep struct {
	logger *slog.Logger

	// client performs live robots.txt fetches. Tests inject one routed at
	// a local server.
	client *http.Client
}

// NewLoadPolicyStep creates the policy loading step.
func NewLoadPolicyStep(logger *slog.Logger, client *http.Client) *LoadPolicyStep {
	return &LoadPolicyStep{logger: logger, client: client}
}

// Name returns the step name.
func (s *LoadPolicyStep) Name() string { return "load-policy" }

// Do loads the policy cache and builds the oracle. A missing cache file is
// an empty policy, not an error: unknown domains default to allowed with
// the configured interval floor.
func (s *LoadPolicyStep) Do(ctx context.Context, run *Run) error {
	path := run.Config.PolicyFile
	if path == "" {
		path = config.DefaultPolicyFile()
	}

	domains, err := policy.LoadCache(path)
	if err != nil {
		return fmt.Errorf("loading policy cache: %w", err)
	}
	s.logger.Debug("policy cache loaded",
		slog.String("path", path),
		slog.Int("domains", len(domains)))

	if run.Config.FetchRobots {
		var missing []string
		for _, d := range crawler.SeedDomains(run.Config.Seeds) {
			if _, ok := domains[d]; !ok {
				missing = append(missing, d)
			}
		}
		if len(missing) > 0 {
			client := s.client
			if client == nil {
				client = &http.Client{Timeout: run.Config.RequestTimeout}
			}
			fetcher := policy.NewFetcher(client, run.Config.UserAgent, s.logger)
			fetched, err := fetcher.FetchAll(ctx, missing)
			if err != nil {
				return fmt.Errorf("fetching robots.txt: %w", err)
			}
			for d, p := range fetched {
				domains[d] = p
			}
			if err := policy.SaveCache(path, domains); err != nil {
				return fmt.Errorf("saving policy cache: %w", err)
			}
		}
	}

	run.Oracle = policy.NewOracle(domains, run.Config.MinInterval)
	return nil
}

// SeedFrontierStep opens the ledger, wires the crawl components, and admits
// the seeds. Disallowed seed domains are recorded as skipped here, before
// any worker starts.
type SeedFrontierStep struct {
	logger *slog.Logger
}

// NewSeedFrontierStep creates the wiring step.
func NewSeedFrontierStep(logger *slog.Logger) *SeedFrontierStep {
	return &SeedFrontierStep{logger: logger}
}

// Name returns the step name.
func (s *SeedFrontierStep) Name() string { return "seed-frontier" }

// Do wires the components. The opened ledger is handed to the run state;
// the caller closes it after the pipeline finishes.
func (s *SeedFrontierStep) Do(ctx context.Context, run *Run) error {
	if run.Oracle == nil {
		return errors.New("seed-frontier requires load-policy to run first")
	}
	cfg := run.Config

	ledger, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return err
	}
	run.Ledger = ledger

	visited, err := ledger.LoadVisitedSet(ctx)
	if err != nil {
		return err
	}
	s.logger.Debug("visited set loaded", slog.Int("urls", len(visited)))

	classifier, err := classify.New(cfg.PositiveTerms, cfg.NegativeTerms)
	if err != nil {
		return fmt.Errorf("building classifier: %w", err)
	}

	f := frontier.New(cfg.MaxDepth, classifier, run.Oracle, visited)
	th := throttle.New(run.Oracle, cfg.DomainConcurrency)
	ex := fetch.New(cfg, crawler.SeedDomains(cfg.Seeds), s.logger)
	run.Driver = crawler.New(cfg, f, th, ex, ledger, s.logger, run.RunID)

	return run.Driver.Seed(ctx, cfg.Seeds)
}

// CrawlStep runs the driver to quiescence or cancellation.
type CrawlStep struct {
	logger *slog.Logger
}

// NewCrawlStep creates the crawl step.
func NewCrawlStep(logger *slog.Logger) *CrawlStep {
	return &CrawlStep{logger: logger}
}

// Name returns the step name.
func (s *CrawlStep) Name() string { return "crawl" }

// Do executes the crawl. Cancellation is not an error: the summary is
// marked interrupted and the pipeline proceeds to summarize.
func (s *CrawlStep) Do(ctx context.Context, run *Run) error {
	if run.Driver == nil {
		return errors.New("crawl requires seed-frontier to run first")
	}
	summary, err := run.Driver.Run(ctx)
	run.Summary = summary
	return err
}

// SummarizeStep renders the run summary in the configured format.
type SummarizeStep struct {
	logger *slog.Logger

	// out receives the report when no report file is configured.
	out io.Writer
}

// NewSummarizeStep creates the summarize step writing to out by default.
func NewSummarizeStep(logger *slog.Logger, out io.Writer) *SummarizeStep {
	return &SummarizeStep{logger: logger, out: out}
}

// Name returns the step name.
func (s *SummarizeStep) Name() string { return "summarize" }

// Do writes the summary report.
func (s *SummarizeStep) Do(ctx context.Context, run *Run) error {
	if run.Summary == nil {
		return errors.New("summarize requires crawl to run first")
	}

	out := s.out
	if run.Config.ReportFile != "" {
		f, err := os.Create(run.Config.ReportFile)
		if err != nil {
			return fmt.Errorf("creating report file: %w", err)
		}
		defer f.Close()
		out = f
	}

	var w report.Writer
	switch {
	case run.Config.JSONReport:
		w = report.NewJSONWriter(out, report.WithPrettyPrint())
	case run.Config.CSVReport:
		w = report.NewCSVWriter(out)
	case run.Config.MarkdownReport:
		w = report.NewMarkdownWriter(out)
	default:
		w = report.NewSimpleWriter(out)
	}

	_, err := w.Write(run.Summary)
	return err
}
