package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/recipecrawl/recipecrawl/internal/config"
	"github.com/recipecrawl/recipecrawl/internal/log"
	"github.com/recipecrawl/recipecrawl/internal/pipeline"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [seed...]",
		Short: "Crawl recipe pages from seed domains",
		Long: `Crawl discovers and fetches recipe pages starting from the given seeds.

A seed may be a bare domain ("example.com", crawled from its HTTPS root)
or a full URL used as the crawl base as-is. Discovered links are followed
up to the configured depth, restricted to the seeds' registrable domains,
filtered by the URL classifier, and fetched politely: robots.txt rules,
per-domain concurrency limits, and crawl delays are honored.

Every visited URL gets exactly one terminal record in the local ledger.
Re-running with the same seeds resumes: completed URLs are never fetched
again, and work lost to an interruption is rediscovered automatically.

Examples:
  # Crawl two sites, two levels deep
  recipecrawl crawl example.com cook.example.org

  # Deeper crawl with a gentler pace
  recipecrawl crawl -d 3 --interval 5s example.com

  # Fetch robots.txt for unknown seed domains before crawling
  recipecrawl crawl --fetch-robots example.com

  # Machine-readable summary
  recipecrawl crawl --json -o summary.json example.com

Configuration file (.recipecrawl) example:
  seeds:
    - example.com
    - https://cook.example.org/recipes
  positive_terms:
    - recipe
    - rezept
  negative_terms:
    - login
    - newsletter`,
		Args: cobra.ArbitraryArgs,
		RunE: runCrawlCmd,
	}

	// Crawl behavior flags
	cmd.Flags().IntP("depth", "d", config.DefaultMaxDepth,
		"Maximum link recursion depth (0 fetches only the seeds)")
	cmd.Flags().IntP("workers", "w", config.DefaultGlobalConcurrency,
		"Size of the global fetch worker pool")
	cmd.Flags().Int("domain-workers", config.DefaultDomainConcurrency,
		"Maximum simultaneous requests per domain")
	cmd.Flags().Duration("interval", config.DefaultMinInterval,
		"Minimum interval between requests to the same domain")
	cmd.Flags().DurationP("timeout", "t", config.DefaultRequestTimeout,
		"Timeout for each HTTP attempt")
	cmd.Flags().Int("retries", config.DefaultMaxRetries,
		"Retries after the first attempt for transient failures")
	cmd.Flags().Int("redirects", config.DefaultMaxRedirects,
		"Maximum redirect hops per request")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header for all requests")

	// Storage flags
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory holding the crawl database")

	// Politeness flags
	cmd.Flags().String("policy-file", "",
		"Politeness policy cache path (default: XDG data directory)")
	cmd.Flags().Bool("fetch-robots", false,
		"Fetch robots.txt for seed domains missing from the policy cache")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .recipecrawl in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON summary (mutually exclusive with --csv and --markdown)")
	cmd.Flags().Bool("csv", false,
		"Output CSV summary (mutually exclusive with --json and --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown summary (mutually exclusive with --json and --csv)")
	cmd.Flags().StringP("output", "o", "",
		"Write summary to specified file path instead of stdout")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildCrawlConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewLogger(os.Stderr, getVerboseFlag(cmd))

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, finishing in-flight work...")
			cancel()
		case <-ctx.Done():
		}
	}()

	run := &pipeline.Run{
		Config: cfg,
		RunID:  uuid.NewString(),
	}

	p := pipeline.New(pipeline.WithLogger(logger))
	p.AddSteps(
		pipeline.NewLoadPolicyStep(logger, nil),
		pipeline.NewSeedFrontierStep(logger),
		pipeline.NewCrawlStep(logger),
		pipeline.NewSummarizeStep(logger, cmd.OutOrStdout()),
	)

	err = p.Execute(ctx, run)
	if run.Ledger != nil {
		if cerr := run.Ledger.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// buildCrawlConfig creates a Config from cobra command flags and the
// optional configuration file.
func buildCrawlConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Seeds = args

	var err error

	cfg.MaxDepth, err = cmd.Flags().GetInt("depth")
	if err != nil {
		return nil, err
	}
	cfg.GlobalConcurrency, err = cmd.Flags().GetInt("workers")
	if err != nil {
		return nil, err
	}
	cfg.DomainConcurrency, err = cmd.Flags().GetInt("domain-workers")
	if err != nil {
		return nil, err
	}
	cfg.MinInterval, err = cmd.Flags().GetDuration("interval")
	if err != nil {
		return nil, err
	}
	cfg.RequestTimeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}
	cfg.MaxRetries, err = cmd.Flags().GetInt("retries")
	if err != nil {
		return nil, err
	}
	cfg.MaxRedirects, err = cmd.Flags().GetInt("redirects")
	if err != nil {
		return nil, err
	}
	cfg.UserAgent, err = cmd.Flags().GetString("user-agent")
	if err != nil {
		return nil, err
	}
	cfg.DBDir, err = cmd.Flags().GetString("db-dir")
	if err != nil {
		return nil, err
	}
	cfg.PolicyFile, err = cmd.Flags().GetString("policy-file")
	if err != nil {
		return nil, err
	}
	cfg.FetchRobots, err = cmd.Flags().GetBool("fetch-robots")
	if err != nil {
		return nil, err
	}
	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load seeds and classifier terms from the config file.
	// An explicitly specified file must exist; the default locations are
	// optional.
	explicit := cfg.ConfigFilePath != ""
	if path := config.FindConfigFile(cfg.ConfigFilePath); path != "" {
		cf, err := config.LoadConfigFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
		cfg.Merge(cf)
	} else if explicit {
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}
	cfg.CSVReport, err = cmd.Flags().GetBool("csv")
	if err != nil {
		return nil, err
	}
	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}
	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	if len(cfg.Seeds) == 0 {
		return nil, errors.New("no seeds provided (pass domains as arguments or list them in .recipecrawl)")
	}

	return cfg, nil
}
