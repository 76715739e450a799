package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/recipecrawl/recipecrawl/internal/config"
	"github.com/recipecrawl/recipecrawl/internal/crawler"
	"github.com/recipecrawl/recipecrawl/internal/log"
	"github.com/recipecrawl/recipecrawl/internal/policy"
)

// NewRobotsCmd creates the robots command.
func NewRobotsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "robots [domain...]",
		Short: "Fetch robots.txt for domains and update the politeness policy cache",
		Long: `Robots fetches robots.txt for each given domain, extracts whether the
crawler is allowed and any crawl-delay, and writes the result to the
politeness policy cache used by the crawl command.

Unreachable or missing robots.txt files mean the domain is treated as
allowed. Running this command ahead of a large crawl front-loads the
robots traffic and makes crawl startup deterministic.

Examples:
  # Refresh the policy for two domains
  recipecrawl robots example.com cook.example.org

  # Write to a non-default cache location
  recipecrawl robots --policy-file ./policy.yaml example.com`,
		Args: cobra.MinimumNArgs(1),
		RunE: runRobotsCmd,
	}

	cmd.Flags().String("policy-file", "",
		"Politeness policy cache path (default: XDG data directory)")
	cmd.Flags().DurationP("timeout", "t", config.DefaultRequestTimeout,
		"Timeout for each robots.txt fetch")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent to evaluate robots.txt rules for")

	return cmd
}

// runRobotsCmd executes the robots command.
func runRobotsCmd(cmd *cobra.Command, args []string) error {
	path, err := cmd.Flags().GetString("policy-file")
	if err != nil {
		return err
	}
	if path == "" {
		path = config.DefaultPolicyFile()
	}
	timeout, err := cmd.Flags().GetDuration("timeout")
	if err != nil {
		return err
	}
	userAgent, err := cmd.Flags().GetString("user-agent")
	if err != nil {
		return err
	}

	domains := crawler.SeedDomains(args)
	if len(domains) == 0 {
		return errors.New("no valid domains given")
	}

	logger := log.NewLogger(os.Stderr, getVerboseFlag(cmd))

	// Existing entries for other domains are preserved.
	cache, err := policy.LoadCache(path)
	if err != nil {
		return fmt.Errorf("loading policy cache: %w", err)
	}

	fetcher := policy.NewFetcher(&http.Client{Timeout: timeout}, userAgent, logger)
	fetched, err := fetcher.FetchAll(cmd.Context(), domains)
	if err != nil {
		return fmt.Errorf("fetching robots.txt: %w", err)
	}
	for d, p := range fetched {
		cache[d] = p
	}

	if err := policy.SaveCache(path, cache); err != nil {
		return fmt.Errorf("saving policy cache: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Updated %s\n\n", path)
	fmt.Fprintf(out, "%-40s %-10s %s\n", "Domain", "Allowed", "Crawl-Delay")
	for _, d := range domains {
		p := cache[d]
		fmt.Fprintf(out, "%-40s %-10t %s\n", d, p.Allowed, p.CrawlDelay)
	}

	return nil
}
