package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for recipecrawl.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recipecrawl",
		Short: "Politeness-aware crawler for recipe websites",
		Long: `recipecrawl discovers and fetches recipe pages from seed domains.

It follows links recursively up to a configurable depth, de-duplicates
URLs, honors robots.txt rules and per-domain crawl delays, screens fetched
content for recipe relevance, and stores kept pages in a local SQLite
database. Interrupted runs resume from the ledger without re-fetching
completed work.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewRobotsCmd())
	cmd.AddCommand(NewExportCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}
