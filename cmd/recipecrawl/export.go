package main

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/recipecrawl/recipecrawl/internal/config"
	"github.com/recipecrawl/recipecrawl/internal/database"
	"github.com/recipecrawl/recipecrawl/internal/model"
)

// NewExportCmd creates the export command.
func NewExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export kept page metadata from the crawl database",
		Long: `Export lists every kept page in the crawl database as JSON (default)
or CSV: URL, domain, depth, origin page, title, content hash, recipe
structured-data flag, and fetch time. Bodies stay in the database; this
output is the index downstream extraction tools work from.

Examples:
  # All kept pages as JSON
  recipecrawl export

  # CSV to a file
  recipecrawl export --csv -o pages.csv`,
		RunE: runExportCmd,
	}

	cmd.Flags().Bool("csv", false, "Output CSV instead of JSON")
	cmd.Flags().StringP("output", "o", "", "Write to specified file path instead of stdout")
	cmd.Flags().String("db-dir", config.XDGDataDir(), "Directory holding the crawl database")

	return cmd
}

// runExportCmd executes the export command.
func runExportCmd(cmd *cobra.Command, _ []string) error {
	asCSV, err := cmd.Flags().GetBool("csv")
	if err != nil {
		return err
	}
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}

	// Exporting from a machine that never crawled is an error, not an
	// excuse to create an empty database.
	opts := database.DefaultOptions()
	opts.CreateIfNotExists = false
	ledger, err := database.Open(dbDir, opts)
	if err != nil {
		return err
	}
	defer ledger.Close()

	pages, err := ledger.KeptPages(cmd.Context())
	if err != nil {
		return err
	}
	if len(pages) == 0 {
		return errors.New("no kept pages in the database")
	}

	out := cmd.OutOrStdout()
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	if asCSV {
		return exportCSV(out, pages)
	}
	return exportJSON(out, pages)
}

// exportJSON writes the page index as a JSON array.
func exportJSON(out io.Writer, pages []model.Page) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(pages)
}

// exportCSV writes the page index as CSV rows.
func exportCSV(out io.Writer, pages []model.Page) error {
	w := csv.NewWriter(out)

	header := []string{"url", "domain", "depth", "origin_url", "title",
		"hash", "recipe_signal", "fetched_at"}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, p := range pages {
		row := []string{
			p.URL,
			p.Domain,
			strconv.Itoa(p.Depth),
			p.OriginURL,
			p.Title,
			p.Hash,
			strconv.FormatBool(p.RecipeSignal),
			p.FetchedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
