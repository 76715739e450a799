package report

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/recipecrawl/recipecrawl/internal/model"
)

// CSVWriter outputs per-domain counters as CSV, one row per domain plus a
// trailing totals row. This format suits spreadsheet review of large
// multi-domain crawls.
type CSVWriter struct {
	baseWriter
}

// NewCSVWriter creates a CSVWriter that outputs to the given writer.
func NewCSVWriter(output io.Writer) *CSVWriter {
	return &CSVWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the summary as CSV. The byte count is not tracked by
// encoding/csv, so it is always reported as zero.
func (w *CSVWriter) Write(summary *model.RunSummary) (int, error) {
	cw := csv.NewWriter(w.output)

	header := []string{"domain", "visited", "kept", "discarded", "failed", "skipped"}
	if err := cw.Write(header); err != nil {
		return 0, err
	}

	for _, d := range summary.Domains {
		if err := cw.Write(statsRow(d.Domain, d)); err != nil {
			return 0, err
		}
	}
	if err := cw.Write(statsRow("TOTAL", summary.Totals())); err != nil {
		return 0, err
	}

	cw.Flush()
	return 0, cw.Error()
}

func statsRow(label string, d model.DomainStats) []string {
	return []string{
		label,
		strconv.Itoa(d.Visited),
		strconv.Itoa(d.Kept),
		strconv.Itoa(d.Discarded),
		strconv.Itoa(d.Failed),
		strconv.Itoa(d.Skipped),
	}
}
