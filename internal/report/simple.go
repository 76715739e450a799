package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/recipecrawl/recipecrawl/internal/model"
)

// SimpleWriter outputs a human-readable text summary.
// This format is designed for terminal display.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors because it works in all terminals and pipes cleanly to
// files or other tools.
type SimpleWriter struct {
	baseWriter
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer) *SimpleWriter {
	return &SimpleWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the summary as formatted text.
func (w *SimpleWriter) Write(summary *model.RunSummary) (int, error) {
	var b strings.Builder

	b.WriteString("Crawl Summary\n")
	b.WriteString(strings.Repeat("=", 60) + "\n")
	fmt.Fprintf(&b, "Run ID:     %s\n", summary.RunID)
	fmt.Fprintf(&b, "Started:    %s\n", summary.StartedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&b, "Duration:   %s\n", summary.FinishedAt.Sub(summary.StartedAt).Round(1e6))
	fmt.Fprintf(&b, "Seeds:      %s\n", strings.Join(summary.Seeds, ", "))
	fmt.Fprintf(&b, "Max depth:  %d\n", summary.MaxDepth)
	if summary.Interrupted {
		b.WriteString("Status:     INTERRUPTED (resume with the same seeds)\n")
	} else {
		b.WriteString("Status:     completed\n")
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "%-32s %8s %8s %10s %8s %8s\n",
		"Domain", "Visited", "Kept", "Discarded", "Failed", "Skipped")
	b.WriteString(strings.Repeat("-", 80) + "\n")
	for _, d := range summary.Domains {
		fmt.Fprintf(&b, "%-32s %8d %8d %10d %8d %8d\n",
			d.Domain, d.Visited, d.Kept, d.Discarded, d.Failed, d.Skipped)
	}

	t := summary.Totals()
	b.WriteString(strings.Repeat("-", 80) + "\n")
	fmt.Fprintf(&b, "%-32s %8d %8d %10d %8d %8d\n",
		"TOTAL", t.Visited, t.Kept, t.Discarded, t.Failed, t.Skipped)

	return io.WriteString(w.output, b.String())
}
