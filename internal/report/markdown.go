package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"

	"github.com/recipecrawl/recipecrawl/internal/model"
)

// MarkdownWriter outputs the summary in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides type-safe tables, lists, and GitHub-flavored
// alerts.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the run summary in Markdown format.
func (w *MarkdownWriter) Write(summary *model.RunSummary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, summary)
	w.writeDomains(md, summary)

	return len(md.String()), md.Build()
}

// writeHeader writes the run information table.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, summary *model.RunSummary) {
	md.H1("Crawl Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Run ID", "`" + summary.RunID + "`"},
			{"Started", summary.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Duration", summary.FinishedAt.Sub(summary.StartedAt).String()},
			{"Seeds", strings.Join(summary.Seeds, ", ")},
			{"Max Depth", strconv.Itoa(summary.MaxDepth)},
			{"Status", w.getStatusText(summary)},
		},
	})
	md.PlainText("")
}

// getStatusText returns the status text based on how the run ended.
func (w *MarkdownWriter) getStatusText(summary *model.RunSummary) string {
	if summary.Interrupted {
		return "⚠️ Interrupted (resumable)"
	}
	return "✅ Complete"
}

// writeDomains writes the per-domain counter table.
func (w *MarkdownWriter) writeDomains(md *markdown.Markdown, summary *model.RunSummary) {
	md.H2("Domains")
	md.PlainText("")

	rows := make([][]string, 0, len(summary.Domains)+1)
	for _, d := range summary.Domains {
		rows = append(rows, []string{
			d.Domain,
			strconv.Itoa(d.Visited),
			strconv.Itoa(d.Kept),
			strconv.Itoa(d.Discarded),
			strconv.Itoa(d.Failed),
			strconv.Itoa(d.Skipped),
		})
	}
	t := summary.Totals()
	rows = append(rows, []string{
		"**Total**",
		"**" + strconv.Itoa(t.Visited) + "**",
		"**" + strconv.Itoa(t.Kept) + "**",
		"**" + strconv.Itoa(t.Discarded) + "**",
		"**" + strconv.Itoa(t.Failed) + "**",
		"**" + strconv.Itoa(t.Skipped) + "**",
	})

	md.Table(markdown.TableSet{
		Header: []string{"Domain", "Visited", "Kept", "Discarded", "Failed", "Skipped"},
		Rows:   rows,
	})
	md.PlainText("")
}
