package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/sitescrape/internal/model"
)

// MarkdownWriter outputs exports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the full export in Markdown format: a summary table, one
// section per page and the list of skipped pages.
func (w *MarkdownWriter) Write(export *model.Export) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, export)
	w.writePages(md, export)
	w.writeFailures(md, export)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// WriteSummary outputs only the summary table.
func (w *MarkdownWriter) WriteSummary(export *model.Export) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, export)

	return len(md.String()), md.Build()
}

// writeHeader writes the title, the run table and the status alert.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, export *model.Export) {
	s := NewSummary(export)

	md.H1("Scraped content from " + s.Seed)
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Seed", "`" + s.Seed + "`"},
			{"Domain", "`" + s.Domain + "`"},
			{"Started", s.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Pages", strconv.Itoa(s.Pages)},
			{"Skipped Pages", strconv.Itoa(s.Failures)},
			{"Status", cases.Title(language.English).String(s.Status())},
		},
	})
	md.PlainText("")

	if s.Failures > 0 {
		w.writePieChart(md, s)
	}

	switch {
	case s.Cancelled:
		md.Warningf("The crawl was stopped early. %d page(s) were exported.", s.Pages)
	case s.Failures > 0:
		md.Importantf("%d page(s) could not be fetched and are missing from the export.", s.Failures)
	default:
		md.Tip("Every reachable page was exported.")
	}
	md.PlainText("")
}

// writePieChart writes a mermaid pie chart of exported and skipped pages.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, s Summary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Crawl Outcome"),
		piechart.WithShowData(true),
	)
	chart.LabelAndIntValue("Exported", uint64(s.Pages))   //nolint:gosec // counts are never negative
	chart.LabelAndIntValue("Skipped", uint64(s.Failures)) //nolint:gosec // counts are never negative

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writePages writes one section per page.
func (w *MarkdownWriter) writePages(md *markdown.Markdown, export *model.Export) {
	md.H2("Pages")
	md.PlainText("")

	if len(export.Pages) == 0 {
		md.PlainText("No pages were exported.")
		md.PlainText("")
		return
	}

	for _, p := range export.Pages {
		md.H3(p.URL)
		md.PlainText("")
		if p.Text == "" {
			md.PlainText("*No paragraph text.*")
		} else {
			md.PlainText(p.Text)
		}
		md.PlainText("")
	}
}

// writeFailures writes the skipped pages table.
func (w *MarkdownWriter) writeFailures(md *markdown.Markdown, export *model.Export) {
	if len(export.Failures) == 0 {
		return
	}

	md.H2("Skipped Pages")
	md.PlainText("")

	rows := make([][]string, len(export.Failures))
	for i, f := range export.Failures {
		status := "-"
		if f.StatusCode != 0 {
			status = strconv.Itoa(f.StatusCode)
		}
		rows[i] = []string{f.URL, status, truncateString(f.Reason, 80)}
	}

	md.Table(markdown.TableSet{
		Header: []string{"URL", "Status", "Reason"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Generated by [sitescrape](https://github.com/nao1215/sitescrape)*")
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
