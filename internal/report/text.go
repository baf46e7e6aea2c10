package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nao1215/sitescrape/internal/model"
)

// TextWriter outputs the plain text export.
// Write produces the bit-exact "Scraped content from:" format; nothing
// is added around it so the output can be diffed with earlier exports.
type TextWriter struct {
	baseWriter
}

// NewTextWriter creates a TextWriter that outputs to the given writer.
func NewTextWriter(output io.Writer) *TextWriter {
	return &TextWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the text export.
func (w *TextWriter) Write(export *model.Export) (int, error) {
	n, err := export.WriteTo(w.output)
	return int(n), err
}

// WriteSummary outputs a short human-readable run summary.
func (w *TextWriter) WriteSummary(export *model.Export) (int, error) {
	s := NewSummary(export)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Seed:      %s\n", s.Seed)
	fmt.Fprintf(&sb, "Status:    %s\n", s.Status())
	fmt.Fprintf(&sb, "Pages:     %d\n", s.Pages)
	if s.Failures > 0 {
		fmt.Fprintf(&sb, "Failures:  %d\n", s.Failures)
		for _, f := range export.Failures {
			fmt.Fprintf(&sb, "  - %s: %s\n", f.URL, f.Reason)
		}
	}
	fmt.Fprintf(&sb, "Duration:  %s\n", s.Duration.Round(time.Millisecond))
	fmt.Fprintf(&sb, "Export ID: %s\n", s.ID)

	return io.WriteString(w.output, sb.String())
}
