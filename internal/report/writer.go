package report

import (
	"io"
	"time"

	"github.com/nao1215/sitescrape/internal/model"
)

// Writer defines the interface for export output.
// Implementations write crawl results in various formats.
//
// Design decision: We use an interface to allow different output formats
// and destinations. This enables writing to files, stdout, or the
// interactive shell's save action with the same API.
type Writer interface {
	// Write outputs the full export to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(export *model.Export) (int, error)

	// WriteSummary outputs only the run summary (counts and timing).
	// This is useful for batch runs where page text goes to files.
	WriteSummary(export *model.Export) (int, error)
}

// Summary is the short description of a run shared by all formats.
type Summary struct {
	ID         string        `json:"id"`
	Seed       string        `json:"seed"`
	Domain     string        `json:"domain"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Duration   time.Duration `json:"duration_ns"`
	Cancelled  bool          `json:"cancelled"`
	Pages      int           `json:"pages"`
	Failures   int           `json:"failures"`
	TextBytes  int           `json:"text_bytes"`
}

// NewSummary summarizes an export.
func NewSummary(export *model.Export) Summary {
	textBytes := 0
	for _, p := range export.Pages {
		textBytes += len(p.Text)
	}
	return Summary{
		ID:         export.ID,
		Seed:       export.Seed,
		Domain:     export.Domain,
		StartedAt:  export.StartedAt,
		FinishedAt: export.FinishedAt,
		Duration:   export.Duration(),
		Cancelled:  export.Cancelled,
		Pages:      len(export.Pages),
		Failures:   len(export.Failures),
		TextBytes:  textBytes,
	}
}

// Status returns a one-word description of how the run ended.
func (s Summary) Status() string {
	if s.Cancelled {
		return "cancelled"
	}
	return "complete"
}

// MultiWriter writes to multiple Writers simultaneously.
// This is useful for outputting to both terminal and file.
//
// Design decision: We implement this as a separate type rather than
// using io.MultiWriter because our Writer interface is different
// from io.Writer - we write exports, not raw bytes.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the export to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(export *model.Export) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(export)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteSummary outputs the summary to all configured Writers.
func (m *MultiWriter) WriteSummary(export *model.Export) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteSummary(export)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
