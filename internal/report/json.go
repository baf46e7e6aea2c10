package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/sitescrape/internal/model"
)

// JSONWriter outputs exports in JSON format.
// This format is designed for tool integration and programmatic processing.
//
// Design decision: We use standard encoding/json rather than a third-party
// JSON library because:
// 1. It's part of the standard library (no extra dependencies)
// 2. It's sufficient for our needs
// 3. It provides consistent behavior across Go versions
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string

	// version is recorded in the document when set.
	version string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with default indentation.
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// WithVersion records the sitescrape version in full documents.
func WithVersion(version string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.version = version
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// JSONDocument is the full JSON output: the export plus its summary.
//
// Design decision: We wrap the export rather than adding fields to
// model.Export because output-only metadata (version) does not belong in
// the archived data structure.
type JSONDocument struct {
	// Version is the sitescrape version that generated this document.
	Version string `json:"version,omitempty"`

	// Summary holds counts and timing.
	Summary Summary `json:"summary"`

	// Export is the complete export.
	Export *model.Export `json:"export"`
}

// Write outputs the full export in JSON format.
func (w *JSONWriter) Write(export *model.Export) (int, error) {
	return w.writeJSON(JSONDocument{
		Version: w.version,
		Summary: NewSummary(export),
		Export:  export,
	})
}

// WriteSummary outputs only the summary in JSON format.
func (w *JSONWriter) WriteSummary(export *model.Export) (int, error) {
	return w.writeJSON(NewSummary(export))
}

// writeJSON marshals the given value to JSON and writes it to the output.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}

	// Add trailing newline for better terminal output
	data = append(data, '\n')

	return w.output.Write(data)
}
