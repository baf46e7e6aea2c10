package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/nao1215/sitescrape/internal/model"
)

// createTestExport creates an export with sample data for testing.
func createTestExport() *model.Export {
	export := model.NewExport("https://example.com", "https://example.com")
	export.AddPage("https://example.com", "Welcome home")
	export.AddPage("https://example.com/about", "")
	export.AddFailure(model.PageFailure{
		URL:        "https://example.com/missing",
		StatusCode: 404,
		Reason:     "fetch https://example.com/missing: unexpected status 404",
	})
	export.Finish(false)
	return export
}

func TestTextWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes bit-exact export", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		n, err := NewTextWriter(&buf).Write(createTestExport())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := "Scraped content from: https://example.com\n\n" +
			"URL: https://example.com\nWelcome home\n\n" +
			"URL: https://example.com/about\n\n\n"
		if buf.String() != want {
			t.Errorf("unexpected output:\n%q", buf.String())
		}
		if n != len(want) {
			t.Errorf("expected %d bytes, got %d", len(want), n)
		}
	})

	t.Run("summary lists failures", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewTextWriter(&buf).WriteSummary(createTestExport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{"https://example.com", "Pages:     2", "Failures:  1", "/missing", "complete"} {
			if !strings.Contains(output, want) {
				t.Errorf("expected summary to contain %q:\n%s", want, output)
			}
		}
	})
}

func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes pages and failures", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(createTestExport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{
			"# Scraped content from https://example.com",
			"## Pages",
			"### https://example.com/about",
			"Welcome home",
			"No paragraph text.",
			"## Skipped Pages",
			"404",
			"mermaid",
			"Complete",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected markdown to contain %q", want)
			}
		}
	})

	t.Run("cancelled run shows warning", func(t *testing.T) {
		t.Parallel()

		export := model.NewExport("https://example.com", "https://example.com")
		export.Finish(true)

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(export); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "WARNING") {
			t.Error("expected warning alert for cancelled run")
		}
		if !strings.Contains(output, "No pages were exported.") {
			t.Error("expected empty pages note")
		}
		if strings.Contains(output, "## Skipped Pages") {
			t.Error("did not expect skipped pages section")
		}
	})

	t.Run("summary has no page sections", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).WriteSummary(createTestExport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Contains(buf.String(), "## Pages") {
			t.Error("summary must not contain page sections")
		}
	})
}

func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("full document", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf, WithPrettyPrint(), WithVersion("v1.2.3"))
		if _, err := w.Write(createTestExport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var doc JSONDocument
		if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if doc.Version != "v1.2.3" {
			t.Errorf("expected version, got %q", doc.Version)
		}
		if doc.Summary.Pages != 2 || doc.Summary.Failures != 1 {
			t.Errorf("unexpected summary: %+v", doc.Summary)
		}
		if doc.Export == nil || len(doc.Export.Pages) != 2 {
			t.Fatal("expected export pages in document")
		}
		if !strings.Contains(buf.String(), "\n  ") {
			t.Error("expected indented output")
		}
	})

	t.Run("compact summary", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).WriteSummary(createTestExport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		out := strings.TrimSuffix(buf.String(), "\n")
		if strings.Contains(out, "\n") {
			t.Error("expected single-line output")
		}

		var s Summary
		if err := json.Unmarshal(buf.Bytes(), &s); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if s.Seed != "https://example.com" || s.TextBytes != len("Welcome home") {
			t.Errorf("unexpected summary: %+v", s)
		}
	})
}

// failingWriter always returns an error.
type failingWriter struct{}

func (failingWriter) Write(*model.Export) (int, error)        { return 0, errors.New("write failed") }
func (failingWriter) WriteSummary(*model.Export) (int, error) { return 0, errors.New("write failed") }

func TestMultiWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes to all", func(t *testing.T) {
		t.Parallel()

		var text, js bytes.Buffer
		m := NewMultiWriter(NewTextWriter(&text), NewJSONWriter(&js))

		n, err := m.Write(createTestExport())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != text.Len()+js.Len() {
			t.Errorf("expected total %d, got %d", text.Len()+js.Len(), n)
		}
		if text.Len() == 0 || js.Len() == 0 {
			t.Error("expected both writers to receive output")
		}
	})

	t.Run("stops on first error", func(t *testing.T) {
		t.Parallel()

		var after bytes.Buffer
		m := NewMultiWriter(failingWriter{}, NewTextWriter(&after))

		if _, err := m.WriteSummary(createTestExport()); err == nil {
			t.Error("expected error")
		}
		if after.Len() != 0 {
			t.Error("writers after the failing one must not run")
		}
	})
}
