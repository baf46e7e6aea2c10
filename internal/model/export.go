package model

import (
	"bytes"
	"io"
	"time"

	"github.com/google/uuid"
)

// ExportHeaderPrefix starts the first line of every text export.
const ExportHeaderPrefix = "Scraped content from: "

// PageRecord is one crawled page in an export.
// Records are appended in processing order and never modified afterwards.
type PageRecord struct {
	// URL is the canonical URL of the page.
	URL string `json:"url"`

	// Text is the whitespace-collapsed paragraph text of the page.
	// Empty when the page has no paragraphs.
	Text string `json:"text"`
}

// PageFailure records a page that could not be fetched or parsed.
// Failed pages are reported in diagnostics but have no block in the
// text export.
type PageFailure struct {
	// URL is the canonical URL of the page.
	URL string `json:"url"`

	// StatusCode is the HTTP status for non-2xx responses, 0 otherwise.
	StatusCode int `json:"status_code,omitempty"`

	// Reason is a human-readable description of the failure.
	Reason string `json:"reason"`
}

// Export is the aggregated result of one crawl run.
//
// Design decision: Pages and failures are kept apart because:
//  1. The text export is a bit-exact artifact that lists only pages
//  2. Failures belong in diagnostics and in richer report formats
type Export struct {
	// ID uniquely identifies the run that produced this export.
	ID string `json:"id"`

	// Seed is the canonical seed URL named in the export header.
	Seed string `json:"seed"`

	// Domain is the canonical scheme+host the crawl was restricted to.
	Domain string `json:"domain"`

	// StartedAt is when the run started.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt is when the run stopped (completed or cancelled).
	FinishedAt time.Time `json:"finished_at"`

	// Cancelled is true when the run was stopped before the frontier was
	// exhausted.
	Cancelled bool `json:"cancelled"`

	// Pages holds one record per successfully processed page.
	Pages []PageRecord `json:"pages"`

	// Failures holds pages that were skipped because of an error.
	Failures []PageFailure `json:"failures,omitempty"`
}

// NewExport creates an empty export for a canonical seed.
func NewExport(seed, domain string) *Export {
	return &Export{
		ID:        uuid.NewString(),
		Seed:      seed,
		Domain:    domain,
		StartedAt: time.Now(),
		Pages:     make([]PageRecord, 0),
		Failures:  make([]PageFailure, 0),
	}
}

// AddPage appends a page record.
func (e *Export) AddPage(url, text string) PageRecord {
	record := PageRecord{URL: url, Text: text}
	e.Pages = append(e.Pages, record)
	return record
}

// AddFailure appends a page failure.
func (e *Export) AddFailure(failure PageFailure) {
	e.Failures = append(e.Failures, failure)
}

// Finish marks the export as finished at the current time.
func (e *Export) Finish(cancelled bool) {
	e.Cancelled = cancelled
	e.FinishedAt = time.Now()
}

// Duration returns how long the run took. Zero until Finish is called.
func (e *Export) Duration() time.Duration {
	if e.FinishedAt.IsZero() {
		return 0
	}
	return e.FinishedAt.Sub(e.StartedAt)
}

// WriteTo writes the text export:
//
//	Scraped content from: <seed>\n\n
//	URL: <page>\n<text>\n\n
//	...
//
// The format is bit-exact and shared with earlier versions of the tool.
func (e *Export) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	buf.WriteString(ExportHeaderPrefix)
	buf.WriteString(e.Seed)
	buf.WriteString("\n\n")
	for _, p := range e.Pages {
		buf.WriteString("URL: ")
		buf.WriteString(p.URL)
		buf.WriteString("\n")
		buf.WriteString(p.Text)
		buf.WriteString("\n\n")
	}
	return buf.WriteTo(w)
}

// Bytes returns the UTF-8 text export.
func (e *Export) Bytes() []byte {
	var buf bytes.Buffer
	_, _ = e.WriteTo(&buf) //nolint:errcheck // bytes.Buffer never fails
	return buf.Bytes()
}

// String returns the text export.
func (e *Export) String() string {
	return string(e.Bytes())
}
