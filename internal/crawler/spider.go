package crawler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/nao1215/sitescrape/internal/model"
)

// Spider crawls every reachable page of one site and collects its
// paragraph text into an export.
//
// A Spider holds only configuration; all crawl state (frontier, export)
// belongs to a single call of Run, so one Spider can serve several runs,
// even concurrently.
type Spider struct {
	// fetcher retrieves page bodies.
	fetcher Fetcher

	// matchMode selects how link hosts are compared with the seed domain.
	matchMode MatchMode

	// filter restricts followed links by path.
	filter PathFilter

	// maxPages stops the run after this many pages. 0 means unlimited.
	maxPages int

	// onPage is called after each page record is appended.
	onPage func(model.PageRecord)

	// logger receives per-page diagnostics.
	logger *slog.Logger
}

// SpiderOption configures a Spider.
type SpiderOption func(*Spider)

// WithMatchMode sets the domain match mode. The default is MatchSubdomain.
func WithMatchMode(mode MatchMode) SpiderOption {
	return func(s *Spider) {
		s.matchMode = mode
	}
}

// WithPathFilter sets ignore/follow path patterns for discovered links.
func WithPathFilter(filter PathFilter) SpiderOption {
	return func(s *Spider) {
		s.filter = filter
	}
}

// WithMaxPages caps the number of pages recorded in one run.
// 0 (the default) crawls until the frontier is exhausted.
func WithMaxPages(maxPages int) SpiderOption {
	return func(s *Spider) {
		s.maxPages = maxPages
	}
}

// WithPageCallback registers fn to be called with every page record as
// soon as it is appended. fn runs on the crawl goroutine.
func WithPageCallback(fn func(model.PageRecord)) SpiderOption {
	return func(s *Spider) {
		s.onPage = fn
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) SpiderOption {
	return func(s *Spider) {
		s.logger = logger
	}
}

// NewSpider creates a Spider that fetches pages with fetcher.
func NewSpider(fetcher Fetcher, opts ...SpiderOption) *Spider {
	s := &Spider{
		fetcher:   fetcher,
		matchMode: MatchSubdomain,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = slog.Default()
	}

	return s
}

// Run crawls the site of seed and returns its export.
//
// The seed is normalized first; a seed that cannot be normalized, or that
// is not http(s), fails the run before any request is made. The seed page
// must be fetchable, otherwise the run fails with ErrSeedUnreachable. Any
// later page that fails is recorded in Export.Failures and skipped.
//
// Cancelling ctx stops the crawl cooperatively: cancellation is observed
// before each page is taken from the frontier, and an in-flight fetch is
// allowed to finish. A cancelled run still returns the export built so far
// with Cancelled set, and a nil error.
func (s *Spider) Run(ctx context.Context, seed string) (*model.Export, error) {
	start, err := ValidateSeed(seed)
	if err != nil {
		return nil, err
	}

	domain, err := DomainOf(start)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSeed, err)
	}

	scope, err := NewScope(domain, s.matchMode)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSeed, err)
	}

	frontier := NewFrontier()
	frontier.Seed(start)
	export := model.NewExport(start, domain)

	s.logger.Info("starting crawl",
		"seed", start,
		"domain", domain,
		"match", s.matchMode.String(),
	)

	// Fetches run to completion even after a stop request.
	fetchCtx := context.WithoutCancel(ctx)

	cancelled := false
	for {
		if ctx.Err() != nil {
			cancelled = true
			break
		}
		if s.maxPages > 0 && len(export.Pages) >= s.maxPages {
			s.logger.Info("page limit reached", "max_pages", s.maxPages)
			break
		}

		pageURL, ok := frontier.Drain()
		if !ok {
			break
		}

		if err := s.processPage(fetchCtx, pageURL, scope, frontier, export); err != nil {
			if pageURL == start {
				return nil, fmt.Errorf("%w: %w", ErrSeedUnreachable, err)
			}
			export.AddFailure(failureOf(pageURL, err))
			s.logger.Warn("page skipped", "url", pageURL, "error", err)
		}
	}

	export.Finish(cancelled)

	stats := frontier.Stats()
	s.logger.Info("crawl finished",
		"seed", start,
		"pages", len(export.Pages),
		"failures", len(export.Failures),
		"discovered", stats.Discovered,
		"cancelled", cancelled,
	)

	return export, nil
}

// ValidateSeed normalizes a seed URL and checks that it can be crawled.
// It returns the canonical seed, or an error wrapping ErrInvalidSeed or
// ErrUnsupportedScheme.
func ValidateSeed(seed string) (string, error) {
	start, err := Normalize(seed)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidSeed, err)
	}
	if u, err := url.Parse(start); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedScheme, start)
	}
	return start, nil
}

// processPage fetches one page, feeds its links to the frontier and
// appends its text to the export.
func (s *Spider) processPage(ctx context.Context, pageURL string, scope *Scope, frontier *Frontier, export *model.Export) error {
	body, err := s.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return err
	}

	doc, err := ParseDocument(bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("parse %s: %w", pageURL, err)
	}

	added := 0
	for _, link := range LinksFromDocument(pageURL, doc, scope) {
		if !s.filter.Allows(link) {
			continue
		}
		if frontier.Offer(link) {
			added++
		}
	}

	record := export.AddPage(pageURL, TextFromDocument(doc))
	s.logger.Debug("page processed",
		"url", pageURL,
		"new_links", added,
		"text_bytes", len(record.Text),
	)

	if s.onPage != nil {
		s.onPage(record)
	}
	return nil
}

// failureOf converts a page error into a failure record.
func failureOf(pageURL string, err error) model.PageFailure {
	failure := model.PageFailure{URL: pageURL, Reason: err.Error()}
	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		failure.StatusCode = fetchErr.StatusCode
	}
	return failure
}
