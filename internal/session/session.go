// Package session runs one crawl at a time in the background and exposes
// the start/stop/status/download surface used by the interactive shell.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/nao1215/sitescrape/internal/crawler"
	"github.com/nao1215/sitescrape/internal/model"
)

// ErrAlreadyRunning is returned by Start while a run is active.
var ErrAlreadyRunning = errors.New("a crawl is already running")

// Progress describes one processed page of the active run.
type Progress struct {
	// URL is the canonical URL of the processed page.
	URL string

	// Pages is the number of pages processed so far in this run.
	Pages int
}

// Session owns at most one active crawl run.
//
// Design decision: The crawl runs on its own goroutine and is observed
// through a done channel because:
//  1. The user interface must stay responsive while pages are fetched
//  2. Stop only requests cancellation; the run finishes its current page
//     and still produces a partial export
type Session struct {
	fetcher    crawler.Fetcher
	spiderOpts []crawler.SpiderOption
	onProgress func(Progress)
	logger     *slog.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
	export  *model.Export
	err     error
}

// Option configures a Session.
type Option func(*Session)

// WithSpiderOptions passes options to the Spider of every run.
func WithSpiderOptions(opts ...crawler.SpiderOption) Option {
	return func(s *Session) {
		s.spiderOpts = append(s.spiderOpts, opts...)
	}
}

// WithProgress registers fn to be called after every processed page.
// fn runs on the crawl goroutine and must not block for long.
func WithProgress(fn func(Progress)) Option {
	return func(s *Session) {
		s.onProgress = fn
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// New creates an idle Session that fetches pages with fetcher.
func New(fetcher crawler.Fetcher, opts ...Option) *Session {
	s := &Session{fetcher: fetcher}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Start begins crawling seed in the background.
// The seed is normalized synchronously so that malformed input is reported
// before anything is fetched. Starting discards the export of the previous
// run.
func (s *Session) Start(seed string) error {
	if _, err := crawler.ValidateSeed(seed); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return ErrAlreadyRunning
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.running = true
	s.cancel = cancel
	s.done = make(chan struct{})
	s.export = nil
	s.err = nil

	go s.run(ctx, seed, s.done)
	return nil
}

// run executes one crawl and publishes its result.
func (s *Session) run(ctx context.Context, seed string, done chan struct{}) {
	pages := 0
	opts := append([]crawler.SpiderOption{
		crawler.WithLogger(s.logger),
		crawler.WithPageCallback(func(record model.PageRecord) {
			pages++
			if s.onProgress != nil {
				s.onProgress(Progress{URL: record.URL, Pages: pages})
			}
		}),
	}, s.spiderOpts...)

	export, err := crawler.NewSpider(s.fetcher, opts...).Run(ctx, seed)

	s.mu.Lock()
	s.export = export
	s.err = err
	s.running = false
	s.cancel()
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("crawl failed", "seed", seed, "error", err)
	}
	close(done)
}

// Stop requests cancellation of the active run. It returns immediately;
// use Wait to block until the run has finished. Stop is a no-op when idle.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running && s.cancel != nil {
		s.cancel()
	}
}

// IsRunning reports whether a run is active.
func (s *Session) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Wait blocks until the latest run has finished and returns its error.
// It returns nil immediately if no run was ever started.
func (s *Session) Wait() error {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()

	if done == nil {
		return nil
	}
	<-done
	return s.Err()
}

// Err returns the error of the latest finished run.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Export returns the export of the latest finished run, or nil while a run
// is active, before the first run, or after a failed run.
func (s *Session) Export() *model.Export {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}
	return s.export
}

// CurrentExport returns the UTF-8 text export of the latest completed or
// cancelled run, or nil when there is none.
func (s *Session) CurrentExport() []byte {
	export := s.Export()
	if export == nil {
		return nil
	}
	return export.Bytes()
}
