package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nao1215/sitescrape/internal/model"
)

// ErrNoExport is returned by steps that need an export when the crawl
// step did not produce one.
var ErrNoExport = errors.New("no export to process")

// Runner crawls one seed. *crawler.Spider implements it.
type Runner interface {
	Run(ctx context.Context, seed string) (*model.Export, error)
}

// CrawlStep crawls the job's seed and stores the export in the job.
type CrawlStep struct {
	runner Runner
}

// NewCrawlStep creates a crawl step backed by runner.
func NewCrawlStep(runner Runner) *CrawlStep {
	return &CrawlStep{runner: runner}
}

// Name returns the step name.
func (s *CrawlStep) Name() string {
	return "crawl"
}

// Do executes the crawl.
func (s *CrawlStep) Do(ctx context.Context, job *Job) error {
	export, err := s.runner.Run(ctx, job.Seed)
	if err != nil {
		return err
	}
	job.Export = export
	return nil
}

// Archiver stores finished exports. *database.ExportDB implements it.
type Archiver interface {
	SaveExport(ctx context.Context, export *model.Export) error
}

// ArchiveStep saves the job's export so it can be listed and reprinted
// with the history command.
//
// Design decision: Archive failures are reported but never discard the
// export, because the output has already been produced in memory and the
// archive is only a convenience copy.
type ArchiveStep struct {
	archiver Archiver
	logger   *slog.Logger
}

// ArchiveStepOption configures an ArchiveStep.
type ArchiveStepOption func(*ArchiveStep)

// WithArchiveLogger sets a custom logger for the archive step.
func WithArchiveLogger(logger *slog.Logger) ArchiveStepOption {
	return func(s *ArchiveStep) {
		s.logger = logger
	}
}

// NewArchiveStep creates an archive step backed by archiver.
func NewArchiveStep(archiver Archiver, opts ...ArchiveStepOption) *ArchiveStep {
	s := &ArchiveStep{
		archiver: archiver,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *ArchiveStep) Name() string {
	return "archive"
}

// Do saves the export.
func (s *ArchiveStep) Do(ctx context.Context, job *Job) error {
	if job.Export == nil {
		return ErrNoExport
	}
	if err := s.archiver.SaveExport(ctx, job.Export); err != nil {
		return fmt.Errorf("failed to archive export of %s: %w", job.Export.Seed, err)
	}
	s.logger.Debug("export archived", "seed", job.Export.Seed, "id", job.Export.ID)
	return nil
}
