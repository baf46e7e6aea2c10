package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of seeds crawled at once when no
// WithConcurrency option is given.
const DefaultConcurrency = 4

// BatchProcessor handles concurrent processing of multiple seed URLs.
// It uses errgroup to manage goroutines and respect concurrency limits.
//
// Design decision: We use a separate BatchProcessor rather than adding batch
// functionality to Pipeline because:
// 1. It keeps the Pipeline focused on single-seed execution
// 2. Each crawl stays sequential; concurrency exists only between sites
type BatchProcessor struct {
	// pipelineFactory creates a new pipeline for each seed, so per-site
	// settings (cookies, match mode, page limit) can differ between seeds.
	pipelineFactory func(seed string) *Pipeline

	// concurrency is the maximum number of concurrent crawls.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent crawls.
// Non-positive values are ignored.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
func NewBatchProcessor(pipelineFactory func(seed string) *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     DefaultConcurrency,
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch crawls multiple seeds concurrently.
// The returned jobs are in the order of seeds. A job whose crawl failed
// carries the error in Job.Err; the other seeds are not affected.
//
// Cancelling ctx stops running crawls cooperatively (their partial exports
// are kept) and prevents queued seeds from starting; their jobs carry the
// context error. The returned error is non-nil only for cancellation.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, seeds []string) ([]*Job, error) {
	jobs := make([]*Job, len(seeds))
	err := bp.ProcessBatchWithCallback(ctx, seeds, func(job *Job, index int) {
		jobs[index] = job
	})
	return jobs, err
}

// ProcessBatchWithCallback crawls multiple seeds and calls callback for
// each finished job, including jobs that were never started because of
// cancellation. This is useful for streaming results.
//
// The callback is called from the goroutine that ran the job, so it
// must be safe for concurrent use if it touches shared state.
//
// Design decision: We use errgroup.SetLimit rather than a worker pool
// because it's simpler and errgroup handles the concurrency correctly.
// The group is created without WithContext because one failed site must
// not cancel the others.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	seeds []string,
	callback func(job *Job, index int),
) error {
	bp.logger.Info("starting batch processing",
		"total_seeds", len(seeds),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()

	var g errgroup.Group
	g.SetLimit(bp.concurrency)

	for i, seed := range seeds {
		g.Go(func() error {
			job := NewJob(seed)

			if err := ctx.Err(); err != nil {
				job.Err = err
				callback(job, i)
				return nil
			}

			bp.logger.Info("crawling seed",
				"seed", seed,
				"index", i+1,
				"total", len(seeds),
			)

			if err := bp.pipelineFactory(seed).Execute(ctx, job); err != nil && job.Err == nil {
				job.Err = err
			}

			if job.Err != nil {
				bp.logger.Warn("crawl failed", "seed", seed, "error", job.Err)
			}

			callback(job, i)
			return nil
		})
	}

	_ = g.Wait() //nolint:errcheck // workers never return errors

	bp.logger.Info("batch processing complete",
		"total_seeds", len(seeds),
		"elapsed", time.Since(startTime),
	)

	return ctx.Err()
}
