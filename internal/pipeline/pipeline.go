package pipeline

import (
	"context"
	"log/slog"

	"github.com/nao1215/sitescrape/internal/model"
)

// Job is the unit of work of a pipeline: one seed URL and what the steps
// produced for it.
type Job struct {
	// Seed is the seed URL as given by the user.
	Seed string

	// Export is set by the crawl step. It stays nil when the seed could not
	// be crawled.
	Export *model.Export

	// Err is the error of the first failed step.
	Err error

	// PerformedSteps lists the names of the steps that ran.
	PerformedSteps []string
}

// NewJob creates a job for a seed URL.
func NewJob(seed string) *Job {
	return &Job{
		Seed:           seed,
		PerformedSteps: make([]string, 0),
	}
}

// Step defines the interface that all pipeline steps must implement.
// Steps are executed in sequence, with each step receiving the job as
// filled in by previous steps.
//
// Design decision: We use an interface rather than function types because:
// 1. It allows steps to carry configuration state
// 2. It provides a Name() method for logging and debugging
type Step interface {
	// Do executes the pipeline step.
	// Returns an error if the step fails; the pipeline records it in the job.
	Do(ctx context.Context, job *Job) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline orchestrates the execution of multiple steps.
// It maintains a list of steps and executes them in order.
type Pipeline struct {
	// steps contains the ordered list of steps to execute.
	steps []Step

	// logger is used for structured logging during execution.
	logger *slog.Logger

	// continueOnError determines whether to continue executing steps
	// after one fails. If false, the pipeline stops on first error.
	continueOnError bool
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError configures the pipeline to continue execution
// even when a step fails. Failed steps are logged and the first error is
// recorded in the job, but subsequent steps still execute.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// New creates a new Pipeline with the given options.
// Steps should be added using AddStep after creation.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// AddStep appends a step to the pipeline.
// Steps are executed in the order they are added.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all pipeline steps in sequence.
//
// Design decision: We check ctx before each step rather than during,
// because steps handle cancellation themselves. A crawl that is stopped
// still leaves its partial export in the job; later steps are skipped.
//
// Returns the first error encountered if continueOnError is false,
// or nil if all steps complete (errors are recorded in the job).
func (p *Pipeline) Execute(ctx context.Context, job *Job) error {
	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"seed", job.Seed,
				"reason", err,
			)
			return err
		}

		p.logger.Debug("executing step",
			"step", step.Name(),
			"seed", job.Seed,
		)

		if err := step.Do(ctx, job); err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"seed", job.Seed,
				"error", err,
			)

			if job.Err == nil {
				job.Err = err
			}
			if !p.continueOnError {
				return err
			}
		}

		job.PerformedSteps = append(job.PerformedSteps, step.Name())
	}

	return nil
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
