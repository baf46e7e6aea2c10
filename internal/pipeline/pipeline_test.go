package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"testing"
)

// mockStep is a test helper that implements the Step interface.
type mockStep struct {
	name      string
	doFunc    func(ctx context.Context, job *Job) error
	callCount int
}

// Do implements Step.Do.
func (m *mockStep) Do(ctx context.Context, job *Job) error {
	m.callCount++
	if m.doFunc != nil {
		return m.doFunc(ctx, job)
	}
	return nil
}

// Name implements Step.Name.
func (m *mockStep) Name() string {
	return m.name
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPipelineNew(t *testing.T) {
	t.Parallel()

	p := New()
	if p.StepCount() != 0 {
		t.Errorf("expected 0 steps, got %d", p.StepCount())
	}
	if p.continueOnError {
		t.Error("expected stop-on-error by default")
	}

	p = New(WithContinueOnError(true), WithLogger(quietLogger()))
	if !p.continueOnError {
		t.Error("expected continueOnError to be true")
	}
}

func TestPipelineSteps(t *testing.T) {
	t.Parallel()

	p := New()
	p.AddStep(&mockStep{name: "crawl"})
	p.AddSteps(&mockStep{name: "archive"}, &mockStep{name: "notify"})

	if p.StepCount() != 3 {
		t.Errorf("expected 3 steps, got %d", p.StepCount())
	}
	want := []string{"crawl", "archive", "notify"}
	if !slices.Equal(p.StepNames(), want) {
		t.Errorf("expected %v, got %v", want, p.StepNames())
	}
}

func TestPipelineExecute(t *testing.T) {
	t.Parallel()

	t.Run("runs all steps in order", func(t *testing.T) {
		t.Parallel()

		var order []string
		record := func(name string) *mockStep {
			return &mockStep{name: name, doFunc: func(context.Context, *Job) error {
				order = append(order, name)
				return nil
			}}
		}

		p := New(WithLogger(quietLogger()))
		p.AddSteps(record("a"), record("b"))

		job := NewJob("example.com")
		if err := p.Execute(context.Background(), job); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !slices.Equal(order, []string{"a", "b"}) {
			t.Errorf("unexpected order %v", order)
		}
		if !slices.Equal(job.PerformedSteps, []string{"a", "b"}) {
			t.Errorf("unexpected performed steps %v", job.PerformedSteps)
		}
	})

	t.Run("stops on first error", func(t *testing.T) {
		t.Parallel()

		failure := errors.New("boom")
		second := &mockStep{name: "second"}

		p := New(WithLogger(quietLogger()))
		p.AddSteps(&mockStep{name: "first", doFunc: func(context.Context, *Job) error { return failure }}, second)

		job := NewJob("example.com")
		if err := p.Execute(context.Background(), job); !errors.Is(err, failure) {
			t.Errorf("expected step error, got %v", err)
		}
		if second.callCount != 0 {
			t.Error("second step must not run")
		}
		if !errors.Is(job.Err, failure) {
			t.Errorf("expected error recorded in job, got %v", job.Err)
		}
	})

	t.Run("continue on error keeps first error", func(t *testing.T) {
		t.Parallel()

		first := errors.New("first")
		second := errors.New("second")

		p := New(WithLogger(quietLogger()), WithContinueOnError(true))
		p.AddSteps(
			&mockStep{name: "a", doFunc: func(context.Context, *Job) error { return first }},
			&mockStep{name: "b", doFunc: func(context.Context, *Job) error { return second }},
		)

		job := NewJob("example.com")
		if err := p.Execute(context.Background(), job); err != nil {
			t.Errorf("expected nil, got %v", err)
		}
		if !errors.Is(job.Err, first) {
			t.Errorf("expected first error, got %v", job.Err)
		}
		if len(job.PerformedSteps) != 2 {
			t.Errorf("expected both steps to run, got %v", job.PerformedSteps)
		}
	})

	t.Run("cancellation between steps", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		second := &mockStep{name: "second"}

		p := New(WithLogger(quietLogger()))
		p.AddSteps(&mockStep{name: "first", doFunc: func(context.Context, *Job) error {
			cancel()
			return nil
		}}, second)

		if err := p.Execute(ctx, NewJob("example.com")); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if second.callCount != 0 {
			t.Error("second step must not run after cancellation")
		}
	})
}
