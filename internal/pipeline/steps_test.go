package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/nao1215/sitescrape/internal/model"
)

type runnerFunc func(ctx context.Context, seed string) (*model.Export, error)

func (f runnerFunc) Run(ctx context.Context, seed string) (*model.Export, error) {
	return f(ctx, seed)
}

type memoryArchive struct {
	saved []*model.Export
	err   error
}

func (m *memoryArchive) SaveExport(_ context.Context, export *model.Export) error {
	if m.err != nil {
		return m.err
	}
	m.saved = append(m.saved, export)
	return nil
}

func fakeRunner() Runner {
	return runnerFunc(func(_ context.Context, seed string) (*model.Export, error) {
		export := model.NewExport("https://"+seed, "https://"+seed)
		export.AddPage("https://"+seed, "text")
		export.Finish(false)
		return export, nil
	})
}

func TestCrawlStep(t *testing.T) {
	t.Parallel()

	t.Run("stores export", func(t *testing.T) {
		t.Parallel()

		job := NewJob("example.com")
		if err := NewCrawlStep(fakeRunner()).Do(context.Background(), job); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if job.Export == nil || job.Export.Seed != "https://example.com" {
			t.Errorf("unexpected export: %+v", job.Export)
		}
	})

	t.Run("propagates crawl error", func(t *testing.T) {
		t.Parallel()

		failure := errors.New("seed down")
		step := NewCrawlStep(runnerFunc(func(context.Context, string) (*model.Export, error) {
			return nil, failure
		}))

		job := NewJob("example.com")
		if err := step.Do(context.Background(), job); !errors.Is(err, failure) {
			t.Errorf("expected crawl error, got %v", err)
		}
		if job.Export != nil {
			t.Error("expected no export")
		}
	})
}

func TestArchiveStep(t *testing.T) {
	t.Parallel()

	t.Run("saves export", func(t *testing.T) {
		t.Parallel()

		archive := &memoryArchive{}
		p := New(WithLogger(quietLogger()))
		p.AddSteps(NewCrawlStep(fakeRunner()), NewArchiveStep(archive, WithArchiveLogger(quietLogger())))

		job := NewJob("example.com")
		if err := p.Execute(context.Background(), job); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(archive.saved) != 1 || archive.saved[0] != job.Export {
			t.Errorf("expected export to be archived, got %v", archive.saved)
		}
	})

	t.Run("no export", func(t *testing.T) {
		t.Parallel()

		err := NewArchiveStep(&memoryArchive{}).Do(context.Background(), NewJob("example.com"))
		if !errors.Is(err, ErrNoExport) {
			t.Errorf("expected ErrNoExport, got %v", err)
		}
	})

	t.Run("archive failure keeps export", func(t *testing.T) {
		t.Parallel()

		dbErr := errors.New("disk full")
		p := New(WithLogger(quietLogger()))
		p.AddSteps(NewCrawlStep(fakeRunner()), NewArchiveStep(&memoryArchive{err: dbErr}))

		job := NewJob("example.com")
		if err := p.Execute(context.Background(), job); !errors.Is(err, dbErr) {
			t.Errorf("expected archive error, got %v", err)
		}
		if job.Export == nil {
			t.Error("export must survive an archive failure")
		}
	})
}
