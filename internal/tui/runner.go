package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nao1215/sitescrape/internal/crawler"
	"github.com/nao1215/sitescrape/internal/session"
)

// Runner wires a session to the shell program.
type Runner struct {
	program *tea.Program
	session *session.Session
}

// NewRunner creates a shell that crawls with fetcher. Session options are
// applied after the runner's own progress hook.
func NewRunner(fetcher crawler.Fetcher, savePath string, opts ...session.Option) *Runner {
	r := &Runner{}

	opts = append([]session.Option{session.WithProgress(r.sendProgress)}, opts...)
	r.session = session.New(fetcher, opts...)
	r.program = tea.NewProgram(NewModel(r.session, savePath))

	return r
}

// Run starts the shell and blocks until the user quits. An active crawl
// is stopped and waited for before Run returns.
func (r *Runner) Run() error {
	_, err := r.program.Run()
	r.session.Stop()
	_ = r.session.Wait() //nolint:errcheck // the shell already showed the error
	return err
}

// Session returns the session driven by the shell.
func (r *Runner) Session() *session.Session {
	return r.session
}

// sendProgress forwards crawl progress to the program.
func (r *Runner) sendProgress(p session.Progress) {
	if r.program == nil {
		return
	}
	r.program.Send(PageMsg{URL: p.URL, Pages: p.Pages})
}
