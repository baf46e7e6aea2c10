package tui

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nao1215/sitescrape/internal/model"
)

// DefaultSaveFile is the file the export is saved to when no other name
// is configured.
const DefaultSaveFile = "site.txt"

// maxProgressLines is how many "extracting" lines stay on screen.
const maxProgressLines = 10

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			MarginBottom(1)

	successStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42"))

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	highlightStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
)

// State is the phase the shell is in.
type State int

const (
	// StateInput waits for a site URL.
	StateInput State = iota
	// StateRunning shows progress of the active crawl.
	StateRunning
	// StateStopping waits for a cancelled crawl to finish its current page.
	StateStopping
	// StateDone shows the summary of a completed or cancelled crawl.
	StateDone
	// StateFailed shows why the crawl could not run.
	StateFailed
)

// Controller starts and stops crawl runs. *session.Session implements it.
type Controller interface {
	Start(seed string) error
	Stop()
	Wait() error
	Export() *model.Export
}

// PageMsg is sent after every processed page of the active run.
type PageMsg struct {
	URL   string
	Pages int
}

// DoneMsg is sent when the active run has finished.
type DoneMsg struct {
	Err error
}

// SavedMsg is sent when the export has been written to a file.
type SavedMsg struct {
	Path string
	Err  error
}

// Model is the Bubbletea model of the interactive shell.
type Model struct {
	ctrl     Controller
	savePath string

	input   textinput.Model
	spinner spinner.Model

	state    State
	seed     string
	pages    int
	lines    []string
	export   *model.Export
	err      error
	notice   string
	quitting bool
}

// NewModel creates a shell model driving ctrl. An empty savePath selects
// DefaultSaveFile.
func NewModel(ctrl Controller, savePath string) Model {
	if savePath == "" {
		savePath = DefaultSaveFile
	}

	ti := textinput.New()
	ti.Placeholder = "example.com"
	ti.Prompt = "Site URL: "
	ti.CharLimit = 2048
	ti.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))

	return Model{
		ctrl:     ctrl,
		savePath: savePath,
		input:    ti,
		spinner:  s,
		state:    StateInput,
	}
}

// State returns the current phase.
func (m Model) State() State {
	return m.state
}

// Lines returns the progress lines currently on screen.
func (m Model) Lines() []string {
	return m.lines
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if m.state != StateRunning && m.state != StateStopping {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case PageMsg:
		m.pages = msg.Pages
		m.lines = append(m.lines, "Extracting text from: "+msg.URL)
		if len(m.lines) > maxProgressLines {
			m.lines = m.lines[len(m.lines)-maxProgressLines:]
		}
		return m, nil

	case DoneMsg:
		if msg.Err != nil {
			m.state = StateFailed
			m.err = msg.Err
			return m, nil
		}
		m.state = StateDone
		m.export = m.ctrl.Export()
		return m, nil

	case SavedMsg:
		if msg.Err != nil {
			m.notice = errorStyle.Render(fmt.Sprintf("✗ Save failed: %v", msg.Err))
		} else {
			m.notice = successStyle.Render("✓ Saved to " + msg.Path)
		}
		return m, nil
	}

	if m.state == StateInput {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// handleKey dispatches key presses by state. While the URL is being typed
// every printable key goes to the input, so single-letter bindings only
// apply in the other states.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m.quit()
	}

	switch m.state {
	case StateInput:
		switch msg.String() {
		case "enter":
			return m.start()
		case "esc":
			return m.quit()
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd

	case StateRunning:
		switch msg.String() {
		case "esc", "x":
			m.ctrl.Stop()
			m.state = StateStopping
		case "q":
			return m.quit()
		}

	case StateStopping:
		if msg.String() == "q" {
			return m.quit()
		}

	case StateDone, StateFailed:
		switch msg.String() {
		case "s":
			if m.export == nil {
				return m, nil
			}
			return m, saveExport(m.savePath, m.export.Bytes())
		case "n":
			return m.reset()
		case "q", "esc":
			return m.quit()
		}
	}

	return m, nil
}

// start begins a crawl of the typed URL.
func (m Model) start() (tea.Model, tea.Cmd) {
	seed := strings.TrimSpace(m.input.Value())
	if err := m.ctrl.Start(seed); err != nil {
		m.notice = errorStyle.Render(fmt.Sprintf("✗ %v", err))
		return m, nil
	}

	m.seed = seed
	m.state = StateRunning
	m.pages = 0
	m.lines = nil
	m.export = nil
	m.err = nil
	m.notice = ""
	m.input.Blur()

	return m, tea.Batch(m.spinner.Tick, waitForRun(m.ctrl))
}

// reset returns to the input state with an empty URL field.
func (m Model) reset() (tea.Model, tea.Cmd) {
	m.state = StateInput
	m.lines = nil
	m.notice = ""
	m.err = nil
	m.input.SetValue("")
	return m, m.input.Focus()
}

// quit stops any active run and exits the program.
func (m Model) quit() (tea.Model, tea.Cmd) {
	if m.state == StateRunning {
		m.ctrl.Stop()
	}
	m.quitting = true
	return m, tea.Quit
}

// waitForRun blocks until the active run has finished.
func waitForRun(ctrl Controller) tea.Cmd {
	return func() tea.Msg {
		return DoneMsg{Err: ctrl.Wait()}
	}
}

// saveExport writes the export bytes to path.
func saveExport(path string, data []byte) tea.Cmd {
	return func() tea.Msg {
		if err := os.WriteFile(path, data, 0o600); err != nil {
			return SavedMsg{Path: path, Err: err}
		}
		return SavedMsg{Path: path}
	}
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("Website Scraper"))
	b.WriteString("\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.input.View())
		b.WriteString("\n")

	case StateRunning, StateStopping:
		b.WriteString(highlightStyle.Render("Crawling: "))
		b.WriteString(m.seed)
		b.WriteString("\n\n")
		b.WriteString(m.renderLines())
		b.WriteString("\n")
		b.WriteString(m.spinner.View())
		if m.state == StateStopping {
			b.WriteString(warningStyle.Render(" Stopping after the current page..."))
		} else {
			b.WriteString(fmt.Sprintf(" %d pages extracted", m.pages))
		}
		b.WriteString("\n")

	case StateDone:
		b.WriteString(m.renderLines())
		b.WriteString("\n")
		b.WriteString(m.renderSummary())
		b.WriteString("\n")

	case StateFailed:
		b.WriteString(errorStyle.Render(fmt.Sprintf("✗ Error: %v", m.err)))
		b.WriteString("\n")
	}

	if m.notice != "" {
		b.WriteString("\n")
		b.WriteString(m.notice)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.renderHelp())

	return b.String()
}

func (m Model) renderLines() string {
	if len(m.lines) == 0 {
		return dimStyle.Render("waiting for the first page...")
	}
	return dimStyle.Render(strings.Join(m.lines, "\n"))
}

func (m Model) renderSummary() string {
	if m.export == nil {
		return ""
	}

	status := successStyle.Render("✓ Crawl complete")
	if m.export.Cancelled {
		status = warningStyle.Render("■ Crawl stopped")
	}

	var b strings.Builder
	b.WriteString(status)
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Seed:     %s\n", m.export.Seed))
	b.WriteString(fmt.Sprintf("Pages:    %d\n", len(m.export.Pages)))
	b.WriteString(fmt.Sprintf("Skipped:  %d\n", len(m.export.Failures)))
	b.WriteString(fmt.Sprintf("Duration: %s", m.export.Duration().Round(time.Millisecond)))

	return boxStyle.Render(b.String())
}

func (m Model) renderHelp() string {
	var keys []string

	switch m.state {
	case StateInput:
		keys = append(keys, "enter:start", "esc:quit")
	case StateRunning:
		keys = append(keys, "esc:stop", "q:quit")
	case StateStopping:
		keys = append(keys, "q:quit")
	case StateDone:
		keys = append(keys, "s:save to "+m.savePath, "n:new crawl", "q:quit")
	case StateFailed:
		keys = append(keys, "n:new crawl", "q:quit")
	}

	return dimStyle.Render(strings.Join(keys, " • "))
}
