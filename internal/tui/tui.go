// Package tui renders dry-run progress with a spinner and prints the
// resulting change summary once the in-memory application finishes.
package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Change describes one file touched by a patch set. Status is a single
// letter in git convention: A added, M modified, D deleted, R renamed.
type Change struct {
	Status string
	Path   string
}

// Summary is the outcome of a successful dry run.
type Summary struct {
	Changes []Change
}

type summaryMsg struct{ summary Summary }
type errorMsg struct{ err error }

type state int

const (
	stateApplying state = iota
	stateSummary
	stateError
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	addStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("70"))
	modStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	delStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	renStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("33"))
	errStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

type model struct {
	run     func() (Summary, error)
	spin    spinner.Model
	state   state
	summary Summary
	err     error
}

func newModel(run func() (Summary, error)) *model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))
	return &model{run: run, spin: sp}
}

func runApply(run func() (Summary, error)) tea.Cmd {
	return func() tea.Msg {
		summary, err := run()
		if err != nil {
			return errorMsg{err: err}
		}
		return summaryMsg{summary: summary}
	}
}

func (m *model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, runApply(m.run))
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	case summaryMsg:
		m.state = stateSummary
		m.summary = msg.summary
		return m, tea.Quit
	case errorMsg:
		m.state = stateError
		m.err = msg.err
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *model) View() string {
	switch m.state {
	case stateSummary:
		return renderSummary(m.summary) + "\n"
	case stateError:
		return errStyle.Render("dry run failed") + "\n" + m.err.Error() + "\n"
	default:
		return m.spin.View() + " applying patches (dry run)…\n"
	}
}

func statusStyle(status string) lipgloss.Style {
	switch status {
	case "A":
		return addStyle
	case "D":
		return delStyle
	case "R":
		return renStyle
	default:
		return modStyle
	}
}

func renderSummary(summary Summary) string {
	var out strings.Builder
	out.WriteString(headerStyle.Render("Dry run: all patches apply cleanly"))
	out.WriteString("\n")
	if len(summary.Changes) == 0 {
		out.WriteString(dimStyle.Render("no files affected"))
		return out.String()
	}
	for _, change := range summary.Changes {
		out.WriteString(statusStyle(change.Status).Render(change.Status))
		out.WriteString(" ")
		out.WriteString(change.Path)
		out.WriteString("\n")
	}
	return strings.TrimRight(out.String(), "\n")
}

// Run executes the dry-run function under a spinner and returns its result
// once the program exits. The run callback executes off the UI goroutine.
func Run(run func() (Summary, error)) (Summary, error) {
	// Avoid OSC background color queries contaminating stdin.
	lipgloss.SetColorProfile(termenv.ColorProfile())
	lipgloss.SetHasDarkBackground(true)

	final, err := tea.NewProgram(newModel(run)).Run()
	if err != nil {
		return Summary{}, err
	}
	m := final.(*model)
	if m.err != nil {
		return Summary{}, m.err
	}
	return m.summary, nil
}
