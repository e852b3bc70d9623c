package output

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Interactive reports whether w is a terminal.
func Interactive(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// RunWithSpinner runs fn while a spinner labelled message animates on w.
// When w is not a terminal fn runs without any spinner output. The
// spinner never reads input.
func RunWithSpinner(ctx context.Context, w io.Writer, message string, fn func(context.Context) error) error {
	if !Interactive(w) {
		return fn(ctx)
	}

	p := tea.NewProgram(newSpinnerModel(message), tea.WithOutput(w), tea.WithInput(nil))

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		// Spinner failures never fail the analysis.
		_, _ = p.Run()
	}()

	err := fn(ctx)

	p.Send(spinnerDoneMsg{err: err})
	<-stopped
	return err
}

// spinnerModel animates while the analysis runs and settles on a
// one-line outcome with the elapsed time.
type spinnerModel struct {
	spinner spinner.Model
	label   string
	started time.Time
	elapsed time.Duration
	done    bool
	failed  bool
}

type spinnerDoneMsg struct {
	err error
}

func newSpinnerModel(label string) *spinnerModel {
	s := spinner.New()
	s.Spinner = spinner.MiniDot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	return &spinnerModel{
		spinner: s,
		label:   label,
		started: time.Now(),
	}
}

func (m *spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m *spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinnerDoneMsg:
		m.done = true
		m.failed = msg.err != nil
		m.elapsed = time.Since(m.started)
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *spinnerModel) View() string {
	if !m.done {
		return fmt.Sprintf("%s %s...", m.spinner.View(), m.label)
	}
	icon := "✅"
	if m.failed {
		icon = "❌"
	}
	return fmt.Sprintf("%s %s (%s)\n", icon, m.label, m.elapsed.Round(time.Millisecond))
}
