package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// workDoneMsg reports that the background work finished.
type workDoneMsg struct {
	err error
}

// spinnerModel shows a spinner until its work completes.
// Ctrl+C cancels the work and waits for it to return.
type spinnerModel struct {
	spinner spinner.Model
	label   string
	work    func() error
	cancel  context.CancelFunc
	err     error
	done    bool
}

func newSpinnerModel(label string, work func() error, cancel context.CancelFunc) spinnerModel {
	s := spinner.New(spinner.WithSpinner(spinner.Dot))
	s.Style = s.Style.Foreground(colourPrimary)
	return spinnerModel{
		spinner: s,
		label:   label,
		work:    work,
		cancel:  cancel,
	}
}

func (m spinnerModel) Init() tea.Cmd {
	work := m.work
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		return workDoneMsg{err: work()}
	})
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case workDoneMsg:
		m.err = msg.err
		m.done = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC && m.cancel != nil {
			m.cancel()
			m.label = "cancelling..."
		}
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m spinnerModel) View() string {
	if m.done {
		return ""
	}
	return m.spinner.View() + " " + m.label + "\n"
}

// runWithSpinner runs work, showing a spinner on interactive terminals.
func runWithSpinner(ctx context.Context, out io.Writer, label string, work func(ctx context.Context) error) error {
	if !isTerminal(out) {
		return work(ctx)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := newSpinnerModel(label, func() error { return work(ctx) }, cancel)
	final, err := tea.NewProgram(model, tea.WithOutput(out)).Run()
	if err != nil {
		return err
	}
	return final.(spinnerModel).err
}
