package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/medreport/internal/core/domain"
)

func TestPrinter_Plain(t *testing.T) {
	p := printer{}

	assert.Equal(t, "Summary\n=======", p.title("Summary"))
	assert.Equal(t, "[Findings]", p.heading("Findings"))
	assert.Equal(t, "note", p.muted("note"))
	assert.Equal(t, "[CRITICAL]", p.badge(domain.SeverityCritical))
}

func TestPrinter_StyledKeepsText(t *testing.T) {
	p := printer{styled: true}

	assert.Contains(t, p.badge(domain.SeverityHigh), "HIGH")
	assert.Contains(t, p.title("Summary"), "Summary")
}

func TestSeverityColour(t *testing.T) {
	seen := map[string]bool{}
	for _, sev := range domain.AllSeverities() {
		c := severityColour(sev)
		assert.NotEqual(t, colourMuted, c, sev)
		seen[string(c)] = true
	}
	assert.Len(t, seen, len(domain.AllSeverities()))
	assert.Equal(t, colourMuted, severityColour(domain.Severity("unknown")))
}

func TestRunWithSpinner_NonTerminal(t *testing.T) {
	var ran bool
	err := runWithSpinner(context.Background(), new(bytes.Buffer), "working", func(context.Context) error {
		ran = true
		return errors.New("boom")
	})

	assert.True(t, ran)
	assert.EqualError(t, err, "boom")
}

func TestSpinnerModel_Update(t *testing.T) {
	var cancelled bool
	m := newSpinnerModel("Analysing", func() error { return nil }, func() { cancelled = true })
	assert.Contains(t, m.View(), "Analysing")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.Nil(t, cmd)
	assert.True(t, cancelled)
	assert.Contains(t, next.View(), "cancelling...")

	next, cmd = next.Update(workDoneMsg{err: context.Canceled})
	require.NotNil(t, cmd)
	final := next.(spinnerModel)
	assert.True(t, final.done)
	assert.ErrorIs(t, final.err, context.Canceled)
	assert.Empty(t, final.View())
}
