package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/medreport/internal/core/domain"
)

// Palette for terminal output.
var (
	colourMuted    = lipgloss.Color("#6C7086")
	colourPrimary  = lipgloss.Color("#7C3AED")
	colourNormal   = lipgloss.Color("#A6E3A1")
	colourLow      = lipgloss.Color("#94E2D5")
	colourMedium   = lipgloss.Color("#F9E2AF")
	colourHigh     = lipgloss.Color("#FAB387")
	colourCritical = lipgloss.Color("#F38BA8")
	colourBadgeInk = lipgloss.Color("#1E1E2E")
)

// printer formats human output, styled only when writing to a terminal.
type printer struct {
	styled bool
}

func (p printer) title(s string) string {
	if !p.styled {
		return s + "\n" + strings.Repeat("=", len([]rune(s)))
	}
	return lipgloss.NewStyle().Bold(true).Foreground(colourPrimary).Render(s)
}

func (p printer) heading(s string) string {
	if !p.styled {
		return "[" + s + "]"
	}
	return lipgloss.NewStyle().Bold(true).Render(s)
}

func (p printer) muted(s string) string {
	if !p.styled {
		return s
	}
	return lipgloss.NewStyle().Foreground(colourMuted).Render(s)
}

// badge renders a severity as a coloured label, or as "[LEVEL]" in plain output.
func (p printer) badge(sev domain.Severity) string {
	label := strings.ToUpper(sev.String())
	if !p.styled {
		return "[" + label + "]"
	}
	return lipgloss.NewStyle().
		Bold(true).
		Padding(0, 1).
		Foreground(colourBadgeInk).
		Background(severityColour(sev)).
		Render(label)
}

func severityColour(sev domain.Severity) lipgloss.Color {
	switch sev {
	case domain.SeverityNormal:
		return colourNormal
	case domain.SeverityLow:
		return colourLow
	case domain.SeverityMedium:
		return colourMedium
	case domain.SeverityHigh:
		return colourHigh
	case domain.SeverityCritical:
		return colourCritical
	default:
		return colourMuted
	}
}
