package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	Subtle = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))

	StatusRunning   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ff88"))
	StatusPaused    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffaa00"))
	StatusRecording = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ff4444")).Blink(true)

	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(lipgloss.Color("#444466")).
			MarginBottom(1)

	capFull = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444"))
	capNear = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffcc00"))
)

// ProgressBar shows how close the population is to the spawn cap. It turns
// yellow past 40% and red past 80%; below that it uses the theme accent.
func ProgressBar(fraction float64, width int) string {
	filled := int(fraction * float64(width))
	filled = max(0, min(filled, width))
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)

	switch {
	case fraction > 0.8:
		return capFull.Render(bar)
	case fraction > 0.4:
		return capNear.Render(bar)
	}
	return lipgloss.NewStyle().Foreground(CurrentTheme.Accent).Render(bar)
}
