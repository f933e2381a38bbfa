package cli

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"clockedin/internal/stats"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	mutedStyle    = lipgloss.NewStyle().Faint(true)
	accentStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	barFillStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	barEmptyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	dayOnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	dayOffStyle   = lipgloss.NewStyle().Faint(true)
)

// progressBar draws percent (0-100) as a bar of width cells.
func progressBar(percent float64, width int) string {
	if width <= 0 {
		width = 24
	}
	filled := int(math.Round(percent / 100 * float64(width)))
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}
	return barFillStyle.Render(strings.Repeat("█", filled)) +
		barEmptyStyle.Render(strings.Repeat("░", width-filled))
}

// formatHours renders minutes as hours with one decimal, e.g. "1.5h".
func formatHours(minutes int) string {
	return fmt.Sprintf("%.1fh", float64(minutes)/60)
}

func formatGoal(goal float64) string {
	if goal <= 0 {
		return "no goal"
	}
	return fmt.Sprintf("%gh/week", goal)
}

// weekStrip renders the Monday to Sunday activity row.
func weekStrip(days []stats.DayMark) string {
	cells := make([]string, len(days))
	for i, d := range days {
		if d.Active {
			cells[i] = dayOnStyle.Render(d.Label)
		} else {
			cells[i] = dayOffStyle.Render(d.Label)
		}
	}
	return strings.Join(cells, " ")
}
