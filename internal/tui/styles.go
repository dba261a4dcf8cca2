package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/aristath/deadline/internal/scheduler"
)

// Palette, in ANSI 256 codes.
const (
	colorAccent  = lipgloss.Color("62")
	colorBorder  = lipgloss.Color("240")
	colorHint    = lipgloss.Color("241")
	colorWorking = lipgloss.Color("214")
	colorEarned  = lipgloss.Color("42")
	colorMissed  = lipgloss.Color("196")
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	helpStyle  = lipgloss.NewStyle().Foreground(colorHint)
	errorStyle = lipgloss.NewStyle().Foreground(colorMissed).Bold(true)

	runningStyle  = lipgloss.NewStyle().Foreground(colorWorking).Bold(true)
	completeStyle = lipgloss.NewStyle().Foreground(colorEarned).Bold(true)
	expiredStyle  = lipgloss.NewStyle().Foreground(colorMissed).Bold(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(colorBorder)

	paneBorder = lipgloss.NewStyle().Border(lipgloss.RoundedBorder())
)

// paneStyle frames a pane of the given outer size, highlighting the focused one.
func paneStyle(focused bool, width, height int) lipgloss.Style {
	border := colorBorder
	if focused {
		border = colorAccent
	}
	return paneBorder.
		BorderForeground(border).
		Width(width - 2).
		Height(height - 2)
}

func stateStyle(s scheduler.State) lipgloss.Style {
	switch s {
	case scheduler.StateExecuting:
		return runningStyle
	case scheduler.StateDrained:
		return completeStyle
	default:
		return mutedStyle
	}
}
