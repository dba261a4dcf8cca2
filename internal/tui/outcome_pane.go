package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/aristath/deadline/internal/scheduler"
)

// OutcomePaneModel lists completed and expired tasks with an overall bar.
type OutcomePaneModel struct {
	completed []scheduler.Task
	expired   []scheduler.Task
	total     int
	width     int
	height    int
	focused   bool
}

// NewOutcomePaneModel creates a new outcome pane model.
func NewOutcomePaneModel() OutcomePaneModel {
	return OutcomePaneModel{}
}

// Update handles messages for the outcome pane.
func (m OutcomePaneModel) Update(msg tea.Msg) (OutcomePaneModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case reportMsg:
		m.completed = msg.Completed
		m.expired = msg.Expired
		m.total = len(msg.Completed) + len(msg.Expired) + len(msg.Pending)
		if msg.Current != nil {
			m.total++
		}
	}
	return m, nil
}

// View renders the outcome pane.
func (m OutcomePaneModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	var b strings.Builder

	title := titleStyle.Render("Outcomes")
	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(strings.Repeat("=", lipgloss.Width(title)))
	b.WriteString("\n\n")

	if m.total > 0 {
		barWidth := min(m.width-4, 40)
		completedWidth := (len(m.completed) * barWidth) / m.total
		expiredWidth := (len(m.expired) * barWidth) / m.total
		openWidth := barWidth - completedWidth - expiredWidth

		bar := completeStyle.Render(strings.Repeat("=", max(0, completedWidth)))
		bar += expiredStyle.Render(strings.Repeat("!", max(0, expiredWidth)))
		bar += mutedStyle.Render(strings.Repeat(".", max(0, openWidth)))
		fmt.Fprintf(&b, "[%s]  %d/%d\n\n", bar, len(m.completed)+len(m.expired), m.total)
	}

	fmt.Fprintf(&b, "Completed (%d):\n", len(m.completed))
	for _, t := range m.completed {
		fmt.Fprintf(&b, "  %s %s +%d\n", completeStyle.Render("✓"), t.ID, t.Value)
	}

	fmt.Fprintf(&b, "\nExpired (%d):\n", len(m.expired))
	for _, t := range m.expired {
		fmt.Fprintf(&b, "  %s %s (deadline %d)\n", expiredStyle.Render("✗"), t.ID, t.Deadline)
	}

	return paneStyle(m.focused, m.width, m.height).Render(b.String())
}

// SetSize updates the pane dimensions.
func (m *OutcomePaneModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// SetFocused updates the focus state.
func (m *OutcomePaneModel) SetFocused(focused bool) {
	m.focused = focused
}
