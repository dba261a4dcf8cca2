package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/aristath/deadline/internal/scheduler"
)

// QueuePaneModel shows the clock, the execution slot and the ready set.
type QueuePaneModel struct {
	report  scheduler.Report
	width   int
	height  int
	focused bool
}

// NewQueuePaneModel creates a new queue pane model.
func NewQueuePaneModel() QueuePaneModel {
	return QueuePaneModel{}
}

// Update handles messages for the queue pane.
func (m QueuePaneModel) Update(msg tea.Msg) (QueuePaneModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case reportMsg:
		m.report = scheduler.Report(msg)
	}
	return m, nil
}

// View renders the queue pane.
func (m QueuePaneModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	var b strings.Builder

	title := titleStyle.Render("Executor")
	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(strings.Repeat("=", lipgloss.Width(title)))
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "Time:  %d\n", m.report.Now)
	fmt.Fprintf(&b, "State: %s\n", stateStyle(m.report.State).Render(m.report.State.String()))
	fmt.Fprintf(&b, "Value: %d\n\n", m.report.TotalValue)

	b.WriteString("Current:\n")
	if cur := m.report.Current; cur != nil {
		fmt.Fprintf(&b, "  %s %s\n", runningStyle.Render("●"), cur.ID)
		b.WriteString("  " + progressBar(cur.TimeWorked, cur.Duration, min(m.width-8, 30)) + "\n")
		fmt.Fprintf(&b, "  deadline %d\n", cur.Deadline)
	} else {
		b.WriteString(mutedStyle.Render("  none") + "\n")
	}

	fmt.Fprintf(&b, "\nReady (%d):\n", len(m.report.Pending))
	if len(m.report.Pending) == 0 {
		b.WriteString(mutedStyle.Render("  empty") + "\n")
	}
	for _, t := range m.report.Pending {
		fmt.Fprintf(&b, "  %s %-10s d=%-4d dur=%-3d v=%d\n",
			mutedStyle.Render("○"), t.ID, t.Deadline, t.Duration, t.Value)
	}

	return paneStyle(m.focused, m.width, m.height).Render(b.String())
}

// SetSize updates the pane dimensions.
func (m *QueuePaneModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// SetFocused updates the focus state.
func (m *QueuePaneModel) SetFocused(focused bool) {
	m.focused = focused
}

func progressBar(done, total, width int) string {
	if total <= 0 || width <= 0 {
		return ""
	}
	filled := (done * width) / total
	bar := completeStyle.Render(strings.Repeat("=", max(0, filled)))
	bar += mutedStyle.Render(strings.Repeat(".", max(0, width-filled)))
	return fmt.Sprintf("[%s] %d/%d", bar, done, total)
}
