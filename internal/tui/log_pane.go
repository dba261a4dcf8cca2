package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/aristath/deadline/internal/events"
)

const maxLogLines = 1000

// LogPaneModel is a scrolling log of executor decisions.
type LogPaneModel struct {
	lines     []string
	viewport  viewport.Model
	width     int
	height    int
	focused   bool
	updateTag int // for debouncing
}

// NewLogPaneModel creates a new log pane model.
func NewLogPaneModel() LogPaneModel {
	return LogPaneModel{
		viewport: viewport.New(0, 0),
	}
}

// flushMsg is used for debouncing viewport updates.
type flushMsg struct {
	tag int
}

// Update handles messages for the log pane.
func (m LogPaneModel) Update(msg tea.Msg) (LogPaneModel, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if !m.focused {
			break
		}
		// The viewport keymap covers j/k, arrows and paging.
		m.viewport, cmd = m.viewport.Update(msg)

	case events.Event:
		m.lines = append(m.lines, FormatEvent(msg))
		if len(m.lines) > maxLogLines {
			m.lines = m.lines[len(m.lines)-maxLogLines:]
		}
		m.updateTag++
		tag := m.updateTag
		return m, tea.Tick(50*time.Millisecond, func(time.Time) tea.Msg {
			return flushMsg{tag: tag}
		})

	case flushMsg:
		// Only the latest burst refreshes the viewport.
		if msg.tag == m.updateTag {
			m.updateViewportContent()
		}
	}

	return m, cmd
}

// View renders the log pane.
func (m LogPaneModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	title := titleStyle.Render("Decisions")
	content := lipgloss.JoinVertical(lipgloss.Left, title, m.viewport.View())

	return paneStyle(m.focused, m.width, m.height).Render(content)
}

// Lines returns the buffered log lines.
func (m LogPaneModel) Lines() []string {
	return m.lines
}

// FormatEvent renders one event as a log line.
func FormatEvent(ev events.Event) string {
	prefix := fmt.Sprintf("[t=%3d] ", ev.At())
	switch e := ev.(type) {
	case events.TaskAdmittedEvent:
		return prefix + fmt.Sprintf("added %s duration=%d deadline=%d value=%d", e.ID, e.Duration, e.Deadline, e.Value)
	case events.TaskSelectedEvent:
		return prefix + fmt.Sprintf("selected %s (%d+%d <= %d)", e.ID, e.Time, e.Duration, e.Deadline)
	case events.TaskExpiredEvent:
		return prefix + expiredStyle.Render(fmt.Sprintf("expired %s (%d+%d > %d)", e.ID, e.Time, e.Duration, e.Deadline))
	case events.TaskWorkedEvent:
		return prefix + fmt.Sprintf("working %s %d/%d", e.ID, e.TimeWorked, e.Duration)
	case events.TaskCompletedEvent:
		return prefix + completeStyle.Render(fmt.Sprintf("completed %s +%d (total %d)", e.ID, e.Value, e.TotalValue))
	case events.TaskUndoneEvent:
		if e.Stale {
			return prefix + fmt.Sprintf("undo of %s already superseded", e.ID)
		}
		return prefix + fmt.Sprintf("undo: %s back to ready", e.ID)
	case events.ClockTickEvent:
		return prefix + mutedStyle.Render(fmt.Sprintf("tick -> %d", e.Time))
	}
	return prefix + ev.EventType()
}

func (m *LogPaneModel) updateViewportContent() {
	if len(m.lines) == 0 {
		m.viewport.SetContent("No decisions yet.")
		return
	}
	m.viewport.SetContent(strings.Join(m.lines, "\n"))
	m.viewport.GotoBottom()
}

// SetSize updates the pane dimensions.
func (m *LogPaneModel) SetSize(w, h int) {
	m.width = w
	m.height = h

	m.viewport.Width = max(w-4, 10)
	m.viewport.Height = max(h-4, 3)
}

// SetFocused updates the focus state.
func (m *LogPaneModel) SetFocused(focused bool) {
	m.focused = focused
}
