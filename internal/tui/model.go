package tui

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/aristath/deadline/internal/events"
	"github.com/aristath/deadline/internal/scheduler"
)

// PaneID identifies which pane is focused.
type PaneID int

const (
	PaneQueue PaneID = iota
	PaneOutcome
	PaneLog
	paneCount
)

// reportMsg carries a fresh executor report to the panes.
type reportMsg scheduler.Report

// Model is the root Bubble Tea model for the TUI.
type Model struct {
	exec        *scheduler.Executor
	queuePane   QueuePaneModel
	outcomePane OutcomePaneModel
	logPane     LogPaneModel
	formPane    FormPaneModel
	focusedPane PaneID
	eventSub    <-chan events.Event
	status      string
	width       int
	height      int
	quitting    bool
	showForm    bool
}

// New creates a new TUI model driving exec.
// It subscribes to all events from the event bus using SubscribeAll.
func New(exec *scheduler.Executor, eventBus *events.EventBus, bufSize int) Model {
	m := Model{
		exec:        exec,
		queuePane:   NewQueuePaneModel(),
		outcomePane: NewOutcomePaneModel(),
		logPane:     NewLogPaneModel(),
		formPane:    NewFormPaneModel(exec),
		focusedPane: PaneQueue,
		eventSub:    eventBus.SubscribeAll(bufSize),
	}
	m.refresh()
	m.updateFocusStates()
	return m
}

// Init initializes the model and returns the initial command.
func (m Model) Init() tea.Cmd {
	return waitForEvent(m.eventSub)
}

// waitForEvent returns a command that waits for the next event from the event bus.
func waitForEvent(sub <-chan events.Event) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-sub
		if !ok {
			return nil // bus closed
		}
		return event
	}
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		// The form is modal while open.
		if m.showForm {
			var cmd tea.Cmd
			m.formPane, cmd = m.formPane.Update(msg)
			cmds = append(cmds, cmd)

			if !m.formPane.IsVisible() {
				m.showForm = false
				if id := m.formPane.TakeAdded(); id != "" {
					m.status = fmt.Sprintf("added %s", id)
				}
				m.refresh()
			}
			return m, tea.Batch(cmds...)
		}

		switch msg.String() {
		case KeyQuit, KeyCtrlC:
			m.quitting = true
			return m, tea.Quit

		case KeyTick:
			snap := m.exec.Tick()
			m.status = fmt.Sprintf("tick -> time %d", snap.Now)
			m.refresh()

		case KeyRun:
			snap := m.exec.RunToCompletion()
			m.status = fmt.Sprintf("ran to time %d, value %d", snap.Now, snap.TotalValue)
			m.refresh()

		case KeyUndo:
			res, err := m.exec.Undo()
			switch {
			case errors.Is(err, scheduler.ErrNothingToUndo):
				m.status = "nothing to undo"
			case err != nil:
				m.status = err.Error()
			default:
				m.status = "undo: " + res.String()
			}
			m.refresh()

		case KeyAdd:
			m.showForm = true
			m.formPane.SetVisible(true)
			m.formPane.SetSize(m.width, m.height)
			cmds = append(cmds, m.formPane.Init())

		case KeyTab:
			m.focusedPane = (m.focusedPane + 1) % paneCount
			m.updateFocusStates()

		case KeyShiftTab:
			m.focusedPane = (m.focusedPane + paneCount - 1) % paneCount
			m.updateFocusStates()

		default:
			if m.focusedPane == PaneLog {
				var cmd tea.Cmd
				m.logPane, cmd = m.logPane.Update(msg)
				cmds = append(cmds, cmd)
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.computeLayout()
		m.formPane.SetSize(msg.Width, msg.Height)

	case events.Event:
		var cmd tea.Cmd
		m.logPane, cmd = m.logPane.Update(msg)
		cmds = append(cmds, cmd, waitForEvent(m.eventSub))

	case flushMsg:
		var cmd tea.Cmd
		m.logPane, cmd = m.logPane.Update(msg)
		cmds = append(cmds, cmd)

	default:
		if m.showForm {
			var cmd tea.Cmd
			m.formPane, cmd = m.formPane.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	return m, tea.Batch(cmds...)
}

// refresh pushes the executor's current report to the panes.
func (m *Model) refresh() {
	rep := reportMsg(m.exec.Report())
	m.queuePane, _ = m.queuePane.Update(rep)
	m.outcomePane, _ = m.outcomePane.Update(rep)
}

// View renders the TUI.
func (m Model) View() string {
	if m.quitting {
		return "Goodbye!\n"
	}

	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	if m.showForm {
		return m.formPane.View()
	}

	left := m.queuePane.View()
	right := lipgloss.JoinVertical(lipgloss.Left, m.outcomePane.View(), m.logPane.View())
	mainContent := lipgloss.JoinHorizontal(lipgloss.Top, left, right)

	statusBar := helpStyle.Render(m.status)
	return lipgloss.JoinVertical(lipgloss.Left, mainContent, statusBar, HelpView())
}

// Status returns the last action's status line.
func (m Model) Status() string {
	return m.status
}

// computeLayout calculates pane dimensions and updates all child models.
func (m *Model) computeLayout() {
	leftWidth := (m.width * 40) / 100
	rightWidth := m.width - leftWidth
	availableHeight := m.height - 2 // status and help bars
	outcomeHeight := (availableHeight * 40) / 100
	logHeight := availableHeight - outcomeHeight

	m.queuePane.SetSize(leftWidth, availableHeight)
	m.outcomePane.SetSize(rightWidth, outcomeHeight)
	m.logPane.SetSize(rightWidth, logHeight)

	m.updateFocusStates()
}

// updateFocusStates updates the focus state of all panes.
func (m *Model) updateFocusStates() {
	m.queuePane.SetFocused(m.focusedPane == PaneQueue)
	m.outcomePane.SetFocused(m.focusedPane == PaneOutcome)
	m.logPane.SetFocused(m.focusedPane == PaneLog)
}
