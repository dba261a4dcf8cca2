package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/aristath/deadline/internal/scheduler"
)

// FormPaneModel is the add-task form overlay.
type FormPaneModel struct {
	form    *huh.Form
	exec    *scheduler.Executor
	width   int
	height  int
	visible bool
	added   string
	err     error
	done    bool

	fields *taskFields
}

// taskFields holds the form bindings. It lives behind a pointer so copies of
// the model keep writing to the same values.
type taskFields struct {
	id       string
	duration string
	deadline string
	value    string
}

// NewFormPaneModel creates a new add-task form bound to exec.
func NewFormPaneModel(exec *scheduler.Executor) FormPaneModel {
	m := FormPaneModel{exec: exec}
	m.buildForm()
	return m
}

func (m *FormPaneModel) buildForm() {
	m.fields = &taskFields{value: "0"}
	f := m.fields

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("id").
				Title("Task ID").
				Value(&f.id).
				Placeholder("T4").
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("id is required")
					}
					return nil
				}),

			huh.NewInput().
				Key("duration").
				Title("Duration").
				Value(&f.duration).
				Placeholder("2").
				Validate(positiveInt),

			huh.NewInput().
				Key("deadline").
				Title("Deadline").
				Value(&f.deadline).
				Placeholder("10").
				Validate(nonNegativeInt),

			huh.NewInput().
				Key("value").
				Title("Value").
				Value(&f.value).
				Placeholder("50").
				Validate(nonNegativeInt),
		).Title("Add Task"),
	)
}

func positiveInt(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return errors.New("must be an integer")
	}
	if n <= 0 {
		return errors.New("must be positive")
	}
	return nil
}

func nonNegativeInt(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return errors.New("must be an integer")
	}
	if n < 0 {
		return errors.New("must not be negative")
	}
	return nil
}

// Init initializes the form.
func (m FormPaneModel) Init() tea.Cmd {
	return m.form.Init()
}

// Update handles messages for the form pane.
func (m FormPaneModel) Update(msg tea.Msg) (FormPaneModel, tea.Cmd) {
	if !m.visible {
		return m, nil
	}

	if key, ok := msg.(tea.KeyMsg); ok && key.String() == KeyEsc {
		m.visible = false
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		if m.done {
			break
		}
		m.done = true
		m.err = m.submit()
		if m.err == nil {
			m.added = strings.TrimSpace(m.fields.id)
			m.visible = false
		}
	case huh.StateAborted:
		m.visible = false
	}

	return m, cmd
}

// submit admits the task described by the form fields.
func (m *FormPaneModel) submit() error {
	f := m.fields
	duration, _ := strconv.Atoi(strings.TrimSpace(f.duration))
	deadline, _ := strconv.Atoi(strings.TrimSpace(f.deadline))
	value, _ := strconv.Atoi(strings.TrimSpace(f.value))
	return m.exec.AddTask(strings.TrimSpace(f.id), duration, deadline, value)
}

// View renders the form pane.
func (m FormPaneModel) View() string {
	if !m.visible {
		return ""
	}

	content := m.form.View()
	if m.err != nil {
		content = errorStyle.Render(fmt.Sprintf("✗ %v", m.err)) + "\n\n" + helpStyle.Render("esc: back")
	}

	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorAccent).
		Padding(1, 2).
		Width(m.width - 4).
		Height(m.height - 4)

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(colorAccent).
		Render("+ New Task")

	return lipgloss.JoinVertical(lipgloss.Left, title, style.Render(content))
}

// SetSize updates the dimensions of the form pane.
func (m *FormPaneModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	if m.form != nil {
		m.form.WithWidth(w - 8).WithHeight(h - 8)
	}
}

// SetVisible shows or hides the form. Showing it resets all fields.
func (m *FormPaneModel) SetVisible(v bool) {
	m.visible = v
	m.added = ""
	m.err = nil
	m.done = false
	if v {
		m.buildForm()
	}
}

// IsVisible returns whether the form is currently visible.
func (m FormPaneModel) IsVisible() bool {
	return m.visible
}

// TakeAdded returns the ID admitted by the last submission and clears it.
func (m *FormPaneModel) TakeAdded() string {
	id := m.added
	m.added = ""
	return id
}
