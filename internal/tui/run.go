package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/aristath/deadline/internal/events"
	"github.com/aristath/deadline/internal/scheduler"
)

// Run starts the dashboard in the alternate screen and blocks until the user
// quits or ctx is cancelled.
func Run(ctx context.Context, exec *scheduler.Executor, bus *events.EventBus, bufSize int) error {
	p := tea.NewProgram(New(exec, bus, bufSize), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
