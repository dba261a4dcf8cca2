package scheduler

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateTask is returned by AddTask when the ID is already known to the executor.
	ErrDuplicateTask = errors.New("duplicate task")
	// ErrInvalidTask is returned by AddTask for a non-positive duration, negative deadline or value, or empty ID.
	ErrInvalidTask = errors.New("invalid task")
	// ErrNothingToUndo is returned by Undo when no selection has been recorded.
	// It is informational: the executor is unchanged.
	ErrNothingToUndo = errors.New("nothing to undo")
)

// State is the executor's position in its state machine.
type State int

const (
	StateIdle      State = iota // No current task, ready set non-empty
	StateExecuting              // A task occupies the execution slot
	StateDrained                // Ready set empty and no current task
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateExecuting:
		return "executing"
	case StateDrained:
		return "drained"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Task is a unit of work competing for the single execution slot.
type Task struct {
	ID         string // Unique identifier
	Duration   int    // Time units needed to finish
	Deadline   int    // Absolute time by which execution must complete
	Value      int    // Reward earned on completion
	TimeWorked int    // Units already worked while current

	seq uint64 // admission order, used to break deadline ties
}

// Feasible reports whether the task can still finish by its deadline when started at now.
func (t *Task) Feasible(now int) bool {
	return now+t.Duration <= t.Deadline
}

// Done reports whether the task has been fully worked.
func (t *Task) Done() bool {
	return t.TimeWorked >= t.Duration
}

// Remaining returns the units of work still needed.
func (t *Task) Remaining() int {
	return t.Duration - t.TimeWorked
}

// Validate checks the admission parameters of the task.
func (t *Task) Validate() error {
	switch {
	case t.ID == "":
		return fmt.Errorf("%w: empty id", ErrInvalidTask)
	case t.Duration <= 0:
		return fmt.Errorf("%w %q: duration %d must be positive", ErrInvalidTask, t.ID, t.Duration)
	case t.Deadline < 0:
		return fmt.Errorf("%w %q: deadline %d must not be negative", ErrInvalidTask, t.ID, t.Deadline)
	case t.Value < 0:
		return fmt.Errorf("%w %q: value %d must not be negative", ErrInvalidTask, t.ID, t.Value)
	}
	return nil
}

// Progress describes the task currently occupying the execution slot.
type Progress struct {
	ID         string
	TimeWorked int
	Remaining  int
	Duration   int
	Deadline   int
}

func cloneTask(task *Task) *Task {
	if task == nil {
		return nil
	}
	cp := *task
	return &cp
}

func copyTasks(tasks []*Task) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, *t)
	}
	return out
}
