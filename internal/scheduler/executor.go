package scheduler

import (
	"fmt"
	"sync"
)

// Executor runs admitted tasks one at a time, earliest deadline first, over a
// logical clock. All exported methods are mutually exclusive.
type Executor struct {
	mu         sync.Mutex
	ready      *ReadySet
	current    *Task
	currentSel uint64 // Seq of the selection that made current live
	completed  []*Task
	expired    []*Task
	known      map[string]struct{} // every ID ever admitted
	history    history
	now        int
	totalValue int
	admitted   uint64
	observers  []Observer
}

// NewExecutor creates an executor at time 0 with no tasks.
func NewExecutor(opts ...Option) *Executor {
	e := &Executor{
		ready: NewReadySet(),
		known: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// AddTask admits a task into the ready set. It does not select or advance the clock.
func (e *Executor) AddTask(id string, duration, deadline, value int) error {
	task := &Task{ID: id, Duration: duration, Deadline: deadline, Value: value}
	if err := task.Validate(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.known[id]; exists {
		return fmt.Errorf("%w: task with ID %q already exists", ErrDuplicateTask, id)
	}

	e.admitted++
	task.seq = e.admitted
	e.known[id] = struct{}{}
	e.ready.Push(task)

	e.emit(Decision{Kind: DecisionAdmitted, Task: *task})
	return nil
}

// Tick advances the executor by one time step and returns the resulting snapshot.
func (e *Executor) Tick() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.tick()
	return e.snapshot()
}

// RunToCompletion ticks until the ready set is empty and no task is current.
// A drained executor is returned as-is without advancing the clock.
func (e *Executor) RunToCompletion() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	for e.ready.Len() > 0 || e.current != nil {
		e.tick()
	}
	return e.snapshot()
}

// Undo reverts the most recent selection if it is still live.
// It returns ErrNothingToUndo when the history is empty.
func (e *Executor) Undo() (UndoResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	sel, ok := e.history.pop()
	if !ok {
		return UndoNone, ErrNothingToUndo
	}

	if e.current == nil || e.currentSel != sel.Seq {
		// Superseded: the selection already completed or was undone.
		e.emit(Decision{Kind: DecisionUndone, Selection: sel, Stale: true, Task: Task{ID: sel.TaskID}})
		return UndoStale, nil
	}

	task := e.current
	task.TimeWorked = 0
	e.current = nil
	e.currentSel = 0
	e.ready.Push(task)

	e.emit(Decision{Kind: DecisionUndone, Selection: sel, Task: *task})
	return UndoReverted, nil
}

// Report aggregates the executor state without modifying it.
func (e *Executor) Report() Report {
	e.mu.Lock()
	defer e.mu.Unlock()

	r := Report{
		Now:        e.now,
		State:      e.state(),
		TotalValue: e.totalValue,
		Completed:  copyTasks(e.completed),
		Expired:    copyTasks(e.expired),
		Pending:    e.ready.Snapshot(),
		Current:    e.progress(),
	}
	return r
}

// Snapshot returns the current summary without modifying the executor.
func (e *Executor) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshot()
}

// State returns the executor's state.
func (e *Executor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state()
}

// Now returns the logical clock.
func (e *Executor) Now() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.now
}

// History returns the undo log, oldest first.
func (e *Executor) History() []Selection {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.history.snapshot()
}

// Current returns a copy of the task in the execution slot.
func (e *Executor) Current() (*Task, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current == nil {
		return nil, false
	}
	return cloneTask(e.current), true
}

func (e *Executor) tick() {
	if e.current == nil {
		e.selectNext()
	}

	if e.current != nil {
		e.current.TimeWorked++
		e.emit(Decision{Kind: DecisionWorked, Task: *e.current})

		if e.current.Done() {
			e.complete()
			e.selectNext()
		}
	}

	e.now++
	e.emit(Decision{Kind: DecisionTick})
}

// selectNext pops candidates until one is feasible at the current time.
// Infeasible candidates are expired permanently.
func (e *Executor) selectNext() {
	for e.current == nil {
		candidate, ok := e.ready.Pop()
		if !ok {
			return
		}

		if !candidate.Feasible(e.now) {
			e.expired = append(e.expired, candidate)
			e.emit(Decision{Kind: DecisionExpired, Task: *candidate})
			continue
		}

		sel := e.history.record(candidate.ID, e.now)
		e.current = candidate
		e.currentSel = sel.Seq
		e.emit(Decision{Kind: DecisionSelected, Task: *candidate, Selection: sel})
	}
}

func (e *Executor) complete() {
	task := e.current
	e.completed = append(e.completed, task)
	e.totalValue += task.Value
	e.current = nil
	e.currentSel = 0
	e.emit(Decision{Kind: DecisionCompleted, Task: *task})
}

func (e *Executor) state() State {
	switch {
	case e.current != nil:
		return StateExecuting
	case e.ready.Len() == 0:
		return StateDrained
	default:
		return StateIdle
	}
}

func (e *Executor) progress() *Progress {
	if e.current == nil {
		return nil
	}
	return &Progress{
		ID:         e.current.ID,
		TimeWorked: e.current.TimeWorked,
		Remaining:  e.current.Remaining(),
		Duration:   e.current.Duration,
		Deadline:   e.current.Deadline,
	}
}

func (e *Executor) counts() Counts {
	c := Counts{
		Pending:   e.ready.Len(),
		Completed: len(e.completed),
		Expired:   len(e.expired),
	}
	if e.current != nil {
		c.Running = 1
	}
	return c
}

func (e *Executor) snapshot() Snapshot {
	return Snapshot{
		Now:        e.now,
		State:      e.state(),
		TotalValue: e.totalValue,
		Current:    e.progress(),
		Counts:     e.counts(),
	}
}

func (e *Executor) emit(d Decision) {
	if len(e.observers) == 0 {
		return
	}
	d.At = e.now
	d.TotalValue = e.totalValue
	d.Counts = e.counts()
	for _, o := range e.observers {
		o.Observe(d)
	}
}
