package events

// Event is the base interface for all scheduling events.
type Event interface {
	EventType() string
	TaskID() string
	Topic() string
	At() int // logical time of the decision
}

// Topic constants
const (
	TopicTask  = "task"
	TopicClock = "clock"
)

// Event type constants
const (
	EventTypeTaskAdmitted  = "task.admitted"
	EventTypeTaskSelected  = "task.selected"
	EventTypeTaskExpired   = "task.expired"
	EventTypeTaskWorked    = "task.worked"
	EventTypeTaskCompleted = "task.completed"
	EventTypeTaskUndone    = "task.undone"
	EventTypeClockTick     = "clock.tick"
)

// TaskAdmittedEvent is published when a task enters the ready set.
type TaskAdmittedEvent struct {
	ID       string
	Duration int
	Deadline int
	Value    int
	Time     int
}

func (e TaskAdmittedEvent) EventType() string { return EventTypeTaskAdmitted }
func (e TaskAdmittedEvent) TaskID() string    { return e.ID }
func (e TaskAdmittedEvent) Topic() string     { return TopicTask }
func (e TaskAdmittedEvent) At() int           { return e.Time }

// TaskSelectedEvent is published when a task takes the execution slot.
type TaskSelectedEvent struct {
	ID        string
	Selection uint64
	Duration  int
	Deadline  int
	Time      int
}

func (e TaskSelectedEvent) EventType() string { return EventTypeTaskSelected }
func (e TaskSelectedEvent) TaskID() string    { return e.ID }
func (e TaskSelectedEvent) Topic() string     { return TopicTask }
func (e TaskSelectedEvent) At() int           { return e.Time }

// TaskExpiredEvent is published when a candidate fails the feasibility test.
type TaskExpiredEvent struct {
	ID       string
	Duration int
	Deadline int
	Time     int
}

func (e TaskExpiredEvent) EventType() string { return EventTypeTaskExpired }
func (e TaskExpiredEvent) TaskID() string    { return e.ID }
func (e TaskExpiredEvent) Topic() string     { return TopicTask }
func (e TaskExpiredEvent) At() int           { return e.Time }

// TaskWorkedEvent is published for every unit of work on the current task.
type TaskWorkedEvent struct {
	ID         string
	TimeWorked int
	Duration   int
	Time       int
}

func (e TaskWorkedEvent) EventType() string { return EventTypeTaskWorked }
func (e TaskWorkedEvent) TaskID() string    { return e.ID }
func (e TaskWorkedEvent) Topic() string     { return TopicTask }
func (e TaskWorkedEvent) At() int           { return e.Time }

// TaskCompletedEvent is published when the current task finishes.
type TaskCompletedEvent struct {
	ID         string
	Value      int
	TotalValue int
	Time       int
}

func (e TaskCompletedEvent) EventType() string { return EventTypeTaskCompleted }
func (e TaskCompletedEvent) TaskID() string    { return e.ID }
func (e TaskCompletedEvent) Topic() string     { return TopicTask }
func (e TaskCompletedEvent) At() int           { return e.Time }

// TaskUndoneEvent is published when undo pops a selection.
// Stale is set when the selection had already been superseded.
type TaskUndoneEvent struct {
	ID        string
	Selection uint64
	Stale     bool
	Time      int
}

func (e TaskUndoneEvent) EventType() string { return EventTypeTaskUndone }
func (e TaskUndoneEvent) TaskID() string    { return e.ID }
func (e TaskUndoneEvent) Topic() string     { return TopicTask }
func (e TaskUndoneEvent) At() int           { return e.Time }

// ClockTickEvent is published after the clock advances and carries set sizes.
type ClockTickEvent struct {
	Time       int
	TotalValue int
	Pending    int
	Running    int
	Completed  int
	Expired    int
}

func (e ClockTickEvent) EventType() string { return EventTypeClockTick }
func (e ClockTickEvent) TaskID() string    { return "" }
func (e ClockTickEvent) Topic() string     { return TopicClock }
func (e ClockTickEvent) At() int           { return e.Time }
