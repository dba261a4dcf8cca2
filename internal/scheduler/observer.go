package scheduler

// DecisionKind identifies what the executor just did.
type DecisionKind int

const (
	DecisionAdmitted  DecisionKind = iota // Task inserted into the ready set
	DecisionSelected                      // Task committed to the execution slot
	DecisionExpired                       // Task failed the feasibility test
	DecisionWorked                        // Current task worked for one unit
	DecisionCompleted                     // Current task finished and its value accrued
	DecisionUndone                        // Undo popped a selection
	DecisionTick                          // Clock advanced
)

func (k DecisionKind) String() string {
	switch k {
	case DecisionAdmitted:
		return "admitted"
	case DecisionSelected:
		return "selected"
	case DecisionExpired:
		return "expired"
	case DecisionWorked:
		return "worked"
	case DecisionCompleted:
		return "completed"
	case DecisionUndone:
		return "undone"
	case DecisionTick:
		return "tick"
	}
	return "unknown"
}

// Decision is a single state change reported to an Observer.
type Decision struct {
	Kind       DecisionKind
	At         int  // Logical time when the decision was taken
	Task       Task // Copy of the task involved; zero for DecisionTick
	Selection  Selection
	Stale      bool // DecisionUndone only: the popped selection was no longer live
	TotalValue int
	Counts     Counts
}

// Counts summarizes set sizes at the moment of a decision.
type Counts struct {
	Pending   int
	Completed int
	Expired   int
	Running   int
}

// Observer receives decisions synchronously, after the state change and while the
// executor lock is held. Implementations must not call back into the Executor.
type Observer interface {
	Observe(Decision)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Decision)

func (f ObserverFunc) Observe(d Decision) { f(d) }

// Option configures an Executor.
type Option func(*Executor)

// WithObserver attaches an observer; multiple observers are called in order.
func WithObserver(o Observer) Option {
	return func(e *Executor) {
		if o != nil {
			e.observers = append(e.observers, o)
		}
	}
}
