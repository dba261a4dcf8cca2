package scheduler

// UndoResult describes what Undo did with the popped selection.
type UndoResult int

const (
	UndoNone     UndoResult = iota // History was empty
	UndoReverted                   // Live selection reverted, task back in the ready set
	UndoStale                      // Selection already superseded; consumed without effect
)

func (u UndoResult) String() string {
	switch u {
	case UndoReverted:
		return "reverted"
	case UndoStale:
		return "stale"
	default:
		return "none"
	}
}

// Snapshot is a compact view of the executor after a time step.
type Snapshot struct {
	Now        int
	State      State
	TotalValue int
	Current    *Progress
	Counts     Counts
}

// Report is the full read-only aggregation of the executor state.
// Completed and Expired are in insertion order; Pending is sorted by deadline.
type Report struct {
	Now        int
	State      State
	TotalValue int
	Completed  []Task
	Expired    []Task
	Pending    []Task
	Current    *Progress
}

// CompletedIDs returns the IDs of completed tasks in completion order.
func (r Report) CompletedIDs() []string {
	return taskIDs(r.Completed)
}

// ExpiredIDs returns the IDs of expired tasks in expiry order.
func (r Report) ExpiredIDs() []string {
	return taskIDs(r.Expired)
}

// PendingIDs returns the IDs of ready tasks in deadline order.
func (r Report) PendingIDs() []string {
	return taskIDs(r.Pending)
}

func taskIDs(tasks []Task) []string {
	ids := make([]string, 0, len(tasks))
	for _, t := range tasks {
		ids = append(ids, t.ID)
	}
	return ids
}
