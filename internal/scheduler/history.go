package scheduler

// Selection records one task being committed to the execution slot.
type Selection struct {
	Seq    uint64 // Unique, increasing per selection event
	TaskID string
	At     int // Logical time of the selection
}

// history is the LIFO log of selection events. Records are values, so a task
// reinserted by undo and later reselected gets a fresh record instead of sharing one.
type history struct {
	records []Selection
	next    uint64
}

func (h *history) record(taskID string, at int) Selection {
	h.next++
	sel := Selection{Seq: h.next, TaskID: taskID, At: at}
	h.records = append(h.records, sel)
	return sel
}

func (h *history) pop() (Selection, bool) {
	n := len(h.records)
	if n == 0 {
		return Selection{}, false
	}
	sel := h.records[n-1]
	h.records = h.records[:n-1]
	return sel, true
}

func (h *history) snapshot() []Selection {
	out := make([]Selection, len(h.records))
	copy(out, h.records)
	return out
}
