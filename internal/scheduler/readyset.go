package scheduler

import (
	"container/heap"
	"slices"
)

// taskHeap implements heap.Interface ordered by (Deadline, admission seq).
type taskHeap []*Task

func (h taskHeap) Len() int { return len(h) }

func (h taskHeap) Less(i, j int) bool {
	return earlier(h[i], h[j])
}

func (h taskHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *taskHeap) Push(x any) {
	*h = append(*h, x.(*Task))
}

func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return t
}

func earlier(a, b *Task) bool {
	if a.Deadline != b.Deadline {
		return a.Deadline < b.Deadline
	}
	return a.seq < b.seq
}

// ReadySet holds admitted tasks that have not been dispatched, earliest deadline first.
// Equal deadlines are ordered by admission. It is not safe for concurrent use;
// the Executor serializes access.
type ReadySet struct {
	h taskHeap
}

// NewReadySet creates an empty ready set.
func NewReadySet() *ReadySet {
	return &ReadySet{}
}

// Push inserts a task in O(log n).
func (r *ReadySet) Push(t *Task) {
	heap.Push(&r.h, t)
}

// Peek returns the minimum task without removing it.
func (r *ReadySet) Peek() (*Task, bool) {
	if len(r.h) == 0 {
		return nil, false
	}
	return r.h[0], true
}

// Pop removes and returns the minimum task in O(log n).
func (r *ReadySet) Pop() (*Task, bool) {
	if len(r.h) == 0 {
		return nil, false
	}
	return heap.Pop(&r.h).(*Task), true
}

// Len returns the number of ready tasks.
func (r *ReadySet) Len() int {
	return len(r.h)
}

// Snapshot returns copies of the ready tasks in scheduling order.
// The heap itself is left untouched.
func (r *ReadySet) Snapshot() []Task {
	out := make([]Task, 0, len(r.h))
	for _, t := range r.h {
		out = append(out, *t)
	}
	slices.SortFunc(out, func(a, b Task) int {
		if earlier(&a, &b) {
			return -1
		}
		if earlier(&b, &a) {
			return 1
		}
		return 0
	})
	return out
}
