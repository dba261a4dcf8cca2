package scheduler

import (
	"errors"
	"fmt"
	"math/rand"
	"reflect"
	"sync"
	"testing"
)

// addDemoTasks admits the three-task example: T1(3,5,100) T2(2,4,80) T3(1,10,50).
func addDemoTasks(t *testing.T, e *Executor) {
	t.Helper()
	specs := []struct {
		id                        string
		duration, deadline, value int
	}{
		{"T1", 3, 5, 100},
		{"T2", 2, 4, 80},
		{"T3", 1, 10, 50},
	}
	for _, s := range specs {
		if err := e.AddTask(s.id, s.duration, s.deadline, s.value); err != nil {
			t.Fatalf("AddTask(%s): %v", s.id, err)
		}
	}
}

// recorder collects decisions for assertions.
type recorder struct {
	decisions []Decision
}

func (r *recorder) Observe(d Decision) { r.decisions = append(r.decisions, d) }

func (r *recorder) kinds(kind DecisionKind) []string {
	var ids []string
	for _, d := range r.decisions {
		if d.Kind == kind {
			ids = append(ids, d.Task.ID)
		}
	}
	return ids
}

func TestTask_Remaining(t *testing.T) {
	tests := []struct {
		duration, worked, want int
	}{
		{3, 0, 3},
		{3, 2, 1},
		{3, 3, 0},
	}
	for _, tt := range tests {
		task := &Task{ID: "T", Duration: tt.duration, TimeWorked: tt.worked}
		if got := task.Remaining(); got != tt.want {
			t.Errorf("Remaining() with duration=%d worked=%d = %d, want %d", tt.duration, tt.worked, got, tt.want)
		}
	}
}

func TestExecutor_DemoRunToCompletion(t *testing.T) {
	e := NewExecutor()
	addDemoTasks(t, e)

	snap := e.Tick()
	if snap.Current == nil || snap.Current.ID != "T2" {
		t.Fatalf("expected T2 selected first, got %+v", snap.Current)
	}

	final := e.RunToCompletion()
	if final.State != StateDrained {
		t.Errorf("expected drained, got %s", final.State)
	}

	r := e.Report()
	if got := r.CompletedIDs(); !reflect.DeepEqual(got, []string{"T2", "T1", "T3"}) {
		t.Errorf("expected completed [T2 T1 T3], got %v", got)
	}
	if len(r.Expired) != 0 {
		t.Errorf("expected no expired tasks, got %v", r.ExpiredIDs())
	}
	if r.TotalValue != 230 {
		t.Errorf("expected total value 230, got %d", r.TotalValue)
	}
	if r.Now != 6 {
		t.Errorf("expected clock 6, got %d", r.Now)
	}
	if len(r.Pending) != 0 || r.Current != nil {
		t.Errorf("expected nothing pending or current, got pending=%v current=%+v", r.PendingIDs(), r.Current)
	}
}

func TestExecutor_ImmediatelyInfeasibleTaskExpires(t *testing.T) {
	e := NewExecutor()
	if err := e.AddTask("T2", 2, 1, 80); err != nil {
		t.Fatalf("AddTask: %v", err)
	}

	e.RunToCompletion()

	r := e.Report()
	if got := r.ExpiredIDs(); !reflect.DeepEqual(got, []string{"T2"}) {
		t.Errorf("expected expired [T2], got %v", got)
	}
	if len(r.Completed) != 0 {
		t.Errorf("expected no completed tasks, got %v", r.CompletedIDs())
	}
	if r.TotalValue != 0 {
		t.Errorf("expected total value 0, got %d", r.TotalValue)
	}
	if len(e.History()) != 0 {
		t.Errorf("an expired task must never be recorded as a selection")
	}
}

func TestExecutor_UndoAfterTick(t *testing.T) {
	e := NewExecutor()
	if err := e.AddTask("T1", 3, 5, 100); err != nil {
		t.Fatalf("AddTask: %v", err)
	}

	snap := e.Tick()
	if snap.Current == nil || snap.Current.TimeWorked != 1 || snap.Current.Remaining != 2 {
		t.Fatalf("expected T1 worked to 1 with 2 remaining, got %+v", snap.Current)
	}

	res, err := e.Undo()
	if err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if res != UndoReverted {
		t.Errorf("expected reverted, got %s", res)
	}

	r := e.Report()
	if r.State != StateIdle {
		t.Errorf("expected idle, got %s", r.State)
	}
	if r.Now != 1 {
		t.Errorf("clock must not roll back: expected 1, got %d", r.Now)
	}
	if len(r.Pending) != 1 || r.Pending[0].ID != "T1" || r.Pending[0].TimeWorked != 0 {
		t.Errorf("expected T1 back in ready set with no work, got %+v", r.Pending)
	}
	if r.Current != nil {
		t.Errorf("expected no current task, got %+v", r.Current)
	}
}

func TestExecutor_UndoRightAfterReselection(t *testing.T) {
	e := NewExecutor()
	_ = e.AddTask("A", 1, 5, 10)
	_ = e.AddTask("B", 2, 10, 20)

	// A completes in the first tick and B is selected before the clock advances.
	snap := e.Tick()
	if snap.Current == nil || snap.Current.ID != "B" || snap.Current.TimeWorked != 0 {
		t.Fatalf("expected B selected with no work, got %+v", snap.Current)
	}
	before := e.Report()

	res, err := e.Undo()
	if err != nil || res != UndoReverted {
		t.Fatalf("expected reverted, got %s, %v", res, err)
	}

	after := e.Report()
	if after.State != StateIdle {
		t.Errorf("expected idle, got %s", after.State)
	}
	if got := after.PendingIDs(); !reflect.DeepEqual(got, []string{"B"}) {
		t.Errorf("expected ready set [B], got %v", got)
	}
	if !reflect.DeepEqual(after.Completed, before.Completed) {
		t.Errorf("undo changed the completed set: %v -> %v", before.CompletedIDs(), after.CompletedIDs())
	}

	// The next history entry belongs to A, which already completed.
	res, err = e.Undo()
	if err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if res != UndoStale {
		t.Errorf("expected stale, got %s", res)
	}
	if got := e.Report().CompletedIDs(); !reflect.DeepEqual(got, []string{"A"}) {
		t.Errorf("stale undo must not touch completed, got %v", got)
	}

	if _, err := e.Undo(); !errors.Is(err, ErrNothingToUndo) {
		t.Errorf("expected ErrNothingToUndo, got %v", err)
	}
}

func TestExecutor_UndoOnEmptyHistory(t *testing.T) {
	e := NewExecutor()
	_ = e.AddTask("T1", 1, 5, 1)

	res, err := e.Undo()
	if !errors.Is(err, ErrNothingToUndo) {
		t.Fatalf("expected ErrNothingToUndo, got %v", err)
	}
	if res != UndoNone {
		t.Errorf("expected none, got %s", res)
	}
	if got := e.Report().PendingIDs(); !reflect.DeepEqual(got, []string{"T1"}) {
		t.Errorf("expected ready set unchanged, got %v", got)
	}
}

func TestExecutor_ReselectionAfterUndoCreatesNewHistoryEntry(t *testing.T) {
	e := NewExecutor()
	_ = e.AddTask("T1", 3, 5, 100)

	e.Tick()
	if _, err := e.Undo(); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	snap := e.Tick()
	if snap.Current == nil || snap.Current.ID != "T1" || snap.Current.TimeWorked != 1 {
		t.Fatalf("expected T1 reselected and worked once, got %+v", snap.Current)
	}

	h := e.History()
	if len(h) != 1 {
		t.Fatalf("expected one live history entry, got %d", len(h))
	}
	if h[0].Seq != 2 || h[0].At != 1 {
		t.Errorf("expected fresh selection seq=2 at=1, got %+v", h[0])
	}

	e.RunToCompletion()
	r := e.Report()
	if r.TotalValue != 100 || r.Now != 4 {
		t.Errorf("expected value 100 at time 4, got value %d at %d", r.TotalValue, r.Now)
	}
}

func TestExecutor_FeasibilityBoundary(t *testing.T) {
	tests := []struct {
		name      string
		duration  int
		deadline  int
		expectRun bool
	}{
		{"exactly meets deadline", 3, 3, true},
		{"one unit late", 4, 3, false},
		{"zero deadline", 1, 0, false},
		{"slack", 1, 100, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewExecutor()
			if err := e.AddTask("X", tt.duration, tt.deadline, 5); err != nil {
				t.Fatalf("AddTask: %v", err)
			}
			e.RunToCompletion()
			r := e.Report()

			if tt.expectRun {
				if len(r.Completed) != 1 || len(r.Expired) != 0 {
					t.Errorf("expected X completed, got completed=%v expired=%v", r.CompletedIDs(), r.ExpiredIDs())
				}
			} else {
				if len(r.Completed) != 0 || len(r.Expired) != 1 {
					t.Errorf("expected X expired, got completed=%v expired=%v", r.CompletedIDs(), r.ExpiredIDs())
				}
			}
		})
	}
}

func TestExecutor_ExpiresLaterCandidateAtSelectionTime(t *testing.T) {
	e := NewExecutor()
	_ = e.AddTask("A", 3, 3, 10)
	_ = e.AddTask("B", 2, 4, 20)
	_ = e.AddTask("C", 1, 4, 30)

	e.RunToCompletion()
	r := e.Report()

	if got := r.CompletedIDs(); !reflect.DeepEqual(got, []string{"A", "B"}) {
		t.Errorf("expected completed [A B], got %v", got)
	}
	if got := r.ExpiredIDs(); !reflect.DeepEqual(got, []string{"C"}) {
		t.Errorf("expected expired [C], got %v", got)
	}
	if r.TotalValue != 30 {
		t.Errorf("expected total value 30, got %d", r.TotalValue)
	}
	if r.Now != 5 {
		t.Errorf("expected clock 5, got %d", r.Now)
	}
}

func TestExecutor_EqualDeadlinesRunInAdmissionOrder(t *testing.T) {
	e := NewExecutor()
	for _, id := range []string{"first", "second", "third"} {
		if err := e.AddTask(id, 1, 10, 1); err != nil {
			t.Fatalf("AddTask(%s): %v", id, err)
		}
	}

	e.RunToCompletion()
	if got := e.Report().CompletedIDs(); !reflect.DeepEqual(got, []string{"first", "second", "third"}) {
		t.Errorf("expected admission order, got %v", got)
	}
}

func TestExecutor_UndoneTaskKeepsTieBreakPosition(t *testing.T) {
	e := NewExecutor()
	_ = e.AddTask("a", 2, 10, 1)
	_ = e.AddTask("b", 2, 10, 1)

	e.Tick() // a current
	if _, err := e.Undo(); err != nil {
		t.Fatalf("Undo: %v", err)
	}

	if got := e.Report().PendingIDs(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("expected a ahead of b after undo, got %v", got)
	}
	snap := e.Tick()
	if snap.Current == nil || snap.Current.ID != "a" {
		t.Errorf("expected a reselected, got %+v", snap.Current)
	}
}

func TestExecutor_AddTaskErrors(t *testing.T) {
	e := NewExecutor()
	_ = e.AddTask("done", 1, 10, 1)
	_ = e.AddTask("gone", 5, 1, 1)
	_ = e.AddTask("running", 3, 20, 1)
	_ = e.AddTask("waiting", 1, 30, 1)
	e.Tick() // gone expires, done completes, running selected

	r := e.Report()
	if r.Current == nil || r.Current.ID != "running" {
		t.Fatalf("fixture: expected running current, got %+v", r.Current)
	}

	tests := []struct {
		name     string
		id       string
		duration int
		deadline int
		value    int
		expected error
	}{
		{"duplicate completed", "done", 1, 1, 1, ErrDuplicateTask},
		{"duplicate expired", "gone", 1, 1, 1, ErrDuplicateTask},
		{"duplicate current", "running", 1, 1, 1, ErrDuplicateTask},
		{"duplicate ready", "waiting", 1, 1, 1, ErrDuplicateTask},
		{"zero duration", "new", 0, 5, 1, ErrInvalidTask},
		{"negative duration", "new", -1, 5, 1, ErrInvalidTask},
		{"negative deadline", "new", 1, -1, 1, ErrInvalidTask},
		{"negative value", "new", 1, 5, -3, ErrInvalidTask},
		{"empty id", "", 1, 5, 1, ErrInvalidTask},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := e.AddTask(tt.id, tt.duration, tt.deadline, tt.value)
			if !errors.Is(err, tt.expected) {
				t.Fatalf("expected %v, got %v", tt.expected, err)
			}
			if after := e.Report(); !reflect.DeepEqual(after, r) {
				t.Errorf("failed AddTask changed executor state")
			}
		})
	}
}

func TestExecutor_StateTransitions(t *testing.T) {
	e := NewExecutor()
	if e.State() != StateDrained {
		t.Fatalf("expected new executor drained, got %s", e.State())
	}

	_ = e.AddTask("T", 2, 5, 1)
	if e.State() != StateIdle {
		t.Fatalf("expected idle after add, got %s", e.State())
	}

	e.Tick()
	if e.State() != StateExecuting {
		t.Fatalf("expected executing after tick, got %s", e.State())
	}

	e.Tick()
	if e.State() != StateDrained {
		t.Fatalf("expected drained after completion, got %s", e.State())
	}

	_ = e.AddTask("U", 1, 10, 1)
	if e.State() != StateIdle {
		t.Fatalf("expected drained executor to return to idle, got %s", e.State())
	}
}

func TestExecutor_TickWhileDrainedAdvancesClock(t *testing.T) {
	e := NewExecutor()
	for i := 0; i < 3; i++ {
		snap := e.Tick()
		if snap.State != StateDrained {
			t.Fatalf("expected drained, got %s", snap.State)
		}
	}
	if e.Now() != 3 {
		t.Errorf("expected clock 3, got %d", e.Now())
	}

	// Run to completion on a drained executor is a no-op.
	if snap := e.RunToCompletion(); snap.Now != 3 {
		t.Errorf("expected clock to stay at 3, got %d", snap.Now)
	}
}

func TestExecutor_IdleTimeCanExpireTasks(t *testing.T) {
	e := NewExecutor()
	e.Tick()
	e.Tick()
	// At time 2 a task with deadline 3 and duration 2 is already infeasible.
	_ = e.AddTask("late", 2, 3, 5)
	e.RunToCompletion()

	if got := e.Report().ExpiredIDs(); !reflect.DeepEqual(got, []string{"late"}) {
		t.Errorf("expected late expired, got %v", got)
	}
}

func TestExecutor_ReportIsIdempotent(t *testing.T) {
	e := NewExecutor()
	addDemoTasks(t, e)
	e.Tick()
	e.Tick()
	e.Tick()

	first := e.Report()
	second := e.Report()
	if !reflect.DeepEqual(first, second) {
		t.Errorf("consecutive reports differ:\n%+v\n%+v", first, second)
	}

	// The pending list is sorted for display and detached from the executor.
	first.Pending[0].Deadline = -1
	if third := e.Report(); !reflect.DeepEqual(third, second) {
		t.Errorf("mutating a report leaked into the executor")
	}
}

func TestExecutor_ReportPendingSortedByDeadline(t *testing.T) {
	e := NewExecutor()
	_ = e.AddTask("z", 1, 30, 1)
	_ = e.AddTask("x", 1, 10, 1)
	_ = e.AddTask("y", 1, 20, 1)
	_ = e.AddTask("w", 1, 10, 1)

	if got := e.Report().PendingIDs(); !reflect.DeepEqual(got, []string{"x", "w", "y", "z"}) {
		t.Errorf("expected [x w y z], got %v", got)
	}
}

func TestExecutor_AccountingInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for round := 0; round < 50; round++ {
		e := NewExecutor()
		all := map[string]int{}
		n := rng.Intn(20) + 1

		for i := 0; i < n; i++ {
			id := fmt.Sprintf("r%d-t%d", round, i)
			value := rng.Intn(100)
			if err := e.AddTask(id, rng.Intn(5)+1, rng.Intn(30), value); err != nil {
				t.Fatalf("AddTask(%s): %v", id, err)
			}
			all[id] = value

			// Interleave some ticks and undos.
			switch rng.Intn(4) {
			case 0:
				e.Tick()
			case 1:
				_, _ = e.Undo()
			}
		}

		e.RunToCompletion()
		r := e.Report()

		if len(r.Pending) != 0 || r.Current != nil {
			t.Fatalf("round %d: run did not drain: pending=%v current=%+v", round, r.PendingIDs(), r.Current)
		}

		seen := map[string]bool{}
		sum := 0
		for _, task := range r.Completed {
			if task.TimeWorked != task.Duration {
				t.Errorf("round %d: completed %s has TimeWorked %d of %d", round, task.ID, task.TimeWorked, task.Duration)
			}
			seen[task.ID] = true
			sum += task.Value
		}
		for _, task := range r.Expired {
			if seen[task.ID] {
				t.Errorf("round %d: %s is both completed and expired", round, task.ID)
			}
			seen[task.ID] = true
		}
		if sum != r.TotalValue {
			t.Errorf("round %d: total value %d != sum of completed %d", round, r.TotalValue, sum)
		}
		if len(seen) != len(all) {
			t.Errorf("round %d: accounted for %d of %d tasks", round, len(seen), len(all))
		}
		for id := range all {
			if !seen[id] {
				t.Errorf("round %d: task %s lost", round, id)
			}
		}
	}
}

func TestExecutor_SelectionsAreAlwaysFeasible(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	var violations []string

	obs := ObserverFunc(func(d Decision) {
		switch d.Kind {
		case DecisionSelected:
			if d.At+d.Task.Duration > d.Task.Deadline {
				violations = append(violations, fmt.Sprintf("selected infeasible %s at %d", d.Task.ID, d.At))
			}
		case DecisionExpired:
			if d.At+d.Task.Duration <= d.Task.Deadline {
				violations = append(violations, fmt.Sprintf("expired feasible %s at %d", d.Task.ID, d.At))
			}
		}
	})

	e := NewExecutor(WithObserver(obs))
	for i := 0; i < 100; i++ {
		_ = e.AddTask(fmt.Sprintf("t%d", i), rng.Intn(6)+1, rng.Intn(120), rng.Intn(10))
	}
	e.RunToCompletion()

	for _, v := range violations {
		t.Error(v)
	}
}

func TestExecutor_ObserverSeesDecisionsInOrder(t *testing.T) {
	rec := &recorder{}
	e := NewExecutor(WithObserver(rec))
	addDemoTasks(t, e)
	e.RunToCompletion()

	if got := rec.kinds(DecisionAdmitted); !reflect.DeepEqual(got, []string{"T1", "T2", "T3"}) {
		t.Errorf("admitted: expected [T1 T2 T3], got %v", got)
	}
	if got := rec.kinds(DecisionSelected); !reflect.DeepEqual(got, []string{"T2", "T1", "T3"}) {
		t.Errorf("selected: expected [T2 T1 T3], got %v", got)
	}
	if got := rec.kinds(DecisionCompleted); !reflect.DeepEqual(got, []string{"T2", "T1", "T3"}) {
		t.Errorf("completed: expected [T2 T1 T3], got %v", got)
	}
	if got := len(rec.kinds(DecisionTick)); got != 6 {
		t.Errorf("expected 6 ticks, got %d", got)
	}
	if got := len(rec.kinds(DecisionWorked)); got != 6 {
		t.Errorf("expected 6 work units, got %d", got)
	}

	last := rec.decisions[len(rec.decisions)-1]
	if last.Kind != DecisionTick || last.At != 6 || last.TotalValue != 230 {
		t.Errorf("unexpected final decision: %+v", last)
	}
	if last.Counts.Completed != 3 || last.Counts.Pending != 0 || last.Counts.Running != 0 {
		t.Errorf("unexpected final counts: %+v", last.Counts)
	}
}

func TestExecutor_ObserverSeesStaleUndo(t *testing.T) {
	rec := &recorder{}
	e := NewExecutor(WithObserver(rec))
	_ = e.AddTask("only", 1, 5, 1)
	e.RunToCompletion()

	if res, _ := e.Undo(); res != UndoStale {
		t.Fatalf("expected stale, got %s", res)
	}

	last := rec.decisions[len(rec.decisions)-1]
	if last.Kind != DecisionUndone || !last.Stale || last.Task.ID != "only" {
		t.Errorf("expected stale undo of 'only', got %+v", last)
	}
}

func TestExecutor_ConcurrentCallersSerialize(t *testing.T) {
	e := NewExecutor()
	var wg sync.WaitGroup

	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				_ = e.AddTask(fmt.Sprintf("w%d-%d", w, i), 1, 1000, 1)
				e.Tick()
				_ = e.Report()
				if i%5 == 0 {
					_, _ = e.Undo()
				}
			}
		}(w)
	}
	wg.Wait()

	e.RunToCompletion()
	r := e.Report()
	if len(r.Completed)+len(r.Expired) != 200 {
		t.Errorf("expected 200 tasks accounted for, got %d completed + %d expired", len(r.Completed), len(r.Expired))
	}
	if r.TotalValue != len(r.Completed) {
		t.Errorf("expected value %d, got %d", len(r.Completed), r.TotalValue)
	}
}
