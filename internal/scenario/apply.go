package scenario

import (
	"fmt"

	"github.com/aristath/deadline/internal/scheduler"
)

// StepResult records the outcome of one step.
// Err holds admission failures and ErrNothingToUndo; the scenario keeps going.
type StepResult struct {
	Op       string
	Err      error
	Snapshot scheduler.Snapshot
	Undo     scheduler.UndoResult
	Report   *scheduler.Report
}

// Result is the outcome of playing a scenario.
type Result struct {
	Name  string
	Steps []StepResult
	Final scheduler.Report
}

// Apply plays sc against exec. It fails only when an initial task cannot be admitted.
func Apply(exec *scheduler.Executor, sc *Scenario) (*Result, error) {
	for _, ts := range sc.Tasks {
		if err := exec.AddTask(ts.ID, ts.Duration, ts.Deadline, ts.Value); err != nil {
			return nil, fmt.Errorf("scenario %q: admitting %s: %w", sc.Name, ts.ID, err)
		}
	}

	res := &Result{Name: sc.Name}

	steps := sc.Steps
	if len(steps) == 0 {
		steps = []Step{{Op: OpRun}}
	}

	for _, step := range steps {
		res.Steps = append(res.Steps, applyStep(exec, step))
	}

	res.Final = exec.Report()
	return res, nil
}

func applyStep(exec *scheduler.Executor, step Step) StepResult {
	r := StepResult{Op: step.Op}

	switch step.Op {
	case OpAdd:
		r.Err = exec.AddTask(step.Task.ID, step.Task.Duration, step.Task.Deadline, step.Task.Value)
		r.Snapshot = exec.Snapshot()
	case OpTick:
		n := step.Count
		if n == 0 {
			n = 1
		}
		for i := 0; i < n; i++ {
			r.Snapshot = exec.Tick()
		}
	case OpRun:
		r.Snapshot = exec.RunToCompletion()
	case OpUndo:
		r.Undo, r.Err = exec.Undo()
		r.Snapshot = exec.Snapshot()
	case OpReport:
		rep := exec.Report()
		r.Report = &rep
		r.Snapshot = exec.Snapshot()
	}

	return r
}
