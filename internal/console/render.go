package console

import (
	"fmt"
	"io"
	"strings"

	"github.com/aristath/deadline/internal/scheduler"
)

// RenderReport writes a full execution report.
func RenderReport(w io.Writer, r scheduler.Report) {
	fmt.Fprintln(w, "===== EXECUTION REPORT =====")
	fmt.Fprintf(w, "Current time: %d\n", r.Now)
	fmt.Fprintf(w, "State: %s\n", r.State)
	fmt.Fprintf(w, "Total value earned: %d\n", r.TotalValue)

	fmt.Fprintf(w, "\nCompleted tasks (%d):\n", len(r.Completed))
	renderList(w, r.Completed, func(t scheduler.Task) string {
		return fmt.Sprintf("%s - value %d", t.ID, t.Value)
	})

	fmt.Fprintf(w, "\nExpired tasks (%d):\n", len(r.Expired))
	renderList(w, r.Expired, func(t scheduler.Task) string {
		return fmt.Sprintf("%s (deadline %d)", t.ID, t.Deadline)
	})

	fmt.Fprintf(w, "\nPending tasks (%d):\n", len(r.Pending))
	renderList(w, r.Pending, func(t scheduler.Task) string {
		return fmt.Sprintf("%s (deadline %d)", t.ID, t.Deadline)
	})

	if r.Current != nil {
		fmt.Fprintln(w, "\nCurrently executing:")
		fmt.Fprintf(w, "  - %s\n", RenderProgress(*r.Current))
	}
	fmt.Fprintln(w, "============================")
}

// RenderSnapshot writes a one-line summary of a time step.
func RenderSnapshot(w io.Writer, s scheduler.Snapshot) {
	current := "none"
	if s.Current != nil {
		current = RenderProgress(*s.Current)
	}
	fmt.Fprintf(w, "time=%d state=%s current=%s value=%d pending=%d completed=%d expired=%d\n",
		s.Now, s.State, current, s.TotalValue, s.Counts.Pending, s.Counts.Completed, s.Counts.Expired)
}

// RenderProgress formats the current task's progress.
func RenderProgress(p scheduler.Progress) string {
	return fmt.Sprintf("%s %d/%d (deadline %d)", p.ID, p.TimeWorked, p.Duration, p.Deadline)
}

func renderList(w io.Writer, tasks []scheduler.Task, line func(scheduler.Task) string) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, "  none")
		return
	}
	var b strings.Builder
	for _, t := range tasks {
		b.WriteString("  - ")
		b.WriteString(line(t))
		b.WriteByte('\n')
	}
	io.WriteString(w, b.String())
}
