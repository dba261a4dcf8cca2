package events

import "github.com/aristath/deadline/internal/scheduler"

// BusObserver publishes executor decisions onto an EventBus.
type BusObserver struct {
	bus *EventBus
}

// NewBusObserver creates an observer that forwards to bus.
func NewBusObserver(bus *EventBus) *BusObserver {
	return &BusObserver{bus: bus}
}

// Observe implements scheduler.Observer.
func (o *BusObserver) Observe(d scheduler.Decision) {
	if ev := FromDecision(d); ev != nil {
		o.bus.Publish(ev)
	}
}

// FromDecision converts a scheduler decision into its event. Unknown kinds map to nil.
func FromDecision(d scheduler.Decision) Event {
	t := d.Task
	switch d.Kind {
	case scheduler.DecisionAdmitted:
		return TaskAdmittedEvent{ID: t.ID, Duration: t.Duration, Deadline: t.Deadline, Value: t.Value, Time: d.At}
	case scheduler.DecisionSelected:
		return TaskSelectedEvent{ID: t.ID, Selection: d.Selection.Seq, Duration: t.Duration, Deadline: t.Deadline, Time: d.At}
	case scheduler.DecisionExpired:
		return TaskExpiredEvent{ID: t.ID, Duration: t.Duration, Deadline: t.Deadline, Time: d.At}
	case scheduler.DecisionWorked:
		return TaskWorkedEvent{ID: t.ID, TimeWorked: t.TimeWorked, Duration: t.Duration, Time: d.At}
	case scheduler.DecisionCompleted:
		return TaskCompletedEvent{ID: t.ID, Value: t.Value, TotalValue: d.TotalValue, Time: d.At}
	case scheduler.DecisionUndone:
		return TaskUndoneEvent{ID: t.ID, Selection: d.Selection.Seq, Stale: d.Stale, Time: d.At}
	case scheduler.DecisionTick:
		return ClockTickEvent{
			Time:       d.At,
			TotalValue: d.TotalValue,
			Pending:    d.Counts.Pending,
			Running:    d.Counts.Running,
			Completed:  d.Counts.Completed,
			Expired:    d.Counts.Expired,
		}
	}
	return nil
}
