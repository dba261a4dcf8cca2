package api

import "github.com/aristath/deadline/internal/scheduler"

type taskView struct {
	ID         string `json:"id"`
	Duration   int    `json:"duration"`
	Deadline   int    `json:"deadline"`
	Value      int    `json:"value"`
	TimeWorked int    `json:"time_worked"`
}

type progressView struct {
	ID         string `json:"id"`
	TimeWorked int    `json:"time_worked"`
	Remaining  int    `json:"remaining"`
	Duration   int    `json:"duration"`
	Deadline   int    `json:"deadline"`
}

type countsView struct {
	Pending   int `json:"pending"`
	Running   int `json:"running"`
	Completed int `json:"completed"`
	Expired   int `json:"expired"`
}

type snapshotView struct {
	Time       int           `json:"time"`
	State      string        `json:"state"`
	TotalValue int           `json:"total_value"`
	Current    *progressView `json:"current"`
	Counts     countsView    `json:"counts"`
}

type reportView struct {
	Time       int           `json:"time"`
	State      string        `json:"state"`
	TotalValue int           `json:"total_value"`
	Completed  []taskView    `json:"completed"`
	Expired    []taskView    `json:"expired"`
	Pending    []taskView    `json:"pending"`
	Current    *progressView `json:"current"`
}

func newProgressView(p *scheduler.Progress) *progressView {
	if p == nil {
		return nil
	}
	return &progressView{ID: p.ID, TimeWorked: p.TimeWorked, Remaining: p.Remaining, Duration: p.Duration, Deadline: p.Deadline}
}

func newSnapshotView(s scheduler.Snapshot) snapshotView {
	return snapshotView{
		Time:       s.Now,
		State:      s.State.String(),
		TotalValue: s.TotalValue,
		Current:    newProgressView(s.Current),
		Counts: countsView{
			Pending:   s.Counts.Pending,
			Running:   s.Counts.Running,
			Completed: s.Counts.Completed,
			Expired:   s.Counts.Expired,
		},
	}
}

func newReportView(r scheduler.Report) reportView {
	return reportView{
		Time:       r.Now,
		State:      r.State.String(),
		TotalValue: r.TotalValue,
		Completed:  newTaskViews(r.Completed),
		Expired:    newTaskViews(r.Expired),
		Pending:    newTaskViews(r.Pending),
		Current:    newProgressView(r.Current),
	}
}

func newTaskViews(tasks []scheduler.Task) []taskView {
	views := make([]taskView, 0, len(tasks))
	for _, t := range tasks {
		views = append(views, taskView{
			ID: t.ID, Duration: t.Duration, Deadline: t.Deadline, Value: t.Value, TimeWorked: t.TimeWorked,
		})
	}
	return views
}
