package model

import "time"

// NextDue advances due by one repeat step. Arithmetic runs in UTC with Go's
// date normalisation, so Jan 31 + 1 month lands on Mar 2 (leap year) or Mar 3.
func (r Repeat) NextDue(due time.Time) (time.Time, bool) {
	base := due.UTC()
	switch r {
	case RepeatDaily:
		return base.AddDate(0, 0, 1), true
	case RepeatWeekly:
		return base.AddDate(0, 0, 7), true
	case RepeatMonthly:
		return base.AddDate(0, 1, 0), true
	default:
		return time.Time{}, false
	}
}

// NextOccurrence builds the successor of a completed repeating task. It
// reports false when the task has no due date or does not repeat.
func NextOccurrence(task Task, newID string, now time.Time) (Task, bool) {
	if task.Due == nil || !task.IsRepeating() {
		return Task{}, false
	}
	nextDue, ok := task.Repeat.NextDue(*task.Due)
	if !ok {
		return Task{}, false
	}
	next := task.Clone()
	next.ID = newID
	next.Created = now.UTC()
	next.Completed = false
	next.LastNotified = nil
	next.Due = &nextDue
	return next, true
}
