// Package calendar lays tasks out on a month grid keyed by due date.
package calendar

import (
	"time"

	"github.com/sandeepkv93/protodo/internal/model"
)

const dateLayout = "2006-01-02"

// Month is a calendar cursor. Month is 1-based like time.Month.
type Month struct {
	Year  int
	Month time.Month
}

func Current(now time.Time) Month {
	return Month{Year: now.Year(), Month: now.Month()}
}

// Add moves the cursor by delta months, rolling the year over at both ends.
func (m Month) Add(delta int) Month {
	idx := m.Year*12 + int(m.Month) - 1 + delta
	year := idx / 12
	mon := idx % 12
	if mon < 0 {
		mon += 12
		year--
	}
	return Month{Year: year, Month: time.Month(mon + 1)}
}

func (m Month) First() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

func (m Month) DaysIn() int {
	return m.First().AddDate(0, 1, -1).Day()
}

func (m Month) Label() string {
	return m.First().Format("January 2006")
}

type Day struct {
	Date   string
	Number int
	Count  int
}

// MonthGrid is one month of day cells, preceded by Leading blank cells so the
// first day lands on its weekday column with Sunday first.
type MonthGrid struct {
	Month   Month
	Leading int
	Days    []Day
}

// Weeks splits the grid into rows of seven cells; blanks are nil.
func (g MonthGrid) Weeks() [][]*Day {
	cells := make([]*Day, 0, g.Leading+len(g.Days))
	for i := 0; i < g.Leading; i++ {
		cells = append(cells, nil)
	}
	for i := range g.Days {
		cells = append(cells, &g.Days[i])
	}
	for len(cells)%7 != 0 {
		cells = append(cells, nil)
	}
	weeks := make([][]*Day, 0, len(cells)/7)
	for i := 0; i < len(cells); i += 7 {
		weeks = append(weeks, cells[i:i+7])
	}
	return weeks
}

func Grid(m Month, tasks []model.Task) MonthGrid {
	counts := make(map[string]int)
	for _, t := range tasks {
		if date, ok := DueDate(t); ok {
			counts[date]++
		}
	}
	first := m.First()
	g := MonthGrid{
		Month:   m,
		Leading: int(first.Weekday()),
		Days:    make([]Day, 0, m.DaysIn()),
	}
	for d := 1; d <= m.DaysIn(); d++ {
		date := first.AddDate(0, 0, d-1).Format(dateLayout)
		g.Days = append(g.Days, Day{Date: date, Number: d, Count: counts[date]})
	}
	return g
}

// DueDate returns the UTC calendar date of the task's due time.
func DueDate(t model.Task) (string, bool) {
	if t.Due == nil {
		return "", false
	}
	return t.Due.UTC().Format(dateLayout), true
}

// TasksOn lists the tasks due on date (YYYY-MM-DD) in collection order.
func TasksOn(date string, tasks []model.Task) []model.Task {
	out := make([]model.Task, 0)
	for _, t := range tasks {
		if d, ok := DueDate(t); ok && d == date {
			out = append(out, t)
		}
	}
	return out
}
