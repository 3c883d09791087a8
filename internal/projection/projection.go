// Package projection derives the visible task list from the collection:
// filter, then search, then a stable sort. It never mutates its input.
package projection

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sandeepkv93/protodo/internal/model"
)

type Filter string

const (
	FilterAll            Filter = "all"
	FilterActive         Filter = "active"
	FilterCompleted      Filter = "completed"
	FilterPriorityHigh   Filter = "priority_high"
	FilterPriorityMedium Filter = "priority_medium"
	FilterPriorityLow    Filter = "priority_low"
)

type SortKey string

const (
	SortCreatedDesc  SortKey = "created_desc"
	SortCreatedAsc   SortKey = "created_asc"
	SortDueAsc       SortKey = "due_asc"
	SortDueDesc      SortKey = "due_desc"
	SortPriorityDesc SortKey = "priority_desc"
)

var (
	filters  = []Filter{FilterAll, FilterActive, FilterCompleted, FilterPriorityHigh, FilterPriorityMedium, FilterPriorityLow}
	sortKeys = []SortKey{SortCreatedDesc, SortCreatedAsc, SortDueAsc, SortDueDesc, SortPriorityDesc}
)

func Filters() []Filter   { return append([]Filter(nil), filters...) }
func SortKeys() []SortKey { return append([]SortKey(nil), sortKeys...) }

func ParseFilter(raw string) (Filter, error) {
	f := Filter(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range filters {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: unknown filter %q", model.ErrValidation, raw)
}

func ParseSort(raw string) (SortKey, error) {
	k := SortKey(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range sortKeys {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: unknown sort %q", model.ErrValidation, raw)
}

// Next cycles through the filters; unknown values restart at FilterAll.
func (f Filter) Next() Filter {
	for i, known := range filters {
		if known == f {
			return filters[(i+1)%len(filters)]
		}
	}
	return FilterAll
}

func (k SortKey) Next() SortKey {
	for i, known := range sortKeys {
		if known == k {
			return sortKeys[(i+1)%len(sortKeys)]
		}
	}
	return SortCreatedDesc
}

func (f Filter) Label() string {
	switch f {
	case FilterActive:
		return "Active"
	case FilterCompleted:
		return "Completed"
	case FilterPriorityHigh:
		return "High priority"
	case FilterPriorityMedium:
		return "Medium priority"
	case FilterPriorityLow:
		return "Low priority"
	default:
		return "All"
	}
}

func (f Filter) keep(t model.Task) bool {
	switch f {
	case FilterActive:
		return !t.Completed
	case FilterCompleted:
		return t.Completed
	case FilterPriorityHigh:
		return t.Priority == model.PriorityHigh
	case FilterPriorityMedium:
		return t.Priority == model.PriorityMedium
	case FilterPriorityLow:
		return t.Priority == model.PriorityLow
	default:
		return true
	}
}

// matches reports whether t matches the already normalised query against
// its text, its space-joined categories or any subtask text.
func matches(t model.Task, q string) bool {
	if q == "" {
		return true
	}
	if strings.Contains(strings.ToLower(t.Text), q) {
		return true
	}
	if strings.Contains(strings.ToLower(strings.Join(t.Categories, " ")), q) {
		return true
	}
	for _, st := range t.Subtasks {
		if strings.Contains(strings.ToLower(st.Text), q) {
			return true
		}
	}
	return false
}

// Project returns a new slice holding the tasks that pass filter and query,
// ordered by key. Ties keep their collection order.
func Project(tasks []model.Task, filter Filter, query string, key SortKey) []model.Task {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if filter.keep(t) && matches(t, q) {
			out = append(out, t)
		}
	}
	if less := lessFor(key); less != nil {
		sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	}
	return out
}

func lessFor(key SortKey) func(a, b model.Task) bool {
	switch key {
	case SortCreatedDesc:
		return func(a, b model.Task) bool { return a.Created.After(b.Created) }
	case SortCreatedAsc:
		return func(a, b model.Task) bool { return a.Created.Before(b.Created) }
	case SortDueAsc:
		return func(a, b model.Task) bool { return dueLess(a, b, false) }
	case SortDueDesc:
		return func(a, b model.Task) bool { return dueLess(a, b, true) }
	case SortPriorityDesc:
		return func(a, b model.Task) bool { return a.Priority.Rank() > b.Priority.Rank() }
	default:
		return nil
	}
}

// dueLess orders by due date with missing dates last in either direction.
func dueLess(a, b model.Task, desc bool) bool {
	switch {
	case a.Due == nil:
		return false
	case b.Due == nil:
		return true
	case desc:
		return a.Due.After(*b.Due)
	default:
		return a.Due.Before(*b.Due)
	}
}
