package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrValidation      = errors.New("model: validation failed")
	ErrNotFound        = errors.New("model: task not found")
	ErrFormat          = errors.New("model: invalid format")
	ErrInvalidPriority = fmt.Errorf("%w: invalid task priority", ErrValidation)
	ErrInvalidRepeat   = fmt.Errorf("%w: invalid repeat", ErrValidation)
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

// Rank orders priorities low < medium < high. Unknown values rank below low.
func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 0
	case PriorityMedium:
		return 1
	case PriorityHigh:
		return 2
	default:
		return -1
	}
}

func ParsePriority(raw string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(raw)))
	if !p.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidPriority, raw)
	}
	return p, nil
}

type Repeat string

const (
	RepeatNone    Repeat = "none"
	RepeatDaily   Repeat = "daily"
	RepeatWeekly  Repeat = "weekly"
	RepeatMonthly Repeat = "monthly"
)

func (r Repeat) IsValid() bool {
	switch r {
	case RepeatNone, RepeatDaily, RepeatWeekly, RepeatMonthly:
		return true
	default:
		return false
	}
}

// OrNone maps the empty value to RepeatNone.
func (r Repeat) OrNone() Repeat {
	if r == "" {
		return RepeatNone
	}
	return r
}

func ParseRepeat(raw string) (Repeat, error) {
	r := Repeat(strings.ToLower(strings.TrimSpace(raw))).OrNone()
	if !r.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidRepeat, raw)
	}
	return r, nil
}

type Subtask struct {
	ID   string
	Text string
	Done bool
}

type Task struct {
	ID           string
	Text         string
	Created      time.Time
	Due          *time.Time
	Priority     Priority
	Categories   []string
	Subtasks     []Subtask
	Completed    bool
	Repeat       Repeat
	LastNotified *time.Time
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return fmt.Errorf("%w: task id is required", ErrValidation)
	}
	if strings.TrimSpace(t.Text) == "" {
		return fmt.Errorf("%w: task text is required", ErrValidation)
	}
	if t.Created.IsZero() {
		return fmt.Errorf("%w: task created is required", ErrValidation)
	}
	if !t.Priority.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidPriority, t.Priority)
	}
	if !t.Repeat.OrNone().IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidRepeat, t.Repeat)
	}
	return nil
}

// Clone returns a deep copy; slices and time pointers are not shared.
func (t Task) Clone() Task {
	out := t
	out.Due = cloneTime(t.Due)
	out.LastNotified = cloneTime(t.LastNotified)
	if t.Categories != nil {
		out.Categories = append([]string(nil), t.Categories...)
	}
	if t.Subtasks != nil {
		out.Subtasks = append([]Subtask(nil), t.Subtasks...)
	}
	return out
}

func (t Task) IsRepeating() bool {
	r := t.Repeat.OrNone()
	return r != RepeatNone && r.IsValid()
}

func (t Task) SubtaskProgress() (done, total int) {
	for _, st := range t.Subtasks {
		if st.Done {
			done++
		}
	}
	return done, len(t.Subtasks)
}

// SplitCategories splits a comma separated label string, trimming entries and
// dropping empties. Duplicates are kept.
func SplitCategories(raw string) []string {
	out := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

func cloneTime(v *time.Time) *time.Time {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
