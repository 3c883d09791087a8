package model

import (
	"fmt"
	"strings"
	"time"
)

// Reminder is one armed due-date notification. It lives only in memory.
type Reminder struct {
	ID        string
	TaskID    string
	Text      string
	Due       time.Time
	TriggerAt time.Time
}

// Validate reports whether r can be armed.
func (r Reminder) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("%w: reminder id is required", ErrValidation)
	}
	if strings.TrimSpace(r.TaskID) == "" {
		return fmt.Errorf("%w: reminder task id is required", ErrValidation)
	}
	if r.TriggerAt.IsZero() {
		return fmt.Errorf("%w: reminder trigger time is required", ErrValidation)
	}
	return nil
}

func (r Reminder) Title() string {
	return "Task due: " + r.Text
}

func (r Reminder) Body() string {
	return "Due " + r.Due.Local().Format("Mon Jan 2 2006 15:04")
}
