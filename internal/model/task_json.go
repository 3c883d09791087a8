package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

type subtaskJSON struct {
	ID   string `json:"id"`
	Text string `json:"text"`
	Done bool   `json:"done"`
}

type taskJSON struct {
	ID           string        `json:"id"`
	Text         string        `json:"text"`
	Created      string        `json:"created"`
	Due          *string       `json:"due"`
	Priority     Priority      `json:"priority"`
	Categories   []string      `json:"categories"`
	Subtasks     []subtaskJSON `json:"subtasks"`
	Completed    bool          `json:"completed"`
	Repeat       Repeat        `json:"repeat"`
	LastNotified *string       `json:"lastNotified"`
}

func (t Task) MarshalJSON() ([]byte, error) {
	out := taskJSON{
		ID:           t.ID,
		Text:         t.Text,
		Due:          formatOptional(t.Due),
		Priority:     t.Priority,
		Categories:   t.Categories,
		Subtasks:     make([]subtaskJSON, 0, len(t.Subtasks)),
		Completed:    t.Completed,
		Repeat:       t.Repeat.OrNone(),
		LastNotified: formatOptional(t.LastNotified),
	}
	if !t.Created.IsZero() {
		out.Created = FormatTime(t.Created)
	}
	if out.Categories == nil {
		out.Categories = []string{}
	}
	for _, st := range t.Subtasks {
		out.Subtasks = append(out.Subtasks, subtaskJSON(st))
	}
	return json.Marshal(out)
}

func (t *Task) UnmarshalJSON(data []byte) error {
	if !bytes.HasPrefix(bytes.TrimSpace(data), []byte("{")) {
		return fmt.Errorf("%w: task must be a JSON object", ErrFormat)
	}
	var in taskJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return fmt.Errorf("%w: %v", ErrFormat, err)
	}
	out := Task{
		ID:         in.ID,
		Text:       in.Text,
		Priority:   in.Priority,
		Categories: in.Categories,
		Completed:  in.Completed,
		Repeat:     in.Repeat.OrNone(),
	}
	if in.Created != "" {
		created, err := ParseTime(in.Created)
		if err != nil {
			return err
		}
		out.Created = created
	}
	var err error
	if out.Due, err = parseOptional(in.Due); err != nil {
		return err
	}
	if out.LastNotified, err = parseOptional(in.LastNotified); err != nil {
		return err
	}
	if len(in.Subtasks) > 0 {
		out.Subtasks = make([]Subtask, 0, len(in.Subtasks))
		for _, st := range in.Subtasks {
			out.Subtasks = append(out.Subtasks, Subtask(st))
		}
	}
	*t = out
	return nil
}

func formatOptional(v *time.Time) *string {
	if v == nil {
		return nil
	}
	s := FormatTime(*v)
	return &s
}

func parseOptional(v *string) (*time.Time, error) {
	if v == nil || *v == "" {
		return nil, nil
	}
	t, err := ParseTime(*v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
