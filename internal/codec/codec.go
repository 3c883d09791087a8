// Package codec converts task collections to and from their export formats.
package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sandeepkv93/protodo/internal/model"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

func ParseFormat(raw string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(raw))); f {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatCSV:
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("%w: unknown export format %q", model.ErrValidation, raw)
	}
}

// FormatFromPath picks CSV for a .csv suffix and JSON otherwise.
func FormatFromPath(path string) Format {
	if strings.HasSuffix(strings.ToLower(path), ".csv") {
		return FormatCSV
	}
	return FormatJSON
}

func Encode(w io.Writer, f Format, tasks []model.Task) error {
	if f == FormatCSV {
		return EncodeCSV(w, tasks)
	}
	return EncodeJSON(w, tasks)
}

// EncodeJSON writes the collection as a two-space indented array.
func EncodeJSON(w io.Writer, tasks []model.Task) error {
	if tasks == nil {
		tasks = []model.Task{}
	}
	b, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// DecodeJSON reads an array of task objects. Any malformed element fails the
// whole decode with model.ErrFormat.
func DecodeJSON(r io.Reader) ([]model.Task, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: import must be a JSON array of tasks", model.ErrFormat)
	}
	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrFormat, err)
	}
	out := make([]model.Task, 0, len(items))
	for i, item := range items {
		var t model.Task
		if err := json.Unmarshal(item, &t); err != nil {
			return nil, fmt.Errorf("%w: task %d: %v", model.ErrFormat, i, err)
		}
		out = append(out, t)
	}
	return out, nil
}

var csvHeader = []string{"id", "text", "created", "due", "priority", "categories", "completed", "repeat"}

// EncodeCSV writes one header row and one row per task, joined by "\n" with
// no trailing newline. Text and categories are always quoted.
func EncodeCSV(w io.Writer, tasks []model.Task) error {
	rows := make([]string, 0, len(tasks)+1)
	rows = append(rows, strings.Join(csvHeader, ","))
	for _, t := range tasks {
		due := ""
		if t.Due != nil {
			due = model.FormatTime(*t.Due)
		}
		created := ""
		if !t.Created.IsZero() {
			created = model.FormatTime(t.Created)
		}
		rows = append(rows, strings.Join([]string{
			t.ID,
			quote(t.Text),
			created,
			due,
			string(t.Priority),
			quote(strings.Join(t.Categories, "|")),
			strconv.FormatBool(t.Completed),
			string(t.Repeat.OrNone()),
		}, ","))
	}
	_, err := io.WriteString(w, strings.Join(rows, "\n"))
	return err
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
