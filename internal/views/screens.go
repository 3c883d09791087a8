package views

import (
	"fmt"
	"strings"
)

type SubtaskData struct {
	ID        string
	Text      string
	Completed bool
	Selected  bool
}

type TaskRowData struct {
	ID         string
	Text       string
	Priority   string
	Due        string
	Repeat     string
	Categories []string
	Completed  bool
	Overdue    bool
	Subtasks   []SubtaskData
}

type TasksPanelData struct {
	Filter       string
	Sort         string
	Query        string
	Rows         []TaskRowData
	SelectedID   string
	Done         int
	Total        int
	ProgressView string
	ProgressPct  int
	InputView    string
}

type CalendarPanelData struct {
	Label        string
	TableView    string
	SelectedDate string
	Items        []TaskRowData
}

type FocusPanelData struct {
	TaskTitle    string
	Phase        string
	Timer        string
	Running      bool
	ProgressView string
	ProgressPct  int
	Completed    int
	WorkMinutes  int
	BreakMinutes int
}

type HelpPanelData struct {
	CurrentView string
	Bindings    []string
	HelpView    string
}

func RenderTasksPanel(data TasksPanelData) string {
	var b strings.Builder
	b.WriteString("tasks:\n")
	query := data.Query
	if query == "" {
		query = "-"
	}
	b.WriteString(fmt.Sprintf("filter: %s | sort: %s | search: %s\n", data.Filter, data.Sort, query))
	b.WriteString(fmt.Sprintf("progress: %s %d%% (%d/%d)\n", data.ProgressView, data.ProgressPct, data.Done, data.Total))
	b.WriteString("actions: [a]add [/]search [f]filter [s]sort [x]done [enter]details [d]delete\n")
	if data.InputView != "" {
		b.WriteString(data.InputView + "\n")
	}
	if len(data.Rows) == 0 {
		b.WriteString("\n(no tasks)")
		return b.String()
	}
	b.WriteString("\n")
	for _, row := range data.Rows {
		cursor := " "
		if row.ID == data.SelectedID {
			cursor = ">"
		}
		b.WriteString(fmt.Sprintf("%s %s\n", cursor, taskLine(row)))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func taskLine(row TaskRowData) string {
	check := "[ ]"
	if row.Completed {
		check = "[x]"
	}
	parts := []string{check, priorityBadge(row.Priority), row.Text}
	if row.Due != "" {
		due := "due:" + row.Due
		if row.Overdue {
			due += "!"
		}
		parts = append(parts, due)
	}
	if row.Repeat != "" && row.Repeat != "none" {
		parts = append(parts, "↻"+row.Repeat)
	}
	for _, c := range row.Categories {
		parts = append(parts, "#"+c)
	}
	if n := len(row.Subtasks); n > 0 {
		done := 0
		for _, st := range row.Subtasks {
			if st.Completed {
				done++
			}
		}
		parts = append(parts, fmt.Sprintf("(%d/%d)", done, n))
	}
	return strings.Join(parts, " ")
}

func priorityBadge(p string) string {
	switch p {
	case "high":
		return "[HIGH]"
	case "low":
		return "[LOW]"
	default:
		return "[MED]"
	}
}

// TaskMarkdown describes one task as markdown for the detail pane.
func TaskMarkdown(row TaskRowData) string {
	var b strings.Builder
	b.WriteString("## " + row.Text + "\n\n")
	status := "open"
	if row.Completed {
		status = "done"
	}
	b.WriteString(fmt.Sprintf("- **Status:** %s\n", status))
	b.WriteString(fmt.Sprintf("- **Priority:** %s\n", row.Priority))
	due := row.Due
	if due == "" {
		due = "none"
	}
	b.WriteString(fmt.Sprintf("- **Due:** %s\n", due))
	if row.Repeat != "" && row.Repeat != "none" {
		b.WriteString(fmt.Sprintf("- **Repeats:** %s\n", row.Repeat))
	}
	if len(row.Categories) > 0 {
		b.WriteString(fmt.Sprintf("- **Categories:** %s\n", strings.Join(row.Categories, ", ")))
	}
	if len(row.Subtasks) > 0 {
		b.WriteString("\n### Subtasks\n\n")
		for _, st := range row.Subtasks {
			mark := " "
			if st.Completed {
				mark = "x"
			}
			line := fmt.Sprintf("- [%s] %s", mark, st.Text)
			if st.Selected {
				line += " ◀"
			}
			b.WriteString(line + "\n")
		}
	}
	return b.String()
}

func RenderTaskDetail(view string) string {
	if strings.TrimSpace(view) == "" {
		return "details:\n(no selection)"
	}
	return "details: [n/p]subtask [c]check [esc]close\n" + view
}

func RenderCalendarPanel(data CalendarPanelData) string {
	var b strings.Builder
	b.WriteString("calendar:\n")
	b.WriteString(fmt.Sprintf("month: %s | day: %s\n", data.Label, data.SelectedDate))
	b.WriteString("actions: [h/l]month [←/→]day [↑/↓]week [g]today\n")
	b.WriteString(data.TableView + "\n")
	b.WriteString(fmt.Sprintf("\n%s:\n", data.SelectedDate))
	if len(data.Items) == 0 {
		b.WriteString("  (nothing due)")
		return b.String()
	}
	for _, row := range data.Items {
		b.WriteString("  " + taskLine(row) + "\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func RenderFocusPanel(data FocusPanelData) string {
	var b strings.Builder
	b.WriteString("focus:\n")
	if data.TaskTitle != "" {
		b.WriteString(fmt.Sprintf("task: %s\n", data.TaskTitle))
	} else {
		b.WriteString("task: (none selected)\n")
	}
	state := "paused"
	if data.Running {
		state = "running"
	}
	b.WriteString(fmt.Sprintf("phase: %s (%s)\n", strings.ToUpper(data.Phase), state))
	b.WriteString(fmt.Sprintf("timer: %s\n", data.Timer))
	b.WriteString(fmt.Sprintf("progress: %s %d%%\n", data.ProgressView, data.ProgressPct))
	b.WriteString(fmt.Sprintf("durations: work %dm | break %dm\n", data.WorkMinutes, data.BreakMinutes))
	b.WriteString(fmt.Sprintf("pomodoros completed: %d\n", data.Completed))
	b.WriteString("actions: [space]start/pause [r]reset [+/-]work length")
	return b.String()
}

func RenderCommandPalette(active bool, input string) string {
	if !active {
		return ""
	}
	return "command: " + input
}

func RenderNotification(title, body string) string {
	if strings.TrimSpace(title) == "" && strings.TrimSpace(body) == "" {
		return ""
	}
	return fmt.Sprintf("notification: %s\n%s", title, body)
}

func RenderHelpPanel(data HelpPanelData) string {
	return fmt.Sprintf("help (%s view):\n%s\n\n%s",
		strings.ToLower(data.CurrentView),
		strings.Join(data.Bindings, "\n"),
		data.HelpView,
	)
}
