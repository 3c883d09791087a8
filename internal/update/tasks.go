package update

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/protodo/internal/commands"
	"github.com/sandeepkv93/protodo/internal/model"
	"github.com/sandeepkv93/protodo/internal/views"
)

func (m Model) handleTasksKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.Tasks.PendingClear {
		m.Tasks.PendingClear = false
		if msg.String() == "y" {
			return m.dispatch(commands.Command{Type: commands.TypeClear}), nil
		}
		m.Status = StatusBar{Text: "clear cancelled"}
		return m, nil
	}

	switch msg.String() {
	case "j", "down":
		if m.Tasks.Cursor < len(m.Tasks.Visible)-1 {
			m.Tasks.Cursor++
			m.Tasks.SubtaskCursor = 0
		}
	case "k", "up":
		if m.Tasks.Cursor > 0 {
			m.Tasks.Cursor--
			m.Tasks.SubtaskCursor = 0
		}
	case "a":
		return m.openInput(InputAdd)
	case "/":
		return m.openInput(InputSearch)
	case "f":
		m.Tasks.Filter = m.Tasks.Filter.Next()
		m.Status = StatusBar{Text: "filter: " + m.Tasks.Filter.Label()}
	case "s":
		m.Tasks.Sort = m.Tasks.Sort.Next()
		m.Status = StatusBar{Text: "sort: " + string(m.Tasks.Sort)}
	case "x", " ":
		if t, ok := m.selectedTask(); ok {
			m = m.dispatch(commands.Command{Type: commands.TypeToggle, Target: &commands.TargetArgs{ID: t.ID}})
		}
	case "enter":
		if _, ok := m.selectedTask(); ok {
			m.Tasks.DetailOpen = !m.Tasks.DetailOpen
			m.Tasks.SubtaskCursor = 0
		}
	case "esc":
		m.Tasks.DetailOpen = false
	case "n":
		if t, ok := m.selectedTask(); ok && m.Tasks.DetailOpen && m.Tasks.SubtaskCursor < len(t.Subtasks)-1 {
			m.Tasks.SubtaskCursor++
		}
	case "p":
		if m.Tasks.DetailOpen && m.Tasks.SubtaskCursor > 0 {
			m.Tasks.SubtaskCursor--
		}
	case "c":
		t, ok := m.selectedTask()
		if !ok || !m.Tasks.DetailOpen || len(t.Subtasks) == 0 {
			return m, nil
		}
		st := t.Subtasks[m.Tasks.SubtaskCursor]
		m = m.dispatch(commands.Command{Type: commands.TypeSubtask, Target: &commands.TargetArgs{ID: t.ID, SubtaskID: st.ID}})
	case "d":
		if t, ok := m.selectedTask(); ok {
			m = m.dispatch(commands.Command{Type: commands.TypeDelete, Target: &commands.TargetArgs{ID: t.ID}})
		}
	case "C":
		if len(m.svc.Tasks.List()) == 0 {
			m.Status = StatusBar{Text: "nothing to clear"}
			return m, nil
		}
		m.Tasks.PendingClear = true
		m.Status = StatusBar{Text: "delete ALL tasks? press y to confirm"}
		return m, nil
	case "F":
		if t, ok := m.selectedTask(); ok {
			m.Focus.TaskID = t.ID
			m.Focus.TaskTitle = t.Text
			m.CurrentView = ViewFocus
			m.Status = StatusBar{Text: "focusing on " + t.Text}
		}
	default:
		return m, nil
	}
	m.refresh()
	return m, nil
}

func (m Model) selectedTask() (model.Task, bool) {
	if m.Tasks.Cursor < 0 || m.Tasks.Cursor >= len(m.Tasks.Visible) {
		return model.Task{}, false
	}
	return m.Tasks.Visible[m.Tasks.Cursor], true
}

func (m *Model) clampTaskCursor() {
	if m.Tasks.Cursor >= len(m.Tasks.Visible) {
		m.Tasks.Cursor = len(m.Tasks.Visible) - 1
	}
	if m.Tasks.Cursor < 0 {
		m.Tasks.Cursor = 0
	}
	t, ok := m.selectedTask()
	if !ok {
		m.Tasks.DetailOpen = false
		m.Tasks.SubtaskCursor = 0
		return
	}
	if m.Tasks.SubtaskCursor >= len(t.Subtasks) {
		m.Tasks.SubtaskCursor = 0
	}
}

func (m *Model) selectTask(id string) {
	for i, t := range m.Tasks.Visible {
		if t.ID == id {
			m.Tasks.Cursor = i
			return
		}
	}
}

func (m Model) taskRow(t model.Task) views.TaskRowData {
	row := views.TaskRowData{
		ID:         t.ID,
		Text:       t.Text,
		Priority:   string(t.Priority),
		Repeat:     string(t.Repeat.OrNone()),
		Categories: t.Categories,
		Completed:  t.Completed,
	}
	if t.Due != nil {
		row.Due = t.Due.UTC().Format("2006-01-02")
		row.Overdue = !t.Completed && t.Due.Before(m.now())
	}
	for _, st := range t.Subtasks {
		row.Subtasks = append(row.Subtasks, views.SubtaskData{ID: st.ID, Text: st.Text, Completed: st.Done})
	}
	return row
}

func (m Model) renderTasksView() string {
	done, total, pct := m.svc.Tasks.Progress()
	rows := make([]views.TaskRowData, 0, len(m.Tasks.Visible))
	for _, t := range m.Tasks.Visible {
		rows = append(rows, m.taskRow(t))
	}
	selected := ""
	if t, ok := m.selectedTask(); ok {
		selected = t.ID
	}
	return views.RenderTasksPanel(views.TasksPanelData{
		Filter:       m.Tasks.Filter.Label(),
		Sort:         string(m.Tasks.Sort),
		Query:        m.Tasks.Query,
		Rows:         rows,
		SelectedID:   selected,
		Done:         done,
		Total:        total,
		ProgressView: m.taskProgress.ViewAs(float64(pct) / 100),
		ProgressPct:  pct,
		InputView:    m.renderInputView(),
	})
}

func (m Model) renderTaskDetail() string {
	if !m.Tasks.DetailOpen {
		return ""
	}
	return views.RenderTaskDetail(m.detailViewport.View())
}

// detailMarkdown is the glamour source for the selected task.
func (m Model) detailMarkdown() string {
	t, ok := m.selectedTask()
	if !ok {
		return ""
	}
	row := m.taskRow(t)
	for i := range row.Subtasks {
		row.Subtasks[i].Selected = i == m.Tasks.SubtaskCursor
	}
	return views.TaskMarkdown(row)
}
