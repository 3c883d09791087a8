package update

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/protodo/internal/calendar"
	"github.com/sandeepkv93/protodo/internal/views"
)

func (m Model) handleCalendarKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "h", "pgup":
		m.shiftMonth(-1)
	case "l", "pgdown":
		m.shiftMonth(1)
	case "left":
		m.shiftDay(-1)
	case "right":
		m.shiftDay(1)
	case "up", "k":
		m.shiftDay(-7)
	case "down", "j":
		m.shiftDay(7)
	case "g":
		now := m.now()
		m.Calendar.Month = calendar.Current(now)
		m.Calendar.Day = now.Day()
	default:
		return m
	}
	m.Status = StatusBar{Text: fmt.Sprintf("calendar: %s", m.selectedDate())}
	m.refresh()
	return m
}

// shiftMonth moves by whole months, keeping the selected day where the
// target month is long enough.
func (m *Model) shiftMonth(delta int) {
	m.Calendar.Month = m.Calendar.Month.Add(delta)
	if last := m.Calendar.Month.DaysIn(); m.Calendar.Day > last {
		m.Calendar.Day = last
	}
}

func (m *Model) shiftDay(delta int) {
	d := m.Calendar.Month.First().AddDate(0, 0, m.Calendar.Day-1+delta)
	m.Calendar.Month = calendar.Month{Year: d.Year(), Month: d.Month()}
	m.Calendar.Day = d.Day()
}

func (m Model) selectedDate() string {
	return m.Calendar.Month.First().AddDate(0, 0, m.Calendar.Day-1).Format("2006-01-02")
}

func (m Model) calendarRows() ([]table.Row, int) {
	today := m.now().Format("2006-01-02")
	selected := m.selectedDate()
	weeks := m.Calendar.Grid.Weeks()
	rows := make([]table.Row, 0, len(weeks))
	cursor := 0
	for wi, week := range weeks {
		row := make(table.Row, 0, 7)
		for _, day := range week {
			if day == nil {
				row = append(row, "")
				continue
			}
			cell := fmt.Sprintf("%d", day.Number)
			if day.Date == today {
				cell += "*"
			}
			if day.Count > 0 {
				cell += fmt.Sprintf("•%d", day.Count)
			}
			if day.Date == selected {
				cell = "[" + cell + "]"
				cursor = wi
			}
			row = append(row, cell)
		}
		rows = append(rows, row)
	}
	return rows, cursor
}

func (m Model) renderCalendarView() string {
	due := calendar.TasksOn(m.selectedDate(), m.svc.Tasks.List())
	items := make([]views.TaskRowData, 0, len(due))
	for _, t := range due {
		items = append(items, m.taskRow(t))
	}
	return views.RenderCalendarPanel(views.CalendarPanelData{
		Label:        m.Calendar.Month.Label(),
		TableView:    m.calendarTable.View(),
		SelectedDate: m.selectedDate(),
		Items:        items,
	})
}
