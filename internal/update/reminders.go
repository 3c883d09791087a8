package update

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/protodo/internal/model"
)

const maxReminderLog = 20

// waitForReminderCmd blocks on the reminder feed and turns the next fired
// reminder into a ReminderDueMsg. A closed feed ends the chain.
func waitForReminderCmd(ch <-chan model.Reminder) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		r, ok := <-ch
		if !ok {
			return nil
		}
		return ReminderDueMsg{Reminder: r}
	}
}

// onReminder records a fired reminder. The desktop notification was already
// shown by the reminder loop, which also stamped the task, so the model only
// re-reads the collection.
func (m Model) onReminder(r model.Reminder) (tea.Model, tea.Cmd) {
	m.ReminderLog = append(m.ReminderLog, r)
	if len(m.ReminderLog) > maxReminderLog {
		m.ReminderLog = m.ReminderLog[len(m.ReminderLog)-maxReminderLog:]
	}
	m.notify(r.Title(), r.Body())
	m.Status = StatusBar{Text: "reminder: " + r.Text}
	m.refresh()
	return m, waitForReminderCmd(m.reminders)
}

func (m Model) lastReminderLine() string {
	if len(m.ReminderLog) == 0 {
		return ""
	}
	last := m.ReminderLog[len(m.ReminderLog)-1]
	return "last reminder: " + last.Text + " @ " + last.TriggerAt.Local().Format("15:04:05")
}
