package update

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/protodo/internal/commands"
	"github.com/sandeepkv93/protodo/internal/model"
	"github.com/sandeepkv93/protodo/internal/views"
)

func (m Model) Init() tea.Cmd {
	return waitForReminderCmd(m.reminders)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		keyStr := typed.String()
		if keyStr == "ctrl+c" {
			m.Quitting = true
			return m, tea.Quit
		}
		if m.Input != InputNone {
			return m.handleInputKey(typed)
		}
		if m.Tasks.PendingClear {
			return m.handleTasksKey(typed)
		}

		switch keyStr {
		case m.Keys.Quit:
			m.Quitting = true
			return m, tea.Quit
		case m.Keys.Command:
			return m.openInput(InputCommand)
		case m.Keys.Tasks:
			m.switchView(ViewTasks)
			return m, nil
		case m.Keys.Calendar:
			m.switchView(ViewCalendar)
			return m, nil
		case m.Keys.Focus:
			m.switchView(ViewFocus)
			return m, nil
		case m.Keys.Help:
			m.HelpVisible = !m.HelpVisible
			if m.HelpVisible {
				m.Status = StatusBar{Text: "help shown"}
			} else {
				m.Status = StatusBar{Text: "help hidden"}
			}
			return m, nil
		case "T":
			next := nextTheme(m.Settings.Theme)
			return m.dispatch(commands.Command{Type: commands.TypeTheme, Theme: &commands.ThemeArgs{Theme: next}}), nil
		case "D":
			return m.dispatch(commands.Command{Type: commands.TypeDark}), nil
		}

		switch m.CurrentView {
		case ViewTasks:
			return m.handleTasksKey(typed)
		case ViewCalendar:
			return m.handleCalendarKey(typed), nil
		case ViewFocus:
			return m.handleFocusKey(typed)
		}
	case tea.WindowSizeMsg:
		if w := typed.Width/2 - 6; w > 30 {
			m.detailViewport.Width = w
		}
		return m, nil
	case SwitchViewMsg:
		if isKnownView(typed.View) {
			m.switchView(typed.View)
		}
		return m, nil
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		return m, nil
	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil
	case AppErrorMsg:
		m.LastError = typed.Err
		if typed.Err != nil {
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
			m.notify("Error", typed.Err.Error())
		}
		return m, nil
	case TasksChangedMsg:
		m.refresh()
		return m, nil
	case FocusTickMsg:
		return m.onFocusTick(typed)
	case ReminderDueMsg:
		return m.onReminder(typed.Reminder)
	}

	return m, nil
}

func (m *Model) switchView(v View) {
	m.CurrentView = v
	if v == ViewFocus && m.Focus.TaskID == "" {
		if t, ok := m.selectedTask(); ok {
			m.Focus.TaskID = t.ID
			m.Focus.TaskTitle = t.Text
		}
	}
	m.refresh()
}

func nextTheme(t model.Theme) model.Theme {
	switch t {
	case model.ThemeDefault:
		return model.ThemeGreen
	case model.ThemeGreen:
		return model.ThemeOrange
	default:
		return model.ThemeDefault
	}
}

func (m Model) View() string {
	if m.Quitting {
		return ""
	}
	status := ""
	if m.Status.Text != "" {
		if m.Status.IsError {
			status = fmt.Sprintf("status: error: %s", m.Status.Text)
		} else {
			status = fmt.Sprintf("status: %s", m.Status.Text)
		}
	}
	leftPane := ""
	rightPane := ""
	switch m.CurrentView {
	case ViewTasks:
		leftPane = m.renderTasksView()
		rightPane = m.renderTaskDetail()
	case ViewCalendar:
		leftPane = m.renderCalendarView()
	case ViewFocus:
		leftPane = m.renderFocusView()
	}
	rightPane = joinNonEmpty(rightPane, m.renderCommandPalette(), m.renderHelpIfVisible())
	notificationView := joinNonEmpty(m.lastReminderLine(), m.renderNotificationsView())

	dark := "off"
	if m.Settings.Dark {
		dark = "on"
	}
	return views.RenderApp(views.AppData{
		Theme:        m.theme(),
		Header:       fmt.Sprintf("protodo | view: %s | theme: %s | dark: %s", m.CurrentView, m.Settings.Theme, dark),
		LeftPane:     leftPane,
		RightPane:    rightPane,
		StatusLine:   status,
		StatusError:  m.Status.IsError,
		Notification: notificationView,
		Footer: fmt.Sprintf("keys: %s tasks | %s calendar | %s focus | %s cmd | %s help | %s quit",
			m.Keys.Tasks, m.Keys.Calendar, m.Keys.Focus, m.Keys.Command, m.Keys.Help, m.Keys.Quit),
	})
}

func isKnownView(v View) bool {
	switch v {
	case ViewTasks, ViewCalendar, ViewFocus:
		return true
	default:
		return false
	}
}

func joinNonEmpty(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, strings.TrimSpace(p))
		}
	}
	return strings.Join(kept, "\n\n")
}
