package update

import (
	"strings"

	"github.com/sandeepkv93/protodo/internal/views"
)

const maxNotifications = 40

// notify appends to the in-app notification log. Desktop delivery goes
// through the service.
func (m *Model) notify(title, body string) {
	if strings.TrimSpace(title) == "" && strings.TrimSpace(body) == "" {
		return
	}
	m.Notifications = append(m.Notifications, Notification{Title: title, Body: body, At: m.now().UTC()})
	if len(m.Notifications) > maxNotifications {
		m.Notifications = m.Notifications[len(m.Notifications)-maxNotifications:]
	}
}

func (m Model) renderNotificationsView() string {
	if len(m.Notifications) == 0 {
		return ""
	}
	n := m.Notifications[len(m.Notifications)-1]
	return views.RenderNotification(n.Title, n.Body)
}

func (m Model) theme() views.Theme {
	return views.ThemeFor(string(m.Settings.Theme), m.Settings.Dark)
}

// syncBubbleData pushes derived state into the bubble components.
func (m *Model) syncBubbleData() {
	rows, cursor := m.calendarRows()
	m.calendarTable.SetRows(rows)
	if len(rows) > 0 {
		m.calendarTable.SetCursor(cursor)
	}

	if m.Tasks.DetailOpen {
		m.detailViewport.SetContent(views.RenderMarkdown(m.detailMarkdown(), m.theme().GlamourStyle()))
		m.detailViewport.GotoTop()
	}
}
