package update

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/protodo/internal/views"
)

func (m Model) handleFocusKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case " ":
		if m.Focus.Timer.Running {
			m.Focus.Timer.Pause()
			m.Status = StatusBar{Text: "focus paused"}
			return m, nil
		}
		m.Focus.Timer.Start()
		m.Focus.gen++
		m.Status = StatusBar{Text: "focus running"}
		return m, focusTickCmd(m.Focus.gen)
	case "r":
		m.Focus.Timer.Reset()
		m.Status = StatusBar{Text: "focus reset"}
	case "+", "=":
		m.adjustWork(5)
	case "-":
		m.adjustWork(-5)
	}
	return m, nil
}

func (m *Model) adjustWork(deltaMin int) {
	work := m.Focus.Timer.WorkSec/60 + deltaMin
	if work < 5 {
		work = 5
	}
	if work > 120 {
		work = 120
	}
	m.Focus.Timer.SetDurations(time.Duration(work)*time.Minute, time.Duration(m.Focus.Timer.BreakSec)*time.Second)
	m.Status = StatusBar{Text: fmt.Sprintf("work length %dm", work)}
}

func (m Model) onFocusTick(msg FocusTickMsg) (tea.Model, tea.Cmd) {
	if !m.Focus.Timer.Running || msg.Gen != m.Focus.gen {
		return m, nil
	}
	if ev, ok := m.Focus.Timer.Tick(); ok {
		m.svc.Notify(ev.Title, ev.Body)
		m.notify(ev.Title, ev.Body)
		m.Status = StatusBar{Text: ev.Title + ": " + ev.Body}
	}
	return m, focusTickCmd(m.Focus.gen)
}

func (m Model) renderFocusView() string {
	t := m.Focus.Timer
	pct := t.Progress()
	return views.RenderFocusPanel(views.FocusPanelData{
		TaskTitle:    m.Focus.TaskTitle,
		Phase:        string(t.Phase),
		Timer:        t.Display(),
		Running:      t.Running,
		ProgressView: m.focusProgress.ViewAs(pct),
		ProgressPct:  int(pct * 100),
		Completed:    t.Completed,
		WorkMinutes:  t.WorkSec / 60,
		BreakMinutes: t.BreakSec / 60,
	})
}

// focusTickCmd schedules the next second. Ticks from an earlier start carry
// a stale generation and are dropped.
func focusTickCmd(gen int) tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg { return FocusTickMsg{Gen: gen} })
}
