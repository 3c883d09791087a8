package update

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/protodo/internal/app"
	"github.com/sandeepkv93/protodo/internal/calendar"
	"github.com/sandeepkv93/protodo/internal/config"
	"github.com/sandeepkv93/protodo/internal/model"
	"github.com/sandeepkv93/protodo/internal/pomodoro"
	"github.com/sandeepkv93/protodo/internal/projection"
	"github.com/sandeepkv93/protodo/internal/storage"
	"github.com/sandeepkv93/protodo/internal/store"
)

var fixedNow = time.Date(2024, 2, 20, 9, 0, 0, 0, time.UTC)

type recordingNotifier struct {
	mu     sync.Mutex
	titles []string
}

func (r *recordingNotifier) RequestPermission() bool { return true }

func (r *recordingNotifier) Show(title, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.titles = append(r.titles, title)
	return nil
}

func newTestModel(t *testing.T) (Model, *app.Service, *recordingNotifier) {
	t.Helper()
	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	cfg.Backend = storage.BackendMemory
	n := 0
	notifier := &recordingNotifier{}
	svc, err := app.Open(context.Background(), cfg, app.Options{
		Logger:   log.New(&bytes.Buffer{}, "", 0),
		Now:      func() time.Time { return fixedNow },
		NewID:    func() string { n++; return fmt.Sprintf("id-%d", n) },
		KV:       storage.NewMemoryKV(),
		Notifier: notifier,
	})
	if err != nil {
		t.Fatalf("open service: %v", err)
	}
	t.Cleanup(func() { _ = svc.Close() })
	return NewModelWithOptions(svc, Options{Now: func() time.Time { return fixedNow }}), svc, notifier
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "space":
			msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
		case "left":
			msg = tea.KeyMsg{Type: tea.KeyLeft}
		case "right":
			msg = tea.KeyMsg{Type: tea.KeyRight}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		updated, _ := m.Update(msg)
		m = updated.(Model)
	}
	return m
}

func addTask(t *testing.T, svc *app.Service, in store.CreateInput) model.Task {
	t.Helper()
	task, err := svc.Add(context.Background(), in)
	if err != nil {
		t.Fatalf("add %q: %v", in.Text, err)
	}
	return task
}

func refreshed(m Model) Model {
	updated, _ := m.Update(TasksChangedMsg{})
	return updated.(Model)
}

func TestNewModelDefaults(t *testing.T) {
	m, _, _ := newTestModel(t)
	if m.CurrentView != ViewTasks {
		t.Fatalf("expected default view %q, got %q", ViewTasks, m.CurrentView)
	}
	if m.Tasks.Filter != projection.FilterAll || m.Tasks.Sort != projection.SortCreatedDesc {
		t.Fatalf("unexpected default projection %q/%q", m.Tasks.Filter, m.Tasks.Sort)
	}
	if m.Keys.Quit != "q" || m.Keys.Command != ":" {
		t.Fatalf("unexpected keys %+v", m.Keys)
	}
	if m.Calendar.Month != (calendar.Month{Year: 2024, Month: time.February}) || m.Calendar.Day != 20 {
		t.Fatalf("expected calendar on 2024-02-20, got %+v day %d", m.Calendar.Month, m.Calendar.Day)
	}
	if m.Focus.Timer.RemainingSec != 25*60 {
		t.Fatalf("expected 25 minute focus timer, got %d", m.Focus.Timer.RemainingSec)
	}
}

func TestUpdateKeySwitchesView(t *testing.T) {
	m, _, _ := newTestModel(t)
	next := press(t, m, "2")
	if next.CurrentView != ViewCalendar {
		t.Fatalf("expected calendar view, got %q", next.CurrentView)
	}
	next = press(t, next, "3")
	if next.CurrentView != ViewFocus {
		t.Fatalf("expected focus view, got %q", next.CurrentView)
	}
	next = press(t, next, "1")
	if next.CurrentView != ViewTasks {
		t.Fatalf("expected tasks view, got %q", next.CurrentView)
	}
}

func TestUpdateSwitchViewMsg(t *testing.T) {
	m, _, _ := newTestModel(t)
	updated, _ := m.Update(SwitchViewMsg{View: ViewCalendar})
	next := updated.(Model)
	if next.CurrentView != ViewCalendar {
		t.Fatalf("expected calendar view, got %q", next.CurrentView)
	}

	updated, _ = next.Update(SwitchViewMsg{View: View("Unknown")})
	next = updated.(Model)
	if next.CurrentView != ViewCalendar {
		t.Fatalf("expected view unchanged for unknown view, got %q", next.CurrentView)
	}
}

func TestUpdateStatusAndError(t *testing.T) {
	m, _, _ := newTestModel(t)
	updated, _ := m.Update(SetStatusMsg{Text: "ready"})
	next := updated.(Model)
	if next.Status.Text != "ready" || next.Status.IsError {
		t.Fatalf("unexpected status: %+v", next.Status)
	}

	updated, _ = next.Update(AppErrorMsg{Err: errors.New("boom")})
	next = updated.(Model)
	if next.LastError == nil || !next.Status.IsError {
		t.Fatalf("expected error status, got %+v", next.Status)
	}

	updated, _ = next.Update(ClearStatusMsg{})
	next = updated.(Model)
	if next.Status.Text != "" {
		t.Fatalf("expected cleared status, got %+v", next.Status)
	}
}

func TestUpdateQuitKey(t *testing.T) {
	m, _, _ := newTestModel(t)
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	next := updated.(Model)
	if !next.Quitting || cmd == nil {
		t.Fatalf("expected quit")
	}
}

func TestQuickAddWithKeyboard(t *testing.T) {
	m, svc, _ := newTestModel(t)
	m = press(t, m, "a")
	if m.Input != InputAdd {
		t.Fatalf("expected add input, got %q", m.Input)
	}
	m = press(t, m, "Pay rent due:2024-03-01 repeat:monthly", "enter")
	if m.Input != InputNone {
		t.Fatalf("expected input closed, got %q", m.Input)
	}
	if svc.Tasks.Len() != 1 || len(m.Tasks.Visible) != 1 {
		t.Fatalf("expected one task, store=%d visible=%d", svc.Tasks.Len(), len(m.Tasks.Visible))
	}
	got := m.Tasks.Visible[0]
	if got.Text != "Pay rent" || got.Repeat != model.RepeatMonthly || got.Due == nil {
		t.Fatalf("unexpected task %+v", got)
	}
	if m.Status.IsError || !strings.Contains(m.Status.Text, "Pay rent") {
		t.Fatalf("unexpected status %+v", m.Status)
	}
}

func TestQuickAddBlankIsIgnored(t *testing.T) {
	m, svc, _ := newTestModel(t)
	m = press(t, m, "a", "   ", "enter")
	if svc.Tasks.Len() != 0 || m.Status.IsError {
		t.Fatalf("blank add must be ignored, len=%d status=%+v", svc.Tasks.Len(), m.Status)
	}
}

func TestToggleRepeatingTaskSpawnsSuccessor(t *testing.T) {
	m, svc, _ := newTestModel(t)
	m = press(t, m, "a", "Pay rent due:2024-03-01 repeat:monthly", "enter", "x")
	if svc.Tasks.Len() != 2 {
		t.Fatalf("expected successor task, got %d", svc.Tasks.Len())
	}
	if len(m.Tasks.Visible) != 2 {
		t.Fatalf("expected both tasks visible, got %d", len(m.Tasks.Visible))
	}
	if !strings.Contains(m.Status.Text, "completed") {
		t.Fatalf("unexpected status %q", m.Status.Text)
	}
}

func TestFilterAndSortCycle(t *testing.T) {
	m, svc, _ := newTestModel(t)
	done := addTask(t, svc, store.CreateInput{Text: "Done already"})
	addTask(t, svc, store.CreateInput{Text: "Still open"})
	if _, err := svc.Tasks.ToggleComplete(context.Background(), done.ID); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	m = refreshed(m)

	m = press(t, m, "f")
	if m.Tasks.Filter != projection.FilterActive || len(m.Tasks.Visible) != 1 || m.Tasks.Visible[0].Text != "Still open" {
		t.Fatalf("expected active filter, got %q with %d tasks", m.Tasks.Filter, len(m.Tasks.Visible))
	}
	m = press(t, m, "s")
	if m.Tasks.Sort != projection.SortCreatedAsc {
		t.Fatalf("expected created_asc, got %q", m.Tasks.Sort)
	}
}

func TestSearchFiltersWhileTyping(t *testing.T) {
	m, svc, _ := newTestModel(t)
	addTask(t, svc, store.CreateInput{Text: "Buy milk"})
	addTask(t, svc, store.CreateInput{Text: "Call mom"})
	m = refreshed(m)

	m = press(t, m, "/", "MILK")
	if m.Input != InputSearch || len(m.Tasks.Visible) != 1 {
		t.Fatalf("expected one match while typing, got %d", len(m.Tasks.Visible))
	}
	m = press(t, m, "enter")
	if m.Tasks.Query != "MILK" || len(m.Tasks.Visible) != 1 {
		t.Fatalf("expected query kept, got %q", m.Tasks.Query)
	}
	m = press(t, m, "/", "esc")
	if m.Tasks.Query != "" || len(m.Tasks.Visible) != 2 {
		t.Fatalf("expected query cleared, got %q with %d", m.Tasks.Query, len(m.Tasks.Visible))
	}
}

func TestPaletteShowAppliesViewState(t *testing.T) {
	m, _, _ := newTestModel(t)
	m = press(t, m, "2", ":", "show filter:completed sort:due_asc q:rent", "enter")
	if m.CurrentView != ViewTasks {
		t.Fatalf("show should return to tasks, got %q", m.CurrentView)
	}
	if m.Tasks.Filter != projection.FilterCompleted || m.Tasks.Sort != projection.SortDueAsc || m.Tasks.Query != "rent" {
		t.Fatalf("unexpected view state %+v", m.Tasks)
	}
}

func TestPaletteErrorsSurfaceInStatus(t *testing.T) {
	m, _, _ := newTestModel(t)
	m = press(t, m, ":", "frobnicate now", "enter")
	if !m.Status.IsError || m.LastError == nil {
		t.Fatalf("expected error status, got %+v", m.Status)
	}
	m = press(t, m, ":", "toggle nope", "enter")
	if !m.Status.IsError || !errors.Is(m.LastError, model.ErrNotFound) {
		t.Fatalf("expected not found, got %v", m.LastError)
	}
}

func TestDeleteAndConfirmedClear(t *testing.T) {
	m, svc, _ := newTestModel(t)
	addTask(t, svc, store.CreateInput{Text: "one"})
	addTask(t, svc, store.CreateInput{Text: "two"})
	addTask(t, svc, store.CreateInput{Text: "three"})
	m = refreshed(m)

	m = press(t, m, "d")
	if svc.Tasks.Len() != 2 {
		t.Fatalf("expected delete, got %d", svc.Tasks.Len())
	}
	m = press(t, m, "C", "n")
	if svc.Tasks.Len() != 2 || m.Tasks.PendingClear {
		t.Fatalf("clear must need confirmation")
	}
	m = press(t, m, "C", "y")
	if svc.Tasks.Len() != 0 || len(m.Tasks.Visible) != 0 {
		t.Fatalf("expected all tasks cleared")
	}
}

func TestDetailPaneTogglesSubtask(t *testing.T) {
	m, svc, _ := newTestModel(t)
	task := addTask(t, svc, store.CreateInput{Text: "Trip", Subtasks: []string{"Book hotel", "Pack"}})
	m = refreshed(m)

	m = press(t, m, "enter")
	if !m.Tasks.DetailOpen {
		t.Fatalf("expected detail pane open")
	}
	m = press(t, m, "n", "c")
	got, err := svc.Tasks.Get(task.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Subtasks[0].Done || !got.Subtasks[1].Done {
		t.Fatalf("expected second subtask completed, got %+v", got.Subtasks)
	}
	if !strings.Contains(m.Status.Text, "1/2") {
		t.Fatalf("unexpected status %q", m.Status.Text)
	}
	m = press(t, m, "esc")
	if m.Tasks.DetailOpen {
		t.Fatalf("expected detail pane closed")
	}
}

func TestCalendarNavigationAndDayListing(t *testing.T) {
	m, svc, _ := newTestModel(t)
	due, _ := model.ParseDue("2024-02-20")
	addTask(t, svc, store.CreateInput{Text: "Dentist", Due: due})
	m = press(t, m, "2")

	if !strings.Contains(m.View(), "Dentist") {
		t.Fatalf("expected task listed on selected day")
	}
	if m.Calendar.Grid.Days[19].Count != 1 {
		t.Fatalf("expected count on the 20th, got %d", m.Calendar.Grid.Days[19].Count)
	}

	m = press(t, m, "l")
	if m.Calendar.Month != (calendar.Month{Year: 2024, Month: time.March}) || m.Calendar.Day != 20 {
		t.Fatalf("expected March 20, got %+v %d", m.Calendar.Month, m.Calendar.Day)
	}

	m.Calendar.Month = calendar.Month{Year: 2024, Month: time.February}
	m.Calendar.Day = 29
	m = press(t, m, "right")
	if m.selectedDate() != "2024-03-01" {
		t.Fatalf("expected rollover to 2024-03-01, got %s", m.selectedDate())
	}

	m.Calendar.Month = calendar.Month{Year: 2024, Month: time.January}
	m.Calendar.Day = 31
	m = press(t, m, "l")
	if m.selectedDate() != "2024-02-29" {
		t.Fatalf("expected clamp to 2024-02-29, got %s", m.selectedDate())
	}

	m.Calendar.Month = calendar.Month{Year: 2024, Month: time.January}
	m = press(t, m, "h")
	if m.Calendar.Month != (calendar.Month{Year: 2023, Month: time.December}) {
		t.Fatalf("expected December 2023, got %+v", m.Calendar.Month)
	}

	m = press(t, m, "g")
	if m.selectedDate() != "2024-02-20" {
		t.Fatalf("expected today, got %s", m.selectedDate())
	}
}

func TestFocusStartPauseAndTick(t *testing.T) {
	m, _, _ := newTestModel(t)
	m = press(t, m, "3")
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	m = updated.(Model)
	if !m.Focus.Timer.Running || cmd == nil {
		t.Fatalf("expected running timer with tick cmd")
	}

	updated, _ = m.Update(FocusTickMsg{Gen: m.Focus.gen})
	m = updated.(Model)
	if m.Focus.Timer.RemainingSec != 25*60-1 {
		t.Fatalf("expected one second elapsed, got %d", m.Focus.Timer.RemainingSec)
	}

	updated, cmd = m.Update(FocusTickMsg{Gen: m.Focus.gen - 1})
	m = updated.(Model)
	if cmd != nil || m.Focus.Timer.RemainingSec != 25*60-1 {
		t.Fatalf("stale tick must be ignored")
	}

	m = press(t, m, "space")
	if m.Focus.Timer.Running {
		t.Fatalf("expected paused timer")
	}
	m = press(t, m, "r")
	if m.Focus.Timer.RemainingSec != 25*60 {
		t.Fatalf("expected reset, got %d", m.Focus.Timer.RemainingSec)
	}
	m = press(t, m, "+")
	if m.Focus.Timer.WorkSec != 30*60 || m.Focus.Timer.RemainingSec != 30*60 {
		t.Fatalf("expected 30 minute work phase, got %d", m.Focus.Timer.WorkSec)
	}
}

func TestFocusPhaseChangeNotifies(t *testing.T) {
	m, _, notifier := newTestModel(t)
	m.Focus.Timer = pomodoro.New(2*time.Second, time.Second)
	m = press(t, m, "3", "space")
	for i := 0; i < 2; i++ {
		updated, _ := m.Update(FocusTickMsg{Gen: m.Focus.gen})
		m = updated.(Model)
	}
	if m.Focus.Timer.Phase != pomodoro.PhaseBreak || m.Focus.Timer.Completed != 1 {
		t.Fatalf("expected break phase, got %+v", m.Focus.Timer)
	}
	if len(m.Notifications) == 0 || m.Notifications[len(m.Notifications)-1].Title != "Pomodoro complete" {
		t.Fatalf("expected in-app notification, got %+v", m.Notifications)
	}
	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	if len(notifier.titles) != 1 || notifier.titles[0] != "Pomodoro complete" {
		t.Fatalf("expected desktop notification, got %v", notifier.titles)
	}
}

func TestFocusViewUsesSelectedTask(t *testing.T) {
	m, svc, _ := newTestModel(t)
	addTask(t, svc, store.CreateInput{Text: "Write report"})
	m = refreshed(m)
	m = press(t, m, "3")
	if m.Focus.TaskTitle != "Write report" {
		t.Fatalf("expected focus task, got %q", m.Focus.TaskTitle)
	}
	view := m.View()
	if !strings.Contains(view, "focus:") || !strings.Contains(view, "25:00") {
		t.Fatalf("unexpected focus view:\n%s", view)
	}
}

func TestInitReturnsReminderCmd(t *testing.T) {
	m, _, _ := newTestModel(t)
	if m.Init() == nil {
		t.Fatalf("expected reminder wait cmd")
	}
}

func TestReminderDueMsgAppendsLogAndRewaits(t *testing.T) {
	m, _, _ := newTestModel(t)
	r := model.Reminder{ID: "r1", TaskID: "id-1", Text: "Dentist", Due: fixedNow, TriggerAt: fixedNow}
	updated, cmd := m.Update(ReminderDueMsg{Reminder: r})
	next := updated.(Model)
	if len(next.ReminderLog) != 1 || cmd == nil {
		t.Fatalf("expected logged reminder and another wait")
	}
	if got := next.Notifications[len(next.Notifications)-1]; got.Title != "Task due: Dentist" {
		t.Fatalf("unexpected notification %+v", got)
	}
	if !strings.Contains(next.View(), "last reminder: Dentist") {
		t.Fatalf("expected reminder line in view")
	}
}

func TestWaitForReminderCmdReadsFeed(t *testing.T) {
	m, svc, _ := newTestModel(t)
	soon := fixedNow.Add(time.Hour)
	task := addTask(t, svc, store.CreateInput{Text: "Standup", Due: &soon})

	select {
	case m.reminders <- model.Reminder{ID: "r", TaskID: task.ID, Text: task.Text, TriggerAt: fixedNow}:
	default:
		t.Fatalf("reminder feed is full")
	}
	msg := waitForReminderCmd(m.reminders)()
	due, ok := msg.(ReminderDueMsg)
	if !ok || due.Reminder.TaskID != task.ID {
		t.Fatalf("unexpected msg %#v", msg)
	}
}

func TestThemeAndDarkKeysPersistSettings(t *testing.T) {
	m, svc, _ := newTestModel(t)
	m = press(t, m, "T")
	if m.Settings.Theme != model.ThemeGreen || svc.Settings.Get().Theme != model.ThemeGreen {
		t.Fatalf("expected green theme, got %q", m.Settings.Theme)
	}
	m = press(t, m, "T", "T")
	if m.Settings.Theme != model.ThemeDefault {
		t.Fatalf("expected theme cycle back to default, got %q", m.Settings.Theme)
	}
	m = press(t, m, "D")
	if !m.Settings.Dark || !svc.Settings.Get().Dark {
		t.Fatalf("expected dark mode on")
	}
	if !strings.Contains(m.View(), "dark: on") {
		t.Fatalf("expected header to show dark mode")
	}
}

func TestHelpToggleRendersBindings(t *testing.T) {
	m, _, _ := newTestModel(t)
	m = press(t, m, "?")
	if !m.HelpVisible {
		t.Fatalf("expected help visible")
	}
	view := m.View()
	if !strings.Contains(view, "help (tasks view)") || !strings.Contains(view, "quick add") {
		t.Fatalf("expected help panel in view:\n%s", view)
	}
}

func TestViewContainsCoreState(t *testing.T) {
	m, svc, _ := newTestModel(t)
	addTask(t, svc, store.CreateInput{Text: "Buy milk", Priority: model.PriorityHigh, Categories: []string{"home"}})
	m = refreshed(m)
	view := m.View()
	for _, want := range []string{"protodo | view: Tasks", "filter: All", "Buy milk", "[HIGH]", "#home", "(0/1)"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in view:\n%s", want, view)
		}
	}
}
