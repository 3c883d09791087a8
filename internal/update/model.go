package update

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"

	"github.com/sandeepkv93/protodo/internal/app"
	"github.com/sandeepkv93/protodo/internal/calendar"
	"github.com/sandeepkv93/protodo/internal/model"
	"github.com/sandeepkv93/protodo/internal/pomodoro"
	"github.com/sandeepkv93/protodo/internal/projection"
)

type View string

const (
	ViewTasks    View = "Tasks"
	ViewCalendar View = "Calendar"
	ViewFocus    View = "Focus"
)

type InputMode string

const (
	InputNone    InputMode = ""
	InputAdd     InputMode = "add"
	InputSearch  InputMode = "search"
	InputCommand InputMode = "command"
)

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	Tasks    string
	Calendar string
	Focus    string
	Command  string
	Help     string
	Quit     string
}

type TasksState struct {
	Filter        projection.Filter
	Sort          projection.SortKey
	Query         string
	Visible       []model.Task
	Cursor        int
	DetailOpen    bool
	SubtaskCursor int
	PendingClear  bool
}

type CalendarState struct {
	Month calendar.Month
	Day   int
	Grid  calendar.MonthGrid
}

type FocusState struct {
	Timer     pomodoro.Timer
	TaskID    string
	TaskTitle string
	gen       int
}

type Notification struct {
	Title string
	Body  string
	At    time.Time
}

type Model struct {
	CurrentView   View
	Tasks         TasksState
	Calendar      CalendarState
	Focus         FocusState
	Settings      model.Settings
	Input         InputMode
	HelpVisible   bool
	Notifications []Notification
	ReminderLog   []model.Reminder
	Status        StatusBar
	Keys          GlobalKeyMap
	Quitting      bool
	LastError     error

	svc       *app.Service
	ctx       context.Context
	now       func() time.Time
	reminders chan model.Reminder

	addInput       textinput.Model
	searchInput    textinput.Model
	commandInput   textinput.Model
	taskProgress   progress.Model
	focusProgress  progress.Model
	calendarTable  table.Model
	detailViewport viewport.Model
	helpModel      help.Model
}

type Options struct {
	Context context.Context
	Now     func() time.Time
}

type SwitchViewMsg struct {
	View View
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

type FocusTickMsg struct {
	Gen int
}

type ReminderDueMsg struct {
	Reminder model.Reminder
}

// TasksChangedMsg asks the model to re-read the collection, e.g. after a
// reminder stamped a task from the background loop.
type TasksChangedMsg struct{}

func NewModel(svc *app.Service) Model {
	return NewModelWithOptions(svc, Options{})
}

func NewModelWithOptions(svc *app.Service, opts Options) Model {
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	cfg := svc.Config()

	filter, err := projection.ParseFilter(cfg.DefaultFilter)
	if err != nil {
		filter = projection.FilterAll
	}
	sortKey, err := projection.ParseSort(cfg.DefaultSort)
	if err != nil {
		sortKey = projection.SortCreatedDesc
	}

	m := Model{
		CurrentView: ViewTasks,
		Tasks: TasksState{
			Filter: filter,
			Sort:   sortKey,
		},
		Calendar: CalendarState{
			Month: calendar.Current(opts.Now()),
			Day:   opts.Now().Day(),
		},
		Focus: FocusState{
			Timer: pomodoro.New(cfg.FocusWork(), cfg.FocusBreak()),
		},
		Settings: svc.Settings.Get(),
		Keys: GlobalKeyMap{
			Tasks:    "1",
			Calendar: "2",
			Focus:    "3",
			Command:  ":",
			Help:     "?",
			Quit:     "q",
		},
		svc:       svc,
		ctx:       opts.Context,
		now:       opts.Now,
		reminders: make(chan model.Reminder, 16),
	}

	ch := m.reminders
	svc.OnReminder(func(r model.Reminder) {
		select {
		case ch <- r:
		default:
		}
	})

	m.initBubbleComponents()
	m.refresh()
	return m
}

func (m *Model) initBubbleComponents() {
	m.addInput = textinput.New()
	m.addInput.Prompt = "add> "
	m.addInput.Placeholder = "Pay rent due:2024-03-01 p:high cat:home repeat:monthly"
	m.addInput.CharLimit = 256
	m.addInput.Width = 52

	m.searchInput = textinput.New()
	m.searchInput.Prompt = "search> "
	m.searchInput.CharLimit = 128
	m.searchInput.Width = 48

	m.commandInput = textinput.New()
	m.commandInput.Prompt = ":"
	m.commandInput.CharLimit = 256
	m.commandInput.Width = 52

	m.taskProgress = progress.New(progress.WithDefaultGradient(), progress.WithWidth(24), progress.WithoutPercentage())
	m.focusProgress = progress.New(progress.WithDefaultGradient(), progress.WithWidth(32), progress.WithoutPercentage())

	cols := make([]table.Column, 0, 7)
	for _, wd := range []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"} {
		cols = append(cols, table.Column{Title: wd, Width: 7})
	}
	m.calendarTable = table.New(table.WithColumns(cols), table.WithRows([]table.Row{}), table.WithFocused(true), table.WithHeight(7))

	m.detailViewport = viewport.New(54, 14)
	m.helpModel = help.New()
	m.helpModel.ShowAll = true
}

// refresh re-derives everything the views read from the service.
func (m *Model) refresh() {
	m.Settings = m.svc.Settings.Get()
	all := m.svc.Tasks.List()
	m.Tasks.Visible = projection.Project(all, m.Tasks.Filter, m.Tasks.Query, m.Tasks.Sort)
	m.clampTaskCursor()
	m.Calendar.Grid = calendar.Grid(m.Calendar.Month, all)
	m.syncBubbleData()
}
