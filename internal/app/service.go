// Package app wires configuration, storage, the stores, reminders and command
// dispatch into one Service shared by the CLI and the TUI.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/sandeepkv93/protodo/internal/codec"
	"github.com/sandeepkv93/protodo/internal/commands"
	"github.com/sandeepkv93/protodo/internal/config"
	"github.com/sandeepkv93/protodo/internal/model"
	"github.com/sandeepkv93/protodo/internal/notify"
	"github.com/sandeepkv93/protodo/internal/scheduler"
	"github.com/sandeepkv93/protodo/internal/storage"
	"github.com/sandeepkv93/protodo/internal/store"
)

type Options struct {
	Logger *log.Logger
	Now    func() time.Time
	NewID  func() string
	// KV replaces the configured storage backend.
	KV storage.KV
	// Notifier replaces the configured desktop notifier.
	Notifier notify.Notifier
}

type Service struct {
	cfg    config.Config
	logger *log.Logger
	kv     storage.KV

	Tasks     *store.Store
	Settings  *store.SettingsStore
	Reminders *scheduler.Reminders

	engine   *scheduler.Engine
	notifier notify.Notifier

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	started bool
}

// Open builds a Service and loads persisted state. It does not start the
// reminder loop; call Start for that.
func Open(ctx context.Context, cfg config.Config, opts Options) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	horizon, err := cfg.Horizon()
	if err != nil {
		return nil, err
	}

	kv := opts.KV
	if kv == nil {
		kv, err = storage.Open(cfg.Backend, cfg.DataDir, cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open storage: %w", err)
		}
	}

	tasks := store.New(kv, store.Options{Logger: opts.Logger, Now: opts.Now, NewID: opts.NewID})
	if err := tasks.Load(ctx); err != nil {
		_ = kv.Close()
		return nil, err
	}
	settings := store.NewSettings(kv, opts.Logger)
	if err := settings.Load(ctx); err != nil {
		_ = kv.Close()
		return nil, err
	}

	notifier := opts.Notifier
	if notifier == nil {
		var primary notify.Notifier = notify.Noop{}
		if cfg.DesktopNotifications {
			primary = notify.NewDesktop()
		}
		notifier = notify.NewFallback(primary, opts.Logger)
	}

	engine := scheduler.NewEngine(scheduler.EngineOptions{Buffer: cfg.SchedulerBuffer})
	reminders := scheduler.NewReminders(engine, notifier, tasks, scheduler.Options{
		Horizon: horizon,
		Now:     opts.Now,
		Logger:  opts.Logger,
	})

	return &Service{
		cfg:       cfg,
		logger:    opts.Logger,
		kv:        kv,
		Tasks:     tasks,
		Settings:  settings,
		Reminders: reminders,
		engine:    engine,
		notifier:  notifier,
	}, nil
}

func (s *Service) Config() config.Config { return s.cfg }

// Start asks for notification permission, starts the reminder loop and arms
// reminders for the loaded collection. It returns the number armed.
func (s *Service) Start(ctx context.Context) int {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return 0
	}
	s.started = true
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.mu.Unlock()

	if !s.notifier.RequestPermission() {
		s.logger.Printf("[app] notification permission denied")
	}
	s.engine.Start()
	go func() {
		defer close(s.done)
		s.Reminders.Run(runCtx)
	}()
	armed := s.Reminders.ArmAll(s.Tasks.List())
	s.logger.Printf("[app] armed %d reminder(s)", armed)
	return armed
}

// OnReminder registers fn to observe every fired reminder.
func (s *Service) OnReminder(fn func(model.Reminder)) {
	s.Reminders.OnFire(fn)
}

func (s *Service) Close() error {
	s.mu.Lock()
	started := s.started
	cancel := s.cancel
	done := s.done
	s.mu.Unlock()
	if started {
		cancel()
		s.engine.Stop()
		<-done
		s.logger.Printf("[app] reminders stopped: %d pending, %d dropped", s.Reminders.Pending(), s.Reminders.Dropped())
	}
	return s.kv.Close()
}

// Notify shows a notification outside the reminder loop, such as a focus
// phase change. Failures are logged.
func (s *Service) Notify(title, body string) {
	if err := s.notifier.Show(title, body); err != nil {
		s.logger.Printf("[app] notify %q failed: %v", title, err)
	}
}

// Add creates a task and arms its reminder.
func (s *Service) Add(ctx context.Context, in store.CreateInput) (model.Task, error) {
	task, err := s.Tasks.Create(ctx, in)
	if err != nil {
		return model.Task{}, err
	}
	s.Reminders.Arm(task)
	return task, nil
}

func (s *Service) Import(ctx context.Context, r io.Reader) (int, error) {
	tasks, err := codec.DecodeJSON(r)
	if err != nil {
		return 0, err
	}
	return s.Tasks.ImportMany(ctx, tasks)
}

func (s *Service) ImportFile(ctx context.Context, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return s.Import(ctx, f)
}

func (s *Service) Export(w io.Writer, format codec.Format) error {
	return codec.Encode(w, format, s.Tasks.List())
}

func (s *Service) ExportFile(path string, format codec.Format) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := s.Export(f, format); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Dispatch runs one parsed command against the service.
func (s *Service) Dispatch(ctx context.Context, cmd commands.Command) (commands.Result, error) {
	return commands.Execute(cmd, s.Handlers(ctx))
}

func taskResult(format string, t model.Task) commands.Result {
	return commands.Result{Message: fmt.Sprintf(format, t.Text), Task: &t}
}

func (s *Service) Handlers(ctx context.Context) commands.Handlers {
	return commands.Handlers{
		Add: func(a commands.AddArgs) (commands.Result, error) {
			t, err := s.Add(ctx, store.CreateInput{
				Text:       a.Text,
				Due:        a.Due,
				Priority:   a.Priority,
				Categories: a.Categories,
				Subtasks:   a.Subtasks,
				Repeat:     a.Repeat,
			})
			if err != nil {
				return commands.Result{}, err
			}
			return taskResult("added %q", t), nil
		},
		Edit: func(a commands.EditArgs) (commands.Result, error) {
			t, err := s.Tasks.Update(ctx, a.ID, store.Patch{
				Text:       a.Text,
				Due:        a.Due,
				ClearDue:   a.ClearDue,
				Priority:   a.Priority,
				Categories: a.Categories,
				Repeat:     a.Repeat,
			})
			if err != nil {
				return commands.Result{}, err
			}
			return taskResult("updated %q", t), nil
		},
		Toggle: func(a commands.TargetArgs) (commands.Result, error) {
			t, err := s.Tasks.ToggleComplete(ctx, a.ID)
			if err != nil {
				return commands.Result{}, err
			}
			if t.Completed {
				return taskResult("completed %q", t), nil
			}
			return taskResult("reopened %q", t), nil
		},
		Subtask: func(a commands.TargetArgs) (commands.Result, error) {
			t, err := s.Tasks.ToggleSubtask(ctx, a.ID, a.SubtaskID)
			if err != nil {
				return commands.Result{}, err
			}
			done, total := t.SubtaskProgress()
			return commands.Result{Message: fmt.Sprintf("subtasks %d/%d on %q", done, total, t.Text), Task: &t}, nil
		},
		Delete: func(a commands.TargetArgs) (commands.Result, error) {
			if err := s.Tasks.Delete(ctx, a.ID); err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("deleted %s", a.ID)}, nil
		},
		Clear: func() (commands.Result, error) {
			if err := s.Tasks.Clear(ctx); err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: "deleted all tasks"}, nil
		},
		Import: func(a commands.ImportArgs) (commands.Result, error) {
			n, err := s.ImportFile(ctx, a.Path)
			if err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("imported %d task(s)", n)}, nil
		},
		Export: func(a commands.ExportArgs) (commands.Result, error) {
			if err := s.ExportFile(a.Path, a.Format); err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("exported %d task(s) to %s", s.Tasks.Len(), a.Path)}, nil
		},
		Show: func(a commands.ShowArgs) (commands.Result, error) {
			parts := make([]string, 0, 3)
			if a.Filter != "" {
				parts = append(parts, "filter="+string(a.Filter))
			}
			if a.Sort != "" {
				parts = append(parts, "sort="+string(a.Sort))
			}
			if a.Query != nil {
				parts = append(parts, fmt.Sprintf("query=%q", *a.Query))
			}
			msg := "view unchanged"
			if len(parts) > 0 {
				msg = "view " + strings.Join(parts, " ")
			}
			return commands.Result{Message: msg, Show: &a}, nil
		},
		Theme: func(a commands.ThemeArgs) (commands.Result, error) {
			st, err := s.Settings.SetTheme(ctx, a.Theme)
			if err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: "theme " + string(st.Theme)}, nil
		},
		Dark: func() (commands.Result, error) {
			if s.Settings.ToggleDark(ctx).Dark {
				return commands.Result{Message: "dark mode on"}, nil
			}
			return commands.Result{Message: "dark mode off"}, nil
		},
	}
}

// IsUserError reports whether err stems from bad input rather than a fault.
func IsUserError(err error) bool {
	var ce *commands.CommandError
	return errors.As(err, &ce) ||
		errors.Is(err, model.ErrValidation) ||
		errors.Is(err, model.ErrNotFound) ||
		errors.Is(err, model.ErrFormat)
}
