package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sandeepkv93/protodo/internal/model"
	"github.com/sandeepkv93/protodo/internal/notify"
)

const (
	DefaultHorizon  = 7 * 24 * time.Hour
	DefaultMinDelay = time.Second
)

// Stamper records that a reminder fired for a task.
type Stamper interface {
	StampNotified(ctx context.Context, id string, at time.Time) (model.Task, error)
}

type Options struct {
	Horizon  time.Duration
	MinDelay time.Duration
	Now      func() time.Time
	NewID    func() string
	Logger   *log.Logger
}

func (o Options) withDefaults() Options {
	if o.Horizon <= 0 {
		o.Horizon = DefaultHorizon
	}
	if o.MinDelay <= 0 {
		o.MinDelay = DefaultMinDelay
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.NewID == nil {
		o.NewID = uuid.NewString
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	return o
}

// Reminders arms due-date reminders on an Engine and delivers them when they
// fire. Armed reminders are never retracted; a reminder for a task deleted in
// the meantime still notifies and only the stamp fails.
type Reminders struct {
	engine   *Engine
	notifier notify.Notifier
	stamper  Stamper
	opts     Options

	mu        sync.Mutex
	observers []func(model.Reminder)
}

func NewReminders(engine *Engine, notifier notify.Notifier, stamper Stamper, opts Options) *Reminders {
	if notifier == nil {
		notifier = notify.Noop{}
	}
	r := &Reminders{
		engine:   engine,
		notifier: notifier,
		stamper:  stamper,
		opts:     opts.withDefaults(),
	}
	engine.OnDrop(r.dropped)
	return r
}

// Pending reports how many armed reminders have not fired yet.
func (r *Reminders) Pending() int { return r.engine.Pending() }

// Dropped reports how many fired reminders were never delivered.
func (r *Reminders) Dropped() uint64 { return r.engine.Dropped() }

// dropped runs on the engine goroutine when delivery is backed up, e.g. while
// a desktop notification command is still running.
func (r *Reminders) dropped(rem model.Reminder) {
	r.opts.Logger.Printf("[reminders] dropped task=%s due=%s: delivery backlog full",
		rem.TaskID, model.FormatTime(rem.Due))
}

// OnFire registers fn to receive every fired reminder after it was shown.
func (r *Reminders) OnFire(fn func(model.Reminder)) {
	if fn == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observers = append(r.observers, fn)
}

// Arm schedules a reminder for task when its due time lies in the future and
// within the horizon. Each call arms an independent reminder.
func (r *Reminders) Arm(task model.Task) bool {
	if task.Due == nil {
		return false
	}
	now := r.opts.Now()
	delta := task.Due.Sub(now)
	if delta <= 0 || delta >= r.opts.Horizon {
		return false
	}
	delay := max(r.opts.MinDelay, delta)
	rem := model.Reminder{
		ID:        r.opts.NewID(),
		TaskID:    task.ID,
		Text:      task.Text,
		Due:       *task.Due,
		TriggerAt: now.Add(delay),
	}
	if err := r.engine.Schedule(rem); err != nil {
		r.opts.Logger.Printf("[reminders] arm task=%s failed: %v", task.ID, err)
		return false
	}
	return true
}

// ArmAll arms every eligible task and returns how many were armed.
func (r *Reminders) ArmAll(tasks []model.Task) int {
	armed := 0
	for _, t := range tasks {
		if r.Arm(t) {
			armed++
		}
	}
	return armed
}

// Run delivers fired reminders until ctx is cancelled or the engine stops.
func (r *Reminders) Run(ctx context.Context) {
	ch := r.engine.C()
	for {
		select {
		case <-ctx.Done():
			return
		case rem, ok := <-ch:
			if !ok {
				return
			}
			r.fire(ctx, rem)
		}
	}
}

func (r *Reminders) fire(ctx context.Context, rem model.Reminder) {
	if err := r.notifier.Show(rem.Title(), rem.Body()); err != nil {
		r.opts.Logger.Printf("[reminders] show task=%s failed: %v", rem.TaskID, err)
	}
	if r.stamper != nil {
		if _, err := r.stamper.StampNotified(ctx, rem.TaskID, r.opts.Now()); err != nil {
			r.opts.Logger.Printf("[reminders] stamp task=%s failed: %v", rem.TaskID, err)
		}
	}
	r.mu.Lock()
	observers := append([]func(model.Reminder){}, r.observers...)
	r.mu.Unlock()
	for _, fn := range observers {
		fn(rem)
	}
}
