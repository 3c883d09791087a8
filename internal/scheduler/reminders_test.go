package scheduler

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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandeepkv93/protodo/internal/model"
)

type shown struct{ title, body string }

type fakeNotifier struct {
	mu    sync.Mutex
	shown []shown
}

func (f *fakeNotifier) RequestPermission() bool { return true }

func (f *fakeNotifier) Show(title, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shown = append(f.shown, shown{title, body})
	return nil
}

type fakeStamper struct {
	mu      sync.Mutex
	stamped []string
	fail    bool
}

func (f *fakeStamper) StampNotified(_ context.Context, id string, _ time.Time) (model.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return model.Task{}, fmt.Errorf("%w: %q", model.ErrNotFound, id)
	}
	f.stamped = append(f.stamped, id)
	return model.Task{ID: id}, nil
}

func dueIn(now time.Time, d time.Duration) *time.Time {
	v := now.Add(d)
	return &v
}

func TestArmPolicy(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		name string
		due  *time.Time
		want bool
	}{
		{name: "no due", due: nil, want: false},
		{name: "past", due: dueIn(now, -time.Minute), want: false},
		{name: "exactly now", due: dueIn(now, 0), want: false},
		{name: "in an hour", due: dueIn(now, time.Hour), want: true},
		{name: "in six days", due: dueIn(now, 6*24*time.Hour), want: true},
		{name: "at horizon", due: dueIn(now, 7*24*time.Hour), want: false},
		{name: "beyond horizon", due: dueIn(now, 8*24*time.Hour), want: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			engine := NewEngine(EngineOptions{Buffer: 1})
			r := NewReminders(engine, &fakeNotifier{}, nil, Options{Now: func() time.Time { return now }})
			got := r.Arm(model.Task{ID: "t1", Text: "x", Due: tc.due})
			assert.Equal(t, tc.want, got)
			if tc.want {
				assert.Equal(t, 1, engine.Pending())
			} else {
				assert.Equal(t, 0, engine.Pending())
			}
		})
	}
}

func TestArmUsesMinimumDelay(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	engine := NewEngine(EngineOptions{Buffer: 1})
	r := NewReminders(engine, nil, nil, Options{Now: func() time.Time { return now }})
	require.True(t, r.Arm(model.Task{ID: "soon", Due: dueIn(now, 10*time.Millisecond)}))

	next, ok := engine.peek()
	require.True(t, ok)
	assert.Equal(t, now.Add(time.Second), next.TriggerAt)
	assert.Equal(t, "soon", next.TaskID)
}

func TestArmIsNotDeduplicated(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	engine := NewEngine(EngineOptions{Buffer: 1})
	r := NewReminders(engine, nil, nil, Options{Now: func() time.Time { return now }})
	task := model.Task{ID: "same", Due: dueIn(now, time.Hour)}
	assert.Equal(t, 2, r.ArmAll([]model.Task{task, task, {ID: "nodue"}}))
	assert.Equal(t, 2, engine.Pending())
}

func TestArmHonoursCustomHorizon(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	r := NewReminders(NewEngine(EngineOptions{Buffer: 1}), nil, nil, Options{Now: func() time.Time { return now }, Horizon: time.Hour})
	assert.False(t, r.Arm(model.Task{ID: "a", Due: dueIn(now, 2*time.Hour)}))
	assert.True(t, r.Arm(model.Task{ID: "b", Due: dueIn(now, 30*time.Minute)}))
}

func TestRunShowsStampsAndNotifiesObservers(t *testing.T) {
	engine := NewEngine(EngineOptions{Buffer: 8})
	engine.Start()
	defer engine.Stop()

	notifier := &fakeNotifier{}
	stamper := &fakeStamper{}
	r := NewReminders(engine, notifier, stamper, Options{MinDelay: time.Millisecond, Logger: log.New(&bytes.Buffer{}, "", 0)})
	fired := make(chan model.Reminder, 1)
	r.OnFire(func(rem model.Reminder) { fired <- rem })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Run(ctx)

	require.True(t, r.Arm(model.Task{ID: "task-1", Text: "Pay rent", Due: dueIn(time.Now(), 30*time.Millisecond)}))

	select {
	case rem := <-fired:
		assert.Equal(t, "task-1", rem.TaskID)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for reminder")
	}

	notifier.mu.Lock()
	require.Len(t, notifier.shown, 1)
	assert.Equal(t, "Task due: Pay rent", notifier.shown[0].title)
	assert.Contains(t, notifier.shown[0].body, "Due ")
	notifier.mu.Unlock()

	stamper.mu.Lock()
	assert.Equal(t, []string{"task-1"}, stamper.stamped)
	stamper.mu.Unlock()
}

func TestRunLogsStampFailure(t *testing.T) {
	engine := NewEngine(EngineOptions{Buffer: 8})
	engine.Start()
	defer engine.Stop()

	var logs safeBuffer
	r := NewReminders(engine, &fakeNotifier{}, &fakeStamper{fail: true}, Options{MinDelay: time.Millisecond, Logger: log.New(&logs, "", 0)})
	fired := make(chan struct{}, 1)
	r.OnFire(func(model.Reminder) { fired <- struct{}{} })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Run(ctx)

	require.True(t, r.Arm(model.Task{ID: "deleted", Text: "gone", Due: dueIn(time.Now(), 20*time.Millisecond)}))
	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for reminder")
	}
	assert.Contains(t, logs.String(), "[reminders] stamp task=deleted failed")
}

func TestRunStopsOnCancel(t *testing.T) {
	engine := NewEngine(EngineOptions{Buffer: 1})
	r := NewReminders(engine, nil, nil, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestArmLogsScheduleFailure(t *testing.T) {
	engine := NewEngine(EngineOptions{Buffer: 1})
	engine.Start()
	engine.Stop()
	var logs bytes.Buffer
	r := NewReminders(engine, nil, nil, Options{Logger: log.New(&logs, "", 0)})
	assert.False(t, r.Arm(model.Task{ID: "x", Due: dueIn(time.Now(), time.Hour)}))
	assert.True(t, errors.Is(engine.Schedule(model.Reminder{TriggerAt: time.Now()}), ErrEngineStopped))
	assert.Contains(t, logs.String(), "[reminders] arm task=x failed")
}

func TestDroppedReminderIsLogged(t *testing.T) {
	engine := NewEngine(EngineOptions{Buffer: 1})
	engine.Start()
	defer engine.Stop()

	var logs safeBuffer
	r := NewReminders(engine, &fakeNotifier{}, nil, Options{MinDelay: time.Millisecond, Logger: log.New(&logs, "", 0)})

	// Nothing reads C, so the second reminder finds the buffer full.
	due := dueIn(time.Now(), 30*time.Millisecond)
	require.Equal(t, 2, r.ArmAll([]model.Task{
		{ID: "first", Text: "a", Due: due},
		{ID: "second", Text: "b", Due: due},
	}))

	want := "[reminders] dropped task=second due=" + model.FormatTime(*due)
	require.Eventually(t, func() bool { return strings.Contains(logs.String(), want) }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, uint64(1), r.Dropped())
	assert.Equal(t, 0, r.Pending())
}

type safeBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *safeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *safeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
