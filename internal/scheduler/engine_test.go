package scheduler

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sandeepkv93/protodo/internal/model"
)

func TestEngineEmitsInTriggerOrder(t *testing.T) {
	engine := NewEngine(EngineOptions{Buffer: 8})
	engine.Start()
	defer engine.Stop()

	now := time.Now().UTC()
	if err := engine.Schedule(model.Reminder{ID: "later", TaskID: "t", TriggerAt: now.Add(80 * time.Millisecond)}); err != nil {
		t.Fatalf("schedule later: %v", err)
	}
	if err := engine.Schedule(model.Reminder{ID: "sooner", TaskID: "t", TriggerAt: now.Add(20 * time.Millisecond)}); err != nil {
		t.Fatalf("schedule sooner: %v", err)
	}

	first := waitEvent(t, engine.C(), time.Second)
	second := waitEvent(t, engine.C(), time.Second)
	if first.ID != "sooner" || second.ID != "later" {
		t.Fatalf("unexpected order: first=%s second=%s", first.ID, second.ID)
	}
}

func TestEngineNonBlockingDropsWhenConsumerIsSlow(t *testing.T) {
	engine := NewEngine(EngineOptions{Buffer: 1})
	engine.Start()
	defer engine.Stop()

	now := time.Now().UTC().Add(20 * time.Millisecond)
	for i := 0; i < 25; i++ {
		if err := engine.Schedule(model.Reminder{
			ID:        "evt",
			TaskID:    "t",
			TriggerAt: now,
		}); err != nil {
			t.Fatalf("schedule event: %v", err)
		}
	}

	time.Sleep(120 * time.Millisecond)
	if engine.Dropped() == 0 {
		t.Fatalf("expected dropped events > 0, got %d", engine.Dropped())
	}
}

func TestScheduleRejectsInvalidReminders(t *testing.T) {
	engine := NewEngine(EngineOptions{Buffer: 1})
	bad := []model.Reminder{
		{ID: "no-trigger", TaskID: "t"},
		{ID: "no-task", TriggerAt: time.Now()},
		{TaskID: "t", TriggerAt: time.Now()},
	}
	for _, rem := range bad {
		if err := engine.Schedule(rem); !errors.Is(err, ErrInvalidReminder) {
			t.Fatalf("expected ErrInvalidReminder for %+v, got %v", rem, err)
		}
	}
	if got := engine.Pending(); got != 0 {
		t.Fatalf("expected nothing armed, got %d", got)
	}
}

func TestEngineKeepsArmingOrderForEqualTriggers(t *testing.T) {
	engine := NewEngine(EngineOptions{Buffer: 8})
	engine.Start()
	defer engine.Stop()

	at := time.Now().UTC().Add(20 * time.Millisecond)
	for _, id := range []string{"a", "b", "c"} {
		if err := engine.Schedule(model.Reminder{ID: id, TaskID: id, TriggerAt: at}); err != nil {
			t.Fatalf("schedule %s: %v", id, err)
		}
	}
	for _, want := range []string{"a", "b", "c"} {
		if got := waitEvent(t, engine.C(), time.Second); got.ID != want {
			t.Fatalf("expected %s, got %s", want, got.ID)
		}
	}
}

func TestEngineReportsDroppedReminders(t *testing.T) {
	engine := NewEngine(EngineOptions{Buffer: 1})
	var mu sync.Mutex
	var dropped []string
	engine.OnDrop(func(rem model.Reminder) {
		mu.Lock()
		dropped = append(dropped, rem.ID)
		mu.Unlock()
	})
	engine.Start()
	defer engine.Stop()

	at := time.Now().UTC().Add(30 * time.Millisecond)
	for _, id := range []string{"kept", "lost-1", "lost-2"} {
		if err := engine.Schedule(model.Reminder{ID: id, TaskID: id, TriggerAt: at}); err != nil {
			t.Fatalf("schedule %s: %v", id, err)
		}
	}

	seen := func() int {
		mu.Lock()
		defer mu.Unlock()
		return len(dropped)
	}
	deadline := time.Now().Add(time.Second)
	for seen() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	mu.Lock()
	defer mu.Unlock()
	if engine.Dropped() != 2 {
		t.Fatalf("expected 2 dropped, got %d", engine.Dropped())
	}
	if len(dropped) != 2 || dropped[0] != "lost-1" || dropped[1] != "lost-2" {
		t.Fatalf("unexpected dropped reminders: %v", dropped)
	}
	if got := waitEvent(t, engine.C(), time.Second); got.ID != "kept" {
		t.Fatalf("expected kept reminder on the channel, got %s", got.ID)
	}
}

func TestStopWithoutStartClosesChannel(t *testing.T) {
	engine := NewEngine(EngineOptions{})
	engine.Stop()
	if _, ok := <-engine.C(); ok {
		t.Fatal("expected closed channel")
	}
	engine.Start()
	if err := engine.Schedule(model.Reminder{ID: "r", TaskID: "t", TriggerAt: time.Now()}); !errors.Is(err, ErrEngineStopped) {
		t.Fatalf("expected ErrEngineStopped, got %v", err)
	}
}

func TestEnginePendingAndStop(t *testing.T) {
	engine := NewEngine(EngineOptions{Buffer: 1})
	engine.Start()

	if err := engine.Schedule(model.Reminder{ID: "far", TaskID: "t", TriggerAt: time.Now().Add(time.Hour)}); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if got := engine.Pending(); got != 1 {
		t.Fatalf("expected 1 pending reminder, got %d", got)
	}

	engine.Stop()
	if err := engine.Schedule(model.Reminder{ID: "late", TaskID: "t", TriggerAt: time.Now()}); !errors.Is(err, ErrEngineStopped) {
		t.Fatalf("expected ErrEngineStopped, got %v", err)
	}
	if _, ok := <-engine.C(); ok {
		t.Fatal("expected output channel to be closed after Stop")
	}
}

func waitEvent(t *testing.T, ch <-chan model.Reminder, timeout time.Duration) model.Reminder {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(timeout):
		t.Fatalf("timed out waiting for event")
		return model.Reminder{}
	}
}
