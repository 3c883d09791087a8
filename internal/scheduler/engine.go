// Package scheduler fires in-memory reminders at their trigger time. Engine
// is the ordered timer queue; Reminders decides which tasks to arm and
// delivers fired reminders.
package scheduler

import (
	"container/heap"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sandeepkv93/protodo/internal/model"
)

var (
	ErrInvalidReminder = errors.New("scheduler: invalid reminder")
	ErrEngineStopped   = errors.New("scheduler: engine stopped")
)

const DefaultBuffer = 64

// armed is a queued reminder. seq keeps reminders sharing a trigger time in
// the order they were armed.
type armed struct {
	rem model.Reminder
	seq uint64
}

type armedQueue []armed

func (q armedQueue) Len() int { return len(q) }

func (q armedQueue) Less(i, j int) bool {
	a, b := q[i].rem.TriggerAt, q[j].rem.TriggerAt
	if !a.Equal(b) {
		return a.Before(b)
	}
	return q[i].seq < q[j].seq
}

func (q armedQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *armedQueue) Push(x any) { *q = append(*q, x.(armed)) }

func (q *armedQueue) Pop() any {
	old := *q
	last := old[len(old)-1]
	*q = old[:len(old)-1]
	return last
}

type EngineOptions struct {
	// Buffer is the capacity of C. Reminders that fire while it is full are
	// dropped and reported to the drop handler.
	Buffer int
	Now    func() time.Time
}

// Engine owns one goroutine that sleeps until the earliest armed reminder is
// due and then emits it on C. Emission never blocks the timer.
type Engine struct {
	mu      sync.Mutex
	queue   armedQueue
	seq     uint64
	onDrop  func(model.Reminder)
	running bool
	stopped bool

	now     func() time.Time
	out     chan model.Reminder
	kick    chan struct{}
	quit    chan struct{}
	done    chan struct{}
	dropped atomic.Uint64
}

func NewEngine(opts EngineOptions) *Engine {
	if opts.Buffer <= 0 {
		opts.Buffer = DefaultBuffer
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Engine{
		now:  opts.Now,
		out:  make(chan model.Reminder, opts.Buffer),
		kick: make(chan struct{}, 1),
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
}

// C yields fired reminders. It is closed once the engine stops.
func (e *Engine) C() <-chan model.Reminder { return e.out }

// OnDrop sets the handler called, on the engine goroutine, for every reminder
// discarded because C was full. It must not block.
func (e *Engine) OnDrop(fn func(model.Reminder)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onDrop = fn
}

func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running || e.stopped {
		return
	}
	e.running = true
	go e.run()
}

// Stop halts the timer goroutine and closes C. Reminders still queued are
// discarded.
func (e *Engine) Stop() {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return
	}
	e.stopped = true
	running := e.running
	close(e.quit)
	e.mu.Unlock()
	if running {
		<-e.done
	} else {
		close(e.out)
	}
}

// Schedule arms rem. A stopped engine rejects every reminder.
func (e *Engine) Schedule(rem model.Reminder) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return ErrEngineStopped
	}
	if err := rem.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidReminder, err)
	}
	e.seq++
	heap.Push(&e.queue, armed{rem: rem, seq: e.seq})
	select {
	case e.kick <- struct{}{}:
	default:
	}
	return nil
}

// Pending reports how many reminders are armed and not yet fired.
func (e *Engine) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.queue)
}

// Dropped counts fired reminders discarded because C was full.
func (e *Engine) Dropped() uint64 { return e.dropped.Load() }

func (e *Engine) run() {
	defer close(e.done)
	defer close(e.out)

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		var fire <-chan time.Time
		if next, ok := e.peek(); ok {
			timer.Reset(max(0, next.TriggerAt.Sub(e.now())))
			fire = timer.C
		}

		select {
		case <-fire:
			for _, rem := range e.takeDue(e.now()) {
				e.emit(rem)
			}
		case <-e.kick:
			timer.Stop()
		case <-e.quit:
			return
		}
	}
}

func (e *Engine) emit(rem model.Reminder) {
	select {
	case e.out <- rem:
		return
	default:
	}
	e.dropped.Add(1)
	e.mu.Lock()
	onDrop := e.onDrop
	e.mu.Unlock()
	if onDrop != nil {
		onDrop(rem)
	}
}

func (e *Engine) peek() (model.Reminder, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.queue) == 0 {
		return model.Reminder{}, false
	}
	return e.queue[0].rem, true
}

// takeDue pops every reminder whose trigger time is not after now.
func (e *Engine) takeDue(now time.Time) []model.Reminder {
	e.mu.Lock()
	defer e.mu.Unlock()
	var due []model.Reminder
	for len(e.queue) > 0 && !e.queue[0].rem.TriggerAt.After(now) {
		due = append(due, heap.Pop(&e.queue).(armed).rem)
	}
	return due
}
