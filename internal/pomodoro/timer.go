// Package pomodoro is the work/break focus timer. It is driven by one Tick
// per second from the caller and owns no goroutine.
package pomodoro

import (
	"fmt"
	"time"
)

type Phase string

const (
	PhaseWork  Phase = "work"
	PhaseBreak Phase = "break"
)

const (
	DefaultWork  = 25 * time.Minute
	DefaultBreak = 5 * time.Minute
)

// Event is a notification raised by a phase change.
type Event struct {
	Title string
	Body  string
}

type Timer struct {
	WorkSec      int
	BreakSec     int
	RemainingSec int
	Phase        Phase
	Running      bool
	Completed    int
}

func New(work, brk time.Duration) Timer {
	t := Timer{Phase: PhaseWork}
	t.SetDurations(work, brk)
	t.RemainingSec = t.WorkSec
	return t
}

// SetDurations changes both phase lengths. Non-positive values fall back to
// the defaults. A paused timer is rewound to the new length of its phase.
func (t *Timer) SetDurations(work, brk time.Duration) {
	if work <= 0 {
		work = DefaultWork
	}
	if brk <= 0 {
		brk = DefaultBreak
	}
	t.WorkSec = int(work / time.Second)
	t.BreakSec = int(brk / time.Second)
	if !t.Running {
		t.RemainingSec = t.total()
	}
}

func (t *Timer) Start() {
	if t.RemainingSec <= 0 {
		t.RemainingSec = t.total()
	}
	t.Running = true
}

func (t *Timer) Pause() {
	t.Running = false
}

// Reset stops the timer and returns it to a full work phase.
func (t *Timer) Reset() {
	t.Running = false
	t.Phase = PhaseWork
	t.RemainingSec = t.WorkSec
}

// Tick advances a running timer by one second. When the phase runs out the
// timer switches phase, keeps running and reports the event.
func (t *Timer) Tick() (Event, bool) {
	if !t.Running {
		return Event{}, false
	}
	t.RemainingSec--
	if t.RemainingSec > 0 {
		return Event{}, false
	}
	if t.Phase == PhaseWork {
		t.Completed++
		t.Phase = PhaseBreak
		t.RemainingSec = t.BreakSec
		return Event{Title: "Pomodoro complete", Body: "Time for a break!"}, true
	}
	t.Phase = PhaseWork
	t.RemainingSec = t.WorkSec
	return Event{Title: "Break over", Body: "Back to work!"}, true
}

func (t Timer) total() int {
	if t.Phase == PhaseBreak {
		return t.BreakSec
	}
	return t.WorkSec
}

// Progress is the elapsed fraction of the current phase in [0, 1].
func (t Timer) Progress() float64 {
	total := t.total()
	if total <= 0 {
		return 0
	}
	p := float64(total-t.RemainingSec) / float64(total)
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}

// Display renders the remaining time as MM:SS.
func (t Timer) Display() string {
	sec := t.RemainingSec
	if sec < 0 {
		sec = 0
	}
	return fmt.Sprintf("%02d:%02d", sec/60, sec%60)
}
