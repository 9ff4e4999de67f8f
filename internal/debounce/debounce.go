// Package debounce gates repeated actions behind leading-edge cooldown
// windows.
package debounce

import (
	"sync"
	"time"
)

// DefaultCooldown is the cooldown used when none is configured.
const DefaultCooldown = 1000 * time.Millisecond

// State is the state of a Window.
type State int

const (
	Idle State = iota
	Cooling
)

func (s State) String() string {
	if s == Cooling {
		return "cooling"
	}
	return "idle"
}

// Window is a leading-edge cooldown gate. The first Allow after creation
// or after the cooldown has elapsed succeeds and opens a new cooldown;
// calls inside the cooldown are dropped. A Window is safe for concurrent
// use.
type Window struct {
	mu       sync.Mutex
	cooldown time.Duration
	now      func() time.Time
	state    State
	deadline time.Time
}

// New creates an idle Window. A nil clock selects time.Now; a negative
// cooldown selects DefaultCooldown.
func New(cooldown time.Duration, now func() time.Time) *Window {
	if cooldown < 0 {
		cooldown = DefaultCooldown
	}
	if now == nil {
		now = time.Now
	}
	return &Window{cooldown: cooldown, now: now}
}

// Allow reports whether the guarded action may run now, opening a new
// cooldown when it may.
func (w *Window) Allow() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	t := w.now()
	if w.state == Cooling && t.Before(w.deadline) {
		return false
	}
	w.state = Cooling
	w.deadline = t.Add(w.cooldown)
	return true
}

// State returns the state of the window at the current clock.
func (w *Window) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state == Cooling && w.now().Before(w.deadline) {
		return Cooling
	}
	return Idle
}

// Remaining returns how long the current cooldown still runs.
func (w *Window) Remaining() time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != Cooling {
		return 0
	}
	if d := w.deadline.Sub(w.now()); d > 0 {
		return d
	}
	return 0
}

// Reset cancels a running cooldown. Resetting an idle window is a no-op.
func (w *Window) Reset() {
	w.mu.Lock()
	w.state = Idle
	w.deadline = time.Time{}
	w.mu.Unlock()
}

// Cooldown returns the configured cooldown.
func (w *Window) Cooldown() time.Duration {
	return w.cooldown
}

// Guard wraps action in its own Window. The returned func reports whether
// action ran.
func Guard(action func(), cooldown time.Duration, now func() time.Time) func() bool {
	w := New(cooldown, now)
	return func() bool {
		if !w.Allow() {
			return false
		}
		action()
		return true
	}
}
