package input

import (
	"time"

	"github.com/soar/gamepadbrowse/internal/gamepad"
)

// DefaultHold is how long a recorded press ignores further presses.
const DefaultHold = 500 * time.Millisecond

// HoldState is the state of a button's hold window.
type HoldState int

const (
	HoldIdle HoldState = iota
	Holding
)

func (s HoldState) String() string {
	if s == Holding {
		return "holding"
	}
	return "idle"
}

// PressedSet maps button ids to the sample that recorded the press.
// Storage is indexed by button id, so lookups never allocate.
type PressedSet struct {
	samples []gamepad.ButtonSample
	present []bool
	n       int
}

// Has reports whether b is pressed.
func (s PressedSet) Has(b gamepad.Button) bool {
	return b >= 0 && int(b) < len(s.present) && s.present[b]
}

// Sample returns the sample recorded for b.
func (s PressedSet) Sample(b gamepad.Button) (gamepad.ButtonSample, bool) {
	if !s.Has(b) {
		return gamepad.ButtonSample{}, false
	}
	return s.samples[b], true
}

// Len returns the number of pressed buttons.
func (s PressedSet) Len() int {
	return s.n
}

// Each calls fn for every pressed button in ascending id order.
func (s PressedSet) Each(fn func(b gamepad.Button, sample gamepad.ButtonSample)) {
	for i, ok := range s.present {
		if ok {
			fn(gamepad.Button(i), s.samples[i])
		}
	}
}

// Buttons returns the pressed buttons in ascending id order.
func (s PressedSet) Buttons() []gamepad.Button {
	out := make([]gamepad.Button, 0, s.n)
	s.Each(func(b gamepad.Button, _ gamepad.ButtonSample) {
		out = append(out, b)
	})
	return out
}

// Clone returns a copy that does not share storage with s.
func (s PressedSet) Clone() PressedSet {
	return PressedSet{
		samples: append([]gamepad.ButtonSample(nil), s.samples...),
		present: append([]bool(nil), s.present...),
		n:       s.n,
	}
}

func (s *PressedSet) grow(b gamepad.Button) {
	for len(s.present) <= int(b) {
		s.present = append(s.present, false)
		s.samples = append(s.samples, gamepad.ButtonSample{})
	}
}

func (s *PressedSet) set(b gamepad.Button, sample gamepad.ButtonSample) (inserted bool) {
	s.grow(b)
	inserted = !s.present[b]
	if inserted {
		s.n++
	}
	s.present[b] = true
	s.samples[b] = sample
	return inserted
}

func (s *PressedSet) remove(b gamepad.Button) bool {
	if !s.Has(b) {
		return false
	}
	s.present[b] = false
	s.samples[b] = gamepad.ButtonSample{}
	s.n--
	return true
}

func (s *PressedSet) clear() {
	for i := range s.present {
		s.present[i] = false
		s.samples[i] = gamepad.ButtonSample{}
	}
	s.n = 0
}

type holdSlot struct {
	state    HoldState
	deadline time.Time
}

// ButtonEdgeTracker keeps the set of currently pressed buttons. Once a
// press is recorded, further presses of that button are ignored until the
// hold window elapses; a release always takes effect immediately.
type ButtonEdgeTracker struct {
	hold    time.Duration
	slots   []holdSlot
	pressed PressedSet
}

// NewButtonEdgeTracker creates a tracker with the given hold window.
// Negative values select DefaultHold.
func NewButtonEdgeTracker(hold time.Duration) *ButtonEdgeTracker {
	if hold < 0 {
		hold = DefaultHold
	}
	return &ButtonEdgeTracker{hold: hold}
}

// IsActive reports whether a sample means the button is held down.
func IsActive(s gamepad.ButtonSample) bool {
	return s.Pressed || s.Touched || s.Value == 1
}

// Press records sample for b unless a hold window for b is still open.
// It reports whether b was newly added to the pressed set.
func (t *ButtonEdgeTracker) Press(b gamepad.Button, sample gamepad.ButtonSample, now time.Time) bool {
	if b < 0 {
		return false
	}
	for len(t.slots) <= int(b) {
		t.slots = append(t.slots, holdSlot{})
	}
	slot := &t.slots[b]
	if slot.state == Holding && now.Before(slot.deadline) {
		return false
	}
	slot.state = Holding
	slot.deadline = now.Add(t.hold)
	return t.pressed.set(b, sample)
}

// Release closes the hold window of b and removes it from the pressed set.
// It reports whether b was pressed. Releasing a released button is a no-op.
func (t *ButtonEdgeTracker) Release(b gamepad.Button) bool {
	if b < 0 {
		return false
	}
	if int(b) < len(t.slots) {
		t.slots[b] = holdSlot{}
	}
	return t.pressed.remove(b)
}

// Hold returns the state of b's hold window at now.
func (t *ButtonEdgeTracker) Hold(b gamepad.Button, now time.Time) HoldState {
	if b < 0 || int(b) >= len(t.slots) {
		return HoldIdle
	}
	slot := t.slots[b]
	if slot.state == Holding && now.Before(slot.deadline) {
		return Holding
	}
	return HoldIdle
}

// Pressed returns the live pressed set. It shares storage with the
// tracker; use Clone to keep it across ticks.
func (t *ButtonEdgeTracker) Pressed() PressedSet {
	return t.pressed
}

// Reset closes every hold window and empties the pressed set.
func (t *ButtonEdgeTracker) Reset() {
	for i := range t.slots {
		t.slots[i] = holdSlot{}
	}
	t.pressed.clear()
}
