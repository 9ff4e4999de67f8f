package actions

import (
	"sync"
	"time"
)

// Event is a discrete action fired by the layer.
type Event struct {
	Time   time.Time `json:"time"`
	Action string    `json:"action"`
	Detail string    `json:"detail,omitempty"`
	Err    string    `json:"error,omitempty"`
}

// Event actions.
const (
	ActionClick     = "click"
	ActionHistory   = "history"
	ActionTabSwitch = "tab_switch"
	ActionReload    = "reload"
	ActionDebug     = "debug"
)

// Recorder receives fired events. Record must not block.
type Recorder interface {
	Record(e Event)
}

// MemoryRecorder keeps every recorded event. It is safe for concurrent
// use.
type MemoryRecorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *MemoryRecorder) Record(e Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

// Events returns a copy of the recorded events.
func (r *MemoryRecorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Recorders fans an event out to several recorders in order.
type Recorders []Recorder

func (rs Recorders) Record(e Event) {
	for _, r := range rs {
		r.Record(e)
	}
}
