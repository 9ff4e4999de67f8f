package mqtt

import (
	"sync"

	"github.com/soar/gamepadbrowse/internal/actions"
)

// FakePublisher records published events for test assertions. It is safe
// for concurrent use.
type FakePublisher struct {
	mu       sync.Mutex
	events   []actions.Event
	payloads [][]byte
	closed   bool

	// PublishError, if set, will be returned by Publish.
	PublishError error

	// Published, if set, receives every event after it is recorded.
	Published chan actions.Event
}

// NewFakePublisher creates a FakePublisher for testing.
func NewFakePublisher() *FakePublisher {
	return &FakePublisher{}
}

// Publish records the event.
func (f *FakePublisher) Publish(event actions.Event) error {
	f.mu.Lock()
	if f.PublishError != nil {
		err := f.PublishError
		f.mu.Unlock()
		return err
	}
	payload, err := FormatPayload(event)
	if err != nil {
		f.mu.Unlock()
		return err
	}
	f.events = append(f.events, event)
	f.payloads = append(f.payloads, payload)
	ch := f.Published
	f.mu.Unlock()

	if ch != nil {
		ch <- event
	}
	return nil
}

// Close marks the publisher as closed.
func (f *FakePublisher) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return nil
}

// Events returns the recorded events.
func (f *FakePublisher) Events() []actions.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]actions.Event(nil), f.events...)
}

// Payloads returns the recorded JSON payloads.
func (f *FakePublisher) Payloads() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]byte(nil), f.payloads...)
}

// Closed reports whether Close was called.
func (f *FakePublisher) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}
