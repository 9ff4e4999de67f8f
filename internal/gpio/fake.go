package gpio

import (
	"errors"
	"sync"
)

// FakeLine is a test double with a settable level.
type FakeLine struct {
	mu     sync.Mutex
	value  int
	closed bool

	// ReadError, if set, will be returned by Value.
	ReadError error
}

// Set changes the level returned by Value.
func (f *FakeLine) Set(v int) {
	f.mu.Lock()
	f.value = v
	f.mu.Unlock()
}

// Value returns the current level.
func (f *FakeLine) Value() (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return 0, errors.New("line closed")
	}
	if f.ReadError != nil {
		return 0, f.ReadError
	}
	return f.value, nil
}

// Close marks the line as closed.
func (f *FakeLine) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return nil
}

// Closed reports whether Close was called.
func (f *FakeLine) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}
