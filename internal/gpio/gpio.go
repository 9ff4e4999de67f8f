// Package gpio exposes push buttons wired to GPIO lines as a single
// gamepad device, for kiosks without a USB controller.
package gpio

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/soar/gamepadbrowse/internal/gamepad"
)

// Index is the device index the GPIO pad is announced under.
const Index = 0

// Name is the device name reported in the connect signal.
const Name = "GPIO pad"

// Line is one requested input line. Value returns the logical level:
// 1 while the button is held.
type Line interface {
	Value() (int, error)
	Close() error
}

// Source adapts a set of lines to gamepad.FrameSource. Axes always read
// centred.
type Source struct {
	mu      sync.Mutex
	lines   map[gamepad.Button]Line
	buttons int
	open    bool
	signals chan gamepad.Signal
	now     func() time.Time
	log     *slog.Logger
}

// NewSource wraps lines keyed by the button they drive.
func NewSource(lines map[gamepad.Button]Line, logger *slog.Logger) *Source {
	buttons := gamepad.ButtonCount
	for b := range lines {
		if int(b)+1 > buttons {
			buttons = int(b) + 1
		}
	}
	return &Source{
		lines:   lines,
		buttons: buttons,
		signals: make(chan gamepad.Signal, 2),
		now:     time.Now,
		log:     logger.With("component", "gpio"),
	}
}

// Start announces the pad. It is a no-op once started.
func (s *Source) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.open {
		return
	}
	s.open = true
	s.signals <- gamepad.Signal{
		Kind:    gamepad.Connected,
		Index:   Index,
		Name:    Name,
		Buttons: s.buttons,
		Axes:    gamepad.AxisCount,
	}
	s.log.Info("gpio pad ready", "lines", len(s.lines))
}

// Signals implements gamepad.FrameSource.
func (s *Source) Signals() <-chan gamepad.Signal {
	return s.signals
}

// Frame samples every line. A line that fails to read counts as released.
func (s *Source) Frame(index int) (gamepad.DeviceFrame, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open || index != Index {
		return gamepad.DeviceFrame{}, false
	}

	f := gamepad.DeviceFrame{
		Index:   Index,
		Buttons: make([]gamepad.ButtonSample, s.buttons),
		Axes:    make([]float64, gamepad.AxisCount),
		Time:    s.now(),
	}
	for b, line := range s.lines {
		v, err := line.Value()
		if err != nil {
			s.log.Warn("read line", "button", b, "err", err)
			continue
		}
		if v == 1 {
			f.Buttons[b] = gamepad.ButtonSample{Value: 1, Pressed: true}
		}
	}
	return f, true
}

// Close announces the disconnect and releases every line.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var errs []error
	if s.open {
		s.open = false
		s.signals <- gamepad.Signal{Kind: gamepad.Disconnected, Index: Index}
	}
	for b, line := range s.lines {
		if err := line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %v: %w", b, err))
		}
	}
	s.lines = nil
	return errors.Join(errs...)
}
