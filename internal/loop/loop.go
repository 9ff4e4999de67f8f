// Package loop drives the input pipeline once per tick and keeps it bound
// to a single connected device.
package loop

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/soar/gamepadbrowse/internal/gamepad"
	"github.com/soar/gamepadbrowse/internal/input"
)

// DefaultInterval is the tick cadence used when none is configured.
const DefaultInterval = time.Second / 60

// DefaultQuiescent is how long a suspended loop skips processing.
const DefaultQuiescent = 1000 * time.Millisecond

// Sink consumes normalized frames. Deliver is called from the loop
// goroutine once per processed tick; the frame is only valid for the
// duration of the call.
type Sink interface {
	Deliver(f input.Frame)
	// Disconnected is called when the bound device goes away, before any
	// other device is bound.
	Disconnected()
}

// Ticker is the subset of time.Ticker the loop needs.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type timeTicker struct{ *time.Ticker }

func (t timeTicker) C() <-chan time.Time { return t.Ticker.C }

// NewTimeTicker returns a Ticker backed by time.NewTicker.
func NewTimeTicker(d time.Duration) Ticker {
	return timeTicker{time.NewTicker(d)}
}

// Options configures a Loop. Zero values select defaults.
type Options struct {
	Interval  time.Duration
	Quiescent time.Duration
	Now       func() time.Time
	NewTicker func(time.Duration) Ticker
	Logger    *slog.Logger
}

// Loop is the sampling loop. It owns the processor and the tick ticker;
// Run, HandleSignal and Tick must be called from a single goroutine.
// Suspend may be called from any goroutine.
type Loop struct {
	source    gamepad.FrameSource
	proc      *input.Processor
	log       *slog.Logger
	now       func() time.Time
	interval  time.Duration
	quiescent time.Duration
	newTicker func(time.Duration) Ticker

	sinks   []Sink
	devices map[int]gamepad.Signal
	ticker  Ticker

	mu             sync.Mutex
	suspendedUntil time.Time
}

// New creates an idle loop reading source through proc.
func New(source gamepad.FrameSource, proc *input.Processor, opts Options) *Loop {
	l := &Loop{
		source:    source,
		proc:      proc,
		log:       opts.Logger,
		now:       opts.Now,
		interval:  opts.Interval,
		quiescent: opts.Quiescent,
		newTicker: opts.NewTicker,
		devices:   make(map[int]gamepad.Signal),
	}
	if l.log == nil {
		l.log = slog.Default()
	}
	if l.now == nil {
		l.now = time.Now
	}
	if l.interval <= 0 {
		l.interval = DefaultInterval
	}
	if l.quiescent <= 0 {
		l.quiescent = DefaultQuiescent
	}
	if l.newTicker == nil {
		l.newTicker = NewTimeTicker
	}
	return l
}

// AddSink registers a frame consumer. Sinks are called in registration
// order.
func (l *Loop) AddSink(s Sink) {
	l.sinks = append(l.sinks, s)
}

// Run processes signals and ticks until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	defer l.stopTicker()

	signals := l.source.Signals()
	for {
		var tick <-chan time.Time
		if l.ticker != nil {
			tick = l.ticker.C()
		}

		select {
		case <-ctx.Done():
			return nil
		case sig, ok := <-signals:
			if !ok {
				signals = nil
				continue
			}
			l.HandleSignal(sig)
		case <-tick:
			l.Tick(l.now())
		}
	}
}

// HandleSignal updates the set of known devices and the binding.
func (l *Loop) HandleSignal(sig gamepad.Signal) {
	switch sig.Kind {
	case gamepad.Connected:
		l.devices[sig.Index] = sig
		l.log.Info("gamepad connected", "index", sig.Index, "name", sig.Name,
			"buttons", sig.Buttons, "axes", sig.Axes)
		if l.proc.State() == input.Idle {
			l.bind(sig)
		}

	case gamepad.Disconnected:
		delete(l.devices, sig.Index)
		bound, ok := l.proc.Device()
		if !ok || bound.Index != sig.Index {
			l.log.Info("gamepad disconnected", "index", sig.Index)
			return
		}
		l.log.Info("bound gamepad disconnected", "index", sig.Index, "name", bound.Name)
		l.unbind()
		if next, ok := l.next(); ok {
			l.bind(next)
		}
	}
}

// Tick runs one iteration. It reports whether a frame was delivered.
func (l *Loop) Tick(now time.Time) bool {
	if l.Suspended(now) {
		return false
	}
	frame, ok := l.proc.Tick(now)
	if !ok {
		return false
	}
	for _, s := range l.sinks {
		s.Deliver(frame)
	}
	return true
}

// Suspend skips processing for the quiescent period while ticks keep
// being scheduled.
func (l *Loop) Suspend() {
	l.mu.Lock()
	l.suspendedUntil = l.now().Add(l.quiescent)
	l.mu.Unlock()
	l.log.Debug("sampling suspended", "for", l.quiescent)
}

// Suspended reports whether processing is skipped at now.
func (l *Loop) Suspended(now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return now.Before(l.suspendedUntil)
}

// Bound returns the bound device; ok is false while idle.
func (l *Loop) Bound() (gamepad.Signal, bool) {
	return l.proc.Device()
}

// Scheduled reports whether ticks are currently being scheduled.
func (l *Loop) Scheduled() bool {
	return l.ticker != nil
}

func (l *Loop) bind(sig gamepad.Signal) {
	l.proc.Connect(sig)
	if l.ticker == nil {
		l.ticker = l.newTicker(l.interval)
	}
	l.log.Info("tracking gamepad", "index", sig.Index, "name", sig.Name)
}

// unbind stops scheduling and tears down every per-device timer before
// returning.
func (l *Loop) unbind() {
	l.stopTicker()
	l.proc.Disconnect()
	l.mu.Lock()
	l.suspendedUntil = time.Time{}
	l.mu.Unlock()
	for _, s := range l.sinks {
		s.Disconnected()
	}
}

func (l *Loop) stopTicker() {
	if l.ticker != nil {
		l.ticker.Stop()
		l.ticker = nil
	}
}

// next returns the connected device with the lowest index.
func (l *Loop) next() (gamepad.Signal, bool) {
	if len(l.devices) == 0 {
		return gamepad.Signal{}, false
	}
	indices := make([]int, 0, len(l.devices))
	for i := range l.devices {
		indices = append(indices, i)
	}
	sort.Ints(indices)
	return l.devices[indices[0]], true
}
