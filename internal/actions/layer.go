// Package actions interprets normalized frames as page interactions:
// scrolling, a virtual pointer, clicks, history and tab navigation, reload
// and the debug overlay.
package actions

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/soar/gamepadbrowse/internal/coordinator"
	"github.com/soar/gamepadbrowse/internal/debounce"
	"github.com/soar/gamepadbrowse/internal/gamepad"
	"github.com/soar/gamepadbrowse/internal/input"
)

// Config holds the action tunables.
type Config struct {
	Deadzone       float64
	ScrollExponent float64
	CursorExponent float64
	Cooldown       time.Duration
	PointerHide    time.Duration
	Timeout        time.Duration
}

// DefaultConfig returns the action defaults.
func DefaultConfig() Config {
	return Config{
		Deadzone:       0.1,
		ScrollExponent: 6,
		CursorExponent: 4,
		Cooldown:       debounce.DefaultCooldown,
		PointerHide:    3 * time.Second,
		Timeout:        2 * time.Second,
	}
}

// clickOffset is the distance from the pointer's corner to its hot spot.
const clickOffset = 10

// Effects is the page surface the layer drives.
type Effects interface {
	// Viewport returns the focused page's size; ok is false when no page
	// has focus.
	Viewport() (width, height float64, ok bool)
	ScrollBy(dy float64)
	MovePointer(x, y float64)
	ShowPointer(visible bool)
	Click(x, y float64)
	History(delta int)
	Reload()
	// Overlay shows text in the debug overlay; empty text hides it.
	Overlay(text string)
}

// Suspender pauses frame processing for a quiescent period.
type Suspender interface {
	Suspend()
}

// Options carries the optional collaborators of a Layer.
type Options struct {
	Suspender Suspender
	Debug     *DebugFlag
	Recorder  Recorder
	Logger    *slog.Logger
	// Dispatch runs coordinator round-trips off the tick path. The
	// default starts a goroutine.
	Dispatch func(func())
}

// Layer is the action sink fed by the sampling loop.
type Layer struct {
	cfg       Config
	fx        Effects
	msgr      coordinator.Messenger
	suspender Suspender
	debug     *DebugFlag
	recorder  Recorder
	log       *slog.Logger
	dispatch  func(func())

	back    *debounce.Window
	forward *debounce.Window
	tab     *debounce.Window

	tick time.Time

	pointerInit    bool
	pointerVisible bool
	px, py         float64
	hideAt         time.Time

	overlayShown bool
}

// New creates a Layer. msgr may be nil, in which case tab switching and
// reload are disabled.
func New(cfg Config, fx Effects, msgr coordinator.Messenger, opts Options) *Layer {
	l := &Layer{
		cfg:       cfg,
		fx:        fx,
		msgr:      msgr,
		suspender: opts.Suspender,
		debug:     opts.Debug,
		recorder:  opts.Recorder,
		log:       opts.Logger,
		dispatch:  opts.Dispatch,
	}
	if l.debug == nil {
		l.debug = &DebugFlag{}
	}
	if l.log == nil {
		l.log = slog.Default()
	}
	if l.dispatch == nil {
		l.dispatch = func(fn func()) { go fn() }
	}
	clock := func() time.Time { return l.tick }
	l.back = debounce.New(cfg.Cooldown, clock)
	l.forward = debounce.New(cfg.Cooldown, clock)
	l.tab = debounce.New(cfg.Cooldown, clock)
	return l
}

// Debug returns the overlay flag.
func (l *Layer) Debug() *DebugFlag {
	return l.debug
}

// Deliver interprets one normalized frame.
func (l *Layer) Deliver(f input.Frame) {
	l.tick = f.Time
	pressed := f.Pressed

	l.updateOverlay(f)
	l.scroll(f.Axes)
	l.movePointer(f.Axes)

	if justPressed(f, gamepad.Button1) {
		l.click()
	}

	switch {
	case pressed.Has(gamepad.Button2) || pressed.Has(gamepad.DPadLeft):
		l.history(l.back, -1)
		return
	case pressed.Has(gamepad.DPadRight):
		l.history(l.forward, 1)
		return
	case pressed.Has(gamepad.ShoulderTopRight) || pressed.Has(gamepad.ShoulderTopLeft):
		move := coordinator.MovePrev
		if pressed.Has(gamepad.ShoulderTopRight) {
			move = coordinator.MoveNext
		}
		l.switchTab(move)
		return
	}

	if justPressed(f, gamepad.Select) {
		on := l.debug.Toggle()
		l.log.Info("debug overlay toggled", "enabled", on)
		l.record(l.tick, ActionDebug, strconv.FormatBool(on), nil)
	}
	if justPressed(f, gamepad.Start) {
		l.reload()
	}
}

// Disconnected drops every cooldown and hides the pointer.
func (l *Layer) Disconnected() {
	l.back.Reset()
	l.forward.Reset()
	l.tab.Reset()
	if l.pointerVisible {
		l.fx.ShowPointer(false)
		l.pointerVisible = false
	}
	l.hideAt = time.Time{}
}

func justPressed(f input.Frame, b gamepad.Button) bool {
	for _, p := range f.JustPressed {
		if p == b {
			return true
		}
	}
	return false
}

func axis(axes []float64, i int) float64 {
	if i < len(axes) {
		return axes[i]
	}
	return 0
}

func (l *Layer) scroll(axes []float64) {
	dy := Curve(axis(axes, gamepad.AxisRightY), l.cfg.Deadzone, l.cfg.ScrollExponent)
	if dy != 0 {
		l.fx.ScrollBy(dy)
	}
}

// ensurePointer places the pointer at the centre of the viewport the first
// time it is needed.
func (l *Layer) ensurePointer() (w, h float64, ok bool) {
	w, h, ok = l.fx.Viewport()
	if ok && !l.pointerInit {
		l.px, l.py = w/2-clickOffset, h/2-clickOffset
		l.pointerInit = true
	}
	return w, h, ok
}

func (l *Layer) movePointer(axes []float64) {
	dx := Curve(axis(axes, gamepad.AxisLeftX), l.cfg.Deadzone, l.cfg.CursorExponent)
	dy := Curve(axis(axes, gamepad.AxisLeftY), l.cfg.Deadzone, l.cfg.CursorExponent)

	if dx == 0 && dy == 0 {
		if !l.pointerVisible {
			return
		}
		if l.hideAt.IsZero() {
			l.hideAt = l.tick.Add(l.cfg.PointerHide)
		} else if !l.tick.Before(l.hideAt) {
			l.fx.ShowPointer(false)
			l.pointerVisible = false
			l.hideAt = time.Time{}
		}
		return
	}

	w, h, ok := l.ensurePointer()
	if !ok {
		return
	}
	l.hideAt = time.Time{}
	if !l.pointerVisible {
		l.fx.ShowPointer(true)
		l.pointerVisible = true
	}
	l.px = clamp(l.px+dx, 0, w)
	l.py = clamp(l.py+dy, 0, h)
	l.fx.MovePointer(l.px, l.py)
}

// Pointer returns the pointer position and visibility.
func (l *Layer) Pointer() (x, y float64, visible bool) {
	return l.px, l.py, l.pointerVisible
}

func (l *Layer) click() {
	if _, _, ok := l.ensurePointer(); !ok {
		return
	}
	x, y := l.px+clickOffset, l.py+clickOffset
	l.fx.Click(x, y)
	l.record(l.tick, ActionClick, formatPoint(x, y), nil)
}

func (l *Layer) history(w *debounce.Window, delta int) {
	if !w.Allow() {
		return
	}
	l.fx.History(delta)
	l.log.Debug("history navigation", "delta", delta)
	l.record(l.tick, ActionHistory, strconv.Itoa(delta), nil)
	if l.suspender != nil {
		l.suspender.Suspend()
	}
}

func (l *Layer) switchTab(move string) {
	if l.msgr == nil || !l.tab.Allow() {
		return
	}
	req := coordinator.NewTabSwitch(move)
	// The closure runs off the tick path; it must not read layer state.
	at := l.tick
	l.dispatch(func() {
		msg, err := l.send(req)
		if err != nil {
			l.log.Warn("tab switch failed", "move", move, "error", err)
		} else {
			l.log.Debug("tab switched", "move", move, "response", msg)
		}
		l.record(at, ActionTabSwitch, move, err)
	})
}

func (l *Layer) reload() {
	if l.msgr == nil {
		return
	}
	at := l.tick
	l.dispatch(func() {
		_, err := l.send(coordinator.NewReload())
		if err != nil {
			l.log.Warn("reload request failed", "error", err)
		} else {
			l.fx.Reload()
		}
		l.record(at, ActionReload, "", err)
	})
}

func (l *Layer) send(req coordinator.Request) (string, error) {
	ctx := context.Background()
	if l.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.cfg.Timeout)
		defer cancel()
	}
	return l.msgr.Send(ctx, req)
}

func (l *Layer) record(at time.Time, action, detail string, err error) {
	if l.recorder == nil {
		return
	}
	e := Event{Time: at, Action: action, Detail: detail}
	if err != nil {
		e.Err = err.Error()
	}
	l.recorder.Record(e)
}

func (l *Layer) updateOverlay(f input.Frame) {
	if !l.debug.Enabled() {
		if l.overlayShown {
			l.fx.Overlay("")
			l.overlayShown = false
		}
		return
	}
	text := OverlayText(f)
	l.fx.Overlay(text)
	l.overlayShown = true
	l.log.Debug(text)
}

// OverlayText renders the debug overlay line for a frame.
func OverlayText(f input.Frame) string {
	var b strings.Builder
	b.WriteString("Buttons pressed: ")
	first := true
	f.Pressed.Each(func(btn gamepad.Button, s gamepad.ButtonSample) {
		if !first {
			b.WriteByte(',')
		}
		first = false
		b.WriteString(btn.String())
		b.WriteByte(' ')
		b.WriteString(strconv.FormatFloat(s.Value, 'g', -1, 64))
	})
	b.WriteString("; Axes: ")
	for i, v := range f.Axes {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	}
	return b.String()
}

func formatPoint(x, y float64) string {
	return strconv.FormatFloat(x, 'f', 0, 64) + "," + strconv.FormatFloat(y, 'f', 0, 64)
}
