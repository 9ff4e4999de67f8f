package loop

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/soar/gamepadbrowse/internal/gamepad"
	"github.com/soar/gamepadbrowse/internal/input"
)

var t0 = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

type fakeTicker struct {
	c       chan time.Time
	stopped bool
}

func (t *fakeTicker) C() <-chan time.Time { return t.c }
func (t *fakeTicker) Stop()               { t.stopped = true }

type recordingSink struct {
	frames      []input.Frame
	pressed     [][]gamepad.Button
	disconnects int
	onDeliver   func(input.Frame)
}

func (s *recordingSink) Deliver(f input.Frame) {
	s.frames = append(s.frames, f)
	s.pressed = append(s.pressed, f.Pressed.Buttons())
	if s.onDeliver != nil {
		s.onDeliver(f)
	}
}

func (s *recordingSink) Disconnected() { s.disconnects++ }

type harness struct {
	src     *gamepad.FakeSource
	loop    *Loop
	sink    *recordingSink
	tickers []*fakeTicker
	tickC   chan time.Time
	now     time.Time
}

func newHarness() *harness {
	h := &harness{
		src:   gamepad.NewFakeSource(),
		sink:  &recordingSink{},
		tickC: make(chan time.Time, 1),
		now:   t0,
	}
	proc := input.NewProcessor(h.src, input.DefaultConfig())
	h.loop = New(h.src, proc, Options{
		Quiescent: time.Second,
		Now:       func() time.Time { return h.now },
		NewTicker: func(time.Duration) Ticker {
			ft := &fakeTicker{c: h.tickC}
			h.tickers = append(h.tickers, ft)
			return ft
		},
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	h.loop.AddSink(h.sink)
	return h
}

func frameWith(pressed ...gamepad.Button) gamepad.DeviceFrame {
	f := gamepad.DeviceFrame{
		Buttons: make([]gamepad.ButtonSample, gamepad.ButtonCount),
		Axes:    make([]float64, gamepad.AxisCount),
	}
	for _, b := range pressed {
		f.Buttons[b] = gamepad.ButtonSample{Value: 1, Pressed: true}
	}
	return f
}

func connected(index int) gamepad.Signal {
	return gamepad.Signal{Kind: gamepad.Connected, Index: index, Name: "pad", Buttons: gamepad.ButtonCount, Axes: gamepad.AxisCount}
}

func disconnected(index int) gamepad.Signal {
	return gamepad.Signal{Kind: gamepad.Disconnected, Index: index}
}

func TestIdleLoopSchedulesNothing(t *testing.T) {
	h := newHarness()
	if h.loop.Scheduled() {
		t.Error("idle loop should not schedule ticks")
	}
	if h.loop.Tick(t0) {
		t.Error("idle loop should not deliver frames")
	}
	if len(h.tickers) != 0 {
		t.Errorf("expected no tickers, got %d", len(h.tickers))
	}
}

func TestConnectStartsTicking(t *testing.T) {
	h := newHarness()
	h.src.Push(0, frameWith(gamepad.Button1))
	h.loop.HandleSignal(connected(0))

	if !h.loop.Scheduled() || len(h.tickers) != 1 {
		t.Fatal("connect should start the ticker")
	}
	if !h.loop.Tick(t0) {
		t.Fatal("tracking loop should deliver")
	}
	if len(h.sink.frames) != 1 || h.sink.pressed[0][0] != gamepad.Button1 {
		t.Errorf("unexpected deliveries %v", h.sink.pressed)
	}
}

func TestSecondDeviceDoesNotRebind(t *testing.T) {
	h := newHarness()
	h.loop.HandleSignal(connected(0))
	h.loop.HandleSignal(connected(1))

	bound, ok := h.loop.Bound()
	if !ok || bound.Index != 0 {
		t.Errorf("expected device 0 bound, got %+v", bound)
	}
	if len(h.tickers) != 1 {
		t.Errorf("expected one ticker, got %d", len(h.tickers))
	}
}

func TestDisconnectStopsTickerAndNotifiesSinks(t *testing.T) {
	h := newHarness()
	h.src.Push(0, frameWith(gamepad.DPadLeft))
	h.loop.HandleSignal(connected(0))
	h.loop.Tick(t0)

	h.loop.HandleSignal(disconnected(0))
	if !h.tickers[0].stopped {
		t.Error("disconnect should stop the ticker")
	}
	if h.loop.Scheduled() {
		t.Error("loop should not be scheduled after disconnect")
	}
	if h.sink.disconnects != 1 {
		t.Errorf("expected 1 disconnect notice, got %d", h.sink.disconnects)
	}
	if h.loop.Tick(t0.Add(time.Second)) {
		t.Error("no frame should be delivered after disconnect")
	}
}

func TestDisconnectPromotesNextDevice(t *testing.T) {
	h := newHarness()
	h.src.Push(2, frameWith())
	h.src.Push(5, frameWith(gamepad.Start))
	h.loop.HandleSignal(connected(2))
	h.loop.HandleSignal(connected(5))

	h.loop.HandleSignal(disconnected(2))
	bound, ok := h.loop.Bound()
	if !ok || bound.Index != 5 {
		t.Fatalf("expected device 5 promoted, got %+v ok=%v", bound, ok)
	}
	if len(h.tickers) != 2 || !h.tickers[0].stopped || h.tickers[1].stopped {
		t.Error("promotion should restart scheduling with a fresh ticker")
	}

	h.loop.Tick(t0)
	last := h.sink.frames[len(h.sink.frames)-1]
	if last.Index != 5 || len(last.JustPressed) != 1 {
		t.Errorf("expected fresh press edge from device 5, got %+v", last)
	}
}

func TestUnboundDisconnectKeepsBinding(t *testing.T) {
	h := newHarness()
	h.loop.HandleSignal(connected(0))
	h.loop.HandleSignal(connected(1))
	h.loop.HandleSignal(disconnected(1))

	if bound, ok := h.loop.Bound(); !ok || bound.Index != 0 {
		t.Errorf("expected device 0 still bound, got %+v", bound)
	}
	if h.sink.disconnects != 0 {
		t.Error("sinks should not hear about unbound devices")
	}
}

func TestSuspendSkipsProcessingButKeepsScheduling(t *testing.T) {
	h := newHarness()
	h.src.Push(0, frameWith(gamepad.Button2))
	h.loop.HandleSignal(connected(0))

	h.loop.Suspend()
	for i := 0; i < 59; i++ {
		at := t0.Add(time.Duration(i) * time.Second / 60)
		if h.loop.Tick(at) {
			t.Fatalf("tick %d delivered while suspended", i)
		}
	}
	if !h.loop.Scheduled() {
		t.Error("suspended loop should keep scheduling")
	}
	if !h.loop.Tick(t0.Add(time.Second)) {
		t.Error("loop should resume after the quiescent period")
	}
	if h.src.Reads[0] != 1 {
		t.Errorf("suspended ticks should not read the device, got %d reads", h.src.Reads[0])
	}
}

func TestSuspendFromSink(t *testing.T) {
	h := newHarness()
	h.src.Push(0, frameWith(gamepad.Button2))
	h.loop.HandleSignal(connected(0))
	h.sink.onDeliver = func(input.Frame) { h.loop.Suspend() }

	h.loop.Tick(t0)
	h.now = t0.Add(16 * time.Millisecond)
	if h.loop.Tick(h.now) {
		t.Error("tick right after a sink suspended the loop should be skipped")
	}
}

func TestRunProcessesSignalsAndTicks(t *testing.T) {
	h := newHarness()
	h.src.Push(0, frameWith(gamepad.Button1))

	ctx, cancel := context.WithCancel(context.Background())
	delivered := make(chan struct{}, 1)
	h.sink.onDeliver = func(input.Frame) {
		select {
		case delivered <- struct{}{}:
		default:
		}
	}

	done := make(chan error, 1)
	go func() { done <- h.loop.Run(ctx) }()

	h.src.Send(connected(0))
	deadline := time.After(2 * time.Second)
	for {
		select {
		case <-delivered:
			cancel()
			if err := <-done; err != nil {
				t.Fatalf("Run returned %v", err)
			}
			return
		case <-deadline:
			cancel()
			t.Fatal("no frame delivered")
		case h.tickC <- t0:
		}
	}
}
