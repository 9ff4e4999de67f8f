package input

import (
	"math"
	"testing"
	"time"

	"github.com/soar/gamepadbrowse/internal/gamepad"
)

func rawFrame(pressed []gamepad.Button, axes ...float64) gamepad.DeviceFrame {
	f := gamepad.DeviceFrame{
		Buttons: make([]gamepad.ButtonSample, gamepad.ButtonCount),
		Axes:    axes,
	}
	for _, b := range pressed {
		f.Buttons[b] = gamepad.ButtonSample{Value: 1, Pressed: true}
	}
	return f
}

func connectSignal(index int) gamepad.Signal {
	return gamepad.Signal{Kind: gamepad.Connected, Index: index, Name: "pad", Buttons: gamepad.ButtonCount, Axes: 4}
}

func TestProcessorIdleDoesNothing(t *testing.T) {
	src := gamepad.NewFakeSource()
	p := NewProcessor(src, DefaultConfig())

	if _, ok := p.Tick(t0); ok {
		t.Error("idle processor should not produce frames")
	}
	if src.Reads[0] != 0 {
		t.Errorf("idle processor should not read frames, read %d", src.Reads[0])
	}
}

func TestProcessorEdges(t *testing.T) {
	src := gamepad.NewFakeSource()
	src.Push(2,
		rawFrame(nil, 0, 0, 0, 0),
		rawFrame([]gamepad.Button{gamepad.Button1}, 0, 0, 0, 0),
		rawFrame([]gamepad.Button{gamepad.Button1}, 0, 0, 0, 0),
		rawFrame(nil, 0, 0, 0, 0),
	)
	p := NewProcessor(src, DefaultConfig())
	p.Connect(connectSignal(2))

	now := t0
	step := func() Frame {
		f, ok := p.Tick(now)
		if !ok {
			t.Fatal("tracking processor should produce frames")
		}
		now = now.Add(16 * time.Millisecond)
		return f
	}

	f := step()
	if f.Pressed.Len() != 0 || len(f.JustPressed) != 0 {
		t.Errorf("tick 0: expected nothing pressed, got %v", f.Pressed.Buttons())
	}
	if f.Index != 2 {
		t.Errorf("expected frame index 2, got %d", f.Index)
	}

	f = step()
	if len(f.JustPressed) != 1 || f.JustPressed[0] != gamepad.Button1 {
		t.Errorf("tick 1: expected Button1 press edge, got %v", f.JustPressed)
	}
	if !f.Pressed.Has(gamepad.Button1) {
		t.Error("tick 1: Button1 should be pressed")
	}

	f = step()
	if len(f.JustPressed) != 0 {
		t.Errorf("tick 2: expected no new edge while held, got %v", f.JustPressed)
	}
	if !f.Pressed.Has(gamepad.Button1) {
		t.Error("tick 2: Button1 should still be pressed")
	}

	f = step()
	if len(f.JustReleased) != 1 || f.JustReleased[0] != gamepad.Button1 {
		t.Errorf("tick 3: expected Button1 release edge, got %v", f.JustReleased)
	}
	if f.Pressed.Len() != 0 {
		t.Errorf("tick 3: expected empty pressed set, got %v", f.Pressed.Buttons())
	}
}

func TestProcessorCalibratesAxes(t *testing.T) {
	src := gamepad.NewFakeSource()
	src.Push(0,
		rawFrame(nil, 0.02, -0.03, 0, 0),
		rawFrame(nil, 0.02, -0.03, 0, 0.52),
	)
	p := NewProcessor(src, DefaultConfig())
	p.Connect(connectSignal(0))

	f, _ := p.Tick(t0)
	for i, v := range f.Axes {
		if v != 0 {
			t.Errorf("axis %d: expected 0 on first frame, got %v", i, v)
		}
	}

	f, _ = p.Tick(t0.Add(16 * time.Millisecond))
	if math.Abs(f.Axes[gamepad.AxisRightY]-0.52) > 1e-12 {
		t.Errorf("expected right_y 0.52, got %v", f.Axes[gamepad.AxisRightY])
	}
	if f.Axes[gamepad.AxisLeftX] != 0 {
		t.Errorf("expected left_x 0, got %v", f.Axes[gamepad.AxisLeftX])
	}
	offsets := p.Offsets(nil)
	if len(offsets) != 4 || offsets[0] != 0.02 || offsets[1] != -0.03 {
		t.Errorf("unexpected offsets %v", offsets)
	}
}

func TestProcessorVanishedDeviceReadsEmpty(t *testing.T) {
	src := gamepad.NewFakeSource()
	src.Push(1, rawFrame([]gamepad.Button{gamepad.Button2}, 0, 0, 0, 0))
	p := NewProcessor(src, DefaultConfig())
	p.Connect(connectSignal(1))

	f, _ := p.Tick(t0)
	if !f.Pressed.Has(gamepad.Button2) {
		t.Fatal("Button2 should be pressed")
	}

	src.Remove(1)
	f, ok := p.Tick(t0.Add(16 * time.Millisecond))
	if !ok {
		t.Fatal("processor should keep tracking when the device vanishes")
	}
	if f.Pressed.Len() != 0 {
		t.Errorf("expected empty pressed set, got %v", f.Pressed.Buttons())
	}
	if len(f.JustReleased) != 1 || f.JustReleased[0] != gamepad.Button2 {
		t.Errorf("expected Button2 release, got %v", f.JustReleased)
	}
	if len(f.Axes) != 0 {
		t.Errorf("expected no axes, got %v", f.Axes)
	}
}

func TestProcessorExtraButtons(t *testing.T) {
	src := gamepad.NewFakeSource()
	frame := gamepad.DeviceFrame{Buttons: make([]gamepad.ButtonSample, gamepad.ButtonCount+3)}
	frame.Buttons[gamepad.ButtonCount+2] = gamepad.ButtonSample{Pressed: true}
	src.Push(0, frame)

	p := NewProcessor(src, DefaultConfig())
	p.Connect(connectSignal(0))
	f, _ := p.Tick(t0)

	want := gamepad.Button(gamepad.ButtonCount + 2)
	if !f.Pressed.Has(want) {
		t.Errorf("expected %v pressed, got %v", want, f.Pressed.Buttons())
	}
}

func TestProcessorDisconnectCancelsHoldAndCalibration(t *testing.T) {
	src := gamepad.NewFakeSource()
	src.Push(0, rawFrame([]gamepad.Button{gamepad.ShoulderTopRight}, 0.3, 0.3, 0.3, 0.3))
	p := NewProcessor(src, DefaultConfig())
	p.Connect(connectSignal(0))
	p.Tick(t0)

	if p.Hold(gamepad.ShoulderTopRight, t0) != Holding {
		t.Fatal("expected an open hold window")
	}

	p.Disconnect()
	if p.State() != Idle {
		t.Errorf("expected idle after disconnect, got %v", p.State())
	}
	if p.Hold(gamepad.ShoulderTopRight, t0) != HoldIdle {
		t.Error("disconnect should close hold windows")
	}
	if _, ok := p.Device(); ok {
		t.Error("no device should be bound after disconnect")
	}

	p.Connect(connectSignal(0))
	if off := p.Offsets(nil); len(off) != 4 || off[0] != 0 || off[3] != 0 {
		t.Errorf("expected fresh zero offsets after reconnect, got %v", off)
	}
	f, _ := p.Tick(t0.Add(time.Second))
	if len(f.JustPressed) != 1 {
		t.Errorf("expected a fresh press edge after reconnect, got %v", f.JustPressed)
	}
}
