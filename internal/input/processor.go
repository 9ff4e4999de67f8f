package input

import (
	"time"

	"github.com/soar/gamepadbrowse/internal/gamepad"
)

// State is the processor's binding state.
type State int

const (
	Idle State = iota
	Tracking
)

func (s State) String() string {
	if s == Tracking {
		return "tracking"
	}
	return "idle"
}

// Config holds the tunables of the processing pipeline.
type Config struct {
	Epsilon       float64
	Smoothing     float64
	AxisSmoothing []float64
	Hold          time.Duration
}

// DefaultConfig returns the pipeline defaults.
func DefaultConfig() Config {
	return Config{
		Epsilon:   DefaultEpsilon,
		Smoothing: DefaultSmoothing,
		Hold:      DefaultHold,
	}
}

// Frame is the normalized result of one tick. Its slices and pressed set
// are owned by the processor and stay valid until the next tick.
type Frame struct {
	Index        int
	Name         string
	Time         time.Time
	Axes         []float64
	Offsets      []float64
	Pressed      PressedSet
	JustPressed  []gamepad.Button
	JustReleased []gamepad.Button
}

// Processor binds to one device at a time and turns its raw frames into
// normalized frames.
type Processor struct {
	source  gamepad.FrameSource
	calib   *AxisCalibrator
	buttons *ButtonEdgeTracker
	state   State
	device  gamepad.Signal

	axes         []float64
	offsets      []float64
	justPressed  []gamepad.Button
	justReleased []gamepad.Button
}

// NewProcessor creates an idle processor reading from source.
func NewProcessor(source gamepad.FrameSource, cfg Config) *Processor {
	return &Processor{
		source:  source,
		calib:   NewAxisCalibrator(cfg.Epsilon, cfg.Smoothing, cfg.AxisSmoothing),
		buttons: NewButtonEdgeTracker(cfg.Hold),
	}
}

// Connect binds the processor to the device announced by sig and starts
// from fresh calibration and an empty pressed set.
func (p *Processor) Connect(sig gamepad.Signal) {
	p.calib.Reset(sig.Axes)
	p.buttons.Reset()
	p.device = sig
	p.state = Tracking
}

// Disconnect unbinds the device and drops every open hold window.
func (p *Processor) Disconnect() {
	p.calib.Reset(0)
	p.buttons.Reset()
	p.device = gamepad.Signal{}
	p.state = Idle
}

// State returns the binding state.
func (p *Processor) State() State {
	return p.state
}

// Device returns the bound device; ok is false while Idle.
func (p *Processor) Device() (sig gamepad.Signal, ok bool) {
	return p.device, p.state == Tracking
}

// Tick pulls the latest frame of the bound device and processes it. It
// returns false while Idle. A vanished device reads as an empty frame.
func (p *Processor) Tick(now time.Time) (Frame, bool) {
	if p.state != Tracking {
		return Frame{}, false
	}
	raw, ok := p.source.Frame(p.device.Index)
	if !ok {
		raw = gamepad.DeviceFrame{Index: p.device.Index}
	}
	return p.Process(raw, now), true
}

// Process runs one raw frame through the button tracker and the axis
// calibrator: buttons in index order first, then axes in index order.
func (p *Processor) Process(raw gamepad.DeviceFrame, now time.Time) Frame {
	p.justPressed = p.justPressed[:0]
	p.justReleased = p.justReleased[:0]

	for i, sample := range raw.Buttons {
		b := gamepad.Button(i)
		if IsActive(sample) {
			if p.buttons.Press(b, sample, now) {
				p.justPressed = append(p.justPressed, b)
			}
		} else if p.buttons.Release(b) {
			p.justReleased = append(p.justReleased, b)
		}
	}

	// Buttons the frame no longer reports are no longer active.
	pressed := p.buttons.Pressed()
	pressed.Each(func(b gamepad.Button, _ gamepad.ButtonSample) {
		if int(b) >= len(raw.Buttons) {
			p.justReleased = append(p.justReleased, b)
		}
	})
	for _, b := range p.justReleased {
		p.buttons.Release(b)
	}

	p.axes = p.axes[:0]
	for i, v := range raw.Axes {
		p.axes = append(p.axes, p.calib.Update(i, v))
	}
	p.offsets = p.calib.Offsets(p.offsets[:0])

	return Frame{
		Index:        p.device.Index,
		Name:         p.device.Name,
		Time:         now,
		Axes:         p.axes,
		Offsets:      p.offsets,
		Pressed:      p.buttons.Pressed(),
		JustPressed:  p.justPressed,
		JustReleased: p.justReleased,
	}
}

// Offsets appends the current per-axis rest offsets to dst.
func (p *Processor) Offsets(dst []float64) []float64 {
	return p.calib.Offsets(dst)
}

// Hold returns the hold window state of b at now.
func (p *Processor) Hold(b gamepad.Button, now time.Time) HoldState {
	return p.buttons.Hold(b, now)
}
