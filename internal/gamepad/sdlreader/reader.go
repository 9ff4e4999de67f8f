// Package sdlreader reads joysticks through SDL3. It is kept apart from
// the frame model because loading the SDL library happens at init.
package sdlreader

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/jupiterrider/purego-sdl3/sdl"

	"github.com/soar/gamepadbrowse/internal/gamepad"
)

const pollDelayNS = 16_000_000 // ~60Hz

type joystickInfo struct {
	joystick *sdl.Joystick
	mapping  *gamepad.DeviceMapping
	layout   gamepad.Layout
	name     string
	id       sdl.JoystickID
	index    int
}

// Reader reads joysticks through the SDL3 Joystick API. It keeps the latest
// raw frame of every open device so that Frame is a plain snapshot read.
type Reader struct {
	joysticks map[sdl.JoystickID]*joystickInfo
	frames    map[int]gamepad.DeviceFrame
	signals   *gamepad.SignalQueue
	ready     chan struct{}
	log       *slog.Logger
	mu        sync.RWMutex
}

func NewReader(logger *slog.Logger) *Reader {
	return &Reader{
		joysticks: make(map[sdl.JoystickID]*joystickInfo),
		frames:    make(map[int]gamepad.DeviceFrame),
		signals:   gamepad.NewSignalQueue(64),
		ready:     make(chan struct{}),
		log:       logger,
	}
}

// Signals returns the channel on which connect/disconnect notices are sent.
func (r *Reader) Signals() <-chan gamepad.Signal {
	return r.signals.C()
}

// Ready is closed once SDL has been initialized.
func (r *Reader) Ready() <-chan struct{} {
	return r.ready
}

// Frame returns a copy of the latest frame for the device at index.
func (r *Reader) Frame(index int) (gamepad.DeviceFrame, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.frames[index]
	if !ok {
		return gamepad.DeviceFrame{}, false
	}
	return f.Clone(), true
}

// Run initializes SDL and runs the event+polling loop on the current thread
// until ctx is cancelled.
func (r *Reader) Run(ctx context.Context) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if !sdl.Init(sdl.InitJoystick) {
		return fmt.Errorf("sdl init: %s", sdl.GetError())
	}
	defer sdl.Quit()

	r.log.Info("SDL3 joystick subsystem initialized")
	close(r.ready)

	// Check for already-connected joysticks
	for _, id := range sdl.GetJoysticks() {
		r.openJoystick(id)
	}

	for {
		select {
		case <-ctx.Done():
			r.closeAll()
			return nil
		default:
		}

		r.flushSignals()
		r.processEvents()
		r.pollState()
		sdl.DelayNS(pollDelayNS)
	}
}

func (r *Reader) processEvents() {
	var event sdl.Event
	for sdl.PollEvent(&event) {
		switch event.Type() {
		case sdl.EventJoystickAdded:
			r.openJoystick(event.JDevice().Which)

		case sdl.EventJoystickRemoved:
			r.removeJoystick(event.JDevice().Which)

		case sdl.EventJoystickButtonDown:
			be := event.JButton()
			r.log.Debug("button down", "button", be.Button, "joystick", be.Which)

		case sdl.EventJoystickButtonUp:
			be := event.JButton()
			r.log.Debug("button up", "button", be.Button, "joystick", be.Which)
		}
	}
}

// freeIndex returns the lowest device index not in use.
func (r *Reader) freeIndex() int {
	used := make([]int, 0, len(r.joysticks))
	for _, info := range r.joysticks {
		used = append(used, info.index)
	}
	sort.Ints(used)
	idx := 0
	for _, u := range used {
		if u != idx {
			break
		}
		idx++
	}
	return idx
}

func (r *Reader) openJoystick(instanceID sdl.JoystickID) {
	if _, exists := r.joysticks[instanceID]; exists {
		return
	}

	js := sdl.OpenJoystick(instanceID)
	if js == nil {
		r.log.Warn("failed to open joystick", "id", instanceID, "error", sdl.GetError())
		return
	}

	jsID := sdl.GetJoystickID(js)
	vendorID := sdl.GetJoystickVendor(js)
	productID := sdl.GetJoystickProduct(js)
	name := sdl.GetJoystickName(js)
	mapping := gamepad.GetMapping(vendorID, productID)

	numAxes := sdl.GetNumJoystickAxes(js)
	numButtons := sdl.GetNumJoystickButtons(js)
	numHats := sdl.GetNumJoystickHats(js)

	info := &joystickInfo{
		joystick: js,
		mapping:  mapping,
		layout:   mapping.Layout(int32(numButtons), int32(numAxes)),
		name:     name,
		id:       jsID,
		index:    r.freeIndex(),
	}
	r.joysticks[jsID] = info

	r.log.Info("joystick connected",
		"name", name,
		"vid", fmt.Sprintf("%04X", vendorID),
		"pid", fmt.Sprintf("%04X", productID),
		"mapping", mapping.Name,
		"index", info.index,
		"axes", numAxes,
		"buttons", numButtons,
		"hats", numHats)

	r.poll(info)

	r.mu.RLock()
	frame := r.frames[info.index]
	r.mu.RUnlock()
	r.emit(gamepad.Signal{
		Kind:    gamepad.Connected,
		Index:   info.index,
		Name:    name,
		Buttons: len(frame.Buttons),
		Axes:    len(frame.Axes),
	})
}

func (r *Reader) removeJoystick(instanceID sdl.JoystickID) {
	info, exists := r.joysticks[instanceID]
	if !exists {
		return
	}

	r.log.Info("joystick disconnected", "name", info.name, "index", info.index)
	sdl.CloseJoystick(info.joystick)
	delete(r.joysticks, instanceID)

	r.mu.Lock()
	delete(r.frames, info.index)
	r.mu.Unlock()

	r.emit(gamepad.Signal{Kind: gamepad.Disconnected, Index: info.index})
}

func (r *Reader) closeAll() {
	for id := range r.joysticks {
		r.removeJoystick(id)
	}
}

func (r *Reader) pollState() {
	for _, info := range r.joysticks {
		if !sdl.JoystickConnected(info.joystick) {
			// Removal event will follow; stop serving stale frames now.
			r.mu.Lock()
			delete(r.frames, info.index)
			r.mu.Unlock()
			continue
		}
		r.poll(info)
	}
}

func (r *Reader) poll(info *joystickInfo) {
	js := info.joystick

	raw := gamepad.RawInputs{
		Axes:    make([]int16, sdl.GetNumJoystickAxes(js)),
		Buttons: make([]bool, sdl.GetNumJoystickButtons(js)),
	}
	for i := range raw.Axes {
		raw.Axes[i] = sdl.GetJoystickAxis(js, int32(i))
	}
	for i := range raw.Buttons {
		raw.Buttons[i] = sdl.GetJoystickButton(js, int32(i))
	}
	if info.mapping.HasHat && sdl.GetNumJoystickHats(js) > 0 {
		raw.Hat = sdl.GetJoystickHat(js, 0)
		raw.HasHat = true
	}

	frame := info.mapping.BuildFrame(raw, info.layout)
	frame.Index = info.index
	frame.Time = time.Now()

	r.mu.Lock()
	r.frames[info.index] = frame
	r.mu.Unlock()
}

// emit never blocks the SDL thread. Signals that do not fit are retried on
// the next iteration so that a disconnect is never lost.
func (r *Reader) emit(s gamepad.Signal) {
	if n := r.signals.Offer(s); n > 0 {
		r.log.Warn("signal deferred", "kind", s.Kind, "index", s.Index, "pending", n)
	}
}

func (r *Reader) flushSignals() {
	if r.signals.Pending() == 0 {
		return
	}
	if n := r.signals.Flush(); n == 0 {
		r.log.Debug("deferred signals delivered")
	}
}
