package gamepad

// FakeSource is a test double serving scripted frames per device index.
type FakeSource struct {
	// Frames holds the scripted frames per index. Each call to Frame
	// consumes the next one; the last frame repeats once exhausted.
	Frames map[int][]DeviceFrame

	// Reads counts Frame calls per index.
	Reads map[int]int

	pos     map[int]int
	signals chan Signal
}

// NewFakeSource creates an empty FakeSource.
func NewFakeSource() *FakeSource {
	return &FakeSource{
		Frames:  make(map[int][]DeviceFrame),
		Reads:   make(map[int]int),
		pos:     make(map[int]int),
		signals: make(chan Signal, 16),
	}
}

// Push appends scripted frames for index.
func (f *FakeSource) Push(index int, frames ...DeviceFrame) {
	for i := range frames {
		frames[i].Index = index
	}
	f.Frames[index] = append(f.Frames[index], frames...)
}

// Remove forgets index, so later reads report it as invalid.
func (f *FakeSource) Remove(index int) {
	delete(f.Frames, index)
	delete(f.pos, index)
}

// Frame returns the next scripted frame for index.
func (f *FakeSource) Frame(index int) (DeviceFrame, bool) {
	f.Reads[index]++
	frames, ok := f.Frames[index]
	if !ok || len(frames) == 0 {
		return DeviceFrame{}, false
	}
	p := f.pos[index]
	frame := frames[p]
	if p < len(frames)-1 {
		f.pos[index] = p + 1
	}
	return frame.Clone(), true
}

// Signals returns the channel fed by Send.
func (f *FakeSource) Signals() <-chan Signal {
	return f.signals
}

// Send queues a signal for delivery.
func (f *FakeSource) Send(s Signal) {
	f.signals <- s
}
