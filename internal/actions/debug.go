package actions

import "sync/atomic"

// DebugFlag enables the debug overlay. It is created once, toggled by the
// Select button or the tray menu, and read once per tick.
type DebugFlag struct {
	on atomic.Bool
}

// Enabled reports whether the overlay is on.
func (d *DebugFlag) Enabled() bool {
	return d.on.Load()
}

// Set turns the overlay on or off.
func (d *DebugFlag) Set(on bool) {
	d.on.Store(on)
}

// Toggle flips the overlay and returns the new value.
func (d *DebugFlag) Toggle() bool {
	for {
		old := d.on.Load()
		if d.on.CompareAndSwap(old, !old) {
			return !old
		}
	}
}
