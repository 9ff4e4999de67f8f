package gamepad

import "math"

// PressedButton is one entry of the pressed set as shown to monitors.
type PressedButton struct {
	ID    int     `json:"id"`
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// State is a monitor-facing snapshot of the processed input of the bound
// device.
type State struct {
	Connected bool            `json:"connected"`
	Index     int             `json:"index"`
	Name      string          `json:"name"`
	Pressed   []PressedButton `json:"pressed"`
	Axes      []float64       `json:"axes"`
	Offsets   []float64       `json:"offsets"`
}

// DeltaChanges carries only the fields of State that changed.
type DeltaChanges struct {
	Connected *bool            `json:"connected,omitempty"`
	Index     *int             `json:"index,omitempty"`
	Name      *string          `json:"name,omitempty"`
	Pressed   *[]PressedButton `json:"pressed,omitempty"`
	Axes      *[]float64       `json:"axes,omitempty"`
	Offsets   *[]float64       `json:"offsets,omitempty"`
}

func (d *DeltaChanges) IsEmpty() bool {
	return d.Connected == nil &&
		d.Index == nil &&
		d.Name == nil &&
		d.Pressed == nil &&
		d.Axes == nil &&
		d.Offsets == nil
}

const analogThreshold = 0.01

func floatEqual(a, b float64) bool {
	return math.Abs(a-b) < analogThreshold
}

func floatsEqual(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !floatEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

func pressedEqual(a, b []PressedButton) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID || !floatEqual(a[i].Value, b[i].Value) {
			return false
		}
	}
	return true
}

func ComputeDelta(old, new_ State) *DeltaChanges {
	d := &DeltaChanges{}

	if old.Connected != new_.Connected {
		d.Connected = &new_.Connected
	}
	if old.Index != new_.Index {
		d.Index = &new_.Index
	}
	if old.Name != new_.Name {
		d.Name = &new_.Name
	}
	if !pressedEqual(old.Pressed, new_.Pressed) {
		d.Pressed = &new_.Pressed
	}
	if !floatsEqual(old.Axes, new_.Axes) {
		d.Axes = &new_.Axes
	}
	if !floatsEqual(old.Offsets, new_.Offsets) {
		d.Offsets = &new_.Offsets
	}

	return d
}
