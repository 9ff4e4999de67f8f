package gamepad

import (
	"strconv"
	"strings"
	"time"
)

// Button identifies a button by its index in the standard layout.
type Button int

const (
	Button1 Button = iota
	Button2
	Button3
	Button4
	ShoulderTopLeft
	ShoulderTopRight
	ShoulderBottomLeft
	ShoulderBottomRight
	Select
	Start
	StickButtonLeft
	StickButtonRight
	DPadUp
	DPadDown
	DPadLeft
	DPadRight
	Vendor

	// ButtonCount is the number of buttons with a symbolic name.
	ButtonCount = int(Vendor) + 1
)

var buttonNames = [ButtonCount]string{
	"Button1",
	"Button2",
	"Button3",
	"Button4",
	"ShoulderTopLeft",
	"ShoulderTopRight",
	"ShoulderBottomLeft",
	"ShoulderBottomRight",
	"Select",
	"Start",
	"StickButtonLeft",
	"StickButtonRight",
	"DPadUp",
	"DPadDown",
	"DPadLeft",
	"DPadRight",
	"Vendor",
}

// String returns the symbolic name, or "Button(n)" for indices the table
// does not cover.
func (b Button) String() string {
	if b >= 0 && int(b) < ButtonCount {
		return buttonNames[b]
	}
	return "Button(" + strconv.Itoa(int(b)) + ")"
}

// ParseButton looks up a button by symbolic name, case-insensitively.
func ParseButton(name string) (Button, bool) {
	for i, n := range buttonNames {
		if strings.EqualFold(n, name) {
			return Button(i), true
		}
	}
	return 0, false
}

// Named reports whether b has a symbolic name.
func (b Button) Named() bool {
	return b >= 0 && int(b) < ButtonCount
}

// Axis indices in the standard layout.
const (
	AxisLeftX  = 0
	AxisLeftY  = 1
	AxisRightX = 2
	AxisRightY = 3

	// AxisCount is the number of axes in the standard layout.
	AxisCount = 4
)

var axisNames = [AxisCount]string{"left_x", "left_y", "right_x", "right_y"}

// AxisName returns the symbolic name of an axis index.
func AxisName(i int) string {
	if i >= 0 && i < AxisCount {
		return axisNames[i]
	}
	return "axis" + strconv.Itoa(i)
}

// ButtonSample is the raw state of one button at one tick. Devices encode
// "held down" differently: a digital flag, an analog touch flag, or a
// magnitude at the maximum digital value.
type ButtonSample struct {
	Value   float64 `json:"value"`
	Pressed bool    `json:"pressed"`
	Touched bool    `json:"touched"`
}

// DeviceFrame is a raw snapshot of one device at one tick. Frames are
// produced fresh for every read and must not be mutated by consumers.
type DeviceFrame struct {
	Index   int
	Buttons []ButtonSample
	Axes    []float64
	Time    time.Time
}

// Empty reports whether the frame carries no inputs at all.
func (f DeviceFrame) Empty() bool {
	return len(f.Buttons) == 0 && len(f.Axes) == 0
}

// Clone returns a deep copy of f.
func (f DeviceFrame) Clone() DeviceFrame {
	c := f
	c.Buttons = append([]ButtonSample(nil), f.Buttons...)
	c.Axes = append([]float64(nil), f.Axes...)
	return c
}
