package gamepad

import "math"

// AxisMapping defines how a raw joystick axis feeds the standard layout.
// A stick axis lands in Axes[Axis]; a trigger axis lands in the analog
// value of button Trigger.
type AxisMapping struct {
	Index     int32
	Axis      int
	Invert    bool
	IsTrigger bool
	Trigger   Button
	// For triggers: raw range. Some devices use -32768..32767, others 0..32767.
	RawMin int16
	RawMax int16
}

// ButtonMapping defines how a raw joystick button maps to a standard button.
type ButtonMapping struct {
	Index  int32
	Target Button
}

// DeviceMapping holds the complete mapping for a specific device type.
type DeviceMapping struct {
	Name    string
	Axes    []AxisMapping
	Buttons []ButtonMapping
	HasHat  bool
}

// triggerPressed is the analog level at which a trigger counts as pressed.
const triggerPressed = 0.5

// NormalizeAxis converts a raw axis value (-32768..32767) to -1.0..1.0.
func NormalizeAxis(raw int16) float64 {
	v := float64(raw) / math.MaxInt16
	if v < -1.0 {
		v = -1.0
	}
	return v
}

// NormalizeTrigger converts a raw trigger value to 0.0..1.0.
func NormalizeTrigger(raw int16, rawMin, rawMax int16) float64 {
	if rawMax == rawMin {
		return 0
	}
	v := (float64(raw) - float64(rawMin)) / (float64(rawMax) - float64(rawMin))
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return v
}

// Layout describes where raw inputs outside the mapping land in a frame.
// Unmapped raw buttons and axes are appended after the standard ones in
// ascending raw order so they keep a stable numeric identity.
type Layout struct {
	ExtraButtons []int32
	ExtraAxes    []int32
}

// Layout computes the frame layout for a device reporting numButtons raw
// buttons and numAxes raw axes.
func (m *DeviceMapping) Layout(numButtons, numAxes int32) Layout {
	var l Layout
	mappedButtons := make(map[int32]bool, len(m.Buttons))
	for _, bm := range m.Buttons {
		mappedButtons[bm.Index] = true
	}
	for i := int32(0); i < numButtons; i++ {
		if !mappedButtons[i] {
			l.ExtraButtons = append(l.ExtraButtons, i)
		}
	}
	mappedAxes := make(map[int32]bool, len(m.Axes))
	for _, am := range m.Axes {
		mappedAxes[am.Index] = true
	}
	for i := int32(0); i < numAxes; i++ {
		if !mappedAxes[i] {
			l.ExtraAxes = append(l.ExtraAxes, i)
		}
	}
	return l
}

// RawInputs is one raw poll of a joystick.
type RawInputs struct {
	Axes    []int16
	Buttons []bool
	Hat     uint8
	HasHat  bool
}

// BuildFrame converts one raw poll into a DeviceFrame in the standard
// layout. Raw indices missing from raw are treated as released/centred.
func (m *DeviceMapping) BuildFrame(raw RawInputs, layout Layout) DeviceFrame {
	frame := DeviceFrame{
		Buttons: make([]ButtonSample, ButtonCount+len(layout.ExtraButtons)),
		Axes:    make([]float64, AxisCount+len(layout.ExtraAxes)),
	}

	axis := func(i int32) int16 {
		if i >= 0 && int(i) < len(raw.Axes) {
			return raw.Axes[i]
		}
		return 0
	}
	button := func(i int32) bool {
		return i >= 0 && int(i) < len(raw.Buttons) && raw.Buttons[i]
	}

	for _, am := range m.Axes {
		v := axis(am.Index)
		if am.IsTrigger {
			if int(am.Index) >= len(raw.Axes) {
				v = am.RawMin
			}
			val := NormalizeTrigger(v, am.RawMin, am.RawMax)
			frame.Buttons[am.Trigger] = ButtonSample{Value: val, Pressed: val >= triggerPressed}
			continue
		}
		val := NormalizeAxis(v)
		if am.Invert {
			val = -val
		}
		if am.Axis >= 0 && am.Axis < AxisCount {
			frame.Axes[am.Axis] = val
		}
	}

	for _, bm := range m.Buttons {
		if button(bm.Index) {
			frame.Buttons[bm.Target] = ButtonSample{Value: 1, Pressed: true}
		}
	}

	if m.HasHat && raw.HasHat {
		setHat := func(b Button, on bool) {
			if on {
				frame.Buttons[b] = ButtonSample{Value: 1, Pressed: true}
			}
		}
		setHat(DPadUp, raw.Hat&hatUp != 0)
		setHat(DPadRight, raw.Hat&hatRight != 0)
		setHat(DPadDown, raw.Hat&hatDown != 0)
		setHat(DPadLeft, raw.Hat&hatLeft != 0)
	}

	for i, idx := range layout.ExtraButtons {
		if button(idx) {
			frame.Buttons[ButtonCount+i] = ButtonSample{Value: 1, Pressed: true}
		}
	}
	for i, idx := range layout.ExtraAxes {
		frame.Axes[AxisCount+i] = NormalizeAxis(axis(idx))
	}

	return frame
}

const (
	hatUp    uint8 = 0x01
	hatRight uint8 = 0x02
	hatDown  uint8 = 0x04
	hatLeft  uint8 = 0x08
)

// Built-in mappings for common controllers.

var stickAxes = []AxisMapping{
	{Index: 0, Axis: AxisLeftX},
	{Index: 1, Axis: AxisLeftY},
	{Index: 2, Axis: AxisRightX},
	{Index: 3, Axis: AxisRightY},
}

func withTriggers(axes []AxisMapping) []AxisMapping {
	return append(append([]AxisMapping(nil), axes...),
		AxisMapping{Index: 4, IsTrigger: true, Trigger: ShoulderBottomLeft, RawMin: -32768, RawMax: 32767},
		AxisMapping{Index: 5, IsTrigger: true, Trigger: ShoulderBottomRight, RawMin: -32768, RawMax: 32767},
	)
}

var xboxMapping = &DeviceMapping{
	Name: "xbox",
	Axes: withTriggers(stickAxes),
	Buttons: []ButtonMapping{
		{Index: 0, Target: Button1},
		{Index: 1, Target: Button2},
		{Index: 2, Target: Button3},
		{Index: 3, Target: Button4},
		{Index: 4, Target: ShoulderTopLeft},
		{Index: 5, Target: ShoulderTopRight},
		{Index: 6, Target: Select},
		{Index: 7, Target: Start},
		{Index: 8, Target: StickButtonLeft},
		{Index: 9, Target: StickButtonRight},
		{Index: 10, Target: Vendor},
	},
	HasHat: true,
}

var playstationMapping = &DeviceMapping{
	Name: "playstation",
	Axes: withTriggers(stickAxes),
	Buttons: []ButtonMapping{
		{Index: 0, Target: Button1}, // Cross (×)
		{Index: 1, Target: Button2}, // Circle (○)
		{Index: 2, Target: Button3}, // Square (□)
		{Index: 3, Target: Button4}, // Triangle (△)
		{Index: 4, Target: Select},  // Share / Create
		{Index: 5, Target: Vendor},  // PS button
		{Index: 6, Target: Start},   // Options
		{Index: 7, Target: StickButtonLeft},
		{Index: 8, Target: StickButtonRight},
		{Index: 9, Target: ShoulderTopLeft},   // L1
		{Index: 10, Target: ShoulderTopRight}, // R1
	},
	HasHat: true,
}

var switchProMapping = &DeviceMapping{
	Name: "switch_pro",
	Axes: stickAxes,
	Buttons: []ButtonMapping{
		{Index: 0, Target: Button1},
		{Index: 1, Target: Button2},
		{Index: 2, Target: Button3},
		{Index: 3, Target: Button4},
		{Index: 4, Target: ShoulderTopLeft},
		{Index: 5, Target: ShoulderTopRight},
		{Index: 6, Target: Select},
		{Index: 7, Target: Start},
		{Index: 8, Target: StickButtonLeft},
		{Index: 9, Target: StickButtonRight},
		{Index: 10, Target: Vendor},
	},
	HasHat: true,
}

var genericMapping = &DeviceMapping{
	Name:    "generic",
	Axes:    withTriggers(stickAxes),
	Buttons: xboxMapping.Buttons,
	HasHat:  true,
}

// Known vendor/product IDs.
type deviceKey struct {
	VendorID  uint16
	ProductID uint16
}

var knownDevices = map[deviceKey]*DeviceMapping{
	// Microsoft Xbox controllers
	{0x045E, 0x028E}: xboxMapping, // Xbox 360
	{0x045E, 0x02FF}: xboxMapping, // Xbox One
	{0x045E, 0x0B12}: xboxMapping, // Xbox Series X|S
	{0x045E, 0x0B13}: xboxMapping, // Xbox Series X|S (wireless)
	// Sony PlayStation controllers
	{0x054C, 0x0CE6}: playstationMapping, // DualSense
	{0x054C, 0x09CC}: playstationMapping, // DualShock 4 v2
	{0x054C, 0x05C4}: playstationMapping, // DualShock 4 v1
	// Nintendo Switch Pro Controller
	{0x057E, 0x2009}: switchProMapping,
}

// GetMapping returns the appropriate mapping for a device identified by vendor/product ID.
// Falls back to generic mapping if no specific mapping is found.
func GetMapping(vendorID, productID uint16) *DeviceMapping {
	key := deviceKey{VendorID: vendorID, ProductID: productID}
	if m, ok := knownDevices[key]; ok {
		return m
	}
	return genericMapping
}
