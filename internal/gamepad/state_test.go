package gamepad

import "testing"

func TestComputeDeltaEmpty(t *testing.T) {
	s := State{
		Connected: true,
		Name:      "pad",
		Pressed:   []PressedButton{{ID: 0, Name: "Button1", Value: 1}},
		Axes:      []float64{0.1, 0.2},
	}
	if d := ComputeDelta(s, s); !d.IsEmpty() {
		t.Errorf("expected empty delta, got %+v", d)
	}
}

func TestComputeDeltaIgnoresJitter(t *testing.T) {
	old := State{Axes: []float64{0.100, 0.2}}
	new_ := State{Axes: []float64{0.105, 0.2}}
	if d := ComputeDelta(old, new_); !d.IsEmpty() {
		t.Errorf("expected sub-threshold change to be ignored, got %+v", d)
	}
}

func TestComputeDeltaFields(t *testing.T) {
	old := State{Connected: true, Index: 0, Name: "pad", Axes: []float64{0, 0}}
	new_ := State{
		Connected: true,
		Index:     1,
		Name:      "pad",
		Pressed:   []PressedButton{{ID: 9, Name: "Start", Value: 1}},
		Axes:      []float64{0.5, 0},
	}
	d := ComputeDelta(old, new_)
	if d.Connected != nil || d.Name != nil || d.Offsets != nil {
		t.Errorf("unchanged fields present in delta: %+v", d)
	}
	if d.Index == nil || *d.Index != 1 {
		t.Error("expected index change")
	}
	if d.Pressed == nil || len(*d.Pressed) != 1 || (*d.Pressed)[0].ID != 9 {
		t.Error("expected pressed change")
	}
	if d.Axes == nil || (*d.Axes)[0] != 0.5 {
		t.Error("expected axes change")
	}
}
