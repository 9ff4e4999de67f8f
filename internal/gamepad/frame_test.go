package gamepad

import "testing"

func TestButtonString(t *testing.T) {
	tests := []struct {
		b     Button
		want  string
		named bool
	}{
		{Button1, "Button1", true},
		{DPadRight, "DPadRight", true},
		{Vendor, "Vendor", true},
		{Button(17), "Button(17)", false},
		{Button(-1), "Button(-1)", false},
	}
	for _, tt := range tests {
		if got := tt.b.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
		if tt.b.Named() != tt.named {
			t.Errorf("%s: Named() = %v", tt.want, !tt.named)
		}
	}
}

func TestAxisName(t *testing.T) {
	if AxisName(AxisRightY) != "right_y" {
		t.Errorf("unexpected name %q", AxisName(AxisRightY))
	}
	if AxisName(5) != "axis5" {
		t.Errorf("unexpected name %q", AxisName(5))
	}
}

func TestDeviceFrameClone(t *testing.T) {
	f := DeviceFrame{
		Buttons: []ButtonSample{{Value: 1, Pressed: true}},
		Axes:    []float64{0.5},
	}
	c := f.Clone()
	c.Buttons[0].Pressed = false
	c.Axes[0] = 0
	if !f.Buttons[0].Pressed || f.Axes[0] != 0.5 {
		t.Error("clone shares storage with the original")
	}
	if f.Empty() || !(DeviceFrame{}).Empty() {
		t.Error("unexpected Empty result")
	}
}

func TestFakeSource(t *testing.T) {
	src := NewFakeSource()
	if _, ok := src.Frame(0); ok {
		t.Error("unknown index should be invalid")
	}

	src.Push(3, DeviceFrame{Axes: []float64{0.1}}, DeviceFrame{Axes: []float64{0.2}})
	want := []float64{0.1, 0.2, 0.2}
	for i, w := range want {
		f, ok := src.Frame(3)
		if !ok {
			t.Fatalf("read %d: expected a frame", i)
		}
		if f.Index != 3 || f.Axes[0] != w {
			t.Errorf("read %d: expected index 3 axis %v, got %d %v", i, w, f.Index, f.Axes[0])
		}
	}
	if src.Reads[3] != 3 {
		t.Errorf("expected 3 reads, got %d", src.Reads[3])
	}

	src.Remove(3)
	if _, ok := src.Frame(3); ok {
		t.Error("removed index should be invalid")
	}

	src.Send(Signal{Kind: Disconnected, Index: 3})
	if s := <-src.Signals(); s.Kind != Disconnected || s.Index != 3 {
		t.Errorf("unexpected signal %+v", s)
	}
}

func TestParseButton(t *testing.T) {
	if b, ok := ParseButton("dpadleft"); !ok || b != DPadLeft {
		t.Errorf("expected DPadLeft, got %v %v", b, ok)
	}
	if _, ok := ParseButton("Button(20)"); ok {
		t.Error("numeric names are not symbolic")
	}
}
