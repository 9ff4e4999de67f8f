package input

import (
	"math"
	"testing"
)

func TestRollingAverageEmpty(t *testing.T) {
	r := NewRollingAverage(0.5)
	if _, ok := r.Average(); ok {
		t.Error("average should be undefined before the first sample")
	}
}

func TestRollingAverageFirstSampleInitializes(t *testing.T) {
	r := NewRollingAverage(0.1)
	r.Add(0.7)
	avg, ok := r.Average()
	if !ok {
		t.Fatal("average should be defined after the first sample")
	}
	if avg != 0.7 {
		t.Errorf("expected first sample to initialize average to 0.7, got %v", avg)
	}
}

func TestRollingAverageBlend(t *testing.T) {
	r := NewRollingAverage(0.5)
	r.Add(1.0)
	r.Add(0.0)
	avg, _ := r.Average()
	if avg != 0.5 {
		t.Errorf("expected 0.5, got %v", avg)
	}
	r.Add(0.0)
	avg, _ = r.Average()
	if avg != 0.25 {
		t.Errorf("expected 0.25, got %v", avg)
	}
}

func TestRollingAverageConverges(t *testing.T) {
	tests := []struct {
		name      string
		smoothing float64
		start     float64
		value     float64
	}{
		{"default smoothing", 0.5, 0, 0.8},
		{"slow smoothing", 0.1, -1, 0.25},
		{"full smoothing", 1.0, 3, -0.4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRollingAverage(tt.smoothing)
			r.Add(tt.start)
			for i := 0; i < 500; i++ {
				r.Add(tt.value)
				avg, ok := r.Average()
				if !ok || math.IsNaN(avg) || math.IsInf(avg, 0) {
					t.Fatalf("average not finite after %d samples: %v", i+1, avg)
				}
			}
			avg, _ := r.Average()
			if math.Abs(avg-tt.value) > 1e-9 {
				t.Errorf("expected average to converge to %v, got %v", tt.value, avg)
			}
		})
	}
}

func TestRollingAverageInvalidSmoothing(t *testing.T) {
	for _, s := range []float64{0, -0.5, 1.5} {
		r := NewRollingAverage(s)
		if r.Smoothing() != DefaultSmoothing {
			t.Errorf("smoothing %v: expected default %v, got %v", s, DefaultSmoothing, r.Smoothing())
		}
	}
}

func TestRollingAverageReset(t *testing.T) {
	r := NewRollingAverage(0.5)
	r.Add(1)
	r.Reset()
	if _, ok := r.Average(); ok {
		t.Error("average should be undefined after reset")
	}
}
