// Package input turns raw device frames into calibrated axes and a
// level-triggered set of pressed buttons.
//
// Nothing here reads the wall clock or schedules timers. Every
// time-dependent operation takes the tick time as a parameter.
package input

// DefaultSmoothing is the smoothing factor used when none is configured.
const DefaultSmoothing = 0.5

// RollingAverage is an exponential moving average of a scalar stream.
type RollingAverage struct {
	smoothing float64
	avg       float64
	valid     bool
}

// NewRollingAverage returns an empty average. A smoothing factor outside
// (0,1] selects DefaultSmoothing.
func NewRollingAverage(smoothing float64) *RollingAverage {
	if smoothing <= 0 || smoothing > 1 {
		smoothing = DefaultSmoothing
	}
	return &RollingAverage{smoothing: smoothing}
}

// Add folds v into the average. The first sample initializes the average
// directly.
func (r *RollingAverage) Add(v float64) {
	if !r.valid {
		r.avg = v
		r.valid = true
		return
	}
	r.avg = r.smoothing*v + (1-r.smoothing)*r.avg
}

// Average returns the current estimate; ok is false before the first Add.
func (r *RollingAverage) Average() (avg float64, ok bool) {
	return r.avg, r.valid
}

// Smoothing returns the configured smoothing factor.
func (r *RollingAverage) Smoothing() float64 {
	return r.smoothing
}

// Reset forgets all samples.
func (r *RollingAverage) Reset() {
	r.avg = 0
	r.valid = false
}
