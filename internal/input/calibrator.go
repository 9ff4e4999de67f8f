package input

import "math"

// DefaultEpsilon is the drift below which an axis counts as stationary.
//
// A smaller value keeps slow deliberate motion from being mistaken for
// rest, at the cost of taking longer to absorb a new rest position. A
// stick held perfectly still away from centre is indistinguishable from
// drift and is absorbed once the average catches up with it.
const DefaultEpsilon = 1e-4

// CalibrationState is the per-axis calibration record.
type CalibrationState struct {
	Offset  float64
	Average *RollingAverage
	Samples int
}

// AxisCalibrator tracks the rest position of every axis and subtracts it
// from raw readings. The offset only moves while the axis is stationary,
// so deliberate deflection is never absorbed mid-motion.
type AxisCalibrator struct {
	epsilon       float64
	smoothing     float64
	axisSmoothing []float64
	states        []CalibrationState
}

// NewAxisCalibrator creates a calibrator. axisSmoothing overrides the
// smoothing factor per axis index; zero entries fall back to smoothing.
func NewAxisCalibrator(epsilon, smoothing float64, axisSmoothing []float64) *AxisCalibrator {
	if epsilon < 0 {
		epsilon = 0
	}
	return &AxisCalibrator{
		epsilon:       epsilon,
		smoothing:     smoothing,
		axisSmoothing: append([]float64(nil), axisSmoothing...),
	}
}

// Reset discards all calibration state and prepares n fresh axes.
func (c *AxisCalibrator) Reset(n int) {
	c.states = c.states[:0]
	c.ensure(n - 1)
}

func (c *AxisCalibrator) smoothingFor(axis int) float64 {
	if axis < len(c.axisSmoothing) && c.axisSmoothing[axis] > 0 {
		return c.axisSmoothing[axis]
	}
	return c.smoothing
}

func (c *AxisCalibrator) ensure(axis int) {
	for len(c.states) <= axis {
		c.states = append(c.states, CalibrationState{
			Average: NewRollingAverage(c.smoothingFor(len(c.states))),
		})
	}
}

// Update feeds one raw reading and returns the calibrated value. A
// non-finite reading leaves the axis state untouched and reads as 0.
func (c *AxisCalibrator) Update(axis int, raw float64) float64 {
	if axis < 0 {
		return raw
	}
	c.ensure(axis)
	if math.IsNaN(raw) || math.IsInf(raw, 0) {
		return 0
	}
	st := &c.states[axis]

	st.Average.Add(raw)
	avg, _ := st.Average.Average()
	drift := math.Abs(raw - avg)

	if st.Samples == 0 || drift < c.epsilon {
		st.Offset = raw
	}
	st.Samples++

	return raw - st.Offset
}

// Offset returns the current rest offset of axis.
func (c *AxisCalibrator) Offset(axis int) float64 {
	if axis < 0 || axis >= len(c.states) {
		return 0
	}
	return c.states[axis].Offset
}

// Offsets appends the offsets of all tracked axes to dst.
func (c *AxisCalibrator) Offsets(dst []float64) []float64 {
	for _, st := range c.states {
		dst = append(dst, st.Offset)
	}
	return dst
}

// Axes returns the number of tracked axes.
func (c *AxisCalibrator) Axes() int {
	return len(c.states)
}

// Epsilon returns the configured stationarity threshold.
func (c *AxisCalibrator) Epsilon() float64 {
	return c.epsilon
}
