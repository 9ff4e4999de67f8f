package actions

import "math"

// Curve maps a calibrated axis value to a signed displacement:
// sign(v) * (|v|+1)^exp. Values inside the deadzone map to 0.
func Curve(v, deadzone, exp float64) float64 {
	if math.Abs(v) <= deadzone {
		return 0
	}
	sign := 1.0
	if v < 0 {
		sign = -1
	}
	return sign * math.Pow(math.Abs(v)+1, exp)
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(lo, v), hi)
}
