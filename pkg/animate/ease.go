package animate

import "math"

// EaseFunc maps linear progress in [0,1] to eased progress in [0,1].
type EaseFunc func(t float64) float64

// EaseCubicInOut is the cubic ease used by default for every transition.
func EaseCubicInOut(t float64) float64 {
	t = clamp01(t)
	if t < 0.5 {
		return 4 * t * t * t
	}
	u := 2*t - 2
	return u*u*u/2 + 1
}

// EaseLinear applies no easing.
func EaseLinear(t float64) float64 { return clamp01(t) }

func clamp01(t float64) float64 {
	if math.IsNaN(t) {
		return 0
	}
	return math.Max(0, math.Min(1, t))
}

// lerp interpolates from a to b, landing exactly on b at t = 1.
func lerp(a, b, t float64) float64 {
	if t >= 1 {
		return b
	}
	return a + (b-a)*t
}
