package core

import "math"

const defaultEpsilon = 1e-12

// Clamp limits value to the inclusive range [min, max].
func Clamp(value, min, max float64) float64 {
	if min > max {
		min, max = max, min
	}

	if value < min {
		return min
	}

	if value > max {
		return max
	}

	return value
}

// NearlyEqual reports whether a and b are equal within eps, absolute or
// relative to the larger magnitude. A non-positive eps means 1e-12.
func NearlyEqual(a, b, eps float64) bool {
	if eps <= 0 {
		eps = defaultEpsilon
	}

	diff := math.Abs(a - b)
	if diff <= eps {
		return true
	}

	largest := math.Max(math.Abs(a), math.Abs(b))

	return largest > 0 && diff/largest <= eps
}

// FlushDenormals converts denormal-range values to exact zero.
func FlushDenormals(x float64) float64 {
	const epsilon = 1e-30
	if x > -epsilon && x < epsilon {
		return 0
	}

	return x
}

// DBToLinear converts dB to linear amplitude (20*log10 convention).
func DBToLinear(db float64) float64 {
	return math.Pow(10, db/20)
}

// LinearToDB converts linear amplitude to dB (20*log10 convention).
// Returns -Inf for zero and NaN for negative values.
func LinearToDB(linear float64) float64 {
	if linear < 0 {
		return math.NaN()
	}

	if linear == 0 {
		return math.Inf(-1)
	}

	return 20 * math.Log10(linear)
}

// PitchToHz converts a MIDI pitch plus a tuning offset in cents to Hz (A4 = 69 = 440 Hz).
func PitchToHz(pitch int, cents float64) float64 {
	return 440 * math.Pow(2, (float64(pitch-69)+cents/100)/12)
}

// ExpRange maps a normalized value in [0, 1] onto [min, max] exponentially.
// Both bounds must be positive.
func ExpRange(normalized, min, max float64) float64 {
	normalized = Clamp(normalized, 0, 1)
	if min <= 0 || max <= 0 {
		return min + normalized*(max-min)
	}

	return min * math.Pow(max/min, normalized)
}

// LinRange maps a normalized value in [0, 1] onto [min, max] linearly.
func LinRange(normalized, min, max float64) float64 {
	return min + Clamp(normalized, 0, 1)*(max-min)
}
