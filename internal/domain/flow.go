package domain

import "math"

// gravity is the acceleration due to gravity in ft/s².
const gravity = 32.2

// GateFlow computes discharge in cfs through one gate. A closed gate
// (opening ≤ 0) contributes exactly zero and performs no curve lookup, so
// closed gates never generate fallback-match noise. When the opening
// exceeds the available head (H2 < 0) the gate also contributes zero.
func GateFlow(opening, lakeElevation float64, curve *RatingCurve) (float64, *FallbackMatch) {
	if opening <= 0 {
		return 0, nil
	}

	h1 := lakeElevation - curve.invert
	h2 := h1 - opening
	if h2 < 0 {
		return 0, nil
	}

	c, fallback := curve.Lookup(opening)
	q := (2.0 / 3.0) * math.Sqrt(2*gravity) * c * curve.gateLength * (headPow(h1) - headPow(h2))
	return q, fallback
}

// TotalFlow sums per-gate discharge for one observation, rounded to two
// decimals. Fallback matches from the curve are collected for reporting.
func TotalFlow(obs Observation, curve *RatingCurve) (float64, []FallbackMatch) {
	var total float64
	var fallbacks []FallbackMatch
	for _, opening := range obs.GateOpenings {
		q, fb := GateFlow(opening, obs.LakeElevation, curve)
		total += q
		if fb != nil {
			fallbacks = append(fallbacks, *fb)
		}
	}
	return round2(total), fallbacks
}

// headPow raises a head term to the 3/2 power. A lake below the spillway
// invert makes the base negative, where a fractional exponent has no real
// value; such a term contributes zero rather than NaN.
func headPow(h float64) float64 {
	if h <= 0 {
		return 0
	}
	return math.Pow(h, 1.5)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
