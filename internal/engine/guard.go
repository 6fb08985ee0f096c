package engine

import "math"

// Clamp maps any input into [ε, 1−ε] so ratio and log math never sees 0, 1,
// negative or non-finite values. NaN becomes NEUTRAL_PROBABILITY.
func Clamp(p float64) float64 {
	switch {
	case math.IsNaN(p):
		return NEUTRAL_PROBABILITY
	case p < PROBABILITY_EPSILON:
		return PROBABILITY_EPSILON
	case p > 1-PROBABILITY_EPSILON:
		return 1 - PROBABILITY_EPSILON
	}
	return p
}

// ClampUnit bounds a posterior to [0, 1]; NaN becomes NEUTRAL_PROBABILITY.
// Posterior rules handle the endpoints themselves, so no ε is applied.
func ClampUnit(p float64) float64 {
	switch {
	case math.IsNaN(p):
		return NEUTRAL_PROBABILITY
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

func finiteOr(x, fallback float64) float64 {
	if isFinite(x) {
		return x
	}
	return fallback
}
