// Package stats holds the numerical kernels of the calibration pipeline.
// Everything here is pure: no logging, no storage, no context.
package stats

import "math"

// LogitEpsilon is the distance from 1 below which a probability has no logit
const LogitEpsilon = 1e-10

// Logit returns ln(p/(1-p)). It reports false when p <= 0 or p >= 1-LogitEpsilon
// (or p is NaN); the value is then NaN and must be treated as missing.
func Logit(p float64) (float64, bool) {
	if math.IsNaN(p) || p <= 0 || p >= 1-LogitEpsilon {
		return math.NaN(), false
	}
	return math.Log(p / (1 - p)), true
}

// Logistic is the inverse of Logit. NaN propagates.
func Logistic(x float64) float64 {
	if math.IsNaN(x) {
		return math.NaN()
	}
	if x >= 0 {
		return 1 / (1 + math.Exp(-x))
	}
	e := math.Exp(x)
	return e / (1 + e)
}

// OddsToPD back-transforms a logit-scale prediction: odds = exp(f), PD = odds/(1+odds)
func OddsToPD(f float64) (odds, pd float64) {
	odds = math.Exp(f)
	if math.IsInf(odds, 1) {
		return odds, 1
	}
	return odds, odds / (1 + odds)
}

// IsMissing reports NaN
func IsMissing(v float64) bool {
	return math.IsNaN(v)
}

// Present drops missing values
func Present(xs []float64) []float64 {
	out := make([]float64, 0, len(xs))
	for _, x := range xs {
		if !math.IsNaN(x) {
			out = append(out, x)
		}
	}
	return out
}

// PairwiseComplete keeps the positions where both x and y are present
func PairwiseComplete(x, y []float64) (xs, ys []float64) {
	n := len(x)
	if len(y) < n {
		n = len(y)
	}
	xs = make([]float64, 0, n)
	ys = make([]float64, 0, n)
	for i := 0; i < n; i++ {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	return xs, ys
}
