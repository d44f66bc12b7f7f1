package s5_scaling

import (
	"math"

	"github.com/wonny/pdcal/internal/stats"
)

// Solver stop reasons
const (
	ReasonMaxIterations = "max_iterations"
	ReasonDiverged      = "diverged"
	ReasonNonFinite     = "non_finite"
	ReasonNoTarget      = "no_target"
)

// SolverConfig bounds the goal-seek
type SolverConfig struct {
	Tolerance     float64
	MaxIterations int
	StepFraction  float64
	InitialGuess  float64
	Bound         float64
}

// DefaultSolverConfig returns the calibration defaults
func DefaultSolverConfig() SolverConfig {
	return SolverConfig{
		Tolerance:     1e-6,
		MaxIterations: 100,
		StepFraction:  0.5,
		InitialGuess:  0,
		Bound:         1e10,
	}
}

// Solution is the outcome of one goal-seek
type Solution struct {
	Scalar     float64
	Iterations int
	Converged  bool
	Residual   float64
	Reason     string
}

// GoalSeek finds the logit shift s with logistic(logit(ttc)+s)/ttc == target.
// Each iteration evaluates the current guess and moves it by -(current-target)·StepFraction.
// Non-convergence is reported on the Solution, never as an error.
func GoalSeek(ttc, target float64, cfg SolverConfig) Solution {
	base, ok := stats.Logit(ttc)
	if !ok || math.IsNaN(target) || math.IsInf(target, 0) {
		return Solution{Scalar: math.NaN(), Residual: math.NaN(), Reason: ReasonNonFinite}
	}

	guess := cfg.InitialGuess
	sol := Solution{Scalar: guess, Residual: math.NaN()}
	for iter := 1; iter <= cfg.MaxIterations; iter++ {
		sol.Iterations = iter
		current := stats.Logistic(base+guess) / ttc
		residual := current - target
		sol.Scalar = guess
		sol.Residual = residual

		if math.IsNaN(residual) || math.IsInf(residual, 0) {
			sol.Reason = ReasonNonFinite
			return sol
		}
		if math.Abs(residual) < cfg.Tolerance {
			sol.Converged = true
			return sol
		}

		guess -= residual * cfg.StepFraction
		if math.Abs(guess) > cfg.Bound {
			sol.Scalar = guess
			sol.Reason = ReasonDiverged
			return sol
		}
	}

	sol.Scalar = guess
	sol.Reason = ReasonMaxIterations
	return sol
}
