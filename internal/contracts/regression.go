package contracts

import (
	"math"
	"time"
)

// InterceptTerm is the coefficient name of the constant
const InterceptTerm = "const"

// Coefficient is one estimated regression parameter
type Coefficient struct {
	Term         string  `json:"term"`
	Estimate     float64 `json:"estimate"`
	StdError     float64 `json:"std_error"`
	Standardized float64 `json:"standardized"`
	TValue       float64 `json:"t_value"`
	PValue       float64 `json:"p_value"`
}

// FitStats are the model-level goodness-of-fit statistics
type FitStats struct {
	Observations     int     `json:"observations"`
	R                float64 `json:"r"`
	RSquared         float64 `json:"r_squared"`
	AdjRSquared      float64 `json:"adj_r_squared"`
	StdErrorEstimate float64 `json:"std_error_estimate"`
	RMSE             float64 `json:"rmse"`
}

// ANOVARow is one line of the analysis-of-variance table.
// F and Significance are only set on the regression row (NaN elsewhere).
type ANOVARow struct {
	Source       string  `json:"source"`
	SS           float64 `json:"ss"`
	DF           int     `json:"df"`
	MS           float64 `json:"ms"`
	F            float64 `json:"f"`
	Significance float64 `json:"significance"`
}

// ANOVA groups the regression, residual and total rows
type ANOVA struct {
	Regression ANOVARow `json:"regression"`
	Residual   ANOVARow `json:"residual"`
	Total      ANOVARow `json:"total"`
}

// PredictionRow is one in-sample date of the regression summary
type PredictionRow struct {
	Date         time.Time `json:"date"`
	Actual       float64   `json:"actual"`
	ActualLogit  float64   `json:"actual_logit"`
	Fitted       float64   `json:"fitted"`
	Odds         float64   `json:"odds"`
	FittedPD     float64   `json:"fitted_pd"`
	Error        float64   `json:"error"`
	SquaredError float64   `json:"squared_error"`
}

// RegressionForecast is one forward step with extrapolated predictors
type RegressionForecast struct {
	Step       int                `json:"step"`
	Date       time.Time          `json:"date"`
	Predictors map[string]float64 `json:"predictors"`
	Logit      float64            `json:"logit"`
	Odds       float64            `json:"odds"`
	PD         float64            `json:"pd"`
}

// RegressionModel is the full S3 output
type RegressionModel struct {
	Target       string               `json:"target"`
	Scale        TargetScale          `json:"scale"`
	Predictors   []string             `json:"predictors"`
	Coefficients []Coefficient        `json:"coefficients"`
	Fit          FitStats             `json:"fit"`
	ANOVA        ANOVA                `json:"anova"`
	Predictions  []PredictionRow      `json:"predictions"`
	Forecast     []RegressionForecast `json:"forecast"`
}

// Coefficient returns the estimate for a term
func (m *RegressionModel) Coefficient(term string) (float64, bool) {
	for _, c := range m.Coefficients {
		if c.Term == term {
			return c.Estimate, true
		}
	}
	return math.NaN(), false
}

// Predict evaluates the linear predictor (logit scale).
// Returns false if any predictor value or coefficient is missing.
func (m *RegressionModel) Predict(x map[string]float64) (float64, bool) {
	y, ok := m.Coefficient(InterceptTerm)
	if !ok {
		return math.NaN(), false
	}
	for _, p := range m.Predictors {
		v, present := x[p]
		if !present || math.IsNaN(v) {
			return math.NaN(), false
		}
		b, found := m.Coefficient(p)
		if !found {
			return math.NaN(), false
		}
		y += b * v
	}
	return y, true
}
