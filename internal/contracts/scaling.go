package contracts

import (
	"math"
	"time"
)

// Horizons is the number of forward PD horizons (months 1-12 and 13-24)
const Horizons = 2

// MonthsPerHorizon is the number of curve months covered by one horizon
const MonthsPerHorizon = 12

// Bucket is one delinquency bucket with its TTC inputs and converted PIT values.
// Index 0 is horizon 1, index 1 is horizon 2. Missing values are NaN.
type Bucket struct {
	ReportingDate time.Time         `json:"reporting_date"`
	Ordinal       int               `json:"ordinal"`
	TTC           [Horizons]float64 `json:"ttc"`
	LogitTTC      [Horizons]float64 `json:"logit_ttc"`
	LogitPIT      [Horizons]float64 `json:"logit_pit"`
	PITRaw        [Horizons]float64 `json:"pit_raw"`
	PIT           [Horizons]float64 `json:"pit"`
	Fallback      [Horizons]bool    `json:"fallback"`
}

// AggregateTargets are the portfolio-level PIT and TTC PDs per horizon
type AggregateTargets struct {
	PIT [Horizons]float64 `json:"pit"`
	TTC [Horizons]float64 `json:"ttc"`
}

// MarginalScaling returns PIT/TTC for a horizon index, NaN when undefined
func (a AggregateTargets) MarginalScaling(h int) float64 {
	if a.TTC[h] == 0 || math.IsNaN(a.TTC[h]) || math.IsNaN(a.PIT[h]) {
		return math.NaN()
	}
	return a.PIT[h] / a.TTC[h]
}

// ScalingFactor is the solved logit shift of one bucket and horizon
type ScalingFactor struct {
	Bucket          int     `json:"bucket"`
	Horizon         int     `json:"horizon"`
	MarginalScaling float64 `json:"marginal_scaling"`
	Target          float64 `json:"target"`
	Scalar          float64 `json:"scalar"`
	Reconciled      float64 `json:"reconciled"`
	Iterations      int     `json:"iterations"`
	Converged       bool    `json:"converged"`
	Residual        float64 `json:"residual"`
	Reason          string  `json:"reason,omitempty"`
	Fallback        bool    `json:"fallback"`
}

// MonthlyCurve is the 24-month marginal PD curve of one bucket
type MonthlyCurve struct {
	ReportingDate time.Time                            `json:"reporting_date"`
	Bucket        int                                  `json:"bucket"`
	Description   string                               `json:"description"`
	Months        [Horizons * MonthsPerHorizon]float64 `json:"months"`
	Fallback      bool                                 `json:"fallback"`
}

// BucketDescription returns the delinquency label of a bucket ordinal
func BucketDescription(ordinal int) string {
	switch ordinal {
	case 1:
		return "0 Days"
	case 2:
		return "1 - 30 Days"
	case 3:
		return "31 - 60 Days"
	case 4:
		return "61 - 90 Days"
	case 5:
		return "> 90 Days"
	default:
		return ""
	}
}
