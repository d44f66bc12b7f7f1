package s5_scaling

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/rs/zerolog"

	"github.com/wonny/pdcal/internal/contracts"
	"github.com/wonny/pdcal/internal/stats"
)

// Config holds the PIT/TTC reconciliation parameters
type Config struct {
	Offsets [contracts.Horizons]float64
	Solver  SolverConfig
}

// Reconciler converts TTC buckets to PIT and solves the per-bucket logit shifts
// ⭐ SSOT: S5 TTC → PIT 변환, goal-seek, 월별 PD 커브
type Reconciler struct {
	config Config
	log    zerolog.Logger
}

// NewReconciler creates a new reconciler
func NewReconciler(config Config, log zerolog.Logger) *Reconciler {
	return &Reconciler{
		config: config,
		log:    log.With().Str("component", "s5_scaling").Logger(),
	}
}

// Convert applies the configured offsets
func (r *Reconciler) Convert(buckets []contracts.Bucket) []contracts.Bucket {
	return ConvertBuckets(buckets, r.config.Offsets)
}

// Reconcile solves every bucket and horizon independently and builds the monthly curves.
// Without aggregate targets the curves carry the offset-converted PIT values.
func (r *Reconciler) Reconcile(ctx context.Context, buckets []contracts.Bucket, targets *contracts.AggregateTargets) ([]contracts.ScalingFactor, []contracts.MonthlyCurve, error) {
	if len(buckets) == 0 {
		return nil, nil, fmt.Errorf("%w: no buckets", contracts.ErrEmptySource)
	}
	converted := r.Convert(buckets)

	var ms [contracts.Horizons]float64
	for h := range ms {
		ms[h] = math.NaN()
		if targets != nil {
			ms[h] = targets.MarginalScaling(h)
		}
		if math.IsNaN(ms[h]) {
			r.log.Warn().Int("horizon", h+1).Msg("no aggregate target, using offset-converted PIT")
		}
	}

	factors := make([]contracts.ScalingFactor, 0, len(converted)*contracts.Horizons)
	for _, b := range converted {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		for h := 0; h < contracts.Horizons; h++ {
			f := r.solve(b, h, ms[h])
			if !f.Converged && f.Reason != ReasonNoTarget {
				r.log.Warn().
					Int("bucket", b.Ordinal).
					Int("horizon", h+1).
					Int("iterations", f.Iterations).
					Str("reason", f.Reason).
					Msg("goal-seek did not converge")
			}
			factors = append(factors, f)
		}
	}

	curves := BuildCurves(converted, factors)

	r.log.Info().
		Int("buckets", len(converted)).
		Float64("marginal_scaling_1", ms[0]).
		Float64("marginal_scaling_2", ms[1]).
		Msg("reconciliation completed")

	return factors, curves, nil
}

func (r *Reconciler) solve(b contracts.Bucket, h int, ms float64) contracts.ScalingFactor {
	f := contracts.ScalingFactor{
		Bucket:          b.Ordinal,
		Horizon:         h + 1,
		MarginalScaling: ms,
		Target:          ms - b.PIT[h],
		Fallback:        b.Fallback[h],
	}

	if math.IsNaN(ms) {
		f.Scalar = r.config.Offsets[h]
		f.Reconciled = b.PIT[h]
		f.Residual = math.NaN()
		f.Reason = ReasonNoTarget
		return f
	}

	sol := GoalSeek(b.TTC[h], ms, r.config.Solver)
	f.Scalar = sol.Scalar
	f.Iterations = sol.Iterations
	f.Converged = sol.Converged
	f.Residual = sol.Residual
	f.Reason = sol.Reason

	if b.Fallback[h] || math.IsNaN(sol.Scalar) {
		f.Reconciled = b.TTC[h]
		f.Fallback = true
		return f
	}
	f.Reconciled = stats.Logistic(b.LogitTTC[h] + sol.Scalar)
	return f
}

// BuildCurves spreads each reconciled horizon PD evenly over its twelve months
func BuildCurves(buckets []contracts.Bucket, factors []contracts.ScalingFactor) []contracts.MonthlyCurve {
	type key struct{ bucket, horizon int }
	byKey := make(map[key]contracts.ScalingFactor, len(factors))
	for _, f := range factors {
		byKey[key{f.Bucket, f.Horizon}] = f
	}

	curves := make([]contracts.MonthlyCurve, 0, len(buckets))
	for _, b := range buckets {
		c := contracts.MonthlyCurve{
			ReportingDate: b.ReportingDate,
			Bucket:        b.Ordinal,
			Description:   contracts.BucketDescription(b.Ordinal),
		}
		for h := 0; h < contracts.Horizons; h++ {
			reconciled := math.NaN()
			if f, ok := byKey[key{b.Ordinal, h + 1}]; ok {
				reconciled = f.Reconciled
				c.Fallback = c.Fallback || f.Fallback
			}
			for m := 0; m < contracts.MonthsPerHorizon; m++ {
				c.Months[h*contracts.MonthsPerHorizon+m] = reconciled / contracts.MonthsPerHorizon
			}
		}
		curves = append(curves, c)
	}
	return curves
}

// Totals sums the curves month by month over all buckets, ignoring missing values
func Totals(curves []contracts.MonthlyCurve) [contracts.Horizons * contracts.MonthsPerHorizon]float64 {
	var out [contracts.Horizons * contracts.MonthsPerHorizon]float64
	for _, c := range curves {
		for m, v := range c.Months {
			if !math.IsNaN(v) {
				out[m] += v
			}
		}
	}
	return out
}

// AggregateTargetsFromSummary derives the portfolio targets from the result summary:
// PIT of horizon h is the PIT of the h-th forecast year; both TTC targets are the
// average realised ODR of the History row
func AggregateTargetsFromSummary(rows []contracts.SummaryRow) (*contracts.AggregateTargets, error) {
	var history *contracts.SummaryRow
	var years []contracts.SummaryRow
	for i := range rows {
		if rows[i].Description == contracts.HistoryLabel {
			history = &rows[i]
			continue
		}
		years = append(years, rows[i])
	}
	if history == nil || math.IsNaN(history.AvgODR) {
		return nil, fmt.Errorf("%w: result summary has no History ODR", contracts.ErrInsufficientData)
	}
	if len(years) < contracts.Horizons {
		return nil, fmt.Errorf("%w: result summary has %d forecast years, want %d", contracts.ErrInsufficientData, len(years), contracts.Horizons)
	}
	sort.SliceStable(years, func(i, j int) bool { return years[i].Year < years[j].Year })

	t := &contracts.AggregateTargets{}
	for h := 0; h < contracts.Horizons; h++ {
		t.PIT[h] = years[h].PIT
		t.TTC[h] = history.AvgODR
	}
	return t, nil
}
