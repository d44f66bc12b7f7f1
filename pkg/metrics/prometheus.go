package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder exposes calibration pipeline metrics.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	stageDuration  *prometheus.HistogramVec
	stageFailures  *prometheus.CounterVec
	verdicts       *prometheus.CounterVec
	itemsSkipped   *prometheus.CounterVec
	solverIter     *prometheus.HistogramVec
	solverFailures *prometheus.CounterVec
	selectedRMSE   *prometheus.GaugeVec
	lastRun        prometheus.Gauge
}

// New registers the pipeline metrics on reg
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		stageDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pdcal_stage_duration_seconds",
				Help:    "Duration of calibration stages in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"stage"},
		),
		stageFailures: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pdcal_stage_failures_total",
				Help: "Total number of failed calibration stages",
			},
			[]string{"stage"},
		),
		verdicts: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pdcal_gate_verdicts_total",
				Help: "Gate verdicts by gate, test and verdict",
			},
			[]string{"gate", "test", "verdict"},
		),
		itemsSkipped: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pdcal_items_skipped_total",
				Help: "Variables or candidates excluded after a per-item failure",
			},
			[]string{"stage", "reason"},
		),
		solverIter: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pdcal_solver_iterations",
				Help:    "Goal-seek iterations per bucket and horizon",
				Buckets: []float64{1, 2, 5, 10, 20, 50, 100},
			},
			[]string{"horizon"},
		),
		solverFailures: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pdcal_solver_nonconverged_total",
				Help: "Goal-seek runs that did not converge",
			},
			[]string{"horizon", "reason"},
		),
		selectedRMSE: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "pdcal_arima_selected_rmse",
				Help: "In-sample RMSE of the selected ARIMA model per series",
			},
			[]string{"series"},
		),
		lastRun: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "pdcal_last_successful_run_timestamp_seconds",
				Help: "Unix time of the last fully successful pipeline run",
			},
		),
	}
}

// ObserveStage records a stage duration and, on failure, a failure count
func (r *Recorder) ObserveStage(stage string, d time.Duration, err error) {
	if r == nil {
		return
	}
	r.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
	if err != nil {
		r.stageFailures.WithLabelValues(stage).Inc()
	}
}

// RecordVerdicts adds pass/drop counts for one gate test
func (r *Recorder) RecordVerdicts(gate, test string, pass, drop int) {
	if r == nil {
		return
	}
	r.verdicts.WithLabelValues(gate, test, "pass").Add(float64(pass))
	r.verdicts.WithLabelValues(gate, test, "drop").Add(float64(drop))
}

// RecordSkipped counts a per-item failure
func (r *Recorder) RecordSkipped(stage, reason string) {
	if r == nil {
		return
	}
	r.itemsSkipped.WithLabelValues(stage, reason).Inc()
}

// RecordSolver records one goal-seek outcome
func (r *Recorder) RecordSolver(horizon string, iterations int, converged bool, reason string) {
	if r == nil {
		return
	}
	r.solverIter.WithLabelValues(horizon).Observe(float64(iterations))
	if !converged {
		r.solverFailures.WithLabelValues(horizon, reason).Inc()
	}
}

// RecordSelectedRMSE records the RMSE of the chosen ARIMA order for a series
func (r *Recorder) RecordSelectedRMSE(series string, rmse float64) {
	if r == nil {
		return
	}
	r.selectedRMSE.WithLabelValues(series).Set(rmse)
}

// MarkRunSucceeded stamps the last successful run time
func (r *Recorder) MarkRunSucceeded(at time.Time) {
	if r == nil {
		return
	}
	r.lastRun.Set(float64(at.Unix()))
}
