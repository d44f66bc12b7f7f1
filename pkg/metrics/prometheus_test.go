package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	r.ObserveStage("S1", 10*time.Millisecond, nil)
	r.ObserveStage("S3", time.Second, errors.New("no usable rows"))
	r.RecordVerdicts("correlation", "hypothesis", 3, 2)
	r.RecordSkipped("S1", "insufficient_data")
	r.RecordSolver("1", 100, false, "max_iterations")
	r.RecordSelectedRMSE("ODR", 0.012)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.stageFailures.WithLabelValues("S3")))
	assert.Equal(t, 0.0, testutil.ToFloat64(r.stageFailures.WithLabelValues("S1")))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.verdicts.WithLabelValues("correlation", "hypothesis", "pass")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.verdicts.WithLabelValues("correlation", "hypothesis", "drop")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.solverFailures.WithLabelValues("1", "max_iterations")))
	assert.Equal(t, 0.012, testutil.ToFloat64(r.selectedRMSE.WithLabelValues("ODR")))
}

func TestNilRecorderIsSafe(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.ObserveStage("S1", time.Second, nil)
		r.RecordVerdicts("normality", "overall", 1, 1)
		r.RecordSolver("2", 3, true, "")
		r.MarkRunSucceeded(time.Now())
	})
}
