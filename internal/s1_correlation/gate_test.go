package s1_correlation

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/pdcal/internal/contracts"
)

func alt(i int) float64 {
	if i%2 == 0 {
		return 1
	}
	return -1
}

// scenarioTable: UNEMP moves against ODR (r ≈ -0.75), NOISE barely correlates (r ≈ -0.17),
// HPI moves with ODR (r = 1), FLAT is constant and SPARSE has two observations
func scenarioTable(t *testing.T) *contracts.VariableTable {
	t.Helper()
	n := 10
	dates := make([]time.Time, n)
	odr, unemp, noise, hpi, flat, sparse := make([]float64, n), make([]float64, n), make([]float64, n), make([]float64, n), make([]float64, n), make([]float64, n)
	for k := 0; k < n; k++ {
		i := k + 1
		dates[k] = time.Date(2014+k, 12, 31, 0, 0, 0, 0, time.UTC)
		odr[k] = 0.01 * float64(i)
		unemp[k] = -float64(i) + 3*alt(k)
		noise[k] = alt(k)
		hpi[k] = float64(i)
		flat[k] = 7
		sparse[k] = math.NaN()
	}
	sparse[0], sparse[1] = 1, 2

	vt, err := contracts.NewVariableTable(dates, []contracts.Variable{
		{Name: "ODR", Values: odr},
		{Name: "UNEMP", Values: unemp},
		{Name: "NOISE", Values: noise},
		{Name: "HPI", Values: hpi},
		{Name: "FLAT", Values: flat},
		{Name: "SPARSE", Values: sparse},
	})
	require.NoError(t, err)
	return vt
}

func TestGateScenario(t *testing.T) {
	gate := NewGate(Config{Target: "ODR", Threshold: 0.25, Sign: contracts.SignNegative, Workers: 3}, zerolog.Nop())

	report, err := gate.Evaluate(context.Background(), scenarioTable(t))
	require.NoError(t, err)

	require.Len(t, report.Results, 3)
	assert.Equal(t, []string{"UNEMP", "NOISE", "HPI"}, []string{
		report.Results[0].Variable, report.Results[1].Variable, report.Results[2].Variable,
	})
	for i, r := range report.Results {
		assert.Equal(t, i+1, r.No)
		assert.Equal(t, 10, r.Pairs)
	}

	unemp, _ := report.Lookup("UNEMP")
	assert.InDelta(t, -0.754, unemp.Pearson, 1e-3)
	assert.Equal(t, contracts.VerdictPass, unemp.CorrelationTest)

	noise, _ := report.Lookup("NOISE")
	assert.InDelta(t, -0.174, noise.Pearson, 1e-3)
	assert.Equal(t, contracts.VerdictDrop, noise.Hypothesis)
	assert.Equal(t, contracts.VerdictPass, noise.Trend)
	assert.Equal(t, contracts.VerdictDrop, noise.CorrelationTest)

	hpi, _ := report.Lookup("HPI")
	assert.InDelta(t, 1.0, hpi.Pearson, 1e-12)
	assert.Equal(t, contracts.VerdictPass, hpi.Hypothesis)
	assert.Equal(t, contracts.VerdictDrop, hpi.Trend)

	assert.Equal(t, contracts.Tally{Pass: 2, Drop: 1}, report.Hypothesis)
	assert.Equal(t, contracts.Tally{Pass: 2, Drop: 1}, report.Trend)
	assert.Equal(t, contracts.Tally{Pass: 1, Drop: 2}, report.CorrelationTest)

	require.Len(t, report.Skipped, 2)
	assert.Equal(t, "FLAT", report.Skipped[0].Name)
	assert.Equal(t, "SPARSE", report.Skipped[1].Name)

	assert.Equal(t, []string{"UNEMP"}, report.Admitted(contracts.FilterCorrelationTest))
	assert.Equal(t, []string{"UNEMP", "HPI"}, report.Admitted(contracts.FilterHypothesis))
}

func TestCorrelationTestIsConjunction(t *testing.T) {
	for _, r := range []float64{-0.9, -0.25, -0.1, 0, 0.1, 0.25, 0.9} {
		for _, sign := range []contracts.SignConvention{contracts.SignNegative, contracts.SignPositive} {
			res := Classify("X", r, 0.25, sign)
			want := res.Hypothesis.Passed() && res.Trend.Passed()
			assert.Equal(t, want, res.CorrelationTest.Passed(), "r=%v sign=%s", r, sign)
		}
	}
}

func TestThresholdIsExclusive(t *testing.T) {
	assert.Equal(t, contracts.VerdictDrop, Classify("X", -0.25, 0.25, contracts.SignNegative).Hypothesis)
	assert.Equal(t, contracts.VerdictPass, Classify("X", -0.2501, 0.25, contracts.SignNegative).Hypothesis)
}

func TestGateRequiresSignAndTarget(t *testing.T) {
	vt := scenarioTable(t)

	_, err := NewGate(Config{Target: "ODR", Threshold: 0.25}, zerolog.Nop()).Evaluate(context.Background(), vt)
	assert.Error(t, err)

	_, err = NewGate(Config{Target: "PD", Threshold: 0.25, Sign: contracts.SignNegative}, zerolog.Nop()).Evaluate(context.Background(), vt)
	assert.True(t, errors.Is(err, contracts.ErrInvalidTable))
}

func TestTableRoundTrip(t *testing.T) {
	gate := NewGate(Config{Target: "ODR", Threshold: 0.25, Sign: contracts.SignNegative}, zerolog.Nop())
	report, err := gate.Evaluate(context.Background(), scenarioTable(t))
	require.NoError(t, err)

	tbl, err := ToTable(report)
	require.NoError(t, err)
	assert.Equal(t, contracts.TableCorrelation, tbl.Name)
	assert.Equal(t, 3, tbl.Len())

	back, err := FromTable(tbl, "ODR")
	require.NoError(t, err)
	assert.Equal(t, report.Results, back.Results)
	assert.Equal(t, report.CorrelationTest, back.CorrelationTest)
}
