package contracts

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDataQualitySnapshot_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		snapshot DataQualitySnapshot
		want     bool
	}{
		{"valid", DataQualitySnapshot{Observations: 24, TotalVariables: 5, Passed: true}, true},
		{"not passed", DataQualitySnapshot{Observations: 24, TotalVariables: 5, Passed: false}, false},
		{"too few observations", DataQualitySnapshot{Observations: 2, TotalVariables: 5, Passed: true}, false},
		{"target only", DataQualitySnapshot{Observations: 24, TotalVariables: 1, Passed: true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.snapshot.IsValid())
		})
	}
}

func TestDataQualitySnapshot_CoverageRate(t *testing.T) {
	s := DataQualitySnapshot{Coverage: map[string]float64{"ODR": 1.0, "GDP": 0.5}}
	assert.InDelta(t, 0.75, s.CoverageRate(), 1e-12)
	assert.Equal(t, 0.0, (&DataQualitySnapshot{}).CoverageRate())
}

func TestVerdicts(t *testing.T) {
	assert.Equal(t, VerdictPass, Both(VerdictPass, VerdictPass))
	assert.Equal(t, VerdictDrop, Both(VerdictPass, VerdictDrop))
	assert.Equal(t, VerdictDrop, Both(VerdictDrop, VerdictPass))
	assert.Equal(t, VerdictDrop, Both(VerdictDrop, VerdictDrop))

	var tally Tally
	tally.Add(VerdictPass)
	tally.Add(VerdictDrop)
	tally.Add(VerdictDrop)
	assert.Equal(t, Tally{Pass: 1, Drop: 2}, tally)
	assert.Equal(t, 3, tally.Total())

	_, err := ParseVerdict("maybe")
	assert.Error(t, err)
}

func TestSignConventionTrend(t *testing.T) {
	assert.Equal(t, VerdictPass, SignNegative.Trend(-0.4))
	assert.Equal(t, VerdictDrop, SignNegative.Trend(0.4))
	assert.Equal(t, VerdictPass, SignPositive.Trend(0.4))
	assert.Equal(t, VerdictDrop, SignPositive.Trend(0))
	assert.Equal(t, VerdictDrop, SignConvention("").Trend(-1))

	_, err := ParseSignConvention("")
	assert.Error(t, err)
}

func TestFilterCriterion(t *testing.T) {
	r := CorrelationResult{Hypothesis: VerdictPass, Trend: VerdictDrop, CorrelationTest: VerdictDrop}
	assert.Equal(t, VerdictPass, FilterHypothesis.Select(r))
	assert.Equal(t, VerdictDrop, FilterTrend.Select(r))
	assert.Equal(t, VerdictDrop, FilterCorrelationTest.Select(r))
	assert.Equal(t, VerdictPass, FilterNone.Select(r))

	_, err := ParseFilterCriterion("pearson")
	assert.Error(t, err)
	got, err := ParseFilterCriterion("correlation_test")
	require.NoError(t, err)
	assert.Equal(t, FilterCorrelationTest, got)
}

func TestTableAppendAndAccessors(t *testing.T) {
	tbl := NewTable("t", DateCol("Date"), FloatCol("x"), IntCol("n"), TextCol("v"), BoolCol("ok"))

	require.NoError(t, tbl.Append(date(2024, 1, 31), 1.5, 3, VerdictPass, true))
	require.NoError(t, tbl.Append("2024-02-29", math.NaN(), 4.0, "Drop", nil))

	assert.Equal(t, 2, tbl.Len())
	v, ok := tbl.Float(0, "x")
	assert.True(t, ok)
	assert.Equal(t, 1.5, v)

	_, ok = tbl.Float(1, "x")
	assert.False(t, ok, "NaN is stored as missing")

	n, ok := tbl.Int(1, "n")
	assert.True(t, ok)
	assert.Equal(t, 4, n)

	assert.Equal(t, "Pass", tbl.Text(0, "v"))
	d, ok := tbl.Date(1, "Date")
	assert.True(t, ok)
	assert.Equal(t, date(2024, 2, 29), d)

	_, ok = tbl.Bool(1, "ok")
	assert.False(t, ok)

	assert.True(t, errors.Is(tbl.Append(1.0), ErrInvalidTable))
	assert.True(t, errors.Is(tbl.Append(date(2024, 3, 31), "abc", 1, "x", true), ErrInvalidTable))
	assert.Equal(t, -1, tbl.ColumnIndex("missing"))
}

func TestTableJSONRoundTripKeepsKinds(t *testing.T) {
	tbl := NewTable("bucket", DateCol("Date"), FloatCol("PIT"), IntCol("Bucket"))
	require.NoError(t, tbl.Append(date(2024, 1, 31), 0.25, 1))
	require.NoError(t, tbl.Append(date(2024, 2, 29), nil, 2))

	data, err := json.Marshal(tbl)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"2024-01-31"`)

	var back Table
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, "bucket", back.Name)
	d, ok := back.Date(0, "Date")
	require.True(t, ok)
	assert.Equal(t, date(2024, 1, 31), d)
	b, ok := back.Int(1, "Bucket")
	require.True(t, ok)
	assert.Equal(t, 2, b)
	_, ok = back.Float(1, "PIT")
	assert.False(t, ok)
}

func TestVariableTableSortsAndRejectsDuplicates(t *testing.T) {
	dates := []time.Time{date(2024, 3, 31), date(2024, 1, 31), date(2024, 2, 29)}
	vt, err := NewVariableTable(dates, []Variable{{Name: "ODR", Values: []float64{3, 1, 2}}})
	require.NoError(t, err)

	col, ok := vt.Column("ODR")
	require.True(t, ok)
	assert.Equal(t, []float64{1, 2, 3}, col)
	assert.Equal(t, date(2024, 3, 31), vt.LastDate())

	col[0] = 99
	again, _ := vt.Column("ODR")
	assert.Equal(t, 1.0, again[0], "Column returns a copy")

	_, err = NewVariableTable([]time.Time{date(2024, 1, 31), date(2024, 1, 31)}, []Variable{{Name: "x", Values: []float64{1, 2}}})
	assert.ErrorIs(t, err, ErrInvalidTable)

	_, err = NewVariableTable(dates, []Variable{{Name: "x", Values: []float64{1}}})
	assert.ErrorIs(t, err, ErrInvalidTable)
}

func TestVariableTableCoverageAndSelect(t *testing.T) {
	dates := []time.Time{date(2024, 1, 31), date(2024, 2, 29), date(2024, 3, 31), date(2024, 4, 30)}
	vt, err := NewVariableTable(dates, []Variable{
		{Name: "ODR", Values: []float64{0.1, 0.2, math.NaN(), 0.3}},
		{Name: "GDP", Values: []float64{1, 2, 3, 4}},
	})
	require.NoError(t, err)

	assert.InDelta(t, 0.75, vt.Coverage("ODR"), 1e-12)
	assert.Equal(t, 1.0, vt.Coverage("GDP"))

	sub, err := vt.Select("GDP")
	require.NoError(t, err)
	assert.Equal(t, []string{"GDP"}, sub.Names())

	_, err = vt.Select("CPI")
	assert.Error(t, err)

	tbl, err := vt.ToTable(TableMEV, "Date")
	require.NoError(t, err)
	assert.Equal(t, []string{"Date", "ODR", "GDP"}, tbl.ColumnNames())
	_, ok := tbl.Float(2, "ODR")
	assert.False(t, ok)
}

func TestMonthEnds(t *testing.T) {
	assert.Equal(t, date(2024, 2, 29), MonthEnd(date(2024, 1, 31), 1))
	assert.Equal(t, date(2025, 1, 31), MonthEnd(date(2024, 12, 15), 1))

	ends := MonthEndsAfter(date(2023, 12, 31), 3)
	assert.Equal(t, []time.Time{date(2024, 1, 31), date(2024, 2, 29), date(2024, 3, 31)}, ends)

	// mid-month last date: the first point is that month's end
	ends = MonthEndsAfter(date(2024, 3, 15), 2)
	assert.Equal(t, []time.Time{date(2024, 3, 31), date(2024, 4, 30)}, ends)
}

func TestOrderLess(t *testing.T) {
	assert.True(t, Order{0, 1, 2}.Less(Order{1, 0, 0}))
	assert.True(t, Order{1, 0, 2}.Less(Order{1, 1, 0}))
	assert.True(t, Order{1, 1, 0}.Less(Order{1, 1, 1}))
	assert.False(t, Order{1, 1, 1}.Less(Order{1, 1, 1}))
	assert.Equal(t, "ARIMA(2,1,2)", Order{2, 1, 2}.String())
}

func TestModelPredict(t *testing.T) {
	m := RegressionModel{
		Predictors: []string{"x1", "x2"},
		Coefficients: []Coefficient{
			{Term: InterceptTerm, Estimate: 5},
			{Term: "x1", Estimate: 2},
			{Term: "x2", Estimate: -3},
		},
	}
	y, ok := m.Predict(map[string]float64{"x1": 1, "x2": 2})
	require.True(t, ok)
	assert.Equal(t, 1.0, y)

	_, ok = m.Predict(map[string]float64{"x1": 1})
	assert.False(t, ok)

	// a listed predictor without a coefficient never counts as zero
	m.Coefficients = m.Coefficients[:2]
	y, ok = m.Predict(map[string]float64{"x1": 1, "x2": 2})
	assert.False(t, ok)
	assert.True(t, math.IsNaN(y))
}

func TestAggregateTargetsMarginalScaling(t *testing.T) {
	a := AggregateTargets{PIT: [Horizons]float64{0.03, 0.05}, TTC: [Horizons]float64{0.02, 0}}
	assert.InDelta(t, 1.5, a.MarginalScaling(0), 1e-12)
	assert.True(t, math.IsNaN(a.MarginalScaling(1)))
	assert.Equal(t, "> 90 Days", BucketDescription(5))
	assert.Equal(t, "", BucketDescription(0))
}

func TestStageErrorUnwraps(t *testing.T) {
	err := &StageError{Stage: StageRegression, Err: ErrNoUsableRows}
	assert.ErrorIs(t, err, ErrNoUsableRows)
	assert.Equal(t, "S3 failed: no usable rows", err.Error())
	s, ok := ParseStage("S4")
	assert.True(t, ok)
	assert.Equal(t, StageTimeSeries, s)
	assert.Equal(t, "no_usable_rows", ReasonCode(err))
}
