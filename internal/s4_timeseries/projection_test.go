package s4_timeseries

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/pdcal/internal/contracts"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func summaryAndForecast(t *testing.T) (*contracts.Table, *contracts.Table) {
	t.Helper()
	summary := contracts.NewTable(contracts.TableRegressionSummary,
		contracts.DateCol("Date"), contracts.FloatCol("ODR"), contracts.FloatCol("GDP"))
	require.NoError(t, summary.Append(day(2023, 11, 30), 0.02, 1.0))
	require.NoError(t, summary.Append(day(2023, 12, 31), 0.04, 2.0))

	forecast := contracts.NewTable(contracts.TableARIMAForecast,
		contracts.DateCol("Date"), contracts.FloatCol("ODR_forecast"), contracts.FloatCol("GDP_forecast"))
	require.NoError(t, forecast.Append(day(2024, 1, 31), 0.05, 3.0))
	require.NoError(t, forecast.Append(day(2024, 2, 29), 0.05, 4.0))
	require.NoError(t, forecast.Append(day(2025, 1, 31), 0.05, 5.0))
	return summary, forecast
}

func TestCombineIsOuterJoinOnDate(t *testing.T) {
	summary, forecast := summaryAndForecast(t)
	// overlapping date keeps both sides
	require.NoError(t, forecast.Append(day(2023, 12, 31), 0.041, 2.1))

	combined, err := Combine(contracts.TableCombined, "Date", summary, forecast)
	require.NoError(t, err)

	assert.Equal(t, []string{"Date", "ODR", "GDP", "ODR_forecast", "GDP_forecast"}, combined.ColumnNames())
	require.Equal(t, 5, combined.Len())

	d, _ := combined.Date(0, "Date")
	assert.Equal(t, day(2023, 11, 30), d)
	_, ok := combined.Float(0, "GDP_forecast")
	assert.False(t, ok)

	v, ok := combined.Float(1, "GDP_forecast")
	require.True(t, ok)
	assert.Equal(t, 2.1, v)
	v, _ = combined.Float(1, "GDP")
	assert.Equal(t, 2.0, v)

	_, ok = combined.Float(2, "ODR")
	assert.False(t, ok)

	_, err = Combine("x", "Missing", summary, forecast)
	assert.Error(t, err)
}

func model() *contracts.RegressionModel {
	return &contracts.RegressionModel{
		Target:     "ODR",
		Predictors: []string{"GDP"},
		Coefficients: []contracts.Coefficient{
			{Term: contracts.InterceptTerm, Estimate: -3},
			{Term: "GDP", Estimate: 0.1},
		},
	}
}

func TestProjectAndSummarize(t *testing.T) {
	summary, forecast := summaryAndForecast(t)
	combined, err := Combine(contracts.TableCombined, "Date", summary, forecast)
	require.NoError(t, err)

	rows, err := Project(model(), combined, "Date")
	require.NoError(t, err)
	require.Len(t, rows, 5)

	assert.False(t, rows[0].Forecast)
	assert.InDelta(t, -2.9, rows[0].Fitted, 1e-12)
	assert.InDelta(t, math.Exp(-2.9), rows[0].Odds, 1e-12)
	assert.InDelta(t, 0.02-rows[0].FittedPD, rows[0].Error, 1e-12)

	// forecast rows fall back to the GDP forecast
	assert.True(t, rows[2].Forecast)
	assert.InDelta(t, -2.7, rows[2].Fitted, 1e-12)
	assert.True(t, math.IsNaN(rows[2].Actual))

	sums := Summarize(rows)
	require.Len(t, sums, 3)

	hist := sums[0]
	assert.Equal(t, contracts.HistoryLabel, hist.Description)
	assert.Equal(t, 2, hist.Periods)
	assert.InDelta(t, math.Exp(-2.8), hist.Last, 1e-12)
	assert.InDelta(t, math.Exp(-2.8), hist.MaxOdds, 1e-12)
	assert.InDelta(t, math.Exp(-2.9), hist.MinOdds, 1e-12)
	assert.InDelta(t, (rows[0].FittedPD+rows[1].FittedPD)/2, hist.PIT, 1e-12)
	assert.InDelta(t, 0.03, hist.AvgODR, 1e-12)

	y2024 := sums[1]
	assert.Equal(t, "2024", y2024.Description)
	assert.Equal(t, 2024, y2024.Year)
	assert.Equal(t, 2, y2024.Periods)
	assert.InDelta(t, (rows[2].FittedPD+rows[3].FittedPD)/2, y2024.PIT, 1e-12)
	assert.True(t, math.IsNaN(y2024.AvgODR))

	assert.Equal(t, "2025", sums[2].Description)
	assert.Equal(t, 1, sums[2].Periods)
}

func TestSummaryTableRoundTrip(t *testing.T) {
	summary, forecast := summaryAndForecast(t)
	combined, err := Combine(contracts.TableCombined, "Date", summary, forecast)
	require.NoError(t, err)
	rows, err := Project(model(), combined, "Date")
	require.NoError(t, err)

	tbl, err := SummaryTable(Summarize(rows))
	require.NoError(t, err)
	back := SummaryFromTable(tbl)
	require.Len(t, back, 3)
	assert.Equal(t, contracts.HistoryLabel, back[0].Description)
	assert.Equal(t, 0, back[0].Year)
	assert.Equal(t, 2024, back[1].Year)
	assert.True(t, math.IsNaN(back[1].AvgODR))

	proj, err := ProjectionTable(rows, "Date")
	require.NoError(t, err)
	assert.Equal(t, contracts.TableForecastingResults, proj.Name)
	assert.Equal(t, 5, proj.Len())
}

func TestProjectNeedsPredictors(t *testing.T) {
	tbl := contracts.NewTable("c", contracts.DateCol("Date"), contracts.FloatCol("ODR"))
	_, err := Project(model(), tbl, "Date")
	assert.Error(t, err)
}
