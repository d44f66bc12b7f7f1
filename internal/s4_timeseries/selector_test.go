package s4_timeseries

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/pdcal/internal/contracts"
)

func monthEnd(y int, m time.Month) time.Time {
	return time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC)
}

// history has an AR(1) series, a trending series and a two-point series
func history(t *testing.T) *contracts.Table {
	t.Helper()
	rng := rand.New(rand.NewSource(7))
	tbl := contracts.NewTable("history",
		contracts.DateCol("Date"),
		contracts.FloatCol("AR"),
		contracts.FloatCol("TREND"),
		contracts.FloatCol("SHORT"),
	)
	prev := 0.0
	for i := 0; i < 60; i++ {
		prev = 0.6*prev + rng.NormFloat64()
		var short interface{}
		if i < 2 {
			short = float64(i)
		}
		require.NoError(t, tbl.Append(monthEnd(2018, time.Month(i+1)), 5+prev, 0.5*float64(i)+0.3*rng.NormFloat64(), short))
	}
	return tbl
}

func selector() *Selector {
	return NewSelector(Config{
		DateColumn:    "Date",
		P:             []int{2, 0, 1},
		D:             []int{0, 1},
		Q:             []int{0, 1},
		Horizon:       48,
		MaxIterations: 2000,
		Workers:       4,
	}, zerolog.Nop())
}

func TestGridIsLexicographic(t *testing.T) {
	s := NewSelector(Config{P: []int{1, 0, 1}, D: []int{0}, Q: []int{1, 0}}, zerolog.Nop())
	assert.Equal(t, []contracts.Order{
		{P: 0, D: 0, Q: 0}, {P: 0, D: 0, Q: 1}, {P: 1, D: 0, Q: 0}, {P: 1, D: 0, Q: 1},
	}, s.Grid())
}

func TestSelectPicksMinimumRMSE(t *testing.T) {
	report, err := selector().Select(context.Background(), history(t), []string{"AR", "TREND", "SHORT"})
	require.NoError(t, err)

	require.Len(t, report.Forecasts, 2)
	require.Len(t, report.Skipped, 1)
	assert.Equal(t, "SHORT", report.Skipped[0].Name)
	assert.Contains(t, report.Skipped[0].Reason, contracts.ErrNonConvergentModel.Error())
	assert.Len(t, report.Candidates, 3*12)

	for _, f := range report.Forecasts {
		converged := 0
		for _, c := range report.Candidates {
			if c.Series != f.Model.Series || !c.Converged {
				continue
			}
			converged++
			assert.LessOrEqual(t, f.Model.RMSE, c.RMSE, "%s %s", f.Model.Series, c.Order)
			if c.RMSE == f.Model.RMSE {
				assert.False(t, c.Order.Less(f.Model.Order), "tie must go to the smallest order")
			}
		}
		assert.Greater(t, converged, 0)

		require.Len(t, f.Points, 48)
		assert.Equal(t, monthEnd(2023, time.January), f.Points[0].Date)
		for h := 1; h < len(f.Points); h++ {
			assert.Equal(t, contracts.MonthEnd(f.Points[h-1].Date, 1), f.Points[h].Date)
			assert.False(t, math.IsNaN(f.Points[h].Value))
		}
	}
}

func TestSelectFailsWhenNothingConverges(t *testing.T) {
	_, err := selector().Select(context.Background(), history(t), []string{"SHORT"})
	assert.True(t, errors.Is(err, contracts.ErrNonConvergentModel))

	_, err = selector().Select(context.Background(), history(t), []string{"NOPE"})
	assert.True(t, errors.Is(err, contracts.ErrInvalidTable))

	_, err = selector().Select(context.Background(), contracts.NewTable("empty", contracts.DateCol("Date")), []string{"AR"})
	assert.True(t, errors.Is(err, contracts.ErrEmptySource))
}

func TestBestBreaksTiesBySmallestOrder(t *testing.T) {
	cands := []contracts.Candidate{
		{Order: contracts.Order{P: 0, D: 0, Q: 0}, RMSE: 2, Converged: true},
		{Order: contracts.Order{P: 1, D: 0, Q: 0}, RMSE: 1, Converged: true},
		{Order: contracts.Order{P: 0, D: 1, Q: 1}, RMSE: 1, Converged: true},
		{Order: contracts.Order{P: 0, D: 0, Q: 1}, RMSE: 0.5, Converged: false},
	}
	assert.Equal(t, 2, Best(cands))

	assert.Equal(t, -1, Best(cands[3:]))
	assert.Equal(t, -1, Best(nil))
}

func TestCandidateVariablesDropsRegressionColumns(t *testing.T) {
	names := []string{"ODR", "UNEMP", "TargetLogit", "Fitted", "Odds", "FittedPD", "Error", "SquaredError",
		contracts.ForecastColumn("ODR"), contracts.ForecastColumn("UNEMP")}

	assert.Equal(t, []string{"ODR", "UNEMP", "ODR_forecast", "UNEMP_forecast"}, CandidateVariables(names))
	assert.Empty(t, CandidateVariables(nil))
}
