package s3_regression

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
	"github.com/wonny/pdcal/internal/stats"
)

const obs = 12

func x2(i int) float64 {
	return float64((i*7)%5) - 2
}

// linearTable has logit(ODR) = -4 + 0.1·GDP - 0.2·UNEMP exactly
func linearTable(t *testing.T) *contracts.VariableTable {
	t.Helper()
	dates := make([]time.Time, obs)
	odr, gdp, unemp, collinear := make([]float64, obs), make([]float64, obs), make([]float64, obs), make([]float64, obs)
	for k := 0; k < obs; k++ {
		i := k + 1
		dates[k] = time.Date(2010+k, 12, 31, 0, 0, 0, 0, time.UTC)
		gdp[k] = float64(i)
		unemp[k] = x2(i)
		collinear[k] = 2 * gdp[k]
		odr[k] = stats.Logistic(-4 + 0.1*gdp[k] - 0.2*unemp[k])
	}
	vt, err := contracts.NewVariableTable(dates, []contracts.Variable{
		{Name: "ODR", Values: odr},
		{Name: "GDP", Values: gdp},
		{Name: "UNEMP", Values: unemp},
		{Name: "GDP2", Values: collinear},
	})
	require.NoError(t, err)
	return vt
}

func engine() *Engine {
	return NewEngine(Config{Target: "ODR", Scale: contracts.ScaleProbability, Horizon: 4, StepMonths: 12}, zerolog.Nop())
}

func TestFitRecoversExactLogitModel(t *testing.T) {
	model, err := engine().Fit(context.Background(), linearTable(t), []string{"GDP", "UNEMP"})
	require.NoError(t, err)

	assert.InDelta(t, 1.0, model.Fit.RSquared, 1e-9)
	assert.Equal(t, obs, model.Fit.Observations)
	assert.InDelta(t, 0, model.Fit.RMSE, 1e-9)

	b0, _ := model.Coefficient(contracts.InterceptTerm)
	b1, _ := model.Coefficient("GDP")
	b2, _ := model.Coefficient("UNEMP")
	assert.InDelta(t, -4, b0, 1e-8)
	assert.InDelta(t, 0.1, b1, 1e-8)
	assert.InDelta(t, -0.2, b2, 1e-8)
	assert.Equal(t, contracts.InterceptTerm, model.Coefficients[0].Term)
	assert.True(t, math.IsNaN(model.Coefficients[0].Standardized))

	require.Len(t, model.Predictions, obs)
	for _, p := range model.Predictions {
		assert.InDelta(t, p.ActualLogit, p.Fitted, 1e-8)
		assert.InDelta(t, 0, p.Error, 1e-10)
		assert.InDelta(t, p.Actual, p.FittedPD, 1e-10)
	}

	assert.Equal(t, 2, model.ANOVA.Regression.DF)
	assert.Equal(t, obs-3, model.ANOVA.Residual.DF)
	assert.Equal(t, obs-1, model.ANOVA.Total.DF)
	assert.InDelta(t, model.ANOVA.Total.SS, model.ANOVA.Regression.SS+model.ANOVA.Residual.SS, 1e-9)
}

func TestForecastExtrapolatesTrend(t *testing.T) {
	model, err := engine().Fit(context.Background(), linearTable(t), []string{"GDP"})
	require.NoError(t, err)
	require.Len(t, model.Forecast, 4)

	// GDP rises by one per year: mean 6.5, then +1 per 12-month step
	for h, f := range model.Forecast {
		assert.Equal(t, h+1, f.Step)
		assert.InDelta(t, 6.5+float64(h+1), f.Predictors["GDP"], 1e-9)
		assert.Equal(t, time.Date(2021+h+1, 12, 31, 0, 0, 0, 0, time.UTC), f.Date)

		want, _ := model.Predict(f.Predictors)
		assert.InDelta(t, want, f.Logit, 1e-12)
		assert.InDelta(t, math.Exp(f.Logit), f.Odds, 1e-12)
		assert.InDelta(t, f.Odds/(1+f.Odds), f.PD, 1e-12)
	}
}

func TestFitErrors(t *testing.T) {
	ctx := context.Background()
	vt := linearTable(t)

	_, err := engine().Fit(ctx, vt, nil)
	assert.True(t, errors.Is(err, contracts.ErrNoPredictors))

	_, err = engine().Fit(ctx, vt, []string{"GDP", "GDP2"})
	assert.True(t, errors.Is(err, contracts.ErrNoUsableRows))

	_, err = engine().Fit(ctx, vt, []string{"MISSING"})
	assert.True(t, errors.Is(err, contracts.ErrInvalidTable))

	_, err = engine().Fit(ctx, vt, []string{"ODR"})
	assert.True(t, errors.Is(err, contracts.ErrInvalidTable))

	short, err := vt.Select("ODR", "GDP")
	require.NoError(t, err)
	dates := short.Dates()[:1]
	odr, _ := short.Column("ODR")
	gdp, _ := short.Column("GDP")
	tiny, err := contracts.NewVariableTable(dates, []contracts.Variable{
		{Name: "ODR", Values: odr[:1]},
		{Name: "GDP", Values: gdp[:1]},
	})
	require.NoError(t, err)
	_, err = engine().Fit(ctx, tiny, []string{"GDP"})
	assert.True(t, errors.Is(err, contracts.ErrNoUsableRows))
}

func TestUndefinedTargetRowsAreDropped(t *testing.T) {
	vt := linearTable(t)
	odr, _ := vt.Column("ODR")
	gdp, _ := vt.Column("GDP")
	odr[0] = 0
	odr[1] = 1
	withZeros, err := contracts.NewVariableTable(vt.Dates(), []contracts.Variable{
		{Name: "ODR", Values: odr},
		{Name: "GDP", Values: gdp},
	})
	require.NoError(t, err)

	model, err := engine().Fit(context.Background(), withZeros, []string{"GDP"})
	require.NoError(t, err)
	assert.Equal(t, obs-2, model.Fit.Observations)
	// the rows stay in the predictions with a missing logit
	require.Len(t, model.Predictions, obs)
	assert.True(t, math.IsNaN(model.Predictions[0].ActualLogit))
}

func TestLogitScaleTargetIsUsedAsIs(t *testing.T) {
	vt := linearTable(t)
	odr, _ := vt.Column("ODR")
	gdp, _ := vt.Column("GDP")
	logits := make([]float64, len(odr))
	for i, p := range odr {
		logits[i], _ = stats.Logit(p)
	}
	lt, err := contracts.NewVariableTable(vt.Dates(), []contracts.Variable{
		{Name: "LOG_ODR", Values: logits},
		{Name: "GDP", Values: gdp},
	})
	require.NoError(t, err)

	e := NewEngine(Config{Target: "LOG_ODR", Scale: contracts.ScaleLogit}, zerolog.Nop())
	model, err := e.Fit(context.Background(), lt, []string{"GDP"})
	require.NoError(t, err)
	assert.Equal(t, contracts.ScaleLogit, model.Scale)
	assert.Len(t, model.Forecast, 4)
}

func TestTables(t *testing.T) {
	vt := linearTable(t)
	model, err := engine().Fit(context.Background(), vt, []string{"GDP", "UNEMP"})
	require.NoError(t, err)

	tables, err := Tables(model, vt, "Date")
	require.NoError(t, err)
	names := make([]string, len(tables))
	for i, tbl := range tables {
		names[i] = tbl.Name
	}
	assert.Equal(t, []string{
		contracts.TableRegressionSummary,
		contracts.TableRegressionModel,
		contracts.TableRegressionANOVA,
		contracts.TableRegressionCoefficients,
		contracts.TableRegressionForecast,
	}, names)

	summary := tables[0]
	assert.Equal(t, obs, summary.Len())
	assert.Equal(t, []string{"ODR", "GDP", "UNEMP"}, SeriesColumns(summary))
	v, ok := summary.Float(0, "GDP")
	require.True(t, ok)
	assert.Equal(t, 1.0, v)

	restored, err := ModelFromTables(tables[1], tables[3])
	require.NoError(t, err)
	assert.Equal(t, model.Predictors, restored.Predictors)
	assert.Equal(t, model.Target, restored.Target)
	x := map[string]float64{"GDP": 3, "UNEMP": 1}
	want, _ := model.Predict(x)
	got, ok := restored.Predict(x)
	require.True(t, ok)
	assert.InDelta(t, want, got, 1e-12)
}

func TestModelFromTablesRequiresEveryCoefficient(t *testing.T) {
	vt := linearTable(t)
	model, err := engine().Fit(context.Background(), vt, []string{"GDP", "UNEMP"})
	require.NoError(t, err)
	tables, err := Tables(model, vt, "Date")
	require.NoError(t, err)
	modelTable, coefficients := tables[1], tables[3]

	// predictor list from a newer fit than the coefficient rows
	stale := coefficients.Clone()
	stale.Rows = stale.Rows[:2]
	_, err = ModelFromTables(modelTable, stale)
	assert.True(t, errors.Is(err, contracts.ErrInvalidTable))
	assert.Contains(t, err.Error(), "UNEMP")

	duplicated := coefficients.Clone()
	duplicated.Rows = append(duplicated.Rows, duplicated.Rows[1])
	_, err = ModelFromTables(modelTable, duplicated)
	assert.True(t, errors.Is(err, contracts.ErrInvalidTable))

	narrowed := modelTable.Clone()
	narrowed.Rows[0][2] = "GDP"
	_, err = ModelFromTables(narrowed, coefficients)
	assert.True(t, errors.Is(err, contracts.ErrInvalidTable))
	assert.Contains(t, err.Error(), "UNEMP")
}
