package s3_regression

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"

	"github.com/wonny/pdcal/internal/contracts"
	"github.com/wonny/pdcal/internal/stats"
)

// Config holds the regression parameters
type Config struct {
	Target     string
	Scale      contracts.TargetScale
	Horizon    int // forecast steps
	StepMonths int // months between forecast steps
}

// Engine fits logit(target) on the selected predictors by OLS
// ⭐ SSOT: S3 회귀 (logit 변환, OLS, ANOVA, 예측)
type Engine struct {
	config Config
	log    zerolog.Logger
}

// NewEngine creates a new regression engine
func NewEngine(config Config, log zerolog.Logger) *Engine {
	if config.Scale == "" {
		config.Scale = contracts.ScaleProbability
	}
	if config.Horizon <= 0 {
		config.Horizon = 4
	}
	if config.StepMonths <= 0 {
		config.StepMonths = 12
	}
	return &Engine{
		config: config,
		log:    log.With().Str("component", "s3_regression").Logger(),
	}
}

// Fit estimates the model, its in-sample predictions and the forward forecast
func (e *Engine) Fit(ctx context.Context, vt *contracts.VariableTable, predictors []string) (*contracts.RegressionModel, error) {
	if len(predictors) == 0 {
		return nil, contracts.ErrNoPredictors
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	actual, ok := vt.Column(e.config.Target)
	if !ok {
		return nil, fmt.Errorf("%w: target %q not in variable table", contracts.ErrInvalidTable, e.config.Target)
	}
	xs := make([][]float64, len(predictors))
	for j, p := range predictors {
		if p == e.config.Target {
			return nil, fmt.Errorf("%w: target %q used as predictor", contracts.ErrInvalidTable, p)
		}
		col, ok := vt.Column(p)
		if !ok {
			return nil, fmt.Errorf("%w: predictor %q not in variable table", contracts.ErrInvalidTable, p)
		}
		xs[j] = col
	}

	logits, undefined := e.transformTarget(actual)
	if undefined > 0 {
		e.log.Warn().Int("rows", undefined).Msg("target outside (0,1) treated as missing")
	}

	// 결측 없는 행만 사용
	dates := vt.Dates()
	var used []int
	for i := range dates {
		if math.IsNaN(logits[i]) {
			continue
		}
		complete := true
		for j := range xs {
			if math.IsNaN(xs[j][i]) {
				complete = false
				break
			}
		}
		if complete {
			used = append(used, i)
		}
	}
	if len(used) <= len(predictors) {
		return nil, fmt.Errorf("%w: %d complete rows for %d predictors", contracts.ErrNoUsableRows, len(used), len(predictors))
	}

	y := pick(logits, used)
	design := make([][]float64, len(xs))
	for j := range xs {
		design[j] = pick(xs[j], used)
	}

	ols, err := stats.OLS(y, design)
	if err != nil {
		return nil, err
	}

	model := &contracts.RegressionModel{
		Target:     e.config.Target,
		Scale:      e.config.Scale,
		Predictors: append([]string(nil), predictors...),
	}
	model.Coefficients = coefficients(ols, predictors, y, design)
	model.Fit = fitStats(ols)
	model.ANOVA = anova(ols)
	model.Predictions = e.predictions(model, dates, actual, logits, xs)

	model.Forecast, err = e.forecast(model, dates, used, design)
	if err != nil {
		return nil, err
	}

	e.log.Info().
		Strs("predictors", predictors).
		Int("observations", ols.N).
		Float64("r_squared", model.Fit.RSquared).
		Float64("rmse", model.Fit.RMSE).
		Msg("regression fitted")

	return model, nil
}

func (e *Engine) transformTarget(actual []float64) ([]float64, int) {
	out := make([]float64, len(actual))
	undefined := 0
	for i, v := range actual {
		if math.IsNaN(v) {
			out[i] = math.NaN()
			continue
		}
		if e.config.Scale == contracts.ScaleLogit {
			out[i] = v
			continue
		}
		l, ok := stats.Logit(v)
		if !ok {
			undefined++
		}
		out[i] = l
	}
	return out, undefined
}

func pick(xs []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for k, i := range idx {
		out[k] = xs[i]
	}
	return out
}

func coefficients(ols *stats.OLSResult, predictors []string, y []float64, design [][]float64) []contracts.Coefficient {
	sdY := stat.StdDev(y, nil)
	out := make([]contracts.Coefficient, len(ols.Beta))
	for j := range ols.Beta {
		c := contracts.Coefficient{
			Estimate:     ols.Beta[j],
			StdError:     ols.StdErr[j],
			TValue:       ols.TValues[j],
			PValue:       ols.PValues[j],
			Standardized: math.NaN(),
		}
		if j == 0 {
			c.Term = contracts.InterceptTerm
		} else {
			c.Term = predictors[j-1]
			if sdY > 0 {
				c.Standardized = ols.Beta[j] * stat.StdDev(design[j-1], nil) / sdY
			}
		}
		out[j] = c
	}
	return out
}

func fitStats(ols *stats.OLSResult) contracts.FitStats {
	return contracts.FitStats{
		Observations:     ols.N,
		R:                math.Sqrt(ols.RSquared),
		RSquared:         ols.RSquared,
		AdjRSquared:      ols.AdjRSquared,
		StdErrorEstimate: math.Sqrt(ols.Sigma2),
		RMSE:             math.Sqrt(ols.SSE / float64(ols.N)),
	}
}

func anova(ols *stats.OLSResult) contracts.ANOVA {
	nan := math.NaN()
	return contracts.ANOVA{
		Regression: contracts.ANOVARow{
			Source:       "Regression",
			SS:           ols.SSReg,
			DF:           ols.DFReg,
			MS:           ols.SSReg / float64(ols.DFReg),
			F:            ols.F,
			Significance: ols.FPValue,
		},
		Residual: contracts.ANOVARow{
			Source:       "Residual",
			SS:           ols.SSE,
			DF:           ols.DFRes,
			MS:           ols.Sigma2,
			F:            nan,
			Significance: nan,
		},
		Total: contracts.ANOVARow{
			Source:       "Total",
			SS:           ols.SST,
			DF:           ols.N - 1,
			MS:           nan,
			F:            nan,
			Significance: nan,
		},
	}
}

// predictions covers every date with an observed target.
// Error is on the target's own scale: actual PD minus fitted PD, or logit minus fitted logit.
func (e *Engine) predictions(model *contracts.RegressionModel, dates []time.Time, actual, logits []float64, xs [][]float64) []contracts.PredictionRow {
	var out []contracts.PredictionRow
	for i, d := range dates {
		if math.IsNaN(actual[i]) {
			continue
		}
		x := make(map[string]float64, len(xs))
		for j, p := range model.Predictors {
			x[p] = xs[j][i]
		}
		row := contracts.PredictionRow{Date: d, Actual: actual[i], ActualLogit: logits[i]}
		row.Fitted, _ = model.Predict(x)
		row.Odds, row.FittedPD = stats.OddsToPD(row.Fitted)
		if e.config.Scale == contracts.ScaleLogit {
			row.Error = actual[i] - row.Fitted
		} else {
			row.Error = actual[i] - row.FittedPD
		}
		row.SquaredError = row.Error * row.Error
		out = append(out, row)
	}
	return out
}

// forecast extrapolates each predictor as mean + trend·step. The trend is the
// least-squares slope of the predictor against elapsed months, scaled to one step.
func (e *Engine) forecast(model *contracts.RegressionModel, dates []time.Time, used []int, design [][]float64) ([]contracts.RegressionForecast, error) {
	months := make([]float64, len(used))
	for k, i := range used {
		months[k] = float64(monthsBetween(dates[used[0]], dates[i]))
	}

	means := make([]float64, len(design))
	slopes := make([]float64, len(design))
	for j, col := range design {
		means[j] = stat.Mean(col, nil)
		if months[len(months)-1] > 0 {
			_, beta := stat.LinearRegression(months, col, nil, false)
			slopes[j] = beta * float64(e.config.StepMonths)
		}
	}

	last := dates[len(dates)-1]
	out := make([]contracts.RegressionForecast, e.config.Horizon)
	for h := 1; h <= e.config.Horizon; h++ {
		x := make(map[string]float64, len(design))
		for j, p := range model.Predictors {
			x[p] = means[j] + slopes[j]*float64(h)
		}
		f, ok := model.Predict(x)
		if !ok {
			return nil, fmt.Errorf("%w: forecast step %d has missing predictors", contracts.ErrNoUsableRows, h)
		}
		odds, pd := stats.OddsToPD(f)
		out[h-1] = contracts.RegressionForecast{
			Step:       h,
			Date:       contracts.MonthEnd(last, h*e.config.StepMonths),
			Predictors: x,
			Logit:      f,
			Odds:       odds,
			PD:         pd,
		}
	}
	return out, nil
}

func monthsBetween(from, to time.Time) int {
	return (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
}
