package s3_regression

import (
	"fmt"
	"math"
	"strings"

	"github.com/wonny/pdcal/internal/contracts"
)

// Computed columns of the regression_summary table
const (
	ColTargetLogit  = "TargetLogit"
	ColFitted       = "Fitted"
	ColOdds         = "Odds"
	ColFittedPD     = "FittedPD"
	ColError        = "Error"
	ColSquaredError = "SquaredError"
)

// SummaryColumns are the columns S3 adds to the regression_summary table
var SummaryColumns = []string{ColTargetLogit, ColFitted, ColOdds, ColFittedPD, ColError, ColSquaredError}

// SummaryTable renders the in-sample predictions with the target and predictor values
func SummaryTable(model *contracts.RegressionModel, vt *contracts.VariableTable, dateColumn string) (*contracts.Table, error) {
	cols := []contracts.Column{contracts.DateCol(dateColumn), contracts.FloatCol(model.Target)}
	for _, p := range model.Predictors {
		cols = append(cols, contracts.FloatCol(p))
	}
	for _, c := range SummaryColumns {
		cols = append(cols, contracts.FloatCol(c))
	}
	t := contracts.NewTable(contracts.TableRegressionSummary, cols...)

	rowOf := make(map[string]int, vt.Len())
	for i, d := range vt.Dates() {
		rowOf[d.Format(contracts.DateLayout)] = i
	}
	predictorValues := make([][]float64, len(model.Predictors))
	for j, p := range model.Predictors {
		predictorValues[j], _ = vt.Column(p)
	}

	for _, pr := range model.Predictions {
		values := []interface{}{pr.Date, pr.Actual}
		i, ok := rowOf[pr.Date.Format(contracts.DateLayout)]
		for j := range model.Predictors {
			v := math.NaN()
			if ok {
				v = predictorValues[j][i]
			}
			values = append(values, v)
		}
		values = append(values, pr.ActualLogit, pr.Fitted, pr.Odds, pr.FittedPD, pr.Error, pr.SquaredError)
		if err := t.Append(values...); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Column names of the regression_model table
const (
	ColTarget           = "Target"
	ColScale            = "Scale"
	ColPredictors       = "Predictors"
	ColObservations     = "Observations"
	ColR                = "R"
	ColRSquared         = "RSquared"
	ColAdjRSquared      = "AdjRSquared"
	ColStdErrorEstimate = "StdErrorEstimate"
	ColRMSE             = "RMSE"
	ColF                = "F"
	ColSignificance     = "Significance"
)

// ModelTable renders the model-level statistics as one row
func ModelTable(model *contracts.RegressionModel) (*contracts.Table, error) {
	t := contracts.NewTable(contracts.TableRegressionModel,
		contracts.TextCol(ColTarget),
		contracts.TextCol(ColScale),
		contracts.TextCol(ColPredictors),
		contracts.IntCol(ColObservations),
		contracts.FloatCol(ColR),
		contracts.FloatCol(ColRSquared),
		contracts.FloatCol(ColAdjRSquared),
		contracts.FloatCol(ColStdErrorEstimate),
		contracts.FloatCol(ColRMSE),
		contracts.FloatCol(ColF),
		contracts.FloatCol(ColSignificance),
	)
	f := model.Fit
	err := t.Append(model.Target, string(model.Scale), strings.Join(model.Predictors, ","),
		f.Observations, f.R, f.RSquared, f.AdjRSquared, f.StdErrorEstimate, f.RMSE,
		model.ANOVA.Regression.F, model.ANOVA.Regression.Significance)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Column names of the regression_anova table
const (
	ColSource = "Source"
	ColSS     = "SumOfSquares"
	ColDF     = "DF"
	ColMS     = "MeanSquare"
)

// ANOVATable renders the analysis of variance
func ANOVATable(model *contracts.RegressionModel) (*contracts.Table, error) {
	t := contracts.NewTable(contracts.TableRegressionANOVA,
		contracts.TextCol(ColSource),
		contracts.FloatCol(ColSS),
		contracts.IntCol(ColDF),
		contracts.FloatCol(ColMS),
		contracts.FloatCol(ColF),
		contracts.FloatCol(ColSignificance),
	)
	for _, r := range []contracts.ANOVARow{model.ANOVA.Regression, model.ANOVA.Residual, model.ANOVA.Total} {
		if err := t.Append(r.Source, r.SS, r.DF, r.MS, r.F, r.Significance); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Column names of the regression_coefficients table
const (
	ColTerm         = "Term"
	ColEstimate     = "Estimate"
	ColStdError     = "StdError"
	ColStandardized = "Standardized"
	ColTValue       = "T"
	ColPValue       = "PValue"
)

// CoefficientsTable renders the coefficients, intercept first
func CoefficientsTable(model *contracts.RegressionModel) (*contracts.Table, error) {
	t := contracts.NewTable(contracts.TableRegressionCoefficients,
		contracts.TextCol(ColTerm),
		contracts.FloatCol(ColEstimate),
		contracts.FloatCol(ColStdError),
		contracts.FloatCol(ColStandardized),
		contracts.FloatCol(ColTValue),
		contracts.FloatCol(ColPValue),
	)
	for _, c := range model.Coefficients {
		if err := t.Append(c.Term, c.Estimate, c.StdError, c.Standardized, c.TValue, c.PValue); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Column names of the regression_forecast table
const (
	ColStep  = "Step"
	ColDate  = "Date"
	ColLogit = "Logit"
	ColPD    = "PD"
)

// ForecastTable renders the forward steps with their extrapolated predictors
func ForecastTable(model *contracts.RegressionModel) (*contracts.Table, error) {
	cols := []contracts.Column{contracts.IntCol(ColStep), contracts.DateCol(ColDate)}
	for _, p := range model.Predictors {
		cols = append(cols, contracts.FloatCol(p))
	}
	cols = append(cols, contracts.FloatCol(ColLogit), contracts.FloatCol(ColOdds), contracts.FloatCol(ColPD))
	t := contracts.NewTable(contracts.TableRegressionForecast, cols...)

	for _, f := range model.Forecast {
		values := []interface{}{f.Step, f.Date}
		for _, p := range model.Predictors {
			values = append(values, f.Predictors[p])
		}
		values = append(values, f.Logit, f.Odds, f.PD)
		if err := t.Append(values...); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Tables renders every persisted S3 table
func Tables(model *contracts.RegressionModel, vt *contracts.VariableTable, dateColumn string) ([]*contracts.Table, error) {
	summary, err := SummaryTable(model, vt, dateColumn)
	if err != nil {
		return nil, fmt.Errorf("regression summary: %w", err)
	}
	out := []*contracts.Table{summary}
	for _, build := range []func(*contracts.RegressionModel) (*contracts.Table, error){
		ModelTable, ANOVATable, CoefficientsTable, ForecastTable,
	} {
		t, err := build(model)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// ModelFromTables restores the parts of a model needed for projection:
// target, scale, predictors and coefficients
func ModelFromTables(modelTable, coefficients *contracts.Table) (*contracts.RegressionModel, error) {
	if modelTable.Len() != 1 {
		return nil, fmt.Errorf("%w: %s has %d rows, want 1", contracts.ErrInvalidTable, modelTable.Name, modelTable.Len())
	}
	model := &contracts.RegressionModel{
		Target: modelTable.Text(0, ColTarget),
		Scale:  contracts.TargetScale(modelTable.Text(0, ColScale)),
	}
	if p := modelTable.Text(0, ColPredictors); p != "" {
		model.Predictors = strings.Split(p, ",")
	}
	model.Fit.Observations, _ = modelTable.Int(0, ColObservations)
	model.Fit.RSquared, _ = modelTable.Float(0, ColRSquared)
	model.Fit.RMSE, _ = modelTable.Float(0, ColRMSE)

	for i := 0; i < coefficients.Len(); i++ {
		c := contracts.Coefficient{Term: coefficients.Text(i, ColTerm)}
		var ok bool
		if c.Estimate, ok = coefficients.Float(i, ColEstimate); !ok {
			return nil, fmt.Errorf("%w: coefficient %q has no estimate", contracts.ErrInvalidTable, c.Term)
		}
		c.StdError, _ = coefficients.Float(i, ColStdError)
		c.Standardized, _ = coefficients.Float(i, ColStandardized)
		c.TValue, _ = coefficients.Float(i, ColTValue)
		c.PValue, _ = coefficients.Float(i, ColPValue)
		model.Coefficients = append(model.Coefficients, c)
	}
	if err := checkTerms(model); err != nil {
		return nil, err
	}
	return model, nil
}

// checkTerms requires exactly one coefficient row for the intercept and each predictor, and nothing else
func checkTerms(model *contracts.RegressionModel) error {
	counts := make(map[string]int, len(model.Coefficients))
	for _, c := range model.Coefficients {
		counts[c.Term]++
	}
	want := append([]string{contracts.InterceptTerm}, model.Predictors...)
	for _, term := range want {
		if n := counts[term]; n != 1 {
			return fmt.Errorf("%w: %d coefficient rows for %q, want 1", contracts.ErrInvalidTable, n, term)
		}
		delete(counts, term)
	}
	for term := range counts {
		return fmt.Errorf("%w: coefficient %q is not a model predictor", contracts.ErrInvalidTable, term)
	}
	return nil
}

// SeriesColumns returns the target and predictor columns of a regression_summary table:
// every numeric column that is neither the date nor an S3 computed column
func SeriesColumns(summary *contracts.Table) []string {
	computed := make(map[string]bool, len(SummaryColumns))
	for _, c := range SummaryColumns {
		computed[c] = true
	}
	var out []string
	for _, c := range summary.Columns {
		if computed[c.Name] {
			continue
		}
		if c.Kind == contracts.KindFloat || c.Kind == contracts.KindInt {
			out = append(out, c.Name)
		}
	}
	return out
}
