package s4_timeseries

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/wonny/pdcal/internal/contracts"
	"github.com/wonny/pdcal/internal/stats"
)

// Project applies the regression coefficients to every date of the combined table.
// A predictor uses its observed value, else its <predictor>_forecast value.
// Rows without an observed positive target are forecast rows.
func Project(model *contracts.RegressionModel, combined *contracts.Table, dateColumn string) ([]contracts.ProjectionRow, error) {
	if !combined.HasColumn(dateColumn) {
		return nil, fmt.Errorf("%w: %s has no %q column", contracts.ErrInvalidTable, combined.Name, dateColumn)
	}
	for _, p := range model.Predictors {
		if !combined.HasColumn(p) && !combined.HasColumn(contracts.ForecastColumn(p)) {
			return nil, fmt.Errorf("%w: %s has neither %q nor its forecast", contracts.ErrInvalidTable, combined.Name, p)
		}
	}

	var out []contracts.ProjectionRow
	for i := 0; i < combined.Len(); i++ {
		d, ok := combined.Date(i, dateColumn)
		if !ok {
			continue
		}
		row := contracts.ProjectionRow{Date: d, Actual: math.NaN()}
		if v, ok := combined.Float(i, model.Target); ok {
			row.Actual = v
		}

		x := make(map[string]float64, len(model.Predictors))
		for _, p := range model.Predictors {
			v, ok := combined.Float(i, p)
			if !ok {
				v, _ = combined.Float(i, contracts.ForecastColumn(p))
			}
			x[p] = v
		}
		if f, ok := model.Predict(x); ok {
			row.Fitted = f
			row.Odds, row.FittedPD = stats.OddsToPD(f)
		} else {
			row.Fitted, row.Odds, row.FittedPD = math.NaN(), math.NaN(), math.NaN()
		}
		row.Error = row.Actual - row.FittedPD
		row.SquaredError = row.Error * row.Error
		row.Forecast = !(row.Actual > 0)
		out = append(out, row)
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Date.Before(out[b].Date) })
	return out, nil
}

// Summarize aggregates the projection: one History row over realised dates, then
// one row per calendar year of forecast dates. Rows without a fitted value are ignored.
func Summarize(rows []contracts.ProjectionRow) []contracts.SummaryRow {
	var history []contracts.ProjectionRow
	byYear := make(map[int][]contracts.ProjectionRow)
	var years []int
	for _, r := range rows {
		if math.IsNaN(r.Odds) {
			continue
		}
		if !r.Forecast {
			history = append(history, r)
			continue
		}
		y := r.Date.Year()
		if _, ok := byYear[y]; !ok {
			years = append(years, y)
		}
		byYear[y] = append(byYear[y], r)
	}
	sort.Ints(years)

	var out []contracts.SummaryRow
	if len(history) > 0 {
		s := aggregate(contracts.HistoryLabel, 0, history)
		out = append(out, s)
	}
	for _, y := range years {
		out = append(out, aggregate(strconv.Itoa(y), y, byYear[y]))
	}
	return out
}

func aggregate(description string, year int, rows []contracts.ProjectionRow) contracts.SummaryRow {
	s := contracts.SummaryRow{
		Description: description,
		Year:        year,
		Periods:     len(rows),
		Last:        rows[len(rows)-1].Odds,
		MaxOdds:     math.Inf(-1),
		MinOdds:     math.Inf(1),
	}
	sumOdds, sumPD, sumODR, nODR := 0.0, 0.0, 0.0, 0
	for _, r := range rows {
		s.MaxOdds = math.Max(s.MaxOdds, r.Odds)
		s.MinOdds = math.Min(s.MinOdds, r.Odds)
		sumOdds += r.Odds
		sumPD += r.FittedPD
		if !math.IsNaN(r.Actual) {
			sumODR += r.Actual
			nODR++
		}
	}
	n := float64(len(rows))
	s.AvgOdds = sumOdds / n
	// PIT는 평균 FittedPD (S5 목표가 PD 단위). 기존 forecasting 산출물의 PIT 컬럼은 AVG(Odds)였음
	s.PIT = sumPD / n
	s.AvgODR = math.NaN()
	if nODR > 0 && year == 0 {
		s.AvgODR = sumODR / float64(nODR)
	}
	return s
}

// Column names of the forecasting_results table
const (
	ColActual       = "Actual"
	ColFitted       = "Fitted"
	ColOdds         = "Odds"
	ColFittedPD     = "FittedPD"
	ColError        = "Error"
	ColSquaredError = "SquaredError"
	ColForecast     = "Forecast"
)

// ProjectionTable renders the forecasting_results table
func ProjectionTable(rows []contracts.ProjectionRow, dateColumn string) (*contracts.Table, error) {
	t := contracts.NewTable(contracts.TableForecastingResults,
		contracts.DateCol(dateColumn),
		contracts.FloatCol(ColActual),
		contracts.FloatCol(ColFitted),
		contracts.FloatCol(ColOdds),
		contracts.FloatCol(ColFittedPD),
		contracts.FloatCol(ColError),
		contracts.FloatCol(ColSquaredError),
		contracts.BoolCol(ColForecast),
	)
	for _, r := range rows {
		if err := t.Append(r.Date, r.Actual, r.Fitted, r.Odds, r.FittedPD, r.Error, r.SquaredError, r.Forecast); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Column names of the result_summary table
const (
	ColDescription = "Description"
	ColYear        = "Year"
	ColPeriods     = "Periods"
	ColLast        = "Last"
	ColMaxOdds     = "MaxOdds"
	ColMinOdds     = "MinOdds"
	ColAvgOdds     = "AvgOdds"
	ColPIT         = "PIT"
	ColAvgODR      = "AvgODR"
)

// SummaryTable renders the result_summary table
func SummaryTable(rows []contracts.SummaryRow) (*contracts.Table, error) {
	t := contracts.NewTable(contracts.TableResultSummary,
		contracts.TextCol(ColDescription),
		contracts.IntCol(ColYear),
		contracts.IntCol(ColPeriods),
		contracts.FloatCol(ColLast),
		contracts.FloatCol(ColMaxOdds),
		contracts.FloatCol(ColMinOdds),
		contracts.FloatCol(ColAvgOdds),
		contracts.FloatCol(ColPIT),
		contracts.FloatCol(ColAvgODR),
	)
	for _, r := range rows {
		var year interface{}
		if r.Year != 0 {
			year = r.Year
		}
		if err := t.Append(r.Description, year, r.Periods, r.Last, r.MaxOdds, r.MinOdds, r.AvgOdds, r.PIT, r.AvgODR); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// SummaryFromTable reads a persisted result_summary table
func SummaryFromTable(t *contracts.Table) []contracts.SummaryRow {
	out := make([]contracts.SummaryRow, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		r := contracts.SummaryRow{Description: t.Text(i, ColDescription)}
		r.Year, _ = t.Int(i, ColYear)
		r.Periods, _ = t.Int(i, ColPeriods)
		r.Last, _ = t.Float(i, ColLast)
		r.MaxOdds, _ = t.Float(i, ColMaxOdds)
		r.MinOdds, _ = t.Float(i, ColMinOdds)
		r.AvgOdds, _ = t.Float(i, ColAvgOdds)
		r.PIT, _ = t.Float(i, ColPIT)
		r.AvgODR, _ = t.Float(i, ColAvgODR)
		out = append(out, r)
	}
	return out
}
