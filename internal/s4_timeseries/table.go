package s4_timeseries

import (
	"fmt"
	"sort"
	"time"

	"github.com/wonny/pdcal/internal/contracts"
	"github.com/wonny/pdcal/internal/s3_regression"
)

// Column names of the arima_candidates table
const (
	ColSeries    = "Series"
	ColP         = "P"
	ColD         = "D"
	ColQ         = "Q"
	ColOrder     = "Order"
	ColRMSE      = "RMSE"
	ColConverged = "Converged"
	ColSelected  = "Selected"
	ColReason    = "Reason"
)

// CandidatesTable renders every grid score, flagging the selected order of each series
func CandidatesTable(report *contracts.TimeSeriesReport) (*contracts.Table, error) {
	t := contracts.NewTable(contracts.TableARIMACandidates,
		contracts.TextCol(ColSeries),
		contracts.IntCol(ColP),
		contracts.IntCol(ColD),
		contracts.IntCol(ColQ),
		contracts.TextCol(ColOrder),
		contracts.FloatCol(ColRMSE),
		contracts.BoolCol(ColConverged),
		contracts.BoolCol(ColSelected),
		contracts.TextCol(ColReason),
	)
	selected := make(map[string]contracts.Order, len(report.Forecasts))
	for _, f := range report.Forecasts {
		selected[f.Model.Series] = f.Model.Order
	}
	for _, c := range report.Candidates {
		o, ok := selected[c.Series]
		isSelected := ok && o == c.Order
		err := t.Append(c.Series, c.Order.P, c.Order.D, c.Order.Q, c.Order.String(),
			c.RMSE, c.Converged, isSelected, c.Reason)
		if err != nil {
			return nil, err
		}
	}
	return t, nil
}

// ForecastTable renders the arima_forecast table: Date plus one <series>_forecast column per series
func ForecastTable(report *contracts.TimeSeriesReport, dateColumn string) (*contracts.Table, error) {
	cols := []contracts.Column{contracts.DateCol(dateColumn)}
	for _, f := range report.Forecasts {
		cols = append(cols, contracts.FloatCol(contracts.ForecastColumn(f.Model.Series)))
	}
	t := contracts.NewTable(contracts.TableARIMAForecast, cols...)
	if len(report.Forecasts) == 0 {
		return t, nil
	}

	for h, p := range report.Forecasts[0].Points {
		values := []interface{}{p.Date}
		for _, f := range report.Forecasts {
			values = append(values, f.Points[h].Value)
		}
		if err := t.Append(values...); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Combine outer-joins two tables on their date column. The result has the left
// columns followed by the right columns (minus its date), one row per distinct
// date in ascending order. Rows without a date are dropped.
func Combine(name, dateColumn string, left, right *contracts.Table) (*contracts.Table, error) {
	for _, t := range []*contracts.Table{left, right} {
		if !t.HasColumn(dateColumn) {
			return nil, fmt.Errorf("%w: %s has no %q column", contracts.ErrInvalidTable, t.Name, dateColumn)
		}
	}
	cols := append([]contracts.Column(nil), left.Columns...)
	var rightCols []string
	for _, c := range right.Columns {
		if c.Name == dateColumn || left.HasColumn(c.Name) {
			continue
		}
		cols = append(cols, c)
		rightCols = append(rightCols, c.Name)
	}
	out := contracts.NewTable(name, cols...)

	type pair struct{ l, r int }
	byDate := make(map[time.Time]*pair)
	var dates []time.Time
	index := func(d time.Time) *pair {
		p, ok := byDate[d]
		if !ok {
			p = &pair{l: -1, r: -1}
			byDate[d] = p
			dates = append(dates, d)
		}
		return p
	}
	for i := 0; i < left.Len(); i++ {
		if d, ok := left.Date(i, dateColumn); ok {
			index(d).l = i
		}
	}
	for i := 0; i < right.Len(); i++ {
		if d, ok := right.Date(i, dateColumn); ok {
			index(d).r = i
		}
	}
	sort.Slice(dates, func(a, b int) bool { return dates[a].Before(dates[b]) })

	for _, d := range dates {
		p := byDate[d]
		values := make([]interface{}, len(cols))
		if p.l >= 0 {
			copy(values, left.Rows[p.l])
		}
		values[left.ColumnIndex(dateColumn)] = d
		if p.r >= 0 {
			for k, name := range rightCols {
				values[len(left.Columns)+k] = right.Rows[p.r][right.ColumnIndex(name)]
			}
		}
		if err := out.Append(values...); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// CandidateVariables filters the variable names of a combined_results table down to the
// candidate universe of a re-run. The regression's own derived columns (TargetLogit, Fitted,
// Odds, FittedPD, Error, SquaredError) are dropped; the target, predictors and every
// <series>_forecast column stay.
func CandidateVariables(names []string) []string {
	derived := make(map[string]bool, len(s3_regression.SummaryColumns))
	for _, c := range s3_regression.SummaryColumns {
		derived[c] = true
	}
	out := make([]string, 0, len(names))
	for _, n := range names {
		if !derived[n] {
			out = append(out, n)
		}
	}
	return out
}
