package report

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/wonny/pdcal/internal/contracts"
)

const (
	doubleLine = "═══════════════════════════════════════════════════════════"
	singleLine = "───────────────────────────────────────────────────────────"
)

// FormatCell renders one cell: floats with 6 significant digits, dates as YYYY-MM-DD,
// missing values as "-"
func FormatCell(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return "-"
	case float64:
		return strconv.FormatFloat(x, 'g', 6, 64)
	case time.Time:
		return x.Format(contracts.DateLayout)
	case bool:
		if x {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprint(x)
	}
}

// WriteTable prints a table with padded columns. maxRows <= 0 prints every row.
func WriteTable(w io.Writer, t *contracts.Table, maxRows int) {
	rows := t.Rows
	truncated := 0
	if maxRows > 0 && len(rows) > maxRows {
		truncated = len(rows) - maxRows
		rows = rows[:maxRows]
	}

	cells := make([][]string, len(rows))
	widths := make([]int, len(t.Columns))
	for j, c := range t.Columns {
		widths[j] = utf8.RuneCountInString(c.Name)
	}
	for i, r := range rows {
		cells[i] = make([]string, len(r))
		for j, v := range r {
			cells[i][j] = FormatCell(v)
			if n := utf8.RuneCountInString(cells[i][j]); n > widths[j] {
				widths[j] = n
			}
		}
	}

	writeRow(w, t.ColumnNames(), widths)
	total := 0
	for _, wd := range widths {
		total += wd + 2
	}
	fmt.Fprintln(w, strings.Repeat("-", total))
	for _, r := range cells {
		writeRow(w, r, widths)
	}
	if truncated > 0 {
		fmt.Fprintf(w, "... %d more rows\n", truncated)
	}
}

func writeRow(w io.Writer, values []string, widths []int) {
	var b strings.Builder
	for j, v := range values {
		b.WriteString(v)
		if j < len(values)-1 {
			b.WriteString(strings.Repeat(" ", widths[j]-utf8.RuneCountInString(v)+2))
		}
	}
	fmt.Fprintln(w, b.String())
}

// WriteRegression prints the regression output the way a spreadsheet regression
// tool lays it out: model summary, ANOVA, coefficients, RMSE and forecast
func WriteRegression(w io.Writer, m *contracts.RegressionModel) {
	fmt.Fprintln(w, doubleLine)
	fmt.Fprintf(w, "  logit(%s) ~ %s\n", m.Target, strings.Join(m.Predictors, " + "))
	fmt.Fprintln(w, singleLine)

	fmt.Fprintln(w, "Model Summary")
	fmt.Fprintf(w, "  %-26s %s\n", "Multiple R", num(m.Fit.R))
	fmt.Fprintf(w, "  %-26s %s\n", "R Square", num(m.Fit.RSquared))
	fmt.Fprintf(w, "  %-26s %s\n", "Adjusted R Square", num(m.Fit.AdjRSquared))
	fmt.Fprintf(w, "  %-26s %s\n", "Std. Error of the Estimate", num(m.Fit.StdErrorEstimate))
	fmt.Fprintf(w, "  %-26s %d\n", "Observations", m.Fit.Observations)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "ANOVA")
	fmt.Fprintf(w, "  %-12s %12s %6s %12s %12s %12s\n", "Source", "SS", "df", "MS", "F", "Sig.")
	for _, r := range []contracts.ANOVARow{m.ANOVA.Regression, m.ANOVA.Residual, m.ANOVA.Total} {
		fmt.Fprintf(w, "  %-12s %12s %6d %12s %12s %12s\n", r.Source, num(r.SS), r.DF, num(r.MS), num(r.F), num(r.Significance))
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Coefficients")
	fmt.Fprintf(w, "  %-14s %12s %12s %12s %10s %10s\n", "Term", "B", "Std. Error", "Beta", "t", "Sig.")
	for _, c := range m.Coefficients {
		fmt.Fprintf(w, "  %-14s %12s %12s %12s %10s %10s\n", c.Term, num(c.Estimate), num(c.StdError), num(c.Standardized), num(c.TValue), num(c.PValue))
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "RMSE  %s\n", num(m.Fit.RMSE))

	if len(m.Forecast) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Forecast")
		fmt.Fprintf(w, "  %-4s %-10s %12s %12s %12s\n", "Step", "Date", "Logit", "Odds", "PD")
		for _, f := range m.Forecast {
			fmt.Fprintf(w, "  %-4d %-10s %12s %12s %12s\n", f.Step, f.Date.Format(contracts.DateLayout), num(f.Logit), num(f.Odds), num(f.PD))
		}
	}
	fmt.Fprintln(w, doubleLine)
}

// WriteCurveTotals prints the 24 monthly totals across buckets
func WriteCurveTotals(w io.Writer, totals [contracts.Horizons * contracts.MonthsPerHorizon]float64) {
	fmt.Fprintln(w, "Monthly PD totals")
	for row := 0; row < contracts.Horizons; row++ {
		var b strings.Builder
		for m := 0; m < contracts.MonthsPerHorizon; m++ {
			k := row*contracts.MonthsPerHorizon + m
			fmt.Fprintf(&b, " M%-2d %-9s", k+1, num(totals[k]))
		}
		fmt.Fprintln(w, strings.TrimRight(b.String(), " "))
	}
}

func num(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return strconv.FormatFloat(v, 'g', 6, 64)
}
