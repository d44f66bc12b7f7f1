package report

import (
	"bytes"
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/pdcal/internal/contracts"
	"github.com/wonny/pdcal/internal/s0_data"
	"github.com/wonny/pdcal/internal/store"
)

func odrTable(t *testing.T) *contracts.Table {
	t.Helper()
	tbl := contracts.NewTable("mev_transformation",
		contracts.DateCol("Date"),
		contracts.FloatCol("ODR"),
		contracts.TextCol("Note"),
	)
	require.NoError(t, tbl.Append(time.Date(2023, 1, 31, 0, 0, 0, 0, time.UTC), 0.021, "first"))
	require.NoError(t, tbl.Append(time.Date(2023, 2, 28, 0, 0, 0, 0, time.UTC), nil, nil))
	require.NoError(t, tbl.Append(time.Date(2023, 3, 31, 0, 0, 0, 0, time.UTC), 0.025, "third"))
	return tbl
}

func TestFormatCell(t *testing.T) {
	assert.Equal(t, "-", FormatCell(nil))
	assert.Equal(t, "0.123457", FormatCell(0.1234567))
	assert.Equal(t, "2024-01-31", FormatCell(time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "true", FormatCell(true))
	assert.Equal(t, "7", FormatCell(7))
}

func TestWriteTableTruncates(t *testing.T) {
	var buf bytes.Buffer
	WriteTable(&buf, odrTable(t), 2)

	out := buf.String()
	assert.Contains(t, out, "Date")
	assert.Contains(t, out, "2023-01-31")
	assert.Contains(t, out, "0.021")
	assert.NotContains(t, out, "2023-03-31")
	assert.Contains(t, out, "... 1 more rows")
}

func TestConsoleReporter(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, 0)

	var r contracts.Reporter = c
	r.Progress(contracts.StageCorrelation, "correlation gate")
	r.Table(contracts.StageData, odrTable(t))

	out := buf.String()
	assert.Contains(t, out, "[S1] correlation gate")
	assert.Contains(t, out, "S0 · mev_transformation (3 rows)")
	assert.Contains(t, out, "third")

	buf.Reset()
	c.Quiet().Table(contracts.StageData, odrTable(t))
	assert.Empty(t, buf.String())
}

func TestConsoleRunSummary(t *testing.T) {
	var buf bytes.Buffer
	start := time.Date(2024, 1, 1, 6, 0, 0, 0, time.UTC)
	NewConsole(&buf, 0).RunSummary(contracts.RunSummary{
		RunID:      "run_1",
		StartedAt:  start,
		FinishedAt: start.Add(1500 * time.Millisecond),
		ConfigHash: "0123456789abcdef0123",
		Results: []contracts.PipelineResult{
			{Stage: contracts.StageData, Success: true, Duration: 12, InputCount: 36, OutputCount: 3},
			{Stage: contracts.StageCorrelation, Success: false, Error: "S1 failed: boom"},
		},
	})

	out := buf.String()
	assert.Contains(t, out, "run_1")
	assert.Contains(t, out, "0123456789ab")
	assert.NotContains(t, out, "0123456789abc")
	assert.Contains(t, out, "1.50s")
	assert.Contains(t, out, "✅ S0")
	assert.Contains(t, out, "❌ S1")
	assert.Contains(t, out, "S1 failed: boom")
}

func TestWriteRegression(t *testing.T) {
	var buf bytes.Buffer
	WriteRegression(&buf, &contracts.RegressionModel{
		Target:     "ODR",
		Predictors: []string{"UNEMP", "GDP"},
		Coefficients: []contracts.Coefficient{
			{Term: contracts.InterceptTerm, Estimate: -4, Standardized: math.NaN()},
			{Term: "UNEMP", Estimate: 0.2},
		},
		Fit: contracts.FitStats{Observations: 12, RSquared: 0.8, RMSE: 0.01},
		ANOVA: contracts.ANOVA{
			Regression: contracts.ANOVARow{Source: "Regression", DF: 2},
			Residual:   contracts.ANOVARow{Source: "Residual", DF: 9, F: math.NaN()},
			Total:      contracts.ANOVARow{Source: "Total", DF: 11, MS: math.NaN()},
		},
		Forecast: []contracts.RegressionForecast{
			{Step: 1, Date: time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC), Logit: -3.5, Odds: 0.03, PD: 0.029},
		},
	})

	out := buf.String()
	for _, want := range []string{"logit(ODR) ~ UNEMP + GDP", "Model Summary", "ANOVA", "Coefficients", "RMSE  0.01", "Forecast", "2024-12-31"} {
		assert.Contains(t, out, want)
	}
}

func TestWriteCurveTotals(t *testing.T) {
	var totals [contracts.Horizons * contracts.MonthsPerHorizon]float64
	totals[0], totals[23] = 0.5, 0.25

	var buf bytes.Buffer
	WriteCurveTotals(&buf, totals)
	assert.Contains(t, buf.String(), "M1  0.5")
	assert.Contains(t, buf.String(), "M24 0.25")
}

func TestExportWorkbookRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, ExportWorkbook(path, []*contracts.Table{odrTable(t)}))

	back, err := s0_data.ImportWorkbook(path, "mev_transformation", "mev_transformation")
	require.NoError(t, err)
	require.Equal(t, 3, back.Len())
	assert.Equal(t, contracts.KindDate, back.Columns[0].Kind)
	assert.Equal(t, contracts.KindFloat, back.Columns[1].Kind)

	d, ok := back.Date(1, "Date")
	require.True(t, ok)
	assert.Equal(t, time.Date(2023, 2, 28, 0, 0, 0, 0, time.UTC), d)
	_, ok = back.Float(1, "ODR")
	assert.False(t, ok)
	v, _ := back.Float(2, "ODR")
	assert.InDelta(t, 0.025, v, 1e-12)
}

func TestExportFromStore(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	require.NoError(t, mem.Write(ctx, odrTable(t)))

	path := filepath.Join(t.TempDir(), "all.xlsx")
	require.NoError(t, Export(ctx, mem, path))

	_, err := s0_data.ImportWorkbook(path, "", "copy")
	assert.NoError(t, err)

	assert.Error(t, Export(ctx, mem, path, "missing"))
	assert.Error(t, ExportWorkbook(path, nil))
}

func TestSheetNameLimit(t *testing.T) {
	assert.Equal(t, "regression_coefficients", sheetName("regression_coefficients"))
	assert.Len(t, sheetName("a_table_name_that_is_far_too_long_for_excel"), maxSheetName)
}
