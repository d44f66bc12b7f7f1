package brain

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/wonny/pdcal/internal/calibration"
	"github.com/wonny/pdcal/internal/contracts"
	"github.com/wonny/pdcal/internal/s0_data"
	"github.com/wonny/pdcal/internal/s1_correlation"
	"github.com/wonny/pdcal/internal/s3_regression"
	"github.com/wonny/pdcal/internal/s4_timeseries"
	"github.com/wonny/pdcal/internal/stats"
	"github.com/wonny/pdcal/internal/store"
	"github.com/wonny/pdcal/pkg/metrics"
)

const months = 36

var firstMonth = time.Date(2020, 1, 31, 0, 0, 0, 0, time.UTC)

// seedStore writes a monthly MEV table where UNEMP (normal scores) drives
// logit(ODR) and NOISE alternates, plus five TTC buckets at the reporting date
func seedStore(t *testing.T) *store.Memory {
	t.Helper()
	ctx := context.Background()
	mem := store.NewMemory()

	mev := contracts.NewTable(contracts.TableMEV,
		contracts.DateCol("Date"),
		contracts.FloatCol("ODR"),
		contracts.FloatCol("UNEMP"),
		contracts.FloatCol("NOISE"),
	)
	for k := 0; k < months; k++ {
		z := distuv.UnitNormal.Quantile((float64(k) + 0.5) / months)
		noise := 1.0
		if k%2 == 1 {
			noise = -1
		}
		require.NoError(t, mev.Append(contracts.MonthEnd(firstMonth, k), stats.Logistic(-3-0.5*z), z, noise))
	}
	require.NoError(t, mem.Write(ctx, mev))

	cols := []contracts.Column{contracts.DateCol(s0_data.ColReportingDate), contracts.IntCol(s0_data.ColBucket)}
	for m := 1; m <= 24; m++ {
		cols = append(cols, contracts.FloatCol(s0_data.MonthColumn(m)))
	}
	pd := contracts.NewTable(contracts.TablePDWeightedAverage, cols...)
	reporting := s0_data.ReportingDateFor(contracts.MonthEnd(firstMonth, months-1))
	for b := 1; b <= 5; b++ {
		row := []interface{}{reporting, b}
		for m := 1; m <= 24; m++ {
			v := 0.001 * float64(b)
			if m > 12 {
				v = 0.0015 * float64(b)
			}
			row = append(row, v)
		}
		require.NoError(t, pd.Append(row...))
	}
	require.NoError(t, mem.Write(ctx, pd))
	return mem
}

func testConfig(t *testing.T) *calibration.Config {
	t.Helper()
	cfg, err := calibration.Default()
	require.NoError(t, err)
	cfg.Correlation.Sign = contracts.SignNegative
	cfg.TimeSeries.P = []int{0, 1}
	cfg.TimeSeries.D = []int{1}
	cfg.TimeSeries.Q = []int{0}
	cfg.Workers = 2
	return cfg
}

func newOrchestrator(t *testing.T, mem contracts.TableStore) *Orchestrator {
	t.Helper()
	o, err := NewOrchestrator(testConfig(t), mem, Options{Metrics: metrics.New(prometheus.NewRegistry())})
	require.NoError(t, err)
	return o
}

func TestRunEndToEnd(t *testing.T) {
	ctx := context.Background()
	mem := seedStore(t)
	o := newOrchestrator(t, mem)

	result, err := o.Run(ctx, RunConfig{RunID: "run_test"})
	require.NoError(t, err)

	assert.True(t, result.Summary.Success)
	assert.Equal(t, contracts.AllStages(), result.Summary.Completed)
	assert.Equal(t, o.ConfigHash(), result.Summary.ConfigHash)
	require.Len(t, result.Curves, 5)

	for _, name := range []string{
		contracts.TableDataQuality,
		contracts.TableCorrelation,
		contracts.TableNormality,
		contracts.TableRegressionSummary,
		contracts.TableRegressionModel,
		contracts.TableRegressionANOVA,
		contracts.TableRegressionCoefficients,
		contracts.TableRegressionForecast,
		contracts.TableARIMACandidates,
		contracts.TableARIMAForecast,
		contracts.TableCombined,
		contracts.TableForecastingResults,
		contracts.TableResultSummary,
		contracts.TableBucket,
		contracts.TablePDScalar,
		contracts.TableRuns,
	} {
		_, err := mem.Read(ctx, name)
		assert.NoError(t, err, name)
	}

	// NOISE is dropped by the correlation gate and never reaches the regression
	model, err := mem.Read(ctx, contracts.TableRegressionModel)
	require.NoError(t, err)
	assert.Equal(t, "UNEMP", model.Text(0, s3_regression.ColPredictors))

	corr, err := mem.Read(ctx, contracts.TableCorrelation)
	require.NoError(t, err)
	require.Equal(t, 2, corr.Len())
	for i := 0; i < corr.Len(); i++ {
		switch corr.Text(i, s1_correlation.ColVariable) {
		case "UNEMP":
			assert.Equal(t, "Pass", corr.Text(i, s1_correlation.ColCorrelationTest))
		case "NOISE":
			assert.Equal(t, "Drop", corr.Text(i, s1_correlation.ColCorrelationTest))
		}
	}

	summary, err := mem.Read(ctx, contracts.TableResultSummary)
	require.NoError(t, err)
	assert.Equal(t, contracts.HistoryLabel, summary.Text(0, s4_timeseries.ColDescription))
	assert.Equal(t, 5, summary.Len())

	scalar, err := mem.Read(ctx, contracts.TablePDScalar)
	require.NoError(t, err)
	assert.Equal(t, 5, scalar.Len())
	assert.Greater(t, result.Totals[0], 0.0)

	runs, err := mem.Read(ctx, contracts.TableRuns)
	require.NoError(t, err)
	require.Equal(t, 1, runs.Len())
	assert.Equal(t, "run_test", runs.Text(0, ColRunID))
	ok, _ := runs.Bool(0, ColSuccess)
	assert.True(t, ok)
	assert.Equal(t, "S0,S1,S2,S3,S4,S5", runs.Text(0, ColStages))
}

func TestRunStageReadsUpstreamTables(t *testing.T) {
	ctx := context.Background()
	mem := seedStore(t)
	o := newOrchestrator(t, mem)

	_, err := o.Run(ctx, RunConfig{Stages: []contracts.Stage{contracts.StageData, contracts.StageCorrelation, contracts.StageNormality}})
	require.NoError(t, err)

	result, err := o.RunStage(ctx, contracts.StageRegression)
	require.NoError(t, err)
	assert.Equal(t, []contracts.Stage{contracts.StageRegression}, result.Summary.Completed)

	result, err = o.RunStage(ctx, contracts.StageTimeSeries)
	require.NoError(t, err)
	assert.Equal(t, []contracts.Stage{contracts.StageTimeSeries}, result.Summary.Completed)

	runs, err := mem.Read(ctx, contracts.TableRuns)
	require.NoError(t, err)
	assert.Equal(t, 3, runs.Len())
}

func TestRunStageWithoutUpstreamFails(t *testing.T) {
	mem := seedStore(t)
	o := newOrchestrator(t, mem)

	_, err := o.RunStage(context.Background(), contracts.StageRegression)
	require.Error(t, err)
	assert.True(t, errors.Is(err, contracts.ErrEmptySource))

	var stageErr *contracts.StageError
	require.True(t, errors.As(err, &stageErr))
	assert.Equal(t, contracts.StageRegression, stageErr.Stage)
}

func TestFailedStageWritesNothing(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	o := newOrchestrator(t, mem)

	result, err := o.Run(ctx, RunConfig{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, contracts.ErrEmptySource))
	assert.False(t, result.Summary.Success)
	assert.Empty(t, result.Summary.Completed)
	require.Len(t, result.Summary.Results, 1)
	assert.False(t, result.Summary.Results[0].Success)

	_, err = mem.Read(ctx, contracts.TableDataQuality)
	assert.True(t, errors.Is(err, contracts.ErrTableNotFound))

	runs, err := mem.Read(ctx, contracts.TableRuns)
	require.NoError(t, err)
	ok, _ := runs.Bool(0, ColSuccess)
	assert.False(t, ok)
	assert.Contains(t, runs.Text(0, ColError), "S0 failed")
}

func TestRerunOnCombinedResults(t *testing.T) {
	ctx := context.Background()
	mem := seedStore(t)
	_, err := newOrchestrator(t, mem).Run(ctx, RunConfig{})
	require.NoError(t, err)

	combined, err := mem.Read(ctx, contracts.TableCombined)
	require.NoError(t, err)
	var names []string
	for _, c := range combined.Columns {
		if c.Name != "Date" {
			names = append(names, c.Name)
		}
	}
	want := s4_timeseries.CandidateVariables(names)
	assert.Contains(t, want, "UNEMP")
	assert.Contains(t, want, contracts.ForecastColumn("UNEMP"))
	for _, derived := range s3_regression.SummaryColumns {
		assert.NotContains(t, want, derived)
	}

	// the target is only observed on history dates of the combined series
	cfg := testConfig(t)
	cfg.Data.Source = contracts.TableCombined
	cfg.Data.MinTargetCoverage = 0.3
	o, err := NewOrchestrator(cfg, mem, Options{})
	require.NoError(t, err)

	_, err = o.Run(ctx, RunConfig{Stages: []contracts.Stage{contracts.StageData, contracts.StageCorrelation}})
	require.NoError(t, err)

	dq, err := mem.Read(ctx, contracts.TableDataQuality)
	require.NoError(t, err)
	var loaded []string
	for i := 0; i < dq.Len(); i++ {
		loaded = append(loaded, dq.Text(i, "Variable"))
	}
	assert.ElementsMatch(t, want, loaded)

	corr, err := mem.Read(ctx, contracts.TableCorrelation)
	require.NoError(t, err)
	evaluated := map[string]bool{}
	for i := 0; i < corr.Len(); i++ {
		name := corr.Text(i, s1_correlation.ColVariable)
		evaluated[name] = true
		assert.Contains(t, want, name)
	}
	assert.True(t, evaluated["UNEMP"])
}

// diskFullStore rejects any write that includes the failOn table
type diskFullStore struct {
	*store.Memory
	failOn string
}

func (s *diskFullStore) Write(ctx context.Context, t *contracts.Table) error {
	return s.WriteAll(ctx, t)
}

func (s *diskFullStore) WriteAll(ctx context.Context, tables ...*contracts.Table) error {
	for _, t := range tables {
		if t.Name == s.failOn {
			return errors.New("disk full")
		}
	}
	return s.Memory.WriteAll(ctx, tables...)
}

func TestFailedWriteKeepsPreviousStageResults(t *testing.T) {
	ctx := context.Background()
	mem := seedStore(t)
	_, err := newOrchestrator(t, mem).Run(ctx, RunConfig{})
	require.NoError(t, err)

	before := map[string]*contracts.Table{}
	for _, name := range []string{
		contracts.TableRegressionSummary,
		contracts.TableRegressionModel,
		contracts.TableRegressionCoefficients,
	} {
		before[name], err = mem.Read(ctx, name)
		require.NoError(t, err)
	}

	// refit with a second predictor; the write of the ANOVA table fails
	cfg := testConfig(t)
	cfg.Regression.Predictors = []string{"UNEMP", "NOISE"}
	failing := &diskFullStore{Memory: mem, failOn: contracts.TableRegressionANOVA}
	o, err := NewOrchestrator(cfg, failing, Options{})
	require.NoError(t, err)

	_, err = o.RunStage(ctx, contracts.StageRegression)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	for name, want := range before {
		got, err := mem.Read(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, want.ColumnNames(), got.ColumnNames(), name)
		assert.Equal(t, want.Len(), got.Len(), name)
	}

	// S4 still projects from the intact one-predictor model
	result, err := newOrchestrator(t, mem).RunStage(ctx, contracts.StageTimeSeries)
	require.NoError(t, err)
	assert.True(t, result.Summary.Success)
}

func TestTimeSeriesRejectsModelWithMissingCoefficient(t *testing.T) {
	ctx := context.Background()
	mem := seedStore(t)
	o := newOrchestrator(t, mem)
	_, err := o.Run(ctx, RunConfig{Stages: []contracts.Stage{
		contracts.StageData, contracts.StageCorrelation, contracts.StageNormality, contracts.StageRegression,
	}})
	require.NoError(t, err)

	// model lists a predictor the coefficient table does not carry
	model, err := mem.Read(ctx, contracts.TableRegressionModel)
	require.NoError(t, err)
	model.Rows[0][2] = "UNEMP,NOISE"
	require.NoError(t, mem.Write(ctx, model))

	_, err = o.RunStage(ctx, contracts.StageTimeSeries)
	require.Error(t, err)
	assert.True(t, errors.Is(err, contracts.ErrInvalidTable))

	_, err = mem.Read(ctx, contracts.TableForecastingResults)
	assert.True(t, errors.Is(err, contracts.ErrTableNotFound))
}

func TestNewOrchestratorRejectsInvalidConfig(t *testing.T) {
	cfg, err := calibration.Default()
	require.NoError(t, err)

	_, err = NewOrchestrator(cfg, store.NewMemory(), Options{})
	assert.Error(t, err)
}

func TestSelectStagesKeepsPipelineOrder(t *testing.T) {
	stages, err := selectStages([]contracts.Stage{contracts.StageScaling, contracts.StageData})
	require.NoError(t, err)
	assert.Equal(t, []contracts.Stage{contracts.StageData, contracts.StageScaling}, stages)

	_, err = selectStages([]contracts.Stage{"S9"})
	assert.Error(t, err)
}

func TestReasonLabel(t *testing.T) {
	assert.Equal(t, "constant_series", reasonLabel("FLAT: "+contracts.ErrConstantSeries.Error()))
	assert.Equal(t, "other", reasonLabel("boom"))
}
