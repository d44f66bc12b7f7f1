package brain

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/pdcal/internal/calibration"
	"github.com/wonny/pdcal/internal/contracts"
	"github.com/wonny/pdcal/internal/s0_data"
	"github.com/wonny/pdcal/internal/s0_data/quality"
	"github.com/wonny/pdcal/internal/s1_correlation"
	"github.com/wonny/pdcal/internal/s2_normality"
	"github.com/wonny/pdcal/internal/s3_regression"
	"github.com/wonny/pdcal/internal/s4_timeseries"
	"github.com/wonny/pdcal/internal/s5_scaling"
	"github.com/wonny/pdcal/pkg/logger"
	"github.com/wonny/pdcal/pkg/metrics"
)

// Orchestrator coordinates the S0-S5 calibration pipeline
// ⭐ SSOT: 파이프라인 조율은 여기서만
type Orchestrator struct {
	config     *calibration.Config
	configHash string
	store      contracts.TableStore

	loader      contracts.VariableLoader
	buckets     *s0_data.BucketSource
	qualityGate *quality.QualityGate
	correlation contracts.CorrelationGate
	normality   contracts.NormalityGate
	regression  contracts.RegressionEngine
	selector    contracts.TimeSeriesSelector
	reconciler  contracts.Reconciler

	metrics  *metrics.Recorder
	reporter contracts.Reporter
	logger   *logger.Logger
}

// Options carries the optional collaborators of the orchestrator
type Options struct {
	Metrics  *metrics.Recorder
	Reporter contracts.Reporter
	Logger   *logger.Logger
}

// NewOrchestrator wires every stage from a validated calibration config
func NewOrchestrator(cfg *calibration.Config, store contracts.TableStore, opts Options) (*Orchestrator, error) {
	if err := calibration.Validate(cfg); err != nil {
		return nil, err
	}
	hash, err := calibration.Hash(cfg)
	if err != nil {
		return nil, fmt.Errorf("hash calibration config: %w", err)
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	if opts.Reporter == nil {
		opts.Reporter = contracts.NopReporter{}
	}
	zlog := opts.Logger.Zerolog()

	solver := s5_scaling.SolverConfig{
		Tolerance:     cfg.Scaling.Tolerance,
		MaxIterations: cfg.Scaling.MaxIterations,
		StepFraction:  cfg.Scaling.StepFraction,
		InitialGuess:  cfg.Scaling.InitialGuess,
		Bound:         cfg.Scaling.Bound,
	}
	var offsets [contracts.Horizons]float64
	copy(offsets[:], cfg.Scaling.Offsets)

	return &Orchestrator{
		config:     cfg,
		configHash: hash,
		store:      store,
		loader:     s0_data.NewLoader(store, cfg.Data.DateColumn, zlog),
		buckets:    s0_data.NewBucketSource(store, zlog),
		qualityGate: quality.NewQualityGate(quality.Config{
			Target:            cfg.Data.Target,
			MinTargetCoverage: cfg.Data.MinTargetCoverage,
		}),
		correlation: s1_correlation.NewGate(s1_correlation.Config{
			Target:    cfg.Data.Target,
			Threshold: cfg.Correlation.Threshold,
			Sign:      cfg.Correlation.Sign,
			Workers:   cfg.Workers,
		}, zlog),
		normality: s2_normality.NewGate(s2_normality.Config{
			Target:  cfg.Data.Target,
			Filter:  cfg.Normality.Filter,
			PValue:  cfg.Normality.PValue,
			Workers: cfg.Workers,
		}, zlog),
		regression: s3_regression.NewEngine(s3_regression.Config{
			Target:     cfg.Data.Target,
			Scale:      cfg.Regression.TargetScale,
			Horizon:    cfg.Regression.Horizon,
			StepMonths: cfg.Regression.StepMonths,
		}, zlog),
		selector: s4_timeseries.NewSelector(s4_timeseries.Config{
			DateColumn:    cfg.Data.DateColumn,
			P:             cfg.TimeSeries.P,
			D:             cfg.TimeSeries.D,
			Q:             cfg.TimeSeries.Q,
			Horizon:       cfg.TimeSeries.Horizon,
			MaxIterations: cfg.TimeSeries.MaxIterations,
			Workers:       cfg.Workers,
		}, zlog),
		reconciler: s5_scaling.NewReconciler(s5_scaling.Config{Offsets: offsets, Solver: solver}, zlog),
		metrics:    opts.Metrics,
		reporter:   opts.Reporter,
		logger:     opts.Logger,
	}, nil
}

// ConfigHash returns the SHA-256 of the effective calibration config
func (o *Orchestrator) ConfigHash() string {
	return o.configHash
}

// RunConfig holds configuration for one pipeline run
type RunConfig struct {
	RunID string
	// Stages limits the run to these stages (in pipeline order). Empty runs all.
	// Inputs of a skipped upstream stage are read back from the store.
	Stages []contracts.Stage
}

// RunResult holds the result of one pipeline run
type RunResult struct {
	Summary contracts.RunSummary
	Curves  []contracts.MonthlyCurve
	Totals  [contracts.Horizons * contracts.MonthsPerHorizon]float64
	Error   error
}

// state carries stage outputs forward within one run
type state struct {
	vt          *contracts.VariableTable
	correlation *contracts.CorrelationReport
	normality   *contracts.NormalityReport
	model       *contracts.RegressionModel
	summary     *contracts.Table
	results     []contracts.SummaryRow
	curves      []contracts.MonthlyCurve
}

// stageOutput is what one stage hands back before anything is written
type stageOutput struct {
	input, output int
	tables        []*contracts.Table
	metadata      map[string]interface{}
}

type stageFunc func(ctx context.Context, st *state) (*stageOutput, error)

// Run executes the pipeline stages sequentially.
// A failed stage writes nothing and aborts the run with a StageError.
func (o *Orchestrator) Run(ctx context.Context, config RunConfig) (*RunResult, error) {
	if config.RunID == "" {
		config.RunID = GenerateRunID()
	}
	stages, err := selectStages(config.Stages)
	if err != nil {
		return nil, err
	}

	startTime := time.Now()
	result := &RunResult{
		Summary: contracts.RunSummary{
			RunID:      config.RunID,
			StartedAt:  startTime,
			ConfigHash: o.configHash,
		},
	}

	runLog := o.logger.WithFields(map[string]interface{}{
		"run_id":      config.RunID,
		"config_hash": o.configHash[:12],
		"portfolio":   o.config.Meta.Portfolio,
	})
	runLog.Infof("Starting calibration run (%d stages)", len(stages))

	st := &state{}
	for _, stage := range stages {
		pr, err := o.runStage(ctx, stage, st)
		result.Summary.Results = append(result.Summary.Results, pr)
		if err != nil {
			result.Error = err
			result.Summary.Error = err.Error()
			break
		}
		result.Summary.Completed = append(result.Summary.Completed, stage)
	}

	result.Summary.FinishedAt = time.Now()
	result.Summary.Success = result.Error == nil
	result.Curves = st.curves
	if len(st.curves) > 0 {
		result.Totals = s5_scaling.Totals(st.curves)
	}

	if err := o.recordRun(ctx, result.Summary); err != nil {
		runLog.WithError(err).Warn("Failed to record calibration run")
	}

	if result.Error != nil {
		runLog.WithError(result.Error).Error("Calibration run failed")
		return result, result.Error
	}

	o.metrics.MarkRunSucceeded(result.Summary.FinishedAt)
	runLog.WithFields(map[string]interface{}{
		"duration": result.Summary.FinishedAt.Sub(startTime).Seconds(),
		"stages":   len(result.Summary.Completed),
	}).Info("Calibration run completed successfully")

	return result, nil
}

// RunStage executes a single stage, reading its inputs from the store
func (o *Orchestrator) RunStage(ctx context.Context, stage contracts.Stage) (*RunResult, error) {
	return o.Run(ctx, RunConfig{Stages: []contracts.Stage{stage}})
}

func selectStages(requested []contracts.Stage) ([]contracts.Stage, error) {
	if len(requested) == 0 {
		return contracts.AllStages(), nil
	}
	want := make(map[contracts.Stage]bool, len(requested))
	for _, s := range requested {
		if s.ShortName() == "UNKNOWN" {
			return nil, fmt.Errorf("unknown stage %q", s)
		}
		want[s] = true
	}
	var out []contracts.Stage
	for _, s := range contracts.AllStages() {
		if want[s] {
			out = append(out, s)
		}
	}
	return out, nil
}

func (o *Orchestrator) stageFunc(stage contracts.Stage) stageFunc {
	switch stage {
	case contracts.StageData:
		return o.runS0
	case contracts.StageCorrelation:
		return o.runS1
	case contracts.StageNormality:
		return o.runS2
	case contracts.StageRegression:
		return o.runS3
	case contracts.StageTimeSeries:
		return o.runS4
	default:
		return o.runS5
	}
}

// runStage times one stage, then persists its tables only when it succeeded
func (o *Orchestrator) runStage(ctx context.Context, stage contracts.Stage, st *state) (contracts.PipelineResult, error) {
	o.logger.Infof("Running %s: %s", stage.ShortName(), stage.Description())
	o.reporter.Progress(stage, stage.Description())

	start := time.Now()
	out, err := o.stageFunc(stage)(ctx, st)
	if err == nil {
		err = o.writeTables(ctx, stage, out.tables)
	}
	elapsed := time.Since(start)
	o.metrics.ObserveStage(stage.ShortName(), elapsed, err)

	pr := contracts.PipelineResult{
		Stage:    stage,
		Success:  err == nil,
		Duration: elapsed.Milliseconds(),
	}
	if err != nil {
		stageErr := &contracts.StageError{Stage: stage, Err: err}
		pr.Error = stageErr.Error()
		o.reporter.Progress(stage, pr.Error)
		return pr, stageErr
	}

	pr.InputCount = out.input
	pr.OutputCount = out.output
	pr.Metadata = out.metadata
	for _, t := range out.tables {
		pr.Tables = append(pr.Tables, t.Name)
	}

	o.logger.WithFields(map[string]interface{}{
		"stage":  stage.ShortName(),
		"input":  out.input,
		"output": out.output,
		"tables": len(out.tables),
	}).Infof("%s completed", stage.ShortName())
	return pr, nil
}

// writeTables replaces the stage's whole result set in one WriteAll
func (o *Orchestrator) writeTables(ctx context.Context, stage contracts.Stage, tables []*contracts.Table) error {
	if len(tables) == 0 {
		return nil
	}
	if err := o.store.WriteAll(ctx, tables...); err != nil {
		names := make([]string, len(tables))
		for i, t := range tables {
			names[i] = t.Name
		}
		return fmt.Errorf("write %s: %w", strings.Join(names, ","), err)
	}
	for _, t := range tables {
		o.reporter.Table(stage, t)
	}
	return nil
}

// runS0 executes S0: variable table load and quality gate
func (o *Orchestrator) runS0(ctx context.Context, st *state) (*stageOutput, error) {
	vt, err := o.loadVariables(ctx)
	if err != nil {
		return nil, err
	}

	snapshot := o.qualityGate.Check(vt)
	for _, w := range snapshot.Warnings {
		o.logger.Warnf("S0 quality: %s", w)
	}
	if !snapshot.IsValid() {
		return nil, fmt.Errorf("%w: quality gate failed: target coverage=%.2f observations=%d",
			contracts.ErrInsufficientData, snapshot.TargetCoverage, snapshot.Observations)
	}

	qualityTable, err := quality.ToTable(snapshot)
	if err != nil {
		return nil, err
	}

	st.vt = vt
	return &stageOutput{
		input:  vt.Len(),
		output: snapshot.TotalVariables,
		tables: []*contracts.Table{qualityTable},
		metadata: map[string]interface{}{
			"as_of":           snapshot.AsOf.Format(contracts.DateLayout),
			"target_coverage": snapshot.TargetCoverage,
			"coverage_rate":   snapshot.CoverageRate(),
		},
	}, nil
}

// runS1 executes S1: correlation gate
func (o *Orchestrator) runS1(ctx context.Context, st *state) (*stageOutput, error) {
	vt, err := o.variables(ctx, st)
	if err != nil {
		return nil, err
	}

	report, err := o.correlation.Evaluate(ctx, vt)
	if err != nil {
		return nil, fmt.Errorf("correlation gate: %w", err)
	}
	o.metrics.RecordVerdicts("correlation", "hypothesis", report.Hypothesis.Pass, report.Hypothesis.Drop)
	o.metrics.RecordVerdicts("correlation", "trend", report.Trend.Pass, report.Trend.Drop)
	o.metrics.RecordVerdicts("correlation", "correlation_test", report.CorrelationTest.Pass, report.CorrelationTest.Drop)
	o.recordSkipped(contracts.StageCorrelation, report.Skipped)

	t, err := s1_correlation.ToTable(report)
	if err != nil {
		return nil, err
	}

	st.correlation = report
	return &stageOutput{
		input:  len(vt.Names()) - 1,
		output: report.CorrelationTest.Pass,
		tables: []*contracts.Table{t},
		metadata: map[string]interface{}{
			"hypothesis_pass": report.Hypothesis.Pass,
			"trend_pass":      report.Trend.Pass,
			"skipped":         len(report.Skipped),
		},
	}, nil
}

// runS2 executes S2: normality gate
func (o *Orchestrator) runS2(ctx context.Context, st *state) (*stageOutput, error) {
	vt, err := o.variables(ctx, st)
	if err != nil {
		return nil, err
	}
	var corr *contracts.CorrelationReport
	if o.config.Normality.Filter != contracts.FilterNone {
		if corr, err = o.correlationReport(ctx, st); err != nil {
			return nil, err
		}
	}

	report, err := o.normality.Evaluate(ctx, vt, corr)
	if err != nil {
		return nil, fmt.Errorf("normality gate: %w", err)
	}
	o.metrics.RecordVerdicts("normality", "ks", report.KS.Pass, report.KS.Drop)
	o.metrics.RecordVerdicts("normality", "sw", report.SW.Pass, report.SW.Drop)
	o.metrics.RecordVerdicts("normality", "overall", report.Overall.Pass, report.Overall.Drop)
	o.recordSkipped(contracts.StageNormality, report.Skipped)

	t, err := s2_normality.ToTable(report)
	if err != nil {
		return nil, err
	}

	st.normality = report
	return &stageOutput{
		input:  len(report.Results) + len(report.Skipped),
		output: report.Overall.Pass,
		tables: []*contracts.Table{t},
		metadata: map[string]interface{}{
			"filter":  string(report.Filter),
			"skipped": len(report.Skipped),
		},
	}, nil
}

// runS3 executes S3: logit OLS regression.
// Configured predictors win; otherwise every variable that passed S2.
func (o *Orchestrator) runS3(ctx context.Context, st *state) (*stageOutput, error) {
	vt, err := o.variables(ctx, st)
	if err != nil {
		return nil, err
	}

	predictors := o.config.Regression.Predictors
	if len(predictors) == 0 {
		norm, err := o.normalityReport(ctx, st)
		if err != nil {
			return nil, err
		}
		for _, name := range norm.Passing() {
			if name != o.config.Data.Target {
				predictors = append(predictors, name)
			}
		}
	}

	model, err := o.regression.Fit(ctx, vt, predictors)
	if err != nil {
		return nil, fmt.Errorf("regression: %w", err)
	}
	tables, err := s3_regression.Tables(model, vt, o.config.Data.DateColumn)
	if err != nil {
		return nil, err
	}

	st.model = model
	st.summary = tables[0]
	return &stageOutput{
		input:  len(predictors),
		output: model.Fit.Observations,
		tables: tables,
		metadata: map[string]interface{}{
			"predictors": model.Predictors,
			"r_squared":  model.Fit.RSquared,
			"rmse":       model.Fit.RMSE,
		},
	}, nil
}

// runS4 executes S4: ARIMA selection, combined table and projection
func (o *Orchestrator) runS4(ctx context.Context, st *state) (*stageOutput, error) {
	model, summary, err := o.regressionOutputs(ctx, st)
	if err != nil {
		return nil, err
	}
	dateColumn := o.config.Data.DateColumn

	series := o.config.TimeSeries.Series
	if len(series) == 0 {
		series = s3_regression.SeriesColumns(summary)
	}

	report, err := o.selector.Select(ctx, summary, series)
	if err != nil {
		return nil, fmt.Errorf("arima selection: %w", err)
	}
	for _, f := range report.Forecasts {
		o.metrics.RecordSelectedRMSE(f.Model.Series, f.Model.RMSE)
	}
	o.recordSkipped(contracts.StageTimeSeries, report.Skipped)

	candidates, err := s4_timeseries.CandidatesTable(report)
	if err != nil {
		return nil, err
	}
	forecast, err := s4_timeseries.ForecastTable(report, dateColumn)
	if err != nil {
		return nil, err
	}
	combined, err := s4_timeseries.Combine(contracts.TableCombined, dateColumn, summary, forecast)
	if err != nil {
		return nil, fmt.Errorf("combine: %w", err)
	}

	rows, err := s4_timeseries.Project(model, combined, dateColumn)
	if err != nil {
		return nil, fmt.Errorf("projection: %w", err)
	}
	results := s4_timeseries.Summarize(rows)
	projection, err := s4_timeseries.ProjectionTable(rows, dateColumn)
	if err != nil {
		return nil, err
	}
	resultSummary, err := s4_timeseries.SummaryTable(results)
	if err != nil {
		return nil, err
	}

	st.results = results
	return &stageOutput{
		input:  len(series),
		output: len(report.Forecasts),
		tables: []*contracts.Table{candidates, forecast, combined, projection, resultSummary},
		metadata: map[string]interface{}{
			"candidates": len(report.Candidates),
			"skipped":    len(report.Skipped),
			"horizon":    o.config.TimeSeries.Horizon,
		},
	}, nil
}

// runS5 executes S5: TTC → PIT conversion and per-bucket reconciliation
func (o *Orchestrator) runS5(ctx context.Context, st *state) (*stageOutput, error) {
	vt, err := o.variables(ctx, st)
	if err != nil {
		return nil, err
	}
	reportingDate := s0_data.ReportingDateFor(vt.LastDate())

	buckets, err := o.buckets.Load(ctx, o.config.Data.BucketSource, s0_data.BucketFilter{
		ReportingDate: reportingDate,
		Code:          o.config.Scaling.Code,
		Type:          o.config.Scaling.Type,
	})
	if err != nil {
		return nil, fmt.Errorf("load buckets: %w", err)
	}

	// 집계 목표가 없으면 고정 오프셋 변환만 적용 (경고)
	targets, err := o.aggregateTargets(ctx, st)
	if err != nil {
		o.logger.WithError(err).Warn("S5: aggregate targets unavailable")
		targets = nil
	}

	factors, curves, err := o.reconciler.Reconcile(ctx, buckets, targets)
	if err != nil {
		return nil, fmt.Errorf("reconcile: %w", err)
	}
	fallbacks := 0
	for _, f := range factors {
		if f.Reason != s5_scaling.ReasonNoTarget {
			o.metrics.RecordSolver(strconv.Itoa(f.Horizon), f.Iterations, f.Converged, f.Reason)
		}
		if f.Fallback {
			fallbacks++
		}
	}

	converted := s5_scaling.ConvertBuckets(buckets, o.offsets())
	bucketTable, err := s5_scaling.BucketTable(converted, factors)
	if err != nil {
		return nil, err
	}
	scalar, err := s5_scaling.PDScalarTable(curves)
	if err != nil {
		return nil, err
	}

	totals := s5_scaling.Totals(curves)
	o.logger.WithFields(map[string]interface{}{
		"reporting_date": reportingDate.Format(contracts.DateLayout),
		"m1_total":       totals[0],
		"m13_total":      totals[contracts.MonthsPerHorizon],
	}).Info("S5 bucket totals")

	st.curves = curves
	return &stageOutput{
		input:  len(buckets),
		output: len(curves),
		tables: []*contracts.Table{bucketTable, scalar},
		metadata: map[string]interface{}{
			"reporting_date": reportingDate.Format(contracts.DateLayout),
			"targets":        targets != nil,
			"fallbacks":      fallbacks,
		},
	}, nil
}

func (o *Orchestrator) offsets() [contracts.Horizons]float64 {
	var offsets [contracts.Horizons]float64
	copy(offsets[:], o.config.Scaling.Offsets)
	return offsets
}

func (o *Orchestrator) recordSkipped(stage contracts.Stage, skipped []contracts.SkippedItem) {
	for _, s := range skipped {
		o.metrics.RecordSkipped(stage.ShortName(), reasonLabel(s.Reason))
	}
}

// reasonLabel maps a skip reason back to its metric label
func reasonLabel(reason string) string {
	for _, kind := range []error{
		contracts.ErrInsufficientData,
		contracts.ErrEmptySample,
		contracts.ErrNoUsableRows,
		contracts.ErrNonConvergentModel,
		contracts.ErrUndefinedTransform,
		contracts.ErrConstantSeries,
	} {
		if strings.Contains(reason, kind.Error()) {
			return contracts.ReasonCode(kind)
		}
	}
	return "other"
}

// variables returns the S0 table of this run, loading it when S0 did not run
func (o *Orchestrator) variables(ctx context.Context, st *state) (*contracts.VariableTable, error) {
	if st.vt != nil {
		return st.vt, nil
	}
	vt, err := o.loadVariables(ctx)
	if err != nil {
		return nil, err
	}
	st.vt = vt
	return vt, nil
}

// loadVariables reads the configured source. A combined_results source (re-run on the
// previous run's combined series) keeps only its candidate variables.
func (o *Orchestrator) loadVariables(ctx context.Context) (*contracts.VariableTable, error) {
	vt, err := o.loader.Load(ctx, o.config.Data.Source)
	if err != nil {
		return nil, fmt.Errorf("load variables: %w", err)
	}
	if o.config.Data.Source != contracts.TableCombined {
		return vt, nil
	}
	candidates, err := vt.Select(s4_timeseries.CandidateVariables(vt.Names())...)
	if err != nil {
		return nil, fmt.Errorf("select candidate variables: %w", err)
	}
	return candidates, nil
}

func (o *Orchestrator) correlationReport(ctx context.Context, st *state) (*contracts.CorrelationReport, error) {
	if st.correlation != nil {
		return st.correlation, nil
	}
	t, err := o.read(ctx, contracts.TableCorrelation)
	if err != nil {
		return nil, err
	}
	report, err := s1_correlation.FromTable(t, o.config.Data.Target)
	if err != nil {
		return nil, err
	}
	st.correlation = report
	return report, nil
}

func (o *Orchestrator) normalityReport(ctx context.Context, st *state) (*contracts.NormalityReport, error) {
	if st.normality != nil {
		return st.normality, nil
	}
	t, err := o.read(ctx, contracts.TableNormality)
	if err != nil {
		return nil, err
	}
	report, err := s2_normality.FromTable(t, o.config.Normality.Filter)
	if err != nil {
		return nil, err
	}
	st.normality = report
	return report, nil
}

func (o *Orchestrator) regressionOutputs(ctx context.Context, st *state) (*contracts.RegressionModel, *contracts.Table, error) {
	if st.model != nil && st.summary != nil {
		return st.model, st.summary, nil
	}
	summary, err := o.read(ctx, contracts.TableRegressionSummary)
	if err != nil {
		return nil, nil, err
	}
	modelTable, err := o.read(ctx, contracts.TableRegressionModel)
	if err != nil {
		return nil, nil, err
	}
	coefficients, err := o.read(ctx, contracts.TableRegressionCoefficients)
	if err != nil {
		return nil, nil, err
	}
	model, err := s3_regression.ModelFromTables(modelTable, coefficients)
	if err != nil {
		return nil, nil, err
	}
	st.model, st.summary = model, summary
	return model, summary, nil
}

func (o *Orchestrator) aggregateTargets(ctx context.Context, st *state) (*contracts.AggregateTargets, error) {
	rows := st.results
	if rows == nil {
		t, err := o.read(ctx, contracts.TableResultSummary)
		if err != nil {
			return nil, err
		}
		rows = s4_timeseries.SummaryFromTable(t)
	}
	return s5_scaling.AggregateTargetsFromSummary(rows)
}

// read loads an upstream table; a missing one means the stage that writes it has not run
func (o *Orchestrator) read(ctx context.Context, name string) (*contracts.Table, error) {
	t, err := o.store.Read(ctx, name)
	if errors.Is(err, contracts.ErrTableNotFound) {
		return nil, fmt.Errorf("%w: %s (run the upstream stage first)", contracts.ErrEmptySource, name)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return t, nil
}

// GenerateRunID generates a unique run ID
func GenerateRunID() string {
	return fmt.Sprintf("run_%s_%s", time.Now().Format("20060102_150405"), uuid.NewString()[:8])
}
