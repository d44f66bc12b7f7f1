package contracts

import "context"

// VariableLoader builds the variable table from a source table (S0)
// ⭐ SSOT: S0 입력 로드 인터페이스
type VariableLoader interface {
	Load(ctx context.Context, source string) (*VariableTable, error)
}

// CorrelationGate scores candidates against the target (S1)
// ⭐ SSOT: S1 상관 게이트 인터페이스
type CorrelationGate interface {
	Evaluate(ctx context.Context, vt *VariableTable) (*CorrelationReport, error)
}

// NormalityGate tests admitted variables for normality (S2).
// corr may be nil when the filter criterion is FilterNone.
type NormalityGate interface {
	Evaluate(ctx context.Context, vt *VariableTable, corr *CorrelationReport) (*NormalityReport, error)
}

// RegressionEngine fits logit(target) on the predictors (S3)
type RegressionEngine interface {
	Fit(ctx context.Context, vt *VariableTable, predictors []string) (*RegressionModel, error)
}

// TimeSeriesSelector grid-searches ARIMA orders and forecasts each series (S4)
type TimeSeriesSelector interface {
	Select(ctx context.Context, history *Table, series []string) (*TimeSeriesReport, error)
}

// Reconciler converts TTC buckets to PIT and solves the per-bucket scalars (S5).
// targets may be nil, in which case only the fixed-offset conversion is applied.
type Reconciler interface {
	Reconcile(ctx context.Context, buckets []Bucket, targets *AggregateTargets) ([]ScalingFactor, []MonthlyCurve, error)
}
