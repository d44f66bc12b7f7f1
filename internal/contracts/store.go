package contracts

import (
	"context"
	"time"
)

// Table names
// ⭐ SSOT: 결과 테이블 이름은 여기서만 정의
const (
	TableMEV               = "mev_transformation"
	TablePDWeightedAverage = "pd_weighted_average"

	TableDataQuality            = "data_quality"
	TableCorrelation            = "correlation_matrix"
	TableNormality              = "normality_results"
	TableRegressionSummary      = "regression_summary"
	TableRegressionModel        = "regression_model"
	TableRegressionANOVA        = "regression_anova"
	TableRegressionCoefficients = "regression_coefficients"
	TableRegressionForecast     = "regression_forecast"
	TableARIMACandidates        = "arima_candidates"
	TableARIMAForecast          = "arima_forecast"
	TableCombined               = "combined_results"
	TableForecastingResults     = "forecasting_results"
	TableResultSummary          = "result_summary"
	TableBucket                 = "bucket"
	TablePDScalar               = "pd_scalar"
	TableRuns                   = "calibration_runs"
)

// TableReader reads a persisted table. A missing table returns ErrTableNotFound.
type TableReader interface {
	Read(ctx context.Context, name string) (*Table, error)
}

// TableWriter persists tables, replacing any previous content atomically.
// WriteAll replaces every given table or none of them.
// Writers do not coordinate concurrent runs: callers serialise runs against one store.
type TableWriter interface {
	Write(ctx context.Context, t *Table) error
	WriteAll(ctx context.Context, tables ...*Table) error
}

// TableInfo describes a stored table
type TableInfo struct {
	Name      string    `json:"name"`
	Rows      int       `json:"rows"`
	Columns   []Column  `json:"columns"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableStore is the storage contract every stage depends on
type TableStore interface {
	TableReader
	TableWriter
	List(ctx context.Context) ([]TableInfo, error)
}
