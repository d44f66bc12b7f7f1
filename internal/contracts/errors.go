package contracts

import (
	"errors"
	"fmt"
)

// Error kinds shared by all stages.
// Per-item failures (one variable, one ARIMA candidate) are logged and excluded;
// anything else aborts the run as a StageError.
var (
	// ErrInsufficientData: 유효 관측치 부족 (상관 < 3쌍, 모형 적합 불가 등)
	ErrInsufficientData = errors.New("insufficient data")

	// ErrEmptySample: 정규성 검정 표본 n < 2
	ErrEmptySample = errors.New("empty sample")

	// ErrNoUsableRows: 결측 제거 후 행 수 <= 설명변수 수, 또는 설계행렬 특이
	ErrNoUsableRows = errors.New("no usable rows")

	// ErrNonConvergentModel: ARIMA 후보 적합 실패
	ErrNonConvergentModel = errors.New("non-convergent model")

	// ErrUndefinedTransform: logit 정의역 밖 (p <= 0 또는 p >= 1-1e-10)
	ErrUndefinedTransform = errors.New("undefined transform")

	// ErrConstantSeries: 분산 0 시계열
	ErrConstantSeries = errors.New("constant series")

	ErrEmptySource   = errors.New("empty source table")
	ErrNoPredictors  = errors.New("no predictors")
	ErrTableNotFound = errors.New("table not found")
	ErrInvalidTable  = errors.New("invalid table")
)

// StageError wraps a stage-level failure
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Stage.ShortName(), e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// SkippedItem records a per-item failure that was excluded from a stage result
type SkippedItem struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// Skip builds a SkippedItem from an error
func Skip(name string, err error) SkippedItem {
	return SkippedItem{Name: name, Reason: err.Error()}
}

// ReasonCode maps an error to a short label for metrics
func ReasonCode(err error) string {
	switch {
	case errors.Is(err, ErrInsufficientData):
		return "insufficient_data"
	case errors.Is(err, ErrEmptySample):
		return "empty_sample"
	case errors.Is(err, ErrNoUsableRows):
		return "no_usable_rows"
	case errors.Is(err, ErrNonConvergentModel):
		return "non_convergent"
	case errors.Is(err, ErrUndefinedTransform):
		return "undefined_transform"
	case errors.Is(err, ErrConstantSeries):
		return "constant_series"
	default:
		return "other"
	}
}
