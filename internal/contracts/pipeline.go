package contracts

import "time"

// Pipeline Stage 정의 (SSOT)
// 모든 로그, 결과 테이블, 실행 기록에서 이 상수를 사용해야 함
//
// 파이프라인 흐름:
//   S0 → S1 → S2 → S3 → S4 → S5
//   Data  Correlation  Normality  Regression  TimeSeries  Scaling

// Stage represents a calibration pipeline stage
type Stage string

const (
	// StageData S0: 원천 MEV 테이블 로드 및 커버리지 검증
	// 위치: internal/s0_data/
	StageData Stage = "S0_DATA"

	// StageCorrelation S1: 타깃 대비 Pearson 상관 게이트
	// 위치: internal/s1_correlation/
	StageCorrelation Stage = "S1_CORRELATION"

	// StageNormality S2: KS / Shapiro-Wilk 정규성 게이트
	// 위치: internal/s2_normality/
	StageNormality Stage = "S2_NORMALITY"

	// StageRegression S3: logit(ODR) OLS 적합 및 예측
	// 위치: internal/s3_regression/
	StageRegression Stage = "S3_REGRESSION"

	// StageTimeSeries S4: ARIMA 그리드 탐색, 48개월 예측, 결합 테이블
	// 위치: internal/s4_timeseries/
	StageTimeSeries Stage = "S4_TIMESERIES"

	// StageScaling S5: TTC → PIT 변환, goal-seek, 월별 PD 커브
	// 위치: internal/s5_scaling/
	StageScaling Stage = "S5_SCALING"
)

// String returns the stage name
func (s Stage) String() string {
	return string(s)
}

// ShortName returns abbreviated stage name (e.g., "S0", "S1")
func (s Stage) ShortName() string {
	switch s {
	case StageData:
		return "S0"
	case StageCorrelation:
		return "S1"
	case StageNormality:
		return "S2"
	case StageRegression:
		return "S3"
	case StageTimeSeries:
		return "S4"
	case StageScaling:
		return "S5"
	default:
		return "UNKNOWN"
	}
}

// Description returns a human-readable description of the stage
func (s Stage) Description() string {
	switch s {
	case StageData:
		return "variable table load and coverage check"
	case StageCorrelation:
		return "correlation gate"
	case StageNormality:
		return "normality gate"
	case StageRegression:
		return "logit OLS regression"
	case StageTimeSeries:
		return "ARIMA selection and forecast"
	case StageScaling:
		return "PIT/TTC reconciliation"
	default:
		return "unknown"
	}
}

// AllStages returns all pipeline stages in order
func AllStages() []Stage {
	return []Stage{
		StageData,
		StageCorrelation,
		StageNormality,
		StageRegression,
		StageTimeSeries,
		StageScaling,
	}
}

// ParseStage accepts either the full name ("S3_REGRESSION") or the short name ("S3")
func ParseStage(s string) (Stage, bool) {
	for _, stage := range AllStages() {
		if string(stage) == s || stage.ShortName() == s {
			return stage, true
		}
	}
	return "", false
}

// PipelineResult represents the result of a pipeline stage execution
type PipelineResult struct {
	Stage       Stage                  `json:"stage"`
	Success     bool                   `json:"success"`
	InputCount  int                    `json:"input_count"`
	OutputCount int                    `json:"output_count"`
	Duration    int64                  `json:"duration_ms"`
	Error       string                 `json:"error,omitempty"`
	Tables      []string               `json:"tables,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

// RunSummary is the record of one calibration run
type RunSummary struct {
	RunID      string           `json:"run_id"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
	ConfigHash string           `json:"config_hash"`
	Completed  []Stage          `json:"completed"`
	Results    []PipelineResult `json:"results"`
	Success    bool             `json:"success"`
	Error      string           `json:"error,omitempty"`
}
