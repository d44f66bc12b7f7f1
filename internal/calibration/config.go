package calibration

import "github.com/wonny/pdcal/internal/contracts"

// Config is the full set of calibration parameters of one pipeline run.
// ⭐ SSOT: 캘리브레이션 파라미터는 이 구조체에서만 정의 (YAML)
type Config struct {
	Meta        MetaConfig        `yaml:"meta" json:"meta"`
	Data        DataConfig        `yaml:"data" json:"data"`
	Correlation CorrelationConfig `yaml:"correlation" json:"correlation"`
	Normality   NormalityConfig   `yaml:"normality" json:"normality"`
	Regression  RegressionConfig  `yaml:"regression" json:"regression"`
	TimeSeries  TimeSeriesConfig  `yaml:"timeseries" json:"timeseries"`
	Scaling     ScalingConfig     `yaml:"scaling" json:"scaling"`

	// Workers bounds per-variable and per-candidate parallelism
	Workers int `yaml:"workers" json:"workers" default:"4" validate:"gte=1,lte=64"`
}

type MetaConfig struct {
	Portfolio string `yaml:"portfolio" json:"portfolio" default:"default"`
	Owner     string `yaml:"owner" json:"owner"`
}

type DataConfig struct {
	Source            string  `yaml:"source" json:"source" default:"mev_transformation" validate:"required"`
	BucketSource      string  `yaml:"bucket_source" json:"bucket_source" default:"pd_weighted_average" validate:"required"`
	DateColumn        string  `yaml:"date_column" json:"date_column" default:"Date" validate:"required"`
	Target            string  `yaml:"target" json:"target" default:"ODR" validate:"required"`
	MinTargetCoverage float64 `yaml:"min_target_coverage" json:"min_target_coverage" default:"0.5" validate:"gte=0,lte=1"`
}

type CorrelationConfig struct {
	Threshold float64 `yaml:"threshold" json:"threshold" default:"0.25" validate:"gte=0,lt=1"`
	// Sign has no default: each portfolio states whether its MEVs must move against or with the ODR
	Sign contracts.SignConvention `yaml:"sign" json:"sign" validate:"required,oneof=negative positive"`
}

type NormalityConfig struct {
	Filter contracts.FilterCriterion `yaml:"filter" json:"filter" default:"correlation_test" validate:"oneof=none hypothesis trend correlation_test"`
	PValue float64                   `yaml:"p_value" json:"p_value" default:"0.05" validate:"gt=0,lt=1"`
}

type RegressionConfig struct {
	TargetScale contracts.TargetScale `yaml:"target_scale" json:"target_scale" default:"probability" validate:"oneof=probability logit"`
	Predictors  []string              `yaml:"predictors" json:"predictors"`
	Horizon     int                   `yaml:"horizon" json:"horizon" default:"4" validate:"gte=1,lte=40"`
	StepMonths  int                   `yaml:"step_months" json:"step_months" default:"12" validate:"gte=1,lte=24"`
}

type TimeSeriesConfig struct {
	P             []int    `yaml:"p" json:"p" default:"[0,1,2]" validate:"min=1,dive,gte=0,lte=5"`
	D             []int    `yaml:"d" json:"d" default:"[0,1]" validate:"min=1,dive,gte=0,lte=2"`
	Q             []int    `yaml:"q" json:"q" default:"[0,1,2]" validate:"min=1,dive,gte=0,lte=5"`
	Horizon       int      `yaml:"horizon" json:"horizon" default:"48" validate:"gte=1,lte=240"`
	MaxIterations int      `yaml:"max_iterations" json:"max_iterations" default:"2000" validate:"gte=10"`
	Series        []string `yaml:"series" json:"series"`
}

type ScalingConfig struct {
	Offsets       []float64 `yaml:"offsets" json:"offsets" default:"[-0.3275,0.8772]" validate:"len=2"`
	Tolerance     float64   `yaml:"tolerance" json:"tolerance" default:"1e-6" validate:"gt=0"`
	MaxIterations int       `yaml:"max_iterations" json:"max_iterations" default:"100" validate:"gte=1,lte=100000"`
	StepFraction  float64   `yaml:"step_fraction" json:"step_fraction" default:"0.5" validate:"gt=0,lte=2"`
	InitialGuess  float64   `yaml:"initial_guess" json:"initial_guess"`
	Bound         float64   `yaml:"bound" json:"bound" default:"1e10" validate:"gt=0"`
	Code          string    `yaml:"code" json:"code" default:"MPD"`
	Type          string    `yaml:"type" json:"type" default:"K"`
}
