package contracts

import "time"

// DataQualitySnapshot is the S0 coverage report handed to the later stages
// ⭐ SSOT: S0 → S1 데이터 품질 정보 전달
type DataQualitySnapshot struct {
	AsOf           time.Time          `json:"as_of"`
	Observations   int                `json:"observations"`
	TotalVariables int                `json:"total_variables"`
	Coverage       map[string]float64 `json:"coverage"` // 변수별 비결측 비율
	TargetCoverage float64            `json:"target_coverage"`
	Passed         bool               `json:"passed"`
	Warnings       []string           `json:"warnings,omitempty"`
}

// IsValid checks the minimum requirements for running the gates
func (d *DataQualitySnapshot) IsValid() bool {
	return d.Passed && d.Observations >= 3 && d.TotalVariables > 1
}

// CoverageRate returns the average coverage across variables
func (d *DataQualitySnapshot) CoverageRate() float64 {
	if len(d.Coverage) == 0 {
		return 0.0
	}

	total := 0.0
	for _, rate := range d.Coverage {
		total += rate
	}

	return total / float64(len(d.Coverage))
}
