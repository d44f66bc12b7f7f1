package quality

import (
	"fmt"
	"sort"

	"github.com/wonny/pdcal/internal/contracts"
)

// QualityGate checks variable coverage before the gates run
type QualityGate struct {
	config Config
}

// Config holds quality gate thresholds
type Config struct {
	Target            string  `yaml:"target"`
	MinTargetCoverage float64 `yaml:"min_target_coverage"` // 0.5
	MinObservations   int     `yaml:"min_observations"`    // 3
	WarnCoverage      float64 `yaml:"warn_coverage"`       // 0.8
}

// NewQualityGate creates a new QualityGate instance
func NewQualityGate(config Config) *QualityGate {
	if config.MinObservations == 0 {
		config.MinObservations = 3
	}
	if config.WarnCoverage == 0 {
		config.WarnCoverage = 0.8
	}
	return &QualityGate{config: config}
}

// Check builds the coverage snapshot of a variable table
// ⭐ SSOT: S0 → S1 품질 검증
func (g *QualityGate) Check(vt *contracts.VariableTable) *contracts.DataQualitySnapshot {
	snapshot := &contracts.DataQualitySnapshot{
		AsOf:           vt.LastDate(),
		Observations:   vt.Len(),
		TotalVariables: len(vt.Names()),
		Coverage:       make(map[string]float64),
	}

	for _, name := range vt.Names() {
		snapshot.Coverage[name] = vt.Coverage(name)
	}

	if !vt.Has(g.config.Target) {
		snapshot.Warnings = append(snapshot.Warnings, fmt.Sprintf("target %q not found", g.config.Target))
		return snapshot
	}
	snapshot.TargetCoverage = snapshot.Coverage[g.config.Target]

	// 변수별 커버리지 경고 (이름순, 재현성)
	names := vt.Names()
	sort.Strings(names)
	for _, name := range names {
		if c := snapshot.Coverage[name]; c < g.config.WarnCoverage {
			snapshot.Warnings = append(snapshot.Warnings, fmt.Sprintf("%s coverage %.1f%%", name, c*100))
		}
	}

	snapshot.Passed = snapshot.TargetCoverage >= g.config.MinTargetCoverage &&
		snapshot.Observations >= g.config.MinObservations
	return snapshot
}
