package s1_correlation

import (
	"fmt"

	"github.com/wonny/pdcal/internal/contracts"
)

// Column names of the correlation_matrix table
const (
	ColNo              = "No"
	ColVariable        = "Variable"
	ColPearson         = "Pearson"
	ColPairs           = "Pairs"
	ColHypothesis      = "Hypothesis"
	ColTrend           = "Trend"
	ColCorrelationTest = "CorrelationTest"
)

// ToTable renders the report as the correlation_matrix table
func ToTable(report *contracts.CorrelationReport) (*contracts.Table, error) {
	t := contracts.NewTable(contracts.TableCorrelation,
		contracts.IntCol(ColNo),
		contracts.TextCol(ColVariable),
		contracts.FloatCol(ColPearson),
		contracts.IntCol(ColPairs),
		contracts.TextCol(ColHypothesis),
		contracts.TextCol(ColTrend),
		contracts.TextCol(ColCorrelationTest),
	)
	for _, r := range report.Results {
		if err := t.Append(r.No, r.Variable, r.Pearson, r.Pairs, string(r.Hypothesis), string(r.Trend), string(r.CorrelationTest)); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// FromTable rebuilds a report from a persisted correlation_matrix table
func FromTable(t *contracts.Table, target string) (*contracts.CorrelationReport, error) {
	report := &contracts.CorrelationReport{Target: target}
	for i := 0; i < t.Len(); i++ {
		res := contracts.CorrelationResult{Variable: t.Text(i, ColVariable)}
		res.No, _ = t.Int(i, ColNo)
		res.Pearson, _ = t.Float(i, ColPearson)
		res.Pairs, _ = t.Int(i, ColPairs)

		var err error
		if res.Hypothesis, err = contracts.ParseVerdict(t.Text(i, ColHypothesis)); err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", contracts.ErrInvalidTable, i, err)
		}
		if res.Trend, err = contracts.ParseVerdict(t.Text(i, ColTrend)); err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", contracts.ErrInvalidTable, i, err)
		}
		if res.CorrelationTest, err = contracts.ParseVerdict(t.Text(i, ColCorrelationTest)); err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", contracts.ErrInvalidTable, i, err)
		}

		report.Results = append(report.Results, res)
		report.Hypothesis.Add(res.Hypothesis)
		report.Trend.Add(res.Trend)
		report.CorrelationTest.Add(res.CorrelationTest)
	}
	return report, nil
}
