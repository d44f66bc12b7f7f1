package s2_normality

import (
	"fmt"

	"github.com/wonny/pdcal/internal/contracts"
)

// Column names of the normality_results table
const (
	ColVariable    = "Variable"
	ColN           = "N"
	ColKSStatistic = "KS_Statistic"
	ColKSPValue    = "KS_PValue"
	ColKSDF        = "KS_DF"
	ColKSResult    = "KS_Result"
	ColSWStatistic = "SW_Statistic"
	ColSWPValue    = "SW_PValue"
	ColSWDF        = "SW_DF"
	ColSWResult    = "SW_Result"
	ColOverall     = "Overall"
)

// ToTable renders the report as the normality_results table
func ToTable(report *contracts.NormalityReport) (*contracts.Table, error) {
	t := contracts.NewTable(contracts.TableNormality,
		contracts.TextCol(ColVariable),
		contracts.IntCol(ColN),
		contracts.FloatCol(ColKSStatistic),
		contracts.FloatCol(ColKSPValue),
		contracts.IntCol(ColKSDF),
		contracts.TextCol(ColKSResult),
		contracts.FloatCol(ColSWStatistic),
		contracts.FloatCol(ColSWPValue),
		contracts.IntCol(ColSWDF),
		contracts.TextCol(ColSWResult),
		contracts.TextCol(ColOverall),
	)
	for _, r := range report.Results {
		err := t.Append(r.Variable, r.N,
			r.KS.Statistic, r.KS.PValue, r.KS.DF, string(r.KS.Verdict),
			r.SW.Statistic, r.SW.PValue, r.SW.DF, string(r.SW.Verdict),
			string(r.Overall))
		if err != nil {
			return nil, err
		}
	}
	return t, nil
}

// FromTable rebuilds a report from a persisted normality_results table
func FromTable(t *contracts.Table, filter contracts.FilterCriterion) (*contracts.NormalityReport, error) {
	report := &contracts.NormalityReport{Filter: filter}
	for i := 0; i < t.Len(); i++ {
		res := contracts.NormalityResult{Variable: t.Text(i, ColVariable)}
		res.N, _ = t.Int(i, ColN)

		var err error
		if res.KS, err = readOutcome(t, i, ColKSStatistic, ColKSPValue, ColKSDF, ColKSResult); err != nil {
			return nil, err
		}
		if res.SW, err = readOutcome(t, i, ColSWStatistic, ColSWPValue, ColSWDF, ColSWResult); err != nil {
			return nil, err
		}
		if res.Overall, err = contracts.ParseVerdict(t.Text(i, ColOverall)); err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", contracts.ErrInvalidTable, i, err)
		}

		report.Results = append(report.Results, res)
		report.KS.Add(res.KS.Verdict)
		report.SW.Add(res.SW.Verdict)
		report.Overall.Add(res.Overall)
	}
	return report, nil
}

func readOutcome(t *contracts.Table, row int, stat, p, df, verdict string) (contracts.TestOutcome, error) {
	var o contracts.TestOutcome
	o.Statistic, _ = t.Float(row, stat)
	o.PValue, _ = t.Float(row, p)
	o.DF, _ = t.Int(row, df)
	v, err := contracts.ParseVerdict(t.Text(row, verdict))
	if err != nil {
		return o, fmt.Errorf("%w: row %d: %v", contracts.ErrInvalidTable, row, err)
	}
	o.Verdict = v
	return o, nil
}
