package s5_scaling

import (
	"fmt"

	"github.com/wonny/pdcal/internal/contracts"
)

// Column names shared by the bucket and pd_scalar tables
const (
	ColReportingDate = "Reporting_Date"
	ColBucket        = "Bucket"
	ColDescription   = "Description"
)

func horizonCol(name string, h int) string {
	return fmt.Sprintf("%s_%d", name, h+1)
}

func monthCol(m int) string {
	return fmt.Sprintf("M%d", m+1)
}

var bucketMeasures = []string{
	"TTC", "LogitTTC", "LogitPIT", "PITRaw", "PIT",
	"MarginalScaling", "Target", "Scalar", "Reconciled", "Residual",
}

// BucketTable renders every intermediate value per bucket and horizon
func BucketTable(buckets []contracts.Bucket, factors []contracts.ScalingFactor) (*contracts.Table, error) {
	cols := []contracts.Column{contracts.DateCol(ColReportingDate), contracts.IntCol(ColBucket), contracts.TextCol(ColDescription)}
	for _, m := range bucketMeasures {
		for h := 0; h < contracts.Horizons; h++ {
			cols = append(cols, contracts.FloatCol(horizonCol(m, h)))
		}
	}
	for h := 0; h < contracts.Horizons; h++ {
		cols = append(cols,
			contracts.IntCol(horizonCol("Iterations", h)),
			contracts.BoolCol(horizonCol("Converged", h)),
			contracts.TextCol(horizonCol("Reason", h)),
			contracts.BoolCol(horizonCol("Fallback", h)),
		)
	}
	t := contracts.NewTable(contracts.TableBucket, cols...)

	type key struct{ bucket, horizon int }
	byKey := make(map[key]contracts.ScalingFactor, len(factors))
	for _, f := range factors {
		byKey[key{f.Bucket, f.Horizon}] = f
	}

	for _, b := range buckets {
		var f [contracts.Horizons]contracts.ScalingFactor
		for h := range f {
			f[h] = byKey[key{b.Ordinal, h + 1}]
		}
		values := []interface{}{b.ReportingDate, b.Ordinal, contracts.BucketDescription(b.Ordinal)}
		measures := [][contracts.Horizons]float64{
			b.TTC, b.LogitTTC, b.LogitPIT, b.PITRaw, b.PIT,
			{f[0].MarginalScaling, f[1].MarginalScaling},
			{f[0].Target, f[1].Target},
			{f[0].Scalar, f[1].Scalar},
			{f[0].Reconciled, f[1].Reconciled},
			{f[0].Residual, f[1].Residual},
		}
		for _, m := range measures {
			for h := 0; h < contracts.Horizons; h++ {
				values = append(values, m[h])
			}
		}
		for h := 0; h < contracts.Horizons; h++ {
			values = append(values, f[h].Iterations, f[h].Converged, f[h].Reason, b.Fallback[h] || f[h].Fallback)
		}
		if err := t.Append(values...); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// PDScalarTable renders one 24-month marginal PD curve per bucket
func PDScalarTable(curves []contracts.MonthlyCurve) (*contracts.Table, error) {
	cols := []contracts.Column{contracts.DateCol(ColReportingDate), contracts.IntCol(ColBucket), contracts.TextCol(ColDescription)}
	for m := 0; m < contracts.Horizons*contracts.MonthsPerHorizon; m++ {
		cols = append(cols, contracts.FloatCol(monthCol(m)))
	}
	t := contracts.NewTable(contracts.TablePDScalar, cols...)

	for _, c := range curves {
		values := []interface{}{c.ReportingDate, c.Bucket, c.Description}
		for _, v := range c.Months {
			values = append(values, v)
		}
		if err := t.Append(values...); err != nil {
			return nil, err
		}
	}
	return t, nil
}
