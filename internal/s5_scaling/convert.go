package s5_scaling

import (
	"math"

	"github.com/wonny/pdcal/internal/contracts"
	"github.com/wonny/pdcal/internal/stats"
)

// ConvertBuckets applies the fixed logit offsets to every bucket and horizon:
// PIT = logistic(logit(TTC) + offset). When logit(TTC) is undefined the PIT is
// the unscaled TTC and the horizon is flagged as a fallback.
// The input is not modified.
func ConvertBuckets(buckets []contracts.Bucket, offsets [contracts.Horizons]float64) []contracts.Bucket {
	out := make([]contracts.Bucket, len(buckets))
	for i, b := range buckets {
		for h := 0; h < contracts.Horizons; h++ {
			l, ok := stats.Logit(b.TTC[h])
			b.LogitTTC[h] = l
			b.Fallback[h] = false
			if !ok {
				b.LogitPIT[h] = math.NaN()
				b.PITRaw[h] = math.NaN()
				b.PIT[h] = b.TTC[h]
				b.Fallback[h] = true
				continue
			}
			b.LogitPIT[h] = l + offsets[h]
			b.PITRaw[h] = stats.Logistic(b.LogitPIT[h])
			b.PIT[h] = b.PITRaw[h]
		}
		out[i] = b
	}
	return out
}
