package stats

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/wonny/pdcal/internal/contracts"
)

// MinPairs is the fewest complete pairs a correlation is computed on
const MinPairs = 3

// Pearson returns the pairwise-complete Pearson correlation of x and y and the
// number of pairs used
func Pearson(x, y []float64) (float64, int, error) {
	xs, ys := PairwiseComplete(x, y)
	n := len(xs)
	if n < MinPairs {
		return 0, n, fmt.Errorf("%w: %d complete pairs", contracts.ErrInsufficientData, n)
	}
	if stat.Variance(xs, nil) == 0 || stat.Variance(ys, nil) == 0 {
		return 0, n, contracts.ErrConstantSeries
	}
	return stat.Correlation(xs, ys, nil), n, nil
}
