package stats

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/wonny/pdcal/internal/contracts"
)

// OLSResult is an ordinary least squares fit with an intercept.
// Coefficient slices are intercept first, then predictors in input order.
type OLSResult struct {
	N, K int

	Beta    []float64
	StdErr  []float64
	TValues []float64
	PValues []float64

	Fitted    []float64
	Residuals []float64

	SSReg, SSE, SST float64
	DFReg, DFRes    int
	Sigma2          float64
	RSquared        float64
	AdjRSquared     float64
	F, FPValue      float64
}

// OLS regresses y on the predictor columns x[j] (each of len(y)) plus an intercept.
// The caller removes missing rows first. Fails with ErrNoUsableRows when
// len(y) <= len(x) or when X'X cannot be inverted.
func OLS(y []float64, x [][]float64) (*OLSResult, error) {
	n, k := len(y), len(x)
	if n <= k {
		return nil, fmt.Errorf("%w: %d rows for %d predictors", contracts.ErrNoUsableRows, n, k)
	}
	p := k + 1

	X := mat.NewDense(n, p, nil)
	for i := 0; i < n; i++ {
		X.Set(i, 0, 1)
		for j := 0; j < k; j++ {
			if len(x[j]) != n {
				return nil, fmt.Errorf("predictor %d has %d rows, want %d", j, len(x[j]), n)
			}
			X.Set(i, j+1, x[j][i])
		}
	}
	Y := mat.NewVecDense(n, append([]float64(nil), y...))

	var xtx mat.Dense
	xtx.Mul(X.T(), X)
	var xtxInv mat.Dense
	if err := xtxInv.Inverse(&xtx); err != nil {
		return nil, fmt.Errorf("%w: singular design matrix (%v)", contracts.ErrNoUsableRows, err)
	}

	var xty mat.VecDense
	xty.MulVec(X.T(), Y)
	var beta mat.VecDense
	beta.MulVec(&xtxInv, &xty)

	var fitted mat.VecDense
	fitted.MulVec(X, &beta)

	res := &OLSResult{
		N:         n,
		K:         k,
		Beta:      make([]float64, p),
		StdErr:    make([]float64, p),
		TValues:   make([]float64, p),
		PValues:   make([]float64, p),
		Fitted:    make([]float64, n),
		Residuals: make([]float64, n),
		DFReg:     k,
		DFRes:     n - p,
	}

	mean := 0.0
	for _, v := range y {
		mean += v
	}
	mean /= float64(n)

	for i := 0; i < n; i++ {
		f := fitted.AtVec(i)
		res.Fitted[i] = f
		res.Residuals[i] = y[i] - f
		res.SSE += res.Residuals[i] * res.Residuals[i]
		res.SSReg += (f - mean) * (f - mean)
		res.SST += (y[i] - mean) * (y[i] - mean)
	}

	res.RSquared = math.NaN()
	res.AdjRSquared = math.NaN()
	if res.SST > 0 {
		res.RSquared = 1 - res.SSE/res.SST
		if res.DFRes > 0 {
			res.AdjRSquared = 1 - (1-res.RSquared)*float64(n-1)/float64(res.DFRes)
		}
	}

	res.Sigma2 = math.NaN()
	res.F = math.NaN()
	res.FPValue = math.NaN()
	if res.DFRes > 0 {
		res.Sigma2 = res.SSE / float64(res.DFRes)
		if k > 0 {
			res.F, res.FPValue = fTest(res.SSReg/float64(k), res.Sigma2, float64(k), float64(res.DFRes))
		}
	}

	var tdist distuv.StudentsT
	if res.DFRes > 0 {
		tdist = distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(res.DFRes)}
	}
	for j := 0; j < p; j++ {
		b := beta.AtVec(j)
		res.Beta[j] = b
		se := math.Sqrt(res.Sigma2 * xtxInv.At(j, j))
		res.StdErr[j] = se
		res.TValues[j], res.PValues[j] = tTest(b, se, tdist, res.DFRes > 0)
	}

	return res, nil
}

func fTest(msReg, msRes, d1, d2 float64) (f, p float64) {
	if msRes == 0 {
		if msReg == 0 {
			return math.NaN(), math.NaN()
		}
		return math.Inf(1), 0
	}
	f = msReg / msRes
	p = 1 - distuv.F{D1: d1, D2: d2}.CDF(f)
	return f, clamp01(p)
}

func tTest(b, se float64, dist distuv.StudentsT, defined bool) (t, p float64) {
	if !defined || math.IsNaN(se) {
		return math.NaN(), math.NaN()
	}
	if se == 0 {
		if b == 0 {
			return math.NaN(), math.NaN()
		}
		return math.Copysign(math.Inf(1), b), 0
	}
	t = b / se
	return t, clamp01(2 * dist.Survival(math.Abs(t)))
}
