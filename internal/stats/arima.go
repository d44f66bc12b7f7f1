package stats

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"

	"github.com/wonny/pdcal/internal/contracts"
)

// ARIMAOptions bounds the conditional-sum-of-squares optimisation
type ARIMAOptions struct {
	MaxIterations int
}

// ARIMAFit is a fitted ARIMA(p,d,q) model. A constant is estimated only when d == 0.
type ARIMAFit struct {
	Order        contracts.Order
	Mean         float64
	AR           []float64
	MA           []float64
	Sigma2       float64
	RMSE         float64
	Observations int

	levels    [][]float64 // levels[k] is the k-times differenced series
	residuals []float64   // one-step residuals of the differenced series
}

// FitARIMA fits the order to y (no missing values) by minimising the
// conditional sum of squares with Nelder-Mead. Any failure is reported as
// ErrNonConvergentModel.
func FitARIMA(y []float64, order contracts.Order, opts ARIMAOptions) (*ARIMAFit, error) {
	if order.P < 0 || order.D < 0 || order.Q < 0 {
		return nil, fmt.Errorf("%w: invalid order %s", contracts.ErrNonConvergentModel, order)
	}
	for _, v := range y {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: series has non-finite values", contracts.ErrNonConvergentModel)
		}
	}

	levels := make([][]float64, order.D+1)
	levels[0] = append([]float64(nil), y...)
	for k := 1; k <= order.D; k++ {
		levels[k] = difference(levels[k-1])
	}
	w := levels[order.D]

	withMean := order.D == 0
	nParams := order.P + order.Q
	if withMean {
		nParams++
	}
	if len(w)-order.P < nParams+2 {
		return nil, fmt.Errorf("%w: %w: %d observations for %s", contracts.ErrNonConvergentModel,
			contracts.ErrInsufficientData, len(y), order)
	}

	fit := &ARIMAFit{Order: order, Observations: len(y), levels: levels}

	if order.P == 0 && order.Q == 0 {
		if withMean {
			fit.Mean = stat.Mean(w, nil)
		}
		fit.residuals = css(w, fit.Mean, nil, nil)
		fit.summarise()
		return fit, nil
	}

	unpack := func(x []float64) (mu float64, ar, ma []float64) {
		i := 0
		if withMean {
			mu = x[0]
			i = 1
		}
		return mu, x[i : i+order.P], x[i+order.P:]
	}

	x0 := make([]float64, nParams)
	if withMean {
		x0[0] = stat.Mean(w, nil)
	}

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			mu, ar, ma := unpack(x)
			sse := 0.0
			for _, e := range css(w, mu, ar, ma)[order.P:] {
				sse += e * e
			}
			if math.IsNaN(sse) || math.IsInf(sse, 0) {
				return math.MaxFloat64
			}
			return sse
		},
	}

	settings := &optimize.Settings{MajorIterations: opts.MaxIterations}
	result, err := optimize.Minimize(problem, x0, settings, &optimize.NelderMead{})
	if err == nil && result != nil {
		err = result.Status.Err()
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", contracts.ErrNonConvergentModel, order, err)
	}

	mu, ar, ma := unpack(result.X)
	fit.Mean = mu
	fit.AR = append([]float64(nil), ar...)
	fit.MA = append([]float64(nil), ma...)

	if !insideUnitCircle(fit.AR) {
		return nil, fmt.Errorf("%w: %s: non-stationary AR part", contracts.ErrNonConvergentModel, order)
	}
	negMA := make([]float64, len(fit.MA))
	for i, v := range fit.MA {
		negMA[i] = -v
	}
	if !insideUnitCircle(negMA) {
		return nil, fmt.Errorf("%w: %s: non-invertible MA part", contracts.ErrNonConvergentModel, order)
	}

	fit.residuals = css(w, fit.Mean, fit.AR, fit.MA)
	fit.summarise()
	if math.IsNaN(fit.RMSE) || math.IsInf(fit.RMSE, 0) {
		return nil, fmt.Errorf("%w: %s: non-finite residuals", contracts.ErrNonConvergentModel, order)
	}
	return fit, nil
}

func (f *ARIMAFit) summarise() {
	used := f.residuals[f.Order.P:]
	sse := 0.0
	for _, e := range used {
		sse += e * e
	}
	f.Sigma2 = sse / float64(len(used))
	f.RMSE = math.Sqrt(f.Sigma2)
}

// Residuals returns the one-step in-sample residuals (first p are zero)
func (f *ARIMAFit) Residuals() []float64 {
	return append([]float64(nil), f.residuals...)
}

// Forecast returns h out-of-sample values on the original (undifferenced) scale
func (f *ARIMAFit) Forecast(h int) []float64 {
	w := f.levels[f.Order.D]
	n := len(w)
	wx := make([]float64, n+h)
	copy(wx, w)
	ex := make([]float64, n+h)
	copy(ex, f.residuals)

	for t := n; t < n+h; t++ {
		pred := f.Mean
		for i, phi := range f.AR {
			if idx := t - 1 - i; idx >= 0 {
				pred += phi * (wx[idx] - f.Mean)
			}
		}
		for j, theta := range f.MA {
			if idx := t - 1 - j; idx >= 0 {
				pred += theta * ex[idx]
			}
		}
		wx[t] = pred
	}

	future := wx[n:]
	for k := f.Order.D - 1; k >= 0; k-- {
		level := f.levels[k]
		last := level[len(level)-1]
		integrated := make([]float64, h)
		for i, v := range future {
			last += v
			integrated[i] = last
		}
		future = integrated
	}
	return append([]float64(nil), future...)
}

// css returns the conditional one-step errors of an ARMA(p,q) with mean mu.
// Errors before index p are zero.
func css(w []float64, mu float64, ar, ma []float64) []float64 {
	p := len(ar)
	e := make([]float64, len(w))
	for t := p; t < len(w); t++ {
		pred := mu
		for i, phi := range ar {
			pred += phi * (w[t-1-i] - mu)
		}
		for j, theta := range ma {
			if idx := t - 1 - j; idx >= p {
				pred += theta * e[idx]
			}
		}
		e[t] = w[t] - pred
	}
	return e
}

func difference(xs []float64) []float64 {
	if len(xs) < 2 {
		return nil
	}
	out := make([]float64, len(xs)-1)
	for i := range out {
		out[i] = xs[i+1] - xs[i]
	}
	return out
}

// insideUnitCircle reports whether all roots of z^k - c1 z^(k-1) - ... - ck
// lie strictly inside the unit circle (eigenvalues of the companion matrix)
func insideUnitCircle(c []float64) bool {
	k := len(c)
	if k == 0 {
		return true
	}
	companion := mat.NewDense(k, k, nil)
	for j, v := range c {
		companion.Set(0, j, v)
	}
	for i := 1; i < k; i++ {
		companion.Set(i, i-1, 1)
	}
	var eig mat.Eigen
	if !eig.Factorize(companion, mat.EigenNone) {
		return false
	}
	for _, root := range eig.Values(nil) {
		if cmplx.Abs(root) >= 1 {
			return false
		}
	}
	return true
}
