package stats

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/wonny/pdcal/internal/contracts"
)

// TestResult is the statistic and p-value of a one-sample test
type TestResult struct {
	Statistic float64
	PValue    float64
	N         int
}

// ShapiroWilkMaxN is the upper sample size of Royston's approximation
const ShapiroWilkMaxN = 5000

// KolmogorovSmirnovNormal tests xs against N(mean, sd) with both parameters
// estimated from the sample (sd uses the n-1 denominator). The p-value comes
// from the asymptotic Kolmogorov distribution with Stephens' correction.
func KolmogorovSmirnovNormal(xs []float64) (TestResult, error) {
	n := len(xs)
	if n < 2 {
		return TestResult{N: n}, fmt.Errorf("%w: n=%d", contracts.ErrEmptySample, n)
	}

	mean, sd := stat.MeanStdDev(xs, nil)
	if sd == 0 || math.IsNaN(sd) {
		return TestResult{N: n}, contracts.ErrConstantSeries
	}

	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)

	dist := distuv.Normal{Mu: mean, Sigma: sd}
	fn := float64(n)
	d := 0.0
	for i, x := range sorted {
		cdf := dist.CDF(x)
		d = math.Max(d, math.Max(float64(i+1)/fn-cdf, cdf-float64(i)/fn))
	}

	sqrtN := math.Sqrt(fn)
	lambda := (sqrtN + 0.12 + 0.11/sqrtN) * d

	return TestResult{Statistic: d, PValue: kolmogorovQ(lambda), N: n}, nil
}

// kolmogorovQ is the survival function of the Kolmogorov distribution
func kolmogorovQ(lambda float64) float64 {
	if lambda <= 0 {
		return 1
	}
	a2 := -2 * lambda * lambda
	fac := 2.0
	sum := 0.0
	prev := 0.0
	for j := 1; j <= 100; j++ {
		term := fac * math.Exp(a2*float64(j*j))
		sum += term
		if math.Abs(term) <= 0.001*prev || math.Abs(term) <= 1e-8*sum {
			return clamp01(sum)
		}
		fac = -fac
		prev = math.Abs(term)
	}
	// series did not settle: lambda is tiny, the fit is perfect
	return 1
}

// Royston (1992, 1995) polynomial coefficients, algorithm AS R94
var (
	swC1 = []float64{0.0, 0.221157, -0.147981, -2.071190, 4.434685, -2.706056}
	swC2 = []float64{0.0, 0.042981, -0.293762, -1.752461, 5.682633, -3.582633}
	swC3 = []float64{0.544, -0.39978, 0.025054, -6.714e-4}
	swC4 = []float64{1.3822, -0.77857, 0.062767, -0.0020322}
	swC5 = []float64{-1.5861, -0.31082, -0.083751, 0.0038915}
	swC6 = []float64{-0.4803, -0.082676, 0.0030302}
	swG  = []float64{-2.273, 0.459}
)

// ShapiroWilk computes the W statistic and its p-value (3 <= n).
// Above ShapiroWilkMaxN the approximation is outside its validated range;
// callers decide whether to warn.
func ShapiroWilk(xs []float64) (TestResult, error) {
	n := len(xs)
	if n < 2 {
		return TestResult{N: n}, fmt.Errorf("%w: n=%d", contracts.ErrEmptySample, n)
	}
	if n < 3 {
		return TestResult{N: n}, fmt.Errorf("%w: Shapiro-Wilk needs n >= 3, got %d", contracts.ErrInsufficientData, n)
	}

	x := append([]float64(nil), xs...)
	sort.Float64s(x)
	if x[n-1]-x[0] == 0 {
		return TestResult{N: n}, contracts.ErrConstantSeries
	}

	a := swCoefficients(n)
	mean := stat.Mean(x, nil)
	ssq := 0.0
	for _, v := range x {
		ssq += (v - mean) * (v - mean)
	}
	num := 0.0
	for i, ai := range a {
		num += ai * (x[n-1-i] - x[i])
	}
	w := math.Min(num*num/ssq, 1)

	return TestResult{Statistic: w, PValue: swPValue(w, n), N: n}, nil
}

func swCoefficients(n int) []float64 {
	nn2 := n / 2
	a := make([]float64, nn2)
	if n == 3 {
		a[0] = math.Sqrt(0.5)
		return a
	}

	an := float64(n)
	an25 := an + 0.25
	m := make([]float64, nn2)
	summ2 := 0.0
	for i := range m {
		m[i] = distuv.UnitNormal.Quantile((float64(i+1) - 0.375) / an25)
		summ2 += m[i] * m[i]
	}
	summ2 *= 2
	ssumm2 := math.Sqrt(summ2)
	rsn := 1 / math.Sqrt(an)
	a1 := poly(swC1, rsn) - m[0]/ssumm2

	first := 1
	var fac float64
	if n > 5 {
		first = 2
		a2 := -m[1]/ssumm2 + poly(swC2, rsn)
		fac = math.Sqrt((summ2 - 2*m[0]*m[0] - 2*m[1]*m[1]) / (1 - 2*a1*a1 - 2*a2*a2))
		a[1] = a2
	} else {
		fac = math.Sqrt((summ2 - 2*m[0]*m[0]) / (1 - 2*a1*a1))
	}
	a[0] = a1
	for i := first; i < nn2; i++ {
		a[i] = -m[i] / fac
	}
	return a
}

func swPValue(w float64, n int) float64 {
	if w >= 1 {
		return 1
	}
	an := float64(n)
	if n == 3 {
		const pi6, stqr = 6 / math.Pi, math.Pi / 3
		return clamp01(pi6 * (math.Asin(math.Sqrt(w)) - stqr))
	}

	y := math.Log(1 - w)
	var m, s float64
	if n <= 11 {
		gamma := poly(swG, an)
		if y >= gamma {
			return 0
		}
		y = -math.Log(gamma - y)
		m = poly(swC3, an)
		s = math.Exp(poly(swC4, an))
	} else {
		xx := math.Log(an)
		m = poly(swC5, xx)
		s = math.Exp(poly(swC6, xx))
	}
	return clamp01(distuv.Normal{Mu: m, Sigma: s}.Survival(y))
}

// poly evaluates c[0] + c[1]x + c[2]x^2 + ...
func poly(c []float64, x float64) float64 {
	result := c[len(c)-1]
	for k := len(c) - 2; k >= 0; k-- {
		result = result*x + c[k]
	}
	return result
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return v
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
