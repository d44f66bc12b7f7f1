package contracts

import "fmt"

// Verdict is the binary outcome of a gate test
type Verdict string

const (
	VerdictPass Verdict = "Pass"
	VerdictDrop Verdict = "Drop"
)

// VerdictOf maps a boolean outcome to a Verdict
func VerdictOf(pass bool) Verdict {
	if pass {
		return VerdictPass
	}
	return VerdictDrop
}

// Passed reports whether v is Pass
func (v Verdict) Passed() bool {
	return v == VerdictPass
}

// Both is Pass only if both verdicts are Pass
func Both(a, b Verdict) Verdict {
	return VerdictOf(a.Passed() && b.Passed())
}

// ParseVerdict parses "Pass" / "Drop"
func ParseVerdict(s string) (Verdict, error) {
	switch Verdict(s) {
	case VerdictPass, VerdictDrop:
		return Verdict(s), nil
	default:
		return "", fmt.Errorf("invalid verdict %q", s)
	}
}

// Tally counts verdicts
type Tally struct {
	Pass int `json:"pass"`
	Drop int `json:"drop"`
}

// Add counts one verdict
func (t *Tally) Add(v Verdict) {
	if v.Passed() {
		t.Pass++
	} else {
		t.Drop++
	}
}

// Total returns Pass + Drop
func (t Tally) Total() int {
	return t.Pass + t.Drop
}

// FilterCriterion selects which correlation verdict admits a variable to the normality gate
type FilterCriterion string

const (
	FilterNone            FilterCriterion = "none"
	FilterHypothesis      FilterCriterion = "hypothesis"
	FilterTrend           FilterCriterion = "trend"
	FilterCorrelationTest FilterCriterion = "correlation_test"
)

// ParseFilterCriterion validates a criterion name
func ParseFilterCriterion(s string) (FilterCriterion, error) {
	switch FilterCriterion(s) {
	case FilterNone, FilterHypothesis, FilterTrend, FilterCorrelationTest:
		return FilterCriterion(s), nil
	default:
		return "", fmt.Errorf("invalid filter criterion %q (want none, hypothesis, trend or correlation_test)", s)
	}
}

// Select returns the verdict of r that the criterion looks at.
// FilterNone admits everything.
func (f FilterCriterion) Select(r CorrelationResult) Verdict {
	switch f {
	case FilterHypothesis:
		return r.Hypothesis
	case FilterTrend:
		return r.Trend
	case FilterCorrelationTest:
		return r.CorrelationTest
	default:
		return VerdictPass
	}
}

// SignConvention is the expected sign of the correlation with the target.
// There is no default: it must be configured per portfolio.
type SignConvention string

const (
	SignNegative SignConvention = "negative"
	SignPositive SignConvention = "positive"
)

// ParseSignConvention validates a sign convention
func ParseSignConvention(s string) (SignConvention, error) {
	switch SignConvention(s) {
	case SignNegative, SignPositive:
		return SignConvention(s), nil
	default:
		return "", fmt.Errorf("invalid sign convention %q (want negative or positive)", s)
	}
}

// Trend returns Pass when r has the expected sign. r == 0 never passes.
func (s SignConvention) Trend(r float64) Verdict {
	switch s {
	case SignNegative:
		return VerdictOf(r < 0)
	case SignPositive:
		return VerdictOf(r > 0)
	default:
		return VerdictDrop
	}
}

// TargetScale tells the regression engine whether the target is a probability or already a logit
type TargetScale string

const (
	ScaleProbability TargetScale = "probability"
	ScaleLogit       TargetScale = "logit"
)
