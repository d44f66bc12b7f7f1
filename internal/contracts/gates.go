package contracts

// CorrelationResult is the S1 outcome for one candidate variable.
// CorrelationTest is Pass only if Hypothesis and Trend are both Pass.
type CorrelationResult struct {
	No              int     `json:"no"`
	Variable        string  `json:"variable"`
	Pearson         float64 `json:"pearson"`
	Pairs           int     `json:"pairs"`
	Hypothesis      Verdict `json:"hypothesis"`
	Trend           Verdict `json:"trend"`
	CorrelationTest Verdict `json:"correlation_test"`
}

// CorrelationReport is the full S1 output
type CorrelationReport struct {
	Target          string              `json:"target"`
	Results         []CorrelationResult `json:"results"`
	Hypothesis      Tally               `json:"hypothesis"`
	Trend           Tally               `json:"trend"`
	CorrelationTest Tally               `json:"correlation_test"`
	Skipped         []SkippedItem       `json:"skipped,omitempty"`
}

// Lookup finds the result of a variable
func (r *CorrelationReport) Lookup(variable string) (CorrelationResult, bool) {
	for _, res := range r.Results {
		if res.Variable == variable {
			return res, true
		}
	}
	return CorrelationResult{}, false
}

// Admitted returns the variables whose criterion verdict is Pass, in result order
func (r *CorrelationReport) Admitted(criterion FilterCriterion) []string {
	var out []string
	for _, res := range r.Results {
		if criterion.Select(res).Passed() {
			out = append(out, res.Variable)
		}
	}
	return out
}

// TestOutcome is one normality test result. DF is n-1.
type TestOutcome struct {
	Statistic float64 `json:"statistic"`
	PValue    float64 `json:"p_value"`
	DF        int     `json:"df"`
	Verdict   Verdict `json:"verdict"`
}

// NormalityResult is the S2 outcome for one variable.
// Overall is Pass only if KS and SW are both Pass.
type NormalityResult struct {
	Variable string      `json:"variable"`
	N        int         `json:"n"`
	KS       TestOutcome `json:"ks"`
	SW       TestOutcome `json:"sw"`
	Overall  Verdict     `json:"overall"`
}

// NormalityReport is the full S2 output
type NormalityReport struct {
	Filter  FilterCriterion   `json:"filter"`
	Results []NormalityResult `json:"results"`
	Overall Tally             `json:"overall"`
	KS      Tally             `json:"ks"`
	SW      Tally             `json:"sw"`
	Skipped []SkippedItem     `json:"skipped,omitempty"`
}

// Passing returns the variables whose overall verdict is Pass
func (r *NormalityReport) Passing() []string {
	var out []string
	for _, res := range r.Results {
		if res.Overall.Passed() {
			out = append(out, res.Variable)
		}
	}
	return out
}
