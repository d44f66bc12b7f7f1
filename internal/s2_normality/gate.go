package s2_normality

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/wonny/pdcal/internal/contracts"
	"github.com/wonny/pdcal/internal/stats"
)

// Config holds the normality gate parameters
type Config struct {
	Target  string
	Filter  contracts.FilterCriterion
	PValue  float64 // p > PValue → Pass
	Workers int
}

// Gate runs Kolmogorov-Smirnov and Shapiro-Wilk on the admitted variables
// ⭐ SSOT: S2 정규성 게이트 (KS / SW / Overall)
type Gate struct {
	config Config
	log    zerolog.Logger
}

// NewGate creates a new normality gate
func NewGate(config Config, log zerolog.Logger) *Gate {
	if config.Workers < 1 {
		config.Workers = 1
	}
	if config.Filter == "" {
		config.Filter = contracts.FilterCorrelationTest
	}
	return &Gate{
		config: config,
		log:    log.With().Str("component", "s2_normality").Logger(),
	}
}

// Candidates returns the variables to test, in variable-table order.
// FilterNone tests every column; any other filter needs the correlation report
// and never tests the target.
func (g *Gate) Candidates(vt *contracts.VariableTable, corr *contracts.CorrelationReport) ([]string, error) {
	if _, err := contracts.ParseFilterCriterion(string(g.config.Filter)); err != nil {
		return nil, err
	}
	if g.config.Filter == contracts.FilterNone {
		return vt.Names(), nil
	}
	if corr == nil {
		return nil, fmt.Errorf("filter %q needs the correlation report", g.config.Filter)
	}

	admitted := make(map[string]bool)
	for _, name := range corr.Admitted(g.config.Filter) {
		admitted[name] = true
	}
	var out []string
	for _, name := range vt.Names() {
		if name != g.config.Target && admitted[name] {
			out = append(out, name)
		}
	}
	return out, nil
}

// Evaluate tests every candidate. Variables that cannot be tested are skipped.
func (g *Gate) Evaluate(ctx context.Context, vt *contracts.VariableTable, corr *contracts.CorrelationReport) (*contracts.NormalityReport, error) {
	candidates, err := g.Candidates(vt, corr)
	if err != nil {
		return nil, err
	}

	type outcome struct {
		res contracts.NormalityResult
		err error
	}
	outcomes := make([]outcome, len(candidates))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.config.Workers)
	for i, name := range candidates {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			values, _ := vt.Column(name)
			res, err := Test(name, stats.Present(values), g.config.PValue)
			outcomes[i] = outcome{res: res, err: err}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	report := &contracts.NormalityReport{Filter: g.config.Filter}
	for i, name := range candidates {
		o := outcomes[i]
		if o.err != nil {
			g.log.Warn().Err(o.err).Str("variable", name).Msg("variable skipped")
			report.Skipped = append(report.Skipped, contracts.Skip(name, o.err))
			continue
		}
		if o.res.N > stats.ShapiroWilkMaxN {
			g.log.Warn().Str("variable", name).Int("n", o.res.N).Msg("Shapiro-Wilk outside its validated sample size")
		}
		report.Results = append(report.Results, o.res)
		report.KS.Add(o.res.KS.Verdict)
		report.SW.Add(o.res.SW.Verdict)
		report.Overall.Add(o.res.Overall)
	}

	g.log.Info().
		Str("filter", string(g.config.Filter)).
		Int("tested", len(report.Results)).
		Int("pass", report.Overall.Pass).
		Int("drop", report.Overall.Drop).
		Int("skipped", len(report.Skipped)).
		Msg("normality gate completed")

	return report, nil
}

// Test runs both tests on the non-missing values of one variable
func Test(variable string, xs []float64, threshold float64) (contracts.NormalityResult, error) {
	n := len(xs)
	if n < 2 {
		return contracts.NormalityResult{}, fmt.Errorf("%w: %s has %d observations", contracts.ErrEmptySample, variable, n)
	}

	ks, err := stats.KolmogorovSmirnovNormal(xs)
	if err != nil {
		return contracts.NormalityResult{}, fmt.Errorf("kolmogorov-smirnov: %w", err)
	}
	sw, err := stats.ShapiroWilk(xs)
	if err != nil {
		return contracts.NormalityResult{}, fmt.Errorf("shapiro-wilk: %w", err)
	}

	res := contracts.NormalityResult{
		Variable: variable,
		N:        n,
		KS:       outcomeOf(ks, threshold),
		SW:       outcomeOf(sw, threshold),
	}
	res.Overall = contracts.Both(res.KS.Verdict, res.SW.Verdict)
	return res, nil
}

func outcomeOf(r stats.TestResult, threshold float64) contracts.TestOutcome {
	return contracts.TestOutcome{
		Statistic: r.Statistic,
		PValue:    r.PValue,
		DF:        r.N - 1,
		Verdict:   contracts.VerdictOf(r.PValue > threshold),
	}
}
