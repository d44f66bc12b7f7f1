package s1_correlation

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/wonny/pdcal/internal/contracts"
	"github.com/wonny/pdcal/internal/stats"
)

// Config holds the correlation gate parameters
type Config struct {
	Target    string
	Threshold float64 // |r| <= Threshold → Hypothesis Drop
	Sign      contracts.SignConvention
	Workers   int
}

// Gate scores every candidate variable against the target
// ⭐ SSOT: S1 상관 게이트 (Hypothesis / Trend / CorrelationTest)
type Gate struct {
	config Config
	log    zerolog.Logger
}

// NewGate creates a new correlation gate
func NewGate(config Config, log zerolog.Logger) *Gate {
	if config.Workers < 1 {
		config.Workers = 1
	}
	return &Gate{
		config: config,
		log:    log.With().Str("component", "s1_correlation").Logger(),
	}
}

type outcome struct {
	r     float64
	pairs int
	err   error
}

// Evaluate computes the pairwise-complete Pearson r of every non-target column.
// Variables that cannot be scored are skipped, never fatal.
func (g *Gate) Evaluate(ctx context.Context, vt *contracts.VariableTable) (*contracts.CorrelationReport, error) {
	if _, err := contracts.ParseSignConvention(string(g.config.Sign)); err != nil {
		return nil, err
	}
	target, ok := vt.Column(g.config.Target)
	if !ok {
		return nil, fmt.Errorf("%w: target %q not in variable table", contracts.ErrInvalidTable, g.config.Target)
	}

	var candidates []string
	for _, name := range vt.Names() {
		if name != g.config.Target {
			candidates = append(candidates, name)
		}
	}

	outcomes := make([]outcome, len(candidates))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.config.Workers)
	for i, name := range candidates {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			x, _ := vt.Column(name)
			r, n, err := stats.Pearson(x, target)
			outcomes[i] = outcome{r: r, pairs: n, err: err}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	report := &contracts.CorrelationReport{Target: g.config.Target}
	for i, name := range candidates {
		o := outcomes[i]
		if o.err != nil {
			g.log.Warn().Err(o.err).Str("variable", name).Int("pairs", o.pairs).Msg("variable skipped")
			report.Skipped = append(report.Skipped, contracts.Skip(name, o.err))
			continue
		}
		res := Classify(name, o.r, g.config.Threshold, g.config.Sign)
		res.No = len(report.Results) + 1
		res.Pairs = o.pairs
		report.Results = append(report.Results, res)
		report.Hypothesis.Add(res.Hypothesis)
		report.Trend.Add(res.Trend)
		report.CorrelationTest.Add(res.CorrelationTest)
	}

	g.log.Info().
		Int("candidates", len(candidates)).
		Int("pass", report.CorrelationTest.Pass).
		Int("drop", report.CorrelationTest.Drop).
		Int("skipped", len(report.Skipped)).
		Msg("correlation gate completed")

	return report, nil
}

// Classify applies the hypothesis and trend rules to one correlation
func Classify(variable string, r, threshold float64, sign contracts.SignConvention) contracts.CorrelationResult {
	abs := r
	if abs < 0 {
		abs = -abs
	}
	hyp := contracts.VerdictOf(abs > threshold)
	trend := sign.Trend(r)
	return contracts.CorrelationResult{
		Variable:        variable,
		Pearson:         r,
		Hypothesis:      hyp,
		Trend:           trend,
		CorrelationTest: contracts.Both(hyp, trend),
	}
}
