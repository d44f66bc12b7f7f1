package s4_timeseries

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/wonny/pdcal/internal/contracts"
	"github.com/wonny/pdcal/internal/stats"
)

// Config holds the ARIMA grid and forecast parameters
type Config struct {
	DateColumn    string
	P, D, Q       []int
	Horizon       int // forecast months
	MaxIterations int
	Workers       int
}

// Selector grid-searches ARIMA orders per series and forecasts with the winner
// ⭐ SSOT: S4 ARIMA 선택 (RMSE 최소, 동률 시 (p,d,q) 사전순 최소)
type Selector struct {
	config Config
	log    zerolog.Logger
}

// NewSelector creates a new selector
func NewSelector(config Config, log zerolog.Logger) *Selector {
	if config.Workers < 1 {
		config.Workers = 1
	}
	if config.Horizon <= 0 {
		config.Horizon = 48
	}
	if config.DateColumn == "" {
		config.DateColumn = "Date"
	}
	return &Selector{
		config: config,
		log:    log.With().Str("component", "s4_timeseries").Logger(),
	}
}

// Grid returns the cartesian product of the p, d and q lists in lexicographic order
func (s *Selector) Grid() []contracts.Order {
	var grid []contracts.Order
	seen := make(map[contracts.Order]bool)
	for _, p := range s.config.P {
		for _, d := range s.config.D {
			for _, q := range s.config.Q {
				o := contracts.Order{P: p, D: d, Q: q}
				if !seen[o] {
					seen[o] = true
					grid = append(grid, o)
				}
			}
		}
	}
	sort.Slice(grid, func(i, j int) bool { return grid[i].Less(grid[j]) })
	return grid
}

type job struct {
	series int
	order  contracts.Order
}

type fitted struct {
	fit *stats.ARIMAFit
	err error
}

// Select fits every grid order to every series of the history table.
// A series without any converging candidate is skipped.
func (s *Selector) Select(ctx context.Context, history *contracts.Table, series []string) (*contracts.TimeSeriesReport, error) {
	grid := s.Grid()
	if len(grid) == 0 {
		return nil, fmt.Errorf("%w: empty ARIMA grid", contracts.ErrInvalidTable)
	}
	last, values, err := s.extract(history, series)
	if err != nil {
		return nil, err
	}
	dates := contracts.MonthEndsAfter(last, s.config.Horizon)

	jobs := make([]job, 0, len(series)*len(grid))
	for i := range series {
		for _, o := range grid {
			jobs = append(jobs, job{series: i, order: o})
		}
	}
	results := make([]fitted, len(jobs))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(s.config.Workers)
	for k, j := range jobs {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			fit, err := stats.FitARIMA(values[j.series], j.order, stats.ARIMAOptions{MaxIterations: s.config.MaxIterations})
			results[k] = fitted{fit: fit, err: err}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	report := &contracts.TimeSeriesReport{}
	for i, name := range series {
		var cands []contracts.Candidate
		var fits []*stats.ARIMAFit
		for k, j := range jobs {
			if j.series != i {
				continue
			}
			c := contracts.Candidate{Series: name, Order: j.order, RMSE: math.NaN()}
			if r := results[k]; r.err != nil {
				c.Reason = r.err.Error()
				s.log.Debug().Err(r.err).Str("series", name).Str("order", j.order.String()).Msg("candidate skipped")
			} else {
				c.Converged = true
				c.RMSE = r.fit.RMSE
			}
			cands = append(cands, c)
			fits = append(fits, results[k].fit)
		}
		report.Candidates = append(report.Candidates, cands...)

		var best *stats.ARIMAFit
		if b := Best(cands); b >= 0 {
			best = fits[b]
		}

		if best == nil {
			err := fmt.Errorf("%w: no order converged for %s", contracts.ErrNonConvergentModel, name)
			s.log.Warn().Err(err).Str("series", name).Msg("series skipped")
			report.Skipped = append(report.Skipped, contracts.Skip(name, err))
			continue
		}

		forecast := best.Forecast(len(dates))
		sf := contracts.SeriesForecast{
			Model: contracts.SelectedModel{
				Series:       name,
				Order:        best.Order,
				RMSE:         best.RMSE,
				Mean:         best.Mean,
				AR:           best.AR,
				MA:           best.MA,
				Sigma2:       best.Sigma2,
				Observations: best.Observations,
			},
			Points: make([]contracts.ForecastPoint, len(dates)),
		}
		for h, d := range dates {
			sf.Points[h] = contracts.ForecastPoint{Date: d, Value: forecast[h]}
		}
		report.Forecasts = append(report.Forecasts, sf)

		s.log.Info().
			Str("series", name).
			Str("order", best.Order.String()).
			Float64("rmse", best.RMSE).
			Msg("model selected")
	}

	if len(report.Forecasts) == 0 {
		return nil, fmt.Errorf("%w: no series could be modelled", contracts.ErrNonConvergentModel)
	}
	return report, nil
}

// extract returns the last history date and, per series, its non-missing values in date order
func (s *Selector) extract(history *contracts.Table, series []string) (time.Time, [][]float64, error) {
	if history == nil || history.Len() == 0 {
		return time.Time{}, nil, contracts.ErrEmptySource
	}
	if len(series) == 0 {
		return time.Time{}, nil, fmt.Errorf("%w: no series to model", contracts.ErrInsufficientData)
	}

	type dated struct {
		date time.Time
		row  int
	}
	var rows []dated
	for i := 0; i < history.Len(); i++ {
		if d, ok := history.Date(i, s.config.DateColumn); ok {
			rows = append(rows, dated{date: d, row: i})
		}
	}
	if len(rows) == 0 {
		return time.Time{}, nil, fmt.Errorf("%w: %s has no dated rows", contracts.ErrEmptySource, history.Name)
	}
	sort.SliceStable(rows, func(a, b int) bool { return rows[a].date.Before(rows[b].date) })

	values := make([][]float64, len(series))
	for j, name := range series {
		if !history.HasColumn(name) {
			return time.Time{}, nil, fmt.Errorf("%w: %s has no %q column", contracts.ErrInvalidTable, history.Name, name)
		}
		for _, r := range rows {
			if v, ok := history.Float(r.row, name); ok {
				values[j] = append(values[j], v)
			}
		}
	}
	return rows[len(rows)-1].date, values, nil
}

// Best returns the index of the converged candidate with the lowest RMSE,
// ties going to the lexicographically smallest order, or -1 if none converged
func Best(cands []contracts.Candidate) int {
	best := -1
	for i, c := range cands {
		if !c.Converged || math.IsNaN(c.RMSE) {
			continue
		}
		if best < 0 || c.RMSE < cands[best].RMSE ||
			(c.RMSE == cands[best].RMSE && c.Order.Less(cands[best].Order)) {
			best = i
		}
	}
	return best
}
