package contracts

import (
	"fmt"
	"time"
)

// Order is an ARIMA (p,d,q) order
type Order struct {
	P int `json:"p"`
	D int `json:"d"`
	Q int `json:"q"`
}

func (o Order) String() string {
	return fmt.Sprintf("ARIMA(%d,%d,%d)", o.P, o.D, o.Q)
}

// Less orders lexicographically by p, then d, then q
func (o Order) Less(other Order) bool {
	if o.P != other.P {
		return o.P < other.P
	}
	if o.D != other.D {
		return o.D < other.D
	}
	return o.Q < other.Q
}

// Candidate is one grid point of the ARIMA search
type Candidate struct {
	Series    string  `json:"series"`
	Order     Order   `json:"order"`
	RMSE      float64 `json:"rmse"`
	Converged bool    `json:"converged"`
	Reason    string  `json:"reason,omitempty"`
}

// SelectedModel is the winning ARIMA fit of a series
type SelectedModel struct {
	Series       string    `json:"series"`
	Order        Order     `json:"order"`
	RMSE         float64   `json:"rmse"`
	Mean         float64   `json:"mean"`
	AR           []float64 `json:"ar"`
	MA           []float64 `json:"ma"`
	Sigma2       float64   `json:"sigma2"`
	Observations int       `json:"observations"`
}

// ForecastPoint is one forecast date
type ForecastPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// SeriesForecast is the forecast of one series by its selected model
type SeriesForecast struct {
	Model  SelectedModel   `json:"model"`
	Points []ForecastPoint `json:"points"`
}

// TimeSeriesReport is the S4 selection output
type TimeSeriesReport struct {
	Candidates []Candidate      `json:"candidates"`
	Forecasts  []SeriesForecast `json:"forecasts"`
	Skipped    []SkippedItem    `json:"skipped,omitempty"`
}

// ForecastColumn is the column name of a series forecast in the forecast table
func ForecastColumn(series string) string {
	return series + "_forecast"
}

// ProjectionRow is one date of the model projection over the combined table
type ProjectionRow struct {
	Date         time.Time `json:"date"`
	Actual       float64   `json:"actual"`
	Fitted       float64   `json:"fitted"`
	Odds         float64   `json:"odds"`
	FittedPD     float64   `json:"fitted_pd"`
	Error        float64   `json:"error"`
	SquaredError float64   `json:"squared_error"`
	Forecast     bool      `json:"forecast"`
}

// HistoryLabel is the description of the realized summary row
const HistoryLabel = "History"

// SummaryRow aggregates projected odds and PDs over history or one forecast year
type SummaryRow struct {
	Description string  `json:"description"`
	Year        int     `json:"year"`
	Periods     int     `json:"periods"`
	Last        float64 `json:"last"`
	MaxOdds     float64 `json:"max_odds"`
	MinOdds     float64 `json:"min_odds"`
	AvgOdds     float64 `json:"avg_odds"`
	PIT         float64 `json:"pit"`
	AvgODR      float64 `json:"avg_odr"`
}
