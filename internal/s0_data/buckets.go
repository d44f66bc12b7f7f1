package s0_data

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/wonny/pdcal/internal/contracts"
)

// Column names of the weighted-average marginal PD table
const (
	ColReportingDate = "Reporting_Date"
	ColBucket        = "Bucket"
	ColCode          = "Code"
	ColType          = "Type"
)

// MonthColumn is the marginal PD column of curve month m (1-based)
func MonthColumn(m int) string {
	return fmt.Sprintf("M%d", m)
}

// BucketFilter selects the TTC rows of one reporting date
type BucketFilter struct {
	ReportingDate time.Time
	Code          string // applied only when the table has a Code column
	Type          string // applied only when the table has a Type column
}

// ReportingDateFor returns the bucket reporting date of a variable table:
// the month end after its last observation
func ReportingDateFor(lastMEV time.Time) time.Time {
	return contracts.MonthEnd(lastMEV, 1)
}

// BucketSource loads the TTC marginal PD buckets
type BucketSource struct {
	store contracts.TableReader
	log   zerolog.Logger
}

// NewBucketSource creates a new BucketSource
func NewBucketSource(store contracts.TableReader, log zerolog.Logger) *BucketSource {
	return &BucketSource{store: store, log: log.With().Str("component", "s0_data.buckets").Logger()}
}

// Load reads the source table and aggregates months 1-12 and 13-24 into the two TTC horizons
func (s *BucketSource) Load(ctx context.Context, source string, f BucketFilter) ([]contracts.Bucket, error) {
	t, err := s.store.Read(ctx, source)
	if errors.Is(err, contracts.ErrTableNotFound) {
		return nil, fmt.Errorf("%w: %s", contracts.ErrEmptySource, source)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", source, err)
	}

	buckets, err := BucketsFromTable(t, f)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("reporting_date", f.ReportingDate.Format(contracts.DateLayout)).
		Int("buckets", len(buckets)).
		Msg("TTC buckets loaded")
	return buckets, nil
}

// BucketsFromTable filters and aggregates the marginal PD rows.
// A horizon with any missing month is missing (NaN), never zero.
func BucketsFromTable(t *contracts.Table, f BucketFilter) ([]contracts.Bucket, error) {
	for _, col := range []string{ColReportingDate, ColBucket} {
		if !t.HasColumn(col) {
			return nil, fmt.Errorf("%w: %s has no %q column", contracts.ErrInvalidTable, t.Name, col)
		}
	}
	for m := 1; m <= contracts.Horizons*contracts.MonthsPerHorizon; m++ {
		if !t.HasColumn(MonthColumn(m)) {
			return nil, fmt.Errorf("%w: %s has no %q column", contracts.ErrInvalidTable, t.Name, MonthColumn(m))
		}
	}
	useCode := t.HasColumn(ColCode) && f.Code != ""
	useType := t.HasColumn(ColType) && f.Type != ""
	want := contracts.DateOf(f.ReportingDate)

	var out []contracts.Bucket
	for i := 0; i < t.Len(); i++ {
		d, ok := dateCell(t, i, ColReportingDate)
		if !ok || !d.Equal(want) {
			continue
		}
		if useCode && t.Text(i, ColCode) != f.Code {
			continue
		}
		if useType && t.Text(i, ColType) != f.Type {
			continue
		}
		ordinal, ok := t.Int(i, ColBucket)
		if !ok || ordinal == 0 {
			continue
		}

		b := contracts.Bucket{ReportingDate: want, Ordinal: ordinal}
		for h := 0; h < contracts.Horizons; h++ {
			sum := 0.0
			for m := 1; m <= contracts.MonthsPerHorizon; m++ {
				v, present := t.Float(i, MonthColumn(h*contracts.MonthsPerHorizon+m))
				if !present {
					sum = math.NaN()
					break
				}
				sum += v
			}
			b.TTC[h] = sum
			b.LogitTTC[h], b.LogitPIT[h], b.PITRaw[h], b.PIT[h] = math.NaN(), math.NaN(), math.NaN(), math.NaN()
		}
		out = append(out, b)
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no buckets for %s in %s", contracts.ErrEmptySource, want.Format(contracts.DateLayout), t.Name)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Ordinal < out[b].Ordinal })
	for i := 1; i < len(out); i++ {
		if out[i].Ordinal == out[i-1].Ordinal {
			return nil, fmt.Errorf("%w: bucket %d appears twice", contracts.ErrInvalidTable, out[i].Ordinal)
		}
	}
	return out, nil
}
