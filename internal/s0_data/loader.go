package s0_data

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/wonny/pdcal/internal/contracts"
)

// Loader builds the VariableTable from a stored source table
// ⭐ SSOT: S0 입력 (MEV 변환 테이블 → VariableTable)
type Loader struct {
	store      contracts.TableReader
	dateColumn string
	log        zerolog.Logger
}

// NewLoader creates a new Loader
func NewLoader(store contracts.TableReader, dateColumn string, log zerolog.Logger) *Loader {
	return &Loader{
		store:      store,
		dateColumn: dateColumn,
		log:        log.With().Str("component", "s0_data.loader").Logger(),
	}
}

// Load reads the source table and keeps its numeric columns
func (l *Loader) Load(ctx context.Context, source string) (*contracts.VariableTable, error) {
	t, err := l.store.Read(ctx, source)
	if errors.Is(err, contracts.ErrTableNotFound) {
		return nil, fmt.Errorf("%w: %s", contracts.ErrEmptySource, source)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", source, err)
	}

	vt, dropped, err := VariableTableFromTable(t, l.dateColumn)
	if err != nil {
		return nil, err
	}
	if dropped > 0 {
		l.log.Warn().Str("source", source).Int("rows", dropped).Msg("rows without a date were dropped")
	}

	l.log.Info().
		Str("source", source).
		Int("dates", vt.Len()).
		Int("variables", len(vt.Names())).
		Msg("variable table loaded")

	return vt, nil
}

// VariableTableFromTable converts a stored table into a VariableTable.
// Rows without a date are dropped (their count is returned); non-numeric columns are ignored.
func VariableTableFromTable(t *contracts.Table, dateColumn string) (*contracts.VariableTable, int, error) {
	if t == nil || t.Len() == 0 {
		return nil, 0, contracts.ErrEmptySource
	}
	di := t.ColumnIndex(dateColumn)
	if di < 0 {
		return nil, 0, fmt.Errorf("%w: %s has no %q column", contracts.ErrInvalidTable, t.Name, dateColumn)
	}

	var numeric []string
	for _, c := range t.Columns {
		if c.Name == dateColumn {
			continue
		}
		if c.Kind == contracts.KindFloat || c.Kind == contracts.KindInt {
			numeric = append(numeric, c.Name)
		}
	}
	if len(numeric) == 0 {
		return nil, 0, fmt.Errorf("%w: %s has no numeric columns", contracts.ErrEmptySource, t.Name)
	}

	dates := make([]time.Time, 0, t.Len())
	values := make([][]float64, len(numeric))
	dropped := 0
	for i := 0; i < t.Len(); i++ {
		d, ok := dateCell(t, i, dateColumn)
		if !ok {
			dropped++
			continue
		}
		dates = append(dates, d)
		for j, name := range numeric {
			v, _ := t.Float(i, name)
			values[j] = append(values[j], v)
		}
	}
	if len(dates) == 0 {
		return nil, dropped, fmt.Errorf("%w: %s has no dated rows", contracts.ErrEmptySource, t.Name)
	}

	vars := make([]contracts.Variable, len(numeric))
	for j, name := range numeric {
		vars[j] = contracts.Variable{Name: name, Values: values[j]}
	}

	vt, err := contracts.NewVariableTable(dates, vars)
	if err != nil {
		return nil, dropped, fmt.Errorf("build variable table: %w", err)
	}
	return vt, dropped, nil
}

// dateCell reads a date column that may have been stored as text
func dateCell(t *contracts.Table, row int, col string) (time.Time, bool) {
	if d, ok := t.Date(row, col); ok {
		return d, true
	}
	if s := t.Text(row, col); s != "" {
		if d, err := contracts.ParseDate(s); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}
