package contracts

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// DateLayout is the on-disk representation of date cells
const DateLayout = "2006-01-02"

// ColumnKind is the value type of a table column
type ColumnKind string

const (
	KindText  ColumnKind = "text"
	KindFloat ColumnKind = "float"
	KindInt   ColumnKind = "int"
	KindBool  ColumnKind = "bool"
	KindDate  ColumnKind = "date"
)

// Column describes one table column
type Column struct {
	Name string     `json:"name"`
	Kind ColumnKind `json:"kind"`
}

// Helpers for building column lists
func TextCol(name string) Column  { return Column{Name: name, Kind: KindText} }
func FloatCol(name string) Column { return Column{Name: name, Kind: KindFloat} }
func IntCol(name string) Column   { return Column{Name: name, Kind: KindInt} }
func BoolCol(name string) Column  { return Column{Name: name, Kind: KindBool} }
func DateCol(name string) Column  { return Column{Name: name, Kind: KindDate} }

// Row holds one value per column. nil is a missing value.
// Cells are string, float64, int, bool or time.Time according to the column kind.
type Row []interface{}

// Table is the unit of persistence: a named, typed, row-oriented result set.
// A Table is not safe for concurrent mutation; concurrent reads are fine.
type Table struct {
	Name    string
	Columns []Column
	Rows    []Row

	index map[string]int
}

// NewTable creates an empty table
func NewTable(name string, cols ...Column) *Table {
	t := &Table{Name: name, Columns: append([]Column(nil), cols...)}
	t.reindex()
	return t
}

func (t *Table) reindex() {
	t.index = make(map[string]int, len(t.Columns))
	for i, c := range t.Columns {
		t.index[c.Name] = i
	}
}

// Len returns the row count
func (t *Table) Len() int {
	return len(t.Rows)
}

// ColumnIndex returns the position of a column or -1
func (t *Table) ColumnIndex(name string) int {
	if t.index != nil {
		if i, ok := t.index[name]; ok {
			return i
		}
		return -1
	}
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// HasColumn reports whether the table has a column
func (t *Table) HasColumn(name string) bool {
	return t.ColumnIndex(name) >= 0
}

// ColumnNames returns the column names in order
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Append normalises and appends one row.
// NaN and ±Inf floats are stored as missing.
func (t *Table) Append(values ...interface{}) error {
	if len(values) != len(t.Columns) {
		return fmt.Errorf("%w: %s: row has %d values, want %d", ErrInvalidTable, t.Name, len(values), len(t.Columns))
	}
	row := make(Row, len(values))
	for i, v := range values {
		cell, err := normalizeCell(t.Columns[i].Kind, v)
		if err != nil {
			return fmt.Errorf("%w: %s.%s: %v", ErrInvalidTable, t.Name, t.Columns[i].Name, err)
		}
		row[i] = cell
	}
	t.Rows = append(t.Rows, row)
	return nil
}

func (t *Table) cell(row int, col string) (interface{}, bool) {
	i := t.ColumnIndex(col)
	if i < 0 || row < 0 || row >= len(t.Rows) {
		return nil, false
	}
	v := t.Rows[row][i]
	return v, v != nil
}

// Float returns a numeric cell (int cells are widened). Missing gives (NaN, false).
func (t *Table) Float(row int, col string) (float64, bool) {
	v, ok := t.cell(row, col)
	if !ok {
		return math.NaN(), false
	}
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	default:
		return math.NaN(), false
	}
}

// Int returns an integer cell
func (t *Table) Int(row int, col string) (int, bool) {
	v, ok := t.cell(row, col)
	if !ok {
		return 0, false
	}
	switch x := v.(type) {
	case int:
		return x, true
	case float64:
		return int(x), x == math.Trunc(x)
	default:
		return 0, false
	}
}

// Text returns a text cell or ""
func (t *Table) Text(row int, col string) string {
	v, ok := t.cell(row, col)
	if !ok {
		return ""
	}
	if s, isStr := v.(string); isStr {
		return s
	}
	return fmt.Sprint(v)
}

// Bool returns a boolean cell
func (t *Table) Bool(row int, col string) (bool, bool) {
	v, ok := t.cell(row, col)
	if !ok {
		return false, false
	}
	b, isBool := v.(bool)
	return b, isBool
}

// Date returns a date cell
func (t *Table) Date(row int, col string) (time.Time, bool) {
	v, ok := t.cell(row, col)
	if !ok {
		return time.Time{}, false
	}
	d, isDate := v.(time.Time)
	return d, isDate
}

// FloatColumn returns a column as floats with NaN for missing values
func (t *Table) FloatColumn(col string) []float64 {
	out := make([]float64, len(t.Rows))
	for i := range t.Rows {
		out[i], _ = t.Float(i, col)
	}
	return out
}

// Clone returns a deep copy (cells are immutable values)
func (t *Table) Clone() *Table {
	c := NewTable(t.Name, t.Columns...)
	c.Rows = make([]Row, len(t.Rows))
	for i, r := range t.Rows {
		c.Rows[i] = append(Row(nil), r...)
	}
	return c
}

type tableJSON struct {
	Name    string          `json:"name"`
	Columns []Column        `json:"columns"`
	Rows    [][]interface{} `json:"rows"`
}

// MarshalJSON encodes dates as YYYY-MM-DD and missing cells as null
func (t *Table) MarshalJSON() ([]byte, error) {
	out := tableJSON{Name: t.Name, Columns: t.Columns, Rows: make([][]interface{}, len(t.Rows))}
	for i, r := range t.Rows {
		out.Rows[i] = EncodeRow(r)
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes and re-types every cell according to its column kind
func (t *Table) UnmarshalJSON(data []byte) error {
	var in tableJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	decoded := NewTable(in.Name, in.Columns...)
	for _, raw := range in.Rows {
		if err := decoded.Append(raw...); err != nil {
			return err
		}
	}
	*t = *decoded
	return nil
}

// EncodeRow converts a row to JSON-friendly values
func EncodeRow(r Row) []interface{} {
	out := make([]interface{}, len(r))
	for i, v := range r {
		if d, ok := v.(time.Time); ok {
			out[i] = d.Format(DateLayout)
			continue
		}
		out[i] = v
	}
	return out
}

func normalizeCell(kind ColumnKind, v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	switch kind {
	case KindFloat:
		var f float64
		switch x := v.(type) {
		case float64:
			f = x
		case float32:
			f = float64(x)
		case int:
			f = float64(x)
		case int64:
			f = float64(x)
		case json.Number:
			parsed, err := x.Float64()
			if err != nil {
				return nil, err
			}
			f = parsed
		case string:
			parsed, err := strconv.ParseFloat(x, 64)
			if err != nil {
				return nil, fmt.Errorf("not a number: %q", x)
			}
			f = parsed
		default:
			return nil, fmt.Errorf("unexpected %T for float column", v)
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, nil
		}
		return f, nil
	case KindInt:
		switch x := v.(type) {
		case int:
			return x, nil
		case int32:
			return int(x), nil
		case int64:
			return int(x), nil
		case float64:
			if x != math.Trunc(x) {
				return nil, fmt.Errorf("non-integer %v for int column", x)
			}
			return int(x), nil
		case json.Number:
			n, err := x.Int64()
			if err != nil {
				return nil, err
			}
			return int(n), nil
		default:
			return nil, fmt.Errorf("unexpected %T for int column", v)
		}
	case KindBool:
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("unexpected %T for bool column", v)
		}
		return b, nil
	case KindDate:
		switch x := v.(type) {
		case time.Time:
			return DateOf(x), nil
		case string:
			return ParseDate(x)
		default:
			return nil, fmt.Errorf("unexpected %T for date column", v)
		}
	case KindText:
		switch x := v.(type) {
		case string:
			return x, nil
		case fmt.Stringer:
			return x.String(), nil
		default:
			return fmt.Sprint(v), nil
		}
	default:
		return nil, fmt.Errorf("unknown column kind %q", kind)
	}
}
