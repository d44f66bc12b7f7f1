package contracts

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Variable is one named numeric series aligned to VariableTable.Dates.
// Missing observations are NaN.
type Variable struct {
	Name   string
	Values []float64
}

// VariableTable is the date-indexed matrix of MEVs plus the target.
// ⭐ SSOT: S0 → S1~S4 공통 입력. 생성 후 불변 (접근자는 복사본 반환)
type VariableTable struct {
	dates []time.Time
	vars  []Variable
	index map[string]int
}

// NewVariableTable validates and sorts the input by date
func NewVariableTable(dates []time.Time, vars []Variable) (*VariableTable, error) {
	n := len(dates)
	index := make(map[string]int, len(vars))
	for i, v := range vars {
		if v.Name == "" {
			return nil, fmt.Errorf("%w: variable %d has no name", ErrInvalidTable, i)
		}
		if _, dup := index[v.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate variable %q", ErrInvalidTable, v.Name)
		}
		if len(v.Values) != n {
			return nil, fmt.Errorf("%w: variable %q has %d values for %d dates", ErrInvalidTable, v.Name, len(v.Values), n)
		}
		index[v.Name] = i
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return dates[order[a]].Before(dates[order[b]]) })

	vt := &VariableTable{
		dates: make([]time.Time, n),
		vars:  make([]Variable, len(vars)),
		index: index,
	}
	for i, src := range order {
		vt.dates[i] = DateOf(dates[src])
		if i > 0 && vt.dates[i].Equal(vt.dates[i-1]) {
			return nil, fmt.Errorf("%w: duplicate date %s", ErrInvalidTable, vt.dates[i].Format(DateLayout))
		}
	}
	for j, v := range vars {
		values := make([]float64, n)
		for i, src := range order {
			values[i] = v.Values[src]
		}
		vt.vars[j] = Variable{Name: v.Name, Values: values}
	}

	return vt, nil
}

// Len returns the number of dates
func (vt *VariableTable) Len() int {
	return len(vt.dates)
}

// Dates returns a copy of the date index
func (vt *VariableTable) Dates() []time.Time {
	return append([]time.Time(nil), vt.dates...)
}

// LastDate returns the latest date (zero time for an empty table)
func (vt *VariableTable) LastDate() time.Time {
	if len(vt.dates) == 0 {
		return time.Time{}
	}
	return vt.dates[len(vt.dates)-1]
}

// Names returns variable names in column order
func (vt *VariableTable) Names() []string {
	names := make([]string, len(vt.vars))
	for i, v := range vt.vars {
		names[i] = v.Name
	}
	return names
}

// Has reports whether a variable exists
func (vt *VariableTable) Has(name string) bool {
	_, ok := vt.index[name]
	return ok
}

// Column returns a copy of a variable's values
func (vt *VariableTable) Column(name string) ([]float64, bool) {
	i, ok := vt.index[name]
	if !ok {
		return nil, false
	}
	return append([]float64(nil), vt.vars[i].Values...), true
}

// Coverage returns the share of non-missing observations of a variable
func (vt *VariableTable) Coverage(name string) float64 {
	values, ok := vt.Column(name)
	if !ok || len(values) == 0 {
		return 0
	}
	present := 0
	for _, v := range values {
		if !math.IsNaN(v) {
			present++
		}
	}
	return float64(present) / float64(len(values))
}

// Select returns a new table restricted to the named variables
func (vt *VariableTable) Select(names ...string) (*VariableTable, error) {
	vars := make([]Variable, 0, len(names))
	for _, name := range names {
		values, ok := vt.Column(name)
		if !ok {
			return nil, fmt.Errorf("%w: unknown variable %q", ErrInvalidTable, name)
		}
		vars = append(vars, Variable{Name: name, Values: values})
	}
	return NewVariableTable(vt.dates, vars)
}

// ToTable renders the variable table with a leading date column
func (vt *VariableTable) ToTable(name, dateColumn string) (*Table, error) {
	cols := []Column{DateCol(dateColumn)}
	for _, v := range vt.vars {
		cols = append(cols, FloatCol(v.Name))
	}
	t := NewTable(name, cols...)
	for i, d := range vt.dates {
		row := make([]interface{}, 0, len(cols))
		row = append(row, d)
		for _, v := range vt.vars {
			row = append(row, v.Values[i])
		}
		if err := t.Append(row...); err != nil {
			return nil, err
		}
	}
	return t, nil
}
