package s0_data

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/wonny/pdcal/internal/contracts"
)

// ImportWorkbook parses one sheet of an .xlsx file into a typed table.
// The first row is the header. A column is a date column when its header
// mentions "date" and every filled cell parses as a date, numeric when every
// filled cell parses as a number, text otherwise. Empty cells are missing.
func ImportWorkbook(path, sheet, tableName string) (*contracts.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("%w: workbook has no sheets", contracts.ErrEmptySource)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%w: sheet %q has no data rows", contracts.ErrEmptySource, sheet)
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(h)
		if header[i] == "" {
			return nil, fmt.Errorf("%w: empty header in column %d", contracts.ErrInvalidTable, i+1)
		}
	}
	body := rows[1:]

	cols := make([]contracts.Column, len(header))
	for j, name := range header {
		cols[j] = contracts.Column{Name: name, Kind: inferKind(name, body, j)}
	}

	t := contracts.NewTable(tableName, cols...)
	for r, row := range body {
		values := make([]interface{}, len(cols))
		empty := true
		for j, col := range cols {
			cell := ""
			if j < len(row) {
				cell = strings.TrimSpace(row[j])
			}
			if cell == "" {
				continue
			}
			empty = false
			values[j] = cell
			if col.Kind == contracts.KindDate {
				d, err := contracts.ParseDate(cell)
				if err != nil {
					return nil, fmt.Errorf("row %d: %w", r+2, err)
				}
				values[j] = d
			}
		}
		if empty {
			continue
		}
		if err := t.Append(values...); err != nil {
			return nil, fmt.Errorf("row %d: %w", r+2, err)
		}
	}
	return t, nil
}

func inferKind(name string, body [][]string, j int) contracts.ColumnKind {
	numeric, dates, filled := true, true, 0
	for _, row := range body {
		if j >= len(row) {
			continue
		}
		cell := strings.TrimSpace(row[j])
		if cell == "" {
			continue
		}
		filled++
		if _, err := strconv.ParseFloat(cell, 64); err != nil {
			numeric = false
		}
		if _, err := contracts.ParseDate(cell); err != nil {
			dates = false
		}
	}
	switch {
	case filled > 0 && dates && strings.Contains(strings.ToLower(name), "date"):
		return contracts.KindDate
	case filled > 0 && numeric:
		return contracts.KindFloat
	default:
		return contracts.KindText
	}
}
