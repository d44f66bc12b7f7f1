package report

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/wonny/pdcal/internal/contracts"
)

// maxSheetName is the Excel limit on sheet name length
const maxSheetName = 31

// ExportWorkbook writes one sheet per table (header row, then values) to path.
// Dates are written as YYYY-MM-DD text so that re-import infers them as dates.
func ExportWorkbook(path string, tables []*contracts.Table) error {
	if len(tables) == 0 {
		return fmt.Errorf("%w: nothing to export", contracts.ErrEmptySource)
	}

	f := excelize.NewFile()
	defer f.Close()

	seen := make(map[string]bool, len(tables))
	for i, t := range tables {
		name := sheetName(t.Name)
		if seen[name] {
			return fmt.Errorf("%w: duplicate sheet %q", contracts.ErrInvalidTable, name)
		}
		seen[name] = true

		// 첫 테이블은 기본 시트 이름을 바꿔 사용
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
				return fmt.Errorf("rename sheet %s: %w", name, err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("new sheet %s: %w", name, err)
		}
		if err := writeSheet(f, name, t); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}
	return nil
}

// Export reads the named tables (every stored table when names is empty) and writes them
func Export(ctx context.Context, store contracts.TableStore, path string, names ...string) error {
	if len(names) == 0 {
		infos, err := store.List(ctx)
		if err != nil {
			return fmt.Errorf("list tables: %w", err)
		}
		for _, info := range infos {
			names = append(names, info.Name)
		}
	}

	tables := make([]*contracts.Table, 0, len(names))
	for _, name := range names {
		t, err := store.Read(ctx, name)
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		tables = append(tables, t)
	}
	return ExportWorkbook(path, tables)
}

func writeSheet(f *excelize.File, sheet string, t *contracts.Table) error {
	header := make([]interface{}, len(t.Columns))
	for j, c := range t.Columns {
		header[j] = c.Name
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write %s header: %w", sheet, err)
	}

	for i, r := range t.Rows {
		values := make([]interface{}, len(r))
		for j, v := range r {
			if d, ok := v.(time.Time); ok {
				values[j] = d.Format(contracts.DateLayout)
				continue
			}
			values[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func sheetName(table string) string {
	if len(table) > maxSheetName {
		return table[:maxSheetName]
	}
	return table
}
