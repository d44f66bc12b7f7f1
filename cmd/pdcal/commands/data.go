package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/pdcal/internal/report"
)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import [file.xlsx]",
	Short: "엑셀 시트를 결과 저장소에 테이블로 적재",
	Long: `엑셀 워크북의 한 시트를 타입이 지정된 테이블로 읽어 저장소에 씁니다.

첫 행은 헤더입니다. 헤더에 "date"가 포함되고 모든 값이 날짜이면 날짜 컬럼,
모든 값이 숫자이면 숫자 컬럼, 그 외는 텍스트 컬럼입니다. 빈 셀은 결측입니다.

Example:
  go run ./cmd/pdcal import mev.xlsx --table mev_transformation
  go run ./cmd/pdcal import buckets.xlsx --table pd_weighted_average --sheet PD`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export [file.xlsx] [table...]",
	Short: "저장된 테이블을 엑셀 워크북으로 내보내기",
	Long: `저장된 결과 테이블을 테이블당 시트 하나로 엑셀 워크북에 씁니다.
테이블을 지정하지 않으면 전체 테이블을 내보냅니다.

Example:
  go run ./cmd/pdcal export results.xlsx
  go run ./cmd/pdcal export scalar.xlsx pd_scalar bucket`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExport,
}

var (
	importTableName string
	importSheet     string
)

func init() {
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)

	importCmd.Flags().StringVar(&importTableName, "table", "", "대상 테이블 이름 (기본: calibration data.source)")
	importCmd.Flags().StringVar(&importSheet, "sheet", "", "시트 이름 (기본: 첫 시트)")
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	d, err := initDeps(ctx)
	if err != nil {
		return err
	}
	defer d.Close()

	tableName := importTableName
	if tableName == "" {
		tableName = d.calib.Data.Source
	}

	t, err := importTable(ctx, d.store, args[0], importSheet, tableName)
	if err != nil {
		return err
	}

	fmt.Printf("✅ Imported %s → %s (%d rows, %d columns)\n", args[0], t.Name, t.Len(), len(t.Columns))
	report.WriteTable(os.Stdout, t, maxRows)
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	start := time.Now()

	d, err := initDeps(ctx)
	if err != nil {
		return err
	}
	defer d.Close()

	path, names := args[0], args[1:]
	if err := report.Export(ctx, d.store, path, names...); err != nil {
		return fmt.Errorf("export: %w", err)
	}

	fmt.Printf("✅ Exported to %s in %.2fs\n", path, time.Since(start).Seconds())
	return nil
}
