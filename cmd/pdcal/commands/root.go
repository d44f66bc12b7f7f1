package commands

import (
	"context"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	calibrationFile string
	storeBackend    string
	mevWorkbook     string
	bucketWorkbook  string
	maxRows         int
	verbose         bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pdcal",
	Short: "PD calibration pipeline (MEV → PIT/TTC PD curves)",
	Long: `pdcal Unified CLI

거시경제변수(MEV)와 관측 부도율(ODR)로부터 PIT/TTC 조정 PD 커브를 산출합니다.
6단계 파이프라인: S0 데이터 → S1 상관 → S2 정규성 → S3 회귀 → S4 ARIMA → S5 스케일링.

Usage:
  go run ./cmd/pdcal [command]

Examples:
  go run ./cmd/pdcal run
  go run ./cmd/pdcal run --store memory --mev mev.xlsx --buckets buckets.xlsx
  go run ./cmd/pdcal correlation
  go run ./cmd/pdcal export results.xlsx
  go run ./cmd/pdcal test-db`,
	SilenceUsage: true,
}

// ExecuteContext runs the root command with ctx (cancelled on SIGINT/SIGTERM)
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&calibrationFile, "calibration", "", "calibration YAML (default: $CALIBRATION_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&storeBackend, "store", "", "table store backend: postgres|memory (default: $STORE_BACKEND)")
	rootCmd.PersistentFlags().StringVar(&mevWorkbook, "mev", "", "import the MEV workbook (.xlsx) as the variable source before running")
	rootCmd.PersistentFlags().StringVar(&bucketWorkbook, "buckets", "", "import the bucket PD workbook (.xlsx) before running")
	rootCmd.PersistentFlags().IntVar(&maxRows, "max-rows", 20, "rows printed per result table (0 = all)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}
