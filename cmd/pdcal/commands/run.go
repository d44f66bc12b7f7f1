package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wonny/pdcal/internal/brain"
	"github.com/wonny/pdcal/internal/contracts"
	"github.com/wonny/pdcal/internal/report"
	"github.com/wonny/pdcal/internal/s3_regression"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "전체 파이프라인 실행 (S0 → S5)",
	Long: `6단계 캘리브레이션 파이프라인을 순차적으로 실행합니다.

S0 → S1 → S2 → S3 → S4 → S5

각 단계:
- S0: MEV 테이블 로드 및 커버리지 검증
- S1: Pearson 상관 게이트
- S2: KS / Shapiro-Wilk 정규성 게이트
- S3: logit(ODR) OLS 회귀
- S4: ARIMA 그리드 탐색 및 48개월 예측
- S5: TTC → PIT 변환, goal-seek, 월별 PD 커브

실패한 단계는 아무 테이블도 쓰지 않고 실행을 중단합니다.

Example:
  go run ./cmd/pdcal run
  go run ./cmd/pdcal run --stages S3,S4,S5
  go run ./cmd/pdcal run --store memory --mev mev.xlsx --buckets buckets.xlsx`,
	RunE: runPipeline,
}

var (
	runStages string
	runQuiet  bool
)

// stageCommands are single-stage shortcuts reading upstream tables from the store
var stageCommands = []struct {
	use   string
	stage contracts.Stage
	short string
}{
	{"correlation", contracts.StageCorrelation, "S1 상관 게이트만 실행"},
	{"normality", contracts.StageNormality, "S2 정규성 게이트만 실행"},
	{"regression", contracts.StageRegression, "S3 회귀만 실행"},
	{"arima", contracts.StageTimeSeries, "S4 ARIMA 선택/예측만 실행"},
	{"scaling", contracts.StageScaling, "S5 PIT/TTC 스케일링만 실행"},
}

func init() {
	rootCmd.AddCommand(runCmd)

	// Flags
	runCmd.Flags().StringVar(&runStages, "stages", "", "쉼표로 구분된 단계 (예: S1,S2). 기본: 전체")
	runCmd.Flags().BoolVarP(&runQuiet, "quiet", "q", false, "결과 테이블 출력 생략")

	for _, sc := range stageCommands {
		stage := sc.stage
		cmd := &cobra.Command{
			Use:   sc.use,
			Short: sc.short,
			Long: fmt.Sprintf(`%s (%s)

S0 변수 테이블과 선행 단계 결과는 저장소에서 읽습니다.
선행 단계 테이블이 없으면 실패합니다.

Example:
  go run ./cmd/pdcal %s`, sc.short, stage.Description(), sc.use),
			RunE: func(cmd *cobra.Command, args []string) error {
				return executeRun(cmd, []contracts.Stage{contracts.StageData, stage})
			},
		}
		cmd.Flags().BoolVarP(&runQuiet, "quiet", "q", false, "결과 테이블 출력 생략")
		rootCmd.AddCommand(cmd)
	}
}

func runPipeline(cmd *cobra.Command, args []string) error {
	stages, err := parseStages(runStages)
	if err != nil {
		return err
	}
	return executeRun(cmd, stages)
}

// parseStages accepts "S1,S2" or full names; empty means all stages
func parseStages(raw string) ([]contracts.Stage, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var stages []contracts.Stage
	for _, part := range strings.Split(raw, ",") {
		stage, ok := contracts.ParseStage(strings.ToUpper(strings.TrimSpace(part)))
		if !ok {
			return nil, fmt.Errorf("unknown stage %q", part)
		}
		stages = append(stages, stage)
	}
	return stages, nil
}

func executeRun(cmd *cobra.Command, stages []contracts.Stage) error {
	ctx := cmd.Context()
	fmt.Println("=== PD Calibration Pipeline ===")

	d, err := initDeps(ctx)
	if err != nil {
		return err
	}
	defer d.Close()

	console := report.NewConsole(os.Stdout, maxRows)
	if runQuiet {
		console.Quiet()
	}

	orchestrator, err := d.newOrchestrator(console)
	if err != nil {
		return fmt.Errorf("init orchestrator: %w", err)
	}

	runConfig := brain.RunConfig{
		RunID:  brain.GenerateRunID(),
		Stages: stages,
	}
	fmt.Printf("\n📂 Calibration: %s (%s)\n", d.cfg.CalibrationFile, d.calib.Meta.Portfolio)
	fmt.Printf("🚀 Starting pipeline run: %s\n", runConfig.RunID)

	result, err := orchestrator.Run(ctx, runConfig)
	if result != nil {
		console.RunSummary(result.Summary)
	}
	if err != nil {
		return fmt.Errorf("pipeline run failed: %w", err)
	}

	printHighlights(cmd, d, result)
	return nil
}

// printHighlights prints the regression equation and the curve totals when those stages ran
func printHighlights(cmd *cobra.Command, d *deps, result *brain.RunResult) {
	for _, stage := range result.Summary.Completed {
		switch stage {
		case contracts.StageRegression:
			model, err := loadModel(cmd, d)
			if err != nil {
				d.log.WithError(err).Warn("Failed to reload regression model")
				continue
			}
			fmt.Println()
			report.WriteRegression(os.Stdout, model)
		case contracts.StageScaling:
			fmt.Println()
			report.WriteCurveTotals(os.Stdout, result.Totals)
		}
	}
}

func loadModel(cmd *cobra.Command, d *deps) (*contracts.RegressionModel, error) {
	modelTable, err := d.store.Read(cmd.Context(), contracts.TableRegressionModel)
	if err != nil {
		return nil, err
	}
	coefficients, err := d.store.Read(cmd.Context(), contracts.TableRegressionCoefficients)
	if err != nil {
		return nil, err
	}
	return s3_regression.ModelFromTables(modelTable, coefficients)
}
