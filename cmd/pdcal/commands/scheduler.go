package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/pdcal/internal/api"
	"github.com/wonny/pdcal/internal/contracts"
	"github.com/wonny/pdcal/internal/report"
	"github.com/wonny/pdcal/internal/scheduler"
	"github.com/wonny/pdcal/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "스케줄러 관리",
	Long: `스케줄러를 시작하거나 작업을 관리합니다.

Subcommands:
  start   - 스케줄러 시작
  list    - 등록된 작업 목록
  run     - 특정 작업 즉시 실행
  status  - 작업 실행 상태 조회

Example:
  go run ./cmd/pdcal scheduler start
  go run ./cmd/pdcal scheduler list
  go run ./cmd/pdcal scheduler run calibration`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "스케줄러 시작",
		Long: `스케줄러를 시작하고 등록된 모든 작업을 스케줄합니다.

등록되는 작업:
- calibration: $CALIBRATION_CRON (기본: 매월 1일 06:00, 전체 파이프라인)
- run_history_prune: 매주 일요일 03:00 (실행 이력 정리)

METRICS_ENABLED이면 $METRICS_PORT에서 /metrics를 함께 제공합니다.
스케줄러는 Ctrl+C로 종료할 수 있습니다.`,
		RunE: runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "등록된 작업 목록",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "특정 작업 즉시 실행",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}

	schedulerStatusCmd = &cobra.Command{
		Use:   "status",
		Short: "작업 실행 상태 조회",
		RunE:  showStatus,
	}

	historyKeep int
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
	schedulerCmd.AddCommand(schedulerStatusCmd)

	schedulerCmd.PersistentFlags().IntVar(&historyKeep, "history", 120, "보관할 실행 이력 수")
}

func runScheduler(cmd *cobra.Command, args []string) error {
	fmt.Println("=== PD Calibration Scheduler ===")

	d, sched, err := initScheduler(cmd.Context())
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer d.Close()

	sched.Start()

	// Metrics endpoint for the long-running process
	var metricsServer *api.Server
	if d.registry != nil {
		mcfg := *d.cfg
		mcfg.Port = d.cfg.MetricsPort
		metricsServer = api.New(&mcfg, d.log, api.NewRouter(routerDeps(d)))
		go func() {
			if err := metricsServer.Serve(cmd.Context()); err != nil {
				d.log.WithError(err).Error("Metrics server failed")
			}
		}()
	}

	fmt.Println("\n✅ Scheduler started successfully")
	fmt.Println("\nRegistered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		next, _ := sched.NextRun(jobName)
		fmt.Printf("  - %-20s next: %s\n", jobName, formatNext(next))
	}
	if metricsServer != nil {
		fmt.Printf("\n📈 Metrics on http://localhost%s/metrics\n", metricsServer.Addr())
	}
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	<-cmd.Context().Done()

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()
	fmt.Println("Scheduler stopped")

	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	d, sched, err := initScheduler(cmd.Context())
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer d.Close()

	jobNames := sched.GetAllJobs()
	stats := sched.GetJobStats()

	fmt.Println("Registered jobs:")
	for _, jobName := range jobNames {
		fmt.Printf("  - %-20s %s\n", jobName, stats[jobName].Schedule)
	}

	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]

	fmt.Printf("Running job: %s\n", jobName)

	d, sched, err := initScheduler(cmd.Context())
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer d.Close()

	start := time.Now()
	if err := sched.RunJob(cmd.Context(), jobName); err != nil {
		return fmt.Errorf("run job: %w", err)
	}

	fmt.Printf("✅ Job %s completed in %.2fs\n", jobName, time.Since(start).Seconds())
	return nil
}

// showStatus prints job schedules and the persisted run history.
// 작업 통계는 실행 중인 스케줄러 프로세스 메모리에만 있음
func showStatus(cmd *cobra.Command, args []string) error {
	d, sched, err := initScheduler(cmd.Context())
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer d.Close()

	stats := sched.GetJobStats()
	fmt.Println("Job Schedules:")
	fmt.Println()
	for _, jobName := range sched.GetAllJobs() {
		stat := stats[jobName]
		fmt.Printf("📊 %s\n", jobName)
		fmt.Printf("   Schedule: %s\n", stat.Schedule)
		fmt.Println()
	}

	runs, err := d.store.Read(cmd.Context(), contracts.TableRuns)
	if err != nil {
		fmt.Println("No calibration runs recorded yet")
		return nil
	}

	fmt.Printf("Recent calibration runs (%d total):\n", runs.Len())
	from := runs.Len() - 10
	if from < 0 {
		from = 0
	}
	recent := runs.Clone()
	recent.Rows = recent.Rows[from:]
	report.WriteTable(os.Stdout, recent, 0)

	return nil
}

func initScheduler(ctx context.Context) (*deps, *scheduler.Scheduler, error) {
	d, err := initDeps(ctx)
	if err != nil {
		return nil, nil, err
	}

	orchestrator, err := d.newOrchestrator(nil)
	if err != nil {
		d.Close()
		return nil, nil, fmt.Errorf("init orchestrator: %w", err)
	}

	sched := scheduler.New(d.log)

	// Register jobs
	toRegister := []scheduler.Job{
		jobs.NewCalibrationJob(orchestrator, d.cfg.CalibrationCron, d.log),
		jobs.NewRunHistoryPruneJob(d.store, historyKeep, d.log),
	}
	for _, job := range toRegister {
		if err := sched.AddJob(job); err != nil {
			d.Close()
			return nil, nil, err
		}
	}

	return d, sched, nil
}

func formatNext(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02 15:04:05")
}
