package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/pdcal/internal/api"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "결과 조회 API 서버 시작",
	Long: `저장된 캘리브레이션 결과를 읽기 전용으로 제공하는 REST API 서버를 시작합니다.

Endpoints:
  GET  /health               - Health check
  GET  /metrics              - Prometheus metrics (METRICS_ENABLED)
  GET  /api/tables           - 저장된 테이블 목록
  GET  /api/tables/{name}    - 테이블 조회 (?offset=&limit=)
  GET  /api/runs             - 최근 실행 이력 (?limit=)

Example:
  go run ./cmd/pdcal api
  go run ./cmd/pdcal api --port 8080`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (기본: $PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== PD Calibration API Server ===")

	d, err := initDeps(cmd.Context())
	if err != nil {
		return err
	}
	defer d.Close()

	// Override port if flag is set
	if apiPort != "" {
		d.cfg.Port = apiPort
	}

	router := api.NewRouter(routerDeps(d))
	server := api.New(d.cfg, d.log, router)

	fmt.Printf("\n✅ Server running on http://localhost%s\n", server.Addr())
	fmt.Println("\nPress Ctrl+C to stop")

	if err := server.Serve(cmd.Context()); err != nil {
		return err
	}

	d.log.Info("Server stopped")
	return nil
}

// routerDeps avoids handing typed nils to the router's interfaces
func routerDeps(d *deps) api.RouterDeps {
	rd := api.RouterDeps{
		Store:     d.store,
		RateLimit: d.cfg.APIRateLimit,
		RateBurst: d.cfg.APIRateBurst,
		Logger:    d.log,
	}
	if d.db != nil {
		rd.Health = d.db
	}
	if d.registry != nil {
		rd.Gatherer = d.registry
	}
	return rd
}
