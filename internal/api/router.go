package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/wonny/pdcal/internal/api/handlers"
	"github.com/wonny/pdcal/internal/contracts"
	"github.com/wonny/pdcal/pkg/logger"
)

// RouterDeps holds what the router needs to serve requests
type RouterDeps struct {
	Store  contracts.TableStore
	Health handlers.HealthChecker // nil when running on the memory store

	// Gatherer exposes /metrics when set
	Gatherer prometheus.Gatherer

	RateLimit float64
	RateBurst int

	Logger *logger.Logger
}

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(deps RouterDeps) http.Handler {
	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}

	tablesHandler := handlers.NewTablesHandler(deps.Store, log)
	runsHandler := handlers.NewRunsHandler(deps.Store, log)
	healthHandler := handlers.NewHealthHandler(deps.Health, "pdcal-api")

	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthHandler.Check).Methods("GET")

	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})).Methods("GET")
	}

	// API
	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/tables", tablesHandler.List).Methods("GET")
	api.HandleFunc("/tables/{name}", tablesHandler.Get).Methods("GET")
	api.HandleFunc("/runs", runsHandler.List).Methods("GET")

	// 외부 조회 API만 속도 제한 (health/metrics 제외)
	if deps.RateLimit > 0 {
		burst := deps.RateBurst
		if burst < 1 {
			burst = 1
		}
		api.Use(rateLimitMiddleware(rate.NewLimiter(rate.Limit(deps.RateLimit), burst)))
	}

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}
