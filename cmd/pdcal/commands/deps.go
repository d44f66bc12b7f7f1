package commands

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/wonny/pdcal/internal/brain"
	"github.com/wonny/pdcal/internal/calibration"
	"github.com/wonny/pdcal/internal/contracts"
	"github.com/wonny/pdcal/internal/s0_data"
	"github.com/wonny/pdcal/internal/store"
	"github.com/wonny/pdcal/pkg/config"
	"github.com/wonny/pdcal/pkg/database"
	"github.com/wonny/pdcal/pkg/logger"
	"github.com/wonny/pdcal/pkg/metrics"
	"github.com/wonny/pdcal/pkg/redis"
)

// deps holds everything a command needs, built once per process
type deps struct {
	cfg   *config.Config
	calib *calibration.Config
	log   *logger.Logger

	store contracts.TableStore
	db    *database.DB  // nil on the memory backend
	redis *redis.Client // nil when Redis is disabled

	registry *prometheus.Registry // nil when metrics are disabled
	metrics  *metrics.Recorder
}

// initDeps loads configuration and connects the table store.
// 1. env config → 2. logger → 3. calibration YAML → 4. store (+cache) → 5. metrics → 6. workbook imports
func initDeps(ctx context.Context) (*deps, error) {
	// 1. Load config
	cfg, err := config.Load(
		config.WithStoreBackend(storeBackend),
		config.WithCalibrationFile(calibrationFile),
	)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Calibration parameters
	calib, _, err := calibration.Load(cfg.CalibrationFile)
	if err != nil {
		return nil, fmt.Errorf("load calibration config: %w", err)
	}

	d := &deps{cfg: cfg, calib: calib, log: log}

	// 4. Table store
	if err := d.openStore(ctx); err != nil {
		d.Close()
		return nil, err
	}

	// 5. Metrics
	if cfg.MetricsEnabled {
		d.registry = prometheus.NewRegistry()
		d.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		d.metrics = metrics.New(d.registry)
	}

	// 6. Optional workbook imports (memory backend runs start empty)
	if err := d.importWorkbooks(ctx); err != nil {
		d.Close()
		return nil, err
	}

	return d, nil
}

func (d *deps) openStore(ctx context.Context) error {
	if d.cfg.StoreBackend == config.StoreMemory {
		d.log.Info("Using in-memory table store")
		d.store = store.NewMemory()
		return nil
	}

	db, err := database.New(d.cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	d.db = db

	pg := store.NewPostgres(db.Pool, db.Schema)
	if err := pg.EnsureSchema(ctx, db.Schema); err != nil {
		return err
	}
	d.store = pg
	d.log.WithField("schema", db.Schema).Info("Connected to database")

	rc, err := redis.New(d.cfg)
	if err != nil {
		// 캐시는 선택 사항: Redis 장애 시 DB 직접 조회
		d.log.WithError(err).Warn("Redis unavailable, reading tables without cache")
		return nil
	}
	if rc.Enabled() {
		d.redis = rc
		d.store = store.NewCached(pg, redis.NewCache(rc, "pdcal"), d.cfg.Redis.TableTTL, d.log.Component("store"))
		d.log.Info("Table cache enabled (Redis)")
	}
	return nil
}

func (d *deps) importWorkbooks(ctx context.Context) error {
	imports := []struct{ path, table string }{
		{mevWorkbook, d.calib.Data.Source},
		{bucketWorkbook, d.calib.Data.BucketSource},
	}
	for _, imp := range imports {
		if imp.path == "" {
			continue
		}
		if _, err := importTable(ctx, d.store, imp.path, "", imp.table); err != nil {
			return err
		}
		d.log.WithFields(map[string]interface{}{
			"file":  imp.path,
			"table": imp.table,
		}).Info("Workbook imported")
	}
	return nil
}

// importTable reads one workbook sheet and writes it under tableName
func importTable(ctx context.Context, st contracts.TableWriter, path, sheet, tableName string) (*contracts.Table, error) {
	t, err := s0_data.ImportWorkbook(path, sheet, tableName)
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", path, err)
	}
	if err := st.Write(ctx, t); err != nil {
		return nil, fmt.Errorf("write %s: %w", tableName, err)
	}
	return t, nil
}

// newOrchestrator wires the pipeline with the given reporter
func (d *deps) newOrchestrator(reporter contracts.Reporter) (*brain.Orchestrator, error) {
	return brain.NewOrchestrator(d.calib, d.store, brain.Options{
		Metrics:  d.metrics,
		Reporter: reporter,
		Logger:   d.log,
	})
}

// Close releases connections
func (d *deps) Close() {
	if d.redis != nil {
		_ = d.redis.Close()
	}
	if d.db != nil {
		d.db.Close()
	}
}
