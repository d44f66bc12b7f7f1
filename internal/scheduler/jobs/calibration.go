package jobs

import (
	"context"
	"fmt"
	"sync"

	"github.com/wonny/pdcal/internal/brain"
	"github.com/wonny/pdcal/pkg/logger"
)

// Runner runs the calibration pipeline
type Runner interface {
	Run(ctx context.Context, config brain.RunConfig) (*brain.RunResult, error)
}

// CalibrationJob runs the full S0-S5 pipeline on schedule
// Schedule: 매월 1일 06:00 (월말 MEV/ODR 적재 이후)
type CalibrationJob struct {
	runner   Runner
	schedule string
	logger   *logger.Logger

	mu        sync.Mutex
	lastRunID string
}

// NewCalibrationJob creates a new calibration job
func NewCalibrationJob(runner Runner, schedule string, log *logger.Logger) *CalibrationJob {
	return &CalibrationJob{
		runner:   runner,
		schedule: schedule,
		logger:   log,
	}
}

// Name returns the job name
func (j *CalibrationJob) Name() string {
	return "calibration"
}

// Schedule returns the cron schedule
func (j *CalibrationJob) Schedule() string {
	return j.schedule
}

// LastRunID returns the run ID of the latest attempt, failed ones included
func (j *CalibrationJob) LastRunID() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.lastRunID
}

// Run executes the pipeline
func (j *CalibrationJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled calibration run")

	runID := brain.GenerateRunID()
	j.mu.Lock()
	j.lastRunID = runID
	j.mu.Unlock()

	result, err := j.runner.Run(ctx, brain.RunConfig{RunID: runID})
	if err != nil {
		return fmt.Errorf("calibration run %s: %w", runID, err)
	}

	j.logger.WithFields(map[string]interface{}{
		"run_id": result.Summary.RunID,
		"stages": len(result.Summary.Completed),
		"curves": len(result.Curves),
	}).Info("Scheduled calibration run completed")

	return nil
}
