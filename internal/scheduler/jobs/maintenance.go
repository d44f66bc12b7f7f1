package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/wonny/pdcal/internal/contracts"
	"github.com/wonny/pdcal/pkg/logger"
)

// RunHistoryPruneJob trims the calibration_runs table to the most recent runs
type RunHistoryPruneJob struct {
	store  contracts.TableStore
	keep   int
	logger *logger.Logger
}

// NewRunHistoryPruneJob creates a new prune job keeping the last keep runs
func NewRunHistoryPruneJob(store contracts.TableStore, keep int, log *logger.Logger) *RunHistoryPruneJob {
	if keep < 1 {
		keep = 1
	}
	return &RunHistoryPruneJob{
		store:  store,
		keep:   keep,
		logger: log,
	}
}

// Name returns the job name
func (j *RunHistoryPruneJob) Name() string {
	return "run_history_prune"
}

// Schedule returns the cron schedule (Sunday 3 AM)
func (j *RunHistoryPruneJob) Schedule() string {
	return "0 0 3 * * 0"
}

// Run drops the oldest rows beyond the limit
func (j *RunHistoryPruneJob) Run(ctx context.Context) error {
	runs, err := j.store.Read(ctx, contracts.TableRuns)
	if errors.Is(err, contracts.ErrTableNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", contracts.TableRuns, err)
	}

	removed := runs.Len() - j.keep
	if removed <= 0 {
		return nil
	}

	// 행은 실행 순서대로 추가되므로 앞쪽이 가장 오래된 실행
	pruned := runs.Clone()
	pruned.Rows = pruned.Rows[removed:]
	if err := j.store.Write(ctx, pruned); err != nil {
		return fmt.Errorf("write %s: %w", contracts.TableRuns, err)
	}

	j.logger.WithField("removed", removed).Info("Run history pruned")
	return nil
}
