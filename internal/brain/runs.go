package brain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wonny/pdcal/internal/contracts"
)

// Column names of the calibration_runs table
const (
	ColRunID      = "RunID"
	ColStartedAt  = "StartedAt"
	ColFinishedAt = "FinishedAt"
	ColConfigHash = "ConfigHash"
	ColStages     = "Stages"
	ColSuccess    = "Success"
	ColError      = "Error"
	ColDurationMs = "DurationMs"
)

func newRunsTable() *contracts.Table {
	return contracts.NewTable(contracts.TableRuns,
		contracts.TextCol(ColRunID),
		contracts.TextCol(ColStartedAt),
		contracts.TextCol(ColFinishedAt),
		contracts.TextCol(ColConfigHash),
		contracts.TextCol(ColStages),
		contracts.BoolCol(ColSuccess),
		contracts.TextCol(ColError),
		contracts.IntCol(ColDurationMs),
	)
}

// recordRun appends the run summary to the calibration_runs table
func (o *Orchestrator) recordRun(ctx context.Context, s contracts.RunSummary) error {
	runs := newRunsTable()
	existing, err := o.store.Read(ctx, contracts.TableRuns)
	switch {
	case errors.Is(err, contracts.ErrTableNotFound):
	case err != nil:
		return fmt.Errorf("read %s: %w", contracts.TableRuns, err)
	default:
		for i := 0; i < existing.Len(); i++ {
			if err := runs.Append(existing.Rows[i]...); err != nil {
				return err
			}
		}
	}

	if err := runs.Append(RunRow(s)...); err != nil {
		return err
	}
	return o.store.Write(ctx, runs)
}

// RunRow renders one run summary as a calibration_runs row
func RunRow(s contracts.RunSummary) []interface{} {
	stages := make([]string, len(s.Completed))
	for i, st := range s.Completed {
		stages[i] = st.ShortName()
	}
	var errText interface{}
	if s.Error != "" {
		errText = s.Error
	}
	return []interface{}{
		s.RunID,
		s.StartedAt.Format(time.RFC3339),
		s.FinishedAt.Format(time.RFC3339),
		s.ConfigHash,
		strings.Join(stages, ","),
		s.Success,
		errText,
		int(s.FinishedAt.Sub(s.StartedAt).Milliseconds()),
	}
}
