package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/pdcal/pkg/logger"
)

type fakeJob struct {
	name     string
	schedule string
	calls    atomic.Int32
	failures int32
	block    chan struct{}
}

func (j *fakeJob) Name() string     { return j.name }
func (j *fakeJob) Schedule() string { return j.schedule }

func (j *fakeJob) Run(ctx context.Context) error {
	n := j.calls.Add(1)
	if j.block != nil {
		select {
		case <-j.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if n <= j.failures {
		return errors.New("transient")
	}
	return nil
}

func newScheduler() *Scheduler {
	return New(logger.Nop(), WithRetry(2, time.Millisecond))
}

func TestAddJobRejectsDuplicatesAndBadSchedules(t *testing.T) {
	s := newScheduler()
	require.NoError(t, s.AddJob(&fakeJob{name: "calibration", schedule: "0 0 6 1 * *"}))
	assert.Error(t, s.AddJob(&fakeJob{name: "calibration", schedule: "0 0 6 1 * *"}))
	assert.Error(t, s.AddJob(&fakeJob{name: "bad", schedule: "not a schedule"}))
	assert.Equal(t, []string{"calibration"}, s.GetAllJobs())
}

func TestRunJobRetriesUntilSuccess(t *testing.T) {
	s := newScheduler()
	job := &fakeJob{name: "flaky", schedule: "@monthly", failures: 2}
	require.NoError(t, s.AddJob(job))

	require.NoError(t, s.RunJob(context.Background(), "flaky"))
	assert.Equal(t, int32(3), job.calls.Load())

	stats := s.GetJobStats()["flaky"]
	assert.Equal(t, 1, stats.TotalRuns)
	assert.Equal(t, 1, stats.SuccessCount)
	require.NotNil(t, stats.LastSuccess)
	assert.Nil(t, stats.LastFailure)
}

func TestRunJobGivesUpAfterRetries(t *testing.T) {
	s := newScheduler()
	job := &fakeJob{name: "broken", schedule: "@monthly", failures: 100}
	require.NoError(t, s.AddJob(job))

	err := s.RunJob(context.Background(), "broken")
	require.Error(t, err)
	assert.Equal(t, int32(3), job.calls.Load())

	history, err := s.GetJobHistory("broken")
	require.NoError(t, err)
	require.Len(t, history.Results, 1)
	assert.False(t, history.Results[0].Success)
	assert.Equal(t, "transient", history.Results[0].Error)
	assert.Equal(t, 0.0, history.GetSuccessRate())
}

func TestRunJobSkipsWhileRunning(t *testing.T) {
	s := newScheduler()
	job := &fakeJob{name: "slow", schedule: "@monthly", block: make(chan struct{})}
	require.NoError(t, s.AddJob(job))

	done := make(chan error, 1)
	go func() { done <- s.RunJob(context.Background(), "slow") }()

	require.Eventually(t, func() bool { return job.calls.Load() == 1 }, time.Second, time.Millisecond)
	assert.Error(t, s.RunJob(context.Background(), "slow"))

	close(job.block)
	assert.NoError(t, <-done)
}

func TestRemoveJob(t *testing.T) {
	s := newScheduler()
	require.NoError(t, s.AddJob(&fakeJob{name: "a", schedule: "@daily"}))
	require.NoError(t, s.RemoveJob("a"))
	assert.Error(t, s.RemoveJob("a"))
	assert.Error(t, s.RunJob(context.Background(), "a"))
	_, err := s.NextRun("a")
	assert.Error(t, err)
}

func TestStartStop(t *testing.T) {
	s := newScheduler()
	require.NoError(t, s.AddJob(&fakeJob{name: "a", schedule: "@daily"}))
	s.Start()

	require.Eventually(t, func() bool {
		next, err := s.NextRun("a")
		return err == nil && next.After(time.Now())
	}, time.Second, 5*time.Millisecond)

	s.Stop()
}

func TestJobHistoryKeepsLatest(t *testing.T) {
	h := &JobHistory{}
	for i := 0; i < maxHistory+5; i++ {
		h.AddResult(JobResult{JobName: "a", Success: i%2 == 0})
	}
	assert.Len(t, h.Results, maxHistory)
	assert.Len(t, h.GetLatestResults(3), 3)
	assert.Empty(t, (&JobHistory{}).GetLatestResults(3))
	assert.InDelta(t, 0.5, h.GetSuccessRate(), 0.01)
}
