package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/aegis-ashare/pkg/logger"
)

type fakeJob struct {
	name     string
	schedule string
	failures int32 // 처음 N회 실패
	calls    atomic.Int32
}

func (j *fakeJob) Name() string     { return j.name }
func (j *fakeJob) Schedule() string { return j.schedule }

func (j *fakeJob) Run(ctx context.Context) error {
	n := j.calls.Add(1)
	if n <= j.failures {
		return errors.New("boom")
	}
	return nil
}

func newTestScheduler(retries int, delay time.Duration) *Scheduler {
	return New(Config{MaxRetries: retries, RetryDelay: delay, Location: time.UTC}, logger.Nop())
}

func TestScheduler_AddJob(t *testing.T) {
	s := newTestScheduler(0, 0)

	require.NoError(t, s.AddJob(&fakeJob{name: "b", schedule: "0 30 15 * * 1-5"}))
	require.NoError(t, s.AddJob(&fakeJob{name: "a", schedule: "@daily"}))

	err := s.AddJob(&fakeJob{name: "a", schedule: "@daily"})
	assert.ErrorContains(t, err, "already exists")

	err = s.AddJob(&fakeJob{name: "bad", schedule: "not a cron"})
	assert.ErrorContains(t, err, "failed to schedule")

	assert.Equal(t, []string{"a", "b"}, s.GetAllJobs())
}

func TestScheduler_RunJobRetries(t *testing.T) {
	tests := []struct {
		name     string
		failures int32
		retries  int
		wantErr  bool
		calls    int32
	}{
		{"first try", 0, 3, false, 1},
		{"succeeds on retry", 2, 3, false, 3},
		{"exhausts retries", 5, 2, true, 3},
		{"no retries", 1, 0, true, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestScheduler(tt.retries, time.Millisecond)
			job := &fakeJob{name: "job", schedule: "@daily", failures: tt.failures}
			require.NoError(t, s.AddJob(job))

			err := s.RunJob(context.Background(), "job")
			if tt.wantErr {
				assert.ErrorContains(t, err, "boom")
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.calls, job.calls.Load())

			history, err := s.GetJobHistory("job")
			require.NoError(t, err)
			require.Len(t, history.Results, 1)
			assert.Equal(t, !tt.wantErr, history.Results[0].Success)
		})
	}
}

func TestScheduler_RunJobCancelledDuringRetry(t *testing.T) {
	s := newTestScheduler(3, time.Hour)
	job := &fakeJob{name: "job", schedule: "@daily", failures: 10}
	require.NoError(t, s.AddJob(job))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := s.RunJob(ctx, "job")
	require.Error(t, err)
	assert.Contains(t, err.Error(), context.DeadlineExceeded.Error())
	assert.Equal(t, int32(1), job.calls.Load())
}

func TestScheduler_RemoveJob(t *testing.T) {
	s := newTestScheduler(0, 0)
	require.NoError(t, s.AddJob(&fakeJob{name: "job", schedule: "@daily"}))

	require.NoError(t, s.RemoveJob("job"))
	assert.Empty(t, s.GetAllJobs())
	assert.Error(t, s.RemoveJob("job"))
	assert.Error(t, s.RunJob(context.Background(), "job"))
}

func TestScheduler_GetJobStats(t *testing.T) {
	s := newTestScheduler(0, 0)
	job := &fakeJob{name: "job", schedule: "@daily", failures: 1}
	require.NoError(t, s.AddJob(job))

	_ = s.RunJob(context.Background(), "job")
	require.NoError(t, s.RunJob(context.Background(), "job"))

	stats := s.GetJobStats()["job"]
	assert.Equal(t, 2, stats.TotalRuns)
	assert.Equal(t, 1, stats.SuccessCount)
	assert.Equal(t, 1, stats.FailureCount)
	assert.InDelta(t, 0.5, stats.SuccessRate, 1e-9)
	require.NotNil(t, stats.LastSuccess)
	require.NotNil(t, stats.LastFailure)
	assert.False(t, stats.LastFailure.After(*stats.LastSuccess), "failed run came first")
	assert.Nil(t, stats.NextRun, "not started")

	s.Start()
	defer s.Stop()
	require.Eventually(t, func() bool {
		return s.GetJobStats()["job"].NextRun != nil
	}, time.Second, 10*time.Millisecond)
}

func TestJobHistory(t *testing.T) {
	h := &JobHistory{}
	assert.Zero(t, h.Tally().SuccessRate())
	assert.Empty(t, h.Latest(5))

	for i := 0; i < historyLimit+10; i++ {
		h.Add(JobResult{Success: i%2 == 0})
	}
	assert.Len(t, h.Results, historyLimit)
	assert.Len(t, h.Latest(3), 3)
	tally := h.Tally()
	assert.Equal(t, historyLimit/2, tally.Failed)
	assert.InDelta(t, 0.5, tally.SuccessRate(), 1e-9)
}

func TestJobHistory_TallyLastTimes(t *testing.T) {
	t0 := time.Date(2026, 1, 28, 15, 30, 0, 0, time.UTC)
	h := &JobHistory{}
	h.Add(JobResult{StartTime: t0, Success: true})
	h.Add(JobResult{StartTime: t0.Add(time.Hour), Success: false})

	tally := h.Tally()
	require.NotNil(t, tally.LastRun)
	assert.Equal(t, t0.Add(time.Hour), *tally.LastRun)
	assert.Equal(t, t0, *tally.LastSuccess)
	assert.Equal(t, t0.Add(time.Hour), *tally.LastFailure)
}

func TestValidateSchedule(t *testing.T) {
	assert.NoError(t, ValidateSchedule("0 30 15 * * 1-5"))
	assert.NoError(t, ValidateSchedule("@daily"))
	assert.Error(t, ValidateSchedule("30 15 * * 1-5"), "5-field expressions need a seconds field")
}

func TestNextAfter(t *testing.T) {
	// 금요일 장 마감 후 → 다음 월요일 15:30
	friday := time.Date(2026, 1, 30, 16, 0, 0, 0, time.UTC)
	next, err := NextAfter("0 30 15 * * 1-5", friday)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 2, 2, 15, 30, 0, 0, time.UTC), next)

	_, err = NextAfter("not a cron", friday)
	assert.Error(t, err)
}
