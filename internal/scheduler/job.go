package scheduler

import (
	"context"
	"time"
)

// Job represents a scheduled job
// ⭐ SSOT: 스케줄 작업 인터페이스는 여기서만 정의
type Job interface {
	// Name returns the job name
	Name() string

	// Run executes the job
	Run(ctx context.Context) error

	// Schedule returns the cron expression with a leading seconds field
	// Examples: "0 30 15 * * 1-5" (weekdays 15:30, after the A-share close)
	//           "@daily"
	Schedule() string
}

// JobResult represents the result of a job execution
type JobResult struct {
	JobName   string        `json:"job_name"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
}

// historyLimit caps the results kept per job
const historyLimit = 100

// JobHistory keeps the most recent results of one job, oldest first
type JobHistory struct {
	Results []JobResult
}

// Add appends a result and drops the oldest beyond historyLimit
func (h *JobHistory) Add(result JobResult) {
	h.Results = append(h.Results, result)
	if n := len(h.Results); n > historyLimit {
		h.Results = append(h.Results[:0:0], h.Results[n-historyLimit:]...)
	}
}

// Latest returns up to n most recent results, oldest first
func (h *JobHistory) Latest(n int) []JobResult {
	if n > len(h.Results) {
		n = len(h.Results)
	}
	if n <= 0 {
		return []JobResult{}
	}
	return h.Results[len(h.Results)-n:]
}

// Tally counts the kept results
type Tally struct {
	Total       int
	Succeeded   int
	Failed      int
	LastRun     *time.Time
	LastSuccess *time.Time
	LastFailure *time.Time
}

// SuccessRate returns Succeeded/Total (0 when nothing ran)
func (t Tally) SuccessRate() float64 {
	if t.Total == 0 {
		return 0
	}
	return float64(t.Succeeded) / float64(t.Total)
}

// Tally walks the history once, newest first
func (h *JobHistory) Tally() Tally {
	t := Tally{Total: len(h.Results)}
	for i := len(h.Results) - 1; i >= 0; i-- {
		r := h.Results[i]
		start := r.StartTime
		if t.LastRun == nil {
			t.LastRun = &start
		}
		if r.Success {
			t.Succeeded++
			if t.LastSuccess == nil {
				t.LastSuccess = &start
			}
		} else {
			t.Failed++
			if t.LastFailure == nil {
				t.LastFailure = &start
			}
		}
	}
	return t
}
