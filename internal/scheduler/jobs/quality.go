package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/aegis-ashare/internal/contracts"
	"github.com/wonny/aegis-ashare/internal/s0_data/quality"
	"github.com/wonny/aegis-ashare/pkg/logger"
)

// QualityRecorder persists quality snapshots (audit.Store)
type QualityRecorder interface {
	SaveQuality(ctx context.Context, snap *contracts.DataQualitySnapshot) error
}

// DataQualityJob checks the bar source before the screening run
type DataQualityJob struct {
	gate     *quality.QualityGate
	recorder QualityRecorder
	logger   *logger.Logger
}

// NewDataQualityJob creates a new quality job; recorder may be nil
func NewDataQualityJob(gate *quality.QualityGate, recorder QualityRecorder, log *logger.Logger) *DataQualityJob {
	return &DataQualityJob{
		gate:     gate,
		recorder: recorder,
		logger:   log.WithField("job", "data_quality"),
	}
}

// Name returns the job name
func (j *DataQualityJob) Name() string {
	return "data_quality"
}

// Schedule returns the cron schedule (weekdays 15:15, before screening)
func (j *DataQualityJob) Schedule() string {
	return "0 15 15 * * 1-5"
}

// Run checks the source and records the snapshot.
// A low score is logged, not returned, so retries are not wasted on stale data.
func (j *DataQualityJob) Run(ctx context.Context) error {
	snapshot, err := j.gate.Check(ctx)
	if err != nil {
		return fmt.Errorf("quality check: %w", err)
	}

	entry := j.logger.WithFields(map[string]interface{}{
		"quality_score": snapshot.QualityScore,
		"total":         snapshot.TotalTickers,
		"usable":        snapshot.UsableTickers,
		"malformed":     snapshot.MalformedBars,
	})
	if j.gate.Passed(snapshot) {
		entry.Info("Data quality passed")
	} else {
		entry.Warn("Data quality below threshold")
	}

	if j.recorder != nil {
		if err := j.recorder.SaveQuality(ctx, snapshot); err != nil {
			return fmt.Errorf("record quality: %w", err)
		}
	}
	return nil
}
