package jobs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/wonny/aegis-ashare/pkg/logger"
)

// ReportCleanupJob removes old screening reports from the output directory
type ReportCleanupJob struct {
	dir       string
	retention time.Duration
	now       func() time.Time
	logger    *logger.Logger
}

// NewReportCleanupJob creates a new cleanup job
func NewReportCleanupJob(dir string, retention time.Duration, log *logger.Logger) *ReportCleanupJob {
	return &ReportCleanupJob{
		dir:       dir,
		retention: retention,
		now:       time.Now,
		logger:    log.WithField("job", "report_cleanup"),
	}
}

// Name returns the job name
func (j *ReportCleanupJob) Name() string {
	return "report_cleanup"
}

// Schedule returns the cron schedule (Sunday 03:00)
func (j *ReportCleanupJob) Schedule() string {
	return "0 0 3 * * 0"
}

// Run deletes screen_*.csv files older than the retention
func (j *ReportCleanupJob) Run(ctx context.Context) error {
	entries, err := os.ReadDir(j.dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read output dir: %w", err)
	}

	cutoff := j.now().Add(-j.retention)
	removed := 0
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, "screen_") || filepath.Ext(name) != ".csv" {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(j.dir, name)); err != nil {
				return fmt.Errorf("remove %s: %w", name, err)
			}
			removed++
		}
	}

	if removed > 0 {
		j.logger.WithField("removed", removed).Info("Report cleanup completed")
	}
	return nil
}
