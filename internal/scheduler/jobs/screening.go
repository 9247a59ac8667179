package jobs

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/wonny/aegis-ashare/internal/report"
	"github.com/wonny/aegis-ashare/internal/s1_universe"
	"github.com/wonny/aegis-ashare/internal/s2_signals"
	"github.com/wonny/aegis-ashare/pkg/logger"
)

// DefaultScreenSchedule runs on weekdays at 15:30, after the A-share close
const DefaultScreenSchedule = "0 30 15 * * 1-5"

// ScreeningJob writes the daily screening report
// ⭐ SSOT: 일일 스크리닝 스케줄은 이 Job에서만
type ScreeningJob struct {
	universe  *s1_universe.Builder
	signals   *s2_signals.Builder
	outputDir string
	schedule  string
	lookback  int // 보고 기간 (일), 0 = 당일만
	now       func() time.Time
	logger    *logger.Logger
}

// NewScreeningJob creates a new screening job; an empty schedule uses DefaultScreenSchedule
func NewScreeningJob(universe *s1_universe.Builder, signals *s2_signals.Builder, outputDir, schedule string, lookback int, log *logger.Logger) *ScreeningJob {
	if schedule == "" {
		schedule = DefaultScreenSchedule
	}
	return &ScreeningJob{
		universe:  universe,
		signals:   signals,
		outputDir: outputDir,
		schedule:  schedule,
		lookback:  lookback,
		now:       time.Now,
		logger:    log.WithField("job", "daily_screening"),
	}
}

// Name returns the job name
func (j *ScreeningJob) Name() string {
	return "daily_screening"
}

// Schedule returns the cron schedule
func (j *ScreeningJob) Schedule() string {
	return j.schedule
}

// Window returns the report date range ending today
func (j *ScreeningJob) Window() (time.Time, time.Time) {
	now := j.now()
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return end.AddDate(0, 0, -j.lookback), end
}

// Run builds the universe, screens the window and saves the report CSV
func (j *ScreeningJob) Run(ctx context.Context) error {
	start, end := j.Window()
	j.logger.WithFields(map[string]interface{}{
		"start": start.Format(report.DateLayout),
		"end":   end.Format(report.DateLayout),
	}).Info("Starting scheduled screening")

	universe, err := j.universe.Build(ctx)
	if err != nil {
		return fmt.Errorf("build universe: %w", err)
	}

	screen, err := j.signals.BuildScreen(ctx, universe, start, end)
	if err != nil {
		return fmt.Errorf("build screen: %w", err)
	}

	rows := report.BuildRows(screen, universe)
	if len(rows) == 0 {
		j.logger.Warn("No bars in the report window, report skipped")
		return nil
	}

	path, err := report.SaveFile(j.outputDir, report.ReportFileName(start, end), func(w io.Writer) error {
		return report.WriteReportCSV(w, rows)
	})
	if err != nil {
		return fmt.Errorf("save report: %w", err)
	}

	summary := report.Summarize(rows)
	j.logger.WithFields(map[string]interface{}{
		"path":        path,
		"rows":        summary.Rows,
		"deep_bottom": summary.DeepBottom,
		"pullback":    summary.Pullback,
		"main_wave":   summary.MainWave,
		"excluded":    len(universe.Excluded),
	}).Info("Screening report saved")

	return nil
}
