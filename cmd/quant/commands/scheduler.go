package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/wonny/aegis-ashare/internal/audit"
	"github.com/wonny/aegis-ashare/internal/s0_data/quality"
	"github.com/wonny/aegis-ashare/internal/scheduler"
	"github.com/wonny/aegis-ashare/internal/scheduler/jobs"
)

var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "장 마감 후 자동 스크리닝 스케줄러",
	Long: `등록 작업:
- data_quality     평일 15:15 바 소스 품질 스냅샷 기록
- daily_screening  SCREEN_CRON (기본 평일 15:30) 일간 리포트 CSV 생성
- report_cleanup   일요일 03:00 보존 기간이 지난 리포트 삭제

Example:
  go run ./cmd/quant scheduler start
  go run ./cmd/quant scheduler list
  go run ./cmd/quant scheduler run daily_screening`,
}

var schedulerStartCmd = &cobra.Command{
	Use:   "start",
	Short: "스케줄러 실행 (Ctrl+C로 종료)",
	RunE:  runSchedulerStart,
}

var schedulerListCmd = &cobra.Command{
	Use:   "list",
	Short: "등록된 작업과 다음 실행 시각",
	RunE:  runSchedulerList,
}

var schedulerRunCmd = &cobra.Command{
	Use:   "run <job>",
	Short: "작업 1회 즉시 실행",
	Args:  cobra.ExactArgs(1),
	RunE:  runSchedulerRun,
}

var (
	schedLookback  int
	schedRetention time.Duration
)

func init() {
	schedulerCmd.PersistentFlags().IntVar(&schedLookback, "lookback", 0, "screening window in calendar days before today")
	schedulerCmd.PersistentFlags().DurationVar(&schedRetention, "retention", 30*24*time.Hour, "report CSV retention")
	schedulerCmd.AddCommand(schedulerStartCmd, schedulerListCmd, schedulerRunCmd)
	rootCmd.AddCommand(schedulerCmd)
}

// newScheduler registers every job against one app and results store
func newScheduler(a *app, store *audit.Store) (*scheduler.Scheduler, error) {
	if err := scheduler.ValidateSchedule(a.cfg.ScreenCron); err != nil {
		return nil, fmt.Errorf("SCREEN_CRON: %w", err)
	}

	cfg := scheduler.DefaultConfig()
	if loc, err := time.LoadLocation(a.strategy.Meta.Timezone); err == nil {
		cfg.Location = loc
	}
	s := scheduler.New(cfg, a.log)

	gate := quality.NewQualityGate(a.source, quality.DefaultConfig(), a.log)
	outDir := a.outputDir("")
	for _, job := range []scheduler.Job{
		jobs.NewDataQualityJob(gate, store, a.log),
		jobs.NewScreeningJob(a.universeBuilder(), a.signalBuilder(), outDir, a.cfg.ScreenCron, schedLookback, a.log),
		jobs.NewReportCleanupJob(outDir, schedRetention, a.log),
	} {
		if err := s.AddJob(job); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func withScheduler(cmd *cobra.Command, fn func(a *app, s *scheduler.Scheduler) error) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	store, err := a.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	s, err := newScheduler(a, store)
	if err != nil {
		return err
	}
	return fn(a, s)
}

func runSchedulerStart(cmd *cobra.Command, args []string) error {
	return withScheduler(cmd, func(a *app, s *scheduler.Scheduler) error {
		s.Start()
		PrintSuccess(fmt.Sprintf("Scheduler started with %d jobs (Ctrl+C to stop)", len(s.GetAllJobs())))
		if err := printJobStats(s); err != nil {
			return err
		}

		<-cmd.Context().Done()
		PrintInfo("Stopping scheduler, waiting for running jobs...")
		s.Stop()
		PrintSuccess("Scheduler stopped")
		return nil
	})
}

func runSchedulerList(cmd *cobra.Command, args []string) error {
	return withScheduler(cmd, func(a *app, s *scheduler.Scheduler) error {
		return printJobStats(s)
	})
}

func runSchedulerRun(cmd *cobra.Command, args []string) error {
	return withScheduler(cmd, func(a *app, s *scheduler.Scheduler) error {
		t0 := time.Now()
		if err := s.RunJob(cmd.Context(), args[0]); err != nil {
			return err
		}
		PrintSuccess(fmt.Sprintf("%s finished in %v", args[0], time.Since(t0).Round(time.Millisecond)))
		return nil
	})
}

func printJobStats(s *scheduler.Scheduler) error {
	stats := s.GetJobStats()

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Job", "Schedule", "Next Run", "Runs", "Success %")
	for _, name := range s.GetAllJobs() {
		st := stats[name]
		next := "-"
		if st.NextRun != nil {
			next = st.NextRun.Format("2006-01-02 15:04:05")
		} else if t, err := scheduler.NextAfter(st.Schedule, time.Now()); err == nil {
			next = t.Format("2006-01-02 15:04:05")
		}
		err := table.Append(name, st.Schedule, next, fmt.Sprintf("%d", st.TotalRuns), fixedPercent(st.SuccessRate))
		if err != nil {
			return err
		}
	}
	return table.Render()
}
