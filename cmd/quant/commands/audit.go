package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/wonny/aegis-ashare/internal/audit"
	"github.com/wonny/aegis-ashare/internal/report"
	"github.com/wonny/aegis-ashare/pkg/config"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "저장된 백테스트 실행 조회",
	Long: `backtest run/sweep --save 로 기록된 실행을 조회합니다.

Example:
  go run ./cmd/quant audit runs --limit 20
  go run ./cmd/quant audit show <run-id>
  go run ./cmd/quant audit batch <batch-id>`,
}

var auditRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "최근 실행 목록",
	RunE:  runAuditRuns,
}

var auditShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "실행 요약과 거래 원장",
	Args:  cobra.ExactArgs(1),
	RunE:  runAuditShow,
}

var auditBatchCmd = &cobra.Command{
	Use:   "batch <batch-id>",
	Short: "그리드 탐색 배치의 조합별 결과",
	Args:  cobra.ExactArgs(1),
	RunE:  runAuditBatch,
}

var auditLimit int

func init() {
	auditRunsCmd.Flags().IntVar(&auditLimit, "limit", 20, "number of runs to list")
	auditCmd.AddCommand(auditRunsCmd, auditShowCmd, auditBatchCmd)
	rootCmd.AddCommand(auditCmd)
}

func openResultsStore() (*audit.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return audit.NewStore(cfg.ResultsDSN)
}

func runAuditRuns(cmd *cobra.Command, args []string) error {
	store, err := openResultsStore()
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.ListRuns(cmd.Context(), auditLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		PrintInfo("No runs recorded yet")
		return nil
	}
	return printRuns(os.Stdout, runs)
}

func runAuditShow(cmd *cobra.Command, args []string) error {
	store, err := openResultsStore()
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cmd.Context()
	run, err := store.GetRun(ctx, args[0])
	if errors.Is(err, audit.ErrRunNotFound) {
		return fmt.Errorf("no run with id %s", args[0])
	}
	if err != nil {
		return err
	}
	ledger, err := store.GetLedger(ctx, run.ID)
	if err != nil {
		return err
	}

	PrintKeyValue("Run", run.ID, 10)
	PrintKeyValue("Kind", run.Kind, 10)
	PrintKeyValue("Strategy", run.StrategyID, 10)
	PrintKeyValue("Config", run.ConfigHash, 10)
	PrintKeyValue("Recorded", run.CreatedAt.Local().Format("2006-01-02 15:04:05"), 10)

	console := report.NewConsole(os.Stdout)
	console.PrintRunSummary(run.Summary)
	if run.Kind == audit.KindSweep {
		PrintInfo("Sweep runs carry no ledger")
		return nil
	}
	return console.PrintLedger(ledger)
}

func runAuditBatch(cmd *cobra.Command, args []string) error {
	store, err := openResultsStore()
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.GetBatch(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		return fmt.Errorf("no batch with id %s", args[0])
	}
	return printRuns(os.Stdout, runs)
}

func printRuns(w io.Writer, runs []audit.Run) error {
	table := tablewriter.NewWriter(w)
	table.Header("ID", "Kind", "Period", "Params", "Return %", "Trades", "Win %", "Recorded")
	for _, r := range runs {
		s := r.Summary
		err := table.Append(
			r.ID,
			r.Kind,
			s.StartDate.Format(dateLayout)+" ~ "+s.EndDate.Format(dateLayout),
			s.Params.Label(),
			strconv.FormatFloat(s.ReturnPct, 'f', 2, 64),
			strconv.Itoa(s.TradeCount),
			strconv.FormatFloat(s.WinRatePct, 'f', 2, 64),
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
		)
		if err != nil {
			return err
		}
	}
	return table.Render()
}
