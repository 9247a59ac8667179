package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/wonny/aegis-ashare/internal/report"
)

var screenCmd = &cobra.Command{
	Use:   "screen",
	Short: "일간 스크리닝 리포트 (大底 / 波段 / 主升浪)",
	Long: `기간 내 모든 종목의 세 가지 시그널을 계산하여 리포트 CSV를 저장합니다.

Example:
  go run ./cmd/quant screen --from 2026-01-28 --to 2026-01-28
  go run ./cmd/quant screen --from 2026-01-01 --threshold 30 --out ./reports`,
	RunE: runScreen,
}

var (
	screenFrom      string
	screenTo        string
	screenThreshold float64
	screenOut       string
)

func init() {
	screenCmd.Flags().StringVar(&screenFrom, "from", "", "start date (YYYY-MM-DD)")
	screenCmd.Flags().StringVar(&screenTo, "to", "", "end date (default: --from)")
	screenCmd.Flags().Float64Var(&screenThreshold, "threshold", 0, "🔥 slope threshold in degrees (default: strategy report_threshold)")
	screenCmd.Flags().StringVar(&screenOut, "out", "", "CSV output directory (default: OUTPUT_DIR)")
	_ = screenCmd.MarkFlagRequired("from")
	rootCmd.AddCommand(screenCmd)
}

func runScreen(cmd *cobra.Command, args []string) error {
	start, end, err := parseRange(screenFrom, screenTo)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if cmd.Flags().Changed("threshold") {
		if screenThreshold <= -90 || screenThreshold >= 90 {
			return fmt.Errorf("--threshold: must be in (-90, 90), got %g", screenThreshold)
		}
		a.strategy.Signals.ReportThreshold = screenThreshold
	}

	PrintHeader("📋 A-Share Screening Report", start, end)
	PrintKeyValue("Strategy", a.strategy.Meta.StrategyID, 10)
	PrintKeyValue("Threshold", fmt.Sprintf("%g°", a.strategy.Signals.ReportThreshold), 10)

	universe, err := a.universeBuilder().Build(ctx)
	if err != nil {
		return fmt.Errorf("build universe: %w", err)
	}
	screen, err := a.signalBuilder().BuildScreen(ctx, universe, start, end)
	if err != nil {
		return fmt.Errorf("build screen: %w", err)
	}

	rows := report.BuildRows(screen, universe)
	if len(rows) == 0 {
		PrintWarning("No bars in the requested period")
		return nil
	}

	summary := report.Summarize(rows)
	if err := report.NewConsole(os.Stdout).PrintScreen(rows, summary); err != nil {
		return err
	}
	if n := len(universe.Excluded); n > 0 {
		PrintInfo(fmt.Sprintf("%d tickers excluded (run with -v for reasons)", n))
		for ticker, reason := range universe.Excluded {
			a.log.WithFields(map[string]interface{}{
				"ticker": ticker,
				"reason": reason,
			}).Debug("Ticker excluded")
		}
	}

	path, err := report.SaveFile(a.outputDir(screenOut), report.ReportFileName(start, end), func(w io.Writer) error {
		return report.WriteReportCSV(w, rows)
	})
	if err != nil {
		return err
	}
	PrintSuccess("Report saved: " + path)
	return nil
}
