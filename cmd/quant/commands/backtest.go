package commands

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/aegis-ashare/internal/audit"
	"github.com/wonny/aegis-ashare/internal/backtest"
	"github.com/wonny/aegis-ashare/internal/contracts"
	"github.com/wonny/aegis-ashare/internal/report"
	"github.com/wonny/aegis-ashare/internal/risk"
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "S4 백테스트 (主升浪 단일 실행 / 그리드 탐색)",
}

var backtestRunCmd = &cobra.Command{
	Use:   "run",
	Short: "단일 파라미터로 백테스트 실행",
	Long: `주升浪 시그널로 단일 순차 백테스트를 실행하고 거래 원장을 저장합니다.

퍼센트 입력: --tp 20 → 20%, --sl 8 → 8%

Example:
  go run ./cmd/quant backtest run --from 2024-01-01 --to 2024-12-31 \
    --tp 20 --sl 8 --max-days 10 --slope 25 --save`,
	RunE: runBacktest,
}

var backtestSweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "파라미터 그리드 탐색",
	Long: `tp × sl × max-days × slope 조합을 모두 실행하고 수익률 순으로 정렬합니다.
목록은 쉼표(, 또는 ，)로 구분하며, 생략한 항목은 전략 YAML의 sweep 값을 사용합니다.

Example:
  go run ./cmd/quant backtest sweep --from 2024-01-01 --to 2024-12-31 \
    --tp 15,20 --sl 5,8 --max-days 10,20 --slope 20,25 --top 3`,
	RunE: runSweep,
}

var (
	btFrom    string
	btTo      string
	btTP      string
	btSL      string
	btDays    string
	btSlope   string
	btOut     string
	btSave    bool
	btWorkers int
	btTop     int
	btSeed    int64
)

func init() {
	for _, c := range []*cobra.Command{backtestRunCmd, backtestSweepCmd} {
		c.Flags().StringVar(&btFrom, "from", "", "start date (YYYY-MM-DD)")
		c.Flags().StringVar(&btTo, "to", "", "end date (YYYY-MM-DD)")
		c.Flags().StringVar(&btOut, "out", "", "CSV output directory (default: OUTPUT_DIR)")
		c.Flags().BoolVar(&btSave, "save", false, "persist the run into RESULTS_DSN")
		_ = c.MarkFlagRequired("from")
		_ = c.MarkFlagRequired("to")
	}

	backtestRunCmd.Flags().StringVar(&btTP, "tp", "", "take profit percent (20 = 20%)")
	backtestRunCmd.Flags().StringVar(&btSL, "sl", "", "stop loss percent (8 = 8%)")
	backtestRunCmd.Flags().StringVar(&btDays, "max-days", "", "max holding days")
	backtestRunCmd.Flags().StringVar(&btSlope, "slope", "", "main-wave slope threshold (degrees)")
	backtestRunCmd.Flags().Int64Var(&btSeed, "mc-seed", 0, "Monte Carlo seed (0 = random)")
	for _, name := range []string{"tp", "sl", "max-days", "slope"} {
		_ = backtestRunCmd.MarkFlagRequired(name)
	}

	backtestSweepCmd.Flags().StringVar(&btTP, "tp", "", "take profit percents, e.g. 15,20")
	backtestSweepCmd.Flags().StringVar(&btSL, "sl", "", "stop loss percents, e.g. 5,8")
	backtestSweepCmd.Flags().StringVar(&btDays, "max-days", "", "max holding days list, e.g. 10,20")
	backtestSweepCmd.Flags().StringVar(&btSlope, "slope", "", "slope thresholds, e.g. 20,25")
	backtestSweepCmd.Flags().IntVar(&btWorkers, "workers", 0, "parallel runs (default: WORKERS)")
	backtestSweepCmd.Flags().IntVar(&btTop, "top", 3, "number of best combinations to print")

	backtestCmd.AddCommand(backtestRunCmd, backtestSweepCmd)
	rootCmd.AddCommand(backtestCmd)
}

// runParams parses the single-run flags; every value is required
func runParams(from, to, tp, sl, days, slope string) (contracts.StrategyParams, error) {
	start, end, err := parseRange(from, to)
	if err != nil {
		return contracts.StrategyParams{}, err
	}
	p := contracts.StrategyParams{StartDate: start, EndDate: end}

	if p.TakeProfit, err = percentToFraction("tp", tp); err != nil {
		return p, err
	}
	if p.StopLoss, err = percentToFraction("sl", sl); err != nil {
		return p, err
	}
	maxDays, err := parseIntList("max-days", days)
	if err != nil {
		return p, err
	}
	if len(maxDays) != 1 {
		return p, fmt.Errorf("--max-days: want one value, got %q", days)
	}
	p.MaxHoldDays = maxDays[0]
	slopes, err := parseFloatList("slope", slope)
	if err != nil {
		return p, err
	}
	if len(slopes) != 1 {
		return p, fmt.Errorf("--slope: want one value, got %q", slope)
	}
	p.SlopeThreshold = slopes[0]

	return p, p.Validate()
}

// sweepGrid overrides the strategy YAML grid with whichever lists were given
func sweepGrid(base backtest.Grid, tp, sl, days, slope string) (backtest.Grid, error) {
	g := base
	var err error
	if tp != "" {
		if g.TakeProfits, err = parsePercentList("tp", tp); err != nil {
			return g, err
		}
	}
	if sl != "" {
		if g.StopLosses, err = parsePercentList("sl", sl); err != nil {
			return g, err
		}
	}
	if days != "" {
		if g.MaxHoldDays, err = parseIntList("max-days", days); err != nil {
			return g, err
		}
	}
	if slope != "" {
		if g.Slopes, err = parseFloatList("slope", slope); err != nil {
			return g, err
		}
	}
	if g.Size() == 0 {
		return g, fmt.Errorf("empty grid: set --tp, --sl, --max-days and --slope or the sweep section of the strategy file")
	}
	return g, nil
}

func runBacktest(cmd *cobra.Command, args []string) error {
	params, err := runParams(btFrom, btTo, btTP, btSL, btDays, btSlope)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	PrintHeader("📈 主升浪 Backtest", params.StartDate, params.EndDate)
	PrintKeyValue("Strategy", a.strategy.Meta.StrategyID, 10)
	PrintKeyValue("Params", params.Label(), 10)

	tl, _, err := a.buildTimeline(ctx, params.StartDate, params.EndDate)
	if err != nil {
		return err
	}
	if tl.Len() == 0 {
		PrintWarning("No signal rows in the requested period")
	}

	result, err := a.engine().Run(ctx, tl, params)
	if err != nil {
		return fmt.Errorf("backtest: %w", err)
	}

	console := report.NewConsole(os.Stdout)
	if err := console.PrintLedger(result.Ledger); err != nil {
		return err
	}
	console.PrintRunSummary(result.Summary)
	printPerformance(audit.NewAnalyzer(a.log).Analyze(result))

	riskCfg := risk.DefaultConfig()
	riskCfg.Seed = btSeed
	assessment, err := risk.NewEngine(riskCfg, risk.DefaultLimits(), a.log).
		Assess(audit.DailyReturns(result), result.Summary.MaxDrawdownPct/100)
	if err != nil {
		return fmt.Errorf("risk: %w", err)
	}
	printRisk(assessment)

	path, err := report.SaveFile(a.outputDir(btOut), report.LedgerFileName(params.StartDate, params.EndDate), func(w io.Writer) error {
		return report.WriteLedgerCSV(w, result.Ledger)
	})
	if err != nil {
		return err
	}
	PrintSuccess("Ledger saved: " + path)

	if btSave {
		store, err := a.openStore()
		if err != nil {
			return err
		}
		defer store.Close()
		id, err := store.SaveRun(ctx, a.strategy.Meta.StrategyID, a.configHash, result)
		if err != nil {
			return err
		}
		PrintSuccess("Run recorded: " + id)
	}
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	start, end, err := parseRange(btFrom, btTo)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	grid, err := sweepGrid(a.strategy.Grid(), btTP, btSL, btDays, btSlope)
	if err != nil {
		return err
	}
	workers := btWorkers
	if workers <= 0 {
		workers = a.cfg.Backtest.Workers
	}

	PrintHeader("🔍 主升浪 Parameter Sweep", start, end)
	PrintKeyValue("Strategy", a.strategy.Meta.StrategyID, 12)
	PrintKeyValue("Combinations", fmt.Sprintf("%d", grid.Size()), 12)
	PrintKeyValue("Workers", fmt.Sprintf("%d", workers), 12)

	tl, _, err := a.buildTimeline(ctx, start, end)
	if err != nil {
		return err
	}

	t0 := time.Now()
	results, err := a.engine().Sweep(ctx, tl, grid, start, end, workers)
	if err != nil {
		return fmt.Errorf("sweep: %w", err)
	}
	a.log.WithFields(map[string]interface{}{
		"combinations": len(results),
		"elapsed":      time.Since(t0).String(),
	}).Info("Sweep complete")

	if err := report.NewConsole(os.Stdout).PrintSweep(results, btTop); err != nil {
		return err
	}

	path, err := report.SaveFile(a.outputDir(btOut), report.SweepFileName(start, end), func(w io.Writer) error {
		return report.WriteSweepCSV(w, results)
	})
	if err != nil {
		return err
	}
	PrintSuccess("Sweep results saved: " + path)

	if btSave {
		store, err := a.openStore()
		if err != nil {
			return err
		}
		defer store.Close()
		batchID, err := store.SaveSweep(ctx, a.strategy.Meta.StrategyID, a.configHash, results)
		if err != nil {
			return err
		}
		PrintSuccess("Sweep recorded: " + batchID)
	}
	return nil
}

func printPerformance(r *audit.PerformanceReport) {
	fmt.Println()
	fmt.Println("  📊 Performance")
	PrintSeparator()
	PrintKeyValue("Annual return", fixedPercent(r.AnnualReturn)+"%", 14)
	PrintKeyValue("Volatility", fixedPercent(r.Volatility)+"%", 14)
	PrintKeyValue("Sharpe", fmt.Sprintf("%.2f", r.Sharpe), 14)
	PrintKeyValue("Sortino", fmt.Sprintf("%.2f", r.Sortino), 14)
	if r.Trades > 0 {
		PrintKeyValue("Avg win", fmt.Sprintf("%.2f", r.AvgWin), 14)
		PrintKeyValue("Avg loss", fmt.Sprintf("%.2f", r.AvgLoss), 14)
		PrintKeyValue("Profit factor", fmt.Sprintf("%.2f", r.ProfitFactor), 14)
	}
	PrintDoubleSeparator()
}

func printRisk(r *risk.Report) {
	fmt.Println()
	fmt.Println("  🛡️  Risk")
	PrintSeparator()
	PrintKeyValue("Daily VaR 95", fixedPercent(r.Daily95.VaR)+"%", 14)
	PrintKeyValue("Daily CVaR 95", fixedPercent(r.Daily95.CVaR)+"%", 14)
	PrintKeyValue("Daily VaR 99", fixedPercent(r.Daily99.VaR)+"%", 14)
	if sim := r.Simulation; sim != nil {
		label := fmt.Sprintf("%dd VaR 95", sim.Config.HoldingPeriod)
		PrintKeyValue(label, fixedPercent(sim.VaR95.VaR)+"%", 14)
		PrintKeyValue("Median path", fixedPercent(sim.Percentiles[50])+"%", 14)
	}
	if r.Passed {
		PrintSuccess("Within risk limits")
	} else {
		for _, v := range r.Violations {
			PrintWarning(v)
		}
	}
	PrintDoubleSeparator()
}
