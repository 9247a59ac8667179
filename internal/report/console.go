package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/wonny/aegis-ashare/internal/backtest"
	"github.com/wonny/aegis-ashare/internal/contracts"
)

const (
	doubleLine = "═══════════════════════════════════════════════════════════"
	singleLine = "───────────────────────────────────────────────────────────"
)

// Console renders results as text tables
type Console struct {
	out io.Writer
}

// NewConsole creates a console printer writing to out
func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

// PrintRunSummary prints the settlement of one backtest run
func (c *Console) PrintRunSummary(s contracts.RunSummary) {
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, doubleLine)
	fmt.Fprintln(c.out, "  📈 主升浪 Backtest Summary")
	fmt.Fprintln(c.out, singleLine)
	fmt.Fprintf(c.out, "  Period        : %s ~ %s\n", s.StartDate.Format(DateLayout), s.EndDate.Format(DateLayout))
	fmt.Fprintf(c.out, "  Params        : tp=%s%% sl=%s%% max_days=%d slope=%g°\n",
		formatPct(s.Params.TakeProfit), formatPct(s.Params.StopLoss), s.Params.MaxHoldDays, s.Params.SlopeThreshold)
	fmt.Fprintf(c.out, "  Initial       : ¥%s\n", float2(s.InitialCapital))
	fmt.Fprintf(c.out, "  Final value   : ¥%s (open positions marked to last close)\n", float2(s.FinalValue))
	fmt.Fprintf(c.out, "  PnL           : ¥%s\n", float2(s.PnL))
	fmt.Fprintf(c.out, "  Return        : %s%%\n", float2(s.ReturnPct))
	fmt.Fprintf(c.out, "  Max drawdown  : %s%%\n", float2(s.MaxDrawdownPct))
	if s.TradeCount > 0 {
		fmt.Fprintf(c.out, "  Trades        : %d (completed)\n", s.TradeCount)
		fmt.Fprintf(c.out, "  Win rate      : %s%%\n", float2(s.WinRatePct))
	} else {
		fmt.Fprintln(c.out, "  Trades        : 0")
	}
	fmt.Fprintf(c.out, "  Open positions: %d\n", s.OpenPositions)
	fmt.Fprintln(c.out, doubleLine)
}

// PrintLedger prints ledger entries as a table
func (c *Console) PrintLedger(entries []contracts.LedgerEntry) error {
	if len(entries) == 0 {
		fmt.Fprintln(c.out, "\n⚠️  No trades in this period.")
		return nil
	}

	table := tablewriter.NewWriter(c.out)
	table.Header(toAny(LedgerHeader())...)
	for _, e := range entries {
		if err := table.Append(toAny(ledgerCells(e))...); err != nil {
			return err
		}
	}
	return table.Render()
}

// PrintSweep prints the top n ranked sweep results (n <= 0 prints all)
func (c *Console) PrintSweep(results []backtest.SweepResult, n int) error {
	if n <= 0 || n > len(results) {
		n = len(results)
	}

	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, doubleLine)
	fmt.Fprintf(c.out, "  🏆 Top %d of %d combinations\n", n, len(results))
	fmt.Fprintln(c.out, doubleLine)

	table := tablewriter.NewWriter(c.out)
	table.Header("#", "TP(%)", "SL(%)", "Days", "Slope(°)", "PnL", "Return(%)", "Trades", "Win(%)")
	for i, r := range results[:n] {
		err := table.Append(
			strconv.Itoa(i+1),
			formatPct(r.Params.TakeProfit),
			formatPct(r.Params.StopLoss),
			strconv.Itoa(r.Params.MaxHoldDays),
			strconv.FormatFloat(r.Params.SlopeThreshold, 'f', -1, 64),
			float2(r.Summary.PnL),
			float2(r.Summary.ReturnPct),
			strconv.Itoa(r.Summary.TradeCount),
			float2(r.Summary.WinRatePct),
		)
		if err != nil {
			return err
		}
	}
	return table.Render()
}

// PrintScreen prints the signal counts, the industry spread and triggered rows
func (c *Console) PrintScreen(rows []Row, s Summary) error {
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, doubleLine)
	fmt.Fprintf(c.out, "  Screening: %d rows, %d tickers\n", s.Rows, s.Tickers)
	fmt.Fprintln(c.out, singleLine)
	fmt.Fprintf(c.out, "  S1 大底   : %d\n", s.DeepBottom)
	fmt.Fprintf(c.out, "  S2 波段   : %d\n", s.Pullback)
	fmt.Fprintf(c.out, "  S3 主升浪 : %d\n", s.MainWave)
	fmt.Fprintln(c.out, doubleLine)

	if err := c.printIndustries("S1 大底 industries", s.DeepBottomIndustries); err != nil {
		return err
	}
	if err := c.printIndustries("S3 主升浪 industries", s.MainWaveIndustries); err != nil {
		return err
	}

	triggered := make([]Row, 0)
	for _, r := range rows {
		if r.DeepBottom != "" || r.Pullback != "" || r.MainWave != "" {
			triggered = append(triggered, r)
		}
	}
	if len(triggered) == 0 {
		fmt.Fprintln(c.out, "\n⚠️  No signals triggered.")
		return nil
	}

	table := tablewriter.NewWriter(c.out)
	table.Header(toAny(Header())...)
	for _, r := range triggered {
		if err := table.Append(toAny(r.Cells())...); err != nil {
			return err
		}
	}
	return table.Render()
}

func (c *Console) printIndustries(title string, counts []IndustryCount) error {
	if len(counts) == 0 {
		return nil
	}
	fmt.Fprintf(c.out, "\n%s\n", title)
	table := tablewriter.NewWriter(c.out)
	table.Header("Industry", "Count")
	for _, ic := range counts {
		if err := table.Append(ic.Industry, strconv.Itoa(ic.Count)); err != nil {
			return err
		}
	}
	return table.Render()
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
