package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wonny/aegis-ashare/internal/backtest"
	"github.com/wonny/aegis-ashare/internal/contracts"
)

// utf8BOM lets spreadsheet tools detect the encoding
const utf8BOM = "\ufeff"

// ReportFileName returns the screening report file name
func ReportFileName(start, end time.Time) string {
	return fmt.Sprintf("screen_%s_to_%s.csv", start.Format(DateLayout), end.Format(DateLayout))
}

// LedgerFileName returns the single-run ledger file name
func LedgerFileName(start, end time.Time) string {
	return fmt.Sprintf("backtest_MainWave_%s_to_%s.csv", start.Format(DateLayout), end.Format(DateLayout))
}

// SweepFileName returns the grid search result file name
func SweepFileName(start, end time.Time) string {
	return fmt.Sprintf("grid_search_%s_to_%s.csv", start.Format(DateLayout), end.Format(DateLayout))
}

// SaveFile creates dir/name and passes the BOM-prefixed writer to write
func SaveFile(dir, name string, write func(w io.Writer) error) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if _, err := io.WriteString(f, utf8BOM); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if err := write(f); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, f.Close()
}

// WriteReportCSV writes screening rows
func WriteReportCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header()); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write(r.Cells()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// LedgerHeader returns the ledger column names
func LedgerHeader() []string {
	return []string{"Date", "StockCode", "Action", "Shares", "Price", "Amount", "PnL_Amount", "PnL_Percent", "Reason", "Cash_Remaining"}
}

func ledgerCells(e contracts.LedgerEntry) []string {
	return []string{
		e.Date.Format(DateLayout),
		e.Ticker,
		string(e.Action),
		strconv.FormatInt(e.Shares, 10),
		e.Price.StringFixed(2),
		e.Amount.StringFixed(2),
		e.PnLAmount.StringFixed(2),
		e.PnLPercent.StringFixed(2),
		string(e.Reason),
		e.CashRemaining.StringFixed(2),
	}
}

// WriteLedgerCSV writes ledger entries in fill order
func WriteLedgerCSV(w io.Writer, entries []contracts.LedgerEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(LedgerHeader()); err != nil {
		return err
	}
	for _, e := range entries {
		if err := cw.Write(ledgerCells(e)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// SweepHeader returns the grid result column names
func SweepHeader() []string {
	return []string{
		"回测开始日期", "回测结束日期", "止盈(%)", "止损(%)", "最大持仓(天)", "斜率阈值(°)",
		"绝对盈亏(元)", "总收益率(%)", "总交易笔数", "胜率(%)",
	}
}

func sweepCells(r backtest.SweepResult) []string {
	p := r.Params
	s := r.Summary
	return []string{
		p.StartDate.Format(DateLayout),
		p.EndDate.Format(DateLayout),
		formatPct(p.TakeProfit),
		formatPct(p.StopLoss),
		strconv.Itoa(p.MaxHoldDays),
		strconv.FormatFloat(p.SlopeThreshold, 'f', -1, 64),
		float2(s.PnL),
		float2(s.ReturnPct),
		strconv.Itoa(s.TradeCount),
		float2(s.WinRatePct),
	}
}

// WriteSweepCSV writes sweep results in the given (ranked) order
func WriteSweepCSV(w io.Writer, results []backtest.SweepResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(SweepHeader()); err != nil {
		return err
	}
	for _, r := range results {
		if err := cw.Write(sweepCells(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// formatPct renders a fraction as a percentage without trailing zeros (0.15 → 15)
func formatPct(fraction float64) string {
	return decimal.NewFromFloat(fraction).Mul(decimal.NewFromInt(100)).String()
}
