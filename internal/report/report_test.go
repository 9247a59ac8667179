package report

import (
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/aegis-ashare/internal/backtest"
	"github.com/wonny/aegis-ashare/internal/contracts"
	"github.com/wonny/aegis-ashare/internal/s2_signals"
	"github.com/wonny/aegis-ashare/pkg/nullable"
)

func day(d int) time.Time {
	return time.Date(2026, 1, d, 0, 0, 0, 0, time.UTC)
}

func testUniverse() *contracts.Universe {
	u := contracts.NewUniverse()
	u.Stocks = []string{"600000", "000001", "688001"}
	u.Meta["600000"] = contracts.StockMeta{Name: "浦发银行", Industry: "银行", Area: "上海", Type: "主板"}
	u.Meta["000001"] = contracts.StockMeta{Name: "平安银行", Industry: "银行", Area: "深圳", Type: "主板"}
	u.Meta["688001"] = contracts.StockMeta{Name: "华兴源创", Industry: "半导体", Area: "江苏", Type: "科创板"}
	return u
}

func testScreen() []s2_signals.ScreenRow {
	return []s2_signals.ScreenRow{
		{Ticker: "688001", Date: day(6), Close: nullable.Some(30.456), MainWave: 2},
		{Ticker: "600000", Date: day(6), Close: nullable.Some(10), DeepBottom: 1, MainWave: 1},
		{Ticker: "000001", Date: day(5), Close: nullable.Some(12.5), Pullback: 3, BBI: nullable.Some(12.3456)},
		{Ticker: "000001", Date: day(6), Close: nullable.Some(12.6), DeepBottom: 2},
	}
}

func TestBuildRows(t *testing.T) {
	rows := BuildRows(testScreen(), testUniverse())
	require.Len(t, rows, 4)

	var order []string
	for _, r := range rows {
		order = append(order, r.Date.Format(DateLayout)+"/"+r.Code)
	}
	assert.Equal(t, []string{
		"2026-01-05/000001",
		"2026-01-06/000001",
		"2026-01-06/600000",
		"2026-01-06/688001",
	}, order)

	assert.Equal(t, "平安银行", rows[0].Name)
	assert.Equal(t, "Y x3", rows[0].Pullback)
	assert.Equal(t, "", rows[0].DeepBottom)
	assert.Equal(t, "🔥 x2", rows[3].MainWave)
	assert.Equal(t, "Y", rows[2].DeepBottom)
	assert.Equal(t, "🔥", rows[2].MainWave)
}

func TestRowCells(t *testing.T) {
	rows := BuildRows(testScreen(), testUniverse())
	cells := rows[0].Cells()

	require.Len(t, cells, len(Header()))
	assert.Equal(t, "2026-01-05", cells[0])
	assert.Equal(t, "12.50", cells[6])
	assert.Equal(t, "12.35", cells[10])
	assert.Equal(t, "", cells[11], "undefined MA60 renders empty")
}

func TestBuildRows_NoMeta(t *testing.T) {
	rows := BuildRows(testScreen()[:1], nil)
	require.Len(t, rows, 1)
	assert.Equal(t, "688001", rows[0].Code)
	assert.Empty(t, rows[0].Name)
}

func TestSummarize(t *testing.T) {
	s := Summarize(BuildRows(testScreen(), testUniverse()))

	assert.Equal(t, 4, s.Rows)
	assert.Equal(t, 3, s.Tickers)
	assert.Equal(t, 2, s.DeepBottom)
	assert.Equal(t, 1, s.Pullback)
	assert.Equal(t, 2, s.MainWave)

	assert.Equal(t, []IndustryCount{{"银行", 2}}, s.DeepBottomIndustries)
	assert.Equal(t, []IndustryCount{{"半导体", 1}, {"银行", 1}}, s.MainWaveIndustries)
}

func TestWriteReportCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReportCSV(&buf, BuildRows(testScreen(), testUniverse())))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 5)
	assert.Equal(t, Header(), records[0])
	assert.Equal(t, "000001", records[1][1])
}

func TestWriteLedgerCSV(t *testing.T) {
	entries := []contracts.LedgerEntry{
		{
			Date: day(5), Ticker: "600000", Action: contracts.ActionBuy, Shares: 20000,
			Price: contracts.Money(10), Amount: contracts.Money(200000), Reason: contracts.ReasonEntry,
			CashRemaining: contracts.Money(800000),
		},
		{
			Date: day(6), Ticker: "600000", Action: contracts.ActionSell, Shares: 20000,
			Price: contracts.Money(12), Amount: contracts.Money(240000),
			PnLAmount: contracts.Money(40000), PnLPercent: contracts.Money(20),
			Reason: contracts.ReasonTakeProfit, CashRemaining: contracts.Money(1040000),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteLedgerCSV(&buf, entries))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"2026-01-05", "600000", "BUY", "20000", "10.00", "200000.00", "0.00", "0.00", "entry", "800000.00"}, records[1])
	assert.Equal(t, "take-profit", records[2][8])
	assert.Equal(t, "40000.00", records[2][6])
}

func TestWriteSweepCSV(t *testing.T) {
	results := []backtest.SweepResult{{
		Params: contracts.StrategyParams{
			StartDate: day(1), EndDate: day(31),
			TakeProfit: 0.15, StopLoss: 0.08, MaxHoldDays: 10, SlopeThreshold: 25,
		},
		Summary: contracts.RunSummary{PnL: 40000, ReturnPct: 4, TradeCount: 1, WinRatePct: 100},
	}}

	var buf bytes.Buffer
	require.NoError(t, WriteSweepCSV(&buf, results))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"2026-01-01", "2026-01-31", "15", "8", "10", "25", "40000.00", "4.00", "1", "100.00"}, records[1])
}

func TestSaveFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	name := LedgerFileName(day(1), day(31))
	assert.Equal(t, "backtest_MainWave_2026-01-01_to_2026-01-31.csv", name)
	assert.Equal(t, "grid_search_2026-01-01_to_2026-01-31.csv", SweepFileName(day(1), day(31)))

	path, err := SaveFile(dir, name, func(w io.Writer) error {
		return WriteLedgerCSV(w, nil)
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "\ufeffDate,StockCode"))
}

func TestConsole(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)

	rows := BuildRows(testScreen(), testUniverse())
	require.NoError(t, c.PrintScreen(rows, Summarize(rows)))
	out := buf.String()
	assert.Contains(t, out, "S3 主升浪 : 2")
	assert.Contains(t, out, "浦发银行")

	buf.Reset()
	require.NoError(t, c.PrintLedger(nil))
	assert.Contains(t, buf.String(), "No trades")

	buf.Reset()
	results := []backtest.SweepResult{
		{Params: contracts.StrategyParams{TakeProfit: 0.2, StopLoss: 0.05, MaxHoldDays: 10, SlopeThreshold: 20}},
		{Params: contracts.StrategyParams{TakeProfit: 0.1, StopLoss: 0.05, MaxHoldDays: 10, SlopeThreshold: 20}},
	}
	require.NoError(t, c.PrintSweep(results, 1))
	assert.Contains(t, buf.String(), "Top 1 of 2")

	buf.Reset()
	c.PrintRunSummary(contracts.RunSummary{
		StartDate: day(1), EndDate: day(31), InitialCapital: 1_000_000, FinalValue: 1_040_000,
		PnL: 40000, ReturnPct: 4, TradeCount: 1, WinRatePct: 100,
		Params: contracts.StrategyParams{TakeProfit: 0.15, StopLoss: 0.08, MaxHoldDays: 10, SlopeThreshold: 25},
	})
	assert.Contains(t, buf.String(), "¥1040000.00")
	assert.Contains(t, buf.String(), "tp=15% sl=8%")
}
