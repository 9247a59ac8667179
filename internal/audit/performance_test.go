package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wonny/aegis-ashare/internal/backtest"
	"github.com/wonny/aegis-ashare/internal/contracts"
	"github.com/wonny/aegis-ashare/pkg/logger"
)

func TestAnalyze(t *testing.T) {
	result := sampleResult()
	result.EquityCurve = []backtest.EquityPoint{
		{Date: day(5), Equity: 1_000_000},
		{Date: day(6), Equity: 1_100_000},
		{Date: day(7), Equity: 990_000},
		{Date: day(8), Equity: 1_040_000},
	}

	r := NewAnalyzer(logger.Nop()).Analyze(result)

	assert.Equal(t, 4, r.Days)
	assert.InDelta(t, 0.04, r.TotalReturn, 1e-9)
	assert.InDelta(t, -0.10, r.MaxDrawdown, 1e-9)
	assert.Greater(t, r.Volatility, 0.0)
	assert.Equal(t, 1, r.Trades)
	assert.Equal(t, 1.0, r.WinRate)
	assert.InDelta(t, 40000, r.AvgWin, 1e-9)
	assert.Zero(t, r.ProfitFactor, "no losing trade")
}

func TestTradeStats(t *testing.T) {
	tests := []struct {
		name       string
		pnls       []float64
		winRate    float64
		avgWin     float64
		avgLoss    float64
		profitFact float64
	}{
		{"empty", nil, 0, 0, 0, 0},
		{"mixed", []float64{100, -50, 200, 0}, 0.5, 150, -50, 6},
		{"all losses", []float64{-10, -30}, 0, 0, -20, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.winRate, calculateWinRate(tt.pnls), 1e-9)
			w, l := calculateAvgWinLoss(tt.pnls)
			assert.InDelta(t, tt.avgWin, w, 1e-9)
			assert.InDelta(t, tt.avgLoss, l, 1e-9)
			assert.InDelta(t, tt.profitFact, calculateProfitFactor(tt.pnls), 1e-9)
		})
	}
}

func TestClosedPnL(t *testing.T) {
	ledger := []contracts.LedgerEntry{
		{Action: contracts.ActionBuy},
		{Action: contracts.ActionSell, PnLAmount: contracts.Money(-12.5)},
	}
	assert.Equal(t, []float64{-12.5}, closedPnL(ledger))
}

func TestDailyReturns(t *testing.T) {
	assert.Nil(t, dailyReturns(0, nil))
	got := dailyReturns(100, []backtest.EquityPoint{{Equity: 110}, {Equity: 99}})
	assert.InDeltaSlice(t, []float64{0.10, -0.10}, got, 1e-9)
}
