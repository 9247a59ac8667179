package audit

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/aegis-ashare/internal/backtest"
	"github.com/wonny/aegis-ashare/internal/contracts"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func day(d int) time.Time {
	return time.Date(2026, 1, d, 0, 0, 0, 0, time.UTC)
}

func sampleParams(tp float64) contracts.StrategyParams {
	return contracts.StrategyParams{
		StartDate: day(1), EndDate: day(31),
		TakeProfit: tp, StopLoss: 0.08, MaxHoldDays: 10, SlopeThreshold: 25,
	}
}

func sampleResult() *backtest.Result {
	return &backtest.Result{
		Summary: contracts.RunSummary{
			StartDate: day(1), EndDate: day(31), Params: sampleParams(0.15),
			InitialCapital: 1_000_000, FinalValue: 1_040_000, PnL: 40000, ReturnPct: 4,
			TradeCount: 1, WinRatePct: 100,
		},
		Ledger: []contracts.LedgerEntry{
			{
				Date: day(5), Ticker: "600000", Action: contracts.ActionBuy, Shares: 20000,
				Price: contracts.Money(10), Amount: contracts.Money(200000),
				Reason: contracts.ReasonEntry, CashRemaining: contracts.Money(800000),
			},
			{
				Date: day(6), Ticker: "600000", Action: contracts.ActionSell, Shares: 20000,
				Price: contracts.Money(12), Amount: contracts.Money(240000),
				PnLAmount: contracts.Money(40000), PnLPercent: contracts.Money(20),
				Reason: contracts.ReasonTakeProfit, CashRemaining: contracts.Money(1040000),
			},
		},
	}
}

func TestStore_SaveRunAndLedger(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.SaveRun(ctx, "ashare_mainwave", "hash", sampleResult())
	require.NoError(t, err)
	require.NotEmpty(t, id)

	run, err := s.GetRun(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, KindRun, run.Kind)
	assert.Equal(t, "ashare_mainwave", run.StrategyID)
	assert.Equal(t, "hash", run.ConfigHash)
	assert.Empty(t, run.BatchID)
	assert.Equal(t, 1_040_000.0, run.Summary.FinalValue)
	assert.Equal(t, 0.15, run.Summary.Params.TakeProfit)
	assert.True(t, run.Summary.StartDate.Equal(day(1)))

	ledger, err := s.GetLedger(ctx, id)
	require.NoError(t, err)
	require.Len(t, ledger, 2)
	assert.Equal(t, contracts.ActionBuy, ledger[0].Action)
	assert.Equal(t, "12", ledger[1].Price.String())
	assert.Equal(t, "40000", ledger[1].PnLAmount.String())
	assert.Equal(t, contracts.ReasonTakeProfit, ledger[1].Reason)
	assert.True(t, ledger[1].Date.Equal(day(6)))
}

func TestStore_GetRunNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetRun(context.Background(), "missing")
	assert.True(t, errors.Is(err, ErrRunNotFound))
}

func TestStore_SaveSweep(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	results := []backtest.SweepResult{
		{Index: 1, Params: sampleParams(0.20), Summary: contracts.RunSummary{Params: sampleParams(0.20), ReturnPct: 1}},
		{Index: 0, Params: sampleParams(0.15), Summary: contracts.RunSummary{Params: sampleParams(0.15), ReturnPct: 4}},
	}
	batch, err := s.SaveSweep(ctx, "ashare_mainwave", "hash", results)
	require.NoError(t, err)

	runs, err := s.GetBatch(ctx, batch)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, 4.0, runs[0].Summary.ReturnPct)
	assert.Equal(t, KindSweep, runs[0].Kind)
	assert.Equal(t, batch, runs[1].BatchID)

	ledger, err := s.GetLedger(ctx, runs[0].ID)
	require.NoError(t, err)
	assert.Empty(t, ledger)
}

func TestStore_ListRuns(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	first, err := s.SaveRun(ctx, "a", "h1", sampleResult())
	require.NoError(t, err)
	second, err := s.SaveRun(ctx, "b", "h2", sampleResult())
	require.NoError(t, err)

	runs, err := s.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, second, runs[0].ID)
	assert.Equal(t, first, runs[1].ID)

	limited, err := s.ListRuns(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestStore_Quality(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	none, err := s.LatestQuality(ctx)
	require.NoError(t, err)
	assert.Nil(t, none)

	snap := &contracts.DataQualitySnapshot{
		CheckedAt:      time.Now(),
		TotalTickers:   10,
		UsableTickers:  8,
		HistoryBuckets: map[int]int{60: 8, 500: 3},
		Coverage:       map[string]float64{"close": 1},
		QualityScore:   0.8,
	}
	require.NoError(t, s.SaveQuality(ctx, snap))

	got, err := s.LatestQuality(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 8, got.UsableTickers)
	assert.Equal(t, 3, got.HistoryBuckets[500])
	assert.Equal(t, 0.8, got.QualityScore)
}
