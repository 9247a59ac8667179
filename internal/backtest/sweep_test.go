package backtest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/aegis-ashare/internal/contracts"
)

func TestGrid_Combinations(t *testing.T) {
	grid := Grid{
		TakeProfits: []float64{0.1, 0.2},
		StopLosses:  []float64{0.05},
		MaxHoldDays: []int{5, 10},
		Slopes:      []float64{20, 25},
	}
	combos := grid.Combinations(day(0), day(10))
	require.Len(t, combos, 8)
	assert.Equal(t, 8, grid.Size())

	// tp × sl × days × slope 중첩 순서
	assert.Equal(t, 0.1, combos[0].TakeProfit)
	assert.Equal(t, 5, combos[0].MaxHoldDays)
	assert.Equal(t, 20.0, combos[0].SlopeThreshold)
	assert.Equal(t, 25.0, combos[1].SlopeThreshold)
	assert.Equal(t, 10, combos[2].MaxHoldDays)
	assert.Equal(t, 0.2, combos[4].TakeProfit)
	for _, c := range combos {
		assert.Equal(t, day(0), c.StartDate)
		assert.Equal(t, day(10), c.EndDate)
	}

	grid.Slopes = nil
	assert.Empty(t, grid.Combinations(day(0), day(10)))
}

func TestSweep_SingleElementMatchesRun(t *testing.T) {
	tl := randomTimeline(3)
	e := newEngine(1_000_000)
	p := params(0.1, 0.05, 7, 20)

	run, err := e.Run(context.Background(), tl, p)
	require.NoError(t, err)

	grid := Grid{
		TakeProfits: []float64{p.TakeProfit},
		StopLosses:  []float64{p.StopLoss},
		MaxHoldDays: []int{p.MaxHoldDays},
		Slopes:      []float64{p.SlopeThreshold},
	}
	results, err := e.Sweep(context.Background(), tl, grid, p.StartDate, p.EndDate, 2)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, run.Summary, results[0].Summary)
}

func TestSweep_DeterministicAndSorted(t *testing.T) {
	tl := randomTimeline(7)
	e := newEngine(1_000_000)
	grid := Grid{
		TakeProfits: []float64{0.05, 0.1, 0.2},
		StopLosses:  []float64{0.03, 0.08},
		MaxHoldDays: []int{3, 10},
		Slopes:      []float64{0, 20},
	}

	serial, err := e.Sweep(context.Background(), tl, grid, day(0), day(365), 1)
	require.NoError(t, err)
	parallel, err := e.Sweep(context.Background(), tl, grid, day(0), day(365), 4)
	require.NoError(t, err)
	again, err := e.Sweep(context.Background(), tl, grid, day(0), day(365), 4)
	require.NoError(t, err)

	require.Len(t, serial, grid.Size())
	assert.Equal(t, serial, parallel)
	assert.Equal(t, parallel, again)

	for i := 1; i < len(serial); i++ {
		prev, cur := serial[i-1], serial[i]
		assert.GreaterOrEqual(t, prev.Summary.ReturnPct, cur.Summary.ReturnPct)
		if prev.Summary.ReturnPct == cur.Summary.ReturnPct {
			assert.Less(t, prev.Index, cur.Index)
		}
	}
}

func TestSweep_InvalidCombination(t *testing.T) {
	grid := Grid{
		TakeProfits: []float64{0.1},
		StopLosses:  []float64{0.05, 1.5},
		MaxHoldDays: []int{5},
		Slopes:      []float64{20},
	}
	_, err := newEngine(1_000_000).Sweep(context.Background(), randomTimeline(1), grid, day(0), day(365), 1)

	var ve contracts.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "stop_loss", ve.Field)

	_, err = newEngine(1_000_000).Sweep(context.Background(), randomTimeline(1), Grid{}, day(0), day(365), 1)
	assert.Error(t, err)
}
