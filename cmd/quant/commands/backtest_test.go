package commands

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/aegis-ashare/internal/backtest"
	"github.com/wonny/aegis-ashare/internal/contracts"
)

func TestRunParams(t *testing.T) {
	p, err := runParams("2024-01-01", "2024-12-31", "20", "8", "10", "25")
	require.NoError(t, err)
	assert.Equal(t, contracts.StrategyParams{
		StartDate:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:        time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
		TakeProfit:     0.20,
		StopLoss:       0.08,
		MaxHoldDays:    10,
		SlopeThreshold: 25,
	}, p)
}

func TestRunParams_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		from    string
		to      string
		tp      string
		sl      string
		days    string
		slope   string
		wantErr string
	}{
		{"bad date", "2024-13-01", "2024-12-31", "20", "8", "10", "25", "--from"},
		{"end before start", "2024-12-31", "2024-01-01", "20", "8", "10", "25", "end_date"},
		{"zero tp", "2024-01-01", "2024-12-31", "0", "8", "10", "25", "take_profit"},
		{"sl over 100", "2024-01-01", "2024-12-31", "20", "150", "10", "25", "stop_loss"},
		{"list days", "2024-01-01", "2024-12-31", "20", "8", "10,20", "25", "--max-days"},
		{"slope 90", "2024-01-01", "2024-12-31", "20", "8", "10", "90", "slope_threshold"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runParams(tt.from, tt.to, tt.tp, tt.sl, tt.days, tt.slope)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestSweepGrid(t *testing.T) {
	base := backtest.Grid{
		TakeProfits: []float64{0.10},
		StopLosses:  []float64{0.05},
		MaxHoldDays: []int{10},
		Slopes:      []float64{25},
	}

	g, err := sweepGrid(base, "15，20", "8", "", "")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.15, 0.20}, g.TakeProfits)
	assert.Equal(t, []float64{0.08}, g.StopLosses)
	assert.Equal(t, []int{10}, g.MaxHoldDays)
	assert.Equal(t, 2, g.Size())

	_, err = sweepGrid(backtest.Grid{}, "15", "", "", "")
	assert.ErrorContains(t, err, "empty grid")
}
