package risk

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/aegis-ashare/pkg/logger"
)

func sampleReturns() []float64 {
	out := []float64{0.01, -0.05, 0.01, -0.03}
	for len(out) < 20 {
		out = append(out, 0.01)
	}
	return out
}

func TestCalculateVaR(t *testing.T) {
	res := CalculateVaR(sampleReturns(), 0.95)
	assert.Equal(t, 0.95, res.Confidence)
	assert.InDelta(t, 0.03, res.VaR, 1e-12)
	assert.InDelta(t, 0.04, res.CVaR, 1e-12)

	// 손실이 없으면 0
	gains := CalculateVaR([]float64{0.01, 0.02, 0.03}, 0.95)
	assert.Zero(t, gains.VaR)
	assert.Zero(t, gains.CVaR)

	assert.Equal(t, VaRResult{Confidence: 0.99}, CalculateVaR(nil, 0.99))
}

func TestPercentile(t *testing.T) {
	sorted := []float64{1, 2, 3, 4, 5}
	tests := []struct {
		p    float64
		want float64
	}{
		{0, 1},
		{50, 3},
		{25, 2},
		{90, 4.6},
		{100, 5},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, Percentile(sorted, tt.p), 1e-12, "p=%v", tt.p)
	}
	assert.Zero(t, Percentile(nil, 50))
}

func TestSimulator_Deterministic(t *testing.T) {
	cfg := Config{NumSimulations: 500, HoldingPeriod: 5, Seed: 42, MinSamples: 10}

	a, err := NewSimulator(cfg).Simulate(sampleReturns())
	require.NoError(t, err)
	b, err := NewSimulator(cfg).Simulate(sampleReturns())
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Equal(t, 20, a.Samples)
	assert.Len(t, a.Percentiles, 9)
	assert.LessOrEqual(t, a.Percentiles[5], a.Percentiles[95])
}

func TestSimulator_ConstantReturns(t *testing.T) {
	daily := make([]float64, 30)
	for i := range daily {
		daily[i] = 0.01
	}
	res, err := NewSimulator(Config{NumSimulations: 100, HoldingPeriod: 5, Seed: 1, MinSamples: 30}).Simulate(daily)
	require.NoError(t, err)

	want := math.Pow(1.01, 5) - 1
	assert.InDelta(t, want, res.MeanReturn, 1e-12)
	assert.InDelta(t, want, res.Percentiles[1], 1e-12)
	assert.Zero(t, res.VaR95.VaR)
}

func TestSimulator_InsufficientData(t *testing.T) {
	_, err := NewSimulator(DefaultConfig()).Simulate(sampleReturns())
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestEngine_Assess(t *testing.T) {
	e := NewEngine(Config{NumSimulations: 200, HoldingPeriod: 5, Seed: 7, MinSamples: 10}, DefaultLimits(), logger.Nop())

	t.Run("within limits", func(t *testing.T) {
		r, err := e.Assess(sampleReturns(), 0.05)
		require.NoError(t, err)
		assert.True(t, r.Passed)
		assert.Empty(t, r.Violations)
		assert.NotNil(t, r.Simulation)
	})

	t.Run("drawdown breach", func(t *testing.T) {
		r, err := e.Assess(sampleReturns(), 0.20)
		require.NoError(t, err)
		assert.False(t, r.Passed)
		require.Len(t, r.Violations, 1)
		assert.Contains(t, r.Violations[0], "max drawdown")
	})

	t.Run("too short for simulation", func(t *testing.T) {
		r, err := e.Assess([]float64{-0.10, 0.02}, 0)
		require.NoError(t, err)
		assert.Nil(t, r.Simulation)
		assert.False(t, r.Passed, "daily VaR 10% breaches the 5% limit")
	})
}
