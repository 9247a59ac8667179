package risk

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"time"
)

// ErrInsufficientData is returned when fewer than MinSamples returns are given
var ErrInsufficientData = errors.New("insufficient data for simulation")

var reportedPercentiles = []int{1, 5, 10, 25, 50, 75, 90, 95, 99}

// Simulator bootstraps holding-period returns from daily portfolio returns
type Simulator struct {
	config Config
	rng    *rand.Rand
}

// NewSimulator creates a simulator; a zero seed draws from the clock
func NewSimulator(config Config) *Simulator {
	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Simulator{
		config: config,
		rng:    rand.New(rand.NewSource(seed)),
	}
}

// Simulate resamples daily returns with replacement into HoldingPeriod-day paths
func (s *Simulator) Simulate(daily []float64) (*SimulationResult, error) {
	if s.config.NumSimulations <= 0 || s.config.HoldingPeriod <= 0 {
		return nil, fmt.Errorf("num_simulations and holding_period must be > 0")
	}
	if len(daily) < s.config.MinSamples || len(daily) == 0 {
		return nil, fmt.Errorf("%w: got %d, need %d", ErrInsufficientData, len(daily), s.config.MinSamples)
	}

	paths := make([]float64, s.config.NumSimulations)
	for i := range paths {
		cum := 1.0
		for d := 0; d < s.config.HoldingPeriod; d++ {
			cum *= 1 + daily[s.rng.Intn(len(daily))]
		}
		paths[i] = cum - 1
	}

	sorted := make([]float64, len(paths))
	copy(sorted, paths)
	sort.Float64s(sorted)

	pct := make(map[int]float64, len(reportedPercentiles))
	for _, p := range reportedPercentiles {
		pct[p] = Percentile(sorted, float64(p))
	}

	return &SimulationResult{
		Config:      s.config,
		Samples:     len(daily),
		MeanReturn:  mean(paths),
		StdDev:      stdDev(paths),
		VaR95:       CalculateVaR(paths, 0.95),
		VaR99:       CalculateVaR(paths, 0.99),
		Percentiles: pct,
	}, nil
}
