package backtest

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/wonny/aegis-ashare/internal/contracts"
	"github.com/wonny/aegis-ashare/internal/timeline"
)

// Grid is the parameter space of a sweep
type Grid struct {
	TakeProfits []float64 `yaml:"take_profits"`
	StopLosses  []float64 `yaml:"stop_losses"`
	MaxHoldDays []int     `yaml:"max_hold_days"`
	Slopes      []float64 `yaml:"slopes"`
}

// Size returns the number of combinations
func (g Grid) Size() int {
	return len(g.TakeProfits) * len(g.StopLosses) * len(g.MaxHoldDays) * len(g.Slopes)
}

// Combinations expands the grid in tp × sl × days × slope nesting order
func (g Grid) Combinations(start, end time.Time) []contracts.StrategyParams {
	return lo.CrossJoinBy4(g.TakeProfits, g.StopLosses, g.MaxHoldDays, g.Slopes,
		func(tp, sl float64, days int, slope float64) contracts.StrategyParams {
			return contracts.StrategyParams{
				StartDate:      start,
				EndDate:        end,
				TakeProfit:     tp,
				StopLoss:       sl,
				MaxHoldDays:    days,
				SlopeThreshold: slope,
			}
		})
}

// SweepResult is one evaluated combination
type SweepResult struct {
	Index   int // 조합 순번 (중첩 순서)
	Params  contracts.StrategyParams
	Summary contracts.RunSummary
}

// Sweep runs every grid combination over a shared read-only timeline and
// returns results by return desc, ties by combination index.
func (e *Engine) Sweep(ctx context.Context, tl *timeline.Timeline, grid Grid, start, end time.Time, workers int) ([]SweepResult, error) {
	combos := grid.Combinations(start, end)
	if len(combos) == 0 {
		return nil, contracts.ValidationError{Field: "grid", Message: "every parameter list must be non-empty"}
	}
	for i, params := range combos {
		if err := params.Validate(); err != nil {
			return nil, fmt.Errorf("combination %d (%s): %w", i, params.Label(), err)
		}
	}
	if workers < 1 {
		workers = 1
	}

	e.logger.WithFields(map[string]interface{}{
		"combinations": len(combos),
		"workers":      workers,
		"rows":         tl.Len(),
	}).Info("Starting parameter sweep")

	results := make([]SweepResult, len(combos))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, params := range combos {
		g.Go(func() error {
			res, err := e.Run(gctx, tl, params)
			if err != nil {
				return fmt.Errorf("run %s: %w", params.Label(), err)
			}
			results[i] = SweepResult{Index: i, Params: params, Summary: res.Summary}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Summary.ReturnPct != results[j].Summary.ReturnPct {
			return results[i].Summary.ReturnPct > results[j].Summary.ReturnPct
		}
		return results[i].Index < results[j].Index
	})

	best := results[0]
	e.logger.WithFields(map[string]interface{}{
		"best":        best.Params.Label(),
		"best_return": fmt.Sprintf("%.2f%%", best.Summary.ReturnPct),
	}).Info("Parameter sweep completed")

	return results, nil
}
