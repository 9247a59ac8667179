package quality

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/aegis-ashare/internal/contracts"
	"github.com/wonny/aegis-ashare/pkg/logger"
)

// QualityGate scans a bar source and produces a snapshot
type QualityGate struct {
	source contracts.BarSource
	config Config
	logger *logger.Logger
}

// Config holds quality gate thresholds
type Config struct {
	HistoryThresholds []int   `yaml:"history_thresholds"` // 60 (주升浪), 500 (大底)
	MinScore          float64 `yaml:"min_score"`
}

// DefaultConfig matches the signal minimum-history requirements
func DefaultConfig() Config {
	return Config{
		HistoryThresholds: []int{60, 500},
		MinScore:          0.7,
	}
}

// NewQualityGate creates a new QualityGate instance
func NewQualityGate(source contracts.BarSource, config Config, log *logger.Logger) *QualityGate {
	return &QualityGate{
		source: source,
		config: config,
		logger: log.WithFields(map[string]interface{}{
			"module": "quality_gate",
			"stage":  contracts.StageData.ShortName(),
		}),
	}
}

// Check loads every ticker and measures coverage
// ⭐ SSOT: S0 → S1 품질 검증
func (g *QualityGate) Check(ctx context.Context) (*contracts.DataQualitySnapshot, error) {
	tickers, err := g.source.ListTickers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tickers: %w", err)
	}

	snapshot := &contracts.DataQualitySnapshot{
		CheckedAt:      time.Now(),
		TotalTickers:   len(tickers),
		HistoryBuckets: make(map[int]int),
		Coverage:       make(map[string]float64),
		Failed:         make(map[string]string),
	}

	valid := map[string]int{}
	for _, ticker := range tickers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		bars, err := g.source.LoadBars(ctx, ticker)
		if err != nil {
			snapshot.Failed[ticker] = err.Error()
			g.logger.WithError(err).WithField("ticker", ticker).Debug("Ticker failed quality scan")
			continue
		}
		if len(bars) == 0 {
			snapshot.Failed[ticker] = "no bars"
			continue
		}

		snapshot.UsableTickers++
		snapshot.TotalBars += len(bars)
		for _, th := range g.config.HistoryThresholds {
			if len(bars) >= th {
				snapshot.HistoryBuckets[th]++
			}
		}

		if first := bars[0].Date; snapshot.FirstDate.IsZero() || first.Before(snapshot.FirstDate) {
			snapshot.FirstDate = first
		}
		if last := bars[len(bars)-1].Date; last.After(snapshot.LastDate) {
			snapshot.LastDate = last
		}

		for _, b := range bars {
			cells := map[string]bool{
				"open":   b.Open.Valid,
				"high":   b.High.Valid,
				"low":    b.Low.Valid,
				"close":  b.Close.Valid,
				"volume": b.Volume.Valid,
			}
			complete := true
			for col, ok := range cells {
				if ok {
					valid[col]++
				} else {
					complete = false
				}
			}
			if !complete {
				snapshot.MalformedBars++
			}
		}
	}

	for _, col := range []string{"open", "high", "low", "close", "volume"} {
		if snapshot.TotalBars > 0 {
			snapshot.Coverage[col] = float64(valid[col]) / float64(snapshot.TotalBars)
		}
	}

	snapshot.QualityScore = g.calculateScore(snapshot.Coverage)
	if snapshot.TotalTickers > 0 {
		snapshot.QualityScore *= float64(snapshot.UsableTickers) / float64(snapshot.TotalTickers)
	}

	g.logger.WithFields(map[string]interface{}{
		"tickers": snapshot.TotalTickers,
		"usable":  snapshot.UsableTickers,
		"bars":    snapshot.TotalBars,
		"score":   snapshot.QualityScore,
	}).Info("Quality scan completed")

	return snapshot, nil
}

// Passed applies the configured minimum score
func (g *QualityGate) Passed(snapshot *contracts.DataQualitySnapshot) bool {
	return snapshot.UsableTickers > 0 && snapshot.QualityScore >= g.config.MinScore
}

// calculateScore calculates overall quality score using weighted average
func (g *QualityGate) calculateScore(coverage map[string]float64) float64 {
	// 가중치 (합계 = 1.0)
	weights := map[string]float64{
		"close":  0.35, // 모든 시그널 필수
		"open":   0.15,
		"high":   0.15,
		"low":    0.15,
		"volume": 0.20, // 거래량 조건
	}

	score := 0.0
	for key, weight := range weights {
		if cov, exists := coverage[key]; exists {
			score += cov * weight
		}
	}

	return score
}
