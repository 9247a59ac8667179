package collector

import (
	"context"
	"sync"

	"github.com/wonny/aegis-ashare/internal/contracts"
	"github.com/wonny/aegis-ashare/pkg/logger"
)

// Collector loads bar history for many tickers concurrently
// ⭐ SSOT: 종목별 병렬 로딩은 이 패키지에서만
type Collector struct {
	source contracts.BarSource
	logger *logger.Logger
}

// Config holds collector configuration
type Config struct {
	Workers int // Number of concurrent workers
}

// NewCollector creates a new Collector instance
func NewCollector(source contracts.BarSource, log *logger.Logger) *Collector {
	return &Collector{
		source: source,
		logger: log.WithField("module", "collector"),
	}
}

// Result is the outcome of one ticker
type Result[T any] struct {
	Ticker string
	Value  T
	Error  error
}

// LoadResult represents the result of loading one ticker
type LoadResult = Result[[]contracts.Bar]

// LoadAll loads every ticker and returns results in input order
func (c *Collector) LoadAll(ctx context.Context, tickers []string, cfg Config) ([]LoadResult, error) {
	return Map(ctx, c, tickers, cfg, func(ticker string, bars []contracts.Bar) ([]contracts.Bar, error) {
		return bars, nil
	})
}

// Map loads each ticker and applies derive inside the worker, returning
// results in input order. A failed ticker is reported in its result and
// never aborts the batch.
func Map[T any](ctx context.Context, c *Collector, tickers []string, cfg Config, derive func(ticker string, bars []contracts.Bar) (T, error)) ([]Result[T], error) {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}

	c.logger.WithFields(map[string]interface{}{
		"stock_count": len(tickers),
		"workers":     workers,
	}).Debug("Starting ticker processing")

	results := make([]Result[T], len(tickers))
	jobCh := make(chan int, len(tickers))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// 각 job은 고유 인덱스에만 기록 (lock 불필요)
			for idx := range jobCh {
				results[idx] = process(ctx, c, tickers[idx], derive)
			}
		}()
	}

	for i := range tickers {
		jobCh <- i
	}
	close(jobCh)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	failCount := 0
	for _, r := range results {
		if r.Error != nil {
			failCount++
		}
	}

	c.logger.WithFields(map[string]interface{}{
		"success": len(results) - failCount,
		"failed":  failCount,
		"total":   len(results),
	}).Info("Ticker processing completed")

	return results, nil
}

func process[T any](ctx context.Context, c *Collector, ticker string, derive func(string, []contracts.Bar) (T, error)) Result[T] {
	result := Result[T]{Ticker: ticker}
	select {
	case <-ctx.Done():
		result.Error = ctx.Err()
		return result
	default:
	}

	bars, err := c.source.LoadBars(ctx, ticker)
	if err != nil {
		c.logger.WithError(err).WithField("ticker", ticker).Warn("Failed to load bars")
		result.Error = err
		return result
	}

	result.Value, result.Error = derive(ticker, bars)
	return result
}
