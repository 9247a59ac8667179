package s2_signals

import (
	"context"
	"errors"
	"time"

	"github.com/wonny/aegis-ashare/internal/contracts"
	"github.com/wonny/aegis-ashare/internal/indicator"
	"github.com/wonny/aegis-ashare/internal/s0_data"
	"github.com/wonny/aegis-ashare/internal/s0_data/collector"
	"github.com/wonny/aegis-ashare/pkg/logger"
	"github.com/wonny/aegis-ashare/pkg/nullable"
)

// Builder derives per-ticker signals over a worker pool
// ⭐ SSOT: 시그널 생성 오케스트레이션은 여기서만
type Builder struct {
	collector *collector.Collector
	config    Config
	logger    *logger.Logger
}

// Config holds signal derivation settings
type Config struct {
	Workers           int
	MainWaveMode      indicator.Mode
	DeepBottomVariant Variant
	PullbackVariant   Variant
	HotThreshold      float64 // 🔥 리포트 기울기 임계값
}

// DefaultConfig returns strict windows, classic formulas and a 25° report threshold
func DefaultConfig() Config {
	return Config{
		Workers:      1,
		MainWaveMode: indicator.Strict,
		HotThreshold: 25,
	}
}

// ScreenRow is one (ticker, date) line of the daily screening report.
// Streak fields hold the run length of each signal (0 = not triggered).
type ScreenRow struct {
	Ticker     string
	Date       time.Time
	Close      nullable.Float
	BBI        nullable.Float
	MA60       nullable.Float
	Volatility nullable.Float

	DeepBottom int
	Pullback   int
	MainWave   int
}

// NewBuilder creates a new signal builder over source
func NewBuilder(source contracts.BarSource, config Config, log *logger.Logger) *Builder {
	stageLog := log.WithFields(map[string]interface{}{
		"module": "signals",
		"stage":  contracts.StageSignals.ShortName(),
	})
	return &Builder{
		collector: collector.NewCollector(source, log),
		config:    config,
		logger:    stageLog,
	}
}

// BuildSignals derives main-wave SignalRows for every universe ticker.
// Failed or short tickers are recorded in universe.Excluded.
func (b *Builder) BuildSignals(ctx context.Context, universe *contracts.Universe) (map[string][]contracts.SignalRow, error) {
	calc := NewMainWaveCalculator(b.config.MainWaveMode)

	results, err := collector.Map(ctx, b.collector, universe.Stocks, collector.Config{Workers: b.config.Workers},
		func(ticker string, bars []contracts.Bar) ([]contracts.SignalRow, error) {
			return calc.SignalRows(ColumnsOf(contracts.NormalizeTicker(ticker), bars))
		})
	if err != nil {
		return nil, err
	}

	out := make(map[string][]contracts.SignalRow, len(results))
	seen := make(map[string]bool, len(results))
	for _, r := range results {
		code, dup := b.claim(seen, r.Ticker)
		if dup {
			continue
		}
		if r.Error != nil {
			b.exclude(universe, code, r.Error)
			continue
		}
		out[code] = r.Value
	}

	b.logger.WithFields(map[string]interface{}{
		"total":    len(universe.Stocks),
		"success":  len(out),
		"excluded": len(universe.Excluded),
	}).Info("Signal generation completed")

	return out, nil
}

// BuildScreen derives the screening rows whose date falls in [start, end]
func (b *Builder) BuildScreen(ctx context.Context, universe *contracts.Universe, start, end time.Time) ([]ScreenRow, error) {
	deep := NewDeepBottomCalculator(b.config.DeepBottomVariant)
	pullback := NewPullbackCalculator(b.config.PullbackVariant)
	mainWave := NewMainWaveCalculator(b.config.DeepBottomVariant.Mode())
	mode := b.config.DeepBottomVariant.Mode()
	minHistory := b.config.DeepBottomVariant.MinHistory()

	results, err := collector.Map(ctx, b.collector, universe.Stocks, collector.Config{Workers: b.config.Workers},
		func(ticker string, bars []contracts.Bar) ([]ScreenRow, error) {
			cols := ColumnsOf(contracts.NormalizeTicker(ticker), bars)
			if err := requireHistory(cols, minHistory); err != nil {
				return nil, err
			}

			db := deep.Calculate(cols)
			pb := pullback.Calculate(cols)
			mw := mainWave.Calculate(cols)
			bbi := mode.BBI(cols.Close)
			vol := mode.Volatility(cols.Close, 20)

			dbRun := Streak(db.Flag)
			pbRun := Streak(pb.Flag)
			mwRun := Streak(mw.Hot(b.config.HotThreshold))

			rows := make([]ScreenRow, 0)
			for i, d := range cols.Dates {
				if d.Before(start) || d.After(end) {
					continue
				}
				rows = append(rows, ScreenRow{
					Ticker:     cols.Ticker,
					Date:       d,
					Close:      cols.Close[i],
					BBI:        bbi[i],
					MA60:       mw.MA60[i],
					Volatility: vol[i],
					DeepBottom: dbRun[i],
					Pullback:   pbRun[i],
					MainWave:   mwRun[i],
				})
			}
			return rows, nil
		})
	if err != nil {
		return nil, err
	}

	out := make([]ScreenRow, 0)
	seen := make(map[string]bool, len(results))
	for _, r := range results {
		code, dup := b.claim(seen, r.Ticker)
		if dup {
			continue
		}
		if r.Error != nil {
			b.exclude(universe, code, r.Error)
			continue
		}
		out = append(out, r.Value...)
	}

	b.logger.WithFields(map[string]interface{}{
		"tickers":  len(universe.Stocks),
		"rows":     len(out),
		"excluded": len(universe.Excluded),
		"variant":  b.config.DeepBottomVariant.String(),
	}).Info("Screening completed")

	return out, nil
}

// claim normalizes ticker and reports whether an earlier universe entry
// already produced the same code. The first entry in universe order wins.
func (b *Builder) claim(seen map[string]bool, ticker string) (string, bool) {
	code := contracts.NormalizeTicker(ticker)
	if seen[code] {
		b.logger.WithFields(map[string]interface{}{
			"ticker": ticker,
			"code":   code,
		}).Warn("Duplicate ticker dropped")
		return code, true
	}
	seen[code] = true
	return code, false
}

// exclude records the failure reason for a ticker
func (b *Builder) exclude(universe *contracts.Universe, ticker string, err error) {
	reason := contracts.ExcludeLoadError
	switch {
	case errors.Is(err, ErrInsufficientHistory):
		reason = contracts.ExcludeInsufficientHistory
	case errors.Is(err, s0_data.ErrMalformedBar):
		reason = contracts.ExcludeMalformed
	}
	universe.Exclude(ticker, reason)

	entry := b.logger.WithError(err).WithFields(map[string]interface{}{
		"ticker": ticker,
		"reason": reason,
	})
	if reason == contracts.ExcludeInsufficientHistory {
		entry.Debug("Ticker excluded")
	} else {
		entry.Warn("Ticker excluded")
	}
}
