package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/aegis-ashare/internal/audit"
	"github.com/wonny/aegis-ashare/internal/backtest"
	"github.com/wonny/aegis-ashare/internal/contracts"
	"github.com/wonny/aegis-ashare/internal/s0_data"
	"github.com/wonny/aegis-ashare/internal/s1_universe"
	"github.com/wonny/aegis-ashare/internal/s2_signals"
	"github.com/wonny/aegis-ashare/internal/strategyconfig"
	"github.com/wonny/aegis-ashare/internal/timeline"
	"github.com/wonny/aegis-ashare/pkg/config"
	"github.com/wonny/aegis-ashare/pkg/database"
	"github.com/wonny/aegis-ashare/pkg/logger"
)

// app bundles everything a command needs
// ⭐ SSOT: 커맨드 의존성 조립은 여기서만
type app struct {
	cfg          *config.Config
	log          *logger.Logger
	strategy     *strategyconfig.Config
	strategyYAML []byte
	configHash   string
	source       contracts.BarSource
	db           *database.DB // BAR_SOURCE=postgres 일 때만
}

// newApp loads env config, the strategy file and opens the bar source
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log := newCommandLogger(cfg)

	a := &app{cfg: cfg, log: log}
	if err := a.loadStrategy(); err != nil {
		return nil, err
	}
	if err := a.openSource(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

// newCommandLogger builds the logger, --verbose forces debug level
func newCommandLogger(cfg *config.Config) *logger.Logger {
	if verbose {
		cfg.LogLevel = "debug"
	}
	return logger.New(cfg)
}

func (a *app) loadStrategy() error {
	path := strategyFile
	if path == "" {
		path = a.cfg.Data.StrategyFile
	}

	if path == "" {
		a.strategy = strategyconfig.Default()
	} else {
		cfg, data, err := strategyconfig.Load(path)
		if err != nil {
			return fmt.Errorf("load strategy %s: %w", path, err)
		}
		a.strategy, a.strategyYAML = cfg, data
	}

	hash, err := strategyconfig.Hash(a.strategy)
	if err != nil {
		return fmt.Errorf("hash strategy: %w", err)
	}
	a.configHash = hash

	for _, w := range strategyconfig.Warn(a.strategy) {
		a.log.WithField("code", w.Code).Warn(w.Message)
	}
	return nil
}

func (a *app) openSource(ctx context.Context) error {
	switch a.cfg.Data.BarSource {
	case config.BarSourcePostgres:
		db, err := database.New(ctx, a.cfg.Database)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		a.db = db
		a.source = s0_data.NewPostgresSource(db.Pool, a.cfg.Data.QueryRPS, a.log)
	default:
		a.source = s0_data.NewCSVSource(a.cfg.Data.HistoryDir, a.log)
	}
	return nil
}

// Close releases the database pool if one was opened
func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
}

func (a *app) universeBuilder() *s1_universe.Builder {
	return s1_universe.NewBuilder(a.source, a.strategy.UniverseConfig(a.cfg.Data.UniverseFile), a.log)
}

func (a *app) signalBuilder() *s2_signals.Builder {
	return s2_signals.NewBuilder(a.source, a.strategy.SignalConfig(a.cfg.Backtest.Workers), a.log)
}

func (a *app) engine() *backtest.Engine {
	return backtest.NewEngine(a.strategy.EngineConfig(a.cfg.Backtest.InitialCapital), a.log)
}

func (a *app) openStore() (*audit.Store, error) {
	store, err := audit.NewStore(a.cfg.ResultsDSN)
	if err != nil {
		return nil, fmt.Errorf("open results store: %w", err)
	}
	return store, nil
}

// buildTimeline runs S1 → S2 → timeline for [start, end]
func (a *app) buildTimeline(ctx context.Context, start, end time.Time) (*timeline.Timeline, *contracts.Universe, error) {
	universe, err := a.universeBuilder().Build(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("build universe: %w", err)
	}

	t0 := time.Now()
	perTicker, err := a.signalBuilder().BuildSignals(ctx, universe)
	if err != nil {
		return nil, nil, fmt.Errorf("build signals: %w", err)
	}

	tl := timeline.Build(perTicker, start, end)
	a.log.WithFields(map[string]interface{}{
		"tickers":  len(perTicker),
		"excluded": len(universe.Excluded),
		"rows":     tl.Len(),
		"days":     len(tl.Dates()),
		"elapsed":  time.Since(t0).String(),
	}).Info("Timeline ready")

	return tl, universe, nil
}

// outputDir returns the --out override or OUTPUT_DIR
func (a *app) outputDir(override string) string {
	if override != "" {
		return override
	}
	return a.cfg.Data.OutputDir
}
