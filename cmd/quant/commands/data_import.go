package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/aegis-ashare/internal/s0_data"
	"github.com/wonny/aegis-ashare/internal/s0_data/collector"
	"github.com/wonny/aegis-ashare/pkg/config"
	"github.com/wonny/aegis-ashare/pkg/database"
)

var dataImportCmd = &cobra.Command{
	Use:   "data-import",
	Short: "CSV 일봉 이력 → PostgreSQL 적재",
	Long: `HISTORY_DATA_DIR의 <code>.csv 파일을 읽어 data.daily_prices에 upsert 합니다.
손상된 파일은 건너뛰고 나머지 종목은 계속 적재합니다.

Example:
  go run ./cmd/quant data-import --dir ./history_data`,
	RunE: runDataImport,
}

var importDir string

func init() {
	dataImportCmd.Flags().StringVar(&importDir, "dir", "", "CSV history directory (default: HISTORY_DATA_DIR)")
	rootCmd.AddCommand(dataImportCmd)
}

func runDataImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is not set")
	}
	log := newCommandLogger(cfg)

	dir := importDir
	if dir == "" {
		dir = cfg.Data.HistoryDir
	}

	db, err := database.New(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	target := s0_data.NewPostgresSource(db.Pool, 0, log)
	if err := target.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}

	source := s0_data.NewCSVSource(dir, log)
	tickers, err := source.ListTickers(ctx)
	if err != nil {
		return fmt.Errorf("list tickers: %w", err)
	}

	PrintHeader("📥 Bar Import", time.Time{}, time.Time{})
	PrintKeyValue("From", dir, 8)
	PrintKeyValue("Tickers", fmt.Sprintf("%d", len(tickers)), 8)

	results, err := collector.NewCollector(source, log).LoadAll(ctx, tickers, collector.Config{Workers: cfg.Backtest.Workers})
	if err != nil {
		return fmt.Errorf("load bars: %w", err)
	}

	var imported, bars, failed int
	for _, r := range results {
		if r.Error != nil {
			failed++
			log.WithError(r.Error).WithField("ticker", r.Ticker).Warn("Skipped ticker")
			continue
		}
		if err := target.SaveBars(ctx, r.Value); err != nil {
			return fmt.Errorf("save %s: %w", r.Ticker, err)
		}
		imported++
		bars += len(r.Value)
	}

	PrintSeparator()
	PrintKeyValue("Imported", fmt.Sprintf("%d tickers, %d bars", imported, bars), 8)
	if failed > 0 {
		PrintWarning(fmt.Sprintf("%d tickers skipped", failed))
	}
	PrintDoubleSeparator()
	return nil
}
