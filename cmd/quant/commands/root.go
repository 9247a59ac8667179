package commands

import (
	"context"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	strategyFile string
	verbose      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "quant",
	Short: "A주 주파(主升浪) 스크리닝 / 백테스트 도구",
	Long: `A-share screening and event-driven backtest CLI.

일봉 CSV(history_data/<code>.csv) 또는 PostgreSQL에서 데이터를 읽어
시그널 계산 → 타임라인 → 단일 순차 백테스트까지 수행합니다.

Usage:
  go run ./cmd/quant [command]

Examples:
  go run ./cmd/quant data-check
  go run ./cmd/quant screen --from 2026-01-28 --to 2026-01-28
  go run ./cmd/quant backtest run --from 2024-01-01 --to 2024-12-31 --tp 20 --sl 8 --max-days 10 --slope 25
  go run ./cmd/quant backtest sweep --from 2024-01-01 --to 2024-12-31 --tp 15,20 --sl 5,8 --max-days 10,20 --slope 20,25`,
	SilenceUsage: true,
}

// ExecuteContext runs the root command; ctx is cancelled on SIGINT/SIGTERM
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&strategyFile, "strategy", "", "strategy YAML (default: STRATEGY_FILE or built-in)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}
