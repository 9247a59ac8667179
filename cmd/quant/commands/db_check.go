package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/wonny/aegis-ashare/internal/s0_data"
	"github.com/wonny/aegis-ashare/pkg/config"
	"github.com/wonny/aegis-ashare/pkg/database"
)

// dbCheckCmd represents the db-check command
var dbCheckCmd = &cobra.Command{
	Use:   "db-check",
	Short: "PostgreSQL 연결 테스트",
	Long: `데이터베이스 연결을 테스트하고 풀 통계를 표시합니다.

이 명령어는:
- config에서 DATABASE_URL 로드
- 데이터베이스 연결 생성 후 Health Check 실행
- daily_bars 테이블의 종목 수 확인

Example:
  go run ./cmd/quant db-check`,
	RunE: runDBCheck,
}

func init() {
	rootCmd.AddCommand(dbCheckCmd)
}

func runDBCheck(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is not set")
	}

	PrintHeader("🗄️  Database Connection Check", time.Time{}, time.Time{})
	PrintKeyValue("ENV", cfg.Env, 10)
	PrintKeyValue("Target", describeDSN(cfg.Database.URL), 10)

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()

	db, err := database.New(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	status, err := db.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("health check: %w", err)
	}
	PrintSuccess(fmt.Sprintf("Healthy (%v)", status.ResponseTime))

	PrintSeparator()
	fmt.Println("📊 Connection Pool Statistics:")
	PrintKeyValue("Max", fmt.Sprintf("%d", status.Stats.MaxConns), 10)
	PrintKeyValue("Total", fmt.Sprintf("%d", status.Stats.TotalConns), 10)
	PrintKeyValue("Acquired", fmt.Sprintf("%d", status.Stats.AcquiredConns), 10)
	PrintKeyValue("Idle", fmt.Sprintf("%d", status.Stats.IdleConns), 10)

	source := s0_data.NewPostgresSource(db.Pool, cfg.Data.QueryRPS, newCommandLogger(cfg))
	if err := source.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	tickers, err := source.ListTickers(ctx)
	if err != nil {
		return fmt.Errorf("list tickers: %w", err)
	}
	PrintSeparator()
	PrintKeyValue("Tickers", fmt.Sprintf("%d", len(tickers)), 10)
	PrintDoubleSeparator()
	return nil
}

// describeDSN renders user@host:port/db without the password
func describeDSN(dsn string) string {
	pc, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return "(unparsable DATABASE_URL)"
	}
	cc := pc.ConnConfig
	return fmt.Sprintf("%s@%s:%d/%s", cc.User, cc.Host, cc.Port, cc.Database)
}
