package s0_data

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/time/rate"

	"github.com/wonny/aegis-ashare/internal/contracts"
	"github.com/wonny/aegis-ashare/pkg/logger"
	"github.com/wonny/aegis-ashare/pkg/nullable"
)

// barSchema creates the daily bar table when it does not exist yet
const barSchema = `
CREATE SCHEMA IF NOT EXISTS data;

CREATE TABLE IF NOT EXISTS data.daily_prices (
    stock_code  TEXT             NOT NULL,
    trade_date  DATE             NOT NULL,
    open_price  DOUBLE PRECISION,
    high_price  DOUBLE PRECISION,
    low_price   DOUBLE PRECISION,
    close_price DOUBLE PRECISION,
    volume      DOUBLE PRECISION,
    created_at  TIMESTAMPTZ      NOT NULL DEFAULT NOW(),
    updated_at  TIMESTAMPTZ      NOT NULL DEFAULT NOW(),
    PRIMARY KEY (stock_code, trade_date)
);
`

// PostgresSource reads bars from data.daily_prices
// ⭐ SSOT: PostgreSQL 일봉 저장소는 여기서만
type PostgresSource struct {
	pool    *pgxpool.Pool
	limiter *rate.Limiter
	logger  *logger.Logger
}

// NewPostgresSource creates a source. queryRPS > 0 throttles queries so a
// wide worker pool does not saturate a shared database.
func NewPostgresSource(pool *pgxpool.Pool, queryRPS int, log *logger.Logger) *PostgresSource {
	limiter := rate.NewLimiter(rate.Inf, 0)
	if queryRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(queryRPS), queryRPS)
	}
	return &PostgresSource{
		pool:    pool,
		limiter: limiter,
		logger:  log.WithField("module", "postgres_source"),
	}
}

// EnsureSchema creates data.daily_prices if missing
func (s *PostgresSource) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, barSchema); err != nil {
		return fmt.Errorf("apply bar schema: %w", err)
	}
	return nil
}

// ListTickers returns every distinct stock_code
func (s *PostgresSource) ListTickers(ctx context.Context) ([]string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `SELECT DISTINCT stock_code FROM data.daily_prices ORDER BY stock_code`)
	if err != nil {
		return nil, fmt.Errorf("query tickers: %w", err)
	}
	defer rows.Close()

	tickers := make([]string, 0)
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("scan ticker: %w", err)
		}
		tickers = append(tickers, code)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate tickers: %w", rows.Err())
	}

	return tickers, nil
}

// LoadBars returns all bars of a ticker in ascending date order
func (s *PostgresSource) LoadBars(ctx context.Context, ticker string) ([]contracts.Bar, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	query := `
		SELECT trade_date, open_price, high_price, low_price, close_price, volume
		FROM data.daily_prices
		WHERE stock_code = $1
		ORDER BY trade_date ASC
	`

	rows, err := s.pool.Query(ctx, query, ticker)
	if err != nil {
		return nil, fmt.Errorf("query bars %s: %w", ticker, err)
	}
	defer rows.Close()

	code := contracts.NormalizeTicker(ticker)
	bars := make([]contracts.Bar, 0, 1024)
	for rows.Next() {
		var date time.Time
		var open, high, low, close, volume *float64
		if err := rows.Scan(&date, &open, &high, &low, &close, &volume); err != nil {
			return nil, fmt.Errorf("scan bar %s: %w", ticker, err)
		}

		bar := contracts.Bar{
			Ticker: code,
			Date:   date.UTC(),
			Open:   fromPtr(open),
			High:   fromPtr(high),
			Low:    fromPtr(low),
			Close:  fromPtr(close),
			Volume: fromPtr(volume),
		}
		if !bar.Usable() {
			return nil, fmt.Errorf("%s %s: %w", ticker, date.Format("2006-01-02"), ErrMalformedBar)
		}
		bars = append(bars, bar)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate bars %s: %w", ticker, rows.Err())
	}

	return bars, nil
}

// SaveBars upserts bars in a single transaction
func (s *PostgresSource) SaveBars(ctx context.Context, bars []contracts.Bar) error {
	if len(bars) == 0 {
		return nil
	}

	query := `
		INSERT INTO data.daily_prices (
			stock_code, trade_date, open_price, high_price, low_price,
			close_price, volume, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		ON CONFLICT (stock_code, trade_date) DO UPDATE SET
			open_price = EXCLUDED.open_price,
			high_price = EXCLUDED.high_price,
			low_price = EXCLUDED.low_price,
			close_price = EXCLUDED.close_price,
			volume = EXCLUDED.volume,
			updated_at = NOW()
	`

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, b := range bars {
		_, err := tx.Exec(ctx, query,
			b.Ticker, b.Date, toPtr(b.Open), toPtr(b.High), toPtr(b.Low),
			toPtr(b.Close), toPtr(b.Volume),
		)
		if err != nil {
			return fmt.Errorf("insert bar for %s: %w", b.Ticker, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

func fromPtr(v *float64) nullable.Float {
	if v == nil {
		return nullable.None
	}
	return nullable.Some(*v)
}

func toPtr(f nullable.Float) *float64 {
	if !f.Valid {
		return nil
	}
	v := f.V
	return &v
}
