package contracts

import "context"

// BarSource provides per-ticker daily bars in ascending date order
// ⭐ SSOT: S0 일봉 공급 인터페이스 (CSV, PostgreSQL)
type BarSource interface {
	ListTickers(ctx context.Context) ([]string, error)
	LoadBars(ctx context.Context, ticker string) ([]Bar, error)
}
