package contracts

import (
	"strings"
	"time"

	"github.com/wonny/aegis-ashare/pkg/nullable"
)

// Bar is one daily OHLCV observation
// ⭐ SSOT: S0 → S2 일봉 데이터 전달
type Bar struct {
	Ticker string         `json:"ticker"`
	Date   time.Time      `json:"date"`
	Open   nullable.Float `json:"open"`
	High   nullable.Float `json:"high"`
	Low    nullable.Float `json:"low"`
	Close  nullable.Float `json:"close"`
	Volume nullable.Float `json:"volume"`
}

// Usable reports whether the bar carries a date and at least one price.
// Individual malformed cells are already undefined at this point.
func (b Bar) Usable() bool {
	if b.Date.IsZero() {
		return false
	}
	return b.Open.Valid || b.High.Valid || b.Low.Valid || b.Close.Valid
}

// NormalizeTicker left-pads numeric codes to six digits ("1" → "000001")
func NormalizeTicker(code string) string {
	code = strings.TrimSpace(code)
	if code == "" || len(code) >= 6 {
		return code
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return code
		}
	}
	return strings.Repeat("0", 6-len(code)) + code
}
