package contracts

import (
	"time"

	"github.com/wonny/aegis-ashare/pkg/nullable"
)

// SignalRow is the per-(ticker, date) record the engine consumes
// ⭐ SSOT: S2 → S3 → S4 시그널 전달 (생성 후 불변)
type SignalRow struct {
	Ticker string         `json:"ticker"`
	Date   time.Time      `json:"date"`
	Open   nullable.Float `json:"open"`
	Close  nullable.Float `json:"close"`

	// Rank is the MA20 slope angle in degrees; higher ranks first within a day
	Rank nullable.Float `json:"rank"`

	// BaseBuy is the main-wave entry predicate without the slope threshold
	BaseBuy bool `json:"base_buy"`
	Sell    bool `json:"sell"`
}

// BuyEligible applies the slope threshold on top of BaseBuy
func (r SignalRow) BuyEligible(threshold float64) bool {
	return r.BaseBuy && r.Rank.GtConst(threshold).IsTrue()
}
