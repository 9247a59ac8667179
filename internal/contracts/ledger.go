package contracts

import (
	"time"

	"github.com/shopspring/decimal"
)

// Action is the ledger side
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
)

// Reason explains why a ledger entry was written
type Reason string

const (
	ReasonEntry      Reason = "entry"
	ReasonTakeProfit Reason = "take-profit"
	ReasonStopLoss   Reason = "stop-loss"
	ReasonTimeout    Reason = "timeout"
	ReasonSignalExit Reason = "signal-exit"
)

// LedgerEntry is one fill. Money columns are rounded to 2 decimal places.
// PnL fields are zero on BUY entries.
type LedgerEntry struct {
	Date          time.Time       `json:"date"`
	Ticker        string          `json:"ticker"`
	Action        Action          `json:"action"`
	Shares        int64           `json:"shares"`
	Price         decimal.Decimal `json:"price"`
	Amount        decimal.Decimal `json:"amount"`
	PnLAmount     decimal.Decimal `json:"pnl_amount"`
	PnLPercent    decimal.Decimal `json:"pnl_percent"`
	Reason        Reason          `json:"reason"`
	CashRemaining decimal.Decimal `json:"cash_remaining"`
}

// Money rounds a float to the ledger's 2-place precision
func Money(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}

// RunSummary aggregates one engine run
// ⭐ SSOT: S4 → S5 백테스트 결과 요약
type RunSummary struct {
	StartDate      time.Time      `json:"start_date"`
	EndDate        time.Time      `json:"end_date"`
	Params         StrategyParams `json:"params"`
	InitialCapital float64        `json:"initial_capital"`
	FinalValue     float64        `json:"final_value"`
	PnL            float64        `json:"pnl"`
	ReturnPct      float64        `json:"return_pct"`
	TradeCount     int            `json:"trade_count"` // completed sells
	WinRatePct     float64        `json:"win_rate_pct"`
	OpenPositions  int            `json:"open_positions"`
	MaxDrawdownPct float64        `json:"max_drawdown_pct"`
}
