package backtest

import (
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/wonny/aegis-ashare/internal/contracts"
)

// Position represents an open holding. At most one per ticker.
type Position struct {
	Ticker     string
	Shares     int64
	EntryPrice float64
	EntryDate  time.Time
	DaysHeld   int
	CostBasis  float64
}

// Portfolio is the cash and holdings state of one engine run
// ⭐ SSOT: 백테스팅 포트폴리오 상태는 여기서만 (실행마다 새로 생성)
type Portfolio struct {
	initial   float64
	cash      float64
	positions map[string]*Position
	lastClose map[string]float64
	ledger    []contracts.LedgerEntry

	// Statistics
	sells int
	wins  int
}

// NewPortfolio creates a portfolio holding only cash
func NewPortfolio(capital float64) *Portfolio {
	return &Portfolio{
		initial:   capital,
		cash:      capital,
		positions: make(map[string]*Position),
		lastClose: make(map[string]float64),
		ledger:    make([]contracts.LedgerEntry, 0),
	}
}

// Cash returns uninvested cash
func (p *Portfolio) Cash() float64 {
	return p.cash
}

// Position returns the open position for ticker, if any
func (p *Portfolio) Position(ticker string) (*Position, bool) {
	pos, ok := p.positions[ticker]
	return pos, ok
}

// MarkClose records the latest defined close of a ticker
func (p *Portfolio) MarkClose(ticker string, close float64) {
	p.lastClose[ticker] = close
}

// Buy opens a position; the caller guarantees shares*price <= cash
func (p *Portfolio) Buy(date time.Time, ticker string, shares int64, price float64) contracts.LedgerEntry {
	cost := float64(shares) * price
	p.cash -= cost
	p.positions[ticker] = &Position{
		Ticker:     ticker,
		Shares:     shares,
		EntryPrice: price,
		EntryDate:  date,
		CostBasis:  cost,
	}

	entry := contracts.LedgerEntry{
		Date:          date,
		Ticker:        ticker,
		Action:        contracts.ActionBuy,
		Shares:        shares,
		Price:         contracts.Money(price),
		Amount:        contracts.Money(cost),
		PnLAmount:     contracts.Money(0),
		PnLPercent:    contracts.Money(0),
		Reason:        contracts.ReasonEntry,
		CashRemaining: contracts.Money(p.cash),
	}
	p.ledger = append(p.ledger, entry)
	return entry
}

// Sell closes the whole position at price
func (p *Portfolio) Sell(date time.Time, ticker string, price float64, reason contracts.Reason) (contracts.LedgerEntry, bool) {
	pos, exists := p.positions[ticker]
	if !exists {
		return contracts.LedgerEntry{}, false
	}

	// Calculate P&L
	proceeds := float64(pos.Shares) * price
	pnl := proceeds - pos.CostBasis
	pnlPct := (price/pos.EntryPrice - 1) * 100

	p.cash += proceeds
	delete(p.positions, ticker)

	// Update statistics (반올림 전 수익률 기준)
	p.sells++
	if pnlPct > 0 {
		p.wins++
	}

	entry := contracts.LedgerEntry{
		Date:          date,
		Ticker:        ticker,
		Action:        contracts.ActionSell,
		Shares:        pos.Shares,
		Price:         contracts.Money(price),
		Amount:        contracts.Money(proceeds),
		PnLAmount:     contracts.Money(pnl),
		PnLPercent:    contracts.Money(pnlPct),
		Reason:        reason,
		CashRemaining: contracts.Money(p.cash),
	}
	p.ledger = append(p.ledger, entry)
	return entry, true
}

// Equity returns cash plus holdings valued at their last recorded close.
// Tickers are summed in sorted order so repeated runs agree bit for bit.
func (p *Portfolio) Equity() float64 {
	tickers := lo.Keys(p.positions)
	sort.Strings(tickers)

	value := p.cash
	for _, ticker := range tickers {
		pos := p.positions[ticker]
		price, ok := p.lastClose[ticker]
		if !ok {
			price = pos.EntryPrice
		}
		value += float64(pos.Shares) * price
	}
	return value
}

// Ledger returns the append-only fill log
func (p *Portfolio) Ledger() []contracts.LedgerEntry {
	return p.ledger
}

// OpenPositions returns the number of open positions
func (p *Portfolio) OpenPositions() int {
	return len(p.positions)
}

// WinRatePct is the share of completed sells with a positive return
func (p *Portfolio) WinRatePct() float64 {
	if p.sells == 0 {
		return 0
	}
	return float64(p.wins) / float64(p.sells) * 100
}
