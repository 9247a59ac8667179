package backtest

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/wonny/aegis-ashare/internal/contracts"
	"github.com/wonny/aegis-ashare/internal/timeline"
	"github.com/wonny/aegis-ashare/pkg/logger"
)

// DefaultPositionCap is the per-ticker budget as a fraction of initial capital
const DefaultPositionCap = 0.20

// LotSizer returns the board lot of a ticker
type LotSizer interface {
	LotSize(ticker string) int64
}

// Engine runs event-driven backtests over a timeline
// ⭐ SSOT: 백테스팅 실행은 여기서만
type Engine struct {
	config Config
	logger *logger.Logger
}

// Config holds backtest configuration shared by every run
type Config struct {
	InitialCapital float64
	PositionCap    float64 // 종목당 최대 비중 (초기 자본 대비)
	Lots           LotSizer
}

// Result holds backtest results
type Result struct {
	Summary     contracts.RunSummary
	Ledger      []contracts.LedgerEntry
	EquityCurve []EquityPoint
	Duration    time.Duration
}

// EquityPoint represents a point in the equity curve
type EquityPoint struct {
	Date   time.Time
	Equity float64
	Return float64
}

// NewEngine creates a new backtest engine
func NewEngine(config Config, log *logger.Logger) *Engine {
	if config.PositionCap <= 0 {
		config.PositionCap = DefaultPositionCap
	}
	return &Engine{
		config: config,
		logger: log.WithFields(map[string]interface{}{
			"module": "backtest",
			"stage":  contracts.StageBacktest.ShortName(),
		}),
	}
}

// Run replays the timeline once on a fresh portfolio
func (e *Engine) Run(ctx context.Context, tl *timeline.Timeline, params contracts.StrategyParams) (*Result, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if e.config.InitialCapital <= 0 || math.IsNaN(e.config.InitialCapital) || math.IsInf(e.config.InitialCapital, 0) {
		return nil, contracts.ValidationError{Field: "initial_capital", Message: "must be > 0"}
	}
	if e.config.Lots == nil {
		return nil, fmt.Errorf("backtest: lot sizer not configured")
	}

	startTime := time.Now()
	p := NewPortfolio(e.config.InitialCapital)
	budget := e.config.InitialCapital * e.config.PositionCap

	result := &Result{
		EquityCurve: make([]EquityPoint, 0),
	}

	var currentDate time.Time
	for _, row := range tl.Rows {
		if row.Date.Before(params.StartDate) || row.Date.After(params.EndDate) {
			continue
		}

		// 날짜 경계: 전일 평가액 기록 + 취소 확인
		if !row.Date.Equal(currentDate) {
			if !currentDate.IsZero() {
				result.EquityCurve = append(result.EquityCurve, e.equityPoint(currentDate, p))
			}
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			currentDate = row.Date
		}

		e.step(p, row, params, budget)
	}
	if !currentDate.IsZero() {
		result.EquityCurve = append(result.EquityCurve, e.equityPoint(currentDate, p))
	}

	finalValue := p.Equity()
	result.Ledger = p.Ledger()
	result.Duration = time.Since(startTime)
	result.Summary = contracts.RunSummary{
		StartDate:      params.StartDate,
		EndDate:        params.EndDate,
		Params:         params,
		InitialCapital: e.config.InitialCapital,
		FinalValue:     finalValue,
		PnL:            finalValue - e.config.InitialCapital,
		ReturnPct:      (finalValue/e.config.InitialCapital - 1) * 100,
		TradeCount:     p.sells,
		WinRatePct:     p.WinRatePct(),
		OpenPositions:  p.OpenPositions(),
		MaxDrawdownPct: calculateMaxDrawdown(result.EquityCurve) * 100,
	}

	e.logger.WithFields(map[string]interface{}{
		"params":       params.Label(),
		"duration":     result.Duration.Seconds(),
		"trades":       result.Summary.TradeCount,
		"total_return": fmt.Sprintf("%.2f%%", result.Summary.ReturnPct),
		"win_rate":     fmt.Sprintf("%.2f%%", result.Summary.WinRatePct),
		"max_drawdown": fmt.Sprintf("%.2f%%", result.Summary.MaxDrawdownPct),
	}).Debug("Backtest completed")

	return result, nil
}

// step applies bookkeeping, exits and entry for one row
func (e *Engine) step(p *Portfolio, row contracts.SignalRow, params contracts.StrategyParams, budget float64) {
	// 1. 기록
	if row.Close.Valid {
		p.MarkClose(row.Ticker, row.Close.V)
	}
	pos, held := p.Position(row.Ticker)
	if held {
		pos.DaysHeld++
	}

	// 2. 청산 (우선순위: 익절 → 손절 → 기간 만료 → 매도 신호)
	if held {
		if price, reason, ok := exitDecision(pos, row, params); ok {
			p.Sell(row.Date, row.Ticker, price, reason)
			held = false
		}
	}

	// 3. 진입 (같은 행에서 청산 후 재진입 허용)
	if held || !row.BuyEligible(params.SlopeThreshold) {
		return
	}
	if !row.Close.Valid || row.Close.V <= 0 {
		return
	}

	shares := sizeOrder(budget, p.Cash(), row.Close.V, e.config.Lots.LotSize(row.Ticker))
	if shares == 0 {
		return // 사이징 거부: 원장 기록 없음
	}
	p.Buy(row.Date, row.Ticker, shares, row.Close.V)
}

// exitDecision returns the fill price and reason of the first matching exit
func exitDecision(pos *Position, row contracts.SignalRow, params contracts.StrategyParams) (float64, contracts.Reason, bool) {
	if row.Open.Valid && row.Open.V != 0 {
		ratio := row.Open.V/pos.EntryPrice - 1
		if ratio >= params.TakeProfit {
			return row.Open.V, contracts.ReasonTakeProfit, true
		}
		if ratio <= -params.StopLoss {
			return row.Open.V, contracts.ReasonStopLoss, true
		}
	}

	// 종가 미정의 시 다음 행까지 대기
	if !row.Close.Valid {
		return 0, "", false
	}
	if pos.DaysHeld >= params.MaxHoldDays {
		return row.Close.V, contracts.ReasonTimeout, true
	}
	if row.Sell {
		return row.Close.V, contracts.ReasonSignalExit, true
	}
	return 0, "", false
}

// sizeOrder returns whole-lot shares affordable within min(budget, cash)
func sizeOrder(budget, cash, price float64, lot int64) int64 {
	if lot <= 0 {
		return 0
	}
	shares := int64(math.Floor(math.Min(budget, cash) / price))
	shares = (shares / lot) * lot
	// 부동소수 오차로 현금 초과 시 한 단위 축소
	for shares > 0 && float64(shares)*price > cash {
		shares -= lot
	}
	if shares < lot {
		return 0
	}
	return shares
}

func (e *Engine) equityPoint(date time.Time, p *Portfolio) EquityPoint {
	equity := p.Equity()
	return EquityPoint{
		Date:   date,
		Equity: equity,
		Return: equity/e.config.InitialCapital - 1,
	}
}

// calculateMaxDrawdown calculates maximum drawdown from equity curve
func calculateMaxDrawdown(curve []EquityPoint) float64 {
	if len(curve) == 0 {
		return 0
	}

	maxDrawdown := 0.0
	peak := curve[0].Equity

	for _, point := range curve {
		if point.Equity > peak {
			peak = point.Equity
		}

		if peak <= 0 {
			continue
		}
		drawdown := (peak - point.Equity) / peak
		if drawdown > maxDrawdown {
			maxDrawdown = drawdown
		}
	}

	return maxDrawdown
}
