package contracts

import (
	"fmt"
	"math"
	"time"
)

// ValidationError 검증 실패 (실행 전 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// StrategyParams is one engine configuration.
// TakeProfit and StopLoss are fractions (0.20 = 20%).
type StrategyParams struct {
	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`
	TakeProfit     float64   `json:"take_profit"`
	StopLoss       float64   `json:"stop_loss"`
	MaxHoldDays    int       `json:"max_hold_days"`
	SlopeThreshold float64   `json:"slope_threshold"`
}

// Validate rejects out-of-range parameters before any run starts
func (p StrategyParams) Validate() error {
	if p.StartDate.IsZero() {
		return ValidationError{"start_date", "required"}
	}
	if p.EndDate.IsZero() {
		return ValidationError{"end_date", "required"}
	}
	if p.EndDate.Before(p.StartDate) {
		return ValidationError{"end_date", "must not be before start_date"}
	}
	if !isFinite(p.TakeProfit) || p.TakeProfit <= 0 {
		return ValidationError{"take_profit", fmt.Sprintf("must be > 0, got %v", p.TakeProfit)}
	}
	if !isFinite(p.StopLoss) || p.StopLoss <= 0 || p.StopLoss > 1 {
		return ValidationError{"stop_loss", fmt.Sprintf("must be in (0, 1], got %v", p.StopLoss)}
	}
	if p.MaxHoldDays < 1 {
		return ValidationError{"max_hold_days", fmt.Sprintf("must be >= 1, got %d", p.MaxHoldDays)}
	}
	// 각도는 (-90, 90) 범위
	if !isFinite(p.SlopeThreshold) || p.SlopeThreshold <= -90 || p.SlopeThreshold >= 90 {
		return ValidationError{"slope_threshold", fmt.Sprintf("must be in (-90, 90), got %v", p.SlopeThreshold)}
	}
	return nil
}

// Label is a compact human-readable form used in logs and tables
func (p StrategyParams) Label() string {
	return fmt.Sprintf("tp=%.0f%% sl=%.0f%% days=%d slope=%g",
		p.TakeProfit*100, p.StopLoss*100, p.MaxHoldDays, p.SlopeThreshold)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
