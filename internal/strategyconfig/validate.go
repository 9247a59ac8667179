package strategyconfig

import (
	"errors"
	"fmt"

	"github.com/wonny/aegis-ashare/internal/contracts"
	"github.com/wonny/aegis-ashare/internal/indicator"
	"github.com/wonny/aegis-ashare/internal/s2_signals"
)

// ValidationError 검증 실패 (프로그램 중단)
type ValidationError = contracts.ValidationError

// Warning 권장 위반 (경고만)
type Warning struct {
	Code    string
	Message string
}

// Validate checks all required constraints
// 실패 시 error 반환 (프로그램 중단)
func Validate(cfg *Config) error {
	// === Meta ===
	if cfg.Meta.StrategyID == "" {
		return ValidationError{Field: "meta.strategy_id", Message: "required"}
	}

	// === Universe ===
	if cfg.Universe.Lots.Default < 1 {
		return ValidationError{Field: "universe.lots.default", Message: "must be >= 1"}
	}
	for prefix, size := range cfg.Universe.Lots.Prefixes {
		if err := validateDigits(prefix); err != nil {
			return ValidationError{Field: fmt.Sprintf("universe.lots.prefixes[%s]", prefix), Message: err.Error()}
		}
		if size < 1 {
			return ValidationError{Field: fmt.Sprintf("universe.lots.prefixes[%s]", prefix), Message: "must be >= 1"}
		}
	}
	for i, prefix := range cfg.Universe.ExcludePrefixes {
		if err := validateDigits(prefix); err != nil {
			return ValidationError{Field: fmt.Sprintf("universe.exclude_prefixes[%d]", i), Message: err.Error()}
		}
	}

	// === Signals ===
	if _, ok := indicator.ParseMode(cfg.Signals.WindowMode); !ok {
		return ValidationError{Field: "signals.window_mode", Message: "must be strict or partial"}
	}
	if _, ok := s2_signals.ParseVariant(cfg.Signals.DeepBottomVariant); !ok {
		return ValidationError{Field: "signals.deep_bottom_variant", Message: "must be classic or tdx"}
	}
	if _, ok := s2_signals.ParseVariant(cfg.Signals.PullbackVariant); !ok {
		return ValidationError{Field: "signals.pullback_variant", Message: "must be classic or tdx"}
	}
	if err := validateAngle(cfg.Signals.ReportThreshold, "signals.report_threshold"); err != nil {
		return err
	}

	// === Backtest ===
	if cfg.Backtest.PositionCapPct <= 0 {
		return ValidationError{Field: "backtest.position_cap_pct", Message: "must be > 0"}
	}
	if err := validatePctRange(cfg.Backtest.PositionCapPct, "backtest.position_cap_pct"); err != nil {
		return err
	}

	// === Sweep ===
	for i, tp := range cfg.Sweep.TakeProfits {
		if tp <= 0 {
			return ValidationError{Field: fmt.Sprintf("sweep.take_profits[%d]", i), Message: "must be > 0"}
		}
	}
	for i, sl := range cfg.Sweep.StopLosses {
		if sl <= 0 {
			return ValidationError{Field: fmt.Sprintf("sweep.stop_losses[%d]", i), Message: "must be > 0"}
		}
		if err := validatePctRange(sl, fmt.Sprintf("sweep.stop_losses[%d]", i)); err != nil {
			return err
		}
	}
	for i, d := range cfg.Sweep.MaxHoldDays {
		if d < 1 {
			return ValidationError{Field: fmt.Sprintf("sweep.max_hold_days[%d]", i), Message: "must be >= 1"}
		}
	}
	for i, s := range cfg.Sweep.Slopes {
		if err := validateAngle(s, fmt.Sprintf("sweep.slopes[%d]", i)); err != nil {
			return err
		}
	}

	return nil
}

// Warn checks recommended constraints (non-fatal)
func Warn(cfg *Config) []Warning {
	var warnings []Warning

	// 단일 종목 집중 경고
	if cfg.Backtest.PositionCapPct > 0.25 {
		warnings = append(warnings, Warning{
			Code:    "HIGH_CONCENTRATION",
			Message: "종목당 비중 > 25%: 단일 종목 리스크 높음",
		})
	}

	// 부분 윈도우는 짧은 이력에서도 신호 발생
	mode, _ := indicator.ParseMode(cfg.Signals.WindowMode)
	if mode == indicator.Partial {
		warnings = append(warnings, Warning{
			Code:    "PARTIAL_WINDOWS",
			Message: "window_mode=partial: 이동평균이 이력 부족 구간에서도 정의됨",
		})
	}

	// 과도한 그리드 경고
	if cfg.Sweep.Size() > 500 {
		warnings = append(warnings, Warning{
			Code:    "LARGE_GRID",
			Message: fmt.Sprintf("그리드 조합 %d개: 실행 시간 증가 우려", cfg.Sweep.Size()),
		})
	}

	return warnings
}

// === Helper Functions ===

func validateDigits(s string) error {
	if s == "" {
		return errors.New("must not be empty")
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return errors.New("must be digits only")
		}
	}
	return nil
}

func validateAngle(v float64, field string) error {
	if v <= -90 || v >= 90 {
		return ValidationError{Field: field, Message: "must be in (-90, 90)"}
	}
	return nil
}

// validatePctRange는 퍼센트 값이 0~1 범위인지 검증
func validatePctRange(pct float64, field string) error {
	if pct < 0 || pct > 1 {
		return ValidationError{Field: field, Message: "must be in range [0, 1]"}
	}
	return nil
}
