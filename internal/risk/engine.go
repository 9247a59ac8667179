package risk

import (
	"errors"
	"fmt"

	"github.com/wonny/aegis-ashare/pkg/logger"
)

// Engine checks a backtest equity curve against risk limits
// ⭐ SSOT: 수익률 시계열 조립은 상위 레이어(audit), 여기는 순수 계산만
type Engine struct {
	config Config
	limits Limits
	logger *logger.Logger
}

// NewEngine creates a risk engine
func NewEngine(config Config, limits Limits, log *logger.Logger) *Engine {
	return &Engine{
		config: config,
		limits: limits,
		logger: log.WithField("module", "risk"),
	}
}

// Assess computes daily VaR/CVaR, the bootstrap simulation and limit violations.
// maxDrawdown is a positive fraction (0.10 = 10%).
func (e *Engine) Assess(daily []float64, maxDrawdown float64) (*Report, error) {
	r := &Report{
		Daily95:    CalculateVaR(daily, 0.95),
		Daily99:    CalculateVaR(daily, 0.99),
		Passed:     true,
		Violations: make([]string, 0),
	}

	sim, err := NewSimulator(e.config).Simulate(daily)
	switch {
	case errors.Is(err, ErrInsufficientData):
		e.logger.WithField("samples", len(daily)).Debug("Skipping simulation: too few daily returns")
	case err != nil:
		return nil, err
	default:
		r.Simulation = sim
	}

	if r.Daily95.VaR > e.limits.MaxVaR95 {
		r.violate(fmt.Sprintf("VaR95 %.4f exceeds limit %.4f", r.Daily95.VaR, e.limits.MaxVaR95))
	}
	if r.Daily95.CVaR > e.limits.MaxCVaR95 {
		r.violate(fmt.Sprintf("CVaR95 %.4f exceeds limit %.4f", r.Daily95.CVaR, e.limits.MaxCVaR95))
	}
	if maxDrawdown > e.limits.MaxDrawdown {
		r.violate(fmt.Sprintf("max drawdown %.4f exceeds limit %.4f", maxDrawdown, e.limits.MaxDrawdown))
	}

	e.logger.WithFields(map[string]interface{}{
		"var_95":     r.Daily95.VaR,
		"cvar_95":    r.Daily95.CVaR,
		"passed":     r.Passed,
		"violations": len(r.Violations),
	}).Debug("Risk assessment completed")

	return r, nil
}

func (r *Report) violate(msg string) {
	r.Passed = false
	r.Violations = append(r.Violations, msg)
}
