package audit

import (
	"math"

	"github.com/wonny/aegis-ashare/internal/backtest"
	"github.com/wonny/aegis-ashare/internal/contracts"
	"github.com/wonny/aegis-ashare/pkg/logger"
)

const (
	tradingDays  = 252.0
	riskFreeRate = 0.02 // 무위험 수익률 (연)
)

// Analyzer computes risk/return statistics of a backtest run
// ⭐ SSOT: 성과 분석 로직은 여기서만
type Analyzer struct {
	logger *logger.Logger
}

// NewAnalyzer creates a new performance analyzer
func NewAnalyzer(log *logger.Logger) *Analyzer {
	return &Analyzer{logger: log.WithField("module", "audit")}
}

// PerformanceReport represents performance analysis report
type PerformanceReport struct {
	Days int `json:"days"`

	// 수익률
	TotalReturn  float64 `json:"total_return"`
	AnnualReturn float64 `json:"annual_return"`

	// 리스크 지표
	Volatility  float64 `json:"volatility"`
	Sharpe      float64 `json:"sharpe"`
	Sortino     float64 `json:"sortino"`
	MaxDrawdown float64 `json:"max_drawdown"`

	// 트레이딩 지표 (완료된 매도 기준)
	Trades       int     `json:"trades"`
	WinRate      float64 `json:"win_rate"`
	AvgWin       float64 `json:"avg_win"`
	AvgLoss      float64 `json:"avg_loss"`
	ProfitFactor float64 `json:"profit_factor"`
}

// Analyze derives daily returns from the equity curve and trade stats from the ledger
func (a *Analyzer) Analyze(result *backtest.Result) *PerformanceReport {
	report := &PerformanceReport{}

	dailyReturns := dailyReturns(result.Summary.InitialCapital, result.EquityCurve)
	report.Days = len(dailyReturns)
	if len(dailyReturns) > 0 {
		report.TotalReturn = calculateTotalReturn(dailyReturns)
		report.AnnualReturn = annualize(report.TotalReturn, len(dailyReturns))
		report.Volatility = calculateVolatility(dailyReturns)
		report.Sharpe = calculateSharpe(report.AnnualReturn, report.Volatility)
		report.Sortino = calculateSortino(dailyReturns)
		report.MaxDrawdown = calculateMaxDrawdown(dailyReturns)
	}

	pnls := closedPnL(result.Ledger)
	report.Trades = len(pnls)
	report.WinRate = calculateWinRate(pnls)
	report.AvgWin, report.AvgLoss = calculateAvgWinLoss(pnls)
	report.ProfitFactor = calculateProfitFactor(pnls)

	a.logger.WithFields(map[string]interface{}{
		"total_return": report.TotalReturn,
		"sharpe":       report.Sharpe,
		"max_drawdown": report.MaxDrawdown,
		"win_rate":     report.WinRate,
	}).Debug("Performance analysis completed")

	return report
}

// dailyReturns converts the equity curve to simple returns, starting from initial capital
func dailyReturns(initial float64, curve []backtest.EquityPoint) []float64 {
	if initial <= 0 {
		return nil
	}
	out := make([]float64, 0, len(curve))
	prev := initial
	for _, p := range curve {
		out = append(out, p.Equity/prev-1)
		prev = p.Equity
	}
	return out
}

// closedPnL collects the realized PnL of every SELL
func closedPnL(ledger []contracts.LedgerEntry) []float64 {
	out := make([]float64, 0)
	for _, e := range ledger {
		if e.Action == contracts.ActionSell {
			out = append(out, e.PnLAmount.InexactFloat64())
		}
	}
	return out
}

// calculateTotalReturn calculates cumulative return
func calculateTotalReturn(dailyReturns []float64) float64 {
	cumReturn := 1.0
	for _, r := range dailyReturns {
		cumReturn *= (1.0 + r)
	}
	return cumReturn - 1.0
}

// annualize converts return to annualized return
func annualize(totalReturn float64, days int) float64 {
	if days == 0 {
		return 0
	}
	return math.Pow(1.0+totalReturn, tradingDays/float64(days)) - 1.0
}

// calculateVolatility calculates annualized volatility (sample std)
func calculateVolatility(dailyReturns []float64) float64 {
	if len(dailyReturns) < 2 {
		return 0
	}

	var sum float64
	for _, r := range dailyReturns {
		sum += r
	}
	mean := sum / float64(len(dailyReturns))

	var variance float64
	for _, r := range dailyReturns {
		diff := r - mean
		variance += diff * diff
	}
	variance /= float64(len(dailyReturns) - 1)

	return math.Sqrt(variance) * math.Sqrt(tradingDays)
}

func calculateSharpe(annualReturn, volatility float64) float64 {
	if volatility == 0 {
		return 0
	}
	return (annualReturn - riskFreeRate) / volatility
}

// calculateSortino uses downside deviation of negative days only
func calculateSortino(dailyReturns []float64) float64 {
	var sumSquaredNegative float64
	var countNegative int
	for _, r := range dailyReturns {
		if r < 0 {
			sumSquaredNegative += r * r
			countNegative++
		}
	}
	if countNegative == 0 {
		return 0
	}

	downsideVol := math.Sqrt(sumSquaredNegative/float64(countNegative)) * math.Sqrt(tradingDays)
	if downsideVol == 0 {
		return 0
	}

	annualReturn := annualize(calculateTotalReturn(dailyReturns), len(dailyReturns))
	return (annualReturn - riskFreeRate) / downsideVol
}

// calculateMaxDrawdown returns the worst peak-to-trough decline as a negative fraction
func calculateMaxDrawdown(dailyReturns []float64) float64 {
	cumValue := 1.0
	peak := 1.0
	maxDD := 0.0

	for _, r := range dailyReturns {
		cumValue *= (1.0 + r)
		if cumValue > peak {
			peak = cumValue
		}
		dd := (cumValue - peak) / peak
		if dd < maxDD {
			maxDD = dd
		}
	}
	return maxDD
}

func calculateWinRate(pnls []float64) float64 {
	if len(pnls) == 0 {
		return 0
	}
	wins := 0
	for _, p := range pnls {
		if p > 0 {
			wins++
		}
	}
	return float64(wins) / float64(len(pnls))
}

func calculateAvgWinLoss(pnls []float64) (float64, float64) {
	var sumWin, sumLoss float64
	var countWin, countLoss int

	for _, p := range pnls {
		if p > 0 {
			sumWin += p
			countWin++
		} else if p < 0 {
			sumLoss += p
			countLoss++
		}
	}

	avgWin := 0.0
	if countWin > 0 {
		avgWin = sumWin / float64(countWin)
	}
	avgLoss := 0.0
	if countLoss > 0 {
		avgLoss = sumLoss / float64(countLoss)
	}
	return avgWin, avgLoss
}

// calculateProfitFactor is gross win / gross loss; 0 when there is no loss
func calculateProfitFactor(pnls []float64) float64 {
	var totalWin, totalLoss float64
	for _, p := range pnls {
		if p > 0 {
			totalWin += p
		} else if p < 0 {
			totalLoss += math.Abs(p)
		}
	}
	if totalLoss == 0 {
		return 0
	}
	return totalWin / totalLoss
}

// DailyReturns exposes the equity curve as simple daily returns
func DailyReturns(result *backtest.Result) []float64 {
	return dailyReturns(result.Summary.InitialCapital, result.EquityCurve)
}
