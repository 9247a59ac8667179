package risk

// VaRResult holds one confidence level
// ⭐ SSOT: VaR/CVaR는 손실을 양수로 표현 (VaR=0.05 → 5% 손실 가능)
type VaRResult struct {
	Confidence float64 `json:"confidence"` // 신뢰수준 (0.95, 0.99)
	VaR        float64 `json:"var"`
	CVaR       float64 `json:"cvar"` // Expected Shortfall
}

// Config controls the bootstrap simulation
type Config struct {
	NumSimulations int   `json:"num_simulations"`
	HoldingPeriod  int   `json:"holding_period"` // 거래일
	Seed           int64 `json:"seed"`           // 0 = 랜덤
	MinSamples     int   `json:"min_samples"`    // fail-closed
}

// DefaultConfig simulates 10,000 five-day paths and needs 30 daily returns
func DefaultConfig() Config {
	return Config{
		NumSimulations: 10000,
		HoldingPeriod:  5,
		MinSamples:     30,
	}
}

// Limits are the thresholds a backtest's equity curve is checked against
type Limits struct {
	MaxVaR95    float64 `json:"max_var_95"`
	MaxCVaR95   float64 `json:"max_cvar_95"`
	MaxDrawdown float64 `json:"max_drawdown"` // fraction, 0.15 = 15%
}

// DefaultLimits returns 5% VaR, 7% CVaR and 15% drawdown
func DefaultLimits() Limits {
	return Limits{
		MaxVaR95:    0.05,
		MaxCVaR95:   0.07,
		MaxDrawdown: 0.15,
	}
}

// SimulationResult summarises simulated holding-period returns
type SimulationResult struct {
	Config      Config          `json:"config"`
	Samples     int             `json:"samples"` // 입력 일수
	MeanReturn  float64         `json:"mean_return"`
	StdDev      float64         `json:"std_dev"`
	VaR95       VaRResult       `json:"var_95"`
	VaR99       VaRResult       `json:"var_99"`
	Percentiles map[int]float64 `json:"percentiles"`
}

// Report is the risk view of one backtest run
type Report struct {
	Daily95    VaRResult         `json:"daily_95"`
	Daily99    VaRResult         `json:"daily_99"`
	Simulation *SimulationResult `json:"simulation,omitempty"` // 샘플 부족 시 nil
	Passed     bool              `json:"passed"`
	Violations []string          `json:"violations"`
}
