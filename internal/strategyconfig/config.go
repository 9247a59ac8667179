package strategyconfig

import "time"

// Config는 A주 시그널/백테스트 전략의 전체 설정
type Config struct {
	Meta     Meta     `yaml:"meta" json:"meta"`
	Universe Universe `yaml:"universe" json:"universe"`
	Signals  Signals  `yaml:"signals" json:"signals"`
	Backtest Backtest `yaml:"backtest" json:"backtest"`
	Sweep    Sweep    `yaml:"sweep" json:"sweep"`
}

// Meta 메타 정보
type Meta struct {
	StrategyID string `yaml:"strategy_id" json:"strategy_id"`
	Version    string `yaml:"version" json:"version"`
	Timezone   string `yaml:"timezone" json:"timezone"`
}

// Universe S1: 후보 종목 풀
type Universe struct {
	ExcludeST       bool     `yaml:"exclude_st" json:"exclude_st"`
	ExcludePrefixes []string `yaml:"exclude_prefixes" json:"exclude_prefixes"`
	RestrictToList  bool     `yaml:"restrict_to_list" json:"restrict_to_list"`
	Lots            Lots     `yaml:"lots" json:"lots"`
}

// Lots 매매 단위 (접두사 → 주수)
type Lots struct {
	Default  int64            `yaml:"default" json:"default"`
	Prefixes map[string]int64 `yaml:"prefixes" json:"prefixes"` // json.Marshal은 map 키를 정렬
}

// Signals S2: 시그널 계산 방식
type Signals struct {
	WindowMode        string  `yaml:"window_mode" json:"window_mode"`                 // strict | partial
	DeepBottomVariant string  `yaml:"deep_bottom_variant" json:"deep_bottom_variant"` // classic | tdx
	PullbackVariant   string  `yaml:"pullback_variant" json:"pullback_variant"`       // classic | tdx
	ReportThreshold   float64 `yaml:"report_threshold" json:"report_threshold"`       // 🔥 기울기 (도)
}

// Backtest S4: 포지션 사이징
type Backtest struct {
	PositionCapPct float64 `yaml:"position_cap_pct" json:"position_cap_pct"` // 초기 자본 대비 (0.20)
}

// Sweep 그리드 탐색 기본값 (CLI 플래그가 우선)
type Sweep struct {
	TakeProfits []float64 `yaml:"take_profits" json:"take_profits"`
	StopLosses  []float64 `yaml:"stop_losses" json:"stop_losses"`
	MaxHoldDays []int     `yaml:"max_hold_days" json:"max_hold_days"`
	Slopes      []float64 `yaml:"slopes" json:"slopes"`
}

// Size returns the number of grid combinations
func (s Sweep) Size() int {
	return len(s.TakeProfits) * len(s.StopLosses) * len(s.MaxHoldDays) * len(s.Slopes)
}

// DecisionSnapshot 의사결정 스냅샷 (재현성용)
type DecisionSnapshot struct {
	ConfigHash     string    `json:"config_hash"`
	ConfigYAML     string    `json:"config_yaml"`
	StrategyID     string    `json:"strategy_id"`
	GitCommit      string    `json:"git_commit"`
	DataSnapshotID string    `json:"data_snapshot_id"`
	CreatedAt      time.Time `json:"created_at"`
}

// Default returns the built-in strategy used when no YAML is given
func Default() *Config {
	return &Config{
		Meta: Meta{
			StrategyID: "ashare_mainwave",
			Version:    "1.0.0",
			Timezone:   "Asia/Shanghai",
		},
		Universe: Universe{
			Lots: Lots{
				Default:  100,
				Prefixes: map[string]int64{"688": 200},
			},
		},
		Signals: Signals{
			WindowMode:        "strict",
			DeepBottomVariant: "classic",
			PullbackVariant:   "classic",
			ReportThreshold:   25,
		},
		Backtest: Backtest{
			PositionCapPct: 0.20,
		},
	}
}
