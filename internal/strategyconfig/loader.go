package strategyconfig

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wonny/aegis-ashare/internal/backtest"
	"github.com/wonny/aegis-ashare/internal/indicator"
	"github.com/wonny/aegis-ashare/internal/s1_universe"
	"github.com/wonny/aegis-ashare/internal/s2_signals"
)

// Load reads YAML file and returns Config with raw bytes
// SSOT 핵심: KnownFields(true)로 오타/미사용 필드 즉시 실패
func Load(path string) (*Config, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, data, err
	}
	return cfg, data, nil
}

// Parse decodes YAML over the defaults and validates the result
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true) // 알 수 없는 필드 발견 시 에러 반환
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("decode strategy yaml: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Hash generates SHA256 hash from Config (canonical JSON)
// 주의: json.Marshal은 struct 필드 순서와 정렬된 map 키로 결정적
func Hash(cfg *Config) (string, error) {
	jsonBytes, err := json.Marshal(cfg)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(jsonBytes)
	return hex.EncodeToString(sum[:]), nil
}

// NewDecisionSnapshot creates a snapshot for audit
func NewDecisionSnapshot(cfg *Config, yamlData []byte, gitCommit, dataSnapshotID string) (*DecisionSnapshot, error) {
	hash, err := Hash(cfg)
	if err != nil {
		return nil, err
	}

	return &DecisionSnapshot{
		ConfigHash:     hash,
		ConfigYAML:     string(yamlData),
		StrategyID:     cfg.Meta.StrategyID,
		GitCommit:      gitCommit,
		DataSnapshotID: dataSnapshotID,
		CreatedAt:      time.Now(),
	}, nil
}

// LotRule converts the lots section
func (c *Config) LotRule() s1_universe.LotRule {
	prefixes := make(map[string]int64, len(c.Universe.Lots.Prefixes))
	for k, v := range c.Universe.Lots.Prefixes {
		prefixes[k] = v
	}
	return s1_universe.LotRule{Default: c.Universe.Lots.Default, Prefixes: prefixes}
}

// UniverseConfig converts the universe section; universeFile comes from the environment
func (c *Config) UniverseConfig(universeFile string) s1_universe.Config {
	return s1_universe.Config{
		UniverseFile:    universeFile,
		RestrictToList:  c.Universe.RestrictToList,
		ExcludeST:       c.Universe.ExcludeST,
		ExcludePrefixes: append([]string(nil), c.Universe.ExcludePrefixes...),
	}
}

// SignalConfig converts the signals section. Call only on a validated Config.
func (c *Config) SignalConfig(workers int) s2_signals.Config {
	mode, _ := indicator.ParseMode(c.Signals.WindowMode)
	deep, _ := s2_signals.ParseVariant(c.Signals.DeepBottomVariant)
	pullback, _ := s2_signals.ParseVariant(c.Signals.PullbackVariant)
	return s2_signals.Config{
		Workers:           workers,
		MainWaveMode:      mode,
		DeepBottomVariant: deep,
		PullbackVariant:   pullback,
		HotThreshold:      c.Signals.ReportThreshold,
	}
}

// EngineConfig converts the backtest section
func (c *Config) EngineConfig(initialCapital float64) backtest.Config {
	return backtest.Config{
		InitialCapital: initialCapital,
		PositionCap:    c.Backtest.PositionCapPct,
		Lots:           c.LotRule(),
	}
}

// Grid converts the sweep section
func (c *Config) Grid() backtest.Grid {
	return backtest.Grid{
		TakeProfits: append([]float64(nil), c.Sweep.TakeProfits...),
		StopLosses:  append([]float64(nil), c.Sweep.StopLosses...),
		MaxHoldDays: append([]int(nil), c.Sweep.MaxHoldDays...),
		Slopes:      append([]float64(nil), c.Sweep.Slopes...),
	}
}
