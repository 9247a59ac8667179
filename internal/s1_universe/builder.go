package s1_universe

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/wonny/aegis-ashare/internal/contracts"
	"github.com/wonny/aegis-ashare/pkg/logger"
)

// ST/*ST/退市 판별 패턴
var stPattern = regexp.MustCompile(`(?i)(^\*?ST|退)`)

// Builder constructs the candidate universe
type Builder struct {
	source contracts.BarSource
	config Config
	logger *logger.Logger
}

// Config holds universe filter criteria
type Config struct {
	UniverseFile    string   `yaml:"universe_file"`    // code,name,industry,area,type CSV (선택)
	RestrictToList  bool     `yaml:"restrict_to_list"` // 목록에 없는 종목 제외
	ExcludeST       bool     `yaml:"exclude_st"`       // ST/*ST 제외
	ExcludePrefixes []string `yaml:"exclude_prefixes"` // 예: "8", "4" (北交所)
}

// Stock is a candidate with its descriptive metadata
type Stock struct {
	Code string
	Meta contracts.StockMeta
}

// NewBuilder creates a new Universe Builder
func NewBuilder(source contracts.BarSource, config Config, log *logger.Logger) *Builder {
	return &Builder{
		source: source,
		config: config,
		logger: log.WithFields(map[string]interface{}{
			"module": "universe",
			"stage":  contracts.StageUniverse.ShortName(),
		}),
	}
}

// Build lists the source tickers, attaches metadata and applies filters
// ⭐ SSOT: S1 → S2 유니버스 생성
func (b *Builder) Build(ctx context.Context) (*contracts.Universe, error) {
	tickers, err := b.source.ListTickers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tickers: %w", err)
	}

	meta := map[string]contracts.StockMeta{}
	if b.config.UniverseFile != "" {
		meta, err = LoadStockList(b.config.UniverseFile)
		if err != nil {
			return nil, fmt.Errorf("load universe file: %w", err)
		}
	}

	universe := contracts.NewUniverse()
	for _, ticker := range tickers {
		code := contracts.NormalizeTicker(ticker)
		m, listed := meta[code]
		if b.config.RestrictToList && !listed {
			universe.Exclude(ticker, contracts.ExcludeFiltered)
			continue
		}

		stock := Stock{Code: code, Meta: m}
		if reason := b.checkExclusion(stock); reason != "" {
			b.logger.WithFields(map[string]interface{}{
				"ticker": ticker,
				"reason": reason,
			}).Debug("Ticker filtered")
			universe.Exclude(ticker, contracts.ExcludeFiltered)
			continue
		}

		universe.Stocks = append(universe.Stocks, ticker)
		if listed {
			universe.Meta[code] = m
		}
	}

	b.logger.WithFields(map[string]interface{}{
		"candidates": universe.Count(),
		"excluded":   len(universe.Excluded),
		"listed":     len(meta),
	}).Info("Universe built")

	return universe, nil
}

// checkExclusion checks if a stock should be excluded and returns the reason
func (b *Builder) checkExclusion(stock Stock) string {
	// 1. ST
	if b.config.ExcludeST && isST(stock.Meta.Name) {
		return "ST"
	}

	// 2. 제외 접두사
	for _, prefix := range b.config.ExcludePrefixes {
		if prefix != "" && strings.HasPrefix(stock.Code, prefix) {
			return fmt.Sprintf("제외 접두사 (%s)", prefix)
		}
	}

	return "" // 통과
}

// isST checks if a stock is under special treatment based on name pattern
func isST(name string) bool {
	return stPattern.MatchString(strings.TrimSpace(name))
}
