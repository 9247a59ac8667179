package s1_universe

import (
	"strings"

	"github.com/wonny/aegis-ashare/internal/contracts"
)

// Default board lots
const (
	DefaultLot  int64 = 100
	STARLotSize int64 = 200 // 科创板 (688)
)

// LotRule maps code prefixes to lot sizes. The longest matching prefix wins.
type LotRule struct {
	Default  int64            `yaml:"default"`
	Prefixes map[string]int64 `yaml:"prefixes"`
}

// DefaultLotRule returns 200 for "688" codes and 100 otherwise
func DefaultLotRule() LotRule {
	return LotRule{
		Default:  DefaultLot,
		Prefixes: map[string]int64{"688": STARLotSize},
	}
}

// LotSize returns the board lot for a ticker
func (r LotRule) LotSize(ticker string) int64 {
	code := contracts.NormalizeTicker(ticker)

	lot, matched := r.Default, 0
	for prefix, size := range r.Prefixes {
		if len(prefix) > matched && strings.HasPrefix(code, prefix) {
			lot, matched = size, len(prefix)
		}
	}
	switch {
	case lot > 0:
		return lot
	case r.Default > 0:
		return r.Default
	}
	return DefaultLot
}
