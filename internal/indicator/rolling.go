package indicator

import (
	"math"

	"github.com/wonny/aegis-ashare/pkg/nullable"
)

// Mode selects how rolling windows treat their warm-up period
type Mode int

const (
	// Strict needs n defined values in the window; the first n-1 outputs are undefined
	Strict Mode = iota
	// Partial needs a single defined value
	Partial
)

func (m Mode) String() string {
	if m == Partial {
		return "partial"
	}
	return "strict"
}

// ParseMode accepts "strict" or "partial"
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "", "strict":
		return Strict, true
	case "partial":
		return Partial, true
	}
	return Strict, false
}

func (m Mode) minPeriods(n int) int {
	if m == Partial {
		return 1
	}
	return n
}

// Mean is the rolling arithmetic mean
func (m Mode) Mean(s Series, n int) Series {
	return rolling(s, n, m.minPeriods(n), func(w []float64) float64 {
		sum := 0.0
		for _, v := range w {
			sum += v
		}
		return sum / float64(len(w))
	})
}

// Max is the rolling maximum
func (m Mode) Max(s Series, n int) Series {
	return rolling(s, n, m.minPeriods(n), func(w []float64) float64 {
		best := w[0]
		for _, v := range w[1:] {
			if v > best {
				best = v
			}
		}
		return best
	})
}

// Min is the rolling minimum
func (m Mode) Min(s Series, n int) Series {
	return rolling(s, n, m.minPeriods(n), func(w []float64) float64 {
		best := w[0]
		for _, v := range w[1:] {
			if v < best {
				best = v
			}
		}
		return best
	})
}

// Std is the rolling sample standard deviation (ddof=1). It needs at least
// two defined values whatever the mode.
func (m Mode) Std(s Series, n int) Series {
	minP := m.minPeriods(n)
	if minP < 2 {
		minP = 2
	}
	return rolling(s, n, minP, func(w []float64) float64 {
		mean := 0.0
		for _, v := range w {
			mean += v
		}
		mean /= float64(len(w))
		ss := 0.0
		for _, v := range w {
			ss += (v - mean) * (v - mean)
		}
		return math.Sqrt(ss / float64(len(w)-1))
	})
}

// Mean is Strict.Mean
func Mean(s Series, n int) Series { return Strict.Mean(s, n) }

// Max is Strict.Max
func Max(s Series, n int) Series { return Strict.Max(s, n) }

// Min is Strict.Min
func Min(s Series, n int) Series { return Strict.Min(s, n) }

// Std is Strict.Std
func Std(s Series, n int) Series { return Strict.Std(s, n) }

// rolling evaluates agg over the defined values of each trailing window of
// size n. Windows holding fewer than minPeriods defined values are undefined.
func rolling(s Series, n, minPeriods int, agg func([]float64) float64) Series {
	out := make(Series, len(s))
	if n < 1 {
		return out
	}
	buf := make([]float64, 0, n)
	for i := range s {
		// 윈도우가 다 차기 전에는 strict 모드에서 항상 미정의
		if i+1 < minPeriods {
			continue
		}
		buf = buf[:0]
		start := i - n + 1
		if start < 0 {
			start = 0
		}
		for _, v := range s[start : i+1] {
			if v.Valid {
				buf = append(buf, v.V)
			}
		}
		if len(buf) < minPeriods {
			continue
		}
		out[i] = nullable.Some(agg(buf))
	}
	return out
}
