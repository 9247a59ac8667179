package indicator

import (
	"math"

	"github.com/wonny/aegis-ashare/pkg/nullable"
)

// TradingDaysPerYear annualises daily volatility
const TradingDaysPerYear = 252

// Angle converts the day-over-day change of a moving average into degrees:
// degrees(atan((ma_t/ma_{t-1} - 1) * 100)). Undefined when either value is
// undefined or the previous value is zero.
func Angle(ma Series) Series {
	out := make(Series, len(ma))
	for i := 1; i < len(ma); i++ {
		ratio := ma[i].Div(ma[i-1])
		if !ratio.Valid {
			continue
		}
		out[i] = nullable.Some(math.Atan((ratio.V-1)*100) * 180 / math.Pi)
	}
	return out
}

// BBI is the bull-bear index (MA3 + MA6 + MA12 + MA24) / 4
func (m Mode) BBI(close Series) Series {
	sum := Add(Add(m.Mean(close, 3), m.Mean(close, 6)), Add(m.Mean(close, 12), m.Mean(close, 24)))
	return Scale(sum, 0.25)
}

// BBI is Strict.BBI
func BBI(close Series) Series { return Strict.BBI(close) }

// LogReturns is ln(c_t / c_{t-1}); undefined for non-positive prices
func LogReturns(close Series) Series {
	out := make(Series, len(close))
	for i := 1; i < len(close); i++ {
		prev, cur := close[i-1], close[i]
		if !prev.Valid || !cur.Valid || prev.V <= 0 || cur.V <= 0 {
			continue
		}
		out[i] = nullable.Some(math.Log(cur.V / prev.V))
	}
	return out
}

// Volatility is the annualised n-day standard deviation of log returns, in percent
func (m Mode) Volatility(close Series, n int) Series {
	return Scale(m.Std(LogReturns(close), n), math.Sqrt(TradingDaysPerYear)*100)
}

// Volatility is Strict.Volatility
func Volatility(close Series, n int) Series { return Strict.Volatility(close, n) }
