package indicator

import "github.com/wonny/aegis-ashare/pkg/nullable"

// SMA is the recursive weighted average Y = (X*M + Y'*(N-M)) / N.
//
// Index N-1 is seeded with the mean of the defined values among the first N
// inputs. If the running value is ever undefined it restarts from the mean
// of every defined input seen so far. Evaluation is strictly left to right.
func SMA(s Series, n, m int) Series {
	out := make(Series, len(s))
	if n < 1 {
		return out
	}
	fn, fm := float64(n), float64(m)
	var y nullable.Float
	for i, x := range s {
		switch {
		case i < n-1:
			continue
		case i == n-1:
			y = definedMean(s[:n])
		case !y.Valid:
			y = definedMean(s[:i+1])
		default:
			// X 가 미정의면 Y 도 미정의, 다음 봉에서 재시드
			y = x.Scale(fm).Add(y.Scale(fn - fm)).Div(nullable.Some(fn))
		}
		out[i] = y
	}
	return out
}

// EMA is the exponential moving average with alpha = 2/(span+1), seeded by the
// first defined input with no bias correction. An
// undefined input yields an undefined output and leaves the state untouched.
func EMA(s Series, span int) Series {
	out := make(Series, len(s))
	alpha := 2.0 / (float64(span) + 1.0)
	var state nullable.Float
	for i, x := range s {
		if !x.Valid {
			continue
		}
		if !state.Valid {
			state = x
		} else {
			state = nullable.Some(alpha*x.V + (1-alpha)*state.V)
		}
		out[i] = state
	}
	return out
}

// MACD returns DIF = EMA(fast) - EMA(slow) and DEA = EMA(DIF, signal)
func MACD(close Series, fast, slow, signal int) (dif, dea Series) {
	dif = Sub(EMA(close, fast), EMA(close, slow))
	dea = EMA(dif, signal)
	return dif, dea
}

func definedMean(s Series) nullable.Float {
	sum, count := 0.0, 0
	for _, v := range s {
		if v.Valid {
			sum += v.V
			count++
		}
	}
	if count == 0 {
		return nullable.None
	}
	return nullable.Some(sum / float64(count))
}
