// Package indicator implements technical indicators over optional-float series.
//
// Every transform returns a series of the same length as its input. Undefined
// inputs propagate to undefined outputs; nothing is ever filled with zero.
package indicator

import "github.com/wonny/aegis-ashare/pkg/nullable"

// Series is a time-ordered sequence of optional values
type Series []nullable.Float

// Flags is a time-ordered sequence of three-valued booleans
type Flags []nullable.Bool

// FromFloats lifts plain values (NaN becomes undefined)
func FromFloats(vs []float64) Series {
	out := make(Series, len(vs))
	for i, v := range vs {
		out[i] = nullable.Some(v)
	}
	return out
}

// Map applies f element-wise
func Map(s Series, f func(nullable.Float) nullable.Float) Series {
	out := make(Series, len(s))
	for i, v := range s {
		out[i] = f(v)
	}
	return out
}

// Zip applies f to aligned pairs. a and b must have equal length.
func Zip(a, b Series, f func(x, y nullable.Float) nullable.Float) Series {
	out := make(Series, len(a))
	for i := range a {
		out[i] = f(a[i], b[i])
	}
	return out
}

// Compare builds a flag series from aligned pairs
func Compare(a, b Series, cmp func(x, y nullable.Float) nullable.Bool) Flags {
	out := make(Flags, len(a))
	for i := range a {
		out[i] = cmp(a[i], b[i])
	}
	return out
}

// Gt is a > b element-wise
func Gt(a, b Series) Flags {
	return Compare(a, b, nullable.Float.Gt)
}

// Lt is a < b element-wise
func Lt(a, b Series) Flags {
	return Compare(a, b, nullable.Float.Lt)
}

// Add is a + b element-wise
func Add(a, b Series) Series {
	return Zip(a, b, nullable.Float.Add)
}

// Sub is a - b element-wise
func Sub(a, b Series) Series {
	return Zip(a, b, nullable.Float.Sub)
}

// Scale multiplies every element by k
func Scale(s Series, k float64) Series {
	return Map(s, func(v nullable.Float) nullable.Float { return v.Scale(k) })
}

// Shift lags the series by k positions (k > 0), leading positions undefined
func Shift(s Series, k int) Series {
	out := make(Series, len(s))
	for i := range s {
		j := i - k
		if j >= 0 && j < len(s) {
			out[i] = s[j]
		}
	}
	return out
}

// And is element-wise Kleene conjunction
func (f Flags) And(o Flags) Flags {
	out := make(Flags, len(f))
	for i := range f {
		out[i] = f[i].And(o[i])
	}
	return out
}

// Or is element-wise Kleene disjunction
func (f Flags) Or(o Flags) Flags {
	out := make(Flags, len(f))
	for i := range f {
		out[i] = f[i].Or(o[i])
	}
	return out
}

// Bools collapses to plain flags; Unknown becomes false
func (f Flags) Bools() []bool {
	out := make([]bool, len(f))
	for i, v := range f {
		out[i] = v.IsTrue()
	}
	return out
}
