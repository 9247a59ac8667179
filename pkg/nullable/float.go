// Package nullable provides an optional float and a three-valued boolean.
//
// Indicator windows, shifted series and malformed input cells all produce
// values that are "not yet known". Those values must never be confused with
// zero, and a comparison against one must not silently evaluate to false.
package nullable

import (
	"fmt"
	"math"
	"strconv"
)

// Float is a float64 that may be undefined
// ⭐ SSOT: 미정의 값은 오직 Valid=false 로만 표현 (NaN 사용 금지)
type Float struct {
	V     float64
	Valid bool
}

// None is the undefined Float
var None = Float{}

// Some wraps v. NaN and ±Inf are coerced to None.
func Some(v float64) Float {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return None
	}
	return Float{V: v, Valid: true}
}

// Parse converts a text cell into a Float. Empty or unparsable cells are None.
func Parse(s string) Float {
	if s == "" {
		return None
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return None
	}
	return Some(v)
}

// Or returns the value, or def when undefined
func (f Float) Or(def float64) float64 {
	if !f.Valid {
		return def
	}
	return f.V
}

func (f Float) Add(o Float) Float {
	if !f.Valid || !o.Valid {
		return None
	}
	return Some(f.V + o.V)
}

func (f Float) Sub(o Float) Float {
	if !f.Valid || !o.Valid {
		return None
	}
	return Some(f.V - o.V)
}

func (f Float) Mul(o Float) Float {
	if !f.Valid || !o.Valid {
		return None
	}
	return Some(f.V * o.V)
}

// Div yields None when the divisor is zero
func (f Float) Div(o Float) Float {
	if !f.Valid || !o.Valid || o.V == 0 {
		return None
	}
	return Some(f.V / o.V)
}

// Scale multiplies by a constant
func (f Float) Scale(k float64) Float {
	if !f.Valid {
		return None
	}
	return Some(f.V * k)
}

func (f Float) Abs() Float {
	if !f.Valid {
		return None
	}
	return Float{V: math.Abs(f.V), Valid: true}
}

// ClipLower returns max(f, lo), keeping undefined values undefined
func (f Float) ClipLower(lo float64) Float {
	if !f.Valid {
		return None
	}
	return Float{V: math.Max(f.V, lo), Valid: true}
}

// Gt compares f > o
func (f Float) Gt(o Float) Bool {
	if !f.Valid || !o.Valid {
		return Unknown
	}
	return BoolOf(f.V > o.V)
}

// Ge compares f >= o
func (f Float) Ge(o Float) Bool {
	if !f.Valid || !o.Valid {
		return Unknown
	}
	return BoolOf(f.V >= o.V)
}

// Lt compares f < o
func (f Float) Lt(o Float) Bool {
	if !f.Valid || !o.Valid {
		return Unknown
	}
	return BoolOf(f.V < o.V)
}

// Le compares f <= o
func (f Float) Le(o Float) Bool {
	if !f.Valid || !o.Valid {
		return Unknown
	}
	return BoolOf(f.V <= o.V)
}

// GtConst compares f > k
func (f Float) GtConst(k float64) Bool {
	return f.Gt(Some(k))
}

// LtConst compares f < k
func (f Float) LtConst(k float64) Bool {
	return f.Lt(Some(k))
}

func (f Float) String() string {
	if !f.Valid {
		return "NaN"
	}
	return fmt.Sprintf("%g", f.V)
}
