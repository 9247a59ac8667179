package nullable

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSome_CoercesNonFinite(t *testing.T) {
	assert.False(t, Some(math.NaN()).Valid)
	assert.False(t, Some(math.Inf(1)).Valid)
	assert.True(t, Some(0).Valid)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Float
	}{
		{"number", "10.5", Some(10.5)},
		{"empty", "", None},
		{"garbage", "abc", None},
		{"nan text", "NaN", None},
		{"negative", "-3", Some(-3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.in))
		})
	}
}

func TestFloat_ArithmeticPropagatesUndefined(t *testing.T) {
	a := Some(4)
	assert.Equal(t, Some(6), a.Add(Some(2)))
	assert.Equal(t, None, a.Add(None))
	assert.Equal(t, None, None.Mul(a))
	assert.Equal(t, None, a.Div(Some(0)))
	assert.Equal(t, Some(2), a.Div(Some(2)))
	assert.Equal(t, Some(0), Some(-1).ClipLower(0))
	assert.Equal(t, None, None.ClipLower(0))
}

func TestFloat_Comparisons(t *testing.T) {
	assert.Equal(t, True, Some(2).Gt(Some(1)))
	assert.Equal(t, False, Some(1).Gt(Some(2)))
	assert.Equal(t, Unknown, None.Gt(Some(2)))
	assert.Equal(t, True, Some(2).Ge(Some(2)))
	assert.Equal(t, Unknown, Some(2).Le(None))
}

func TestBool_Kleene(t *testing.T) {
	tests := []struct {
		a, b    Bool
		and, or Bool
	}{
		{True, True, True, True},
		{True, False, False, True},
		{True, Unknown, Unknown, True},
		{False, Unknown, False, Unknown},
		{Unknown, Unknown, Unknown, Unknown},
		{False, False, False, False},
	}

	for _, tt := range tests {
		t.Run(tt.a.String()+"_"+tt.b.String(), func(t *testing.T) {
			assert.Equal(t, tt.and, tt.a.And(tt.b))
			assert.Equal(t, tt.and, tt.b.And(tt.a))
			assert.Equal(t, tt.or, tt.a.Or(tt.b))
			assert.Equal(t, tt.or, tt.b.Or(tt.a))
		})
	}

	assert.False(t, Unknown.IsTrue())
	assert.Equal(t, Unknown, Unknown.Not())
	assert.Equal(t, False, All(True, Unknown, False))
	assert.Equal(t, Unknown, All(True, Unknown))
	assert.Equal(t, True, All())
}
