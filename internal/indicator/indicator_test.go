package indicator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/aegis-ashare/pkg/nullable"
)

var nan = math.NaN()

// assertSeries compares against plain floats where NaN means undefined
func assertSeries(t *testing.T, want []float64, got Series) {
	t.Helper()
	require.Len(t, got, len(want))
	for i, w := range want {
		if math.IsNaN(w) {
			assert.False(t, got[i].Valid, "index %d: want undefined, got %v", i, got[i])
			continue
		}
		if assert.True(t, got[i].Valid, "index %d: want %v, got undefined", i, w) {
			assert.InDelta(t, w, got[i].V, 1e-9, "index %d", i)
		}
	}
}

func TestRolling(t *testing.T) {
	tests := []struct {
		name string
		fn   func() Series
		want []float64
	}{
		{"strict mean", func() Series { return Mean(FromFloats([]float64{1, 2, 3, 4, 5}), 3) }, []float64{nan, nan, 2, 3, 4}},
		{"partial mean", func() Series { return Partial.Mean(FromFloats([]float64{1, 2, 3, 4, 5}), 3) }, []float64{1, 1.5, 2, 3, 4}},
		{"strict mean with gap", func() Series { return Mean(FromFloats([]float64{1, nan, 3, 4, 5}), 2) }, []float64{nan, nan, nan, 3.5, 4.5}},
		{"partial mean with gap", func() Series { return Partial.Mean(FromFloats([]float64{1, nan, 3, 4, 5}), 2) }, []float64{1, 1, 3, 3.5, 4.5}},
		{"max", func() Series { return Max(FromFloats([]float64{1, 3, 2}), 2) }, []float64{nan, 3, 3}},
		{"min", func() Series { return Min(FromFloats([]float64{1, 3, 2}), 2) }, []float64{nan, 1, 2}},
		{"std", func() Series { return Std(FromFloats([]float64{1, 2, 3, 4}), 3) }, []float64{nan, nan, 1, 1}},
		{"partial std needs two", func() Series { return Partial.Std(FromFloats([]float64{1, 2, 3, 4}), 3) }, []float64{nan, math.Sqrt(0.5), 1, 1}},
		{"window longer than series", func() Series { return Mean(FromFloats([]float64{1, 2}), 5) }, []float64{nan, nan}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertSeries(t, tt.want, tt.fn())
		})
	}
}

func TestSMA(t *testing.T) {
	tests := []struct {
		name string
		in   []float64
		want []float64
	}{
		{"recursion", []float64{1, 2, 3, 4, 5}, []float64{nan, nan, 2, 8.0 / 3, 31.0 / 9}},
		{"reseed after undefined seed", []float64{nan, nan, nan, 4, 5}, []float64{nan, nan, nan, 4, 13.0 / 3}},
		{"undefined input then reseed", []float64{1, 2, 3, nan, 6}, []float64{nan, nan, 2, nan, 3}},
		{"seed ignores undefined", []float64{2, nan, 4, 6}, []float64{nan, nan, 3, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertSeries(t, tt.want, SMA(FromFloats(tt.in), 3, 1))
		})
	}
}

func TestEMA(t *testing.T) {
	assertSeries(t, []float64{1, 1.5, 2.25}, EMA(FromFloats([]float64{1, 2, 3}), 3))
	// 미정의 입력은 상태를 건드리지 않음
	assertSeries(t, []float64{1, nan, 2}, EMA(FromFloats([]float64{1, nan, 3}), 3))
	assertSeries(t, []float64{nan, 5, 5}, EMA(FromFloats([]float64{nan, 5, 5}), 12))
}

func TestMACD_ConstantSeries(t *testing.T) {
	close := FromFloats([]float64{10, 10, 10, 10, 10})
	dif, dea := MACD(close, 12, 26, 9)
	assertSeries(t, []float64{0, 0, 0, 0, 0}, dif)
	assertSeries(t, []float64{0, 0, 0, 0, 0}, dea)
}

func TestAngle(t *testing.T) {
	got := Angle(FromFloats([]float64{10, 10.1, 10.1, 0, 5}))
	want := []float64{nan, 45, 0, math.Atan(-100) * 180 / math.Pi, nan}

	assertSeries(t, want, got)
}

func TestBBI(t *testing.T) {
	vs := make([]float64, 25)
	for i := range vs {
		vs[i] = 7
	}
	got := BBI(FromFloats(vs))

	assert.False(t, got[22].Valid)
	require.True(t, got[23].Valid)
	assert.InDelta(t, 7, got[23].V, 1e-12)
}

func TestVolatility(t *testing.T) {
	vs := make([]float64, 22)
	for i := range vs {
		vs[i] = 10
	}
	got := Volatility(FromFloats(vs), 20)

	assert.False(t, got[19].Valid)
	require.True(t, got[20].Valid)
	assert.InDelta(t, 0, got[20].V, 1e-12)

	// 두 값이 번갈아 나오면 변동성 > 0
	alt := make([]float64, 22)
	for i := range alt {
		alt[i] = 10 + float64(i%2)
	}
	assert.Greater(t, Volatility(FromFloats(alt), 20)[21].V, 0.0)
}

func TestLogReturns_NonPositivePrice(t *testing.T) {
	got := LogReturns(FromFloats([]float64{10, 0, 10, 20}))
	assertSeries(t, []float64{nan, nan, nan, math.Log(2)}, got)
}

func TestShift(t *testing.T) {
	assertSeries(t, []float64{nan, 1, 2}, Shift(FromFloats([]float64{1, 2, 3}), 1))
}

func TestFlags(t *testing.T) {
	a := FromFloats([]float64{1, 3, nan})
	b := FromFloats([]float64{2, 2, 2})

	gt := Gt(a, b)
	assert.Equal(t, Flags{nullable.False, nullable.True, nullable.Unknown}, gt)
	assert.Equal(t, []bool{false, true, false}, gt.Bools())
	assert.Equal(t, Flags{nullable.True, nullable.True, nullable.Unknown}, gt.Or(Lt(a, b)))
}

func TestParseMode(t *testing.T) {
	m, ok := ParseMode("partial")
	assert.True(t, ok)
	assert.Equal(t, Partial, m)

	_, ok = ParseMode("loose")
	assert.False(t, ok)
}
