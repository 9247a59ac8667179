package s2_signals

import (
	"strings"

	"github.com/wonny/aegis-ashare/internal/indicator"
	"github.com/wonny/aegis-ashare/pkg/nullable"
)

// Variant selects between the two formula families.
// Classic is the canonical one; TDX keeps the divergent 通达信 constants.
type Variant int

const (
	Classic Variant = iota
	TDX
)

func (v Variant) String() string {
	if v == TDX {
		return "tdx"
	}
	return "classic"
}

// ParseVariant accepts "classic" or "tdx"; empty means classic
func ParseVariant(s string) (Variant, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "classic":
		return Classic, true
	case "tdx":
		return TDX, true
	}
	return Classic, false
}

// Mode returns the rolling-window mode the variant uses
func (v Variant) Mode() indicator.Mode {
	if v == TDX {
		return indicator.Partial
	}
	return indicator.Strict
}

// MinHistory is the minimum bar count for the deep-bottom report
func (v Variant) MinHistory() int {
	if v == TDX {
		return MainWaveMinHistory
	}
	return DeepBottomMinHistory
}

// deep-bottom windows
var bottomWindows = [3]int{500, 250, 90}

// R_LLV / R_HHV weights per window (500, 250, 90)
var (
	r7Low  = [3]float64{0.96, 0.96, 0.96}
	r7High = [3]float64{0.558, 0.558, 0.558}
	r8Low  = [3]float64{1.25, 1.23, 1.2}
	r8High = [3]float64{0.55, 0.55, 0.65}
	r9Low  = [3]float64{1.3, 1.3, 1.3}
	r9High = [3]float64{0.68, 0.68, 0.68}
)

// DeepBottom holds the deep-bottom (历史大底) series of one ticker
type DeepBottom struct {
	RA    indicator.Series // 核心基准线
	RC    indicator.Series
	RD    indicator.Series
	Value indicator.Series // raw·R10 (classic) or mean3(raw)/618·R10 (tdx)
	Flag  []bool
}

// DeepBottomCalculator derives the deep-bottom flag
// ⭐ SSOT: 大底 공식은 여기서만
type DeepBottomCalculator struct {
	variant Variant
}

// NewDeepBottomCalculator creates a calculator for the given variant
func NewDeepBottomCalculator(variant Variant) *DeepBottomCalculator {
	return &DeepBottomCalculator{variant: variant}
}

// Calculate computes the deep-bottom series
func (c *DeepBottomCalculator) Calculate(cols Columns) DeepBottom {
	mode := c.variant.Mode()
	n := cols.Len()

	var rHHV, rLLV [3]indicator.Series
	for k, p := range bottomWindows {
		rHHV[k] = mode.Mean(mode.Max(cols.High, p), 21)
		rLLV[k] = mode.Mean(mode.Min(cols.Low, p), 21)
	}
	blend := func(low, high [3]float64) indicator.Series {
		out := make(indicator.Series, n)
		for i := 0; i < n; i++ {
			sum := nullable.Some(0)
			for k := range bottomWindows {
				sum = sum.Add(rLLV[k][i].Scale(low[k])).Add(rHHV[k][i].Scale(high[k]))
			}
			out[i] = sum.Div(nullable.Some(6))
		}
		return out
	}
	r7 := blend(r7Low, r7High)
	r8 := blend(r8Low, r8High)
	r9 := blend(r9Low, r9High)

	base := make(indicator.Series, n)
	for i := 0; i < n; i++ {
		base[i] = r7[i].Scale(3).Add(r8[i].Scale(2)).Add(r9[i]).Div(nullable.Some(6)).Scale(1.738)
	}

	db := DeepBottom{RA: mode.Mean(base, 21)}

	rb := indicator.Shift(cols.Low, 1)
	diff := indicator.Sub(cols.Low, rb)
	smaAbs := indicator.SMA(indicator.Map(diff, nullable.Float.Abs), 3, 1)
	smaMax := indicator.SMA(indicator.Map(diff, func(v nullable.Float) nullable.Float { return v.ClipLower(0) }), 3, 1)

	db.RC = make(indicator.Series, n)
	rd := make(indicator.Series, n)
	for i := 0; i < n; i++ {
		// 분모가 정확히 0이면 0, 정의되지 않으면 미정의
		if smaMax[i].Valid && smaMax[i].V == 0 {
			db.RC[i] = nullable.Some(0)
		} else {
			db.RC[i] = smaAbs[i].Div(smaMax[i]).Scale(100)
		}
		deep := cols.Close[i].Scale(1.35).Le(db.RA[i])
		rd[i] = where(deep, db.RC[i].Scale(10), db.RC[i].Div(nullable.Some(10)))
	}
	db.RD = mode.Mean(rd, 3)

	re := mode.Min(cols.Low, 30)
	rf := mode.Max(db.RD, 30)
	ma58 := mode.Mean(cols.Close, 58)

	raw := make(indicator.Series, n)
	r10 := make([]float64, n)
	for i := 0; i < n; i++ {
		if ma58[i].Valid {
			r10[i] = 1
		}
		signal := db.RD[i].Add(rf[i].Scale(2)).Div(nullable.Some(2))
		raw[i] = where(cols.Low[i].Le(re[i]), signal, nullable.Some(0))
	}

	db.Value = make(indicator.Series, n)

	if c.variant == TDX {
		db.Flag = make([]bool, n)
		smoothed := mode.Mean(raw, 3)
		for i := 0; i < n; i++ {
			db.Value[i] = smoothed[i].Div(nullable.Some(618)).Scale(r10[i])
			db.Flag[i] = db.Value[i].GtConst(0).IsTrue()
		}
		return db
	}

	trigger := make([]bool, n)
	for i := 0; i < n; i++ {
		db.Value[i] = raw[i].Scale(r10[i])
		trigger[i] = db.Value[i].GtConst(0).IsTrue()
	}
	db.Flag = extend(trigger, 3)
	return db
}

// extend marks index i when any of the last days triggers (i included)
func extend(trigger []bool, days int) []bool {
	out := make([]bool, len(trigger))
	for i := range trigger {
		for j := i; j >= 0 && j > i-days; j-- {
			if trigger[j] {
				out[i] = true
				break
			}
		}
	}
	return out
}
