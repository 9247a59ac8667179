package s2_signals

import (
	"github.com/wonny/aegis-ashare/internal/indicator"
	"github.com/wonny/aegis-ashare/pkg/nullable"
)

// pullbackSpan and pullbackDiscount define the EMA buy line
const (
	pullbackSpan     = 32
	pullbackDiscount = 0.96 // 4% 하향
)

// Pullback holds the EMA pullback (波段) series of one ticker
type Pullback struct {
	Line indicator.Series
	Flag []bool
}

// PullbackCalculator derives the EMA pullback flag
type PullbackCalculator struct {
	variant Variant
}

// NewPullbackCalculator creates a calculator for the given variant
func NewPullbackCalculator(variant Variant) *PullbackCalculator {
	return &PullbackCalculator{variant: variant}
}

// Calculate computes the buy line and flag.
// classic: close below the line. tdx: low touches the line.
func (c *PullbackCalculator) Calculate(cols Columns) Pullback {
	n := cols.Len()
	var1 := make(indicator.Series, n)
	for i := 0; i < n; i++ {
		var1[i] = cols.Close[i].Add(cols.High[i]).Add(cols.Open[i]).Add(cols.Low[i]).Scale(0.25)
	}

	pb := Pullback{
		Line: indicator.Scale(indicator.EMA(var1, pullbackSpan), pullbackDiscount),
		Flag: make([]bool, n),
	}
	for i := 0; i < n; i++ {
		var hit nullable.Bool
		if c.variant == TDX {
			hit = cols.Low[i].Le(pb.Line[i])
		} else {
			hit = cols.Close[i].Lt(pb.Line[i])
		}
		pb.Flag[i] = hit.IsTrue()
	}
	return pb
}
