package risk

import (
	"math"
	"sort"
)

// CalculateVaR computes historical VaR and CVaR at confidence
// returns: 일별 수익률 (양수=이익, 음수=손실)
func CalculateVaR(returns []float64, confidence float64) VaRResult {
	res := VaRResult{Confidence: confidence}
	if len(returns) == 0 {
		return res
	}

	sorted := make([]float64, len(returns))
	copy(sorted, returns)
	sort.Float64s(sorted)

	// 95% VaR = 하위 5% 백분위수
	idx := int(math.Floor((1 - confidence) * float64(len(sorted))))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}

	res.VaR = lossOf(sorted[idx])
	res.CVaR = tailLoss(sorted, idx)
	return res
}

// tailLoss is the mean of sorted[0..idx] expressed as a positive loss
func tailLoss(sorted []float64, idx int) float64 {
	var sum float64
	for i := 0; i <= idx; i++ {
		sum += sorted[i]
	}
	return lossOf(sum / float64(idx+1))
}

func lossOf(r float64) float64 {
	if r < 0 {
		return -r
	}
	return 0
}

// Percentile interpolates the p-th percentile (0..100) of sorted values
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}

	idx := p / 100.0 * float64(len(sorted)-1)
	lower := int(math.Floor(idx))
	upper := lower + 1
	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	// 선형 보간
	weight := idx - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stdDev is the sample standard deviation
func stdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	var sumSq float64
	for _, v := range values {
		sumSq += (v - m) * (v - m)
	}
	return math.Sqrt(sumSq / float64(len(values)-1))
}
