package contracts

import "time"

// DataQualitySnapshot summarises a bar source
// ⭐ SSOT: S0 → S1 데이터 품질 정보 전달
type DataQualitySnapshot struct {
	CheckedAt      time.Time          `json:"checked_at"`
	TotalTickers   int                `json:"total_tickers"`
	UsableTickers  int                `json:"usable_tickers"`
	TotalBars      int                `json:"total_bars"`
	MalformedBars  int                `json:"malformed_bars"`
	FirstDate      time.Time          `json:"first_date"`
	LastDate       time.Time          `json:"last_date"`
	HistoryBuckets map[int]int        `json:"history_buckets"` // 최소 봉 수 → 종목 수
	Coverage       map[string]float64 `json:"coverage"`        // 컬럼별 유효 비율
	Failed         map[string]string  `json:"failed,omitempty"`
	QualityScore   float64            `json:"quality_score"` // 0.0 ~ 1.0
}

// IsValid checks if the snapshot meets minimum requirements
func (d *DataQualitySnapshot) IsValid() bool {
	return d.QualityScore >= 0.7 && d.UsableTickers > 0
}

// CoverageRate returns the average coverage rate across all columns
func (d *DataQualitySnapshot) CoverageRate() float64 {
	if len(d.Coverage) == 0 {
		return 0.0
	}

	total := 0.0
	for _, rate := range d.Coverage {
		total += rate
	}

	return total / float64(len(d.Coverage))
}
