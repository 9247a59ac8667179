// Package report turns screening rows, ledgers and sweep results into
// console tables and CSV files.
package report

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wonny/aegis-ashare/internal/contracts"
	"github.com/wonny/aegis-ashare/internal/s2_signals"
	"github.com/wonny/aegis-ashare/pkg/nullable"
)

// DateLayout is the date format used in every output
const DateLayout = "2006-01-02"

// Row is one line of the daily screening report
// ⭐ SSOT: 리포트 컬럼 순서는 Header()와 Row.Cells()에서만
type Row struct {
	Date     time.Time
	Code     string
	Name     string
	Industry string
	Area     string
	Type     string

	Close      nullable.Float
	DeepBottom string // S1 大底
	Pullback   string // S2 波段
	MainWave   string // S3 主升浪
	BBI        nullable.Float
	MA60       nullable.Float
	Volatility nullable.Float
}

// Header returns the report column names
func Header() []string {
	return []string{
		"日期", "股票代码", "股票简称", "主营行业", "地区", "类型",
		"收盘价", "策略1_大底", "策略2_波段", "策略3_主升浪",
		"BBI", "MA60", "波动率(%)",
	}
}

// Cells renders the row in Header() order
func (r Row) Cells() []string {
	return []string{
		r.Date.Format(DateLayout), r.Code, r.Name, r.Industry, r.Area, r.Type,
		fixed2(r.Close), r.DeepBottom, r.Pullback, r.MainWave,
		fixed2(r.BBI), fixed2(r.MA60), fixed2(r.Volatility),
	}
}

// BuildRows joins screening rows with universe metadata and sorts by date, then code
func BuildRows(screen []s2_signals.ScreenRow, universe *contracts.Universe) []Row {
	rows := make([]Row, 0, len(screen))
	for _, s := range screen {
		var meta contracts.StockMeta
		if universe != nil {
			meta = universe.Meta[s.Ticker]
		}
		rows = append(rows, Row{
			Date:       s.Date,
			Code:       s.Ticker,
			Name:       meta.Name,
			Industry:   meta.Industry,
			Area:       meta.Area,
			Type:       meta.Type,
			Close:      s.Close,
			DeepBottom: s2_signals.StreakLabel(s2_signals.MarkerYes, s.DeepBottom),
			Pullback:   s2_signals.StreakLabel(s2_signals.MarkerYes, s.Pullback),
			MainWave:   s2_signals.StreakLabel(s2_signals.MarkerHot, s.MainWave),
			BBI:        s.BBI,
			MA60:       s.MA60,
			Volatility: s.Volatility,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].Date.Equal(rows[j].Date) {
			return rows[i].Date.Before(rows[j].Date)
		}
		return rows[i].Code < rows[j].Code
	})
	return rows
}

// IndustryCount is one slice of an industry distribution
type IndustryCount struct {
	Industry string
	Count    int
}

// Summary counts triggered signals across the report
type Summary struct {
	Rows       int
	Tickers    int
	DeepBottom int
	Pullback   int
	MainWave   int

	DeepBottomIndustries []IndustryCount
	MainWaveIndustries   []IndustryCount
}

// Summarize counts signal rows and the industry spread of S1 and S3
func Summarize(rows []Row) Summary {
	s := Summary{Rows: len(rows)}
	tickers := make(map[string]struct{})
	deep := make(map[string]int)
	hot := make(map[string]int)

	for _, r := range rows {
		tickers[r.Code] = struct{}{}
		if r.DeepBottom != "" {
			s.DeepBottom++
			if r.Industry != "" {
				deep[r.Industry]++
			}
		}
		if r.Pullback != "" {
			s.Pullback++
		}
		if r.MainWave != "" {
			s.MainWave++
			if r.Industry != "" {
				hot[r.Industry]++
			}
		}
	}

	s.Tickers = len(tickers)
	s.DeepBottomIndustries = distribution(deep)
	s.MainWaveIndustries = distribution(hot)
	return s
}

// distribution sorts by count desc, then industry name
func distribution(counts map[string]int) []IndustryCount {
	out := make([]IndustryCount, 0, len(counts))
	for industry, n := range counts {
		out = append(out, IndustryCount{Industry: industry, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Industry < out[j].Industry
	})
	return out
}

// fixed2 rounds to 2 places; undefined renders empty
func fixed2(f nullable.Float) string {
	if !f.Valid {
		return ""
	}
	return decimal.NewFromFloat(f.V).StringFixed(2)
}

func float2(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}
