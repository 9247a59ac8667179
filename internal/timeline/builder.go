// Package timeline merges per-ticker signal rows into one ordered sequence.
package timeline

import (
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/wonny/aegis-ashare/internal/contracts"
)

// Timeline is the read-only, cross-sectional sequence the engine replays
type Timeline struct {
	Start time.Time
	End   time.Time
	Rows  []contracts.SignalRow
}

// Build restricts every ticker's rows to [start, end] and sorts them by date
// ascending, rank descending (undefined last), then ticker ascending.
// ⭐ SSOT: S2 → S4 시간순 병합은 여기서만
func Build(perTicker map[string][]contracts.SignalRow, start, end time.Time) *Timeline {
	tickers := lo.Keys(perTicker)
	sort.Strings(tickers)

	tl := &Timeline{
		Start: start,
		End:   end,
		Rows: lo.FlatMap(tickers, func(ticker string, _ int) []contracts.SignalRow {
			return lo.Filter(perTicker[ticker], func(r contracts.SignalRow, _ int) bool {
				return !r.Date.Before(start) && !r.Date.After(end)
			})
		}),
	}

	sort.Slice(tl.Rows, func(i, j int) bool {
		return Less(tl.Rows[i], tl.Rows[j])
	})
	return tl
}

// Less is the total order of the timeline
func Less(a, b contracts.SignalRow) bool {
	if !a.Date.Equal(b.Date) {
		return a.Date.Before(b.Date)
	}
	if a.Rank.Valid != b.Rank.Valid {
		return a.Rank.Valid // 미정의 rank는 당일 마지막
	}
	if a.Rank.Valid && a.Rank.V != b.Rank.V {
		return a.Rank.V > b.Rank.V
	}
	return a.Ticker < b.Ticker
}

// Len returns the number of rows
func (t *Timeline) Len() int {
	return len(t.Rows)
}

// Dates returns the distinct trading dates in order
func (t *Timeline) Dates() []time.Time {
	out := make([]time.Time, 0)
	for i, r := range t.Rows {
		if i == 0 || !r.Date.Equal(t.Rows[i-1].Date) {
			out = append(out, r.Date)
		}
	}
	return out
}
