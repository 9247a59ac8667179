package timeline

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/aegis-ashare/internal/contracts"
	"github.com/wonny/aegis-ashare/pkg/nullable"
)

func d(day int) time.Time {
	return time.Date(2024, 3, day, 0, 0, 0, 0, time.UTC)
}

func row(ticker string, day int, rank nullable.Float) contracts.SignalRow {
	return contracts.SignalRow{Ticker: ticker, Date: d(day), Rank: rank}
}

func TestBuild_Order(t *testing.T) {
	perTicker := map[string][]contracts.SignalRow{
		"600000": {row("600000", 1, nullable.Some(10)), row("600000", 2, nullable.None)},
		"000001": {row("000001", 1, nullable.Some(30)), row("000001", 2, nullable.Some(5))},
		"000002": {row("000002", 1, nullable.Some(30)), row("000002", 2, nullable.None)},
	}

	tl := Build(perTicker, d(1), d(2))
	require.Equal(t, 6, tl.Len())

	got := make([]string, 0, tl.Len())
	for _, r := range tl.Rows {
		got = append(got, r.Date.Format("02")+":"+r.Ticker)
	}
	assert.Equal(t, []string{
		"01:000001", // rank 30, ticker 오름차순
		"01:000002",
		"01:600000", // rank 10
		"02:000001", // rank 5
		"02:000002", // 미정의 rank
		"02:600000",
	}, got)
	assert.Equal(t, []time.Time{d(1), d(2)}, tl.Dates())
}

func TestBuild_DateRangeInclusive(t *testing.T) {
	perTicker := map[string][]contracts.SignalRow{
		"600000": {
			row("600000", 1, nullable.Some(1)),
			row("600000", 2, nullable.Some(1)),
			row("600000", 3, nullable.Some(1)),
			row("600000", 4, nullable.Some(1)),
		},
	}

	tl := Build(perTicker, d(2), d(3))
	require.Equal(t, 2, tl.Len())
	assert.Equal(t, d(2), tl.Rows[0].Date)
	assert.Equal(t, d(3), tl.Rows[1].Date)

	assert.Zero(t, Build(perTicker, d(10), d(20)).Len())
}

func TestBuild_Deterministic(t *testing.T) {
	rows := make([]contracts.SignalRow, 0)
	tickers := []string{"600000", "000001", "300750", "688001", "002594"}
	for day := 1; day <= 10; day++ {
		for i, tk := range tickers {
			rank := nullable.Some(float64((day * i) % 3))
			if i == 2 {
				rank = nullable.None
			}
			rows = append(rows, row(tk, day, rank))
		}
	}

	split := func(seed int64) map[string][]contracts.SignalRow {
		shuffled := append([]contracts.SignalRow(nil), rows...)
		rand.New(rand.NewSource(seed)).Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		out := map[string][]contracts.SignalRow{}
		for _, r := range shuffled {
			out[r.Ticker] = append(out[r.Ticker], r)
		}
		return out
	}

	first := Build(split(1), d(1), d(10))
	for seed := int64(2); seed < 6; seed++ {
		assert.Equal(t, first.Rows, Build(split(seed), d(1), d(10)).Rows)
	}
}
