package s2_signals

import (
	"github.com/wonny/aegis-ashare/internal/contracts"
	"github.com/wonny/aegis-ashare/internal/indicator"
	"github.com/wonny/aegis-ashare/pkg/nullable"
)

// MainWave holds the main-wave (主升浪) series of one ticker
type MainWave struct {
	MA5    indicator.Series
	MA10   indicator.Series
	MA20   indicator.Series
	MA60   indicator.Series
	VolMA5 indicator.Series
	Angle  indicator.Series // MA20 기울기 (도)
	DIF    indicator.Series
	DEA    indicator.Series

	Trend   indicator.Flags
	Power   indicator.Flags
	Volume  indicator.Flags
	MACD    indicator.Flags
	BaseBuy indicator.Flags // 기울기 조건 제외
	Sell    indicator.Flags
}

// MainWaveCalculator derives main-wave buy/sell flags
// ⭐ SSOT: 주升浪 매수/매도 조건은 여기서만
type MainWaveCalculator struct {
	mode indicator.Mode
}

// NewMainWaveCalculator creates a calculator using the given window mode
func NewMainWaveCalculator(mode indicator.Mode) *MainWaveCalculator {
	return &MainWaveCalculator{mode: mode}
}

// Calculate computes all main-wave series for a ticker
func (c *MainWaveCalculator) Calculate(cols Columns) MainWave {
	n := cols.Len()
	closes := cols.Close
	prevClose := indicator.Shift(closes, 1)

	mw := MainWave{
		MA5:    c.mode.Mean(closes, 5),
		MA10:   c.mode.Mean(closes, 10),
		MA20:   c.mode.Mean(closes, 20),
		MA60:   c.mode.Mean(closes, 60),
		VolMA5: c.mode.Mean(cols.Volume, 5),
	}
	mw.Angle = indicator.Angle(mw.MA20)
	mw.DIF, mw.DEA = indicator.MACD(closes, 12, 26, 9)

	prevMA10 := indicator.Shift(mw.MA10, 1)
	prevMA60 := indicator.Shift(mw.MA60, 1)

	mw.Trend = make(indicator.Flags, n)
	mw.Power = make(indicator.Flags, n)
	mw.Volume = make(indicator.Flags, n)
	mw.MACD = make(indicator.Flags, n)
	mw.BaseBuy = make(indicator.Flags, n)
	mw.Sell = make(indicator.Flags, n)

	for i := 0; i < n; i++ {
		mw.Trend[i] = nullable.All(
			closes[i].Gt(mw.MA10[i]),
			mw.MA5[i].Gt(mw.MA20[i]),
			mw.MA20[i].Gt(mw.MA60[i]),
			mw.MA60[i].Gt(prevMA60[i]),
		)
		mw.Power[i] = closes[i].Div(prevClose[i]).GtConst(1.03).And(closes[i].Gt(cols.Open[i]))
		mw.Volume[i] = cols.Volume[i].Gt(mw.VolMA5[i])
		mw.MACD[i] = mw.DIF[i].GtConst(0).And(mw.DIF[i].Gt(mw.DEA[i]))
		mw.BaseBuy[i] = nullable.All(mw.Trend[i], mw.Power[i], mw.Volume[i], mw.MACD[i])

		// 10일선 하향 돌파 또는 20일선 꺾임 + 이탈
		crossDown := prevClose[i].Ge(prevMA10[i]).And(closes[i].Lt(mw.MA10[i]))
		rollOver := mw.Angle[i].LtConst(0).And(closes[i].Lt(mw.MA20[i]))
		mw.Sell[i] = crossDown.Or(rollOver)
	}

	return mw
}

// Hot reports BaseBuy with the slope above threshold (the 🔥 report signal)
func (mw MainWave) Hot(threshold float64) []bool {
	out := make([]bool, len(mw.BaseBuy))
	for i, b := range mw.BaseBuy {
		out[i] = b.And(mw.Angle[i].GtConst(threshold)).IsTrue()
	}
	return out
}

// SignalRows builds one immutable SignalRow per bar
func (c *MainWaveCalculator) SignalRows(cols Columns) ([]contracts.SignalRow, error) {
	if err := requireHistory(cols, MainWaveMinHistory); err != nil {
		return nil, err
	}

	mw := c.Calculate(cols)
	rows := make([]contracts.SignalRow, cols.Len())
	for i := range rows {
		rows[i] = contracts.SignalRow{
			Ticker:  cols.Ticker,
			Date:    cols.Dates[i],
			Open:    cols.Open[i],
			Close:   cols.Close[i],
			Rank:    mw.Angle[i],
			BaseBuy: mw.BaseBuy[i].IsTrue(),
			Sell:    mw.Sell[i].IsTrue(),
		}
	}
	return rows, nil
}
