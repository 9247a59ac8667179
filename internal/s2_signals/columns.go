package s2_signals

import (
	"errors"
	"fmt"
	"time"

	"github.com/wonny/aegis-ashare/internal/contracts"
	"github.com/wonny/aegis-ashare/internal/indicator"
	"github.com/wonny/aegis-ashare/pkg/nullable"
)

// ErrInsufficientHistory marks a ticker with fewer bars than a signal needs
var ErrInsufficientHistory = errors.New("insufficient history")

// Minimum bars per signal family
const (
	MainWaveMinHistory   = 60
	DeepBottomMinHistory = 500
)

// Columns is one ticker's bars split into aligned series
type Columns struct {
	Ticker string
	Dates  []time.Time
	Open   indicator.Series
	High   indicator.Series
	Low    indicator.Series
	Close  indicator.Series
	Volume indicator.Series
}

// ColumnsOf splits date-ordered bars into columns
func ColumnsOf(ticker string, bars []contracts.Bar) Columns {
	n := len(bars)
	cols := Columns{
		Ticker: ticker,
		Dates:  make([]time.Time, n),
		Open:   make(indicator.Series, n),
		High:   make(indicator.Series, n),
		Low:    make(indicator.Series, n),
		Close:  make(indicator.Series, n),
		Volume: make(indicator.Series, n),
	}
	for i, b := range bars {
		cols.Dates[i] = b.Date
		cols.Open[i] = b.Open
		cols.High[i] = b.High
		cols.Low[i] = b.Low
		cols.Close[i] = b.Close
		cols.Volume[i] = b.Volume
	}
	return cols
}

// Len returns the number of bars
func (c Columns) Len() int {
	return len(c.Dates)
}

func requireHistory(c Columns, min int) error {
	if c.Len() < min {
		return fmt.Errorf("%w: %d < %d bars", ErrInsufficientHistory, c.Len(), min)
	}
	return nil
}

// where picks a when cond is true, b when false; unknown stays undefined
func where(cond nullable.Bool, a, b nullable.Float) nullable.Float {
	switch cond {
	case nullable.True:
		return a
	case nullable.False:
		return b
	default:
		return nullable.None
	}
}
