package s0_data

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/wonny/aegis-ashare/internal/contracts"
	"github.com/wonny/aegis-ashare/pkg/logger"
	"github.com/wonny/aegis-ashare/pkg/nullable"
)

// ErrMalformedBar marks a file holding a row with no usable date or price
var ErrMalformedBar = errors.New("malformed bar")

// ErrMissingColumn marks a file without a date or close column
var ErrMissingColumn = errors.New("missing required column")

// Column aliases: history_data 다운로더의 중국어 헤더 + 영문 헤더
var columnAliases = map[string]string{
	"日期":         "date",
	"date":       "date",
	"trade_date": "date",
	"开盘":         "open",
	"open":       "open",
	"最高":         "high",
	"high":       "high",
	"最低":         "low",
	"low":        "low",
	"收盘":         "close",
	"close":      "close",
	"成交量":        "volume",
	"volume":     "volume",
	"vol":        "volume",
}

var dateLayouts = []string{
	"2006-01-02",
	"20060102",
	"2006/01/02",
	"2006-01-02 15:04:05",
}

// CSVSource reads one <ticker>.csv per ticker from a directory
// ⭐ SSOT: CSV 일봉 로딩은 여기서만
type CSVSource struct {
	dir    string
	logger *logger.Logger
}

// NewCSVSource creates a source over dir
func NewCSVSource(dir string, log *logger.Logger) *CSVSource {
	return &CSVSource{
		dir:    dir,
		logger: log.WithField("module", "csv_source"),
	}
}

// ListTickers returns the file stems of every *.csv in the directory, sorted
func (s *CSVSource) ListTickers(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read history dir %s: %w", s.dir, err)
	}

	tickers := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			continue
		}
		tickers = append(tickers, strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())))
	}
	sort.Strings(tickers)

	return tickers, nil
}

// LoadBars reads <dir>/<ticker>.csv
func (s *CSVSource) LoadBars(ctx context.Context, ticker string) ([]contracts.Bar, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Join(s.dir, ticker+".csv"))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", ticker, err)
	}
	defer f.Close()

	bars, dups, err := ReadBars(f, contracts.NormalizeTicker(ticker))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", ticker, err)
	}
	if dups > 0 {
		s.logger.WithFields(map[string]interface{}{
			"ticker":     ticker,
			"duplicates": dups,
		}).Warn("Dropped duplicate dates")
	}

	return bars, nil
}

// ReadBars parses a history CSV into bars sorted by date. Non-numeric cells
// become undefined. Later rows repeating a date are dropped and counted.
func ReadBars(r io.Reader, ticker string) ([]contracts.Bar, int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		// utf-8-sig BOM
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if col, ok := columnAliases[strings.ToLower(h)]; ok {
			index[col] = i
		}
	}
	for _, required := range []string{"date", "close"} {
		if _, ok := index[required]; !ok {
			return nil, 0, fmt.Errorf("%w: %s", ErrMissingColumn, required)
		}
	}

	cell := func(rec []string, col string) string {
		i, ok := index[col]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	bars := make([]contracts.Bar, 0, 1024)
	line := 1
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, 0, fmt.Errorf("line %d: %w", line, err)
		}

		bar := contracts.Bar{
			Ticker: ticker,
			Date:   parseDate(cell(rec, "date")),
			Open:   nullable.Parse(cell(rec, "open")),
			High:   nullable.Parse(cell(rec, "high")),
			Low:    nullable.Parse(cell(rec, "low")),
			Close:  nullable.Parse(cell(rec, "close")),
			Volume: nullable.Parse(cell(rec, "volume")),
		}
		if !bar.Usable() {
			return nil, 0, fmt.Errorf("%w: line %d", ErrMalformedBar, line)
		}
		bars = append(bars, bar)
	}

	sorted, dups := SortAndDedupe(bars)
	return sorted, dups, nil
}

// SortAndDedupe orders bars by date and keeps the first bar seen for each date
func SortAndDedupe(bars []contracts.Bar) ([]contracts.Bar, int) {
	sort.SliceStable(bars, func(i, j int) bool {
		return bars[i].Date.Before(bars[j].Date)
	})

	out := bars[:0]
	dups := 0
	for i, b := range bars {
		if i > 0 && b.Date.Equal(bars[i-1].Date) {
			dups++
			continue
		}
		out = append(out, b)
	}
	return out, dups
}

func parseDate(s string) time.Time {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		}
	}
	return time.Time{}
}
