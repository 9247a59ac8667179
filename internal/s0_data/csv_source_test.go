package s0_data

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/aegis-ashare/pkg/logger"
)

func TestReadBars(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantLen  int
		wantDups int
		wantErr  error
	}{
		{
			name:    "chinese header with bom",
			input:   "\ufeff日期,开盘,最高,最低,收盘,成交量\n2024-01-03,10,11,9,10.5,1000\n2024-01-02,9,10,8,9.5,900\n",
			wantLen: 2,
		},
		{
			name:    "english header compact dates",
			input:   "trade_date,open,high,low,close,vol\n20240102,9,10,8,9.5,900\n",
			wantLen: 1,
		},
		{
			name:     "duplicate dates keep first",
			input:    "date,close\n2024-01-02,1\n2024-01-02,2\n2024-01-03,3\n",
			wantLen:  2,
			wantDups: 1,
		},
		{
			name:    "missing close column",
			input:   "date,open\n2024-01-02,1\n",
			wantErr: ErrMissingColumn,
		},
		{
			name:    "unparseable date",
			input:   "date,close\nnot-a-date,1\n",
			wantErr: ErrMalformedBar,
		},
		{
			name:    "no price at all",
			input:   "date,open,close\n2024-01-02,,\n",
			wantErr: ErrMalformedBar,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bars, dups, err := ReadBars(strings.NewReader(tt.input), "600000")
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, bars, tt.wantLen)
			assert.Equal(t, tt.wantDups, dups)
			for i := 1; i < len(bars); i++ {
				assert.True(t, bars[i-1].Date.Before(bars[i].Date))
			}
		})
	}
}

func TestReadBars_Values(t *testing.T) {
	input := "日期,开盘,最高,最低,收盘,成交量\n2024-01-02,9,10,8,9.5,abc\n2024-01-02,1,1,1,1,1\n"
	bars, dups, err := ReadBars(strings.NewReader(input), "000001")
	require.NoError(t, err)
	require.Len(t, bars, 1)
	assert.Equal(t, 1, dups)

	b := bars[0]
	assert.Equal(t, "000001", b.Ticker)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), b.Date)
	assert.Equal(t, 9.5, b.Close.V)
	assert.Equal(t, 9.0, b.Open.V)
	assert.False(t, b.Volume.Valid, "non-numeric volume becomes undefined")
}

func TestCSVSource(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	write("600000.csv", "date,close\n2024-01-02,10\n2024-01-03,11\n")
	write("000001.csv", "date,close\n2024-01-02,5\n")
	write("notes.txt", "ignored")

	src := NewCSVSource(dir, logger.Nop())
	ctx := context.Background()

	tickers, err := src.ListTickers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"000001", "600000"}, tickers)

	bars, err := src.LoadBars(ctx, "600000")
	require.NoError(t, err)
	assert.Len(t, bars, 2)

	_, err = src.LoadBars(ctx, "999999")
	assert.Error(t, err)
}

func TestCSVSource_MissingDir(t *testing.T) {
	src := NewCSVSource(filepath.Join(t.TempDir(), "nope"), logger.Nop())
	_, err := src.ListTickers(context.Background())
	assert.Error(t, err)
}
