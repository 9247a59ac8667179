package s1_universe

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/wonny/aegis-ashare/internal/contracts"
)

// stock list 헤더 별칭 (stock_list.csv 다운로더 호환)
var metaAliases = map[string]string{
	"code":     "code",
	"ts_code":  "code",
	"symbol":   "code",
	"代码":       "code",
	"name":     "name",
	"名称":       "name",
	"industry": "industry",
	"行业":       "industry",
	"area":     "area",
	"地区":       "area",
	"type":     "type",
	"market":   "type",
	"板块":       "type",
}

// LoadStockList reads the universe metadata CSV at path
func LoadStockList(path string) (map[string]contracts.StockMeta, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open stock list: %w", err)
	}
	defer f.Close()

	return ReadStockList(f)
}

// ReadStockList parses code,name,industry,area,type rows keyed by the zero-padded code.
// Exchange suffixes such as ".SH" are stripped.
func ReadStockList(r io.Reader) (map[string]contracts.StockMeta, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if col, ok := metaAliases[strings.ToLower(h)]; ok {
			if _, seen := index[col]; !seen {
				index[col] = i
			}
		}
	}
	if _, ok := index["code"]; !ok {
		return nil, fmt.Errorf("stock list: missing code column")
	}

	cell := func(rec []string, col string) string {
		i, ok := index[col]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	out := make(map[string]contracts.StockMeta)
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read stock list: %w", err)
		}

		code := cell(rec, "code")
		if dot := strings.IndexByte(code, '.'); dot > 0 {
			code = code[:dot]
		}
		code = contracts.NormalizeTicker(code)
		if code == "" {
			continue
		}
		out[code] = contracts.StockMeta{
			Name:     cell(rec, "name"),
			Industry: cell(rec, "industry"),
			Area:     cell(rec, "area"),
			Type:     cell(rec, "type"),
		}
	}

	return out, nil
}
