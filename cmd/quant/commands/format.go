package commands

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

const dateLayout = "2006-01-02"

// PrintHeader prints a formatted command header
func PrintHeader(title string, start, end time.Time) {
	fmt.Println()
	PrintDoubleSeparator()
	fmt.Printf("  %s\n", title)
	PrintSeparator()
	if !start.IsZero() {
		fmt.Printf("  Period    : %s ~ %s\n", start.Format(dateLayout), end.Format(dateLayout))
	}
	fmt.Printf("  Started   : %s\n", time.Now().Format("2006-01-02 15:04:05"))
	PrintSeparator()
}

// PrintSeparator prints a visual separator
func PrintSeparator() {
	fmt.Println("───────────────────────────────────────────────────────────")
}

// PrintDoubleSeparator prints a double-line separator
func PrintDoubleSeparator() {
	fmt.Println("═══════════════════════════════════════════════════════════")
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	fmt.Println()
	fmt.Printf("⚠️  %s\n", message)
	fmt.Println()
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	fmt.Printf("✅ %s\n", message)
}

// PrintInfo prints an info message
func PrintInfo(message string) {
	fmt.Printf("ℹ️  %s\n", message)
}

// PrintKeyValue prints key-value pairs
func PrintKeyValue(key string, value string, keyWidth int) {
	fmt.Printf("   %-*s : %s\n", keyWidth, key, value)
}

// ═══════════════════════════════════════════════════════════
// Flag parsing
// ═══════════════════════════════════════════════════════════

// parseDate accepts YYYY-MM-DD or YYYYMMDD
func parseDate(flag, s string) (time.Time, error) {
	for _, layout := range []string{dateLayout, "20060102"} {
		if t, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("--%s: invalid date %q (want YYYY-MM-DD)", flag, s)
}

// parseRange parses --from/--to; an empty --to means --from
func parseRange(from, to string) (time.Time, time.Time, error) {
	start, err := parseDate("from", from)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if to == "" {
		return start, start, nil
	}
	end, err := parseDate("to", to)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

// splitList splits on ASCII or full-width commas and drops empty items
func splitList(s string) []string {
	s = strings.ReplaceAll(s, "，", ",")
	out := make([]string, 0)
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// percentToFraction converts a percent (20) to a fraction (0.20) without float noise
func percentToFraction(flag, s string) (float64, error) {
	d, err := decimal.NewFromString(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if err != nil {
		return 0, fmt.Errorf("--%s: invalid number %q", flag, s)
	}
	return d.Div(decimal.NewFromInt(100)).InexactFloat64(), nil
}

func parsePercentList(flag, s string) ([]float64, error) {
	parts := splitList(s)
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := percentToFraction(flag, p)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func parseFloatList(flag, s string) ([]float64, error) {
	parts := splitList(s)
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("--%s: invalid number %q", flag, p)
		}
		out = append(out, v)
	}
	return out, nil
}

func parseIntList(flag, s string) ([]int, error) {
	parts := splitList(s)
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("--%s: invalid integer %q", flag, p)
		}
		out = append(out, v)
	}
	return out, nil
}

// formatPercent renders a fraction as a percentage (0.2 → "20")
func formatPercent(fraction float64) string {
	return decimal.NewFromFloat(fraction).Mul(decimal.NewFromInt(100)).String()
}

// fixedPercent renders a fraction as a 2-place percentage (0.12345 → "12.35")
func fixedPercent(fraction float64) string {
	return decimal.NewFromFloat(fraction).Mul(decimal.NewFromInt(100)).StringFixed(2)
}
