package s2_signals

import "strconv"

// Report markers
const (
	MarkerYes = "Y"
	MarkerHot = "🔥"
)

// Streak returns the run length of consecutive true flags ending at each index
func Streak(flags []bool) []int {
	out := make([]int, len(flags))
	for i, f := range flags {
		if !f {
			continue
		}
		out[i] = 1
		if i > 0 {
			out[i] += out[i-1]
		}
	}
	return out
}

// StreakLabel renders "", "Y" or "Y x3"
func StreakLabel(marker string, run int) string {
	switch {
	case run <= 0:
		return ""
	case run == 1:
		return marker
	default:
		return marker + " x" + strconv.Itoa(run)
	}
}
