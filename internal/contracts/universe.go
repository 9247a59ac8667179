package contracts

// Exclusion reasons recorded in Universe.Excluded
const (
	ExcludeInsufficientHistory = "insufficient-history"
	ExcludeMalformed           = "malformed"
	ExcludeLoadError           = "load-error"
	ExcludeFiltered            = "filtered"
)

// StockMeta is optional descriptive data for reports
type StockMeta struct {
	Name     string `json:"name"`
	Industry string `json:"industry"`
	Area     string `json:"area"`
	Type     string `json:"type"`
}

// Universe is the ticker set passed from S1 to S2
// ⭐ SSOT: S1 → S2 종목 전달
type Universe struct {
	Stocks   []string             `json:"stocks"`
	Meta     map[string]StockMeta `json:"meta,omitempty"`
	Excluded map[string]string    `json:"excluded"` // 제외 종목: 사유
}

// NewUniverse creates an empty universe
func NewUniverse() *Universe {
	return &Universe{
		Stocks:   make([]string, 0),
		Meta:     make(map[string]StockMeta),
		Excluded: make(map[string]string),
	}
}

// Contains checks if a stock code is in the universe
func (u *Universe) Contains(code string) bool {
	for _, stock := range u.Stocks {
		if stock == code {
			return true
		}
	}
	return false
}

// IsExcluded checks if a stock code is excluded with reason
func (u *Universe) IsExcluded(code string) (bool, string) {
	reason, exists := u.Excluded[code]
	return exists, reason
}

// Exclude records a reason, keeping the first one seen
func (u *Universe) Exclude(code, reason string) {
	if _, exists := u.Excluded[code]; !exists {
		u.Excluded[code] = reason
	}
}

// Count returns the number of candidate stocks
func (u *Universe) Count() int {
	return len(u.Stocks)
}
