package contracts

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var tickerPattern = regexp.MustCompile(`^[A-Z][A-Z0-9.\-]{0,9}$`)

// NormalizeTicker trims and upper-cases a ticker symbol ("brk.b" -> "BRK.B")
func NormalizeTicker(s string) (string, error) {
	ticker := strings.ToUpper(strings.TrimSpace(s))
	if !tickerPattern.MatchString(ticker) {
		return "", fmt.Errorf("%w: ticker %q", ErrInvalidInput, s)
	}
	return ticker, nil
}

// Price is the latest stored quote of a ticker
type Price struct {
	Ticker        string    `json:"ticker"`
	Price         float64   `json:"price"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"changePercent"`
	AsOf          time.Time `json:"asOf"`
}

// IsUp reports a non-negative daily change
func (p *Price) IsUp() bool {
	return p.Change >= 0
}
