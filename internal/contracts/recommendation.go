package contracts

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Period is the cadence a recommendation batch was generated for
type Period string

const (
	PeriodDaily  Period = "daily"
	PeriodWeekly Period = "weekly"
)

// ParsePeriod validates a period path segment
func ParsePeriod(s string) (Period, error) {
	switch Period(strings.ToLower(strings.TrimSpace(s))) {
	case PeriodDaily:
		return PeriodDaily, nil
	case PeriodWeekly:
		return PeriodWeekly, nil
	}
	return "", fmt.Errorf("%w: period %q (valid: daily, weekly)", ErrInvalidInput, s)
}

// Action is the stored signal of a recommendation row
type Action string

const (
	ActionBuy  Action = "buy"
	ActionHold Action = "hold"
	ActionSell Action = "sell"
)

// rank orders actions for display: buy, hold, sell, then anything unexpected
func (a Action) rank() int {
	switch a {
	case ActionBuy:
		return 0
	case ActionHold:
		return 1
	case ActionSell:
		return 2
	}
	return 3
}

// Recommendation is one stored buy/sell/hold signal for a stock on a date
type Recommendation struct {
	ID            int64     `json:"id"`
	Ticker        string    `json:"ticker"`
	CompanyName   string    `json:"companyName"`
	Action        Action    `json:"action"`
	Confidence    float64   `json:"confidence"`
	PriceAtSignal float64   `json:"priceAtSignal"`
	TargetPrice   *float64  `json:"targetPrice"`
	Rationale     string    `json:"rationale"`
	SignalDate    time.Time `json:"signalDate"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Upside returns the target distance from the signal price in percent
func (r *Recommendation) Upside() (float64, bool) {
	if r.TargetPrice == nil || r.PriceAtSignal <= 0 {
		return 0, false
	}
	return (*r.TargetPrice - r.PriceAtSignal) / r.PriceAtSignal * 100, true
}

// RecommendationList is the latest batch for one period
type RecommendationList struct {
	Period     Period           `json:"period"`
	SignalDate time.Time        `json:"signalDate"`
	Count      int              `json:"count"`
	Items      []Recommendation `json:"items"`
}

// NewRecommendationList sorts items and never leaves Items nil
func NewRecommendationList(period Period, date time.Time, items []Recommendation) *RecommendationList {
	if items == nil {
		items = []Recommendation{}
	}
	SortRecommendations(items)
	return &RecommendationList{
		Period:     period,
		SignalDate: date,
		Count:      len(items),
		Items:      items,
	}
}

// SortRecommendations orders by action, confidence desc, then ticker
func SortRecommendations(items []Recommendation) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.Action.rank() != b.Action.rank() {
			return a.Action.rank() < b.Action.rank()
		}
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		return a.Ticker < b.Ticker
	})
}
