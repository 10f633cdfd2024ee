package contracts

import (
	"encoding/json"
	"sort"
	"time"
)

// PerformancePoint is one date of the strategy vs benchmark comparison
type PerformancePoint struct {
	Date      string  `json:"date"` // YYYY-MM-DD
	Strategy  float64 `json:"strategy"`
	Benchmark float64 `json:"benchmark"`
}

// PerformancePayload is a precomputed comparison series read from storage
type PerformancePayload struct {
	ID            int64              `json:"id"`
	GeneratedAt   time.Time          `json:"generatedAt"`
	StrategyName  string             `json:"strategyName"`
	BenchmarkName string             `json:"benchmarkName"`
	Series        []PerformancePoint `json:"series"`
	Summary       json.RawMessage    `json:"summary"`
}

// storedPoint accepts both spellings written by the pipeline:
// {date, strategy, benchmark} and the older {date, strategy_value, benchmark_value}
type storedPoint struct {
	Date           string   `json:"date"`
	Strategy       *float64 `json:"strategy"`
	Benchmark      *float64 `json:"benchmark"`
	StrategyValue  *float64 `json:"strategy_value"`
	BenchmarkValue *float64 `json:"benchmark_value"`
}

func firstValue(vals ...*float64) (float64, bool) {
	for _, v := range vals {
		if v != nil {
			return *v, true
		}
	}
	return 0, false
}

// DecodeSeries converts the stored jsonb series into API points sorted by date.
// Points without a date or without both values are dropped and counted in skipped.
func DecodeSeries(raw []byte) (points []PerformancePoint, skipped int, err error) {
	points = []PerformancePoint{}
	if len(raw) == 0 {
		return points, 0, nil
	}

	var stored []storedPoint
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, 0, err
	}

	for _, s := range stored {
		strategy, okS := firstValue(s.Strategy, s.StrategyValue)
		benchmark, okB := firstValue(s.Benchmark, s.BenchmarkValue)
		if s.Date == "" || !okS || !okB {
			skipped++
			continue
		}
		points = append(points, PerformancePoint{
			Date:      s.Date,
			Strategy:  strategy,
			Benchmark: benchmark,
		})
	}

	// ISO dates sort lexicographically
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Date < points[j].Date
	})
	return points, skipped, nil
}

// Excess returns strategy minus benchmark at the last point
func (p *PerformancePayload) Excess() (float64, bool) {
	if len(p.Series) == 0 {
		return 0, false
	}
	last := p.Series[len(p.Series)-1]
	return last.Strategy - last.Benchmark, true
}
