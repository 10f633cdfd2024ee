package contracts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeSeries(t *testing.T) {
	raw := []byte(`[
		{"date": "2026-02-01", "strategy": 112.5, "benchmark": 104.0},
		{"date": "2026-01-01", "strategy": 100, "benchmark": 100}
	]`)

	points, skipped, err := DecodeSeries(raw)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Zero(t, skipped)

	assert.Equal(t, PerformancePoint{Date: "2026-01-01", Strategy: 100, Benchmark: 100}, points[0])
	assert.Equal(t, PerformancePoint{Date: "2026-02-01", Strategy: 112.5, Benchmark: 104}, points[1])
}

func TestDecodeSeries_SnakeCaseKeys(t *testing.T) {
	raw := []byte(`[{"date": "2026-01-01", "strategy_value": 101.5, "benchmark_value": 99}]`)

	points, skipped, err := DecodeSeries(raw)
	require.NoError(t, err)
	assert.Zero(t, skipped)
	assert.Equal(t, []PerformancePoint{{Date: "2026-01-01", Strategy: 101.5, Benchmark: 99}}, points)
}

func TestDecodeSeries_DropsIncompletePoints(t *testing.T) {
	raw := []byte(`[
		{"date": "2026-01-01", "strategy": 100, "benchmark": 100},
		{"date": "2026-01-02", "strategy": 0, "benchmark": 0},
		{"date": "2026-01-03", "strategy": 101},
		{"date": "2026-01-04", "value": 3},
		{"strategy": 1, "benchmark": 1}
	]`)

	points, skipped, err := DecodeSeries(raw)
	require.NoError(t, err)
	assert.Equal(t, 3, skipped)
	require.Len(t, points, 2)
	assert.Equal(t, "2026-01-02", points[1].Date)
	assert.Zero(t, points[1].Strategy)
}

func TestDecodeSeries_Empty(t *testing.T) {
	points, skipped, err := DecodeSeries(nil)
	require.NoError(t, err)
	assert.NotNil(t, points)
	assert.Empty(t, points)
	assert.Zero(t, skipped)
}

func TestDecodeSeries_Invalid(t *testing.T) {
	_, _, err := DecodeSeries([]byte(`{"not": "an array"}`))
	assert.Error(t, err)
}

func TestPerformancePayload_Excess(t *testing.T) {
	p := &PerformancePayload{Series: []PerformancePoint{
		{Date: "2026-01-01", Strategy: 100, Benchmark: 100},
		{Date: "2026-02-01", Strategy: 115, Benchmark: 105},
	}}

	excess, ok := p.Excess()
	require.True(t, ok)
	assert.Equal(t, 10.0, excess)

	_, ok = (&PerformancePayload{}).Excess()
	assert.False(t, ok)
}
