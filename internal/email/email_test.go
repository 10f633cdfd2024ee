package email

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/signalboard/internal/contracts"
)

func TestRenderer_Welcome(t *testing.T) {
	r, err := NewRenderer("https://signalboard.ai/")
	require.NoError(t, err)

	msg, err := r.Welcome("jane+picks@example.com")
	require.NoError(t, err)

	assert.Equal(t, "jane+picks@example.com", msg.To)
	assert.Equal(t, "Welcome to Signalboard", msg.Subject)
	assert.Contains(t, msg.HTML, "https://signalboard.ai/how-it-works")
	assert.Contains(t, msg.HTML, "unsubscribe?email=jane%2Bpicks%40example.com")
	assert.Contains(t, msg.Text, "https://signalboard.ai/unsubscribe?email=jane%2Bpicks%40example.com")
	assert.Equal(t, "welcome", msg.Tags["kind"])
}

func TestRenderer_Digest(t *testing.T) {
	r, err := NewRenderer("https://signalboard.ai")
	require.NoError(t, err)

	list := contracts.NewRecommendationList(contracts.PeriodDaily,
		time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC),
		[]contracts.Recommendation{
			{Ticker: "NVDA", CompanyName: "NVIDIA", Action: contracts.ActionBuy, Confidence: 0.82, PriceAtSignal: 181.2},
			{Ticker: "XOM", CompanyName: "Exxon Mobil", Action: contracts.ActionSell, Confidence: 0.64, PriceAtSignal: 110},
		})

	msg, err := r.Digest("a@b.co", list)
	require.NoError(t, err)

	assert.Equal(t, "Daily picks for Oct 16, 2026", msg.Subject)
	assert.Contains(t, msg.HTML, `href="https://signalboard.ai/stocks/NVDA"`)
	assert.Contains(t, msg.HTML, "82%")
	assert.Contains(t, msg.HTML, "$181.20")
	assert.Contains(t, msg.Text, "NVDA")
	assert.Contains(t, msg.Text, "SELL")
	assert.Equal(t, "digest", msg.Tags["kind"])
}
