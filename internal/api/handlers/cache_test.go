package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/signalboard/internal/contracts"
	"github.com/wonny/signalboard/pkg/config"
	"github.com/wonny/signalboard/pkg/logger"
	"github.com/wonny/signalboard/pkg/metrics"
	"github.com/wonny/signalboard/pkg/redis"
)

func redisCache(t *testing.T) (*redis.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := redis.New(&config.Config{Redis: config.RedisConfig{
		Host:    mr.Host(),
		Port:    mr.Port(),
		Enabled: true,
	}})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return redis.NewCache(client), mr
}

type countingRecs struct {
	fakeRecs
	calls int
}

func (c *countingRecs) Latest(ctx context.Context, period contracts.Period) (*contracts.RecommendationList, error) {
	c.calls++
	return c.fakeRecs.Latest(ctx, period)
}

type countingIndexes struct {
	fakeIndexes
	calls int
}

func (c *countingIndexes) LatestSnapshot(ctx context.Context, code string) (*contracts.IndexSnapshot, error) {
	c.calls++
	return c.fakeIndexes.LatestSnapshot(ctx, code)
}

func scrape(t *testing.T, rec *metrics.Recorder) string {
	t.Helper()
	res := httptest.NewRecorder()
	rec.Handler().ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return string(body)
}

func TestRecommendationHandler_ReadThroughCache(t *testing.T) {
	cache, mr := redisCache(t)
	rec := metrics.New()
	repo := &countingRecs{fakeRecs: fakeRecs{lists: map[contracts.Period]*contracts.RecommendationList{
		contracts.PeriodDaily: contracts.NewRecommendationList(contracts.PeriodDaily, signalDate, []contracts.Recommendation{
			{Ticker: "MSFT", Action: contracts.ActionHold, Confidence: 0.6},
			{Ticker: "AAPL", Action: contracts.ActionBuy, Confidence: 0.8},
		}),
		contracts.PeriodWeekly: contracts.NewRecommendationList(contracts.PeriodWeekly, signalDate, nil),
	}}}
	h := NewRecommendationHandler(repo, cache, rec, logger.Nop())

	daily := map[string]string{"period": "daily"}
	first := serve(h.GetLatest, http.MethodGet, "/api/recommendations/daily", daily, "")
	require.Equal(t, http.StatusOK, first.Code)
	assert.True(t, mr.Exists("signalboard:cache:recommendations:daily"))

	second := serve(h.GetLatest, http.MethodGet, "/api/recommendations/daily", daily, "")
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, 1, repo.calls)
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, CacheSnapshot, second.Header().Get("Cache-Control"))

	weekly := map[string]string{"period": "weekly"}
	serve(h.GetLatest, http.MethodGet, "/api/recommendations/weekly", weekly, "")
	hit := serve(h.GetLatest, http.MethodGet, "/api/recommendations/weekly", weekly, "")
	require.Equal(t, http.StatusOK, hit.Code)
	assert.Equal(t, 2, repo.calls)
	assert.Contains(t, hit.Body.String(), `"items":[]`)

	text := scrape(t, rec)
	assert.Contains(t, text, `signalboard_cache_lookups_total{namespace="recommendations",result="hit"} 2`)
	assert.Contains(t, text, `signalboard_cache_lookups_total{namespace="recommendations",result="miss"} 2`)
}

func TestRecommendationHandler_NotFoundIsNotCached(t *testing.T) {
	cache, mr := redisCache(t)
	repo := &countingRecs{}
	h := NewRecommendationHandler(repo, cache, nil, logger.Nop())

	for i := 0; i < 2; i++ {
		res := serve(h.GetLatest, http.MethodGet, "/api/recommendations/daily", map[string]string{"period": "daily"}, "")
		assert.Equal(t, http.StatusNotFound, res.Code)
	}
	assert.Equal(t, 2, repo.calls)
	assert.False(t, mr.Exists("signalboard:cache:recommendations:daily"))
}

func TestIndexHandler_ReadThroughCache(t *testing.T) {
	cache, _ := redisCache(t)
	repo := &countingIndexes{fakeIndexes: fakeIndexes{
		snapshots: map[string]*contracts.IndexSnapshot{
			"SP500":     {ID: 7, IndexCode: "SP500", SnapshotDate: signalDate},
			"NASDAQ100": {ID: 9, IndexCode: "NASDAQ100", SnapshotDate: signalDate},
		},
		members: map[int64][]contracts.IndexMember{
			7: {{Ticker: "MSFT", Weight: 6.5}, {Ticker: "AAPL", Weight: 7.1}},
		},
	}}
	h := NewIndexHandler(repo, cache, metrics.New(), logger.Nop())

	first := serve(h.GetMembers, http.MethodGet, "/api/indexes/members", nil, "")
	second := serve(h.GetMembers, http.MethodGet, "/api/indexes/members", nil, "")
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, 1, repo.calls)
	assert.JSONEq(t, first.Body.String(), second.Body.String())

	vars := map[string]string{"index": "nasdaq100"}
	serve(h.GetMembers, http.MethodGet, "/api/indexes/nasdaq100/members", vars, "")
	hit := serve(h.GetMembers, http.MethodGet, "/api/indexes/nasdaq100/members", vars, "")
	assert.Equal(t, 2, repo.calls)
	assert.Contains(t, hit.Body.String(), `"members":[]`)
}
