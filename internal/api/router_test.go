package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/signalboard/internal/api/handlers"
	"github.com/wonny/signalboard/internal/contracts"
	"github.com/wonny/signalboard/internal/digest"
	"github.com/wonny/signalboard/internal/platform"
	"github.com/wonny/signalboard/internal/site"
	"github.com/wonny/signalboard/pkg/database"
	"github.com/wonny/signalboard/pkg/logger"
	"github.com/wonny/signalboard/pkg/metrics"
)

var day = time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)

type stubStore struct{}

func (stubStore) LatestDate(context.Context, contracts.Period) (time.Time, error) { return day, nil }

func (stubStore) ListByDate(context.Context, contracts.Period, time.Time) ([]contracts.Recommendation, error) {
	return nil, nil
}

func (stubStore) Latest(_ context.Context, p contracts.Period) (*contracts.RecommendationList, error) {
	return contracts.NewRecommendationList(p, day, []contracts.Recommendation{{Ticker: "AAPL", Action: contracts.ActionBuy}}), nil
}

func (stubStore) LatestForTicker(context.Context, string) (*contracts.Recommendation, error) {
	return &contracts.Recommendation{Ticker: "AAPL", CompanyName: "Apple Inc.", Action: contracts.ActionBuy, SignalDate: day}, nil
}

func (stubStore) LatestSnapshot(_ context.Context, code string) (*contracts.IndexSnapshot, error) {
	return &contracts.IndexSnapshot{ID: 1, IndexCode: code, SnapshotDate: day}, nil
}

func (stubStore) Members(context.Context, int64) ([]contracts.IndexMember, error) {
	return []contracts.IndexMember{{Ticker: "AAPL", Weight: 7}}, nil
}

type stubPrices struct{}

func (stubPrices) Latest(_ context.Context, ticker string) (*contracts.Price, error) {
	return &contracts.Price{Ticker: ticker, Price: 100, AsOf: day}, nil
}

type stubPerformance struct{}

func (stubPerformance) Latest(context.Context) (*contracts.PerformancePayload, error) {
	return nil, contracts.ErrNotFound
}

type stubNewsletter struct{}

func (stubNewsletter) Subscribe(_ context.Context, email, source string) (*contracts.SubscribeResult, error) {
	return &contracts.SubscribeResult{Subscriber: &contracts.Subscriber{Email: email, Source: source}, Created: true}, nil
}

func (stubNewsletter) Unsubscribe(context.Context, string) (bool, error) { return true, nil }

type stubSessions struct{}

func (stubSessions) FindActive(_ context.Context, hash string) (*contracts.Session, error) {
	if hash == platform.HashToken("valid") {
		return &contracts.Session{UserID: "u1", Email: "pro@example.com", Plan: "pro", ExpiresAt: time.Now().Add(time.Hour)}, nil
	}
	return nil, contracts.ErrNotFound
}

type stubRunner struct{}

func (stubRunner) Run(context.Context, string) (*digest.Result, error) {
	return &digest.Result{OK: true, SignalDate: "2026-10-16"}, nil
}

type stubHealth struct{}

func (stubHealth) HealthCheck(context.Context) (*database.HealthStatus, error) {
	return &database.HealthStatus{Healthy: true}, nil
}

type panicRunner struct{}

func (panicRunner) Run(context.Context, string) (*digest.Result, error) {
	panic(errors.New("boom"))
}

func newTestRouter(t *testing.T, runner handlers.DailyRunner) (http.Handler, *metrics.Recorder) {
	t.Helper()
	log := logger.Nop()
	rec := metrics.New()

	siteHandler, err := site.NewHandler(stubStore{}, stubPrices{}, stubPerformance{}, "https://signalboard.ai", log)
	require.NoError(t, err)

	h := Handlers{
		Health:          handlers.NewHealthHandler(stubHealth{}, "signalboard", log),
		Recommendations: handlers.NewRecommendationHandler(stubStore{}, nil, rec, log),
		Indexes:         handlers.NewIndexHandler(stubStore{}, nil, rec, log),
		Prices:          handlers.NewPriceHandler(stubPrices{}, nil, rec, log),
		Performance:     handlers.NewPerformanceHandler(stubPerformance{}, nil, rec, log),
		Newsletter:      handlers.NewNewsletterHandler(stubNewsletter{}, handlers.NewSubscribeLimiter(nil), log),
		Cron:            handlers.NewCronHandler(runner, "s3cret", log),
		Platform:        handlers.NewPlatformHandler(),
		Site:            siteHandler,
		Auth:            platform.NewAuthenticator(stubSessions{}, "sb_session", log),
	}

	return NewRouter(h, RouterOptions{CORSOrigins: []string{"https://signalboard.ai"}, Metrics: rec}, log), rec
}

func do(router http.Handler, method, target string, mutate func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if mutate != nil {
		mutate(req)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRouter_CacheControl(t *testing.T) {
	router, _ := newTestRouter(t, stubRunner{})

	tests := []struct {
		path   string
		status int
		cache  string
	}{
		{"/api/recommendations/daily", http.StatusOK, handlers.CacheSnapshot},
		{"/api/recommendations/weekly", http.StatusOK, handlers.CacheSnapshot},
		{"/api/indexes/members", http.StatusOK, handlers.CacheSnapshot},
		{"/api/indexes/NASDAQ100/members", http.StatusOK, handlers.CacheSnapshot},
		{"/api/prices/AAPL", http.StatusOK, handlers.CachePrice},
		{"/api/performance", http.StatusNotFound, handlers.CacheNone},
		{"/", http.StatusOK, site.CacheMarketing},
		{"/pricing", http.StatusOK, site.CacheMarketing},
		{"/stocks/AAPL", http.StatusOK, site.CacheStock},
		{"/health", http.StatusOK, handlers.CacheNone},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := do(router, http.MethodGet, tt.path, nil)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.cache, rec.Header().Get("Cache-Control"))
		})
	}
}

func TestRouter_NotFound(t *testing.T) {
	router, _ := newTestRouter(t, stubRunner{})

	rec := do(router, http.MethodGet, "/api/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Not found"}`, rec.Body.String())

	rec = do(router, http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
}

func TestRouter_CronWeeklyRedirect(t *testing.T) {
	router, _ := newTestRouter(t, stubRunner{})

	rec := do(router, http.MethodGet, "/api/cron/weekly?source=vercel", nil)
	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, "/api/cron/daily?source=vercel", rec.Header().Get("Location"))

	rec = do(router, http.MethodGet, "/api/cron/daily?source=vercel", func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer s3cret")
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_Platform(t *testing.T) {
	router, _ := newTestRouter(t, stubRunner{})

	rec := do(router, http.MethodGet, "/api/platform/me", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(router, http.MethodGet, "/platform", nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, platform.LoginRedirect, rec.Header().Get("Location"))

	withCookie := func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "sb_session", Value: "valid"}) }

	rec = do(router, http.MethodGet, "/api/platform/me", withCookie)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"plan":"pro"`)

	rec = do(router, http.MethodGet, "/platform", withCookie)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, site.CachePrivate, rec.Header().Get("Cache-Control"))
}

func TestRouter_CORS(t *testing.T) {
	router, _ := newTestRouter(t, stubRunner{})

	rec := do(router, http.MethodOptions, "/api/newsletter/subscribe", func(r *http.Request) {
		r.Header.Set("Origin", "https://signalboard.ai")
	})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://signalboard.ai", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = do(router, http.MethodGet, "/api/prices/AAPL", func(r *http.Request) {
		r.Header.Set("Origin", "https://evil.example")
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_PreflightOnlyForAPI(t *testing.T) {
	router, _ := newTestRouter(t, stubRunner{})
	origin := func(r *http.Request) { r.Header.Set("Origin", "https://signalboard.ai") }

	rec := do(router, http.MethodOptions, "/pricing", origin)
	assert.NotEqual(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	rec = do(router, http.MethodOptions, "/no-such-page", origin)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_NewsletterForm(t *testing.T) {
	router, _ := newTestRouter(t, stubRunner{})

	req := httptest.NewRequest(http.MethodPost, "/api/newsletter/subscribe", strings.NewReader("email=a%40b.co"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true,"alreadySubscribed":false}`, rec.Body.String())
}

func TestRouter_RecoveryAndMetrics(t *testing.T) {
	router, _ := newTestRouter(t, panicRunner{})

	res := do(router, http.MethodGet, "/api/cron/daily", func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer s3cret")
	})
	assert.Equal(t, http.StatusInternalServerError, res.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, res.Body.String())

	_ = do(router, http.MethodGet, "/api/prices/MSFT", nil)

	res = do(router, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, res.Code)
	body := res.Body.String()
	assert.Contains(t, body, `signalboard_http_requests_total{method="GET",route="/api/prices/{ticker}",status="200"} 1`)
	assert.Contains(t, body, `signalboard_http_requests_total{method="GET",route="/api/cron/daily",status="500"} 1`)
}
