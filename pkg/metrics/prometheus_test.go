package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_Counters(t *testing.T) {
	r := New()

	r.ObserveHTTP("/api/prices/{ticker}", "GET", 200, 0.01)
	r.ObserveHTTP("/api/prices/{ticker}", "GET", 200, 0.02)
	r.CacheLookup("prices", true)
	r.CacheLookup("prices", false)
	r.CronRun("http", nil)
	r.CronRun("scheduler", errors.New("db down"))
	r.EmailSent("digest", nil)
	r.Subscription("popup", "created")

	assert.Equal(t, 2.0, testutil.ToFloat64(r.httpRequests.WithLabelValues("/api/prices/{ticker}", "GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.cacheLookups.WithLabelValues("prices", "hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.cacheLookups.WithLabelValues("prices", "miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.cronRuns.WithLabelValues("scheduler", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.emailsSent.WithLabelValues("digest", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.subscriptions.WithLabelValues("popup", "created")))
}

func TestRecorder_NilSafe(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.ObserveHTTP("/", "GET", 200, 0)
		r.InFlight(1)
		r.CacheLookup("x", true)
		r.CronRun("http", nil)
		r.EmailSent("welcome", nil)
		r.Subscription("popup", "created")
	})
}

func TestRecorder_Handler(t *testing.T) {
	r := New()
	r.CronRun("http", nil)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), "signalboard_cron_runs_total")
}

func TestStatusClass(t *testing.T) {
	assert.Equal(t, "2xx", StatusClass(204))
	assert.Equal(t, "3xx", StatusClass(307))
	assert.Equal(t, "4xx", StatusClass(429))
	assert.Equal(t, "5xx", StatusClass(503))
}
