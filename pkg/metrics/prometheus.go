package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder owns every Prometheus collector of the service
// ⭐ SSOT: 메트릭 정의는 여기서만
type Recorder struct {
	registry *prometheus.Registry

	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	httpInFlight  prometheus.Gauge
	cacheLookups  *prometheus.CounterVec
	cronRuns      *prometheus.CounterVec
	emailsSent    *prometheus.CounterVec
	subscriptions *prometheus.CounterVec
}

// New creates a recorder backed by its own registry
func New() *Recorder {
	reg := prometheus.NewRegistry()

	r := &Recorder{
		registry: reg,
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signalboard_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"route", "method", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "signalboard_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"route", "method", "class"},
		),
		httpInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "signalboard_http_in_flight_requests",
				Help: "Current number of in-flight HTTP requests",
			},
		),
		cacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signalboard_cache_lookups_total",
				Help: "Response cache lookups by namespace and result",
			},
			[]string{"namespace", "result"},
		),
		cronRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signalboard_cron_runs_total",
				Help: "Daily job runs by trigger and outcome",
			},
			[]string{"trigger", "outcome"},
		),
		emailsSent: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signalboard_emails_total",
				Help: "Transactional emails by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		subscriptions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signalboard_newsletter_subscriptions_total",
				Help: "Newsletter subscribe attempts by source and result",
			},
			[]string{"source", "result"},
		),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.httpRequests,
		r.httpDuration,
		r.httpInFlight,
		r.cacheLookups,
		r.cronRuns,
		r.emailsSent,
		r.subscriptions,
	)

	return r
}

// Handler exposes the registry in the Prometheus text format
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry (tests, extra collectors)
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveHTTP records one finished request
func (r *Recorder) ObserveHTTP(route, method string, status int, seconds float64) {
	if r == nil {
		return
	}
	r.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	r.httpDuration.WithLabelValues(route, method, StatusClass(status)).Observe(seconds)
}

// InFlight adjusts the in-flight gauge by delta
func (r *Recorder) InFlight(delta float64) {
	if r == nil {
		return
	}
	r.httpInFlight.Add(delta)
}

// CacheLookup records a response cache hit or miss
func (r *Recorder) CacheLookup(namespace string, hit bool) {
	if r == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheLookups.WithLabelValues(namespace, result).Inc()
}

// CronRun records a daily job run
func (r *Recorder) CronRun(trigger string, err error) {
	if r == nil {
		return
	}
	r.cronRuns.WithLabelValues(trigger, outcome(err)).Inc()
}

// EmailSent records a transactional email attempt
func (r *Recorder) EmailSent(kind string, err error) {
	if r == nil {
		return
	}
	r.emailsSent.WithLabelValues(kind, outcome(err)).Inc()
}

// Subscription records a newsletter subscribe attempt
func (r *Recorder) Subscription(source, result string) {
	if r == nil {
		return
	}
	r.subscriptions.WithLabelValues(source, result).Inc()
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// StatusClass buckets a status code into 1xx..5xx
func StatusClass(code int) string {
	switch {
	case code >= 100 && code < 200:
		return "1xx"
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
