package api

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/wonny/signalboard/internal/api/handlers"
	"github.com/wonny/signalboard/internal/platform"
	"github.com/wonny/signalboard/internal/site"
	"github.com/wonny/signalboard/pkg/logger"
	"github.com/wonny/signalboard/pkg/metrics"
)

// Handlers groups everything the router mounts
type Handlers struct {
	Health          *handlers.HealthHandler
	Recommendations *handlers.RecommendationHandler
	Indexes         *handlers.IndexHandler
	Prices          *handlers.PriceHandler
	Performance     *handlers.PerformanceHandler
	Newsletter      *handlers.NewsletterHandler
	Cron            *handlers.CronHandler
	Platform        *handlers.PlatformHandler
	Site            *site.Handler
	Auth            *platform.Authenticator
}

// RouterOptions are the cross-cutting settings of the router
type RouterOptions struct {
	CORSOrigins []string
	Metrics     *metrics.Recorder // nil disables /metrics and request metrics
}

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(h Handlers, opts RouterOptions, log *logger.Logger) http.Handler {
	r := mux.NewRouter()
	r.StrictSlash(false)

	// Health check
	r.HandleFunc("/health", h.Health.Health).Methods("GET")
	if opts.Metrics != nil {
		r.Handle("/metrics", opts.Metrics.Handler()).Methods("GET")
	}

	api := r.PathPrefix("/api").Subrouter()

	// Read API
	api.HandleFunc("/recommendations/{period}", h.Recommendations.GetLatest).Methods("GET")
	api.HandleFunc("/indexes/members", h.Indexes.GetMembers).Methods("GET")
	api.HandleFunc("/indexes/{index}/members", h.Indexes.GetMembers).Methods("GET")
	api.HandleFunc("/prices/{ticker}", h.Prices.GetPrice).Methods("GET")
	api.HandleFunc("/performance", h.Performance.GetPerformance).Methods("GET")

	// Newsletter
	api.HandleFunc("/newsletter/subscribe", h.Newsletter.Subscribe).Methods("POST")
	api.HandleFunc("/newsletter/unsubscribe", h.Newsletter.Unsubscribe).Methods("POST")

	// Cron (weekly is a redirect shim to daily)
	api.HandleFunc("/cron/daily", h.Cron.Daily).Methods("GET", "POST")
	api.HandleFunc("/cron/weekly", h.Cron.Weekly).Methods("GET", "POST")

	// Platform API
	api.Handle("/platform/me", h.Auth.RequireAPI(http.HandlerFunc(h.Platform.Me))).Methods("GET")

	// Pages
	r.PathPrefix("/static/").Handler(site.StaticHandler()).Methods("GET", "HEAD")
	for _, path := range []string{"/", "/about", "/pricing", "/how-it-works"} {
		r.HandleFunc(path, h.Site.StaticPage).Methods("GET", "HEAD")
	}
	r.HandleFunc("/stocks/{ticker}", h.Site.Stock).Methods("GET", "HEAD")
	r.Handle("/platform", h.Auth.RequirePage(http.HandlerFunc(h.Site.Platform))).Methods("GET")
	r.HandleFunc("/unsubscribe", h.Site.Unsubscribe).Methods("GET")

	// Apply middleware
	middlewares := []mux.MiddlewareFunc{loggingMiddleware(log)}
	if opts.Metrics != nil {
		middlewares = append(middlewares, metricsMiddleware(opts.Metrics))
	}
	middlewares = append(middlewares, recoveryMiddleware(log))
	r.Use(middlewares...)

	var notFound http.Handler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if strings.HasPrefix(req.URL.Path, "/api/") {
			handlers.NotFound(w, req)
			return
		}
		h.Site.NotFound(w, req)
	})
	for i := len(middlewares) - 1; i >= 0; i-- {
		notFound = middlewares[i](notFound)
	}
	r.NotFoundHandler = notFound

	return corsMiddleware(opts.CORSOrigins)(r)
}
