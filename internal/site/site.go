package site

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"golang.org/x/sync/errgroup"

	"github.com/wonny/signalboard/internal/contracts"
	"github.com/wonny/signalboard/internal/platform"
	"github.com/wonny/signalboard/pkg/logger"
)

// Plan is one column of the pricing table
type Plan struct {
	ID       string
	Name     string
	Price    string
	Features []string
	CTA      string
	CTAHref  string
	Featured bool
}

// Plans shown on /pricing
var Plans = []Plan{
	{
		ID:       "free",
		Name:     "Newsletter",
		Price:    "Free",
		Features: []string{"Daily picks by email", "Top signals only"},
		CTA:      "Subscribe",
		CTAHref:  "#newsletter-popup",
	},
	{
		ID:       "pro",
		Name:     "Pro",
		Price:    "$29 / month",
		Features: []string{"Full daily and weekly lists", "Confidence and target prices", "Performance dashboard"},
		CTA:      "Start Pro",
		CTAHref:  "/platform",
		Featured: true,
	},
}

type staticPage struct {
	name        string
	title       string
	description string
	popup       bool
}

var staticPages = map[string]staticPage{
	"/":             {name: "home", description: "Daily AI stock picks with confidence scores and target prices.", popup: true},
	"/about":        {name: "about", title: "About", description: "Who builds Signalboard."},
	"/pricing":      {name: "pricing", title: "Pricing", description: "Signalboard plans.", popup: true},
	"/how-it-works": {name: "how_it_works", title: "How it works", description: "How Signalboard produces its signals."},
}

// Handler renders the marketing site, stock pages and the dashboard
// ⭐ SSOT: HTML 페이지 렌더링은 여기서만
type Handler struct {
	recs        contracts.RecommendationRepository
	prices      contracts.PriceRepository
	performance contracts.PerformanceRepository
	tmpl        templates
	siteURL     string
	logger      *logger.Logger
}

// NewHandler parses the embedded templates
func NewHandler(
	recs contracts.RecommendationRepository,
	prices contracts.PriceRepository,
	performance contracts.PerformanceRepository,
	siteURL string,
	log *logger.Logger,
) (*Handler, error) {
	tmpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	return &Handler{
		recs:        recs,
		prices:      prices,
		performance: performance,
		tmpl:        tmpl,
		siteURL:     siteURL,
		logger:      log.WithComponent("site"),
	}, nil
}

// StaticPage renders one of the marketing pages by request path
// GET /, /about, /pricing, /how-it-works
func (h *Handler) StaticPage(w http.ResponseWriter, r *http.Request) {
	sp, ok := staticPages[r.URL.Path]
	if !ok {
		h.NotFound(w, r)
		return
	}

	var data interface{}
	if sp.name == "pricing" {
		data = map[string]interface{}{"Plans": Plans}
	}

	h.render(w, r, http.StatusOK, CacheMarketing, sp.name, page{
		Title:       sp.title,
		Description: sp.description,
		ShowPopup:   sp.popup,
		Data:        data,
	})
}

type stockView struct {
	Ticker         string
	Price          *contracts.Price
	Recommendation *contracts.Recommendation
}

// Stock renders the detail page of one ticker
// GET /stocks/{ticker}
func (h *Handler) Stock(w http.ResponseWriter, r *http.Request) {
	ticker, err := contracts.NormalizeTicker(mux.Vars(r)["ticker"])
	if err != nil {
		h.notFound(w, r, "Unknown ticker.")
		return
	}

	view := stockView{Ticker: ticker}
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		p, err := h.prices.Latest(ctx, ticker)
		view.Price = p
		return ignoreNotFound(err)
	})
	g.Go(func() error {
		rec, err := h.recs.LatestForTicker(ctx, ticker)
		view.Recommendation = rec
		return ignoreNotFound(err)
	})
	if err := g.Wait(); err != nil {
		h.serverError(w, r, err)
		return
	}

	if view.Price == nil && view.Recommendation == nil {
		h.notFound(w, r, "We have no data for "+ticker+".")
		return
	}

	desc := ticker + " price and latest Signalboard signal."
	if view.Recommendation != nil {
		desc = view.Recommendation.CompanyName + " (" + ticker + ") price and latest Signalboard signal."
	}
	h.render(w, r, http.StatusOK, CacheStock, "stock", page{
		Title:       ticker,
		Description: desc,
		ShowPopup:   true,
		Data:        view,
	})
}

type dashboardView struct {
	Session     *contracts.Session
	Daily       *contracts.RecommendationList
	Weekly      *contracts.RecommendationList
	Performance *contracts.PerformancePayload
}

// Platform renders the signed-in dashboard; the auth middleware guarantees a session
// GET /platform
func (h *Handler) Platform(w http.ResponseWriter, r *http.Request) {
	session, ok := platform.SessionFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, platform.LoginRedirect, http.StatusFound)
		return
	}

	view := dashboardView{Session: session}
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		list, err := h.recs.Latest(ctx, contracts.PeriodDaily)
		view.Daily = list
		return ignoreNotFound(err)
	})
	g.Go(func() error {
		list, err := h.recs.Latest(ctx, contracts.PeriodWeekly)
		view.Weekly = list
		return ignoreNotFound(err)
	})
	g.Go(func() error {
		p, err := h.performance.Latest(ctx)
		view.Performance = p
		return ignoreNotFound(err)
	})
	if err := g.Wait(); err != nil {
		h.serverError(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, CachePrivate, "platform", page{
		Title:       "Dashboard",
		Description: "Your Signalboard dashboard.",
		Data:        view,
	})
}

// Unsubscribe renders the confirmation form linked from every email
// GET /unsubscribe?email=
func (h *Handler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, CachePrivate, "unsubscribe", page{
		Title:       "Unsubscribe",
		Description: "Stop receiving Signalboard emails.",
		Data:        map[string]string{"Email": r.URL.Query().Get("email")},
	})
}

// NotFound renders the 404 page
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.notFound(w, r, "")
}

func (h *Handler) notFound(w http.ResponseWriter, r *http.Request, message string) {
	h.render(w, r, http.StatusNotFound, CacheNotFound, "not_found", page{
		Title: "Not found",
		Data:  map[string]string{"Message": message},
	})
}

func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.WithError(err).WithField("path", r.URL.Path).Error("Page data lookup failed")
	w.Header().Set("Cache-Control", CacheNotFound)
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, cacheControl, name string, p page) {
	p.SiteURL = h.siteURL
	p.Path = r.URL.Path
	if err := h.tmpl.render(w, status, cacheControl, name, p); err != nil {
		h.logger.WithError(err).WithField("page", name).Error("Render failed")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func ignoreNotFound(err error) error {
	if errors.Is(err, contracts.ErrNotFound) {
		return nil
	}
	return err
}
