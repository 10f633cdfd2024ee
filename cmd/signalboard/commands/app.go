package commands

import (
	"fmt"

	"github.com/wonny/signalboard/internal/digest"
	"github.com/wonny/signalboard/internal/email"
	"github.com/wonny/signalboard/internal/external/resend"
	"github.com/wonny/signalboard/internal/indexes"
	"github.com/wonny/signalboard/internal/newsletter"
	"github.com/wonny/signalboard/internal/performance"
	"github.com/wonny/signalboard/internal/platform"
	"github.com/wonny/signalboard/internal/prices"
	"github.com/wonny/signalboard/internal/recommendation"
	"github.com/wonny/signalboard/pkg/config"
	"github.com/wonny/signalboard/pkg/database"
	"github.com/wonny/signalboard/pkg/logger"
	"github.com/wonny/signalboard/pkg/metrics"
	"github.com/wonny/signalboard/pkg/redis"
)

// app holds the shared dependencies of every command
type app struct {
	cfg     *config.Config
	log     *logger.Logger
	db      *database.DB
	redis   *redis.Client
	cache   *redis.Cache
	metrics *metrics.Recorder

	recs        *recommendation.Repository
	indexes     *indexes.Repository
	prices      *prices.Repository
	performance *performance.Repository
	subscribers *newsletter.Repository
	sessions    *platform.Repository

	renderer   *email.Renderer
	mailer     *resend.Client
	newsletter *newsletter.Service
	daily      *digest.DailyJob
}

// newApp loads config and connects to PostgreSQL and (optionally) Redis
func newApp() (*app, error) {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Connect to database
	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	log.Info("Connected to database")

	// 4. Redis (cache + rate limit), no-op when REDIS_ENABLED=false
	rdb, err := redis.New(cfg)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	if rdb.Enabled() {
		log.Info("Connected to redis")
	}

	// 5. Email
	renderer, err := email.NewRenderer(cfg.SiteURL)
	if err != nil {
		db.Close()
		_ = rdb.Close()
		return nil, err
	}
	mailer := resend.NewClient(cfg, log)
	if cfg.Email.APIKey == "" {
		log.Warn("RESEND_API_KEY not set, emails are disabled")
	}

	rec := metrics.New()
	cache := redis.NewCache(rdb)

	// 6. Repositories
	a := &app{
		cfg:         cfg,
		log:         log,
		db:          db,
		redis:       rdb,
		cache:       cache,
		metrics:     rec,
		recs:        recommendation.NewRepository(db.Pool),
		indexes:     indexes.NewRepository(db.Pool),
		prices:      prices.NewRepository(db.Pool),
		performance: performance.NewRepository(db.Pool, log.WithComponent("performance")),
		subscribers: newsletter.NewRepository(db.Pool),
		sessions:    platform.NewRepository(db.Pool),
		renderer:    renderer,
		mailer:      mailer,
	}

	// 7. Services
	a.newsletter = newsletter.NewService(a.subscribers, mailer, renderer, rec, log)
	a.daily = digest.NewDailyJob(cache, a.recs, a.subscribers, mailer, renderer, rec, log)

	return a, nil
}

// Close releases connections
func (a *app) Close() {
	if err := a.redis.Close(); err != nil {
		a.log.WithError(err).Warn("Failed to close redis")
	}
	a.db.Close()
}
