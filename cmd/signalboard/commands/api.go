package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/signalboard/internal/api"
	"github.com/wonny/signalboard/internal/api/handlers"
	"github.com/wonny/signalboard/internal/platform"
	"github.com/wonny/signalboard/internal/scheduler"
	"github.com/wonny/signalboard/internal/site"
	"github.com/wonny/signalboard/pkg/logger"
	"github.com/wonny/signalboard/pkg/metrics"
	"github.com/wonny/signalboard/pkg/redis"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "웹 + API 서버 시작",
	Long: `마케팅 사이트와 JSON API 서버를 시작합니다.

이 명령어는:
- HTML 페이지 제공 (/, /pricing, /stocks/{ticker}, /platform)
- 읽기 전용 JSON API 제공 (추천, 지수, 가격, 성과)
- 뉴스레터 구독 / cron 엔드포인트 제공

Endpoints:
  GET  /health                        - Health check
  GET  /metrics                       - Prometheus metrics
  GET  /api/recommendations/{period}  - daily | weekly
  GET  /api/indexes/{index}/members   - 지수 구성 종목
  GET  /api/prices/{ticker}           - 최신 가격
  GET  /api/performance               - 성과 차트 데이터
  POST /api/newsletter/subscribe      - 뉴스레터 구독
  GET  /api/cron/daily                - 일일 작업 (Bearer CRON_SECRET)
  GET  /api/cron/weekly               - /api/cron/daily 로 리다이렉트

Example:
  go run ./cmd/signalboard api
  go run ./cmd/signalboard api --port 3000 --with-scheduler`,
	RunE: runAPIServer,
}

var (
	apiPort       string
	withScheduler bool
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "서버 포트 (기본값: PORT 환경변수)")
	apiCmd.Flags().BoolVar(&withScheduler, "with-scheduler", false, "같은 프로세스에서 일일 작업 스케줄러 실행")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Signalboard API Server ===")

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if apiPort != "" {
		a.cfg.Port = apiPort
	}

	router, err := buildRouter(a)
	if err != nil {
		return err
	}
	server := api.New(a.cfg, a.log, router)

	var sched *scheduler.Scheduler
	if withScheduler {
		sched, err = initScheduler(a)
		if err != nil {
			return fmt.Errorf("init scheduler: %w", err)
		}
		sched.Start()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	a.log.WithFields(map[string]interface{}{
		"port":      a.cfg.Port,
		"env":       a.cfg.Env,
		"redis":     a.redis.Enabled(),
		"scheduler": withScheduler,
	}).Info("API server started successfully")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", a.cfg.Port)
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal or a failed listener
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	a.log.Info("Shutting down server...")
	if sched != nil {
		sched.Stop()
	}

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	a.log.Info("Server stopped")
	return nil
}

// buildRouter wires repositories into handlers
func buildRouter(a *app) (http.Handler, error) {
	log := a.log.WithComponent("http")

	siteHandler, err := site.NewHandler(a.recs, a.prices, a.performance, a.cfg.SiteURL, log)
	if err != nil {
		return nil, fmt.Errorf("init site: %w", err)
	}

	var rec *metrics.Recorder
	if a.cfg.MetricsEnabled {
		rec = a.metrics
	}

	h := api.Handlers{
		Health:          handlers.NewHealthHandler(a.db, logger.ServiceName, log),
		Recommendations: handlers.NewRecommendationHandler(a.recs, a.cache, rec, log),
		Indexes:         handlers.NewIndexHandler(a.indexes, a.cache, rec, log),
		Prices:          handlers.NewPriceHandler(a.prices, a.cache, rec, log),
		Performance:     handlers.NewPerformanceHandler(a.performance, a.cache, rec, log),
		Newsletter:      handlers.NewNewsletterHandler(a.newsletter, handlers.NewSubscribeLimiter(redis.NewRateLimiter(a.redis)), log),
		Cron:            handlers.NewCronHandler(a.daily, a.cfg.Cron.Secret, log),
		Platform:        handlers.NewPlatformHandler(),
		Site:            siteHandler,
		Auth:            platform.NewAuthenticator(a.sessions, a.cfg.Platform.SessionCookie, a.log),
	}

	return api.NewRouter(h, api.RouterOptions{
		CORSOrigins: a.cfg.CORSOrigins,
		Metrics:     rec,
	}, log), nil
}
