package digest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wonny/signalboard/internal/contracts"
	"github.com/wonny/signalboard/internal/email"
	"github.com/wonny/signalboard/pkg/logger"
	"github.com/wonny/signalboard/pkg/metrics"
	"github.com/wonny/signalboard/pkg/redis"
)

// CacheClearer drops cached read-API payloads by key prefix
type CacheClearer interface {
	DeletePrefix(ctx context.Context, prefix string) (int64, error)
}

// Result is the outcome of one daily run, returned by the cron endpoint
type Result struct {
	OK               bool   `json:"ok"`
	SignalDate       string `json:"signalDate,omitempty"`
	CacheKeysCleared int64  `json:"cacheKeysCleared"`
	EmailsSent       int    `json:"emailsSent"`
	EmailsFailed     int    `json:"emailsFailed"`
	Skipped          bool   `json:"skipped"`
}

// DailyJob refreshes caches and mails the daily digest after a new batch lands
// ⭐ SSOT: 일일 작업(캐시 초기화 + 다이제스트 발송)은 여기서만
type DailyJob struct {
	cache       CacheClearer
	recs        contracts.RecommendationRepository
	subscribers contracts.SubscriberRepository
	mailer      email.Mailer
	renderer    *email.Renderer
	metrics     *metrics.Recorder
	logger      *logger.Logger
}

// NewDailyJob creates the daily job
func NewDailyJob(
	cache CacheClearer,
	recs contracts.RecommendationRepository,
	subscribers contracts.SubscriberRepository,
	mailer email.Mailer,
	renderer *email.Renderer,
	rec *metrics.Recorder,
	log *logger.Logger,
) *DailyJob {
	return &DailyJob{
		cache:       cache,
		recs:        recs,
		subscribers: subscribers,
		mailer:      mailer,
		renderer:    renderer,
		metrics:     rec,
		logger:      log.WithComponent("daily-job"),
	}
}

// Run executes the job once. trigger labels the caller (http, scheduler, cli).
// Rerunning on the same signal date sends nothing twice.
func (j *DailyJob) Run(ctx context.Context, trigger string) (*Result, error) {
	start := time.Now()
	result, err := j.run(ctx)
	j.metrics.CronRun(trigger, err)

	log := j.logger.WithFields(map[string]interface{}{
		"trigger":  trigger,
		"duration": time.Since(start).String(),
	})
	if err != nil {
		log.WithError(err).Error("Daily job failed")
		return nil, err
	}

	log.WithFields(map[string]interface{}{
		"signal_date":   result.SignalDate,
		"cache_cleared": result.CacheKeysCleared,
		"emails_sent":   result.EmailsSent,
		"emails_failed": result.EmailsFailed,
		"skipped":       result.Skipped,
	}).Info("Daily job completed")
	return result, nil
}

func (j *DailyJob) run(ctx context.Context) (*Result, error) {
	result := &Result{OK: true}
	result.CacheKeysCleared = j.clearCache(ctx)

	list, err := j.recs.Latest(ctx, contracts.PeriodDaily)
	if errors.Is(err, contracts.ErrNotFound) {
		result.Skipped = true
		return result, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load daily list: %w", err)
	}
	result.SignalDate = list.SignalDate.Format("2006-01-02")

	recipients, err := j.subscribers.ListDigestRecipients(ctx, list.SignalDate)
	if err != nil {
		return nil, fmt.Errorf("list digest recipients: %w", err)
	}

	for _, sub := range recipients {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		sent, err := j.send(ctx, sub, list)
		if errors.Is(err, email.ErrDisabled) {
			j.logger.Warn("Email disabled, digest not sent")
			result.Skipped = true
			break
		}
		if err != nil {
			result.EmailsFailed++
			j.logger.WithError(err).WithField("subscriber_id", sub.ID).Warn("Digest send failed")
			continue
		}
		if sent {
			result.EmailsSent++
		}
	}

	return result, nil
}

// send claims the subscriber for the signal date, then mails the digest.
// A subscriber claimed by an overlapping run is skipped (false, nil).
func (j *DailyJob) send(ctx context.Context, sub contracts.Subscriber, list *contracts.RecommendationList) (bool, error) {
	msg, err := j.renderer.Digest(sub.Email, list)
	if err != nil {
		return false, err
	}

	claimed, err := j.subscribers.ClaimDigest(ctx, sub.ID, list.SignalDate)
	if err != nil {
		return false, err
	}
	if !claimed {
		return false, nil
	}

	err = j.mailer.Send(ctx, msg)
	if err == nil {
		j.metrics.EmailSent("digest", nil)
		return true, nil
	}
	if !errors.Is(err, email.ErrDisabled) {
		j.metrics.EmailSent("digest", err)
	}

	// release even when ctx is done
	releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if relErr := j.subscribers.ReleaseDigest(releaseCtx, sub.ID, list.SignalDate, sub.LastDigestOn); relErr != nil {
		j.logger.WithError(relErr).WithField("subscriber_id", sub.ID).Error("Digest claim release failed")
	}
	return false, err
}

func (j *DailyJob) clearCache(ctx context.Context) int64 {
	var total int64
	for _, prefix := range redis.SnapshotPrefixes() {
		n, err := j.cache.DeletePrefix(ctx, prefix)
		if err != nil {
			j.logger.WithError(err).WithField("prefix", prefix).Warn("Cache clear failed")
		}
		total += n
	}
	return total
}
