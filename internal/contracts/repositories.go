package contracts

import (
	"context"
	"time"
)

// ⭐ SSOT: Repository 인터페이스 정의는 여기서만

// RecommendationRepository reads stored recommendation batches
type RecommendationRepository interface {
	LatestDate(ctx context.Context, period Period) (time.Time, error)
	ListByDate(ctx context.Context, period Period, date time.Time) ([]Recommendation, error)
	// Latest returns the newest batch already sorted by NewRecommendationList
	Latest(ctx context.Context, period Period) (*RecommendationList, error)
	LatestForTicker(ctx context.Context, ticker string) (*Recommendation, error)
}

// IndexRepository reads index membership snapshots
type IndexRepository interface {
	LatestSnapshot(ctx context.Context, indexCode string) (*IndexSnapshot, error)
	Members(ctx context.Context, snapshotID int64) ([]IndexMember, error)
}

// PriceRepository reads the stored quote of a ticker
type PriceRepository interface {
	Latest(ctx context.Context, ticker string) (*Price, error)
}

// PerformanceRepository reads the precomputed performance payload
type PerformanceRepository interface {
	Latest(ctx context.Context) (*PerformancePayload, error)
}

// SubscriberRepository persists newsletter addresses
type SubscriberRepository interface {
	Upsert(ctx context.Context, email, source string) (*SubscribeResult, error)
	Unsubscribe(ctx context.Context, email string) (bool, error)
	ListDigestRecipients(ctx context.Context, signalDate time.Time) ([]Subscriber, error)
	// ClaimDigest atomically marks a subscriber as served for signalDate.
	// false means another run already claimed it.
	ClaimDigest(ctx context.Context, id int64, signalDate time.Time) (bool, error)
	// ReleaseDigest undoes a claim after a failed send, restoring previous
	ReleaseDigest(ctx context.Context, id int64, signalDate time.Time, previous *time.Time) error
}

// SessionRepository resolves dashboard session tokens
type SessionRepository interface {
	FindActive(ctx context.Context, tokenHash string) (*Session, error)
}
