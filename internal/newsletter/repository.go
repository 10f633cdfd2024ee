package newsletter

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/signalboard/internal/contracts"
	"github.com/wonny/signalboard/pkg/database"
)

// Repository persists newsletter subscribers
// ⭐ SSOT: 뉴스레터 구독자 저장은 여기서만
type Repository struct {
	db database.Querier
}

var _ contracts.SubscriberRepository = (*Repository)(nil)

// NewRepository creates a new Repository instance
func NewRepository(db database.Querier) *Repository {
	return &Repository{db: db}
}

// Upsert stores an address; an unsubscribed address is reactivated
func (r *Repository) Upsert(ctx context.Context, email, source string) (*contracts.SubscribeResult, error) {
	query := `
		WITH prev AS (
			SELECT unsubscribed_at FROM newsletter_subscribers WHERE email = $1
		)
		INSERT INTO newsletter_subscribers (email, source, subscribed_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (email) DO UPDATE SET
			unsubscribed_at = NULL,
			subscribed_at = CASE
				WHEN newsletter_subscribers.unsubscribed_at IS NOT NULL THEN NOW()
				ELSE newsletter_subscribers.subscribed_at
			END
		RETURNING
			id,
			email,
			source,
			subscribed_at,
			last_digest_on,
			(xmax = 0) AS inserted,
			COALESCE((SELECT unsubscribed_at IS NOT NULL FROM prev), false) AS reactivated
	`

	var s contracts.Subscriber
	result := &contracts.SubscribeResult{Subscriber: &s}
	err := r.db.QueryRow(ctx, query, email, source).Scan(
		&s.ID,
		&s.Email,
		&s.Source,
		&s.SubscribedAt,
		&s.LastDigestOn,
		&result.Created,
		&result.Reactivated,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert subscriber: %w", err)
	}

	return result, nil
}

// Unsubscribe marks an address inactive; false when it was not active
func (r *Repository) Unsubscribe(ctx context.Context, email string) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE newsletter_subscribers
		SET unsubscribed_at = NOW()
		WHERE email = $1 AND unsubscribed_at IS NULL
	`, email)
	if err != nil {
		return false, fmt.Errorf("unsubscribe: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ListDigestRecipients returns active subscribers not yet sent the digest of signalDate
func (r *Repository) ListDigestRecipients(ctx context.Context, signalDate time.Time) ([]contracts.Subscriber, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, email, source, subscribed_at, last_digest_on
		FROM newsletter_subscribers
		WHERE unsubscribed_at IS NULL
		  AND (last_digest_on IS NULL OR last_digest_on < $1)
		ORDER BY id
	`, signalDate)
	if err != nil {
		return nil, fmt.Errorf("query digest recipients: %w", err)
	}
	defer rows.Close()

	subs := make([]contracts.Subscriber, 0)
	for rows.Next() {
		var s contracts.Subscriber
		if err := rows.Scan(&s.ID, &s.Email, &s.Source, &s.SubscribedAt, &s.LastDigestOn); err != nil {
			return nil, fmt.Errorf("scan subscriber: %w", err)
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}

// ClaimDigest marks a subscriber as served for signalDate unless another run got there first
func (r *Repository) ClaimDigest(ctx context.Context, id int64, signalDate time.Time) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE newsletter_subscribers
		SET last_digest_on = $2
		WHERE id = $1
		  AND unsubscribed_at IS NULL
		  AND (last_digest_on IS NULL OR last_digest_on < $2)
	`, id, signalDate)
	if err != nil {
		return false, fmt.Errorf("claim digest for %d: %w", id, err)
	}
	return tag.RowsAffected() == 1, nil
}

// ReleaseDigest restores last_digest_on after a failed send so the next run retries
func (r *Repository) ReleaseDigest(ctx context.Context, id int64, signalDate time.Time, previous *time.Time) error {
	_, err := r.db.Exec(ctx, `
		UPDATE newsletter_subscribers
		SET last_digest_on = $3
		WHERE id = $1 AND last_digest_on = $2
	`, id, signalDate, previous)
	if err != nil {
		return fmt.Errorf("release digest for %d: %w", id, err)
	}
	return nil
}
