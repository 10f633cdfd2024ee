package platform

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/wonny/signalboard/internal/contracts"
	"github.com/wonny/signalboard/pkg/database"
)

// Repository reads dashboard sessions written by the auth provider
type Repository struct {
	db database.Querier
}

var _ contracts.SessionRepository = (*Repository)(nil)

// NewRepository creates a new Repository instance
func NewRepository(db database.Querier) *Repository {
	return &Repository{db: db}
}

// FindActive returns the unexpired session stored under tokenHash
func (r *Repository) FindActive(ctx context.Context, tokenHash string) (*contracts.Session, error) {
	query := `
		SELECT user_id, email, plan, expires_at
		FROM platform_sessions
		WHERE token_hash = $1 AND expires_at > NOW()
	`

	var s contracts.Session
	err := r.db.QueryRow(ctx, query, tokenHash).Scan(&s.UserID, &s.Email, &s.Plan, &s.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, contracts.ErrNotFound
		}
		return nil, fmt.Errorf("find session: %w", err)
	}
	return &s, nil
}
