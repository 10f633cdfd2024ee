package indexes

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/wonny/signalboard/internal/contracts"
	"github.com/wonny/signalboard/pkg/database"
)

// Repository reads index membership snapshots
// ⭐ SSOT: 지수 구성종목 조회는 여기서만
type Repository struct {
	db database.Querier
}

var _ contracts.IndexRepository = (*Repository)(nil)

// NewRepository creates a new Repository instance
func NewRepository(db database.Querier) *Repository {
	return &Repository{db: db}
}

// LatestSnapshot returns the newest snapshot row of an index
func (r *Repository) LatestSnapshot(ctx context.Context, indexCode string) (*contracts.IndexSnapshot, error) {
	query := `
		SELECT id, index_code, snapshot_date, created_at
		FROM index_snapshots
		WHERE index_code = $1
		ORDER BY snapshot_date DESC, id DESC
		LIMIT 1
	`

	var s contracts.IndexSnapshot
	err := r.db.QueryRow(ctx, query, indexCode).Scan(&s.ID, &s.IndexCode, &s.SnapshotDate, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("snapshot for %s: %w", indexCode, contracts.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query latest snapshot for %s: %w", indexCode, err)
	}
	return &s, nil
}

// Members returns the constituents of one snapshot
func (r *Repository) Members(ctx context.Context, snapshotID int64) ([]contracts.IndexMember, error) {
	query := `
		SELECT ticker, COALESCE(company_name, ''), COALESCE(sector, ''), COALESCE(weight, 0)::float8
		FROM index_members
		WHERE snapshot_id = $1
	`

	rows, err := r.db.Query(ctx, query, snapshotID)
	if err != nil {
		return nil, fmt.Errorf("query members of snapshot %d: %w", snapshotID, err)
	}
	defer rows.Close()

	members := make([]contracts.IndexMember, 0)
	for rows.Next() {
		var m contracts.IndexMember
		if err := rows.Scan(&m.Ticker, &m.CompanyName, &m.Sector, &m.Weight); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}
