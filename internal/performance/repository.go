package performance

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/wonny/signalboard/internal/contracts"
	"github.com/wonny/signalboard/pkg/database"
	"github.com/wonny/signalboard/pkg/logger"
)

// Repository reads the precomputed strategy vs benchmark payload
type Repository struct {
	db     database.Querier
	logger *logger.Logger
}

var _ contracts.PerformanceRepository = (*Repository)(nil)

// NewRepository creates a new Repository instance
func NewRepository(db database.Querier, log *logger.Logger) *Repository {
	return &Repository{db: db, logger: log}
}

// Latest returns the newest performance snapshot
func (r *Repository) Latest(ctx context.Context) (*contracts.PerformancePayload, error) {
	query := `
		SELECT id, generated_at, strategy_name, benchmark_name, series, summary
		FROM performance_snapshots
		ORDER BY generated_at DESC, id DESC
		LIMIT 1
	`

	var p contracts.PerformancePayload
	var series, summary []byte
	err := r.db.QueryRow(ctx, query).Scan(&p.ID, &p.GeneratedAt, &p.StrategyName, &p.BenchmarkName, &series, &summary)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("performance snapshot: %w", contracts.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query performance snapshot: %w", err)
	}

	var skipped int
	p.Series, skipped, err = contracts.DecodeSeries(series)
	if err != nil {
		return nil, fmt.Errorf("decode performance series %d: %w", p.ID, err)
	}
	if skipped > 0 {
		r.logger.WithFields(map[string]interface{}{
			"snapshot_id": p.ID,
			"skipped":     skipped,
		}).Warn("Dropped incomplete performance points")
	}

	if len(summary) == 0 {
		summary = []byte("{}")
	}
	p.Summary = summary

	return &p, nil
}
