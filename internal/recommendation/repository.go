package recommendation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/wonny/signalboard/internal/contracts"
	"github.com/wonny/signalboard/pkg/database"
)

// Repository reads stored daily and weekly recommendation batches
// ⭐ SSOT: 추천 종목 조회는 여기서만
type Repository struct {
	db database.Querier
}

var _ contracts.RecommendationRepository = (*Repository)(nil)

// NewRepository creates a new Repository instance
func NewRepository(db database.Querier) *Repository {
	return &Repository{db: db}
}

// source maps a period to its table and batch date column
type source struct {
	table   string
	dateCol string
}

func sourceFor(period contracts.Period) (source, error) {
	switch period {
	case contracts.PeriodDaily:
		return source{table: "daily_recommendations", dateCol: "recommended_on"}, nil
	case contracts.PeriodWeekly:
		return source{table: "weekly_recommendations", dateCol: "week_of"}, nil
	}
	return source{}, fmt.Errorf("%w: period %q", contracts.ErrInvalidInput, period)
}

// LatestDate returns the date of the newest stored batch
func (r *Repository) LatestDate(ctx context.Context, period contracts.Period) (time.Time, error) {
	src, err := sourceFor(period)
	if err != nil {
		return time.Time{}, err
	}

	query := fmt.Sprintf(`SELECT MAX(%s) FROM %s`, src.dateCol, src.table)

	var latest *time.Time
	if err := r.db.QueryRow(ctx, query).Scan(&latest); err != nil {
		return time.Time{}, fmt.Errorf("query latest %s date: %w", period, err)
	}
	if latest == nil {
		return time.Time{}, fmt.Errorf("%s recommendations: %w", period, contracts.ErrNotFound)
	}
	return *latest, nil
}

// ListByDate returns every row of one batch
func (r *Repository) ListByDate(ctx context.Context, period contracts.Period, date time.Time) ([]contracts.Recommendation, error) {
	src, err := sourceFor(period)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT
			id,
			ticker,
			company_name,
			action,
			confidence::float8,
			price_at_signal::float8,
			target_price::float8,
			COALESCE(rationale, ''),
			%[1]s,
			created_at
		FROM %[2]s
		WHERE %[1]s = $1
		ORDER BY id
	`, src.dateCol, src.table)

	rows, err := r.db.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("query %s recommendations: %w", period, err)
	}
	defer rows.Close()

	items := make([]contracts.Recommendation, 0)
	for rows.Next() {
		rec, err := scanRecommendation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s recommendation: %w", period, err)
		}
		items = append(items, rec)
	}
	return items, rows.Err()
}

// Latest returns the newest batch of a period, sorted for display
func (r *Repository) Latest(ctx context.Context, period contracts.Period) (*contracts.RecommendationList, error) {
	date, err := r.LatestDate(ctx, period)
	if err != nil {
		return nil, err
	}

	items, err := r.ListByDate(ctx, period, date)
	if err != nil {
		return nil, err
	}

	return contracts.NewRecommendationList(period, date, items), nil
}

// LatestForTicker returns the most recent daily signal of one ticker
func (r *Repository) LatestForTicker(ctx context.Context, ticker string) (*contracts.Recommendation, error) {
	query := `
		SELECT
			id,
			ticker,
			company_name,
			action,
			confidence::float8,
			price_at_signal::float8,
			target_price::float8,
			COALESCE(rationale, ''),
			recommended_on,
			created_at
		FROM daily_recommendations
		WHERE ticker = $1
		ORDER BY recommended_on DESC, id DESC
		LIMIT 1
	`

	rec, err := scanRecommendation(r.db.QueryRow(ctx, query, ticker))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("recommendation for %s: %w", ticker, contracts.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query recommendation for %s: %w", ticker, err)
	}
	return &rec, nil
}

func scanRecommendation(row pgx.Row) (contracts.Recommendation, error) {
	var rec contracts.Recommendation
	var action string
	err := row.Scan(
		&rec.ID,
		&rec.Ticker,
		&rec.CompanyName,
		&action,
		&rec.Confidence,
		&rec.PriceAtSignal,
		&rec.TargetPrice,
		&rec.Rationale,
		&rec.SignalDate,
		&rec.CreatedAt,
	)
	rec.Action = contracts.Action(action)
	return rec, err
}
