package prices

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/wonny/signalboard/internal/contracts"
	"github.com/wonny/signalboard/pkg/database"
)

// Repository implements contracts.PriceRepository
// ⭐ SSOT: 가격 조회는 여기서만
type Repository struct {
	db database.Querier
}

var _ contracts.PriceRepository = (*Repository)(nil)

// NewRepository creates a new price repository
func NewRepository(db database.Querier) *Repository {
	return &Repository{db: db}
}

// Latest retrieves the most recent stored quote for a ticker
func (r *Repository) Latest(ctx context.Context, ticker string) (*contracts.Price, error) {
	query := `
		SELECT ticker, price::float8, COALESCE(change, 0)::float8, COALESCE(change_percent, 0)::float8, as_of
		FROM stock_prices
		WHERE ticker = $1
		ORDER BY as_of DESC
		LIMIT 1
	`

	var p contracts.Price
	err := r.db.QueryRow(ctx, query, ticker).Scan(&p.Ticker, &p.Price, &p.Change, &p.ChangePercent, &p.AsOf)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("price for %s: %w", ticker, contracts.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query price for %s: %w", ticker, err)
	}
	return &p, nil
}
