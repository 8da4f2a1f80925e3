package marketdata

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/finsight/investment-tracker/internal/models"
)

// PgxQuerier is the slice of the pgx pool the store needs. Satisfied by
// *pgxpool.Pool and by pgxmock in tests.
type PgxQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresStore reads daily OHLC rows from the price_history table.
type PostgresStore struct {
	pool PgxQuerier
}

func NewPostgresStore(pool PgxQuerier) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// DailyCloses returns up to limit most recent daily rows for a symbol in
// chronological order.
func (s *PostgresStore) DailyCloses(ctx context.Context, symbol, assetType string, limit int) ([]models.RawPricePoint, error) {
	query := `SELECT date, open, high, low, close, volume FROM price_history
		 WHERE symbol = $1 AND asset_type = $2
		 ORDER BY date DESC LIMIT $3`

	rows, err := s.pool.Query(ctx, query, symbol, assetType, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query price history: %w", err)
	}
	defer rows.Close()

	var points []models.RawPricePoint
	for rows.Next() {
		var date time.Time
		var open, high, low, close, volume float64
		if scanErr := rows.Scan(&date, &open, &high, &low, &close, &volume); scanErr != nil {
			return nil, fmt.Errorf("failed to scan price row: %w", scanErr)
		}
		points = append(points, models.RawPricePoint{
			Date:   date.Format("2006-01-02"),
			Open:   open,
			High:   high,
			Low:    low,
			Close:  close,
			Volume: volume,
		})
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("error iterating price history rows: %w", rowsErr)
	}

	// Reverse to chronological order.
	for i, j := 0, len(points)-1; i < j; i, j = i+1, j-1 {
		points[i], points[j] = points[j], points[i]
	}

	return points, nil
}
