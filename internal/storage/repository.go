package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	pq "github.com/lib/pq"

	"github.com/ESGT1299/StockMarket-ETL/internal/domain/models"
)

// PriceRepository defines the store operations the load stage needs:
// a batched read of existing natural keys and a conditional batch insert.
type PriceRepository interface {
	ExistingKeys(ctx context.Context, symbols []string, start, end time.Time) (map[models.PriceKey]struct{}, error)
	InsertPricesBatch(ctx context.Context, records []models.PriceRecord) (int64, error)
}

type priceRepository struct {
	db *sql.DB
}

func NewPriceRepository(db *sql.DB) PriceRepository {
	return &priceRepository{db: db}
}

// ExistingKeys returns the (symbol, date) pairs already stored for any of
// the given symbols within [start, end]. One round-trip regardless of
// batch size; the caller diffs against it instead of probing per record.
func (r *priceRepository) ExistingKeys(ctx context.Context, symbols []string, start, end time.Time) (map[models.PriceKey]struct{}, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT symbol, date
		FROM stock_data
		WHERE symbol = ANY($1) AND date BETWEEN $2 AND $3
	`, pq.Array(symbols), start, end)
	if err != nil {
		return nil, fmt.Errorf("query existing keys: %w", err)
	}
	defer func() { _ = rows.Close() }()

	keys := make(map[models.PriceKey]struct{})
	for rows.Next() {
		var symbol string
		var date time.Time
		if err := rows.Scan(&symbol, &date); err != nil {
			return nil, fmt.Errorf("scan existing key: %w", err)
		}
		keys[models.PriceKey{Symbol: symbol, Date: date.UTC().Format(models.DateLayout)}] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate existing keys: %w", err)
	}
	return keys, nil
}

// InsertPricesBatch writes records inside one transaction. The insert is
// conditional on the (symbol, date) uniqueness constraint, so a pair that
// appeared between the caller's pre-check and this write is silently left
// alone rather than failing the batch. The returned count is rows actually
// inserted; the caller derives conflict skips from the difference.
//
// The transaction is all-or-nothing: any failure rolls the whole batch
// back and the count reported is 0.
func (r *priceRepository) InsertPricesBatch(ctx context.Context, records []models.PriceRecord) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin insert tx: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO stock_data (symbol, date, open_price, high_price, low_price, close_price, volume)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (symbol, date) DO NOTHING
	`)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("prepare insert: %w", err)
	}

	var inserted int64
	for _, rec := range records {
		res, err := stmt.ExecContext(ctx,
			rec.Symbol,
			rec.Date,
			rec.Open,
			rec.High,
			rec.Low,
			rec.Close,
			rec.Volume,
		)
		if err != nil {
			_ = stmt.Close()
			_ = tx.Rollback()
			return 0, fmt.Errorf("insert %s %s: %w", rec.Symbol, rec.Date.Format(models.DateLayout), err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			_ = stmt.Close()
			_ = tx.Rollback()
			return 0, fmt.Errorf("rows affected: %w", err)
		}
		inserted += n
	}

	if err := stmt.Close(); err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("close insert stmt: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit insert tx: %w", err)
	}
	return inserted, nil
}
