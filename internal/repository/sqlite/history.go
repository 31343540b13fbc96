package sqlite

import (
	"context"
	"fmt"

	"github.com/Perchusha/price-checker-v2/internal/models"
)

// AddHistoryEntry appends one price observation. The entry's ID is filled
// in from the inserted row.
func (r *Repository) AddHistoryEntry(ctx context.Context, entry *models.PriceHistoryEntry) error {
	const opn = "repository.sqlite.AddHistoryEntry"

	res, err := r.db.ExecContext(ctx,
		"INSERT INTO price_history (product_id, price, store, checked_at) VALUES (?, ?, ?, ?)",
		entry.ProductID, entry.Price, entry.Store, entry.CheckedAt,
	)
	if err != nil {
		return fmt.Errorf("%s: failed to insert history entry: %w", opn, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("%s: failed to read inserted id: %w", opn, err)
	}
	entry.ID = id

	return nil
}

// HistoryForProduct returns all recorded prices for one product, oldest
// first.
func (r *Repository) HistoryForProduct(ctx context.Context, productID int64) ([]models.PriceHistoryEntry, error) {
	const opn = "repository.sqlite.HistoryForProduct"

	rows, err := r.db.QueryContext(ctx,
		"SELECT id, product_id, price, store, checked_at FROM price_history WHERE product_id = ? ORDER BY checked_at, id",
		productID,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to query history: %w", opn, err)
	}
	defer rows.Close()

	var entries []models.PriceHistoryEntry
	for rows.Next() {
		var entry models.PriceHistoryEntry
		if err = rows.Scan(&entry.ID, &entry.ProductID, &entry.Price, &entry.Store, &entry.CheckedAt); err != nil {
			return nil, fmt.Errorf("%s: failed to scan history entry: %w", opn, err)
		}
		entries = append(entries, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows iteration error: %w", opn, err)
	}

	return entries, nil
}
