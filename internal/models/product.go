package models

import "time"

// Product is a single tracked item: the search query the user entered,
// the price they are willing to pay and the outcome of the last check.
type Product struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	TargetPrice float64 `json:"target_price"`
	// URL, when set, points at a concrete product page and the
	// multi-source search is skipped for this product.
	URL          string   `json:"url,omitempty"`
	CurrentPrice *float64 `json:"current_price"`
	// Provenance of CurrentPrice. Store fields stay empty for checks
	// against a direct product page.
	FoundURL      *string    `json:"found_url"`
	FoundStore    *string    `json:"found_store"`
	FoundStoreURL *string    `json:"found_store_url"`
	LastChecked   *time.Time `json:"last_checked"`
	IsActive      bool       `json:"is_active"`
	// IsChecking is true only while a check for this product is in flight.
	IsChecking bool      `json:"is_checking"`
	CreatedAt  time.Time `json:"created_at"`
}

// PriceHistoryEntry is an append-only record of one successful price lookup.
type PriceHistoryEntry struct {
	ID        int64     `json:"id"`
	ProductID int64     `json:"product_id"`
	Price     float64   `json:"price"`
	Store     string    `json:"store"`
	CheckedAt time.Time `json:"checked_at"`
}
