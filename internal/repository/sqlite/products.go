package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Perchusha/price-checker-v2/internal/models"
	"github.com/Perchusha/price-checker-v2/internal/repository"
)

const productColumns = `id, name, target_price, url, current_price,
	found_url, found_store, found_store_url, last_checked, is_active, is_checking, created_at`

// GetProducts returns every tracked product in creation order.
func (r *Repository) GetProducts(ctx context.Context) ([]models.Product, error) {
	const opn = "repository.sqlite.GetProducts"

	rows, err := r.db.QueryContext(ctx,
		"SELECT "+productColumns+" FROM products ORDER BY created_at, id")
	if err != nil {
		return nil, fmt.Errorf("%s: failed to query products: %w", opn, err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to scan product: %w", opn, err)
		}
		products = append(products, *product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows iteration error: %w", opn, err)
	}

	return products, nil
}

// GetProduct returns one product by ID.
func (r *Repository) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	const opn = "repository.sqlite.GetProduct"

	row := r.db.QueryRowContext(ctx,
		"SELECT "+productColumns+" FROM products WHERE id = ?", id)

	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrProductNotFound
		}
		return nil, fmt.Errorf("%s: failed to scan product: %w", opn, err)
	}

	return product, nil
}

// CreateProduct inserts a new product.
func (r *Repository) CreateProduct(ctx context.Context, product *models.Product) error {
	const opn = "repository.sqlite.CreateProduct"

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO products (`+productColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		product.ID, product.Name, product.TargetPrice, product.URL,
		nullFloat(product.CurrentPrice), nullString(product.FoundURL),
		nullString(product.FoundStore), nullString(product.FoundStoreURL),
		nullTime(product.LastChecked), product.IsActive, product.IsChecking,
		product.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("%s: failed to insert product: %w", opn, err)
	}

	return nil
}

// UpdateProduct overwrites every mutable field of the product.
func (r *Repository) UpdateProduct(ctx context.Context, product *models.Product) error {
	const opn = "repository.sqlite.UpdateProduct"

	res, err := r.db.ExecContext(ctx, `
		UPDATE products SET
			name = ?, target_price = ?, url = ?, current_price = ?,
			found_url = ?, found_store = ?, found_store_url = ?,
			last_checked = ?, is_active = ?, is_checking = ?
		WHERE id = ?`,
		product.Name, product.TargetPrice, product.URL,
		nullFloat(product.CurrentPrice), nullString(product.FoundURL),
		nullString(product.FoundStore), nullString(product.FoundStoreURL),
		nullTime(product.LastChecked), product.IsActive, product.IsChecking,
		product.ID,
	)
	if err != nil {
		return fmt.Errorf("%s: failed to update product: %w", opn, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: failed to read affected rows: %w", opn, err)
	}
	if affected == 0 {
		return repository.ErrProductNotFound
	}

	return nil
}

// DeleteProduct removes a product; its history rows go with it via the
// foreign-key cascade.
func (r *Repository) DeleteProduct(ctx context.Context, id int64) error {
	const opn = "repository.sqlite.DeleteProduct"

	res, err := r.db.ExecContext(ctx, "DELETE FROM products WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("%s: failed to delete product: %w", opn, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: failed to read affected rows: %w", opn, err)
	}
	if affected == 0 {
		return repository.ErrProductNotFound
	}

	return nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*models.Product, error) {
	var (
		product       models.Product
		currentPrice  sql.NullFloat64
		foundURL      sql.NullString
		foundStore    sql.NullString
		foundStoreURL sql.NullString
		lastChecked   sql.NullTime
	)

	err := row.Scan(
		&product.ID, &product.Name, &product.TargetPrice, &product.URL,
		&currentPrice, &foundURL, &foundStore, &foundStoreURL,
		&lastChecked, &product.IsActive, &product.IsChecking, &product.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if currentPrice.Valid {
		product.CurrentPrice = &currentPrice.Float64
	}
	if foundURL.Valid {
		product.FoundURL = &foundURL.String
	}
	if foundStore.Valid {
		product.FoundStore = &foundStore.String
	}
	if foundStoreURL.Valid {
		product.FoundStoreURL = &foundStoreURL.String
	}
	if lastChecked.Valid {
		product.LastChecked = &lastChecked.Time
	}

	return &product, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

func nullTime(v *time.Time) sql.NullTime {
	if v == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *v, Valid: true}
}
