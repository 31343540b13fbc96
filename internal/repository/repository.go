package repository

import (
	"context"
	"errors"

	"github.com/Perchusha/price-checker-v2/internal/models"
)

// ErrProductNotFound is returned when the requested product does not exist.
var ErrProductNotFound = errors.New("product not found")

// Interface is the persistence collaborator for tracked products and their
// price history.
type Interface interface {
	GetProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
	CreateProduct(ctx context.Context, product *models.Product) error
	UpdateProduct(ctx context.Context, product *models.Product) error
	// DeleteProduct removes a product and cascades to its history entries.
	DeleteProduct(ctx context.Context, id int64) error
	AddHistoryEntry(ctx context.Context, entry *models.PriceHistoryEntry) error
	HistoryForProduct(ctx context.Context, productID int64) ([]models.PriceHistoryEntry, error)
}
