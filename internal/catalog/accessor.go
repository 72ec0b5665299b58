package catalog

import (
	"context"
	"errors"

	"github.com/Nicoc39/Proyecto-Backend-2-Nicolas-Carranza/internal/domain"
)

var (
	ErrProductNotFound = errors.New("product not found")

	// ErrInvalidDecrement means the requested amount exceeds the current
	// stock. The check happens in the same storage operation as the
	// subtraction, so stock can never go below zero even under
	// concurrent checkouts.
	ErrInvalidDecrement = errors.New("decrement amount exceeds available stock")
)

// Accessor reads products and applies stock decrements.
type Accessor interface {
	// GetStock returns the current product record or ErrProductNotFound.
	GetStock(ctx context.Context, productID string) (*domain.Product, error)

	// DecrementStock atomically subtracts amount from the product's stock
	// and returns the updated record. It fails with ErrInvalidDecrement
	// when amount exceeds the current stock, and ErrProductNotFound when
	// the product does not exist. amount must be positive.
	DecrementStock(ctx context.Context, productID string, amount int) (*domain.Product, error)

	// ListAvailable returns products with stock remaining.
	ListAvailable(ctx context.Context) ([]*domain.Product, error)

	// Insert adds a product to the catalog (seeding and admin use).
	Insert(ctx context.Context, product *domain.Product) error
}
