package catalog

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product represents a catalog item available for browsing and purchase.
type Product struct {
	ID           int64
	Name         string
	Description  string
	Price        decimal.Decimal
	Color        string
	Image        string
	CategoryID   int64
	CategoryName string
}

// Category groups products for filtering in the listing view.
type Category struct {
	ID   int64
	Name string
}

// Filter narrows a catalog listing. Zero values mean "no constraint".
type Filter struct {
	// Search matches case-insensitively against product name and description.
	Search string
	// Category matches the exact category name.
	Category string
}

// Reader defines the read operations the cart subsystem needs from the
// catalog. It is consumed read-only; catalog mutation lives on Repository.
type Reader interface {
	// List returns products matching the filter, ordered by ID.
	List(ctx context.Context, f Filter) ([]Product, error)
	// GetByID returns a single product or ErrNotFound.
	GetByID(ctx context.Context, id int64) (*Product, error)
	// GetByIDs returns products matching any of the given IDs in one batch.
	// Missing IDs are simply absent from the result, not an error.
	GetByIDs(ctx context.Context, ids []int64) ([]Product, error)
	// Categories returns all categories ordered by name.
	Categories(ctx context.Context) ([]Category, error)
}

// Repository extends Reader with the admin mutation operations.
type Repository interface {
	Reader

	// Create inserts a new product and fills in its assigned ID.
	Create(ctx context.Context, p *Product) error
	// Update rewrites an existing product. Returns ErrNotFound when the ID
	// does not exist.
	Update(ctx context.Context, p *Product) error
	// Delete removes a product. Returns ErrNotFound when the ID does not
	// exist. Carts referencing the product keep their lines; reconciliation
	// marks them unavailable.
	Delete(ctx context.Context, id int64) error
}
