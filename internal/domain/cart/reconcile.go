package cart

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/arkadiv/storefront/internal/domain/catalog"
)

// EnrichedLine combines a cart line with the matching product's display
// attributes at reconciliation time. It is view data, never persisted.
type EnrichedLine struct {
	ProductID    int64
	Name         string
	Description  string
	Price        decimal.Decimal
	Color        string
	Image        string
	CategoryID   int64
	CategoryName string
	// Quantity comes from the cart line (0 for listing lines), never from
	// the catalog.
	Quantity int
	// Unavailable marks a line whose product no longer exists in the
	// catalog. The quantity is preserved so the shopper can see what
	// disappeared and remove the line, instead of it vanishing silently.
	Unavailable bool
}

// Reconcile joins the cart against the current catalog snapshot and returns
// display-ready lines in cart insertion order. Products are fetched in a
// single batch to avoid per-line queries. Lines referencing deleted products
// are returned flagged Unavailable rather than dropped.
//
// Reconcile has no side effects and is deterministic for a given cart and
// catalog snapshot.
func Reconcile(ctx context.Context, c *Cart, reader catalog.Reader) ([]EnrichedLine, error) {
	if c.Len() == 0 {
		return nil, nil
	}

	products, err := reader.GetByIDs(ctx, c.ProductIDs())
	if err != nil {
		return nil, errors.Wrap(err, "fetch cart products")
	}

	byID := make(map[int64]catalog.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	lines := make([]EnrichedLine, 0, c.Len())
	for _, l := range c.Lines() {
		p, ok := byID[l.ProductID]
		if !ok {
			lines = append(lines, EnrichedLine{
				ProductID:   l.ProductID,
				Quantity:    l.Quantity,
				Price:       decimal.Zero,
				Unavailable: true,
			})
			continue
		}
		lines = append(lines, enrich(p, l.Quantity))
	}
	return lines, nil
}

// ListingLines returns the full catalog (optionally filtered) as enriched
// lines with zero quantity. The listing and the cart view share the same
// enrichment shape, but listing is its own operation rather than a cart with
// an all-zero sentinel.
func ListingLines(ctx context.Context, reader catalog.Reader, f catalog.Filter) ([]EnrichedLine, error) {
	products, err := reader.List(ctx, f)
	if err != nil {
		return nil, errors.Wrap(err, "list products")
	}

	lines := make([]EnrichedLine, len(products))
	for i, p := range products {
		lines[i] = enrich(p, 0)
	}
	return lines, nil
}

func enrich(p catalog.Product, qty int) EnrichedLine {
	return EnrichedLine{
		ProductID:    p.ID,
		Name:         p.Name,
		Description:  p.Description,
		Price:        p.Price,
		Color:        p.Color,
		Image:        p.Image,
		CategoryID:   p.CategoryID,
		CategoryName: p.CategoryName,
		Quantity:     qty,
	}
}
