package cart

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arkadiv/storefront/internal/domain/catalog"
)

// --- Mock catalog reader ---

type mockReader struct {
	products   []catalog.Product
	categories []catalog.Category
	listErr    error
	batchErr   error

	batchCalls int
}

func (m *mockReader) List(_ context.Context, f catalog.Filter) ([]catalog.Product, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.products, nil
}

func (m *mockReader) GetByID(_ context.Context, id int64) (*catalog.Product, error) {
	for i := range m.products {
		if m.products[i].ID == id {
			return &m.products[i], nil
		}
	}
	return nil, catalog.ErrNotFound
}

func (m *mockReader) GetByIDs(_ context.Context, ids []int64) ([]catalog.Product, error) {
	m.batchCalls++
	if m.batchErr != nil {
		return nil, m.batchErr
	}
	var out []catalog.Product
	for _, p := range m.products {
		for _, id := range ids {
			if p.ID == id {
				out = append(out, p)
				break
			}
		}
	}
	return out, nil
}

func (m *mockReader) Categories(_ context.Context) ([]catalog.Category, error) {
	return m.categories, nil
}

func newTestProduct(id int64, name string, price string) catalog.Product {
	return catalog.Product{
		ID:           id,
		Name:         name,
		Description:  name + " description",
		Price:        decimal.RequireFromString(price),
		Color:        "black",
		Image:        "img.jpg",
		CategoryID:   1,
		CategoryName: "apparel",
	}
}

// --- Tests ---

func TestReconcile_EmptyCart(t *testing.T) {
	reader := &mockReader{}

	lines, err := Reconcile(context.Background(), New(), reader)

	require.NoError(t, err)
	assert.Empty(t, lines)
	assert.Zero(t, reader.batchCalls, "empty cart must not hit the catalog")
}

func TestReconcile_Scenario(t *testing.T) {
	// Cart {} -> add(101,2) -> add(205,1) -> add(101,1) => {101:3, 205:1}.
	c := New()
	require.NoError(t, c.Add(101, 2))
	require.NoError(t, c.Add(205, 1))
	require.NoError(t, c.Add(101, 1))

	reader := &mockReader{products: []catalog.Product{
		newTestProduct(101, "Shirt", "20"),
		newTestProduct(205, "Hat", "10"),
	}}

	lines, err := Reconcile(context.Background(), c, reader)
	require.NoError(t, err)
	require.Len(t, lines, 2)

	assert.Equal(t, int64(101), lines[0].ProductID)
	assert.Equal(t, "Shirt", lines[0].Name)
	assert.True(t, decimal.NewFromInt(20).Equal(lines[0].Price))
	assert.Equal(t, 3, lines[0].Quantity)

	assert.Equal(t, int64(205), lines[1].ProductID)
	assert.Equal(t, "Hat", lines[1].Name)
	assert.True(t, decimal.NewFromInt(10).Equal(lines[1].Price))
	assert.Equal(t, 1, lines[1].Quantity)

	assert.Equal(t, 1, reader.batchCalls, "products must be fetched in one batch")

	// remove(205) => {101:3}.
	c.Remove(205)
	lines, err = Reconcile(context.Background(), c, reader)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, int64(101), lines[0].ProductID)
	assert.Equal(t, 3, lines[0].Quantity)
}

func TestReconcile_MissingProductFlaggedUnavailable(t *testing.T) {
	c := New()
	require.NoError(t, c.Add(101, 3))
	require.NoError(t, c.Add(999, 2)) // product later deleted from catalog
	require.NoError(t, c.Add(205, 1))

	reader := &mockReader{products: []catalog.Product{
		newTestProduct(101, "Shirt", "20"),
		newTestProduct(205, "Hat", "10"),
	}}

	lines, err := Reconcile(context.Background(), c, reader)
	require.NoError(t, err)
	require.Len(t, lines, 3)

	assert.False(t, lines[0].Unavailable)
	assert.Equal(t, 3, lines[0].Quantity)

	assert.True(t, lines[1].Unavailable)
	assert.Equal(t, int64(999), lines[1].ProductID)
	assert.Equal(t, 2, lines[1].Quantity, "quantity must survive for unavailable lines")
	assert.True(t, lines[1].Price.IsZero())
	assert.Empty(t, lines[1].Name)

	assert.False(t, lines[2].Unavailable)
	assert.Equal(t, 1, lines[2].Quantity)
}

func TestReconcile_QuantityFromCartNotCatalog(t *testing.T) {
	c := New()
	require.NoError(t, c.Add(101, 7))

	reader := &mockReader{products: []catalog.Product{newTestProduct(101, "Shirt", "20")}}

	lines, err := Reconcile(context.Background(), c, reader)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 7, lines[0].Quantity)
}

func TestReconcile_ReaderError(t *testing.T) {
	c := New()
	require.NoError(t, c.Add(101, 1))

	reader := &mockReader{batchErr: errors.New("db down")}

	_, err := Reconcile(context.Background(), c, reader)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch cart products")
}

func TestListingLines(t *testing.T) {
	reader := &mockReader{products: []catalog.Product{
		newTestProduct(101, "Shirt", "20"),
		newTestProduct(205, "Hat", "10"),
	}}

	lines, err := ListingLines(context.Background(), reader, catalog.Filter{})
	require.NoError(t, err)
	require.Len(t, lines, 2)

	for _, l := range lines {
		assert.Zero(t, l.Quantity, "listing lines carry no cart quantity")
		assert.False(t, l.Unavailable)
	}
	assert.Equal(t, "Shirt", lines[0].Name)
	assert.Equal(t, "apparel", lines[0].CategoryName)
}

func TestListingLines_ReaderError(t *testing.T) {
	reader := &mockReader{listErr: errors.New("db down")}

	_, err := ListingLines(context.Background(), reader, catalog.Filter{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list products")
}
