// Package cart holds the shopper's in-progress selection and the logic that
// keeps it consistent: mutation with quantity accumulation, a compact wire
// codec for cookie transport, and reconciliation against the live catalog.
package cart

import (
	"fmt"
	"slices"
)

// InvalidQuantityError indicates an add request with a non-positive quantity.
// Such requests are rejected outright, never clamped.
type InvalidQuantityError struct {
	ProductID int64
	Quantity  int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0 for product %d, got %d", e.ProductID, e.Quantity)
}

// Line is a single cart entry. Quantity is always >= 1; a line that would
// reach zero is removed instead.
type Line struct {
	ProductID int64
	Quantity  int
}

// Cart is one shopper's selection for a single browsing context. Lines keep
// insertion order so display stays deterministic. A Cart is a request-local
// value: it is decoded fresh from the client store on every request and never
// shared between goroutines, so it needs no locking.
type Cart struct {
	lines []Line
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{}
}

// Add records qty more units of the given product. An existing line
// accumulates; otherwise a new line is appended. qty <= 0 is rejected with
// InvalidQuantityError and leaves the cart untouched.
func (c *Cart) Add(productID int64, qty int) error {
	if qty <= 0 {
		return &InvalidQuantityError{ProductID: productID, Quantity: qty}
	}
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			c.lines[i].Quantity += qty
			return nil
		}
	}
	c.lines = append(c.lines, Line{ProductID: productID, Quantity: qty})
	return nil
}

// Remove deletes the whole line for productID. Removing an absent product is
// a no-op.
func (c *Cart) Remove(productID int64) {
	c.lines = slices.DeleteFunc(c.lines, func(l Line) bool {
		return l.ProductID == productID
	})
}

// Quantity returns the quantity for productID, or 0 when absent.
func (c *Cart) Quantity(productID int64) int {
	for _, l := range c.lines {
		if l.ProductID == productID {
			return l.Quantity
		}
	}
	return 0
}

// Len returns the number of distinct lines.
func (c *Cart) Len() int {
	return len(c.lines)
}

// Lines returns the cart lines in insertion order. The returned slice is a
// copy; mutating it does not affect the cart.
func (c *Cart) Lines() []Line {
	return slices.Clone(c.lines)
}

// ProductIDs returns the product IDs in insertion order.
func (c *Cart) ProductIDs() []int64 {
	ids := make([]int64, len(c.lines))
	for i, l := range c.lines {
		ids[i] = l.ProductID
	}
	return ids
}

// Clone returns an independent copy of the cart.
func (c *Cart) Clone() *Cart {
	return &Cart{lines: slices.Clone(c.lines)}
}

// Equal reports whether two carts hold the same lines in the same order.
func (c *Cart) Equal(other *Cart) bool {
	return slices.Equal(c.lines, other.lines)
}
