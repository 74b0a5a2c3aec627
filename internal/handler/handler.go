// Package handler exposes the shop's HTTP surface: the four shopper
// operations (catalog view, cart view, add, remove) and the API-key guarded
// admin catalog CRUD.
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/arkadiv/storefront/internal/cartstore"
	"github.com/arkadiv/storefront/internal/domain/catalog"
)

// Handler carries the shop's dependencies: the catalog repository and the
// cart synchronizer. All cart state is request-local; Handler itself is
// stateless and safe for concurrent use.
type Handler struct {
	catalog  catalog.Repository
	carts    *cartstore.Synchronizer
	validate *validator.Validate
}

// NewHandler constructs a Handler with the required dependencies.
func NewHandler(catalogRepo catalog.Repository, carts *cartstore.Synchronizer) *Handler {
	return &Handler{
		catalog:  catalogRepo,
		carts:    carts,
		validate: validator.New(),
	}
}

// Routes registers all shop routes on the router. adminAuth wraps the
// catalog mutation endpoints.
func (h *Handler) Routes(r chi.Router, adminAuth func(http.Handler) http.Handler) {
	r.Get("/products", h.ViewCatalog)
	r.Get("/products/{productID}", h.GetProduct)

	r.Get("/cart", h.ViewCart)
	r.Post("/cart/items", h.AddToCart)
	r.Post("/cart/items/{productID}/remove", h.RemoveFromCart)

	r.Route("/admin/products", func(r chi.Router) {
		r.Use(adminAuth)
		r.Post("/", h.CreateProduct)
		r.Put("/{productID}", h.UpdateProduct)
		r.Delete("/{productID}", h.DeleteProduct)
	})
}
