package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/arkadiv/storefront/internal/domain/cart"
	"github.com/arkadiv/storefront/internal/domain/catalog"
)

// catalogView is the response body shared by the catalog and cart views.
// Error carries a transient, user-facing indicator when a backing store is
// unavailable; the rest of the view degrades to best effort instead of
// failing the request.
type catalogView struct {
	Products   []lineView     `json:"products"`
	Categories []categoryView `json:"categories"`
	Cart       []lineView     `json:"cart"`
	Flash      *Flash         `json:"flash,omitempty"`
	Error      string         `json:"error,omitempty"`
}

type categoryView struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

const errCatalogUnavailable = "catalog is temporarily unavailable, please try again"

// ViewCatalog renders the product listing with optional search and category
// filters, along with the current cart. Even this pure read runs the full
// load/persist cycle so both cart stores stay fresh.
func (h *Handler) ViewCatalog(w http.ResponseWriter, r *http.Request) {
	c := h.carts.Load(r)
	h.carts.Persist(w, r, c)

	view := h.buildView(w, r, c, catalog.Filter{
		Search:   r.URL.Query().Get("search"),
		Category: r.URL.Query().Get("category"),
	})
	respondJSON(w, r, http.StatusOK, view)
}

// ViewCart renders the current cart reconciled against the live catalog,
// plus the full listing, mirroring the combined page the shop serves.
func (h *Handler) ViewCart(w http.ResponseWriter, r *http.Request) {
	c := h.carts.Load(r)
	h.carts.Persist(w, r, c)

	view := h.buildView(w, r, c, catalog.Filter{})
	respondJSON(w, r, http.StatusOK, view)
}

// buildView assembles the shared view payload. Catalog failures degrade the
// affected section and set the transient error indicator; they never
// propagate as a 500.
func (h *Handler) buildView(w http.ResponseWriter, r *http.Request, c *cart.Cart, f catalog.Filter) catalogView {
	ctx := r.Context()
	lg := zctx.From(ctx)
	view := catalogView{
		Products:   []lineView{},
		Categories: []categoryView{},
		Cart:       []lineView{},
		Flash:      takeFlash(w, r),
	}

	listing, err := cart.ListingLines(ctx, h.catalog, f)
	if err != nil {
		lg.Error("build listing", zap.Error(err))
		view.Error = errCatalogUnavailable
	} else {
		view.Products = toLineViews(listing)
	}

	categories, err := h.catalog.Categories(ctx)
	if err != nil {
		lg.Error("list categories", zap.Error(err))
		view.Error = errCatalogUnavailable
	} else {
		for _, cat := range categories {
			view.Categories = append(view.Categories, categoryView{ID: cat.ID, Name: cat.Name})
		}
	}

	cartLines, err := cart.Reconcile(ctx, c, h.catalog)
	if err != nil {
		lg.Error("reconcile cart", zap.Error(err))
		view.Error = errCatalogUnavailable
	} else {
		view.Cart = toLineViews(cartLines)
	}

	return view
}

// addToCartRequest is the body of POST /cart/items.
// Quantity policy (reject non-positive, never clamp) is enforced by
// cart.Add, so it lives in one place; the validator only guards the
// product reference.
type addToCartRequest struct {
	ProductID int64 `json:"product_id" validate:"required"`
	Quantity  int   `json:"quantity"`
}

// AddToCart validates the request, verifies the product exists, accumulates
// the quantity onto the cart, persists both stores, and redirects to the
// cart view with a flash message. Failures also redirect with a flash
// instead of surfacing a raw error; stored state is only mutated on success.
func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	lg := zctx.From(ctx)

	var req addToCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondError(w, r, http.StatusBadRequest, "product_id is required")
		return
	}

	if _, err := h.catalog.GetByID(ctx, req.ProductID); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			redirectToCart(w, r, Flash{Level: "error", Message: fmt.Sprintf("product %d not found", req.ProductID)})
			return
		}
		lg.Error("verify product before add", zap.Int64("product_id", req.ProductID), zap.Error(err))
		redirectToCart(w, r, Flash{Level: "error", Message: errCatalogUnavailable})
		return
	}

	c := h.carts.Load(r)
	if err := c.Add(req.ProductID, req.Quantity); err != nil {
		var iqErr *cart.InvalidQuantityError
		if errors.As(err, &iqErr) {
			redirectToCart(w, r, Flash{Level: "error", Message: iqErr.Error()})
			return
		}
		redirectToCart(w, r, Flash{Level: "error", Message: "could not add product to the shopping cart"})
		return
	}
	h.carts.Persist(w, r, c)

	noun := "item"
	if req.Quantity > 1 {
		noun = "items"
	}
	lg.Info("added to cart",
		zap.Int64("product_id", req.ProductID),
		zap.Int("quantity", req.Quantity),
	)
	redirectToCart(w, r, Flash{Level: "success", Message: fmt.Sprintf("Added %d %s to the shopping cart.", req.Quantity, noun)})
}

// RemoveFromCart deletes the whole line for the product and redirects to the
// cart view. Removing an absent product succeeds; removal is idempotent.
func (h *Handler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid product id")
		return
	}

	c := h.carts.Load(r)
	c.Remove(productID)
	h.carts.Persist(w, r, c)

	zctx.From(r.Context()).Info("removed from cart", zap.Int64("product_id", productID))
	redirectToCart(w, r, Flash{Level: "success", Message: "Product removed from the shopping cart."})
}

// GetProduct returns a single product by ID.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid product id")
		return
	}

	p, err := h.catalog.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			respondError(w, r, http.StatusNotFound, "product not found")
			return
		}
		zctx.From(r.Context()).Error("get product", zap.Int64("product_id", id), zap.Error(err))
		respondError(w, r, http.StatusInternalServerError, "failed to fetch product")
		return
	}
	respondJSON(w, r, http.StatusOK, toProductView(*p))
}

// productView is the JSON shape of a product in admin and detail responses.
type productView struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Price        string `json:"price"`
	Color        string `json:"color"`
	Image        string `json:"image"`
	CategoryID   int64  `json:"category_id"`
	CategoryName string `json:"category_name,omitempty"`
}

func toProductView(p catalog.Product) productView {
	return productView{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		Price:        p.Price.StringFixed(2),
		Color:        p.Color,
		Image:        p.Image,
		CategoryID:   p.CategoryID,
		CategoryName: p.CategoryName,
	}
}
