package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/arkadiv/storefront/internal/domain/catalog"
)

// productRequest is the body of the admin create/update endpoints. Price
// arrives as a string so decimal precision survives the JSON round trip.
type productRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
	Price       string `json:"price" validate:"required"`
	Color       string `json:"color" validate:"max=100"`
	Image       string `json:"image" validate:"max=500"`
	CategoryID  int64  `json:"category_id" validate:"required"`
}

func (h *Handler) decodeProductRequest(w http.ResponseWriter, r *http.Request) (*catalog.Product, bool) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid request body")
		return nil, false
	}

	if err := h.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make(map[string]string, len(verrs))
			for _, fe := range verrs {
				fields[fe.Field()] = "failed on rule: " + fe.Tag()
			}
			respondJSON(w, r, http.StatusBadRequest, map[string]any{"validation_errors": fields})
			return nil, false
		}
		respondError(w, r, http.StatusBadRequest, "invalid request")
		return nil, false
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil || price.IsNegative() {
		respondError(w, r, http.StatusBadRequest, "price must be a non-negative decimal")
		return nil, false
	}

	return &catalog.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       price,
		Color:       req.Color,
		Image:       req.Image,
		CategoryID:  req.CategoryID,
	}, true
}

// CreateProduct inserts a new catalog product.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	p, ok := h.decodeProductRequest(w, r)
	if !ok {
		return
	}

	if err := h.catalog.Create(r.Context(), p); err != nil {
		zctx.From(r.Context()).Error("create product", zap.String("name", p.Name), zap.Error(err))
		respondError(w, r, http.StatusInternalServerError, "failed to create product")
		return
	}

	zctx.From(r.Context()).Info("product created", zap.Int64("product_id", p.ID), zap.String("name", p.Name))
	respondJSON(w, r, http.StatusCreated, toProductView(*p))
}

// UpdateProduct rewrites an existing catalog product.
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid product id")
		return
	}

	p, ok := h.decodeProductRequest(w, r)
	if !ok {
		return
	}
	p.ID = id

	if err := h.catalog.Update(r.Context(), p); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			respondError(w, r, http.StatusNotFound, fmt.Sprintf("product %d not found", id))
			return
		}
		zctx.From(r.Context()).Error("update product", zap.Int64("product_id", id), zap.Error(err))
		respondError(w, r, http.StatusInternalServerError, "failed to update product")
		return
	}

	respondJSON(w, r, http.StatusOK, toProductView(*p))
}

// DeleteProduct removes a catalog product. Cart lines referencing it stay in
// shoppers' cookies and show up flagged unavailable on their next view.
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid product id")
		return
	}

	if err := h.catalog.Delete(r.Context(), id); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			respondError(w, r, http.StatusNotFound, fmt.Sprintf("product %d not found", id))
			return
		}
		zctx.From(r.Context()).Error("delete product", zap.Int64("product_id", id), zap.Error(err))
		respondError(w, r, http.StatusInternalServerError, "failed to delete product")
		return
	}

	zctx.From(r.Context()).Info("product deleted", zap.Int64("product_id", id))
	w.WriteHeader(http.StatusNoContent)
}
