package handler

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/arkadiv/storefront/internal/domain/cart"
)

// flashCookie carries a one-shot user-facing message across the redirect
// after a cart mutation, the TempData pattern: written on the mutating
// request, consumed by the next view.
const flashCookie = "flash"

// Flash is a user-visible message with a severity level.
type Flash struct {
	Level   string `json:"level"` // "success" or "error"
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zctx.From(r.Context()).Error("write response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, r *http.Request, status int, message string) {
	respondJSON(w, r, status, map[string]any{
		"code":    status,
		"message": message,
	})
}

// setFlash stores a one-shot message for the next view request.
func setFlash(w http.ResponseWriter, f Flash) {
	raw, err := json.Marshal(f)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    base64.RawURLEncoding.EncodeToString(raw),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// takeFlash reads and clears the pending flash message, if any.
func takeFlash(w http.ResponseWriter, r *http.Request) *Flash {
	ck, err := r.Cookie(flashCookie)
	if err != nil || ck.Value == "" {
		return nil
	}

	// Clear regardless of whether the payload parses.
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	raw, err := base64.RawURLEncoding.DecodeString(ck.Value)
	if err != nil {
		return nil
	}
	var f Flash
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil
	}
	return &f
}

// redirectToCart sends the shopper to the cart view with a flash message,
// the post/redirect/get cycle every cart mutation follows.
func redirectToCart(w http.ResponseWriter, r *http.Request, f Flash) {
	setFlash(w, f)
	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}

// lineView is the JSON shape of an enriched line in view responses.
type lineView struct {
	ProductID    int64  `json:"product_id"`
	Name         string `json:"name,omitempty"`
	Description  string `json:"description,omitempty"`
	Price        string `json:"price"`
	Color        string `json:"color,omitempty"`
	Image        string `json:"image,omitempty"`
	CategoryID   int64  `json:"category_id,omitempty"`
	CategoryName string `json:"category_name,omitempty"`
	Quantity     int    `json:"quantity"`
	Unavailable  bool   `json:"unavailable,omitempty"`
}

func toLineViews(lines []cart.EnrichedLine) []lineView {
	out := make([]lineView, len(lines))
	for i, l := range lines {
		out[i] = lineView{
			ProductID:    l.ProductID,
			Name:         l.Name,
			Description:  l.Description,
			Price:        l.Price.StringFixed(2),
			Color:        l.Color,
			Image:        l.Image,
			CategoryID:   l.CategoryID,
			CategoryName: l.CategoryName,
			Quantity:     l.Quantity,
			Unavailable:  l.Unavailable,
		}
	}
	return out
}
