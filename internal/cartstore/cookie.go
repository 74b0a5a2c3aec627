// Package cartstore persists the cart across its two storage locations: the
// client-held cookie (long-lived, authoritative on load) and a server-side
// session mirror (short-lived, write-only). The Synchronizer runs the
// load/apply/persist cycle on every cart-touching request.
package cartstore

import (
	"net/http"
	"time"

	"github.com/arkadiv/storefront/internal/domain/cart"
)

// CookieStore reads and writes the encoded cart in a single named cookie.
// The cookie is HttpOnly with a fixed multi-day retention window.
type CookieStore struct {
	name string
	ttl  time.Duration
}

// NewCookieStore returns a CookieStore writing to the given cookie name with
// the given retention window.
func NewCookieStore(name string, ttl time.Duration) *CookieStore {
	return &CookieStore{name: name, ttl: ttl}
}

// Read returns the cart from the request cookie. An absent, expired or
// corrupt cookie yields an empty cart.
func (s *CookieStore) Read(r *http.Request) *cart.Cart {
	ck, err := r.Cookie(s.name)
	if err != nil {
		return cart.New()
	}
	return cart.Decode(ck.Value)
}

// Write replaces the cookie with the encoded cart, resetting the retention
// window.
func (s *CookieStore) Write(w http.ResponseWriter, c *cart.Cart) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.name,
		Value:    cart.Encode(c),
		Path:     "/",
		Expires:  time.Now().Add(s.ttl),
		MaxAge:   int(s.ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
