package cartstore

import (
	"net/http"
	"time"

	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arkadiv/storefront/internal/domain/cart"
)

// Synchronizer owns the cart for the duration of one request: it loads the
// authoritative copy from the cookie, and after the handler has applied its
// mutation (or none) it writes the result back to both stores.
//
// The cookie is the only read source. The session store is a write-only
// mirror; see SessionStore. Both writes happen on every request that touches
// the cart, including pure reads, so both copies stay fresh.
//
// Two concurrent requests from the same browser load the same starting cart
// and the last Persist wins. That lost-update window is inherent to
// cookie-held state and accepted for a cart.
type Synchronizer struct {
	cookies           *CookieStore
	sessions          SessionStore
	sessionCookieName string
	sessionTTL        time.Duration
}

// NewSynchronizer wires the two stores together. sessionCookieName holds the
// browser's session ID, a separate cookie from the cart itself.
func NewSynchronizer(cookies *CookieStore, sessions SessionStore, sessionCookieName string, sessionTTL time.Duration) *Synchronizer {
	return &Synchronizer{
		cookies:           cookies,
		sessions:          sessions,
		sessionCookieName: sessionCookieName,
		sessionTTL:        sessionTTL,
	}
}

// Load returns the request's cart from the client-held cookie. Absence or
// corruption yields an empty cart, indistinguishable from a first visit.
func (s *Synchronizer) Load(r *http.Request) *cart.Cart {
	return s.cookies.Read(r)
}

// Persist writes the cart to the cookie and mirrors it into the session
// store. The cookie write cannot fail; a mirror failure is logged and
// swallowed so storage hiccups never fail the request.
func (s *Synchronizer) Persist(w http.ResponseWriter, r *http.Request, c *cart.Cart) {
	s.cookies.Write(w, c)

	sid := s.sessionID(w, r)
	if err := s.sessions.Put(r.Context(), sid, cart.Encode(c)); err != nil {
		zctx.From(r.Context()).Warn("session cart mirror write failed",
			zap.String("session_id", sid),
			zap.Error(err),
		)
	}
}

// sessionID returns the browser's session ID, minting and setting a new one
// when the request carries none.
func (s *Synchronizer) sessionID(w http.ResponseWriter, r *http.Request) string {
	if ck, err := r.Cookie(s.sessionCookieName); err == nil && ck.Value != "" {
		return ck.Value
	}

	sid := uuid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     s.sessionCookieName,
		Value:    sid,
		Path:     "/",
		MaxAge:   int(s.sessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sid
}
