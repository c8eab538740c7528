package httpapi

import (
	"net/http"

	"github.com/google/uuid"
)

// SessionCookie names the cookie identifying one shopper's cart across
// requests. The rate limiter keys on the same cookie.
const SessionCookie = "ghbi_session"

// sessionMaxAge keeps the cart cookie for 30 days.
const sessionMaxAge = 30 * 24 * 60 * 60

// sessionID returns the shopper's session identifier, minting and setting a
// new one when the request carries none.
func sessionID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		return c.Value
	}

	id := uuid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}
