package http

import (
	"net/http"
	"time"
)

// refreshCookieName is the cookie carrying the refresh token. The token never
// appears in a response body.
const refreshCookieName = "refresh_token"

// setRefreshCookie delivers the refresh token as an HttpOnly cookie so script
// running in the page can never read it. SameSite=Lax keeps the cookie off
// cross-site POSTs while still sending it on top-level navigations. Secure is
// left off because deployments terminate TLS at the proxy; the cookie rides
// plain HTTP only on the internal hop.
func setRefreshCookie(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearRefreshCookie expires the cookie immediately.
func clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
