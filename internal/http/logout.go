package http

import (
	"net/http"

	"github.com/fernlabs/sessiond/internal/service"
	"github.com/fernlabs/sessiond/pkg/httpx"
	"github.com/fernlabs/sessiond/pkg/slogx"
)

// LogoutHandler serves POST /api/v1/auth/logout.
type LogoutHandler struct {
	SessionService *service.SessionService
}

// ServeHTTP godoc
//
//	@Summary		Log out
//	@Description	Revokes the refresh token carried by the cookie and clears it. Idempotent: logging out without a cookie, or twice, still returns 204.
//	@Tags			Auth
//	@Success		204
//	@Failure		500	{object}	sessionsdk.ErrorResponse	"detail"
//	@Router			/api/v1/auth/logout [post].
func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var token string
	if cookie, err := r.Cookie(refreshCookieName); err == nil {
		token = cookie.Value
	}

	if err := h.SessionService.Logout(ctx, token); err != nil {
		log.Error("logout failed", "err", err)
		httpx.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	clearRefreshCookie(w)
	w.WriteHeader(http.StatusNoContent)
}
