package http

import (
	"errors"
	"net/http"

	"github.com/fernlabs/sessiond/internal/service"
	"github.com/fernlabs/sessiond/pkg/httpx"
	"github.com/fernlabs/sessiond/pkg/slogx"
)

// RefreshHandler serves POST /api/v1/auth/refresh.
type RefreshHandler struct {
	SessionService *service.SessionService
}

// ServeHTTP godoc
//
//	@Summary		Rotate the session
//	@Description	Exchanges the refresh token cookie for a new access/refresh pair. Each refresh token mints exactly one successor; presenting it again fails with 401. Missing, expired, revoked and malformed tokens all fail with the same message.
//	@Tags			Auth
//	@Produce		json
//	@Success		200	{object}	sessionsdk.TokenResponse	"access_token, expiry, token_type"
//	@Failure		401	{object}	sessionsdk.ErrorResponse	"detail"
//	@Failure		500	{object}	sessionsdk.ErrorResponse	"detail"
//	@Header			200	{string}	Cache-Control				"no-store"
//	@Router			/api/v1/auth/refresh [post].
func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	cookie, err := r.Cookie(refreshCookieName)
	if err != nil {
		// No cookie reads the same as a bad token to the caller.
		httpx.Unauthorized(w, "Could not validate refresh token")
		return
	}

	pair, err := h.SessionService.Refresh(ctx, cookie.Value)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAuthentication),
			errors.Is(err, service.ErrInvalidTokenPayload):
			httpx.Unauthorized(w, "Could not validate refresh token")
		default:
			log.Error("refresh failed", "err", err)
			httpx.Error(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	writeTokenPair(w, h.SessionService.Codec.RefreshTTL(), pair)
}
