package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/fernlabs/sessiond/internal/domain"
	"github.com/fernlabs/sessiond/internal/service"
	"github.com/fernlabs/sessiond/pkg/httpx"
	"github.com/fernlabs/sessiond/pkg/sessionsdk"
	"github.com/fernlabs/sessiond/pkg/slogx"
)

// LoginHandler serves POST /api/v1/auth/login.
// Accepts application/x-www-form-urlencoded with username and password fields.
type LoginHandler struct {
	SessionService *service.SessionService
}

// ServeHTTP godoc
//
//	@Summary		Password login
//	@Description	Verifies credentials and issues an access/refresh pair. The access token is returned in the body, the refresh token only as an HttpOnly cookie. Unknown email and wrong password fail identically.
//	@Tags			Auth
//	@Accept			application/x-www-form-urlencoded
//	@Produce		json
//	@Param			username	formData	string	true	"Account email"
//	@Param			password	formData	string	true	"Password"
//	@Success		200			{object}	sessionsdk.TokenResponse	"access_token, expiry, token_type"
//	@Failure		400			{object}	sessionsdk.ErrorResponse	"detail"
//	@Failure		401			{object}	sessionsdk.ErrorResponse	"detail"
//	@Failure		500			{object}	sessionsdk.ErrorResponse	"detail"
//	@Header			200			{string}	Cache-Control				"no-store"
//	@Router			/api/v1/auth/login [post].
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	if ct := r.Header.Get("Content-Type"); ct != "" &&
		!strings.HasPrefix(ct, "application/x-www-form-urlencoded") {
		httpx.Error(w, http.StatusBadRequest, "Expected form-encoded body")
		return
	}
	if err := r.ParseForm(); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid form body")
		return
	}

	username := strings.TrimSpace(r.Form.Get("username"))
	password := r.Form.Get("password")
	if username == "" || password == "" {
		httpx.Error(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	pair, err := h.SessionService.Login(ctx, username, password)
	if err != nil {
		if errors.Is(err, service.ErrAuthentication) {
			httpx.Unauthorized(w, "Incorrect username or password")
			return
		}
		log.Error("login failed", "err", err)
		httpx.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeTokenPair(w, h.SessionService.Codec.RefreshTTL(), pair)
}

// writeTokenPair sends the access token in the body and the refresh token as
// a cookie. Shared by the login and refresh handlers so the two responses
// cannot diverge.
func writeTokenPair(w http.ResponseWriter, refreshTTL time.Duration, pair domain.TokenPair) {
	setRefreshCookie(w, pair.RefreshToken, refreshTTL)

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, sessionsdk.TokenResponse{
		AccessToken: pair.AccessToken,
		Expiry:      pair.AccessExpiry.Unix(),
		TokenType:   "bearer",
	})
}
