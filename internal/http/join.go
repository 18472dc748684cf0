package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"strings"

	"github.com/fernlabs/sessiond/internal/service"
	"github.com/fernlabs/sessiond/pkg/httpx"
	"github.com/fernlabs/sessiond/pkg/sessionsdk"
	"github.com/fernlabs/sessiond/pkg/slogx"
)

// JoinHandler serves POST /api/v1/auth/join.
type JoinHandler struct {
	SessionService *service.SessionService
}

// ServeHTTP godoc
//
//	@Summary		Register a new account
//	@Description	Creates a user plus its empty profile and preferences rows. Registration does not log the user in; follow with POST /api/v1/auth/login.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		sessionsdk.JoinRequest	true	"email, password, name"
//	@Success		201		{object}	sessionsdk.UserResponse
//	@Failure		400		{object}	sessionsdk.ErrorResponse	"detail"
//	@Failure		500		{object}	sessionsdk.ErrorResponse	"detail"
//	@Router			/api/v1/auth/join [post].
func (h *JoinHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req sessionsdk.JoinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	if req.Email == "" || req.Password == "" {
		httpx.Error(w, http.StatusBadRequest, "Email and password are required")
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid email address")
		return
	}

	user, err := h.SessionService.Register(ctx, req.Email, req.Password, req.Name)
	if err != nil {
		if errors.Is(err, service.ErrDuplicateRegistration) {
			httpx.Error(w, http.StatusBadRequest, "Email already registered")
			return
		}
		log.Error("registration failed", "err", err)
		httpx.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toUserResponse(user))
}
