package http

import (
	"net/http"
	"time"

	"github.com/fernlabs/sessiond/internal/domain"
	"github.com/fernlabs/sessiond/internal/service"
	"github.com/fernlabs/sessiond/pkg/httpx"
	"github.com/fernlabs/sessiond/pkg/sessionsdk"
	"github.com/fernlabs/sessiond/pkg/slogx"
)

// UserInfoHandler serves GET and DELETE /api/v1/user/.
type UserInfoHandler struct {
	AccountService *service.AccountService
}

// HandleGet godoc
//
//	@Summary		Current user
//	@Description	Returns the authenticated principal. The password hash is never part of the response.
//	@Tags			User
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	sessionsdk.UserResponse
//	@Failure		401	{object}	sessionsdk.ErrorResponse	"detail"
//	@Router			/api/v1/user/ [get].
func (h *UserInfoHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		httpx.Unauthorized(w, "Could not validate credentials")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

// HandleDelete godoc
//
//	@Summary		Delete own account
//	@Description	Removes the account along with its profile, preferences and refresh tokens. Outstanding access tokens stop working at the next request.
//	@Tags			User
//	@Security		BearerAuth
//	@Success		204
//	@Failure		401	{object}	sessionsdk.ErrorResponse	"detail"
//	@Failure		500	{object}	sessionsdk.ErrorResponse	"detail"
//	@Router			/api/v1/user/ [delete].
func (h *UserInfoHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	user, ok := UserFromContext(ctx)
	if !ok {
		httpx.Unauthorized(w, "Could not validate credentials")
		return
	}

	if err := h.AccountService.DeleteAccount(ctx, user.ID); err != nil {
		log.Error("account deletion failed", "err", err, "user_id", user.ID)
		httpx.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	clearRefreshCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func toUserResponse(u domain.User) sessionsdk.UserResponse {
	return sessionsdk.UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		IsAdmin:   u.IsAdmin,
		CreatedAt: u.CreatedAt.UTC().Format(time.RFC3339),
	}
}
