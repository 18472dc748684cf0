package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/fernlabs/sessiond/internal/domain"
	"github.com/fernlabs/sessiond/internal/service"
	"github.com/fernlabs/sessiond/pkg/httpx"
	"github.com/fernlabs/sessiond/pkg/sessionsdk"
	"github.com/fernlabs/sessiond/pkg/slogx"
)

// ProfileHandler serves GET and PATCH /api/v1/user/profile.
type ProfileHandler struct {
	AccountService *service.AccountService
}

// HandleGet godoc
//
//	@Summary		User profile
//	@Description	Returns the authenticated user's profile.
//	@Tags			User
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	sessionsdk.ProfileResponse
//	@Failure		401	{object}	sessionsdk.ErrorResponse	"detail"
//	@Router			/api/v1/user/profile [get].
func (h *ProfileHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	user, ok := UserFromContext(ctx)
	if !ok {
		httpx.Unauthorized(w, "Could not validate credentials")
		return
	}

	profile, err := h.AccountService.GetProfile(ctx, user.ID)
	if err != nil {
		log.Error("profile lookup failed", "err", err, "user_id", user.ID)
		httpx.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toProfileResponse(profile))
}

// HandlePatch godoc
//
//	@Summary		Update user profile
//	@Description	Applies a partial update; fields absent from the body are left untouched.
//	@Tags			User
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			body	body		sessionsdk.ProfileUpdateRequest	true	"fields to change"
//	@Success		200		{object}	sessionsdk.ProfileResponse
//	@Failure		400		{object}	sessionsdk.ErrorResponse	"detail"
//	@Failure		401		{object}	sessionsdk.ErrorResponse	"detail"
//	@Router			/api/v1/user/profile [patch].
func (h *ProfileHandler) HandlePatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	user, ok := UserFromContext(ctx)
	if !ok {
		httpx.Unauthorized(w, "Could not validate credentials")
		return
	}

	var req sessionsdk.ProfileUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	profile, err := h.AccountService.UpdateProfile(ctx, user.ID, domain.ProfileUpdate{
		Timezone: req.Timezone,
		Locale:   req.Locale,
	})
	if err != nil {
		log.Error("profile update failed", "err", err, "user_id", user.ID)
		httpx.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toProfileResponse(profile))
}

func toProfileResponse(p domain.Profile) sessionsdk.ProfileResponse {
	return sessionsdk.ProfileResponse{
		UserID:    p.UserID,
		Timezone:  p.Timezone,
		Locale:    p.Locale,
		UpdatedAt: p.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
