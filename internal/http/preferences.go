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

// PreferencesHandler serves GET and PATCH /api/v1/user/preferences.
type PreferencesHandler struct {
	AccountService *service.AccountService
}

// HandleGet godoc
//
//	@Summary		User preferences
//	@Description	Returns the authenticated user's preferences.
//	@Tags			User
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	sessionsdk.PreferencesResponse
//	@Failure		401	{object}	sessionsdk.ErrorResponse	"detail"
//	@Router			/api/v1/user/preferences [get].
func (h *PreferencesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	user, ok := UserFromContext(ctx)
	if !ok {
		httpx.Unauthorized(w, "Could not validate credentials")
		return
	}

	prefs, err := h.AccountService.GetPreferences(ctx, user.ID)
	if err != nil {
		log.Error("preferences lookup failed", "err", err, "user_id", user.ID)
		httpx.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toPreferencesResponse(prefs))
}

// HandlePatch godoc
//
//	@Summary		Update user preferences
//	@Description	Applies a preferences update. No settings fields exist yet, so the body is an empty object and the call bumps updated_at.
//	@Tags			User
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	sessionsdk.PreferencesResponse
//	@Failure		401	{object}	sessionsdk.ErrorResponse	"detail"
//	@Router			/api/v1/user/preferences [patch].
func (h *PreferencesHandler) HandlePatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	user, ok := UserFromContext(ctx)
	if !ok {
		httpx.Unauthorized(w, "Could not validate credentials")
		return
	}

	prefs, err := h.AccountService.UpdatePreferences(ctx, user.ID)
	if err != nil {
		log.Error("preferences update failed", "err", err, "user_id", user.ID)
		httpx.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toPreferencesResponse(prefs))
}

func toPreferencesResponse(p domain.Preferences) sessionsdk.PreferencesResponse {
	return sessionsdk.PreferencesResponse{
		UserID:    p.UserID,
		UpdatedAt: p.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
