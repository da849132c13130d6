package http

import (
	"net/http"

	"github.com/aussiebroadwan/fieldops/internal/portal/domain"
	"github.com/aussiebroadwan/fieldops/internal/portal/service"
	"github.com/aussiebroadwan/fieldops/pkg/httpx"
	"github.com/aussiebroadwan/fieldops/pkg/portalapi"
)

type MeHandler struct {
	Access   *service.AccessService
	Roles    *service.RolesService
	Profiles *service.ProfileService
}

// HandleGet returns the signed-in profile
//
//	@Summary		Current profile
//	@Description	Returns the signed-in profile, its role and the effective permission set of this session.
//	@Tags			Me
//	@Produce		json
//	@Success		200	{object}	portalapi.MeResponse	"Profile and permissions"
//	@Failure		401	{object}	portalapi.APIError		"No session or profile deactivated"
//	@Failure		500	{object}	portalapi.APIError		"Internal server error"
//	@Security		SessionCookie
//	@Router			/v1/me [get].
func (h *MeHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	profile, _ := ProfileFromContext(r.Context())
	h.writeMe(w, r, profile)
}

// HandleRefresh reloads permissions
//
//	@Summary		Refresh permissions
//	@Description	Drops the cached permission set of this session so role changes made since sign-in take effect.
//	@Tags			Me
//	@Produce		json
//	@Success		200	{object}	portalapi.MeResponse	"Profile and reloaded permissions"
//	@Failure		401	{object}	portalapi.APIError		"No session or profile deactivated"
//	@Security		SessionCookie
//	@Router			/v1/me/permissions/refresh [post].
func (h *MeHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := httpx.SessionIDFromContext(r.Context())
	h.Access.Refresh(sessionID)

	profile, _ := ProfileFromContext(r.Context())
	h.writeMe(w, r, profile)
}

// HandleCompleteOnboarding marks onboarding done
//
//	@Summary		Complete onboarding
//	@Description	Records that the signed-in user finished onboarding. Later sign-ins go to the dashboard or the requested page.
//	@Tags			Me
//	@Produce		json
//	@Success		200	{object}	portalapi.MeResponse	"Updated profile"
//	@Failure		401	{object}	portalapi.APIError		"No session or profile deactivated"
//	@Security		SessionCookie
//	@Router			/v1/me/onboarding [post].
func (h *MeHandler) HandleCompleteOnboarding(w http.ResponseWriter, r *http.Request) {
	profile, _ := ProfileFromContext(r.Context())

	updated, err := h.Profiles.CompleteOnboarding(r.Context(), profile.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.writeMe(w, r, updated)
}

func (h *MeHandler) writeMe(w http.ResponseWriter, r *http.Request, profile domain.Profile) {
	ctx := r.Context()
	sessionID, _ := httpx.SessionIDFromContext(ctx)

	set, err := h.Access.ForSession(ctx, sessionID, profile)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp := portalapi.MeResponse{
		Profile:     toProfileInfo(profile),
		Permissions: set.Strings(),
	}
	if profile.HasRole() {
		if role, err := h.Roles.Get(ctx, *profile.RoleID); err == nil {
			info := toRoleInfo(role, nil)
			resp.Role = &info
		}
	}

	httpx.WriteJSON(w, http.StatusOK, resp)
}
