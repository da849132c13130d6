package http

import (
	"net/http"

	"github.com/aussiebroadwan/fieldops/internal/portal/service"
	"github.com/aussiebroadwan/fieldops/pkg/httpx"
	"github.com/aussiebroadwan/fieldops/pkg/portalapi"
)

type ProfilesHandler struct {
	ProfileService *service.ProfileService
}

// HandleList lists profiles
//
//	@Summary		List profiles
//	@Description	Returns every profile, active or not. Requires profiles:read.
//	@Tags			Profiles
//	@Produce		json
//	@Success		200	{object}	portalapi.ListProfilesResponse	"Profiles"
//	@Failure		401	{object}	portalapi.APIError				"No session"
//	@Failure		403	{object}	portalapi.APIError				"Missing profiles:read"
//	@Security		SessionCookie
//	@Router			/v1/profiles [get].
func (h *ProfilesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.ProfileService.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp := portalapi.ListProfilesResponse{Profiles: make([]portalapi.ProfileInfo, 0, len(profiles))}
	for _, p := range profiles {
		resp.Profiles = append(resp.Profiles, toProfileInfo(p))
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleGet returns one profile
//
//	@Summary		Get profile
//	@Tags			Profiles
//	@Produce		json
//	@Param			id	path		string					true	"Profile ID (identity provider subject)"
//	@Success		200	{object}	portalapi.ProfileInfo	"Profile"
//	@Failure		404	{object}	portalapi.APIError		"Unknown profile"
//	@Security		SessionCookie
//	@Router			/v1/profiles/{id} [get].
func (h *ProfilesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	p, err := h.ProfileService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toProfileInfo(p))
}

// HandleUpdate changes role or activation
//
//	@Summary		Update profile
//	@Description	Assigns or clears the role and archives or restores the profile. Other sessions of the profile keep their cached permissions until they refresh. Requires profiles:update.
//	@Tags			Profiles
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"Profile ID"
//	@Param			request	body		portalapi.UpdateProfileRequest	true	"Changes"
//	@Success		200		{object}	portalapi.ProfileInfo			"Updated profile"
//	@Failure		400		{object}	portalapi.APIError				"Unknown role"
//	@Failure		404		{object}	portalapi.APIError				"Unknown profile"
//	@Security		SessionCookie
//	@Router			/v1/profiles/{id} [patch].
func (h *ProfilesHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req portalapi.UpdateProfileRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		portalapi.ErrInvalidRequest.WriteError(w)
		return
	}
	if req.ClearRole && req.Role != nil {
		portalapi.ErrInvalidRequest.WithDescription("role and clear_role are exclusive").WriteError(w)
		return
	}

	id := r.PathValue("id")

	if req.Role != nil || req.ClearRole {
		if _, err := h.ProfileService.AssignRole(ctx, id, req.Role); err != nil {
			writeServiceError(w, r, err)
			return
		}
	}
	if req.IsActive != nil {
		if err := h.ProfileService.SetActive(ctx, id, *req.IsActive); err != nil {
			writeServiceError(w, r, err)
			return
		}
	}

	p, err := h.ProfileService.Get(ctx, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toProfileInfo(p))
}
