package http

import (
	"net/http"

	"github.com/aussiebroadwan/fieldops/internal/portal/service"
	"github.com/aussiebroadwan/fieldops/pkg/httpx"
	"github.com/aussiebroadwan/fieldops/pkg/portalapi"
)

type InvitationsHandler struct {
	InviteService *service.InviteService
}

// HandleList lists pending invitations
//
//	@Summary		List invitations
//	@Description	Returns the guest list, oldest first. Claimed invitations are gone. Requires invitations:read.
//	@Tags			Invitations
//	@Produce		json
//	@Success		200	{object}	portalapi.ListInvitationsResponse	"Invitations"
//	@Failure		401	{object}	portalapi.APIError					"No session"
//	@Failure		403	{object}	portalapi.APIError					"Missing invitations:read"
//	@Security		SessionCookie
//	@Router			/v1/invitations [get].
func (h *InvitationsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	invs, err := h.InviteService.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp := portalapi.ListInvitationsResponse{Invitations: make([]portalapi.InvitationInfo, 0, len(invs))}
	for _, inv := range invs {
		resp.Invitations = append(resp.Invitations, toInvitationInfo(inv))
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleCreate invites an email
//
//	@Summary		Create invitation
//	@Description	Adds an email to the guest list. The first sign-in with that email claims it. Requires invitations:create.
//	@Tags			Invitations
//	@Accept			json
//	@Produce		json
//	@Param			request	body		portalapi.CreateInvitationRequest	true	"Invitation"
//	@Success		201		{object}	portalapi.InvitationInfo			"Created invitation"
//	@Failure		400		{object}	portalapi.APIError					"Invalid email or role"
//	@Failure		409		{object}	portalapi.APIError					"Already invited or already a member"
//	@Security		SessionCookie
//	@Router			/v1/invitations [post].
func (h *InvitationsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req portalapi.CreateInvitationRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		portalapi.ErrInvalidRequest.WriteError(w)
		return
	}

	createdBy, _ := httpx.SubjectFromContext(r.Context())
	inv, err := h.InviteService.Create(r.Context(), service.InviteRequest{
		Email:               req.Email,
		DisplayName:         req.DisplayName,
		Role:                req.Role,
		IsTechnician:        req.IsTechnician,
		IsOfficeStaff:       req.IsOfficeStaff,
		OnboardingCompleted: req.OnboardingCompleted,
	}, createdBy)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toInvitationInfo(inv))
}

// HandleRevoke withdraws an invitation
//
//	@Summary		Revoke invitation
//	@Tags			Invitations
//	@Param			id	path	string	true	"Invitation ID"
//	@Success		204	"Revoked"
//	@Failure		404	{object}	portalapi.APIError	"Unknown or already claimed"
//	@Security		SessionCookie
//	@Router			/v1/invitations/{id} [delete].
func (h *InvitationsHandler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	if err := h.InviteService.Revoke(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
