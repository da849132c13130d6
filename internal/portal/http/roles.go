package http

import (
	"context"
	"net/http"

	"github.com/aussiebroadwan/fieldops/internal/portal/service"
	"github.com/aussiebroadwan/fieldops/pkg/httpx"
	"github.com/aussiebroadwan/fieldops/pkg/portalapi"
)

type RolesHandler struct {
	RolesService *service.RolesService
}

// HandleList lists roles
//
//	@Summary		List roles
//	@Description	Returns every role with its granted permissions. Requires roles:read.
//	@Tags			Roles
//	@Produce		json
//	@Success		200	{object}	portalapi.ListRolesResponse	"Roles"
//	@Failure		401	{object}	portalapi.APIError			"No session"
//	@Failure		403	{object}	portalapi.APIError			"Missing roles:read"
//	@Failure		500	{object}	portalapi.APIError			"Internal server error"
//	@Security		SessionCookie
//	@Router			/v1/roles [get].
func (h *RolesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	roles, err := h.RolesService.List(ctx)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp := portalapi.ListRolesResponse{Roles: make([]portalapi.RoleInfo, 0, len(roles))}
	for _, role := range roles {
		perms, err := h.RolesService.Permissions(ctx, role.ID)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		resp.Roles = append(resp.Roles, toRoleInfo(role, perms))
	}

	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleGet returns one role
//
//	@Summary		Get role
//	@Tags			Roles
//	@Produce		json
//	@Param			id	path		string				true	"Role ID"
//	@Success		200	{object}	portalapi.RoleInfo	"Role"
//	@Failure		404	{object}	portalapi.APIError	"Unknown role"
//	@Security		SessionCookie
//	@Router			/v1/roles/{id} [get].
func (h *RolesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	h.writeRole(w, r, http.StatusOK, r.PathValue("id"))
}

// HandleCreate adds a role
//
//	@Summary		Create role
//	@Description	Creates a non-system role without permissions. Requires roles:create.
//	@Tags			Roles
//	@Accept			json
//	@Produce		json
//	@Param			request	body		portalapi.CreateRoleRequest	true	"Role"
//	@Success		201		{object}	portalapi.RoleInfo			"Created role"
//	@Failure		400		{object}	portalapi.APIError			"Invalid name"
//	@Failure		409		{object}	portalapi.APIError			"Name taken"
//	@Security		SessionCookie
//	@Router			/v1/roles [post].
func (h *RolesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req portalapi.CreateRoleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		portalapi.ErrInvalidRequest.WriteError(w)
		return
	}

	role, err := h.RolesService.Create(r.Context(), req.Name, req.DisplayName)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toRoleInfo(role, []string{}))
}

// HandleUpdate renames a role
//
//	@Summary		Update role
//	@Description	Changes the display name. Allowed on system roles. Requires roles:update.
//	@Tags			Roles
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"Role ID"
//	@Param			request	body		portalapi.UpdateRoleRequest	true	"New display name"
//	@Success		200		{object}	portalapi.RoleInfo			"Updated role"
//	@Failure		400		{object}	portalapi.APIError			"Empty display name"
//	@Failure		404		{object}	portalapi.APIError			"Unknown role"
//	@Security		SessionCookie
//	@Router			/v1/roles/{id} [patch].
func (h *RolesHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req portalapi.UpdateRoleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		portalapi.ErrInvalidRequest.WriteError(w)
		return
	}

	id := r.PathValue("id")
	if err := h.RolesService.UpdateDisplayName(r.Context(), id, req.DisplayName); err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.writeRole(w, r, http.StatusOK, id)
}

// HandleDelete removes a role
//
//	@Summary		Delete role
//	@Description	Deletes a non-system role. Profiles holding it keep existing without a role. Requires roles:delete.
//	@Tags			Roles
//	@Param			id	path	string	true	"Role ID"
//	@Success		204	"Deleted"
//	@Failure		404	{object}	portalapi.APIError	"Unknown role"
//	@Failure		409	{object}	portalapi.APIError	"System role"
//	@Security		SessionCookie
//	@Router			/v1/roles/{id} [delete].
func (h *RolesHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.RolesService.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleGrant adds a permission to a role
//
//	@Summary		Grant permission
//	@Tags			Roles
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"Role ID"
//	@Param			request	body		portalapi.PermissionRequest	true	"resource:action"
//	@Success		200		{object}	portalapi.RoleInfo			"Role with permissions"
//	@Failure		400		{object}	portalapi.APIError			"Malformed permission"
//	@Failure		404		{object}	portalapi.APIError			"Unknown role"
//	@Security		SessionCookie
//	@Router			/v1/roles/{id}/permissions [post].
func (h *RolesHandler) HandleGrant(w http.ResponseWriter, r *http.Request) {
	h.changePermission(w, r, h.RolesService.Grant)
}

// HandleRevoke removes a permission from a role
//
//	@Summary		Revoke permission
//	@Tags			Roles
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"Role ID"
//	@Param			request	body		portalapi.PermissionRequest	true	"resource:action"
//	@Success		200		{object}	portalapi.RoleInfo			"Role with permissions"
//	@Failure		400		{object}	portalapi.APIError			"Malformed permission"
//	@Failure		404		{object}	portalapi.APIError			"Unknown role"
//	@Security		SessionCookie
//	@Router			/v1/roles/{id}/permissions [delete].
func (h *RolesHandler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	h.changePermission(w, r, h.RolesService.Revoke)
}

func (h *RolesHandler) changePermission(
	w http.ResponseWriter,
	r *http.Request,
	apply func(ctx context.Context, roleID, perm string) error,
) {
	var req portalapi.PermissionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		portalapi.ErrInvalidRequest.WriteError(w)
		return
	}

	id := r.PathValue("id")
	if err := apply(r.Context(), id, req.Permission); err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.writeRole(w, r, http.StatusOK, id)
}

func (h *RolesHandler) writeRole(w http.ResponseWriter, r *http.Request, status int, id string) {
	ctx := r.Context()

	role, err := h.RolesService.Get(ctx, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	perms, err := h.RolesService.Permissions(ctx, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, status, toRoleInfo(role, perms))
}
