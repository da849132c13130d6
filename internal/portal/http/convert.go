package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/fieldops/internal/portal/domain"
	"github.com/aussiebroadwan/fieldops/internal/portal/service"
	"github.com/aussiebroadwan/fieldops/pkg/portalapi"
	"github.com/aussiebroadwan/fieldops/pkg/slogx"
)

func toProfileInfo(p domain.Profile) portalapi.ProfileInfo {
	return portalapi.ProfileInfo{
		ID:                  p.ID,
		Email:               p.Email,
		DisplayName:         p.DisplayName,
		RoleID:              p.RoleID,
		IsTechnician:        p.IsTechnician,
		IsOfficeStaff:       p.IsOfficeStaff,
		IsActive:            p.IsActive,
		OnboardingCompleted: p.OnboardingCompleted,
		CreatedAt:           p.CreatedAt,
		UpdatedAt:           p.UpdatedAt,
	}
}

func toRoleInfo(r domain.Role, perms []string) portalapi.RoleInfo {
	return portalapi.RoleInfo{
		ID:          r.ID,
		Name:        r.Name,
		DisplayName: r.DisplayName,
		IsSystem:    r.IsSystem,
		Permissions: perms,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func toInvitationInfo(inv domain.Invitation) portalapi.InvitationInfo {
	return portalapi.InvitationInfo{
		ID:                  inv.ID,
		Email:               inv.Email,
		DisplayName:         inv.DisplayName,
		RoleID:              inv.RoleID,
		IsTechnician:        inv.IsTechnician,
		IsOfficeStaff:       inv.IsOfficeStaff,
		OnboardingCompleted: inv.OnboardingCompleted,
		CreatedBy:           inv.CreatedBy,
		CreatedAt:           inv.CreatedAt,
	}
}

// writeServiceError maps service sentinels to API errors. Anything
// unrecognised is logged and reported as a server error.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *portalapi.APIError

	switch {
	case errors.Is(err, service.ErrRoleNotFound),
		errors.Is(err, service.ErrProfileNotFound),
		errors.Is(err, service.ErrInvitationNotFound):
		apiErr = portalapi.ErrNotFound.WithDescription(err.Error())

	case errors.Is(err, service.ErrSystemRole):
		apiErr = portalapi.ErrSystemRole

	case errors.Is(err, service.ErrRoleExists),
		errors.Is(err, service.ErrInvitationExists),
		errors.Is(err, service.ErrAlreadyClaimed):
		apiErr = portalapi.ErrConflict.WithDescription(err.Error())

	case errors.Is(err, service.ErrInvalidRoleName),
		errors.Is(err, service.ErrInvalidGrant),
		errors.Is(err, service.ErrEmptyRoleLabel),
		errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrInvalidRole):
		apiErr = &portalapi.APIError{
			StatusCode:  http.StatusBadRequest,
			Code:        portalapi.ErrorCodeValidationFailed,
			Description: err.Error(),
		}

	default:
		slogx.FromContext(r.Context()).Error("request failed", slog.Any("error", err))
		apiErr = portalapi.ErrServerError
	}

	apiErr.WriteError(w)
}
