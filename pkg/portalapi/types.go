package portalapi

import "time"

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

type HealthChecks struct {
	Database string `json:"database"`
}

// ProfileInfo is the public view of a profile.
type ProfileInfo struct {
	ID                  string    `json:"id"`
	Email               string    `json:"email"`
	DisplayName         string    `json:"display_name"`
	RoleID              *string   `json:"role_id"`
	IsTechnician        bool      `json:"is_technician"`
	IsOfficeStaff       bool      `json:"is_office_staff"`
	IsActive            bool      `json:"is_active"`
	OnboardingCompleted bool      `json:"onboarding_completed"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// MeResponse is the signed-in profile with its effective permissions.
type MeResponse struct {
	Profile     ProfileInfo `json:"profile"`
	Role        *RoleInfo   `json:"role,omitempty"`
	Permissions []string    `json:"permissions"`
}

type RoleInfo struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	DisplayName string    `json:"display_name"`
	IsSystem    bool      `json:"is_system"`
	Permissions []string  `json:"permissions,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ListRolesResponse struct {
	Roles []RoleInfo `json:"roles"`
}

type CreateRoleRequest struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
}

type UpdateRoleRequest struct {
	DisplayName string `json:"display_name"`
}

// PermissionRequest grants or revokes one "resource:action" permission.
type PermissionRequest struct {
	Permission string `json:"permission"`
}

type InvitationInfo struct {
	ID                  string    `json:"id"`
	Email               string    `json:"email"`
	DisplayName         string    `json:"display_name,omitempty"`
	RoleID              *string   `json:"role_id"`
	IsTechnician        bool      `json:"is_technician"`
	IsOfficeStaff       bool      `json:"is_office_staff"`
	OnboardingCompleted bool      `json:"onboarding_completed"`
	CreatedBy           string    `json:"created_by"`
	CreatedAt           time.Time `json:"created_at"`
}

type ListInvitationsResponse struct {
	Invitations []InvitationInfo `json:"invitations"`
}

// CreateInvitationRequest adds an email to the guest list. Role is a role
// id or name.
type CreateInvitationRequest struct {
	Email               string `json:"email"`
	DisplayName         string `json:"display_name,omitempty"`
	Role                string `json:"role,omitempty"`
	IsTechnician        bool   `json:"is_technician,omitempty"`
	IsOfficeStaff       bool   `json:"is_office_staff,omitempty"`
	OnboardingCompleted bool   `json:"onboarding_completed,omitempty"`
}

type ListProfilesResponse struct {
	Profiles []ProfileInfo `json:"profiles"`
}

// UpdateProfileRequest changes role and/or activation. A nil field is left
// unchanged; ClearRole removes the role.
type UpdateProfileRequest struct {
	Role      *string `json:"role,omitempty"`
	ClearRole bool    `json:"clear_role,omitempty"`
	IsActive  *bool   `json:"is_active,omitempty"`
}
