package domain

import "time"

// Profile is the durable user record. ID is the identity provider's subject
// identifier and never changes after the claim that created it.
type Profile struct {
	ID                  string
	Email               string
	DisplayName         string
	RoleID              *string // nil means role-less (empty permission set)
	IsTechnician        bool
	IsOfficeStaff       bool
	IsActive            bool
	OnboardingCompleted bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// HasRole reports whether the profile currently references a role.
func (p Profile) HasRole() bool {
	return p.RoleID != nil && *p.RoleID != ""
}
