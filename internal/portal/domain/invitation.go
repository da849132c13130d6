package domain

import "time"

// Invitation is a pre-provisioned guest list entry. It is created out of band
// by an administrator and deleted once a Profile has been claimed from it.
type Invitation struct {
	ID                  string
	Email               string // Stored lower-cased, unique case-insensitively
	DisplayName         string
	RoleID              *string // Role the claimed Profile starts with (nullable)
	IsTechnician        bool
	IsOfficeStaff       bool
	OnboardingCompleted bool // Onboarding recorded before the invitation was claimed
	CreatedBy           string
	CreatedAt           time.Time
}
