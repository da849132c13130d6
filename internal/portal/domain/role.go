package domain

import "time"

type Role struct {
	ID          string
	Name        string // Unique machine key, e.g. "technician"
	DisplayName string
	IsSystem    bool // Seed roles can be edited but never deleted
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Permission is a stored (resource, action) grant. The pair is unique.
type Permission struct {
	ID       string
	Resource string
	Action   string
}
