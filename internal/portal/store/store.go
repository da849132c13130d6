package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/fieldops/internal/portal/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface implemented by the sqlite and
// postgres drivers. Sub-repositories are reached through methods so a Tx can
// hand out the same repositories bound to the transaction.
type Store interface {
	Invitations() Invitations
	Profiles() Profiles
	Roles() Roles
	Permissions() Permissions
	Sessions() Sessions

	ApplyMigrations() error

	// Tx starts a read/write transaction. The caller MUST Commit or Rollback.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction, committing when fn returns nil and
	// rolling back otherwise. Inside fn only use the tx argument; the outer
	// store may be limited to a single connection.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error
	Ping(ctx context.Context) error
}

// Tx is a transaction-scoped Store.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Invitations interface {
	// CreateInvitation inserts a guest list entry. ErrAlreadyExists when an
	// invitation with the same email (case-insensitive) is already present.
	CreateInvitation(ctx context.Context, inv domain.Invitation) error

	GetInvitationByID(ctx context.Context, id string) (domain.Invitation, error)

	// FindInvitationByEmail matches the email case-insensitively and exactly.
	FindInvitationByEmail(ctx context.Context, email string) (domain.Invitation, error)

	// ListInvitations returns all invitations, oldest first.
	ListInvitations(ctx context.Context) ([]domain.Invitation, error)

	// DeleteInvitation removes the invitation with this id only if it still
	// carries this email. ErrNotFound when nothing matched, which is how a
	// concurrent claim of the same invitation is detected.
	DeleteInvitation(ctx context.Context, id string, email string) error

	// DeleteInvitationByID removes the invitation whatever its email.
	// ErrNotFound when there was none.
	DeleteInvitationByID(ctx context.Context, id string) error

	// DeleteClaimedInvitations removes invitations whose email already belongs
	// to a profile (cleanup debt left by failed post-claim deletes).
	DeleteClaimedInvitations(ctx context.Context) (int64, error)
}

type Profiles interface {
	GetProfileByID(ctx context.Context, id string) (domain.Profile, error)

	// FindProfileByEmail matches case-insensitively. Emails are not unique on
	// profiles, the oldest match is returned.
	FindProfileByEmail(ctx context.Context, email string) (domain.Profile, error)

	ListProfiles(ctx context.Context) ([]domain.Profile, error)

	// UpsertProfile inserts p or, when a row with p.ID exists, refreshes only
	// email and display name. Role, flags, activation and onboarding are left
	// as they are so a replayed claim can never overwrite an admin edit.
	UpsertProfile(ctx context.Context, p domain.Profile) error

	// UpdateProfileRole sets or clears (nil) the role.
	UpdateProfileRole(ctx context.Context, id string, roleID *string) error

	SetProfileActive(ctx context.Context, id string, active bool) error
	SetOnboardingCompleted(ctx context.Context, id string, completed bool) error
}

type Roles interface {
	GetRoleByID(ctx context.Context, id string) (domain.Role, error)
	GetRoleByName(ctx context.Context, name string) (domain.Role, error)
	ListRoles(ctx context.Context) ([]domain.Role, error)

	// CreateRole inserts a role. ErrAlreadyExists on a duplicate name.
	CreateRole(ctx context.Context, r domain.Role) error

	UpdateRoleDisplayName(ctx context.Context, id string, displayName string) error

	// DeleteRole removes the role and its permission grants. Profiles that
	// referenced it become role-less; they are never deleted.
	DeleteRole(ctx context.Context, id string) error

	IsEmpty(ctx context.Context) (bool, error)
}

type Permissions interface {
	// EnsurePermission returns the stored (resource, action) row, creating it
	// if necessary.
	EnsurePermission(ctx context.Context, resource, action string) (domain.Permission, error)

	ListPermissions(ctx context.Context) ([]domain.Permission, error)

	// Grant links a permission to a role. Granting twice is a no-op.
	Grant(ctx context.Context, roleID, permissionID string) error

	// Revoke unlinks a permission from a role. ErrNotFound if it wasn't granted.
	Revoke(ctx context.Context, roleID, permissionID string) error

	// ListRolePermissions walks the role/permission join for one role.
	ListRolePermissions(ctx context.Context, roleID string) ([]domain.Permission, error)
}

type Sessions interface {
	CreateSession(ctx context.Context, s domain.Session) error
	GetSessionByTokenHash(ctx context.Context, hash string) (domain.Session, error)

	// RevokeSession stamps revoked_at. Revoking twice keeps the first stamp.
	RevokeSession(ctx context.Context, id string, at time.Time) error

	// DeleteExpiredSessions removes sessions expired or revoked before cutoff.
	DeleteExpiredSessions(ctx context.Context, cutoff time.Time) (int64, error)
}
