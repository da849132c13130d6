// Package rbac is the read side of the permission model: typed
// (resource, action) permissions and immutable permission sets with the
// "manage" wildcard rule.
package rbac

import (
	"errors"
	"slices"
	"strings"
)

// Action is the verb half of a permission.
type Action string

// ActionManage grants every present and future action on a resource.
const ActionManage Action = "manage"

// Common actions used by the portal screens. Any other non-empty action is valid.
const (
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

var ErrMalformed = errors.New("rbac: malformed permission")

// Permission is a (resource, action) pair. Its string form is "resource:action".
type Permission struct {
	Resource string
	Action   Action
}

// New builds a permission from its parts.
func New(resource string, action Action) Permission {
	return Permission{Resource: resource, Action: action}
}

// Manage returns the wildcard permission for resource.
func Manage(resource string) Permission {
	return Permission{Resource: resource, Action: ActionManage}
}

// IsManage reports whether p is the wildcard for its resource.
func (p Permission) IsManage() bool { return p.Action == ActionManage }

func (p Permission) String() string {
	return p.Resource + ":" + string(p.Action)
}

// Valid reports whether both halves are present and free of separators.
func (p Permission) Valid() bool {
	return p.Resource != "" && p.Action != "" &&
		!strings.ContainsAny(p.Resource, ": ") &&
		!strings.ContainsAny(string(p.Action), ": ")
}

// Parse reads "resource:action". Surrounding whitespace is ignored; anything
// else that isn't exactly two non-empty halves is rejected.
func Parse(s string) (Permission, error) {
	resource, action, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return Permission{}, ErrMalformed
	}
	p := Permission{Resource: resource, Action: Action(action)}
	if !p.Valid() {
		return Permission{}, ErrMalformed
	}
	return p, nil
}

// MustParse is Parse for hard-coded permissions. It panics on bad input.
func MustParse(s string) Permission {
	p, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return p
}

// Set is an immutable set of permissions. The zero value is the empty set.
type Set struct {
	m map[Permission]struct{}
}

// NewSet builds a set from the given permissions. Invalid entries are dropped.
func NewSet(perms ...Permission) Set {
	m := make(map[Permission]struct{}, len(perms))
	for _, p := range perms {
		if p.Valid() {
			m[p] = struct{}{}
		}
	}
	return Set{m: m}
}

// ParseSet builds a set from "resource:action" strings. The first malformed
// entry aborts with ErrMalformed.
func ParseSet(perms []string) (Set, error) {
	out := make([]Permission, 0, len(perms))
	for _, s := range perms {
		p, err := Parse(s)
		if err != nil {
			return Set{}, err
		}
		out = append(out, p)
	}
	return NewSet(out...), nil
}

func (s Set) Len() int { return len(s.m) }

// Has reports whether s grants p: either p itself or the manage wildcard
// for p's resource is present.
func (s Set) Has(p Permission) bool {
	if !p.Valid() {
		return false
	}
	if _, ok := s.m[p]; ok {
		return true
	}
	_, ok := s.m[Manage(p.Resource)]
	return ok
}

// HasAny reports whether at least one of perms is granted. False for no perms.
func (s Set) HasAny(perms ...Permission) bool {
	for _, p := range perms {
		if s.Has(p) {
			return true
		}
	}
	return false
}

// HasAll reports whether every one of perms is granted. True for no perms.
func (s Set) HasAll(perms ...Permission) bool {
	for _, p := range perms {
		if !s.Has(p) {
			return false
		}
	}
	return true
}

// Permissions returns the members sorted by their string form.
func (s Set) Permissions() []Permission {
	out := make([]Permission, 0, len(s.m))
	for p := range s.m {
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b Permission) int {
		return strings.Compare(a.String(), b.String())
	})
	return out
}

// Strings returns the members as sorted "resource:action" strings.
func (s Set) Strings() []string {
	perms := s.Permissions()
	out := make([]string, len(perms))
	for i, p := range perms {
		out[i] = p.String()
	}
	return out
}
