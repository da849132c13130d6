package rbac

// String-keyed helpers for callers that carry permissions as "resource:action"
// text (templates, config, API payloads). Malformed strings never grant.

func HasPermission(set Set, perm string) bool {
	p, err := Parse(perm)
	if err != nil {
		return false
	}
	return set.Has(p)
}

func HasAnyPermission(set Set, perms []string) bool {
	for _, s := range perms {
		if HasPermission(set, s) {
			return true
		}
	}
	return false
}

func HasAllPermissions(set Set, perms []string) bool {
	for _, s := range perms {
		if !HasPermission(set, s) {
			return false
		}
	}
	return true
}
