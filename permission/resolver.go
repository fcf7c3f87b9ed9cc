// Package permission derives and checks effective permission sets.
//
// The effective permission set of a user is the union of the permissions of
// every assigned role and the permissions granted directly, deduplicated by
// name. Resolution is pure: it operates only on the role/permission
// references already attached to the user aggregate and never triggers
// store lookups.
package permission

import (
	"sort"

	"github.com/kbukum/authkit/identity"
)

// Set is a deduplicated set of permission names.
type Set map[string]struct{}

// Has reports whether the set contains the exact permission name.
func (s Set) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Add inserts a permission name.
func (s Set) Add(name string) {
	s[name] = struct{}{}
}

// Len returns the number of distinct permissions.
func (s Set) Len() int { return len(s) }

// Names returns the permission names in sorted order.
func (s Set) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve computes the effective permission set for a user: the union of
// role-derived and direct permissions. It is total and idempotent; a nil
// user or a user with no roles and no grants resolves to the empty set,
// never an error.
func Resolve(u *identity.User) Set {
	set := make(Set)
	if u == nil {
		return set
	}
	for _, role := range u.Roles {
		for _, perm := range role.Permissions {
			set.Add(perm.Name)
		}
	}
	for _, perm := range u.Permissions {
		set.Add(perm.Name)
	}
	return set
}
