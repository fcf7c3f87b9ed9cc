package permission

import "github.com/kbukum/authkit/identity"

// Checker answers authorization questions for a single user.
type Checker interface {
	HasPermission(required string) bool
}

// CheckerFunc is an adapter to use ordinary functions as Checker.
type CheckerFunc func(required string) bool

// HasPermission implements Checker.
func (f CheckerFunc) HasPermission(required string) bool {
	return f(required)
}

// UserChecker answers HasPermission against a user's resolved effective
// permission set, treating held permission names as wildcard patterns.
// Superusers pass every check.
type UserChecker struct {
	superuser bool
	set       Set
}

// NewUserChecker resolves the user's effective permissions once and returns
// a checker over them. Resolution is not cached across user reloads; build
// a fresh checker per authorization decision so long-lived tokens never
// serve stale privileges.
func NewUserChecker(u *identity.User) *UserChecker {
	c := &UserChecker{set: Resolve(u)}
	if u != nil {
		c.superuser = u.Superuser
	}
	return c
}

// HasPermission implements Checker.
func (c *UserChecker) HasPermission(required string) bool {
	if c.superuser {
		return true
	}
	if c.set.Has(required) {
		return true
	}
	for held := range c.set {
		if MatchPattern(held, required) {
			return true
		}
	}
	return false
}

// Set returns the underlying resolved permission set.
func (c *UserChecker) Set() Set {
	return c.set
}
