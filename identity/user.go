// Package identity defines the user aggregate and the store contract the
// authentication core depends on. The store itself is an external
// collaborator: authkit only requires lookup, save, and an atomic
// password-hash update.
package identity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Permission identifies a grantable capability as a name/value pair.
// Permissions are administratively managed and read-only from authkit's
// perspective.
type Permission struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Role is a named bundle of permissions.
type Role struct {
	ID          int          `json:"id"`
	Name        string       `json:"name"`
	Permissions []Permission `json:"permissions"`
}

// User is the identity aggregate. Roles and Permissions must arrive fully
// populated from the store; permission resolution never triggers lookups.
type User struct {
	ID            uuid.UUID  `json:"id"`
	Email         string     `json:"email"`
	PasswordHash  string     `json:"-"`
	Superuser     bool       `json:"superuser"`
	CreatedAt     time.Time  `json:"created_at"`
	LastActive    time.Time  `json:"last_active"`
	LastUpdatedAt *time.Time `json:"last_updated_at,omitempty"`

	// Roles the user holds, by reference.
	Roles []Role `json:"roles,omitempty"`
	// Permissions granted directly, outside any role.
	Permissions []Permission `json:"permissions,omitempty"`
}

// Subject returns the token subject for the user.
func (u *User) Subject() string {
	return u.ID.String()
}

// NormalizeEmail canonicalizes an email identifier. Uniqueness and lookups
// are always on the normalized form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
