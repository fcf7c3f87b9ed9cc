package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// Store errors. Implementations must return these sentinels (possibly
// wrapped) so callers can map them to user-facing error kinds.
var (
	// ErrNotFound indicates no user matches the identifier.
	ErrNotFound = errors.New("identity: user not found")
	// ErrDuplicateEmail indicates a live credential already uses the email.
	ErrDuplicateEmail = errors.New("identity: email already registered")
	// ErrStaleHash indicates a compare-and-swap hash update lost to a
	// concurrent writer.
	ErrStaleHash = errors.New("identity: stored hash changed concurrently")
)

// Store is the identity store contract. Every method must be atomic with
// respect to concurrent callers, and users must be returned with Roles and
// Permissions fully populated.
type Store interface {
	// FindByEmail returns the user for a normalized email, or ErrNotFound.
	FindByEmail(ctx context.Context, email string) (*User, error)

	// FindByID returns the user by ID, or ErrNotFound.
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	// Save persists a new user, or ErrDuplicateEmail if the normalized email
	// is already taken.
	Save(ctx context.Context, u *User) (*User, error)

	// UpdatePasswordHash atomically replaces the stored hash only if it still
	// equals oldHash, returning ErrStaleHash otherwise. This is the
	// compare-and-swap two concurrent hash upgrades race on.
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, oldHash, newHash string) error

	// TouchLastActive records a successful authentication.
	TouchLastActive(ctx context.Context, id uuid.UUID) error
}
