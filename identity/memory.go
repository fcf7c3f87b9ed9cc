package identity

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is a mutex-guarded in-memory Store. It honors the same
// atomicity contract as a database-backed implementation, which makes it
// suitable for tests and for embedders that bring no database.
type MemoryStore struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]*User
	byEmail map[string]uuid.UUID
	now     func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:    make(map[uuid.UUID]*User),
		byEmail: make(map[string]uuid.UUID),
		now:     time.Now,
	}
}

// WithClock overrides the store's clock. Intended for tests.
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	s.now = now
	return s
}

// FindByEmail implements Store.
func (s *MemoryStore) FindByEmail(_ context.Context, email string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[NormalizeEmail(email)]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneUser(s.byID[id]), nil
}

// FindByID implements Store.
func (s *MemoryStore) FindByID(_ context.Context, id uuid.UUID) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneUser(u), nil
}

// Save implements Store.
func (s *MemoryStore) Save(_ context.Context, u *User) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := NormalizeEmail(u.Email)
	if _, taken := s.byEmail[email]; taken {
		return nil, ErrDuplicateEmail
	}

	stored := cloneUser(u)
	stored.Email = email
	if stored.ID == uuid.Nil {
		stored.ID = uuid.New()
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = s.now()
	}
	if stored.LastActive.IsZero() {
		stored.LastActive = stored.CreatedAt
	}

	s.byID[stored.ID] = stored
	s.byEmail[email] = stored.ID
	return cloneUser(stored), nil
}

// UpdatePasswordHash implements Store with compare-and-swap semantics.
func (s *MemoryStore) UpdatePasswordHash(_ context.Context, id uuid.UUID, oldHash, newHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}
	if u.PasswordHash != oldHash {
		return ErrStaleHash
	}
	u.PasswordHash = newHash
	now := s.now()
	u.LastUpdatedAt = &now
	return nil
}

// TouchLastActive implements Store.
func (s *MemoryStore) TouchLastActive(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}
	u.LastActive = s.now()
	return nil
}

// cloneUser copies the aggregate so callers never share memory with the store.
func cloneUser(u *User) *User {
	if u == nil {
		return nil
	}
	c := *u
	if u.LastUpdatedAt != nil {
		t := *u.LastUpdatedAt
		c.LastUpdatedAt = &t
	}
	c.Roles = make([]Role, len(u.Roles))
	for i, r := range u.Roles {
		c.Roles[i] = r
		c.Roles[i].Permissions = append([]Permission(nil), r.Permissions...)
	}
	c.Permissions = append([]Permission(nil), u.Permissions...)
	return &c
}
