package token

import "sync"

// RotationStore tracks the current refresh-token generation per subject.
// Only the generation marker is persisted, never the token itself.
type RotationStore interface {
	// Current returns the subject's live generation, or "" when none exists.
	Current(subject string) (string, error)

	// Set records gen as the subject's only live generation, superseding any
	// earlier one.
	Set(subject, gen string) error

	// Clear drops the subject's generation, invalidating all outstanding
	// refresh tokens.
	Clear(subject string) error
}

// MemoryRotationStore is a mutex-guarded in-memory RotationStore. Restarting
// the process clears it, which invalidates all outstanding refresh tokens.
// Multi-process deployments supply a shared implementation instead.
type MemoryRotationStore struct {
	mu          sync.RWMutex
	generations map[string]string
}

// NewMemoryRotationStore creates an empty in-memory rotation store.
func NewMemoryRotationStore() *MemoryRotationStore {
	return &MemoryRotationStore{generations: make(map[string]string)}
}

// Current implements RotationStore.
func (s *MemoryRotationStore) Current(subject string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generations[subject], nil
}

// Set implements RotationStore.
func (s *MemoryRotationStore) Set(subject, gen string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generations[subject] = gen
	return nil
}

// Clear implements RotationStore.
func (s *MemoryRotationStore) Clear(subject string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.generations, subject)
	return nil
}
