package profile

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store, used by tests and single-node runs.
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[string]Profile
	now      func() time.Time
}

// NewMemoryStore creates an empty in-memory profile store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		profiles: make(map[string]Profile),
		now:      time.Now,
	}
}

func (s *MemoryStore) Get(_ context.Context, userID string) (*Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[userID]
	if !ok {
		return nil, newError("get", userID, KindNotFound, ErrNotFound)
	}
	return clone(p), nil
}

func (s *MemoryStore) Update(_ context.Context, userID string, u Update) error {
	if u.IsEmpty() {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[userID]
	if !ok {
		p = Profile{UserID: userID}
	}
	p.Apply(u)
	p.UpdatedAt = s.now()
	s.profiles[userID] = p
	return nil
}

// clone copies p including the time pointers so callers cannot mutate
// stored state.
func clone(p Profile) *Profile {
	if p.LastActivity != nil {
		t := *p.LastActivity
		p.LastActivity = &t
	}
	if p.LastXPReset != nil {
		t := *p.LastXPReset
		p.LastXPReset = &t
	}
	return &p
}
