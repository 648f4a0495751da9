package profile

import (
	"context"
	"encoding/json"
	"sync"

	"yourkitchen/internal/domain"
)

// MemoryStore keeps profiles in a map. Values are copied in and out so
// callers never share state with the store.
type MemoryStore struct {
	mu       sync.Mutex
	profiles map[string][]byte
}

var _ domain.ProfileStore = (*MemoryStore)(nil)

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{profiles: make(map[string][]byte)}
}

func (s *MemoryStore) GetProfile(ctx context.Context, id string) (*domain.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.profiles[id]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	var p domain.UserProfile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *MemoryStore) CreateProfile(ctx context.Context, p *domain.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.profiles[p.ID]; ok {
		return domain.ErrProfileExists
	}
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	s.profiles[p.ID] = data
	return nil
}

func (s *MemoryStore) UpdateProfile(ctx context.Context, id string, u domain.ProfileUpdate) (*domain.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.profiles[id]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	var p domain.UserProfile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	u.Apply(&p)

	data, err := json.Marshal(&p)
	if err != nil {
		return nil, err
	}
	s.profiles[id] = data
	return &p, nil
}
