package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"yourkitchen/internal/domain"
)

// ProfilesKey is the fixed key the whole profile array is stored under.
const ProfilesKey = "chefai_profiles"

// LocalStore keeps every profile in one JSON array file. It is the fallback
// when no database is configured.
type LocalStore struct {
	path string
	mu   sync.Mutex
}

var _ domain.ProfileStore = (*LocalStore)(nil)

// NewLocalStore creates a LocalStore and ensures the base directory exists.
func NewLocalStore(basePath string) (*LocalStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	return &LocalStore{path: filepath.Join(basePath, ProfilesKey+".json")}, nil
}

// Path returns the file backing the store.
func (s *LocalStore) Path() string {
	return s.path
}

// GetProfile returns the profile with the given id.
func (s *LocalStore) GetProfile(ctx context.Context, id string) (*domain.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	profiles, err := s.load()
	if err != nil {
		return nil, err
	}
	for i := range profiles {
		if profiles[i].ID == id {
			return &profiles[i], nil
		}
	}
	return nil, domain.ErrProfileNotFound
}

// CreateProfile appends a new profile.
func (s *LocalStore) CreateProfile(ctx context.Context, p *domain.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	profiles, err := s.load()
	if err != nil {
		return err
	}
	for _, existing := range profiles {
		if existing.ID == p.ID {
			return domain.ErrProfileExists
		}
	}
	return s.save(append(profiles, *p))
}

// UpdateProfile replaces the fields set in u and rewrites the whole array.
func (s *LocalStore) UpdateProfile(ctx context.Context, id string, u domain.ProfileUpdate) (*domain.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	profiles, err := s.load()
	if err != nil {
		return nil, err
	}
	for i := range profiles {
		if profiles[i].ID != id {
			continue
		}
		u.Apply(&profiles[i])
		if err := s.save(profiles); err != nil {
			return nil, err
		}
		updated := profiles[i]
		return &updated, nil
	}
	return nil, domain.ErrProfileNotFound
}

func (s *LocalStore) load() ([]domain.UserProfile, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read profiles file: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var profiles []domain.UserProfile
	if err := json.Unmarshal(data, &profiles); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profiles: %w", err)
	}
	return profiles, nil
}

// save writes to a temporary file and renames it over the store so readers
// never see a partial array.
func (s *LocalStore) save(profiles []domain.UserProfile) error {
	if profiles == nil {
		profiles = []domain.UserProfile{}
	}
	data, err := json.MarshalIndent(profiles, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal profiles: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ProfilesKey+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write profiles file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write profiles file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace profiles file: %w", err)
	}
	return nil
}
