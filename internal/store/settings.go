package store

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/diogo/companion/internal/models"
)

// Storage keys
const (
	KeySettings = "companion-settings"
	KeyVisited  = "hasVisitedBefore"
)

// SettingsStore persists the Settings record and the first-visit marker
type SettingsStore struct {
	kv KV
	mu sync.Mutex
}

// NewSettingsStore wraps a KV medium
func NewSettingsStore(kv KV) *SettingsStore {
	return &SettingsStore{kv: kv}
}

// Load returns the stored settings. Missing settings yield the defaults with a nil error;
// an unreadable record yields the defaults together with the error so callers can log it
// and carry on.
func (s *SettingsStore) Load() (models.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *SettingsStore) load() (models.Settings, error) {
	raw, ok, err := s.kv.Get(KeySettings)
	if err != nil {
		return models.DefaultSettings(), err
	}
	if !ok {
		return models.DefaultSettings(), nil
	}

	settings := models.DefaultSettings()
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		return models.DefaultSettings(), fmt.Errorf("failed to parse stored settings: %w", err)
	}
	return settings.Normalize(), nil
}

// Save replaces the stored record. Blank names are stored as their defaults.
func (s *SettingsStore) Save(settings models.Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(settings.Normalize())
}

func (s *SettingsStore) save(settings models.Settings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	return s.kv.Set(KeySettings, string(data))
}

// PatchUserName changes only the user name and returns the resulting record
func (s *SettingsStore) PatchUserName(name string) (models.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings, _ := s.load()
	settings.UserName = strings.TrimSpace(name)
	settings = settings.Normalize()
	if err := s.save(settings); err != nil {
		return settings, err
	}
	return settings, nil
}

// HasVisited reports whether the first-visit marker is present
func (s *SettingsStore) HasVisited() (bool, error) {
	value, ok, err := s.kv.Get(KeyVisited)
	if err != nil {
		return false, err
	}
	return ok && value != "", nil
}

// MarkVisited sets the first-visit marker
func (s *SettingsStore) MarkVisited() error {
	return s.kv.Set(KeyVisited, "true")
}

// Reset removes the settings and the first-visit marker
func (s *SettingsStore) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Delete(KeySettings); err != nil {
		return err
	}
	return s.kv.Delete(KeyVisited)
}
