package favorites

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/starford/kartica/internal/storage"
)

// DefaultKey is the storage key holding the favorites array.
const DefaultKey = "croatian-tutor-favorites"

// Store owns the favorites set and writes it back on every change.
// It is not safe for concurrent use; the deck service serializes access.
type Store struct {
	backend storage.Provider
	key     string
	logger  *slog.Logger
	set     Set
}

// NewStore creates a store over backend. An empty key uses DefaultKey.
func NewStore(backend storage.Provider, key string, logger *slog.Logger) *Store {
	if key == "" {
		key = DefaultKey
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{backend: backend, key: key, logger: logger, set: Set{}}
}

// Hydrate loads the persisted set. Missing or corrupt data yields an
// empty set; errors are logged, never returned.
func (s *Store) Hydrate() Set {
	data, err := s.backend.Get(s.key)
	switch {
	case errors.Is(err, storage.ErrNotExist):
		s.set = Set{}
		return s.set
	case err != nil:
		s.logger.Warn("favorites: read failed, starting empty",
			slog.String("key", s.key), slog.String("error", err.Error()))
		s.set = Set{}
		return s.set
	}

	set, err := Decode(data)
	if err != nil {
		s.logger.Warn("favorites: stored value is corrupt, starting empty",
			slog.String("key", s.key), slog.String("error", err.Error()))
		s.set = Set{}
		return s.set
	}
	s.set = set
	return s.set
}

// Current returns the in-memory set.
func (s *Store) Current() Set {
	return s.set
}

// Toggle flips membership of id and persists the whole set. The returned
// set reflects the toggle even when persisting fails.
func (s *Store) Toggle(id string) (Set, error) {
	s.set = Toggle(s.set, id)
	if err := s.Persist(s.set); err != nil {
		return s.set, err
	}
	return s.set, nil
}

// Persist writes set in the format Hydrate reads. When storage already
// holds an equal set the stored bytes are left as they are.
func (s *Store) Persist(set Set) error {
	if old, err := s.backend.Get(s.key); err == nil {
		if stored, err := Decode(old); err == nil && stored.Equal(set) {
			return nil
		}
	}
	data, err := Encode(set)
	if err != nil {
		return err
	}
	if err := s.backend.Put(s.key, data); err != nil {
		return fmt.Errorf("favorites: persist: %w", err)
	}
	return nil
}
