package favorites

import (
	"context"
	"fmt"
	"sync"

	"github.com/roamly/roamly/internal/kvstore"
	"github.com/roamly/roamly/pkg/place"
	log "github.com/sirupsen/logrus"
)

const StorageKey = "favorites"

// Store holds the favorited places and mirrors them to storage under StorageKey.
// Every mutation is persisted before it becomes visible; a failed write leaves the
// set unchanged.
type Store struct {
	storage kvstore.Storage

	mu     sync.RWMutex
	places []place.Place
}

// NewStore creates the store and loads the persisted favorites. A storage failure
// is logged and leaves the set empty.
func NewStore(ctx context.Context, storage kvstore.Storage) *Store {
	s := &Store{storage: storage}
	if err := s.Reload(ctx); err != nil {
		log.Errorf("could not load favorites: %v", err)
	}
	return s
}

func validateFavorites(places []place.Place) error {
	for _, p := range places {
		if err := place.Validate(p); err != nil {
			return err
		}
	}
	return nil
}

// Reload replaces the in-memory set with the persisted one. Missing or invalid
// content yields an empty set.
func (s *Store) Reload(ctx context.Context) error {
	result, err := kvstore.GetJSON(ctx, s.storage, StorageKey, validateFavorites)
	if err != nil {
		return err
	}
	if result.Status() == kvstore.Invalid {
		log.Warnf("ignoring invalid persisted favorites: %v", result.Err())
	}
	places := place.Dedupe(result.OrElse(nil))

	s.mu.Lock()
	defer s.mu.Unlock()
	s.places = places
	return nil
}

// Toggle removes p when it is a favorite and adds it otherwise. It reports whether
// p is a favorite afterwards.
func (s *Store) Toggle(ctx context.Context, p place.Place) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := place.IndexOf(s.places, p.Id)
	next := make([]place.Place, 0, len(s.places)+1)
	if idx >= 0 {
		next = append(next, s.places[:idx]...)
		next = append(next, s.places[idx+1:]...)
	} else {
		next = append(next, s.places...)
		next = append(next, p)
	}

	if err := kvstore.SetJSON(ctx, s.storage, StorageKey, next); err != nil {
		return idx >= 0, fmt.Errorf("could not persist favorites: %w", err)
	}
	s.places = next
	log.Debugf("place %d favorite=%t, %d favorites", p.Id, idx < 0, len(next))
	return idx < 0, nil
}

func (s *Store) IsFavorite(placeId int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return place.IndexOf(s.places, placeId) >= 0
}

// Get returns the stored record of a favorite place.
func (s *Store) Get(placeId int) (place.Place, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := place.IndexOf(s.places, placeId)
	if idx < 0 {
		return place.Place{}, false
	}
	return s.places[idx], true
}

func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.places)
}

// List returns the favorites in the order they were added.
func (s *Store) List() []place.Place {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]place.Place(nil), s.places...)
}
