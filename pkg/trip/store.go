package trip

import (
	"context"
	"fmt"
	"sync"

	"github.com/roamly/roamly/internal/event_bus"
	"github.com/roamly/roamly/internal/kvstore"
	"github.com/roamly/roamly/internal/utils"
	"github.com/roamly/roamly/pkg/place"
	log "github.com/sirupsen/logrus"
)

const StorageKey = "currentTrip"

// Store owns the current trip draft and mirrors it to storage under StorageKey.
// Mutations are persisted before they become visible.
type Store struct {
	storage  kvstore.Storage
	eventBus *event_bus.EventBus
	clock    utils.Clock

	mu   sync.RWMutex
	trip CurrentTrip
}

// NewStore creates the store and loads the persisted draft, creating a fresh one
// when there is none. Storage failures are logged, never fatal.
func NewStore(ctx context.Context, storage kvstore.Storage, eventBus *event_bus.EventBus, clock utils.Clock) *Store {
	s := &Store{storage: storage, eventBus: eventBus, clock: clock}
	if err := s.Reload(ctx); err != nil {
		log.Errorf("could not load current trip: %v", err)
		s.mu.Lock()
		s.trip = s.freshTrip(0)
		s.mu.Unlock()
	}
	return s
}

// Reload re-reads the persisted draft. A missing or invalid draft is replaced by a
// fresh empty trip, which is persisted.
func (s *Store) Reload(ctx context.Context) error {
	result, err := kvstore.GetJSON(ctx, s.storage, StorageKey, validate)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if loaded, ok := result.Get(); ok {
		loaded.Places = place.Dedupe(loaded.Places)
		s.trip = loaded
		return nil
	}
	if result.Status() == kvstore.Invalid {
		log.Warnf("ignoring invalid persisted trip: %v", result.Err())
	}
	return s.commit(ctx, s.freshTrip(s.trip.Id))
}

// freshTrip returns an empty draft whose id is the current millisecond, moved past
// previousId when the clock has not advanced. A zero previousId means no draft yet.
func (s *Store) freshTrip(previousId int64) CurrentTrip {
	id := s.clock.Now().UnixMilli()
	if id <= previousId {
		id = previousId + 1
	}
	return CurrentTrip{Id: id, Name: DefaultName, Places: []place.Place{}}
}

// commit persists next and makes it the current trip. Callers hold s.mu.
func (s *Store) commit(ctx context.Context, next CurrentTrip) error {
	if err := kvstore.SetJSON(ctx, s.storage, StorageKey, next); err != nil {
		return fmt.Errorf("could not persist current trip: %w", err)
	}
	s.trip = next
	return nil
}

// AddPlace appends p unless the trip already contains it. It reports whether the
// trip changed.
func (s *Store) AddPlace(ctx context.Context, p place.Place) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if place.IndexOf(s.trip.Places, p.Id) >= 0 {
		return false, nil
	}
	next := s.trip.clone()
	next.Places = append(next.Places, p)
	if err := s.commit(ctx, next); err != nil {
		return false, err
	}
	log.Debugf("added place %d to trip %d", p.Id, next.Id)
	return true, nil
}

// RemovePlace drops the place with placeId. Removing a place that is not in the
// trip changes nothing.
func (s *Store) RemovePlace(ctx context.Context, placeId int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := place.IndexOf(s.trip.Places, placeId)
	if idx < 0 {
		return false, nil
	}
	next := s.trip.clone()
	next.Places = append(next.Places[:idx], next.Places[idx+1:]...)
	if err := s.commit(ctx, next); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) IsInCurrentTrip(placeId int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return place.IndexOf(s.trip.Places, placeId) >= 0
}

// SetName renames the draft. Any string is accepted, the empty one included.
func (s *Store) SetName(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.trip.clone()
	next.Name = name
	return s.commit(ctx, next)
}

// SaveCurrentTrip announces that the user wants to finalize the draft. It does not
// create a saved plan; that happens when the planning form is submitted.
func (s *Store) SaveCurrentTrip(ctx context.Context) CurrentTrip {
	current := s.Current()
	err := s.eventBus.Publish(event_bus.NewEvent(ctx, event_bus.TripSaveRequestedType, event_bus.TripSaveRequested{
		TripId:     current.Id,
		Name:       current.Name,
		PlaceIds:   current.PlaceIds(),
		PlaceCount: len(current.Places),
	}))
	if err != nil {
		log.Warnf("failed to publish save request for trip %d: %v", current.Id, err)
	}
	return current
}

// Clear discards the draft and starts a fresh one with a new id and the default name.
func (s *Store) Clear(ctx context.Context) (CurrentTrip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.commit(ctx, s.freshTrip(s.trip.Id)); err != nil {
		return CurrentTrip{}, err
	}
	log.Debugf("started fresh trip %d", s.trip.Id)
	return s.trip.clone(), nil
}

// Finalize hands a snapshot of the draft to persist and, once persist succeeds, starts a
// fresh trip. The store stays locked throughout, so edits arriving meanwhile apply to
// the fresh trip. persist must not call back into the store.
//
// A persist error is returned as is and the draft is kept. A failure to reset the draft
// after persisting is returned wrapped in ErrResetFailed.
func (s *Store) Finalize(ctx context.Context, persist func(CurrentTrip) error) (CurrentTrip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := persist(s.trip.clone()); err != nil {
		return CurrentTrip{}, err
	}
	finalizedId := s.trip.Id
	if err := s.commit(ctx, s.freshTrip(finalizedId)); err != nil {
		return s.trip.clone(), fmt.Errorf("%w: %w", ErrResetFailed, err)
	}
	log.Debugf("trip %d finalized, started fresh trip %d", finalizedId, s.trip.Id)
	return s.trip.clone(), nil
}

func (s *Store) Current() CurrentTrip {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.trip.clone()
}
