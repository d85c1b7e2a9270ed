package trip_plan

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/roamly/roamly/internal/event_bus"
	"github.com/roamly/roamly/internal/utils"
	"github.com/roamly/roamly/pkg/trip"
	log "github.com/sirupsen/logrus"
)

// TripSource is the current trip draft a plan is finalized from. Finalize must hold the
// draft still while persist runs and reset it only when persist succeeds.
type TripSource interface {
	Finalize(ctx context.Context, persist func(trip.CurrentTrip) error) (trip.CurrentTrip, error)
}

type Service interface {
	// List returns the saved plans, newest first, loading them on first use.
	List(ctx context.Context) ([]SavedTripPlan, error)
	// Refresh re-reads all saved plans from storage.
	Refresh(ctx context.Context) ([]SavedTripPlan, error)
	Get(ctx context.Context, id int64) (SavedTripPlan, error)
	// Finalize turns the current trip into a saved plan and starts a fresh trip.
	Finalize(ctx context.Context, form PlanForm) (SavedTripPlan, error)
	Delete(ctx context.Context, id int64, confirmed bool) error
}

type ServiceImpl struct {
	repo     Repository
	trips    TripSource
	eventBus *event_bus.EventBus
	clock    utils.Clock

	mu     sync.Mutex
	plans  []SavedTripPlan
	loaded bool
	// generation counts local changes to plans; a listing read across a change is stale.
	generation uint64
}

// NewTripPlanService creates the service and keeps its listing in sync with trip plan
// changes announced on the event bus.
func NewTripPlanService(repo Repository, trips TripSource, eventBus *event_bus.EventBus, clock utils.Clock) *ServiceImpl {
	s := &ServiceImpl{repo: repo, trips: trips, eventBus: eventBus, clock: clock}
	event_bus.SubscribeTyped(eventBus, event_bus.StorageChangedType, s.handleStorageChanged)
	return s
}

func (s *ServiceImpl) handleStorageChanged(e event_bus.EventT[event_bus.StorageChanged]) error {
	key := e.Data.Key
	if key != "" && !strings.HasPrefix(key, KeyPrefix) {
		return nil
	}
	log.Debugf("trip plans changed in storage (key=%q), refreshing", key)
	_, err := s.Refresh(e.Context())
	return err
}

func (s *ServiceImpl) List(ctx context.Context) ([]SavedTripPlan, error) {
	s.mu.Lock()
	if s.loaded {
		plans := slices.Clone(s.plans)
		s.mu.Unlock()
		return plans, nil
	}
	s.mu.Unlock()
	return s.Refresh(ctx)
}

func (s *ServiceImpl) Refresh(ctx context.Context) ([]SavedTripPlan, error) {
	for {
		s.mu.Lock()
		generation := s.generation
		s.mu.Unlock()

		plans, err := s.repo.List(ctx)
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		if s.generation != generation {
			s.mu.Unlock()
			log.Debug("trip plans changed while listing, reading them again")
			continue
		}
		s.plans = plans
		s.loaded = true
		s.mu.Unlock()
		return slices.Clone(plans), nil
	}
}

func (s *ServiceImpl) Get(ctx context.Context, id int64) (SavedTripPlan, error) {
	return s.repo.Get(ctx, id)
}

func (s *ServiceImpl) Finalize(ctx context.Context, form PlanForm) (SavedTripPlan, error) {
	form, err := form.Normalize()
	if err != nil {
		return SavedTripPlan{}, err
	}
	var (
		plan  SavedTripPlan
		saved bool
	)
	_, err = s.trips.Finalize(ctx, func(current trip.CurrentTrip) error {
		if len(current.Places) == 0 {
			return ErrEmptyTrip
		}
		now := s.clock.Now()
		// plan ids only grow from here, so they never meet the draft's id
		id := max(now.UnixMilli(), current.Id+1)
		stored, err := s.repo.Store(ctx, SavedTripPlan{
			Id:         id,
			Name:       form.Name,
			StartDate:  form.StartDate,
			EndDate:    form.EndDate,
			Places:     current.Places,
			Companions: form.Companions,
			Budget:     form.Budget,
			Notes:      form.Notes,
			CreatedAt:  now,
		})
		if err != nil {
			return err
		}
		plan, saved = stored, true
		return nil
	})
	if !saved {
		return SavedTripPlan{}, err
	}
	log.Infof("saved trip plan %d %q with %d places", plan.Id, plan.Name, len(plan.Places))
	if err != nil {
		log.Errorf("trip plan %d saved but the current trip could not be reset: %v", plan.Id, err)
	}

	s.mu.Lock()
	s.generation++
	if s.loaded {
		s.plans = append(s.plans, plan)
		sortPlans(s.plans)
	}
	s.mu.Unlock()

	s.publish(ctx, event_bus.TripPlanSavedType, event_bus.TripPlanSaved{
		PlanId:     plan.Id,
		Name:       plan.Name,
		PlaceCount: len(plan.Places),
	})
	return plan, nil
}

func (s *ServiceImpl) Delete(ctx context.Context, id int64, confirmed bool) error {
	if !confirmed {
		return ErrDeletionNotConfirmed
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("%w: %d", ErrPlanNotFound, id)
	}

	s.mu.Lock()
	s.generation++
	s.plans = slices.DeleteFunc(s.plans, func(p SavedTripPlan) bool { return p.Id == id })
	s.mu.Unlock()

	s.publish(ctx, event_bus.TripPlanDeletedType, event_bus.TripPlanDeleted{PlanId: id})
	return nil
}

func (s *ServiceImpl) publish(ctx context.Context, eventType event_bus.EventType, data any) {
	if err := s.eventBus.Publish(event_bus.NewEvent(ctx, eventType, data)); err != nil {
		log.Warnf("failed to publish %s: %v", eventType, err)
	}
}
