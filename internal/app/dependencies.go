package app

import (
	"context"

	"github.com/roamly/roamly/internal/event_bus"
	"github.com/roamly/roamly/internal/kvstore"
	"github.com/roamly/roamly/internal/utils"
	"github.com/roamly/roamly/pkg/availability"
	"github.com/roamly/roamly/pkg/completed_trips"
	"github.com/roamly/roamly/pkg/favorites"
	"github.com/roamly/roamly/pkg/place"
	"github.com/roamly/roamly/pkg/preferences"
	"github.com/roamly/roamly/pkg/trip"
	"github.com/roamly/roamly/pkg/trip_plan"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	Clock    utils.Clock
	EventBus *event_bus.EventBus

	Guard               *availability.Guard
	AvailabilityHandler *availability.Handler

	Catalog      *place.Catalog
	PlaceHandler *place.Handler

	FavoritesStore   *favorites.Store
	FavoritesHandler *favorites.Handler

	TripStore   *trip.Store
	TripHandler *trip.Handler

	TripPlanRepo    trip_plan.Repository
	TripPlanService *trip_plan.ServiceImpl
	TripPlanHandler *trip_plan.Handler

	PreferencesService *preferences.Service
	PreferencesHandler *preferences.Handler

	CompletedTrips        *completed_trips.Store
	CompletedTripsHandler *completed_trips.Handler
}

// BuildDependencies initializes and wires all application services and handlers.
// Every store writes through the availability guard.
func BuildDependencies(ctx context.Context, storage kvstore.Storage, catalog *place.Catalog, clock utils.Clock, eventBus *event_bus.EventBus) *Dependencies {
	deps := &Dependencies{Clock: clock, EventBus: eventBus}

	deps.Guard = availability.NewGuard(storage, deps.EventBus, deps.Clock)
	deps.AvailabilityHandler = availability.NewHandler(deps.Guard)
	// surface a dead backend before the first request
	deps.Guard.Probe(ctx)

	deps.Catalog = catalog
	deps.PlaceHandler = place.NewHandler(deps.Catalog)

	deps.FavoritesStore = favorites.NewStore(ctx, deps.Guard)
	deps.FavoritesHandler = favorites.NewHandler(deps.FavoritesStore, deps.Catalog)

	deps.TripStore = trip.NewStore(ctx, deps.Guard, deps.EventBus, deps.Clock)
	deps.TripHandler = trip.NewHandler(deps.TripStore, deps.Catalog)

	deps.TripPlanRepo = trip_plan.NewRepository(deps.Guard)
	deps.TripPlanService = trip_plan.NewTripPlanService(deps.TripPlanRepo, deps.TripStore, deps.EventBus, deps.Clock)
	deps.TripPlanHandler = trip_plan.NewHandler(deps.TripPlanService)

	deps.PreferencesService = preferences.NewService(deps.Guard)
	deps.PreferencesHandler = preferences.NewHandler(deps.PreferencesService)

	deps.CompletedTrips = completed_trips.NewStore(deps.Guard)
	deps.CompletedTripsHandler = completed_trips.NewHandler(deps.CompletedTrips)

	deps.Guard.OnRecover(deps.FavoritesStore.Reload)
	deps.Guard.OnRecover(deps.TripStore.Reload)
	deps.Guard.OnRecover(func(ctx context.Context) error {
		_, err := deps.TripPlanService.Refresh(ctx)
		return err
	})

	return deps
}
