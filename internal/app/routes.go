package app

import (
	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API endpoints. Routes touching persisted state are
// rejected while the storage is unavailable.
func RegisterRoutes(r *mux.Router, deps *Dependencies) {

	// Catalog
	r.HandleFunc("/api/places", deps.PlaceHandler.ListPlaces).Methods("GET")
	r.HandleFunc("/api/places/{placeId}", deps.PlaceHandler.GetPlace).Methods("GET")
	r.HandleFunc("/api/categories", deps.PlaceHandler.ListCategories).Methods("GET")

	// Storage availability
	r.HandleFunc("/api/storage/status", deps.AvailabilityHandler.GetStatus).Methods("GET")
	r.HandleFunc("/api/storage/retry", deps.AvailabilityHandler.Retry).Methods("POST")

	guarded := r.PathPrefix("/api").Subrouter()
	guarded.Use(deps.AvailabilityHandler.Middleware)

	// Favorites
	guarded.HandleFunc("/favorites", deps.FavoritesHandler.ListFavorites).Methods("GET")
	guarded.HandleFunc("/favorites/{placeId}", deps.FavoritesHandler.GetFavorite).Methods("GET")
	guarded.HandleFunc("/favorites/{placeId}/toggle", deps.FavoritesHandler.ToggleFavorite).Methods("POST")

	// Current trip
	guarded.HandleFunc("/trip", deps.TripHandler.GetCurrentTrip).Methods("GET")
	guarded.HandleFunc("/trip", deps.TripHandler.ClearTrip).Methods("DELETE")
	guarded.HandleFunc("/trip/name", deps.TripHandler.RenameTrip).Methods("PUT")
	guarded.HandleFunc("/trip/save", deps.TripHandler.SaveTrip).Methods("POST")
	guarded.HandleFunc("/trip/places", deps.TripHandler.AddPlace).Methods("POST")
	guarded.HandleFunc("/trip/places/{placeId}", deps.TripHandler.GetPlaceStatus).Methods("GET")
	guarded.HandleFunc("/trip/places/{placeId}", deps.TripHandler.RemovePlace).Methods("DELETE")

	// Saved trip plans
	guarded.HandleFunc("/tripplans", deps.TripPlanHandler.ListPlans).Methods("GET")
	guarded.HandleFunc("/tripplans", deps.TripPlanHandler.CreatePlan).Methods("POST")
	guarded.HandleFunc("/tripplans/{planId}", deps.TripPlanHandler.GetPlan).Methods("GET")
	guarded.HandleFunc("/tripplans/{planId}", deps.TripPlanHandler.DeletePlan).Methods("DELETE")

	// Preferences
	guarded.HandleFunc("/preferences/theme", deps.PreferencesHandler.GetTheme).Methods("GET")
	guarded.HandleFunc("/preferences/theme", deps.PreferencesHandler.SetTheme).Methods("PUT")

	// Completed trips
	guarded.HandleFunc("/completedtrips", deps.CompletedTripsHandler.ListCompletedTrips).Methods("GET")
}
