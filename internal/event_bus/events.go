package event_bus

const (
	StorageChangedType     EventType = "storage.changed"
	TripSaveRequestedType  EventType = "trip.save_requested"
	TripPlanSavedType      EventType = "tripplan.saved"
	TripPlanDeletedType    EventType = "tripplan.deleted"
	StorageAvailableType   EventType = "storage.available"
	StorageUnavailableType EventType = "storage.unavailable"
)

// StorageChanged is published when another handle on the same storage scope wrote
// Key. An empty Key means the change could not be attributed to a single key.
type StorageChanged struct {
	Key string
}

// TripSaveRequested carries a snapshot of the draft the user asked to finalize.
type TripSaveRequested struct {
	TripId     int64
	Name       string
	PlaceIds   []int
	PlaceCount int
}

type TripPlanSaved struct {
	PlanId     int64
	Name       string
	PlaceCount int
}

type TripPlanDeleted struct {
	PlanId int64
}

type StorageAvailabilityChanged struct {
	Available bool
	Reason    string
}
