package completed_trips

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/roamly/roamly/internal/kvstore"
	log "github.com/sirupsen/logrus"
)

const StorageKey = "completedTrips"

type CompletedTrip struct {
	Destination string `json:"destination"`
	Date        string `json:"date"`
}

// Defaults are the records written on first use.
var Defaults = []CompletedTrip{
	{Destination: "Paris, France", Date: "2024-04-12"},
	{Destination: "Kyoto, Japan", Date: "2024-10-03"},
	{Destination: "Bali, Indonesia", Date: "2025-02-18"},
}

func validate(trips []CompletedTrip) error {
	for i, t := range trips {
		if strings.TrimSpace(t.Destination) == "" {
			return fmt.Errorf("completed trip %d has no destination", i)
		}
		if _, err := time.Parse(time.DateOnly, t.Date); err != nil {
			return fmt.Errorf("completed trip %d has an invalid date %q", i, t.Date)
		}
	}
	return nil
}

type Store struct {
	storage kvstore.Storage
}

func NewStore(storage kvstore.Storage) *Store {
	return &Store{storage: storage}
}

// List returns the stored records. Missing or unreadable records are replaced by
// Defaults, which are persisted.
func (s *Store) List(ctx context.Context) ([]CompletedTrip, error) {
	result, err := kvstore.GetJSON(ctx, s.storage, StorageKey, validate)
	if err != nil {
		return nil, err
	}
	if trips, ok := result.Get(); ok && trips != nil {
		return trips, nil
	}
	if result.Status() == kvstore.Invalid {
		log.Warnf("replacing invalid completed trips: %v", result.Err())
	}
	seeded := append([]CompletedTrip(nil), Defaults...)
	if err := kvstore.SetJSON(ctx, s.storage, StorageKey, seeded); err != nil {
		return nil, fmt.Errorf("could not seed completed trips: %w", err)
	}
	return seeded, nil
}
