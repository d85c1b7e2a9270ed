package place

import (
	"errors"
	"fmt"
	"strings"
)

var ErrPlaceNotFound = errors.New("place not found")

// Place is a destination from the static catalog. Places are never changed at runtime.
type Place struct {
	Id          int    `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Category    string `json:"category,omitempty" yaml:"category"`
	Description string `json:"description,omitempty" yaml:"description"`
	Image       string `json:"image" yaml:"image"`
	MapUrl      string `json:"mapUrl" yaml:"mapUrl"`
}

// Validate checks the fields a persisted place must carry to be usable.
func Validate(p Place) error {
	if p.Id <= 0 {
		return fmt.Errorf("place id must be positive, got %d", p.Id)
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("place %d has no name", p.Id)
	}
	return nil
}

// IndexOf returns the position of the place with id in places, or -1.
func IndexOf(places []Place, id int) int {
	for i, p := range places {
		if p.Id == id {
			return i
		}
	}
	return -1
}

// Dedupe returns places with later duplicates of an id dropped, preserving order.
func Dedupe(places []Place) []Place {
	seen := make(map[int]bool, len(places))
	result := make([]Place, 0, len(places))
	for _, p := range places {
		if seen[p.Id] {
			continue
		}
		seen[p.Id] = true
		result = append(result, p)
	}
	return result
}
