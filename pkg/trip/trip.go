package trip

import (
	"errors"
	"fmt"

	"github.com/roamly/roamly/pkg/place"
)

const DefaultName = "My Trip"

var ErrResetFailed = errors.New("current trip could not be reset")

// CurrentTrip is the draft being assembled. Places keep the order they were added in
// and never contain the same place twice.
type CurrentTrip struct {
	Id     int64         `json:"id"`
	Name   string        `json:"name"`
	Places []place.Place `json:"places"`
}

func (t CurrentTrip) clone() CurrentTrip {
	t.Places = append(make([]place.Place, 0, len(t.Places)), t.Places...)
	return t
}

func (t CurrentTrip) PlaceIds() []int {
	ids := make([]int, 0, len(t.Places))
	for _, p := range t.Places {
		ids = append(ids, p.Id)
	}
	return ids
}

func validate(t CurrentTrip) error {
	if t.Id <= 0 {
		return fmt.Errorf("trip id must be positive, got %d", t.Id)
	}
	for _, p := range t.Places {
		if err := place.Validate(p); err != nil {
			return err
		}
	}
	return nil
}
