package trip_plan

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/roamly/roamly/pkg/place"
)

const DateLayout = "2006-01-02"

var (
	ErrPlanNotFound         = errors.New("trip plan not found")
	ErrDeletionNotConfirmed = errors.New("trip plan deletion must be confirmed")
	ErrInvalidForm          = errors.New("invalid trip plan form")
	ErrEmptyTrip            = errors.New("current trip has no places")
)

// SavedTripPlan is a finalized trip. Once stored it is never modified, only deleted.
type SavedTripPlan struct {
	Id         int64         `json:"id"`
	Name       string        `json:"name"`
	StartDate  string        `json:"startDate,omitempty"`
	EndDate    string        `json:"endDate,omitempty"`
	Places     []place.Place `json:"places"`
	Companions []string      `json:"companions"`
	Budget     string        `json:"budget,omitempty"`
	Notes      string        `json:"notes,omitempty"`
	CreatedAt  time.Time     `json:"createdAt"`
}

// PlanForm holds what the user enters when finalizing the current trip.
type PlanForm struct {
	Name       string
	StartDate  string
	EndDate    string
	Companions []string
	Budget     string
	Notes      string
}

// Normalize trims the form and checks it. Dates are optional but must use DateLayout,
// and the end date cannot precede the start date. Blank companions are dropped.
func (f PlanForm) Normalize() (PlanForm, error) {
	f.Name = strings.TrimSpace(f.Name)
	f.StartDate = strings.TrimSpace(f.StartDate)
	f.EndDate = strings.TrimSpace(f.EndDate)
	f.Budget = strings.TrimSpace(f.Budget)
	f.Notes = strings.TrimSpace(f.Notes)

	if f.Name == "" {
		return PlanForm{}, fmt.Errorf("%w: name is required", ErrInvalidForm)
	}
	start, err := parseDate("start date", f.StartDate)
	if err != nil {
		return PlanForm{}, err
	}
	end, err := parseDate("end date", f.EndDate)
	if err != nil {
		return PlanForm{}, err
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return PlanForm{}, fmt.Errorf("%w: end date %s is before start date %s", ErrInvalidForm, f.EndDate, f.StartDate)
	}

	companions := make([]string, 0, len(f.Companions))
	for _, c := range f.Companions {
		if c = strings.TrimSpace(c); c != "" {
			companions = append(companions, c)
		}
	}
	f.Companions = companions
	return f, nil
}

func parseDate(field, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	date, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s %q is not a YYYY-MM-DD date", ErrInvalidForm, field, value)
	}
	return date, nil
}

func validate(p SavedTripPlan) error {
	if p.Id <= 0 {
		return fmt.Errorf("trip plan id must be positive, got %d", p.Id)
	}
	for _, pl := range p.Places {
		if err := place.Validate(pl); err != nil {
			return err
		}
	}
	return nil
}
