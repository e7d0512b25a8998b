package domain

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptyRoute          = errors.New("route requires at least one stop")
	ErrMissingLocationName = errors.New("stop location name is required")
	ErrInvalidPosition     = errors.New("step position must be greater than zero")
	ErrInvalidOrderID      = errors.New("order id must be greater than zero")
)

// ShipmentStep is one stop in an order's delivery route.
type ShipmentStep struct {
	ID                int64
	OrderID           int64
	Position          int
	LocationName      string
	StatusDescription *string
	Latitude          decimal.NullDecimal
	Longitude         decimal.NullDecimal
	IsReached         bool
	ReachedAt         *time.Time
	EstimatedArrival  *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// StopDescriptor describes a stop supplied when a route is seeded.
type StopDescriptor struct {
	Name             string
	Description      *string
	Latitude         *decimal.Decimal
	Longitude        *decimal.Decimal
	EstimatedArrival *time.Time
	IsReached        bool
}

// MarkReached flags the step as reached at the given instant.
func (s *ShipmentStep) MarkReached(at time.Time) {
	s.IsReached = true
	reachedAt := at
	s.ReachedAt = &reachedAt
}

// ToggleReached flips the reached flag. ReachedAt is left as is.
func (s *ShipmentStep) ToggleReached() {
	s.IsReached = !s.IsReached
}

// Clone returns a deep copy so callers cannot mutate shared state.
func (s ShipmentStep) Clone() ShipmentStep {
	clone := s
	if s.StatusDescription != nil {
		v := *s.StatusDescription
		clone.StatusDescription = &v
	}
	if s.ReachedAt != nil {
		v := *s.ReachedAt
		clone.ReachedAt = &v
	}
	if s.EstimatedArrival != nil {
		v := *s.EstimatedArrival
		clone.EstimatedArrival = &v
	}
	return clone
}

// ValidateStops checks the stop list supplied to the route builder.
func ValidateStops(stops []StopDescriptor) error {
	if len(stops) == 0 {
		return ErrEmptyRoute
	}
	for _, stop := range stops {
		if strings.TrimSpace(stop.Name) == "" {
			return ErrMissingLocationName
		}
	}
	return nil
}

// NewRoute builds unsaved steps for the order, one per stop, positioned by input order.
func NewRoute(orderID int64, stops []StopDescriptor, now time.Time) ([]ShipmentStep, error) {
	if orderID <= 0 {
		return nil, ErrInvalidOrderID
	}
	if err := ValidateStops(stops); err != nil {
		return nil, err
	}
	route := make([]ShipmentStep, 0, len(stops))
	for i, stop := range stops {
		step := ShipmentStep{
			OrderID:           orderID,
			Position:          i + 1,
			LocationName:      strings.TrimSpace(stop.Name),
			StatusDescription: cloneString(stop.Description),
			Latitude:          nullDecimal(stop.Latitude),
			Longitude:         nullDecimal(stop.Longitude),
			EstimatedArrival:  cloneTime(stop.EstimatedArrival),
		}
		if stop.IsReached {
			step.MarkReached(now)
		}
		route = append(route, step)
	}
	return route, nil
}

// SortRoute orders steps by position, then id for steps sharing a position.
func SortRoute(route []ShipmentStep) {
	sort.SliceStable(route, func(i, j int) bool {
		if route[i].Position != route[j].Position {
			return route[i].Position < route[j].Position
		}
		return route[i].ID < route[j].ID
	})
}

// NextUnreached returns the lowest-position step that has not been reached.
func NextUnreached(route []ShipmentStep) (ShipmentStep, bool) {
	var (
		next  ShipmentStep
		found bool
	)
	for _, step := range route {
		if step.IsReached {
			continue
		}
		if !found || step.Position < next.Position || (step.Position == next.Position && step.ID < next.ID) {
			next = step
			found = true
		}
	}
	return next, found
}

// CloneRoute deep-copies a route.
func CloneRoute(route []ShipmentStep) []ShipmentStep {
	if route == nil {
		return nil
	}
	out := make([]ShipmentStep, len(route))
	for i := range route {
		out[i] = route[i].Clone()
	}
	return out
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*d)
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
