package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrUnknownStepField = errors.New("step field cannot be cleared")
	ErrConflictingPatch = errors.New("step field is both set and cleared")
)

// StepField names an optional step attribute that a patch may clear.
type StepField string

const (
	FieldStatusDescription StepField = "statusDescription"
	FieldLatitude          StepField = "latitude"
	FieldLongitude         StepField = "longitude"
	FieldReachedAt         StepField = "reachedAt"
	FieldEstimatedArrival  StepField = "estimatedArrival"
)

// StepPatch carries a partial update. Nil fields keep the stored value;
// fields listed in Clear are reset to null.
type StepPatch struct {
	Position          *int
	LocationName      *string
	StatusDescription *string
	Latitude          *decimal.Decimal
	Longitude         *decimal.Decimal
	IsReached         *bool
	ReachedAt         *time.Time
	EstimatedArrival  *time.Time
	Clear             []StepField
}

// IsEmpty reports whether the patch sets no field.
func (p StepPatch) IsEmpty() bool {
	return p.Position == nil && p.LocationName == nil && p.StatusDescription == nil &&
		p.Latitude == nil && p.Longitude == nil && p.IsReached == nil &&
		p.ReachedAt == nil && p.EstimatedArrival == nil && len(p.Clear) == 0
}

// Apply merges the patch onto the step after validating the supplied fields.
func (p StepPatch) Apply(step *ShipmentStep) error {
	if p.Position != nil && *p.Position < 1 {
		return ErrInvalidPosition
	}
	if p.LocationName != nil && strings.TrimSpace(*p.LocationName) == "" {
		return ErrMissingLocationName
	}
	for _, field := range p.Clear {
		set, known := p.sets(field)
		if !known {
			return ErrUnknownStepField
		}
		if set {
			return ErrConflictingPatch
		}
	}
	if p.Position != nil {
		step.Position = *p.Position
	}
	if p.LocationName != nil {
		step.LocationName = strings.TrimSpace(*p.LocationName)
	}
	if p.StatusDescription != nil {
		step.StatusDescription = cloneString(p.StatusDescription)
	}
	if p.Latitude != nil {
		step.Latitude = decimal.NewNullDecimal(*p.Latitude)
	}
	if p.Longitude != nil {
		step.Longitude = decimal.NewNullDecimal(*p.Longitude)
	}
	if p.IsReached != nil {
		step.IsReached = *p.IsReached
	}
	if p.ReachedAt != nil {
		step.ReachedAt = cloneTime(p.ReachedAt)
	}
	if p.EstimatedArrival != nil {
		step.EstimatedArrival = cloneTime(p.EstimatedArrival)
	}
	for _, field := range p.Clear {
		switch field {
		case FieldStatusDescription:
			step.StatusDescription = nil
		case FieldLatitude:
			step.Latitude = decimal.NullDecimal{}
		case FieldLongitude:
			step.Longitude = decimal.NullDecimal{}
		case FieldReachedAt:
			step.ReachedAt = nil
		case FieldEstimatedArrival:
			step.EstimatedArrival = nil
		}
	}
	return nil
}

// sets reports whether the patch also assigns field, and whether field can be cleared at all.
func (p StepPatch) sets(field StepField) (set, known bool) {
	switch field {
	case FieldStatusDescription:
		return p.StatusDescription != nil, true
	case FieldLatitude:
		return p.Latitude != nil, true
	case FieldLongitude:
		return p.Longitude != nil, true
	case FieldReachedAt:
		return p.ReachedAt != nil, true
	case FieldEstimatedArrival:
		return p.EstimatedArrival != nil, true
	default:
		return false, false
	}
}
