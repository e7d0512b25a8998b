package mapper

import (
	"time"

	"github.com/shopspring/decimal"

	shippingdomain "github.com/Apurer/storefront-tracking/internal/domains/shipping/domain"
)

// Stop is the transport shape of a stop descriptor.
type Stop struct {
	Name             string           `json:"name" binding:"required"`
	Description      *string          `json:"description,omitempty"`
	Latitude         *decimal.Decimal `json:"lat,omitempty"`
	Longitude        *decimal.Decimal `json:"lng,omitempty"`
	EstimatedArrival *time.Time       `json:"estimatedArrival,omitempty"`
	IsReached        bool             `json:"isReached,omitempty"`
}

// BuildRouteRequest seeds a route.
type BuildRouteRequest struct {
	Stops []Stop `json:"stops" binding:"required,min=1,dive"`
}

// StepPatch is the transport shape of a partial step update.
type StepPatch struct {
	Position          *int             `json:"position,omitempty"`
	LocationName      *string          `json:"locationName,omitempty"`
	StatusDescription *string          `json:"statusDescription,omitempty"`
	Latitude          *decimal.Decimal `json:"latitude,omitempty"`
	Longitude         *decimal.Decimal `json:"longitude,omitempty"`
	IsReached         *bool            `json:"isReached,omitempty"`
	ReachedAt         *time.Time       `json:"reachedAt,omitempty"`
	EstimatedArrival  *time.Time       `json:"estimatedArrival,omitempty"`
	Clear             []string         `json:"clear,omitempty" binding:"omitempty,dive,oneof=statusDescription latitude longitude reachedAt estimatedArrival"`
}

// Step is the transport representation of a shipment step.
type Step struct {
	ID                int64            `json:"id"`
	OrderID           int64            `json:"orderId"`
	Position          int              `json:"position"`
	LocationName      string           `json:"locationName"`
	StatusDescription *string          `json:"statusDescription,omitempty"`
	Latitude          *decimal.Decimal `json:"latitude,omitempty"`
	Longitude         *decimal.Decimal `json:"longitude,omitempty"`
	IsReached         bool             `json:"isReached"`
	ReachedAt         *time.Time       `json:"reachedAt,omitempty"`
	EstimatedArrival  *time.Time       `json:"estimatedArrival,omitempty"`
}

// Progress is either the full progress view or the "no tracking" view.
type Progress struct {
	Percentage  int    `json:"percentage"`
	CurrentStep *int   `json:"currentStep,omitempty"`
	TotalSteps  *int   `json:"totalSteps,omitempty"`
	IsDelivered *bool  `json:"isDelivered,omitempty"`
	Label       string `json:"label,omitempty"`
}

// AdvanceResult reports whether an advance call reached a step.
type AdvanceResult struct {
	Advanced bool `json:"advanced"`
}

// ToStopDescriptors converts the transport stops into domain descriptors.
func ToStopDescriptors(stops []Stop) []shippingdomain.StopDescriptor {
	result := make([]shippingdomain.StopDescriptor, 0, len(stops))
	for _, stop := range stops {
		result = append(result, shippingdomain.StopDescriptor{
			Name:             stop.Name,
			Description:      stop.Description,
			Latitude:         stop.Latitude,
			Longitude:        stop.Longitude,
			EstimatedArrival: stop.EstimatedArrival,
			IsReached:        stop.IsReached,
		})
	}
	return result
}

// ToDomainPatch converts a transport patch.
func ToDomainPatch(patch StepPatch) shippingdomain.StepPatch {
	return shippingdomain.StepPatch{
		Position:          patch.Position,
		LocationName:      patch.LocationName,
		StatusDescription: patch.StatusDescription,
		Latitude:          patch.Latitude,
		Longitude:         patch.Longitude,
		IsReached:         patch.IsReached,
		ReachedAt:         patch.ReachedAt,
		EstimatedArrival:  patch.EstimatedArrival,
		Clear:             toStepFields(patch.Clear),
	}
}

func toStepFields(names []string) []shippingdomain.StepField {
	if len(names) == 0 {
		return nil
	}
	fields := make([]shippingdomain.StepField, 0, len(names))
	for _, name := range names {
		fields = append(fields, shippingdomain.StepField(name))
	}
	return fields
}

// FromDomainStep converts a domain step to its transport shape.
func FromDomainStep(step *shippingdomain.ShipmentStep) Step {
	if step == nil {
		return Step{}
	}
	return Step{
		ID:                step.ID,
		OrderID:           step.OrderID,
		Position:          step.Position,
		LocationName:      step.LocationName,
		StatusDescription: step.StatusDescription,
		Latitude:          decimalPtr(step.Latitude),
		Longitude:         decimalPtr(step.Longitude),
		IsReached:         step.IsReached,
		ReachedAt:         step.ReachedAt,
		EstimatedArrival:  step.EstimatedArrival,
	}
}

// FromDomainRoute converts a route; an empty route becomes an empty JSON array.
func FromDomainRoute(route []shippingdomain.ShipmentStep) []Step {
	result := make([]Step, 0, len(route))
	for i := range route {
		result = append(result, FromDomainStep(&route[i]))
	}
	return result
}

// FromDomainProgress converts progress, collapsing an empty route to its label.
func FromDomainProgress(progress shippingdomain.Progress) Progress {
	if !progress.HasTracking() {
		return Progress{Percentage: 0, Label: shippingdomain.NoTrackingLabel}
	}
	current := progress.CurrentStep
	total := progress.TotalSteps
	delivered := progress.IsDelivered
	return Progress{
		Percentage:  progress.Percentage,
		CurrentStep: &current,
		TotalSteps:  &total,
		IsDelivered: &delivered,
	}
}

func decimalPtr(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}
