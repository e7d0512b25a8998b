package domain

import "time"

// Event is implemented by the notifications raised by tracking mutations.
type Event interface {
	EventName() string
	OccurredAt() time.Time
	AggregateOrderID() int64
}

// BaseEvent provides common event metadata.
type BaseEvent struct {
	OrderID   int64     `json:"orderId"`
	Timestamp time.Time `json:"occurredAt"`
}

// OccurredAt returns when the event occurred.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateOrderID returns the order owning the route.
func (e BaseEvent) AggregateOrderID() int64 {
	return e.OrderID
}

// RouteBuilt is raised when a route is seeded for an order.
type RouteBuilt struct {
	BaseEvent
	TotalSteps int `json:"totalSteps"`
}

func (RouteBuilt) EventName() string { return "shipment.route_built" }

// StepReached is raised when a step becomes reached, by advancement or toggle.
type StepReached struct {
	BaseEvent
	StepID       int64     `json:"stepId"`
	Position     int       `json:"position"`
	LocationName string    `json:"locationName"`
	ReachedAt    time.Time `json:"reachedAt"`
}

func (StepReached) EventName() string { return "shipment.step_reached" }

// ShipmentDelivered is raised when the final step of a route is reached.
type ShipmentDelivered struct {
	BaseEvent
	TotalSteps int `json:"totalSteps"`
}

func (ShipmentDelivered) EventName() string { return "shipment.delivered" }
