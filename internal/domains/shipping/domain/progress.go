package domain

// NoTrackingLabel is reported when an order has no route yet.
const NoTrackingLabel = "No tracking"

// Progress summarises how far an order's delivery route has advanced.
type Progress struct {
	Percentage  int
	CurrentStep int
	TotalSteps  int
	IsDelivered bool
	Label       string
}

// HasTracking reports whether the progress was derived from a non-empty route.
func (p Progress) HasTracking() bool {
	return p.TotalSteps > 0
}

// NoTracking is the progress of an order without steps.
func NoTracking() Progress {
	return Progress{Label: NoTrackingLabel}
}

// CalculateProgress derives completion from a route. Percentage is floored.
func CalculateProgress(route []ShipmentStep) Progress {
	if len(route) == 0 {
		return NoTracking()
	}
	reached := 0
	for _, step := range route {
		if step.IsReached {
			reached++
		}
	}
	last, _ := FinalStep(route)
	total := len(route)
	return Progress{
		Percentage:  100 * reached / total,
		CurrentStep: reached,
		TotalSteps:  total,
		IsDelivered: last.IsReached,
	}
}

// FinalStep returns the highest-position step, the last one by id when positions tie.
func FinalStep(route []ShipmentStep) (ShipmentStep, bool) {
	if len(route) == 0 {
		return ShipmentStep{}, false
	}
	last := route[0]
	for _, step := range route[1:] {
		if step.Position > last.Position || (step.Position == last.Position && step.ID > last.ID) {
			last = step
		}
	}
	return last, true
}
